// Package reel assembles short vertical videos from AI-generated images:
// prompt selection, image acquisition, caption overlay, clip timing, and
// final encoding.
package reel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"liminal-reels/internal/domain"
	"liminal-reels/internal/infra"
	"liminal-reels/internal/overlay"
	"liminal-reels/internal/providers/image"
	"liminal-reels/internal/storage"
)

// ComposeRequest describes one reel composition. APIKey optionally carries a
// per-request credential override; OutputName optionally fixes the output
// video's base name (service entry point), otherwise the standalone naming
// scheme is used.
type ComposeRequest struct {
	Theme      string
	APIKey     string
	OutputName string
}

// ComposerOptions wires the composer's collaborators.
type ComposerOptions struct {
	Config   *infra.Config
	Provider image.Provider
	Overlay  *overlay.Engine
	Themes   *Registry
	Store    *storage.AssetStore
	Encoder  Encoder
	Logger   zerolog.Logger
}

// Composer orchestrates the asset-to-video pipeline. A composition is
// strictly sequential: the outcome branch and captions are selected once and
// threaded through every later step.
type Composer struct {
	cfg      *infra.Config
	provider image.Provider
	overlay  *overlay.Engine
	themes   *Registry
	store    *storage.AssetStore
	encoder  Encoder
	logger   zerolog.Logger
}

// NewComposer constructs a Composer from explicitly provided collaborators;
// nothing is initialized lazily, so concurrent compositions share no hidden
// setup state.
func NewComposer(opts ComposerOptions) *Composer {
	return &Composer{
		cfg:      opts.Config,
		provider: opts.Provider,
		overlay:  opts.Overlay,
		themes:   opts.Themes,
		store:    opts.Store,
		encoder:  opts.Encoder,
		logger:   opts.Logger,
	}
}

// Compose runs the full pipeline for one reel and returns the output video's
// filename (not the full path) so callers can construct a public URL.
// Generation and encoding failures abort the composition; overlay failures
// degrade to the unannotated image and the reel is still produced.
func (c *Composer) Compose(ctx context.Context, req ComposeRequest) (string, error) {
	// Fail on unusable configuration before any expensive work.
	if !c.cfg.GenerationReady(req.APIKey) {
		return "", fmt.Errorf("%w: missing OPENAI_API_KEY and mock mode is off", domain.ErrConfiguration)
	}

	sel := c.themes.Select(req.Theme)
	c.logger.Info().
		Str("theme", sel.Theme).
		Str("branch", string(sel.Branch)).
		Msg("composing reel")

	introRaw, err := c.provider.Acquire(ctx, image.Request{
		Prompt: sel.IntroPrompt,
		Size:   image.SizeStory,
		APIKey: req.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("acquire intro image: %w", err)
	}
	intro := c.annotate(ctx, introRaw, sel.IntroCaption, true)

	outcomeRaw, err := c.provider.Acquire(ctx, image.Request{
		Prompt: sel.OutcomePrompt,
		Size:   image.SizeStory,
		APIKey: req.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("acquire outcome image: %w", err)
	}
	outcome := c.annotate(ctx, outcomeRaw, sel.OutcomeCaption, false)

	clips := []Clip{
		{ImagePath: intro, Seconds: c.clipSeconds()},
		{ImagePath: outcome, Seconds: c.clipSeconds()},
	}
	// Every clip image must exist before encoding begins.
	for _, clip := range clips {
		if _, err := os.Stat(clip.ImagePath); err != nil {
			return "", fmt.Errorf("%w: clip image missing: %w", domain.ErrEncoding, err)
		}
	}

	name := req.OutputName
	if name == "" {
		name = c.store.NewOutputName()
	}
	outputPath := c.store.OutputPath(name)
	if err := c.encoder.Encode(ctx, clips, outputPath); err != nil {
		return "", err
	}

	filename := filepath.Base(outputPath)
	c.logger.Info().Str("filename", filename).Msg("reel ready")
	return filename, nil
}

// annotate applies the overlay and absorbs degraded results per the
// best-effort contract; the caller always gets a usable image path.
func (c *Composer) annotate(ctx context.Context, path, caption string, arrows bool) string {
	res := c.overlay.Annotate(ctx, path, caption, arrows)
	if res.Degraded {
		c.logger.Warn().Err(res.Err).Str("image", path).Msg("continuing with unannotated image")
	}
	return res.Path
}

func (c *Composer) clipSeconds() int {
	if c.cfg.ClipSeconds > 0 {
		return c.cfg.ClipSeconds
	}
	return 4
}
