// Command reel composes a single vertical reel from the command line,
// without going through the HTTP service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"liminal-reels/internal/infra"
	"liminal-reels/internal/overlay"
	"liminal-reels/internal/providers/image"
	"liminal-reels/internal/reel"
	"liminal-reels/internal/storage"
	"liminal-reels/internal/upload"
)

const uploadCaption = "#liminalspaces #horror #fyp #choice #scary"

func main() {
	theme := flag.String("theme", "classic", "theme to compose the reel from")
	doUpload := flag.Bool("upload", false, "publish the finished reel to the configured platforms")
	flag.Parse()

	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fatal(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	store, err := storage.NewAssetStore(cfg.AssetsDir, cfg.OutputDir)
	if err != nil {
		fatal(err)
	}

	provider := image.NewSelector(
		image.NewMockProvider(store, logger),
		image.NewOpenAIProvider(image.OpenAIOptions{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIImageModel,
			BaseURL: cfg.OpenAIBaseURL,
			Store:   store,
			Logger:  logger,
		}),
		func() bool { return cfg.MockGeneration },
		cfg.OpenAIAPIKey,
	)

	themes := reel.NewRegistry()
	if cfg.ThemesPath != "" {
		if err := themes.LoadFile(cfg.ThemesPath); err != nil {
			fatal(err)
		}
	}

	composer := reel.NewComposer(reel.ComposerOptions{
		Config:   cfg,
		Provider: provider,
		Overlay:  overlay.NewEngine(store, logger, cfg.FontPath),
		Themes:   themes,
		Store:    store,
		Encoder: reel.NewFFmpegEncoder(reel.FFmpegOptions{
			FFmpegPath: cfg.FFmpegPath,
			FrameRate:  cfg.FrameRate,
			AudioPath:  cfg.AudioPath,
			Logger:     logger,
		}),
		Logger: logger,
	})

	ctx := context.Background()
	filename, err := composer.Compose(ctx, reel.ComposeRequest{Theme: *theme})
	if err != nil {
		fatal(err)
	}

	videoPath := filepath.Join(cfg.OutputDir, filename)
	fmt.Println(videoPath)

	if *doUpload {
		for _, u := range upload.All(logger) {
			if err := u.Upload(ctx, videoPath, uploadCaption); err != nil {
				logger.Error().Err(err).Str("platform", u.Name()).Msg("upload failed")
			}
		}
	}
}

// fatal prints a plain one-line error, no stack trace, and exits nonzero.
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
