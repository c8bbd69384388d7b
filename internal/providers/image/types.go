package image

import (
	"context"
	"fmt"

	"liminal-reels/internal/domain"
)

// Size enumerates the supported generation frame sizes.
type Size string

const (
	// SizeStandard is the square frame offered by the generation service.
	SizeStandard Size = "1024x1024"
	// SizeStory is the tall 9:16 frame suited to short-form vertical video.
	SizeStory Size = "1024x1792"
)

// Dimensions returns the pixel width and height for the size.
func (s Size) Dimensions() (int, int) {
	switch s {
	case SizeStandard:
		return 1024, 1024
	default:
		return 1024, 1792
	}
}

// Request describes one image acquisition. APIKey optionally carries a
// per-call credential override; it is threaded through explicitly and never
// written back into process-wide configuration.
type Request struct {
	Prompt string
	Size   Size
	APIKey string
}

// Provider is the contract implemented by all image providers: produce an
// image for a textual prompt and return the path to a locally stored file.
type Provider interface {
	Acquire(ctx context.Context, req Request) (string, error)
}

func generationErr(stage string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrGeneration, stage, err)
}
