package image

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math/rand"

	"github.com/rs/zerolog"

	"liminal-reels/internal/storage"
)

// MockProvider synthesizes a single-color placeholder frame instead of
// calling the generation service. It ignores the prompt's semantic content
// and never performs network I/O, which makes offline and no-credential
// runs possible.
type MockProvider struct {
	store  *storage.AssetStore
	logger zerolog.Logger
}

// NewMockProvider constructs a MockProvider writing into the given store.
func NewMockProvider(store *storage.AssetStore, logger zerolog.Logger) *MockProvider {
	return &MockProvider{store: store, logger: logger}
}

// Acquire writes a dark solid-color PNG of the requested aspect ratio to a
// uniquely named file and returns its path.
func (p *MockProvider) Acquire(ctx context.Context, req Request) (string, error) {
	w, h := req.Size.Dimensions()

	// Dark, near-black fill keeps the light caption overlay legible.
	fill := color.RGBA{
		R: uint8(rand.Intn(51)),
		G: uint8(rand.Intn(51)),
		B: uint8(rand.Intn(51)),
		A: 255,
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: fill}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", generationErr("encode placeholder", err)
	}
	path, err := p.store.WriteAsset(ctx, "mock", "png", buf.Bytes())
	if err != nil {
		return "", generationErr("write placeholder", err)
	}
	p.logger.Debug().Str("path", path).Msg("mock image generated")
	return path, nil
}

var _ Provider = (*MockProvider)(nil)
