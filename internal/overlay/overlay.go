// Package overlay burns caption text and decorative arrow glyphs into
// generated images. Rendering is best-effort: a reel without an overlay is
// preferable to no reel at all, so failures degrade to the original image
// instead of aborting the composition.
package overlay

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"liminal-reels/internal/storage"
)

const captionPointSize = 80

// Candidate monospace fonts tried before falling back to the built-in face.
var defaultFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSansMono-Bold.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSansMono.ttf",
	"/System/Library/Fonts/Monaco.ttf",
}

// Engine annotates images with captions and arrows.
type Engine struct {
	store    *storage.AssetStore
	logger   zerolog.Logger
	fontPath string
}

// Result is the explicit two-outcome annotation result: either a new
// annotated file, or the untouched original path with the failure reason
// when rendering degraded.
type Result struct {
	Path     string
	Degraded bool
	Err      error
}

// NewEngine constructs an Engine. fontPath optionally points at a preferred
// TTF; when empty a list of common monospace fonts is tried.
func NewEngine(store *storage.AssetStore, logger zerolog.Logger, fontPath string) *Engine {
	return &Engine{store: store, logger: logger, fontPath: fontPath}
}

// Annotate renders the caption (and optionally two arrow glyphs) onto a copy
// of the source image and returns the path of the new file. The input file
// is never modified. Any failure yields a degraded Result carrying the
// original path; Annotate never returns an error that should abort a
// composition.
func (e *Engine) Annotate(ctx context.Context, imagePath, caption string, drawArrows bool) Result {
	path, err := e.annotate(ctx, imagePath, caption, drawArrows)
	if err != nil {
		e.logger.Warn().Err(err).Str("image", imagePath).Msg("overlay failed, using original image")
		return Result{Path: imagePath, Degraded: true, Err: err}
	}
	return Result{Path: path}
}

func (e *Engine) annotate(ctx context.Context, imagePath, caption string, drawArrows bool) (string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("open source image: %w", err)
	}
	src, _, err := image.Decode(f)
	_ = f.Close()
	if err != nil {
		return "", fmt.Errorf("decode source image: %w", err)
	}

	bounds := src.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, src, bounds.Min, draw.Src)

	w := bounds.Dx()
	h := bounds.Dy()

	face := e.loadFace()
	defer func() {
		_ = face.Close()
	}()

	// Approximate placement: a fixed offset from the bottom center. Exact
	// glyph-width centering would need metrics the fallback face cannot
	// guarantee.
	anchorX := w/2 - 200
	anchorY := h - 400

	// Three dark offset draws simulate an outline, then the light caption
	// lands at the true anchor. Legible against arbitrary backgrounds even
	// with the fallback face.
	for _, off := range []image.Point{{X: -2, Y: -2}, {X: 2, Y: 2}, {X: 2, Y: -2}} {
		drawText(canvas, face, caption, anchorX+off.X, anchorY+off.Y, color.Black)
	}
	drawText(canvas, face, caption, anchorX, anchorY, color.White)

	if drawArrows {
		// Two arrows cue the viewer toward the symmetric focal points
		// (the doors), near the horizontal quarter-points.
		drawArrow(canvas,
			image.Pt(100, h/2), image.Pt(250, h/2-50),
			image.Pt(220, h/2-20), image.Pt(200, h/2-60))
		drawArrow(canvas,
			image.Pt(w-100, h/2), image.Pt(w-250, h/2-50),
			image.Pt(w-220, h/2-20), image.Pt(w-200, h/2-60))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return "", fmt.Errorf("encode annotated image: %w", err)
	}
	path, err := e.store.WriteAsset(ctx, "overlay", "png", buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("write annotated image: %w", err)
	}
	return path, nil
}

// loadFace attempts the preferred font at a fixed large point size and falls
// back to the minimal built-in face. Callers must not assume a specific
// rendered text size.
func (e *Engine) loadFace() font.Face {
	candidates := defaultFontPaths
	if e.fontPath != "" {
		candidates = append([]string{e.fontPath}, candidates...)
	}
	for _, path := range candidates {
		fontBytes, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		parsed, err := opentype.Parse(fontBytes)
		if err != nil {
			continue
		}
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    captionPointSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			continue
		}
		return face
	}
	e.logger.Debug().Msg("no truetype font available, using built-in face")
	return basicfont.Face7x13
}

func drawText(dst *image.RGBA, face font.Face, text string, x, y int, col color.Color) {
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}

const arrowStroke = 15

// drawArrow renders a shaft from tail to head plus two short barb segments
// forming a rough arrowhead.
func drawArrow(dst *image.RGBA, tail, head, barbA, barbB image.Point) {
	drawSegment(dst, tail, head)
	drawSegment(dst, head, barbA)
	drawSegment(dst, head, barbB)
}

// drawSegment stamps a thick line between two points. A square brush along
// the interpolated path is plenty for hand-drawn-looking arrows.
func drawSegment(dst *image.RGBA, p0, p1 image.Point) {
	dx := p1.X - p0.X
	dy := p1.Y - p0.Y
	steps := abs(dx)
	if abs(dy) > steps {
		steps = abs(dy)
	}
	if steps == 0 {
		steps = 1
	}
	half := arrowStroke / 2
	for i := 0; i <= steps; i++ {
		x := p0.X + dx*i/steps
		y := p0.Y + dy*i/steps
		for by := -half; by <= half; by++ {
			for bx := -half; bx <= half; bx++ {
				px, py := x+bx, y+by
				if image.Pt(px, py).In(dst.Bounds()) {
					dst.Set(px, py, color.Black)
				}
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
