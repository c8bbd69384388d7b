package reel

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"liminal-reels/internal/domain"
)

func encodingErr(stage string, err error, output string) error {
	if err == nil {
		return fmt.Errorf("%w: %s", domain.ErrEncoding, stage)
	}
	output = strings.TrimSpace(output)
	if output != "" {
		return fmt.Errorf("%w: %s: %w: %s", domain.ErrEncoding, stage, err, output)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrEncoding, stage, err)
}

// Clip is one still image displayed for a fixed number of seconds.
type Clip struct {
	ImagePath string
	Seconds   int
}

// Encoder turns an ordered clip sequence into a single encoded video file.
type Encoder interface {
	Encode(ctx context.Context, clips []Clip, outputPath string) error
}

// FFmpegOptions configures the ffmpeg-backed encoder.
type FFmpegOptions struct {
	FFmpegPath string
	FrameRate  int
	Width      int
	Height     int
	AudioPath  string
	Logger     zerolog.Logger
}

// FFmpegEncoder renders each still into a short libx264 clip and joins them
// with the concat demuxer, a hard cut with no transition. Output uses
// yuv420p for broad player compatibility.
type FFmpegEncoder struct {
	ffmpegPath string
	frameRate  int
	width      int
	height     int
	audioPath  string
	logger     zerolog.Logger
}

// NewFFmpegEncoder constructs the encoder with defaults for the vertical
// reel format.
func NewFFmpegEncoder(opts FFmpegOptions) *FFmpegEncoder {
	path := strings.TrimSpace(opts.FFmpegPath)
	if path == "" {
		path = "ffmpeg"
	}
	fps := opts.FrameRate
	if fps <= 0 {
		fps = 24
	}
	w, h := opts.Width, opts.Height
	if w <= 0 || h <= 0 {
		w, h = 1024, 1792
	}
	return &FFmpegEncoder{
		ffmpegPath: path,
		frameRate:  fps,
		width:      w,
		height:     h,
		audioPath:  opts.AudioPath,
		logger:     opts.Logger,
	}
}

// Encode writes the final video only after every clip has been rendered;
// no partial output file is ever left behind on failure.
func (e *FFmpegEncoder) Encode(ctx context.Context, clips []Clip, outputPath string) error {
	if len(clips) == 0 {
		return encodingErr("no clips to encode", nil, "")
	}

	tempDir, err := os.MkdirTemp("", "reel_clips_*")
	if err != nil {
		return encodingErr("create temp dir", err, "")
	}
	defer os.RemoveAll(tempDir)

	clipPaths := make([]string, 0, len(clips))
	for i, clip := range clips {
		clipPath := filepath.Join(tempDir, fmt.Sprintf("clip_%02d.mp4", i))
		if err := e.renderStill(ctx, clip, clipPath); err != nil {
			return err
		}
		clipPaths = append(clipPaths, clipPath)
	}

	if err := e.concat(ctx, clipPaths, tempDir, outputPath); err != nil {
		// Never leave a broken container behind.
		_ = os.Remove(outputPath)
		return err
	}

	e.logger.Info().Str("output", outputPath).Int("clips", len(clips)).Msg("reel encoded")
	return nil
}

// renderStill loops a single image into a timed clip.
func (e *FFmpegEncoder) renderStill(ctx context.Context, clip Clip, outPath string) error {
	args := []string{
		"-y",
		"-loop", "1",
		"-i", clip.ImagePath,
		"-t", strconv.Itoa(clip.Seconds),
		"-c:v", "libx264",
		"-preset", "medium",
		"-r", strconv.Itoa(e.frameRate),
		"-vf", fmt.Sprintf("scale=%d:%d", e.width, e.height),
		"-pix_fmt", "yuv420p",
		outPath,
	}
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return encodingErr("render clip", err, string(out))
	}
	return nil
}

// concat joins the rendered clips via the concat demuxer, copying streams so
// the cut stays hard and re-encoding is avoided. When a background audio
// track is configured it is attached here, trimmed to the video length.
func (e *FFmpegEncoder) concat(ctx context.Context, clipPaths []string, tempDir, outputPath string) error {
	var list strings.Builder
	for _, p := range clipPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return encodingErr("resolve clip path", err, "")
		}
		fmt.Fprintf(&list, "file '%s'\n", abs)
	}
	listPath := filepath.Join(tempDir, "concat_list.txt")
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return encodingErr("write concat list", err, "")
	}

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
	}
	if e.audioPath != "" {
		args = append(args,
			"-i", e.audioPath,
			"-c:v", "copy",
			"-c:a", "aac",
			"-shortest",
		)
	} else {
		args = append(args, "-c", "copy")
	}
	args = append(args, outputPath)

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return encodingErr("concatenate clips", err, string(out))
	}
	return nil
}

var _ Encoder = (*FFmpegEncoder)(nil)
