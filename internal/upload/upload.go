// Package upload holds the social platform publishers. Real publishing
// needs per-platform API approval or browser automation, so the current
// implementations only log the intent and report success; callers must treat
// the result as informational and never gate on it.
package upload

import (
	"context"

	"github.com/rs/zerolog"
)

// Uploader publishes a finished reel with a caption to one platform.
type Uploader interface {
	Name() string
	Upload(ctx context.Context, videoPath, caption string) error
}

// TikTok is a placeholder TikTok publisher.
type TikTok struct {
	logger zerolog.Logger
}

// NewTikTok constructs the TikTok stub.
func NewTikTok(logger zerolog.Logger) *TikTok {
	return &TikTok{logger: logger}
}

func (u *TikTok) Name() string { return "tiktok" }

func (u *TikTok) Upload(ctx context.Context, videoPath, caption string) error {
	u.logger.Info().
		Str("platform", u.Name()).
		Str("video", videoPath).
		Str("caption", caption).
		Msg("upload stubbed, no network call performed")
	return nil
}

// Instagram is a placeholder Instagram publisher.
type Instagram struct {
	logger zerolog.Logger
}

// NewInstagram constructs the Instagram stub.
func NewInstagram(logger zerolog.Logger) *Instagram {
	return &Instagram{logger: logger}
}

func (u *Instagram) Name() string { return "instagram" }

func (u *Instagram) Upload(ctx context.Context, videoPath, caption string) error {
	u.logger.Info().
		Str("platform", u.Name()).
		Str("video", videoPath).
		Str("caption", caption).
		Msg("upload stubbed, no network call performed")
	return nil
}

// All returns every configured publisher.
func All(logger zerolog.Logger) []Uploader {
	return []Uploader{NewTikTok(logger), NewInstagram(logger)}
}

var (
	_ Uploader = (*TikTok)(nil)
	_ Uploader = (*Instagram)(nil)
)
