package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// AssetStore manages the on-disk lifecycle of generated images and encoded
// videos. Intermediate images live in a flat assets directory; final videos
// land in a separate output directory. The trail is append-only: nothing in
// the pipeline ever deletes or overwrites an existing asset.
type AssetStore struct {
	assetsDir string
	outputDir string
}

// NewAssetStore initializes an AssetStore, creating both directories if
// absent.
func NewAssetStore(assetsDir, outputDir string) (*AssetStore, error) {
	assetsDir = strings.TrimSpace(assetsDir)
	outputDir = strings.TrimSpace(outputDir)
	if assetsDir == "" || outputDir == "" {
		return nil, errors.New("storage: assets and output directories are required")
	}
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure assets dir: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure output dir: %w", err)
	}
	return &AssetStore{assetsDir: assetsDir, outputDir: outputDir}, nil
}

// AssetsDir returns the directory holding intermediate images.
func (s *AssetStore) AssetsDir() string {
	if s == nil {
		return ""
	}
	return s.assetsDir
}

// OutputDir returns the directory holding final encoded videos.
func (s *AssetStore) OutputDir() string {
	if s == nil {
		return ""
	}
	return s.outputDir
}

// AssetPath reserves a collision-resistant path in the assets directory,
// e.g. mock_8f14e45f.png. Multiple scenes are generated per run, so names
// carry a random suffix instead of a counter.
func (s *AssetStore) AssetPath(prefix, ext string) string {
	return filepath.Join(s.assetsDir, uniqueName(prefix, ext))
}

// WriteAsset persists bytes under a fresh unique name in the assets
// directory and returns the full path.
func (s *AssetStore) WriteAsset(ctx context.Context, prefix, ext string, data []byte) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := s.AssetPath(prefix, ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write asset: %w", err)
	}
	return path, nil
}

// NewOutputName returns a fresh video filename in the standalone naming
// scheme, without the directory.
func (s *AssetStore) NewOutputName() string {
	return uniqueName("output_reel", "mp4")
}

// OutputPath resolves a video filename inside the output directory. The base
// name is sanitized so callers cannot escape the output area.
func (s *AssetStore) OutputPath(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." {
		name = s.NewOutputName()
	}
	if filepath.Ext(name) == "" {
		name += ".mp4"
	}
	return filepath.Join(s.outputDir, name)
}

func uniqueName(prefix, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return fmt.Sprintf("%s_%s.%s", prefix, uuid.NewString()[:8], ext)
}
