package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewAssetStoreCreatesDirectories(t *testing.T) {
	root := t.TempDir()
	assets := filepath.Join(root, "assets")
	output := filepath.Join(root, "static", "output")

	store, err := NewAssetStore(assets, output)
	if err != nil {
		t.Fatalf("NewAssetStore returned error: %v", err)
	}
	for _, dir := range []string{assets, output} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("directory %s not created: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("%s is not a directory", dir)
		}
	}
	if store.AssetsDir() != assets || store.OutputDir() != output {
		t.Fatalf("store dirs = %q / %q, want %q / %q", store.AssetsDir(), store.OutputDir(), assets, output)
	}
}

func TestNewAssetStoreRequiresDirectories(t *testing.T) {
	if _, err := NewAssetStore("", "out"); err == nil {
		t.Fatal("expected error for empty assets dir")
	}
	if _, err := NewAssetStore("assets", "  "); err == nil {
		t.Fatal("expected error for empty output dir")
	}
}

func TestWriteAssetUniqueNames(t *testing.T) {
	store, err := NewAssetStore(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("NewAssetStore returned error: %v", err)
	}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		path, err := store.WriteAsset(context.Background(), "mock", "png", []byte("payload"))
		if err != nil {
			t.Fatalf("WriteAsset returned error: %v", err)
		}
		if seen[path] {
			t.Fatalf("duplicate asset path %s", path)
		}
		seen[path] = true
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("asset %s not on disk: %v", path, err)
		}
	}
}

func TestWriteAssetHonorsCancelledContext(t *testing.T) {
	store, err := NewAssetStore(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("NewAssetStore returned error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.WriteAsset(ctx, "gen", "png", []byte("x")); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestOutputPathSanitizesName(t *testing.T) {
	store, err := NewAssetStore(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("NewAssetStore returned error: %v", err)
	}

	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "reel.mp4", want: "reel.mp4"},
		{name: "traversal", in: "../../etc/passwd.mp4", want: "passwd.mp4"},
		{name: "missing_ext", in: "reel", want: "reel.mp4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := store.OutputPath(tc.in)
			if filepath.Dir(got) != store.OutputDir() {
				t.Fatalf("OutputPath escaped output dir: %s", got)
			}
			if filepath.Base(got) != tc.want {
				t.Fatalf("OutputPath base = %q, want %q", filepath.Base(got), tc.want)
			}
		})
	}
}

func TestNewOutputNameScheme(t *testing.T) {
	store, err := NewAssetStore(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("NewAssetStore returned error: %v", err)
	}
	name := store.NewOutputName()
	if !strings.HasPrefix(name, "output_reel_") || !strings.HasSuffix(name, ".mp4") {
		t.Fatalf("NewOutputName = %q, want output_reel_*.mp4", name)
	}
	if name == store.NewOutputName() {
		t.Fatal("consecutive output names should differ")
	}
}
