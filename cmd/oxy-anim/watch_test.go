package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchAssetFiresForSiblingBuffer(t *testing.T) {
	dir := t.TempDir()
	asset := filepath.Join(dir, "fox.gltf")
	if err := os.WriteFile(asset, []byte("{}"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	changed := make(chan struct{}, 1)
	stop, err := watchAsset(asset, 10*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)), func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("watchAsset() error = %v", err)
	}
	defer stop()

	if err := os.WriteFile(filepath.Join(dir, "fox.bin"), []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported after writing the buffer file")
	}
}

func TestWatchAssetMissingDirectory(t *testing.T) {
	_, err := watchAsset(filepath.Join(t.TempDir(), "nope", "fox.glb"), time.Millisecond, slog.Default(), func() {})
	if err == nil {
		t.Fatal("watchAsset() error = nil, want error for a missing directory")
	}
}

func TestAssetStem(t *testing.T) {
	tests := map[string]string{
		"/a/b/fox.gltf": "fox",
		"fox.bin":       "fox",
		"dir/fox":       "fox",
		"fox.v2.glb":    "fox.v2",
	}
	for in, want := range tests {
		if got := assetStem(in); got != want {
			t.Errorf("assetStem(%q) = %q, want %q", in, got, want)
		}
	}
}
