package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce collapses the burst of events an editor or exporter produces for one save.
const watchDebounce = 200 * time.Millisecond

// watchAsset calls onChange after an asset file, or a sibling sharing its base name such as the .bin
// buffer of a .gltf, is written or replaced. The directory is watched rather than the file so atomic
// renames are seen. onChange runs on a timer goroutine, never concurrently with itself.
//
// Parameters:
//   - path: the asset path
//   - debounce: quiet time required before onChange fires
//   - logger: receives watcher errors
//   - onChange: the reload callback
//
// Returns:
//   - func() error: stops the watcher
//   - error: error if the watcher could not be started
func watchAsset(path string, debounce time.Duration, logger *slog.Logger, onChange func()) (func() error, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	stem := assetStem(path)
	var mu sync.Mutex
	var timer *time.Timer
	var fire sync.Mutex

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if assetStem(ev.Name) != stem {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				logger.Debug("asset changed", "file", ev.Name, "op", ev.Op.String())
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, func() {
					fire.Lock()
					defer fire.Unlock()
					onChange()
				})
				mu.Unlock()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("asset watcher error", "error", err)
			}
		}
	}()

	stop := func() error {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		return w.Close()
	}
	return stop, nil
}

func assetStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
