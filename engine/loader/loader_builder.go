package loader

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithFrameRate is an option builder that sets the rate clips are resampled to.
// Non-positive rates are ignored.
//
// Parameters:
//   - fps: keys per second stored in every imported track
//
// Returns:
//   - LoaderBuilderOption: a function that applies the frame rate option to a loader
func WithFrameRate(fps float32) LoaderBuilderOption {
	return func(l *loader) {
		if fps > 0 {
			l.frameRate = fps
		}
	}
}

// WithSkin is an option builder that selects which glTF skin provides the skeleton.
//
// Parameters:
//   - index: the skin index, 0 by default
//
// Returns:
//   - LoaderBuilderOption: a function that applies the skin option to a loader
func WithSkin(index int) LoaderBuilderOption {
	return func(l *loader) {
		l.skin = index
	}
}

// WithAsset is an option builder that pre-populates the asset cache with an asset.
//
// Parameters:
//   - key: the cache key for the asset
//   - asset: the asset to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the asset option to a loader
func WithAsset(key string, asset model.Asset) LoaderBuilderOption {
	return func(l *loader) {
		l.assetCache[key] = asset
	}
}

// WithLogger is an option builder that sets the logger used for load diagnostics.
//
// Parameters:
//   - logger: the structured logger
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}
