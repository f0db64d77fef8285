package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// loaderBackend defines the generic interface for loading animation assets from files or streams.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load performs a full asset import from the given file path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - model.Asset: the imported skeleton and clips
	//   - error: error if loading fails
	Load(path string) (model.Asset, error)

	// LoadReader imports an asset from a reader stream.
	//
	// Parameters:
	//   - name: the asset name
	//   - r: the reader providing asset data
	//   - isGLB: true if the reader provides GLB binary data, false for text-based formats
	//
	// Returns:
	//   - model.Asset: the imported skeleton and clips
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (model.Asset, error)
}
