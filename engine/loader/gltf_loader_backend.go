package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files.
// It delegates to the gltfImporter for parsing and extraction.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Parameters:
//   - frameRate: the clip resampling rate in keys per second
//   - skin: the index of the skin to build the skeleton from
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend(frameRate float32, skin int) gltfLoaderBackend {
	return &gltfLoaderBackendImpl{
		importer: newGLTFImporter(frameRate, skin),
	}
}

func (b *gltfLoaderBackendImpl) Load(path string) (model.Asset, error) {
	return b.importer.Import(path)
}

func (b *gltfLoaderBackendImpl) LoadReader(name string, r io.Reader, isGLB bool) (model.Asset, error) {
	return b.importer.ImportReader(name, r, isGLB)
}
