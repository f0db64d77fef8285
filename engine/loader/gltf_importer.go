package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	frameRate float32
	skin      int
}

// gltfImporter defines the interface for orchestrating a full glTF/GLB import.
// It combines the parser and both extractors to produce an Asset.
type gltfImporter interface {
	// Import loads a glTF/GLB file and extracts its skeleton and animations.
	//
	// Parameters:
	//   - path: the file path to the glTF or GLB file
	//
	// Returns:
	//   - model.Asset: the imported asset named after the file
	//   - error: error if import fails
	Import(path string) (model.Asset, error)

	// ImportReader loads a glTF document from a reader and extracts its skeleton and animations.
	//
	// Parameters:
	//   - name: the asset name
	//   - r: the reader providing glTF/GLB data
	//   - isGLB: true if the reader provides GLB binary data, false for glTF JSON
	//
	// Returns:
	//   - model.Asset: the imported asset
	//   - error: error if import fails
	ImportReader(name string, r io.Reader, isGLB bool) (model.Asset, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Parameters:
//   - frameRate: the clip resampling rate in keys per second
//   - skin: the index of the skin to build the skeleton from
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter(frameRate float32, skin int) gltfImporter {
	return &gltfImporterImpl{frameRate: frameRate, skin: skin}
}

func (imp *gltfImporterImpl) Import(path string) (model.Asset, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return imp.importFromParser(parser, name, path)
}

func (imp *gltfImporterImpl) ImportReader(name string, r io.Reader, isGLB bool) (model.Asset, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB); err != nil {
		return nil, fmt.Errorf("failed to parse from reader: %w", err)
	}

	return imp.importFromParser(parser, name, name)
}

// importFromParser extracts the skeleton first, then every animation that targets it.
func (imp *gltfImporterImpl) importFromParser(parser gltfParser, name, source string) (model.Asset, error) {
	skeleton, nodeToBone, err := newGLTFSkeletonExtractor(parser).ExtractSkeleton(imp.skin)
	if err != nil {
		return nil, fmt.Errorf("failed to extract skeleton: %w", err)
	}

	clips, err := newGLTFAnimationExtractor(parser, imp.frameRate).ExtractAnimationsForSkeleton(skeleton, nodeToBone)
	if err != nil {
		return nil, fmt.Errorf("failed to extract animations: %w", err)
	}

	return model.NewAsset(
		model.WithName(name),
		model.WithSource(source),
		model.WithSkeleton(skeleton),
		model.WithAnimations(clips),
	), nil
}
