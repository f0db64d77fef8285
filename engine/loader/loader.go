package loader

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// LoaderBackendType identifies the asset file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// DefaultFrameRate is the rate clips are resampled to when WithFrameRate is not given.
const DefaultFrameRate float32 = 30

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	assetCache map[string]model.Asset

	backendType LoaderBackendType
	backend     loaderBackend
	frameRate   float32
	skin        int
	logger      *slog.Logger
}

// Loader defines the public-facing interface for loading and caching animation assets.
// It abstracts the file format (glTF, GLB, etc.) behind a generic backend and
// manages a cache of previously loaded assets.
type Loader interface {
	// Load imports an asset file and caches the result.
	// If the asset is already cached (by file path), the cached version is returned.
	// The backend is selected based on the file extension (.gltf/.glb → glTF backend).
	//
	// Parameters:
	//   - path: the file path to the asset file
	//
	// Returns:
	//   - model.Asset: the loaded and cached asset
	//   - error: error if loading fails
	Load(path string) (model.Asset, error)

	// Reload imports an asset file regardless of the cache and replaces the cached entry.
	// On failure the previous entry is kept.
	//
	// Parameters:
	//   - path: the file path to the asset file
	//
	// Returns:
	//   - model.Asset: the freshly loaded asset
	//   - error: error if loading fails
	Reload(path string) (model.Asset, error)

	// LoadReader imports an asset from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded asset
	//   - r: the reader providing asset data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - model.Asset: the loaded asset
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (model.Asset, error)

	// Get retrieves a cached asset by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - model.Asset: the cached asset or nil
	Get(name string) model.Asset

	// Assets returns a copy of the asset cache.
	//
	// Returns:
	//   - map[string]model.Asset: all cached assets keyed by name
	Assets() map[string]model.Asset
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:          sync.RWMutex{},
		assetCache:  make(map[string]model.Asset),
		backendType: backendType,
		frameRate:   DefaultFrameRate,
		logger:      slog.Default(),
	}

	for _, option := range options {
		option(l)
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend(l.frameRate, l.skin)
	}
	return l
}

func (l *loader) Load(path string) (model.Asset, error) {
	l.mu.RLock()
	if cached, ok := l.assetCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	return l.Reload(path)
}

func (l *loader) Reload(path string) (model.Asset, error) {
	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	a, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	l.store(path, a)
	return a, nil
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (model.Asset, error) {
	l.mu.RLock()
	if cached, ok := l.assetCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	if l.backend == nil {
		return nil, fmt.Errorf("no loader backend for type %d", l.backendType)
	}

	a, err := l.backend.LoadReader(name, r, isGLB)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	l.store(name, a)
	return a, nil
}

func (l *loader) Get(name string) model.Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.assetCache[name]
}

func (l *loader) Assets() map[string]model.Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]model.Asset, len(l.assetCache))
	for k, v := range l.assetCache {
		result[k] = v
	}
	return result
}

func (l *loader) store(key string, a model.Asset) {
	l.mu.Lock()
	l.assetCache[key] = a
	l.mu.Unlock()

	l.logger.Debug("asset loaded",
		"key", key,
		"bones", a.Skeleton().BoneCount(),
		"clips", a.AnimationCount(),
	)
}

// resolveBackend selects an appropriate loader backend based on the file extension.
// Currently only glTF/GLB is supported.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		if l.backend != nil {
			return l.backend, nil
		}
	}
	return nil, fmt.Errorf("unsupported asset format: %s", ext)
}
