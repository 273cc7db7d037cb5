package loader

import (
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/ruins/engine/scene"
	"github.com/qmuntal/gltf"
)

// LoaderBackendType identifies the asset file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	logger  *slog.Logger
	workers int
	options importOptions

	nodeCache map[string]scene.Node

	backend loaderBackend
}

// Loader defines the public-facing interface for loading and caching scene assets.
// It abstracts the file format behind a generic backend and manages a cache of
// previously loaded node trees.
type Loader interface {
	// Load imports an asset file and caches the result.
	// If the asset is already cached (by file path), the cached tree is returned.
	// The backend is selected based on the file extension (.gltf/.glb → glTF backend).
	//
	// Parameters:
	//   - path: the file path to the asset
	//
	// Returns:
	//   - scene.Node: the root node of the asset
	//   - error: ErrUnsupportedExtension, an unsupported format, or a decode failure
	Load(path string) (scene.Node, error)

	// LoadDocument imports an in-memory glTF document and caches it by name.
	//
	// Parameters:
	//   - name: the cache key and root node name
	//   - doc: the document with its buffers loaded
	//   - baseDir: directory external image URIs are resolved against
	//
	// Returns:
	//   - scene.Node: the root node of the document
	//   - error: error if importing fails
	LoadDocument(name string, doc *gltf.Document, baseDir string) (scene.Node, error)

	// Get retrieves a cached node tree by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - scene.Node: the cached root node or nil
	Get(name string) scene.Node

	// Nodes returns a copy of the cache.
	Nodes() map[string]scene.Node
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
// Mesh nodes cast and receive shadows unless WithShadows says otherwise.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:        sync.RWMutex{},
		logger:    slog.Default(),
		workers:   runtime.NumCPU(),
		options:   importOptions{castShadow: true, receiveShadow: true},
		nodeCache: make(map[string]scene.Node),
	}

	for _, option := range options {
		option(l)
	}

	// the backend owns the worker pool, so it is built after WithWorkers applies
	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend(max(l.workers, 1), l.options)
	}
	return l
}

func (l *loader) Load(path string) (scene.Node, error) {
	l.mu.RLock()
	if cached, ok := l.nodeCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	root, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	l.logLoaded(path, root, start)

	l.mu.Lock()
	l.nodeCache[path] = root
	l.mu.Unlock()

	return root, nil
}

func (l *loader) LoadDocument(name string, doc *gltf.Document, baseDir string) (scene.Node, error) {
	l.mu.RLock()
	if cached, ok := l.nodeCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	if l.backend == nil {
		return nil, fmt.Errorf("no loader backend configured")
	}

	start := time.Now()
	root, err := l.backend.LoadDocument(name, doc, baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load document %q: %w", name, err)
	}
	l.logLoaded(name, root, start)

	l.mu.Lock()
	l.nodeCache[name] = root
	l.mu.Unlock()

	return root, nil
}

func (l *loader) Get(name string) scene.Node {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.nodeCache[name]
}

func (l *loader) Nodes() map[string]scene.Node {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.nodeCache)
}

// resolveBackend selects an appropriate loader backend based on the file extension.
// Currently only glTF/GLB is supported.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		if l.backend == nil {
			return nil, fmt.Errorf("no loader backend configured for %s", ext)
		}
		return l.backend, nil
	default:
		return nil, fmt.Errorf("unsupported asset format: %q", ext)
	}
}

func (l *loader) logLoaded(name string, root scene.Node, start time.Time) {
	nodes, meshes := 0, 0
	var count func(n scene.Node)
	count = func(n scene.Node) {
		nodes++
		if n.Mesh() != nil {
			meshes++
		}
		for _, c := range n.Children() {
			count(c)
		}
	}
	count(root)
	l.logger.Info("Asset loaded",
		slog.String("asset", name),
		slog.Int("nodes", nodes),
		slog.Int("meshes", meshes),
		slog.Duration("took", time.Since(start)),
	)
}
