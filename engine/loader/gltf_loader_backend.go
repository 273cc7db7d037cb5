package loader

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/ruins/engine/scene"
	"github.com/qmuntal/gltf"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files.
// It delegates to the gltfImporter for extraction and node building.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend with its own decode pool.
//
// Parameters:
//   - workers: the maximum number of decode goroutines
//   - options: classifier and shadow flags applied to mesh nodes
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend(workers int, options importOptions) gltfLoaderBackend {
	// idle workers exit after a second, so a finished load leaves no goroutines behind
	pool := worker.NewDynamicWorkerPool(workers, 256, 1*time.Second)
	return &gltfLoaderBackendImpl{
		importer: newGLTFImporter(pool, options),
	}
}

func (b *gltfLoaderBackendImpl) Load(path string) (scene.Node, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return b.importer.Import(name, doc, filepath.Dir(path))
}

func (b *gltfLoaderBackendImpl) LoadDocument(name string, doc *gltf.Document, baseDir string) (scene.Node, error) {
	return b.importer.Import(name, doc, baseDir)
}
