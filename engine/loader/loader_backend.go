package loader

import (
	"github.com/Carmen-Shannon/ruins/engine/scene"
	"github.com/qmuntal/gltf"
)

// loaderBackend defines the generic interface for loading scene assets from files or documents.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load imports the asset at path into a node tree.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - scene.Node: the root node of the imported asset
	//   - error: error if loading fails
	Load(path string) (scene.Node, error)

	// LoadDocument imports an already decoded glTF document.
	//
	// Parameters:
	//   - name: the name of the returned root node
	//   - doc: the document, with its buffers loaded
	//   - baseDir: directory external image URIs are resolved against
	//
	// Returns:
	//   - scene.Node: the root node of the imported document
	//   - error: error if importing fails
	LoadDocument(name string, doc *gltf.Document, baseDir string) (scene.Node, error)
}
