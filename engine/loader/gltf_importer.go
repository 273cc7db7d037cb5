package loader

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/ruins/engine/renderer/material"
	"github.com/Carmen-Shannon/ruins/engine/scene"
	"github.com/qmuntal/gltf"
)

// ErrUnsupportedExtension is returned for documents that require an extension
// the loader cannot decode.
var ErrUnsupportedExtension = errors.New("unsupported required glTF extension")

// importOptions carries the per-load node settings.
type importOptions struct {
	classifier    scene.Classifier
	castShadow    bool
	receiveShadow bool
}

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	pool    worker.DynamicWorkerPool
	options importOptions
}

// gltfImporter defines the interface for orchestrating a full glTF import.
// It combines the mesh and material extractors into a node hierarchy.
type gltfImporter interface {
	// Import converts a decoded glTF document into a node tree.
	//
	// Parameters:
	//   - name: the name of the returned root node
	//   - doc: the glTF document with its buffers loaded
	//   - baseDir: directory external image URIs are resolved against
	//
	// Returns:
	//   - scene.Node: a root node holding every scene root of the document
	//   - error: ErrUnsupportedExtension, or any decode failure
	Import(name string, doc *gltf.Document, baseDir string) (scene.Node, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Parameters:
//   - pool: the worker pool primitive and image decoding run on
//   - options: classifier and shadow flags applied to mesh nodes
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter(pool worker.DynamicWorkerPool, options importOptions) gltfImporter {
	return &gltfImporterImpl{pool: pool, options: options}
}

func (imp *gltfImporterImpl) Import(name string, doc *gltf.Document, baseDir string) (scene.Node, error) {
	if err := checkExtensions(doc); err != nil {
		return nil, err
	}

	primitives, err := newGLTFMeshExtractor(doc, imp.pool).ExtractAll()
	if err != nil {
		return nil, fmt.Errorf("failed to extract meshes: %w", err)
	}
	materials, err := newGLTFMaterialExtractor(doc, baseDir, imp.pool).ExtractAll()
	if err != nil {
		return nil, fmt.Errorf("failed to extract materials: %w", err)
	}

	b := &nodeTreeBuilder{
		doc:        doc,
		primitives: primitives,
		materials:  materials,
		options:    imp.options,
		visiting:   make(map[int]bool),
	}

	root := scene.NewNode(name)
	for _, idx := range sceneRoots(doc) {
		n, err := b.build(idx)
		if err != nil {
			return nil, err
		}
		root.AddChild(n)
	}
	return root, nil
}

// checkExtensions rejects documents requiring an extension listed in
// unsupportedExtensions.
func checkExtensions(doc *gltf.Document) error {
	for _, ext := range doc.ExtensionsRequired {
		if slices.Contains(unsupportedExtensions, ext) {
			return fmt.Errorf("%w: %s", ErrUnsupportedExtension, ext)
		}
	}
	return nil
}

// sceneRoots returns the root node indices of the default scene. Documents
// without scenes use every node that no other node lists as a child.
func sceneRoots(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		s := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			s = *doc.Scene
		}
		return doc.Scenes[s].Nodes
	}

	child := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(child) {
				child[c] = true
			}
		}
	}
	var roots []int
	for i, isChild := range child {
		if !isChild {
			roots = append(roots, i)
		}
	}
	return roots
}

// nodeTreeBuilder turns glTF nodes into scene nodes once meshes and materials
// are decoded.
type nodeTreeBuilder struct {
	doc        *gltf.Document
	primitives map[primitiveKey]importedPrimitive
	materials  []material.Material
	options    importOptions
	visiting   map[int]bool

	// fallback is the glTF default material, shared by primitives without one.
	fallback material.Material
}

func (b *nodeTreeBuilder) build(index int) (scene.Node, error) {
	if index < 0 || index >= len(b.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", index)
	}
	if b.visiting[index] {
		return nil, fmt.Errorf("node %d is part of a cycle", index)
	}
	b.visiting[index] = true
	defer delete(b.visiting, index)

	gn := b.doc.Nodes[index]
	name := sanitizeNodeName(gn.Name)
	if name == "" {
		name = fmt.Sprintf("node_%d", index)
	}
	t, r, s := nodeTransform(gn)

	options := []scene.NodeBuilderOption{
		scene.WithPosition(t),
		scene.WithRotation(r),
		scene.WithScale(s),
	}
	class := b.classify(name)
	if class != scene.ClassNormal {
		options = append(options, scene.WithClass(class))
	}

	var children []scene.Node
	if gn.Mesh != nil {
		meshParts := b.meshParts(*gn.Mesh)
		switch len(meshParts) {
		case 0:
		case 1:
			options = append(options, b.meshOptions(meshParts[0])...)
		default:
			meshName := name
			if m := *gn.Mesh; m >= 0 && m < len(b.doc.Meshes) && b.doc.Meshes[m].Name != "" {
				meshName = sanitizeNodeName(b.doc.Meshes[m].Name)
			}
			for i, part := range meshParts {
				partOptions := b.meshOptions(part)
				if class != scene.ClassNormal {
					partOptions = append(partOptions, scene.WithClass(class))
				}
				children = append(children, scene.NewNode(fmt.Sprintf("%s_%d", meshName, i), partOptions...))
			}
		}
	}

	for _, c := range gn.Children {
		child, err := b.build(c)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	if len(children) > 0 {
		options = append(options, scene.WithChildren(children...))
	}
	return scene.NewNode(name, options...), nil
}

// meshParts returns the decoded primitives of a mesh in primitive order.
func (b *nodeTreeBuilder) meshParts(mesh int) []importedPrimitive {
	if mesh < 0 || mesh >= len(b.doc.Meshes) {
		return nil
	}
	var parts []importedPrimitive
	for p := range b.doc.Meshes[mesh].Primitives {
		if part, ok := b.primitives[primitiveKey{mesh: mesh, primitive: p}]; ok {
			parts = append(parts, part)
		}
	}
	return parts
}

func (b *nodeTreeBuilder) meshOptions(part importedPrimitive) []scene.NodeBuilderOption {
	options := []scene.NodeBuilderOption{
		scene.WithMesh(part.mesh),
		scene.WithShadows(b.options.castShadow, b.options.receiveShadow),
	}
	if part.material >= 0 && part.material < len(b.materials) {
		return append(options, scene.WithMaterial(b.materials[part.material]))
	}
	return append(options, scene.WithMaterial(b.defaultMaterial()))
}

// defaultMaterial returns the material glTF prescribes for primitives that
// reference none. Every mesh node therefore carries a material and takes part
// in bloom masking.
func (b *nodeTreeBuilder) defaultMaterial() material.Material {
	if b.fallback == nil {
		b.fallback = convertMaterial(&gltf.Material{Name: defaultMaterialName}, 0, nil)
	}
	return b.fallback
}

func (b *nodeTreeBuilder) classify(name string) scene.Class {
	if b.options.classifier == nil {
		return scene.ClassNormal
	}
	return b.options.classifier(name)
}
