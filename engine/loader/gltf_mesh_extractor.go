package loader

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/ruins/engine/scene"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	doc  *gltf.Document
	pool worker.DynamicWorkerPool
}

// gltfMeshExtractor converts glTF primitives into scene meshes.
type gltfMeshExtractor interface {
	// ExtractAll decodes every primitive of every mesh on the worker pool and
	// waits for all of them.
	//
	// Returns:
	//   - map[primitiveKey]importedPrimitive: decoded primitives; unsupported modes are absent
	//   - error: every decode failure joined
	ExtractAll() (map[primitiveKey]importedPrimitive, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a mesh extractor for doc.
//
// Parameters:
//   - doc: the glTF document with loaded buffers
//   - pool: the worker pool decode tasks run on
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(doc *gltf.Document, pool worker.DynamicWorkerPool) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{doc: doc, pool: pool}
}

func (e *gltfMeshExtractorImpl) ExtractAll() (map[primitiveKey]importedPrimitive, error) {
	var keys []primitiveKey
	for m, mesh := range e.doc.Meshes {
		for p := range mesh.Primitives {
			keys = append(keys, primitiveKey{mesh: m, primitive: p})
		}
	}

	results := make([]*importedPrimitive, len(keys))
	errs := make([]error, len(keys))

	// the pool's own Wait blocks until workers idle out, so a WaitGroup is the barrier
	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		id, k := i, key
		e.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				results[id], errs[id] = e.extractPrimitive(k)
				return nil, errs[id]
			},
		})
	}
	wg.Wait()

	out := make(map[primitiveKey]importedPrimitive, len(keys))
	for i, r := range results {
		if r != nil {
			out[keys[i]] = *r
		}
	}
	return out, errors.Join(errs...)
}

// extractPrimitive decodes one primitive. It returns nil without error for
// point primitives, which are not drawn.
func (e *gltfMeshExtractorImpl) extractPrimitive(key primitiveKey) (*importedPrimitive, error) {
	gm := e.doc.Meshes[key.mesh]
	prim := gm.Primitives[key.primitive]
	if prim.Mode == gltf.PrimitivePoints {
		return nil, nil
	}

	accessor := func(name string) (*gltf.Accessor, bool) {
		idx, ok := prim.Attributes[name]
		if !ok || idx < 0 || idx >= len(e.doc.Accessors) {
			return nil, false
		}
		return e.doc.Accessors[idx], true
	}

	posAcr, ok := accessor(gltf.POSITION)
	if !ok {
		return nil, fmt.Errorf("mesh %q primitive %d: no POSITION attribute", gm.Name, key.primitive)
	}
	positions, err := modeler.ReadPosition(e.doc, posAcr, nil)
	if err != nil {
		return nil, fmt.Errorf("mesh %q primitive %d: positions: %w", gm.Name, key.primitive, err)
	}

	vertices := make([]scene.GPUVertex, len(positions))
	for i, p := range positions {
		vertices[i] = scene.GPUVertex{Position: p, Color: [4]float32{1, 1, 1, 1}}
	}

	hasNormals := false
	if acr, ok := accessor(gltf.NORMAL); ok {
		normals, err := modeler.ReadNormal(e.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: normals: %w", gm.Name, key.primitive, err)
		}
		for i := range min(len(normals), len(vertices)) {
			vertices[i].Normal = normals[i]
		}
		hasNormals = true
	}

	if acr, ok := accessor(gltf.TEXCOORD_0); ok {
		uvs, err := modeler.ReadTextureCoord(e.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: uvs: %w", gm.Name, key.primitive, err)
		}
		for i := range min(len(uvs), len(vertices)) {
			vertices[i].TexCoord = uvs[i]
		}
	}

	if acr, ok := accessor(gltf.COLOR_0); ok {
		colors, err := readColors(e.doc, acr)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: colours: %w", gm.Name, key.primitive, err)
		}
		for i := range min(len(colors), len(vertices)) {
			vertices[i].Color = colors[i]
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if *prim.Indices < 0 || *prim.Indices >= len(e.doc.Accessors) {
			return nil, fmt.Errorf("mesh %q primitive %d: index accessor %d out of range", gm.Name, key.primitive, *prim.Indices)
		}
		indices, err = modeler.ReadIndices(e.doc, e.doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: indices: %w", gm.Name, key.primitive, err)
		}
	} else {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	mesh := &scene.Mesh{
		Name:     gm.Name,
		Vertices: vertices,
	}
	switch prim.Mode {
	case gltf.PrimitiveLines, gltf.PrimitiveLineStrip, gltf.PrimitiveLineLoop:
		mesh.Topology = scene.TopologyLines
		mesh.Indices = lineList(prim.Mode, indices)
	default:
		mesh.Topology = scene.TopologyTriangles
		mesh.Indices = triangulate(prim.Mode, indices)
		if !hasNormals {
			mesh.GenerateNormals()
		}
	}

	material := -1
	if prim.Material != nil {
		material = *prim.Material
	}
	return &importedPrimitive{mesh: mesh, material: material}, nil
}

// readColors reads a COLOR_0 accessor of any allowed component layout as
// linear RGBA floats.
func readColors(doc *gltf.Document, acr *gltf.Accessor) ([][4]float32, error) {
	data, err := modeler.ReadAccessor(doc, acr, nil)
	if err != nil {
		return nil, err
	}
	switch v := data.(type) {
	case [][4]float32:
		return v, nil
	case [][3]float32:
		out := make([][4]float32, len(v))
		for i, c := range v {
			out[i] = [4]float32{c[0], c[1], c[2], 1}
		}
		return out, nil
	case [][4]uint8:
		out := make([][4]float32, len(v))
		for i, c := range v {
			out[i] = [4]float32{float32(c[0]) / 255, float32(c[1]) / 255, float32(c[2]) / 255, float32(c[3]) / 255}
		}
		return out, nil
	case [][3]uint8:
		out := make([][4]float32, len(v))
		for i, c := range v {
			out[i] = [4]float32{float32(c[0]) / 255, float32(c[1]) / 255, float32(c[2]) / 255, 1}
		}
		return out, nil
	case [][4]uint16:
		out := make([][4]float32, len(v))
		for i, c := range v {
			out[i] = [4]float32{float32(c[0]) / 65535, float32(c[1]) / 65535, float32(c[2]) / 65535, float32(c[3]) / 65535}
		}
		return out, nil
	case [][3]uint16:
		out := make([][4]float32, len(v))
		for i, c := range v {
			out[i] = [4]float32{float32(c[0]) / 65535, float32(c[1]) / 65535, float32(c[2]) / 65535, 1}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported colour layout %T", data)
	}
}
