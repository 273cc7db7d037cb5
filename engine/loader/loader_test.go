package loader

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/ruins/common"
	"github.com/Carmen-Shannon/ruins/engine/scene"
)

func TestSanitizeNodeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"glyph", "glyph"},
		{"glyph.001", "glyph001"},
		{"stone wall", "stone_wall"},
		{"a[b]:c/d\\e", "abcde"},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, sanitizeNodeName(tc.in), tc.in)
	}
}

func TestNodeTransformDefaults(t *testing.T) {
	pos, rot, scale := nodeTransform(&gltf.Node{Translation: [3]float64{1, 2, 3}})

	assert.Equal(t, common.Vec3{1, 2, 3}, pos)
	assert.Equal(t, common.QuatIdentity, rot)
	assert.Equal(t, common.Vec3{1, 1, 1}, scale)
}

func TestNodeTransformMatrix(t *testing.T) {
	// 90° about Y, scale 2, translation (4,5,6), column-major
	n := &gltf.Node{Matrix: [16]float64{
		0, 0, -2, 0,
		0, 2, 0, 0,
		2, 0, 0, 0,
		4, 5, 6, 1,
	}}
	pos, rot, scale := nodeTransform(n)

	assert.Equal(t, common.Vec3{4, 5, 6}, pos)
	for i := range 3 {
		assert.InDelta(t, 2, scale[i], 1e-5)
	}
	half := float32(0.70710677)
	assert.InDelta(t, 0, rot[0], 1e-5)
	assert.InDelta(t, half, rot[1], 1e-5)
	assert.InDelta(t, 0, rot[2], 1e-5)
	assert.InDelta(t, half, rot[3], 1e-5)
}

func TestTriangulate(t *testing.T) {
	strip := triangulate(gltf.PrimitiveTriangleStrip, []uint32{0, 1, 2, 3})
	assert.Equal(t, []uint32{0, 1, 2, 2, 1, 3}, strip)

	fan := triangulate(gltf.PrimitiveTriangleFan, []uint32{0, 1, 2, 3})
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, fan)

	list := []uint32{0, 1, 2}
	assert.Equal(t, list, triangulate(gltf.PrimitiveTriangles, list))
	assert.Empty(t, triangulate(gltf.PrimitiveTriangleStrip, []uint32{0, 1}))
}

func TestLineList(t *testing.T) {
	assert.Equal(t, []uint32{0, 1, 1, 2}, lineList(gltf.PrimitiveLineStrip, []uint32{0, 1, 2}))
	assert.Equal(t, []uint32{0, 1, 1, 2, 2, 0}, lineList(gltf.PrimitiveLineLoop, []uint32{0, 1, 2}))
	assert.Equal(t, []uint32{0, 1}, lineList(gltf.PrimitiveLines, []uint32{0, 1}))
}

func TestDecodeDataURI(t *testing.T) {
	data, mime, err := decodeDataURI("data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("pixels")))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, []byte("pixels"), data)

	_, _, err = decodeDataURI("data:image/png;base64")
	assert.Error(t, err)
}

func TestDecodeTexture(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.NRGBA{R: 255, A: 255})
	src.Set(1, 0, color.NRGBA{B: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	tex, err := decodeTexture(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint32(2), tex.Width)
	assert.Equal(t, uint32(1), tex.Height)
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0, 255, 255}, tex.Pixels)

	_, err = decodeTexture([]byte("not an image"))
	assert.Error(t, err)
}

func TestConvertMaterial(t *testing.T) {
	m := convertMaterial(&gltf.Material{
		Name: "glow",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{0.5, 0.25, 1, 1},
			MetallicFactor:  gltf.Float(0),
			RoughnessFactor: gltf.Float(0.4),
		},
		EmissiveFactor: [3]float64{1, 0.5, 0},
		DoubleSided:    true,
		Extensions:     gltf.Extensions{extensionUnlit: struct{}{}},
	}, 0, nil)

	assert.Equal(t, "glow", m.Name())
	assert.Equal(t, [4]float32{0.5, 0.25, 1, 1}, m.BaseColor())
	assert.Equal(t, float32(0), m.Metallic())
	assert.InDelta(t, 0.4, m.Roughness(), 1e-6)
	assert.Equal(t, [3]float32{1, 0.5, 0}, m.Emissive())
	assert.True(t, m.DoubleSided())
	assert.True(t, m.Unlit())
	assert.Nil(t, m.BaseColorTexture())

	def := convertMaterial(&gltf.Material{}, 3, nil)
	assert.Equal(t, "material_3", def.Name())
	assert.Equal(t, [4]float32{1, 1, 1, 1}, def.BaseColor())
	assert.Equal(t, float32(1), def.Metallic())
	assert.Equal(t, float32(1), def.Roughness())
}

// ruinsDocument builds a small document: a single-primitive "glyph.001" node
// and a "pillar" node whose mesh has two primitives.
func ruinsDocument() *gltf.Document {
	doc := gltf.NewDocument()
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}

	glyphPrim := &gltf.Primitive{
		Attributes: map[string]int{gltf.POSITION: modeler.WritePosition(doc, positions)},
		Indices:    gltf.Index(modeler.WriteIndices(doc, []uint32{0, 1, 2})),
		Material:   gltf.Index(0),
	}
	stonePrim := &gltf.Primitive{
		Attributes: map[string]int{
			gltf.POSITION: modeler.WritePosition(doc, positions),
			gltf.NORMAL:   modeler.WriteNormal(doc, [][3]float32{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}}),
		},
	}
	mossPrim := &gltf.Primitive{
		Attributes: map[string]int{gltf.POSITION: modeler.WritePosition(doc, positions)},
		Material:   gltf.Index(1),
	}

	doc.Materials = []*gltf.Material{
		{Name: "glyph", EmissiveFactor: [3]float64{1, 0.6, 0.2}},
		{Name: "moss", DoubleSided: true},
	}
	doc.Meshes = []*gltf.Mesh{
		{Name: "glyph", Primitives: []*gltf.Primitive{glyphPrim}},
		{Name: "pillar mesh", Primitives: []*gltf.Primitive{stonePrim, mossPrim}},
	}
	doc.Nodes = []*gltf.Node{
		{Name: "glyph.001", Mesh: gltf.Index(0), Translation: [3]float64{0, 1, 0}},
		{Name: "pillar", Mesh: gltf.Index(1), Children: []int{0}},
	}
	doc.Scenes[0].Nodes = []int{1}
	return doc
}

func TestLoadDocumentBuildsTree(t *testing.T) {
	l := NewLoader(BackendTypeGLTF,
		WithClassifier(scene.ClassifyByName("glyph", "glyph001")),
		WithShadows(true, false),
		WithWorkers(2),
	)

	root, err := l.LoadDocument("ruins", ruinsDocument(), "")
	require.NoError(t, err)
	assert.Equal(t, "ruins", root.Name())

	s := scene.NewScene(scene.WithNodes(root))

	pillar := s.Find("pillar")
	require.NotNil(t, pillar)
	assert.Nil(t, pillar.Mesh(), "multi-primitive meshes become a group")
	require.Len(t, pillar.Children(), 3)

	stone := s.Find("pillar_mesh_0")
	require.NotNil(t, stone)
	require.NotNil(t, stone.Mesh())
	require.NotNil(t, stone.Material(), "primitives without a material get the glTF default")
	assert.Equal(t, defaultMaterialName, stone.Material().Name())
	assert.Equal(t, [4]float32{1, 1, 1, 1}, stone.Material().BaseColor())
	assert.Equal(t, [3]float32{0, 1, 0}, stone.Mesh().Vertices[0].Normal)
	assert.Equal(t, []uint32{0, 1, 2}, stone.Mesh().Indices, "missing indices are generated")
	assert.True(t, stone.CastShadow())
	assert.False(t, stone.ReceiveShadow())

	moss := s.Find("pillar_mesh_1")
	require.NotNil(t, moss)
	require.NotNil(t, moss.Material())
	assert.True(t, moss.Material().DoubleSided())

	glyph := s.Find("glyph001")
	require.NotNil(t, glyph)
	assert.Equal(t, scene.ClassBloom, glyph.Class())
	assert.Equal(t, scene.ClassNormal, pillar.Class())
	assert.Equal(t, common.Vec3{0, 1, 0}, glyph.Position())
	require.NotNil(t, glyph.Material())
	assert.Equal(t, "glyph", glyph.Material().Name())
	assert.Equal(t, [3]float32{1, 0.6, 0.2}, glyph.Material().Emissive())

	normal := glyph.Mesh().Vertices[0].Normal
	assert.InDelta(t, 1, normal[2], 1e-6, "generated normals face +Z for a CCW triangle in XY")
}

func TestLoadDocumentClassInheritedByParts(t *testing.T) {
	l := NewLoader(BackendTypeGLTF, WithClassifier(scene.ClassifyByName("pillar")))

	root, err := l.LoadDocument("ruins", ruinsDocument(), "")
	require.NoError(t, err)

	s := scene.NewScene(scene.WithNodes(root))
	assert.Equal(t, scene.ClassBloom, s.Find("pillar_mesh_0").Class())
	assert.Equal(t, scene.ClassBloom, s.Find("pillar_mesh_1").Class())
	assert.Equal(t, scene.ClassNormal, s.Find("glyph001").Class())
}

func TestLoadDocumentRejectsCompressedMeshes(t *testing.T) {
	for _, ext := range unsupportedExtensions {
		t.Run(ext, func(t *testing.T) {
			doc := ruinsDocument()
			doc.ExtensionsRequired = []string{ext}

			_, err := NewLoader(BackendTypeGLTF).LoadDocument("compressed", doc, "")
			assert.ErrorIs(t, err, ErrUnsupportedExtension)
		})
	}
}

func TestLoadDocumentSkipsPoints(t *testing.T) {
	doc := ruinsDocument()
	doc.Meshes[0].Primitives[0].Mode = gltf.PrimitivePoints

	root, err := NewLoader(BackendTypeGLTF).LoadDocument("points", doc, "")
	require.NoError(t, err)

	glyph := scene.NewScene(scene.WithNodes(root)).Find("glyph001")
	require.NotNil(t, glyph)
	assert.Nil(t, glyph.Mesh())
}

func TestLoaderCache(t *testing.T) {
	cached := scene.NewNode("cached")
	l := NewLoader(BackendTypeGLTF, WithNode("ruins.glb", cached))

	got, err := l.Load("ruins.glb")
	require.NoError(t, err)
	assert.Equal(t, cached, got)
	assert.Equal(t, cached, l.Get("ruins.glb"))
	assert.Nil(t, l.Get("missing.glb"))

	first, err := l.LoadDocument("doc", ruinsDocument(), "")
	require.NoError(t, err)
	second, err := l.LoadDocument("doc", ruinsDocument(), "")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Len(t, l.Nodes(), 2)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := NewLoader(BackendTypeGLTF).Load("ruins.obj")
	assert.ErrorContains(t, err, "unsupported asset format")
}

func TestSceneRootsWithoutScenes(t *testing.T) {
	doc := &gltf.Document{Nodes: []*gltf.Node{
		{Name: "a", Children: []int{2}},
		{Name: "b"},
		{Name: "c"},
	}}
	assert.Equal(t, []int{0, 1}, sceneRoots(doc))
}

func TestDefaultMaterialSharedAndMaskable(t *testing.T) {
	doc := ruinsDocument()
	doc.Meshes[0].Primitives[0].Material = nil
	doc.Materials = doc.Materials[1:]
	doc.Meshes[1].Primitives[1].Material = gltf.Index(0)

	root, err := NewLoader(BackendTypeGLTF, WithClassifier(scene.ClassifyByName("glyph001"))).
		LoadDocument("ruins", doc, "")
	require.NoError(t, err)

	s := scene.NewScene(scene.WithNodes(root))
	stone := s.Find("pillar_mesh_0").Material()
	glyph := s.Find("glyph001").Material()
	require.NotNil(t, stone)
	assert.Same(t, stone, glyph)

	var unmasked []string
	s.Traverse(func(n scene.Node) {
		if n.Mesh() != nil && n.Class() == scene.ClassNormal && n.Material() == nil {
			unmasked = append(unmasked, n.Name())
		}
	})
	assert.Empty(t, unmasked, "every normal mesh node can be masked")
}
