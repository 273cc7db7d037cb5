package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/ruins/common"
	"github.com/Carmen-Shannon/ruins/engine/light"
	"github.com/Carmen-Shannon/ruins/engine/renderer/material"
)

func TestClassifyByName(t *testing.T) {
	classify := ClassifyByName("glyph", "glyph001")

	tests := []struct {
		name string
		want Class
	}{
		{"glyph", ClassBloom},
		{"glyph001", ClassBloom},
		{"glyph002", ClassNormal},
		{"pillar", ClassNormal},
		{"", ClassNormal},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, classify(tc.name), tc.name)
	}
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "normal", ClassNormal.String())
	assert.Equal(t, "bloom", ClassBloom.String())
	assert.Equal(t, "unknown", Class(9).String())
}

func TestNewNodeDefaults(t *testing.T) {
	n := NewNode("stone")

	assert.Equal(t, "stone", n.Name())
	assert.Equal(t, ClassNormal, n.Class())
	assert.Nil(t, n.Material())
	assert.Nil(t, n.Mesh())
	assert.True(t, n.Visible())
	assert.Equal(t, common.Vec3{1, 1, 1}, n.Scale())
	assert.Equal(t, common.QuatIdentity, n.Rotation())
	assert.NotEqual(t, NewNode("stone").ID(), n.ID(), "ids are unique")
}

func TestNodeMaterialSwap(t *testing.T) {
	stone := material.NewMaterial(material.WithName("Stone"))
	n := NewNode("b", WithMaterial(stone))
	require.Same(t, stone, n.Material())

	n.SetMaterial(nil)
	assert.Nil(t, n.Material())
	n.SetMaterial(stone)
	assert.Same(t, stone, n.Material())
}

func TestWorldMatrixComposesParents(t *testing.T) {
	child := NewNode("child", WithPosition(common.Vec3{1, 0, 0}))
	root := NewNode("root",
		WithScale(common.Vec3{0.5, 0.5, 0.5}),
		WithPosition(common.Vec3{0, 2, 0}),
		WithChildren(child),
	)

	assert.Same(t, root, child.Parent())
	p := child.WorldMatrix().MulPoint(common.Vec3{})
	assert.InDelta(t, 0.5, p[0], 1e-5)
	assert.InDelta(t, 2, p[1], 1e-5)
	assert.InDelta(t, 0, p[2], 1e-5)
}

func TestAddChildReparents(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	c := NewNode("c")

	a.AddChild(c)
	b.AddChild(c)

	assert.Empty(t, a.Children())
	require.Len(t, b.Children(), 1)
	assert.Same(t, b, c.Parent())

	b.AddChild(b)
	assert.Len(t, b.Children(), 1, "a node cannot parent itself")
}

func TestTraverseOrder(t *testing.T) {
	leaf := NewNode("leaf")
	mid := NewNode("mid", WithChildren(leaf))
	other := NewNode("other")
	s := NewScene(WithNodes(NewNode("root", WithChildren(mid)), other))

	var names []string
	s.Traverse(func(n Node) { names = append(names, n.Name()) })

	assert.Equal(t, []string{"root", "mid", "leaf", "other"}, names)
	assert.Equal(t, 4, s.Count())
	assert.Same(t, leaf, s.Find("leaf"))
	assert.Nil(t, s.Find("missing"))
}

func TestTraverseVisibleSkipsHiddenSubtrees(t *testing.T) {
	hidden := NewNode("hidden", WithChildren(NewNode("under")))
	hidden.SetVisible(false)
	s := NewScene(WithNodes(hidden, NewNode("shown")))

	var names []string
	s.TraverseVisible(func(n Node) { names = append(names, n.Name()) })
	assert.Equal(t, []string{"shown"}, names)
}

func TestSceneLights(t *testing.T) {
	s := NewScene(WithName("ruins"))
	s.AddLight(light.NewLight(light.LightTypeAmbient), nil)

	assert.Equal(t, "ruins", s.Name())
	assert.Len(t, s.Lights(), 1)
}

func TestAxesHelper(t *testing.T) {
	axes := NewAxesHelper(1, WithPosition(common.Vec3{0, 2, 0}))

	require.NotNil(t, axes.Mesh())
	assert.Equal(t, TopologyLines, axes.Mesh().Topology)
	assert.Len(t, axes.Mesh().Indices, 6)
	assert.False(t, axes.CastShadow())
	assert.True(t, axes.Material().Unlit())
	assert.Equal(t, common.Vec3{0, 2, 0}, axes.Position())
}

func TestMeshBytesAndBounds(t *testing.T) {
	m := &Mesh{
		Vertices: []GPUVertex{
			{Position: [3]float32{-1, 0, 2}},
			{Position: [3]float32{3, -2, 0}},
		},
		Indices: []uint32{0, 1},
	}

	assert.Len(t, m.VertexBytes(), 2*48)
	assert.Len(t, m.IndexBytes(), 8)

	lo, hi := m.Bounds()
	assert.Equal(t, common.Vec3{-1, -2, 0}, lo)
	assert.Equal(t, common.Vec3{3, 0, 2}, hi)
}

func TestGenerateNormals(t *testing.T) {
	m := &Mesh{
		Vertices: []GPUVertex{
			{Position: [3]float32{0, 0, 0}},
			{Position: [3]float32{1, 0, 0}},
			{Position: [3]float32{0, 0, -1}},
		},
		Indices: []uint32{0, 1, 2},
	}
	m.GenerateNormals()

	for _, v := range m.Vertices {
		assert.InDelta(t, 1, v.Normal[1], 1e-5)
	}
}

func TestModelUniform(t *testing.T) {
	world := common.ComposeTRS(common.Vec3{1, 2, 3}, common.QuatIdentity, common.Vec3{2, 2, 2})
	u := NewModelUniform(world, true)

	assert.Equal(t, world, u.Model)
	assert.Equal(t, uint32(1), u.ReceiveShadow)
	assert.InDelta(t, 0.5, u.NormalMatrix[0], 1e-5)
	assert.Len(t, u.Marshal(), u.Size())

	v := GPUVertex{}
	assert.Equal(t, 48, v.Size())
}
