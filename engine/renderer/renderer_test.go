package renderer

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/ruins/common"
	"github.com/Carmen-Shannon/ruins/engine/light"
	"github.com/Carmen-Shannon/ruins/engine/renderer/material"
	"github.com/Carmen-Shannon/ruins/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/ruins/engine/renderer/shader"
	"github.com/Carmen-Shannon/ruins/engine/scene"
)

func triangle(name string) *scene.Mesh {
	return &scene.Mesh{
		Name: name,
		Vertices: []scene.GPUVertex{
			{Position: [3]float32{0, 0, 0}},
			{Position: [3]float32{1, 0, 0}},
			{Position: [3]float32{0, 1, 0}},
		},
		Indices: []uint32{0, 1, 2},
	}
}

func TestCollectDrawItems(t *testing.T) {
	fallback := material.NewMaterial(material.WithName("fallback"))
	stone := material.NewMaterial(material.WithName("stone"))
	cloth := material.NewMaterial(material.WithName("cloth"), material.WithDoubleSided(true))

	hidden := scene.NewNode("hidden", scene.WithMesh(triangle("hidden")), scene.WithMaterial(stone))
	hidden.SetVisible(false)

	s := scene.NewScene(scene.WithNodes(
		scene.NewNode("pillar", scene.WithMesh(triangle("pillar")), scene.WithMaterial(stone)),
		scene.NewNode("banner", scene.WithMesh(triangle("banner")), scene.WithMaterial(cloth)),
		scene.NewNode("bare", scene.WithMesh(triangle("bare"))),
		scene.NewNode("group"),
		scene.NewNode("empty", scene.WithMesh(&scene.Mesh{Name: "empty"})),
		hidden,
		scene.NewAxesHelper(5),
	))

	items := collectDrawItems(s, fallback)
	require.Len(t, items, 4)

	assert.Equal(t, "pillar", items[0].node.Name())
	assert.Equal(t, variantOpaque, items[0].variant)
	assert.Equal(t, stone, items[0].material)

	assert.Equal(t, "banner", items[1].node.Name())
	assert.Equal(t, variantDoubleSided, items[1].variant)

	assert.Equal(t, "bare", items[2].node.Name())
	assert.Equal(t, fallback, items[2].material, "nodes without a material use the fallback")

	assert.Equal(t, scene.AxesHelperName, items[3].node.Name())
	assert.Equal(t, variantLines, items[3].variant)
}

func TestCollectDrawItemsSeesCurrentMaterial(t *testing.T) {
	stone := material.NewMaterial(material.WithName("stone"))
	node := scene.NewNode("pillar", scene.WithMesh(triangle("pillar")), scene.WithMaterial(stone))
	s := scene.NewScene(scene.WithNodes(node))

	placeholder := material.NewPlaceholder()
	node.SetMaterial(placeholder)
	items := collectDrawItems(s, nil)
	require.Len(t, items, 1)
	assert.Equal(t, placeholder, items[0].material)

	node.SetMaterial(stone)
	items = collectDrawItems(s, nil)
	assert.Equal(t, stone, items[0].material)
}

func TestCastsShadow(t *testing.T) {
	caster := drawItem{node: scene.NewNode("a", scene.WithShadows(true, true)), variant: variantOpaque}
	receiver := drawItem{node: scene.NewNode("b", scene.WithShadows(false, true)), variant: variantDoubleSided}
	lines := drawItem{node: scene.NewNode("c", scene.WithShadows(true, false)), variant: variantLines}

	assert.True(t, caster.castsShadow())
	assert.False(t, receiver.castsShadow())
	assert.False(t, lines.castsShadow(), "line meshes never cast shadows")
}

func TestScenePipelineKey(t *testing.T) {
	a := scenePipelineKey(variantOpaque, wgpu.TextureFormatRGBA16Float, MSAA4x)
	b := scenePipelineKey(variantLines, wgpu.TextureFormatRGBA16Float, MSAA4x)
	c := scenePipelineKey(variantOpaque, wgpu.TextureFormatBGRA8Unorm, MSAA4x)
	d := scenePipelineKey(variantOpaque, wgpu.TextureFormatRGBA16Float, MSAAOff)

	assert.Contains(t, a, shader.KeyScene)
	assert.Contains(t, b, "lines")
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
}

func TestScenePipelineOptions(t *testing.T) {
	sceneShader, err := shader.Load(shader.KeyScene)
	require.NoError(t, err)

	tests := []struct {
		name     string
		variant  drawVariant
		cull     wgpu.CullMode
		topology wgpu.PrimitiveTopology
	}{
		{"opaque", variantOpaque, wgpu.CullModeBack, wgpu.PrimitiveTopologyTriangleList},
		{"double sided", variantDoubleSided, wgpu.CullModeNone, wgpu.PrimitiveTopologyTriangleList},
		{"lines", variantLines, wgpu.CullModeNone, wgpu.PrimitiveTopologyLineList},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := pipeline.NewPipeline(tc.name, sceneShader, scenePipelineOptions(tc.variant, wgpu.TextureFormatRGBA16Float, MSAA4x)...)
			desc := p.Descriptor(nil, nil)

			assert.Equal(t, tc.cull, desc.Primitive.CullMode)
			assert.Equal(t, tc.topology, desc.Primitive.Topology)
			assert.Equal(t, uint32(4), desc.Multisample.Count)
			require.NotNil(t, desc.Fragment)
			assert.Equal(t, wgpu.TextureFormatRGBA16Float, desc.Fragment.Targets[0].Format)
			require.NotNil(t, desc.DepthStencil)
			assert.Equal(t, sceneDepthFormat, desc.DepthStencil.Format)
		})
	}
}

func TestShadowPipelineOptions(t *testing.T) {
	shadowShader, err := shader.Load(shader.KeyShadow)
	require.NoError(t, err)

	single := pipeline.NewPipeline("shadow", shadowShader, shadowPipelineOptions(false)...).Descriptor(nil, nil)
	double := pipeline.NewPipeline("shadow", shadowShader, shadowPipelineOptions(true)...).Descriptor(nil, nil)

	assert.Nil(t, single.Fragment)
	assert.Equal(t, wgpu.CullModeFront, single.Primitive.CullMode)
	assert.Equal(t, wgpu.CullModeNone, double.Primitive.CullMode)
	assert.Equal(t, uint32(1), single.Multisample.Count)
	require.NotNil(t, single.DepthStencil)
	assert.Equal(t, shadowDepthFormat, single.DepthStencil.Format)
}

func TestShadowViewMatrices(t *testing.T) {
	var u light.GPUShadowUniform
	u.DirectionalVP = common.Identity()
	for face := range u.PointVP {
		u.PointVP[face][0] = float32(face + 1)
	}

	views := shadowViewMatrices(u, true, false)
	assert.True(t, views[0].active)
	assert.Equal(t, common.Identity(), views[0].matrix)
	for face := range light.PointShadowFaces {
		assert.False(t, views[1+face].active)
		assert.Equal(t, float32(face+1), views[1+face].matrix[0])
	}

	views = shadowViewMatrices(u, false, true)
	assert.False(t, views[0].active)
	assert.True(t, views[light.PointShadowFaces].active)
}

func TestRendererOptions(t *testing.T) {
	r := &renderer{presentMode: PresentModeVSync, sampleCount: MSAA4x}

	WithPresentMode(PresentModeUncapped)(r)
	WithForceSoftwareRenderer(true)(r)
	WithMSAA(MSAAOff)(r)

	assert.Equal(t, PresentModeUncapped, r.presentMode)
	assert.True(t, r.forceFallbackAdapter)
	assert.Equal(t, MSAAOff, r.sampleCount)

	WithMSAA(MSAASampleCount(3))(r)
	assert.Equal(t, MSAA4x, r.sampleCount, "unsupported counts fall back to 4x")
}

func TestFrameLifecycleGuards(t *testing.T) {
	r := &renderer{}

	assert.ErrorIs(t, r.Submit(nil), ErrNoFrame)
	assert.ErrorIs(t, r.Submit(&Frame{}), ErrNoFrame)
	assert.ErrorIs(t, r.DrawScene(nil, nil, nil, nil), ErrNoFrame)
	assert.NotPanics(t, func() { r.Present(nil) })
	assert.NotPanics(t, func() { r.Present(&Frame{}) })
	assert.NoError(t, r.Resize(0, 720), "minimised windows are ignored")
}
