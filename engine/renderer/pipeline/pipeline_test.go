package pipeline

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/ruins/engine/renderer/shader"
)

func mustLoad(t *testing.T, key string) shader.Shader {
	t.Helper()
	s, err := shader.Load(key)
	require.NoError(t, err)
	return s
}

func TestDescriptorDefaults(t *testing.T) {
	p := NewPipeline("scene", mustLoad(t, shader.KeyScene))
	desc := p.Descriptor(nil, nil)

	assert.Equal(t, "vs_main", desc.Vertex.EntryPoint)
	require.Len(t, desc.Vertex.Buffers, 1)
	require.NotNil(t, desc.Fragment)
	assert.Equal(t, "fs_main", desc.Fragment.EntryPoint)
	assert.Equal(t, wgpu.TextureFormatRGBA16Float, desc.Fragment.Targets[0].Format)
	assert.Nil(t, desc.Fragment.Targets[0].Blend)
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, desc.Primitive.Topology)
	assert.Equal(t, wgpu.CullModeBack, desc.Primitive.CullMode)
	assert.Equal(t, uint32(1), desc.Multisample.Count)
	require.NotNil(t, desc.DepthStencil)
	assert.Equal(t, wgpu.TextureFormatDepth24Plus, desc.DepthStencil.Format)
	assert.Equal(t, wgpu.CompareFunctionLess, desc.DepthStencil.DepthCompare)
	assert.True(t, desc.DepthStencil.DepthWriteEnabled)
}

func TestDescriptorLines(t *testing.T) {
	p := NewPipeline("lines", mustLoad(t, shader.KeyScene),
		WithTopology(wgpu.PrimitiveTopologyLineList),
		WithCullMode(wgpu.CullModeNone),
		WithSampleCount(4),
	)
	desc := p.Descriptor(nil, nil)

	assert.Equal(t, wgpu.PrimitiveTopologyLineList, desc.Primitive.Topology)
	assert.Equal(t, wgpu.CullModeNone, desc.Primitive.CullMode)
	assert.Equal(t, uint32(4), desc.Multisample.Count)
	assert.Equal(t, uint32(4), p.SampleCount())
}

func TestDescriptorShadowHasNoFragment(t *testing.T) {
	p := NewPipeline("shadow", mustLoad(t, shader.KeyShadow),
		WithDepthFormat(wgpu.TextureFormatDepth32Float),
		WithDepthBias(2, 2.0),
	)
	desc := p.Descriptor(nil, nil)

	assert.Nil(t, desc.Fragment)
	require.NotNil(t, desc.DepthStencil)
	assert.Equal(t, wgpu.TextureFormatDepth32Float, desc.DepthStencil.Format)
	assert.Equal(t, int32(2), desc.DepthStencil.DepthBias)
	assert.Equal(t, float32(2.0), desc.DepthStencil.DepthBiasSlopeScale)
}

func TestDescriptorFullscreenAdditive(t *testing.T) {
	p := NewPipeline("copy", mustLoad(t, shader.KeyCopy),
		WithDepthFormat(wgpu.TextureFormatUndefined),
		WithCullMode(wgpu.CullModeNone),
		WithBlendState(AdditiveBlend),
		WithColorFormat(wgpu.TextureFormatBGRA8UnormSrgb),
	)
	desc := p.Descriptor(nil, nil)

	assert.Nil(t, desc.DepthStencil)
	assert.Empty(t, desc.Vertex.Buffers)
	assert.Same(t, AdditiveBlend, desc.Fragment.Targets[0].Blend)
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, p.ColorFormat())
	assert.Equal(t, wgpu.TextureFormatUndefined, p.DepthFormat())
}

func TestDepthTestDisabled(t *testing.T) {
	p := NewPipeline("overlay", mustLoad(t, shader.KeyScene), WithDepthTestEnabled(false), WithDepthWriteEnabled(false))
	desc := p.Descriptor(nil, nil)
	assert.Equal(t, wgpu.CompareFunctionAlways, desc.DepthStencil.DepthCompare)
	assert.False(t, desc.DepthStencil.DepthWriteEnabled)
}

func TestBindGroupLayoutBeforeInit(t *testing.T) {
	p := NewPipeline("scene", mustLoad(t, shader.KeyScene))
	assert.Nil(t, p.BindGroupLayout(0))
	assert.Nil(t, p.RenderPipeline())
	assert.NotPanics(t, p.Release)
}
