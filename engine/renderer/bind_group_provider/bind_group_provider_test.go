package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("material:stone")

	assert.Equal(t, "material:stone", p.Label())
	assert.False(t, p.Ready())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Layout())
	assert.Nil(t, p.Buffer(0))
	assert.Nil(t, p.TextureView(1))
	assert.Nil(t, p.Sampler(2))
}

func TestReleaseWithoutResources(t *testing.T) {
	p := NewBindGroupProvider("empty")
	p.SetBuffer(0, nil, true)
	p.SetTextureView(1, nil, true)
	p.SetSampler(2, nil, false)

	assert.NotPanics(t, p.Release)
	assert.NotPanics(t, p.Invalidate)
	assert.False(t, p.Ready())
}
