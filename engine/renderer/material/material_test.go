package material

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/ruins/engine/renderer/bind_group_provider"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial()

	assert.Equal(t, "material", m.Name())
	assert.Equal(t, [4]float32{1, 1, 1, 1}, m.BaseColor())
	assert.Equal(t, float32(0), m.Metallic())
	assert.Equal(t, float32(1), m.Roughness())
	assert.False(t, m.Unlit())
	assert.Nil(t, m.BaseColorTexture())
	assert.Nil(t, m.BindGroupProvider())
}

func TestMaterialOptions(t *testing.T) {
	tex := &TextureData{Width: 1, Height: 1, Pixels: []byte{255, 0, 0, 255}}
	m := NewMaterial(
		WithName("Glow"),
		WithBaseColor([4]float32{0.2, 0.4, 0.6, 1}),
		WithEmissive([3]float32{1, 0.5, 0}, 4),
		WithMetallic(2),
		WithRoughness(-1),
		WithDoubleSided(true),
		WithBaseColorTexture(tex),
	)

	assert.Equal(t, "Glow", m.Name())
	assert.Equal(t, float32(1), m.Metallic(), "metallic is clamped")
	assert.Equal(t, float32(0), m.Roughness(), "roughness is clamped")
	assert.True(t, m.DoubleSided())
	assert.Same(t, tex, m.BaseColorTexture())

	u := m.Uniform()
	assert.Equal(t, [4]float32{4, 2, 0, 0}, u.Emissive, "emission is premultiplied")
	assert.Equal(t, MaterialFlagBaseColorTexture, u.Flags)
}

func TestPlaceholder(t *testing.T) {
	p := NewPlaceholder()

	assert.True(t, IsPlaceholder(p))
	assert.False(t, IsPlaceholder(NewMaterial()))
	assert.False(t, IsPlaceholder(nil))

	u := p.Uniform()
	assert.Equal(t, [4]float32{0, 0, 0, 1}, u.BaseColor)
	assert.Equal(t, [4]float32{0, 0, 0, 0}, u.Emissive)
	assert.Equal(t, float32(0), u.Metallic)
	assert.Equal(t, MaterialFlagUnlit, u.Flags&MaterialFlagUnlit)
}

func TestGPUMaterialMarshal(t *testing.T) {
	g := GPUMaterial{
		BaseColor: [4]float32{1, 2, 3, 4},
		Emissive:  [4]float32{5, 6, 7, 0},
		Metallic:  0.25,
		Roughness: 0.75,
		Flags:     MaterialFlagUnlit | MaterialFlagBaseColorTexture,
	}
	buf := g.Marshal()
	require.Len(t, buf, g.Size())

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	assert.Equal(t, float32(1), f(0))
	assert.Equal(t, float32(7), f(24))
	assert.Equal(t, float32(0.25), f(32))
	assert.Equal(t, float32(0.75), f(36))
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(buf[40:]))
}

func TestBindGroupProviderAttachment(t *testing.T) {
	m := NewMaterial()
	p := bind_group_provider.NewBindGroupProvider("material")
	m.SetBindGroupProvider(p)
	assert.Same(t, p, m.BindGroupProvider())
}
