package material

import (
	"github.com/Carmen-Shannon/ruins/engine/renderer/bind_group_provider"
)

// TextureData is decoded RGBA8 pixel data ready for upload to an sRGB texture.
type TextureData struct {
	Width  uint32
	Height uint32
	Pixels []byte
}

// material is the implementation of the Material interface.
type material struct {
	name              string
	baseColor         [4]float32
	emissive          [3]float32
	emissiveIntensity float32
	metallic          float32
	roughness         float32
	unlit             bool
	doubleSided       bool
	baseColorTexture  *TextureData
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Material describes how a scene node's surface is shaded.
//
// Surface properties are fixed at construction. The GPU bind group provider is
// attached by the renderer the first time the material is drawn, so one
// material shared by many nodes owns a single uniform buffer and bind group.
// Swapping a node's material therefore only changes which bind group is set for
// that node's draw call.
type Material interface {
	// Name returns the material identifier.
	//
	// Returns:
	//   - string: the name
	Name() string

	// BaseColor returns the linear RGBA albedo.
	//
	// Returns:
	//   - [4]float32: the base colour
	BaseColor() [4]float32

	// Emissive returns the linear RGB emitted colour.
	//
	// Returns:
	//   - [3]float32: the emissive colour
	Emissive() [3]float32

	// EmissiveIntensity returns the multiplier applied to Emissive.
	//
	// Returns:
	//   - float32: the intensity
	EmissiveIntensity() float32

	// Metallic returns the metallic factor in [0, 1].
	//
	// Returns:
	//   - float32: the metallic factor
	Metallic() float32

	// Roughness returns the roughness factor in [0, 1].
	//
	// Returns:
	//   - float32: the roughness factor
	Roughness() float32

	// Unlit reports whether lighting is skipped and the base colour written as is.
	//
	// Returns:
	//   - bool: true for unlit materials
	Unlit() bool

	// DoubleSided reports whether back faces are rendered.
	//
	// Returns:
	//   - bool: true if back-face culling is disabled
	DoubleSided() bool

	// BaseColorTexture returns the albedo texture, or nil for a flat colour.
	//
	// Returns:
	//   - *TextureData: the texture or nil
	BaseColorTexture() *TextureData

	// Uniform returns the GPU-aligned uniform block for this material.
	//
	// Returns:
	//   - GPUMaterial: the uniform data
	Uniform() GPUMaterial

	// BindGroupProvider returns the GPU resources for this material, or nil
	// before the renderer has uploaded it.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider or nil
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetBindGroupProvider attaches GPU resources to the material.
	//
	// Parameters:
	//   - provider: the provider
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Material = &material{}

// NewMaterial creates a Material with the options applied. The defaults are a
// white, fully rough dielectric with no emission.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Material: the new material
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		name:              "material",
		baseColor:         [4]float32{1, 1, 1, 1},
		emissiveIntensity: 1,
		metallic:          0,
		roughness:         1,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) Emissive() [3]float32 {
	return m.emissive
}

func (m *material) EmissiveIntensity() float32 {
	return m.emissiveIntensity
}

func (m *material) Metallic() float32 {
	return m.metallic
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) Unlit() bool {
	return m.unlit
}

func (m *material) DoubleSided() bool {
	return m.doubleSided
}

func (m *material) BaseColorTexture() *TextureData {
	return m.baseColorTexture
}

func (m *material) Uniform() GPUMaterial {
	flags := uint32(0)
	if m.unlit {
		flags |= MaterialFlagUnlit
	}
	if m.baseColorTexture != nil {
		flags |= MaterialFlagBaseColorTexture
	}
	return GPUMaterial{
		BaseColor: m.baseColor,
		Emissive: [4]float32{
			m.emissive[0] * m.emissiveIntensity,
			m.emissive[1] * m.emissiveIntensity,
			m.emissive[2] * m.emissiveIntensity,
			0,
		},
		Metallic:  m.metallic,
		Roughness: m.roughness,
		Flags:     flags,
	}
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
}
