package material

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/ruins/common"
)

const (
	// MaterialFlagUnlit skips lighting and writes base colour plus emission.
	MaterialFlagUnlit uint32 = 1 << iota
	// MaterialFlagBaseColorTexture multiplies base colour by the bound texture.
	MaterialFlagBaseColorTexture
)

// GPUMaterialSource is the WGSL definition of the MaterialUniform struct.
//
//go:embed assets/material_uniform.wgsl
var GPUMaterialSource string

// GPUMaterial is the GPU-aligned material uniform read by the lit fragment shader.
// Matches the WGSL MaterialUniform struct (see GPUMaterialSource).
// Size: 48 bytes.
//
// Layout:
//
//	vec4<f32> base_color (16 bytes, offset  0)
//	vec4<f32> emissive   (16 bytes, offset 16) rgb premultiplied by intensity
//	f32       metallic   ( 4 bytes, offset 32)
//	f32       roughness  ( 4 bytes, offset 36)
//	u32       flags      ( 4 bytes, offset 40)
//	u32       _pad       ( 4 bytes, offset 44)
type GPUMaterial struct {
	BaseColor [4]float32
	Emissive  [4]float32
	Metallic  float32
	Roughness float32
	Flags     uint32
	_pad      uint32
}

// Size returns the size of the GPUMaterial struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUMaterial) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterial struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPUMaterial) Marshal() []byte {
	buf := make([]byte, 48)
	off := common.PutFloats(buf, 0, g.BaseColor[:]...)
	off = common.PutFloats(buf, off, g.Emissive[:]...)
	off = common.PutFloats(buf, off, g.Metallic, g.Roughness)
	common.PutUints(buf, off, g.Flags, 0)
	return buf
}
