package camera

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/ruins/common"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (144 bytes).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Matches the WGSL CameraUniform struct layout exactly (see GPUCameraUniformSource).
// Size: 144 bytes.
type GPUCameraUniform struct {
	ViewProj [16]float32 // offset   0: combined view-projection matrix (mat4x4<f32>)
	View     [16]float32 // offset  64: view matrix (mat4x4<f32>)
	Position [4]float32  // offset 128: world-space camera position, w = 1 (vec4<f32>)
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (144)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := common.PutFloats(buf, 0, g.ViewProj[:]...)
	off = common.PutFloats(buf, off, g.View[:]...)
	common.PutFloats(buf, off, g.Position[:]...)
	return buf
}
