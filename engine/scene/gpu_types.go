package scene

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/ruins/common"
)

// GPUVertexSource is the WGSL definition of the VertexInput struct.
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUModelUniformSource is the WGSL definition of the ModelUniform struct.
//
//go:embed assets/model_uniform.wgsl
var GPUModelUniformSource string

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Matches the WGSL VertexInput struct (see GPUVertexSource).
// Size: 48 bytes.
type GPUVertex struct {
	Position [3]float32 // offset  0
	Normal   [3]float32 // offset 12
	TexCoord [2]float32 // offset 24
	Color    [4]float32 // offset 32
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 48)
	g.marshalInto(buf)
	return buf
}

func (g *GPUVertex) marshalInto(buf []byte) {
	off := common.PutFloats(buf, 0, g.Position[:]...)
	off = common.PutFloats(buf, off, g.Normal[:]...)
	off = common.PutFloats(buf, off, g.TexCoord[:]...)
	common.PutFloats(buf, off, g.Color[:]...)
}

// GPUModelUniform is the per-node uniform holding the world and normal matrices.
// Matches the WGSL ModelUniform struct (see GPUModelUniformSource).
// Size: 144 bytes.
//
// Layout:
//
//	mat4x4<f32> model         (64 bytes, offset   0)
//	mat4x4<f32> normal_matrix (64 bytes, offset  64) inverse transpose of model
//	u32         receive_shadow( 4 bytes, offset 128)
//	u32         _pad x3       (12 bytes, offset 132)
type GPUModelUniform struct {
	Model         common.Mat4
	NormalMatrix  common.Mat4
	ReceiveShadow uint32
	_pad          [3]uint32
}

// Size returns the size of the GPUModelUniform struct in bytes.
func (g *GPUModelUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUModelUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 144-byte buffer ready for GPU upload
func (g *GPUModelUniform) Marshal() []byte {
	buf := make([]byte, 144)
	off := common.PutFloats(buf, 0, g.Model[:]...)
	off = common.PutFloats(buf, off, g.NormalMatrix[:]...)
	common.PutUints(buf, off, g.ReceiveShadow, 0, 0, 0)
	return buf
}

// NewModelUniform builds the model uniform for a world matrix.
//
// Parameters:
//   - world: the node's world matrix
//   - receiveShadow: whether shadow maps darken this node
//
// Returns:
//   - GPUModelUniform: the uniform data
func NewModelUniform(world common.Mat4, receiveShadow bool) GPUModelUniform {
	inv, _ := world.Inverse()
	var normal common.Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			normal[c*4+r] = inv[r*4+c]
		}
	}
	return GPUModelUniform{
		Model:         world,
		NormalMatrix:  normal,
		ReceiveShadow: common.BoolToUint32(receiveShadow),
	}
}
