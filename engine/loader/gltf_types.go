package loader

import (
	"strings"
	"unicode"

	"github.com/Carmen-Shannon/ruins/common"
	"github.com/Carmen-Shannon/ruins/engine/scene"
	"github.com/chewxy/math32"
	"github.com/qmuntal/gltf"
)

// unsupportedExtensions lists required extensions the loader cannot decode.
var unsupportedExtensions = []string{
	"KHR_draco_mesh_compression",
	"EXT_meshopt_compression",
}

// extensionUnlit marks a material as unlit.
const extensionUnlit = "KHR_materials_unlit"

// defaultMaterialName names the material given to primitives that reference none.
const defaultMaterialName = "default"

// primitiveKey identifies one primitive of one glTF mesh.
type primitiveKey struct {
	mesh      int
	primitive int
}

// importedPrimitive is decoded geometry of one primitive plus its material index.
type importedPrimitive struct {
	mesh     *scene.Mesh
	material int // -1 when the primitive has none
}

// sanitizeNodeName makes a glTF name safe as a node name: whitespace becomes
// an underscore and the reserved characters []\.:/ are dropped, so Blender's
// "glyph.001" becomes "glyph001".
func sanitizeNodeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case unicode.IsSpace(r):
			b.WriteByte('_')
		case strings.ContainsRune(`[]\.:/`, r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// nodeTransform returns the local translation, rotation and scale of a glTF
// node. A non-identity matrix takes precedence over the TRS fields. Zero
// rotations and scales, as left by documents built in memory, read as identity.
func nodeTransform(n *gltf.Node) (common.Vec3, common.Quat, common.Vec3) {
	if !isZeroOrIdentity(n.Matrix) {
		return decomposeMatrix(toMat4(n.Matrix))
	}

	t := common.Vec3{float32(n.Translation[0]), float32(n.Translation[1]), float32(n.Translation[2])}
	r := common.Quat{float32(n.Rotation[0]), float32(n.Rotation[1]), float32(n.Rotation[2]), float32(n.Rotation[3])}.Normalize()
	s := common.Vec3{float32(n.Scale[0]), float32(n.Scale[1]), float32(n.Scale[2])}
	if s == (common.Vec3{}) {
		s = common.Vec3{1, 1, 1}
	}
	return t, r, s
}

func isZeroOrIdentity(m [16]float64) bool {
	if m == ([16]float64{}) {
		return true
	}
	return m == [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}

func toMat4(m [16]float64) common.Mat4 {
	var out common.Mat4
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

// decomposeMatrix splits a column-major affine matrix into translation,
// rotation and scale. A negative determinant flips the X scale.
func decomposeMatrix(m common.Mat4) (common.Vec3, common.Quat, common.Vec3) {
	t := common.Vec3{m[12], m[13], m[14]}

	cx := common.Vec3{m[0], m[1], m[2]}
	cy := common.Vec3{m[4], m[5], m[6]}
	cz := common.Vec3{m[8], m[9], m[10]}
	s := common.Vec3{cx.Length(), cy.Length(), cz.Length()}
	if cx.Cross(cy).Dot(cz) < 0 {
		s[0] = -s[0]
	}
	if s[0] == 0 || s[1] == 0 || s[2] == 0 {
		return t, common.QuatIdentity, s
	}
	cx, cy, cz = cx.Scale(1/s[0]), cy.Scale(1/s[1]), cz.Scale(1/s[2])

	// rotation matrix elements, row r column c
	m00, m01, m02 := cx[0], cy[0], cz[0]
	m10, m11, m12 := cx[1], cy[1], cz[1]
	m20, m21, m22 := cx[2], cy[2], cz[2]

	var q common.Quat
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		k := 0.5 / math32.Sqrt(trace+1)
		q = common.Quat{(m21 - m12) * k, (m02 - m20) * k, (m10 - m01) * k, 0.25 / k}
	case m00 > m11 && m00 > m22:
		k := 2 * math32.Sqrt(1+m00-m11-m22)
		q = common.Quat{0.25 * k, (m01 + m10) / k, (m02 + m20) / k, (m21 - m12) / k}
	case m11 > m22:
		k := 2 * math32.Sqrt(1+m11-m00-m22)
		q = common.Quat{(m01 + m10) / k, 0.25 * k, (m12 + m21) / k, (m02 - m20) / k}
	default:
		k := 2 * math32.Sqrt(1+m22-m00-m11)
		q = common.Quat{(m02 + m20) / k, (m12 + m21) / k, 0.25 * k, (m10 - m01) / k}
	}
	return t, q.Normalize(), s
}

// triangulate converts strip and fan index lists to a triangle list.
func triangulate(mode gltf.PrimitiveMode, indices []uint32) []uint32 {
	switch mode {
	case gltf.PrimitiveTriangleStrip:
		out := make([]uint32, 0, max(len(indices)-2, 0)*3)
		for i := 0; i+2 < len(indices); i++ {
			if i%2 == 0 {
				out = append(out, indices[i], indices[i+1], indices[i+2])
			} else {
				out = append(out, indices[i+1], indices[i], indices[i+2])
			}
		}
		return out
	case gltf.PrimitiveTriangleFan:
		out := make([]uint32, 0, max(len(indices)-2, 0)*3)
		for i := 1; i+1 < len(indices); i++ {
			out = append(out, indices[0], indices[i], indices[i+1])
		}
		return out
	default:
		return indices
	}
}

// lineList converts strip and loop index lists to a line list.
func lineList(mode gltf.PrimitiveMode, indices []uint32) []uint32 {
	if mode != gltf.PrimitiveLineStrip && mode != gltf.PrimitiveLineLoop {
		return indices
	}
	out := make([]uint32, 0, len(indices)*2)
	for i := 0; i+1 < len(indices); i++ {
		out = append(out, indices[i], indices[i+1])
	}
	if mode == gltf.PrimitiveLineLoop && len(indices) > 2 {
		out = append(out, indices[len(indices)-1], indices[0])
	}
	return out
}
