package scene

import "github.com/Carmen-Shannon/ruins/common"

// Topology selects how a mesh's index list is assembled into primitives.
type Topology int

const (
	// TopologyTriangles draws an indexed triangle list.
	TopologyTriangles Topology = iota

	// TopologyLines draws an indexed line list.
	TopologyLines
)

// Mesh is CPU-side geometry for one drawable primitive.
// The renderer uploads it once, keyed by the owning node.
type Mesh struct {
	Name     string
	Vertices []GPUVertex
	Indices  []uint32
	Topology Topology
}

// VertexBytes serializes all vertices for a vertex buffer upload.
//
// Returns:
//   - []byte: the packed vertex data
func (m *Mesh) VertexBytes() []byte {
	if len(m.Vertices) == 0 {
		return nil
	}
	stride := m.Vertices[0].Size()
	buf := make([]byte, stride*len(m.Vertices))
	for i := range m.Vertices {
		m.Vertices[i].marshalInto(buf[i*stride : (i+1)*stride])
	}
	return buf
}

// IndexBytes serializes the index list for an index buffer upload.
func (m *Mesh) IndexBytes() []byte {
	return common.Uint32sToBytes(m.Indices)
}

// Bounds returns the axis-aligned bounding box of the vertex positions.
// An empty mesh yields two zero vectors.
func (m *Mesh) Bounds() (lo, hi common.Vec3) {
	if len(m.Vertices) == 0 {
		return lo, hi
	}
	lo = m.Vertices[0].Position
	hi = lo
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], v.Position[i])
			hi[i] = max(hi[i], v.Position[i])
		}
	}
	return lo, hi
}

// GenerateNormals replaces vertex normals with area-weighted face normals
// accumulated per vertex. Only triangle meshes are affected.
func (m *Mesh) GenerateNormals() {
	if m.Topology != TopologyTriangles {
		return
	}
	acc := make([]common.Vec3, len(m.Vertices))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if int(a) >= len(acc) || int(b) >= len(acc) || int(c) >= len(acc) {
			continue
		}
		pa := common.Vec3(m.Vertices[a].Position)
		pb := common.Vec3(m.Vertices[b].Position)
		pc := common.Vec3(m.Vertices[c].Position)
		n := pb.Sub(pa).Cross(pc.Sub(pa))
		acc[a] = acc[a].Add(n)
		acc[b] = acc[b].Add(n)
		acc[c] = acc[c].Add(n)
	}
	for i := range m.Vertices {
		m.Vertices[i].Normal = acc[i].Normalize()
	}
}
