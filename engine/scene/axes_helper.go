package scene

import (
	"github.com/Carmen-Shannon/ruins/engine/renderer/material"
)

// AxesHelperName is the node name given to axes helpers.
const AxesHelperName = "axes_helper"

// NewAxesHelper creates a line-mesh node drawing the X, Y and Z axes in red,
// green and blue, size units long. The node uses an unlit vertex-coloured
// material and casts no shadows.
//
// Parameters:
//   - size: axis length in local units
//   - options: extra node options such as WithPosition
//
// Returns:
//   - Node: the helper node
func NewAxesHelper(size float32, options ...NodeBuilderOption) Node {
	red := [4]float32{1, 0, 0, 1}
	green := [4]float32{0, 1, 0, 1}
	blue := [4]float32{0, 0, 1, 1}

	mesh := &Mesh{
		Name: AxesHelperName,
		Vertices: []GPUVertex{
			{Color: red},
			{Position: [3]float32{size, 0, 0}, Color: red},
			{Color: green},
			{Position: [3]float32{0, size, 0}, Color: green},
			{Color: blue},
			{Position: [3]float32{0, 0, size}, Color: blue},
		},
		Indices:  []uint32{0, 1, 2, 3, 4, 5},
		Topology: TopologyLines,
	}

	opts := append([]NodeBuilderOption{
		WithMesh(mesh),
		WithMaterial(material.NewMaterial(material.WithName(AxesHelperName), material.WithUnlit(true))),
		WithShadows(false, false),
	}, options...)
	return NewNode(AxesHelperName, opts...)
}
