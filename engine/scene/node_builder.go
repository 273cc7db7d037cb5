package scene

import (
	"github.com/Carmen-Shannon/ruins/common"
	"github.com/Carmen-Shannon/ruins/engine/renderer/material"
)

// NodeBuilderOption is a functional option for configuring a Node during construction.
type NodeBuilderOption func(*node)

// WithMesh sets the node's geometry.
//
// Parameters:
//   - m: the mesh
//
// Returns:
//   - NodeBuilderOption: functional option to set the mesh
func WithMesh(m *Mesh) NodeBuilderOption {
	return func(n *node) {
		n.mesh = m
	}
}

// WithMaterial sets the node's initial material.
//
// Parameters:
//   - m: the material, nil is allowed
//
// Returns:
//   - NodeBuilderOption: functional option to set the material
func WithMaterial(m material.Material) NodeBuilderOption {
	return func(n *node) {
		n.mat = m
	}
}

// WithClass sets the bloom classification.
//
// Parameters:
//   - c: the class
//
// Returns:
//   - NodeBuilderOption: functional option to set the class
func WithClass(c Class) NodeBuilderOption {
	return func(n *node) {
		n.class = c
	}
}

// WithPosition sets the local translation.
func WithPosition(p common.Vec3) NodeBuilderOption {
	return func(n *node) {
		n.position = p
	}
}

// WithRotation sets the local rotation.
func WithRotation(r common.Quat) NodeBuilderOption {
	return func(n *node) {
		n.rotation = r.Normalize()
	}
}

// WithScale sets the local scale.
func WithScale(s common.Vec3) NodeBuilderOption {
	return func(n *node) {
		n.scale = s
	}
}

// WithShadows sets whether the node casts and receives shadows.
//
// Parameters:
//   - cast: the node is drawn into shadow maps
//   - receive: shadow maps darken the node
//
// Returns:
//   - NodeBuilderOption: functional option to set shadow flags
func WithShadows(cast, receive bool) NodeBuilderOption {
	return func(n *node) {
		n.castShadow = cast
		n.receiveShadow = receive
	}
}

// WithChildren attaches children to the node.
func WithChildren(children ...Node) NodeBuilderOption {
	return func(n *node) {
		for _, c := range children {
			n.AddChild(c)
		}
	}
}
