package scene

import (
	"github.com/google/uuid"

	"github.com/Carmen-Shannon/ruins/common"
	"github.com/Carmen-Shannon/ruins/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/ruins/engine/renderer/material"
)

// node is the implementation of the Node interface.
type node struct {
	id    uuid.UUID
	name  string
	class Class

	mat  material.Material
	mesh *Mesh

	castShadow    bool
	receiveShadow bool
	visible       bool

	position common.Vec3
	rotation common.Quat
	scale    common.Vec3

	parent   *node
	children []*node

	gpu bind_group_provider.BindGroupProvider
}

// Node is a render object in the scene graph: a transform, an optional mesh
// and material, and the bloom classification used by the compositor.
//
// Nodes without a mesh act as groups. A node's material may be nil, in which
// case the renderer skips it and the compositor never touches it.
type Node interface {
	// ID returns the node's unique identifier.
	//
	// Returns:
	//   - uuid.UUID: the identifier, stable for the node's lifetime
	ID() uuid.UUID

	// Name returns the node name, as authored in the asset.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Class returns the bloom classification.
	//
	// Returns:
	//   - Class: ClassNormal or ClassBloom
	Class() Class

	// SetClass changes the bloom classification.
	//
	// Parameters:
	//   - c: the new class
	SetClass(c Class)

	// Material returns the current material, or nil.
	//
	// Returns:
	//   - material.Material: the material or nil
	Material() material.Material

	// SetMaterial replaces the current material. nil is allowed.
	//
	// Parameters:
	//   - m: the new material
	SetMaterial(m material.Material)

	// Mesh returns the node's geometry, or nil for group nodes.
	//
	// Returns:
	//   - *Mesh: the geometry or nil
	Mesh() *Mesh

	CastShadow() bool
	SetCastShadow(cast bool)
	ReceiveShadow() bool
	SetReceiveShadow(receive bool)

	// Visible reports whether the node and its subtree are drawn.
	Visible() bool
	SetVisible(visible bool)

	Position() common.Vec3
	SetPosition(p common.Vec3)
	Rotation() common.Quat
	SetRotation(r common.Quat)
	Scale() common.Vec3
	SetScale(s common.Vec3)

	// LocalMatrix returns the node transform relative to its parent.
	//
	// Returns:
	//   - common.Mat4: the local TRS matrix
	LocalMatrix() common.Mat4

	// WorldMatrix returns the node transform in world space, composed from the
	// parent chain.
	//
	// Returns:
	//   - common.Mat4: the world matrix
	WorldMatrix() common.Mat4

	// Parent returns the parent node, or nil for roots.
	Parent() Node

	// Children returns the direct children in insertion order.
	Children() []Node

	// AddChild attaches child under this node, detaching it from any
	// previous parent.
	//
	// Parameters:
	//   - child: the node to attach, must have been created by NewNode
	AddChild(child Node)

	// GPU returns the renderer's per-node resources (model uniform and mesh
	// buffers), or nil before the first draw.
	GPU() bind_group_provider.BindGroupProvider

	// SetGPU attaches per-node GPU resources.
	SetGPU(p bind_group_provider.BindGroupProvider)
}

var _ Node = &node{}

// NewNode creates a Node with a fresh random ID and the options applied.
// New nodes are visible, unscaled, and classified ClassNormal.
//
// Parameters:
//   - name: the node name
//   - options: functional options
//
// Returns:
//   - Node: the new node
func NewNode(name string, options ...NodeBuilderOption) Node {
	n := &node{
		id:       uuid.New(),
		name:     name,
		class:    ClassNormal,
		visible:  true,
		rotation: common.QuatIdentity,
		scale:    common.Vec3{1, 1, 1},
	}
	for _, opt := range options {
		opt(n)
	}
	return n
}

func (n *node) ID() uuid.UUID {
	return n.id
}

func (n *node) Name() string {
	return n.name
}

func (n *node) Class() Class {
	return n.class
}

func (n *node) SetClass(c Class) {
	n.class = c
}

func (n *node) Material() material.Material {
	return n.mat
}

func (n *node) SetMaterial(m material.Material) {
	n.mat = m
}

func (n *node) Mesh() *Mesh {
	return n.mesh
}

func (n *node) CastShadow() bool {
	return n.castShadow
}

func (n *node) SetCastShadow(cast bool) {
	n.castShadow = cast
}

func (n *node) ReceiveShadow() bool {
	return n.receiveShadow
}

func (n *node) SetReceiveShadow(receive bool) {
	n.receiveShadow = receive
}

func (n *node) Visible() bool {
	return n.visible
}

func (n *node) SetVisible(visible bool) {
	n.visible = visible
}

func (n *node) Position() common.Vec3 {
	return n.position
}

func (n *node) SetPosition(p common.Vec3) {
	n.position = p
}

func (n *node) Rotation() common.Quat {
	return n.rotation
}

func (n *node) SetRotation(r common.Quat) {
	n.rotation = r.Normalize()
}

func (n *node) Scale() common.Vec3 {
	return n.scale
}

func (n *node) SetScale(s common.Vec3) {
	n.scale = s
}

func (n *node) LocalMatrix() common.Mat4 {
	return common.ComposeTRS(n.position, n.rotation, n.scale)
}

func (n *node) WorldMatrix() common.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul(m)
	}
	return m
}

func (n *node) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *node) Children() []Node {
	out := make([]Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *node) AddChild(child Node) {
	c, ok := child.(*node)
	if !ok || c == n {
		return
	}
	if c.parent != nil {
		c.parent.removeChild(c)
	}
	c.parent = n
	n.children = append(n.children, c)
}

func (n *node) GPU() bind_group_provider.BindGroupProvider {
	return n.gpu
}

func (n *node) SetGPU(p bind_group_provider.BindGroupProvider) {
	n.gpu = p
}

func (n *node) removeChild(c *node) {
	for i, existing := range n.children {
		if existing == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}
