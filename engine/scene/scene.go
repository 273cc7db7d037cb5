package scene

import (
	"github.com/Carmen-Shannon/ruins/engine/light"
)

// scene is the implementation of the Scene interface.
type scene struct {
	name   string
	roots  []Node
	lights []light.Light
}

// Scene is the root of the scene graph: top-level nodes plus the light rig
// that shades them.
//
// Scenes are owned by the frame loop and are not safe for concurrent mutation.
type Scene interface {
	// Name returns the scene name.
	Name() string

	// Add appends nodes as roots, in order.
	//
	// Parameters:
	//   - nodes: the nodes to add
	Add(nodes ...Node)

	// Roots returns the top-level nodes in insertion order.
	//
	// Returns:
	//   - []Node: the root nodes
	Roots() []Node

	// Traverse visits every node depth-first, parents before children, in
	// insertion order.
	//
	// Parameters:
	//   - fn: called once per node
	Traverse(fn func(Node))

	// TraverseVisible is like Traverse but skips invisible nodes and their
	// subtrees.
	TraverseVisible(fn func(Node))

	// Find returns the first node named name in traversal order.
	//
	// Parameters:
	//   - name: the node name
	//
	// Returns:
	//   - Node: the node, or nil if none matches
	Find(name string) Node

	// Count returns the number of nodes in the graph.
	Count() int

	// AddLight appends lights to the rig.
	AddLight(lights ...light.Light)

	// Lights returns the light rig.
	Lights() []light.Light
}

var _ Scene = &scene{}

// NewScene creates an empty Scene with the options applied.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Scene: the new scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{name: "scene"}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Add(nodes ...Node) {
	for _, n := range nodes {
		if n != nil {
			s.roots = append(s.roots, n)
		}
	}
}

func (s *scene) Roots() []Node {
	return s.roots
}

func (s *scene) Traverse(fn func(Node)) {
	for _, r := range s.roots {
		walk(r, false, fn)
	}
}

func (s *scene) TraverseVisible(fn func(Node)) {
	for _, r := range s.roots {
		walk(r, true, fn)
	}
}

func (s *scene) Find(name string) Node {
	var found Node
	s.Traverse(func(n Node) {
		if found == nil && n.Name() == name {
			found = n
		}
	})
	return found
}

func (s *scene) Count() int {
	count := 0
	s.Traverse(func(Node) { count++ })
	return count
}

func (s *scene) AddLight(lights ...light.Light) {
	for _, l := range lights {
		if l != nil {
			s.lights = append(s.lights, l)
		}
	}
}

func (s *scene) Lights() []light.Light {
	return s.lights
}

func walk(n Node, visibleOnly bool, fn func(Node)) {
	if visibleOnly && !n.Visible() {
		return
	}
	fn(n)
	for _, c := range n.Children() {
		walk(c, visibleOnly, fn)
	}
}
