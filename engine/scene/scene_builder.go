package scene

import "github.com/Carmen-Shannon/ruins/engine/light"

// SceneBuilderOption is a functional option for configuring a Scene during construction.
type SceneBuilderOption func(*scene)

// WithName sets the scene name used in logs.
//
// Parameters:
//   - name: the name
//
// Returns:
//   - SceneBuilderOption: functional option to set the name
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithNodes adds root nodes to the scene.
func WithNodes(nodes ...Node) SceneBuilderOption {
	return func(s *scene) {
		s.Add(nodes...)
	}
}

// WithLights adds lights to the scene's rig.
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.AddLight(lights...)
	}
}
