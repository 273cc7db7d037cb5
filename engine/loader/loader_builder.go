package loader

import (
	"log/slog"

	"github.com/Carmen-Shannon/ruins/engine/scene"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithClassifier sets the classifier applied to every imported node name.
// Children generated for multi-primitive meshes inherit their parent's bloom class.
//
// Parameters:
//   - c: the classifier, nil leaves every node ClassNormal
//
// Returns:
//   - LoaderBuilderOption: a function that applies the classifier option to a loader
func WithClassifier(c scene.Classifier) LoaderBuilderOption {
	return func(l *loader) {
		l.options.classifier = c
	}
}

// WithShadows sets the shadow flags given to every imported mesh node.
//
// Parameters:
//   - cast: mesh nodes are drawn into shadow maps
//   - receive: mesh nodes are darkened by shadow maps
//
// Returns:
//   - LoaderBuilderOption: a function that applies the shadow option to a loader
func WithShadows(cast, receive bool) LoaderBuilderOption {
	return func(l *loader) {
		l.options.castShadow = cast
		l.options.receiveShadow = receive
	}
}

// WithWorkers sets the maximum number of goroutines decoding primitives and images.
// The default is runtime.NumCPU().
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithLogger sets the logger used for load messages.
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithNode is an option builder that pre-populates the cache with a node tree.
//
// Parameters:
//   - key: the cache key for the tree
//   - n: the root node to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the node option to a loader
func WithNode(key string, n scene.Node) LoaderBuilderOption {
	return func(l *loader) {
		l.nodeCache[key] = n
	}
}
