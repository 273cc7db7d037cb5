package scene

// Class partitions scene nodes for the selective bloom compositor.
type Class int

const (
	// ClassNormal nodes are darkened during the bloom-source pass.
	ClassNormal Class = iota

	// ClassBloom nodes keep their material in the bloom-source pass and glow.
	ClassBloom
)

// String returns a lowercase name for the class.
func (c Class) String() string {
	switch c {
	case ClassNormal:
		return "normal"
	case ClassBloom:
		return "bloom"
	default:
		return "unknown"
	}
}

// Classifier maps a node name to its bloom class.
type Classifier func(name string) Class

// ClassifyByName returns a Classifier that marks nodes whose name exactly matches
// one of names as ClassBloom and everything else as ClassNormal.
//
// Parameters:
//   - names: node names that should glow
//
// Returns:
//   - Classifier: the classifier
func ClassifyByName(names ...string) Classifier {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(name string) Class {
		if _, ok := set[name]; ok {
			return ClassBloom
		}
		return ClassNormal
	}
}
