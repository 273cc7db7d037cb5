package material

// PlaceholderName is the name given to the light-absorbing placeholder material.
const PlaceholderName = "bloom:placeholder"

// NewPlaceholder creates the material substituted for non-bloom nodes during the
// bloom-source pass: black, non-emissive and non-reflective, and unlit so no
// light in the rig can make it contribute to the bright-pass.
//
// Returns:
//   - Material: the placeholder
func NewPlaceholder() Material {
	return NewMaterial(
		WithName(PlaceholderName),
		WithBaseColor([4]float32{0, 0, 0, 1}),
		WithEmissive([3]float32{0, 0, 0}, 0),
		WithMetallic(0),
		WithRoughness(1),
		WithUnlit(true),
	)
}

// IsPlaceholder reports whether m was created by NewPlaceholder.
func IsPlaceholder(m Material) bool {
	return m != nil && m.Name() == PlaceholderName
}
