package material

// MaterialBuilderOption is a functional option for configuring a Material during construction.
type MaterialBuilderOption func(*material)

// WithName sets the material name.
//
// Parameters:
//   - name: the identifier, usually the glTF material name
//
// Returns:
//   - MaterialBuilderOption: functional option to set the name
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColor sets the linear RGBA albedo.
//
// Parameters:
//   - color: the base colour
//
// Returns:
//   - MaterialBuilderOption: functional option to set the base colour
func WithBaseColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithEmissive sets the emitted colour and its intensity multiplier.
//
// Parameters:
//   - color: linear RGB emission
//   - intensity: multiplier applied in the shader
//
// Returns:
//   - MaterialBuilderOption: functional option to set emission
func WithEmissive(color [3]float32, intensity float32) MaterialBuilderOption {
	return func(m *material) {
		m.emissive = color
		m.emissiveIntensity = intensity
	}
}

// WithMetallic sets the metallic factor, clamped to [0, 1].
func WithMetallic(metallic float32) MaterialBuilderOption {
	return func(m *material) {
		m.metallic = clamp01(metallic)
	}
}

// WithRoughness sets the roughness factor, clamped to [0, 1].
func WithRoughness(roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.roughness = clamp01(roughness)
	}
}

// WithUnlit marks the material as unlit.
func WithUnlit(unlit bool) MaterialBuilderOption {
	return func(m *material) {
		m.unlit = unlit
	}
}

// WithDoubleSided disables back-face culling for the material.
func WithDoubleSided(doubleSided bool) MaterialBuilderOption {
	return func(m *material) {
		m.doubleSided = doubleSided
	}
}

// WithBaseColorTexture sets the albedo texture.
//
// Parameters:
//   - tex: decoded RGBA8 pixels
//
// Returns:
//   - MaterialBuilderOption: functional option to set the texture
func WithBaseColorTexture(tex *TextureData) MaterialBuilderOption {
	return func(m *material) {
		m.baseColorTexture = tex
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
