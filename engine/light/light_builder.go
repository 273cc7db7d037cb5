package light

import "github.com/Carmen-Shannon/ruins/common"

// LightBuilderOption is a functional option for configuring a Light during construction.
type LightBuilderOption func(*lightImpl)

// WithColor sets the light colour from a 0xRRGGBB sRGB literal.
//
// Parameters:
//   - hex: the packed sRGB colour
//
// Returns:
//   - LightBuilderOption: functional option to set the colour
func WithColor(hex uint32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = common.HexColor(hex)
	}
}

// WithLinearColor sets the light colour in linear RGB.
func WithLinearColor(c common.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = c
	}
}

// WithGroundColor sets a hemisphere light's ground colour from a 0xRRGGBB sRGB literal.
//
// Parameters:
//   - hex: the packed sRGB colour
//
// Returns:
//   - LightBuilderOption: functional option to set the ground colour
func WithGroundColor(hex uint32) LightBuilderOption {
	return func(l *lightImpl) {
		l.groundColor = common.HexColor(hex)
	}
}

// WithIntensity sets the intensity multiplier.
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithPosition sets the world-space position.
func WithPosition(p common.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = p
	}
}

// WithTarget sets the point a directional or spot light aims at.
func WithTarget(t common.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.target = t
	}
}

// WithRange sets the cutoff distance of a point or spot light. Zero disables the cutoff.
func WithRange(r float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.lightRange = r
	}
}

// WithDecay sets the falloff exponent of a point or spot light.
func WithDecay(decay float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.decay = decay
	}
}

// WithSpotCone sets the inner and outer cone half-angles in degrees.
//
// Parameters:
//   - innerDeg: full intensity inside this angle
//   - outerDeg: zero intensity outside this angle
//
// Returns:
//   - LightBuilderOption: functional option to set the cone
func WithSpotCone(innerDeg, outerDeg float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.innerCone = cosDeg(innerDeg)
		l.outerCone = cosDeg(outerDeg)
	}
}

// WithEnabled sets whether the light contributes to shading.
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}

// WithShadow enables shadow casting with the given configuration.
//
// Parameters:
//   - cfg: shadow map settings
//
// Returns:
//   - LightBuilderOption: functional option to enable shadows
func WithShadow(cfg ShadowConfig) LightBuilderOption {
	return func(l *lightImpl) {
		c := cfg
		l.shadow = &c
	}
}
