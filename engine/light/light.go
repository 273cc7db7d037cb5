package light

import (
	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/ruins/common"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeAmbient adds a constant colour to every lit fragment.
	LightTypeAmbient LightType = iota

	// LightTypeHemisphere blends a sky colour and a ground colour by how far a
	// fragment's normal points up.
	LightTypeHemisphere

	// LightTypeDirectional shines along Target - Position with no falloff.
	LightTypeDirectional

	// LightTypePoint emits in all directions from Position, attenuated by
	// inverse-square falloff softened to zero at Range.
	LightTypePoint

	// LightTypeSpot is a point light restricted to a cone around Target - Position.
	LightTypeSpot
)

// String returns a lowercase name for the light type.
func (t LightType) String() string {
	switch t {
	case LightTypeAmbient:
		return "ambient"
	case LightTypeHemisphere:
		return "hemisphere"
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	case LightTypeSpot:
		return "spot"
	default:
		return "unknown"
	}
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType   LightType
	color       common.Vec3
	groundColor common.Vec3
	intensity   float32
	position    common.Vec3
	target      common.Vec3
	lightRange  float32
	decay       float32
	innerCone   float32 // cos(inner half-angle)
	outerCone   float32 // cos(outer half-angle)
	enabled     bool
	shadow      *ShadowConfig
}

// Light is a light source in the scene's rig.
//
// All light types share this interface. Properties that do not apply to a
// type (the ground colour of a point light, the range of a directional light)
// return their defaults and are ignored by the shader.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type
	Type() LightType

	// Color returns the linear RGB colour. For hemisphere lights this is the
	// sky colour.
	//
	// Returns:
	//   - common.Vec3: the colour
	Color() common.Vec3

	// GroundColor returns the linear RGB ground colour of a hemisphere light.
	GroundColor() common.Vec3

	// Intensity returns the scalar intensity multiplier.
	Intensity() float32

	// Position returns the world-space position.
	Position() common.Vec3

	// Target returns the world-space point a directional or spot light aims at.
	Target() common.Vec3

	// Direction returns the normalized direction from Position toward Target.
	//
	// Returns:
	//   - common.Vec3: the unit direction, or -Y when Position equals Target
	Direction() common.Vec3

	// Range returns the distance at which a point or spot light reaches zero.
	// Zero means unbounded.
	Range() float32

	// Decay returns the distance falloff exponent of a point or spot light.
	Decay() float32

	// InnerCone returns cos of the spot inner half-angle.
	InnerCone() float32

	// OuterCone returns cos of the spot outer half-angle.
	OuterCone() float32

	// Enabled reports whether the light contributes to shading.
	Enabled() bool

	// Shadow returns the shadow configuration, or nil if the light casts no shadows.
	//
	// Returns:
	//   - *ShadowConfig: the shadow settings or nil
	Shadow() *ShadowConfig

	// CastsShadows reports whether a shadow map is rendered for this light.
	CastsShadows() bool

	SetColor(c common.Vec3)
	SetIntensity(intensity float32)
	SetPosition(p common.Vec3)
	SetTarget(t common.Vec3)
	SetEnabled(enabled bool)
	SetShadow(cfg *ShadowConfig)
}

var _ Light = &lightImpl{}

// NewLight creates a Light of the given type with the options applied.
// Defaults: white, intensity 1, at the origin aiming down -Y, decay 2, no shadows.
//
// Parameters:
//   - lightType: the kind of light
//   - opts: functional options
//
// Returns:
//   - Light: the new light
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType: lightType,
		color:     common.Vec3{1, 1, 1},
		intensity: 1,
		target:    common.Vec3{0, -1, 0},
		decay:     2,
		innerCone: cosDeg(25),
		outerCone: cosDeg(35),
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Color() common.Vec3 {
	return l.color
}

func (l *lightImpl) GroundColor() common.Vec3 {
	return l.groundColor
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Position() common.Vec3 {
	return l.position
}

func (l *lightImpl) Target() common.Vec3 {
	return l.target
}

func (l *lightImpl) Direction() common.Vec3 {
	d := l.target.Sub(l.position)
	if d.Dot(d) == 0 {
		return common.Vec3{0, -1, 0}
	}
	return d.Normalize()
}

func (l *lightImpl) Range() float32 {
	return l.lightRange
}

func (l *lightImpl) Decay() float32 {
	return l.decay
}

func (l *lightImpl) InnerCone() float32 {
	return l.innerCone
}

func (l *lightImpl) OuterCone() float32 {
	return l.outerCone
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) Shadow() *ShadowConfig {
	return l.shadow
}

func (l *lightImpl) CastsShadows() bool {
	if l.shadow == nil {
		return false
	}
	return l.lightType == LightTypeDirectional || l.lightType == LightTypePoint
}

func (l *lightImpl) SetColor(c common.Vec3) {
	l.color = c
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetPosition(p common.Vec3) {
	l.position = p
}

func (l *lightImpl) SetTarget(t common.Vec3) {
	l.target = t
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func (l *lightImpl) SetShadow(cfg *ShadowConfig) {
	l.shadow = cfg
}

// cosDeg returns the cosine of an angle given in degrees.
func cosDeg(deg float32) float32 {
	return math32.Cos(common.DegToRad(deg))
}
