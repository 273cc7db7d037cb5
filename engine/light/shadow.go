package light

import (
	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/ruins/common"
)

// DefaultShadowMapSize is the default width and height in texels of a shadow map.
const DefaultShadowMapSize = 512

// DefaultShadowHalfExtent is the default half-size in world units of a
// directional light's orthographic shadow frustum.
const DefaultShadowHalfExtent float32 = 5

// DefaultShadowNear is the default near plane of a shadow camera.
const DefaultShadowNear float32 = 0.5

// DefaultShadowFar is the default far plane of a shadow camera.
const DefaultShadowFar float32 = 500

// PointShadowFaces is the number of views rendered for a point light shadow, one per cube face.
const PointShadowFaces = 6

// ShadowConfig holds the shadow camera and filtering settings of a light.
type ShadowConfig struct {
	// MapSize is the width and height in texels of the depth map.
	MapSize int
	// Near and Far bound the shadow camera's depth range.
	Near float32
	Far  float32
	// Bias is added to the fragment depth before comparison. Negative values
	// push the comparison toward the light and reduce acne.
	Bias float32
	// NormalBias offsets the lookup position along the surface normal, in world units.
	NormalBias float32
	// HalfExtent is the orthographic half-size of a directional shadow frustum.
	HalfExtent float32
}

// DefaultShadowConfig returns the shadow settings used when a field is left zero.
//
// Returns:
//   - ShadowConfig: the defaults
func DefaultShadowConfig() ShadowConfig {
	return ShadowConfig{
		MapSize:    DefaultShadowMapSize,
		Near:       DefaultShadowNear,
		Far:        DefaultShadowFar,
		HalfExtent: DefaultShadowHalfExtent,
	}
}

// WithDefaults returns c with zero fields replaced by DefaultShadowConfig values.
// Bias and NormalBias keep their zero values.
func (c ShadowConfig) WithDefaults() ShadowConfig {
	d := DefaultShadowConfig()
	c.MapSize = common.Coalesce(c.MapSize, d.MapSize)
	c.Near = common.Coalesce(c.Near, d.Near)
	c.Far = common.Coalesce(c.Far, d.Far)
	c.HalfExtent = common.Coalesce(c.HalfExtent, d.HalfExtent)
	return c
}

// TexelSize returns 1 / MapSize, the UV distance between shadow texels.
func (c ShadowConfig) TexelSize() float32 {
	size := c.WithDefaults().MapSize
	return 1 / float32(size)
}

// DirectionalViewProjection builds the orthographic view-projection of a
// directional light's shadow camera, placed at the light's position and aimed
// at its target.
//
// Parameters:
//   - l: the directional light
//
// Returns:
//   - common.Mat4: the light's view-projection matrix
func DirectionalViewProjection(l Light) common.Mat4 {
	cfg := DefaultShadowConfig()
	if s := l.Shadow(); s != nil {
		cfg = s.WithDefaults()
	}

	dir := l.Direction()
	up := common.Vec3{0, 1, 0}
	if math32.Abs(dir[1]) > 0.99 {
		up = common.Vec3{1, 0, 0}
	}
	view := common.LookAt(l.Position(), l.Position().Add(dir), up)
	h := cfg.HalfExtent
	proj := common.Ortho(-h, h, -h, h, cfg.Near, cfg.Far)
	return proj.Mul(view)
}

// cubeFaces lists the look direction and up vector of each point-shadow face in
// the order +X, -X, +Y, -Y, +Z, -Z. CubeFace uses the same order.
var cubeFaces = [PointShadowFaces]struct {
	dir common.Vec3
	up  common.Vec3
}{
	{common.Vec3{1, 0, 0}, common.Vec3{0, 1, 0}},
	{common.Vec3{-1, 0, 0}, common.Vec3{0, 1, 0}},
	{common.Vec3{0, 1, 0}, common.Vec3{0, 0, 1}},
	{common.Vec3{0, -1, 0}, common.Vec3{0, 0, 1}},
	{common.Vec3{0, 0, 1}, common.Vec3{0, 1, 0}},
	{common.Vec3{0, 0, -1}, common.Vec3{0, 1, 0}},
}

// PointFaceViewProjections builds the six 90 degree perspective
// view-projections of a point light's shadow cube.
//
// Parameters:
//   - l: the point light
//
// Returns:
//   - [PointShadowFaces]common.Mat4: one matrix per cube face, indexed like CubeFace
func PointFaceViewProjections(l Light) [PointShadowFaces]common.Mat4 {
	cfg := DefaultShadowConfig()
	if s := l.Shadow(); s != nil {
		cfg = s.WithDefaults()
	}
	proj := common.Perspective(math32.Pi/2, 1, cfg.Near, cfg.Far)

	var out [PointShadowFaces]common.Mat4
	pos := l.Position()
	for i, f := range cubeFaces {
		out[i] = proj.Mul(common.LookAt(pos, pos.Add(f.dir), f.up))
	}
	return out
}

// CubeFace returns the point-shadow face index whose frustum contains the
// direction d from the light to a fragment. The lit shader selects faces the
// same way.
//
// Parameters:
//   - d: direction from the light position
//
// Returns:
//   - int: face index in [0, 6)
func CubeFace(d common.Vec3) int {
	ax, ay, az := math32.Abs(d[0]), math32.Abs(d[1]), math32.Abs(d[2])
	switch {
	case ax >= ay && ax >= az:
		if d[0] >= 0 {
			return 0
		}
		return 1
	case ay >= az:
		if d[1] >= 0 {
			return 2
		}
		return 3
	default:
		if d[2] >= 0 {
			return 4
		}
		return 5
	}
}
