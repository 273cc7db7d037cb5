package light

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/ruins/common"
)

// MaxDirectionalLights is the number of directional lights the lit shader evaluates.
const MaxDirectionalLights = 2

// MaxPointLights is the number of point lights the lit shader evaluates.
const MaxPointLights = 4

// NoShadow marks an unused shadow slot in GPULightUniform.
const NoShadow = 0xFFFFFFFF

// GPULightUniformSource is the WGSL definition of the LightUniform struct and
// its light slot structs.
//
//go:embed assets/light_uniform.wgsl
var GPULightUniformSource string

// GPUShadowUniformSource is the WGSL definition of the ShadowUniform struct.
//
//go:embed assets/shadow_uniform.wgsl
var GPUShadowUniformSource string

// GPUShadowViewSource is the WGSL definition of the ShadowView struct.
//
//go:embed assets/shadow_view.wgsl
var GPUShadowViewSource string

// GPUDirectionalLight is one directional light slot of GPULightUniform.
// Size: 32 bytes.
type GPUDirectionalLight struct {
	Direction [4]float32 // xyz: travel direction, w unused
	Color     [4]float32 // rgb: colour * intensity, w unused
}

// GPUPointLight is one point light slot of GPULightUniform.
// Size: 32 bytes.
type GPUPointLight struct {
	Position [4]float32 // xyz: world position, w: range (0 = unbounded)
	Color    [4]float32 // rgb: colour * intensity, w: decay exponent
}

// GPULightUniform is the GPU-aligned light rig read by the lit fragment shader.
// Matches the WGSL LightUniform struct (see GPULightUniformSource).
// Size: 256 bytes.
//
// Layout:
//
//	vec4<f32> ambient                 (16 bytes, offset   0)
//	vec4<f32> hemisphere_sky          (16 bytes, offset  16)
//	vec4<f32> hemisphere_ground       (16 bytes, offset  32)
//	vec4<u32> counts                  (16 bytes, offset  48) dir count, point count, dir shadow slot, point shadow slot
//	DirectionalLight directional[2]   (64 bytes, offset  64)
//	PointLight point[4]               (128 bytes, offset 128)
type GPULightUniform struct {
	Ambient           [4]float32
	HemisphereSky     [4]float32
	HemisphereGround  [4]float32
	DirectionalCount  uint32
	PointCount        uint32
	DirectionalShadow uint32
	PointShadow       uint32
	Directional       [MaxDirectionalLights]GPUDirectionalLight
	Point             [MaxPointLights]GPUPointLight
}

// Size returns the size of the GPULightUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (256)
func (g *GPULightUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULightUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 256-byte buffer ready for GPU upload
func (g *GPULightUniform) Marshal() []byte {
	buf := make([]byte, 256)
	off := common.PutFloats(buf, 0, g.Ambient[:]...)
	off = common.PutFloats(buf, off, g.HemisphereSky[:]...)
	off = common.PutFloats(buf, off, g.HemisphereGround[:]...)
	off = common.PutUints(buf, off, g.DirectionalCount, g.PointCount, g.DirectionalShadow, g.PointShadow)
	for _, d := range g.Directional {
		off = common.PutFloats(buf, off, d.Direction[:]...)
		off = common.PutFloats(buf, off, d.Color[:]...)
	}
	for _, p := range g.Point {
		off = common.PutFloats(buf, off, p.Position[:]...)
		off = common.PutFloats(buf, off, p.Color[:]...)
	}
	return buf
}

// NewLightUniform packs the enabled lights of a rig into the GPU layout.
// Ambient and hemisphere lights are summed. Directional and point lights fill
// their slots in order; lights past the slot budget are dropped. The first
// shadow-casting directional and point light claim the shadow slots.
//
// Parameters:
//   - lights: the rig
//
// Returns:
//   - GPULightUniform: the packed uniform
func NewLightUniform(lights []Light) GPULightUniform {
	u := GPULightUniform{
		DirectionalShadow: NoShadow,
		PointShadow:       NoShadow,
	}
	for _, l := range lights {
		if l == nil || !l.Enabled() {
			continue
		}
		c := l.Color().Scale(l.Intensity())
		switch l.Type() {
		case LightTypeAmbient:
			addRGB(&u.Ambient, c)
		case LightTypeHemisphere:
			addRGB(&u.HemisphereSky, c)
			addRGB(&u.HemisphereGround, l.GroundColor().Scale(l.Intensity()))
		case LightTypeDirectional:
			if u.DirectionalCount >= MaxDirectionalLights {
				continue
			}
			d := l.Direction()
			u.Directional[u.DirectionalCount] = GPUDirectionalLight{
				Direction: [4]float32{d[0], d[1], d[2], 0},
				Color:     [4]float32{c[0], c[1], c[2], 0},
			}
			if l.CastsShadows() && u.DirectionalShadow == NoShadow {
				u.DirectionalShadow = u.DirectionalCount
			}
			u.DirectionalCount++
		case LightTypePoint, LightTypeSpot:
			if u.PointCount >= MaxPointLights {
				continue
			}
			p := l.Position()
			u.Point[u.PointCount] = GPUPointLight{
				Position: [4]float32{p[0], p[1], p[2], l.Range()},
				Color:    [4]float32{c[0], c[1], c[2], l.Decay()},
			}
			if l.CastsShadows() && u.PointShadow == NoShadow {
				u.PointShadow = u.PointCount
			}
			u.PointCount++
		}
	}
	return u
}

func addRGB(dst *[4]float32, c common.Vec3) {
	dst[0] += c[0]
	dst[1] += c[1]
	dst[2] += c[2]
}

// GPUShadowParams holds the sampling parameters of one shadow map.
// Size: 16 bytes.
type GPUShadowParams struct {
	Bias       float32
	NormalBias float32
	TexelSize  float32
	Enabled    uint32
}

// GPUShadowUniform is the GPU-aligned shadow data read by the lit fragment shader.
// Matches the WGSL ShadowUniform struct (see GPUShadowUniformSource).
// Size: 480 bytes.
//
// Layout:
//
//	mat4x4<f32> directional_vp   ( 64 bytes, offset   0)
//	mat4x4<f32> point_vp[6]      (384 bytes, offset  64)
//	ShadowParams directional     ( 16 bytes, offset 448)
//	ShadowParams point           ( 16 bytes, offset 464)
type GPUShadowUniform struct {
	DirectionalVP     common.Mat4
	PointVP           [PointShadowFaces]common.Mat4
	DirectionalParams GPUShadowParams
	PointParams       GPUShadowParams
}

// Size returns the size of the GPUShadowUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (480)
func (g *GPUShadowUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUShadowUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 480-byte buffer ready for GPU upload
func (g *GPUShadowUniform) Marshal() []byte {
	buf := make([]byte, 480)
	off := common.PutFloats(buf, 0, g.DirectionalVP[:]...)
	for _, m := range g.PointVP {
		off = common.PutFloats(buf, off, m[:]...)
	}
	for _, p := range []GPUShadowParams{g.DirectionalParams, g.PointParams} {
		off = common.PutFloats(buf, off, p.Bias, p.NormalBias, p.TexelSize)
		off = common.PutUints(buf, off, p.Enabled)
	}
	return buf
}

// NewShadowUniform computes the shadow view-projections of the first
// shadow-casting directional and point lights of a rig.
//
// Parameters:
//   - lights: the rig
//
// Returns:
//   - GPUShadowUniform: the packed uniform
//   - Light: the directional shadow caster, or nil
//   - Light: the point shadow caster, or nil
func NewShadowUniform(lights []Light) (GPUShadowUniform, Light, Light) {
	var u GPUShadowUniform
	var dir, point Light
	for _, l := range lights {
		if l == nil || !l.Enabled() || !l.CastsShadows() {
			continue
		}
		cfg := l.Shadow().WithDefaults()
		params := GPUShadowParams{
			Bias:       cfg.Bias,
			NormalBias: cfg.NormalBias,
			TexelSize:  cfg.TexelSize(),
			Enabled:    1,
		}
		switch {
		case l.Type() == LightTypeDirectional && dir == nil:
			dir = l
			u.DirectionalVP = DirectionalViewProjection(l)
			u.DirectionalParams = params
		case l.Type() == LightTypePoint && point == nil:
			point = l
			u.PointVP = PointFaceViewProjections(l)
			u.PointParams = params
		}
	}
	return u, dir, point
}

// GPUShadowViewUniform is the vertex uniform of a single shadow depth pass.
// Size: 64 bytes.
type GPUShadowViewUniform struct {
	LightVP common.Mat4
}

// Size returns the size of the GPUShadowViewUniform struct in bytes.
func (g *GPUShadowViewUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUShadowViewUniform struct into a byte buffer suitable for GPU upload.
func (g *GPUShadowViewUniform) Marshal() []byte {
	buf := make([]byte, 64)
	common.PutFloats(buf, 0, g.LightVP[:]...)
	return buf
}
