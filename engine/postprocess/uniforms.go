package postprocess

import (
	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/ruins/common"
)

// BloomMips is the number of blur levels in the bloom mip chain.
const BloomMips = 5

// MaxKernelRadius is the largest blur kernel radius the blur shader holds coefficients for.
const MaxKernelRadius = 12

// KernelRadii are the blur kernel radii used at each mip level.
var KernelRadii = [BloomMips]int{3, 5, 7, 9, 11}

// DefaultBloomFactors weight each mip level in the composite before radius mixing.
var DefaultBloomFactors = [BloomMips]float32{1.0, 0.8, 0.6, 0.4, 0.2}

// Tone mapping operators applied by the OutputPass.
const (
	ToneMappingNone uint32 = iota
	ToneMappingReinhard
)

// GaussianCoefficients returns the one-sided Gaussian weights for a blur kernel,
// using the kernel radius as sigma.
//
// Parameters:
//   - radius: kernel radius, the number of taps including the centre
//
// Returns:
//   - []float32: radius weights, centre first
func GaussianCoefficients(radius int) []float32 {
	if radius <= 0 {
		return nil
	}
	sigma := float32(radius)
	out := make([]float32, radius)
	for i := range radius {
		x := float32(i)
		out[i] = 0.39894 * math32.Exp(-0.5*x*x/(sigma*sigma)) / sigma
	}
	return out
}

// BloomFactors returns the per-mip composite weights after radius mixing,
// lerp(f, 1.2 - f, radius), as evaluated by the composite shader.
//
// Parameters:
//   - radius: the bloom radius
//
// Returns:
//   - [BloomMips]float32: the effective weights
func BloomFactors(radius float32) [BloomMips]float32 {
	var out [BloomMips]float32
	for i, f := range DefaultBloomFactors {
		out[i] = common.Lerp(f, 1.2-f, radius)
	}
	return out
}

// MipSize is the pixel size of one level of the bloom chain.
type MipSize struct {
	Width  uint32
	Height uint32
}

// MipSizes returns the sizes of the bloom chain for a composer size. The first
// level is half the composer size and each following level halves again, rounded
// to the nearest pixel and never below one.
//
// Parameters:
//   - width, height: the composer size
//
// Returns:
//   - [BloomMips]MipSize: the level sizes
func MipSizes(width, height uint32) [BloomMips]MipSize {
	var out [BloomMips]MipSize
	w, h := halve(width), halve(height)
	for i := range out {
		out[i] = MipSize{Width: w, Height: h}
		w, h = halve(w), halve(h)
	}
	return out
}

func halve(v uint32) uint32 {
	return max(uint32(math32.Round(float32(v)/2)), 1)
}

// LuminosityParams is the uniform of the luminosity high-pass shader.
// Size: 32 bytes.
type LuminosityParams struct {
	DefaultColor   [4]float32
	Threshold      float32
	SmoothWidth    float32
	DefaultOpacity float32
}

// Marshal serializes the params for GPU upload.
func (p LuminosityParams) Marshal() []byte {
	buf := make([]byte, 32)
	off := common.PutFloats(buf, 0, p.DefaultColor[:]...)
	common.PutFloats(buf, off, p.Threshold, p.SmoothWidth, p.DefaultOpacity, 0)
	return buf
}

// BlurParams is the uniform of one separable blur step.
// Size: 80 bytes.
//
// Layout:
//
//	vec2<f32> direction        (offset  0)
//	vec2<f32> inv_size         (offset  8)
//	u32       kernel_radius    (offset 16) followed by 12 bytes padding
//	vec4<f32> coefficients[3]  (offset 32)
type BlurParams struct {
	Direction    [2]float32
	InvSize      [2]float32
	KernelRadius uint32
	Coefficients [MaxKernelRadius]float32
}

// NewBlurParams builds the params for one axis of a mip level.
//
// Parameters:
//   - direction: (1,0) for horizontal, (0,1) for vertical
//   - size: the mip level size
//   - radius: the kernel radius, at most MaxKernelRadius
//
// Returns:
//   - BlurParams: the params with Gaussian coefficients filled
func NewBlurParams(direction [2]float32, size MipSize, radius int) BlurParams {
	radius = min(radius, MaxKernelRadius)
	p := BlurParams{
		Direction:    direction,
		InvSize:      [2]float32{1 / float32(size.Width), 1 / float32(size.Height)},
		KernelRadius: uint32(radius),
	}
	copy(p.Coefficients[:], GaussianCoefficients(radius))
	return p
}

// Marshal serializes the params for GPU upload.
func (p BlurParams) Marshal() []byte {
	buf := make([]byte, 80)
	off := common.PutFloats(buf, 0, p.Direction[0], p.Direction[1], p.InvSize[0], p.InvSize[1])
	common.PutUints(buf, off, p.KernelRadius, 0, 0, 0)
	common.PutFloats(buf, 32, p.Coefficients[:]...)
	return buf
}

// CompositeParams is the uniform of the bloom composite shader.
// Size: 128 bytes.
//
// Layout:
//
//	f32       strength   (offset  0)
//	f32       radius     (offset  4) followed by 8 bytes padding
//	vec4<f32> factors[2] (offset 16)
//	vec4<f32> tints[5]   (offset 48)
type CompositeParams struct {
	Strength float32
	Radius   float32
	Factors  [BloomMips]float32
	Tints    [BloomMips]common.Vec3
}

// NewCompositeParams builds composite params with the default factors and white tints.
func NewCompositeParams(strength, radius float32) CompositeParams {
	p := CompositeParams{
		Strength: strength,
		Radius:   radius,
		Factors:  DefaultBloomFactors,
	}
	for i := range p.Tints {
		p.Tints[i] = common.Vec3{1, 1, 1}
	}
	return p
}

// Marshal serializes the params for GPU upload.
func (p CompositeParams) Marshal() []byte {
	buf := make([]byte, 128)
	common.PutFloats(buf, 0, p.Strength, p.Radius, 0, 0)
	common.PutFloats(buf, 16, p.Factors[:]...)
	for i, tint := range p.Tints {
		common.PutFloats(buf, 48+i*16, tint[0], tint[1], tint[2], 1)
	}
	return buf
}

// CopyParams is the uniform of the copy shader.
// Size: 16 bytes.
type CopyParams struct {
	Opacity float32
}

// Marshal serializes the params for GPU upload.
func (p CopyParams) Marshal() []byte {
	buf := make([]byte, 16)
	common.PutFloats(buf, 0, p.Opacity, 0, 0, 0)
	return buf
}

// OutputParams is the uniform of the output shader.
// Size: 16 bytes.
type OutputParams struct {
	Exposure    float32
	ToneMapping uint32
	EncodeSRGB  bool
}

// Marshal serializes the params for GPU upload.
func (p OutputParams) Marshal() []byte {
	buf := make([]byte, 16)
	off := common.PutFloats(buf, 0, p.Exposure)
	common.PutUints(buf, off, p.ToneMapping, common.BoolToUint32(p.EncodeSRGB), 0)
	return buf
}
