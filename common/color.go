package common

import "github.com/chewxy/math32"

// HexColor converts a 0xRRGGBB sRGB colour literal into linear RGB, matching
// how the scene's colour literals are authored.
//
// Parameters:
//   - hex: the packed sRGB colour
//
// Returns:
//   - Vec3: linear RGB in [0, 1]
func HexColor(hex uint32) Vec3 {
	r := float32((hex>>16)&0xFF) / 255
	g := float32((hex>>8)&0xFF) / 255
	b := float32(hex&0xFF) / 255
	return Vec3{SRGBToLinear(r), SRGBToLinear(g), SRGBToLinear(b)}
}

// SRGBToLinear applies the inverse sRGB transfer function to a single channel.
func SRGBToLinear(c float32) float32 {
	if c < 0.04045 {
		return c * 0.0773993808
	}
	return math32.Pow(c*0.9478672986+0.0521327014, 2.4)
}

// LinearToSRGB applies the sRGB transfer function to a single channel.
func LinearToSRGB(c float32) float32 {
	if c < 0.0031308 {
		return c * 12.92
	}
	return 1.055*math32.Pow(c, 0.41666) - 0.055
}
