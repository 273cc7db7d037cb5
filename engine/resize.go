package engine

import "github.com/chewxy/math32"

// Resizer is anything sized to the framebuffer. renderer.Renderer and
// camera.Camera satisfy it; composers are adapted with ResizerFunc.
type Resizer interface {
	// Resize applies a new framebuffer size in pixels.
	Resize(width, height uint32) error
}

// ResizerFunc adapts a function to a Resizer.
type ResizerFunc func(width, height uint32) error

// Resize calls f.
func (f ResizerFunc) Resize(width, height uint32) error {
	return f(width, height)
}

// RenderSize scales a framebuffer size so its pixel ratio does not exceed
// maxPixelRatio. A ratio already at or below the cap leaves the size unchanged.
//
// Parameters:
//   - width, height: the framebuffer size in pixels
//   - pixelRatio: framebuffer pixels per window coordinate
//   - maxPixelRatio: the cap; zero or less disables it
//
// Returns:
//   - uint32, uint32: the render size, at least 1x1
func RenderSize(width, height uint32, pixelRatio, maxPixelRatio float32) (uint32, uint32) {
	if maxPixelRatio <= 0 || pixelRatio <= maxPixelRatio {
		return max(width, 1), max(height, 1)
	}
	scale := maxPixelRatio / pixelRatio
	w := uint32(math32.Round(float32(width) * scale))
	h := uint32(math32.Round(float32(height) * scale))
	return max(w, 1), max(h, 1)
}
