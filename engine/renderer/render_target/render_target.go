package render_target

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultFormat is the HDR colour format of off-screen targets.
const DefaultFormat = wgpu.TextureFormatRGBA16Float

// renderTarget is the implementation of the RenderTarget interface.
type renderTarget struct {
	label   string
	texture *wgpu.Texture
	view    *wgpu.TextureView
	format  wgpu.TextureFormat
	width   uint32
	height  uint32
	owned   bool
}

// RenderTarget is a colour texture that a pass can draw into and a later pass
// can sample from.
type RenderTarget interface {
	// Label returns the debug label of the target.
	Label() string

	// Texture returns the backing texture, or nil for a wrapped view.
	Texture() *wgpu.Texture

	// View returns the texture view used as a colour attachment or binding.
	View() *wgpu.TextureView

	// Format returns the colour format.
	Format() wgpu.TextureFormat

	// Width returns the width in pixels.
	Width() uint32

	// Height returns the height in pixels.
	Height() uint32

	// Release frees the GPU texture if the target owns it. Wrapped views are
	// left to their owner.
	Release()
}

// Factory creates render targets. Composers take a Factory so they can be
// exercised without a GPU device.
type Factory func(label string, width, height uint32, format wgpu.TextureFormat) (RenderTarget, error)

var _ RenderTarget = &renderTarget{}

// NewRenderTarget allocates a 2D colour texture usable as both an attachment
// and a sampled binding.
//
// Parameters:
//   - device: the GPU device
//   - label: debug label
//   - width, height: size in pixels, clamped to at least 1
//   - format: the colour format
//
// Returns:
//   - RenderTarget: the new target
//   - error: if texture or view creation fails
func NewRenderTarget(device *wgpu.Device, label string, width, height uint32, format wgpu.TextureFormat) (RenderTarget, error) {
	width, height = max(width, 1), max(height, 1)
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create render target %q: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create render target view %q: %w", label, err)
	}
	return &renderTarget{
		label:   label,
		texture: tex,
		view:    view,
		format:  format,
		width:   width,
		height:  height,
		owned:   true,
	}, nil
}

// NewFactory returns a Factory that allocates targets on device.
func NewFactory(device *wgpu.Device) Factory {
	return func(label string, width, height uint32, format wgpu.TextureFormat) (RenderTarget, error) {
		return NewRenderTarget(device, label, width, height, format)
	}
}

// Wrap presents an externally owned view, such as the current surface
// texture, as a RenderTarget. Release on the result is a no-op.
//
// Parameters:
//   - label: debug label
//   - view: the view to wrap
//   - format: the view's format
//   - width, height: size in pixels
//
// Returns:
//   - RenderTarget: the wrapper
func Wrap(label string, view *wgpu.TextureView, format wgpu.TextureFormat, width, height uint32) RenderTarget {
	return &renderTarget{
		label:  label,
		view:   view,
		format: format,
		width:  width,
		height: height,
	}
}

func (t *renderTarget) Label() string {
	return t.label
}

func (t *renderTarget) Texture() *wgpu.Texture {
	return t.texture
}

func (t *renderTarget) View() *wgpu.TextureView {
	return t.view
}

func (t *renderTarget) Format() wgpu.TextureFormat {
	return t.format
}

func (t *renderTarget) Width() uint32 {
	return t.width
}

func (t *renderTarget) Height() uint32 {
	return t.height
}

func (t *renderTarget) Release() {
	if !t.owned {
		return
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

// IsSRGB reports whether format applies sRGB encoding on write.
func IsSRGB(format wgpu.TextureFormat) bool {
	switch format {
	case wgpu.TextureFormatRGBA8UnormSrgb, wgpu.TextureFormatBGRA8UnormSrgb:
		return true
	default:
		return false
	}
}
