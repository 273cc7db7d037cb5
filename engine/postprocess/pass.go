package postprocess

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/ruins/engine/renderer/render_target"
	"github.com/Carmen-Shannon/ruins/engine/scene"
)

// RenderContext carries the per-frame state a Composer hands to each pass.
type RenderContext struct {
	// Encoder records the frame's GPU commands.
	Encoder *wgpu.CommandEncoder

	// Scene is the graph drawn by scene passes.
	Scene scene.Scene

	// Screen is the presentable target, or nil for an off-screen render.
	Screen render_target.RenderTarget
}

// Pass is one step of a post-processing chain.
//
// Passes read from the composer's read target and write to its write target;
// a pass that reports NeedsSwap has the two exchanged after it runs. When
// RenderToScreen is set the pass writes to RenderContext.Screen instead.
type Pass interface {
	// Name returns the pass name used in logs and errors.
	Name() string

	// Enabled reports whether the composer runs this pass.
	Enabled() bool

	// SetEnabled enables or disables the pass.
	SetEnabled(enabled bool)

	// NeedsSwap reports whether the composer swaps read and write targets after this pass.
	NeedsSwap() bool

	// RenderToScreen reports whether the pass writes to the screen target.
	RenderToScreen() bool

	// SetRenderToScreen is called by the composer before each render.
	SetRenderToScreen(toScreen bool)

	// SetSize resizes any internal targets to the composer size.
	//
	// Parameters:
	//   - width, height: the composer size in pixels
	//
	// Returns:
	//   - error: if a target fails to allocate
	SetSize(width, height uint32) error

	// Render records the pass into ctx.Encoder.
	//
	// Parameters:
	//   - ctx: the frame context
	//   - write: the target to write when the pass swaps
	//   - read: the target holding the previous pass's output
	//
	// Returns:
	//   - error: if recording fails
	Render(ctx *RenderContext, write, read render_target.RenderTarget) error

	// Release frees GPU resources owned by the pass.
	Release()
}

// passState holds the flags every pass shares. Passes embed it.
type passState struct {
	name           string
	enabled        bool
	needsSwap      bool
	renderToScreen bool
}

func newPassState(name string, needsSwap bool) passState {
	return passState{name: name, enabled: true, needsSwap: needsSwap}
}

func (p *passState) Name() string {
	return p.name
}

func (p *passState) Enabled() bool {
	return p.enabled
}

func (p *passState) SetEnabled(enabled bool) {
	p.enabled = enabled
}

func (p *passState) NeedsSwap() bool {
	return p.needsSwap
}

func (p *passState) RenderToScreen() bool {
	return p.renderToScreen
}

func (p *passState) SetRenderToScreen(toScreen bool) {
	p.renderToScreen = toScreen
}

// outputTarget picks where a pass draws: the screen when it renders to screen,
// fallback otherwise.
func (p *passState) outputTarget(ctx *RenderContext, fallback render_target.RenderTarget) render_target.RenderTarget {
	if p.renderToScreen {
		return ctx.Screen
	}
	return fallback
}
