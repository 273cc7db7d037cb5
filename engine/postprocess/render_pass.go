package postprocess

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/ruins/engine/camera"
	"github.com/Carmen-Shannon/ruins/engine/renderer/render_target"
	"github.com/Carmen-Shannon/ruins/engine/scene"
)

// SceneDrawer draws a scene from a camera into a colour target.
type SceneDrawer interface {
	DrawScene(enc *wgpu.CommandEncoder, target render_target.RenderTarget, s scene.Scene, cam camera.Camera) error
}

// renderPass draws the frame's scene into the read target. It does not swap,
// so the next pass reads what it drew.
type renderPass struct {
	passState
	drawer SceneDrawer
	camera camera.Camera
}

var _ Pass = &renderPass{}

// NewRenderPass creates a pass that draws ctx.Scene with cam.
//
// Parameters:
//   - drawer: the scene renderer
//   - cam: the viewing camera
//
// Returns:
//   - Pass: the scene pass
func NewRenderPass(drawer SceneDrawer, cam camera.Camera) Pass {
	return &renderPass{
		passState: newPassState("render", false),
		drawer:    drawer,
		camera:    cam,
	}
}

func (p *renderPass) SetSize(width, height uint32) error {
	return nil
}

func (p *renderPass) Render(ctx *RenderContext, write, read render_target.RenderTarget) error {
	return p.drawer.DrawScene(ctx.Encoder, p.outputTarget(ctx, read), ctx.Scene, p.camera)
}

func (p *renderPass) Release() {}
