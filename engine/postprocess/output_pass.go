package postprocess

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/ruins/engine/renderer/render_target"
	"github.com/Carmen-Shannon/ruins/engine/renderer/shader"
)

// outputPass tone maps the HDR read target and encodes it for the display.
type outputPass struct {
	ShaderPass
	params OutputParams
	format wgpu.TextureFormat
}

// OutputPass converts the linear HDR frame to display colours: exposure and
// tone mapping first, then sRGB encoding when the screen format does not
// encode on write.
type OutputPass interface {
	Pass

	// Exposure returns the exposure multiplier applied before tone mapping.
	Exposure() float32

	// SetExposure sets the exposure multiplier.
	SetExposure(exposure float32) error

	// ToneMapping returns the tone mapping operator.
	ToneMapping() uint32

	// SetToneMapping sets the tone mapping operator, ToneMappingNone or ToneMappingReinhard.
	SetToneMapping(op uint32) error
}

var _ OutputPass = &outputPass{}

// NewOutputPass creates the final display pass.
//
// Parameters:
//   - device: the GPU device
//   - exposure: exposure multiplier, 1 leaves the frame unchanged
//   - toneMapping: ToneMappingNone or ToneMappingReinhard
//
// Returns:
//   - OutputPass: the pass
//   - error: if the shader or its uniform fails to create
func NewOutputPass(device *wgpu.Device, exposure float32, toneMapping uint32) (OutputPass, error) {
	sp, err := NewShaderPass(device, shader.KeyOutput,
		WithName("output"),
		WithInputTexture("source_texture"),
	)
	if err != nil {
		return nil, err
	}
	p := &outputPass{
		ShaderPass: sp,
		params:     OutputParams{Exposure: exposure, ToneMapping: toneMapping},
	}
	if err := p.write(); err != nil {
		sp.Release()
		return nil, err
	}
	return p, nil
}

func (p *outputPass) Exposure() float32 {
	return p.params.Exposure
}

func (p *outputPass) SetExposure(exposure float32) error {
	p.params.Exposure = exposure
	return p.write()
}

func (p *outputPass) ToneMapping() uint32 {
	return p.params.ToneMapping
}

func (p *outputPass) SetToneMapping(op uint32) error {
	p.params.ToneMapping = op
	return p.write()
}

func (p *outputPass) Render(ctx *RenderContext, write, read render_target.RenderTarget) error {
	target := p.outputTarget(ctx, write)
	if target != nil && target.Format() != p.format {
		p.format = target.Format()
		if err := p.write(); err != nil {
			return err
		}
	}
	return p.ShaderPass.Render(ctx, write, read)
}

// outputTarget mirrors the embedded pass's choice of target.
func (p *outputPass) outputTarget(ctx *RenderContext, write render_target.RenderTarget) render_target.RenderTarget {
	if p.RenderToScreen() {
		return ctx.Screen
	}
	return write
}

func (p *outputPass) write() error {
	p.params.EncodeSRGB = !render_target.IsSRGB(p.format)
	return p.SetUniform("params", p.params.Marshal())
}
