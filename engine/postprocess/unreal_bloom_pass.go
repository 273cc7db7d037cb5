package postprocess

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/ruins/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/ruins/engine/renderer/render_target"
	"github.com/Carmen-Shannon/ruins/engine/renderer/shader"
)

// Default bloom settings of the ruins scene.
const (
	DefaultBloomStrength  float32 = 0.2
	DefaultBloomRadius    float32 = 2
	DefaultBloomThreshold float32 = 0.001
)

// luminositySmoothWidth is the soft knee above the threshold.
const luminositySmoothWidth float32 = 0.01

var (
	blurHorizontal = [2]float32{1, 0}
	blurVertical   = [2]float32{0, 1}
)

// unrealBloomPass extracts bright pixels from the read target, blurs them
// over a mip chain, and adds the weighted blur levels back onto the read target.
type unrealBloomPass struct {
	passState
	device  *wgpu.Device
	queue   *wgpu.Queue
	factory render_target.Factory

	strength  float32
	radius    float32
	threshold float32

	bright     render_target.RenderTarget
	horizontal [BloomMips]render_target.RenderTarget
	vertical   [BloomMips]render_target.RenderTarget

	luminosity *fullscreenProgram
	blur       *fullscreenProgram
	composite  *fullscreenProgram
	copy       *fullscreenProgram

	luminosityParams *wgpu.Buffer
	blurParams       [BloomMips][2]*wgpu.Buffer
	compositeParams  *wgpu.Buffer
	copyParams       *wgpu.Buffer
}

// UnrealBloomPass is the mip-chain bloom pass. It draws onto the read target
// and does not swap.
type UnrealBloomPass interface {
	Pass

	// Strength returns the bloom intensity.
	Strength() float32

	// SetStrength sets the bloom intensity.
	SetStrength(strength float32) error

	// Radius returns the bloom radius, which shifts weight between mip levels.
	Radius() float32

	// SetRadius sets the bloom radius.
	SetRadius(radius float32) error

	// Threshold returns the luminance above which pixels bloom.
	Threshold() float32

	// SetThreshold sets the luminance threshold.
	SetThreshold(threshold float32) error

	// BrightTarget returns the high-pass target.
	BrightTarget() render_target.RenderTarget

	// BlurTargets returns the horizontal and vertical blur targets of every mip level.
	BlurTargets() (horizontal, vertical [BloomMips]render_target.RenderTarget)
}

var _ UnrealBloomPass = &unrealBloomPass{}

// NewUnrealBloomPass creates the bloom pass with its programs and parameter buffers.
// Targets are allocated when the pass is added to a composer.
//
// Parameters:
//   - device: the GPU device
//   - strength: bloom intensity
//   - radius: bloom radius
//   - threshold: luminance threshold
//
// Returns:
//   - UnrealBloomPass: the pass
//   - error: if a shader, sampler or buffer fails to create
func NewUnrealBloomPass(device *wgpu.Device, strength, radius, threshold float32) (UnrealBloomPass, error) {
	p := &unrealBloomPass{
		passState: newPassState("unreal_bloom", false),
		device:    device,
		queue:     device.GetQueue(),
		factory:   render_target.NewFactory(device),
		strength:  strength,
		radius:    radius,
		threshold: threshold,
	}
	if err := p.init(); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

func (p *unrealBloomPass) init() error {
	var err error
	if p.luminosity, err = newFullscreenProgram(p.device, shader.KeyLuminosity); err != nil {
		return err
	}
	if p.blur, err = newFullscreenProgram(p.device, shader.KeyBlur); err != nil {
		return err
	}
	if p.composite, err = newFullscreenProgram(p.device, shader.KeyBloomComposite); err != nil {
		return err
	}
	if p.copy, err = newFullscreenProgram(p.device, shader.KeyCopy); err != nil {
		return err
	}

	if p.luminosityParams, err = newUniformBuffer(p.device, "bloom luminosity params", p.luminosityUniform().Marshal()); err != nil {
		return err
	}
	if p.compositeParams, err = newUniformBuffer(p.device, "bloom composite params", NewCompositeParams(p.strength, p.radius).Marshal()); err != nil {
		return err
	}
	if p.copyParams, err = newUniformBuffer(p.device, "bloom copy params", CopyParams{Opacity: 1}.Marshal()); err != nil {
		return err
	}
	// sized for a 1x1 chain until SetSize runs
	for i := range BloomMips {
		for axis, dir := range [2][2]float32{blurHorizontal, blurVertical} {
			data := NewBlurParams(dir, MipSize{Width: 1, Height: 1}, KernelRadii[i]).Marshal()
			label := fmt.Sprintf("bloom blur params %d/%d", i, axis)
			if p.blurParams[i][axis], err = newUniformBuffer(p.device, label, data); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *unrealBloomPass) luminosityUniform() LuminosityParams {
	return LuminosityParams{
		Threshold:   p.threshold,
		SmoothWidth: luminositySmoothWidth,
	}
}

func (p *unrealBloomPass) Strength() float32 {
	return p.strength
}

func (p *unrealBloomPass) SetStrength(strength float32) error {
	p.strength = strength
	return p.queue.WriteBuffer(p.compositeParams, 0, NewCompositeParams(p.strength, p.radius).Marshal())
}

func (p *unrealBloomPass) Radius() float32 {
	return p.radius
}

func (p *unrealBloomPass) SetRadius(radius float32) error {
	p.radius = radius
	return p.queue.WriteBuffer(p.compositeParams, 0, NewCompositeParams(p.strength, p.radius).Marshal())
}

func (p *unrealBloomPass) Threshold() float32 {
	return p.threshold
}

func (p *unrealBloomPass) SetThreshold(threshold float32) error {
	p.threshold = threshold
	return p.queue.WriteBuffer(p.luminosityParams, 0, p.luminosityUniform().Marshal())
}

func (p *unrealBloomPass) BrightTarget() render_target.RenderTarget {
	return p.bright
}

func (p *unrealBloomPass) BlurTargets() (horizontal, vertical [BloomMips]render_target.RenderTarget) {
	return p.horizontal, p.vertical
}

func (p *unrealBloomPass) SetSize(width, height uint32) error {
	p.releaseTargets()

	sizes := MipSizes(width, height)
	var err error
	p.bright, err = p.factory("bloom bright", sizes[0].Width, sizes[0].Height, render_target.DefaultFormat)
	if err != nil {
		return err
	}
	for i, size := range sizes {
		if p.horizontal[i], err = p.factory(fmt.Sprintf("bloom horizontal %d", i), size.Width, size.Height, render_target.DefaultFormat); err != nil {
			return err
		}
		if p.vertical[i], err = p.factory(fmt.Sprintf("bloom vertical %d", i), size.Width, size.Height, render_target.DefaultFormat); err != nil {
			return err
		}
		for axis, dir := range [2][2]float32{blurHorizontal, blurVertical} {
			if err = p.queue.WriteBuffer(p.blurParams[i][axis], 0, NewBlurParams(dir, size, KernelRadii[i]).Marshal()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *unrealBloomPass) Render(ctx *RenderContext, write, read render_target.RenderTarget) error {
	if p.bright == nil {
		return fmt.Errorf("unreal bloom: pass has no targets, add it to a composer first")
	}
	enc := ctx.Encoder

	// high-pass into the bright target
	err := p.luminosity.draw(enc, p.bright, true, nil, programBindings{
		textures: map[string]*wgpu.TextureView{"source_texture": read.View()},
		buffers:  map[string]*wgpu.Buffer{"params": p.luminosityParams},
	})
	if err != nil {
		return err
	}

	// separable blur down the mip chain
	input := p.bright
	for i := range BloomMips {
		if err = p.blurStep(enc, input, p.horizontal[i], p.blurParams[i][0]); err != nil {
			return err
		}
		if err = p.blurStep(enc, p.horizontal[i], p.vertical[i], p.blurParams[i][1]); err != nil {
			return err
		}
		input = p.vertical[i]
	}

	// weighted composite of every level into the first horizontal target
	views := make(map[string]*wgpu.TextureView, BloomMips)
	for i, rt := range p.vertical {
		views[fmt.Sprintf("blur_texture_%d", i+1)] = rt.View()
	}
	err = p.composite.draw(enc, p.horizontal[0], true, nil, programBindings{
		textures: views,
		buffers:  map[string]*wgpu.Buffer{"params": p.compositeParams},
	})
	if err != nil {
		return err
	}

	if p.renderToScreen {
		err = p.copy.draw(enc, ctx.Screen, true, nil, programBindings{
			textures: map[string]*wgpu.TextureView{"source_texture": read.View()},
			buffers:  map[string]*wgpu.Buffer{"params": p.copyParams},
		})
		if err != nil {
			return err
		}
	}

	// add the bloom onto the frame
	return p.copy.draw(enc, p.outputTarget(ctx, read), false, pipeline.AdditiveBlend, programBindings{
		textures: map[string]*wgpu.TextureView{"source_texture": p.horizontal[0].View()},
		buffers:  map[string]*wgpu.Buffer{"params": p.copyParams},
	})
}

func (p *unrealBloomPass) blurStep(enc *wgpu.CommandEncoder, src, dst render_target.RenderTarget, params *wgpu.Buffer) error {
	return p.blur.draw(enc, dst, true, nil, programBindings{
		textures: map[string]*wgpu.TextureView{"source_texture": src.View()},
		buffers:  map[string]*wgpu.Buffer{"params": params},
	})
}

func (p *unrealBloomPass) releaseTargets() {
	if p.bright != nil {
		p.bright.Release()
		p.bright = nil
	}
	for i := range BloomMips {
		if p.horizontal[i] != nil {
			p.horizontal[i].Release()
			p.horizontal[i] = nil
		}
		if p.vertical[i] != nil {
			p.vertical[i].Release()
			p.vertical[i] = nil
		}
	}
}

func (p *unrealBloomPass) Release() {
	p.releaseTargets()
	for _, prog := range []*fullscreenProgram{p.luminosity, p.blur, p.composite, p.copy} {
		if prog != nil {
			prog.release()
		}
	}
	buffers := []*wgpu.Buffer{p.luminosityParams, p.compositeParams, p.copyParams}
	for i := range BloomMips {
		buffers = append(buffers, p.blurParams[i][0], p.blurParams[i][1])
	}
	for _, buf := range buffers {
		if buf != nil {
			buf.Release()
		}
	}
}
