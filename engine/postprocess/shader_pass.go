package postprocess

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/ruins/engine/renderer/render_target"
)

// DefaultInputTexture is the WGSL variable a ShaderPass binds the read target to.
const DefaultInputTexture = "base_texture"

// MixBloomTexture is the mix shader variable holding the bloom composer output.
const MixBloomTexture = "bloom_texture"

// shaderPass runs one fullscreen fragment shader over the read target.
type shaderPass struct {
	passState
	device  *wgpu.Device
	queue   *wgpu.Queue
	program *fullscreenProgram

	inputTexture string
	textures     map[string]render_target.RenderTarget
	buffers      map[string]*wgpu.Buffer
}

// ShaderPass is a fullscreen pass over an embedded shader. The read target is
// bound to the input texture variable; other textures and uniform buffers are
// bound by WGSL variable name.
type ShaderPass interface {
	Pass

	// SetTexture binds a target to a texture variable. A nil target unbinds it.
	//
	// Parameters:
	//   - name: the WGSL variable name
	//   - rt: the target to sample
	SetTexture(name string, rt render_target.RenderTarget)

	// Texture returns the target bound to name, or nil.
	Texture(name string) render_target.RenderTarget

	// SetUniform writes data to the uniform buffer bound to name, creating it on first use.
	//
	// Parameters:
	//   - name: the WGSL variable name
	//   - data: the marshalled uniform
	//
	// Returns:
	//   - error: if the buffer cannot be created or written
	SetUniform(name string, data []byte) error
}

var _ ShaderPass = &shaderPass{}

// NewShaderPass creates a swapping fullscreen pass for one of the embedded shaders.
//
// Parameters:
//   - device: the GPU device
//   - key: the shader key, e.g. shader.KeyMix
//   - options: functional options
//
// Returns:
//   - ShaderPass: the pass
//   - error: if the shader fails to load or its sampler fails to create
func NewShaderPass(device *wgpu.Device, key string, options ...ShaderPassOption) (ShaderPass, error) {
	program, err := newFullscreenProgram(device, key)
	if err != nil {
		return nil, err
	}
	p := &shaderPass{
		passState:    newPassState(key, true),
		device:       device,
		queue:        device.GetQueue(),
		program:      program,
		inputTexture: DefaultInputTexture,
		textures:     make(map[string]render_target.RenderTarget),
		buffers:      make(map[string]*wgpu.Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	return p, nil
}

func (p *shaderPass) SetTexture(name string, rt render_target.RenderTarget) {
	if rt == nil {
		delete(p.textures, name)
		return
	}
	p.textures[name] = rt
}

func (p *shaderPass) Texture(name string) render_target.RenderTarget {
	return p.textures[name]
}

func (p *shaderPass) SetUniform(name string, data []byte) error {
	if buf, ok := p.buffers[name]; ok {
		return p.queue.WriteBuffer(buf, 0, data)
	}
	buf, err := newUniformBuffer(p.device, p.name+" "+name, data)
	if err != nil {
		return err
	}
	p.buffers[name] = buf
	return nil
}

func (p *shaderPass) SetSize(width, height uint32) error {
	return nil
}

func (p *shaderPass) Render(ctx *RenderContext, write, read render_target.RenderTarget) error {
	views := make(map[string]*wgpu.TextureView, len(p.textures)+1)
	for name, rt := range p.textures {
		views[name] = rt.View()
	}
	views[p.inputTexture] = read.View()

	target := p.outputTarget(ctx, write)
	if err := p.program.draw(ctx.Encoder, target, true, nil, programBindings{textures: views, buffers: p.buffers}); err != nil {
		return fmt.Errorf("shader pass %s: %w", p.name, err)
	}
	return nil
}

func (p *shaderPass) Release() {
	p.program.release()
	for _, buf := range p.buffers {
		buf.Release()
	}
	clear(p.buffers)
}

// ShaderPassOption is a functional option for configuring a ShaderPass.
type ShaderPassOption func(*shaderPass)

// WithInputTexture sets the WGSL variable the read target is bound to.
func WithInputTexture(name string) ShaderPassOption {
	return func(p *shaderPass) {
		p.inputTexture = name
	}
}

// WithNeedsSwap overrides whether the composer swaps after the pass.
func WithNeedsSwap(needsSwap bool) ShaderPassOption {
	return func(p *shaderPass) {
		p.needsSwap = needsSwap
	}
}

// WithName sets the pass name used in logs and errors.
func WithName(name string) ShaderPassOption {
	return func(p *shaderPass) {
		p.name = name
	}
}
