package postprocess

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/ruins/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/ruins/engine/renderer/render_target"
	"github.com/Carmen-Shannon/ruins/engine/renderer/shader"
)

// programPipelineKey identifies one pipeline variant of a fullscreen program.
type programPipelineKey struct {
	format wgpu.TextureFormat
	blend  *wgpu.BlendState
}

// fullscreenProgram draws a single fullscreen triangle with one embedded
// fragment shader. Pipelines are created per target format and blend state
// on first use, since the same program may write HDR targets and the surface.
type fullscreenProgram struct {
	device  *wgpu.Device
	shader  shader.Shader
	sampler *wgpu.Sampler

	pipelines map[programPipelineKey]pipeline.Pipeline
}

// programBindings names the resources bound to a draw by WGSL variable name.
// Samplers are always the program's own linear clamp sampler.
type programBindings struct {
	textures map[string]*wgpu.TextureView
	buffers  map[string]*wgpu.Buffer
}

func newFullscreenProgram(device *wgpu.Device, key string) (*fullscreenProgram, error) {
	s, err := shader.Load(key)
	if err != nil {
		return nil, err
	}
	sampler, err := device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         key + " Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler for %s: %w", key, err)
	}
	return &fullscreenProgram{
		device:    device,
		shader:    s,
		sampler:   sampler,
		pipelines: make(map[programPipelineKey]pipeline.Pipeline),
	}, nil
}

// pipeline returns the pipeline variant for a target format and blend state.
func (f *fullscreenProgram) pipeline(format wgpu.TextureFormat, blend *wgpu.BlendState) (pipeline.Pipeline, error) {
	k := programPipelineKey{format: format, blend: blend}
	if p, ok := f.pipelines[k]; ok {
		return p, nil
	}
	p := pipeline.NewPipeline(f.shader.Key(), f.shader,
		pipeline.WithColorFormat(format),
		pipeline.WithDepthFormat(wgpu.TextureFormatUndefined),
		pipeline.WithCullMode(wgpu.CullModeNone),
		pipeline.WithBlendState(blend),
	)
	if err := p.Init(f.device, nil); err != nil {
		return nil, err
	}
	f.pipelines[k] = p
	return p, nil
}

// entries resolves every group 0 binding of the shader against b.
func (f *fullscreenProgram) entries(b programBindings) ([]wgpu.BindGroupEntry, error) {
	desc := f.shader.BindGroupLayoutDescriptor(0)
	out := make([]wgpu.BindGroupEntry, 0, len(desc.Entries))
	for _, entry := range desc.Entries {
		name := f.shader.BindGroupVarName(0, int(entry.Binding))
		switch {
		case entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			view := b.textures[name]
			if view == nil {
				return nil, fmt.Errorf("%s: no texture bound to %s", f.shader.Key(), name)
			}
			out = append(out, wgpu.BindGroupEntry{Binding: entry.Binding, TextureView: view})
		case entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			out = append(out, wgpu.BindGroupEntry{Binding: entry.Binding, Sampler: f.sampler})
		default:
			buf := b.buffers[name]
			if buf == nil {
				return nil, fmt.Errorf("%s: no buffer bound to %s", f.shader.Key(), name)
			}
			out = append(out, wgpu.BindGroupEntry{Binding: entry.Binding, Buffer: buf, Size: wgpu.WholeSize})
		}
	}
	return out, nil
}

// draw records one fullscreen draw into target.
//
// Parameters:
//   - enc: the frame encoder
//   - target: the colour attachment
//   - clear: clear the target first instead of loading it
//   - blend: the blend state, nil to overwrite
//   - b: the resources to bind
//
// Returns:
//   - error: if the pipeline or bind group cannot be created
func (f *fullscreenProgram) draw(enc *wgpu.CommandEncoder, target render_target.RenderTarget, clear bool, blend *wgpu.BlendState, b programBindings) error {
	p, err := f.pipeline(target.Format(), blend)
	if err != nil {
		return err
	}
	entries, err := f.entries(b)
	if err != nil {
		return err
	}
	bindGroup, err := f.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   f.shader.Key() + " Bind Group",
		Layout:  p.BindGroupLayout(0),
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("%s: failed to create bind group: %w", f.shader.Key(), err)
	}
	defer bindGroup.Release()

	loadOp := wgpu.LoadOpLoad
	if clear {
		loadOp = wgpu.LoadOpClear
	}
	pass := enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: f.shader.Key() + " Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       target.View(),
			LoadOp:     loadOp,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{},
		}},
	})
	pass.SetPipeline(p.RenderPipeline())
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()
	return nil
}

func (f *fullscreenProgram) release() {
	for _, p := range f.pipelines {
		p.Release()
	}
	clear(f.pipelines)
	if f.sampler != nil {
		f.sampler.Release()
		f.sampler = nil
	}
}

// newUniformBuffer creates a uniform buffer holding data.
func newUniformBuffer(device *wgpu.Device, label string, data []byte) (*wgpu.Buffer, error) {
	buf, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: data,
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create uniform buffer %s: %w", label, err)
	}
	return buf, nil
}
