package pipeline

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/ruins/engine/renderer/shader"
)

// AdditiveBlend adds the source colour onto the target, used to layer bloom onto a frame.
var AdditiveBlend = &wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOne,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOne,
		Operation: wgpu.BlendOperationAdd,
	},
}

// pipeline is the implementation of the Pipeline interface.
// It holds the render state used to create the WebGPU pipeline and the objects created from it.
type pipeline struct {
	key    string
	shader shader.Shader

	colorFormat         wgpu.TextureFormat
	depthFormat         wgpu.TextureFormat
	sampleCount         uint32
	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthBias           int32
	depthBiasSlopeScale float32
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	writeMask           wgpu.ColorWriteMask
	blendState          *wgpu.BlendState

	module           *wgpu.ShaderModule
	bindGroupLayouts []*wgpu.BindGroupLayout
	ownedLayouts     map[int]bool
	pipelineLayout   *wgpu.PipelineLayout
	renderPipeline   *wgpu.RenderPipeline
}

// Pipeline is a render pipeline built from a single WGSL module. The module's
// vertex stage is always used; its fragment stage is used when present, so a
// depth-only shadow pipeline is a module without an @fragment entry.
type Pipeline interface {
	// Key returns the unique key associated with this pipeline, used for caching and lookups.
	Key() string

	// Shader returns the module the pipeline is built from.
	Shader() shader.Shader

	// Init creates the shader module, bind group layouts, pipeline layout and
	// render pipeline on device. Groups present in shared use the given
	// layout instead of one reflected from the shader, so bind groups can be
	// shared between pipelines.
	//
	// Parameters:
	//   - device: the GPU device
	//   - shared: externally owned layouts keyed by group index, may be nil
	//
	// Returns:
	//   - error: if any GPU object fails to create
	Init(device *wgpu.Device, shared map[int]*wgpu.BindGroupLayout) error

	// RenderPipeline returns the created pipeline, or nil before Init.
	RenderPipeline() *wgpu.RenderPipeline

	// BindGroupLayout returns the layout of one group after Init.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout, or nil if the group is not declared
	BindGroupLayout(group int) *wgpu.BindGroupLayout

	// ColorFormat returns the colour target format.
	ColorFormat() wgpu.TextureFormat

	// DepthFormat returns the depth attachment format, or TextureFormatUndefined for no depth.
	DepthFormat() wgpu.TextureFormat

	// SampleCount returns the multisample count.
	SampleCount() uint32

	// Descriptor builds the render pipeline descriptor for the given module and layout.
	//
	// Parameters:
	//   - module: the compiled shader module
	//   - layout: the pipeline layout
	//
	// Returns:
	//   - *wgpu.RenderPipelineDescriptor: the descriptor passed to CreateRenderPipeline
	Descriptor(module *wgpu.ShaderModule, layout *wgpu.PipelineLayout) *wgpu.RenderPipelineDescriptor

	// Release frees every GPU object the pipeline owns.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline with the options applied. Defaults: RGBA16Float
// colour, Depth24Plus depth with test and write, one sample, triangle list,
// counter-clockwise front faces, back-face culling, no blending.
//
// Parameters:
//   - key: unique identifier, used as the GPU object label
//   - s: the WGSL module
//   - options: functional options
//
// Returns:
//   - Pipeline: the pipeline descriptor, not yet created on a device
func NewPipeline(key string, s shader.Shader, options ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key:               key,
		shader:            s,
		colorFormat:       wgpu.TextureFormatRGBA16Float,
		depthFormat:       wgpu.TextureFormatDepth24Plus,
		sampleCount:       1,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeBack,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *pipeline) Key() string {
	return p.key
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) BindGroupLayout(group int) *wgpu.BindGroupLayout {
	if group < 0 || group >= len(p.bindGroupLayouts) {
		return nil
	}
	return p.bindGroupLayouts[group]
}

func (p *pipeline) ColorFormat() wgpu.TextureFormat {
	return p.colorFormat
}

func (p *pipeline) DepthFormat() wgpu.TextureFormat {
	return p.depthFormat
}

func (p *pipeline) SampleCount() uint32 {
	return p.sampleCount
}

func (p *pipeline) Init(device *wgpu.Device, shared map[int]*wgpu.BindGroupLayout) error {
	if p.shader == nil || !p.shader.HasStage(shader.ShaderTypeVertex) {
		return errors.New("pipeline " + p.key + ": a shader with a vertex stage is required")
	}

	module, err := device.CreateShaderModule(p.shader.Module())
	if err != nil {
		return fmt.Errorf("pipeline %s: failed to create shader module: %w", p.key, err)
	}
	p.module = module

	groupCount := p.shader.GroupCount()
	for g := range shared {
		groupCount = max(groupCount, g+1)
	}
	p.bindGroupLayouts = make([]*wgpu.BindGroupLayout, groupCount)
	p.ownedLayouts = make(map[int]bool)
	for g := range groupCount {
		if layout, ok := shared[g]; ok {
			p.bindGroupLayouts[g] = layout
			continue
		}
		desc := p.shader.BindGroupLayoutDescriptor(g)
		desc.Label = fmt.Sprintf("%s group %d", p.key, g)
		layout, layoutErr := device.CreateBindGroupLayout(&desc)
		if layoutErr != nil {
			p.Release()
			return fmt.Errorf("pipeline %s: failed to create bind group layout for group %d: %w", p.key, g, layoutErr)
		}
		p.bindGroupLayouts[g] = layout
		p.ownedLayouts[g] = true
	}

	p.pipelineLayout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.key,
		BindGroupLayouts: p.bindGroupLayouts,
	})
	if err != nil {
		p.Release()
		return fmt.Errorf("pipeline %s: failed to create pipeline layout: %w", p.key, err)
	}

	p.renderPipeline, err = device.CreateRenderPipeline(p.Descriptor(p.module, p.pipelineLayout))
	if err != nil {
		p.Release()
		return fmt.Errorf("pipeline %s: failed to create render pipeline: %w", p.key, err)
	}
	return nil
}

func (p *pipeline) Descriptor(module *wgpu.ShaderModule, layout *wgpu.PipelineLayout) *wgpu.RenderPipelineDescriptor {
	desc := &wgpu.RenderPipelineDescriptor{
		Label:  p.key + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: p.shader.EntryPoint(shader.ShaderTypeVertex),
			Buffers:    p.shader.VertexLayouts(),
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.topology,
			FrontFace: p.frontFace,
			CullMode:  p.cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: p.sampleCount,
			Mask:  0xFFFFFFFF,
		},
	}

	if p.shader.HasStage(shader.ShaderTypeFragment) {
		desc.Fragment = &wgpu.FragmentState{
			Module:     module,
			EntryPoint: p.shader.EntryPoint(shader.ShaderTypeFragment),
			Targets: []wgpu.ColorTargetState{{
				Format:    p.colorFormat,
				Blend:     p.blendState,
				WriteMask: p.writeMask,
			}},
		}
	}

	if p.depthFormat != wgpu.TextureFormatUndefined {
		depthCompare := wgpu.CompareFunctionLess
		if !p.depthTestEnabled {
			depthCompare = wgpu.CompareFunctionAlways
		}
		desc.DepthStencil = &wgpu.DepthStencilState{
			Format:              p.depthFormat,
			DepthWriteEnabled:   p.depthWriteEnabled,
			DepthCompare:        depthCompare,
			DepthBias:           p.depthBias,
			DepthBiasSlopeScale: p.depthBiasSlopeScale,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}
	return desc
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	if p.pipelineLayout != nil {
		p.pipelineLayout.Release()
		p.pipelineLayout = nil
	}
	for g, layout := range p.bindGroupLayouts {
		if layout != nil && p.ownedLayouts[g] {
			layout.Release()
		}
	}
	p.bindGroupLayouts = nil
	if p.module != nil {
		p.module.Release()
		p.module = nil
	}
}
