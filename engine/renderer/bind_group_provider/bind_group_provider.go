package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the implementation of the BindGroupProvider interface.
type bindGroupProvider struct {
	label string

	// bindGroup is built from layout and the per-binding resources below.
	// It is dropped by Invalidate and rebuilt by the renderer on next use.
	bindGroup *wgpu.BindGroup
	layout    *wgpu.BindGroupLayout

	buffers      map[int]*wgpu.Buffer
	textureViews map[int]*wgpu.TextureView
	samplers     map[int]*wgpu.Sampler

	// owned marks bindings whose resources this provider created and must release.
	owned map[int]bool
}

// BindGroupProvider holds the GPU resources that make up one bind group: the
// bind group itself, its layout, and the buffers, texture views and samplers
// keyed by binding index.
//
// Providers are attached to materials, scene nodes and post-processing passes.
// The renderer fills them lazily the first time the owner is drawn.
type BindGroupProvider interface {
	// Label returns the debug label used for GPU objects created for this provider.
	//
	// Returns:
	//   - string: the label
	Label() string

	// BindGroup returns the bind group, or nil if it has not been built yet.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// SetBindGroup stores a newly created bind group.
	//
	// Parameters:
	//   - bg: the bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// Layout returns the bind group layout the bind group was created against.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout or nil
	Layout() *wgpu.BindGroupLayout

	// SetLayout stores the layout used to create the bind group.
	//
	// Parameters:
	//   - layout: the bind group layout
	SetLayout(layout *wgpu.BindGroupLayout)

	// Buffer returns the buffer bound at binding, or nil.
	Buffer(binding int) *wgpu.Buffer

	// SetBuffer stores a buffer for binding. When owned is true the provider
	// releases it in Release.
	SetBuffer(binding int, buf *wgpu.Buffer, owned bool)

	// TextureView returns the texture view bound at binding, or nil.
	TextureView(binding int) *wgpu.TextureView

	// SetTextureView stores a texture view for binding. Replacing a view
	// invalidates the bind group.
	SetTextureView(binding int, view *wgpu.TextureView, owned bool)

	// Sampler returns the sampler bound at binding, or nil.
	Sampler(binding int) *wgpu.Sampler

	// SetSampler stores a sampler for binding.
	SetSampler(binding int, s *wgpu.Sampler, owned bool)

	// Ready reports whether the bind group has been built.
	//
	// Returns:
	//   - bool: true once SetBindGroup has been called with a non-nil group
	Ready() bool

	// Invalidate drops the bind group so it is rebuilt from the current
	// resources. Buffers, views and samplers are kept.
	Invalidate()

	// Release frees the bind group and every owned resource.
	Release()
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty BindGroupProvider with the options applied.
//
// Parameters:
//   - label: debug label for GPU objects created on behalf of the provider
//   - options: functional options
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]*wgpu.Buffer),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
		owned:        make(map[int]bool),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	if p.bindGroup != nil && p.bindGroup != bg {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
}

func (p *bindGroupProvider) Layout() *wgpu.BindGroupLayout {
	return p.layout
}

func (p *bindGroupProvider) SetLayout(layout *wgpu.BindGroupLayout) {
	p.layout = layout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer, owned bool) {
	p.releaseBinding(binding)
	p.buffers[binding] = buf
	p.owned[binding] = owned
	p.Invalidate()
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) SetTextureView(binding int, view *wgpu.TextureView, owned bool) {
	if p.textureViews[binding] == view {
		return
	}
	p.releaseBinding(binding)
	p.textureViews[binding] = view
	p.owned[binding] = owned
	p.Invalidate()
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler, owned bool) {
	p.releaseBinding(binding)
	p.samplers[binding] = s
	p.owned[binding] = owned
	p.Invalidate()
}

func (p *bindGroupProvider) Ready() bool {
	return p.bindGroup != nil
}

func (p *bindGroupProvider) Invalidate() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
}

func (p *bindGroupProvider) Release() {
	p.Invalidate()
	for binding := range p.owned {
		p.releaseBinding(binding)
	}
	p.buffers = make(map[int]*wgpu.Buffer)
	p.textureViews = make(map[int]*wgpu.TextureView)
	p.samplers = make(map[int]*wgpu.Sampler)
	p.owned = make(map[int]bool)
}

// releaseBinding frees whatever resource is stored at binding if the provider owns it.
func (p *bindGroupProvider) releaseBinding(binding int) {
	if !p.owned[binding] {
		return
	}
	if buf := p.buffers[binding]; buf != nil {
		buf.Release()
		delete(p.buffers, binding)
	}
	if view := p.textureViews[binding]; view != nil {
		view.Release()
		delete(p.textureViews, binding)
	}
	if s := p.samplers[binding]; s != nil {
		s.Release()
		delete(p.samplers, binding)
	}
	delete(p.owned, binding)
}
