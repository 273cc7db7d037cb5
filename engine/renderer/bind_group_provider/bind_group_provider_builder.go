package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option for configuring a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithLayout sets a pre-built bind group layout on the provider.
//
// Parameters:
//   - layout: the bind group layout
//
// Returns:
//   - BindGroupProviderOption: functional option to set the layout
func WithLayout(layout *wgpu.BindGroupLayout) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.layout = layout
	}
}

// WithSharedBuffer binds a buffer owned by someone else, such as the renderer's
// per-frame camera buffer.
//
// Parameters:
//   - binding: the binding index
//   - buf: the buffer
//
// Returns:
//   - BindGroupProviderOption: functional option to bind the buffer
func WithSharedBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
	}
}

// WithSharedTextureView binds a texture view owned by someone else.
func WithSharedTextureView(binding int, view *wgpu.TextureView) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.textureViews[binding] = view
	}
}

// WithSharedSampler binds a sampler owned by someone else.
func WithSharedSampler(binding int, s *wgpu.Sampler) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.samplers[binding] = s
	}
}
