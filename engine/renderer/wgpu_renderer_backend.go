package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/ruins/common"
	"github.com/Carmen-Shannon/ruins/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/ruins/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrSurfaceBusy is returned when a surface texture is requested while the
// previous one has not been presented yet.
var ErrSurfaceBusy = errors.New("previous surface texture not yet presented")

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	width         uint32
	height        uint32

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount

	// held between AcquireSurface and PresentSurface
	frameSurface *wgpu.Texture
}

type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue

	// SurfaceFormat returns the colour format the surface was configured with.
	SurfaceFormat() wgpu.TextureFormat

	// SampleCount returns the MSAA sample count used by scene passes.
	SampleCount() MSAASampleCount

	// SurfaceSize returns the configured surface size in pixels.
	SurfaceSize() (uint32, uint32)

	// ConfigureSurface is a wrapper for boilerplate logic required when calling Configure on a surface.
	// This is required when the surface size changes, such as when the window is resized.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: if the surface reports no usable format
	ConfigureSurface(width, height uint32) error

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	// It takes effect on the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// AcquireSurface returns the next swapchain texture and a view of it.
	// Must be paired with PresentSurface.
	//
	// Returns:
	//   - *wgpu.Texture: the surface texture
	//   - *wgpu.TextureView: a view of the surface texture
	//   - error: ErrSurfaceBusy if the previous texture is still held, or the acquire error
	AcquireSurface() (*wgpu.Texture, *wgpu.TextureView, error)

	// PresentSurface presents the texture from AcquireSurface and releases the local references.
	//
	// Parameters:
	//   - tex: the surface texture
	//   - view: the view created by AcquireSurface
	//   - present: false to drop the texture without presenting it
	PresentSurface(tex *wgpu.Texture, view *wgpu.TextureView, present bool)

	// CreateCommandEncoder creates a command encoder for one frame.
	CreateCommandEncoder(label string) (*wgpu.CommandEncoder, error)

	// Submit finishes the encoder and submits the command buffer to the queue.
	// The encoder is released in every case.
	Submit(encoder *wgpu.CommandEncoder) error

	// InitMeshBuffers creates and fills the vertex and index buffers of a mesh.
	//
	// Parameters:
	//   - label: debug label prefix
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes to upload to the GPU
	//
	// Returns:
	//   - *wgpu.Buffer: the vertex buffer
	//   - *wgpu.Buffer: the index buffer
	//   - error: if either buffer could not be created
	InitMeshBuffers(label string, vertexData, indexData []byte) (*wgpu.Buffer, *wgpu.Buffer, error)

	// InitBindGroup is a high-level function that creates GPU buffers and a bind group based on a BindGroupProvider's layout entries.
	// Texture and sampler bindings must already be set on the provider. Buffer bindings that are not
	// set are created from the entry's MinBindingSize and owned by the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider describing the storage for the bind group
	//   - descriptor: the BindGroupLayoutDescriptor describing the layout of the bind group
	//
	// Returns:
	//   - error: an error if the bind group could not be initialized, otherwise nil
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// CreateTextureView uploads decoded RGBA8 pixels into a sampled sRGB texture.
	//
	// Parameters:
	//   - label: debug label
	//   - data: the pixels and their dimensions
	//
	// Returns:
	//   - *wgpu.TextureView: a view of the new texture
	//   - error: if texture or view creation fails
	CreateTextureView(label string, data *material.TextureData) (*wgpu.TextureView, error)

	// CreateDepthTexture creates a depth texture with the given layer count.
	//
	// Parameters:
	//   - label: debug label
	//   - width, height: size in texels
	//   - layers: array layer count
	//   - format: the depth format
	//   - sampleCount: MSAA sample count
	//   - sampled: true when the texture is also bound for sampling
	//
	// Returns:
	//   - *wgpu.Texture: the texture
	//   - error: if creation fails
	CreateDepthTexture(label string, width, height, layers uint32, format wgpu.TextureFormat, sampleCount uint32, sampled bool) (*wgpu.Texture, error)

	// CreateColorTexture creates a render-attachment-only colour texture, used for MSAA attachments.
	CreateColorTexture(label string, width, height uint32, format wgpu.TextureFormat, sampleCount uint32) (*wgpu.Texture, error)

	// CreateSampler creates a sampler. Zero fields of desc take repeat addressing,
	// linear filtering and a single anisotropy sample.
	CreateSampler(desc wgpu.SamplerDescriptor) (*wgpu.Sampler, error)

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	// Each BufferWrite targets a specific buffer on a BindGroupProvider at a given binding and offset.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	//
	// Returns:
	//   - error: the first queue write failure
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// Release frees the device, surface, adapter and instance.
	Release()
}

var _ wgpuRendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend creates the instance, surface, adapter and device.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor from the window
//   - forceFallbackAdapter: true to request a software adapter
//   - sampleCount: MSAA sample count for scene passes
//
// Returns:
//   - wgpuRendererBackend: the backend, not yet configured
//   - error: if no adapter or device could be obtained
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) (wgpuRendererBackend, error) {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: sampleCount,
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	return b, nil
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surfaceFormat
}

func (b *wgpuRendererBackendImpl) SampleCount() MSAASampleCount {
	return b.sampleCount
}

func (b *wgpuRendererBackendImpl) SurfaceSize() (uint32, uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	width, height = max(width, 1), max(height, 1)
	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		return errors.New("surface reports no supported formats")
	}
	b.surfaceFormat = capabilities.Formats[0]

	alphaMode := wgpu.CompositeAlphaModeAuto
	if len(capabilities.AlphaModes) > 0 {
		alphaMode = capabilities.AlphaModes[0]
	}

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       width,
		Height:      height,
		PresentMode: b.presentMode,
		AlphaMode:   alphaMode,
	})
	b.width, b.height = width, height
	return nil
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) AcquireSurface() (*wgpu.Texture, *wgpu.TextureView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// acquiring twice makes wgpu-native fail validation with
	// "Surface image is already acquired"
	if b.frameSurface != nil {
		return nil, nil, ErrSurfaceBusy
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to acquire surface texture: %w", err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, nil, fmt.Errorf("failed to create surface view: %w", err)
	}

	b.frameSurface = surfaceTexture
	return surfaceTexture, view, nil
}

func (b *wgpuRendererBackendImpl) PresentSurface(tex *wgpu.Texture, view *wgpu.TextureView, present bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if tex == nil || tex != b.frameSurface {
		return
	}
	if present {
		b.surface.Present()
	}
	if view != nil {
		view.Release()
	}
	tex.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) CreateCommandEncoder(label string) (*wgpu.CommandEncoder, error) {
	encoder, err := b.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("failed to create command encoder: %w", err)
	}
	return encoder, nil
}

func (b *wgpuRendererBackendImpl) Submit(encoder *wgpu.CommandEncoder) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	defer encoder.Release()
	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish command encoder: %w", err)
	}
	defer commandBuffer.Release()

	b.queue.Submit(commandBuffer)
	return nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(label string, vertexData, indexData []byte) (*wgpu.Buffer, *wgpu.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) == 0 || len(indexData) == 0 {
		return nil, nil, fmt.Errorf("mesh %s has no vertex or index data", label)
	}

	vb, err := b.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label + " Vertex Buffer",
		Contents: vertexData,
		Usage:    wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create vertex buffer for %s: %w", label, err)
	}

	ib, err := b.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label + " Index Buffer",
		Contents: indexData,
		Usage:    wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vb.Release()
		return nil, nil, fmt.Errorf("failed to create index buffer for %s: %w", label, err)
	}

	return vb, ib, nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout := provider.Layout()
	if layout == nil {
		var err error
		layout, err = b.device.CreateBindGroupLayout(&descriptor)
		if err != nil {
			return fmt.Errorf("%s: failed to create bind group layout: %w", provider.Label(), err)
		}
		provider.SetLayout(layout)
	}

	bindGroupEntries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		isTexture := entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined
		isSampler := entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined

		switch {
		case isTexture:
			tv := provider.TextureView(binding)
			if tv == nil {
				return fmt.Errorf("%s: texture binding %d has no texture view", provider.Label(), binding)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding:     entry.Binding,
				TextureView: tv,
			}
		case isSampler:
			samp := provider.Sampler(binding)
			if samp == nil {
				return fmt.Errorf("%s: sampler binding %d has no sampler", provider.Label(), binding)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Sampler: samp,
			}
		default:
			usage := wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
			if entry.Buffer.Type == wgpu.BufferBindingTypeStorage || entry.Buffer.Type == wgpu.BufferBindingTypeReadOnlyStorage {
				usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
			}

			buf := provider.Buffer(binding)
			if buf == nil {
				var err error
				buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: fmt.Sprintf("%s Buffer %d", provider.Label(), binding),
					Size:  entry.Buffer.MinBindingSize,
					Usage: usage,
				})
				if err != nil {
					return fmt.Errorf("%s: failed to create buffer %d: %w", provider.Label(), binding, err)
				}
				provider.SetBuffer(binding, buf, true)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			}
		}
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: bindGroupEntries,
	})
	if err != nil {
		return fmt.Errorf("%s: failed to create bind group: %w", provider.Label(), err)
	}
	provider.SetBindGroup(bindGroup)

	return nil
}

func (b *wgpuRendererBackendImpl) CreateTextureView(label string, data *material.TextureData) (*wgpu.TextureView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if data == nil || data.Width == 0 || data.Height == 0 || len(data.Pixels) < int(data.Width*data.Height*4) {
		return nil, fmt.Errorf("texture %s has no pixel data", label)
	}

	size := wgpu.Extent3D{
		Width:              data.Width,
		Height:             data.Height,
		DepthOrArrayLayers: 1,
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label + " Texture",
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %s: %w", label, err)
	}

	err = b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  data.Width * 4,
			RowsPerImage: data.Height,
		},
		&size,
	)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to upload texture %s: %w", label, err)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create texture view %s: %w", label, err)
	}
	return view, nil
}

func (b *wgpuRendererBackendImpl) CreateDepthTexture(label string, width, height, layers uint32, format wgpu.TextureFormat, sampleCount uint32, sampled bool) (*wgpu.Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	usage := wgpu.TextureUsageRenderAttachment
	if sampled {
		usage |= wgpu.TextureUsageTextureBinding
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              max(width, 1),
			Height:             max(height, 1),
			DepthOrArrayLayers: max(layers, 1),
		},
		MipLevelCount: 1,
		SampleCount:   max(sampleCount, 1),
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create depth texture %s: %w", label, err)
	}
	return tex, nil
}

func (b *wgpuRendererBackendImpl) CreateColorTexture(label string, width, height uint32, format wgpu.TextureFormat, sampleCount uint32) (*wgpu.Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              max(width, 1),
			Height:             max(height, 1),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   max(sampleCount, 1),
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create colour texture %s: %w", label, err)
	}
	return tex, nil
}

func (b *wgpuRendererBackendImpl) CreateSampler(desc wgpu.SamplerDescriptor) (*wgpu.Sampler, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  common.Coalesce(desc.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(desc.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(desc.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(desc.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(desc.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(desc.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   desc.LodMinClamp,
		LodMaxClamp:   common.Coalesce(desc.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(desc.MaxAnisotropy, 1),
		Compare:       desc.Compare,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler %s: %w", desc.Label, err)
	}
	return samp, nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		if err := b.queue.WriteBuffer(buf, w.Offset, w.Data); err != nil {
			return fmt.Errorf("%s: failed to write buffer %d: %w", w.Provider.Label(), w.Binding, err)
		}
	}
	return nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
