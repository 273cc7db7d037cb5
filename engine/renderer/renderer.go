package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/Carmen-Shannon/ruins/engine/camera"
	"github.com/Carmen-Shannon/ruins/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/ruins/engine/renderer/render_target"
	"github.com/Carmen-Shannon/ruins/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoFrame is returned when submitting or presenting a frame that was not begun.
var ErrNoFrame = errors.New("no frame in progress")

// SurfaceSource is the window the renderer presents to.
type SurfaceSource interface {
	// SurfaceDescriptor returns the platform surface descriptor.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int
}

// Frame is the command encoder of one frame plus, for on-screen frames, the
// acquired surface texture wrapped as a render target.
type Frame struct {
	// Encoder records every pass of the frame.
	Encoder *wgpu.CommandEncoder

	// Screen is the surface view, or nil for off-screen frames.
	Screen render_target.RenderTarget

	surfaceTexture *wgpu.Texture
	surfaceView    *wgpu.TextureView
	submitted      bool
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     *sync.Mutex
	logger *slog.Logger

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend
	drawer      *sceneDrawer

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	sampleCount          MSAASampleCount
}

// Renderer defines the interface for the rendering system.
//
// The Renderer owns the GPU device and surface, records frames, and draws
// scenes into render targets. It satisfies postprocess.SceneDrawer so render
// passes can draw through it.
type Renderer interface {
	// Device returns the GPU device, for passes that create their own pipelines.
	Device() *wgpu.Device

	// SurfaceFormat returns the colour format of the presentation surface.
	SurfaceFormat() wgpu.TextureFormat

	// SampleCount returns the MSAA sample count of scene passes.
	SampleCount() MSAASampleCount

	// Size returns the configured surface size in pixels.
	Size() (uint32, uint32)

	// TargetFactory returns a factory allocating off-screen targets on the device.
	TargetFactory() render_target.Factory

	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines returns a copy of the pipeline cache. Scene pipelines are created
	// lazily, one per draw variant and target format.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// Resize reconfigures the surface and drops size-dependent attachments.
	// A zero dimension is ignored, which happens while the window is minimised.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: if the surface cannot be configured
	Resize(width, height uint32) error

	// SetPresentMode changes the present mode and reconfigures the surface.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	//
	// Returns:
	//   - error: if the surface cannot be configured
	SetPresentMode(mode PresentMode) error

	// BeginFrame acquires the next surface texture and creates the frame's command encoder.
	// Must be paired with Submit and Present.
	//
	// Returns:
	//   - *Frame: the frame
	//   - error: if the surface texture or encoder cannot be obtained
	BeginFrame() (*Frame, error)

	// BeginOffscreenFrame creates a frame with no surface texture.
	//
	// Returns:
	//   - *Frame: the frame, with a nil Screen
	//   - error: if the encoder cannot be created
	BeginOffscreenFrame() (*Frame, error)

	// Submit finishes the frame's encoder and submits it to the queue.
	//
	// Parameters:
	//   - f: the frame
	//
	// Returns:
	//   - error: ErrNoFrame for a nil or already submitted frame, or the submit error
	Submit(f *Frame) error

	// Present presents a submitted frame, or drops the surface texture of a
	// frame that was never submitted. Off-screen frames are ignored.
	//
	// Parameters:
	//   - f: the frame
	Present(f *Frame)

	// DrawScene records the shadow passes and the lit pass of s, as seen by
	// cam, into target. Materials are bound per draw, so a material swapped
	// on a node between two calls changes only the bind group used.
	//
	// Parameters:
	//   - enc: the frame's command encoder
	//   - target: the colour target
	//   - s: the scene
	//   - cam: the camera
	//
	// Returns:
	//   - error: if a GPU resource cannot be created
	DrawScene(enc *wgpu.CommandEncoder, target render_target.RenderTarget, s scene.Scene, cam camera.Camera) error

	// Release frees every GPU resource the renderer created.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type for the given window.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - surface: the window providing the surface descriptor and framebuffer size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
//   - error: if the adapter, device, surface or scene resources cannot be created
func NewRenderer(backendType RendererBackendType, surface SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		logger:        slog.Default(),
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		presentMode:   PresentModeVSync,
		sampleCount:   MSAA4x,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend, err = newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, r.sampleCount)
	}
	if err != nil {
		return nil, err
	}

	r.backend.SetPresentMode(r.presentMode)
	if err = r.backend.ConfigureSurface(uint32(max(surface.Width(), 1)), uint32(max(surface.Height(), 1))); err != nil {
		r.backend.Release()
		return nil, err
	}

	if r.drawer, err = newSceneDrawer(r.backend, r.pipelineCache); err != nil {
		r.backend.Release()
		return nil, err
	}

	w, h := r.backend.SurfaceSize()
	r.logger.Info("Renderer ready",
		slog.Int("width", int(w)),
		slog.Int("height", int(h)),
		slog.Int("msaa", int(r.sampleCount)),
		slog.String("format", r.backend.SurfaceFormat().String()),
	)
	return r, nil
}

func (r *renderer) Device() *wgpu.Device {
	return r.backend.Device()
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) SampleCount() MSAASampleCount {
	return r.backend.SampleCount()
}

func (r *renderer) Size() (uint32, uint32) {
	return r.backend.SurfaceSize()
}

func (r *renderer) TargetFactory() render_target.Factory {
	return render_target.NewFactory(r.backend.Device())
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.pipelineCache)
}

func (r *renderer) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.backend.ConfigureSurface(width, height); err != nil {
		return err
	}
	r.drawer.dropAttachments()
	return nil
}

func (r *renderer) SetPresentMode(mode PresentMode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.presentMode = mode
	r.backend.SetPresentMode(mode)
	w, h := r.backend.SurfaceSize()
	return r.backend.ConfigureSurface(w, h)
}

func (r *renderer) BeginFrame() (*Frame, error) {
	tex, view, err := r.backend.AcquireSurface()
	if err != nil {
		return nil, err
	}

	encoder, err := r.backend.CreateCommandEncoder("Frame Encoder")
	if err != nil {
		r.backend.PresentSurface(tex, view, false)
		return nil, err
	}

	w, h := r.backend.SurfaceSize()
	return &Frame{
		Encoder:        encoder,
		Screen:         render_target.Wrap("screen", view, r.backend.SurfaceFormat(), w, h),
		surfaceTexture: tex,
		surfaceView:    view,
	}, nil
}

func (r *renderer) BeginOffscreenFrame() (*Frame, error) {
	encoder, err := r.backend.CreateCommandEncoder("Offscreen Encoder")
	if err != nil {
		return nil, err
	}
	return &Frame{Encoder: encoder}, nil
}

func (r *renderer) Submit(f *Frame) error {
	if f == nil || f.Encoder == nil || f.submitted {
		return ErrNoFrame
	}
	f.submitted = true
	encoder := f.Encoder
	f.Encoder = nil
	if err := r.backend.Submit(encoder); err != nil {
		return fmt.Errorf("submit frame: %w", err)
	}
	return nil
}

func (r *renderer) Present(f *Frame) {
	if f == nil || f.surfaceTexture == nil {
		return
	}
	if f.Encoder != nil {
		// never submitted: the recorded commands are dropped with the texture
		f.Encoder.Release()
		f.Encoder = nil
	}
	r.backend.PresentSurface(f.surfaceTexture, f.surfaceView, f.submitted)
	f.surfaceTexture = nil
	f.surfaceView = nil
	f.Screen = nil
}

func (r *renderer) DrawScene(enc *wgpu.CommandEncoder, target render_target.RenderTarget, s scene.Scene, cam camera.Camera) error {
	if enc == nil {
		return ErrNoFrame
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drawer.draw(enc, target, s, cam)
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	if r.drawer != nil {
		r.drawer.release()
		r.drawer = nil
	}
	if r.backend != nil {
		r.backend.Release()
		r.backend = nil
	}
}
