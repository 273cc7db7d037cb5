package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/ruins/engine/bloom"
	"github.com/Carmen-Shannon/ruins/engine/camera"
	"github.com/Carmen-Shannon/ruins/engine/profiler"
	"github.com/Carmen-Shannon/ruins/engine/scene"
	"github.com/Carmen-Shannon/ruins/engine/window"
)

var (
	// ErrNoDriver is returned by Run when neither a window nor a FrameDriver was configured.
	ErrNoDriver = errors.New("engine has no frame driver")

	// ErrNotConfigured is returned by Run when the scene or compositor is missing.
	ErrNotConfigured = errors.New("engine needs a scene and a compositor")

	// ErrFramePanic wraps a panic recovered while rendering a frame.
	ErrFramePanic = errors.New("frame panicked")
)

// engine implements the Engine interface.
// Drives the frame loop on the calling goroutine.
type engine struct {
	logger *slog.Logger

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window
	driver FrameDriver

	scene      scene.Scene
	controller camera.CameraController
	compositor bloom.Compositor
	resizers   []Resizer

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickCallback func(dt time.Duration)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the engine.
// It owns the frame loop: each frame advances the camera controls, runs the
// tick callback and composites the scene with selective bloom.
type Engine interface {
	// Window returns the window the engine was built with, or nil.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Scene returns the rendered scene.
	Scene() scene.Scene

	// Compositor returns the selective bloom compositor.
	Compositor() bloom.Compositor

	// Profiler returns the frame profiler.
	Profiler() *profiler.Profiler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	// Skipped frames are still counted.
	DisableProfiler()

	// SetTickCallback registers the function called once per frame before
	// the scene is composited.
	//
	// Parameters:
	//   - callback: receives the time since the previous frame
	SetTickCallback(callback func(dt time.Duration))

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddResizer appends r to the resize fan-out. Resizers are called in the
	// order they were added.
	AddResizer(r Resizer)

	// Resize sends a framebuffer size to every resizer. A zero dimension is ignored.
	//
	// Parameters:
	//   - width, height: the framebuffer size in pixels
	//
	// Returns:
	//   - error: every resizer failure joined
	Resize(width, height uint32) error

	// Run drives frames until the driver stops, ctx is cancelled or Quit is
	// called. A frame that fails or panics is logged and skipped.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//
	// Returns:
	//   - error: ErrNoDriver or ErrNotConfigured; nil when the loop ends normally
	Run(ctx context.Context) error

	// Quit stops the loop after the current frame.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
// With a window and no explicit driver, frames are driven by a WindowDriver
// over the window, and window resizes feed Resize.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel: make(chan struct{}),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	if e.window != nil {
		if e.driver == nil {
			e.driver = NewWindowDriver(e.window)
		}
		e.window.SetResizeCallback(func(width, height int) {
			if width <= 0 || height <= 0 {
				return
			}
			if err := e.Resize(uint32(width), uint32(height)); err != nil {
				e.logger.Warn("Resize failed", slog.String("error", err.Error()))
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Compositor() bloom.Compositor {
	return e.compositor
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickCallback(callback func(dt time.Duration)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameLimit(fps)
}

func (e *engine) AddResizer(r Resizer) {
	e.resizers = append(e.resizers, r)
}

func (e *engine) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	var errs []error
	for _, r := range e.resizers {
		if err := r.Resize(width, height); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *engine) Run(ctx context.Context) error {
	if e.driver == nil {
		return ErrNoDriver
	}
	if e.scene == nil || e.compositor == nil {
		return ErrNotConfigured
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-e.quitChannel:
			return nil
		default:
		}

		start := time.Now()
		dt, ok := e.driver.NextFrame(ctx)
		if !ok {
			return nil
		}

		if err := e.renderFrame(dt); err != nil {
			e.profiler.Skip()
			e.logger.Warn("Frame skipped", slog.String("error", err.Error()))
		} else if e.profilingEnabled {
			e.profiler.Tick()
		}

		// Frame rate limiting
		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
				if !e.wait(ctx, remaining) {
					return nil
				}
			}
		}
	}
}

// renderFrame runs one frame, converting a panic into ErrFramePanic. The
// compositor has restored every material before the panic reaches here.
func (e *engine) renderFrame(dt time.Duration) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrFramePanic, r)
		}
	}()

	if e.controller != nil {
		e.controller.Update(dt)
	}
	if e.tickCallback != nil {
		e.tickCallback(dt)
	}
	return e.compositor.Render(e.scene)
}

// wait sleeps for d and reports false if the loop was stopped meanwhile.
func (e *engine) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-e.quitChannel:
		return false
	case <-timer.C:
		return true
	}
}

// Quit signals the loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func frameLimit(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
