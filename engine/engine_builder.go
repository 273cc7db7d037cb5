package engine

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/ruins/engine/bloom"
	"github.com/Carmen-Shannon/ruins/engine/camera"
	"github.com/Carmen-Shannon/ruins/engine/profiler"
	"github.com/Carmen-Shannon/ruins/engine/scene"
	"github.com/Carmen-Shannon/ruins/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler, for a custom interval or clock.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithWindow sets the window the engine polls for frames and listens to for resizes.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithDriver sets the frame driver, overriding the window's.
//
// Parameters:
//   - d: the FrameDriver requesting frames
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDriver(d FrameDriver) EngineBuilderOption {
	return func(e *engine) {
		e.driver = d
	}
}

// WithScene sets the scene composited each frame.
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithController sets the camera controller updated at the start of each frame.
func WithController(c camera.CameraController) EngineBuilderOption {
	return func(e *engine) {
		e.controller = c
	}
}

// WithCompositor sets the selective bloom compositor.
func WithCompositor(c bloom.Compositor) EngineBuilderOption {
	return func(e *engine) {
		e.compositor = c
	}
}

// WithResizer appends resizers to the resize fan-out.
//
// Parameters:
//   - resizers: called in order on every framebuffer resize
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithResizer(resizers ...Resizer) EngineBuilderOption {
	return func(e *engine) {
		e.resizers = append(e.resizers, resizers...)
	}
}

// WithLogger sets the logger for frame and resize failures.
func WithLogger(logger *slog.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.logger = logger
	}
}

// WithTickCallback registers the per-frame callback.
func WithTickCallback(callback func(dt time.Duration)) EngineBuilderOption {
	return func(e *engine) {
		e.tickCallback = callback
	}
}

// WithRenderFrameLimit sets an optional frame rate cap in frames per second.
// Pass 0 to uncap the loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameLimit(fps)
	}
}
