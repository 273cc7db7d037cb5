// Command ruins renders the ruins scene with selective bloom: the glyph meshes
// glow, everything else is lit normally.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/ruins/common"
	"github.com/Carmen-Shannon/ruins/config"
	"github.com/Carmen-Shannon/ruins/engine"
	"github.com/Carmen-Shannon/ruins/engine/bloom"
	"github.com/Carmen-Shannon/ruins/engine/camera"
	"github.com/Carmen-Shannon/ruins/engine/renderer"
	"github.com/Carmen-Shannon/ruins/engine/window"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Crashed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	slog.Info("Started", slog.String("asset", cfg.Asset))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = runApplication(ctx, cfg)
	stop()
	if err != nil {
		slog.Error("Crashed",
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
	slog.Info("Stopped")
}

func runApplication(ctx context.Context, cfg config.Config) error {
	preset := config.DefaultPreset()
	if cfg.Preset != "" {
		var err error
		if preset, err = config.LoadPreset(cfg.Preset); err != nil {
			return err
		}
	}

	win, err := window.NewWindow(
		window.WithTitle(cfg.Title),
		window.WithWidth(cfg.Width),
		window.WithHeight(cfg.Height),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	presentMode := renderer.PresentModeUncapped
	if cfg.VSync {
		presentMode = renderer.PresentModeVSync
	}
	r, err := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		win,
		renderer.WithPresentMode(presentMode),
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.MSAA)),
		renderer.WithForceSoftwareRenderer(cfg.Software),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	defer r.Release()

	cam := newCamera(preset.Camera, win.Width(), win.Height())
	controls := newControls(cam, preset.Camera, preset.Controls)

	sc, err := buildScene(cfg.Asset, preset)
	if err != nil {
		return err
	}

	renderSize := func(width, height uint32) (uint32, uint32) {
		return engine.RenderSize(width, height, win.PixelRatio(), cfg.MaxPixelRatio)
	}
	w, h := renderSize(uint32(win.Width()), uint32(win.Height()))
	chain, err := newPostChain(r, cam, preset, w, h)
	if err != nil {
		return err
	}
	defer chain.release()

	comp := bloom.NewCompositor(chain.stages, chain.stages, bloom.WithEnabled(preset.Bloom.Enabled))
	bindInput(win, controls, comp)

	var presets <-chan config.Preset
	if cfg.Watch && cfg.Preset != "" {
		watcher, err := config.NewWatcher(cfg.Preset)
		if err != nil {
			return err
		}
		presets = watcher.Presets()
		go func() {
			if err := watcher.Run(ctx); err != nil {
				slog.Warn("Preset watcher stopped", slog.String("error", err.Error()))
			}
		}()
	}

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithScene(sc),
		engine.WithController(controls),
		engine.WithCompositor(comp),
		engine.WithProfiling(cfg.Profile),
		engine.WithResizer(
			r,
			engine.ResizerFunc(func(width, height uint32) error {
				return chain.resize(renderSize(width, height))
			}),
			cam,
		),
		engine.WithTickCallback(func(time.Duration) {
			select {
			case p, ok := <-presets:
				if ok {
					chain.apply(p, comp)
				}
			default:
			}
		}),
	)
	return eng.Run(ctx)
}

// newCamera creates the perspective camera from the preset pose.
func newCamera(p config.CameraPreset, width, height int) camera.Camera {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	return camera.NewCamera(
		camera.WithFov(p.FOV),
		camera.WithAspect(aspect),
		camera.WithClipPlanes(p.Near, p.Far),
		camera.WithPosition(common.Vec3(p.Position)),
		camera.WithLookAt(common.Vec3(p.Target)),
	)
}

// newControls creates orbit controls around the preset target. Preset speeds
// are multipliers of the controller defaults. With only a minimum distance set,
// zoom-out stops at the far plane.
func newControls(cam camera.Camera, cp config.CameraPreset, p config.ControlsPreset) camera.CameraController {
	options := []camera.CameraControllerOption{
		camera.WithTarget(common.Vec3(cp.Target)),
		camera.WithDamping(p.Damping, p.DampingFactor),
		camera.WithRotateSpeed(camera.DefaultRotateSpeed * p.RotateSpeed),
		camera.WithZoomSpeed(p.ZoomSpeed),
		camera.WithPanSpeed(camera.DefaultPanSpeed * p.PanSpeed),
	}
	if p.MinDistance > 0 || p.MaxDistance > 0 {
		maxDistance := p.MaxDistance
		if maxDistance == 0 {
			maxDistance = cp.Far
		}
		options = append(options, camera.WithRadiusBounds(p.MinDistance, maxDistance))
	}
	return camera.NewOrbitController(cam, options...)
}

// bindInput maps window input onto the controls: left drag orbits, right
// drag pans, scroll zooms, B toggles bloom and R resets the view.
func bindInput(win window.Window, controls camera.CameraController, comp bloom.Compositor) {
	win.SetDragCallback(func(button window.MouseButton, dx, dy float32) {
		switch button {
		case window.MouseButtonLeft:
			controls.Rotate(dx, dy)
		case window.MouseButtonRight:
			controls.Pan(dx, dy)
		}
	})
	win.SetScrollCallback(controls.Zoom)
	win.SetKeyDownCallback(func(keyCode uint32) {
		switch keyCode {
		case common.KeyB:
			comp.SetEnabled(!comp.Enabled())
			slog.Info("Bloom toggled", slog.Bool("enabled", comp.Enabled()))
		case common.KeyR:
			controls.Reset()
		}
	})
}
