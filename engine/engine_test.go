package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/ruins/engine/bloom"
	"github.com/Carmen-Shannon/ruins/engine/camera"
	"github.com/Carmen-Shannon/ruins/engine/renderer/material"
	"github.com/Carmen-Shannon/ruins/engine/renderer/render_target"
	"github.com/Carmen-Shannon/ruins/engine/scene"
)

// fakeDriver hands out frames of a fixed delta, forever when frames is negative.
type fakeDriver struct {
	frames int
	dt     time.Duration
	calls  int
}

func (d *fakeDriver) NextFrame(ctx context.Context) (time.Duration, bool) {
	if ctx.Err() != nil || (d.frames >= 0 && d.calls >= d.frames) {
		return 0, false
	}
	d.calls++
	return d.dt, true
}

type fakeController struct {
	camera.CameraController
	updates []time.Duration
}

func (c *fakeController) Update(dt time.Duration) { c.updates = append(c.updates, dt) }

type ruinsFixture struct {
	stone  material.Material
	pillar scene.Node
	glyph  scene.Node
	scene  scene.Scene
}

func newRuinsFixture() *ruinsFixture {
	f := &ruinsFixture{stone: material.NewMaterial(material.WithName("Stone"))}
	f.pillar = scene.NewNode("pillar", scene.WithMaterial(f.stone))
	f.glyph = scene.NewNode("glyph", scene.WithClass(scene.ClassBloom), scene.WithMaterial(material.NewMaterial(material.WithName("Glow"))))
	f.scene = scene.NewScene(scene.WithNodes(f.pillar, f.glyph))
	return f
}

func bloomTarget() render_target.RenderTarget {
	return render_target.Wrap("bloom", nil, render_target.DefaultFormat, 4, 4)
}

func TestRunDrivesFramesUntilDriverStops(t *testing.T) {
	f := newRuinsFixture()
	var renders int
	comp := bloom.NewCompositor(
		bloom.SourcePassFunc(func(scene.Scene) (render_target.RenderTarget, error) { return bloomTarget(), nil }),
		bloom.FinalPassFunc(func(scene.Scene, render_target.RenderTarget) error {
			renders++
			return nil
		}),
	)
	ctrl := &fakeController{}
	var ticks []time.Duration

	e := NewEngine(
		WithDriver(&fakeDriver{frames: 3, dt: 16 * time.Millisecond}),
		WithScene(f.scene),
		WithCompositor(comp),
		WithController(ctrl),
		WithTickCallback(func(dt time.Duration) { ticks = append(ticks, dt) }),
	)
	require.NoError(t, e.Run(context.Background()))

	assert.Equal(t, 3, renders)
	assert.Equal(t, []time.Duration{16 * time.Millisecond, 16 * time.Millisecond, 16 * time.Millisecond}, ctrl.updates)
	assert.Len(t, ticks, 3)
	assert.Zero(t, e.Profiler().TotalSkipped())
}

func TestRunSkipsFailedAndPanickingFrames(t *testing.T) {
	f := newRuinsFixture()
	frame := 0
	var seenDuringSource []material.Material
	comp := bloom.NewCompositor(
		bloom.SourcePassFunc(func(scene.Scene) (render_target.RenderTarget, error) {
			seenDuringSource = append(seenDuringSource, f.pillar.Material())
			return bloomTarget(), nil
		}),
		bloom.FinalPassFunc(func(scene.Scene, render_target.RenderTarget) error {
			frame++
			switch frame {
			case 1:
				return errors.New("surface lost")
			case 2:
				panic("device lost")
			}
			return nil
		}),
	)

	var buf bytes.Buffer
	e := NewEngine(
		WithDriver(&fakeDriver{frames: 3}),
		WithScene(f.scene),
		WithCompositor(comp),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
	)
	require.NoError(t, e.Run(context.Background()))

	assert.Equal(t, 3, frame)
	assert.Equal(t, 2, e.Profiler().TotalSkipped())
	assert.Same(t, f.stone, f.pillar.Material())
	for _, m := range seenDuringSource {
		assert.True(t, material.IsPlaceholder(m))
	}
	assert.Contains(t, buf.String(), "surface lost")
	assert.Contains(t, buf.String(), "device lost")
	assert.Contains(t, buf.String(), "msg=\"Frame skipped\"")
}

func TestRenderFrameWrapsPanic(t *testing.T) {
	f := newRuinsFixture()
	comp := bloom.NewCompositor(
		bloom.SourcePassFunc(func(scene.Scene) (render_target.RenderTarget, error) { panic("boom") }),
		bloom.FinalPassFunc(func(scene.Scene, render_target.RenderTarget) error { return nil }),
	)
	e := NewEngine(WithScene(f.scene), WithCompositor(comp)).(*engine)

	err := e.renderFrame(0)
	require.ErrorIs(t, err, ErrFramePanic)
	assert.Contains(t, err.Error(), "boom")
	assert.Same(t, f.stone, f.pillar.Material())
}

func TestRunStopsOnQuit(t *testing.T) {
	f := newRuinsFixture()
	comp := bloom.NewCompositor(
		bloom.SourcePassFunc(func(scene.Scene) (render_target.RenderTarget, error) { return bloomTarget(), nil }),
		bloom.FinalPassFunc(func(scene.Scene, render_target.RenderTarget) error { return nil }),
	)
	driver := &fakeDriver{frames: -1}

	var e Engine
	frames := 0
	e = NewEngine(
		WithDriver(driver),
		WithScene(f.scene),
		WithCompositor(comp),
		WithTickCallback(func(time.Duration) {
			frames++
			if frames == 2 {
				e.Quit()
				e.Quit()
			}
		}),
	)
	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 2, frames)
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newRuinsFixture()
	comp := bloom.NewCompositor(
		bloom.SourcePassFunc(func(scene.Scene) (render_target.RenderTarget, error) { return bloomTarget(), nil }),
		bloom.FinalPassFunc(func(scene.Scene, render_target.RenderTarget) error { return nil }),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frames := 0
	e := NewEngine(
		WithDriver(&fakeDriver{frames: -1}),
		WithScene(f.scene),
		WithCompositor(comp),
		WithRenderFrameLimit(1000),
		WithTickCallback(func(time.Duration) {
			frames++
			if frames == 3 {
				cancel()
			}
		}),
	)
	require.NoError(t, e.Run(ctx))
	assert.Equal(t, 3, frames)
}

func TestRunRequiresConfiguration(t *testing.T) {
	f := newRuinsFixture()
	comp := bloom.NewCompositor(nil, nil)

	assert.ErrorIs(t, NewEngine(WithScene(f.scene), WithCompositor(comp)).Run(context.Background()), ErrNoDriver)
	assert.ErrorIs(t, NewEngine(WithDriver(&fakeDriver{}), WithCompositor(comp)).Run(context.Background()), ErrNotConfigured)
	assert.ErrorIs(t, NewEngine(WithDriver(&fakeDriver{}), WithScene(f.scene)).Run(context.Background()), ErrNotConfigured)
}

func TestResizeFansOutInOrder(t *testing.T) {
	var calls []string
	record := func(name string, err error) Resizer {
		return ResizerFunc(func(w, h uint32) error {
			calls = append(calls, name)
			assert.Equal(t, uint32(800), w)
			assert.Equal(t, uint32(600), h)
			return err
		})
	}
	errComposer := errors.New("composer allocation failed")
	errCamera := errors.New("camera aspect")

	e := NewEngine(WithResizer(record("renderer", nil), record("composer", errComposer)))
	e.AddResizer(record("camera", errCamera))

	err := e.Resize(800, 600)
	assert.ErrorIs(t, err, errComposer)
	assert.ErrorIs(t, err, errCamera)
	assert.Equal(t, []string{"renderer", "composer", "camera"}, calls)

	calls = nil
	assert.NoError(t, e.Resize(0, 600))
	assert.NoError(t, e.Resize(800, 0))
	assert.Empty(t, calls)
}

func TestCameraIsAResizer(t *testing.T) {
	cam := camera.NewCamera()
	e := NewEngine(WithResizer(cam))
	require.NoError(t, e.Resize(1600, 800))
	assert.InDelta(t, 2.0, cam.Aspect(), 1e-6)
}

func TestRenderSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
		ratio, max    float32
		wantW, wantH  uint32
	}{
		{name: "standard display", width: 1280, height: 720, ratio: 1, max: 2, wantW: 1280, wantH: 720},
		{name: "at the cap", width: 2560, height: 1440, ratio: 2, max: 2, wantW: 2560, wantH: 1440},
		{name: "above the cap", width: 3840, height: 2160, ratio: 3, max: 2, wantW: 2560, wantH: 1440},
		{name: "cap disabled", width: 3840, height: 2160, ratio: 3, max: 0, wantW: 3840, wantH: 2160},
		{name: "never zero", width: 1, height: 1, ratio: 4, max: 1, wantW: 1, wantH: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := RenderSize(tt.width, tt.height, tt.ratio, tt.max)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestFrameLimit(t *testing.T) {
	assert.Zero(t, frameLimit(0))
	assert.Zero(t, frameLimit(-30))
	assert.Equal(t, time.Second/60, frameLimit(60))
	assert.Equal(t, 20*time.Millisecond, frameLimit(50))
}
