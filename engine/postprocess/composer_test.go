package postprocess

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/ruins/engine/camera"
	"github.com/Carmen-Shannon/ruins/engine/renderer/render_target"
	"github.com/Carmen-Shannon/ruins/engine/scene"
)

// fakeTargets is a Factory that hands out wrapped targets and records them.
type fakeTargets struct {
	made []render_target.RenderTarget
	fail bool
}

func (f *fakeTargets) factory(label string, width, height uint32, format wgpu.TextureFormat) (render_target.RenderTarget, error) {
	if f.fail {
		return nil, errors.New("out of memory")
	}
	rt := render_target.Wrap(label, nil, format, width, height)
	f.made = append(f.made, rt)
	return rt, nil
}

// call records one Render invocation of a fakePass.
type call struct {
	pass     string
	write    string
	read     string
	toScreen bool
}

type fakePass struct {
	passState
	calls   *[]call
	err     error
	sizes   [][2]uint32
	release int
}

func newFakePass(name string, swap bool, calls *[]call) *fakePass {
	return &fakePass{passState: newPassState(name, swap), calls: calls}
}

func (p *fakePass) SetSize(width, height uint32) error {
	p.sizes = append(p.sizes, [2]uint32{width, height})
	return nil
}

func (p *fakePass) Render(ctx *RenderContext, write, read render_target.RenderTarget) error {
	*p.calls = append(*p.calls, call{pass: p.name, write: write.Label(), read: read.Label(), toScreen: p.renderToScreen})
	return p.err
}

func (p *fakePass) Release() {
	p.release++
}

func newTestComposer(t *testing.T, options ...ComposerBuilderOption) (Composer, *fakeTargets) {
	t.Helper()
	targets := &fakeTargets{}
	c, err := NewComposer(targets.factory, 800, 600, append([]ComposerBuilderOption{WithLabel("c")}, options...)...)
	require.NoError(t, err)
	return c, targets
}

func TestComposerInitialTargets(t *testing.T) {
	c, targets := newTestComposer(t)

	require.Len(t, targets.made, 2)
	assert.Equal(t, "c target 1", c.WriteTarget().Label())
	assert.Equal(t, "c target 2", c.ReadTarget().Label())
	assert.Equal(t, render_target.DefaultFormat, c.ReadTarget().Format())
	w, h := c.Size()
	assert.Equal(t, uint32(800), w)
	assert.Equal(t, uint32(600), h)
	assert.True(t, c.RenderToScreen())
}

func TestComposerPingPong(t *testing.T) {
	c, _ := newTestComposer(t, WithRenderToScreen(false))
	var calls []call

	render := newFakePass("render", false, &calls)
	bloom := newFakePass("bloom", false, &calls)
	mix := newFakePass("mix", true, &calls)
	output := newFakePass("output", true, &calls)
	for _, p := range []Pass{render, bloom, mix, output} {
		require.NoError(t, c.AddPass(p))
	}

	require.NoError(t, c.Render(&RenderContext{}))

	assert.Equal(t, []call{
		{pass: "render", write: "c target 1", read: "c target 2"},
		{pass: "bloom", write: "c target 1", read: "c target 2"},
		{pass: "mix", write: "c target 1", read: "c target 2"},
		{pass: "output", write: "c target 2", read: "c target 1"},
	}, calls)
	// two swaps restore the original order
	assert.Equal(t, "c target 2", c.ReadTarget().Label())
}

func TestComposerOutputWithoutSwap(t *testing.T) {
	c, _ := newTestComposer(t, WithRenderToScreen(false))
	var calls []call
	require.NoError(t, c.AddPass(newFakePass("render", false, &calls)))
	require.NoError(t, c.AddPass(newFakePass("bloom", false, &calls)))

	require.NoError(t, c.Render(&RenderContext{}))
	assert.Equal(t, "c target 2", c.ReadTarget().Label())
	for _, got := range calls {
		assert.False(t, got.toScreen)
	}
}

func TestComposerLastEnabledPassRendersToScreen(t *testing.T) {
	c, _ := newTestComposer(t)
	var calls []call
	first := newFakePass("first", true, &calls)
	last := newFakePass("last", true, &calls)
	last.SetEnabled(false)
	require.NoError(t, c.AddPass(first))
	require.NoError(t, c.AddPass(last))

	screen := render_target.Wrap("screen", nil, wgpu.TextureFormatBGRA8UnormSrgb, 800, 600)
	require.NoError(t, c.Render(&RenderContext{Screen: screen}))

	require.Len(t, calls, 1)
	assert.True(t, calls[0].toScreen)
	assert.False(t, last.RenderToScreen())
}

func TestComposerRequiresScreen(t *testing.T) {
	c, _ := newTestComposer(t)
	var calls []call
	require.NoError(t, c.AddPass(newFakePass("output", true, &calls)))

	err := c.Render(&RenderContext{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoScreen)
	assert.Empty(t, calls)
}

func TestComposerStopsOnPassError(t *testing.T) {
	c, _ := newTestComposer(t, WithRenderToScreen(false))
	var calls []call
	boom := errors.New("boom")
	failing := newFakePass("failing", true, &calls)
	failing.err = boom
	require.NoError(t, c.AddPass(failing))
	require.NoError(t, c.AddPass(newFakePass("after", true, &calls)))

	err := c.Render(&RenderContext{})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
	assert.Len(t, calls, 1)
}

func TestComposerSetSize(t *testing.T) {
	c, targets := newTestComposer(t)
	var calls []call
	p := newFakePass("p", true, &calls)
	require.NoError(t, c.AddPass(p))

	require.NoError(t, c.SetSize(800, 600))
	assert.Len(t, targets.made, 2, "same size does not reallocate")

	require.NoError(t, c.SetSize(1024, 0))
	assert.Len(t, targets.made, 4)
	assert.Equal(t, uint32(1024), c.ReadTarget().Width())
	assert.Equal(t, uint32(1), c.ReadTarget().Height())
	assert.Equal(t, [][2]uint32{{800, 600}, {1024, 1}}, p.sizes)
}

func TestComposerSetSizeFailureKeepsTargets(t *testing.T) {
	c, targets := newTestComposer(t)
	read := c.ReadTarget()
	targets.fail = true

	require.Error(t, c.SetSize(10, 10))
	assert.Same(t, read, c.ReadTarget())
}

func TestComposerInsertRemovePass(t *testing.T) {
	c, _ := newTestComposer(t)
	var calls []call
	a := newFakePass("a", true, &calls)
	b := newFakePass("b", true, &calls)
	z := newFakePass("z", true, &calls)
	require.NoError(t, c.AddPass(a))
	require.NoError(t, c.AddPass(b))
	require.NoError(t, c.InsertPass(z, -5))

	assert.Equal(t, []Pass{z, a, b}, c.Passes())

	c.RemovePass(a)
	c.RemovePass(a)
	assert.Equal(t, []Pass{z, b}, c.Passes())

	c.Release()
	assert.Equal(t, 1, z.release)
	assert.Equal(t, 1, b.release)
	assert.Equal(t, 0, a.release)
	assert.Nil(t, c.ReadTarget())
}

func TestComposerFactoryFailure(t *testing.T) {
	targets := &fakeTargets{fail: true}
	_, err := NewComposer(targets.factory, 1, 1)
	assert.Error(t, err)
}

type fakeDrawer struct {
	targets []string
	scenes  []scene.Scene
}

func (d *fakeDrawer) DrawScene(_ *wgpu.CommandEncoder, target render_target.RenderTarget, s scene.Scene, _ camera.Camera) error {
	d.targets = append(d.targets, target.Label())
	d.scenes = append(d.scenes, s)
	return nil
}

func TestRenderPassDrawsIntoReadTarget(t *testing.T) {
	c, _ := newTestComposer(t)
	drawer := &fakeDrawer{}
	rp := NewRenderPass(drawer, camera.NewCamera())
	var calls []call
	require.NoError(t, c.AddPass(rp))
	require.NoError(t, c.AddPass(newFakePass("output", true, &calls)))

	s := scene.NewScene()
	screen := render_target.Wrap("screen", nil, wgpu.TextureFormatBGRA8UnormSrgb, 800, 600)
	require.NoError(t, c.Render(&RenderContext{Scene: s, Screen: screen}))

	assert.Equal(t, []string{"c target 2"}, drawer.targets)
	assert.Same(t, s, drawer.scenes[0])
	assert.False(t, rp.NeedsSwap())
	// the next pass reads what the scene pass drew
	assert.Equal(t, "c target 2", calls[0].read)
}

func TestRenderPassToScreen(t *testing.T) {
	c, _ := newTestComposer(t)
	drawer := &fakeDrawer{}
	require.NoError(t, c.AddPass(NewRenderPass(drawer, camera.NewCamera())))

	screen := render_target.Wrap("screen", nil, wgpu.TextureFormatBGRA8UnormSrgb, 800, 600)
	require.NoError(t, c.Render(&RenderContext{Scene: scene.NewScene(), Screen: screen}))
	assert.Equal(t, []string{"screen"}, drawer.targets)
}
