package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/ruins/engine/bloom"
	"github.com/Carmen-Shannon/ruins/engine/postprocess"
	"github.com/Carmen-Shannon/ruins/engine/renderer"
	"github.com/Carmen-Shannon/ruins/engine/renderer/material"
	"github.com/Carmen-Shannon/ruins/engine/renderer/render_target"
)

type fakeRecorder struct {
	begun     []*renderer.Frame
	submitted []*renderer.Frame
	presented []*renderer.Frame
	beginErr  error
}

func (r *fakeRecorder) BeginFrame() (*renderer.Frame, error) {
	if r.beginErr != nil {
		return nil, r.beginErr
	}
	f := &renderer.Frame{Screen: render_target.Wrap("screen", nil, render_target.DefaultFormat, 8, 8)}
	r.begun = append(r.begun, f)
	return f, nil
}

func (r *fakeRecorder) Submit(f *renderer.Frame) error {
	r.submitted = append(r.submitted, f)
	return nil
}

func (r *fakeRecorder) Present(f *renderer.Frame) {
	r.presented = append(r.presented, f)
}

// fakeComposer overrides the two methods the stages call.
type fakeComposer struct {
	postprocess.Composer
	output   render_target.RenderTarget
	err      error
	contexts []*postprocess.RenderContext
	onRender func()
}

func (c *fakeComposer) Render(ctx *postprocess.RenderContext) error {
	c.contexts = append(c.contexts, ctx)
	if c.onRender != nil {
		c.onRender()
	}
	return c.err
}

func (c *fakeComposer) ReadTarget() render_target.RenderTarget { return c.output }

type fakeMixer struct {
	textures map[string]render_target.RenderTarget
	enabled  bool
}

func (m *fakeMixer) SetTexture(name string, rt render_target.RenderTarget) { m.textures[name] = rt }
func (m *fakeMixer) SetEnabled(enabled bool)                               { m.enabled = enabled }

type stagesFixture struct {
	*ruinsFixture
	frames *fakeRecorder
	source *fakeComposer
	final  *fakeComposer
	mix    *fakeMixer
	stages *Stages
}

func newStagesFixture() *stagesFixture {
	f := &stagesFixture{
		ruinsFixture: newRuinsFixture(),
		frames:       &fakeRecorder{},
		source:       &fakeComposer{output: bloomTarget()},
		final:        &fakeComposer{},
		mix:          &fakeMixer{textures: map[string]render_target.RenderTarget{}},
	}
	f.stages = NewStages(f.frames, f.source, f.final, f.mix)
	return f
}

func TestStagesRecordOneFramePerComposite(t *testing.T) {
	f := newStagesFixture()
	var pillarDuringSource material.Material
	f.source.onRender = func() { pillarDuringSource = f.pillar.Material() }

	comp := bloom.NewCompositor(f.stages, f.stages)
	require.NoError(t, comp.Render(f.scene))

	require.Len(t, f.frames.begun, 1)
	frame := f.frames.begun[0]
	assert.Equal(t, []*renderer.Frame{frame}, f.frames.submitted)
	assert.Equal(t, []*renderer.Frame{frame}, f.frames.presented)

	require.Len(t, f.source.contexts, 1)
	assert.Nil(t, f.source.contexts[0].Screen)
	assert.Same(t, f.scene, f.source.contexts[0].Scene)
	require.Len(t, f.final.contexts, 1)
	assert.Same(t, frame.Screen, f.final.contexts[0].Screen)

	assert.True(t, material.IsPlaceholder(pillarDuringSource))
	assert.Same(t, f.stone, f.pillar.Material())
	assert.Same(t, f.source.output, f.mix.textures[postprocess.MixBloomTexture])
	assert.True(t, f.mix.enabled)
}

func TestStagesWithBloomDisabled(t *testing.T) {
	f := newStagesFixture()
	comp := bloom.NewCompositor(f.stages, f.stages, bloom.WithEnabled(false))
	require.NoError(t, comp.Render(f.scene))

	assert.Empty(t, f.source.contexts)
	require.Len(t, f.frames.begun, 1)
	assert.Len(t, f.frames.submitted, 1)
	assert.Len(t, f.frames.presented, 1)
	assert.Nil(t, f.mix.textures[postprocess.MixBloomTexture])
	assert.False(t, f.mix.enabled)
}

func TestStagesDropFrameOnSourceError(t *testing.T) {
	f := newStagesFixture()
	f.source.err = errors.New("bloom mip allocation failed")
	comp := bloom.NewCompositor(f.stages, f.stages)

	err := comp.Render(f.scene)
	require.ErrorIs(t, err, bloom.ErrSourcePass)
	assert.Len(t, f.frames.presented, 1)
	assert.Empty(t, f.frames.submitted)
	assert.Empty(t, f.final.contexts)
	assert.Nil(t, f.stages.frame)
	assert.Same(t, f.stone, f.pillar.Material())

	f.source.err = nil
	require.NoError(t, comp.Render(f.scene))
	assert.Len(t, f.frames.begun, 2)
	assert.Equal(t, []*renderer.Frame{f.frames.begun[1]}, f.frames.submitted)
}

func TestStagesPresentOnFinalError(t *testing.T) {
	f := newStagesFixture()
	f.final.err = errors.New("output pass failed")
	comp := bloom.NewCompositor(f.stages, f.stages)

	require.ErrorIs(t, comp.Render(f.scene), bloom.ErrFinalPass)
	assert.Empty(t, f.frames.submitted)
	assert.Len(t, f.frames.presented, 1)
	assert.Nil(t, f.stages.frame)
}

func TestStagesBeginFrameError(t *testing.T) {
	f := newStagesFixture()
	f.frames.beginErr = errors.New("surface outdated")
	comp := bloom.NewCompositor(f.stages, f.stages)

	err := comp.Render(f.scene)
	require.ErrorIs(t, err, f.frames.beginErr)
	assert.Empty(t, f.source.contexts)
	assert.Same(t, f.stone, f.pillar.Material())
}

func TestStagesDropStaleFrame(t *testing.T) {
	f := newStagesFixture()
	_, err := f.stages.RenderSource(f.scene)
	require.NoError(t, err)
	stale := f.stages.frame
	require.NotNil(t, stale)

	_, err = f.stages.RenderSource(f.scene)
	require.NoError(t, err)
	assert.Equal(t, []*renderer.Frame{stale}, f.frames.presented)
	assert.NotSame(t, stale, f.stages.frame)
}

func TestEngineRunsStages(t *testing.T) {
	f := newStagesFixture()
	e := NewEngine(
		WithDriver(&fakeDriver{frames: 2, dt: time.Millisecond}),
		WithScene(f.scene),
		WithCompositor(bloom.NewCompositor(f.stages, f.stages)),
	)
	require.NoError(t, e.Run(context.Background()))
	assert.Len(t, f.frames.submitted, 2)
	assert.Len(t, f.frames.presented, 2)
	assert.Len(t, f.final.contexts, 2)
}
