package engine

import (
	"fmt"

	"github.com/Carmen-Shannon/ruins/engine/bloom"
	"github.com/Carmen-Shannon/ruins/engine/postprocess"
	"github.com/Carmen-Shannon/ruins/engine/renderer"
	"github.com/Carmen-Shannon/ruins/engine/renderer/render_target"
	"github.com/Carmen-Shannon/ruins/engine/scene"
)

// FrameRecorder begins, submits and presents frames. renderer.Renderer satisfies it.
type FrameRecorder interface {
	BeginFrame() (*renderer.Frame, error)
	Submit(f *renderer.Frame) error
	Present(f *renderer.Frame)
}

// BloomMixer is the final composer's mix pass. postprocess.ShaderPass satisfies it.
type BloomMixer interface {
	SetTexture(name string, rt render_target.RenderTarget)
	SetEnabled(enabled bool)
}

// Stages binds the two composers to the compositor. The source stage begins
// the frame and records the bloom composer off-screen; the final stage feeds
// the bloom output to the mix pass, records the final composer to the
// surface and presents. Both stages share one command encoder, so the frame
// is a single submission.
type Stages struct {
	frames FrameRecorder
	source postprocess.Composer
	final  postprocess.Composer
	mix    BloomMixer

	// frame is begun by RenderSource and consumed by RenderFinal
	frame *renderer.Frame
}

var (
	_ bloom.SourcePass = &Stages{}
	_ bloom.FinalPass  = &Stages{}
)

// NewStages creates the compositor stages.
//
// Parameters:
//   - frames: the renderer recording the frame
//   - source: the off-screen bloom composer
//   - final: the composer that renders to the screen
//   - mix: the final composer's pass blending the bloom texture over the scene
//
// Returns:
//   - *Stages: the stages, usable as both passes of bloom.NewCompositor
func NewStages(frames FrameRecorder, source, final postprocess.Composer, mix BloomMixer) *Stages {
	return &Stages{frames: frames, source: source, final: final, mix: mix}
}

func (st *Stages) RenderSource(s scene.Scene) (render_target.RenderTarget, error) {
	if st.frame != nil {
		// left over from a frame whose final stage never ran
		st.frames.Present(st.frame)
		st.frame = nil
	}
	frame, err := st.frames.BeginFrame()
	if err != nil {
		return nil, fmt.Errorf("begin frame: %w", err)
	}

	recorded := false
	defer func() {
		if !recorded {
			st.frames.Present(frame)
		}
	}()

	if err := st.source.Render(&postprocess.RenderContext{Encoder: frame.Encoder, Scene: s}); err != nil {
		return nil, err
	}
	recorded = true
	st.frame = frame
	return st.source.ReadTarget(), nil
}

func (st *Stages) RenderFinal(s scene.Scene, bloomTexture render_target.RenderTarget) error {
	frame := st.frame
	st.frame = nil
	if frame == nil {
		var err error
		if frame, err = st.frames.BeginFrame(); err != nil {
			return fmt.Errorf("begin frame: %w", err)
		}
	}
	defer st.frames.Present(frame)

	st.mix.SetTexture(postprocess.MixBloomTexture, bloomTexture)
	st.mix.SetEnabled(bloomTexture != nil)

	ctx := &postprocess.RenderContext{Encoder: frame.Encoder, Scene: s, Screen: frame.Screen}
	if err := st.final.Render(ctx); err != nil {
		return err
	}
	return st.frames.Submit(frame)
}
