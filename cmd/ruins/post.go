package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/ruins/config"
	"github.com/Carmen-Shannon/ruins/engine"
	"github.com/Carmen-Shannon/ruins/engine/bloom"
	"github.com/Carmen-Shannon/ruins/engine/camera"
	"github.com/Carmen-Shannon/ruins/engine/postprocess"
	"github.com/Carmen-Shannon/ruins/engine/renderer"
	"github.com/Carmen-Shannon/ruins/engine/renderer/shader"
)

// bloomTuner is the live-tunable part of the bloom pass.
type bloomTuner interface {
	SetStrength(strength float32) error
	SetRadius(radius float32) error
	SetThreshold(threshold float32) error
}

// outputTuner is the live-tunable part of the output pass.
type outputTuner interface {
	SetExposure(exposure float32) error
	SetToneMapping(op uint32) error
}

// postChain owns the two composers of the selective bloom frame.
type postChain struct {
	bloomComposer postprocess.Composer
	finalComposer postprocess.Composer
	bloomPass     bloomTuner
	output        outputTuner
	stages        *engine.Stages
}

// newPostChain builds the bloom composer (scene, then bloom, off-screen) and
// the final composer (scene, mix with the bloom output, output transform).
//
// Parameters:
//   - r: the renderer providing the device and drawing the scene
//   - cam: the camera both scene passes use
//   - p: the preset holding bloom and output parameters
//   - width, height: the initial render size
//
// Returns:
//   - *postChain: the chain
//   - error: if a pass or target cannot be created
func newPostChain(r renderer.Renderer, cam camera.Camera, p config.Preset, width, height uint32) (*postChain, error) {
	device := r.Device()

	bloomPass, err := postprocess.NewUnrealBloomPass(device, p.Bloom.Strength, p.Bloom.Radius, p.Bloom.Threshold)
	if err != nil {
		return nil, fmt.Errorf("create bloom pass: %w", err)
	}
	bloomComposer, err := postprocess.NewComposer(r.TargetFactory(), width, height,
		postprocess.WithLabel("bloom composer"),
		postprocess.WithRenderToScreen(false),
	)
	if err != nil {
		bloomPass.Release()
		return nil, fmt.Errorf("create bloom composer: %w", err)
	}
	c := &postChain{bloomComposer: bloomComposer, bloomPass: bloomPass}
	if err := errors.Join(
		bloomComposer.AddPass(postprocess.NewRenderPass(r, cam)),
		bloomComposer.AddPass(bloomPass),
	); err != nil {
		c.release()
		return nil, err
	}

	mixPass, err := postprocess.NewShaderPass(device, shader.KeyMix, postprocess.WithName("mix"))
	if err != nil {
		c.release()
		return nil, fmt.Errorf("create mix pass: %w", err)
	}
	outputPass, err := postprocess.NewOutputPass(device, p.Output.Exposure, toneMapping(p.Output.ToneMapping))
	if err != nil {
		mixPass.Release()
		c.release()
		return nil, fmt.Errorf("create output pass: %w", err)
	}
	finalComposer, err := postprocess.NewComposer(r.TargetFactory(), width, height,
		postprocess.WithLabel("final composer"),
	)
	if err != nil {
		mixPass.Release()
		outputPass.Release()
		c.release()
		return nil, fmt.Errorf("create final composer: %w", err)
	}
	c.finalComposer = finalComposer
	c.output = outputPass
	if err := errors.Join(
		finalComposer.AddPass(postprocess.NewRenderPass(r, cam)),
		finalComposer.AddPass(mixPass),
		finalComposer.AddPass(outputPass),
	); err != nil {
		c.release()
		return nil, err
	}

	c.stages = engine.NewStages(r, bloomComposer, finalComposer, mixPass)
	return c, nil
}

// resize resizes both composers, bloom mip chain included.
func (c *postChain) resize(width, height uint32) error {
	return errors.Join(
		c.bloomComposer.SetSize(width, height),
		c.finalComposer.SetSize(width, height),
	)
}

// apply pushes a reloaded preset's bloom and output parameters into the passes.
// Scene, camera and light changes need a restart and are ignored.
func (c *postChain) apply(p config.Preset, comp bloom.Compositor) {
	comp.SetEnabled(p.Bloom.Enabled)
	err := errors.Join(
		c.bloomPass.SetStrength(p.Bloom.Strength),
		c.bloomPass.SetRadius(p.Bloom.Radius),
		c.bloomPass.SetThreshold(p.Bloom.Threshold),
		c.output.SetExposure(p.Output.Exposure),
		c.output.SetToneMapping(toneMapping(p.Output.ToneMapping)),
	)
	if err != nil {
		slog.Warn("Preset not applied", slog.String("error", err.Error()))
		return
	}
	slog.Info("Preset applied",
		slog.Bool("bloom", p.Bloom.Enabled),
		slog.Float64("strength", float64(p.Bloom.Strength)),
		slog.Float64("exposure", float64(p.Output.Exposure)),
	)
}

// release frees both composers and their passes.
func (c *postChain) release() {
	if c.bloomComposer != nil {
		c.bloomComposer.Release()
	}
	if c.finalComposer != nil {
		c.finalComposer.Release()
	}
}

func toneMapping(name string) uint32 {
	if name == config.ToneMappingNone {
		return postprocess.ToneMappingNone
	}
	return postprocess.ToneMappingReinhard
}
