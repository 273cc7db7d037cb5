package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/ruins/config"
	"github.com/Carmen-Shannon/ruins/engine/bloom"
	"github.com/Carmen-Shannon/ruins/engine/light"
	"github.com/Carmen-Shannon/ruins/engine/postprocess"
)

type fakeBloomPass struct {
	strength, radius, threshold float32
}

func (p *fakeBloomPass) SetStrength(v float32) error {
	p.strength = v
	return nil
}

func (p *fakeBloomPass) SetRadius(v float32) error {
	p.radius = v
	return nil
}

func (p *fakeBloomPass) SetThreshold(v float32) error {
	p.threshold = v
	return nil
}

type fakeOutputPass struct {
	exposure    float32
	toneMapping uint32
	err         error
}

func (p *fakeOutputPass) SetExposure(v float32) error {
	p.exposure = v
	return p.err
}

func (p *fakeOutputPass) SetToneMapping(v uint32) error {
	p.toneMapping = v
	return nil
}

func TestNewLightsFromDefaultPreset(t *testing.T) {
	lights, err := newLights(config.DefaultPreset().Lights)
	require.NoError(t, err)
	require.Len(t, lights, 4)

	assert.Equal(t, light.LightTypeAmbient, lights[0].Type())
	assert.Equal(t, float32(10), lights[0].Intensity())
	assert.Equal(t, light.LightTypeHemisphere, lights[1].Type())

	point := lights[2]
	assert.Equal(t, light.LightTypePoint, point.Type())
	assert.Equal(t, float32(100), point.Intensity())
	assert.Equal(t, float32(100), point.Range())
	assert.Equal(t, float32(2), point.Decay())
	require.True(t, point.CastsShadows())
	assert.Equal(t, 512, point.Shadow().MapSize)
	assert.Equal(t, float32(-0.004), point.Shadow().Bias)

	sun := lights[3]
	assert.Equal(t, light.LightTypeDirectional, sun.Type())
	require.NotNil(t, sun.Shadow())
	assert.Equal(t, float32(4), sun.Shadow().Near)
	assert.Equal(t, float32(10), sun.Shadow().Far)
	assert.Positive(t, sun.Shadow().HalfExtent)
}

func TestNewLightsRejectsUnknownType(t *testing.T) {
	_, err := newLights([]config.LightPreset{{Type: "area"}})
	assert.ErrorContains(t, err, `unknown type "area"`)
}

func TestToneMapping(t *testing.T) {
	assert.Equal(t, postprocess.ToneMappingNone, toneMapping(config.ToneMappingNone))
	assert.Equal(t, postprocess.ToneMappingReinhard, toneMapping(config.ToneMappingReinhard))
}

func TestApplyPreset(t *testing.T) {
	bp, out := &fakeBloomPass{}, &fakeOutputPass{}
	chain := &postChain{bloomPass: bp, output: out}
	comp := bloom.NewCompositor(nil, nil)

	p := config.DefaultPreset()
	p.Bloom.Enabled = false
	p.Bloom.Strength = 1.5
	p.Output.Exposure = 0.8
	p.Output.ToneMapping = config.ToneMappingNone
	chain.apply(p, comp)

	assert.False(t, comp.Enabled())
	assert.Equal(t, float32(1.5), bp.strength)
	assert.Equal(t, float32(2), bp.radius)
	assert.Equal(t, float32(0.001), bp.threshold)
	assert.Equal(t, float32(0.8), out.exposure)
	assert.Equal(t, postprocess.ToneMappingNone, out.toneMapping)
}

func TestApplyPresetReportsFailure(t *testing.T) {
	out := &fakeOutputPass{err: errors.New("queue lost")}
	chain := &postChain{bloomPass: &fakeBloomPass{}, output: out}
	comp := bloom.NewCompositor(nil, nil)

	assert.NotPanics(t, func() { chain.apply(config.DefaultPreset(), comp) })
	assert.True(t, comp.Enabled())
}
