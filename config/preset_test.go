package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPresetIsValid(t *testing.T) {
	p := DefaultPreset()
	require.NoError(t, p.Validate())

	assert.Equal(t, float32(0.5), p.Model.Scale)
	assert.Equal(t, []string{"glyph", "glyph001"}, p.Model.BloomNames)
	assert.Equal(t, BloomPreset{Enabled: true, Strength: 0.2, Radius: 2, Threshold: 0.001}, p.Bloom)
	assert.Equal(t, ToneMappingReinhard, p.Output.ToneMapping)
	require.Len(t, p.Lights, 4)
	assert.Equal(t, uint32(0x2900AC), p.Lights[0].Color)
	assert.Equal(t, float32(-0.004), p.Lights[3].Shadow.Bias)
	assert.Equal(t, [3]float32{0, 2, 0}, p.Axes.Position)
}

func TestParsePresetOverlaysDefaults(t *testing.T) {
	p, err := ParsePreset([]byte(`
[bloom]
strength = 0.8

[output]
exposure = 1.5
`))
	require.NoError(t, err)

	assert.Equal(t, float32(0.8), p.Bloom.Strength)
	assert.Equal(t, float32(2), p.Bloom.Radius, "keys absent from the file keep their defaults")
	assert.Equal(t, float32(1.5), p.Output.Exposure)
	assert.Len(t, p.Lights, 4)
	assert.Equal(t, []string{"glyph", "glyph001"}, p.Model.BloomNames)
}

func TestParsePresetReplacesArrays(t *testing.T) {
	p, err := ParsePreset([]byte(`
[model]
bloom_names = ["altar"]

[[lights]]
type = "point"
color = 0x00ff00
intensity = 20
position = [1.0, 3.0, 0.0]

[lights.shadow]
map_size = 1024
near = 1.0
far = 8.0
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"altar"}, p.Model.BloomNames)
	require.Len(t, p.Lights, 1)
	l := p.Lights[0]
	assert.Equal(t, LightPoint, l.Type)
	assert.Equal(t, uint32(0x00ff00), l.Color)
	assert.Equal(t, [3]float32{1, 3, 0}, l.Position)
	require.NotNil(t, l.Shadow)
	assert.Equal(t, 1024, l.Shadow.MapSize)
}

func TestParsePresetRejectsUnknownKeys(t *testing.T) {
	_, err := ParsePreset([]byte("[bloom]\nglow = 1\n"))
	assert.Error(t, err)

	_, err = ParsePreset([]byte("not = [toml"))
	assert.Error(t, err)
}

func TestPresetValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Preset)
	}{
		{"zero scale", func(p *Preset) { p.Model.Scale = 0 }},
		{"negative strength", func(p *Preset) { p.Bloom.Strength = -1 }},
		{"negative radius", func(p *Preset) { p.Bloom.Radius = -0.1 }},
		{"negative threshold", func(p *Preset) { p.Bloom.Threshold = -0.001 }},
		{"zero exposure", func(p *Preset) { p.Output.Exposure = 0 }},
		{"unknown tone mapping", func(p *Preset) { p.Output.ToneMapping = "aces" }},
		{"inverted camera planes", func(p *Preset) { p.Camera.Near, p.Camera.Far = 10, 1 }},
		{"wide fov", func(p *Preset) { p.Camera.FOV = 180 }},
		{"camera at target", func(p *Preset) { p.Camera.Position = p.Camera.Target }},
		{"damping above one", func(p *Preset) { p.Controls.DampingFactor = 1.5 }},
		{"inverted distances", func(p *Preset) { p.Controls.MinDistance, p.Controls.MaxDistance = 5, 2 }},
		{"unknown light", func(p *Preset) { p.Lights[0].Type = "laser" }},
		{"wide colour", func(p *Preset) { p.Lights[0].Color = 0x1000000 }},
		{"negative intensity", func(p *Preset) { p.Lights[1].Intensity = -1 }},
		{"inverted shadow planes", func(p *Preset) { p.Lights[2].Shadow.Far = 1 }},
		{"ambient shadow", func(p *Preset) { p.Lights[0].Shadow = &ShadowPreset{} }},
		{"directional at target", func(p *Preset) { p.Lights[3].Position = p.Lights[3].Target }},
		{"negative axes", func(p *Preset) { p.Axes.Size = -1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultPreset()
			tc.mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidPreset)
		})
	}
}

func TestLoadPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "night.toml")
	require.NoError(t, os.WriteFile(path, []byte("[bloom]\nenabled = false\n"), 0o644))

	p, err := LoadPreset(path)
	require.NoError(t, err)
	assert.False(t, p.Bloom.Enabled)

	require.NoError(t, os.WriteFile(path, []byte("[bloom]\nstrength = -2.0\n"), 0o644))
	_, err = LoadPreset(path)
	assert.ErrorIs(t, err, ErrInvalidPreset)

	_, err = LoadPreset(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
