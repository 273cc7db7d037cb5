package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 1280, cfg.Width)
	assert.Equal(t, 720, cfg.Height)
	assert.Equal(t, "ruins_noLights.glb", cfg.Asset)
	assert.Empty(t, cfg.Preset)
	assert.True(t, cfg.VSync)
	assert.Equal(t, 4, cfg.MSAA)
	assert.False(t, cfg.Software)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, float32(2), cfg.MaxPixelRatio)
}

func TestLoadFromOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"RUINS_WIDTH":     "800",
		"RUINS_VSYNC":     "false",
		"RUINS_MSAA":      "1",
		"RUINS_LOG_LEVEL": "debug",
		"RUINS_PRESET":    "night.toml",
		"WIDTH":           "1", // unprefixed variables are ignored
	})
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Width)
	assert.False(t, cfg.VSync)
	assert.Equal(t, 1, cfg.MSAA)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "night.toml", cfg.Preset)
}

func TestLoadFromRejects(t *testing.T) {
	tests := map[string]map[string]string{
		"bad int":     {"RUINS_WIDTH": "wide"},
		"zero height": {"RUINS_HEIGHT": "0"},
		"odd msaa":    {"RUINS_MSAA": "3"},
		"bad level":   {"RUINS_LOG_LEVEL": "chatty"},
		"zero ratio":  {"RUINS_MAX_PIXEL_RATIO": "0"},
	}
	for name, environ := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(environ)
			assert.Error(t, err)
		})
	}
}
