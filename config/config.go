// Package config loads runtime settings from the environment and scene
// presets from TOML files.
package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// envPrefix is prepended to every variable name in Config.
const envPrefix = "RUINS_"

// Config holds process-level settings read from RUINS_* environment variables.
type Config struct {
	Width         int        `env:"WIDTH"           envDefault:"1280"`
	Height        int        `env:"HEIGHT"          envDefault:"720"`
	Title         string     `env:"TITLE"           envDefault:"ruins"`
	Asset         string     `env:"ASSET"           envDefault:"ruins_noLights.glb"`
	Preset        string     `env:"PRESET"`
	VSync         bool       `env:"VSYNC"           envDefault:"true"`
	MSAA          int        `env:"MSAA"            envDefault:"4"`
	Software      bool       `env:"SOFTWARE"        envDefault:"false"`
	Profile       bool       `env:"PROFILE"         envDefault:"false"`
	Watch         bool       `env:"WATCH"           envDefault:"false"`
	LogLevel      slog.Level `env:"LOG_LEVEL"       envDefault:"info"`
	MaxPixelRatio float32    `env:"MAX_PIXEL_RATIO" envDefault:"2"`
}

// Load reads Config from the process environment.
//
// Returns:
//   - Config: the parsed settings
//   - error: if a variable fails to parse or a value is out of range
func Load() (Config, error) {
	return parse(env.Options{Prefix: envPrefix})
}

// LoadFrom reads Config from the given variables instead of the process
// environment. Keys carry the RUINS_ prefix.
//
// Parameters:
//   - environ: variable names to values
//
// Returns:
//   - Config: the parsed settings
//   - error: if a variable fails to parse or a value is out of range
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Prefix: envPrefix, Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects sizes and sample counts the renderer cannot use.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%sWIDTH and %sHEIGHT must be positive, got %dx%d", envPrefix, envPrefix, c.Width, c.Height)
	}
	switch c.MSAA {
	case 1, 4, 8, 16:
	default:
		return fmt.Errorf("%sMSAA must be 1, 4, 8 or 16, got %d", envPrefix, c.MSAA)
	}
	if c.MaxPixelRatio <= 0 {
		return fmt.Errorf("%sMAX_PIXEL_RATIO must be positive, got %g", envPrefix, c.MaxPixelRatio)
	}
	if c.Asset == "" {
		return fmt.Errorf("%sASSET must not be empty", envPrefix)
	}
	return nil
}
