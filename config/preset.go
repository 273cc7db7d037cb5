package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidPreset wraps every preset validation failure.
var ErrInvalidPreset = errors.New("invalid preset")

// Tone mapping names accepted in OutputPreset.ToneMapping.
const (
	ToneMappingNone     = "none"
	ToneMappingReinhard = "reinhard"
)

// Light types accepted in LightPreset.Type.
const (
	LightAmbient     = "ambient"
	LightHemisphere  = "hemisphere"
	LightDirectional = "directional"
	LightPoint       = "point"
	LightSpot        = "spot"
)

// Preset is the tunable description of the scene, its lights and its post-processing.
type Preset struct {
	Model    ModelPreset    `toml:"model"`
	Camera   CameraPreset   `toml:"camera"`
	Controls ControlsPreset `toml:"controls"`
	Bloom    BloomPreset    `toml:"bloom"`
	Output   OutputPreset   `toml:"output"`
	Lights   []LightPreset  `toml:"lights"`
	Axes     AxesPreset     `toml:"axes"`
}

// ModelPreset controls how the asset is placed and classified.
type ModelPreset struct {
	Scale         float32  `toml:"scale"`
	BloomNames    []string `toml:"bloom_names"`
	CastShadow    bool     `toml:"cast_shadow"`
	ReceiveShadow bool     `toml:"receive_shadow"`
}

// CameraPreset is the perspective camera's initial pose.
type CameraPreset struct {
	FOV      float32    `toml:"fov"`
	Near     float32    `toml:"near"`
	Far      float32    `toml:"far"`
	Position [3]float32 `toml:"position"`
	Target   [3]float32 `toml:"target"`
}

// ControlsPreset configures the orbit controls.
type ControlsPreset struct {
	Damping       bool    `toml:"damping"`
	DampingFactor float32 `toml:"damping_factor"`
	MinDistance   float32 `toml:"min_distance"`
	MaxDistance   float32 `toml:"max_distance"`
	RotateSpeed   float32 `toml:"rotate_speed"`
	ZoomSpeed     float32 `toml:"zoom_speed"`
	PanSpeed      float32 `toml:"pan_speed"`
}

// BloomPreset holds the UnrealBloomPass parameters.
type BloomPreset struct {
	Enabled   bool    `toml:"enabled"`
	Strength  float32 `toml:"strength"`
	Radius    float32 `toml:"radius"`
	Threshold float32 `toml:"threshold"`
}

// OutputPreset holds the display transform.
type OutputPreset struct {
	Exposure    float32 `toml:"exposure"`
	ToneMapping string  `toml:"tone_mapping"`
}

// LightPreset describes one light. Colours are sRGB hex integers such as 0xff0000.
type LightPreset struct {
	Type        string        `toml:"type"`
	Color       uint32        `toml:"color"`
	GroundColor uint32        `toml:"ground_color"`
	Intensity   float32       `toml:"intensity"`
	Position    [3]float32    `toml:"position"`
	Target      [3]float32    `toml:"target"`
	Distance    float32       `toml:"distance"`
	Decay       float32       `toml:"decay"`
	Shadow      *ShadowPreset `toml:"shadow"`
}

// ShadowPreset enables and tunes a light's shadow map.
type ShadowPreset struct {
	MapSize    int     `toml:"map_size"`
	Near       float32 `toml:"near"`
	Far        float32 `toml:"far"`
	Bias       float32 `toml:"bias"`
	NormalBias float32 `toml:"normal_bias"`
}

// AxesPreset places the axes helper.
type AxesPreset struct {
	Enabled  bool       `toml:"enabled"`
	Size     float32    `toml:"size"`
	Position [3]float32 `toml:"position"`
}

// DefaultPreset returns the ruins scene: half-scale model with glowing glyphs,
// a purple ambient wash, a red point light over the altar and a white key light.
//
// Returns:
//   - Preset: the default preset
func DefaultPreset() Preset {
	return Preset{
		Model: ModelPreset{
			Scale:         0.5,
			BloomNames:    []string{"glyph", "glyph001"},
			CastShadow:    true,
			ReceiveShadow: true,
		},
		Camera: CameraPreset{
			FOV:      45,
			Near:     0.1,
			Far:      100,
			Position: [3]float32{4, 2, 4},
		},
		Controls: ControlsPreset{
			Damping:       true,
			DampingFactor: 0.05,
			MinDistance:   0,
			MaxDistance:   0,
			RotateSpeed:   1,
			ZoomSpeed:     1,
			PanSpeed:      1,
		},
		Bloom: BloomPreset{
			Enabled:   true,
			Strength:  0.2,
			Radius:    2,
			Threshold: 0.001,
		},
		Output: OutputPreset{
			Exposure:    1,
			ToneMapping: ToneMappingReinhard,
		},
		Lights: []LightPreset{
			{Type: LightAmbient, Color: 0x2900AC, Intensity: 10},
			{Type: LightHemisphere, Color: 0xfefefe, GroundColor: 0x080800, Intensity: 1},
			{
				Type:      LightPoint,
				Color:     0xff0000,
				Intensity: 100,
				Distance:  100,
				Decay:     2,
				Position:  [3]float32{0, 5, 0},
				Shadow:    &ShadowPreset{MapSize: 512, Near: 2, Far: 6, Bias: -0.004, NormalBias: 0.05},
			},
			{
				Type:      LightDirectional,
				Color:     0xffffff,
				Intensity: 1,
				Position:  [3]float32{-5, 2, -5},
				Shadow:    &ShadowPreset{MapSize: 512, Near: 4, Far: 10, Bias: -0.004, NormalBias: 0.05},
			},
		},
		Axes: AxesPreset{
			Enabled:  true,
			Size:     1,
			Position: [3]float32{0, 2, 0},
		},
	}
}

// LoadPreset reads a TOML file over DefaultPreset, so a file only needs the
// keys it changes. A lights array in the file replaces the default rig.
//
// Parameters:
//   - path: the TOML file
//
// Returns:
//   - Preset: the merged, validated preset
//   - error: on read, parse or validation failure
func LoadPreset(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("read preset: %w", err)
	}
	p, err := ParsePreset(data)
	if err != nil {
		return Preset{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParsePreset decodes TOML over DefaultPreset and validates the result.
// Unknown keys are rejected.
func ParsePreset(data []byte) (Preset, error) {
	// arrays in the file replace the defaults instead of extending them
	var arrays struct {
		Model struct {
			BloomNames []string `toml:"bloom_names"`
		} `toml:"model"`
		Lights []LightPreset `toml:"lights"`
	}
	if err := toml.Unmarshal(data, &arrays); err != nil {
		return Preset{}, fmt.Errorf("parse preset: %w", err)
	}

	p := DefaultPreset()
	if arrays.Model.BloomNames != nil {
		p.Model.BloomNames = nil
	}
	if arrays.Lights != nil {
		p.Lights = nil
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Preset{}, fmt.Errorf("parse preset: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// Validate rejects negative or inverted values.
//
// Returns:
//   - error: the first problem found, wrapping ErrInvalidPreset
func (p Preset) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidPreset, fmt.Sprintf(format, args...))
	}

	if p.Model.Scale <= 0 {
		return invalid("model.scale must be positive, got %g", p.Model.Scale)
	}
	if p.Camera.FOV <= 0 || p.Camera.FOV >= 180 {
		return invalid("camera.fov must be in (0, 180), got %g", p.Camera.FOV)
	}
	if p.Camera.Near <= 0 || p.Camera.Far <= p.Camera.Near {
		return invalid("camera near/far must satisfy 0 < near < far, got %g/%g", p.Camera.Near, p.Camera.Far)
	}
	if p.Camera.Position == p.Camera.Target {
		return invalid("camera.position must differ from camera.target")
	}
	if p.Controls.DampingFactor < 0 || p.Controls.DampingFactor > 1 {
		return invalid("controls.damping_factor must be in [0, 1], got %g", p.Controls.DampingFactor)
	}
	if p.Controls.MinDistance < 0 || p.Controls.MaxDistance < 0 {
		return invalid("controls distances must not be negative")
	}
	if p.Controls.MaxDistance > 0 && p.Controls.MaxDistance < p.Controls.MinDistance {
		return invalid("controls.max_distance %g is below min_distance %g", p.Controls.MaxDistance, p.Controls.MinDistance)
	}
	if p.Controls.RotateSpeed < 0 || p.Controls.ZoomSpeed < 0 || p.Controls.PanSpeed < 0 {
		return invalid("controls speeds must not be negative")
	}
	if p.Bloom.Strength < 0 || p.Bloom.Radius < 0 || p.Bloom.Threshold < 0 {
		return invalid("bloom strength, radius and threshold must not be negative")
	}
	if p.Output.Exposure <= 0 {
		return invalid("output.exposure must be positive, got %g", p.Output.Exposure)
	}
	if p.Output.ToneMapping != ToneMappingNone && p.Output.ToneMapping != ToneMappingReinhard {
		return invalid("output.tone_mapping must be %q or %q, got %q", ToneMappingNone, ToneMappingReinhard, p.Output.ToneMapping)
	}
	for i, l := range p.Lights {
		if err := l.validate(); err != nil {
			return invalid("lights[%d]: %v", i, err)
		}
	}
	if p.Axes.Size < 0 {
		return invalid("axes.size must not be negative, got %g", p.Axes.Size)
	}
	return nil
}

var lightTypes = []string{LightAmbient, LightHemisphere, LightDirectional, LightPoint, LightSpot}

func (l LightPreset) validate() error {
	if !slices.Contains(lightTypes, l.Type) {
		return fmt.Errorf("unknown type %q", l.Type)
	}
	if l.Color > 0xffffff || l.GroundColor > 0xffffff {
		return errors.New("colours must be 24-bit hex")
	}
	if l.Intensity < 0 || l.Distance < 0 || l.Decay < 0 {
		return errors.New("intensity, distance and decay must not be negative")
	}
	if (l.Type == LightDirectional || l.Type == LightSpot) && l.Position == l.Target {
		return errors.New("position must differ from target")
	}
	if s := l.Shadow; s != nil {
		if l.Type != LightDirectional && l.Type != LightPoint {
			return fmt.Errorf("%s lights cannot cast shadows", l.Type)
		}
		if s.MapSize < 0 {
			return errors.New("shadow.map_size must not be negative")
		}
		if s.Near < 0 || (s.Far != 0 && s.Far <= s.Near) {
			return errors.New("shadow near/far must satisfy 0 <= near < far")
		}
		if s.NormalBias < 0 {
			return errors.New("shadow.normal_bias must not be negative")
		}
	}
	return nil
}
