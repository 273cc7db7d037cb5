package main

import (
	"fmt"

	"github.com/Carmen-Shannon/ruins/common"
	"github.com/Carmen-Shannon/ruins/config"
	"github.com/Carmen-Shannon/ruins/engine/light"
	"github.com/Carmen-Shannon/ruins/engine/loader"
	"github.com/Carmen-Shannon/ruins/engine/scene"
)

var lightTypes = map[string]light.LightType{
	config.LightAmbient:     light.LightTypeAmbient,
	config.LightHemisphere:  light.LightTypeHemisphere,
	config.LightDirectional: light.LightTypeDirectional,
	config.LightPoint:       light.LightTypePoint,
	config.LightSpot:        light.LightTypeSpot,
}

// buildScene loads the asset, classifies its glyph meshes as bloom and adds
// the preset's lights and axes helper.
//
// Parameters:
//   - asset: the .glb or .gltf path
//   - p: the scene preset
//
// Returns:
//   - scene.Scene: the assembled scene
//   - error: if the asset fails to load or a light is invalid
func buildScene(asset string, p config.Preset) (scene.Scene, error) {
	l := loader.NewLoader(loader.BackendTypeGLTF,
		loader.WithClassifier(scene.ClassifyByName(p.Model.BloomNames...)),
		loader.WithShadows(p.Model.CastShadow, p.Model.ReceiveShadow),
	)
	model, err := l.Load(asset)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", asset, err)
	}
	model.SetScale(common.Vec3{p.Model.Scale, p.Model.Scale, p.Model.Scale})

	lights, err := newLights(p.Lights)
	if err != nil {
		return nil, err
	}

	sc := scene.NewScene(scene.WithName("ruins"), scene.WithNodes(model), scene.WithLights(lights...))
	if p.Axes.Enabled {
		sc.Add(scene.NewAxesHelper(p.Axes.Size, scene.WithPosition(common.Vec3(p.Axes.Position))))
	}
	return sc, nil
}

// newLights converts the preset rig into scene lights.
func newLights(presets []config.LightPreset) ([]light.Light, error) {
	lights := make([]light.Light, 0, len(presets))
	for i, p := range presets {
		lightType, ok := lightTypes[p.Type]
		if !ok {
			return nil, fmt.Errorf("light %d: unknown type %q", i, p.Type)
		}

		options := []light.LightBuilderOption{
			light.WithColor(p.Color),
			light.WithIntensity(p.Intensity),
			light.WithPosition(common.Vec3(p.Position)),
			light.WithTarget(common.Vec3(p.Target)),
		}
		switch lightType {
		case light.LightTypeHemisphere:
			options = append(options, light.WithGroundColor(p.GroundColor))
		case light.LightTypePoint, light.LightTypeSpot:
			options = append(options, light.WithRange(p.Distance), light.WithDecay(p.Decay))
		}
		if s := p.Shadow; s != nil {
			options = append(options, light.WithShadow(light.ShadowConfig{
				MapSize:    s.MapSize,
				Near:       s.Near,
				Far:        s.Far,
				Bias:       s.Bias,
				NormalBias: s.NormalBias,
			}.WithDefaults()))
		}
		lights = append(lights, light.NewLight(lightType, options...))
	}
	return lights, nil
}
