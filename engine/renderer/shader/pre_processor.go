// pre_processor.go expands include annotations in WGSL source. An annotation is
// a single comment line of the form
//
//	//@ruins:include <name>
//
// and is replaced by the WGSL struct source registered under name. Struct
// sources live next to the Go types that marshal them so the two layouts stay
// in one place.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/ruins/engine/camera"
	"github.com/Carmen-Shannon/ruins/engine/light"
	"github.com/Carmen-Shannon/ruins/engine/renderer/material"
	"github.com/Carmen-Shannon/ruins/engine/scene"
)

// annotationPrefix marks an include annotation within a WGSL comment line.
const annotationPrefix = "//@ruins:include"

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	registry map[string]string
}

// PreProcessor expands include annotations in WGSL source.
type PreProcessor interface {
	// Process replaces every include annotation with its registered source.
	// A name included twice is emitted once.
	//
	// Parameters:
	//   - source: raw WGSL
	//
	// Returns:
	//   - string: the expanded WGSL
	//   - error: if an annotation is malformed or names an unknown source
	Process(source string) (string, error)

	// Register adds or replaces an includable source.
	Register(name, source string)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the engine's GPU struct sources registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	p := &preProcessor{
		registry: map[string]string{
			"camera":      camera.GPUCameraUniformSource,
			"vertex":      scene.GPUVertexSource,
			"model":       scene.GPUModelUniformSource,
			"material":    material.GPUMaterialSource,
			"light":       light.GPULightUniformSource,
			"shadow":      light.GPUShadowUniformSource,
			"shadow_view": light.GPUShadowViewSource,
		},
	}
	if data, err := assets.ReadFile("assets/fullscreen.wgsl"); err == nil {
		p.registry["fullscreen"] = string(data)
	}
	return p
}

func (p *preProcessor) Register(name, source string) {
	p.registry[name] = source
}

func (p *preProcessor) Process(source string) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	seen := make(map[string]bool)

	for i, line := range lines {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), annotationPrefix)
		if !ok {
			out = append(out, line)
			continue
		}
		args := strings.Fields(rest)
		if len(args) != 1 {
			return "", fmt.Errorf("line %d: include takes exactly one name, got %d", i+1, len(args))
		}
		name := args[0]
		src, ok := p.registry[name]
		if !ok {
			return "", fmt.Errorf("line %d: unknown include %q", i+1, name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, strings.TrimRight(src, "\n"))
	}
	return strings.Join(out, "\n"), nil
}
