package shader

import (
	"embed"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/*.wgsl
var assets embed.FS

// Keys of the programs embedded in this package, accepted by Load.
const (
	KeyScene          = "scene"
	KeyShadow         = "shadow"
	KeyLuminosity     = "luminosity"
	KeyBlur           = "blur"
	KeyBloomComposite = "bloom_composite"
	KeyCopy           = "copy"
	KeyMix            = "mix"
	KeyOutput         = "output"
)

// ShaderType identifies a programmable stage of a render pipeline.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage, entered through an @vertex function.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage, entered through an @fragment function.
	ShaderTypeFragment
)

// shader is the implementation of the Shader interface.
// It holds all of the persistent shader data required for pipeline creation and resource binding.
type shader struct {
	key                        string
	source                     string
	entryPoints                map[ShaderType]string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              []wgpu.VertexBufferLayout
	module                     *wgpu.ShaderModuleDescriptor
}

// Shader is a pre-processed WGSL module and the metadata reflected from it:
// stage entry points, the vertex input layout, and bind group layouts with
// per-binding stage visibility.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source with every include expanded
	Source() string

	// Module returns the descriptor the renderer passes to CreateShaderModule.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor

	// EntryPoint returns the entry function of a stage.
	//
	// Parameters:
	//   - stage: the pipeline stage
	//
	// Returns:
	//   - string: the entry point name, or empty if the module has no such stage
	EntryPoint(stage ShaderType) string

	// HasStage reports whether the module declares an entry point for stage.
	HasStage(stage ShaderType) bool

	// VertexLayouts returns the vertex buffer layouts built from the module's
	// vertex input structs, in declaration order. Empty for modules that pull
	// vertices from builtins only.
	VertexLayouts() []wgpu.VertexBufferLayout

	// BindGroupLayoutDescriptor retrieves the layout descriptor of one bind group.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor if the group is not declared
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors keyed by group index.
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// GroupCount returns one past the highest declared group index.
	GroupCount() int

	// BindGroupVarName retrieves the variable name declared at a group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not declared
	BindGroupVarName(group, binding int) string

	// BindingFromVarName retrieves the binding index of a variable within a group.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the WGSL variable name
	//
	// Returns:
	//   - int: the binding index, or -1 if not found
	//   - bool: true if the variable was found
	BindingFromVarName(group int, varName string) (int, bool)
}

var _ Shader = &shader{}

// NewShader pre-processes WGSL source and reflects its entry points and layouts.
//
// Parameters:
//   - key: a unique identifier for the shader, used as the module label
//   - source: raw WGSL, possibly containing include annotations
//
// Returns:
//   - Shader: the parsed shader
//   - error: if pre-processing fails or the module declares no entry point
func NewShader(key, source string) (Shader, error) {
	processed, err := NewPreProcessor().Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	s := &shader{
		key:         key,
		source:      processed,
		entryPoints: make(map[ShaderType]string),
		module: &wgpu.ShaderModuleDescriptor{
			Label: key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: processed,
			},
		},
	}
	for _, stage := range []ShaderType{ShaderTypeVertex, ShaderTypeFragment} {
		if name := parseEntryPoint(processed, stage); name != "" {
			s.entryPoints[stage] = name
		}
	}
	if len(s.entryPoints) == 0 {
		return nil, fmt.Errorf("shader %s: no @vertex or @fragment entry point", key)
	}
	if s.HasStage(ShaderTypeVertex) {
		s.vertexLayouts = parseVertexLayouts(processed)
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(processed, s.entryPoints)
	return s, nil
}

// Load parses one of the programs embedded in this package.
//
// Parameters:
//   - key: one of the Key constants
//
// Returns:
//   - Shader: the parsed shader
//   - error: if the key is unknown or parsing fails
func Load(key string) (Shader, error) {
	data, err := assets.ReadFile("assets/" + key + ".wgsl")
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	return NewShader(key, string(data))
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) EntryPoint(stage ShaderType) string {
	return s.entryPoints[stage]
}

func (s *shader) HasStage(stage ShaderType) bool {
	_, ok := s.entryPoints[stage]
	return ok
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) GroupCount() int {
	n := 0
	for g := range s.bindGroupLayoutDescriptors {
		n = max(n, g+1)
	}
	return n
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindingFromVarName(group int, varName string) (int, bool) {
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}
