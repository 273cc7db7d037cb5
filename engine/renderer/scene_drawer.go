package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/ruins/common"
	"github.com/Carmen-Shannon/ruins/engine/camera"
	"github.com/Carmen-Shannon/ruins/engine/light"
	"github.com/Carmen-Shannon/ruins/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/ruins/engine/renderer/material"
	"github.com/Carmen-Shannon/ruins/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/ruins/engine/renderer/render_target"
	"github.com/Carmen-Shannon/ruins/engine/renderer/shader"
	"github.com/Carmen-Shannon/ruins/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

// Bind group indices of the lit scene program.
const (
	groupFrame    = 0
	groupModel    = 1
	groupMaterial = 2
)

// Bindings of the frame group.
const (
	bindingCamera            = 0
	bindingLights            = 1
	bindingShadows           = 2
	bindingDirectionalShadow = 3
	bindingPointShadow       = 4
	bindingShadowSampler     = 5
)

// Bindings of the material group.
const (
	bindingMaterial         = 0
	bindingBaseColorTexture = 1
	bindingBaseColorSampler = 2
)

const (
	sceneDepthFormat  = wgpu.TextureFormatDepth24Plus
	shadowDepthFormat = wgpu.TextureFormatDepth32Float
)

// drawVariant selects the pipeline state a node is drawn with.
type drawVariant int

const (
	variantOpaque drawVariant = iota
	variantDoubleSided
	variantLines
)

func (v drawVariant) String() string {
	switch v {
	case variantDoubleSided:
		return "double_sided"
	case variantLines:
		return "lines"
	default:
		return "opaque"
	}
}

// drawItem is one visible mesh node resolved for a frame.
type drawItem struct {
	node     scene.Node
	mesh     *scene.Mesh
	material material.Material
	variant  drawVariant
}

// collectDrawItems walks the visible part of s and returns one item per node
// with a drawable mesh. Nodes without a material are drawn with fallback.
//
// Parameters:
//   - s: the scene
//   - fallback: material used for nodes that have none
//
// Returns:
//   - []drawItem: the items in traversal order
func collectDrawItems(s scene.Scene, fallback material.Material) []drawItem {
	var items []drawItem
	s.TraverseVisible(func(n scene.Node) {
		mesh := n.Mesh()
		if mesh == nil || len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
			return
		}
		mat := n.Material()
		if mat == nil {
			mat = fallback
		}
		items = append(items, drawItem{
			node:     n,
			mesh:     mesh,
			material: mat,
			variant:  variantFor(mesh, mat),
		})
	})
	return items
}

// variantFor picks the pipeline variant of a mesh and material pair.
func variantFor(mesh *scene.Mesh, mat material.Material) drawVariant {
	switch {
	case mesh.Topology == scene.TopologyLines:
		return variantLines
	case mat != nil && mat.DoubleSided():
		return variantDoubleSided
	default:
		return variantOpaque
	}
}

// castsShadow reports whether an item is rendered into shadow maps.
func (d drawItem) castsShadow() bool {
	return d.variant != variantLines && d.node.CastShadow()
}

// scenePipelineKey returns the cache key of a lit pipeline.
func scenePipelineKey(v drawVariant, format wgpu.TextureFormat, samples MSAASampleCount) string {
	return fmt.Sprintf("%s/%s/%d/%dx", shader.KeyScene, v, format, samples)
}

// scenePipelineOptions returns the pipeline options of a lit variant.
func scenePipelineOptions(v drawVariant, format wgpu.TextureFormat, samples MSAASampleCount) []pipeline.PipelineBuilderOption {
	options := []pipeline.PipelineBuilderOption{
		pipeline.WithColorFormat(format),
		pipeline.WithDepthFormat(sceneDepthFormat),
		pipeline.WithSampleCount(uint32(samples)),
	}
	switch v {
	case variantDoubleSided:
		options = append(options, pipeline.WithCullMode(wgpu.CullModeNone))
	case variantLines:
		options = append(options,
			pipeline.WithCullMode(wgpu.CullModeNone),
			pipeline.WithTopology(wgpu.PrimitiveTopologyLineList),
		)
	}
	return options
}

// shadowPipelineOptions returns the depth-only options for shadow casters.
// Single-sided casters render their back faces.
func shadowPipelineOptions(doubleSided bool) []pipeline.PipelineBuilderOption {
	cull := wgpu.CullModeFront
	if doubleSided {
		cull = wgpu.CullModeNone
	}
	return []pipeline.PipelineBuilderOption{
		pipeline.WithColorFormat(wgpu.TextureFormatUndefined),
		pipeline.WithDepthFormat(shadowDepthFormat),
		pipeline.WithCullMode(cull),
	}
}

type meshBuffers struct {
	vertex *wgpu.Buffer
	index  *wgpu.Buffer
	count  uint32
}

// shadowMap is a sampled depth texture with one attachment view per layer.
type shadowMap struct {
	texture *wgpu.Texture
	sampled *wgpu.TextureView
	layers  []*wgpu.TextureView
	size    uint32
}

func (m *shadowMap) release() {
	for _, v := range m.layers {
		v.Release()
	}
	m.layers = nil
	if m.sampled != nil {
		m.sampled.Release()
		m.sampled = nil
	}
	if m.texture != nil {
		m.texture.Release()
		m.texture = nil
	}
}

type attachmentKey struct {
	width  uint32
	height uint32
	format wgpu.TextureFormat
}

// passAttachments are the depth and multisampled colour textures of a lit pass
// at one target size.
type passAttachments struct {
	depth     *wgpu.Texture
	depthView *wgpu.TextureView
	msaa      *wgpu.Texture
	msaaView  *wgpu.TextureView
}

func (a *passAttachments) release() {
	for _, v := range []*wgpu.TextureView{a.depthView, a.msaaView} {
		if v != nil {
			v.Release()
		}
	}
	for _, t := range []*wgpu.Texture{a.depth, a.msaa} {
		if t != nil {
			t.Release()
		}
	}
}

// sceneDrawer owns every GPU resource needed to draw a scene: shared layouts,
// the frame bind group, shadow maps, mesh buffers and pass attachments.
type sceneDrawer struct {
	backend RendererBackend

	sceneShader  shader.Shader
	shadowShader shader.Shader

	layouts          map[int]*wgpu.BindGroupLayout
	shadowViewLayout *wgpu.BindGroupLayout
	pipelines        map[string]pipeline.Pipeline

	frame       bind_group_provider.BindGroupProvider
	shadowViews [1 + light.PointShadowFaces]bind_group_provider.BindGroupProvider
	directional *shadowMap
	point       *shadowMap

	fallback   material.Material
	white      *wgpu.TextureView
	linear     *wgpu.Sampler
	comparison *wgpu.Sampler

	meshes      map[*scene.Mesh]*meshBuffers
	materials   map[material.Material]bool
	attachments map[attachmentKey]*passAttachments

	// encoder that last received shadow passes; the maps are reused for
	// further draws recorded on the same encoder
	shadowEncoder *wgpu.CommandEncoder
}

// newSceneDrawer creates the static resources of scene drawing.
//
// Parameters:
//   - backend: the renderer backend
//   - pipelines: the renderer's pipeline cache, filled lazily
//
// Returns:
//   - *sceneDrawer: the drawer
//   - error: if a shader fails to parse or a GPU object cannot be created
func newSceneDrawer(backend RendererBackend, pipelines map[string]pipeline.Pipeline) (*sceneDrawer, error) {
	d := &sceneDrawer{
		backend:     backend,
		layouts:     make(map[int]*wgpu.BindGroupLayout),
		pipelines:   pipelines,
		fallback:    material.NewMaterial(material.WithName("default")),
		meshes:      make(map[*scene.Mesh]*meshBuffers),
		materials:   make(map[material.Material]bool),
		attachments: make(map[attachmentKey]*passAttachments),
	}
	if err := d.init(); err != nil {
		d.release()
		return nil, err
	}
	return d, nil
}

func (d *sceneDrawer) init() error {
	var err error
	if d.sceneShader, err = shader.Load(shader.KeyScene); err != nil {
		return err
	}
	if d.shadowShader, err = shader.Load(shader.KeyShadow); err != nil {
		return err
	}

	device := d.backend.Device()
	for _, g := range []int{groupFrame, groupModel, groupMaterial} {
		desc := d.sceneShader.BindGroupLayoutDescriptor(g)
		desc.Label = fmt.Sprintf("%s group %d", shader.KeyScene, g)
		layout, layoutErr := device.CreateBindGroupLayout(&desc)
		if layoutErr != nil {
			return fmt.Errorf("failed to create scene bind group layout %d: %w", g, layoutErr)
		}
		d.layouts[g] = layout
	}
	shadowDesc := d.shadowShader.BindGroupLayoutDescriptor(0)
	shadowDesc.Label = shader.KeyShadow + " group 0"
	if d.shadowViewLayout, err = device.CreateBindGroupLayout(&shadowDesc); err != nil {
		return fmt.Errorf("failed to create shadow view layout: %w", err)
	}

	if d.linear, err = d.backend.CreateSampler(wgpu.SamplerDescriptor{Label: "Base Color Sampler"}); err != nil {
		return err
	}
	d.comparison, err = d.backend.CreateSampler(wgpu.SamplerDescriptor{
		Label:        "Shadow Comparison Sampler",
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
		Compare:      wgpu.CompareFunctionLess,
	})
	if err != nil {
		return err
	}
	d.white, err = d.backend.CreateTextureView("White", &material.TextureData{
		Width:  1,
		Height: 1,
		Pixels: []byte{255, 255, 255, 255},
	})
	if err != nil {
		return err
	}

	if d.directional, err = d.createShadowMap("Directional Shadow Map", light.DefaultShadowMapSize, 1); err != nil {
		return err
	}
	if d.point, err = d.createShadowMap("Point Shadow Map", light.DefaultShadowMapSize, light.PointShadowFaces); err != nil {
		return err
	}

	d.frame = bind_group_provider.NewBindGroupProvider("Frame",
		bind_group_provider.WithLayout(d.layouts[groupFrame]),
		bind_group_provider.WithSharedTextureView(bindingDirectionalShadow, d.directional.sampled),
		bind_group_provider.WithSharedTextureView(bindingPointShadow, d.point.sampled),
		bind_group_provider.WithSharedSampler(bindingShadowSampler, d.comparison),
	)
	if err = d.backend.InitBindGroup(d.frame, d.sceneShader.BindGroupLayoutDescriptor(groupFrame)); err != nil {
		return err
	}

	for i := range d.shadowViews {
		d.shadowViews[i] = bind_group_provider.NewBindGroupProvider(
			fmt.Sprintf("Shadow View %d", i),
			bind_group_provider.WithLayout(d.shadowViewLayout),
		)
		if err = d.backend.InitBindGroup(d.shadowViews[i], shadowDesc); err != nil {
			return err
		}
	}
	return nil
}

// createShadowMap allocates a depth texture with layers array layers.
// A single-layer map is sampled as a 2D texture, otherwise as a 2D array.
func (d *sceneDrawer) createShadowMap(label string, size, layers uint32) (*shadowMap, error) {
	tex, err := d.backend.CreateDepthTexture(label, size, size, layers, shadowDepthFormat, 1, true)
	if err != nil {
		return nil, err
	}
	m := &shadowMap{texture: tex, size: size}

	dimension := wgpu.TextureViewDimension2D
	if layers > 1 {
		dimension = wgpu.TextureViewDimension2DArray
	}
	m.sampled, err = tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           label + " View",
		Format:          shadowDepthFormat,
		Dimension:       dimension,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: layers,
		Aspect:          wgpu.TextureAspectDepthOnly,
	})
	if err != nil {
		m.release()
		return nil, fmt.Errorf("failed to create %s view: %w", label, err)
	}

	for layer := range layers {
		view, viewErr := tex.CreateView(&wgpu.TextureViewDescriptor{
			Label:           fmt.Sprintf("%s Layer %d", label, layer),
			Format:          shadowDepthFormat,
			Dimension:       wgpu.TextureViewDimension2D,
			BaseMipLevel:    0,
			MipLevelCount:   1,
			BaseArrayLayer:  layer,
			ArrayLayerCount: 1,
			Aspect:          wgpu.TextureAspectDepthOnly,
		})
		if viewErr != nil {
			m.release()
			return nil, fmt.Errorf("failed to create %s layer view: %w", label, viewErr)
		}
		m.layers = append(m.layers, view)
	}
	return m, nil
}

// ensureShadowMap resizes one of the shadow maps to the caster's configured
// size and rebinds it on the frame group.
func (d *sceneDrawer) ensureShadowMap(m **shadowMap, binding int, caster light.Light) error {
	if caster == nil {
		return nil
	}
	size := uint32(caster.Shadow().WithDefaults().MapSize)
	if (*m).size == size {
		return nil
	}
	layers := uint32(len((*m).layers))
	label := "Directional Shadow Map"
	if layers > 1 {
		label = "Point Shadow Map"
	}
	next, err := d.createShadowMap(label, size, layers)
	if err != nil {
		return err
	}
	(*m).release()
	*m = next
	d.frame.SetTextureView(binding, next.sampled, false)
	return nil
}

// pipeline returns the cached lit pipeline of a variant, creating it on first use.
func (d *sceneDrawer) pipeline(v drawVariant, format wgpu.TextureFormat) (pipeline.Pipeline, error) {
	samples := d.backend.SampleCount()
	key := scenePipelineKey(v, format, samples)
	if p, ok := d.pipelines[key]; ok {
		return p, nil
	}
	p := pipeline.NewPipeline(key, d.sceneShader, scenePipelineOptions(v, format, samples)...)
	if err := p.Init(d.backend.Device(), d.layouts); err != nil {
		return nil, err
	}
	d.pipelines[key] = p
	return p, nil
}

// shadowPipeline returns the cached depth-only pipeline.
func (d *sceneDrawer) shadowPipeline(doubleSided bool) (pipeline.Pipeline, error) {
	key := shader.KeyShadow
	if doubleSided {
		key += "/" + variantDoubleSided.String()
	}
	if p, ok := d.pipelines[key]; ok {
		return p, nil
	}
	p := pipeline.NewPipeline(key, d.shadowShader, shadowPipelineOptions(doubleSided)...)
	shared := map[int]*wgpu.BindGroupLayout{
		0: d.shadowViewLayout,
		1: d.layouts[groupModel],
	}
	if err := p.Init(d.backend.Device(), shared); err != nil {
		return nil, err
	}
	d.pipelines[key] = p
	return p, nil
}

// meshBuffers uploads a mesh on first use.
func (d *sceneDrawer) meshBuffers(mesh *scene.Mesh) (*meshBuffers, error) {
	if b, ok := d.meshes[mesh]; ok {
		return b, nil
	}
	vb, ib, err := d.backend.InitMeshBuffers(mesh.Name, mesh.VertexBytes(), mesh.IndexBytes())
	if err != nil {
		return nil, err
	}
	b := &meshBuffers{vertex: vb, index: ib, count: uint32(len(mesh.Indices))}
	d.meshes[mesh] = b
	return b, nil
}

// modelProvider returns the node's model bind group, creating it on first use.
func (d *sceneDrawer) modelProvider(n scene.Node) (bind_group_provider.BindGroupProvider, error) {
	if p := n.GPU(); p != nil && p.Ready() {
		return p, nil
	}
	p := n.GPU()
	if p == nil {
		p = bind_group_provider.NewBindGroupProvider(
			"Node "+n.Name(),
			bind_group_provider.WithLayout(d.layouts[groupModel]),
		)
		n.SetGPU(p)
	}
	if err := d.backend.InitBindGroup(p, d.sceneShader.BindGroupLayoutDescriptor(groupModel)); err != nil {
		return nil, err
	}
	return p, nil
}

// materialProvider returns the material's bind group, creating and filling it
// on first use. Material parameters are immutable so the uniform is written once.
func (d *sceneDrawer) materialProvider(m material.Material) (bind_group_provider.BindGroupProvider, error) {
	if p := m.BindGroupProvider(); p != nil && p.Ready() {
		return p, nil
	}
	p := m.BindGroupProvider()
	if p == nil {
		p = bind_group_provider.NewBindGroupProvider(
			"Material "+m.Name(),
			bind_group_provider.WithLayout(d.layouts[groupMaterial]),
			bind_group_provider.WithSharedSampler(bindingBaseColorSampler, d.linear),
		)
		if tex := m.BaseColorTexture(); tex != nil {
			view, err := d.backend.CreateTextureView("Material "+m.Name(), tex)
			if err != nil {
				return nil, err
			}
			p.SetTextureView(bindingBaseColorTexture, view, true)
		} else {
			p.SetTextureView(bindingBaseColorTexture, d.white, false)
		}
		m.SetBindGroupProvider(p)
	}
	if err := d.backend.InitBindGroup(p, d.sceneShader.BindGroupLayoutDescriptor(groupMaterial)); err != nil {
		return nil, err
	}
	u := m.Uniform()
	err := d.backend.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: p,
		Binding:  bindingMaterial,
		Data:     u.Marshal(),
	}})
	if err != nil {
		return nil, err
	}
	d.materials[m] = true
	return p, nil
}

// attachmentsFor returns the depth and MSAA textures for a target, creating
// them on first use at that size and format.
func (d *sceneDrawer) attachmentsFor(target render_target.RenderTarget) (*passAttachments, error) {
	key := attachmentKey{width: target.Width(), height: target.Height(), format: target.Format()}
	if a, ok := d.attachments[key]; ok {
		return a, nil
	}
	samples := uint32(d.backend.SampleCount())
	a := &passAttachments{}
	var err error
	if a.depth, err = d.backend.CreateDepthTexture("Scene Depth", key.width, key.height, 1, sceneDepthFormat, samples, false); err != nil {
		return nil, err
	}
	if a.depthView, err = a.depth.CreateView(nil); err != nil {
		a.release()
		return nil, fmt.Errorf("failed to create scene depth view: %w", err)
	}
	if samples > 1 {
		if a.msaa, err = d.backend.CreateColorTexture("Scene MSAA", key.width, key.height, key.format, samples); err != nil {
			a.release()
			return nil, err
		}
		if a.msaaView, err = a.msaa.CreateView(nil); err != nil {
			a.release()
			return nil, fmt.Errorf("failed to create scene MSAA view: %w", err)
		}
	}
	d.attachments[key] = a
	return a, nil
}

// dropAttachments releases every cached pass attachment. They are recreated
// at the new size on the next draw.
func (d *sceneDrawer) dropAttachments() {
	for k, a := range d.attachments {
		a.release()
		delete(d.attachments, k)
	}
}

// draw records shadow passes and the lit pass of s into enc, rendering into target.
func (d *sceneDrawer) draw(enc *wgpu.CommandEncoder, target render_target.RenderTarget, s scene.Scene, cam camera.Camera) error {
	if target == nil || target.View() == nil {
		return fmt.Errorf("scene %s: no target", s.Name())
	}
	items := collectDrawItems(s, d.fallback)

	lights := s.Lights()
	lightUniform := light.NewLightUniform(lights)
	shadowUniform, dirCaster, pointCaster := light.NewShadowUniform(lights)
	camUniform := cam.Uniform()

	if err := d.ensureShadowMap(&d.directional, bindingDirectionalShadow, dirCaster); err != nil {
		return err
	}
	if err := d.ensureShadowMap(&d.point, bindingPointShadow, pointCaster); err != nil {
		return err
	}
	if !d.frame.Ready() {
		if err := d.backend.InitBindGroup(d.frame, d.sceneShader.BindGroupLayoutDescriptor(groupFrame)); err != nil {
			return err
		}
	}

	writes := []bind_group_provider.BufferWrite{
		{Provider: d.frame, Binding: bindingCamera, Data: camUniform.Marshal()},
		{Provider: d.frame, Binding: bindingLights, Data: lightUniform.Marshal()},
		{Provider: d.frame, Binding: bindingShadows, Data: shadowUniform.Marshal()},
	}

	models := make([]bind_group_provider.BindGroupProvider, len(items))
	for i, item := range items {
		p, err := d.modelProvider(item.node)
		if err != nil {
			return err
		}
		models[i] = p
		u := scene.NewModelUniform(item.node.WorldMatrix(), item.node.ReceiveShadow())
		writes = append(writes, bind_group_provider.BufferWrite{Provider: p, Binding: 0, Data: u.Marshal()})
	}

	shadowsDue := enc != d.shadowEncoder && (dirCaster != nil || pointCaster != nil)
	if shadowsDue {
		views := shadowViewMatrices(shadowUniform, dirCaster != nil, pointCaster != nil)
		for i, vp := range views {
			if !vp.active {
				continue
			}
			u := light.GPUShadowViewUniform{LightVP: vp.matrix}
			writes = append(writes, bind_group_provider.BufferWrite{Provider: d.shadowViews[i], Binding: 0, Data: u.Marshal()})
		}
	}

	if err := d.backend.WriteBuffers(writes); err != nil {
		return err
	}

	if shadowsDue {
		if err := d.drawShadows(enc, items, models, dirCaster != nil, pointCaster != nil); err != nil {
			return err
		}
		d.shadowEncoder = enc
	}
	return d.drawLit(enc, target, items, models)
}

type shadowView struct {
	matrix common.Mat4
	active bool
}

// shadowViewMatrices lists the light view-projections in shadow view
// order: the directional view first, then the six point faces.
func shadowViewMatrices(u light.GPUShadowUniform, directional, point bool) [1 + light.PointShadowFaces]shadowView {
	var views [1 + light.PointShadowFaces]shadowView
	views[0] = shadowView{matrix: u.DirectionalVP, active: directional}
	for face, vp := range u.PointVP {
		views[1+face] = shadowView{matrix: vp, active: point}
	}
	return views
}

func (d *sceneDrawer) drawShadows(enc *wgpu.CommandEncoder, items []drawItem, models []bind_group_provider.BindGroupProvider, directional, point bool) error {
	type shadowTarget struct {
		view    *wgpu.TextureView
		binding bind_group_provider.BindGroupProvider
	}
	var targets []shadowTarget
	if directional {
		targets = append(targets, shadowTarget{view: d.directional.layers[0], binding: d.shadowViews[0]})
	}
	if point {
		for face, layer := range d.point.layers {
			targets = append(targets, shadowTarget{view: layer, binding: d.shadowViews[1+face]})
		}
	}

	for _, t := range targets {
		pass := enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
			Label: "Shadow Pass",
			DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
				View:            t.view,
				DepthLoadOp:     wgpu.LoadOpClear,
				DepthStoreOp:    wgpu.StoreOpStore,
				DepthClearValue: 1.0,
			},
		})
		pass.SetBindGroup(0, t.binding.BindGroup(), nil)
		for i, item := range items {
			if !item.castsShadow() {
				continue
			}
			p, err := d.shadowPipeline(item.material.DoubleSided())
			if err != nil {
				pass.End()
				return err
			}
			buffers, err := d.meshBuffers(item.mesh)
			if err != nil {
				pass.End()
				return err
			}
			pass.SetPipeline(p.RenderPipeline())
			pass.SetBindGroup(1, models[i].BindGroup(), nil)
			pass.SetVertexBuffer(0, buffers.vertex, 0, wgpu.WholeSize)
			pass.SetIndexBuffer(buffers.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
			pass.DrawIndexed(buffers.count, 1, 0, 0, 0)
		}
		pass.End()
	}
	return nil
}

func (d *sceneDrawer) drawLit(enc *wgpu.CommandEncoder, target render_target.RenderTarget, items []drawItem, models []bind_group_provider.BindGroupProvider) error {
	attachments, err := d.attachmentsFor(target)
	if err != nil {
		return err
	}

	color := wgpu.RenderPassColorAttachment{
		View:       target.View(),
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
	}
	if attachments.msaaView != nil {
		color.View = attachments.msaaView
		color.ResolveTarget = target.View()
		color.StoreOp = wgpu.StoreOpDiscard
	}

	pass := enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label:            "Scene Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            attachments.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	defer pass.End()

	pass.SetBindGroup(groupFrame, d.frame.BindGroup(), nil)
	for i, item := range items {
		p, err := d.pipeline(item.variant, target.Format())
		if err != nil {
			return err
		}
		mat, err := d.materialProvider(item.material)
		if err != nil {
			return err
		}
		buffers, err := d.meshBuffers(item.mesh)
		if err != nil {
			return err
		}
		pass.SetPipeline(p.RenderPipeline())
		pass.SetBindGroup(groupModel, models[i].BindGroup(), nil)
		pass.SetBindGroup(groupMaterial, mat.BindGroup(), nil)
		pass.SetVertexBuffer(0, buffers.vertex, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(buffers.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(buffers.count, 1, 0, 0, 0)
	}
	return nil
}

func (d *sceneDrawer) release() {
	d.dropAttachments()
	for k, b := range d.meshes {
		b.vertex.Release()
		b.index.Release()
		delete(d.meshes, k)
	}
	for m := range d.materials {
		if p := m.BindGroupProvider(); p != nil {
			p.Release()
			m.SetBindGroupProvider(nil)
		}
		delete(d.materials, m)
	}
	for _, p := range d.shadowViews {
		if p != nil {
			p.Release()
		}
	}
	if d.frame != nil {
		d.frame.Release()
	}
	for _, m := range []*shadowMap{d.directional, d.point} {
		if m != nil {
			m.release()
		}
	}
	if d.white != nil {
		d.white.Release()
	}
	for _, s := range []*wgpu.Sampler{d.linear, d.comparison} {
		if s != nil {
			s.Release()
		}
	}
	if d.shadowViewLayout != nil {
		d.shadowViewLayout.Release()
	}
	for _, l := range d.layouts {
		l.Release()
	}
}
