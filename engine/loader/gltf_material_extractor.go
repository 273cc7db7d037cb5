package loader

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/ruins/engine/renderer/material"
	"github.com/qmuntal/gltf"
)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	doc     *gltf.Document
	baseDir string
	pool    worker.DynamicWorkerPool
}

// gltfMaterialExtractor converts glTF materials, and the images their base
// colour textures reference, into engine materials.
type gltfMaterialExtractor interface {
	// ExtractAll decodes every referenced image on the worker pool, then builds
	// one material per glTF material.
	//
	// Returns:
	//   - []material.Material: materials in document order
	//   - error: every image decode failure joined
	ExtractAll() ([]material.Material, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

// newGLTFMaterialExtractor creates a material extractor for doc.
//
// Parameters:
//   - doc: the glTF document with loaded buffers
//   - baseDir: directory external image URIs are resolved against
//   - pool: the worker pool image decode tasks run on
//
// Returns:
//   - gltfMaterialExtractor: the material extractor
func newGLTFMaterialExtractor(doc *gltf.Document, baseDir string, pool worker.DynamicWorkerPool) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{doc: doc, baseDir: baseDir, pool: pool}
}

func (e *gltfMaterialExtractorImpl) ExtractAll() ([]material.Material, error) {
	images := make(map[int]*material.TextureData)
	var wanted []int
	for _, m := range e.doc.Materials {
		if src, ok := e.baseColorImage(m); ok {
			if _, seen := images[src]; !seen {
				images[src] = nil
				wanted = append(wanted, src)
			}
		}
	}

	decoded := make([]*material.TextureData, len(wanted))
	errs := make([]error, len(wanted))
	var wg sync.WaitGroup
	for i, src := range wanted {
		wg.Add(1)
		id, imageIndex := i, src
		e.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				decoded[id], errs[id] = e.decodeImage(imageIndex)
				return nil, errs[id]
			},
		})
	}
	wg.Wait()
	for i, src := range wanted {
		images[src] = decoded[i]
	}

	materials := make([]material.Material, len(e.doc.Materials))
	for i, m := range e.doc.Materials {
		var tex *material.TextureData
		if src, ok := e.baseColorImage(m); ok {
			tex = images[src]
		}
		materials[i] = convertMaterial(m, i, tex)
	}
	return materials, errors.Join(errs...)
}

// baseColorImage resolves the image index behind a material's base colour texture.
func (e *gltfMaterialExtractorImpl) baseColorImage(m *gltf.Material) (int, bool) {
	if m == nil || m.PBRMetallicRoughness == nil || m.PBRMetallicRoughness.BaseColorTexture == nil {
		return 0, false
	}
	texIdx := m.PBRMetallicRoughness.BaseColorTexture.Index
	if texIdx < 0 || texIdx >= len(e.doc.Textures) {
		return 0, false
	}
	src := e.doc.Textures[texIdx].Source
	if src == nil || *src < 0 || *src >= len(e.doc.Images) {
		return 0, false
	}
	return *src, true
}

// convertMaterial maps glTF PBR parameters onto an engine material. glTF
// defaults apply to absent factors: white base colour, metallic and roughness 1.
//
// Parameters:
//   - m: the glTF material
//   - index: its document index, used when it has no name
//   - tex: the decoded base colour texture, or nil
//
// Returns:
//   - material.Material: the engine material
func convertMaterial(m *gltf.Material, index int, tex *material.TextureData) material.Material {
	name := m.Name
	if name == "" {
		name = fmt.Sprintf("material_%d", index)
	}

	baseColor := [4]float32{1, 1, 1, 1}
	metallic, roughness := float32(1), float32(1)
	if pbr := m.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			for i, v := range pbr.BaseColorFactor {
				baseColor[i] = float32(v)
			}
		}
		if pbr.MetallicFactor != nil {
			metallic = float32(*pbr.MetallicFactor)
		}
		if pbr.RoughnessFactor != nil {
			roughness = float32(*pbr.RoughnessFactor)
		}
	}

	emissive := [3]float32{float32(m.EmissiveFactor[0]), float32(m.EmissiveFactor[1]), float32(m.EmissiveFactor[2])}
	_, unlit := m.Extensions[extensionUnlit]

	options := []material.MaterialBuilderOption{
		material.WithName(name),
		material.WithBaseColor(baseColor),
		material.WithMetallic(metallic),
		material.WithRoughness(roughness),
		material.WithEmissive(emissive, 1),
		material.WithDoubleSided(m.DoubleSided),
		material.WithUnlit(unlit),
	}
	if tex != nil {
		options = append(options, material.WithBaseColorTexture(tex))
	}
	return material.NewMaterial(options...)
}

// decodeImage reads and decodes a PNG or JPEG image into RGBA8 pixels. Image
// bytes come from a buffer view, a data URI, or a file next to the document.
func (e *gltfMaterialExtractorImpl) decodeImage(index int) (*material.TextureData, error) {
	img := e.doc.Images[index]
	data, err := e.imageBytes(img)
	if err != nil {
		return nil, fmt.Errorf("image %d %q: %w", index, img.Name, err)
	}
	return decodeTexture(data)
}

func (e *gltfMaterialExtractorImpl) imageBytes(img *gltf.Image) ([]byte, error) {
	switch {
	case img.BufferView != nil:
		return readBufferView(e.doc, *img.BufferView)
	case strings.HasPrefix(img.URI, "data:"):
		data, _, err := decodeDataURI(img.URI)
		return data, err
	case img.URI != "":
		return os.ReadFile(filepath.Join(e.baseDir, filepath.FromSlash(img.URI)))
	default:
		return nil, errors.New("image has neither a buffer view nor a URI")
	}
}

// decodeTexture decodes an encoded image into tightly packed RGBA8.
func decodeTexture(data []byte) (*material.TextureData, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	bounds := src.Bounds()
	rgba, ok := src.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)
	}
	return &material.TextureData{
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Pixels: rgba.Pix,
	}, nil
}

// readBufferView returns the bytes of a buffer view.
func readBufferView(doc *gltf.Document, index int) ([]byte, error) {
	if index < 0 || index >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", index)
	}
	bv := doc.BufferViews[index]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer %d out of range", bv.Buffer)
	}
	buf := doc.Buffers[bv.Buffer].Data
	start, end := bv.ByteOffset, bv.ByteOffset+bv.ByteLength
	if start < 0 || end > len(buf) {
		return nil, fmt.Errorf("buffer view %d exceeds buffer %d", index, bv.Buffer)
	}
	return buf[start:end], nil
}

// decodeDataURI decodes a base64 data URI into raw bytes and extracts the MIME type.
func decodeDataURI(uri string) ([]byte, string, error) {
	// Format: data:[<mediatype>][;base64],<data>
	header, encoded, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, "", errors.New("malformed data URI: no comma found")
	}
	mimeType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return []byte(encoded), mimeType, nil
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64: %w", err)
	}
	return data, mimeType, nil
}
