package material

import (
	"github.com/Anti-Alias/prism-go/engine/renderer/feature"
	"github.com/cogentcore/webgpu/wgpu"
)

// TextureRef is an opaque reference to a loaded texture asset. The asset
// loader owns decode and upload; this layer only needs identity to decide
// which pipeline variant a material requires.
type TextureRef struct {
	// Name identifies the texture asset, typically its load path.
	Name string
}

// material is the implementation of the Material interface.
type material struct {
	name             string
	baseColor        [4]float32
	baseColorTexture *TextureRef
	cullMode         wgpu.CullMode
}

// Material defines the interface for a draw material: a flat base color with
// an optional base color texture. Materials contribute feature flags to the
// pipeline variant key and provide the uniform bytes bound at binding 0.
//
// Surface properties are set at construction and read-only afterwards.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the RGBA base color factor of the material.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// BaseColorTexture retrieves the base color texture reference, or nil if
	// the material is flat colored.
	//
	// Returns:
	//   - *TextureRef: the base color texture reference, or nil
	BaseColorTexture() *TextureRef

	// CullMode retrieves the face culling mode draws with this material use.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode
	CullMode() wgpu.CullMode

	// Features retrieves the feature flags this material requires from its
	// pipeline variant. A material with a base color texture requires
	// BASE_COLOR_TEX; a flat material requires nothing.
	//
	// Returns:
	//   - feature.Set: the material's feature contribution
	Features() feature.Set

	// UniformBytes retrieves the serialized per-draw uniform block for this
	// material, ready for GPU upload at binding 0.
	//
	// Returns:
	//   - []byte: the marshaled MaterialUniform bytes
	UniformBytes() []byte
}

var _ Material = &material{}

// NewMaterial creates a new Material with all specified options applied.
// The default material is opaque white, untextured, with back-face culling.
//
// Parameters:
//   - name: the material identifier (must not be empty)
//   - opts: builder options configuring color, texture, and culling
//
// Returns:
//   - Material: a new Material instance with the provided configuration
func NewMaterial(name string, opts ...MaterialBuilderOption) Material {
	if name == "" {
		panic("material: name must not be empty")
	}
	m := &material{
		name:      name,
		baseColor: [4]float32{1, 1, 1, 1},
		cullMode:  wgpu.CullModeBack,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) BaseColorTexture() *TextureRef {
	return m.baseColorTexture
}

func (m *material) CullMode() wgpu.CullMode {
	return m.cullMode
}

func (m *material) Features() feature.Set {
	var fs feature.Set
	if m.baseColorTexture != nil {
		fs = fs.With(feature.BaseColorTex)
	}
	return fs
}

func (m *material) UniformBytes() []byte {
	uniform := GPUMaterialUniform{BaseColor: m.baseColor}
	return uniform.Marshal()
}
