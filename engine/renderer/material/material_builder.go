package material

import "github.com/cogentcore/webgpu/wgpu"

// MaterialBuilderOption is a functional option used to configure a Material during construction.
type MaterialBuilderOption func(*material)

// WithBaseColor sets the RGBA base color factor for this material.
//
// Parameters:
//   - color: the base color as RGBA values
//
// Returns:
//   - MaterialBuilderOption: a function that sets the base color
func WithBaseColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithBaseColorTexture sets the base color texture reference for this
// material, switching its pipeline variants to the textured path.
//
// Parameters:
//   - ref: the texture reference (ignored if nil)
//
// Returns:
//   - MaterialBuilderOption: a function that sets the base color texture
func WithBaseColorTexture(ref *TextureRef) MaterialBuilderOption {
	return func(m *material) {
		m.baseColorTexture = ref
	}
}

// WithCullMode sets the face culling mode for draws using this material.
//
// Parameters:
//   - mode: the cull mode (e.g. wgpu.CullModeNone, wgpu.CullModeBack)
//
// Returns:
//   - MaterialBuilderOption: a function that sets the cull mode
func WithCullMode(mode wgpu.CullMode) MaterialBuilderOption {
	return func(m *material) {
		m.cullMode = mode
	}
}
