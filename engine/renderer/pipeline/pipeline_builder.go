package pipeline

import (
	"github.com/Anti-Alias/prism-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// VariantBuilderOption is a functional option used to configure a Variant during construction.
type VariantBuilderOption func(*variant)

// WithSource sets the expanded shader source for this variant.
//
// Parameters:
//   - source: the concrete, flag-free WGSL source
//
// Returns:
//   - VariantBuilderOption: a function that sets the shader source
func WithSource(source string) VariantBuilderOption {
	return func(v *variant) {
		v.source = source
	}
}

// WithVertexLayouts sets the resolved vertex buffer layouts for this variant.
//
// Parameters:
//   - layouts: the vertex buffer layouts in bind order
//
// Returns:
//   - VariantBuilderOption: a function that sets the vertex layouts
func WithVertexLayouts(layouts []wgpu.VertexBufferLayout) VariantBuilderOption {
	return func(v *variant) {
		v.vertexLayouts = layouts
	}
}

// WithBindGroupLayout sets the resolved group-0 bind group layout descriptor
// for this variant.
//
// Parameters:
//   - descriptor: the bind group layout descriptor
//
// Returns:
//   - VariantBuilderOption: a function that sets the bind group layout
func WithBindGroupLayout(descriptor wgpu.BindGroupLayoutDescriptor) VariantBuilderOption {
	return func(v *variant) {
		v.bindGroupLayout = descriptor
	}
}

// WithBindings sets the resolved binding assignments for this variant.
//
// Parameters:
//   - bindings: the resolved bindings in index order
//
// Returns:
//   - VariantBuilderOption: a function that sets the bindings
func WithBindings(bindings []shader.ResolvedBinding) VariantBuilderOption {
	return func(v *variant) {
		v.bindings = bindings
	}
}

// WithDepthTestEnabled sets whether depth testing is enabled for this variant.
//
// Parameters:
//   - enabled: a boolean indicating whether depth testing should be enabled
//
// Returns:
//   - VariantBuilderOption: a function that sets the depth test enabled state
func WithDepthTestEnabled(enabled bool) VariantBuilderOption {
	return func(v *variant) {
		v.depthTestEnabled = enabled
	}
}

// WithDepthWriteEnabled sets whether depth writing is enabled for this variant.
//
// Parameters:
//   - enabled: a boolean indicating whether depth writing should be enabled
//
// Returns:
//   - VariantBuilderOption: a function that sets the depth write enabled state
func WithDepthWriteEnabled(enabled bool) VariantBuilderOption {
	return func(v *variant) {
		v.depthWriteEnabled = enabled
	}
}

// WithDepthBias sets the depth bias parameters for this variant.
//
// Parameters:
//   - bias: the constant depth bias to apply
//   - slopeScale: the slope scale depth bias to apply
//
// Returns:
//   - VariantBuilderOption: a function that sets the depth bias parameters
func WithDepthBias(bias int32, slopeScale float32) VariantBuilderOption {
	return func(v *variant) {
		v.depthBias = bias
		v.depthBiasSlopeScale = slopeScale
	}
}

// WithBlendEnabled sets whether blending is enabled for this variant.
//
// Parameters:
//   - enabled: a boolean indicating whether blending should be enabled
//
// Returns:
//   - VariantBuilderOption: a function that sets the blend enabled state
func WithBlendEnabled(enabled bool) VariantBuilderOption {
	return func(v *variant) {
		v.blendEnabled = enabled
	}
}

// WithBlendState sets the blend state used when blending is enabled.
//
// Parameters:
//   - state: the blend state to use
//
// Returns:
//   - VariantBuilderOption: a function that sets the blend state
func WithBlendState(state *wgpu.BlendState) VariantBuilderOption {
	return func(v *variant) {
		v.blendState = state
	}
}

// WithCullMode sets the face culling mode for this variant.
//
// Parameters:
//   - mode: the cull mode (e.g. wgpu.CullModeNone, wgpu.CullModeBack)
//
// Returns:
//   - VariantBuilderOption: a function that sets the cull mode
func WithCullMode(mode wgpu.CullMode) VariantBuilderOption {
	return func(v *variant) {
		v.cullMode = mode
	}
}

// WithTopology sets the primitive topology for this variant.
//
// Parameters:
//   - topology: the primitive topology (e.g. wgpu.PrimitiveTopologyTriangleList)
//
// Returns:
//   - VariantBuilderOption: a function that sets the topology
func WithTopology(topology wgpu.PrimitiveTopology) VariantBuilderOption {
	return func(v *variant) {
		v.topology = topology
	}
}

// WithFrontFace sets the front face winding for this variant.
//
// Parameters:
//   - face: the front face winding (e.g. wgpu.FrontFaceCCW)
//
// Returns:
//   - VariantBuilderOption: a function that sets the front face winding
func WithFrontFace(face wgpu.FrontFace) VariantBuilderOption {
	return func(v *variant) {
		v.frontFace = face
	}
}

// WithWriteMask sets the color write mask for this variant.
//
// Parameters:
//   - mask: the color write mask
//
// Returns:
//   - VariantBuilderOption: a function that sets the write mask
func WithWriteMask(mask wgpu.ColorWriteMask) VariantBuilderOption {
	return func(v *variant) {
		v.writeMask = mask
	}
}
