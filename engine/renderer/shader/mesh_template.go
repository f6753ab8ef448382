package shader

import (
	_ "embed"

	"github.com/Anti-Alias/prism-go/engine/renderer/feature"
	"github.com/cogentcore/webgpu/wgpu"
)

// MeshTemplateID is the template ID the built-in mesh template registers under.
const MeshTemplateID = "mesh"

// meshTemplateSource is the built-in mesh render template covering every
// combination of vertex channels, flat vs. textured materials, and instancing.
//
//go:embed assets/mesh.wgsl
var meshTemplateSource string

// MeshVertexAttributes is the canonical per-vertex declaration table for the
// mesh template: position always, then color, normal, and uv gated by their
// flags. The order here is the interleave order model.MeshData packs vertex
// bytes in; the two must not diverge.
var MeshVertexAttributes = []AttributeDecl{
	{Name: "position", Format: wgpu.VertexFormatFloat32x3},
	{Name: "color", Format: wgpu.VertexFormatFloat32x4, Flag: feature.Color},
	{Name: "normal", Format: wgpu.VertexFormatFloat32x3, Flag: feature.Normal},
	{Name: "uv", Format: wgpu.VertexFormatFloat32x2, Flag: feature.UV},
}

// MeshInstanceAttributes is the canonical per-instance declaration table for
// the mesh template: the four columns of a column-major mat4 transform,
// matching model.GPUInstance.
var MeshInstanceAttributes = []AttributeDecl{
	{Name: "model_0", Format: wgpu.VertexFormatFloat32x4, Flag: feature.Instanced},
	{Name: "model_1", Format: wgpu.VertexFormatFloat32x4, Flag: feature.Instanced},
	{Name: "model_2", Format: wgpu.VertexFormatFloat32x4, Flag: feature.Instanced},
	{Name: "model_3", Format: wgpu.VertexFormatFloat32x4, Flag: feature.Instanced},
}

// MeshBindings is the canonical binding declaration table for the mesh
// template: the per-draw material uniform block unconditionally first, then
// the base color texture/sampler pair gated together by BASE_COLOR_TEX.
var MeshBindings = []BindingDecl{
	{Name: "material", Kind: BindingUniformBuffer, Type: "MaterialUniform", Visibility: wgpu.ShaderStageFragment},
	{Name: "base_color_tex", Kind: BindingTexture, Type: "texture_2d<f32>", Visibility: wgpu.ShaderStageFragment, Flag: feature.BaseColorTex},
	{Name: "base_color_sampler", Kind: BindingSampler, Type: "sampler", Visibility: wgpu.ShaderStageFragment, Flag: feature.BaseColorTex},
}

// NewMeshTemplate builds the built-in mesh template. Sampling a base color
// texture requires uv coordinates, so BASE_COLOR_TEX declares a requirement on
// UV; resolving a set that enables the texture without uvs fails.
//
// Returns:
//   - Template: the parsed mesh template
func NewMeshTemplate() Template {
	t, err := NewTemplate(MeshTemplateID, meshTemplateSource,
		WithVertexAttributes(MeshVertexAttributes...),
		WithInstanceAttributes(MeshInstanceAttributes...),
		WithBindings(MeshBindings...),
		WithFlagRequirement(feature.BaseColorTex, feature.UV),
	)
	if err != nil {
		// The embedded template is validated by the package's own tests; a
		// parse failure here means the asset and tables shipped inconsistent.
		panic(err)
	}
	return t
}
