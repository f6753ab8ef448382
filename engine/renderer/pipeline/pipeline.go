package pipeline

import (
	"fmt"

	"github.com/Anti-Alias/prism-go/engine/renderer/feature"
	"github.com/Anti-Alias/prism-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// variant is the implementation of the Variant interface.
// It holds the derived artifacts for one (template ID, feature set)
// combination plus the render-state configuration the backend compiles with.
type variant struct {
	templateID string
	features   feature.Set

	source          string
	vertexLayouts   []wgpu.VertexBufferLayout
	bindGroupLayout wgpu.BindGroupLayoutDescriptor
	bindings        []shader.ResolvedBinding

	// renderPipeline is the backend-compiled pipeline object, set exactly once
	// by the backend during compilation.
	renderPipeline any

	// The following properties configure pipeline creation and can be set
	// with the builder options at template registration.

	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthBias           int32
	depthBiasSlopeScale float32
	blendEnabled        bool
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	writeMask           wgpu.ColorWriteMask
	blendState          *wgpu.BlendState
}

// Variant is one fully resolved pipeline permutation: the concrete shader
// source, vertex buffer layouts, and bind group layout derived for a
// (template ID, feature set) key, plus the compiled pipeline handle. Variants
// are created by the renderer's cache, compiled once, and shared read-only;
// callers must not retain ownership or mutate derived data.
type Variant interface {
	// TemplateID retrieves the template half of this variant's cache key.
	//
	// Returns:
	//   - string: the template ID
	TemplateID() string

	// Features retrieves the feature set half of this variant's cache key.
	//
	// Returns:
	//   - feature.Set: the feature set this variant was resolved for
	Features() feature.Set

	// Key retrieves a stable human-readable label combining template ID and
	// feature set, used for GPU object labels and log lines.
	//
	// Returns:
	//   - string: the variant label, e.g. "mesh[COLOR|UV]"
	Key() string

	// Source retrieves the expanded, flag-free shader source this variant was
	// compiled from.
	//
	// Returns:
	//   - string: the concrete WGSL source
	Source() string

	// VertexLayouts retrieves the resolved vertex buffer layouts in the slot
	// order draw submission binds them (instance buffer first when present).
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layouts
	VertexLayouts() []wgpu.VertexBufferLayout

	// BindGroupLayout retrieves the resolved group-0 bind group layout descriptor.
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the bind group layout descriptor
	BindGroupLayout() wgpu.BindGroupLayoutDescriptor

	// Bindings retrieves the resolved binding assignments, in binding index
	// order, for wiring uniforms, textures, and samplers at draw time.
	//
	// Returns:
	//   - []shader.ResolvedBinding: the resolved bindings
	Bindings() []shader.ResolvedBinding

	// Pipeline returns the backend-compiled pipeline object, or nil before
	// compilation. The wgpu backend stores a *wgpu.RenderPipeline; the caller
	// is responsible for type asserting.
	//
	// Returns:
	//   - any: the underlying pipeline object
	Pipeline() any

	// SetRenderPipeline stores the compiled pipeline object on this variant.
	// It is called exactly once by the renderer backend during compilation;
	// calling it again panics.
	//
	// Parameters:
	//   - p: the compiled pipeline object
	SetRenderPipeline(p any)

	// DepthTestEnabled returns whether depth testing is enabled for this variant.
	//
	// Returns:
	//   - bool: true if depth testing is enabled
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this variant.
	//
	// Returns:
	//   - bool: true if depth writing is enabled
	DepthWriteEnabled() bool

	// DepthBias returns the constant depth bias configured for this variant.
	//
	// Returns:
	//   - int32: the depth bias value
	DepthBias() int32

	// DepthBiasSlopeScale returns the slope scale depth bias configured for this variant.
	//
	// Returns:
	//   - float32: the depth bias slope scale
	DepthBiasSlopeScale() float32

	// BlendEnabled returns whether blending is enabled for this variant.
	//
	// Returns:
	//   - bool: true if blending is enabled
	BlendEnabled() bool

	// BlendState returns the blend state to use when blending is enabled.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state
	BlendState() *wgpu.BlendState

	// CullMode returns the face culling mode configured for this variant.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this variant.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding configured for this variant.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this variant.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask
	WriteMask() wgpu.ColorWriteMask
}

var _ Variant = &variant{}

// NewVariant creates a new Variant carrying the derived artifacts for one
// (template ID, feature set) key with all specified options applied. The
// compiled pipeline handle is attached afterwards via SetRenderPipeline.
//
// Parameters:
//   - templateID: the template half of the variant key
//   - features: the feature set half of the variant key
//   - opts: builder options attaching derived artifacts and render state
//
// Returns:
//   - Variant: a new Variant instance with the provided configuration
func NewVariant(templateID string, features feature.Set, opts ...VariantBuilderOption) Variant {
	v := &variant{
		templateID:        templateID,
		features:          features,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		blendEnabled:      false,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *variant) TemplateID() string {
	return v.templateID
}

func (v *variant) Features() feature.Set {
	return v.features
}

func (v *variant) Key() string {
	return fmt.Sprintf("%s[%s]", v.templateID, v.features)
}

func (v *variant) Source() string {
	return v.source
}

func (v *variant) VertexLayouts() []wgpu.VertexBufferLayout {
	return v.vertexLayouts
}

func (v *variant) BindGroupLayout() wgpu.BindGroupLayoutDescriptor {
	return v.bindGroupLayout
}

func (v *variant) Bindings() []shader.ResolvedBinding {
	return v.bindings
}

func (v *variant) Pipeline() any {
	return v.renderPipeline
}

func (v *variant) SetRenderPipeline(p any) {
	if v.renderPipeline != nil {
		panic(fmt.Sprintf("pipeline: variant %s already has a compiled pipeline", v.Key()))
	}
	v.renderPipeline = p
}

func (v *variant) DepthTestEnabled() bool {
	return v.depthTestEnabled
}

func (v *variant) DepthWriteEnabled() bool {
	return v.depthWriteEnabled
}

func (v *variant) DepthBias() int32 {
	return v.depthBias
}

func (v *variant) DepthBiasSlopeScale() float32 {
	return v.depthBiasSlopeScale
}

func (v *variant) BlendEnabled() bool {
	return v.blendEnabled
}

func (v *variant) BlendState() *wgpu.BlendState {
	return v.blendState
}

func (v *variant) CullMode() wgpu.CullMode {
	return v.cullMode
}

func (v *variant) Topology() wgpu.PrimitiveTopology {
	return v.topology
}

func (v *variant) FrontFace() wgpu.FrontFace {
	return v.frontFace
}

func (v *variant) WriteMask() wgpu.ColorWriteMask {
	return v.writeMask
}
