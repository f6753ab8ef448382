package renderer

import "github.com/Anti-Alias/prism-go/engine/renderer/pipeline"

// RendererBackend is the device layer the variant cache compiles through. The
// cache treats compilation as an opaque synchronous call: it hands over a
// variant carrying the derived source, vertex layouts, and bind group layout,
// and the backend attaches the compiled pipeline object via SetRenderPipeline.
//
// The wgpu backend is the production implementation; tests substitute
// recording fakes.
type RendererBackend interface {
	// CompileRenderPipeline compiles the variant's derived shader source into
	// a GPU pipeline object configured by the variant's layouts, bind group
	// layout, and render state, then stores it on the variant via
	// SetRenderPipeline.
	//
	// Parameters:
	//   - v: the fully derived variant to compile
	//
	// Returns:
	//   - error: an error if the pipeline could not be created, otherwise nil
	CompileRenderPipeline(v pipeline.Variant) error

	// ReleaseVariant releases the GPU pipeline object held by an evicted
	// variant. Variants without a compiled pipeline are ignored.
	//
	// Parameters:
	//   - v: the evicted variant
	ReleaseVariant(v pipeline.Variant)
}
