// layout.go resolves a template's attribute declaration tables against a
// feature set into concrete wgpu vertex buffer layouts. The resolver walks the
// same tables through the same inclusion predicate as the preprocessor's
// generated input fields, so shader locations and byte offsets match the
// expanded source by construction.
package shader

import (
	"github.com/Anti-Alias/prism-go/engine/renderer/feature"
	"github.com/cogentcore/webgpu/wgpu"
)

// ResolvedAttribute is one included attribute with its assigned shader
// location and running byte offset for a specific feature set.
type ResolvedAttribute struct {
	AttributeDecl

	// Location is the assigned shader location.
	Location uint32

	// Offset is the attribute's byte offset within its buffer's stride.
	Offset uint64
}

// resolveInstanceAttributes returns the included instance attributes with
// locations assigned from 0 in declaration order. Instance attributes resolve
// to nothing unless the feature set enables instancing; individual entries are
// additionally subject to the shared inclusion predicate.
func resolveInstanceAttributes(t Template, fs feature.Set) []ResolvedAttribute {
	decls := t.InstanceAttributes()
	if len(decls) == 0 || !fs.Has(feature.Instanced) {
		return nil
	}
	var out []ResolvedAttribute
	var offset uint64
	location := uint32(0)
	for _, d := range decls {
		if !included(d.Flag, fs) {
			continue
		}
		info, _ := vertexFormatInfoFor(d.Format)
		out = append(out, ResolvedAttribute{AttributeDecl: d, Location: location, Offset: offset})
		offset += info.size
		location++
	}
	return out
}

// resolveVertexAttributes returns the included vertex attributes with compact
// locations in declaration order and running byte offsets. Templates that
// declare instance attributes reserve the leading locations for them whether
// or not instancing is enabled, keeping vertex locations stable across the
// instancing toggle.
func resolveVertexAttributes(t Template, fs feature.Set) []ResolvedAttribute {
	location := uint32(len(t.InstanceAttributes()))
	var out []ResolvedAttribute
	var offset uint64
	for _, d := range t.VertexAttributes() {
		if !included(d.Flag, fs) {
			continue
		}
		info, _ := vertexFormatInfoFor(d.Format)
		out = append(out, ResolvedAttribute{AttributeDecl: d, Location: location, Offset: offset})
		offset += info.size
		location++
	}
	return out
}

// ResolveVertexLayouts derives the vertex buffer layouts for one template and
// feature set: the per-instance buffer layout first when instancing is
// enabled, then the per-vertex buffer layout. The result lists buffers in the
// slot order draw submission binds them.
//
// Resolution never fails for a well-formed feature set; the only error is a
// *MalformedTemplateError for a set violating the template's flag requirements.
//
// Parameters:
//   - t: the template whose declaration tables to resolve
//   - fs: the feature set selecting attributes
//
// Returns:
//   - []wgpu.VertexBufferLayout: the resolved buffer layouts in bind order
//   - error: a *MalformedTemplateError on flag requirement violations
func ResolveVertexLayouts(t Template, fs feature.Set) ([]wgpu.VertexBufferLayout, error) {
	if err := validateFeatures(t, fs); err != nil {
		return nil, err
	}

	var layouts []wgpu.VertexBufferLayout
	if inst := resolveInstanceAttributes(t, fs); len(inst) > 0 {
		layouts = append(layouts, bufferLayout(inst, wgpu.VertexStepModeInstance))
	}
	if vert := resolveVertexAttributes(t, fs); len(vert) > 0 {
		layouts = append(layouts, bufferLayout(vert, wgpu.VertexStepModeVertex))
	}
	return layouts, nil
}

// bufferLayout packs resolved attributes into a single buffer layout. The
// array stride is the running-sum end offset of the final attribute.
func bufferLayout(attrs []ResolvedAttribute, step wgpu.VertexStepMode) wgpu.VertexBufferLayout {
	out := make([]wgpu.VertexAttribute, 0, len(attrs))
	var stride uint64
	for _, a := range attrs {
		info, _ := vertexFormatInfoFor(a.Format)
		out = append(out, wgpu.VertexAttribute{
			Format:         a.Format,
			Offset:         a.Offset,
			ShaderLocation: a.Location,
		})
		stride = a.Offset + info.size
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: stride,
		StepMode:    step,
		Attributes:  out,
	}
}
