package shader

import "github.com/Anti-Alias/prism-go/engine/renderer/feature"

// TemplateBuilderOption is a functional option used to configure a Template during construction.
type TemplateBuilderOption func(*template)

// WithVertexAttributes sets the per-vertex attribute declaration table for this
// template, in declaration order. The table is the single source of truth for
// both the generated #vertex_input fields and the resolved vertex buffer layout.
//
// Parameters:
//   - decls: the vertex attribute declarations in declaration order
//
// Returns:
//   - TemplateBuilderOption: a function that sets the vertex attribute table
func WithVertexAttributes(decls ...AttributeDecl) TemplateBuilderOption {
	return func(t *template) {
		t.vertexAttrs = decls
	}
}

// WithInstanceAttributes sets the per-instance attribute declaration table for
// this template, in declaration order. A non-empty table reserves the leading
// shader locations for instance data.
//
// Parameters:
//   - decls: the instance attribute declarations in declaration order
//
// Returns:
//   - TemplateBuilderOption: a function that sets the instance attribute table
func WithInstanceAttributes(decls ...AttributeDecl) TemplateBuilderOption {
	return func(t *template) {
		t.instAttrs = decls
	}
}

// WithBindings sets the resource binding declaration table for this template,
// in declaration order. The table drives both the generated #bindings
// declarations and the resolved bind group layout.
//
// Parameters:
//   - decls: the binding declarations in declaration order
//
// Returns:
//   - TemplateBuilderOption: a function that sets the binding table
func WithBindings(decls ...BindingDecl) TemplateBuilderOption {
	return func(t *template) {
		t.bindings = decls
	}
}

// WithFlagRequirement declares that enabling flag in a feature set is only
// valid when requires is also enabled. Resolving a feature set that violates
// the rule fails with a MalformedTemplateError.
//
// Parameters:
//   - flag: the dependent flag
//   - requires: the flag it depends on
//
// Returns:
//   - TemplateBuilderOption: a function that appends the requirement
func WithFlagRequirement(flag, requires feature.Flag) TemplateBuilderOption {
	return func(t *template) {
		t.requirements = append(t.requirements, FlagRequirement{Flag: flag, Requires: requires})
	}
}
