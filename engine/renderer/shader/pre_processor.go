// pre_processor.go implements the template preprocessor. It expands a parsed
// template against a feature set: conditional regions contribute their content
// only when every enclosing region is active, generation directives are
// replaced with declarations derived from the template's tables, and #include
// sites are replaced with registered embedded WGSL struct sources.
//
// Expansion is pure and deterministic: the same template and feature set
// always produce byte-identical output, which is what makes caching expanded
// variants by (template ID, feature set) correct.
package shader

import (
	"fmt"
	"strings"

	"github.com/Anti-Alias/prism-go/engine/renderer/feature"
	"github.com/Anti-Alias/prism-go/engine/renderer/material"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// structRegistry maps #include names to embedded WGSL struct sources.
	structRegistry map[string]string
}

// PreProcessor expands shader templates into concrete, flag-free WGSL source
// for a given feature set.
type PreProcessor interface {
	// Expand resolves a template against a feature set and returns the
	// concrete shader source. Conditional regions are kept or dropped by flag
	// membership (nested regions AND together), #vertex_input, #instance_input
	// and #bindings are replaced with declarations generated from the
	// template's tables, and #include sites are replaced with registered
	// struct sources.
	//
	// Expansion of an empty feature set is valid and yields only the
	// template's unconditional content; a template with no directives passes
	// through unchanged.
	//
	// Parameters:
	//   - t: a template created by NewTemplate
	//   - fs: the feature set selecting conditional content
	//
	// Returns:
	//   - string: the expanded, flag-free shader source
	//   - error: a *MalformedTemplateError for unknown includes or flag
	//     requirement violations
	Expand(t Template, fs feature.Set) (string, error)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the engine's embedded struct
// sources pre-registered for #include resolution.
//
// Returns:
//   - PreProcessor: a ready-to-use preprocessor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[string]string{
			"material_uniform": material.GPUMaterialUniformSource,
		},
	}
}

func (p *preProcessor) Expand(t Template, fs feature.Set) (string, error) {
	tmpl, ok := t.(*template)
	if !ok {
		panic("shader: Expand requires a template created by NewTemplate")
	}
	if err := validateFeatures(t, fs); err != nil {
		return "", err
	}

	out := make([]string, 0, strings.Count(tmpl.source, "\n")+1)
	if err := p.expandNodes(tmpl, tmpl.nodes, fs, &out); err != nil {
		return "", err
	}
	return strings.Join(out, "\n"), nil
}

// expandNodes walks one level of the region tree, appending output lines.
// Regions recurse only when active, so nested conditions AND together.
func (p *preProcessor) expandNodes(t *template, nodes []templateNode, fs feature.Set, out *[]string) error {
	for _, n := range nodes {
		switch node := n.(type) {
		case literalNode:
			*out = append(*out, string(node))
		case *regionNode:
			if fs.Has(node.flag) != node.negate {
				if err := p.expandNodes(t, node.children, fs, out); err != nil {
					return err
				}
			}
		case directiveNode:
			if err := p.expandDirective(t, node, fs, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *preProcessor) expandDirective(t *template, d directiveNode, fs feature.Set, out *[]string) error {
	switch d.kind {
	case dirVertexInput:
		for _, a := range resolveVertexAttributes(t, fs) {
			info, _ := vertexFormatInfoFor(a.Format)
			*out = append(*out, fmt.Sprintf("%s@location(%d) %s: %s,", d.indent, a.Location, a.Name, info.wgslType))
		}
	case dirInstanceInput:
		for _, a := range resolveInstanceAttributes(t, fs) {
			info, _ := vertexFormatInfoFor(a.Format)
			*out = append(*out, fmt.Sprintf("%s@location(%d) %s: %s,", d.indent, a.Location, a.Name, info.wgslType))
		}
	case dirBindings:
		resolved, err := ResolveBindings(t, fs)
		if err != nil {
			return err
		}
		for _, b := range resolved {
			switch b.Kind {
			case BindingUniformBuffer:
				*out = append(*out, fmt.Sprintf("%s@group(0) @binding(%d) var<uniform> %s: %s;", d.indent, b.Binding, b.Name, b.Type))
			default:
				*out = append(*out, fmt.Sprintf("%s@group(0) @binding(%d) var %s: %s;", d.indent, b.Binding, b.Name, b.Type))
			}
		}
	case dirInclude:
		src, ok := p.structRegistry[d.arg]
		if !ok {
			return &MalformedTemplateError{TemplateID: t.id, Line: d.line, Kind: MalformedUnknownInclude, Detail: d.arg}
		}
		*out = append(*out, strings.Split(strings.TrimRight(src, "\n"), "\n")...)
	}
	return nil
}
