// template.go defines shader templates: immutable WGSL source annotated with
// conditional regions and generation directives, paired with the declaration
// tables that drive both text expansion and buffer/binding layout resolution.
// A template is parsed once at load time into a region tree keyed by typed
// feature flags, so flag typos and unbalanced regions are caught when the
// template is registered rather than on first expansion.
//
// Template directive syntax (line-oriented):
//
//	#ifdef FLAG / #ifndef FLAG ... #endif   conditional regions, may nest (AND)
//	#vertex_input                           generated vertex attribute fields
//	#instance_input                         generated instance attribute fields
//	#bindings                               generated @group/@binding declarations
//	#include <name>                         registered embedded struct source
//
// The generated directives and the layout resolvers read the same declaration
// tables through the same inclusion predicate, so the expanded source, the
// vertex buffer layouts, and the bind group layout cannot drift apart.
package shader

import (
	"fmt"
	"strings"

	"github.com/Anti-Alias/prism-go/engine/renderer/feature"
	"github.com/cogentcore/webgpu/wgpu"
)

// AttributeDecl describes one vertex or instance attribute a template may
// emit. Flag is the feature gating its inclusion; the zero Flag marks an
// unconditional attribute. Shader locations and byte offsets are not declared
// here, they are assigned per feature set in declaration order.
type AttributeDecl struct {
	// Name is the WGSL field name emitted into the generated input struct.
	Name string

	// Format is the vertex format of the attribute's buffer data.
	Format wgpu.VertexFormat

	// Flag gates inclusion of this attribute; 0 means always included.
	Flag feature.Flag
}

// BindingKind identifies the resource kind of a template binding declaration.
type BindingKind int

const (
	// BindingUniformBuffer is a uniform buffer binding (var<uniform>).
	BindingUniformBuffer BindingKind = iota

	// BindingTexture is a sampled texture binding.
	BindingTexture

	// BindingSampler is a sampler binding.
	BindingSampler
)

// BindingDecl describes one resource binding a template may emit. Binding
// indices are not declared; they are assigned compactly per feature set in
// declaration order among included entries, starting at 0.
type BindingDecl struct {
	// Name is the WGSL variable name emitted into the generated declaration.
	Name string

	// Kind is the resource kind (uniform buffer, texture, or sampler).
	Kind BindingKind

	// Type is the WGSL type emitted in the generated declaration,
	// e.g. "MaterialUniform", "texture_2d<f32>", or "sampler".
	Type string

	// Visibility is the shader stage the binding is visible to.
	Visibility wgpu.ShaderStage

	// Flag gates inclusion of this binding; 0 means always included.
	Flag feature.Flag
}

// FlagRequirement declares that enabling Flag in a feature set is only valid
// when Requires is also enabled. Violations surface as MalformedTemplateError
// at resolve time.
type FlagRequirement struct {
	Flag     feature.Flag
	Requires feature.Flag
}

// Template is immutable shader template text plus the declaration tables a
// variant build resolves against. Templates are parsed and validated once by
// NewTemplate and shared read-only across all feature sets; accessors return
// internal slices that callers must not modify.
type Template interface {
	// ID retrieves the stable identifier of this template, used as half of the
	// pipeline variant cache key.
	//
	// Returns:
	//   - string: the template ID
	ID() string

	// Source retrieves the raw, unexpanded template text.
	//
	// Returns:
	//   - string: the raw template source
	Source() string

	// VertexAttributes retrieves the template's per-vertex attribute
	// declarations in declaration order.
	//
	// Returns:
	//   - []AttributeDecl: the vertex attribute declaration table
	VertexAttributes() []AttributeDecl

	// InstanceAttributes retrieves the template's per-instance attribute
	// declarations in declaration order. Templates with a non-empty instance
	// table reserve the first len(InstanceAttributes()) shader locations for
	// instance data; vertex attributes are numbered after the reserved block.
	//
	// Returns:
	//   - []AttributeDecl: the instance attribute declaration table
	InstanceAttributes() []AttributeDecl

	// Bindings retrieves the template's resource binding declarations in
	// declaration order.
	//
	// Returns:
	//   - []BindingDecl: the binding declaration table
	Bindings() []BindingDecl

	// FlagRequirements retrieves the template's declared flag dependency rules.
	//
	// Returns:
	//   - []FlagRequirement: the flag requirement list
	FlagRequirements() []FlagRequirement
}

// template is the implementation of the Template interface.
type template struct {
	id           string
	source       string
	nodes        []templateNode
	vertexAttrs  []AttributeDecl
	instAttrs    []AttributeDecl
	bindings     []BindingDecl
	requirements []FlagRequirement
}

var _ Template = &template{}

// NewTemplate parses and validates template source, returning an immutable
// Template ready for expansion and layout resolution. Structural problems in
// the text (unterminated or mismatched conditional regions, unknown flag
// names, invalid directives) and declaration table problems (a texture or
// sampler whose gating flag does not cover its counterpart) are reported here,
// at load time, as *MalformedTemplateError.
//
// NewTemplate panics if id is empty or a declaration table entry is invalid,
// since those are programmer errors rather than template data errors.
//
// Parameters:
//   - id: the stable template identifier (e.g. an asset path or name)
//   - source: the raw template text
//   - opts: builder options attaching declaration tables and flag requirements
//
// Returns:
//   - Template: the parsed template
//   - error: a *MalformedTemplateError describing the first problem found
func NewTemplate(id, source string, opts ...TemplateBuilderOption) (Template, error) {
	if id == "" {
		panic("shader: template id must not be empty")
	}
	t := &template{
		id:     id,
		source: source,
	}
	for _, opt := range opts {
		opt(t)
	}
	for _, d := range append(append([]AttributeDecl{}, t.vertexAttrs...), t.instAttrs...) {
		if d.Name == "" {
			panic(fmt.Sprintf("shader: template %q: attribute declaration with empty name", id))
		}
		if _, ok := vertexFormatInfoFor(d.Format); !ok {
			panic(fmt.Sprintf("shader: template %q: attribute %q has unsupported vertex format %v", id, d.Name, d.Format))
		}
	}
	for _, b := range t.bindings {
		if b.Name == "" || b.Type == "" {
			panic(fmt.Sprintf("shader: template %q: binding declaration with empty name or type", id))
		}
	}

	nodes, err := parseTemplate(id, source)
	if err != nil {
		return nil, err
	}
	t.nodes = nodes

	if err := validateTexturePairs(id, t.bindings); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *template) ID() string {
	return t.id
}

func (t *template) Source() string {
	return t.source
}

func (t *template) VertexAttributes() []AttributeDecl {
	return t.vertexAttrs
}

func (t *template) InstanceAttributes() []AttributeDecl {
	return t.instAttrs
}

func (t *template) Bindings() []BindingDecl {
	return t.bindings
}

func (t *template) FlagRequirements() []FlagRequirement {
	return t.requirements
}

// included is the single inclusion predicate shared by the preprocessor, the
// layout resolver, and the binding resolver. Every component answering "is
// this declaration active for this feature set" must go through it.
func included(flag feature.Flag, fs feature.Set) bool {
	return flag == 0 || fs.Has(flag)
}

// validateFeatures checks a feature set against the template's declared flag
// requirements. Returns a *MalformedTemplateError when an enabled flag is
// missing one of its required companions.
func validateFeatures(t Template, fs feature.Set) error {
	for _, req := range t.FlagRequirements() {
		if fs.Has(req.Flag) && !fs.Has(req.Requires) {
			return &MalformedTemplateError{
				TemplateID: t.ID(),
				Kind:       MalformedMissingRequiredFlag,
				Detail:     fmt.Sprintf("%s requires %s", req.Flag, req.Requires),
			}
		}
	}
	return nil
}

// validateTexturePairs rejects binding tables where a conditional texture and
// its sampler could be included or excluded separately. For every non-zero
// gating flag, the flag must cover either no texture/sampler entries or at
// least one of each.
func validateTexturePairs(id string, bindings []BindingDecl) error {
	type pairCount struct{ textures, samplers int }
	counts := make(map[feature.Flag]*pairCount)
	for _, b := range bindings {
		if b.Flag == 0 {
			continue
		}
		c := counts[b.Flag]
		if c == nil {
			c = &pairCount{}
			counts[b.Flag] = c
		}
		switch b.Kind {
		case BindingTexture:
			c.textures++
		case BindingSampler:
			c.samplers++
		}
	}
	for flag, c := range counts {
		if (c.textures > 0) != (c.samplers > 0) {
			return &MalformedTemplateError{
				TemplateID: id,
				Kind:       MalformedPartialTexturePair,
				Detail:     flag.String(),
			}
		}
	}
	return nil
}

// ── Region tree ────────────────────────────────────────────────────────────────

// templateNode is one node of a parsed template: a literal line, a conditional
// region, or a generation directive.
type templateNode interface{}

// literalNode is a verbatim source line.
type literalNode string

// regionNode is a conditional region gated by one feature flag. Nested regions
// are children; a child contributes output only when every ancestor is active.
type regionNode struct {
	flag     feature.Flag
	negate   bool // true for #ifndef
	line     int  // 1-based line of the opening directive
	children []templateNode
}

// directiveKind identifies a generation directive.
type directiveKind int

const (
	dirVertexInput directiveKind = iota
	dirInstanceInput
	dirBindings
	dirInclude
)

// directiveNode is a generation directive site. indent is the directive line's
// leading whitespace, reapplied to generated lines.
type directiveNode struct {
	kind   directiveKind
	arg    string // include name for dirInclude
	indent string
	line   int
}

// parseTemplate builds the region tree for template source, validating region
// balance, directive syntax, and flag names against the feature vocabulary.
func parseTemplate(id, source string) ([]templateNode, error) {
	var root []templateNode
	var stack []*regionNode

	appendNode := func(n templateNode) {
		if len(stack) == 0 {
			root = append(root, n)
		} else {
			top := stack[len(stack)-1]
			top.children = append(top.children, n)
		}
	}

	lines := strings.Split(source, "\n")
	for i, line := range lines {
		num := i + 1
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			appendNode(literalNode(line))
			continue
		}

		cmd, param, _ := strings.Cut(trimmed, " ")
		param = strings.TrimSpace(param)
		switch cmd {
		case "#ifdef", "#ifndef":
			flag, ok := feature.ParseFlag(param)
			if !ok {
				return nil, &MalformedTemplateError{TemplateID: id, Line: num, Kind: MalformedUnknownFlag, Detail: param}
			}
			rn := &regionNode{flag: flag, negate: cmd == "#ifndef", line: num}
			appendNode(rn)
			stack = append(stack, rn)
		case "#endif":
			if param != "" {
				return nil, &MalformedTemplateError{TemplateID: id, Line: num, Kind: MalformedUnexpectedParam, Detail: param}
			}
			if len(stack) == 0 {
				return nil, &MalformedTemplateError{TemplateID: id, Line: num, Kind: MalformedUnexpectedEndif}
			}
			stack = stack[:len(stack)-1]
		case "#vertex_input", "#instance_input", "#bindings":
			if param != "" {
				return nil, &MalformedTemplateError{TemplateID: id, Line: num, Kind: MalformedUnexpectedParam, Detail: param}
			}
			kind := dirVertexInput
			switch cmd {
			case "#instance_input":
				kind = dirInstanceInput
			case "#bindings":
				kind = dirBindings
			}
			appendNode(directiveNode{kind: kind, indent: leadingWhitespace(line), line: num})
		case "#include":
			if param == "" {
				return nil, &MalformedTemplateError{TemplateID: id, Line: num, Kind: MalformedInvalidDirective, Detail: "#include requires a name"}
			}
			appendNode(directiveNode{kind: dirInclude, arg: param, indent: leadingWhitespace(line), line: num})
		default:
			return nil, &MalformedTemplateError{TemplateID: id, Line: num, Kind: MalformedInvalidDirective, Detail: cmd}
		}
	}

	if len(stack) > 0 {
		open := stack[len(stack)-1]
		return nil, &MalformedTemplateError{
			TemplateID: id,
			Line:       open.line,
			Kind:       MalformedMissingEndif,
			Detail:     open.flag.String(),
		}
	}
	return root, nil
}

func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// ── Vertex format table ────────────────────────────────────────────────────────

// vertexFormatInfo pairs a vertex format's WGSL type name with its byte size.
type vertexFormatInfo struct {
	wgslType string
	size     uint64
}

// vertexFormatInfoMap maps supported wgpu vertex formats to their WGSL type
// and byte size. Generated attribute fields and running byte offsets both read
// from this table.
var vertexFormatInfoMap = map[wgpu.VertexFormat]vertexFormatInfo{
	wgpu.VertexFormatFloat32:   {"f32", 4},
	wgpu.VertexFormatFloat32x2: {"vec2<f32>", 8},
	wgpu.VertexFormatFloat32x3: {"vec3<f32>", 12},
	wgpu.VertexFormatFloat32x4: {"vec4<f32>", 16},
	wgpu.VertexFormatSint32:    {"i32", 4},
	wgpu.VertexFormatSint32x2:  {"vec2<i32>", 8},
	wgpu.VertexFormatSint32x3:  {"vec3<i32>", 12},
	wgpu.VertexFormatSint32x4:  {"vec4<i32>", 16},
	wgpu.VertexFormatUint32:    {"u32", 4},
	wgpu.VertexFormatUint32x2:  {"vec2<u32>", 8},
	wgpu.VertexFormatUint32x3:  {"vec3<u32>", 12},
	wgpu.VertexFormatUint32x4:  {"vec4<u32>", 16},
	wgpu.VertexFormatFloat16x2: {"vec2<f16>", 4},
	wgpu.VertexFormatFloat16x4: {"vec4<f16>", 8},
}

func vertexFormatInfoFor(f wgpu.VertexFormat) (vertexFormatInfo, bool) {
	info, ok := vertexFormatInfoMap[f]
	return info, ok
}
