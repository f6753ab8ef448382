package shader

import "fmt"

// MalformedKind classifies the ways a template or a template/feature-set
// combination can be rejected. Every kind is a template-authoring bug, fatal
// to the build attempt that hit it but never to the process.
type MalformedKind int

const (
	// MalformedInvalidDirective indicates a line starting with '#' that is not a
	// recognized directive.
	MalformedInvalidDirective MalformedKind = iota

	// MalformedUnexpectedParam indicates an #endif carrying an argument.
	MalformedUnexpectedParam

	// MalformedMissingEndif indicates a conditional region left open at end of input.
	MalformedMissingEndif

	// MalformedUnexpectedEndif indicates an #endif with no open conditional region.
	MalformedUnexpectedEndif

	// MalformedUnknownFlag indicates an #ifdef or #ifndef referencing a name
	// outside the feature vocabulary.
	MalformedUnknownFlag

	// MalformedUnknownInclude indicates an #include naming an unregistered struct source.
	MalformedUnknownInclude

	// MalformedPartialTexturePair indicates a texture or sampler binding whose
	// gating flag does not also gate its counterpart, so the pair could be
	// included or excluded separately.
	MalformedPartialTexturePair

	// MalformedMissingRequiredFlag indicates a feature set enabling a flag
	// without another flag the template declares it requires (e.g. a texture
	// flag without UV coordinates to sample with).
	MalformedMissingRequiredFlag
)

// malformedKindText maps each kind to a short human-readable description.
var malformedKindText = map[MalformedKind]string{
	MalformedInvalidDirective:    "invalid directive",
	MalformedUnexpectedParam:     "unexpected parameter",
	MalformedMissingEndif:        "missing #endif at end of template",
	MalformedUnexpectedEndif:     "unexpected #endif",
	MalformedUnknownFlag:         "unknown feature flag",
	MalformedUnknownInclude:      "unknown include",
	MalformedPartialTexturePair:  "partial texture/sampler pair",
	MalformedMissingRequiredFlag: "missing required feature flag",
}

// MalformedTemplateError reports a structurally invalid template or an invalid
// template/feature-set combination. It always carries the template ID that
// produced it; Line is 1-based and 0 when the problem is not tied to a source
// line (declaration table and flag requirement violations).
type MalformedTemplateError struct {
	// TemplateID identifies the template that failed.
	TemplateID string

	// Line is the 1-based source line of the offending directive, or 0.
	Line int

	// Kind classifies the failure.
	Kind MalformedKind

	// Detail carries the offending token or a short elaboration.
	Detail string
}

func (e *MalformedTemplateError) Error() string {
	msg := malformedKindText[e.Kind]
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Line > 0 {
		return fmt.Sprintf("template %q: line %d: %s", e.TemplateID, e.Line, msg)
	}
	return fmt.Sprintf("template %q: %s", e.TemplateID, msg)
}
