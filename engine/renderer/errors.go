package renderer

import (
	"fmt"

	"github.com/Anti-Alias/prism-go/engine/renderer/feature"
)

// UnknownTemplateError reports a variant request for a template ID that was
// never registered with the renderer.
type UnknownTemplateError struct {
	// TemplateID is the unregistered ID that was requested.
	TemplateID string
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("renderer: unknown template %q", e.TemplateID)
}

// CompileError reports a backend rejection of derived shader source. It
// carries the template ID, feature set, and the exact expanded source that
// failed, so template bugs can be diagnosed against the concrete variant
// rather than the raw template.
type CompileError struct {
	// TemplateID is the template half of the failed variant key.
	TemplateID string

	// Features is the feature set half of the failed variant key.
	Features feature.Set

	// Source is the expanded shader source the backend rejected.
	Source string

	// Err is the underlying backend error.
	Err error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("renderer: compiling variant %s[%s]: %v", e.TemplateID, e.Features, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}
