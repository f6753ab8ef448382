package loader

import (
	"io/fs"

	"github.com/Anti-Alias/prism-go/engine/renderer"
	"github.com/Anti-Alias/prism-go/engine/renderer/pipeline"
	"github.com/Anti-Alias/prism-go/engine/renderer/shader"
)

// LoaderBuilderOption is a functional option used to configure a Loader during construction.
type LoaderBuilderOption func(*loader)

// WithRenderer sets the renderer loaded templates are registered with.
// A renderer is required; NewLoader panics without one.
//
// Parameters:
//   - r: the renderer to register templates with
//
// Returns:
//   - LoaderBuilderOption: a function that sets the renderer
func WithRenderer(r renderer.Renderer) LoaderBuilderOption {
	return func(l *loader) {
		l.renderer = r
	}
}

// WithFS sets an fs.FS for the loader to read template files from instead of
// the OS filesystem. Paths passed to Load and Reload are resolved against it.
//
// Parameters:
//   - fsys: the filesystem to read from (ignored if nil)
//
// Returns:
//   - LoaderBuilderOption: a function that sets the file source
func WithFS(fsys fs.FS) LoaderBuilderOption {
	return func(l *loader) {
		if fsys != nil {
			l.backend = newFSLoaderBackend(fsys)
		}
	}
}

// WithTemplateOptions sets the declaration table options applied when the
// template with the given ID is parsed: attribute tables, binding tables, and
// flag requirements. Options accumulate across calls for the same ID.
//
// Parameters:
//   - id: the template ID the options apply to
//   - opts: template builder options for that ID
//
// Returns:
//   - LoaderBuilderOption: a function that records the template options
func WithTemplateOptions(id string, opts ...shader.TemplateBuilderOption) LoaderBuilderOption {
	return func(l *loader) {
		cfg := l.configs[id]
		cfg.templateOpts = append(cfg.templateOpts, opts...)
		l.configs[id] = cfg
	}
}

// WithVariantOptions sets the render-state options applied to every pipeline
// variant built from the template with the given ID. Options accumulate
// across calls for the same ID.
//
// Parameters:
//   - id: the template ID the options apply to
//   - opts: variant builder options for that ID
//
// Returns:
//   - LoaderBuilderOption: a function that records the variant options
func WithVariantOptions(id string, opts ...pipeline.VariantBuilderOption) LoaderBuilderOption {
	return func(l *loader) {
		cfg := l.configs[id]
		cfg.variantOpts = append(cfg.variantOpts, opts...)
		l.configs[id] = cfg
	}
}
