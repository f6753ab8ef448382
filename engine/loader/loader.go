// Package loader loads shader template files and registers them with a
// renderer. Template IDs are derived from file names, declaration tables and
// render-state options are attached per ID at construction, and Reload
// re-registers a template in place, which invalidates its cached pipeline
// variants and gives editors a hot-reload path.
package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Anti-Alias/prism-go/engine/renderer"
	"github.com/Anti-Alias/prism-go/engine/renderer/pipeline"
	"github.com/Anti-Alias/prism-go/engine/renderer/shader"
)

// templateConfig holds the per-ID options applied when a template file is
// parsed and registered.
type templateConfig struct {
	templateOpts []shader.TemplateBuilderOption
	variantOpts  []pipeline.VariantBuilderOption
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	renderer renderer.Renderer

	templateCache map[string]shader.Template
	configs       map[string]templateConfig

	backend loaderBackend
}

// Loader defines the public-facing interface for loading and caching shader
// templates. It abstracts file access behind a backend and registers every
// loaded template with the renderer it was built with.
type Loader interface {
	// Load reads and parses a template file and caches the result. The
	// template ID is the file's base name without extension; if a template
	// with that ID is already cached, the cached version is returned without
	// touching the file. Declaration tables and variant render-state options
	// configured for the ID are applied, and the parsed template is
	// registered with the renderer.
	//
	// Parameters:
	//   - path: the file path to the template source
	//
	// Returns:
	//   - shader.Template: the loaded and cached template
	//   - error: a read error or a *shader.MalformedTemplateError
	Load(path string) (shader.Template, error)

	// LoadReader parses a template from a reader stream and caches it under
	// the given ID. Used for embedded or generated sources that have no file
	// path.
	//
	// Parameters:
	//   - id: the template ID and cache key
	//   - r: the reader providing template source text
	//
	// Returns:
	//   - shader.Template: the loaded template
	//   - error: a read error or a *shader.MalformedTemplateError
	LoadReader(id string, r io.Reader) (shader.Template, error)

	// Reload re-reads and re-parses a template file, bypassing the cache, and
	// re-registers the result. The renderer invalidates every cached pipeline
	// variant of the replaced template, so subsequent variant requests compile
	// against the new source. A template that fails to parse leaves the
	// previous registration untouched.
	//
	// Parameters:
	//   - path: the file path to the template source
	//
	// Returns:
	//   - shader.Template: the reloaded template
	//   - error: a read error or a *shader.MalformedTemplateError
	Reload(path string) (shader.Template, error)

	// Get retrieves a cached template by ID. Returns nil if not found.
	//
	// Parameters:
	//   - id: the template ID to look up
	//
	// Returns:
	//   - shader.Template: the cached template or nil
	Get(id string) shader.Template

	// Templates returns a snapshot of the template cache.
	//
	// Returns:
	//   - map[string]shader.Template: all cached templates keyed by ID
	Templates() map[string]shader.Template
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with all specified options applied.
// A renderer is required; NewLoader panics if none is provided.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided options
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		templateCache: make(map[string]shader.Template),
		configs:       make(map[string]templateConfig),
		backend:       newOSLoaderBackend(),
	}
	for _, option := range options {
		option(l)
	}
	if l.renderer == nil {
		panic("loader: a renderer is required, provide one with WithRenderer")
	}
	return l
}

func (l *loader) Load(path string) (shader.Template, error) {
	id := templateIDFromPath(path)

	l.mu.RLock()
	if cached, ok := l.templateCache[id]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	return l.loadAndRegister(id, path)
}

func (l *loader) LoadReader(id string, r io.Reader) (shader.Template, error) {
	l.mu.RLock()
	if cached, ok := l.templateCache[id]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	source, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %q: %w", id, err)
	}
	return l.parseAndRegister(id, string(source))
}

func (l *loader) Reload(path string) (shader.Template, error) {
	return l.loadAndRegister(templateIDFromPath(path), path)
}

func (l *loader) Get(id string) shader.Template {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.templateCache[id]
}

func (l *loader) Templates() map[string]shader.Template {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]shader.Template, len(l.templateCache))
	for id, t := range l.templateCache {
		out[id] = t
	}
	return out
}

// loadAndRegister reads a template file through the backend and parses and
// registers it, replacing any cached template with the same ID.
func (l *loader) loadAndRegister(id, path string) (shader.Template, error) {
	source, err := l.backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return l.parseAndRegister(id, string(source))
}

// parseAndRegister parses template source with the ID's configured tables and
// registers the result with the renderer. Parse failures leave the cache and
// any previous registration untouched.
func (l *loader) parseAndRegister(id, source string) (shader.Template, error) {
	l.mu.RLock()
	cfg := l.configs[id]
	l.mu.RUnlock()

	t, err := shader.NewTemplate(id, source, cfg.templateOpts...)
	if err != nil {
		return nil, err
	}

	l.renderer.RegisterTemplate(t, cfg.variantOpts...)

	l.mu.Lock()
	l.templateCache[id] = t
	l.mu.Unlock()

	return t, nil
}

// templateIDFromPath derives a template ID from a file path: the base name
// with its extension stripped, so "assets/shaders/mesh.wgsl" becomes "mesh".
func templateIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
