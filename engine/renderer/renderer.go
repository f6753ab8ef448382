// Package renderer implements the pipeline variant cache: the mapping from
// (template ID, feature set) keys to compiled pipeline variants. On a miss the
// cache drives template expansion, layout and binding resolution, and the
// backend compile step, then stores the result; hits return the stored variant
// with no recomputation. Concurrent requests for the same key are deduplicated
// so a variant is never compiled twice, and a failed build leaves its key
// absent so a corrected template can retry after reload.
package renderer

import (
	"errors"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/Anti-Alias/prism-go/engine/renderer/feature"
	"github.com/Anti-Alias/prism-go/engine/renderer/pipeline"
	"github.com/Anti-Alias/prism-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/charmbracelet/log"
)

// VariantRequest names one variant to precompile during Warmup.
type VariantRequest struct {
	// TemplateID is the template half of the variant key.
	TemplateID string

	// Features is the feature set half of the variant key.
	Features feature.Set
}

// variantKey is the cache key for one pipeline variant. Template IDs are
// interned strings and feature sets are bitmasks, so the key is comparable
// and hashing is stable regardless of how the set was constructed.
type variantKey struct {
	templateID string
	features   feature.Set
}

// variantEntry tracks one cache slot through its lifecycle. done is closed
// when the build finishes; before that the entry is in the building state and
// later requesters block on it instead of starting a second compile. variant
// and err are written exactly once before done is closed.
type variantEntry struct {
	done    chan struct{}
	variant pipeline.Variant
	err     error
}

// registeredTemplate pairs a template with the render-state options applied
// to every variant built from it.
type registeredTemplate struct {
	tmpl shader.Template
	opts []pipeline.VariantBuilderOption
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu sync.Mutex

	templates map[string]registeredTemplate
	variants  map[variantKey]*variantEntry

	pp      shader.PreProcessor
	backend RendererBackend
	logger  *log.Logger

	// warmupPool runs Warmup precompilation requests. Workers idle-exit after
	// a second, so an unused pool costs nothing between warmup batches.
	warmupPool    worker.DynamicWorkerPool
	warmupWorkers int
}

// Renderer defines the interface for the pipeline variant cache.
//
// Variant creation is expected to happen on the thread that owns the GPU
// device, since backend compilation typically requires that affinity; lookups
// of already-built variants are safe from any goroutine. All methods are safe
// for concurrent use.
type Renderer interface {
	// RegisterTemplate registers a template under its ID, along with the
	// render-state options applied to every variant built from it. Registering
	// an ID that already exists replaces the template and invalidates all of
	// its cached variants, which is the hot-reload path for template loaders.
	//
	// Parameters:
	//   - t: the template to register
	//   - opts: render-state options for the template's variants
	RegisterTemplate(t shader.Template, opts ...pipeline.VariantBuilderOption)

	// Template retrieves a registered template by ID.
	//
	// Parameters:
	//   - templateID: the template ID to look up
	//
	// Returns:
	//   - shader.Template: the registered template, or nil if not found
	Template(templateID string) shader.Template

	// GetOrBuild retrieves the pipeline variant for a (template ID, feature
	// set) key, building and compiling it on first request. Hits return the
	// stored variant with no recomputation or compile call. Concurrent calls
	// for the same key are deduplicated: at most one compile happens, and
	// every caller receives the same variant. A failed build leaves the key
	// absent so a later request can retry.
	//
	// Parameters:
	//   - templateID: the template half of the variant key
	//   - fs: the feature set half of the variant key
	//
	// Returns:
	//   - pipeline.Variant: the ready variant, shared read-only
	//   - error: *UnknownTemplateError for unregistered IDs,
	//     *shader.MalformedTemplateError for template/feature-set problems, or
	//     *CompileError when the backend rejects the derived source
	GetOrBuild(templateID string, fs feature.Set) (pipeline.Variant, error)

	// Variant retrieves an already-built variant without triggering a build.
	//
	// Parameters:
	//   - templateID: the template half of the variant key
	//   - fs: the feature set half of the variant key
	//
	// Returns:
	//   - pipeline.Variant: the ready variant, or nil if absent or still building
	Variant(templateID string, fs feature.Set) pipeline.Variant

	// Invalidate evicts every cached variant built from the given template ID,
	// returning their keys to the absent state. Variants of other templates
	// are unaffected. Evicted pipeline objects are released via the backend.
	//
	// Parameters:
	//   - templateID: the template whose variants to evict
	//
	// Returns:
	//   - int: the number of variants evicted
	Invalidate(templateID string) int

	// Warmup precompiles the requested variants on a worker pool, so first
	// draws do not pay compile latency. Requests already cached are free, and
	// deduplication makes overlapping warmup and draw-path builds safe. The
	// backend must tolerate compile calls from pool goroutines.
	//
	// Parameters:
	//   - requests: the variant keys to precompile
	//
	// Returns:
	//   - error: the joined build errors, or nil if every request succeeded
	Warmup(requests ...VariantRequest) error

	// Release evicts every cached variant and releases their compiled pipeline
	// objects via the backend. Called on device teardown; the renderer must
	// not be used afterwards.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer with all specified options applied.
// A backend is required; NewRenderer panics if none is provided.
//
// Parameters:
//   - opts: builder options configuring the backend, logger, and warmup pool
//
// Returns:
//   - Renderer: a new Renderer instance with the provided configuration
func NewRenderer(opts ...RendererBuilderOption) Renderer {
	r := &renderer{
		templates:     make(map[string]registeredTemplate),
		variants:      make(map[variantKey]*variantEntry),
		pp:            shader.NewPreProcessor(),
		logger:        log.New(io.Discard),
		warmupWorkers: 2,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.backend == nil {
		panic("renderer: a backend is required, provide one with WithBackend")
	}
	r.warmupPool = worker.NewDynamicWorkerPool(r.warmupWorkers, 64, 1*time.Second)
	return r
}

func (r *renderer) RegisterTemplate(t shader.Template, opts ...pipeline.VariantBuilderOption) {
	if t == nil {
		panic("renderer: cannot register a nil template")
	}
	r.mu.Lock()
	_, replacing := r.templates[t.ID()]
	r.templates[t.ID()] = registeredTemplate{tmpl: t, opts: opts}
	r.mu.Unlock()

	if replacing {
		evicted := r.Invalidate(t.ID())
		r.logger.Info("replaced template", "template", t.ID(), "evicted", evicted)
	}
}

func (r *renderer) Template(templateID string) shader.Template {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.templates[templateID]
	if !ok {
		return nil
	}
	return reg.tmpl
}

func (r *renderer) GetOrBuild(templateID string, fs feature.Set) (pipeline.Variant, error) {
	key := variantKey{templateID: templateID, features: fs}

	r.mu.Lock()
	reg, ok := r.templates[templateID]
	if !ok {
		r.mu.Unlock()
		return nil, &UnknownTemplateError{TemplateID: templateID}
	}
	if e, found := r.variants[key]; found {
		r.mu.Unlock()
		<-e.done
		if e.err != nil {
			return nil, e.err
		}
		return e.variant, nil
	}
	e := &variantEntry{done: make(chan struct{})}
	r.variants[key] = e
	r.mu.Unlock()

	v, err := r.build(reg, fs)
	if err != nil {
		r.mu.Lock()
		// Clear the slot only if it is still ours; Invalidate or a template
		// replacement may have removed it while the build was in flight.
		if cur, found := r.variants[key]; found && cur == e {
			delete(r.variants, key)
		}
		r.mu.Unlock()
		e.err = err
		close(e.done)
		return nil, err
	}
	e.variant = v
	close(e.done)
	return v, nil
}

func (r *renderer) Variant(templateID string, fs feature.Set) pipeline.Variant {
	key := variantKey{templateID: templateID, features: fs}
	r.mu.Lock()
	e, ok := r.variants[key]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	select {
	case <-e.done:
		return e.variant
	default:
		return nil
	}
}

func (r *renderer) Invalidate(templateID string) int {
	r.mu.Lock()
	var evicted []*variantEntry
	for key, e := range r.variants {
		if key.templateID == templateID {
			delete(r.variants, key)
			evicted = append(evicted, e)
		}
	}
	r.mu.Unlock()

	count := 0
	for _, e := range evicted {
		count++
		r.releaseEntry(e)
	}
	if count > 0 {
		r.logger.Debug("invalidated template variants", "template", templateID, "evicted", count)
	}
	return count
}

func (r *renderer) Warmup(requests ...VariantRequest) error {
	var wg sync.WaitGroup
	errs := make([]error, len(requests))
	for i, req := range requests {
		wg.Add(1)
		idx, reqCap := i, req
		r.warmupPool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				_, err := r.GetOrBuild(reqCap.TemplateID, reqCap.Features)
				errs[idx] = err
				return nil, err
			},
		})
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (r *renderer) Release() {
	r.mu.Lock()
	entries := make([]*variantEntry, 0, len(r.variants))
	for key, e := range r.variants {
		delete(r.variants, key)
		entries = append(entries, e)
	}
	r.mu.Unlock()

	for _, e := range entries {
		r.releaseEntry(e)
	}
	r.logger.Debug("released pipeline variant cache", "evicted", len(entries))
}

// build derives all artifacts for one variant and compiles it. Runs outside
// the cache lock; the caller owns the building entry for the key.
func (r *renderer) build(reg registeredTemplate, fs feature.Set) (pipeline.Variant, error) {
	start := time.Now()
	t := reg.tmpl

	source, err := r.pp.Expand(t, fs)
	if err != nil {
		return nil, err
	}
	layouts, err := shader.ResolveVertexLayouts(t, fs)
	if err != nil {
		return nil, err
	}
	bindings, err := shader.ResolveBindings(t, fs)
	if err != nil {
		return nil, err
	}
	bindGroupLayout, err := shader.ResolveBindGroupLayout(t, fs)
	if err != nil {
		return nil, err
	}

	opts := append(slices.Clone(reg.opts),
		pipeline.WithSource(source),
		pipeline.WithVertexLayouts(layouts),
		pipeline.WithBindings(bindings),
		pipeline.WithBindGroupLayout(bindGroupLayout),
	)
	v := pipeline.NewVariant(t.ID(), fs, opts...)

	if err := r.backend.CompileRenderPipeline(v); err != nil {
		return nil, &CompileError{TemplateID: t.ID(), Features: fs, Source: source, Err: err}
	}
	r.logger.Debug("compiled pipeline variant", "variant", v.Key(), "duration", time.Since(start))
	return v, nil
}

// releaseEntry releases an entry's pipeline object. An entry evicted while
// its build is still in flight is released once the builder closes done, so
// eviction never strands a compiled pipeline outside the cache's ownership.
func (r *renderer) releaseEntry(e *variantEntry) {
	select {
	case <-e.done:
		if e.variant != nil {
			r.backend.ReleaseVariant(e.variant)
		}
	default:
		go func() {
			<-e.done
			if e.variant != nil {
				r.backend.ReleaseVariant(e.variant)
			}
		}()
	}
}
