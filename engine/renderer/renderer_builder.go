package renderer

import "github.com/charmbracelet/log"

// RendererBuilderOption is a functional option used to configure a Renderer during construction.
type RendererBuilderOption func(*renderer)

// WithBackend sets the device backend the renderer compiles variants through.
// A backend is required; NewRenderer panics without one.
//
// Parameters:
//   - b: the backend to compile with
//
// Returns:
//   - RendererBuilderOption: a function that sets the backend
func WithBackend(b RendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = b
	}
}

// WithLogger sets the logger used for cache events (compiles, invalidations,
// template replacement). Logging is discarded by default.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - RendererBuilderOption: a function that sets the logger
func WithLogger(logger *log.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithWarmupWorkers sets the worker count for the warmup precompilation pool.
// Defaults to 2.
//
// Parameters:
//   - n: the number of pool workers (values < 1 are ignored)
//
// Returns:
//   - RendererBuilderOption: a function that sets the warmup worker count
func WithWarmupWorkers(n int) RendererBuilderOption {
	return func(r *renderer) {
		if n >= 1 {
			r.warmupWorkers = n
		}
	}
}
