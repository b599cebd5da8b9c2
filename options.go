package fractal

// RendererOption configures a Renderer during creation.
//
// Example:
//
//	// Registered GPU backend, CPU fallback on 4 workers
//	r := fractal.NewRenderer(fractal.WithWorkers(4))
//
//	// Reference output, never touching the GPU
//	r := fractal.NewRenderer(fractal.WithCPUOnly())
type RendererOption func(*rendererOptions)

type rendererOptions struct {
	workers int
	backend Backend
	cpuOnly bool
}

func defaultOptions() rendererOptions {
	return rendererOptions{
		workers: 0, // GOMAXPROCS
		backend: nil,
	}
}

// WithWorkers sets the number of CPU workers. Zero or negative uses GOMAXPROCS.
func WithWorkers(n int) RendererOption {
	return func(o *rendererOptions) {
		o.workers = n
	}
}

// WithBackend uses b instead of the registered backend. The caller owns b
// and must have called b.Init.
func WithBackend(b Backend) RendererOption {
	return func(o *rendererOptions) {
		o.backend = b
	}
}

// WithCPUOnly disables GPU rendering for this renderer.
func WithCPUOnly() RendererOption {
	return func(o *rendererOptions) {
		o.cpuOnly = true
	}
}
