package fractal

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"
)

// ErrRendererClosed is returned when rendering with a closed Renderer.
var ErrRendererClosed = errors.New("fractal: renderer closed")

// Renderer produces frames, preferring the GPU backend and falling back to
// the CPU evaluator.
//
// Thread safety: Renderer is safe for concurrent use; frames are rendered
// one at a time per path.
type Renderer struct {
	opts   rendererOptions
	cpu    *cpuRenderer
	closed atomic.Bool

	// lastBackend holds the name of the path that produced the last frame.
	lastBackend atomic.Pointer[string]
}

// NewRenderer creates a renderer.
func NewRenderer(opts ...RendererOption) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	r := &Renderer{
		opts: o,
		cpu:  newCPURenderer(o.workers),
	}
	name := cpuBackendName
	r.lastBackend.Store(&name)
	return r
}

const cpuBackendName = "cpu"

// Render renders frame into a new image.
func (r *Renderer) Render(ctx context.Context, frame Frame) (*image.NRGBA, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	if err := r.RenderInto(ctx, TargetFromImage(img), frame); err != nil {
		return nil, err
	}
	return img, nil
}

// RenderInto renders frame into an existing target of the same size.
//
// The backend is tried first when it supports frame.Mode. On
// ErrFallbackToCPU, or any other backend error, the frame is rendered on CPU
// and the failure is logged at Warn.
func (r *Renderer) RenderInto(ctx context.Context, target Target, frame Frame) error {
	if r.closed.Load() {
		return ErrRendererClosed
	}
	if err := frame.Validate(); err != nil {
		return err
	}
	if err := target.check(frame.Width, frame.Height); err != nil {
		return err
	}

	if b := r.backend(); b != nil && b.CanRender(frame.Mode) {
		err := b.Render(ctx, target, frame)
		if err == nil {
			r.setLast(b.Name())
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !errors.Is(err, ErrFallbackToCPU) {
			Logger().Warn("fractal: backend render failed, using CPU",
				"backend", b.Name(), "mode", frame.Mode, "err", err)
		}
	}

	if err := r.cpu.render(ctx, target, frame); err != nil {
		return fmt.Errorf("fractal: cpu render: %w", err)
	}
	r.setLast(cpuBackendName)
	return nil
}

// LastBackend returns the name of the path that rendered the most recent
// frame ("cpu" or the backend name).
func (r *Renderer) LastBackend() string {
	return *r.lastBackend.Load()
}

// Close stops the CPU workers. Later renders return ErrRendererClosed.
// A backend registered globally stays open; close it with CloseBackend.
func (r *Renderer) Close() {
	r.closed.Store(true)
	r.cpu.close()
}

func (r *Renderer) backend() Backend {
	if r.opts.cpuOnly {
		return nil
	}
	if r.opts.backend != nil {
		return r.opts.backend
	}
	return ActiveBackend()
}

func (r *Renderer) setLast(name string) {
	r.lastBackend.Store(&name)
}
