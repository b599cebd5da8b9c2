//go:build !nogpu

// Package gpu registers the wgpu rendering backend.
//
// Import this package to render fractal frames on the GPU. Both the
// fullscreen-quad pixel shader path and the compute path are provided by
// the same engine; the frame's RenderMode selects between them.
//
// If GPU initialization fails (no Vulkan/Metal/DX12 available, or only a
// software adapter), registration is skipped and rendering falls back to
// the CPU evaluator.
//
// Usage:
//
//	import _ "github.com/gogpu/fractal/gpu" // enable GPU rendering
package gpu

import (
	"errors"

	_ "github.com/gogpu/wgpu/hal/allbackends"

	"github.com/gogpu/fractal"
	gpuimpl "github.com/gogpu/fractal/internal/gpu"
	"github.com/gogpu/fractal/shaders"
)

// Stats is a snapshot of the registered engine's counters.
type Stats = gpuimpl.Stats

func init() {
	engine := gpuimpl.NewEngine(nil)
	if err := fractal.RegisterBackend(engine); err != nil {
		if errors.Is(err, fractal.ErrFallbackToCPU) {
			fractal.Logger().Info("GPU backend disabled, using CPU", "err", err)
			return
		}
		fractal.Logger().Warn("GPU backend not available", "err", err)
	}
}

// SetDeviceProvider configures the GPU backend to use a shared GPU device
// from an external provider (e.g., a gogpu window). This avoids creating a
// second device next to the window's own.
//
// The provider must be a gpucontext.DeviceProvider whose Device is a
// *wgpu.Device. When no GPU backend is registered (standalone init failed)
// a fresh engine is registered on the shared device.
func SetDeviceProvider(provider any) error {
	if _, ok := fractal.ActiveBackend().(*gpuimpl.Engine); ok {
		return fractal.SetBackendDeviceProvider(provider)
	}
	engine := gpuimpl.NewEngine(nil)
	if err := engine.SetDeviceProvider(provider); err != nil {
		return err
	}
	return fractal.RegisterBackend(engine)
}

// UseLibrary replaces the registered engine with one compiling from lib,
// so that edits picked up by lib.Watch reach the GPU pipelines. The engine
// keeps sharing provider's device when provider is not nil.
func UseLibrary(lib *shaders.Library, provider any) error {
	engine := gpuimpl.NewEngine(lib)
	if provider != nil {
		if err := engine.SetDeviceProvider(provider); err != nil {
			return err
		}
	}
	return fractal.RegisterBackend(engine)
}

// EngineStats returns the counters of the registered GPU engine. ok is
// false when the active backend is not the GPU engine.
func EngineStats() (s Stats, ok bool) {
	e, ok := fractal.ActiveBackend().(*gpuimpl.Engine)
	if !ok {
		return Stats{}, false
	}
	return e.Stats(), true
}
