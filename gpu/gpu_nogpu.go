//go:build nogpu

// Package gpu registers the wgpu rendering backend. This build was
// compiled with the nogpu tag, so every frame renders on the CPU.
package gpu

import (
	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/shaders"
)

// Stats is a snapshot of the GPU engine's counters.
type Stats struct {
	Frames        uint64
	LastMode      fractal.RenderMode
	Adapter       string
	ShaderVersion uint64
}

// SetDeviceProvider is a no-op without GPU support.
func SetDeviceProvider(any) error { return nil }

// UseLibrary is a no-op without GPU support.
func UseLibrary(*shaders.Library, any) error { return nil }

// EngineStats always reports false without GPU support.
func EngineStats() (Stats, bool) { return Stats{}, false }
