// Package fractal renders escape-time and raymarched fractals.
//
// # Overview
//
// fractal evaluates 2D escape-time sets (Mandelbrot, Julia, Burning Ship,
// Tricorn) and the 3D Mandelbulb. A frame is described by plain [Params]
// that an interactive overlay can mutate directly, packed into a fixed
// 160-byte [Uniforms] block for the GPU, and rendered either by a registered
// GPU [Backend] or by the tile-parallel CPU evaluator.
//
// # Quick Start
//
//	import "github.com/gogpu/fractal"
//
//	r := fractal.NewRenderer()
//	defer r.Close()
//
//	img, err := r.Render(ctx, fractal.Frame{
//	    Params: fractal.DefaultParams(fractal.Mandelbrot),
//	    Width:  800,
//	    Height: 600,
//	})
//
// # Render Modes
//
// Two GPU paths exist:
//   - [ModeRaster]: a fullscreen quad whose pixel shader evaluates the fractal
//   - [ModeCompute]: a compute shader writes an off-screen texture that a
//     second quad pass samples
//
// Both evaluate the same WGSL code, and the CPU path mirrors that code, so all
// three produce the same picture up to float precision.
//
// # GPU Acceleration
//
// GPU rendering is opt-in via blank import:
//
//	import _ "github.com/gogpu/fractal/gpu"
//
// Without it, or when no adapter is available, rendering falls back to CPU.
//
// # Logging
//
// fractal is silent by default. Call [SetLogger] to enable diagnostics.
package fractal
