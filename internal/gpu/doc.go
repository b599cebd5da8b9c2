//go:build !nogpu

// Package gpu renders fractal frames with WebGPU through gogpu/wgpu.
//
// The Engine implements fractal.Backend. It owns three pipelines built from
// the shaders package:
//
//   - quad: a fullscreen quad whose fragment shader evaluates the fractal
//     (pixel-shader path, with a Depth32Float attachment cleared to 1.0)
//   - compute: one 8x8 workgroup per tile writing an rgba8unorm storage
//     texture
//   - present: a fullscreen quad sampling that texture back onto the
//     color target
//
// Every frame ends with a texture-to-buffer copy and a mapped readback into
// the caller's fractal.Target, so GPU output and CPU reference output are
// interchangeable.
//
// The package is blank-imported through github.com/gogpu/fractal/gpu and is
// excluded by the nogpu build tag.
package gpu
