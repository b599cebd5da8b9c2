// Command fractal views and renders escape-time and raymarched fractals.
//
// Usage:
//
//	fractal view --kind julia --mode compute
//	fractal render --preset "seahorse valley" --out seahorse.png
//	fractal render --all out/
//	fractal presets
//	fractal shaders validate
//	fractal shaders translate --target msl quad
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
