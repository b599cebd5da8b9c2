package fractal

import (
	"fmt"
	"image/color"
	"math"
	"slices"
)

// Vec3 is a float64 RGB or XYZ triple.
type Vec3 [3]float64

// Palette is a cosine gradient: color(t) = A + B*cos(2*pi*(C*t + D)),
// evaluated per channel. Values are linear [0, 1] before clamping.
type Palette struct {
	Name string `toml:"name"`
	A    Vec3   `toml:"a"`
	B    Vec3   `toml:"b"`
	C    Vec3   `toml:"c"`
	D    Vec3   `toml:"d"`
}

var builtinPalettes = []Palette{
	{Name: "classic", A: Vec3{0.5, 0.5, 0.5}, B: Vec3{0.5, 0.5, 0.5}, C: Vec3{1, 1, 1}, D: Vec3{0.0, 0.10, 0.20}},
	{Name: "rainbow", A: Vec3{0.5, 0.5, 0.5}, B: Vec3{0.5, 0.5, 0.5}, C: Vec3{1, 1, 1}, D: Vec3{0.0, 0.33, 0.67}},
	{Name: "fire", A: Vec3{0.5, 0.3, 0.1}, B: Vec3{0.5, 0.4, 0.2}, C: Vec3{1, 1, 1}, D: Vec3{0.0, 0.15, 0.20}},
	{Name: "ocean", A: Vec3{0.2, 0.4, 0.6}, B: Vec3{0.2, 0.3, 0.4}, C: Vec3{1, 1, 1}, D: Vec3{0.5, 0.4, 0.3}},
	{Name: "neon", A: Vec3{0.5, 0.5, 0.5}, B: Vec3{0.5, 0.5, 0.5}, C: Vec3{2, 1, 0}, D: Vec3{0.5, 0.20, 0.25}},
	{Name: "mono", A: Vec3{0.5, 0.5, 0.5}, B: Vec3{0.5, 0.5, 0.5}, C: Vec3{1, 1, 1}, D: Vec3{0, 0, 0}},
}

// Palettes returns a copy of the built-in palettes.
func Palettes() []Palette {
	return slices.Clone(builtinPalettes)
}

// PaletteNames returns the names of the built-in palettes in order.
func PaletteNames() []string {
	names := make([]string, len(builtinPalettes))
	for i, p := range builtinPalettes {
		names[i] = p.Name
	}
	return names
}

// PaletteByName looks up a built-in palette.
func PaletteByName(name string) (Palette, error) {
	for _, p := range builtinPalettes {
		if p.Name == name {
			return p, nil
		}
	}
	return Palette{}, fmt.Errorf("fractal: unknown palette %q", name)
}

// PaletteIndex returns the index of the named built-in palette, or -1.
func PaletteIndex(name string) int {
	return slices.IndexFunc(builtinPalettes, func(p Palette) bool { return p.Name == name })
}

// Eval returns the unclamped linear color at t.
func (p Palette) Eval(t float64) Vec3 {
	var out Vec3
	for i := range out {
		out[i] = p.A[i] + p.B[i]*math.Cos(2*math.Pi*(p.C[i]*t+p.D[i]))
	}
	return out
}

// At returns the palette color at t as an opaque 8-bit color.
func (p Palette) At(t float64) color.NRGBA {
	return toNRGBA(p.Eval(t))
}

func toNRGBA(c Vec3) color.NRGBA {
	return color.NRGBA{R: unorm8(c[0]), G: unorm8(c[1]), B: unorm8(c[2]), A: 255}
}

// unorm8 converts [0,1] to a byte the way an rgba8unorm store does:
// clamp, scale by 255, round to nearest.
func unorm8(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
