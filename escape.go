package fractal

import (
	"math"
)

// colorScale converts smooth iteration counts into palette coordinates.
const colorScale = 0.05

// Escape iterates the kind's map from z until |z| exceeds bailout or maxIter
// iterations pass. It returns the iteration count n and the smooth
// (continuous) count mu = n + 1 - log2(ln|z|). Points that never escape
// return n == maxIter and mu == maxIter.
//
// Escape handles only the 2D kinds; any other kind returns (0, 0).
func Escape(kind Kind, z, c complex128, maxIter int, bailout float64) (n int, mu float64) {
	if !kind.Valid() || kind.Is3D() {
		return 0, 0
	}
	zr, zi := real(z), imag(z)
	cr, ci := real(c), imag(c)
	b2 := bailout * bailout

	for n = 0; n < maxIter; n++ {
		r2 := zr*zr + zi*zi
		if r2 > b2 {
			return n, smoothCount(n, r2)
		}
		switch kind {
		case Mandelbrot, Julia:
			zr, zi = zr*zr-zi*zi+cr, 2*zr*zi+ci
		case BurningShip:
			ar, ai := math.Abs(zr), math.Abs(zi)
			zr, zi = ar*ar-ai*ai+cr, 2*ar*ai+ci
		case Tricorn:
			zr, zi = zr*zr-zi*zi+cr, -2*zr*zi+ci
		}
	}
	if r2 := zr*zr + zi*zi; r2 > b2 {
		return n, smoothCount(n, r2)
	}
	return maxIter, float64(maxIter)
}

// smoothCount is the normalized iteration count for a quadratic map.
func smoothCount(n int, r2 float64) float64 {
	// ln|z| = ln(r2)/2
	return float64(n) + 1 - math.Log2(math.Log(r2)/2)
}

// EscapePixel evaluates pixel (x, y) of a 2D kind and returns n and mu.
func (p Params) EscapePixel(x, y float64, width, height int) (n int, mu float64) {
	re, im := p.PixelToPlane(x, y, width, height)
	pt := complex(re, im)
	switch p.Kind {
	case Julia:
		return Escape(p.Kind, pt, complex(p.JuliaC[0], p.JuliaC[1]), p.MaxIter, p.Bailout)
	default:
		return Escape(p.Kind, 0, pt, p.MaxIter, p.Bailout)
	}
}

// shade2D maps an escape result to a color. Interior points are black.
func (p Params) shade2D(n int, mu float64) Vec3 {
	if n >= p.MaxIter {
		return Vec3{}
	}
	t := float64(n)
	if p.Smooth {
		t = mu
	}
	c := p.Palette.Eval(t*colorScale + p.ColorShift)
	for i := range c {
		c[i] *= p.Exposure
	}
	return c
}
