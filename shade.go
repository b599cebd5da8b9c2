package fractal

import (
	"image/color"
)

// ShadePixel evaluates pixel (x, y) of a frame exactly as the fragment and
// compute shaders do.
func ShadePixel(f Frame, x, y int) color.NRGBA {
	p := f.Params
	fx, fy := float64(x), float64(y)
	if p.Kind.Is3D() {
		ro, rd := p.CameraRay(fx, fy, f.Width, f.Height)
		return toNRGBA(p.shade3D(p.Raymarch(ro, rd)))
	}
	n, mu := p.EscapePixel(fx, fy, f.Width, f.Height)
	return toNRGBA(p.shade2D(n, mu))
}
