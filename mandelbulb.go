package fractal

import (
	"math"
)

// maxRayDistance ends a ray that left the scene.
const maxRayDistance = 20.0

// background is the clear color behind 3D fractals.
var background = Vec3{0.1, 0.1, 0.15}

// lightDir is the normalized direction towards the key light.
var lightDir = normalize(Vec3{0.6, 0.8, 0.4})

// MandelbulbDE returns a lower bound on the distance from p to the power-n
// Mandelbulb using the analytic derivative 0.5*ln(r)*r/dr.
func MandelbulbDE(p Vec3, power float64, iters int, bailout float64) float64 {
	z := p
	dr := 1.0
	r := 0.0
	for range iters {
		r = length(z)
		if r > bailout {
			break
		}
		if r == 0 {
			// the origin is inside the set
			return 0
		}
		theta := math.Acos(clampf(z[2]/r, -1, 1))
		phi := math.Atan2(z[1], z[0])
		dr = math.Pow(r, power-1)*power*dr + 1

		zr := math.Pow(r, power)
		theta *= power
		phi *= power
		st := math.Sin(theta)
		z = Vec3{
			zr*st*math.Cos(phi) + p[0],
			zr*st*math.Sin(phi) + p[1],
			zr*math.Cos(theta) + p[2],
		}
	}
	if r == 0 {
		return 0
	}
	return 0.5 * math.Log(r) * r / dr
}

// RayHit is the result of a raymarch.
type RayHit struct {
	Hit      bool
	Steps    int
	Distance float64
	Position Vec3
}

// Raymarch sphere-traces the Mandelbulb from origin ro along unit direction rd.
func (p Params) Raymarch(ro, rd Vec3) RayHit {
	t := 0.0
	for i := range p.MaxSteps {
		pos := add(ro, scale(rd, t))
		d := MandelbulbDE(pos, p.Power, p.MaxIter, p.Bailout)
		if d < p.Epsilon {
			return RayHit{Hit: true, Steps: i, Distance: t, Position: pos}
		}
		t += d
		if t > maxRayDistance {
			return RayHit{Steps: i, Distance: t}
		}
	}
	return RayHit{Steps: p.MaxSteps, Distance: t}
}

// Normal estimates the surface normal at pos by central differences.
func (p Params) Normal(pos Vec3) Vec3 {
	h := p.Epsilon
	de := func(q Vec3) float64 { return MandelbulbDE(q, p.Power, p.MaxIter, p.Bailout) }
	return normalize(Vec3{
		de(Vec3{pos[0] + h, pos[1], pos[2]}) - de(Vec3{pos[0] - h, pos[1], pos[2]}),
		de(Vec3{pos[0], pos[1] + h, pos[2]}) - de(Vec3{pos[0], pos[1] - h, pos[2]}),
		de(Vec3{pos[0], pos[1], pos[2] + h}) - de(Vec3{pos[0], pos[1], pos[2] - h}),
	})
}

// CameraRay returns the world-space ray through pixel (x, y).
func (p Params) CameraRay(x, y float64, width, height int) (ro, rd Vec3) {
	forward, right, up := p.Camera.Basis()
	tanHalf := float64(p.Camera.TanHalfFOV())
	half := float64(height) / 2
	u := (x + 0.5 - float64(width)/2) / half
	v := (half - (y + 0.5)) / half

	eye := p.Camera.Eye()
	ro = Vec3{float64(eye[0]), float64(eye[1]), float64(eye[2])}
	for i := range rd {
		rd[i] = float64(forward[i]) + (u*float64(right[i])+v*float64(up[i]))*tanHalf
	}
	return ro, normalize(rd)
}

// shade3D lights a raymarch result: Lambert diffuse plus ambient, darkened
// by the step count as a cheap occlusion term.
func (p Params) shade3D(hit RayHit) Vec3 {
	if !hit.Hit {
		return background
	}
	n := p.Normal(hit.Position)
	diffuse := math.Max(dot(n, lightDir), 0)
	ao := 1 - float64(hit.Steps)/float64(p.MaxSteps)
	base := p.Palette.Eval(length(hit.Position)*0.8 + p.ColorShift)
	k := (0.25 + 0.75*diffuse) * ao * p.Exposure
	return scale(base, k)
}

func add(a, b Vec3) Vec3           { return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func scale(a Vec3, s float64) Vec3 { return Vec3{a[0] * s, a[1] * s, a[2] * s} }
func dot(a, b Vec3) float64        { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func length(a Vec3) float64        { return math.Sqrt(dot(a, a)) }

func normalize(a Vec3) Vec3 {
	l := length(a)
	if l == 0 {
		return a
	}
	return scale(a, 1/l)
}

func clampf(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
