package fractal

import (
	"github.com/chewxy/math32"
)

// Camera limits.
const (
	MinCameraDistance = 1.2
	MaxCameraDistance = 20.0
	maxPitch          = 89 * math32.Pi / 180
)

// Camera is an orbit camera looking at Target from Distance along the
// direction given by Yaw and Pitch (radians). FOV is the vertical field of
// view in degrees.
//
// The camera works in float32 because that is what the GPU receives.
type Camera struct {
	Target   [3]float32 `toml:"target"`
	Yaw      float32    `toml:"yaw"`
	Pitch    float32    `toml:"pitch"`
	Distance float32    `toml:"distance"`
	FOV      float32    `toml:"fov"`
}

// DefaultCamera frames the unit Mandelbulb.
func DefaultCamera() Camera {
	return Camera{
		Yaw:      0.6,
		Pitch:    0.35,
		Distance: 2.8,
		FOV:      45,
	}
}

// Eye returns the camera position in world space.
func (c Camera) Eye() [3]float32 {
	cp := math32.Cos(c.Pitch)
	return [3]float32{
		c.Target[0] + c.Distance*cp*math32.Sin(c.Yaw),
		c.Target[1] + c.Distance*math32.Sin(c.Pitch),
		c.Target[2] + c.Distance*cp*math32.Cos(c.Yaw),
	}
}

// Basis returns the orthonormal forward, right and up vectors.
func (c Camera) Basis() (forward, right, up [3]float32) {
	eye := c.Eye()
	forward = normalize3(sub3(c.Target, eye))
	right = normalize3(cross3(forward, [3]float32{0, 1, 0}))
	up = cross3(right, forward)
	return forward, right, up
}

// TanHalfFOV returns tan(FOV/2), the scale applied to screen coordinates.
func (c Camera) TanHalfFOV() float32 {
	fov := c.FOV
	if fov <= 0 || fov >= 180 {
		fov = 45
	}
	return math32.Tan(fov * math32.Pi / 360)
}

// Orbit rotates the camera around its target. Pitch is clamped short of
// the poles so the basis stays well defined.
func (c *Camera) Orbit(dyaw, dpitch float32) {
	c.Yaw = math32.Mod(c.Yaw+dyaw, 2*math32.Pi)
	c.Pitch = clamp32(c.Pitch+dpitch, -maxPitch, maxPitch)
}

// Dolly scales the distance to the target by factor.
func (c *Camera) Dolly(factor float32) {
	if factor <= 0 {
		return
	}
	c.Distance = clamp32(c.Distance*factor, MinCameraDistance, MaxCameraDistance)
}

// finite reports whether every field of c is a finite number.
func (c Camera) finite() bool {
	for _, v := range [...]float32{c.Target[0], c.Target[1], c.Target[2], c.Yaw, c.Pitch, c.Distance, c.FOV} {
		if !finite32(v) {
			return false
		}
	}
	return true
}

// clamped returns c with every field inside its legal range. Non-finite
// fields take their default value.
func (c Camera) clamped() Camera {
	def := DefaultCamera()
	for i, v := range c.Target {
		if !finite32(v) {
			c.Target[i] = def.Target[i]
		}
	}
	if !finite32(c.Yaw) {
		c.Yaw = def.Yaw
	}
	if !finite32(c.Pitch) {
		c.Pitch = def.Pitch
	}
	if !finite32(c.Distance) {
		c.Distance = def.Distance
	}
	if !finite32(c.FOV) {
		c.FOV = def.FOV
	}
	c.Pitch = clamp32(c.Pitch, -maxPitch, maxPitch)
	c.Distance = clamp32(c.Distance, MinCameraDistance, MaxCameraDistance)
	if c.FOV <= 0 || c.FOV >= 180 {
		c.FOV = 45
	}
	return c
}

func finite32(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

func clamp32(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}

func sub3(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func cross3(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize3(v [3]float32) [3]float32 {
	l := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l == 0 {
		return v
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}
