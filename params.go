package fractal

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is wrapped by every Params validation error.
var ErrInvalidParams = errors.New("fractal: invalid params")

// Parameter limits.
const (
	MinIterations = 1
	MaxIterations = 10000
	MinBailout    = 2.0
	MaxSteps      = 512
	MinPower      = 2.0
	MaxPower      = 16.0
)

// Params holds every tunable value of a frame. It is plain data: the overlay
// mutates fields in place and the renderer snapshots it per frame.
type Params struct {
	Kind Kind `toml:"kind"`

	// Center is the complex-plane point at the middle of the screen.
	Center [2]float64 `toml:"center"`

	// Zoom scales the view: the visible height spans 2/Zoom units.
	Zoom float64 `toml:"zoom"`

	MaxIter int     `toml:"max_iter"`
	Bailout float64 `toml:"bailout"`

	// JuliaC is the fixed c of the Julia set.
	JuliaC [2]float64 `toml:"julia_c"`

	// Power is the Mandelbulb exponent.
	Power float64 `toml:"power"`

	// MaxSteps bounds the raymarch loop; Epsilon is the surface distance.
	MaxSteps int     `toml:"max_steps"`
	Epsilon  float64 `toml:"epsilon"`

	Camera Camera `toml:"camera"`

	Palette    Palette `toml:"palette"`
	ColorShift float64 `toml:"color_shift"`
	Exposure   float64 `toml:"exposure"`
	Smooth     bool    `toml:"smooth"`

	AnimateJulia bool `toml:"animate_julia"`
	AutoRotate   bool `toml:"auto_rotate"`
}

// DefaultParams returns a well-framed starting point for kind.
func DefaultParams(kind Kind) Params {
	p := Params{
		Kind:     kind,
		Zoom:     1,
		MaxIter:  256,
		Bailout:  4,
		JuliaC:   [2]float64{-0.8, 0.156},
		Power:    8,
		MaxSteps: 128,
		Epsilon:  0.001,
		Camera:   DefaultCamera(),
		Palette:  builtinPalettes[0],
		Exposure: 1,
		Smooth:   true,
	}
	switch kind {
	case Mandelbrot:
		p.Center = [2]float64{-0.5, 0}
		p.Zoom = 0.8
	case BurningShip:
		p.Center = [2]float64{-0.45, -0.5}
		p.Zoom = 0.7
		p.Palette = builtinPalettes[2]
	case Tricorn:
		p.Zoom = 0.8
		p.Palette = builtinPalettes[1]
	case Julia:
		p.Zoom = 0.9
		p.Palette = builtinPalettes[3]
	case Mandelbulb:
		p.MaxIter = 8
		p.Bailout = 2
	}
	return p
}

// Validate reports the first out-of-range field. Errors wrap ErrInvalidParams.
func (p Params) Validate() error {
	switch {
	case !p.Kind.Valid():
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidParams, uint32(p.Kind))
	case !(p.Zoom > 0) || math.IsInf(p.Zoom, 0):
		return fmt.Errorf("%w: zoom must be positive and finite, got %v", ErrInvalidParams, p.Zoom)
	case p.MaxIter < MinIterations || p.MaxIter > MaxIterations:
		return fmt.Errorf("%w: max_iter %d outside [%d, %d]", ErrInvalidParams, p.MaxIter, MinIterations, MaxIterations)
	case !(p.Bailout >= MinBailout):
		return fmt.Errorf("%w: bailout must be >= %v, got %v", ErrInvalidParams, MinBailout, p.Bailout)
	case !finite2(p.Center) || !finite2(p.JuliaC):
		return fmt.Errorf("%w: center and julia_c must be finite", ErrInvalidParams)
	case !finite(p.Exposure) || !finite(p.ColorShift):
		return fmt.Errorf("%w: exposure and color_shift must be finite", ErrInvalidParams)
	case !p.Camera.finite():
		return fmt.Errorf("%w: camera fields must be finite", ErrInvalidParams)
	}
	if p.Kind.Is3D() {
		switch {
		case p.Power < MinPower || p.Power > MaxPower:
			return fmt.Errorf("%w: power %v outside [%v, %v]", ErrInvalidParams, p.Power, MinPower, MaxPower)
		case p.MaxSteps < 1 || p.MaxSteps > MaxSteps:
			return fmt.Errorf("%w: max_steps %d outside [1, %d]", ErrInvalidParams, p.MaxSteps, MaxSteps)
		case !(p.Epsilon > 0):
			return fmt.Errorf("%w: epsilon must be positive, got %v", ErrInvalidParams, p.Epsilon)
		}
	}
	return nil
}

// Clamped returns a copy of p with every numeric field forced into range.
// Non-finite values are replaced by the kind's defaults.
func (p Params) Clamped() Params {
	if !p.Kind.Valid() {
		p.Kind = Mandelbrot
	}
	def := DefaultParams(p.Kind)
	if !(p.Zoom > 0) || math.IsInf(p.Zoom, 0) {
		p.Zoom = def.Zoom
	}
	p.MaxIter = min(max(p.MaxIter, MinIterations), MaxIterations)
	if !(p.Bailout >= MinBailout) {
		p.Bailout = MinBailout
	}
	if !finite2(p.Center) {
		p.Center = def.Center
	}
	if !finite2(p.JuliaC) {
		p.JuliaC = def.JuliaC
	}
	if math.IsNaN(p.Power) {
		p.Power = def.Power
	}
	p.Power = min(max(p.Power, MinPower), MaxPower)
	p.MaxSteps = min(max(p.MaxSteps, 1), MaxSteps)
	if !(p.Epsilon > 0) {
		p.Epsilon = def.Epsilon
	}
	if !(p.Exposure > 0) || math.IsInf(p.Exposure, 0) {
		p.Exposure = def.Exposure
	}
	if !finite(p.ColorShift) {
		p.ColorShift = def.ColorShift
	}
	p.Camera = p.Camera.clamped()
	return p
}

// PixelToPlane maps a pixel center to the complex plane. The shorter screen
// axis spans 2/Zoom units so the view keeps its aspect ratio.
func (p Params) PixelToPlane(x, y float64, width, height int) (re, im float64) {
	w, h := float64(width), float64(height)
	scale := 2 / (p.Zoom * math.Min(w, h))
	re = p.Center[0] + (x+0.5-w/2)*scale
	im = p.Center[1] - (y+0.5-h/2)*scale
	return re, im
}

// Pan moves the center by a screen-space delta in pixels.
func (p *Params) Pan(dx, dy float64, width, height int) {
	scale := 2 / (p.Zoom * math.Min(float64(width), float64(height)))
	p.Center[0] -= dx * scale
	p.Center[1] += dy * scale
}

// ZoomAt multiplies Zoom by factor keeping the plane point under pixel
// (x, y) fixed on screen.
func (p *Params) ZoomAt(factor, x, y float64, width, height int) {
	if !(factor > 0) {
		return
	}
	re0, im0 := p.PixelToPlane(x, y, width, height)
	p.Zoom *= factor
	re1, im1 := p.PixelToPlane(x, y, width, height)
	p.Center[0] += re0 - re1
	p.Center[1] += im0 - im1
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finite2(v [2]float64) bool {
	return finite(v[0]) && finite(v[1])
}
