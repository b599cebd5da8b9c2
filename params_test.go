package fractal

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultParamsValid(t *testing.T) {
	for _, k := range Kinds() {
		if err := DefaultParams(k).Validate(); err != nil {
			t.Errorf("DefaultParams(%v).Validate() = %v", k, err)
		}
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"unknown kind", func(p *Params) { p.Kind = 17 }},
		{"zero zoom", func(p *Params) { p.Zoom = 0 }},
		{"infinite zoom", func(p *Params) { p.Zoom = math.Inf(1) }},
		{"no iterations", func(p *Params) { p.MaxIter = 0 }},
		{"too many iterations", func(p *Params) { p.MaxIter = MaxIterations + 1 }},
		{"small bailout", func(p *Params) { p.Bailout = 1 }},
		{"nan center", func(p *Params) { p.Center[1] = math.NaN() }},
		{"nan julia", func(p *Params) { p.JuliaC[0] = math.NaN() }},
		{"infinite exposure", func(p *Params) { p.Exposure = math.Inf(1) }},
		{"nan color shift", func(p *Params) { p.ColorShift = math.NaN() }},
		{"nan camera pitch", func(p *Params) { p.Camera.Pitch = float32(math.NaN()) }},
		{"infinite camera target", func(p *Params) { p.Camera.Target[2] = float32(math.Inf(-1)) }},
		{"nan camera fov", func(p *Params) { p.Camera.FOV = float32(math.NaN()) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams(Julia)
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidParams) {
				t.Errorf("Validate() = %v, want ErrInvalidParams", err)
			}
		})
	}
}

func TestParamsValidate3D(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"low power", func(p *Params) { p.Power = 1 }},
		{"high power", func(p *Params) { p.Power = 20 }},
		{"no steps", func(p *Params) { p.MaxSteps = 0 }},
		{"zero epsilon", func(p *Params) { p.Epsilon = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams(Mandelbulb)
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidParams) {
				t.Errorf("Validate() = %v, want ErrInvalidParams", err)
			}
		})
	}

	// 3D-only fields are ignored for 2D kinds.
	p := DefaultParams(Mandelbrot)
	p.Power = 0
	if err := p.Validate(); err != nil {
		t.Errorf("2D params with zero power: %v", err)
	}
}

func TestParamsClamped(t *testing.T) {
	p := Params{
		Kind:     99,
		Zoom:     -1,
		MaxIter:  1 << 20,
		Bailout:  math.NaN(),
		Center:   [2]float64{math.Inf(1), 0},
		Power:    100,
		MaxSteps: -4,
		Epsilon:  0,
	}
	got := p.Clamped()
	if err := got.Validate(); err != nil {
		t.Fatalf("Clamped().Validate() = %v", err)
	}
	if got.Kind != Mandelbrot {
		t.Errorf("Kind = %v, want mandelbrot", got.Kind)
	}
	if got.MaxIter != MaxIterations {
		t.Errorf("MaxIter = %d, want %d", got.MaxIter, MaxIterations)
	}
	if got.Power != MaxPower {
		t.Errorf("Power = %v, want %v", got.Power, MaxPower)
	}
	if got.Center != DefaultParams(Mandelbrot).Center {
		t.Errorf("Center = %v, want default", got.Center)
	}
}

func TestParamsClampedNonFinite(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)
	p := DefaultParams(Mandelbulb)
	p.Exposure = inf
	p.ColorShift = nan
	p.Camera.Target = [3]float32{float32(nan), 0, 0}
	p.Camera.Yaw = float32(inf)
	p.Camera.Pitch = float32(nan)
	p.Camera.Distance = float32(nan)
	p.Camera.FOV = float32(-inf)

	got := p.Clamped()
	if err := got.Validate(); err != nil {
		t.Fatalf("Clamped().Validate() = %v", err)
	}
	def := DefaultParams(Mandelbulb)
	if got.Exposure != def.Exposure {
		t.Errorf("Exposure = %v, want %v", got.Exposure, def.Exposure)
	}
	if got.ColorShift != def.ColorShift {
		t.Errorf("ColorShift = %v, want %v", got.ColorShift, def.ColorShift)
	}
	if got.Camera != def.Camera {
		t.Errorf("Camera = %+v, want %+v", got.Camera, def.Camera)
	}
}

func TestPixelToPlane(t *testing.T) {
	p := DefaultParams(Mandelbrot)
	p.Center = [2]float64{-0.5, 0.25}
	p.Zoom = 2

	// The exact middle of an even-sized frame sits between pixel centers.
	re, im := p.PixelToPlane(49.5, 49.5, 100, 100)
	if math.Abs(re+0.5) > 1e-12 || math.Abs(im-0.25) > 1e-12 {
		t.Errorf("center maps to (%v, %v), want (-0.5, 0.25)", re, im)
	}

	// The shorter axis spans 2/Zoom units; y grows downwards on screen.
	reL, imT := p.PixelToPlane(-0.5, -0.5, 200, 100)
	if math.Abs(reL-(-0.5-1.0)) > 1e-12 {
		t.Errorf("left edge re = %v, want -1.5", reL)
	}
	if math.Abs(imT-(0.25+0.5)) > 1e-12 {
		t.Errorf("top edge im = %v, want 0.75", imT)
	}
}

func TestZoomAtKeepsCursorFixed(t *testing.T) {
	p := DefaultParams(Mandelbrot)
	const w, h = 640, 480
	re0, im0 := p.PixelToPlane(100, 50, w, h)

	p.ZoomAt(3, 100, 50, w, h)
	re1, im1 := p.PixelToPlane(100, 50, w, h)

	if math.Abs(re0-re1) > 1e-12 || math.Abs(im0-im1) > 1e-12 {
		t.Errorf("point under cursor moved: (%v,%v) -> (%v,%v)", re0, im0, re1, im1)
	}
	if math.Abs(p.Zoom-2.4) > 1e-12 {
		t.Errorf("Zoom = %v, want 2.4", p.Zoom)
	}

	before := p.Zoom
	p.ZoomAt(0, 1, 1, w, h)
	if p.Zoom != before {
		t.Error("ZoomAt with a non-positive factor must not change zoom")
	}
}

func TestPan(t *testing.T) {
	p := DefaultParams(Julia)
	p.Center = [2]float64{0, 0}
	p.Zoom = 1
	// Dragging right by half the height moves the view left by one unit.
	p.Pan(50, 0, 100, 100)
	if math.Abs(p.Center[0]+1) > 1e-12 || p.Center[1] != 0 {
		t.Errorf("Center = %v, want (-1, 0)", p.Center)
	}
}

func TestCameraOrbitClamps(t *testing.T) {
	c := DefaultCamera()
	c.Orbit(0, 10)
	if c.Pitch > maxPitch {
		t.Errorf("Pitch = %v, want <= %v", c.Pitch, maxPitch)
	}
	c.Dolly(100)
	if c.Distance != MaxCameraDistance {
		t.Errorf("Distance = %v, want %v", c.Distance, MaxCameraDistance)
	}
	c.Dolly(0.0001)
	if c.Distance != MinCameraDistance {
		t.Errorf("Distance = %v, want %v", c.Distance, MinCameraDistance)
	}
}

func TestCameraBasisOrthonormal(t *testing.T) {
	c := DefaultCamera()
	f, r, u := c.Basis()
	dot := func(a, b [3]float32) float64 {
		return float64(a[0]*b[0] + a[1]*b[1] + a[2]*b[2])
	}
	for name, v := range map[string]float64{
		"f.f": dot(f, f), "r.r": dot(r, r), "u.u": dot(u, u),
	} {
		if math.Abs(v-1) > 1e-5 {
			t.Errorf("%s = %v, want 1", name, v)
		}
	}
	for name, v := range map[string]float64{
		"f.r": dot(f, r), "f.u": dot(f, u), "r.u": dot(r, u),
	} {
		if math.Abs(v) > 1e-5 {
			t.Errorf("%s = %v, want 0", name, v)
		}
	}

	eye := c.Eye()
	d := math.Sqrt(float64(eye[0]*eye[0] + eye[1]*eye[1] + eye[2]*eye[2]))
	if math.Abs(d-float64(c.Distance)) > 1e-5 {
		t.Errorf("|eye| = %v, want %v", d, c.Distance)
	}
}

func TestPalette(t *testing.T) {
	if len(Palettes()) != len(PaletteNames()) {
		t.Fatal("Palettes and PaletteNames disagree")
	}
	mono, err := PaletteByName("mono")
	if err != nil {
		t.Fatal(err)
	}
	// mono: 0.5 + 0.5*cos(2*pi*t) is white at t=0 and black at t=0.5.
	if c := mono.At(0); c.R != 255 || c.G != 255 || c.B != 255 || c.A != 255 {
		t.Errorf("mono.At(0) = %v, want white", c)
	}
	if c := mono.At(0.5); c.R != 0 || c.G != 0 || c.B != 0 {
		t.Errorf("mono.At(0.5) = %v, want black", c)
	}
	if _, err := PaletteByName("plaid"); err == nil {
		t.Error("unknown palette should fail")
	}
	if PaletteIndex("fire") != 2 || PaletteIndex("plaid") != -1 {
		t.Error("PaletteIndex returned the wrong index")
	}
}

func TestUnorm8(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{-1, 0},
		{math.NaN(), 0},
		{0, 0},
		{0.5, 128},
		{1, 255},
		{7, 255},
	}
	for _, tt := range tests {
		if got := unorm8(tt.in); got != tt.want {
			t.Errorf("unorm8(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
