package fractal

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestUniformsSize(t *testing.T) {
	f := Frame{Params: DefaultParams(Mandelbulb), Width: 640, Height: 480, Time: 1.5}
	b := NewUniforms(f).Bytes()
	if len(b) != UniformsSize {
		t.Fatalf("len(Bytes()) = %d, want %d", len(b), UniformsSize)
	}
	if UniformsSize%16 != 0 {
		t.Errorf("UniformsSize %d is not 16-byte aligned", UniformsSize)
	}
}

func TestUniformsLayout(t *testing.T) {
	p := DefaultParams(Julia)
	p.Center = [2]float64{0.25, -0.75}
	p.Zoom = 3
	p.MaxIter = 500
	p.JuliaC = [2]float64{-0.4, 0.6}
	p.Bailout = 8
	p.ColorShift = 0.125
	p.Exposure = 1.5
	p.MaxSteps = 64
	p.Smooth = true
	f := Frame{Params: p, Width: 800, Height: 600, Time: 2.5}

	b := NewUniforms(f).Bytes()
	f32 := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b[off:])) }
	u32 := func(off int) uint32 { return binary.LittleEndian.Uint32(b[off:]) }

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"resolution.x", float64(f32(0)), 800},
		{"resolution.y", float64(f32(4)), 600},
		{"time", float64(f32(8)), 2.5},
		{"kind", float64(u32(12)), float64(Julia)},
		{"center.x", float64(f32(16)), 0.25},
		{"center.y", float64(f32(20)), -0.75},
		{"zoom", float64(f32(24)), 3},
		{"max_iter", float64(u32(28)), 500},
		{"julia_c.x", float64(f32(32)), float64(float32(-0.4))},
		{"julia_c.y", float64(f32(36)), float64(float32(0.6))},
		{"bailout", float64(f32(40)), 8},
		{"power", float64(f32(44)), 8},
		{"cam_eye.w", float64(f32(60)), float64(p.Camera.TanHalfFOV())},
		{"cam_target.w", float64(f32(76)), float64(float32(p.Epsilon))},
		{"pal_a.x", float64(f32(80)), float64(float32(p.Palette.A[0]))},
		{"pal_d.z", float64(f32(136)), float64(float32(p.Palette.D[2]))},
		{"color_shift", float64(f32(144)), 0.125},
		{"exposure", float64(f32(148)), 1.5},
		{"max_steps", float64(u32(152)), 64},
		{"flags", float64(u32(156)), float64(FlagSmooth)},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestDecodeUniforms(t *testing.T) {
	f := Frame{Params: DefaultParams(BurningShip), Width: 320, Height: 200, Time: 9}
	want := NewUniforms(f)

	got, ok := DecodeUniforms(want.Bytes())
	if !ok {
		t.Fatal("DecodeUniforms reported a short buffer")
	}
	if got != want {
		t.Errorf("DecodeUniforms mismatch:\n got %+v\nwant %+v", got, want)
	}
	if _, ok := DecodeUniforms(make([]byte, UniformsSize-1)); ok {
		t.Error("short buffer should not decode")
	}
}

func TestUniformsSmoothFlagOff(t *testing.T) {
	p := DefaultParams(Mandelbrot)
	p.Smooth = false
	if u := NewUniforms(Frame{Params: p, Width: 1, Height: 1}); u.Flags&FlagSmooth != 0 {
		t.Error("smooth flag set although Smooth is false")
	}
}
