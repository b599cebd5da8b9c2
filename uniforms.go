package fractal

import (
	"encoding/binary"

	"github.com/chewxy/math32"
)

// UniformsSize is the byte size of the constant buffer shared by every
// shader program. It is a multiple of 16 as WGSL uniform layout requires.
const UniformsSize = 160

// Uniform flags.
const (
	FlagSmooth uint32 = 1 << iota
)

// Uniforms mirrors the WGSL Uniforms struct field for field:
//
//	offset  field
//	     0  resolution vec2<f32>
//	     8  time       f32
//	    12  kind       u32
//	    16  center     vec2<f32>
//	    24  zoom       f32
//	    28  max_iter   u32
//	    32  julia_c    vec2<f32>
//	    40  bailout    f32
//	    44  power      f32
//	    48  cam_eye    vec4<f32>  xyz eye, w tan(fov/2)
//	    64  cam_target vec4<f32>  xyz target, w epsilon
//	    80  pal_a      vec4<f32>
//	    96  pal_b      vec4<f32>
//	   112  pal_c      vec4<f32>
//	   128  pal_d      vec4<f32>
//	   144  color_shift f32
//	   148  exposure   f32
//	   152  max_steps  u32
//	   156  flags      u32
type Uniforms struct {
	Resolution [2]float32
	Time       float32
	Kind       uint32
	Center     [2]float32
	Zoom       float32
	MaxIter    uint32
	JuliaC     [2]float32
	Bailout    float32
	Power      float32
	CamEye     [4]float32
	CamTarget  [4]float32
	PalA       [4]float32
	PalB       [4]float32
	PalC       [4]float32
	PalD       [4]float32
	ColorShift float32
	Exposure   float32
	MaxSteps   uint32
	Flags      uint32
}

// NewUniforms snapshots a frame into the constant buffer layout.
func NewUniforms(f Frame) Uniforms {
	p := f.Params
	eye := p.Camera.Eye()
	u := Uniforms{
		Resolution: [2]float32{float32(f.Width), float32(f.Height)},
		Time:       float32(f.Time),
		Kind:       uint32(p.Kind),
		Center:     [2]float32{float32(p.Center[0]), float32(p.Center[1])},
		Zoom:       float32(p.Zoom),
		MaxIter:    uint32(max(p.MaxIter, 0)), //nolint:gosec // clamped non-negative
		JuliaC:     [2]float32{float32(p.JuliaC[0]), float32(p.JuliaC[1])},
		Bailout:    float32(p.Bailout),
		Power:      float32(p.Power),
		CamEye:     [4]float32{eye[0], eye[1], eye[2], p.Camera.TanHalfFOV()},
		CamTarget: [4]float32{
			p.Camera.Target[0], p.Camera.Target[1], p.Camera.Target[2],
			float32(p.Epsilon),
		},
		PalA:       vec4(p.Palette.A),
		PalB:       vec4(p.Palette.B),
		PalC:       vec4(p.Palette.C),
		PalD:       vec4(p.Palette.D),
		ColorShift: float32(p.ColorShift),
		Exposure:   float32(p.Exposure),
		MaxSteps:   uint32(max(p.MaxSteps, 0)), //nolint:gosec // clamped non-negative
	}
	if p.Smooth {
		u.Flags |= FlagSmooth
	}
	return u
}

// Bytes encodes u in the little-endian GPU layout. The result is always
// UniformsSize bytes.
func (u Uniforms) Bytes() []byte {
	return u.AppendBytes(make([]byte, 0, UniformsSize))
}

// AppendBytes appends the encoded uniforms to b.
func (u Uniforms) AppendBytes(b []byte) []byte {
	le := binary.LittleEndian
	f := func(v float32) { b = le.AppendUint32(b, math32.Float32bits(v)) }
	i := func(v uint32) { b = le.AppendUint32(b, v) }

	f(u.Resolution[0])
	f(u.Resolution[1])
	f(u.Time)
	i(u.Kind)
	f(u.Center[0])
	f(u.Center[1])
	f(u.Zoom)
	i(u.MaxIter)
	f(u.JuliaC[0])
	f(u.JuliaC[1])
	f(u.Bailout)
	f(u.Power)
	for _, v := range [...][4]float32{u.CamEye, u.CamTarget, u.PalA, u.PalB, u.PalC, u.PalD} {
		for _, c := range v {
			f(c)
		}
	}
	f(u.ColorShift)
	f(u.Exposure)
	i(u.MaxSteps)
	i(u.Flags)
	return b
}

// DecodeUniforms parses the GPU layout back into a Uniforms value.
// It returns false when b is shorter than UniformsSize.
func DecodeUniforms(b []byte) (Uniforms, bool) {
	if len(b) < UniformsSize {
		return Uniforms{}, false
	}
	le := binary.LittleEndian
	off := 0
	f := func() float32 {
		v := math32.Float32frombits(le.Uint32(b[off:]))
		off += 4
		return v
	}
	i := func() uint32 {
		v := le.Uint32(b[off:])
		off += 4
		return v
	}
	var u Uniforms
	u.Resolution = [2]float32{f(), f()}
	u.Time = f()
	u.Kind = i()
	u.Center = [2]float32{f(), f()}
	u.Zoom = f()
	u.MaxIter = i()
	u.JuliaC = [2]float32{f(), f()}
	u.Bailout = f()
	u.Power = f()
	for _, v := range []*[4]float32{&u.CamEye, &u.CamTarget, &u.PalA, &u.PalB, &u.PalC, &u.PalD} {
		*v = [4]float32{f(), f(), f(), f()}
	}
	u.ColorShift = f()
	u.Exposure = f()
	u.MaxSteps = i()
	u.Flags = i()
	return u, true
}

func vec4(v Vec3) [4]float32 {
	return [4]float32{float32(v[0]), float32(v[1]), float32(v[2]), 0}
}
