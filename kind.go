package fractal

import (
	"fmt"
	"strings"
)

// Kind selects the fractal formula.
type Kind uint32

const (
	// Mandelbrot iterates z = z^2 + c with z0 = 0 and c the pixel.
	Mandelbrot Kind = iota

	// Julia iterates z = z^2 + c with z0 the pixel and c fixed.
	Julia

	// BurningShip iterates z = (|Re z| + i|Im z|)^2 + c.
	BurningShip

	// Tricorn iterates z = conj(z)^2 + c (the Mandelbar set).
	Tricorn

	// Mandelbulb is the 3D power-n Mandelbulb, raymarched.
	Mandelbulb

	kindCount
)

var kindNames = [kindCount]string{
	Mandelbrot:  "mandelbrot",
	Julia:       "julia",
	BurningShip: "burning-ship",
	Tricorn:     "tricorn",
	Mandelbulb:  "mandelbulb",
}

// String returns the lowercase kind name.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint32(k))
}

// Is3D reports whether the kind is raymarched rather than iterated per pixel.
func (k Kind) Is3D() bool {
	return k == Mandelbulb
}

// Valid reports whether k names a known formula.
func (k Kind) Valid() bool {
	return k < kindCount
}

// Kinds returns all kinds in declaration order.
func Kinds() []Kind {
	ks := make([]Kind, kindCount)
	for i := range ks {
		ks[i] = Kind(i)
	}
	return ks
}

// ParseKind parses a kind name. Matching is case-insensitive and accepts
// underscores or spaces in place of dashes.
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	for i, name := range kindNames {
		if name == norm {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("fractal: unknown kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("fractal: invalid kind %d", uint32(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// RenderMode selects the GPU path used to produce a frame.
type RenderMode uint8

const (
	// ModeRaster draws a fullscreen quad whose pixel shader evaluates the fractal.
	ModeRaster RenderMode = iota

	// ModeCompute dispatches a compute shader into an off-screen texture,
	// then samples it with a second quad pass.
	ModeCompute
)

// String returns the mode name.
func (m RenderMode) String() string {
	switch m {
	case ModeRaster:
		return "raster"
	case ModeCompute:
		return "compute"
	default:
		return fmt.Sprintf("RenderMode(%d)", uint8(m))
	}
}

// Toggle returns the other mode.
func (m RenderMode) Toggle() RenderMode {
	if m == ModeCompute {
		return ModeRaster
	}
	return ModeCompute
}

// ParseRenderMode parses "raster" or "compute".
func ParseRenderMode(s string) (RenderMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "raster", "quad", "pixel":
		return ModeRaster, nil
	case "compute":
		return ModeCompute, nil
	}
	return 0, fmt.Errorf("fractal: unknown render mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m RenderMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *RenderMode) UnmarshalText(b []byte) error {
	v, err := ParseRenderMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
