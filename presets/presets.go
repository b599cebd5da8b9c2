// Package presets stores named starting views for the fractal viewer.
//
// Presets are TOML documents holding an array of [[preset]] tables:
//
//	[[preset]]
//	name = "seahorse valley"
//	kind = "mandelbrot"
//	center = [-0.7453, 0.1127]
//	zoom = 150.0
//	max_iter = 900
//	palette = "ocean"
//
// Fields left out take the defaults of the preset's kind. A set of built-in
// presets is embedded in the package; user files are merged over it by
// name.
package presets

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/fractal"
)

var (
	// ErrNotFound is returned when no preset has the requested name.
	ErrNotFound = errors.New("presets: not found")

	// ErrInvalid is wrapped by every preset validation error.
	ErrInvalid = errors.New("presets: invalid preset")
)

//go:embed presets.toml
var builtinTOML []byte

// Preset is a named view. Zero or nil fields keep the kind's defaults.
type Preset struct {
	Name    string          `toml:"name"`
	Kind    fractal.Kind    `toml:"kind"`
	Center  *[2]float64     `toml:"center,omitempty"`
	Zoom    float64         `toml:"zoom,omitempty"`
	MaxIter int             `toml:"max_iter,omitempty"`
	JuliaC  *[2]float64     `toml:"julia_c,omitempty"`
	Power   float64         `toml:"power,omitempty"`
	Palette string          `toml:"palette,omitempty"`
	Camera  *fractal.Camera `toml:"camera,omitempty"`
}

// document is the on-disk layout.
type document struct {
	Presets []Preset `toml:"preset"`
}

// Params returns the kind's default parameters with the preset applied.
func (p Preset) Params() fractal.Params {
	params := fractal.DefaultParams(p.Kind)
	if p.Center != nil {
		params.Center = *p.Center
	}
	if p.Zoom > 0 {
		params.Zoom = p.Zoom
	}
	if p.MaxIter > 0 {
		params.MaxIter = p.MaxIter
	}
	if p.JuliaC != nil {
		params.JuliaC = *p.JuliaC
	}
	if p.Power > 0 {
		params.Power = p.Power
	}
	if p.Palette != "" {
		if pal, err := fractal.PaletteByName(p.Palette); err == nil {
			params.Palette = pal
		}
	}
	if p.Camera != nil {
		params.Camera = *p.Camera
	}
	return params
}

// Apply replaces the view fields of *params with the preset. Display
// preferences (exposure, color shift, smoothing, animation toggles) are
// kept.
func (p Preset) Apply(params *fractal.Params) {
	next := p.Params()
	next.Exposure = params.Exposure
	next.ColorShift = params.ColorShift
	next.Smooth = params.Smooth
	next.AnimateJulia = params.AnimateJulia
	next.AutoRotate = params.AutoRotate
	*params = next
}

// FromParams captures the view in params as a preset.
func FromParams(name string, params fractal.Params) Preset {
	center, juliaC, camera := params.Center, params.JuliaC, params.Camera
	p := Preset{
		Name:    name,
		Kind:    params.Kind,
		Zoom:    params.Zoom,
		MaxIter: params.MaxIter,
		Power:   params.Power,
		Palette: params.Palette.Name,
	}
	if params.Kind.Is3D() {
		p.Camera = &camera
	} else {
		p.Center = &center
	}
	if params.Kind == fractal.Julia {
		p.JuliaC = &juliaC
	}
	return p
}

// Validate checks that the preset produces valid parameters. Errors wrap
// ErrInvalid and name the preset.
func (p Preset) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalid)
	}
	if !p.Kind.Valid() {
		return fmt.Errorf("%w %q: unknown kind %d", ErrInvalid, p.Name, p.Kind)
	}
	if p.Zoom < 0 || p.MaxIter < 0 || p.Power < 0 {
		return fmt.Errorf("%w %q: negative zoom, max_iter or power", ErrInvalid, p.Name)
	}
	if p.Palette != "" && fractal.PaletteIndex(p.Palette) < 0 {
		return fmt.Errorf("%w %q: unknown palette %q", ErrInvalid, p.Name, p.Palette)
	}
	if err := p.Params().Validate(); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalid, p.Name, err)
	}
	return nil
}

// Parse decodes a preset document and validates every entry. Duplicate
// names are rejected.
func Parse(data []byte) ([]Preset, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("presets: decode: %w", err)
	}
	seen := make(map[string]bool, len(doc.Presets))
	for _, p := range doc.Presets {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("%w %q: duplicate name", ErrInvalid, p.Name)
		}
		seen[p.Name] = true
	}
	return doc.Presets, nil
}

// Load reads and parses the preset file at path.
func Load(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("presets: %w", err)
	}
	ps, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ps, nil
}

// Marshal encodes presets as a TOML document.
func Marshal(ps []Preset) ([]byte, error) {
	data, err := toml.Marshal(document{Presets: ps})
	if err != nil {
		return nil, fmt.Errorf("presets: encode: %w", err)
	}
	return data, nil
}

// Save writes presets to path.
func Save(path string, ps []Preset) error {
	data, err := Marshal(ps)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("presets: %w", err)
	}
	return nil
}

// Merge returns base with override applied by name: entries with a known
// name replace the base entry in place and new names are appended in
// override order.
func Merge(base, override []Preset) []Preset {
	out := slices.Clone(base)
	index := make(map[string]int, len(out))
	for i, p := range out {
		index[p.Name] = i
	}
	for _, p := range override {
		if i, ok := index[p.Name]; ok {
			out[i] = p
			continue
		}
		index[p.Name] = len(out)
		out = append(out, p)
	}
	return out
}

var builtin = sync.OnceValues(func() ([]Preset, error) {
	return Parse(builtinTOML)
})

// Builtin returns the embedded presets.
func Builtin() ([]Preset, error) {
	ps, err := builtin()
	if err != nil {
		return nil, err
	}
	return slices.Clone(ps), nil
}

// Names returns the preset names in order.
func Names(ps []Preset) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}
