package viewer

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/fractal"
)

// Config configures the viewer window and its starting view.
//
// Example:
//
//	cfg := viewer.DefaultConfig().
//	    WithSize(1280, 720).
//	    WithKind(fractal.Julia).
//	    WithMode(fractal.ModeCompute)
type Config struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`

	Kind   fractal.Kind       `toml:"kind"`
	Mode   fractal.RenderMode `toml:"mode"`
	Preset string             `toml:"preset"`

	// PresetFile is merged over the built-in presets and watched for
	// changes. ShaderDir overrides the embedded WGSL sources and is
	// watched as well.
	PresetFile string `toml:"preset_file"`
	ShaderDir  string `toml:"shader_dir"`

	// RenderScale is the fraction of the window resolution the fractal is
	// rendered at before being scaled up.
	RenderScale float64 `toml:"render_scale"`

	ShowUI   bool    `toml:"show_ui"`
	FontSize float64 `toml:"font_size"`

	Workers int  `toml:"workers"`
	CPUOnly bool `toml:"cpu_only"`
}

// DefaultConfig returns the configuration of a plain Mandelbrot window.
func DefaultConfig() Config {
	return Config{
		Title:       "Fractal Viewer",
		Width:       1280,
		Height:      720,
		Kind:        fractal.Mandelbrot,
		Mode:        fractal.ModeRaster,
		RenderScale: 1,
		ShowUI:      true,
		FontSize:    15,
	}
}

// WithTitle sets the window title.
func (c Config) WithTitle(title string) Config {
	c.Title = title
	return c
}

// WithSize sets the window size.
func (c Config) WithSize(width, height int) Config {
	c.Width, c.Height = width, height
	return c
}

// WithKind sets the starting fractal.
func (c Config) WithKind(k fractal.Kind) Config {
	c.Kind = k
	return c
}

// WithMode sets the starting GPU path.
func (c Config) WithMode(m fractal.RenderMode) Config {
	c.Mode = m
	return c
}

// WithPreset starts from the named preset instead of the kind's defaults.
func (c Config) WithPreset(name string) Config {
	c.Preset = name
	return c
}

// WithPresetFile sets the user preset file.
func (c Config) WithPresetFile(path string) Config {
	c.PresetFile = path
	return c
}

// WithShaderDir sets a directory of WGSL overrides.
func (c Config) WithShaderDir(dir string) Config {
	c.ShaderDir = dir
	return c
}

// WithRenderScale sets the fractal resolution relative to the window.
func (c Config) WithRenderScale(s float64) Config {
	c.RenderScale = s
	return c
}

// WithUI shows or hides the overlay at startup.
func (c Config) WithUI(show bool) Config {
	c.ShowUI = show
	return c
}

// WithWorkers sets the CPU evaluator's worker count.
func (c Config) WithWorkers(n int) Config {
	c.Workers = n
	return c
}

// WithCPUOnly disables the GPU backend.
func (c Config) WithCPUOnly(cpu bool) Config {
	c.CPUOnly = cpu
	return c
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Width, c.Height))
	}
	if !c.Kind.Valid() {
		errs = append(errs, fmt.Errorf("unknown kind %d", c.Kind))
	}
	if c.Mode != fractal.ModeRaster && c.Mode != fractal.ModeCompute {
		errs = append(errs, fmt.Errorf("unknown mode %d", c.Mode))
	}
	if !(c.RenderScale > 0 && c.RenderScale <= 1) {
		errs = append(errs, fmt.Errorf("render_scale %v outside (0, 1]", c.RenderScale))
	}
	if c.FontSize <= 0 {
		errs = append(errs, fmt.Errorf("font_size %v must be positive", c.FontSize))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d must not be negative", c.Workers))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("viewer: invalid config: %w", err)
	}
	return nil
}

// LoadConfig reads a TOML file over DefaultConfig and validates the result.
// Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("viewer: %w", err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("viewer: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
