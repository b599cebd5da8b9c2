package main

import (
	"github.com/spf13/cobra"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/viewer"
)

// sceneFlags are the flags shared by view and render. Only flags set on the
// command line override the config file.
type sceneFlags struct {
	kind       string
	mode       string
	preset     string
	presetFile string
	width      int
	height     int
	cpu        bool
	workers    int
}

func (f *sceneFlags) register(cmd *cobra.Command, width, height int) {
	fs := cmd.Flags()
	fs.StringVar(&f.kind, "kind", "mandelbrot", "fractal: mandelbrot, julia, burning-ship, tricorn or mandelbulb")
	fs.StringVar(&f.mode, "mode", "raster", "GPU path: raster or compute")
	fs.StringVar(&f.preset, "preset", "", "start from a named preset")
	fs.StringVar(&f.presetFile, "preset-file", "", "TOML presets merged over the built-ins")
	fs.IntVar(&f.width, "width", width, "width in pixels")
	fs.IntVar(&f.height, "height", height, "height in pixels")
	fs.BoolVar(&f.cpu, "cpu", false, "render on the CPU only")
	fs.IntVar(&f.workers, "workers", 0, "CPU workers (0 = GOMAXPROCS)")
}

func (f *sceneFlags) apply(cmd *cobra.Command, cfg viewer.Config) (viewer.Config, error) {
	fs := cmd.Flags()
	if fs.Changed("kind") {
		k, err := fractal.ParseKind(f.kind)
		if err != nil {
			return cfg, err
		}
		cfg = cfg.WithKind(k)
	}
	if fs.Changed("mode") {
		m, err := fractal.ParseRenderMode(f.mode)
		if err != nil {
			return cfg, err
		}
		cfg = cfg.WithMode(m)
	}
	if fs.Changed("preset") {
		cfg = cfg.WithPreset(f.preset)
	}
	if fs.Changed("preset-file") {
		cfg = cfg.WithPresetFile(f.presetFile)
	}
	if fs.Changed("width") || fs.Changed("height") {
		w, h := cfg.Width, cfg.Height
		if fs.Changed("width") {
			w = f.width
		}
		if fs.Changed("height") {
			h = f.height
		}
		cfg = cfg.WithSize(w, h)
	}
	if fs.Changed("cpu") {
		cfg = cfg.WithCPUOnly(f.cpu)
	}
	if fs.Changed("workers") {
		cfg = cfg.WithWorkers(f.workers)
	}
	return cfg, cfg.Validate()
}

func newViewCmd(o *rootOptions) *cobra.Command {
	var (
		scene     sceneFlags
		shaderDir string
		scale     float64
		noUI      bool
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open the interactive viewer",
		Long: `Opens a window showing one fractal with a parameter overlay.

Keys: F1 overlay, M raster/compute, 1-5 fractal, R reset, N next preset,
PageUp/PageDown iterations, arrows pan, +/- zoom, Esc quit.
Mouse: drag pans (orbits the Mandelbulb), wheel zooms at the cursor.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("shader-dir") {
				cfg = cfg.WithShaderDir(shaderDir)
			}
			if cmd.Flags().Changed("scale") {
				cfg = cfg.WithRenderScale(scale)
			}
			if cmd.Flags().Changed("no-ui") {
				cfg = cfg.WithUI(!noUI)
			}
			cfg, err = scene.apply(cmd, cfg)
			if err != nil {
				return err
			}
			return viewer.Run(cfg)
		},
	}
	def := viewer.DefaultConfig()
	scene.register(cmd, def.Width, def.Height)
	cmd.Flags().StringVar(&shaderDir, "shader-dir", "", "directory of WGSL overrides, reloaded on change")
	cmd.Flags().Float64Var(&scale, "scale", 1, "render resolution relative to the window, in (0, 1]")
	cmd.Flags().BoolVar(&noUI, "no-ui", false, "start with the overlay hidden")
	return cmd
}
