package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/gogpu/gg"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/fractal"
	_ "github.com/gogpu/fractal/gpu" // wgpu backend
	"github.com/gogpu/fractal/presets"
	"github.com/gogpu/fractal/viewer"
)

func newRenderCmd(o *rootOptions) *cobra.Command {
	var (
		scene sceneFlags
		at    float64
		out   string
		all   string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a fractal to PNG",
		Long: `Renders one frame to a PNG file, or every preset into a directory
with --all. The GPU backend is used when an adapter is available.`,
		Example: `  fractal render --kind julia --width 1920 --height 1080 --out julia.png
  fractal render --preset "seahorse valley" --mode compute --out - > seahorse.png
  fractal render --all out/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			if cfg, err = scene.apply(cmd, cfg); err != nil {
				return err
			}
			store, err := presets.NewStore(cfg.PresetFile)
			if err != nil {
				return err
			}

			r := fractal.NewRenderer(rendererOptions(cfg)...)
			defer r.Close()
			defer fractal.CloseBackend()

			if all != "" {
				return renderAll(cmd.Context(), cmd.OutOrStdout(), r, store.List(), cfg, at, all)
			}

			params := fractal.DefaultParams(cfg.Kind)
			if cfg.Preset != "" {
				p, err := store.Get(cfg.Preset)
				if err != nil {
					return err
				}
				params = p.Params()
			}
			frame := fractal.Frame{Params: params, Width: cfg.Width, Height: cfg.Height, Time: at, Mode: cfg.Mode}

			start := time.Now()
			img, err := r.Render(cmd.Context(), frame)
			if err != nil {
				return err
			}
			buf := gg.ImageBufFromImage(img)
			if out == "-" {
				return buf.EncodePNG(cmd.OutOrStdout())
			}
			if err := buf.SavePNG(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d %s (%s, %s) in %v\n",
				out, frame.Width, frame.Height, params.Kind, frame.Mode, r.LastBackend(),
				time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	def := viewer.DefaultConfig()
	scene.register(cmd, def.Width, def.Height)
	cmd.Flags().Float64Var(&at, "time", 0, "animation time in seconds passed to the shaders")
	cmd.Flags().StringVarP(&out, "out", "o", "fractal.png", `output PNG, "-" for stdout`)
	cmd.Flags().StringVar(&all, "all", "", "render every preset into this directory")
	cmd.MarkFlagsMutuallyExclusive("all", "preset")
	cmd.MarkFlagsMutuallyExclusive("all", "out")
	return cmd
}

func rendererOptions(cfg viewer.Config) []fractal.RendererOption {
	var opts []fractal.RendererOption
	if cfg.Workers > 0 {
		opts = append(opts, fractal.WithWorkers(cfg.Workers))
	}
	if cfg.CPUOnly {
		opts = append(opts, fractal.WithCPUOnly())
	}
	return opts
}

// renderAll renders each preset at the configured size into dir, several at
// a time. The first failure cancels the rest.
func renderAll(ctx context.Context, w io.Writer, r *fractal.Renderer, ps []presets.Preset, cfg viewer.Config, at float64, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	var mu sync.Mutex
	for _, p := range ps {
		g.Go(func() error {
			frame := fractal.Frame{Params: p.Params(), Width: cfg.Width, Height: cfg.Height, Time: at, Mode: cfg.Mode}
			img, err := r.Render(ctx, frame)
			if err != nil {
				return fmt.Errorf("preset %q: %w", p.Name, err)
			}
			path := filepath.Join(dir, fileName(p.Name))
			if err := gg.ImageBufFromImage(img).SavePNG(path); err != nil {
				return fmt.Errorf("preset %q: %w", p.Name, err)
			}
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintln(w, path)
			return nil
		})
	}
	return g.Wait()
}

// fileName turns a preset name into a PNG file name: "Seahorse Valley"
// becomes "seahorse-valley.png".
func fileName(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		s = "preset"
	}
	return s + ".png"
}
