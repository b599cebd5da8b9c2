package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gogpu/gg"
	"github.com/spf13/cobra"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/viewer"
)

// rootOptions holds the persistent flags.
type rootOptions struct {
	logLevel string
	config   string
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "fractal",
		Short: "Fractal viewer and renderer",
		Long: `fractal renders the Mandelbrot, Julia, Burning Ship, Tricorn and
Mandelbulb sets on the GPU through wgpu, falling back to a parallel CPU
evaluator when no adapter is available.

Run "fractal view" for the interactive window or "fractal render" to write
PNG files.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.setupLogging(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "warn", "log level: debug, info, warn, error or off")
	cmd.PersistentFlags().StringVar(&o.config, "config", "", "viewer config file (TOML)")

	cmd.AddCommand(
		newViewCmd(o),
		newRenderCmd(o),
		newPresetsCmd(o),
		newShadersCmd(),
	)
	return cmd
}

// setupLogging installs a text logger on stderr for fractal and gg.
func (o *rootOptions) setupLogging(w io.Writer) error {
	if strings.EqualFold(o.logLevel, "off") {
		fractal.SetLogger(nil)
		gg.SetLogger(nil)
		return nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q", o.logLevel)
	}
	l := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	fractal.SetLogger(l)
	gg.SetLogger(l)
	return nil
}

// loadConfig returns the --config file or the defaults.
func (o *rootOptions) loadConfig() (viewer.Config, error) {
	if o.config == "" {
		return viewer.DefaultConfig(), nil
	}
	return viewer.LoadConfig(o.config)
}
