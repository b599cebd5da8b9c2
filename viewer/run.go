package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/gogpu/gg"
	_ "github.com/gogpu/gg/gpu" // GPU accelerator for the overlay
	"github.com/gogpu/gg/integration/ggcanvas"
	"github.com/gogpu/gogpu"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/gpu"
	"github.com/gogpu/fractal/shaders"
)

// Run opens a window and runs the viewer until it is closed.
//
// Rendering is event-driven: an animation token keeps frames coming at
// VSync while the window is open. The GPU backend shares the window's
// device unless cfg.CPUOnly is set.
func Run(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := fractal.Logger()

	var opts []fractal.RendererOption
	if cfg.Workers > 0 {
		opts = append(opts, fractal.WithWorkers(cfg.Workers))
	}
	if cfg.CPUOnly {
		opts = append(opts, fractal.WithCPUOnly())
	}
	renderer := fractal.NewRenderer(opts...)
	defer renderer.Close()

	v := New(cfg, renderer)
	if err := v.Initialize(); err != nil {
		return err
	}
	defer v.Close()

	app := gogpu.NewApp(gogpu.DefaultConfig().
		WithTitle(cfg.Title).
		WithSize(cfg.Width, cfg.Height).
		WithContinuousRender(false))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := NewInputQueue()
	queue.Attach(app.EventSource())
	v.OnQuit(app.Quit)

	if cfg.PresetFile != "" {
		err := v.Store().Watch(ctx, func() {
			log.Info("viewer: presets reloaded", "file", cfg.PresetFile)
		})
		if err != nil {
			log.Warn("viewer: cannot watch presets", "file", cfg.PresetFile, "err", err)
		}
	}

	var (
		canvas    *ggcanvas.Canvas
		animToken *gogpu.AnimationToken
		lib       *shaders.Library
		start     = time.Now()
		last      = start
	)
	defer func() {
		if lib != nil {
			lib.Close()
		}
	}()

	app.OnDraw(func(dc *gogpu.Context) {
		w, h := dc.Width(), dc.Height()
		if w <= 0 || h <= 0 {
			return
		}
		if canvas == nil {
			provider := app.GPUContextProvider()
			if provider == nil {
				return
			}
			if !cfg.CPUOnly {
				if err := attachGPU(ctx, cfg, provider, &lib); err != nil {
					log.Warn("viewer: GPU backend unavailable, rendering on CPU", "err", err)
				}
			}
			var err error
			canvas, err = ggcanvas.New(provider, w, h)
			if err != nil {
				log.Error("viewer: create canvas", "err", err)
				app.Quit()
				return
			}
			animToken = app.StartAnimation()
			log.Info("viewer: window ready", "width", w, "height", h, "backend", dc.Backend())
		}

		if cw, ch := canvas.Size(); cw != w || ch != h {
			if err := canvas.Resize(w, h); err != nil {
				log.Warn("viewer: resize", "err", err)
			}
		}

		now := time.Now()
		v.SetInput(queue.Drain())
		v.Update(now.Sub(start).Seconds(), now.Sub(last).Seconds(), true)
		last = now

		var renderErr error
		if err := canvas.Draw(func(cc *gg.Context) {
			renderErr = v.Render(cc)
		}); err != nil {
			log.Warn("viewer: draw", "err", err)
		}
		if renderErr != nil {
			log.Warn("viewer: render", "err", renderErr)
		}

		sw, sh := dc.SurfaceSize()
		if err := canvas.RenderDirect(dc.RenderTarget().SurfaceView(), sw, sh); err != nil {
			log.Warn("viewer: present", "err", err)
		}
	})

	app.OnClose(func() {
		cancel()
		if animToken != nil {
			animToken.Stop()
		}
		// The backend shares the window's device and must go first.
		fractal.CloseBackend()
		if canvas != nil {
			if err := canvas.Close(); err != nil {
				log.Warn("viewer: close canvas", "err", err)
			}
		}
		gg.CloseAccelerator()
	})

	if err := app.Run(); err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}

// attachGPU points the GPU backend at the window's device. With a shader
// directory the backend compiles from it and recompiles on change.
func attachGPU(ctx context.Context, cfg Config, provider any, lib **shaders.Library) error {
	if cfg.ShaderDir == "" {
		return gpu.SetDeviceProvider(provider)
	}
	l, err := shaders.NewLibrary(cfg.ShaderDir)
	if err != nil {
		return err
	}
	if err := gpu.UseLibrary(l, provider); err != nil {
		l.Close()
		return err
	}
	*lib = l
	return l.Watch(ctx, func(version uint64) {
		fractal.Logger().Info("viewer: shaders reloaded", "dir", cfg.ShaderDir, "version", version)
	})
}
