package viewer

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/presets"
	"github.com/gogpu/fractal/ui"
)

func newViewer(t *testing.T, cfg Config) *Viewer {
	t.Helper()
	r := fractal.NewRenderer(fractal.WithCPUOnly(), fractal.WithWorkers(2))
	t.Cleanup(r.Close)
	v := New(cfg, r)
	require.NoError(t, v.Initialize())
	t.Cleanup(func() { _ = v.Close() })
	return v
}

func hiddenUI() Config {
	return DefaultConfig().WithSize(200, 100).WithUI(false).WithCPUOnly(true)
}

// step applies one frame of input with a 16ms tick.
func step(v *Viewer, in FrameInput) {
	v.SetInput(in)
	v.Update(0, 0.016, true)
}

func press(keys ...gpucontext.Key) FrameInput {
	return FrameInput{MouseX: -1, MouseY: -1, Keys: keys}
}

func TestViewerName(t *testing.T) {
	v := New(DefaultConfig(), nil)
	assert.Equal(t, "Fractal Viewer", v.Name())
}

func TestInitializeDefaults(t *testing.T) {
	v := newViewer(t, hiddenUI().WithKind(fractal.Tricorn))
	assert.Equal(t, fractal.DefaultParams(fractal.Tricorn), v.Params())
	assert.Equal(t, fractal.ModeRaster, v.Mode())
	assert.NotEmpty(t, v.Store().Names())
}

func TestInitializePreset(t *testing.T) {
	v := newViewer(t, hiddenUI().WithPreset("dendrite"))
	p := v.Params()
	assert.Equal(t, fractal.Julia, p.Kind)
	assert.Equal(t, [2]float64{0, 1}, p.JuliaC)
}

func TestInitializeUnknownPreset(t *testing.T) {
	r := fractal.NewRenderer(fractal.WithCPUOnly())
	defer r.Close()
	v := New(hiddenUI().WithPreset("nope"), r)
	err := v.Initialize()
	require.ErrorIs(t, err, presets.ErrNotFound)
}

func TestInitializeMergesPresetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[preset]]
name = "mine"
kind = "tricorn"
zoom = 3.0
`), 0o644))
	v := newViewer(t, hiddenUI().WithPresetFile(path).WithPreset("mine"))
	assert.Contains(t, v.Store().Names(), "mine")
	assert.Equal(t, fractal.Tricorn, v.Params().Kind)
	assert.Equal(t, 3.0, v.Params().Zoom)
}

func TestKeyboardShortcuts(t *testing.T) {
	tests := []struct {
		name  string
		key   gpucontext.Key
		check func(t *testing.T, v *Viewer)
	}{
		{"F1 toggles overlay", gpucontext.KeyF1, func(t *testing.T, v *Viewer) {
			assert.True(t, v.ShowUI())
		}},
		{"M toggles mode", gpucontext.KeyM, func(t *testing.T, v *Viewer) {
			assert.Equal(t, fractal.ModeCompute, v.Mode())
		}},
		{"3 picks burning ship", gpucontext.Key3, func(t *testing.T, v *Viewer) {
			assert.Equal(t, fractal.BurningShip, v.Params().Kind)
		}},
		{"5 picks mandelbulb", gpucontext.Key5, func(t *testing.T, v *Viewer) {
			assert.Equal(t, fractal.Mandelbulb, v.Params().Kind)
		}},
		{"PageUp raises iterations", gpucontext.KeyPageUp, func(t *testing.T, v *Viewer) {
			assert.Equal(t, 321, v.Params().MaxIter)
		}},
		{"PageDown lowers iterations", gpucontext.KeyPageDown, func(t *testing.T, v *Viewer) {
			assert.Equal(t, 204, v.Params().MaxIter)
		}},
		{"plus zooms in", gpucontext.KeyEqual, func(t *testing.T, v *Viewer) {
			assert.InDelta(t, 1.0, v.Params().Zoom, 1e-12)
		}},
		{"minus zooms out", gpucontext.KeyNumpadSubtract, func(t *testing.T, v *Viewer) {
			assert.InDelta(t, 0.64, v.Params().Zoom, 1e-12)
		}},
		{"left pans", gpucontext.KeyLeft, func(t *testing.T, v *Viewer) {
			// 10 pixels at 40 pixels per unit.
			assert.InDelta(t, -0.75, v.Params().Center[0], 1e-12)
		}},
		{"up pans", gpucontext.KeyUp, func(t *testing.T, v *Viewer) {
			assert.InDelta(t, 0.25, v.Params().Center[1], 1e-12)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViewer(t, hiddenUI())
			step(v, press(tt.key))
			tt.check(t, v)
		})
	}
}

func TestEscapeQuits(t *testing.T) {
	v := newViewer(t, hiddenUI())
	quit := 0
	v.OnQuit(func() { quit++ })
	step(v, press(gpucontext.KeyEscape))
	assert.Equal(t, 1, quit)
}

func TestResetKeepsDisplay(t *testing.T) {
	v := newViewer(t, hiddenUI())
	p := v.Params()
	p.Zoom = 40
	p.Exposure = 2
	v.SetParams(p)

	step(v, press(gpucontext.KeyR))
	assert.Equal(t, 0.8, v.Params().Zoom)
	assert.Equal(t, 2.0, v.Params().Exposure)
}

func TestNextPreset(t *testing.T) {
	v := newViewer(t, hiddenUI())
	step(v, press(gpucontext.KeyN))
	step(v, press(gpucontext.KeyN))

	want, err := v.Store().Get("seahorse valley")
	require.NoError(t, err)
	assert.Equal(t, want.Params().Center, v.Params().Center)
	assert.Equal(t, 150.0, v.Params().Zoom)
}

func TestDragPans(t *testing.T) {
	v := newViewer(t, hiddenUI())
	step(v, FrameInput{MouseX: 100, MouseY: 50, MouseDown: true, DX: 50, DY: -20})

	// The shorter axis spans 2/0.8 units over 100 pixels.
	p := v.Params()
	assert.InDelta(t, -1.75, p.Center[0], 1e-12)
	assert.InDelta(t, -0.5, p.Center[1], 1e-12)
}

func TestWheelZoomsAtCursor(t *testing.T) {
	v := newViewer(t, hiddenUI())
	before := v.Params()
	re, im := before.PixelToPlane(30, 20, 200, 100)

	step(v, FrameInput{MouseX: 30, MouseY: 20, Wheel: 2})
	after := v.Params()
	assert.InDelta(t, 0.8*1.15*1.15, after.Zoom, 1e-12)

	re2, im2 := after.PixelToPlane(30, 20, 200, 100)
	assert.InDelta(t, re, re2, 1e-12)
	assert.InDelta(t, im, im2, 1e-12)
}

func TestMandelbulbOrbitAndDolly(t *testing.T) {
	v := newViewer(t, hiddenUI().WithKind(fractal.Mandelbulb))
	cam := v.Params().Camera

	step(v, FrameInput{MouseDown: true, DX: 40})
	assert.NotEqual(t, cam.Yaw, v.Params().Camera.Yaw)

	step(v, FrameInput{Wheel: 1})
	assert.InDelta(t, float64(cam.Distance)/1.15, float64(v.Params().Camera.Distance), 1e-5)
}

func TestJuliaAnimation(t *testing.T) {
	v := newViewer(t, hiddenUI())
	p := fractal.DefaultParams(fractal.Julia)
	p.AnimateJulia = true
	v.SetParams(p)

	v.Update(1, 1, false)
	got := v.Params().JuliaC
	assert.InDelta(t, 0.7885*math.Cos(0.3), got[0], 1e-12)
	assert.InDelta(t, 0.7885*math.Sin(0.3), got[1], 1e-12)

	// Without the toggle the parameter stays put.
	p.AnimateJulia = false
	v.SetParams(p)
	v.Update(2, 1, false)
	assert.Equal(t, p.JuliaC, v.Params().JuliaC)
}

func TestAutoRotate(t *testing.T) {
	v := newViewer(t, hiddenUI())
	p := fractal.DefaultParams(fractal.Mandelbulb)
	p.AutoRotate = true
	v.SetParams(p)

	v.Update(0.5, 0.5, false)
	assert.InDelta(t, float64(p.Camera.Yaw)+0.2, float64(v.Params().Camera.Yaw), 1e-5)
}

func widget(t *testing.T, v *Viewer, label string) ui.Widget {
	t.Helper()
	for _, w := range v.Panel().Widgets() {
		if w.Label == label {
			return w
		}
	}
	t.Fatalf("no widget %q", label)
	return ui.Widget{}
}

func TestPanelLayout(t *testing.T) {
	v := newViewer(t, hiddenUI().WithUI(true).WithKind(fractal.Julia))
	step(v, press())

	assert.Equal(t, "julia", widget(t, v, "Fractal").Value)
	assert.Equal(t, "raster", widget(t, v, "Render Mode").Value)
	assert.Equal(t, ui.WidgetSlider, widget(t, v, "Julia C Re").Kind)
	assert.Equal(t, ui.WidgetCheckbox, widget(t, v, "Animate Julia").Kind)
	assert.Equal(t, ui.WidgetButton, widget(t, v, "Reset View").Kind)
}

func TestPanelEditsParams(t *testing.T) {
	v := newViewer(t, hiddenUI().WithUI(true))
	step(v, press())

	// Focus the kind combo and step back, wrapping to the last kind.
	step(v, press(gpucontext.KeyTab))
	step(v, press(gpucontext.KeyLeft))
	assert.Equal(t, fractal.Mandelbulb, v.Params().Kind)

	// Clicking the mode combo switches paths.
	mode := widget(t, v, "Render Mode")
	step(v, FrameInput{MouseX: mode.Row.X + 2, MouseY: mode.Row.Y + 2, MouseDown: true, MousePressed: true})
	assert.Equal(t, fractal.ModeCompute, v.Mode())
}

func TestPresetComboStartsAtFirstPreset(t *testing.T) {
	v := newViewer(t, hiddenUI().WithUI(true))
	step(v, press())
	combo := widget(t, v, "Preset")
	assert.Equal(t, "custom", combo.Value)

	step(v, FrameInput{MouseX: combo.Row.X + 2, MouseY: combo.Row.Y + 2, MouseDown: true, MousePressed: true})
	first := v.Store().Names()[0]
	assert.Equal(t, first, widget(t, v, "Preset").Value)
	want, err := v.Store().Get(first)
	require.NoError(t, err)
	assert.Equal(t, want.Params().Center, v.Params().Center)
	assert.Equal(t, want.Params().Zoom, v.Params().Zoom)
}

func TestPanelConsumesMouse(t *testing.T) {
	v := newViewer(t, hiddenUI().WithUI(true))
	step(v, press())

	step(v, FrameInput{MouseX: 20, MouseY: 20, MouseDown: true, DX: 50})
	assert.Equal(t, -0.5, v.Params().Center[0])
}

func TestClickOnFractalReleasesKeyboard(t *testing.T) {
	v := newViewer(t, DefaultConfig().WithSize(800, 600).WithCPUOnly(true))
	step(v, press())

	zoom := widget(t, v, "Zoom (Log10)")
	x, y := zoom.Row.X+2, zoom.Row.Y+2
	step(v, FrameInput{MouseX: x, MouseY: y, MouseDown: true, MousePressed: true})
	step(v, FrameInput{MouseX: x, MouseY: y, MouseReleased: true})
	require.GreaterOrEqual(t, v.Panel().Focus(), 0)

	step(v, FrameInput{MouseX: 700, MouseY: 500, MouseDown: true, MousePressed: true})
	step(v, FrameInput{MouseX: 700, MouseY: 500, MouseReleased: true})
	assert.Equal(t, -1, v.Panel().Focus())

	// 60 pixels at 240 pixels per unit.
	step(v, FrameInput{MouseX: 700, MouseY: 500, Keys: []gpucontext.Key{gpucontext.KeyLeft}})
	assert.InDelta(t, -0.75, v.Params().Center[0], 1e-12)
	assert.Equal(t, 0.8, v.Params().Zoom)
}

func TestRender(t *testing.T) {
	v := newViewer(t, DefaultConfig().WithSize(64, 48).WithUI(false).WithRenderScale(0.5))
	dc := gg.NewContext(64, 48)
	defer dc.Close()

	v.Update(0, 0.016, true)
	require.NoError(t, v.Render(dc))
	assert.Equal(t, 32, v.frameImg.Rect.Dx())
	assert.Equal(t, 24, v.frameImg.Rect.Dy())

	// The middle of the default view is inside the set.
	r, g, b, a := dc.Image().At(32, 24).RGBA()
	assert.Less(t, r, uint32(0x0800))
	assert.Less(t, g, uint32(0x0800))
	assert.Less(t, b, uint32(0x0800))
	assert.Equal(t, uint32(0xffff), a)
	assert.Equal(t, "cpu", v.renderer.LastBackend())
}

func TestRenderWithOverlay(t *testing.T) {
	v := newViewer(t, DefaultConfig().WithSize(320, 240))
	dc := gg.NewContext(320, 240)
	defer dc.Close()

	v.Update(0, 0.016, true)
	require.NoError(t, v.Render(dc))
	require.NoError(t, v.Render(dc), "buffers are reused across frames")
}
