// Package viewer is the interactive Fractal Viewer: a gogpu window showing
// one fractal, a parameter overlay and keyboard/mouse navigation.
//
// The Viewer itself is independent of the window. Run wires it to gogpu;
// tests drive it directly with FrameInput and a gg.Context.
package viewer

import (
	"context"
	"fmt"
	"image"
	"math"
	"slices"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"github.com/gogpu/gpucontext"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/presets"
	"github.com/gogpu/fractal/ui"
)

// Name is the sample name shown in the window title and the overlay.
const Name = "Fractal Viewer"

// Navigation tuning.
const (
	wheelZoom    = 1.15
	keyZoom      = 1.25
	iterFactor   = 1.25
	panStep      = 0.1
	orbitSpeed   = 0.01
	rotateSpeed  = 0.4
	juliaRadius  = 0.7885
	juliaSpeed   = 0.3
	minRenderDim = 1
	fpsWindow    = 0.5
)

var clearColor = gg.RGBA{R: 0.1, G: 0.1, B: 0.15, A: 1}

var modeNames = []string{"raster", "compute"}

// customPreset labels the preset combo when the view matches no preset.
const customPreset = "custom"

// Viewer holds the view state between frames.
type Viewer struct {
	cfg      Config
	renderer *fractal.Renderer
	ctx      context.Context

	store  *presets.Store
	params fractal.Params
	mode   fractal.RenderMode
	showUI bool

	panel  *ui.Panel
	fonts  *text.FontSource
	face   text.Face
	input  FrameInput
	onQuit func()

	presetNames []string
	presetIdx   int

	// time is the animation clock. It only advances while an animation
	// is enabled so toggling resumes where it stopped.
	time      float64
	frameTime time.Duration

	// fps is measured over windows of fpsWindow seconds of currTime.
	fps         float64
	fpsFrames   int
	fpsWindowAt float64

	width, height int
	frameImg      *image.NRGBA
	upscaled      *image.NRGBA
}

// New returns a viewer that renders through r. Call Initialize before the
// first Update.
func New(cfg Config, r *fractal.Renderer) *Viewer {
	return &Viewer{
		cfg:      cfg,
		renderer: r,
		ctx:      context.Background(),
		mode:     cfg.Mode,
		showUI:   cfg.ShowUI,
		width:    cfg.Width,
		height:   cfg.Height,
	}
}

// Name returns the sample name.
func (v *Viewer) Name() string { return Name }

// Initialize loads the presets and the overlay font and sets up the
// starting view.
func (v *Viewer) Initialize() error {
	if err := v.cfg.Validate(); err != nil {
		return err
	}
	store, err := presets.NewStore(v.cfg.PresetFile)
	if err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	v.store = store
	v.presetNames = store.Names()

	v.params = fractal.DefaultParams(v.cfg.Kind)
	v.presetIdx = -1
	if v.cfg.Preset != "" {
		p, err := store.Get(v.cfg.Preset)
		if err != nil {
			return fmt.Errorf("viewer: %w", err)
		}
		v.params = p.Params()
		v.presetIdx = slices.Index(v.presetNames, p.Name)
	}

	fonts, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return fmt.Errorf("viewer: load font: %w", err)
	}
	v.fonts = fonts
	v.face = fonts.Face(v.cfg.FontSize)
	v.panel = ui.NewPanel(Name, 10, 10, 300)

	fractal.Logger().Info("viewer: initialized",
		"kind", v.params.Kind, "mode", v.mode, "presets", len(v.presetNames))
	return nil
}

// Close releases the font and stops preset watching.
func (v *Viewer) Close() error {
	if v.store != nil {
		v.store.Close()
	}
	if v.fonts != nil {
		return v.fonts.Close()
	}
	return nil
}

// OnQuit sets the callback invoked when Escape is pressed.
func (v *Viewer) OnQuit(fn func()) { v.onQuit = fn }

// SetInput sets the input applied by the next Update.
func (v *Viewer) SetInput(in FrameInput) { v.input = in }

// Params returns the current view.
func (v *Viewer) Params() fractal.Params { return v.params }

// SetParams replaces the view. Out-of-range values are clamped.
func (v *Viewer) SetParams(p fractal.Params) {
	v.params = p.Clamped()
	v.presetIdx = -1
}

// Mode returns the current GPU path.
func (v *Viewer) Mode() fractal.RenderMode { return v.mode }

// ShowUI reports whether the overlay is visible.
func (v *Viewer) ShowUI() bool { return v.showUI }

// Store returns the preset store.
func (v *Viewer) Store() *presets.Store { return v.store }

// Panel returns the overlay panel.
func (v *Viewer) Panel() *ui.Panel { return v.panel }

// Update advances the view by one frame. currTime and elapsed are in
// seconds; animations run on elapsed so pausing does not make them jump.
// When doUpdateUI is false the overlay is not built.
func (v *Viewer) Update(currTime, elapsed float64, doUpdateUI bool) {
	in := v.input
	v.input = FrameInput{}
	v.measureFPS(currTime)
	v.presetNames = v.store.Names()

	uiFocused := false
	wantsMouse := false
	if doUpdateUI && v.showUI {
		v.buildUI(in.UI())
		uiFocused = v.panel.Focus() >= 0
		wantsMouse = v.panel.WantsMouse()
	}

	v.handleKeys(in, uiFocused)
	if !wantsMouse {
		v.handleMouse(in)
	}
	v.animate(elapsed)
	v.params = v.params.Clamped()
}

func (v *Viewer) measureFPS(now float64) {
	v.fpsFrames++
	if dt := now - v.fpsWindowAt; dt >= fpsWindow {
		v.fps = float64(v.fpsFrames) / dt
		v.fpsFrames = 0
		v.fpsWindowAt = now
	}
}

// FPS returns the measured frame rate.
func (v *Viewer) FPS() float64 { return v.fps }

func (v *Viewer) handleKeys(in FrameInput, uiFocused bool) {
	for _, k := range in.Keys {
		switch k {
		case gpucontext.KeyF1:
			v.showUI = !v.showUI
		case gpucontext.KeyM:
			v.mode = v.mode.Toggle()
		case gpucontext.Key1, gpucontext.Key2, gpucontext.Key3, gpucontext.Key4, gpucontext.Key5:
			v.setKind(fractal.Kind(k - gpucontext.Key1))
		case gpucontext.KeyR:
			v.reset()
		case gpucontext.KeyN:
			v.nextPreset(1)
		case gpucontext.KeyPageUp:
			v.params.MaxIter = min(int(float64(v.params.MaxIter)*iterFactor)+1, fractal.MaxIterations)
		case gpucontext.KeyPageDown:
			v.params.MaxIter = max(int(float64(v.params.MaxIter)/iterFactor), fractal.MinIterations)
		case gpucontext.KeyEqual, gpucontext.KeyNumpadAdd:
			v.zoom(keyZoom, float64(v.width)/2, float64(v.height)/2)
		case gpucontext.KeyMinus, gpucontext.KeyNumpadSubtract:
			v.zoom(1/keyZoom, float64(v.width)/2, float64(v.height)/2)
		case gpucontext.KeyEscape:
			if v.onQuit != nil {
				v.onQuit()
			}
		case gpucontext.KeyLeft, gpucontext.KeyRight, gpucontext.KeyUp, gpucontext.KeyDown:
			if !uiFocused {
				v.arrow(k)
			}
		}
	}
}

func (v *Viewer) arrow(k gpucontext.Key) {
	step := panStep * float64(min(v.width, v.height))
	var dx, dy float64
	switch k {
	case gpucontext.KeyLeft:
		dx = step
	case gpucontext.KeyRight:
		dx = -step
	case gpucontext.KeyUp:
		dy = step
	case gpucontext.KeyDown:
		dy = -step
	}
	v.drag(dx, dy)
}

func (v *Viewer) handleMouse(in FrameInput) {
	if in.MouseDown && (in.DX != 0 || in.DY != 0) {
		v.drag(in.DX, in.DY)
	}
	if in.Wheel != 0 {
		v.zoom(math.Pow(wheelZoom, in.Wheel), in.MouseX, in.MouseY)
	}
}

// drag moves the view as if the image were dragged by (dx, dy) pixels.
// 3D kinds orbit the camera instead.
func (v *Viewer) drag(dx, dy float64) {
	if v.params.Kind.Is3D() {
		v.params.Camera.Orbit(float32(-dx*orbitSpeed), float32(dy*orbitSpeed))
		return
	}
	v.params.Pan(dx, dy, v.width, v.height)
}

// zoom magnifies by factor around pixel (x, y). 3D kinds dolly the camera.
func (v *Viewer) zoom(factor, x, y float64) {
	if v.params.Kind.Is3D() {
		v.params.Camera.Dolly(float32(1 / factor))
		return
	}
	v.params.ZoomAt(factor, x, y, v.width, v.height)
}

func (v *Viewer) animate(elapsed float64) {
	p := &v.params
	animating := p.Kind == fractal.Julia && p.AnimateJulia || p.Kind.Is3D() && p.AutoRotate
	if !animating || elapsed <= 0 {
		return
	}
	v.time += elapsed
	switch {
	case p.Kind == fractal.Julia:
		a := juliaSpeed * v.time
		p.JuliaC = [2]float64{juliaRadius * math.Cos(a), juliaRadius * math.Sin(a)}
	case p.Kind.Is3D():
		p.Camera.Orbit(float32(rotateSpeed*elapsed), 0)
	}
}

// setKind switches fractals, keeping display preferences.
func (v *Viewer) setKind(k fractal.Kind) {
	if !k.Valid() {
		return
	}
	next := fractal.DefaultParams(k)
	keepDisplay(&next, v.params)
	v.params = next
	v.presetIdx = -1
}

func (v *Viewer) reset() {
	v.setKind(v.params.Kind)
}

func (v *Viewer) nextPreset(step int) {
	if len(v.presetNames) == 0 {
		return
	}
	i := (v.presetIdx + step + len(v.presetNames)) % len(v.presetNames)
	v.applyPreset(i)
}

func (v *Viewer) applyPreset(i int) {
	p, err := v.store.Get(v.presetNames[i])
	if err != nil {
		fractal.Logger().Warn("viewer: preset vanished", "name", v.presetNames[i], "err", err)
		return
	}
	p.Apply(&v.params)
	v.presetIdx = i
}

func keepDisplay(dst *fractal.Params, src fractal.Params) {
	dst.Exposure = src.Exposure
	dst.ColorShift = src.ColorShift
	dst.Smooth = src.Smooth
	dst.AnimateJulia = src.AnimateJulia
	dst.AutoRotate = src.AutoRotate
}

// buildUI lays out the parameter panel and applies its edits.
func (v *Viewer) buildUI(in ui.Input) {
	p := v.panel
	params := &v.params
	p.Begin(in)

	p.Text("%.0f fps  %.1f ms  %s", v.fps, float64(v.frameTime.Microseconds())/1000, v.renderer.LastBackend())
	p.Separator()

	kind := int(params.Kind)
	if p.Combo("fractal", &kind, kindNames()) {
		v.setKind(fractal.Kind(kind))
	}
	mode := int(v.mode)
	if p.Combo("render mode", &mode, modeNames) {
		v.mode = fractal.RenderMode(mode)
	}
	if len(v.presetNames) > 0 {
		// Item 0 stands for hand-edited parameters.
		items := append([]string{customPreset}, v.presetNames...)
		idx := v.presetIdx + 1
		if p.Combo("preset", &idx, items) {
			if idx == 0 {
				v.presetIdx = -1
			} else {
				v.applyPreset(idx - 1)
			}
		}
	}
	p.Separator()

	if params.Kind.Is3D() {
		p.SliderInt("iterations", &params.MaxIter, 2, 32)
		p.SliderInt("max steps", &params.MaxSteps, 16, fractal.MaxSteps)
		p.SliderFloat("power", &params.Power, fractal.MinPower, fractal.MaxPower)
		dist := float64(params.Camera.Distance)
		if p.SliderFloat("distance", &dist, fractal.MinCameraDistance, fractal.MaxCameraDistance) {
			params.Camera.Distance = float32(dist)
		}
	} else {
		p.SliderInt("iterations", &params.MaxIter, fractal.MinIterations, fractal.MaxIterations)
		zoom := math.Log10(params.Zoom)
		if p.SliderFloat("zoom (log10)", &zoom, -1, 13) {
			params.Zoom = math.Pow(10, zoom)
		}
		p.SliderFloat("bailout", &params.Bailout, fractal.MinBailout, 256)
	}
	if params.Kind == fractal.Julia {
		p.SliderFloat("julia c re", &params.JuliaC[0], -2, 2)
		p.SliderFloat("julia c im", &params.JuliaC[1], -2, 2)
	}
	p.Separator()

	pal := max(fractal.PaletteIndex(params.Palette.Name), 0)
	if p.Combo("palette", &pal, fractal.PaletteNames()) {
		params.Palette = fractal.Palettes()[pal]
	}
	p.SliderFloat("exposure", &params.Exposure, 0.1, 4)
	p.SliderFloat("color shift", &params.ColorShift, 0, 1)
	p.Checkbox("smooth", &params.Smooth)
	switch {
	case params.Kind == fractal.Julia:
		p.Checkbox("animate julia", &params.AnimateJulia)
	case params.Kind.Is3D():
		p.Checkbox("auto rotate", &params.AutoRotate)
	}
	p.SliderFloat("render scale", &v.cfg.RenderScale, 0.1, 1)
	p.Separator()

	if p.Button("reset view") {
		v.reset()
	}
	p.End()
}

func kindNames() []string {
	ks := fractal.Kinds()
	names := make([]string, len(ks))
	for i, k := range ks {
		names[i] = k.String()
	}
	return names
}

// Render draws the frame into dc.
func (v *Viewer) Render(dc *gg.Context) error {
	dc.ClearWithColor(clearColor)
	w, h := dc.Width(), dc.Height()
	if w <= 0 || h <= 0 {
		return nil
	}
	v.width, v.height = w, h

	rw := max(int(float64(w)*v.cfg.RenderScale), minRenderDim)
	rh := max(int(float64(h)*v.cfg.RenderScale), minRenderDim)
	v.frameImg = reuse(v.frameImg, rw, rh)

	frame := fractal.Frame{Params: v.params, Width: rw, Height: rh, Time: v.time, Mode: v.mode}
	start := time.Now()
	if err := v.renderer.RenderInto(v.ctx, fractal.TargetFromImage(v.frameImg), frame); err != nil {
		return fmt.Errorf("viewer: render: %w", err)
	}
	v.frameTime = time.Since(start)

	src := v.frameImg
	if rw != w || rh != h {
		v.upscaled = reuse(v.upscaled, w, h)
		draw.BiLinear.Scale(v.upscaled, v.upscaled.Bounds(), src, src.Bounds(), draw.Src, nil)
		src = v.upscaled
	}
	dc.DrawImage(gg.ImageBufFromImage(src), 0, 0)

	if v.showUI && v.panel != nil {
		if err := v.panel.Draw(dc, v.face); err != nil {
			return fmt.Errorf("viewer: overlay: %w", err)
		}
	}
	v.drawStatus(dc)
	return nil
}

func (v *Viewer) drawStatus(dc *gg.Context) {
	if v.face == nil {
		return
	}
	status := fmt.Sprintf("%s | %s | %s | %.1f ms", v.mode, v.renderer.LastBackend(), v.params.Kind,
		float64(v.frameTime.Microseconds())/1000)
	dc.SetFont(v.face)
	dc.SetRGBA(0.9, 0.9, 0.95, 1)
	dc.DrawStringAnchored(status, float64(dc.Width())-10, float64(dc.Height())-10, 1, 0)
}

func reuse(img *image.NRGBA, w, h int) *image.NRGBA {
	if img != nil && img.Rect.Dx() == w && img.Rect.Dy() == h {
		return img
	}
	return image.NewNRGBA(image.Rect(0, 0, w, h))
}
