package viewer

import (
	"slices"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/fractal/ui"
)

// FrameInput is the input gathered between two frames.
type FrameInput struct {
	MouseX, MouseY float64

	// DX and DY are the pointer movement while the primary button was held.
	DX, DY float64

	MouseDown     bool
	MousePressed  bool
	MouseReleased bool
	Wheel         float64

	Keys []gpucontext.Key
	Mods gpucontext.Modifiers
}

// Pressed reports whether k was pressed during the frame.
func (in FrameInput) Pressed(k gpucontext.Key) bool {
	return slices.Contains(in.Keys, k)
}

var uiKeys = map[gpucontext.Key]ui.Key{
	gpucontext.KeyTab:         ui.KeyTab,
	gpucontext.KeyUp:          ui.KeyUp,
	gpucontext.KeyDown:        ui.KeyDown,
	gpucontext.KeyLeft:        ui.KeyLeft,
	gpucontext.KeyRight:       ui.KeyRight,
	gpucontext.KeyEnter:       ui.KeyEnter,
	gpucontext.KeyNumpadEnter: ui.KeyEnter,
	gpucontext.KeySpace:       ui.KeySpace,
}

// UI converts the frame input for the overlay panel.
func (in FrameInput) UI() ui.Input {
	out := ui.Input{
		MouseX:        in.MouseX,
		MouseY:        in.MouseY,
		MouseDown:     in.MouseDown,
		MousePressed:  in.MousePressed,
		MouseReleased: in.MouseReleased,
		Wheel:         in.Wheel,
		Shift:         in.Mods.HasShift(),
	}
	for _, k := range in.Keys {
		if uk, ok := uiKeys[k]; ok {
			out.Keys = append(out.Keys, uk)
		}
	}
	return out
}

// InputQueue accumulates window events until the next frame drains them.
// Its methods match the gpucontext.EventSource callbacks.
type InputQueue struct {
	mu    sync.Mutex
	state FrameInput
}

// NewInputQueue returns an empty queue.
func NewInputQueue() *InputQueue { return &InputQueue{} }

// Attach registers the queue's callbacks on src.
func (q *InputQueue) Attach(src gpucontext.EventSource) {
	src.OnKeyPress(q.KeyPress)
	src.OnMouseMove(q.MouseMove)
	src.OnMousePress(q.MousePress)
	src.OnMouseRelease(q.MouseRelease)
	src.OnScroll(q.Scroll)
}

// KeyPress records a key press.
func (q *InputQueue) KeyPress(key gpucontext.Key, mods gpucontext.Modifiers) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.state.Keys = append(q.state.Keys, key)
	q.state.Mods = mods
}

// MouseMove records the pointer position.
func (q *InputQueue) MouseMove(x, y float64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state.MouseDown {
		q.state.DX += x - q.state.MouseX
		q.state.DY += y - q.state.MouseY
	}
	q.state.MouseX, q.state.MouseY = x, y
}

// MousePress records a press of the primary button.
func (q *InputQueue) MousePress(button gpucontext.MouseButton, x, y float64) {
	if button != gpucontext.MouseButtonLeft {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.state.MouseX, q.state.MouseY = x, y
	q.state.MouseDown = true
	q.state.MousePressed = true
}

// MouseRelease records a release of the primary button.
func (q *InputQueue) MouseRelease(button gpucontext.MouseButton, x, y float64) {
	if button != gpucontext.MouseButtonLeft {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.state.MouseX, q.state.MouseY = x, y
	q.state.MouseDown = false
	q.state.MouseReleased = true
}

// Scroll records wheel movement. Positive dy scrolls up.
func (q *InputQueue) Scroll(_, dy float64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.state.Wheel += dy
}

// Drain returns the input gathered since the last call and clears the
// per-frame edges. Pointer position and button state carry over.
func (q *InputQueue) Drain() FrameInput {
	q.mu.Lock()
	defer q.mu.Unlock()
	in := q.state
	q.state = FrameInput{
		MouseX:    in.MouseX,
		MouseY:    in.MouseY,
		MouseDown: in.MouseDown,
		Mods:      in.Mods,
	}
	return in
}
