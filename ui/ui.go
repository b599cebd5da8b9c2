// Package ui implements the immediate-mode parameter overlay of the viewer.
//
// A Panel is rebuilt every frame: Begin receives the frame's input, each
// widget call both records its layout and reports whether it changed the
// bound value, and End closes the frame. Draw renders the recorded widgets
// with gg, so widget behavior can be tested without a canvas.
//
//	p.Begin(in)
//	if p.SliderInt("iterations", &params.MaxIter, 16, 2000) {
//	    dirty = true
//	}
//	p.End()
//	p.Draw(dc, face)
package ui

// Key is a navigation key understood by the panel.
type Key uint8

const (
	KeyNone Key = iota
	KeyTab
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeySpace
)

// Input is the pointer and keyboard state of one frame.
type Input struct {
	MouseX, MouseY float64

	// MouseDown is the primary button state; MousePressed and
	// MouseReleased are edges seen since the previous frame.
	MouseDown     bool
	MousePressed  bool
	MouseReleased bool

	// Wheel is the accumulated vertical scroll in lines.
	Wheel float64

	// Keys lists the navigation keys pressed since the previous frame.
	Keys  []Key
	Shift bool
}

// Pressed reports whether k was pressed this frame.
func (in Input) Pressed(k Key) bool {
	for _, got := range in.Keys {
		if got == k {
			return true
		}
	}
	return false
}

// Rect is an axis-aligned rectangle in canvas pixels.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}
