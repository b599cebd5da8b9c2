package ui

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Layout metrics in pixels.
const (
	RowHeight   = 22.0
	Padding     = 8.0
	TitleHeight = 26.0

	labelFraction = 0.42
	separatorH    = 9.0
)

// WidgetKind identifies a recorded widget.
type WidgetKind uint8

const (
	WidgetText WidgetKind = iota
	WidgetSlider
	WidgetCheckbox
	WidgetCombo
	WidgetButton
	WidgetSeparator
)

// Widget is the recorded layout and state of one widget in the current
// frame.
type Widget struct {
	Kind  WidgetKind
	Label string

	// Value is the display text of the widget's value.
	Value string

	// Fraction is the slider fill in [0, 1].
	Fraction float64
	Checked  bool

	Row     Rect
	Control Rect

	Focused bool
	Hot     bool
}

// Panel is an immediate-mode widget panel.
type Panel struct {
	title string
	x, y  float64
	width float64

	caser cases.Caser

	in      Input
	cursorY float64
	widgets []Widget

	// focus indexes focusable widgets in call order. -1 means none.
	focus      int
	focusables int
	prevCount  int
	active     int
	height     float64
}

// NewPanel returns a panel whose top-left corner is at (x, y).
func NewPanel(title string, x, y, width float64) *Panel {
	return &Panel{
		title:  title,
		x:      x,
		y:      y,
		width:  width,
		caser:  cases.Title(language.English),
		focus:  -1,
		active: -1,
		height: TitleHeight + Padding,
	}
}

// Title returns the panel title.
func (p *Panel) Title() string { return p.title }

// SetPosition moves the panel's top-left corner.
func (p *Panel) SetPosition(x, y float64) { p.x, p.y = x, y }

// Bounds returns the panel rectangle as laid out by the last End.
func (p *Panel) Bounds() Rect {
	return Rect{X: p.x, Y: p.y, W: p.width, H: p.height}
}

// Widgets returns the widgets recorded in the current or last frame.
func (p *Panel) Widgets() []Widget { return p.widgets }

// Focus returns the index of the focused focusable widget, or -1.
func (p *Panel) Focus() int { return p.focus }

// WantsMouse reports whether the pointer is over the panel or dragging one
// of its sliders. The caller should not use the mouse for anything else.
func (p *Panel) WantsMouse() bool {
	return p.active >= 0 || p.Bounds().Contains(p.in.MouseX, p.in.MouseY)
}

// Begin starts a frame with in. Focus movement keys are applied against
// the widget count of the previous frame. A click outside the panel drops
// focus.
func (p *Panel) Begin(in Input) {
	p.in = in
	p.widgets = p.widgets[:0]
	p.cursorY = p.y + TitleHeight
	p.prevCount = p.focusables
	p.focusables = 0

	if in.MouseReleased || !in.MouseDown {
		p.active = -1
	}
	if in.MousePressed && !p.Bounds().Contains(in.MouseX, in.MouseY) {
		p.focus = -1
	}
	if p.prevCount == 0 {
		return
	}
	switch {
	case in.Pressed(KeyTab) && in.Shift, in.Pressed(KeyUp):
		p.moveFocus(-1)
	case in.Pressed(KeyTab), in.Pressed(KeyDown):
		p.moveFocus(1)
	}
}

func (p *Panel) moveFocus(delta int) {
	if p.focus < 0 {
		if delta > 0 {
			p.focus = 0
		} else {
			p.focus = p.prevCount - 1
		}
		return
	}
	p.focus = (p.focus + delta + p.prevCount) % p.prevCount
}

// End finishes the frame and fixes the panel height.
func (p *Panel) End() {
	p.height = p.cursorY - p.y + Padding
	if p.focus >= p.focusables {
		p.focus = p.focusables - 1
	}
}

// row reserves a row of height h and returns its rectangle and the
// control area to the right of the label.
func (p *Panel) row(h float64) (row, control Rect) {
	row = Rect{X: p.x + Padding, Y: p.cursorY, W: p.width - 2*Padding, H: h}
	labelW := row.W * labelFraction
	control = Rect{X: row.X + labelW, Y: row.Y + 3, W: row.W - labelW, H: h - 6}
	p.cursorY += h
	return row, control
}

// focusable registers a focusable widget and reports its id, whether it is
// focused and whether it was clicked this frame. A click moves focus.
func (p *Panel) focusable(row Rect) (id int, focused, clicked bool) {
	id = p.focusables
	p.focusables++
	if p.in.MousePressed && row.Contains(p.in.MouseX, p.in.MouseY) {
		p.focus = id
		clicked = true
	}
	return id, p.focus == id, clicked
}

func (p *Panel) hot(r Rect) bool {
	return r.Contains(p.in.MouseX, p.in.MouseY)
}

func (p *Panel) add(w Widget) {
	w.Label = p.caser.String(w.Label)
	p.widgets = append(p.widgets, w)
}

// Text adds a non-interactive line. With args, label is a format string.
func (p *Panel) Text(label string, args ...any) {
	if len(args) > 0 {
		label = fmt.Sprintf(label, args...)
	}
	row, _ := p.row(RowHeight)
	// Free text keeps its case.
	p.widgets = append(p.widgets, Widget{Kind: WidgetText, Label: label, Row: row})
}

// Separator adds a horizontal rule.
func (p *Panel) Separator() {
	row, _ := p.row(separatorH)
	p.add(Widget{Kind: WidgetSeparator, Row: row})
}

// SliderFloat edits *v within [lo, hi]. Dragging sets the value at the
// pointer; Left and Right step by one percent of the range.
func (p *Panel) SliderFloat(label string, v *float64, lo, hi float64) bool {
	row, ctl := p.row(RowHeight)
	id, focused, clicked := p.focusable(row)
	old := *v

	if clicked && ctl.Contains(p.in.MouseX, p.in.MouseY) {
		p.active = id
	}
	if p.active == id && p.in.MouseDown {
		*v = lo + clamp01((p.in.MouseX-ctl.X)/ctl.W)*(hi-lo)
	}
	if focused {
		step := (hi - lo) / 100
		if p.in.Pressed(KeyLeft) {
			*v -= step
		}
		if p.in.Pressed(KeyRight) {
			*v += step
		}
	}
	*v = clampf(*v, lo, hi)

	p.add(Widget{
		Kind:     WidgetSlider,
		Label:    label,
		Value:    formatFloat(*v),
		Fraction: fraction(*v, lo, hi),
		Row:      row,
		Control:  ctl,
		Focused:  focused,
		Hot:      p.hot(row),
	})
	return *v != old
}

// SliderInt edits *v within [lo, hi]. Left and Right step by one.
func (p *Panel) SliderInt(label string, v *int, lo, hi int) bool {
	row, ctl := p.row(RowHeight)
	id, focused, clicked := p.focusable(row)
	old := *v

	if clicked && ctl.Contains(p.in.MouseX, p.in.MouseY) {
		p.active = id
	}
	if p.active == id && p.in.MouseDown {
		f := clamp01((p.in.MouseX - ctl.X) / ctl.W)
		*v = lo + int(math.Round(f*float64(hi-lo)))
	}
	if focused {
		if p.in.Pressed(KeyLeft) {
			*v--
		}
		if p.in.Pressed(KeyRight) {
			*v++
		}
	}
	*v = min(max(*v, lo), hi)

	p.add(Widget{
		Kind:     WidgetSlider,
		Label:    label,
		Value:    strconv.Itoa(*v),
		Fraction: fraction(float64(*v), float64(lo), float64(hi)),
		Row:      row,
		Control:  ctl,
		Focused:  focused,
		Hot:      p.hot(row),
	})
	return *v != old
}

// Checkbox toggles *v on click, Enter or Space.
func (p *Panel) Checkbox(label string, v *bool) bool {
	row, ctl := p.row(RowHeight)
	_, focused, clicked := p.focusable(row)
	changed := clicked || focused && (p.in.Pressed(KeyEnter) || p.in.Pressed(KeySpace))
	if changed {
		*v = !*v
	}
	ctl.W = ctl.H
	p.add(Widget{
		Kind:    WidgetCheckbox,
		Label:   label,
		Checked: *v,
		Row:     row,
		Control: ctl,
		Focused: focused,
		Hot:     p.hot(row),
	})
	return changed
}

// Combo selects *v among items. A click, Enter, Space or Right picks the
// next item and Left the previous one; both wrap around.
func (p *Panel) Combo(label string, v *int, items []string) bool {
	row, ctl := p.row(RowHeight)
	_, focused, clicked := p.focusable(row)
	n := len(items)
	if n == 0 {
		p.add(Widget{Kind: WidgetCombo, Label: label, Row: row, Control: ctl, Focused: focused})
		return false
	}
	old := *v
	*v = ((*v % n) + n) % n

	step := 0
	switch {
	case clicked && p.in.Shift:
		step = -1
	case clicked:
		step = 1
	}
	if focused {
		switch {
		case p.in.Pressed(KeyLeft):
			step = -1
		case p.in.Pressed(KeyRight), p.in.Pressed(KeyEnter), p.in.Pressed(KeySpace):
			step = 1
		}
	}
	*v = (*v + step + n) % n

	p.add(Widget{
		Kind:    WidgetCombo,
		Label:   label,
		Value:   items[*v],
		Row:     row,
		Control: ctl,
		Focused: focused,
		Hot:     p.hot(row),
	})
	return *v != old
}

// Button reports whether the button was pressed by click, Enter or Space.
func (p *Panel) Button(label string) bool {
	row, _ := p.row(RowHeight)
	_, focused, clicked := p.focusable(row)
	pressed := clicked || focused && (p.in.Pressed(KeyEnter) || p.in.Pressed(KeySpace))
	p.add(Widget{
		Kind:    WidgetButton,
		Label:   label,
		Row:     row,
		Control: Rect{X: row.X, Y: row.Y + 2, W: row.W, H: row.H - 4},
		Focused: focused,
		Hot:     p.hot(row),
	})
	return pressed
}

func clamp01(f float64) float64 { return clampf(f, 0, 1) }

func clampf(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func fraction(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return clamp01((v - lo) / (hi - lo))
}

func formatFloat(v float64) string {
	a := math.Abs(v)
	switch {
	case a != 0 && (a < 0.001 || a >= 1e5):
		return strconv.FormatFloat(v, 'g', 4, 64)
	case a < 10:
		return strconv.FormatFloat(v, 'f', 3, 64)
	default:
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
}
