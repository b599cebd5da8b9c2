package ui

import (
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
)

// Theme colors as straight RGBA in [0, 1].
type Theme struct {
	Background [4]float64
	Title      [4]float64
	Text       [4]float64
	Track      [4]float64
	Fill       [4]float64
	Focus      [4]float64
	Hot        [4]float64
}

// DefaultTheme is a dark translucent theme.
var DefaultTheme = Theme{
	Background: [4]float64{0.08, 0.08, 0.11, 0.82},
	Title:      [4]float64{0.22, 0.30, 0.52, 0.95},
	Text:       [4]float64{0.92, 0.92, 0.95, 1},
	Track:      [4]float64{0.20, 0.21, 0.27, 1},
	Fill:       [4]float64{0.36, 0.52, 0.88, 1},
	Focus:      [4]float64{0.95, 0.75, 0.30, 1},
	Hot:        [4]float64{1, 1, 1, 0.06},
}

// painter draws shapes and keeps the first error.
type painter struct {
	dc  *gg.Context
	err error
}

func (p *painter) color(c [4]float64) { p.dc.SetRGBA(c[0], c[1], c[2], c[3]) }

func (p *painter) fill() {
	if err := p.dc.Fill(); err != nil && p.err == nil {
		p.err = err
	}
}

func (p *painter) stroke() {
	if err := p.dc.Stroke(); err != nil && p.err == nil {
		p.err = err
	}
}

func (p *painter) rect(r Rect, c [4]float64) {
	p.color(c)
	p.dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	p.fill()
}

func (p *painter) outline(r Rect, c [4]float64) {
	p.color(c)
	p.dc.SetLineWidth(1.5)
	p.dc.DrawRectangle(r.X+0.5, r.Y+0.5, r.W-1, r.H-1)
	p.stroke()
}

// Draw renders the widgets recorded in the last frame with DefaultTheme.
// Text is skipped when face is nil.
func (p *Panel) Draw(dc *gg.Context, face text.Face) error {
	return p.DrawTheme(dc, face, DefaultTheme)
}

// DrawTheme renders the recorded widgets with th.
func (p *Panel) DrawTheme(dc *gg.Context, face text.Face, th Theme) error {
	pt := &painter{dc: dc}
	b := p.Bounds()

	pt.color(th.Background)
	dc.DrawRoundedRectangle(b.X, b.Y, b.W, b.H, 6)
	pt.fill()
	pt.rect(Rect{X: b.X, Y: b.Y, W: b.W, H: TitleHeight}, th.Title)

	if face != nil {
		dc.SetFont(face)
		pt.color(th.Text)
		dc.DrawStringAnchored(p.title, b.X+Padding, b.Y+TitleHeight/2, 0, 0.5)
	}

	for _, w := range p.widgets {
		if w.Hot && w.Kind != WidgetText && w.Kind != WidgetSeparator {
			pt.rect(w.Row, th.Hot)
		}
		midY := w.Row.Y + w.Row.H/2

		switch w.Kind {
		case WidgetSeparator:
			pt.rect(Rect{X: w.Row.X, Y: midY, W: w.Row.W, H: 1}, th.Track)

		case WidgetSlider:
			pt.rect(w.Control, th.Track)
			fill := w.Control
			fill.W *= w.Fraction
			pt.rect(fill, th.Fill)

		case WidgetCheckbox:
			pt.rect(w.Control, th.Track)
			if w.Checked {
				inner := Rect{X: w.Control.X + 3, Y: w.Control.Y + 3, W: w.Control.W - 6, H: w.Control.H - 6}
				pt.rect(inner, th.Fill)
			}

		case WidgetCombo, WidgetButton:
			pt.rect(w.Control, th.Track)
		}

		if w.Focused {
			pt.outline(w.Row, th.Focus)
		}

		if face == nil {
			continue
		}
		pt.color(th.Text)
		switch w.Kind {
		case WidgetText:
			dc.DrawStringAnchored(w.Label, w.Row.X, midY, 0, 0.5)
		case WidgetButton:
			dc.DrawStringAnchored(w.Label, w.Control.X+w.Control.W/2, midY, 0.5, 0.5)
		case WidgetSlider:
			dc.DrawStringAnchored(w.Label, w.Row.X, midY, 0, 0.5)
			dc.DrawStringAnchored(w.Value, w.Control.X+w.Control.W/2, midY, 0.5, 0.5)
		case WidgetCombo:
			dc.DrawStringAnchored(w.Label, w.Row.X, midY, 0, 0.5)
			dc.DrawStringAnchored("< "+w.Value+" >", w.Control.X+w.Control.W/2, midY, 0.5, 0.5)
		case WidgetCheckbox:
			dc.DrawStringAnchored(w.Label, w.Row.X, midY, 0, 0.5)
		}
	}
	return pt.err
}
