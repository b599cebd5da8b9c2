package fractal

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidFrame indicates a frame that cannot be rendered (empty size,
// mismatched target).
var ErrInvalidFrame = errors.New("fractal: invalid frame")

// Frame is one render request.
type Frame struct {
	Params Params
	Width  int
	Height int

	// Time is the animation clock in seconds, forwarded to the shaders.
	Time float64

	Mode RenderMode
}

// Validate checks the frame size and its params.
func (f Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidFrame, f.Width, f.Height)
	}
	return f.Params.Validate()
}

// Target provides pixel buffer access for render output.
// Data holds non-premultiplied RGBA, 4 bytes per pixel, row by row with the
// given Stride. Every pixel written by a renderer is opaque.
type Target struct {
	Data          []uint8
	Width, Height int
	Stride        int // bytes per row
}

// TargetFromImage wraps img's pixel buffer without copying.
func TargetFromImage(img *image.NRGBA) Target {
	b := img.Bounds()
	return Target{
		Data:   img.Pix,
		Width:  b.Dx(),
		Height: b.Dy(),
		Stride: img.Stride,
	}
}

// check reports whether the target can hold a frame of the given size.
func (t Target) check(width, height int) error {
	if t.Width != width || t.Height != height {
		return fmt.Errorf("%w: target %dx%d, frame %dx%d", ErrInvalidFrame, t.Width, t.Height, width, height)
	}
	if t.Stride < width*4 || len(t.Data) < (height-1)*t.Stride+width*4 {
		return fmt.Errorf("%w: target buffer too small", ErrInvalidFrame)
	}
	return nil
}
