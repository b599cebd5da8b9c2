//go:build !nogpu

package gpu

import (
	"encoding/binary"

	"github.com/chewxy/math32"

	"github.com/gogpu/fractal"
)

var le = binary.LittleEndian

const (
	bytesPerPixel = 4

	// copyRowAlignment is the bytes-per-row alignment required for
	// texture-to-buffer copies.
	copyRowAlignment = 256
)

func align(n, a uint32) uint32 {
	return (n + a - 1) / a * a
}

// paddedRowBytes returns the readback row pitch for a texture width.
func paddedRowBytes(width uint32) uint32 {
	return align(width*bytesPerPixel, copyRowAlignment)
}

// dispatchSize returns the workgroup count covering n pixels.
func dispatchSize(n, group uint32) uint32 {
	return (n + group - 1) / group
}

// unpadRows copies a padded readback into target row by row and forces
// alpha opaque.
func unpadRows(src []byte, pitch int, target fractal.Target) {
	rowBytes := target.Width * bytesPerPixel
	for y := range target.Height {
		s := src[y*pitch : y*pitch+rowBytes]
		d := target.Data[y*target.Stride : y*target.Stride+rowBytes]
		copy(d, s)
		for x := 3; x < rowBytes; x += bytesPerPixel {
			d[x] = 0xff
		}
	}
}

// quadVertices is a fullscreen quad in clip space, counter-clockwise from
// the bottom-left corner.
var quadVertices = [...]float32{
	-1, -1,
	1, -1,
	1, 1,
	-1, 1,
}

var quadIndices = [...]uint16{0, 1, 2, 0, 2, 3}

func quadVertexBytes() []byte {
	b := make([]byte, 0, len(quadVertices)*4)
	for _, v := range quadVertices {
		b = le.AppendUint32(b, math32.Float32bits(v))
	}
	return b
}

func quadIndexBytes() []byte {
	b := make([]byte, 0, len(quadIndices)*2)
	for _, i := range quadIndices {
		b = le.AppendUint16(b, i)
	}
	return b
}
