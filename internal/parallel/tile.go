// Package parallel provides tile-based parallel rendering infrastructure for
// the CPU fractal evaluator.
//
// A frame is divided into 64x64 pixel tiles that are shaded independently by
// a work-stealing WorkerPool:
//
//   - 64x64 tiles keep one tile's pixels (16KB of RGBA) in L1 cache
//   - tile buffers are pooled via sync.Pool and reused across frames
//   - tiles can be visited center-first so previews fill from the middle
//
// Thread safety: TileGrid is NOT thread-safe. Each tile may be written by
// exactly one worker at a time.
package parallel

// Tile size constants.
const (
	// TileWidth is the width of a tile in pixels.
	TileWidth = 64

	// TileHeight is the height of a tile in pixels.
	TileHeight = 64

	// TilePixels is the number of pixels in a full tile.
	TilePixels = TileWidth * TileHeight

	// TileBytes is the size of a full tile in bytes (RGBA).
	TileBytes = TilePixels * 4
)

// Tile is a rectangular region of a frame with its own RGBA buffer.
// Edge tiles are smaller when the frame is not a multiple of the tile size.
type Tile struct {
	// X and Y are the tile column and row (0-based).
	X, Y int

	// Width and Height are the tile size in pixels.
	Width, Height int

	// Data holds Width*Height*4 bytes of RGBA, row by row.
	Data []byte
}

// Reset zeroes the pixel data.
func (t *Tile) Reset() {
	clear(t.Data)
}

// Bounds returns the tile's pixel rectangle in frame space.
func (t *Tile) Bounds() (x, y, w, h int) {
	return t.X * TileWidth, t.Y * TileHeight, t.Width, t.Height
}

// Stride returns the row stride in bytes.
func (t *Tile) Stride() int {
	return t.Width * 4
}

// PixelOffset returns the byte offset of tile-local pixel (px, py), or -1
// when the pixel lies outside the tile.
func (t *Tile) PixelOffset(px, py int) int {
	if px < 0 || px >= t.Width || py < 0 || py >= t.Height {
		return -1
	}
	return (py*t.Width + px) * 4
}

// Contains reports whether frame pixel (cx, cy) lies inside the tile.
func (t *Tile) Contains(cx, cy int) bool {
	x, y, w, h := t.Bounds()
	return cx >= x && cx < x+w && cy >= y && cy < y+h
}

// CopyTo copies the tile's rows into dst, a frame buffer with the given
// stride. Rows that would fall outside dst are skipped.
func (t *Tile) CopyTo(dst []byte, dstStride int) {
	x0, y0, _, _ := t.Bounds()
	rowBytes := t.Stride()
	for row := range t.Height {
		off := (y0+row)*dstStride + x0*4
		if off < 0 || off+rowBytes > len(dst) {
			return
		}
		copy(dst[off:off+rowBytes], t.Data[row*rowBytes:(row+1)*rowBytes])
	}
}
