package fractal

import (
	"context"
	"sync"

	"github.com/gogpu/fractal/internal/parallel"
)

// cpuRenderer shades frames tile by tile on a work-stealing pool.
type cpuRenderer struct {
	mu     sync.Mutex
	pool   *parallel.WorkerPool
	grid   *parallel.TileGrid
	closed bool
}

func newCPURenderer(workers int) *cpuRenderer {
	return &cpuRenderer{
		pool: parallel.NewWorkerPool(workers),
		grid: parallel.NewTileGrid(0, 0),
	}
}

// render fills target with frame. Cancellation is checked per tile row;
// a cancelled render leaves target partially written and returns ctx.Err().
func (c *cpuRenderer) render(ctx context.Context, target Target, frame Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrRendererClosed
	}

	c.grid.Resize(frame.Width, frame.Height)
	tiles := c.grid.CenterFirst()

	work := make([]func(), len(tiles))
	for i, tile := range tiles {
		work[i] = func() {
			if ctx.Err() != nil {
				return
			}
			shadeTile(ctx, tile, frame)
			tile.CopyTo(target.Data, target.Stride)
		}
	}
	c.pool.ExecuteAll(work)
	return ctx.Err()
}

func shadeTile(ctx context.Context, tile *parallel.Tile, frame Frame) {
	x0, y0, w, h := tile.Bounds()
	for py := range h {
		if ctx.Err() != nil {
			return
		}
		for px := range w {
			c := ShadePixel(frame, x0+px, y0+py)
			off := tile.PixelOffset(px, py)
			tile.Data[off+0] = c.R
			tile.Data[off+1] = c.G
			tile.Data[off+2] = c.B
			tile.Data[off+3] = c.A
		}
	}
}

func (c *cpuRenderer) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.pool.Close()
	c.grid.Close()
}
