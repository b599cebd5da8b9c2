package parallel

import (
	"testing"
)

func TestNewTileGrid(t *testing.T) {
	tests := []struct {
		name           string
		w, h           int
		tilesX, tilesY int
		lastW, lastH   int
	}{
		{"exact", 128, 64, 2, 1, 64, 64},
		{"edge tiles", 100, 70, 2, 2, 36, 6},
		{"smaller than tile", 10, 20, 1, 1, 10, 20},
		{"empty", 0, 50, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewTileGrid(tt.w, tt.h)
			defer g.Close()

			if g.TilesX() != tt.tilesX || g.TilesY() != tt.tilesY {
				t.Fatalf("tiles = %dx%d, want %dx%d", g.TilesX(), g.TilesY(), tt.tilesX, tt.tilesY)
			}
			if g.TileCount() != tt.tilesX*tt.tilesY {
				t.Errorf("TileCount() = %d, want %d", g.TileCount(), tt.tilesX*tt.tilesY)
			}
			if g.TileCount() == 0 {
				return
			}
			last := g.TileAt(tt.tilesX-1, tt.tilesY-1)
			if last.Width != tt.lastW || last.Height != tt.lastH {
				t.Errorf("last tile = %dx%d, want %dx%d", last.Width, last.Height, tt.lastW, tt.lastH)
			}
			if len(last.Data) != last.Width*last.Height*4 {
				t.Errorf("len(Data) = %d, want %d", len(last.Data), last.Width*last.Height*4)
			}
		})
	}
}

func TestTileGrid_CoversEveryPixelOnce(t *testing.T) {
	const w, h = 150, 97
	g := NewTileGrid(w, h)
	defer g.Close()

	hits := make([]int, w*h)
	g.ForEach(func(tile *Tile) {
		x0, y0, tw, th := tile.Bounds()
		for y := y0; y < y0+th; y++ {
			for x := x0; x < x0+tw; x++ {
				hits[y*w+x]++
			}
		}
	})
	for i, n := range hits {
		if n != 1 {
			t.Fatalf("pixel (%d,%d) covered %d times", i%w, i/w, n)
		}
	}
}

func TestTileGrid_TileAtPixel(t *testing.T) {
	g := NewTileGrid(200, 200)
	defer g.Close()

	tile := g.TileAtPixel(130, 65)
	if tile == nil || tile.X != 2 || tile.Y != 1 {
		t.Fatalf("TileAtPixel(130,65) = %+v, want tile (2,1)", tile)
	}
	if !tile.Contains(130, 65) {
		t.Error("tile should contain the pixel it was looked up by")
	}
	if g.TileAtPixel(-1, 0) != nil || g.TileAtPixel(0, 200) != nil {
		t.Error("out of range pixels should return nil")
	}
}

func TestTileGrid_CenterFirst(t *testing.T) {
	g := NewTileGrid(64*5, 64*5)
	defer g.Close()

	order := g.CenterFirst()
	if len(order) != g.TileCount() {
		t.Fatalf("len = %d, want %d", len(order), g.TileCount())
	}
	if order[0].X != 2 || order[0].Y != 2 {
		t.Errorf("first tile = (%d,%d), want center (2,2)", order[0].X, order[0].Y)
	}
	corner := order[len(order)-1]
	if (corner.X != 0 && corner.X != 4) || (corner.Y != 0 && corner.Y != 4) {
		t.Errorf("last tile = (%d,%d), want a corner", corner.X, corner.Y)
	}
}

func TestTileGrid_Resize(t *testing.T) {
	g := NewTileGrid(64, 64)
	g.Resize(64, 64)
	if g.TileCount() != 1 {
		t.Fatalf("TileCount() = %d after same-size resize", g.TileCount())
	}
	g.Resize(129, 1)
	if g.TileCount() != 3 || g.Width() != 129 || g.Height() != 1 {
		t.Fatalf("after resize: %d tiles, %dx%d", g.TileCount(), g.Width(), g.Height())
	}
	g.Resize(0, 0)
	if g.TileCount() != 0 {
		t.Errorf("TileCount() = %d after empty resize", g.TileCount())
	}
}

func TestTile_CopyTo(t *testing.T) {
	pool := NewTilePool()
	tile := pool.Get(2, 2)
	tile.X, tile.Y = 1, 0
	for i := range tile.Data {
		tile.Data[i] = byte(i + 1)
	}

	// Frame of 66x2 pixels; tile (1,0) starts at x=64.
	const stride = 66 * 4
	dst := make([]byte, stride*2)
	tile.CopyTo(dst, stride)

	if got := dst[64*4]; got != 1 {
		t.Errorf("first byte = %d, want 1", got)
	}
	if got := dst[stride+65*4+3]; got != 16 {
		t.Errorf("last byte = %d, want 16", got)
	}
	if dst[0] != 0 {
		t.Error("bytes outside the tile must not be written")
	}
}

func TestTilePool_Reuse(t *testing.T) {
	pool := NewTilePool()

	tile := pool.Get(TileWidth, TileHeight)
	tile.Data[0] = 0xFF
	pool.Put(tile)

	again := pool.Get(TileWidth, TileHeight)
	if again.Data[0] != 0 {
		t.Error("pooled tile was not zeroed")
	}
	if pool.Get(0, 5) != nil {
		t.Error("Get with empty size should return nil")
	}
	pool.Put(nil)
}

func TestTile_PixelOffset(t *testing.T) {
	tile := &Tile{Width: 3, Height: 2, Data: make([]byte, 24)}
	tests := []struct {
		x, y, want int
	}{
		{0, 0, 0},
		{2, 1, 20},
		{3, 0, -1},
		{0, -1, -1},
	}
	for _, tt := range tests {
		if got := tile.PixelOffset(tt.x, tt.y); got != tt.want {
			t.Errorf("PixelOffset(%d,%d) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}
