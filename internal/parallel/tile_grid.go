package parallel

import (
	"slices"
)

// TileGrid divides a frame into 64x64 tiles stored row-major
// (index = ty*tilesX + tx).
type TileGrid struct {
	tiles  []*Tile
	tilesX int
	tilesY int
	width  int
	height int
	pool   *TilePool
}

// NewTileGrid creates a grid covering a width x height frame. An empty size
// yields an empty grid.
func NewTileGrid(width, height int) *TileGrid {
	g := &TileGrid{pool: NewTilePool()}
	g.Resize(width, height)
	return g
}

// Resize reallocates the tiles for a new frame size. Resizing to the current
// size is a no-op.
func (g *TileGrid) Resize(width, height int) {
	if g.width == width && g.height == height && g.tiles != nil {
		return
	}
	g.Close()
	if width <= 0 || height <= 0 {
		return
	}

	g.width, g.height = width, height
	g.tilesX = (width + TileWidth - 1) / TileWidth
	g.tilesY = (height + TileHeight - 1) / TileHeight
	g.tiles = make([]*Tile, g.tilesX*g.tilesY)

	for ty := range g.tilesY {
		for tx := range g.tilesX {
			tw := min(TileWidth, width-tx*TileWidth)
			th := min(TileHeight, height-ty*TileHeight)
			tile := g.pool.Get(tw, th)
			tile.X, tile.Y = tx, ty
			g.tiles[ty*g.tilesX+tx] = tile
		}
	}
}

// TileAt returns the tile at tile coordinates (tx, ty), or nil.
func (g *TileGrid) TileAt(tx, ty int) *Tile {
	if tx < 0 || tx >= g.tilesX || ty < 0 || ty >= g.tilesY {
		return nil
	}
	return g.tiles[ty*g.tilesX+tx]
}

// TileAtPixel returns the tile containing frame pixel (px, py), or nil.
func (g *TileGrid) TileAtPixel(px, py int) *Tile {
	if px < 0 || px >= g.width || py < 0 || py >= g.height {
		return nil
	}
	return g.tiles[(py/TileHeight)*g.tilesX+px/TileWidth]
}

// Tiles returns the tiles in row-major order. The slice must not be modified.
func (g *TileGrid) Tiles() []*Tile {
	return g.tiles
}

// CenterFirst returns the tiles ordered by distance from the frame center,
// so progressive output grows from the middle outwards.
func (g *TileGrid) CenterFirst() []*Tile {
	out := slices.Clone(g.tiles)
	cx, cy := g.width/2, g.height/2
	dist := func(t *Tile) int {
		x, y, w, h := t.Bounds()
		dx := x + w/2 - cx
		dy := y + h/2 - cy
		return dx*dx + dy*dy
	}
	slices.SortStableFunc(out, func(a, b *Tile) int { return dist(a) - dist(b) })
	return out
}

// ForEach calls fn for every tile in row-major order.
func (g *TileGrid) ForEach(fn func(tile *Tile)) {
	for _, tile := range g.tiles {
		fn(tile)
	}
}

// TileCount returns the number of tiles.
func (g *TileGrid) TileCount() int { return len(g.tiles) }

// TilesX returns the number of tile columns.
func (g *TileGrid) TilesX() int { return g.tilesX }

// TilesY returns the number of tile rows.
func (g *TileGrid) TilesY() int { return g.tilesY }

// Width returns the frame width in pixels.
func (g *TileGrid) Width() int { return g.width }

// Height returns the frame height in pixels.
func (g *TileGrid) Height() int { return g.height }

// Close returns every tile to the pool and leaves an empty grid.
func (g *TileGrid) Close() {
	for _, tile := range g.tiles {
		g.pool.Put(tile)
	}
	g.tiles, g.tilesX, g.tilesY, g.width, g.height = nil, 0, 0, 0, 0
}
