package parallel

import "sync"

// TilePool reuses Tile buffers across frames via sync.Pool.
//
// Full 64x64 tiles share one pool; edge tiles get a pool per size so a
// resized window does not thrash allocations.
//
// Thread safety: TilePool is safe for concurrent use.
type TilePool struct {
	// pools maps poolKey(width, height) to *sync.Pool for edge tiles.
	pools sync.Map

	full sync.Pool
}

// NewTilePool creates an empty pool.
func NewTilePool() *TilePool {
	p := &TilePool{}
	p.full.New = func() any {
		return &Tile{Width: TileWidth, Height: TileHeight, Data: make([]byte, TileBytes)}
	}
	return p
}

// Get returns a zeroed tile of the given size, or nil for an empty size.
func (p *TilePool) Get(width, height int) *Tile {
	if width <= 0 || height <= 0 {
		return nil
	}
	var tile *Tile
	if width == TileWidth && height == TileHeight {
		tile = p.full.Get().(*Tile)
	} else {
		tile = p.sizedPool(width, height).Get().(*Tile)
	}
	tile.Reset()
	tile.X, tile.Y = 0, 0
	return tile
}

// Put returns a tile to the pool. A nil tile is ignored.
func (p *TilePool) Put(tile *Tile) {
	if tile == nil {
		return
	}
	if tile.Width == TileWidth && tile.Height == TileHeight {
		p.full.Put(tile)
		return
	}
	if pool, ok := p.pools.Load(poolKey(tile.Width, tile.Height)); ok {
		pool.(*sync.Pool).Put(tile)
	}
}

// poolKey packs a tile size into one key. Sizes are clamped to 16 bits.
func poolKey(width, height int) uint32 {
	w := min(width, 0xFFFF)
	h := min(height, 0xFFFF)
	return uint32(w)<<16 | uint32(h) //nolint:gosec // clamped above
}

func (p *TilePool) sizedPool(width, height int) *sync.Pool {
	key := poolKey(width, height)
	if pool, ok := p.pools.Load(key); ok {
		return pool.(*sync.Pool)
	}
	pool := &sync.Pool{
		New: func() any {
			return &Tile{Width: width, Height: height, Data: make([]byte, width*height*4)}
		},
	}
	actual, _ := p.pools.LoadOrStore(key, pool)
	return actual.(*sync.Pool)
}
