// Package tilemap stores an effectively unbounded tile world as a grid of
// fixed-size chunks whose tile storage is allocated from an arena the first
// time a tile inside the chunk is written.
package tilemap

import (
	"errors"
	"fmt"
	"math"

	"github.com/milk9111/tileworld/arena"
)

// Tile is the type code stored for each tile.
type Tile uint32

const (
	TileUnknown  Tile = 0
	TileFloor    Tile = 1
	TileWall     Tile = 2
	TileDoorUp   Tile = 3
	TileDoorDown Tile = 4
)

// Open reports whether the tile can be walked on. Floor and the two
// passage markers are open; walls and unresolved tiles are not.
func (t Tile) Open() bool {
	return t == TileFloor || t == TileDoorUp || t == TileDoorDown
}

func (t Tile) String() string {
	switch t {
	case TileUnknown:
		return "unknown"
	case TileFloor:
		return "floor"
	case TileWall:
		return "wall"
	case TileDoorUp:
		return "door_up"
	case TileDoorDown:
		return "door_down"
	default:
		return fmt.Sprintf("tile(%d)", uint32(t))
	}
}

var (
	ErrChunkOutOfRange = errors.New("tilemap: chunk out of range")
	ErrInvalidConfig   = errors.New("tilemap: invalid config")
)

const (
	maxChunkShift = 12
	maxChunkSlots = 1 << 24
)

// Config fixes the geometry of a map for its whole lifetime.
type Config struct {
	ChunkShift       uint32
	ChunkCountX      uint32
	ChunkCountY      uint32
	ChunkCountZ      uint32
	TileSideInMeters float32
}

// Validate reports whether the geometry can back a map.
func (c Config) Validate() error {
	if c.ChunkShift > maxChunkShift {
		return fmt.Errorf("%w: chunk shift %d exceeds %d", ErrInvalidConfig, c.ChunkShift, maxChunkShift)
	}
	if c.ChunkCountX == 0 || c.ChunkCountY == 0 || c.ChunkCountZ == 0 {
		return fmt.Errorf("%w: chunk counts must be positive, got %dx%dx%d",
			ErrInvalidConfig, c.ChunkCountX, c.ChunkCountY, c.ChunkCountZ)
	}
	if n := uint64(c.ChunkCountX) * uint64(c.ChunkCountY) * uint64(c.ChunkCountZ); n > maxChunkSlots {
		return fmt.Errorf("%w: %d chunk slots exceeds %d", ErrInvalidConfig, n, maxChunkSlots)
	}
	side := float64(c.TileSideInMeters)
	if !(side > 0) || math.IsInf(side, 0) {
		return fmt.Errorf("%w: tile side %v must be positive", ErrInvalidConfig, c.TileSideInMeters)
	}
	return nil
}

// chunkSlot lives in arena memory, so it refers to its tiles by handle.
// A nil handle means the chunk has not been materialized yet.
type chunkSlot struct {
	tiles arena.Ref
}

// ChunkLocation splits an absolute tile coordinate into the chunk that holds
// it and the tile's position inside that chunk.
type ChunkLocation struct {
	ChunkX, ChunkY, ChunkZ uint32
	RelX, RelY             uint32
}

// Map is a three-dimensional grid of chunk slots.
type Map struct {
	chunkShift uint32
	chunkMask  uint32
	chunkDim   uint32

	tileSide float32

	countX, countY, countZ uint32

	mem          *arena.Arena
	slots        []chunkSlot
	materialized int
}

// New carves the chunk slot table out of a and returns an empty map. Chunk
// tile storage is pushed onto the same arena as chunks are first written.
func New(a *arena.Arena, cfg Config) (*Map, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil arena", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dim := uint32(1) << cfg.ChunkShift
	m := &Map{
		chunkShift: cfg.ChunkShift,
		chunkMask:  dim - 1,
		chunkDim:   dim,
		tileSide:   cfg.TileSideInMeters,
		countX:     cfg.ChunkCountX,
		countY:     cfg.ChunkCountY,
		countZ:     cfg.ChunkCountZ,
		mem:        a,
	}
	m.slots = arena.PushArray[chunkSlot](a, int(cfg.ChunkCountX*cfg.ChunkCountY*cfg.ChunkCountZ))
	return m, nil
}

func (m *Map) ChunkShift() uint32 { return m.chunkShift }
func (m *Map) ChunkMask() uint32  { return m.chunkMask }
func (m *Map) ChunkDim() uint32   { return m.chunkDim }

// TileSideInMeters returns the side length of one tile in world units.
func (m *Map) TileSideInMeters() float32 { return m.tileSide }

// ChunkCounts returns the number of chunk slots along each axis.
func (m *Map) ChunkCounts() (x, y, z uint32) {
	return m.countX, m.countY, m.countZ
}

// MaterializedChunks returns how many chunks have tile storage.
func (m *Map) MaterializedChunks() int {
	if m == nil {
		return 0
	}
	return m.materialized
}

// chunkFor returns the slot at the given chunk coordinate, or false when the
// coordinate is outside the configured counts.
func (m *Map) chunkFor(cx, cy, cz uint32) (*chunkSlot, bool) {
	if cx >= m.countX || cy >= m.countY || cz >= m.countZ {
		return nil, false
	}
	return &m.slots[cz*m.countY*m.countX+cy*m.countX+cx], true
}

// ChunkMaterialized reports whether the chunk at the given chunk coordinate
// has tile storage.
func (m *Map) ChunkMaterialized(cx, cy, cz uint32) bool {
	slot, ok := m.chunkFor(cx, cy, cz)
	return ok && !slot.tiles.Nil()
}

// Locate splits an absolute tile coordinate. The layer coordinate is used as
// the chunk Z directly; layers are not chunked.
func (m *Map) Locate(absX, absY, absZ uint32) ChunkLocation {
	return ChunkLocation{
		ChunkX: absX >> m.chunkShift,
		ChunkY: absY >> m.chunkShift,
		ChunkZ: absZ,
		RelX:   absX & m.chunkMask,
		RelY:   absY & m.chunkMask,
	}
}

// Get returns the tile at an absolute coordinate. Out-of-range and
// never-written chunks read as TileUnknown.
func (m *Map) Get(absX, absY, absZ uint32) Tile {
	loc := m.Locate(absX, absY, absZ)
	slot, ok := m.chunkFor(loc.ChunkX, loc.ChunkY, loc.ChunkZ)
	if !ok || slot.tiles.Nil() {
		return TileUnknown
	}
	tiles := arena.Resolve[Tile](m.mem, slot.tiles)
	return tiles[loc.RelY*m.chunkDim+loc.RelX]
}

// TileAt returns the tile under a location.
func (m *Map) TileAt(loc Location) Tile {
	return m.Get(loc.AbsTileX, loc.AbsTileY, loc.AbsTileZ)
}

// IsOpen reports whether the tile under loc can be walked on.
func (m *Map) IsOpen(loc Location) bool {
	return m.TileAt(loc).Open()
}

// Set writes a tile. The first write into a chunk pushes its tile storage
// onto the arena with every tile set to TileFloor, so tiles that are never
// written explicitly stay walkable.
func (m *Map) Set(absX, absY, absZ uint32, t Tile) error {
	loc := m.Locate(absX, absY, absZ)
	slot, ok := m.chunkFor(loc.ChunkX, loc.ChunkY, loc.ChunkZ)
	if !ok {
		return fmt.Errorf("%w: tile (%d,%d,%d) is in chunk (%d,%d,%d), map has %dx%dx%d",
			ErrChunkOutOfRange, absX, absY, absZ,
			loc.ChunkX, loc.ChunkY, loc.ChunkZ, m.countX, m.countY, m.countZ)
	}

	var tiles []Tile
	if slot.tiles.Nil() {
		tiles, slot.tiles = arena.PushArrayRef[Tile](m.mem, int(m.chunkDim*m.chunkDim))
		for i := range tiles {
			tiles[i] = TileFloor
		}
		m.materialized++
	} else {
		tiles = arena.Resolve[Tile](m.mem, slot.tiles)
	}
	tiles[loc.RelY*m.chunkDim+loc.RelX] = t
	return nil
}
