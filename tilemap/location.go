package tilemap

import "github.com/milk9111/tileworld/common"

// Location is a world position: an absolute tile index per axis plus a
// real-valued offset from the tile's center. Z is a discrete layer and has
// no offset.
type Location struct {
	AbsTileX uint32
	AbsTileY uint32
	AbsTileZ uint32

	Offset common.Vec2
}

// CenteredTilePoint returns the location at the center of a tile.
func CenteredTilePoint(absX, absY, absZ uint32) Location {
	return Location{AbsTileX: absX, AbsTileY: absY, AbsTileZ: absZ}
}

// SameTile reports whether a and b are on the same tile.
func SameTile(a, b Location) bool {
	return a.AbsTileX == b.AbsTileX &&
		a.AbsTileY == b.AbsTileY &&
		a.AbsTileZ == b.AbsTileZ
}

// RecanonicalizeCoord folds rel back into half a tile of the tile center,
// moving tile by the whole tiles removed. Tile indices wrap, so the world is
// toroidal along X and Y.
func (m *Map) RecanonicalizeCoord(tile *uint32, rel *float32) {
	adj := common.RoundToInt32(*rel / m.tileSide)
	*tile += uint32(adj)
	*rel -= float32(adj) * m.tileSide
}

// Recanonicalize applies RecanonicalizeCoord to X and Y. Z is unchanged.
func (m *Map) Recanonicalize(loc Location) Location {
	m.RecanonicalizeCoord(&loc.AbsTileX, &loc.Offset.X)
	m.RecanonicalizeCoord(&loc.AbsTileY, &loc.Offset.Y)
	return loc
}

// Offset moves loc by delta world units and recanonicalizes. All movement
// goes through here so the offset invariant holds.
func (m *Map) Offset(loc Location, delta common.Vec2) Location {
	loc.Offset = loc.Offset.Add(delta)
	return m.Recanonicalize(loc)
}

// Difference returns a - b in world units. Tile deltas are taken as wrapping
// signed differences, so the result stays small for nearby positions no
// matter how large the absolute indices are.
func (m *Map) Difference(a, b Location) common.Vec3 {
	dx := float32(int32(a.AbsTileX - b.AbsTileX))
	dy := float32(int32(a.AbsTileY - b.AbsTileY))
	dz := float32(int32(a.AbsTileZ - b.AbsTileZ))

	return common.Vec3{
		X: m.tileSide*dx + (a.Offset.X - b.Offset.X),
		Y: m.tileSide*dy + (a.Offset.Y - b.Offset.Y),
		Z: m.tileSide * dz,
	}
}
