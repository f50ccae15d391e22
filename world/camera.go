package world

import (
	"github.com/milk9111/tileworld/common"
	"github.com/milk9111/tileworld/tilemap"
)

// Room is the size of one screen of the world in tiles.
type Room struct {
	TilesX uint32
	TilesY uint32
}

// DefaultRoom is 17x9 tiles.
var DefaultRoom = Room{TilesX: 17, TilesY: 9}

// Center returns the tile at the middle of the room at screen (sx, sy).
func (r Room) Center(sx, sy, z uint32) tilemap.Location {
	return tilemap.CenteredTilePoint(sx*r.TilesX+r.TilesX/2, sy*r.TilesY+r.TilesY/2, z)
}

// Camera returns the camera location.
func (s *Store) Camera() tilemap.Location {
	return s.camera
}

// SetCamera moves the camera.
func (s *Store) SetCamera(loc tilemap.Location) {
	s.camera = loc
}

// CameraEntity returns the index of the entity the camera follows, or 0.
func (s *Store) CameraEntity() uint32 {
	return s.cameraEntity
}

// FollowEntity makes the camera follow entity i. It returns false, leaving
// the current target alone, when i is absent.
func (s *Store) FollowEntity(i uint32) bool {
	if _, ok := s.Get(i); !ok {
		return false
	}
	s.cameraEntity = i
	return true
}

// CameraDisplacement returns the world-space vector from the camera to the
// followed entity.
func (s *Store) CameraDisplacement(tm *tilemap.Map) (common.Vec3, bool) {
	e, ok := s.Get(s.cameraEntity)
	if !ok {
		return common.Vec3{}, false
	}
	return tm.Difference(e.Pos, s.camera), true
}

// RelativeToCamera returns loc relative to the camera in world units.
func (s *Store) RelativeToCamera(tm *tilemap.Map, loc tilemap.Location) common.Vec3 {
	return tm.Difference(loc, s.camera)
}

// UpdateCamera keeps the camera on the followed entity's layer and flips it
// a whole room at a time once the entity walks past the room's half extent.
func (s *Store) UpdateCamera(tm *tilemap.Map, room Room) {
	e, ok := s.Get(s.cameraEntity)
	if !ok {
		return
	}
	s.camera.AbsTileZ = e.Pos.AbsTileZ

	side := tm.TileSideInMeters()
	limitX := float32(room.TilesX/2+1) * side
	limitY := float32(room.TilesY/2+1) * side

	d := tm.Difference(e.Pos, s.camera)
	switch {
	case d.X > limitX:
		s.camera.AbsTileX += room.TilesX
	case d.X < -limitX:
		s.camera.AbsTileX -= room.TilesX
	}
	switch {
	case d.Y > limitY:
		s.camera.AbsTileY += room.TilesY
	case d.Y < -limitY:
		s.camera.AbsTileY -= room.TilesY
	}
}
