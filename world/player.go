package world

import (
	"fmt"
	"math"

	"github.com/milk9111/tileworld/common"
	"github.com/milk9111/tileworld/tilemap"
)

// PlayerSpec describes a freshly spawned player.
type PlayerSpec struct {
	Spawn  tilemap.Location
	Width  float32
	Height float32
}

// InitializePlayer turns entity i into an existing player at spec.Spawn. The
// camera starts following it when it is not following anything yet.
func (s *Store) InitializePlayer(i uint32, spec PlayerSpec) bool {
	e, ok := s.Get(i)
	if !ok {
		return false
	}
	*e = Entity{
		Exists: true,
		Pos:    spec.Spawn,
		Facing: FacingRight,
		Width:  spec.Width,
		Height: spec.Height,
	}
	if _, following := s.Get(s.cameraEntity); !following {
		s.cameraEntity = i
	}
	return true
}

// PlayerFor returns the entity controlled by controller c, or 0.
func (s *Store) PlayerFor(c int) uint32 {
	if c < 0 || c >= ControllerCount {
		return 0
	}
	return s.playerForController[c]
}

// SpawnPlayer adds a player entity and hands it to controller c.
func (s *Store) SpawnPlayer(c int, spec PlayerSpec) (uint32, error) {
	if c < 0 || c >= ControllerCount {
		return 0, fmt.Errorf("world: controller %d out of range", c)
	}
	i, err := s.Add()
	if err != nil {
		return 0, err
	}
	s.InitializePlayer(i, spec)
	s.playerForController[c] = i
	return i, nil
}

// MoveEntity moves entity i along dir at speed world units per second for
// dt seconds. dir is clamped to unit length.
//
// A move into a tile that is not open is retried along X alone and then Y
// alone, so entities slide along walls. Stepping onto a door tile from
// another tile moves the entity one layer up or down when the tile it lands
// on in that layer is open. MoveEntity reports whether the entity moved.
func (s *Store) MoveEntity(tm *tilemap.Map, i uint32, dir common.Vec2, dt, speed float32) bool {
	e, ok := s.Get(i)
	if !ok || !e.Exists {
		return false
	}

	if l := dir.LengthSq(); l > 1 {
		dir = dir.Scale(1 / float32(math.Sqrt(float64(l))))
	}
	if f, ok := facing(dir); ok {
		e.Facing = f
	}

	delta := dir.Scale(speed * dt)
	if delta.LengthSq() == 0 {
		return false
	}

	candidates := [...]common.Vec2{delta, {X: delta.X}, {Y: delta.Y}}
	for _, d := range candidates {
		if d.LengthSq() == 0 {
			continue
		}
		next := tm.Offset(e.Pos, d)
		if !tm.IsOpen(next) {
			continue
		}
		if !tilemap.SameTile(next, e.Pos) {
			next = changeLayer(tm, next)
		}
		e.Pos = next
		return true
	}
	return false
}

func changeLayer(tm *tilemap.Map, loc tilemap.Location) tilemap.Location {
	to := loc
	switch tm.TileAt(loc) {
	case tilemap.TileDoorUp:
		to.AbsTileZ++
	case tilemap.TileDoorDown:
		to.AbsTileZ--
	default:
		return loc
	}
	if !tm.IsOpen(to) {
		return loc
	}
	return to
}

func facing(dir common.Vec2) (uint32, bool) {
	ax, ay := dir.X, dir.Y
	if ax < 0 {
		ax = -ax
	}
	if ay < 0 {
		ay = -ay
	}
	switch {
	case ax == 0 && ay == 0:
		return 0, false
	case ax >= ay && dir.X > 0:
		return FacingRight, true
	case ax >= ay:
		return FacingLeft, true
	case dir.Y > 0:
		return FacingUp, true
	default:
		return FacingDown, true
	}
}
