package world

import (
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"

	"github.com/milk9111/tileworld/tilemap"
)

// Chooser picks the next room direction. Choose returns a value in [0, n).
type Chooser interface {
	Choose(step int, n uint32) uint32
}

// NoiseChooser draws choices from seeded Perlin noise, so a seed always
// produces the same layout.
type NoiseChooser struct {
	noise *perlin.Perlin
}

// NewNoiseChooser returns a chooser for seed.
func NewNoiseChooser(seed int64) *NoiseChooser {
	return &NoiseChooser{noise: perlin.NewPerlin(2, 2, 3, seed)}
}

func (c *NoiseChooser) Choose(step int, n uint32) uint32 {
	if n == 0 {
		return 0
	}
	// Perlin noise is zero on lattice points; sample between them.
	v := c.noise.Noise2D(float64(step)*0.731+0.37, 0.519)
	return uint32(math.Abs(v)*10000) % n
}

// Room choices.
const (
	choiceTop   uint32 = 0
	choiceRight uint32 = 1
	choiceLayer uint32 = 2
)

// DoorTile is the tile inside a room, relative to its lower-left corner,
// that holds a layer door.
var DoorTile = [2]uint32{10, 6}

// RoomConfig controls GenerateRooms.
type RoomConfig struct {
	Screens int
	Room    Room
}

// GeneratedRoom records one generated screen.
type GeneratedRoom struct {
	ScreenX, ScreenY, Z uint32

	DoorLeft, DoorRight bool
	DoorTop, DoorBottom bool
	DoorUp, DoorDown    bool
}

// GenerateRooms lays out a chain of walled rooms. Each room opens onto the
// next one to its right, above it, or on the other layer, and the matching
// door is cut into the next room so the chain is always walkable.
func GenerateRooms(tm *tilemap.Map, cfg RoomConfig, choose Chooser) ([]GeneratedRoom, error) {
	if cfg.Room.TilesX < 3 || cfg.Room.TilesY < 3 {
		return nil, fmt.Errorf("world: room %dx%d is too small", cfg.Room.TilesX, cfg.Room.TilesY)
	}
	if cfg.Room.TilesX <= DoorTile[0] || cfg.Room.TilesY <= DoorTile[1] {
		return nil, fmt.Errorf("world: room %dx%d cannot hold the layer door", cfg.Room.TilesX, cfg.Room.TilesY)
	}

	w, h := cfg.Room.TilesX, cfg.Room.TilesY
	rooms := make([]GeneratedRoom, 0, cfg.Screens)

	var screenX, screenY, z uint32
	var doorLeft, doorRight, doorTop, doorBottom, doorUp, doorDown bool

	for step := 0; step < cfg.Screens; step++ {
		var choice uint32
		if doorUp || doorDown {
			choice = choose.Choose(step, 2)
		} else {
			choice = choose.Choose(step, 3)
		}

		createdLayerDoor := false
		switch choice {
		case choiceLayer:
			createdLayerDoor = true
			if z == 0 {
				doorUp = true
			} else {
				doorDown = true
			}
		case choiceRight:
			doorRight = true
		default:
			doorTop = true
		}

		for ty := uint32(0); ty < h; ty++ {
			for tx := uint32(0); tx < w; tx++ {
				tile := tilemap.TileFloor
				if tx == 0 && (!doorLeft || ty != h/2) {
					tile = tilemap.TileWall
				}
				if tx == w-1 && (!doorRight || ty != h/2) {
					tile = tilemap.TileWall
				}
				if ty == 0 && (!doorBottom || tx != w/2) {
					tile = tilemap.TileWall
				}
				if ty == h-1 && (!doorTop || tx != w/2) {
					tile = tilemap.TileWall
				}
				if tx == DoorTile[0] && ty == DoorTile[1] {
					if doorUp {
						tile = tilemap.TileDoorUp
					}
					if doorDown {
						tile = tilemap.TileDoorDown
					}
				}

				if err := tm.Set(screenX*w+tx, screenY*h+ty, z, tile); err != nil {
					return rooms, fmt.Errorf("world: room %d: %w", step, err)
				}
			}
		}

		rooms = append(rooms, GeneratedRoom{
			ScreenX: screenX, ScreenY: screenY, Z: z,
			DoorLeft: doorLeft, DoorRight: doorRight,
			DoorTop: doorTop, DoorBottom: doorBottom,
			DoorUp: doorUp, DoorDown: doorDown,
		})

		doorLeft = doorRight
		doorBottom = doorTop
		if createdLayerDoor {
			doorUp, doorDown = !doorUp, !doorDown
		} else {
			doorUp, doorDown = false, false
		}
		doorRight = false
		doorTop = false

		switch choice {
		case choiceLayer:
			z ^= 1
		case choiceRight:
			screenX++
		default:
			screenY++
		}
	}
	return rooms, nil
}
