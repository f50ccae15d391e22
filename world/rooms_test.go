package world

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/tileworld/arena"
	"github.com/milk9111/tileworld/tilemap"
)

// sequence replays fixed choices and records the ranges it was asked for.
type sequence struct {
	choices []uint32
	asked   []uint32
}

func (s *sequence) Choose(step int, n uint32) uint32 {
	s.asked = append(s.asked, n)
	return s.choices[step%len(s.choices)] % n
}

func TestGenerateRoomsRow(t *testing.T) {
	_, tm, _ := newTestWorld(t, 2)
	seq := &sequence{choices: []uint32{choiceRight}}

	rooms, err := GenerateRooms(tm, RoomConfig{Screens: 3, Room: DefaultRoom}, seq)
	require.NoError(t, err)
	require.Len(t, rooms, 3)

	for i, r := range rooms {
		assert.Equal(t, uint32(i), r.ScreenX)
		assert.Zero(t, r.ScreenY)
		assert.Zero(t, r.Z)
		assert.True(t, r.DoorRight)
		assert.Equal(t, i > 0, r.DoorLeft)
	}

	cases := []struct {
		name string
		x, y uint32
		want tilemap.Tile
	}{
		{"corner", 0, 0, tilemap.TileWall},
		{"bottom_wall", 8, 0, tilemap.TileWall},
		{"top_wall", 8, 8, tilemap.TileWall},
		{"first_left_wall", 0, 4, tilemap.TileWall},
		{"interior", 5, 5, tilemap.TileFloor},
		{"right_door", 16, 4, tilemap.TileFloor},
		{"beside_right_door", 16, 3, tilemap.TileWall},
		{"next_left_door", 17, 4, tilemap.TileFloor},
		{"next_interior", 25, 4, tilemap.TileFloor},
		{"no_layer_door", 10, 6, tilemap.TileFloor},
		{"beyond_generated", 70, 4, tilemap.TileUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, tm.Get(c.x, c.y, 0))
		})
	}
}

func TestGenerateRoomsColumn(t *testing.T) {
	_, tm, _ := newTestWorld(t, 2)
	rooms, err := GenerateRooms(tm, RoomConfig{Screens: 2, Room: DefaultRoom}, &sequence{choices: []uint32{choiceTop}})
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	assert.Equal(t, uint32(1), rooms[1].ScreenY)
	assert.True(t, rooms[1].DoorBottom)
	assert.Equal(t, tilemap.TileFloor, tm.Get(8, 8, 0), "top door")
	assert.Equal(t, tilemap.TileFloor, tm.Get(8, 9, 0), "bottom door above it")
	assert.Equal(t, tilemap.TileWall, tm.Get(7, 8, 0))
}

func TestGenerateRoomsLayerDoors(t *testing.T) {
	_, tm, _ := newTestWorld(t, 2)
	seq := &sequence{choices: []uint32{choiceLayer, choiceRight, choiceRight}}

	rooms, err := GenerateRooms(tm, RoomConfig{Screens: 3, Room: DefaultRoom}, seq)
	require.NoError(t, err)
	require.Len(t, rooms, 3)

	assert.Equal(t, []uint32{3, 2, 3}, seq.asked, "a room with a layer door cannot pick another one")

	assert.True(t, rooms[0].DoorUp)
	assert.Equal(t, GeneratedRoom{ScreenX: 0, ScreenY: 0, Z: 1, DoorRight: true, DoorDown: true}, rooms[1])
	assert.Equal(t, uint32(1), rooms[2].ScreenX)
	assert.Equal(t, uint32(1), rooms[2].Z)

	assert.Equal(t, tilemap.TileDoorUp, tm.Get(10, 6, 0))
	assert.Equal(t, tilemap.TileDoorDown, tm.Get(10, 6, 1))
	assert.Equal(t, tilemap.TileFloor, tm.Get(17+10, 6, 1))
	assert.Equal(t, tilemap.TileWall, tm.Get(16, 4, 0), "first room only leads up")
}

func TestGenerateRoomsChainIsConnected(t *testing.T) {
	_, tm, _ := newTestWorld(t, 2)
	rooms, err := GenerateRooms(tm, RoomConfig{Screens: 100, Room: DefaultRoom}, NewNoiseChooser(1234))
	require.NoError(t, err)
	require.Len(t, rooms, 100)

	for i := 1; i < len(rooms); i++ {
		prev, cur := rooms[i-1], rooms[i]
		switch {
		case cur.ScreenX == prev.ScreenX+1:
			assert.True(t, prev.DoorRight && cur.DoorLeft, "room %d", i)
		case cur.ScreenY == prev.ScreenY+1:
			assert.True(t, prev.DoorTop && cur.DoorBottom, "room %d", i)
		default:
			assert.NotEqual(t, prev.Z, cur.Z, "room %d", i)
			assert.True(t, prev.DoorUp || prev.DoorDown, "room %d", i)
			assert.True(t, cur.DoorUp || cur.DoorDown, "room %d", i)
		}
	}
}

func TestNoiseChooserIsDeterministic(t *testing.T) {
	a, b := NewNoiseChooser(42), NewNoiseChooser(42)
	for step := 0; step < 64; step++ {
		for _, n := range []uint32{2, 3} {
			got := a.Choose(step, n)
			assert.Less(t, got, n)
			assert.Equal(t, got, b.Choose(step, n), "step %d", step)
		}
	}
	assert.Zero(t, a.Choose(0, 0))
}

func TestGenerateRoomsErrors(t *testing.T) {
	t.Run("small_room", func(t *testing.T) {
		_, tm, _ := newTestWorld(t, 2)
		_, err := GenerateRooms(tm, RoomConfig{Screens: 1, Room: Room{TilesX: 8, TilesY: 9}}, &sequence{choices: []uint32{0}})
		assert.Error(t, err)
	})

	t.Run("outside_map", func(t *testing.T) {
		tm, err := tilemap.New(arena.New(1<<16), tilemap.Config{
			ChunkShift:       4,
			ChunkCountX:      1,
			ChunkCountY:      1,
			ChunkCountZ:      1,
			TileSideInMeters: side,
		})
		require.NoError(t, err)

		rooms, err := GenerateRooms(tm, RoomConfig{Screens: 2, Room: DefaultRoom}, &sequence{choices: []uint32{choiceRight}})
		assert.True(t, errors.Is(err, tilemap.ErrChunkOutOfRange), "got %v", err)
		assert.Empty(t, rooms)
	})
}
