package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/milk9111/tileworld/arena"
	"github.com/milk9111/tileworld/bitmap"
	"github.com/milk9111/tileworld/common"
	"github.com/milk9111/tileworld/raster"
	"github.com/milk9111/tileworld/tilemap"
	"github.com/milk9111/tileworld/world"
)

var ErrNoMemory = errors.New("engine: no permanent storage")

type state struct {
	permanent *arena.Arena
	transient *arena.Arena

	tiles *tilemap.Map
	store *world.Store
	room  world.Room
	rooms int

	backdrop bitmap.Loaded
}

// UpdateAndRender advances the game by one frame and draws it into s. The
// world is built on the first call.
func UpdateAndRender(mem *Memory, input *Input, s *raster.Surface) error {
	if mem == nil {
		return ErrNoMemory
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if !mem.Initialized() {
		if err := mem.initialize(); err != nil {
			return err
		}
	}
	st := mem.state

	if input != nil {
		for c := range input.Controllers {
			mem.handleController(c, &input.Controllers[c], input.DeltaTime)
		}
	}
	st.store.UpdateCamera(st.tiles, st.room)

	mem.render(s)
	return nil
}

func (m *Memory) initialize() error {
	if len(m.PermanentStorage) == 0 {
		return ErrNoMemory
	}
	cfg := m.config()
	log := m.logger()

	st := &state{permanent: arena.NewFromBuffer(m.PermanentStorage)}
	if len(m.TransientStorage) > 0 {
		st.transient = arena.NewFromBuffer(m.TransientStorage)
	}

	var err error
	st.tiles, err = tilemap.New(st.permanent, tilemap.Config{
		ChunkShift:       cfg.World.ChunkShift,
		ChunkCountX:      cfg.World.ChunkCountX,
		ChunkCountY:      cfg.World.ChunkCountY,
		ChunkCountZ:      cfg.World.ChunkCountZ,
		TileSideInMeters: cfg.World.TileSideInMeters,
	})
	if err != nil {
		return fmt.Errorf("engine: tile map: %w", err)
	}
	st.store, err = world.NewStore(st.permanent, cfg.World.EntityCapacity)
	if err != nil {
		return fmt.Errorf("engine: entity store: %w", err)
	}

	st.room = world.Room{TilesX: cfg.World.RoomTilesX, TilesY: cfg.World.RoomTilesY}
	rooms, err := world.GenerateRooms(st.tiles, world.RoomConfig{
		Screens: cfg.World.Screens,
		Room:    st.room,
	}, world.NewNoiseChooser(cfg.World.Seed))
	if err != nil {
		return fmt.Errorf("engine: generate rooms: %w", err)
	}
	st.rooms = len(rooms)
	st.store.SetCamera(st.room.Center(0, 0, 0))

	m.state = st
	if cfg.Assets.Backdrop != "" {
		_ = m.ReloadBitmap(cfg.Assets.Backdrop)
	}

	log.Info("world initialized",
		zap.Int("rooms", st.rooms),
		zap.Int("chunks", st.tiles.MaterializedChunks()),
		zap.Int("arena_used", st.permanent.Used()),
		zap.Int("arena_size", st.permanent.Size()),
		zap.Int64("seed", cfg.World.Seed))
	return nil
}

// ReloadBitmap decodes the backdrop again. On failure the backdrop becomes
// empty and draws nothing.
func (m *Memory) ReloadBitmap(name string) error {
	if !m.Initialized() {
		return errors.New("engine: reload before first frame")
	}
	b, err := bitmap.Load(m.ReadEntireFile, name)
	m.state.backdrop = b
	if err != nil {
		m.logger().Warn("backdrop not loaded", zap.String("name", name), zap.Error(err))
		return err
	}
	m.logger().Debug("backdrop loaded",
		zap.String("name", name),
		zap.Int32("width", b.Width),
		zap.Int32("height", b.Height))
	return nil
}

func (m *Memory) handleController(c int, ctl *Controller, dt float32) {
	st := m.state
	cfg := m.config()

	i := st.store.PlayerFor(c)
	if e, ok := st.store.Get(i); ok && e.Exists {
		var dir common.Vec2
		if ctl.Analog {
			dir = common.Vec2{X: ctl.StickAverageX, Y: ctl.StickAverageY}
		} else {
			if ctl.MoveUp().EndedDown {
				dir.Y = 1
			}
			if ctl.MoveDown().EndedDown {
				dir.Y = -1
			}
			if ctl.MoveLeft().EndedDown {
				dir.X = -1
			}
			if ctl.MoveRight().EndedDown {
				dir.X = 1
			}
		}
		st.store.MoveEntity(st.tiles, i, dir, dt, cfg.Player.Speed)
		return
	}

	if !ctl.Start().EndedDown {
		return
	}
	spawn := tilemap.CenteredTilePoint(cfg.Player.SpawnX, cfg.Player.SpawnY, 0)
	i, err := st.store.SpawnPlayer(c, world.PlayerSpec{
		Spawn:  spawn,
		Width:  cfg.Player.Width,
		Height: cfg.Player.Height,
	})
	if err != nil {
		m.logger().Warn("player not spawned", zap.Int("controller", c), zap.Error(err))
		return
	}
	m.logger().Info("player joined", zap.Int("controller", c), zap.Uint32("entity", i))
}

// GetSoundSamples fills buf with SampleCount frames of silence.
func GetSoundSamples(mem *Memory, buf *SoundBuffer) error {
	if buf == nil || buf.SampleCount < 0 {
		return errors.New("engine: no sound buffer")
	}
	n := 2 * buf.SampleCount
	if len(buf.Samples) < n {
		return fmt.Errorf("engine: sound buffer holds %d samples, need %d", len(buf.Samples), n)
	}
	clear(buf.Samples[:n])
	return nil
}

// Stats summarizes memory and world usage.
type Stats struct {
	Initialized bool

	PermanentUsed int
	PermanentSize int
	TransientUsed int

	Chunks       int
	Rooms        int
	Entities     int
	LiveEntities int
}

func (m *Memory) Stats() Stats {
	if !m.Initialized() {
		return Stats{}
	}
	st := m.state
	s := Stats{
		Initialized:   true,
		PermanentUsed: st.permanent.Used(),
		PermanentSize: st.permanent.Size(),
		Chunks:        st.tiles.MaterializedChunks(),
		Rooms:         st.rooms,
		Entities:      st.store.Count(),
		LiveEntities:  st.store.Live(),
	}
	if st.transient != nil {
		s.TransientUsed = st.transient.Used()
	}
	return s
}
