// Package config loads the game configuration. Defaults are embedded; a YAML
// file on disk overrides any subset of them.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Memory  MemoryConfig  `yaml:"memory"`
	World   WorldConfig   `yaml:"world"`
	Render  RenderConfig  `yaml:"render"`
	Player  PlayerConfig  `yaml:"player"`
	Assets  AssetsConfig  `yaml:"assets"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Audio   AudioConfig   `yaml:"audio"`
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	TPS    int    `yaml:"tps"`
}

// MemoryConfig sizes the two blocks handed to the engine, in MiB.
type MemoryConfig struct {
	PermanentMB int `yaml:"permanent_mb"`
	TransientMB int `yaml:"transient_mb"`
}

func (m MemoryConfig) PermanentBytes() int { return m.PermanentMB << 20 }
func (m MemoryConfig) TransientBytes() int { return m.TransientMB << 20 }

type WorldConfig struct {
	ChunkShift       uint32  `yaml:"chunk_shift"`
	ChunkCountX      uint32  `yaml:"chunk_count_x"`
	ChunkCountY      uint32  `yaml:"chunk_count_y"`
	ChunkCountZ      uint32  `yaml:"chunk_count_z"`
	TileSideInMeters float32 `yaml:"tile_side_in_meters"`
	RoomTilesX       uint32  `yaml:"room_tiles_x"`
	RoomTilesY       uint32  `yaml:"room_tiles_y"`
	Screens          int     `yaml:"screens"`
	Seed             int64   `yaml:"seed"`
	EntityCapacity   int     `yaml:"entity_capacity"`
}

// RenderConfig controls the tile window drawn around the camera.
type RenderConfig struct {
	TileSideInPixels int `yaml:"tile_side_in_pixels"`
	HalfRows         int `yaml:"half_rows"`
	HalfColumns      int `yaml:"half_columns"`
}

type PlayerConfig struct {
	SpawnX uint32  `yaml:"spawn_x"`
	SpawnY uint32  `yaml:"spawn_y"`
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
	Speed  float32 `yaml:"speed"` // world units per second
}

type AssetsConfig struct {
	Dir      string `yaml:"dir"`
	Backdrop string `yaml:"backdrop"`
	Watch    bool   `yaml:"watch"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the exporter
}

type AudioConfig struct {
	Enabled    bool `yaml:"enabled"`
	SampleRate int  `yaml:"sample_rate"`
}

// Default returns the embedded configuration.
func Default() *Config {
	cfg := &Config{}
	if err := decode(defaultYAML, cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load returns the defaults overlaid with the file at path. A missing file
// is not an error; the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse overlays data onto the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := decode(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse: %w", err)
	}
	return nil
}

// Validate reports the first setting the engine cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Window.TPS <= 0:
		return fmt.Errorf("%w: tps %d", ErrInvalid, c.Window.TPS)
	case c.Memory.PermanentMB <= 0:
		return fmt.Errorf("%w: permanent_mb %d", ErrInvalid, c.Memory.PermanentMB)
	case c.Memory.TransientMB < 0:
		return fmt.Errorf("%w: transient_mb %d", ErrInvalid, c.Memory.TransientMB)
	case c.World.ChunkShift > 12:
		return fmt.Errorf("%w: chunk_shift %d", ErrInvalid, c.World.ChunkShift)
	case c.World.ChunkCountX == 0 || c.World.ChunkCountY == 0 || c.World.ChunkCountZ == 0:
		return fmt.Errorf("%w: chunk counts %dx%dx%d", ErrInvalid, c.World.ChunkCountX, c.World.ChunkCountY, c.World.ChunkCountZ)
	case c.World.TileSideInMeters <= 0:
		return fmt.Errorf("%w: tile_side_in_meters %v", ErrInvalid, c.World.TileSideInMeters)
	case c.World.Screens < 0:
		return fmt.Errorf("%w: screens %d", ErrInvalid, c.World.Screens)
	case c.World.EntityCapacity < 2:
		return fmt.Errorf("%w: entity_capacity %d", ErrInvalid, c.World.EntityCapacity)
	case c.Render.TileSideInPixels <= 0:
		return fmt.Errorf("%w: tile_side_in_pixels %d", ErrInvalid, c.Render.TileSideInPixels)
	case c.Render.HalfRows < 0 || c.Render.HalfColumns < 0:
		return fmt.Errorf("%w: tile window %dx%d", ErrInvalid, c.Render.HalfColumns, c.Render.HalfRows)
	case c.Player.Width <= 0 || c.Player.Height <= 0:
		return fmt.Errorf("%w: player size %vx%v", ErrInvalid, c.Player.Width, c.Player.Height)
	case c.Player.Speed < 0:
		return fmt.Errorf("%w: player speed %v", ErrInvalid, c.Player.Speed)
	case c.Audio.Enabled && c.Audio.SampleRate <= 0:
		return fmt.Errorf("%w: sample_rate %d", ErrInvalid, c.Audio.SampleRate)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: logging format %q", ErrInvalid, c.Logging.Format)
	}
	return nil
}
