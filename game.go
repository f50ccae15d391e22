package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/milk9111/tileworld/assets"
	"github.com/milk9111/tileworld/config"
	"github.com/milk9111/tileworld/engine"
	"github.com/milk9111/tileworld/metrics"
	"github.com/milk9111/tileworld/raster"
)

// Game is the platform layer: it owns the engine's memory and surface, polls
// input each tick and presents whatever the engine drew.
type Game struct {
	cfg *config.Config
	log *zap.Logger

	// mu guards mem between the game loop and the audio goroutine.
	mu  sync.Mutex
	mem *engine.Memory

	input    engine.Input
	gamepads []ebiten.GamepadID
	surface  *raster.Surface
	rgba     []byte

	files    assets.Files
	watcher  *assets.Watcher
	exporter *metrics.Exporter
	player   *audio.Player
}

func NewGame(cfg *config.Config, log *zap.Logger, exporter *metrics.Exporter) (*Game, error) {
	files := assets.Files{Dir: cfg.Assets.Dir}
	g := &Game{
		cfg: cfg,
		log: log,
		mem: &engine.Memory{
			PermanentStorage: make([]byte, cfg.Memory.PermanentBytes()),
			TransientStorage: make([]byte, cfg.Memory.TransientBytes()),
			ReadEntireFile:   files.ReadEntireFile,
			Logger:           log.Named("engine"),
			Config:           cfg,
		},
		surface:  raster.NewSurface(cfg.Window.Width, cfg.Window.Height),
		files:    files,
		exporter: exporter,
	}

	if cfg.Assets.Watch && cfg.Assets.Dir != "" {
		w, err := assets.NewWatcher(cfg.Assets.Dir)
		if err != nil {
			log.Warn("asset watcher disabled", zap.String("dir", cfg.Assets.Dir), zap.Error(err))
		} else {
			g.watcher = w
		}
	}

	if cfg.Audio.Enabled {
		if err := g.startAudio(); err != nil {
			g.Close()
			return nil, err
		}
	}
	return g, nil
}

func (g *Game) startAudio() error {
	ctx := audio.NewContext(g.cfg.Audio.SampleRate)
	p, err := ctx.NewPlayer(&soundStream{mu: &g.mu, mem: g.mem, sampleRate: g.cfg.Audio.SampleRate})
	if err != nil {
		return fmt.Errorf("audio player: %w", err)
	}
	p.Play()
	g.player = p
	return nil
}

func (g *Game) Close() {
	if g.player != nil {
		_ = g.player.Close()
	}
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		return ebiten.Termination
	}

	dt := float32(1) / float32(ebiten.TPS())
	g.gamepads = pollInput(&g.input, dt, g.gamepads)

	g.mu.Lock()
	defer g.mu.Unlock()

	g.reloadChangedAssets()

	start := time.Now()
	err := engine.UpdateAndRender(g.mem, &g.input, g.surface)
	if g.exporter != nil {
		g.exporter.ObserveFrame(time.Since(start), g.mem.Stats(), err)
	}
	if err != nil {
		return fmt.Errorf("update and render: %w", err)
	}
	return nil
}

func (g *Game) reloadChangedAssets() {
	if g.watcher == nil || !g.mem.Initialized() {
		return
	}
	select {
	case err := <-g.watcher.Errors:
		if err != nil {
			g.log.Warn("asset watcher", zap.Error(err))
		}
	default:
	}
	for _, path := range g.watcher.Drain() {
		name := g.files.Name(path)
		switch strings.ToLower(filepath.Ext(name)) {
		case ".bmp":
			if name != g.cfg.Assets.Backdrop {
				continue
			}
			err := g.mem.ReloadBitmap(name)
			if g.exporter != nil {
				g.exporter.ObserveReload(err)
			}
			if err == nil {
				g.log.Info("backdrop reloaded", zap.String("name", name))
			}
		default:
			g.log.Info("config file changed, restart to apply", zap.String("path", path))
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.rgba = g.surface.ToRGBA(g.rgba)
	screen.WritePixels(g.rgba)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.surface.Width, g.surface.Height
}
