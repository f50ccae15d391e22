package engine

import (
	"image/color"
	"unsafe"

	"golang.org/x/image/colornames"

	"github.com/milk9111/tileworld/arena"
	"github.com/milk9111/tileworld/common"
	"github.com/milk9111/tileworld/raster"
	"github.com/milk9111/tileworld/tilemap"
	"github.com/milk9111/tileworld/world"
)

var (
	clearColor  = colornames.Midnightblue
	entityColor = colornames.Yellow
)

// rect is one queued rectangle fill.
type rect struct {
	Min, Max common.Vec2
	R, G, B  float32
}

// renderGroup queues fills for the frame in transient memory.
type renderGroup struct {
	rects []rect
	n     int
}

func newRenderGroup(a *arena.Arena, capacity int) *renderGroup {
	if a != nil {
		a.Reset()
		if a.Remaining() >= capacity*int(unsafe.Sizeof(rect{})) {
			return &renderGroup{rects: arena.PushArray[rect](a, capacity)}
		}
	}
	return &renderGroup{rects: make([]rect, capacity)}
}

func (g *renderGroup) push(min, max common.Vec2, r, gr, b float32) {
	if g.n == len(g.rects) {
		return
	}
	g.rects[g.n] = rect{Min: min, Max: max, R: r, G: gr, B: b}
	g.n++
}

func (g *renderGroup) pushColor(min, max common.Vec2, c color.RGBA) {
	g.push(min, max, float32(c.R)/255, float32(c.G)/255, float32(c.B)/255)
}

func (g *renderGroup) draw(s *raster.Surface) {
	for _, r := range g.rects[:g.n] {
		raster.FillRectangle(s, r.Min, r.Max, r.R, r.G, r.B)
	}
}

// tileGray picks the shade of a drawn tile. Floor and unknown tiles are not
// drawn.
func tileGray(t tilemap.Tile, underCamera bool) (float32, bool) {
	if t <= tilemap.TileFloor {
		return 0, false
	}
	if underCamera {
		return 0, true
	}
	if t == tilemap.TileWall {
		return 1, true
	}
	return 0.25, true
}

func (m *Memory) render(s *raster.Surface) {
	st := m.state
	cfg := m.config()

	tilePx := float32(cfg.Render.TileSideInPixels)
	metersToPixels := tilePx / st.tiles.TileSideInMeters()
	center := common.Vec2{X: 0.5 * float32(s.Width), Y: 0.5 * float32(s.Height)}

	raster.FillRectangle(s, common.Vec2{}, common.Vec2{X: float32(s.Width), Y: float32(s.Height)},
		float32(clearColor.R)/255, float32(clearColor.G)/255, float32(clearColor.B)/255)
	raster.DrawBitmap(s, &st.backdrop, 0, 0, 0, 0)

	rows, cols := cfg.Render.HalfRows, cfg.Render.HalfColumns
	group := newRenderGroup(st.transient, 4*rows*cols+st.store.Count())

	camera := st.store.Camera()
	half := common.Vec2{X: 0.5 * tilePx, Y: 0.5 * tilePx}.Scale(0.9)
	for relRow := -rows; relRow < rows; relRow++ {
		for relCol := -cols; relCol < cols; relCol++ {
			column := camera.AbsTileX + uint32(int32(relCol))
			row := camera.AbsTileY + uint32(int32(relRow))
			underCamera := column == camera.AbsTileX && row == camera.AbsTileY

			gray, ok := tileGray(st.tiles.Get(column, row, camera.AbsTileZ), underCamera)
			if !ok {
				continue
			}
			cen := common.Vec2{
				X: center.X - metersToPixels*camera.Offset.X + float32(relCol)*tilePx,
				Y: center.Y + metersToPixels*camera.Offset.Y - float32(relRow)*tilePx,
			}
			group.push(cen.Sub(half), cen.Add(half), gray, gray, gray)
		}
	}

	st.store.Each(func(_ uint32, e *world.Entity) {
		if e.Pos.AbsTileZ != camera.AbsTileZ {
			return
		}
		d := st.store.RelativeToCamera(st.tiles, e.Pos)
		ground := common.Vec2{
			X: center.X + metersToPixels*d.X,
			Y: center.Y - metersToPixels*d.Y,
		}
		size := common.Vec2{X: e.Width, Y: e.Height}.Scale(metersToPixels)
		leftTop := ground.Sub(size.Scale(0.5))
		group.pushColor(leftTop, leftTop.Add(size), entityColor)
	})

	group.draw(s)
}
