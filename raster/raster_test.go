package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/tileworld/bitmap"
	"github.com/milk9111/tileworld/common"
)

const sentinel = 0x5A123456

func solidBitmap(w, h int32, c uint32) *bitmap.Loaded {
	px := make([]uint32, int(w)*int(h))
	for i := range px {
		px[i] = c
	}
	return &bitmap.Loaded{Width: w, Height: h, Pixels: px}
}

// written collects the coordinates that no longer hold the sentinel.
func written(s *Surface) map[[2]int]uint32 {
	out := make(map[[2]int]uint32)
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			if p := s.PixelAt(x, y); p != sentinel {
				out[[2]int{x, y}] = p
			}
		}
	}
	return out
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		s    *Surface
		ok   bool
	}{
		{"packed", NewSurface(4, 3), true},
		{"empty", NewSurface(0, 0), true},
		{"nil", nil, false},
		{"three_bytes", &Surface{Memory: make([]byte, 36), Width: 4, Height: 3, Pitch: 12, BytesPerPixel: 3}, false},
		{"short_pitch", &Surface{Memory: make([]byte, 48), Width: 4, Height: 3, Pitch: 8, BytesPerPixel: 4}, false},
		{"short_memory", &Surface{Memory: make([]byte, 40), Width: 4, Height: 3, Pitch: 16, BytesPerPixel: 4}, false},
		{"padded_pitch", &Surface{Memory: make([]byte, 2*20+16), Width: 4, Height: 3, Pitch: 20, BytesPerPixel: 4}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.s.Validate()
			if c.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFillRectangleClipsToSurface(t *testing.T) {
	s := NewSurface(100, 100)
	s.Clear(sentinel)

	FillRectangle(s, common.Vec2{X: -10, Y: -10}, common.Vec2{X: 50, Y: 50}, 1, 0, 0)

	got := written(s)
	assert.Len(t, got, 50*50)
	for xy, p := range got {
		assert.Less(t, xy[0], 50)
		assert.Less(t, xy[1], 50)
		assert.Equal(t, uint32(0x00FF0000), p)
	}
}

func TestFillRectangle(t *testing.T) {
	cases := []struct {
		name     string
		min, max common.Vec2
		count    int
	}{
		{"inside", common.Vec2{X: 2, Y: 3}, common.Vec2{X: 5, Y: 7}, 3 * 4},
		{"rounded_corners", common.Vec2{X: 1.6, Y: 0.4}, common.Vec2{X: 3.4, Y: 2.5}, 1 * 3},
		{"inverted", common.Vec2{X: 5, Y: 5}, common.Vec2{X: 2, Y: 2}, 0},
		{"degenerate", common.Vec2{X: 4, Y: 4}, common.Vec2{X: 4, Y: 9}, 0},
		{"off_right", common.Vec2{X: 20, Y: 0}, common.Vec2{X: 30, Y: 5}, 0},
		{"covers_all", common.Vec2{X: -100, Y: -100}, common.Vec2{X: 100, Y: 100}, 10 * 10},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewSurface(10, 10)
			s.Clear(sentinel)
			FillRectangle(s, c.min, c.max, 0.5, 0.5, 0.5)
			assert.Len(t, written(s), c.count)
		})
	}
}

func TestPackColor(t *testing.T) {
	cases := []struct {
		r, g, b float32
		want    uint32
	}{
		{0, 0, 0, 0},
		{1, 1, 1, 0x00FFFFFF},
		{1, 0, 0, 0x00FF0000},
		{0, 1, 0, 0x0000FF00},
		{0, 0, 1, 0x000000FF},
		{0.5, 0.5, 0.5, 0x00808080},
		{2, -1, 0.25, 0x00FF0040},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, PackColor(c.r, c.g, c.b), "(%v, %v, %v)", c.r, c.g, c.b)
	}
}

func TestDrawBitmapClipsLeftEdge(t *testing.T) {
	s := NewSurface(100, 100)
	s.Clear(sentinel)

	DrawBitmap(s, solidBitmap(10, 10, 0xFFFF0000), -5, 0, 0, 0)

	got := written(s)
	assert.Len(t, got, 5*10)
	for xy, p := range got {
		assert.Less(t, xy[0], 5)
		assert.Less(t, xy[1], 10)
		assert.Equal(t, uint32(0x5AFF0000), p, "destination alpha is kept")
	}
}

func TestDrawBitmapClipping(t *testing.T) {
	cases := []struct {
		name           string
		x, y           float32
		alignX, alignY int32
		count          int
	}{
		{"inside", 2, 2, 0, 0, 4 * 3},
		{"top_edge", 0, -2, 0, 0, 4 * 1},
		{"bottom_right", 8, 9, 0, 0, 2 * 1},
		{"aligned", 5, 5, 4, 3, 4 * 3},
		{"align_pushes_off", 2, 2, 6, 0, 0},
		{"fully_left", -4, 0, 0, 0, 0},
		{"fully_below", 0, 10, 0, 0, 0},
		{"far_away", -1e6, 1e6, 0, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewSurface(10, 10)
			s.Clear(sentinel)
			DrawBitmap(s, solidBitmap(4, 3, 0xFF00FF00), c.x, c.y, c.alignX, c.alignY)
			assert.Len(t, written(s), c.count)
		})
	}
}

func TestDrawBitmapFlipsBottomUpRows(t *testing.T) {
	// Stored bottom row first: 1, then 2, then 3.
	b := &bitmap.Loaded{Width: 1, Height: 3, Pixels: []uint32{0xFF000001, 0xFF000002, 0xFF000003}}

	s := NewSurface(1, 3)
	DrawBitmap(s, b, 0, 0, 0, 0)
	assert.Equal(t, uint32(3), s.PixelAt(0, 0))
	assert.Equal(t, uint32(2), s.PixelAt(0, 1))
	assert.Equal(t, uint32(1), s.PixelAt(0, 2))

	// Clipping the top row starts from the second stored-from-top row.
	s = NewSurface(1, 3)
	DrawBitmap(s, b, 0, -1, 0, 0)
	assert.Equal(t, uint32(2), s.PixelAt(0, 0))
	assert.Equal(t, uint32(1), s.PixelAt(0, 1))
	assert.Equal(t, uint32(0), s.PixelAt(0, 2))
}

func TestDrawBitmapClipsColumnsFromSource(t *testing.T) {
	b := &bitmap.Loaded{Width: 3, Height: 1, Pixels: []uint32{0xFF00000A, 0xFF00000B, 0xFF00000C}}

	s := NewSurface(3, 1)
	DrawBitmap(s, b, -1, 0, 0, 0)
	assert.Equal(t, uint32(0x0B), s.PixelAt(0, 0))
	assert.Equal(t, uint32(0x0C), s.PixelAt(1, 0))
	assert.Equal(t, uint32(0), s.PixelAt(2, 0))
}

func TestDrawBitmapBlends(t *testing.T) {
	cases := []struct {
		name string
		dst  uint32
		src  uint32
		want uint32
	}{
		{"opaque_replaces", 0x11223344, 0xFFAABBCC, 0x11AABBCC},
		{"transparent_keeps", 0x11223344, 0x00AABBCC, 0x11223344},
		{"half", 0x00000000, 0x80FF8000, 0x00804000},
		{"half_over_white", 0x00FFFFFF, 0x80000000, 0x007F7F7F},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewSurface(1, 1)
			s.Clear(c.dst)
			DrawBitmap(s, solidBitmap(1, 1, c.src), 0, 0, 0, 0)
			assert.Equal(t, c.want, s.PixelAt(0, 0))
		})
	}
}

func TestDrawBitmapEmptyIsNoOp(t *testing.T) {
	s := NewSurface(4, 4)
	s.Clear(sentinel)

	DrawBitmap(s, nil, 0, 0, 0, 0)
	DrawBitmap(s, &bitmap.Loaded{}, 0, 0, 0, 0)
	DrawBitmap(s, &bitmap.Loaded{Width: 2, Height: 2}, 0, 0, 0, 0)

	assert.Empty(t, written(s))
}

func TestDrawRespectsPitchPadding(t *testing.T) {
	const pitch = 4*4 + 8
	s := &Surface{Memory: make([]byte, 3*pitch), Width: 4, Height: 3, Pitch: pitch, BytesPerPixel: 4}
	require.NoError(t, s.Validate())

	FillRectangle(s, common.Vec2{}, common.Vec2{X: 100, Y: 100}, 1, 1, 1)
	DrawBitmap(s, solidBitmap(10, 10, 0xFF000000), -3, -3, 0, 0)

	for y := 0; y < 3; y++ {
		pad := s.Memory[y*pitch+16 : y*pitch+pitch]
		assert.Equal(t, make([]byte, 8), pad, "row %d padding", y)
	}
}

func TestToRGBA(t *testing.T) {
	s := NewSurface(2, 1)
	s.Clear(0x00112233)
	FillRectangle(s, common.Vec2{X: 1}, common.Vec2{X: 2, Y: 1}, 1, 0, 0)

	got := s.ToRGBA(nil)
	assert.Equal(t, []byte{0x11, 0x22, 0x33, 0xFF, 0xFF, 0x00, 0x00, 0xFF}, got)

	reuse := make([]byte, 0, 64)
	got = s.ToRGBA(reuse)
	assert.Len(t, got, 8)
	assert.Equal(t, &reuse[:1][0], &got[0])
}
