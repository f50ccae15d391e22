package raster

import (
	"encoding/binary"

	"github.com/milk9111/tileworld/bitmap"
	"github.com/milk9111/tileworld/common"
)

// PackColor packs real-valued channels in [0, 1] into 0x00RRGGBB.
func PackColor(r, g, b float32) uint32 {
	return common.RoundToUint32(common.Clamp01(r)*255)<<16 |
		common.RoundToUint32(common.Clamp01(g)*255)<<8 |
		common.RoundToUint32(common.Clamp01(b)*255)
}

// FillRectangle writes an opaque solid color over [min, max). Corners are
// rounded to the nearest pixel and clipped to the surface.
func FillRectangle(s *Surface, min, max common.Vec2, r, g, b float32) {
	if s.Validate() != nil {
		return
	}

	minX := int(common.RoundToInt32(min.X))
	minY := int(common.RoundToInt32(min.Y))
	maxX := int(common.RoundToInt32(max.X))
	maxY := int(common.RoundToInt32(max.Y))

	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > s.Width {
		maxX = s.Width
	}
	if maxY > s.Height {
		maxY = s.Height
	}

	color := PackColor(r, g, b)
	for y := minY; y < maxY; y++ {
		row := s.offset(0, y)
		for x := minX; x < maxX; x++ {
			binary.LittleEndian.PutUint32(s.Memory[row+x*bytesPerPixel:], color)
		}
	}
}

// DrawBitmap composites bmp over the surface with its top-left corner at
// (x-alignX, y-alignY). Each source pixel's alpha interpolates red, green and
// blue between the destination and the source; destination alpha is left
// alone. Parts of the bitmap that fall off the surface are skipped by moving
// the source origin, so nothing outside the surface is touched. An empty
// bitmap draws nothing.
func DrawBitmap(s *Surface, bmp *bitmap.Loaded, x, y float32, alignX, alignY int32) {
	if bmp.Empty() || s.Validate() != nil {
		return
	}

	x -= float32(alignX)
	y -= float32(alignY)

	width := int(bmp.Width)
	height := int(bmp.Height)

	minX := int(common.RoundToInt32(x))
	minY := int(common.RoundToInt32(y))
	maxX := minX + width
	maxY := minY + height

	srcOffsetX := 0
	if minX < 0 {
		srcOffsetX = -minX
		minX = 0
	}
	srcOffsetY := 0
	if minY < 0 {
		srcOffsetY = -minY
		minY = 0
	}
	if maxX > s.Width {
		maxX = s.Width
	}
	if maxY > s.Height {
		maxY = s.Height
	}
	if minX >= maxX || minY >= maxY {
		return
	}

	// Source rows are bottom-up: start from the top row and walk down.
	srcRow := (height-1-srcOffsetY)*width + srcOffsetX
	for py := minY; py < maxY; py++ {
		src := srcRow
		dst := s.offset(minX, py)
		for px := minX; px < maxX; px++ {
			sp := bmp.Pixels[src]
			dp := binary.LittleEndian.Uint32(s.Memory[dst:])
			binary.LittleEndian.PutUint32(s.Memory[dst:], blend(dp, sp))
			src++
			dst += bytesPerPixel
		}
		srcRow -= width
	}
}

func blend(dst, src uint32) uint32 {
	a := float32((src>>24)&0xFF) / 255

	r := common.Lerp(float32((dst>>16)&0xFF), float32((src>>16)&0xFF), a)
	g := common.Lerp(float32((dst>>8)&0xFF), float32((src>>8)&0xFF), a)
	b := common.Lerp(float32(dst&0xFF), float32(src&0xFF), a)

	return dst&0xFF000000 |
		uint32(r+0.5)<<16 |
		uint32(g+0.5)<<8 |
		uint32(b+0.5)
}
