// Package raster draws solid rectangles and alpha-blended bitmaps into a
// 32-bit software pixel surface.
package raster

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var ErrBytesPerPixel = errors.New("raster: surface must use 4 bytes per pixel")

const bytesPerPixel = 4

// Surface is a caller-owned pixel buffer. Each pixel is a little-endian
// 0xAARRGGBB word, so memory order is B, G, R, A. Rows are Pitch bytes apart
// and the top row comes first.
type Surface struct {
	Memory        []byte
	Width         int
	Height        int
	Pitch         int
	BytesPerPixel int
}

// NewSurface allocates a tightly packed surface.
func NewSurface(width, height int) *Surface {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Surface{
		Memory:        make([]byte, width*height*bytesPerPixel),
		Width:         width,
		Height:        height,
		Pitch:         width * bytesPerPixel,
		BytesPerPixel: bytesPerPixel,
	}
}

// Validate checks that the geometry fits the memory.
func (s *Surface) Validate() error {
	if s == nil {
		return errors.New("raster: nil surface")
	}
	if s.BytesPerPixel != bytesPerPixel {
		return fmt.Errorf("%w, got %d", ErrBytesPerPixel, s.BytesPerPixel)
	}
	if s.Width < 0 || s.Height < 0 {
		return fmt.Errorf("raster: negative size %dx%d", s.Width, s.Height)
	}
	if s.Width == 0 || s.Height == 0 {
		return nil
	}
	if s.Pitch < s.Width*bytesPerPixel {
		return fmt.Errorf("raster: pitch %d shorter than a %d pixel row", s.Pitch, s.Width)
	}
	if need := (s.Height-1)*s.Pitch + s.Width*bytesPerPixel; len(s.Memory) < need {
		return fmt.Errorf("raster: %d bytes of memory, %dx%d surface needs %d", len(s.Memory), s.Width, s.Height, need)
	}
	return nil
}

func (s *Surface) offset(x, y int) int {
	return y*s.Pitch + x*bytesPerPixel
}

// PixelAt returns the pixel at (x, y), or 0 outside the surface.
func (s *Surface) PixelAt(x, y int) uint32 {
	if s == nil || x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return 0
	}
	return binary.LittleEndian.Uint32(s.Memory[s.offset(x, y):])
}

// Clear sets every pixel to c.
func (s *Surface) Clear(c uint32) {
	if s.Validate() != nil {
		return
	}
	for y := 0; y < s.Height; y++ {
		row := s.offset(0, y)
		for x := 0; x < s.Width; x++ {
			binary.LittleEndian.PutUint32(s.Memory[row+x*bytesPerPixel:], c)
		}
	}
}

// ToRGBA converts the surface into tightly packed R, G, B, A bytes, reusing
// dst when it is large enough. The surface has no persisted alpha, so every
// output pixel is opaque.
func (s *Surface) ToRGBA(dst []byte) []byte {
	if s.Validate() != nil {
		return dst[:0]
	}
	n := s.Width * s.Height * bytesPerPixel
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]

	i := 0
	for y := 0; y < s.Height; y++ {
		row := s.offset(0, y)
		for x := 0; x < s.Width; x++ {
			p := binary.LittleEndian.Uint32(s.Memory[row+x*bytesPerPixel:])
			dst[i+0] = byte(p >> 16)
			dst[i+1] = byte(p >> 8)
			dst[i+2] = byte(p)
			dst[i+3] = 0xFF
			i += bytesPerPixel
		}
	}
	return dst
}
