// Package bitmap decodes uncompressed 32-bit bottom-up BMP images into a
// canonical 0xAARRGGBB pixel layout.
package bitmap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
)

var (
	ErrEmpty       = errors.New("bitmap: no data")
	ErrTruncated   = errors.New("bitmap: truncated")
	ErrFormat      = errors.New("bitmap: not a BMP file")
	ErrUnsupported = errors.New("bitmap: unsupported layout")
)

const (
	fileType = 0x4D42 // "BM"

	fileHeaderSize = 14
	infoHeaderSize = 40
	masksOffset    = fileHeaderSize + infoHeaderSize
	masksSize      = 12

	compressionRGB       = 0
	compressionBitfields = 3
)

// Canonical channel positions in a decoded pixel.
const (
	alphaShift = 24
	redShift   = 16
	greenShift = 8
	blueShift  = 0
)

// Loaded is a decoded image. Rows are stored bottom-up: the first Width
// pixels are the bottom row. The zero value is the empty bitmap.
type Loaded struct {
	Width  int32
	Height int32
	Pixels []uint32
}

// Empty reports whether there is nothing to draw.
func (b *Loaded) Empty() bool {
	return b == nil || b.Width <= 0 || b.Height <= 0 || len(b.Pixels) < int(b.Width)*int(b.Height)
}

// Masks identifies which bits of a stored pixel carry each color channel.
// Alpha is whatever the three masks leave uncovered.
type Masks struct {
	Red   uint32
	Green uint32
	Blue  uint32
}

// CanonicalMasks is the layout Decode produces.
var CanonicalMasks = Masks{Red: 0x00FF0000, Green: 0x0000FF00, Blue: 0x000000FF}

// Alpha returns the complement of the color masks.
func (m Masks) Alpha() uint32 {
	return ^(m.Red | m.Green | m.Blue)
}

// Header is the subset of the BMP file and info headers the decoder needs.
type Header struct {
	FileType        uint16
	FileSize        uint32
	BitmapOffset    uint32
	InfoSize        uint32
	Width           int32
	Height          int32
	Planes          uint16
	BitsPerPixel    uint16
	Compression     uint32
	SizeOfBitmap    uint32
	HorzResolution  int32
	VertResolution  int32
	ColorsUsed      uint32
	ColorsImportant uint32

	Masks Masks
}

// ParseHeader reads and validates the headers at the start of data.
func ParseHeader(data []byte) (Header, error) {
	var h Header
	if len(data) == 0 {
		return h, ErrEmpty
	}
	if len(data) < masksOffset {
		return h, fmt.Errorf("%w: %d bytes is shorter than the headers", ErrTruncated, len(data))
	}

	le := binary.LittleEndian
	h.FileType = le.Uint16(data[0:])
	h.FileSize = le.Uint32(data[2:])
	h.BitmapOffset = le.Uint32(data[10:])
	h.InfoSize = le.Uint32(data[14:])
	h.Width = int32(le.Uint32(data[18:]))
	h.Height = int32(le.Uint32(data[22:]))
	h.Planes = le.Uint16(data[26:])
	h.BitsPerPixel = le.Uint16(data[28:])
	h.Compression = le.Uint32(data[30:])
	h.SizeOfBitmap = le.Uint32(data[34:])
	h.HorzResolution = int32(le.Uint32(data[38:]))
	h.VertResolution = int32(le.Uint32(data[42:]))
	h.ColorsUsed = le.Uint32(data[46:])
	h.ColorsImportant = le.Uint32(data[50:])

	if h.FileType != fileType {
		return h, fmt.Errorf("%w: file type %#04x", ErrFormat, h.FileType)
	}
	if h.InfoSize < infoHeaderSize {
		return h, fmt.Errorf("%w: info header of %d bytes", ErrUnsupported, h.InfoSize)
	}
	if h.BitsPerPixel != 32 {
		return h, fmt.Errorf("%w: %d bits per pixel", ErrUnsupported, h.BitsPerPixel)
	}
	if h.Width <= 0 || h.Height <= 0 {
		// Negative height marks a top-down image.
		return h, fmt.Errorf("%w: %dx%d", ErrUnsupported, h.Width, h.Height)
	}

	switch h.Compression {
	case compressionRGB:
		h.Masks = CanonicalMasks
	case compressionBitfields:
		if len(data) < masksOffset+masksSize {
			return h, fmt.Errorf("%w: missing channel masks", ErrTruncated)
		}
		h.Masks = Masks{
			Red:   le.Uint32(data[masksOffset:]),
			Green: le.Uint32(data[masksOffset+4:]),
			Blue:  le.Uint32(data[masksOffset+8:]),
		}
	default:
		return h, fmt.Errorf("%w: compression %d", ErrUnsupported, h.Compression)
	}

	need := int64(h.BitmapOffset) + 4*int64(h.Width)*int64(h.Height)
	if need > int64(len(data)) {
		return h, fmt.Errorf("%w: pixel data needs %d bytes, have %d", ErrTruncated, need, len(data))
	}
	return h, nil
}

// Decode converts a BMP image into canonical pixels. On any error the
// returned bitmap is empty.
//
// Each channel is moved into place by rotating its masked bits left by the
// distance between the mask's lowest set bit and the channel's canonical
// position. Images whose color masks cover all 32 bits, and BI_RGB images,
// carry no alpha and decode as opaque.
func Decode(data []byte) (Loaded, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return Loaded{}, err
	}

	masks := h.Masks
	alphaMask := masks.Alpha()
	opaque := h.Compression == compressionRGB || alphaMask == 0

	rs := channelShift(masks.Red, redShift)
	gs := channelShift(masks.Green, greenShift)
	bs := channelShift(masks.Blue, blueShift)
	as := channelShift(alphaMask, alphaShift)

	count := int(h.Width) * int(h.Height)
	pixels := make([]uint32, count)
	src := data[h.BitmapOffset:]
	for i := range pixels {
		p := binary.LittleEndian.Uint32(src[4*i:])
		c := bits.RotateLeft32(p&masks.Red, rs) |
			bits.RotateLeft32(p&masks.Green, gs) |
			bits.RotateLeft32(p&masks.Blue, bs) |
			bits.RotateLeft32(p&alphaMask, as)
		if opaque {
			c |= 0xFF << alphaShift
		}
		pixels[i] = c
	}

	return Loaded{Width: h.Width, Height: h.Height, Pixels: pixels}, nil
}

// ReadFileFunc reads a whole file. A nil error with zero bytes means the
// file was missing or empty.
type ReadFileFunc func(name string) ([]byte, error)

// Load reads name through read and decodes it. A failed or empty read yields
// the empty bitmap without touching the decoder.
func Load(read ReadFileFunc, name string) (Loaded, error) {
	if read == nil {
		return Loaded{}, fmt.Errorf("bitmap: load %s: no file reader", name)
	}
	data, err := read(name)
	if err != nil {
		return Loaded{}, fmt.Errorf("bitmap: load %s: %w", name, err)
	}
	if len(data) == 0 {
		return Loaded{}, fmt.Errorf("bitmap: load %s: %w", name, ErrEmpty)
	}
	b, err := Decode(data)
	if err != nil {
		return Loaded{}, fmt.Errorf("bitmap: load %s: %w", name, err)
	}
	return b, nil
}

// LowestSetBit returns the index of the least significant set bit of v.
// found is false when v is zero.
func LowestSetBit(v uint32) (index int, found bool) {
	if v == 0 {
		return 0, false
	}
	return bits.TrailingZeros32(v), true
}

func channelShift(mask uint32, canonical int) int {
	idx, ok := LowestSetBit(mask)
	if !ok {
		return 0
	}
	return canonical - idx
}
