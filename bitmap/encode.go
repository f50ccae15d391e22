package bitmap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Encode writes b as a 32-bit bottom-up BI_BITFIELDS BMP whose pixels are
// packed with the given channel masks. Each canonical 8-bit channel is placed
// at its mask's lowest set bit; alpha goes to the uncovered bits.
func Encode(w io.Writer, b Loaded, masks Masks) error {
	if b.Empty() {
		return errors.New("bitmap: encode empty bitmap")
	}

	count := int(b.Width) * int(b.Height)
	dataOffset := masksOffset + masksSize
	buf := make([]byte, dataOffset+4*count)
	writeHeader(buf, b.Width, b.Height, compressionBitfields, uint32(dataOffset))

	le := binary.LittleEndian
	le.PutUint32(buf[masksOffset:], masks.Red)
	le.PutUint32(buf[masksOffset+4:], masks.Green)
	le.PutUint32(buf[masksOffset+8:], masks.Blue)

	alpha := masks.Alpha()
	for i, c := range b.Pixels[:count] {
		p := pack(c>>redShift, masks.Red) |
			pack(c>>greenShift, masks.Green) |
			pack(c>>blueShift, masks.Blue) |
			pack(c>>alphaShift, alpha)
		le.PutUint32(buf[dataOffset+4*i:], p)
	}

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("bitmap: encode: %w", err)
	}
	return nil
}

func pack(channel, mask uint32) uint32 {
	idx, ok := LowestSetBit(mask)
	if !ok {
		return 0
	}
	return ((channel & 0xFF) << idx) & mask
}

// writeHeader fills the file header and a BITMAPINFOHEADER at the start of
// buf, which must be at least masksOffset bytes long.
func writeHeader(buf []byte, width, height int32, compression, dataOffset uint32) {
	le := binary.LittleEndian
	imageSize := uint32(len(buf)) - dataOffset

	le.PutUint16(buf[0:], fileType)
	le.PutUint32(buf[2:], uint32(len(buf)))
	le.PutUint32(buf[10:], dataOffset)
	le.PutUint32(buf[14:], infoHeaderSize)
	le.PutUint32(buf[18:], uint32(width))
	le.PutUint32(buf[22:], uint32(height))
	le.PutUint16(buf[26:], 1)
	le.PutUint16(buf[28:], 32)
	le.PutUint32(buf[30:], compression)
	le.PutUint32(buf[34:], imageSize)
	le.PutUint32(buf[38:], 2835)
	le.PutUint32(buf[42:], 2835)
}
