package bitmap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPixels = []uint32{
	0xFF102030, 0x80405060, 0x00708090,
	0x7FA0B0C0, 0xFFFFFFFF, 0x01000000,
}

func encodeTest(t *testing.T, masks Masks) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Loaded{Width: 3, Height: 2, Pixels: testPixels}, masks))
	return buf.Bytes()
}

// rawBMP builds a file whose pixel words are stored verbatim.
func rawBMP(width, height int32, compression uint32, masks *Masks, words []uint32) []byte {
	offset := uint32(masksOffset)
	if masks != nil {
		offset += masksSize
	}
	buf := make([]byte, int(offset)+4*len(words))
	writeHeader(buf, width, height, compression, offset)
	if masks != nil {
		binary.LittleEndian.PutUint32(buf[masksOffset:], masks.Red)
		binary.LittleEndian.PutUint32(buf[masksOffset+4:], masks.Green)
		binary.LittleEndian.PutUint32(buf[masksOffset+8:], masks.Blue)
	}
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[int(offset)+4*i:], w)
	}
	return buf
}

func TestDecodeCanonicalMasksLeavesPixelsUnchanged(t *testing.T) {
	b, err := Decode(encodeTest(t, CanonicalMasks))
	require.NoError(t, err)

	assert.Equal(t, int32(3), b.Width)
	assert.Equal(t, int32(2), b.Height)
	assert.Equal(t, testPixels, b.Pixels)
}

func TestDecodeReordersChannels(t *testing.T) {
	cases := []struct {
		name  string
		masks Masks
	}{
		{"abgr", Masks{Red: 0x000000FF, Green: 0x0000FF00, Blue: 0x00FF0000}},
		{"rgba", Masks{Red: 0xFF000000, Green: 0x00FF0000, Blue: 0x0000FF00}},
		{"bgra", Masks{Red: 0x0000FF00, Green: 0x00FF0000, Blue: 0xFF000000}},
		{"gbar", Masks{Red: 0x000000FF, Green: 0xFF000000, Blue: 0x00FF0000}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			data := encodeTest(t, c.masks)
			require.NotEqual(t, encodeTest(t, CanonicalMasks), data)

			b, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, testPixels, b.Pixels)
		})
	}
}

func TestDecodeZeroAlphaMaskIsOpaque(t *testing.T) {
	masks := Masks{Red: 0xFFFF0000, Green: 0x0000FF00, Blue: 0x000000FF}
	require.Zero(t, masks.Alpha())

	b, err := Decode(encodeTest(t, masks))
	require.NoError(t, err)

	for i, p := range b.Pixels {
		assert.Equal(t, uint32(0xFF), p>>24, "pixel %d alpha", i)
		assert.Equal(t, testPixels[i]&0x00FFFFFF, p&0x00FFFFFF, "pixel %d color", i)
	}
}

func TestDecodeBIRGBIsOpaque(t *testing.T) {
	words := []uint32{0x00112233, 0x00445566}
	b, err := Decode(rawBMP(2, 1, compressionRGB, nil, words))
	require.NoError(t, err)

	assert.Equal(t, []uint32{0xFF112233, 0xFF445566}, b.Pixels)
}

func TestDecodeKeepsBottomUpOrder(t *testing.T) {
	words := []uint32{0xFF000001, 0xFF000002, 0xFF000003, 0xFF000004}
	b, err := Decode(rawBMP(1, 4, compressionBitfields, &CanonicalMasks, words))
	require.NoError(t, err)

	assert.Equal(t, words, b.Pixels, "first stored row is the bottom row")
}

func TestDecodeFailuresYieldEmptyBitmap(t *testing.T) {
	valid := encodeTest(t, CanonicalMasks)

	mutate := func(fn func(b []byte) []byte) []byte {
		c := append([]byte(nil), valid...)
		return fn(c)
	}

	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"nil", nil, ErrEmpty},
		{"short_header", valid[:20], ErrTruncated},
		{"bad_magic", mutate(func(b []byte) []byte { b[0] = 'P'; return b }), ErrFormat},
		{"small_info_header", mutate(func(b []byte) []byte { binary.LittleEndian.PutUint32(b[14:], 12); return b }), ErrUnsupported},
		{"24_bpp", mutate(func(b []byte) []byte { binary.LittleEndian.PutUint16(b[28:], 24); return b }), ErrUnsupported},
		{"top_down", mutate(func(b []byte) []byte { binary.LittleEndian.PutUint32(b[22:], uint32(0xFFFFFFFE)); return b }), ErrUnsupported},
		{"zero_width", mutate(func(b []byte) []byte { binary.LittleEndian.PutUint32(b[18:], 0); return b }), ErrUnsupported},
		{"rle", mutate(func(b []byte) []byte { binary.LittleEndian.PutUint32(b[30:], 1); return b }), ErrUnsupported},
		{"truncated_pixels", valid[:len(valid)-1], ErrTruncated},
		{"missing_masks", rawBMP(1, 1, compressionBitfields, nil, nil)[:masksOffset], ErrTruncated},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b, err := Decode(c.data)
			assert.True(t, errors.Is(err, c.want), "got %v", err)
			assert.True(t, b.Empty())
			assert.Nil(t, b.Pixels)
		})
	}
}

func TestLoad(t *testing.T) {
	valid := encodeTest(t, CanonicalMasks)

	cases := []struct {
		name    string
		read    ReadFileFunc
		wantErr error
	}{
		{"ok", func(string) ([]byte, error) { return valid, nil }, nil},
		{"missing", func(string) ([]byte, error) { return nil, os.ErrNotExist }, os.ErrNotExist},
		{"zero_bytes", func(string) ([]byte, error) { return []byte{}, nil }, ErrEmpty},
		{"garbage", func(string) ([]byte, error) { return []byte("not a bitmap at all, definitely not one, there is no header anywhere in here"), nil }, ErrFormat},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b, err := Load(c.read, "backdrop.bmp")
			if c.wantErr == nil {
				require.NoError(t, err)
				assert.False(t, b.Empty())
				return
			}
			assert.True(t, errors.Is(err, c.wantErr), "got %v", err)
			assert.True(t, b.Empty())
		})
	}

	_, err := Load(nil, "backdrop.bmp")
	assert.Error(t, err)
}

func TestLowestSetBit(t *testing.T) {
	cases := []struct {
		v     uint32
		index int
		found bool
	}{
		{0, 0, false},
		{1, 0, true},
		{0x00FF0000, 16, true},
		{0x0000FF00, 8, true},
		{0x80000000, 31, true},
		{0xFFFFFFFF, 0, true},
		{0x00000F10, 4, true},
	}
	for _, c := range cases {
		index, found := LowestSetBit(c.v)
		assert.Equal(t, c.found, found, "%#x", c.v)
		assert.Equal(t, c.index, index, "%#x", c.v)
	}
}

func TestEmpty(t *testing.T) {
	var nilBitmap *Loaded
	assert.True(t, nilBitmap.Empty())
	assert.True(t, (&Loaded{}).Empty())
	assert.True(t, (&Loaded{Width: 2, Height: 2, Pixels: make([]uint32, 3)}).Empty())
	assert.False(t, (&Loaded{Width: 2, Height: 2, Pixels: make([]uint32, 4)}).Empty())
}

func TestFromImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xFF}) // top left
	img.SetNRGBA(1, 0, color.NRGBA{R: 0xFF, A: 0x80})
	img.SetNRGBA(0, 1, color.NRGBA{B: 0xFF, A: 0xFF}) // bottom left
	img.SetNRGBA(1, 1, color.NRGBA{})

	got := FromImage(img)
	require.False(t, got.Empty())
	assert.Equal(t, []uint32{
		0xFF0000FF, 0x00000000,
		0xFF102030, 0x80FF0000,
	}, got.Pixels)

	t.Run("subimage_origin", func(t *testing.T) {
		sub := img.SubImage(image.Rect(1, 0, 2, 1))
		assert.Equal(t, []uint32{0x80FF0000}, FromImage(sub).Pixels)
	})

	t.Run("empty", func(t *testing.T) {
		b := FromImage(image.NewNRGBA(image.Rect(0, 0, 0, 4)))
		assert.True(t, b.Empty())
	})

	t.Run("survives_encode", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, got, Masks{Red: 0xFF, Green: 0xFF00, Blue: 0xFF0000}))
		back, err := Decode(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, got.Pixels, back.Pixels)
	})
}
