package bitmap

import (
	"image"
	"image/color"
)

// FromImage converts img to a bottom-up canonical bitmap. Pixels are
// unpremultiplied, matching what Encode expects.
func FromImage(img image.Image) Loaded {
	r := img.Bounds()
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return Loaded{}
	}

	out := Loaded{Width: int32(w), Height: int32(h), Pixels: make([]uint32, w*h)}
	for y := 0; y < h; y++ {
		row := out.Pixels[(h-1-y)*w:]
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(r.Min.X+x, r.Min.Y+y)).(color.NRGBA)
			row[x] = uint32(c.A)<<alphaShift | uint32(c.R)<<redShift | uint32(c.G)<<greenShift | uint32(c.B)<<blueShift
		}
	}
	return out
}
