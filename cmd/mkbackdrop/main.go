// Command mkbackdrop writes a 32-bit BI_BITFIELDS backdrop BMP for the game,
// either converted from an existing image or as a generated gradient.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"

	"github.com/milk9111/tileworld/bitmap"
)

var layouts = map[string]bitmap.Masks{
	"argb": bitmap.CanonicalMasks,
	"abgr": {Red: 0x000000FF, Green: 0x0000FF00, Blue: 0x00FF0000},
	"rgba": {Red: 0xFF000000, Green: 0x00FF0000, Blue: 0x0000FF00},
	"bgra": {Red: 0x0000FF00, Green: 0x00FF0000, Blue: 0xFF000000},
}

func main() {
	in := flag.String("in", "", "source image (png, jpeg or bmp); empty draws a gradient")
	out := flag.String("out", "assets/test_background.bmp", "output BMP path")
	width := flag.Int("w", 320, "output width in pixels")
	height := flag.Int("h", 180, "output height in pixels")
	layout := flag.String("layout", "abgr", "channel order of the stored pixels: argb, abgr, rgba or bgra")
	flag.Parse()

	log := zap.NewExample().Sugar()
	defer log.Sync()

	masks, ok := layouts[strings.ToLower(*layout)]
	if !ok {
		log.Fatalf("unknown layout %q", *layout)
	}
	if *width <= 0 || *height <= 0 {
		log.Fatalf("size must be positive, got %dx%d", *width, *height)
	}

	var src image.Image
	if *in != "" {
		var err error
		if src, err = readImage(*in); err != nil {
			log.Fatal(err)
		}
	} else {
		src = gradient(*width, *height)
	}

	var buf bytes.Buffer
	if err := bitmap.Encode(&buf, bitmap.FromImage(scale(src, *width, *height)), masks); err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
		log.Fatal(err)
	}
	log.Infow("backdrop written", "path", *out, "width", *width, "height", *height, "layout", *layout)
}

func readImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func scale(src image.Image, w, h int) image.Image {
	if b := src.Bounds(); b.Dx() == w && b.Dy() == h {
		return src
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// gradient is opaque, red across and green down, with a faint checker so
// sub-pixel offsets are visible.
func gradient(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{
				R: uint8(255 * x / max(w-1, 1)),
				G: uint8(255 * y / max(h-1, 1)),
				B: 0x40,
				A: 0xFF,
			}
			if (x/16+y/16)%2 == 0 {
				c.B = 0x60
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
