package snapshot

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample reduces a supersampled frame to w×h with CatmullRom filtering.
// Frames with transparent pixels are filtered premultiplied so their edges
// keep their color. An image already at or below the target size is
// returned as is.
func Downsample(img *image.NRGBA, w, h int) *image.NRGBA {
	b := img.Bounds()
	if w <= 0 || h <= 0 || (b.Dx() <= w && b.Dy() <= h) {
		return img
	}
	dr := image.Rect(0, 0, w, h)

	if opaque(img) {
		dst := image.NewNRGBA(dr)
		draw.CatmullRom.Scale(dst, dr, img, b, draw.Src, nil)
		return dst
	}

	dst := image.NewRGBA(dr)
	draw.CatmullRom.Scale(dst, dr, premultiply(img), b, draw.Src, nil)
	return unpremultiply(dst)
}

// opaque reports whether every pixel has full alpha. Rasterized frames
// always do.
func opaque(img *image.NRGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 3; i < len(row); i += 4 {
			if row[i] != 0xff {
				return false
			}
		}
	}
	return true
}

func premultiply(img *image.NRGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si, di := img.PixOffset(x, y), out.PixOffset(x, y)
			a := uint32(img.Pix[si+3])
			for c := 0; c < 3; c++ {
				out.Pix[di+c] = uint8((uint32(img.Pix[si+c])*a + 127) / 255)
			}
			out.Pix[di+3] = uint8(a)
		}
	}
	return out
}

func unpremultiply(img *image.RGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	for i := 0; i+3 < len(img.Pix); i += 4 {
		a := img.Pix[i+3]
		out.Pix[i+3] = a
		if a <= 1 {
			continue
		}
		for c := 0; c < 3; c++ {
			out.Pix[i+c] = clamp8(float64(img.Pix[i+c]) * 255 / float64(a))
		}
	}
	return out
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
