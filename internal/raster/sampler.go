package raster

import "image"

// SampleTexture performs bilinear filtering with UV wrapping.
// Returns RGBA as uint8. Accesses tex.Pix directly for performance.
func SampleTexture(tex *image.NRGBA, u, v float64) (r, g, b, a uint8) {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()
	if w == 0 || h == 0 {
		return 0, 0, 0, 0
	}

	// Wrap UVs
	u = u - float64(int(u))
	if u < 0 {
		u += 1.0
	}
	v = v - float64(int(v))
	if v < 0 {
		v += 1.0
	}

	fx := u * float64(w-1)
	fy := v * float64(h-1)
	x0 := int(fx)
	y0 := int(fy)
	x1 := (x0 + 1) % w
	y1 := (y0 + 1) % h
	return bilinear(tex.Pix, tex.Stride, x0, y0, x1, y1, fx-float64(x0), fy-float64(y0))
}

// SampleScreen reads fb at pixel-space (x, y), clamping to the edges. Portal
// views are sampled this way: the portal quad shows the exit camera's image at
// the same screen position.
func SampleScreen(fb *FrameBuffer, x, y float64) (r, g, b, a uint8) {
	if fb == nil || fb.Width == 0 || fb.Height == 0 {
		return 0, 0, 0, 0
	}
	fx := clampF(x-0.5, 0, float64(fb.Width-1))
	fy := clampF(y-0.5, 0, float64(fb.Height-1))
	x0 := int(fx)
	y0 := int(fy)
	x1 := minInt(x0+1, fb.Width-1)
	y1 := minInt(y0+1, fb.Height-1)
	return bilinear(fb.Color, fb.Width*4, x0, y0, x1, y1, fx-float64(x0), fy-float64(y0))
}

func bilinear(pix []uint8, stride, x0, y0, x1, y1 int, dx, dy float64) (r, g, b, a uint8) {
	// Four texels
	i00 := y0*stride + x0*4
	i10 := y0*stride + x1*4
	i01 := y1*stride + x0*4
	i11 := y1*stride + x1*4

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	fr := float64(pix[i00])*w00 + float64(pix[i10])*w10 + float64(pix[i01])*w01 + float64(pix[i11])*w11
	fg := float64(pix[i00+1])*w00 + float64(pix[i10+1])*w10 + float64(pix[i01+1])*w01 + float64(pix[i11+1])*w11
	fb := float64(pix[i00+2])*w00 + float64(pix[i10+2])*w10 + float64(pix[i01+2])*w01 + float64(pix[i11+2])*w11
	fa := float64(pix[i00+3])*w00 + float64(pix[i10+3])*w10 + float64(pix[i01+3])*w01 + float64(pix[i11+3])*w11

	return uint8(fr + 0.5), uint8(fg + 0.5), uint8(fb + 0.5), uint8(fa + 0.5)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
