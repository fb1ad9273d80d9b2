package raster

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DrawLine draws a clip-space segment on top of fb without touching depth.
// The part behind the near plane is cut off.
func DrawLine(fb *FrameBuffer, a, b mgl64.Vec4, c color.NRGBA) {
	da := a[3] - a[2]
	db := b[3] - b[2]
	if da < 0 && db < 0 {
		return
	}
	if da < 0 {
		a = a.Add(b.Sub(a).Mul(da / (da - db)))
	} else if db < 0 {
		b = b.Add(a.Sub(b).Mul(db / (db - da)))
	}
	if a[3] <= 0 || b[3] <= 0 {
		return
	}

	ax := (a[0]/a[3] + 1) * 0.5 * float64(fb.Width)
	ay := (1 - a[1]/a[3]) * 0.5 * float64(fb.Height)
	bx := (b[0]/b[3] + 1) * 0.5 * float64(fb.Width)
	by := (1 - b[1]/b[3]) * 0.5 * float64(fb.Height)

	steps := int(math.Ceil(math.Max(math.Abs(bx-ax), math.Abs(by-ay))))
	// Near-plane vertices can land far off screen; bound the walk.
	if limit := 4 * (fb.Width + fb.Height); steps > limit {
		steps = limit
	}
	if steps == 0 {
		plot(fb, ax, ay, c)
		return
	}
	dx := (bx - ax) / float64(steps)
	dy := (by - ay) / float64(steps)
	for i := 0; i <= steps; i++ {
		plot(fb, ax+dx*float64(i), ay+dy*float64(i), c)
	}
}

func plot(fb *FrameBuffer, x, y float64, c color.NRGBA) {
	ix, iy := int(math.Floor(x)), int(math.Floor(y))
	if ix < 0 || iy < 0 || ix >= fb.Width || iy >= fb.Height {
		return
	}
	i := (iy*fb.Width + ix) * 4
	fb.Color[i] = c.R
	fb.Color[i+1] = c.G
	fb.Color[i+2] = c.B
	fb.Color[i+3] = c.A
}
