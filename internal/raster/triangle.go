package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vertex is a clip-space position with its texture coordinate.
type Vertex struct {
	Clip mgl64.Vec4
	UV   mgl64.Vec2
}

// Fill selects how a triangle's pixels are colored. Screen wins over Texture,
// Texture wins over Color.
type Fill struct {
	Color   color.NRGBA
	Texture *image.NRGBA
	// Screen is sampled at each pixel's own screen position, unlit.
	Screen *FrameBuffer
	// Shade is the lighting scalar from LightConfig.ComputeShade.
	Shade float64
}

// screenVert is a vertex after the perspective divide.
type screenVert struct {
	x, y, z float64 // pixels, pixels, NDC depth
	invW    float64
	uw, vw  float64 // UV divided by w
}

// nearPlane is z ≤ w, the near plane of a reversed-Z projection, as a
// clip-space plane.
var nearPlane = mgl64.Vec4{0, 0, -1, 1}

// RasterizeTriangle clips a clip-space triangle against the near plane,
// then fills it with a reversed-Z depth test and perspective-correct UVs.
// Triangles are double-sided.
func RasterizeTriangle(fb *FrameBuffer, tri [3]Vertex, fill *Fill, lc *LightConfig) {
	rasterize(fb, tri, fill, lc, nil)
}

// rasterize is RasterizeTriangle with an optional extra clip-space plane;
// the part of the triangle on its negative side is discarded.
func rasterize(fb *FrameBuffer, tri [3]Vertex, fill *Fill, lc *LightConfig, extra *mgl64.Vec4) {
	var buf, buf2 [9]Vertex
	poly := clipPolygon(tri[:], buf[:0], nearPlane)
	if extra != nil && len(poly) >= 3 {
		poly = clipPolygon(poly, buf2[:0], *extra)
	}
	if len(poly) < 3 {
		return
	}

	var sv [9]screenVert
	for i, v := range poly {
		sv[i] = toScreen(fb, v)
	}

	// Flat fills are shaded once per triangle instead of per pixel.
	var flatR, flatG, flatB uint8
	if fill.Screen == nil && fill.Texture == nil {
		flatR, flatG, flatB = lc.Shade(fill.Color.R, fill.Color.G, fill.Color.B, fill.Shade)
	}

	for i := 1; i+1 < len(poly); i++ {
		fillTriangle(fb, sv[0], sv[i], sv[i+1], fill, lc, flatR, flatG, flatB)
	}
}

// clipPolygon keeps the part of poly where plane·clip ≥ 0 (Sutherland-Hodgman).
// At most one vertex is added per clipped edge.
func clipPolygon(poly []Vertex, out []Vertex, plane mgl64.Vec4) []Vertex {
	n := len(poly)
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[(i+1)%n]
		da := plane.Dot(a.Clip)
		db := plane.Dot(b.Clip)
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			t := da / (da - db)
			out = append(out, Vertex{
				Clip: a.Clip.Add(b.Clip.Sub(a.Clip).Mul(t)),
				UV:   a.UV.Add(b.UV.Sub(a.UV).Mul(t)),
			})
		}
	}
	return out
}

func toScreen(fb *FrameBuffer, v Vertex) screenVert {
	invW := 1 / v.Clip[3]
	return screenVert{
		x:    (v.Clip[0]*invW + 1) * 0.5 * float64(fb.Width),
		y:    (1 - v.Clip[1]*invW) * 0.5 * float64(fb.Height),
		z:    v.Clip[2] * invW,
		invW: invW,
		uw:   v.UV[0] * invW,
		vw:   v.UV[1] * invW,
	}
}

// fillTriangle is the hot path: no allocation in the pixel loop.
func fillTriangle(fb *FrameBuffer, p0, p1, p2 screenVert, fill *Fill, lc *LightConfig, flatR, flatG, flatB uint8) {
	x0, y0 := p0.x, p0.y
	x1, y1 := p1.x, p1.y
	x2, y2 := p2.x, p2.y

	// Bounding box
	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))

	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-12 && det < 1e-12 {
		return
	}
	invDet := 1.0 / det

	// Precompute edge deltas
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	const eps = -1e-9
	// A view target of another size is sampled at the same relative position.
	sxScale, syScale := 1.0, 1.0
	if fill.Screen != nil {
		sxScale = float64(fill.Screen.Width) / float64(fb.Width)
		syScale = float64(fill.Screen.Height) / float64(fb.Height)
	}

	for sy := minY; sy <= maxY; sy++ {
		cy := float64(sy) + 0.5
		dsy := cy - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			cx := float64(sx) + 0.5
			dsx := cx - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < eps || w1 < eps || w2 < eps {
				continue
			}

			z := w0*p0.z + w1*p1.z + w2*p2.z
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			var cr, cg, cb, ca uint8
			switch {
			case fill.Screen != nil:
				cr, cg, cb, ca = SampleScreen(fill.Screen, cx*sxScale, cy*syScale)
				ca = 255
			case fill.Texture != nil:
				iw := w0*p0.invW + w1*p1.invW + w2*p2.invW
				u := (w0*p0.uw + w1*p1.uw + w2*p2.uw) / iw
				v := (w0*p0.vw + w1*p1.vw + w2*p2.vw) / iw
				cr, cg, cb, ca = SampleTexture(fill.Texture, u, v)
				cr, cg, cb = lc.Shade(cr, cg, cb, fill.Shade)
			default:
				cr, cg, cb, ca = flatR, flatG, flatB, fill.Color.A
			}

			// Skip transparent texels
			if ca < 8 {
				continue
			}
			fb.ZBuf[zIdx] = z

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = cr
			fb.Color[pxIdx+1] = cg
			fb.Color[pxIdx+2] = cb
			fb.Color[pxIdx+3] = ca
		}
	}
}
