package game

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"portal-renderer/internal/portal"
	"portal-renderer/internal/raster"
	"portal-renderer/internal/scene"
)

// surfaceGizmoColor outlines portal surfaces.
var surfaceGizmoColor = color.NRGBA{255, 255, 255, 255}

const circleSegments = 24

// gizmoLines draws each portal camera as a unit cube with a forward arrow
// and a circle on its near plane, and outlines every portal surface.
func (w *World) gizmoLines() []raster.Line {
	var lines []raster.Line
	w.Scene.Surfaces(func(_ scene.SurfaceID, s *scene.Surface) {
		c := surfaceCorners(s)
		for i := range c {
			lines = append(lines, raster.Line{A: c[i], B: c[(i+1)%4], Color: surfaceGizmoColor})
		}
	})

	w.Portals.Each(func(in *portal.Instance) {
		if !in.Camera.Active {
			return
		}
		lines = append(lines, cameraGizmo(in.Camera.World, in.Camera.Projection.Near, in.Identity.Color())...)
	})
	return lines
}

// cameraGizmo returns the lines of one camera marker.
func cameraGizmo(m mgl64.Mat4, near float64, c color.NRGBA) []raster.Line {
	at := func(x, y, z float64) mgl64.Vec3 { return m.Mul4x1(mgl64.Vec4{x, y, z, 1}).Vec3() }
	lines := make([]raster.Line, 0, 12+3+circleSegments)

	// Cube edges: the four around each of the two z faces, then the four
	// joining them.
	for i := 0; i < 4; i++ {
		a0, a1 := math.Pi/2*float64(i), math.Pi/2*float64(i+1)
		x0, y0 := 0.5*math.Sqrt2*math.Cos(a0+math.Pi/4), 0.5*math.Sqrt2*math.Sin(a0+math.Pi/4)
		x1, y1 := 0.5*math.Sqrt2*math.Cos(a1+math.Pi/4), 0.5*math.Sqrt2*math.Sin(a1+math.Pi/4)
		lines = append(lines,
			raster.Line{A: at(x0, y0, 0.5), B: at(x1, y1, 0.5), Color: c},
			raster.Line{A: at(x0, y0, -0.5), B: at(x1, y1, -0.5), Color: c},
			raster.Line{A: at(x0, y0, 0.5), B: at(x0, y0, -0.5), Color: c},
		)
	}

	// Forward arrow, one meter long.
	tip := at(0, 0, -1)
	lines = append(lines,
		raster.Line{A: at(0, 0, 0), B: tip, Color: c},
		raster.Line{A: tip, B: at(0.1, 0, -0.8), Color: c},
		raster.Line{A: tip, B: at(-0.1, 0, -0.8), Color: c},
	)

	// Near plane circle, radius 0.5.
	for i := 0; i < circleSegments; i++ {
		a0 := 2 * math.Pi * float64(i) / circleSegments
		a1 := 2 * math.Pi * float64(i+1) / circleSegments
		lines = append(lines, raster.Line{
			A:     at(0.5*math.Cos(a0), 0.5*math.Sin(a0), -near),
			B:     at(0.5*math.Cos(a1), 0.5*math.Sin(a1), -near),
			Color: c,
		})
	}
	return lines
}
