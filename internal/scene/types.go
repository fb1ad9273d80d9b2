package scene

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"portal-renderer/internal/mathutil"
)

// SurfaceID is a surface's registration index. IDs are never reused.
type SurfaceID int

// NoSurface marks an instance that is not attached to any surface.
const NoSurface SurfaceID = -1

// Surface is a flat rectangle on static geometry that portals can be shot onto.
// Its forward normal is the local -Z axis; portals are seen from the +Z side.
type Surface struct {
	Name        string
	Parent      mathutil.Pose // pose of the owning geometry
	Local       mathutil.Pose // pose on the parent
	HalfExtents mgl64.Vec2    // local half width, half height
	Color       color.NRGBA
	Texture     string // optional texture path
}

// World returns the surface's world pose.
func (s *Surface) World() mathutil.Pose {
	return mathutil.Compose(s.Parent, s.Local)
}

// WorldHalfExtents returns the half extents scaled by the world pose.
func (s *Surface) WorldHalfExtents() mgl64.Vec2 {
	sc := s.World().Scale
	return mgl64.Vec2{s.HalfExtents[0] * abs(sc[0]), s.HalfExtents[1] * abs(sc[1])}
}

// Plane returns the surface plane with its forward normal.
func (s *Surface) Plane() mathutil.Plane {
	w := s.World()
	return mathutil.Plane{Point: w.Translation, Normal: w.Forward()}
}

// Box is an axis-aligned solid used to give the scene some depth.
type Box struct {
	Name     string
	Center   mgl64.Vec3
	HalfSize mgl64.Vec3
	Color    color.NRGBA
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
