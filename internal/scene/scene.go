// Package scene holds the static geometry portals can be placed on.
package scene

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"portal-renderer/internal/logging"
	"portal-renderer/internal/mathutil"
)

// Spawn is where the player starts.
type Spawn struct {
	Position mgl64.Vec3
	Yaw      float64 // radians
}

// Scene is the set of portal surfaces and props. Surfaces keep their
// registration order; a removed surface leaves a hole so IDs stay stable.
type Scene struct {
	surfaces []*Surface
	Boxes    []Box
	Spawn    Spawn
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{}
}

// Add registers a surface and returns its ID.
func (s *Scene) Add(surf Surface) SurfaceID {
	s.surfaces = append(s.surfaces, &surf)
	id := SurfaceID(len(s.surfaces) - 1)
	logging.Logger().Debug("scene: surface added", "id", id, "name", surf.Name)
	return id
}

// Remove tears a surface down. It reports whether the surface existed.
func (s *Scene) Remove(id SurfaceID) bool {
	if !s.Has(id) {
		return false
	}
	logging.Logger().Debug("scene: surface removed", "id", id, "name", s.surfaces[id].Name)
	s.surfaces[id] = nil
	return true
}

// Has reports whether id names a live surface.
func (s *Scene) Has(id SurfaceID) bool {
	return id >= 0 && int(id) < len(s.surfaces) && s.surfaces[id] != nil
}

// Surface returns the live surface with the given ID.
func (s *Scene) Surface(id SurfaceID) (*Surface, bool) {
	if !s.Has(id) {
		return nil, false
	}
	return s.surfaces[id], true
}

// Surfaces calls fn for every live surface in registration order.
func (s *Scene) Surfaces(fn func(SurfaceID, *Surface)) {
	for i, surf := range s.surfaces {
		if surf != nil {
			fn(SurfaceID(i), surf)
		}
	}
}

// Len returns the number of live surfaces.
func (s *Scene) Len() int {
	n := 0
	for _, surf := range s.surfaces {
		if surf != nil {
			n++
		}
	}
	return n
}

// Default builds a 10×10 m room with a floor, four walls and two crates.
func Default() *Scene {
	s := New()
	wall := mgl64.Vec2{5, 1.5}
	gray := color.NRGBA{128, 128, 128, 255}

	s.Add(Surface{
		Name:        "floor",
		Parent:      mathutil.IdentityPose(),
		Local:       posed(0, 0, 0, 0, -90),
		HalfExtents: mgl64.Vec2{5, 5},
		Color:       gray,
	})
	s.Add(Surface{
		Name:        "north wall",
		Parent:      mathutil.IdentityPose(),
		Local:       posed(0, 1.5, -5, 0, 0),
		HalfExtents: wall,
		Color:       color.NRGBA{170, 160, 150, 255},
	})
	s.Add(Surface{
		Name:        "south wall",
		Parent:      mathutil.IdentityPose(),
		Local:       posed(0, 1.5, 5, 180, 0),
		HalfExtents: wall,
		Color:       color.NRGBA{150, 160, 170, 255},
	})
	s.Add(Surface{
		Name:        "east wall",
		Parent:      mathutil.IdentityPose(),
		Local:       posed(5, 1.5, 0, -90, 0),
		HalfExtents: wall,
		Color:       color.NRGBA{160, 170, 150, 255},
	})
	s.Add(Surface{
		Name:        "west wall",
		Parent:      mathutil.IdentityPose(),
		Local:       posed(-5, 1.5, 0, 90, 0),
		HalfExtents: wall,
		Color:       color.NRGBA{170, 150, 160, 255},
	})

	s.Boxes = []Box{
		{Name: "crate", Center: mgl64.Vec3{1.5, 0.5, 1.5}, HalfSize: mgl64.Vec3{0.5, 0.5, 0.5}, Color: color.NRGBA{204, 179, 153, 255}},
		{Name: "pillar", Center: mgl64.Vec3{-2.5, 1, -2.5}, HalfSize: mgl64.Vec3{0.3, 1, 0.3}, Color: color.NRGBA{90, 110, 140, 255}},
	}
	s.Spawn = Spawn{Position: mgl64.Vec3{0, 0, 2}}
	return s
}

// posed builds a unit-scale pose from a position and yaw/pitch in degrees.
func posed(x, y, z, yaw, pitch float64) mathutil.Pose {
	p := mathutil.PoseAt(x, y, z)
	p.Rotation = mathutil.EulerDegYXZ(yaw, pitch, 0)
	return p
}
