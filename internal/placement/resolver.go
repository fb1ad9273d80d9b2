// Package placement resolves a shoot ray against portal surfaces into a
// portal placement pose.
package placement

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"portal-renderer/internal/logging"
	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/scene"
)

// DefaultFootprint is the full width and height of a placed portal.
var DefaultFootprint = mgl64.Vec2{1, 2}

const (
	// DefaultMaxDistance is the longest shot that can place a portal.
	DefaultMaxDistance = 100.0
	// DefaultSurfaceOffset lifts a portal off its surface to avoid z-fighting.
	DefaultSurfaceOffset = 0.01
)

// Surfaces is the set of candidate surfaces. *scene.Scene implements it.
type Surfaces interface {
	Surfaces(fn func(scene.SurfaceID, *scene.Surface))
	Surface(id scene.SurfaceID) (*scene.Surface, bool)
}

// Caster is the physics collaborator: it casts a ray against scene geometry
// and reports the nearest portal surface hit and its distance.
type Caster interface {
	CastRay(ray mathutil.Ray, maxDistance float64) (scene.SurfaceID, float64, bool)
}

// Hit is a successful placement.
type Hit struct {
	Surface  scene.SurfaceID
	Distance float64
	Point    mgl64.Vec3    // where the ray met the surface
	Local    mgl64.Vec2    // Point in surface right/up coordinates, world units
	Center   mgl64.Vec2    // clamped footprint center, same coordinates
	Pose     mathutil.Pose // placement pose of the portal
}

// Resolver turns shoot rays into placements.
type Resolver struct {
	Footprint     mgl64.Vec2
	MaxDistance   float64
	SurfaceOffset float64

	// Caster, when set, replaces the built-in plane intersection.
	Caster Caster
}

// NewResolver returns a Resolver with the default footprint, range and offset.
func NewResolver() *Resolver {
	return &Resolver{
		Footprint:     DefaultFootprint,
		MaxDistance:   DefaultMaxDistance,
		SurfaceOffset: DefaultSurfaceOffset,
	}
}

// Resolve finds the nearest surface the ray hits inside its bounds and returns
// the clamped placement. A miss returns ok == false.
func (r *Resolver) Resolve(ray mathutil.Ray, surfaces Surfaces) (Hit, bool) {
	if r.Caster != nil {
		return r.resolveCast(ray, surfaces)
	}

	best := Hit{Distance: math.Inf(1)}
	found := false
	surfaces.Surfaces(func(id scene.SurfaceID, s *scene.Surface) {
		t, ok := mathutil.IntersectPlane(ray, s.Plane())
		if !ok || t < 0 || t > r.MaxDistance {
			return
		}
		// Strict comparison keeps the earlier registered surface on ties.
		if t >= best.Distance {
			return
		}
		h, ok := r.place(id, s, ray, t)
		if !ok {
			return
		}
		best, found = h, true
	})

	log := logging.Logger()
	if !found {
		log.Debug("placement: shot missed", "origin", ray.Origin, "dir", ray.Direction)
		return Hit{}, false
	}
	log.Debug("placement: hit", "surface", best.Surface, "distance", best.Distance, "point", best.Point)
	return best, true
}

func (r *Resolver) resolveCast(ray mathutil.Ray, surfaces Surfaces) (Hit, bool) {
	id, t, ok := r.Caster.CastRay(ray, r.MaxDistance)
	if !ok {
		return Hit{}, false
	}
	s, ok := surfaces.Surface(id)
	if !ok {
		// The caster hit geometry that is not a portal surface.
		return Hit{}, false
	}
	return r.place(id, s, ray, t)
}

// place checks the hit at distance t against s's bounds and builds the pose.
func (r *Resolver) place(id scene.SurfaceID, s *scene.Surface, ray mathutil.Ray, t float64) (Hit, bool) {
	world := s.World()
	point := ray.At(t)
	right, up := world.Right(), world.Up()
	rel := point.Sub(world.Translation)
	local := mgl64.Vec2{rel.Dot(right), rel.Dot(up)}

	half := s.WorldHalfExtents()
	if math.Abs(local[0]) > half[0] || math.Abs(local[1]) > half[1] {
		return Hit{}, false
	}

	center := ClampFootprint(local, half, r.Footprint)
	pos := world.Translation.
		Add(right.Mul(center[0])).
		Add(up.Mul(center[1])).
		Add(world.Back().Mul(r.SurfaceOffset))

	return Hit{
		Surface:  id,
		Distance: t,
		Point:    point,
		Local:    local,
		Center:   center,
		Pose: mathutil.Pose{
			Translation: pos,
			Rotation:    world.Rotation.Normalize(),
			Scale:       mgl64.Vec3{1, 1, 1},
		},
	}, true
}

// ClampFootprint moves p so a footprint of the given full size centered on it
// stays inside [-half, half]. An axis where the footprint does not fit is
// centered.
func ClampFootprint(p, half, footprint mgl64.Vec2) mgl64.Vec2 {
	var out mgl64.Vec2
	for i := 0; i < 2; i++ {
		lim := half[i] - footprint[i]/2
		if lim <= 0 {
			out[i] = 0
			continue
		}
		out[i] = mgl64.Clamp(p[i], -lim, lim)
	}
	return out
}
