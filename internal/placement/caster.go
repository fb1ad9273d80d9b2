package placement

import (
	"math"

	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/scene"
)

// PlaneCaster is a Caster over the scene's bounded surface rectangles, for
// callers that want delegated-mode semantics without a physics engine.
type PlaneCaster struct {
	Scene *scene.Scene
}

// CastRay returns the nearest bounded surface hit within maxDistance.
func (c PlaneCaster) CastRay(ray mathutil.Ray, maxDistance float64) (scene.SurfaceID, float64, bool) {
	best := math.Inf(1)
	hit := scene.NoSurface
	c.Scene.Surfaces(func(id scene.SurfaceID, s *scene.Surface) {
		t, ok := mathutil.IntersectPlane(ray, s.Plane())
		if !ok || t < 0 || t > maxDistance || t >= best {
			return
		}
		w := s.World()
		rel := ray.At(t).Sub(w.Translation)
		half := s.WorldHalfExtents()
		if math.Abs(rel.Dot(w.Right())) > half[0] || math.Abs(rel.Dot(w.Up())) > half[1] {
			return
		}
		best, hit = t, id
	})
	if hit == scene.NoSurface {
		return scene.NoSurface, 0, false
	}
	return hit, best, true
}
