package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a half-line. Direction is expected to be normalized.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// NewRay normalizes dir.
func NewRay(origin, dir mgl64.Vec3) Ray {
	return Ray{Origin: origin, Direction: dir.Normalize()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Plane is given by a point on it and its normal.
type Plane struct {
	Point  mgl64.Vec3
	Normal mgl64.Vec3
}

// SignedDistance returns the distance of p from the plane along the normal.
func (pl Plane) SignedDistance(p mgl64.Vec3) float64 {
	return p.Sub(pl.Point).Dot(pl.Normal)
}

// IntersectPlane returns the signed distance t along r where it meets pl.
// A ray parallel to the plane, including one lying in it, reports no hit.
func IntersectPlane(r Ray, pl Plane) (float64, bool) {
	denom := pl.Normal.Dot(r.Direction)
	if math.Abs(denom) <= ParallelEpsilon {
		return 0, false
	}
	t := pl.Point.Sub(r.Origin).Dot(pl.Normal) / denom
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, false
	}
	return t, true
}
