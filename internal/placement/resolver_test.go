package placement

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/scene"
)

func surfaceAt(name string, pos mgl64.Vec3, yawDeg float64, half mgl64.Vec2) scene.Surface {
	local := mathutil.PoseAt(pos[0], pos[1], pos[2])
	local.Rotation = mathutil.EulerDegYXZ(yawDeg, 0, 0)
	return scene.Surface{
		Name:        name,
		Parent:      mathutil.IdentityPose(),
		Local:       local,
		HalfExtents: half,
	}
}

func TestResolveWallAtOrigin(t *testing.T) {
	s := scene.New()
	id := s.Add(surfaceAt("wall", mgl64.Vec3{}, 0, mgl64.Vec2{2, 1}))

	ray := mathutil.NewRay(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, -1})
	hit, ok := NewResolver().Resolve(ray, s)
	if !ok {
		t.Fatal("Resolve missed")
	}
	if hit.Surface != id {
		t.Errorf("Surface = %d, want %d", hit.Surface, id)
	}
	if !hit.Point.ApproxFuncEqual(mgl64.Vec3{0, 0, 0}, mathutil.Within(1e-12)) {
		t.Errorf("Point = %v, want origin", hit.Point)
	}
	if !hit.Pose.Translation.ApproxFuncEqual(mgl64.Vec3{0, 0, 0.01}, mathutil.Within(1e-12)) {
		t.Errorf("Pose.Translation = %v, want (0,0,0.01)", hit.Pose.Translation)
	}
	if !hit.Pose.Rotation.OrientationEqualThreshold(mgl64.QuatIdent(), 1e-12) {
		t.Errorf("Pose.Rotation = %v, want identity", hit.Pose.Rotation)
	}
	if hit.Pose.Scale != (mgl64.Vec3{1, 1, 1}) {
		t.Errorf("Pose.Scale = %v, want unit", hit.Pose.Scale)
	}
}

func TestResolveMisses(t *testing.T) {
	s := scene.New()
	s.Add(surfaceAt("wall", mgl64.Vec3{}, 0, mgl64.Vec2{2, 1}))
	r := NewResolver()
	r.MaxDistance = 10

	tests := []struct {
		name string
		ray  mathutil.Ray
	}{
		{"outside bounds", mathutil.NewRay(mgl64.Vec3{3, 0, 5}, mgl64.Vec3{0, 0, -1})},
		{"behind origin", mathutil.NewRay(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, 1})},
		{"beyond range", mathutil.NewRay(mgl64.Vec3{0, 0, 50}, mgl64.Vec3{0, 0, -1})},
		{"parallel", mathutil.NewRay(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{1, 0, 0})},
		{"in plane", mathutil.NewRay(mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{1, 0, 0})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if hit, ok := r.Resolve(tt.ray, s); ok {
				t.Errorf("Resolve hit %+v, want miss", hit)
			}
		})
	}

	if _, ok := r.Resolve(mathutil.NewRay(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, -1}), scene.New()); ok {
		t.Error("Resolve against an empty scene hit")
	}
}

func TestResolvePicksNearest(t *testing.T) {
	s := scene.New()
	far := s.Add(surfaceAt("far", mgl64.Vec3{0, 0, -10}, 0, mgl64.Vec2{5, 5}))
	near := s.Add(surfaceAt("near", mgl64.Vec3{0, 0, -3}, 0, mgl64.Vec2{5, 5}))

	ray := mathutil.NewRay(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, -1})
	hit, ok := NewResolver().Resolve(ray, s)
	if !ok || hit.Surface != near {
		t.Fatalf("Resolve = %d, %v; want near surface %d", hit.Surface, ok, near)
	}

	// A nearer surface the ray passes beside must not shadow the far one.
	s2 := scene.New()
	s2.Add(surfaceAt("narrow", mgl64.Vec3{10, 0, -3}, 0, mgl64.Vec2{1, 1}))
	far2 := s2.Add(surfaceAt("far", mgl64.Vec3{0, 0, -10}, 0, mgl64.Vec2{5, 5}))
	hit, ok = NewResolver().Resolve(ray, s2)
	if !ok || hit.Surface != far2 {
		t.Errorf("Resolve = %d, %v; want far surface %d", hit.Surface, ok, far2)
	}
	_ = far
}

func TestResolveOutOfBoundsFallsThrough(t *testing.T) {
	s := scene.New()
	// Same plane distance, but the first surface does not contain the hit.
	s.Add(surfaceAt("offset", mgl64.Vec3{20, 0, -4}, 0, mgl64.Vec2{1, 1}))
	behind := s.Add(surfaceAt("behind", mgl64.Vec3{0, 0, -8}, 0, mgl64.Vec2{3, 3}))

	hit, ok := NewResolver().Resolve(mathutil.NewRay(mgl64.Vec3{}, mgl64.Vec3{0, 0, -1}), s)
	if !ok || hit.Surface != behind {
		t.Errorf("Resolve = %d, %v; want %d", hit.Surface, ok, behind)
	}
}

func TestResolveTieKeepsRegistrationOrder(t *testing.T) {
	s := scene.New()
	first := s.Add(surfaceAt("first", mgl64.Vec3{0, 0, -5}, 0, mgl64.Vec2{2, 2}))
	s.Add(surfaceAt("second", mgl64.Vec3{0, 0, -5}, 0, mgl64.Vec2{3, 3}))

	for i := 0; i < 10; i++ {
		hit, ok := NewResolver().Resolve(mathutil.NewRay(mgl64.Vec3{}, mgl64.Vec3{0, 0, -1}), s)
		if !ok || hit.Surface != first {
			t.Fatalf("Resolve = %d, %v; want first registered %d", hit.Surface, ok, first)
		}
	}
}

func TestResolveClampsNearEdge(t *testing.T) {
	s := scene.New()
	s.Add(surfaceAt("wall", mgl64.Vec3{0, 1.5, -5}, 0, mgl64.Vec2{5, 1.5}))

	// Aim at the lower left corner of the wall as seen from inside the room.
	target := mgl64.Vec3{-4.9, 0.1, -5}
	origin := mgl64.Vec3{0, 1.5, 0}
	hit, ok := NewResolver().Resolve(mathutil.NewRay(origin, target.Sub(origin)), s)
	if !ok {
		t.Fatal("Resolve missed")
	}
	// Wall half extents (5, 1.5), footprint (1, 2): center limited to |x| ≤ 4.5, |y| ≤ 0.5.
	want := mgl64.Vec2{-4.5, -0.5}
	if !hit.Center.ApproxFuncEqual(want, mathutil.Within(1e-9)) {
		t.Errorf("Center = %v, want %v", hit.Center, want)
	}
	wantPos := mgl64.Vec3{-4.5, 1.0, -5 + DefaultSurfaceOffset}
	if !hit.Pose.Translation.ApproxFuncEqual(wantPos, mathutil.Within(1e-9)) {
		t.Errorf("Pose.Translation = %v, want %v", hit.Pose.Translation, wantPos)
	}
}

func TestClampFootprintContainment(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		half := mgl64.Vec2{0.1 + rng.Float64()*5, 0.1 + rng.Float64()*5}
		fp := mgl64.Vec2{rng.Float64() * 2 * half[0], rng.Float64() * 2 * half[1]}
		p := mgl64.Vec2{(rng.Float64()*2 - 1) * half[0], (rng.Float64()*2 - 1) * half[1]}

		c := ClampFootprint(p, half, fp)
		for _, sx := range []float64{-1, 1} {
			for _, sy := range []float64{-1, 1} {
				corner := mgl64.Vec2{c[0] + sx*fp[0]/2, c[1] + sy*fp[1]/2}
				if corner[0] < -half[0]-1e-9 || corner[0] > half[0]+1e-9 ||
					corner[1] < -half[1]-1e-9 || corner[1] > half[1]+1e-9 {
					t.Fatalf("footprint %v at %v (from %v) pokes out of ±%v at corner %v", fp, c, p, half, corner)
				}
			}
		}
	}
}

func TestClampFootprintOversized(t *testing.T) {
	got := ClampFootprint(mgl64.Vec2{0.4, 0.4}, mgl64.Vec2{0.5, 3}, mgl64.Vec2{2, 1})
	if got[0] != 0 {
		t.Errorf("oversized axis center = %v, want 0", got[0])
	}
	if got[1] != 0.4 {
		t.Errorf("fitting axis center = %v, want 0.4", got[1])
	}
}

type fakeCaster struct {
	id   scene.SurfaceID
	dist float64
	ok   bool
}

func (f fakeCaster) CastRay(mathutil.Ray, float64) (scene.SurfaceID, float64, bool) {
	return f.id, f.dist, f.ok
}

func TestResolveWithCaster(t *testing.T) {
	s := scene.New()
	wall := s.Add(surfaceAt("wall", mgl64.Vec3{}, 0, mgl64.Vec2{2, 1}))
	ray := mathutil.NewRay(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, -1})

	r := NewResolver()
	r.Caster = fakeCaster{id: wall, dist: 5, ok: true}
	hit, ok := r.Resolve(ray, s)
	if !ok || !hit.Pose.Translation.ApproxFuncEqual(mgl64.Vec3{0, 0, 0.01}, mathutil.Within(1e-12)) {
		t.Errorf("Resolve = %+v, %v", hit, ok)
	}

	r.Caster = fakeCaster{ok: false}
	if _, ok := r.Resolve(ray, s); ok {
		t.Error("caster miss produced a hit")
	}

	r.Caster = fakeCaster{id: 42, dist: 5, ok: true}
	if _, ok := r.Resolve(ray, s); ok {
		t.Error("hit on a non-portal body produced a placement")
	}

	// Nearest body is the wall, but the hit lies outside it: the shot is rejected.
	off := mathutil.NewRay(mgl64.Vec3{3, 0, 5}, mgl64.Vec3{0, 0, -1})
	r.Caster = fakeCaster{id: wall, dist: 5, ok: true}
	if _, ok := r.Resolve(off, s); ok {
		t.Error("out-of-bounds caster hit produced a placement")
	}
}

func TestPlaneCaster(t *testing.T) {
	s := scene.New()
	s.Add(surfaceAt("side", mgl64.Vec3{10, 0, -3}, 0, mgl64.Vec2{1, 1}))
	back := s.Add(surfaceAt("back", mgl64.Vec3{0, 0, -6}, 0, mgl64.Vec2{2, 2}))

	id, d, ok := PlaneCaster{Scene: s}.CastRay(mathutil.NewRay(mgl64.Vec3{}, mgl64.Vec3{0, 0, -1}), 100)
	if !ok || id != back || d != 6 {
		t.Errorf("CastRay = %d, %v, %v; want %d, 6, true", id, d, ok, back)
	}
	if _, _, ok := (PlaneCaster{Scene: s}).CastRay(mathutil.NewRay(mgl64.Vec3{}, mgl64.Vec3{0, 0, -1}), 5); ok {
		t.Error("CastRay beyond max distance hit")
	}
}
