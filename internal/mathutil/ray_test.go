package mathutil

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestIntersectPlane(t *testing.T) {
	floor := Plane{Point: mgl64.Vec3{0, 0, 0}, Normal: mgl64.Vec3{0, 1, 0}}
	wall := Plane{Point: mgl64.Vec3{0, 0, 0}, Normal: mgl64.Vec3{0, 0, -1}}

	tests := []struct {
		name   string
		ray    Ray
		plane  Plane
		wantT  float64
		wantOK bool
	}{
		{"straight down", NewRay(mgl64.Vec3{0, 3, 0}, mgl64.Vec3{0, -1, 0}), floor, 3, true},
		{"behind origin", NewRay(mgl64.Vec3{0, 3, 0}, mgl64.Vec3{0, 1, 0}), floor, -3, true},
		{"oblique", NewRay(mgl64.Vec3{0, 2, 0}, mgl64.Vec3{1, -1, 0}), floor, 2 * math.Sqrt2, true},
		{"wall facing -Z", NewRay(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, -1}), wall, 5, true},
		{"parallel above", NewRay(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 0, 0}), floor, 0, false},
		{"lying in plane", NewRay(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 1}), floor, 0, false},
		{"nearly parallel", Ray{Origin: mgl64.Vec3{0, 1, 0}, Direction: mgl64.Vec3{1, 1e-12, 0}}, floor, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IntersectPlane(tt.ray, tt.plane)
			if ok != tt.wantOK {
				t.Fatalf("IntersectPlane ok = %v, want %v", ok, tt.wantOK)
			}
			if math.IsNaN(got) || math.IsInf(got, 0) {
				t.Fatalf("IntersectPlane t = %v", got)
			}
			if ok && math.Abs(got-tt.wantT) > 1e-9 {
				t.Errorf("IntersectPlane t = %v, want %v", got, tt.wantT)
			}
		})
	}
}

func TestRayAt(t *testing.T) {
	r := NewRay(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{0, 0, -10})
	if got := r.At(2); !got.ApproxFuncEqual(mgl64.Vec3{1, 1, -1}, Within(1e-9)) {
		t.Errorf("At(2) = %v, want (1,1,-1)", got)
	}
}

func TestSignedDistance(t *testing.T) {
	pl := Plane{Point: mgl64.Vec3{0, 2, 0}, Normal: mgl64.Vec3{0, 1, 0}}
	if d := pl.SignedDistance(mgl64.Vec3{5, -1, 3}); d != -3 {
		t.Errorf("SignedDistance = %v, want -3", d)
	}
}
