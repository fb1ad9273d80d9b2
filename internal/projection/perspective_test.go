package projection

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"portal-renderer/internal/mathutil"
)

func TestMatrixReversedInfinite(t *testing.T) {
	p := Perspective{FOV: math.Pi / 2, AspectRatio: 2, Near: 0.5, Far: DefaultFar}

	tests := []struct {
		name  string
		view  mgl64.Vec3
		wantZ float64
	}{
		{"on near plane", mgl64.Vec3{0, 0, -0.5}, 1},
		{"twice near", mgl64.Vec3{0, 0, -1}, 0.5},
		{"far away", mgl64.Vec3{0, 0, -5e5}, 1e-6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ndc, ok := p.Project(tt.view)
			if !ok {
				t.Fatalf("Project(%v) not ok", tt.view)
			}
			if math.Abs(ndc[2]-tt.wantZ) > 1e-9 {
				t.Errorf("ndc z = %v, want %v", ndc[2], tt.wantZ)
			}
		})
	}

	// 90° vertical fov: a point at 45° up lands on the top edge.
	ndc, _ := p.Project(mgl64.Vec3{0, 1, -1})
	if math.Abs(ndc[1]-1) > 1e-12 {
		t.Errorf("top edge ndc y = %v, want 1", ndc[1])
	}
	// aspect 2: x extends twice as far as y.
	ndc, _ = p.Project(mgl64.Vec3{2, 0, -1})
	if math.Abs(ndc[0]-1) > 1e-12 {
		t.Errorf("right edge ndc x = %v, want 1", ndc[0])
	}
}

func TestProjectBehindCamera(t *testing.T) {
	p := Default()
	if _, ok := p.Project(mgl64.Vec3{0, 0, 1}); ok {
		t.Error("Project of a point behind the camera should not be ok")
	}
	if _, ok := p.Project(mgl64.Vec3{1, 1, 0}); ok {
		t.Error("Project of a point on the camera plane should not be ok")
	}
}

func TestMatrixFollowsNear(t *testing.T) {
	p := Default()
	before := p.ClipFromView()
	p.SetNear(3)
	after := p.ClipFromView()
	if before.At(2, 3) == after.At(2, 3) {
		t.Fatal("near change did not reach the matrix")
	}
	if after.At(2, 3) != 3 {
		t.Errorf("matrix near term = %v, want 3", after.At(2, 3))
	}
	// fov and aspect terms are untouched by near.
	if before.At(0, 0) != after.At(0, 0) || before.At(1, 1) != after.At(1, 1) {
		t.Error("near change altered fov/aspect terms")
	}
}

func TestClampNear(t *testing.T) {
	const far = DefaultFar
	tests := []struct {
		in, want float64
	}{
		{0.0, MinNear},
		{0.03, MinNear},
		{0.05, 0.05},
		{1.25, 1.25},
		{500, 500},
		{far + 100, far},
		{math.Inf(1), far},
		{math.NaN(), MinNear},
		{-3, MinNear},
	}
	for _, tt := range tests {
		got := ClampNear(tt.in, far)
		if got != tt.want {
			t.Errorf("ClampNear(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got < MinNear || got > far {
			t.Errorf("ClampNear(%v) = %v outside [%v, %v]", tt.in, got, MinNear, far)
		}
	}
}

func TestUpdateAspect(t *testing.T) {
	p := Default()
	p.Update(800, 600)
	if math.Abs(p.AspectRatio-800.0/600.0) > 1e-12 {
		t.Errorf("AspectRatio = %v, want 4/3", p.AspectRatio)
	}
	p.Update(0, 600)
	if math.Abs(p.AspectRatio-800.0/600.0) > 1e-12 {
		t.Errorf("degenerate size changed aspect to %v", p.AspectRatio)
	}
}

func TestFrustumCorners(t *testing.T) {
	c := FrustumCorners(math.Pi/2, 2, -1, -10)

	want := [8]mgl64.Vec3{
		{2, -1, -1}, {2, 1, -1}, {-2, 1, -1}, {-2, -1, -1},
		{20, -10, -10}, {20, 10, -10}, {-20, 10, -10}, {-20, -10, -10},
	}
	for i := range want {
		if !c[i].ApproxFuncEqual(want[i], mathutil.Within(1e-12)) {
			t.Errorf("corner %d = %v, want %v", i, c[i], want[i])
		}
	}
}

func TestFrustumCornersProjectToEdges(t *testing.T) {
	p := Perspective{FOV: mgl64.DegToRad(70), AspectRatio: 16.0 / 9.0, Near: 0.2, Far: DefaultFar}
	for i, c := range p.FrustumCorners(-0.2, -50) {
		ndc, ok := p.Project(c)
		if !ok {
			t.Fatalf("corner %d not projectable", i)
		}
		if math.Abs(math.Abs(ndc[0])-1) > 1e-9 || math.Abs(math.Abs(ndc[1])-1) > 1e-9 {
			t.Errorf("corner %d projects to %v, want |x| = |y| = 1", i, ndc)
		}
	}
}

func TestViewportRayCenter(t *testing.T) {
	p := Default()
	cam := mathutil.PoseAt(1, 2, 3)
	cam.Rotation = mathutil.EulerDegYXZ(90, 0, 0)

	r := p.ViewportRay(cam.RigidMat4(), mgl64.Vec2{0, 0})
	if !r.Direction.ApproxFuncEqual(mgl64.Vec3{-1, 0, 0}, mathutil.Within(1e-12)) {
		t.Errorf("center ray direction = %v, want -X", r.Direction)
	}
	wantOrigin := mgl64.Vec3{1 - DefaultNear, 2, 3}
	if !r.Origin.ApproxFuncEqual(wantOrigin, mathutil.Within(1e-12)) {
		t.Errorf("center ray origin = %v, want %v", r.Origin, wantOrigin)
	}
}
