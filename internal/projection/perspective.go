// Package projection implements the portal camera's perspective projection.
//
// The projection has the same form as a standard reversed-Z infinite
// perspective, but its near distance is rewritten every frame by the portal
// camera solver so the near clip plane tracks the exit portal.
package projection

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"portal-renderer/internal/mathutil"
)

const (
	// MinNear is the smallest near distance the solver may set.
	MinNear = 0.05
	// DefaultNear is the near distance of a freshly created projection.
	DefaultNear = 0.1
	// DefaultFar bounds the near distance; depth itself is infinite.
	DefaultFar = 1000.0
)

// DefaultFOV is the vertical field of view of a fresh projection (45°).
var DefaultFOV = math.Pi / 4

// Perspective is a right-handed camera projection looking down -Z.
type Perspective struct {
	FOV         float64 // vertical, radians
	AspectRatio float64 // width / height
	Near        float64
	Far         float64
}

// Default returns a 45°, square, near 0.1, far 1000 projection.
func Default() Perspective {
	return Perspective{
		FOV:         DefaultFOV,
		AspectRatio: 1,
		Near:        DefaultNear,
		Far:         DefaultFar,
	}
}

// Matrix returns the reversed-Z infinite perspective for fov, aspect and near.
// View-space depth -near maps to NDC z = 1 and infinity maps to 0.
func Matrix(fov, aspect, near float64) mgl64.Mat4 {
	f := 1 / math.Tan(fov/2)
	return mgl64.Mat4FromRows(
		mgl64.Vec4{f / aspect, 0, 0, 0},
		mgl64.Vec4{0, f, 0, 0},
		mgl64.Vec4{0, 0, 0, near},
		mgl64.Vec4{0, 0, -1, 0},
	)
}

// ClipFromView returns Matrix for the current fields.
func (p Perspective) ClipFromView() mgl64.Mat4 {
	return Matrix(p.FOV, p.AspectRatio, p.Near)
}

// Update sets the aspect ratio from a viewport size. A degenerate size keeps
// the previous ratio.
func (p *Perspective) Update(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	p.AspectRatio = width / height
}

// SetNear stores d clamped to [MinNear, Far] and returns the stored value.
func (p *Perspective) SetNear(d float64) float64 {
	p.Near = ClampNear(d, p.Far)
	return p.Near
}

// ClampNear clamps d to [MinNear, far]. NaN maps to MinNear.
func ClampNear(d, far float64) float64 {
	if math.IsNaN(d) || d < MinNear {
		return MinNear
	}
	if far < MinNear {
		far = MinNear
	}
	if d > far {
		return far
	}
	return d
}

// FrustumCorners returns the frustum corners at view depths zNear and zFar in
// the order near bottom-right, top-right, top-left, bottom-left, then the same
// four at the far depth. Depths are signed view-space z values.
func FrustumCorners(fov, aspect, zNear, zFar float64) [8]mgl64.Vec3 {
	tanHalf := math.Tan(fov / 2)
	a := math.Abs(zNear) * tanHalf
	b := math.Abs(zFar) * tanHalf

	return [8]mgl64.Vec3{
		{a * aspect, -a, zNear},
		{a * aspect, a, zNear},
		{-a * aspect, a, zNear},
		{-a * aspect, -a, zNear},
		{b * aspect, -b, zFar},
		{b * aspect, b, zFar},
		{-b * aspect, b, zFar},
		{-b * aspect, -b, zFar},
	}
}

// FrustumCorners is FrustumCorners for p's fov and aspect ratio.
func (p Perspective) FrustumCorners(zNear, zFar float64) [8]mgl64.Vec3 {
	return FrustumCorners(p.FOV, p.AspectRatio, zNear, zFar)
}

// Project maps a view-space point to normalized device coordinates.
// ok is false for points at or behind the camera plane.
func (p Perspective) Project(v mgl64.Vec3) (mgl64.Vec3, bool) {
	clip := p.ClipFromView().Mul4x1(v.Vec4(1))
	if clip[3] <= 0 {
		return mgl64.Vec3{}, false
	}
	return mgl64.Vec3{clip[0] / clip[3], clip[1] / clip[3], clip[2] / clip[3]}, true
}

// ViewportRay returns the world-space ray through ndc (x, y in [-1, 1], +y up)
// for a camera with world matrix camWorld. The origin lies on the near plane.
func (p Perspective) ViewportRay(camWorld mgl64.Mat4, ndc mgl64.Vec2) mathutil.Ray {
	tanHalf := math.Tan(p.FOV / 2)
	dirView := mgl64.Vec3{ndc[0] * tanHalf * p.AspectRatio, ndc[1] * tanHalf, -1}
	originView := dirView.Mul(p.Near)

	origin := camWorld.Mul4x1(originView.Vec4(1)).Vec3()
	dir := camWorld.Mul4x1(dirView.Vec4(0)).Vec3()
	return mathutil.NewRay(origin, dir)
}
