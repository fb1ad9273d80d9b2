package mathutil

import "github.com/go-gl/mathgl/mgl64"

// Pose is a translation, rotation and scale. The matrix form is T × R × S.
type Pose struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
	Scale       mgl64.Vec3
}

// IdentityPose returns the pose with no translation, no rotation and unit scale.
func IdentityPose() Pose {
	return Pose{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// PoseAt returns an unrotated, unscaled pose at (x, y, z).
func PoseAt(x, y, z float64) Pose {
	p := IdentityPose()
	p.Translation = mgl64.Vec3{x, y, z}
	return p
}

// PoseFromMat4 decomposes an affine matrix into a pose.
func PoseFromMat4(m mgl64.Mat4) Pose {
	s, r, t := Decompose(m)
	return Pose{Translation: t, Rotation: r, Scale: s}
}

// Mat4 returns the homogeneous matrix T × R × S.
func (p Pose) Mat4() mgl64.Mat4 {
	t := mgl64.Translate3D(p.Translation[0], p.Translation[1], p.Translation[2])
	r := p.Rotation.Normalize().Mat4()
	s := mgl64.Scale3D(p.Scale[0], p.Scale[1], p.Scale[2])
	return t.Mul4(r).Mul4(s)
}

// RigidMat4 returns T × R, dropping scale.
func (p Pose) RigidMat4() mgl64.Mat4 {
	t := mgl64.Translate3D(p.Translation[0], p.Translation[1], p.Translation[2])
	return t.Mul4(p.Rotation.Normalize().Mat4())
}

// Compose applies b in a's frame.
func Compose(a, b Pose) Pose {
	return PoseFromMat4(a.Mat4().Mul4(b.Mat4()))
}

// Inverse returns the pose that undoes p. Exact when p's scale is uniform;
// non-uniform scale combined with rotation produces shear, which is dropped.
func (p Pose) Inverse() Pose {
	inv := p.Rotation.Normalize().Inverse()
	s := mgl64.Vec3{safeRecip(p.Scale[0]), safeRecip(p.Scale[1]), safeRecip(p.Scale[2])}
	t := inv.Rotate(p.Translation.Mul(-1))
	t = mgl64.Vec3{t[0] * s[0], t[1] * s[1], t[2] * s[2]}
	return Pose{Translation: t, Rotation: inv, Scale: s}
}

// Renormalized returns p with its rotation rescaled to unit length.
func (p Pose) Renormalized() Pose {
	p.Rotation = p.Rotation.Normalize()
	return p
}

// TransformPoint maps a point from p's local space to its parent space.
func (p Pose) TransformPoint(v mgl64.Vec3) mgl64.Vec3 {
	scaled := mgl64.Vec3{v[0] * p.Scale[0], v[1] * p.Scale[1], v[2] * p.Scale[2]}
	return p.Rotation.Rotate(scaled).Add(p.Translation)
}

// Forward is the local -Z axis in parent space.
func (p Pose) Forward() mgl64.Vec3 { return p.Rotation.Rotate(mgl64.Vec3{0, 0, -1}).Normalize() }

// Back is the local +Z axis in parent space.
func (p Pose) Back() mgl64.Vec3 { return p.Rotation.Rotate(mgl64.Vec3{0, 0, 1}).Normalize() }

// Up is the local +Y axis in parent space.
func (p Pose) Up() mgl64.Vec3 { return p.Rotation.Rotate(mgl64.Vec3{0, 1, 0}).Normalize() }

// Right is the local +X axis in parent space.
func (p Pose) Right() mgl64.Vec3 { return p.Rotation.Rotate(mgl64.Vec3{1, 0, 0}).Normalize() }

// ApproxEqual compares two poses component-wise. Rotations q and -q are equal.
func (p Pose) ApproxEqual(o Pose, eps float64) bool {
	return p.Translation.ApproxFuncEqual(o.Translation, Within(eps)) &&
		p.Scale.ApproxFuncEqual(o.Scale, Within(eps)) &&
		p.Rotation.OrientationEqualThreshold(o.Rotation, eps)
}

func safeRecip(v float64) float64 {
	if v == 0 {
		return 0
	}
	return 1 / v
}
