package mathutil

import "github.com/go-gl/mathgl/mgl64"

// Decompose splits an affine matrix into scale, rotation and translation.
// A negative determinant is folded into the X scale. The rotation is
// renormalized so repeated decomposition does not accumulate drift.
func Decompose(m mgl64.Mat4) (mgl64.Vec3, mgl64.Quat, mgl64.Vec3) {
	t := m.Col(3).Vec3()
	c0, c1, c2 := m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()
	s := mgl64.Vec3{c0.Len(), c1.Len(), c2.Len()}
	if m.Mat3().Det() < 0 {
		s[0] = -s[0]
	}
	if s[0] == 0 || s[1] == 0 || s[2] == 0 {
		return s, mgl64.QuatIdent(), t
	}

	r := mgl64.Mat3FromCols(c0.Mul(1/s[0]), c1.Mul(1/s[1]), c2.Mul(1/s[2]))
	return s, mgl64.Mat4ToQuat(r.Mat4()).Normalize(), t
}

// IsIdentity checks if the matrix is approximately identity.
func IsIdentity(m mgl64.Mat4) bool {
	return m.ApproxFuncEqual(mgl64.Ident4(), Within(1e-8))
}
