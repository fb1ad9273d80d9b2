package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// YawFlip is a half turn about +Y. Stepping through a portal reverses facing.
var YawFlip = mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 1, 0})

// YawFlipMat4 is YawFlip as a homogeneous matrix applied at the origin.
var YawFlipMat4 = mgl64.HomogRotate3DY(math.Pi)

// EulerYXZ builds a rotation from yaw (Y), then pitch (X), then roll (Z).
// Angles in radians.
func EulerYXZ(yaw, pitch, roll float64) mgl64.Quat {
	qy := mgl64.QuatRotate(yaw, mgl64.Vec3{0, 1, 0})
	qx := mgl64.QuatRotate(pitch, mgl64.Vec3{1, 0, 0})
	qz := mgl64.QuatRotate(roll, mgl64.Vec3{0, 0, 1})
	return qy.Mul(qx).Mul(qz).Normalize()
}

// EulerDegYXZ is EulerYXZ with angles in degrees.
func EulerDegYXZ(yaw, pitch, roll float64) mgl64.Quat {
	return EulerYXZ(mgl64.DegToRad(yaw), mgl64.DegToRad(pitch), mgl64.DegToRad(roll))
}

// Yaw returns the heading of a direction around +Y, measured from -Z toward -X
// so that EulerYXZ(Yaw(d), 0, 0) faces d on the horizontal plane.
func Yaw(dir mgl64.Vec3) float64 {
	return math.Atan2(-dir[0], -dir[2])
}
