package portal

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"portal-renderer/internal/logging"
	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/projection"
)

// TeleportMatrix maps world space in front of entry p to world space in
// front of exit q: M_q · R_yaw180 · inverse(M_p). Portal scale is ignored.
func TeleportMatrix(p, q mathutil.Pose) mgl64.Mat4 {
	return q.RigidMat4().Mul4(mathutil.YawFlipMat4).Mul4(p.RigidMat4().Inv())
}

// CameraMatrix returns the world matrix of the camera that looks out of q as
// the player looks into p.
func CameraMatrix(p, q mathutil.Pose, player mgl64.Mat4) mgl64.Mat4 {
	return TeleportMatrix(p, q).Mul4(player)
}

// SolveCameras recomputes every paired instance's camera from the primary
// camera's world matrix and lens. It must run after the player has moved
// and before rendering. It returns the number of cameras updated.
func (r *Registry) SolveCameras(player mgl64.Mat4, lens projection.Perspective) int {
	n := 0
	r.Each(func(p *Instance) {
		if !p.Paired() {
			return
		}
		q, ok := r.PairOf(p)
		if !ok {
			logging.Logger().Warn("portal: pair missing during camera solve", "identity", p.Identity)
			return
		}
		solveCamera(p, q, player, lens)
		n++
	})
	return n
}

func solveCamera(p, q *Instance, player mgl64.Mat4, lens projection.Perspective) {
	world := CameraMatrix(p.Pose, q.Pose, player)
	local := p.Pose.RigidMat4().Inv().Mul4(world)

	cam := &p.Camera
	cam.Local = mathutil.PoseFromMat4(local).Renormalized()
	cam.World = p.Pose.RigidMat4().Mul4(cam.Local.Mat4())

	cam.Projection.FOV = lens.FOV
	if lens.AspectRatio > 0 && !math.IsNaN(lens.AspectRatio) {
		cam.Projection.AspectRatio = lens.AspectRatio
	}
	cam.Projection.SetNear(NearDistance(q.Pose, cam.World))
}

// NearDistance is the distance from the exit portal to the camera, the raw
// value the near plane is set from.
func NearDistance(exit mathutil.Pose, camWorld mgl64.Mat4) float64 {
	return exit.Translation.Sub(camWorld.Col(3).Vec3()).Len()
}

// Traverse checks whether a body moving from `from` to `to` passed through
// the opening of a paired portal. The opening is footprint wide and tall,
// centered on the portal and entered from its +Z side. On a crossing it
// returns the teleport matrix and the entry instance.
func (r *Registry) Traverse(from, to mgl64.Vec3, footprint mgl64.Vec2) (mgl64.Mat4, *Instance, bool) {
	var (
		m     mgl64.Mat4
		entry *Instance
	)
	r.Each(func(p *Instance) {
		if entry != nil || !p.Paired() {
			return
		}
		if !Crossed(p.Pose, footprint, from, to) {
			return
		}
		q, ok := r.PairOf(p)
		if !ok {
			return
		}
		m, entry = TeleportMatrix(p.Pose, q.Pose), p
	})
	if entry == nil {
		return mgl64.Ident4(), nil, false
	}
	logging.Logger().Debug("portal: traversed", "entry", entry.Identity)
	return m, entry, true
}

// Crossed reports whether the segment from → to goes from the front (+Z) of
// the portal at pose to its back, through the footprint rectangle.
func Crossed(pose mathutil.Pose, footprint mgl64.Vec2, from, to mgl64.Vec3) bool {
	inv := pose.RigidMat4().Inv()
	a := inv.Mul4x1(from.Vec4(1)).Vec3()
	b := inv.Mul4x1(to.Vec4(1)).Vec3()
	if !(a[2] > 0 && b[2] <= 0) {
		return false
	}
	t := a[2] / (a[2] - b[2])
	hit := a.Add(b.Sub(a).Mul(t))
	return math.Abs(hit[0]) <= footprint[0]/2 && math.Abs(hit[1]) <= footprint[1]/2
}
