// Package player is a kinematic first-person player. It owns the primary
// camera the portal cameras are solved against.
package player

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"portal-renderer/internal/input"
	"portal-renderer/internal/mathutil"
)

// Body dimensions in meters.
const (
	Height = 1.75
	Radius = 0.3
	// EyeOffset is the eye height above the feet: the capsule center plus
	// half the length of its cylinder.
	EyeOffset = Height/2 + (Height-2*Radius)/2
)

// Settings are the motion constants. Speeds in m/s, Decay in 1/s, Gravity in
// m/s², Sensitivity in radians per pixel per second.
type Settings struct {
	WalkSpeed        float64
	RunSpeed         float64
	Decay            float64
	JumpSpeed        float64
	Gravity          float64
	TerminalVelocity float64
	Sensitivity      float64
}

// DefaultSettings returns walking at 1.7 m/s, running at twice that, a
// velocity decay of 10/s and a 5 m/s jump under standard gravity.
func DefaultSettings() Settings {
	return Settings{
		WalkSpeed:        1.7,
		RunSpeed:         3.4,
		Decay:            10,
		JumpSpeed:        5,
		Gravity:          -9.81,
		TerminalVelocity: 50,
		Sensitivity:      1,
	}
}

// Player is the body plus its view angles. Position is the point between the
// feet.
type Player struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Yaw      float64 // radians about +Y, 0 faces -Z
	Pitch    float64 // radians, clamped to ±π/2
	Grounded bool

	Settings Settings
}

// New places a player at pos facing yaw.
func New(pos mgl64.Vec3, yaw float64) *Player {
	return &Player{Position: pos, Yaw: yaw, Settings: DefaultSettings()}
}

// Look turns the view by a pointer delta over dt seconds. Moving right turns
// right, moving down looks down.
func (p *Player) Look(delta mgl64.Vec2, dt float64) {
	k := dt * p.Settings.Sensitivity
	p.Yaw = wrapAngle(p.Yaw - delta[0]*k)
	p.Pitch = mgl64.Clamp(p.Pitch-delta[1]*k, -math.Pi/2, math.Pi/2)
}

// Move updates the velocity from c and returns the position the player would
// reach after dt seconds. The caller resolves collisions and portal crossings
// and then calls Settle.
func (p *Player) Move(c input.Controls, dt float64) mgl64.Vec3 {
	s := p.Settings
	speed := s.WalkSpeed
	if c.Run {
		speed = s.RunSpeed
	}
	dir := c.Direction()
	target := p.heading().Rotate(mgl64.Vec3{dir[0], 0, dir[1]}).Mul(speed)

	p.Velocity[0] = expDecay(p.Velocity[0], target[0], s.Decay, dt)
	p.Velocity[2] = expDecay(p.Velocity[2], target[2], s.Decay, dt)
	switch {
	case p.Grounded && c.Jump:
		p.Velocity[1] = s.JumpSpeed
	case p.Grounded:
		p.Velocity[1] = 0
	default:
		p.Velocity[1] = math.Max(p.Velocity[1]+s.Gravity*dt, -s.TerminalVelocity)
	}

	if p.Velocity.Len() <= 0.001 {
		return p.Position
	}
	return p.Position.Add(p.Velocity.Mul(dt))
}

// Settle moves the player to pos. Landing on ground stops the fall.
func (p *Player) Settle(pos mgl64.Vec3, grounded bool) {
	p.Position = pos
	p.Grounded = grounded
	if grounded && p.Velocity[1] < 0 {
		p.Velocity[1] = 0
	}
}

// Teleport carries the player through a portal transform: the position is
// mapped, the velocity and facing are rotated.
func (p *Player) Teleport(m mgl64.Mat4) {
	p.Position = m.Mul4x1(p.Position.Vec4(1)).Vec3()
	p.Velocity = m.Mul4x1(p.Velocity.Vec4(0)).Vec3()

	fwd := m.Mul4x1(p.heading().Rotate(mgl64.Vec3{0, 0, -1}).Vec4(0)).Vec3()
	if math.Hypot(fwd[0], fwd[2]) > 1e-6 {
		p.Yaw = mathutil.Yaw(fwd)
	}
	p.Grounded = false
}

// Center is the middle of the body capsule.
func (p *Player) Center() mgl64.Vec3 {
	return p.Position.Add(mgl64.Vec3{0, Height / 2, 0})
}

// Eye is the camera position.
func (p *Player) Eye() mgl64.Vec3 {
	return p.Position.Add(mgl64.Vec3{0, EyeOffset, 0})
}

// Support returns the point of the body capsule furthest along dir, taken
// from center. A zero dir returns center.
func (p *Player) Support(center, dir mgl64.Vec3) mgl64.Vec3 {
	l := dir.Len()
	if l == 0 {
		return center
	}
	d := dir.Mul(1 / l)
	half := Height/2 - Radius
	var y float64
	switch {
	case d[1] > 0:
		y = half
	case d[1] < 0:
		y = -half
	}
	return center.Add(mgl64.Vec3{0, y, 0}).Add(d.Mul(Radius))
}

// Rotation is the view orientation.
func (p *Player) Rotation() mgl64.Quat {
	return mathutil.EulerYXZ(p.Yaw, p.Pitch, 0)
}

// CameraMatrix is the primary camera's world matrix.
func (p *Player) CameraMatrix() mgl64.Mat4 {
	return mathutil.Pose{
		Translation: p.Eye(),
		Rotation:    p.Rotation(),
		Scale:       mgl64.Vec3{1, 1, 1},
	}.RigidMat4()
}

func (p *Player) heading() mgl64.Quat {
	return mgl64.QuatRotate(p.Yaw, mgl64.Vec3{0, 1, 0})
}

// expDecay moves v toward target, closing the gap by a factor of
// e^(-decay·dt).
func expDecay(v, target, decay, dt float64) float64 {
	return target + (v-target)*math.Exp(-decay*dt)
}

func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
