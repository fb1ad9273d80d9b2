package raster

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/projection"
)

// Camera is a world-space camera with a perspective projection.
type Camera struct {
	World      mgl64.Mat4 // camera to world
	Projection projection.Perspective
}

// ViewProjection returns clip-from-world.
func (c Camera) ViewProjection() mgl64.Mat4 {
	return c.Projection.ClipFromView().Mul4(c.World.Inv())
}

// Position returns the camera's world position.
func (c Camera) Position() mgl64.Vec3 {
	return c.World.Col(3).Vec3()
}

// Quad is a rectangle in the XY plane of its pose, seen from +Z.
type Quad struct {
	Pose        mathutil.Pose
	HalfExtents mgl64.Vec2 // local, before the pose's scale
	Color       color.NRGBA
	Texture     *image.NRGBA
	// View, when set, is a portal view sampled in screen space.
	View *FrameBuffer
	// OneSided quads are skipped when the camera is behind them.
	OneSided bool
}

// Box is an axis-aligned solid.
type Box struct {
	Center   mgl64.Vec3
	HalfSize mgl64.Vec3
	Color    color.NRGBA
}

// Line is a world-space segment drawn over the image.
type Line struct {
	A, B  mgl64.Vec3
	Color color.NRGBA
}

// Frame is everything drawn in one pass.
type Frame struct {
	Quads []Quad
	Boxes []Box
	Lines []Line
	// Clip, when set, discards surfaces behind the plane (against its
	// normal). Portal views clip at the exit portal so the wall it sits on
	// does not block the view.
	Clip *mathutil.Plane
}

// Renderer draws frames into frame buffers.
type Renderer struct {
	Light      LightConfig
	Background color.NRGBA
}

// NewRenderer returns a renderer with the default lighting and a dark
// background.
func NewRenderer() *Renderer {
	return &Renderer{
		Light:      DefaultLightConfig(),
		Background: color.NRGBA{24, 26, 32, 255},
	}
}

// Render clears fb and draws f as seen by cam. Lines go on top.
func (r *Renderer) Render(fb *FrameBuffer, cam Camera, f *Frame) {
	fb.Clear(r.Background)
	if fb.Width == 0 || fb.Height == 0 || f == nil {
		return
	}

	vp := cam.ViewProjection()
	eye := cam.Position()
	var extra *mgl64.Vec4
	if f.Clip != nil {
		p := clipSpacePlane(vp, *f.Clip)
		extra = &p
	}

	for i := range f.Quads {
		q := &f.Quads[i]
		back := q.Pose.Back()
		if q.OneSided && eye.Sub(q.Pose.Translation).Dot(back) <= 0 {
			continue
		}
		r.drawQuad(fb, vp, q, back, extra)
	}
	for i := range f.Boxes {
		r.drawBox(fb, vp, &f.Boxes[i], extra)
	}
	for _, l := range f.Lines {
		DrawLine(fb, vp.Mul4x1(l.A.Vec4(1)), vp.Mul4x1(l.B.Vec4(1)), l.Color)
	}
}

func (r *Renderer) drawQuad(fb *FrameBuffer, vp mgl64.Mat4, q *Quad, normal mgl64.Vec3, extra *mgl64.Vec4) {
	m := vp.Mul4(q.Pose.Mat4())
	hx, hy := q.HalfExtents[0], q.HalfExtents[1]

	// UVs tile once per world meter.
	su := 2 * hx * abs(q.Pose.Scale[0])
	sv := 2 * hy * abs(q.Pose.Scale[1])
	corners := [4]Vertex{
		{Clip: m.Mul4x1(mgl64.Vec4{-hx, -hy, 0, 1}), UV: mgl64.Vec2{0, sv}},
		{Clip: m.Mul4x1(mgl64.Vec4{hx, -hy, 0, 1}), UV: mgl64.Vec2{su, sv}},
		{Clip: m.Mul4x1(mgl64.Vec4{hx, hy, 0, 1}), UV: mgl64.Vec2{su, 0}},
		{Clip: m.Mul4x1(mgl64.Vec4{-hx, hy, 0, 1}), UV: mgl64.Vec2{0, 0}},
	}

	fill := Fill{
		Color:   q.Color,
		Texture: q.Texture,
		Screen:  q.View,
		Shade:   r.Light.ComputeShade(normal),
	}
	rasterize(fb, [3]Vertex{corners[0], corners[1], corners[2]}, &fill, &r.Light, extra)
	rasterize(fb, [3]Vertex{corners[0], corners[2], corners[3]}, &fill, &r.Light, extra)
}

// boxCorners lists the +Z face counter-clockwise from bottom left, then the
// -Z face in the same x/y order.
var boxCorners = [8]mgl64.Vec3{
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
}

var boxFaces = [6]struct {
	normal mgl64.Vec3
	idx    [4]int
}{
	{mgl64.Vec3{1, 0, 0}, [4]int{1, 5, 6, 2}},
	{mgl64.Vec3{-1, 0, 0}, [4]int{4, 0, 3, 7}},
	{mgl64.Vec3{0, 1, 0}, [4]int{3, 2, 6, 7}},
	{mgl64.Vec3{0, -1, 0}, [4]int{4, 5, 1, 0}},
	{mgl64.Vec3{0, 0, 1}, [4]int{0, 1, 2, 3}},
	{mgl64.Vec3{0, 0, -1}, [4]int{5, 4, 7, 6}},
}

func (r *Renderer) drawBox(fb *FrameBuffer, vp mgl64.Mat4, b *Box, extra *mgl64.Vec4) {
	c, h := b.Center, b.HalfSize
	var clip [8]mgl64.Vec4
	for i, s := range boxCorners {
		p := mgl64.Vec3{c[0] + s[0]*h[0], c[1] + s[1]*h[1], c[2] + s[2]*h[2]}
		clip[i] = vp.Mul4x1(p.Vec4(1))
	}

	for _, face := range boxFaces {
		fill := Fill{Color: b.Color, Shade: r.Light.ComputeShade(face.normal)}
		v := [4]Vertex{
			{Clip: clip[face.idx[0]]},
			{Clip: clip[face.idx[1]]},
			{Clip: clip[face.idx[2]]},
			{Clip: clip[face.idx[3]]},
		}
		rasterize(fb, [3]Vertex{v[0], v[1], v[2]}, &fill, &r.Light, extra)
		rasterize(fb, [3]Vertex{v[0], v[2], v[3]}, &fill, &r.Light, extra)
	}
}

// clipSpacePlane carries a world plane into the clip space of vp: a point x
// is in front of pl exactly when the returned plane dotted with vp·x is
// non-negative.
func clipSpacePlane(vp mgl64.Mat4, pl mathutil.Plane) mgl64.Vec4 {
	n := pl.Normal
	world := mgl64.Vec4{n[0], n[1], n[2], -n.Dot(pl.Point)}
	return vp.Inv().Transpose().Mul4x1(world)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
