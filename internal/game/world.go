// Package game ties the scene, the player and the portal registry into a
// frame loop.
//
// Each frame runs Step (or Apply) and then Render. Step reads input, moves
// the player through any portal it crosses, handles shooting and removal,
// and solves the portal cameras with their near planes. Render draws each
// active portal camera into its target and then the main view. Resize may be
// called at any point before Render.
package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"portal-renderer/internal/input"
	"portal-renderer/internal/logging"
	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/placement"
	"portal-renderer/internal/player"
	"portal-renderer/internal/portal"
	"portal-renderer/internal/projection"
	"portal-renderer/internal/raster"
	"portal-renderer/internal/rendertarget"
	"portal-renderer/internal/scene"
	"portal-renderer/internal/texture"
)

// Options configure a World. Zero fields take the package defaults.
type Options struct {
	FOV           float64 // vertical, radians
	Footprint     mgl64.Vec2
	MaxDistance   float64
	SurfaceOffset float64
	Sensitivity   float64
	Bindings      input.Bindings
	Gizmos        bool
	// Textures resolves surface texture names. Nil draws flat colors.
	Textures texture.Resolver
}

// World is the whole simulation.
type World struct {
	Scene    *scene.Scene
	Portals  *portal.Registry
	Resolver *placement.Resolver
	Player   *player.Player
	Renderer *raster.Renderer
	Textures texture.Resolver
	Bindings input.Bindings
	Gizmos   bool

	// Lens is the primary camera's projection.
	Lens projection.Perspective

	display rendertarget.Display
	bounds  bounds
	frames  int
}

// NewWorld builds a world over sc with the player at the scene's spawn.
func NewWorld(sc *scene.Scene, display rendertarget.Display, opts Options) *World {
	res := placement.NewResolver()
	if opts.Footprint[0] > 0 && opts.Footprint[1] > 0 {
		res.Footprint = opts.Footprint
	}
	if opts.MaxDistance > 0 {
		res.MaxDistance = opts.MaxDistance
	}
	if opts.SurfaceOffset > 0 {
		res.SurfaceOffset = opts.SurfaceOffset
	}

	lens := projection.Default()
	lens.FOV = math.Pi / 2
	if opts.FOV > 0 {
		lens.FOV = opts.FOV
	}
	if w, h, ok := display.PhysicalSize(); ok {
		lens.Update(float64(w), float64(h))
	}

	p := player.New(sc.Spawn.Position, sc.Spawn.Yaw)
	if opts.Sensitivity > 0 {
		p.Settings.Sensitivity = opts.Sensitivity
	}
	bindings := opts.Bindings
	if bindings == nil {
		bindings = input.DefaultBindings()
	}

	reg := portal.NewRegistry(rendertarget.NewManager(display))
	reg.Lens = lens

	w := &World{
		Scene:    sc,
		Portals:  reg,
		Resolver: res,
		Player:   p,
		Renderer: raster.NewRenderer(),
		Textures: opts.Textures,
		Bindings: bindings,
		Gizmos:   opts.Gizmos,
		Lens:     lens,
		display:  display,
		bounds:   sceneBounds(sc),
	}
	reg.Subscribe(func(e portal.Event) {
		logging.Logger().Info("game: portal "+e.Kind.String(), "identity", e.Identity, "handle", e.Handle)
	})
	return w
}

// Frames is the number of completed steps.
func (w *World) Frames() int { return w.frames }

// Step samples src and advances the world by dt seconds. It returns the
// controls it acted on.
func (w *World) Step(src input.Source, dt float64) input.Controls {
	c := input.Read(src, w.Bindings)
	w.Apply(c, dt)
	return c
}

// Apply advances the world by dt seconds under c.
func (w *World) Apply(c input.Controls, dt float64) {
	w.Player.Look(c.Look, dt)
	w.move(c, dt)

	if c.RemovePortals {
		if n := w.Portals.RemoveAll(); n == 0 {
			logging.Logger().Debug("game: nothing to remove")
		}
	}
	if c.ShootA {
		w.Shoot(portal.A)
	}
	if c.ShootB {
		w.Shoot(portal.B)
	}

	w.Portals.SolveCameras(w.Player.CameraMatrix(), w.Lens)
	w.frames++
}

// Shoot casts a ray from the center of the primary view and places the
// portal id where it lands. It reports whether a portal was placed.
func (w *World) Shoot(id portal.Identity) (portal.Handle, bool) {
	ray := w.Lens.ViewportRay(w.Player.CameraMatrix(), mgl64.Vec2{})
	hit, ok := w.Resolver.Resolve(ray, w.Scene)
	if !ok {
		return portal.Handle{}, false
	}
	h, err := w.Portals.Spawn(id, hit.Pose, hit.Surface)
	if err != nil {
		logging.Logger().Warn("game: spawn failed", "identity", id, "err", err)
		return portal.Handle{}, false
	}
	return h, true
}

// RemoveSurface tears a surface down together with any portal on it.
func (w *World) RemoveSurface(id scene.SurfaceID) bool {
	if !w.Scene.Remove(id) {
		return false
	}
	w.Portals.DespawnSurface(id)
	w.bounds = sceneBounds(w.Scene)
	return true
}

// Resize brings the primary lens and the portal targets in line with the
// display. It returns false when the display is unavailable.
func (w *World) Resize() bool {
	width, height, ok := w.display.PhysicalSize()
	if !ok {
		return false
	}
	w.Lens.Update(float64(width), float64(height))
	w.Portals.Lens.AspectRatio = w.Lens.AspectRatio
	return w.Portals.ResizeTargets()
}

// Camera is the primary camera.
func (w *World) Camera() raster.Camera {
	return raster.Camera{World: w.Player.CameraMatrix(), Projection: w.Lens}
}

// PortalNames lists the live portals, A first.
func (w *World) PortalNames() []string {
	var out []string
	w.Portals.Each(func(in *portal.Instance) {
		out = append(out, in.Identity.String())
	})
	return out
}

// move advances the player, carrying it through a paired portal when its
// body reaches one, then keeps it inside the scene.
func (w *World) move(c input.Controls, dt float64) {
	p := w.Player
	next := p.Move(c, dt)
	delta := next.Sub(p.Position)

	if delta.Len() > 0 {
		from := p.Support(p.Center(), delta)
		to := p.Support(next.Add(p.Center().Sub(p.Position)), delta)
		if m, entry, ok := w.Portals.Traverse(from, to, w.Resolver.Footprint); ok {
			exit, _ := w.Portals.PairOf(entry)
			p.Position = next
			p.Teleport(m)
			// Clear the exit so the body is fully in front of it.
			next = p.Position.Add(exit.Pose.Back().Mul(2 * player.Radius))
			logging.Logger().Debug("game: player traversed", "entry", entry.Identity, "position", next)
		}
	}

	pos, grounded := w.bounds.confine(next)
	p.Settle(pos, grounded)
}

// bounds is the box the player is kept in. The floor is Min.Y.
type bounds struct {
	Min, Max mgl64.Vec3
	ok       bool
}

// sceneBounds is the box around every surface corner. An empty scene has a
// floor at y = 0 and no walls.
func sceneBounds(sc *scene.Scene) bounds {
	b := bounds{
		Min: mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
	sc.Surfaces(func(_ scene.SurfaceID, s *scene.Surface) {
		for _, c := range surfaceCorners(s) {
			for i := 0; i < 3; i++ {
				b.Min[i] = math.Min(b.Min[i], c[i])
				b.Max[i] = math.Max(b.Max[i], c[i])
			}
		}
		b.ok = true
	})
	if !b.ok {
		return bounds{}
	}
	return b
}

func (b bounds) confine(p mgl64.Vec3) (mgl64.Vec3, bool) {
	floor := 0.0
	if b.ok {
		floor = b.Min[1]
		for _, i := range []int{0, 2} {
			lo, hi := b.Min[i]+player.Radius, b.Max[i]-player.Radius
			if lo <= hi {
				p[i] = mgl64.Clamp(p[i], lo, hi)
			}
		}
	}
	if p[1] <= floor {
		p[1] = floor
		return p, true
	}
	return p, false
}

// surfaceCorners returns the world corners of s, counter-clockwise seen from
// its visible side.
func surfaceCorners(s *scene.Surface) [4]mgl64.Vec3 {
	w := s.World()
	h := s.WorldHalfExtents()
	r, u := w.Right().Mul(h[0]), w.Up().Mul(h[1])
	c := w.Translation
	return [4]mgl64.Vec3{
		c.Sub(r).Sub(u),
		c.Add(r).Sub(u),
		c.Add(r).Add(u),
		c.Sub(r).Add(u),
	}
}

// plane returns the plane of a portal, facing out of its visible side.
func plane(pose mathutil.Pose) mathutil.Plane {
	return mathutil.Plane{Point: pose.Translation, Normal: pose.Back()}
}
