package game

import (
	"portal-renderer/internal/logging"
	"portal-renderer/internal/portal"
	"portal-renderer/internal/raster"
	"portal-renderer/internal/scene"
)

// Render draws every active portal camera into its target, then the main
// view into fb. Portals seen inside a portal view are drawn flat.
func (w *World) Render(fb *raster.FrameBuffer) {
	log := logging.Logger()
	w.Portals.Each(func(p *portal.Instance) {
		if !p.Camera.Active {
			return
		}
		exit, ok := w.Portals.PairOf(p)
		if !ok {
			log.Warn("game: active camera without a pair", "identity", p.Identity)
			return
		}
		tg, ok := w.Portals.Targets().Get(p.Camera.Target)
		if !ok {
			log.Warn("game: portal target missing", "identity", p.Identity, "target", p.Camera.Target)
			return
		}
		f := w.buildFrame(exit.Handle, false)
		clip := plane(exit.Pose)
		f.Clip = &clip
		cam := raster.Camera{World: p.Camera.World, Projection: p.Camera.Projection}
		w.Renderer.Render(tg.FB, cam, f)
	})

	f := w.buildFrame(portal.Handle{}, true)
	if w.Gizmos {
		f.Lines = append(f.Lines, w.gizmoLines()...)
	}
	w.Renderer.Render(fb, w.Camera(), f)
}

// buildFrame collects the scene and the portals, leaving out the portal
// with handle skip. With live set, paired portals show their view targets.
func (w *World) buildFrame(skip portal.Handle, live bool) *raster.Frame {
	f := &raster.Frame{}
	w.Scene.Surfaces(func(_ scene.SurfaceID, s *scene.Surface) {
		q := raster.Quad{
			Pose:        s.World(),
			HalfExtents: s.HalfExtents,
			Color:       s.Color,
		}
		if s.Texture != "" && w.Textures != nil {
			q.Texture = w.Textures.Resolve(s.Texture)
		}
		f.Quads = append(f.Quads, q)
	})
	for _, b := range w.Scene.Boxes {
		f.Boxes = append(f.Boxes, raster.Box{Center: b.Center, HalfSize: b.HalfSize, Color: b.Color})
	}

	half := w.Resolver.Footprint.Mul(0.5)
	w.Portals.Each(func(in *portal.Instance) {
		if in.Handle == skip {
			return
		}
		q := raster.Quad{
			Pose:        in.Pose,
			HalfExtents: half,
			Color:       in.Identity.Color(),
			OneSided:    true,
		}
		if live && in.Material == portal.MaterialView {
			if tg, ok := w.Portals.Targets().Get(in.Camera.Target); ok {
				q.View = tg.FB
			}
		}
		f.Quads = append(f.Quads, q)
	})
	return f
}
