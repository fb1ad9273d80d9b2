package portal

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"portal-renderer/internal/logging"
	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/projection"
	"portal-renderer/internal/rendertarget"
	"portal-renderer/internal/scene"
)

// CameraOrder is the render order of portal cameras: before the main pass.
const CameraOrder = -1

// Handle refers to an instance slot. A handle goes stale when its instance is
// despawned. The zero Handle refers to nothing.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h refers to nothing.
func (h Handle) IsZero() bool { return h.gen == 0 }

func (h Handle) String() string {
	if h.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%d#%d", h.index, h.gen)
}

// Material is what a portal's opening shows.
type Material uint8

const (
	// MaterialFlat is the identity's color.
	MaterialFlat Material = iota
	// MaterialView is the live image of the portal's own camera.
	MaterialView
)

// Camera is the secondary camera owned by an instance.
type Camera struct {
	Local      mathutil.Pose // relative to the instance pose
	World      mgl64.Mat4
	Projection projection.Perspective
	Active     bool
	Target     rendertarget.ID
	Order      int
}

// Instance is a placed portal.
type Instance struct {
	Handle   Handle
	Identity Identity
	Pose     mathutil.Pose
	Surface  scene.SurfaceID
	Pair     Handle
	Camera   Camera
	Material Material
}

// Paired reports whether the instance has a partner.
func (in *Instance) Paired() bool { return !in.Pair.IsZero() }

// EventKind classifies registry notifications.
type EventKind uint8

const (
	Spawned EventKind = iota
	Despawned
	Paired
	Unpaired
)

func (k EventKind) String() string {
	switch k {
	case Spawned:
		return "spawned"
	case Despawned:
		return "despawned"
	case Paired:
		return "paired"
	case Unpaired:
		return "unpaired"
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Event is delivered synchronously to subscribers after each change.
// For Paired and Unpaired, Other is the partner.
type Event struct {
	Kind     EventKind
	Identity Identity
	Handle   Handle
	Other    Handle
}

type slot struct {
	gen  uint32
	inst *Instance
}

// Registry holds at most one instance per identity.
type Registry struct {
	targets    *rendertarget.Manager
	slots      []slot
	free       []uint32
	byIdentity [2]Handle
	subs       []func(Event)

	// Lens is copied into each new camera. SolveCameras keeps the cameras'
	// field of view and aspect ratio in step with the primary camera.
	Lens projection.Perspective
}

// NewRegistry returns an empty registry allocating targets from targets.
func NewRegistry(targets *rendertarget.Manager) *Registry {
	return &Registry{
		targets: targets,
		Lens:    projection.Default(),
	}
}

// Targets returns the render-target manager.
func (r *Registry) Targets() *rendertarget.Manager { return r.targets }

// Subscribe registers fn for every future event.
func (r *Registry) Subscribe(fn func(Event)) {
	r.subs = append(r.subs, fn)
}

// Spawn places a portal of identity id, replacing any existing one. If the
// other identity is present the two are paired. When no render target can be
// allocated the registry is left unchanged and the error is returned.
func (r *Registry) Spawn(id Identity, pose mathutil.Pose, surface scene.SurfaceID) (Handle, error) {
	if !id.Valid() {
		return Handle{}, fmt.Errorf("portal: spawn %v: unknown identity", id)
	}
	target, err := r.targets.Allocate()
	if err != nil {
		return Handle{}, fmt.Errorf("portal: spawn %v: %w", id, err)
	}

	if old := r.byIdentity[id]; !old.IsZero() {
		r.despawn(old)
	}

	lens := r.Lens
	if tg, ok := r.targets.Get(target); ok {
		lens.Update(float64(tg.Width()), float64(tg.Height()))
	}
	inst := &Instance{
		Identity: id,
		Pose:     pose.Renormalized(),
		Surface:  surface,
		Camera: Camera{
			Local:      mathutil.IdentityPose(),
			World:      pose.RigidMat4(),
			Projection: lens,
			Target:     target,
			Order:      CameraOrder,
		},
		Material: MaterialFlat,
	}
	h := r.insert(inst)
	r.byIdentity[id] = h
	logging.Logger().Debug("portal: spawned", "identity", id, "handle", h, "surface", surface,
		"position", inst.Pose.Translation)
	r.emit(Event{Kind: Spawned, Identity: id, Handle: h})

	if other, ok := r.Lookup(id.Other()); ok {
		r.pair(inst, other)
	}

	r.mustBeConsistent()
	return h, nil
}

// Despawn removes the instance h refers to. It reports whether one existed.
func (r *Registry) Despawn(h Handle) bool {
	if _, ok := r.Get(h); !ok {
		return false
	}
	r.despawn(h)
	r.mustBeConsistent()
	return true
}

// RemoveAll despawns every instance and returns how many there were.
// With nothing present it is a no-op.
func (r *Registry) RemoveAll() int {
	n := 0
	for _, id := range Identities {
		if h := r.byIdentity[id]; !h.IsZero() {
			r.despawn(h)
			n++
		}
	}
	if n == 0 {
		logging.Logger().Debug("portal: remove all, nothing to remove")
	}
	r.mustBeConsistent()
	return n
}

// DespawnSurface removes every instance placed on surface, for when the
// surface's geometry is torn down. It returns how many were removed.
func (r *Registry) DespawnSurface(surface scene.SurfaceID) int {
	n := 0
	for _, id := range Identities {
		in, ok := r.Lookup(id)
		if ok && in.Surface == surface {
			r.despawn(in.Handle)
			n++
		}
	}
	r.mustBeConsistent()
	return n
}

// Get returns the live instance h refers to.
func (r *Registry) Get(h Handle) (*Instance, bool) {
	if h.IsZero() || int(h.index) >= len(r.slots) {
		return nil, false
	}
	s := r.slots[h.index]
	if s.gen != h.gen || s.inst == nil {
		return nil, false
	}
	return s.inst, true
}

// Lookup returns the live instance of identity id.
func (r *Registry) Lookup(id Identity) (*Instance, bool) {
	if !id.Valid() {
		return nil, false
	}
	return r.Get(r.byIdentity[id])
}

// PairOf returns in's partner.
func (r *Registry) PairOf(in *Instance) (*Instance, bool) {
	return r.Get(in.Pair)
}

// Each calls fn for each live instance, A before B.
func (r *Registry) Each(fn func(*Instance)) {
	for _, id := range Identities {
		if in, ok := r.Lookup(id); ok {
			fn(in)
		}
	}
}

// Len returns the number of live instances.
func (r *Registry) Len() int {
	n := 0
	for _, id := range Identities {
		if _, ok := r.Lookup(id); ok {
			n++
		}
	}
	return n
}

// ResizeTargets resizes the targets of live instances to the display and
// updates their cameras' aspect ratio. It returns false when the display is
// unavailable; the caller retries next frame.
func (r *Registry) ResizeTargets() bool {
	owned := make(map[rendertarget.ID]*Instance, 2)
	r.Each(func(in *Instance) { owned[in.Camera.Target] = in })

	if !r.targets.HandleResize(func(id rendertarget.ID) bool { return owned[id] != nil }) {
		logging.Logger().Debug("portal: resize skipped, no display")
		return false
	}
	for id, in := range owned {
		if tg, ok := r.targets.Get(id); ok {
			in.Camera.Projection.Update(float64(tg.Width()), float64(tg.Height()))
		}
	}
	return true
}

func (r *Registry) insert(inst *Instance) Handle {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		r.slots = append(r.slots, slot{})
		idx = uint32(len(r.slots) - 1)
	}
	s := &r.slots[idx]
	s.gen++
	s.inst = inst
	inst.Handle = Handle{index: idx, gen: s.gen}
	return inst.Handle
}

func (r *Registry) pair(a, b *Instance) {
	a.Pair, b.Pair = b.Handle, a.Handle
	for _, in := range []*Instance{a, b} {
		in.Camera.Active = true
		in.Material = MaterialView
	}
	logging.Logger().Info("portal: paired", "a", a.Identity, "b", b.Identity)
	r.emit(Event{Kind: Paired, Identity: a.Identity, Handle: a.Handle, Other: b.Handle})
}

// despawn tears down h's instance, unpairing its partner first. The caller
// checks consistency.
func (r *Registry) despawn(h Handle) {
	in, ok := r.Get(h)
	if !ok {
		return
	}
	if partner, ok := r.PairOf(in); ok {
		partner.Pair = Handle{}
		partner.Camera.Active = false
		partner.Material = MaterialFlat
		in.Pair = Handle{}
		logging.Logger().Info("portal: unpaired", "identity", partner.Identity, "from", in.Identity)
		r.emit(Event{Kind: Unpaired, Identity: partner.Identity, Handle: partner.Handle, Other: h})
	}

	r.targets.Release(in.Camera.Target)
	in.Camera.Active = false
	r.slots[h.index].inst = nil
	r.free = append(r.free, h.index)
	if r.byIdentity[in.Identity] == h {
		r.byIdentity[in.Identity] = Handle{}
	}
	logging.Logger().Debug("portal: despawned", "identity", in.Identity, "handle", h)
	r.emit(Event{Kind: Despawned, Identity: in.Identity, Handle: h})
}

func (r *Registry) emit(e Event) {
	for _, fn := range r.subs {
		fn(e)
	}
}

// mustBeConsistent panics if the registry's invariants do not hold. A broken
// registry would feed garbage into the camera solver.
func (r *Registry) mustBeConsistent() {
	if err := r.check(); err != nil {
		panic(err.Error())
	}
}

func (r *Registry) check() error {
	var count [2]int
	for i, s := range r.slots {
		if s.inst == nil {
			continue
		}
		in := s.inst
		if !in.Identity.Valid() {
			return fmt.Errorf("portal: slot %d holds invalid identity %v", i, in.Identity)
		}
		count[in.Identity]++
		if in.Handle != (Handle{index: uint32(i), gen: s.gen}) {
			return fmt.Errorf("portal: slot %d holds instance with handle %v", i, in.Handle)
		}
		if r.byIdentity[in.Identity] != in.Handle {
			return fmt.Errorf("portal: %v instance %v is not the registered one (%v)",
				in.Identity, in.Handle, r.byIdentity[in.Identity])
		}
	}
	for _, id := range Identities {
		if count[id] > 1 {
			return fmt.Errorf("portal: %d live instances of %v", count[id], id)
		}
	}

	_, hasA := r.Lookup(A)
	_, hasB := r.Lookup(B)
	for _, id := range Identities {
		in, ok := r.Lookup(id)
		if !ok {
			if !r.byIdentity[id].IsZero() {
				return fmt.Errorf("portal: %v registered as %v but not live", id, r.byIdentity[id])
			}
			continue
		}
		if in.Paired() != (hasA && hasB) {
			return fmt.Errorf("portal: %v paired=%v with both present=%v", id, in.Paired(), hasA && hasB)
		}
		if in.Paired() {
			partner, ok := r.PairOf(in)
			if !ok {
				return fmt.Errorf("portal: %v pairs with dead handle %v", id, in.Pair)
			}
			if partner.Pair != in.Handle {
				return fmt.Errorf("portal: %v pairs with %v, which pairs with %v", id, partner.Identity, partner.Pair)
			}
			if partner.Identity == id {
				return fmt.Errorf("portal: %v paired with itself", id)
			}
		}
		if in.Camera.Active != in.Paired() {
			return fmt.Errorf("portal: %v camera active=%v, paired=%v", id, in.Camera.Active, in.Paired())
		}
		if (in.Material == MaterialView) != in.Paired() {
			return fmt.Errorf("portal: %v material %v, paired=%v", id, in.Material, in.Paired())
		}
		if _, ok := r.targets.Get(in.Camera.Target); !ok {
			return fmt.Errorf("portal: %v render target %d missing", id, in.Camera.Target)
		}
	}
	return nil
}
