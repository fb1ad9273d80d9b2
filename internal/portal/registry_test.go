package portal

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/rendertarget"
	"portal-renderer/internal/scene"
)

func newTestRegistry() (*Registry, *rendertarget.Window) {
	win := rendertarget.NewWindow(320, 200)
	return NewRegistry(rendertarget.NewManager(win)), win
}

func TestIdentity(t *testing.T) {
	if A.Other() != B || B.Other() != A {
		t.Error("Other is not an involution over {A, B}")
	}
	if A.String() != "PortalA" || B.String() != "PortalB" {
		t.Errorf("names = %q, %q", A, B)
	}
	if A.Color() == B.Color() {
		t.Error("A and B share a color")
	}
	if Identity(7).Valid() {
		t.Error("Identity(7) is valid")
	}
}

func TestSpawnPairsAndRepairs(t *testing.T) {
	r, _ := newTestRegistry()
	var events []string
	r.Subscribe(func(e Event) { events = append(events, e.Kind.String()+" "+e.Identity.String()) })

	a1, err := r.Spawn(A, mathutil.PoseAt(0, 1, -5), 1)
	if err != nil {
		t.Fatalf("Spawn(A): %v", err)
	}
	inA, _ := r.Get(a1)
	if inA.Paired() || inA.Camera.Active || inA.Material != MaterialFlat {
		t.Errorf("lone A: paired=%v active=%v material=%v", inA.Paired(), inA.Camera.Active, inA.Material)
	}
	if inA.Camera.Order != CameraOrder {
		t.Errorf("camera order = %d, want %d", inA.Camera.Order, CameraOrder)
	}

	b, err := r.Spawn(B, mathutil.PoseAt(5, 1, 0), 2)
	if err != nil {
		t.Fatalf("Spawn(B): %v", err)
	}
	inB, _ := r.Get(b)
	if inA.Pair != b || inB.Pair != a1 {
		t.Fatalf("pairs after second spawn: A→%v B→%v", inA.Pair, inB.Pair)
	}
	for _, in := range []*Instance{inA, inB} {
		if !in.Camera.Active || in.Material != MaterialView {
			t.Errorf("%v: active=%v material=%v after pairing", in.Identity, in.Camera.Active, in.Material)
		}
	}

	events = nil
	a2, err := r.Spawn(A, mathutil.PoseAt(-5, 1, 0), 3)
	if err != nil {
		t.Fatalf("Spawn(A) again: %v", err)
	}
	if _, ok := r.Get(a1); ok {
		t.Error("old A handle still resolves")
	}
	if inB.Pair != a2 {
		t.Errorf("B pairs with %v, want new A %v", inB.Pair, a2)
	}
	want := []string{"unpaired PortalB", "despawned PortalA", "spawned PortalA", "paired PortalA"}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", events, want)
	}
	if r.Targets().Len() != 2 {
		t.Errorf("live targets = %d, want 2", r.Targets().Len())
	}
}

func TestRemoveAll(t *testing.T) {
	r, _ := newTestRegistry()
	if n := r.RemoveAll(); n != 0 {
		t.Errorf("RemoveAll on empty registry = %d", n)
	}

	r.Spawn(A, mathutil.IdentityPose(), 0)
	r.Spawn(B, mathutil.IdentityPose(), 0)
	if n := r.RemoveAll(); n != 2 {
		t.Errorf("RemoveAll = %d, want 2", n)
	}
	if r.Len() != 0 || r.Targets().Len() != 0 {
		t.Errorf("after RemoveAll: %d instances, %d targets", r.Len(), r.Targets().Len())
	}
}

func TestDespawnUnpairsPartner(t *testing.T) {
	r, _ := newTestRegistry()
	a, _ := r.Spawn(A, mathutil.IdentityPose(), 0)
	r.Spawn(B, mathutil.IdentityPose(), 1)

	if !r.Despawn(a) {
		t.Fatal("Despawn(a) = false")
	}
	if r.Despawn(a) {
		t.Error("second Despawn(a) = true")
	}
	inB, _ := r.Lookup(B)
	if inB.Paired() || inB.Camera.Active || inB.Material != MaterialFlat {
		t.Errorf("B after partner despawn: paired=%v active=%v material=%v",
			inB.Paired(), inB.Camera.Active, inB.Material)
	}
}

func TestDespawnSurface(t *testing.T) {
	r, _ := newTestRegistry()
	r.Spawn(A, mathutil.IdentityPose(), 4)
	r.Spawn(B, mathutil.IdentityPose(), 9)

	if n := r.DespawnSurface(4); n != 1 {
		t.Errorf("DespawnSurface(4) = %d, want 1", n)
	}
	if _, ok := r.Lookup(A); ok {
		t.Error("A survived teardown of its surface")
	}
	if n := r.DespawnSurface(scene.SurfaceID(4)); n != 0 {
		t.Errorf("second DespawnSurface(4) = %d", n)
	}
}

func TestSpawnWithoutDisplayChangesNothing(t *testing.T) {
	r, win := newTestRegistry()
	a, _ := r.Spawn(A, mathutil.IdentityPose(), 0)

	win.Close()
	var fired bool
	r.Subscribe(func(Event) { fired = true })
	if _, err := r.Spawn(A, mathutil.PoseAt(1, 0, 0), 1); !errors.Is(err, rendertarget.ErrDisplayUnavailable) {
		t.Fatalf("Spawn error = %v, want ErrDisplayUnavailable", err)
	}
	if fired {
		t.Error("failed spawn emitted events")
	}
	if in, ok := r.Lookup(A); !ok || in.Handle != a {
		t.Error("failed spawn replaced the existing instance")
	}
	if r.ResizeTargets() {
		t.Error("ResizeTargets succeeded without a display")
	}
}

func TestSpawnUnknownIdentity(t *testing.T) {
	r, _ := newTestRegistry()
	if _, err := r.Spawn(Identity(5), mathutil.IdentityPose(), 0); err == nil {
		t.Error("Spawn accepted an unknown identity")
	}
	if r.Targets().Len() != 0 {
		t.Error("rejected spawn allocated a target")
	}
}

func TestRandomSequencesKeepInvariants(t *testing.T) {
	r, _ := newTestRegistry()
	rng := rand.New(rand.NewSource(42))
	var handles []Handle

	for step := 0; step < 5000; step++ {
		switch op := rng.Intn(10); {
		case op < 6:
			id := Identities[rng.Intn(2)]
			h, err := r.Spawn(id, mathutil.PoseAt(rng.Float64(), 0, 0), scene.SurfaceID(rng.Intn(3)))
			if err != nil {
				t.Fatalf("step %d: Spawn: %v", step, err)
			}
			handles = append(handles, h)
			if in, ok := r.Lookup(id); !ok || in.Handle != h {
				t.Fatalf("step %d: Lookup(%v) does not return the new instance", step, id)
			}
		case op < 8 && len(handles) > 0:
			r.Despawn(handles[rng.Intn(len(handles))])
		case op < 9:
			r.DespawnSurface(scene.SurfaceID(rng.Intn(3)))
		default:
			r.RemoveAll()
		}

		if err := r.check(); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		r.Each(func(in *Instance) {
			if !in.Paired() {
				return
			}
			partner, ok := r.PairOf(in)
			if !ok || partner.Pair != in.Handle {
				t.Fatalf("step %d: pairing of %v is not mutual", step, in.Identity)
			}
		})
		if r.Targets().Len() != r.Len() {
			t.Fatalf("step %d: %d targets for %d instances", step, r.Targets().Len(), r.Len())
		}
	}
}

func TestBrokenPairingPanics(t *testing.T) {
	r, _ := newTestRegistry()
	r.Spawn(A, mathutil.IdentityPose(), 0)
	b, _ := r.Spawn(B, mathutil.IdentityPose(), 0)
	inB, _ := r.Get(b)
	inB.Pair = Handle{}

	defer func() {
		if recover() == nil {
			t.Error("one-sided pairing did not panic")
		}
	}()
	r.mustBeConsistent()
}

func TestResizeTargetsUpdatesAspect(t *testing.T) {
	r, win := newTestRegistry()
	a, _ := r.Spawn(A, mathutil.IdentityPose(), 0)

	win.Set(800, 600)
	if !r.ResizeTargets() {
		t.Fatal("ResizeTargets = false")
	}
	in, _ := r.Get(a)
	tg, _ := r.Targets().Get(in.Camera.Target)
	if tg.Width() != 800 || tg.Height() != 600 {
		t.Errorf("target = %dx%d, want 800x600", tg.Width(), tg.Height())
	}
	if got := in.Camera.Projection.AspectRatio; got != 800.0/600.0 {
		t.Errorf("aspect = %v, want 4/3", got)
	}
}
