// Package rendertarget owns the off-screen images portal cameras render into
// and keeps them sized to the display.
package rendertarget

import (
	"errors"
	"image"
	"sort"

	"golang.org/x/image/draw"

	"portal-renderer/internal/logging"
	"portal-renderer/internal/raster"
)

// ErrDisplayUnavailable is returned when a target is requested while no
// display is present to size it against.
var ErrDisplayUnavailable = errors.New("rendertarget: display unavailable")

// ID names a target. The zero ID is never allocated.
type ID uint32

// Display reports the physical pixel size of the primary window.
type Display interface {
	PhysicalSize() (width, height int, ok bool)
}

// Target is an off-screen color+depth buffer.
type Target struct {
	ID ID
	FB *raster.FrameBuffer
}

// Width returns the target width in pixels.
func (t *Target) Width() int { return t.FB.Width }

// Height returns the target height in pixels.
func (t *Target) Height() int { return t.FB.Height }

// Manager allocates, resizes and releases targets.
type Manager struct {
	display Display
	next    ID
	targets map[ID]*Target
}

// NewManager returns a manager sizing targets against d.
func NewManager(d Display) *Manager {
	return &Manager{
		display: d,
		targets: make(map[ID]*Target),
	}
}

// Allocate creates a target matching the display's current size.
func (m *Manager) Allocate() (ID, error) {
	w, h, ok := m.displaySize()
	if !ok {
		logging.Logger().Warn("rendertarget: allocate skipped, no display")
		return 0, ErrDisplayUnavailable
	}
	m.next++
	id := m.next
	m.targets[id] = &Target{ID: id, FB: raster.NewFrameBuffer(w, h)}
	logging.Logger().Debug("rendertarget: allocated", "id", id, "width", w, "height", h)
	return id, nil
}

// Release frees a target. It reports whether the target existed.
func (m *Manager) Release(id ID) bool {
	if _, ok := m.targets[id]; !ok {
		return false
	}
	delete(m.targets, id)
	logging.Logger().Debug("rendertarget: released", "id", id)
	return true
}

// Get returns the target with the given ID.
func (m *Manager) Get(id ID) (*Target, bool) {
	t, ok := m.targets[id]
	return t, ok
}

// Len returns the number of live targets.
func (m *Manager) Len() int {
	return len(m.targets)
}

// Resize sets every target keep accepts to width×height, resampling its last
// image. A nil keep accepts all targets. It returns the number resized.
func (m *Manager) Resize(width, height int, keep func(ID) bool) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	n := 0
	for _, id := range m.ids() {
		if keep != nil && !keep(id) {
			continue
		}
		t := m.targets[id]
		if t.FB.Width == width && t.FB.Height == height {
			continue
		}
		t.FB = resample(t.FB, width, height)
		n++
	}
	if n > 0 {
		logging.Logger().Debug("rendertarget: resized", "count", n, "width", width, "height", height)
	}
	return n
}

// HandleResize reads the display size and resizes every target keep accepts.
// With no display it does nothing and returns false.
func (m *Manager) HandleResize(keep func(ID) bool) bool {
	w, h, ok := m.displaySize()
	if !ok {
		return false
	}
	m.Resize(w, h, keep)
	return true
}

func (m *Manager) displaySize() (int, int, bool) {
	if m.display == nil {
		return 0, 0, false
	}
	w, h, ok := m.display.PhysicalSize()
	if !ok || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// ids returns live IDs in allocation order.
func (m *Manager) ids() []ID {
	ids := make([]ID, 0, len(m.targets))
	for id := range m.targets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// resample scales fb's color into a fresh buffer so the first frame after a
// resize does not show an empty portal. Depth is reset.
func resample(fb *raster.FrameBuffer, width, height int) *raster.FrameBuffer {
	out := raster.NewFrameBuffer(width, height)
	if fb.Width == 0 || fb.Height == 0 {
		return out
	}
	dst := out.NRGBA()
	draw.BiLinear.Scale(dst, dst.Bounds(), fb.NRGBA(), image.Rect(0, 0, fb.Width, fb.Height), draw.Src, nil)
	return out
}
