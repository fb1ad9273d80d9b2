package rendertarget

// Window is a Display whose size is pushed by the windowing layer.
type Window struct {
	width, height int
	open          bool
}

// NewWindow returns an open window of the given size.
func NewWindow(width, height int) *Window {
	w := &Window{}
	w.Set(width, height)
	return w
}

// Set records a new physical size and marks the window open.
// It reports whether the size changed.
func (w *Window) Set(width, height int) bool {
	changed := !w.open || w.width != width || w.height != height
	w.width, w.height, w.open = width, height, true
	return changed
}

// Close marks the window absent.
func (w *Window) Close() {
	w.open = false
}

// PhysicalSize implements Display.
func (w *Window) PhysicalSize() (int, int, bool) {
	if w == nil || !w.open {
		return 0, 0, false
	}
	return w.width, w.height, true
}
