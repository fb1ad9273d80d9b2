package main

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"portal-renderer/internal/input"
)

// control is one bound key or mouse button.
type control struct {
	key    ebiten.Key
	button ebiten.MouseButton
	mouse  bool
}

// deviceSource reads the keyboard and mouse through ebiten.
type deviceSource struct {
	controls map[string]control
	last     [2]int
	delta    mgl64.Vec2
	primed   bool
}

// newDeviceSource resolves every control name used by b.
func newDeviceSource(b input.Bindings) (*deviceSource, error) {
	s := &deviceSource{controls: make(map[string]control)}
	for _, name := range b.Controls() {
		switch name {
		case input.MouseLeft:
			s.controls[name] = control{button: ebiten.MouseButtonLeft, mouse: true}
		case input.MouseRight:
			s.controls[name] = control{button: ebiten.MouseButtonRight, mouse: true}
		default:
			var k ebiten.Key
			if err := k.UnmarshalText([]byte(name)); err != nil {
				return nil, fmt.Errorf("unknown control %q: %w", name, err)
			}
			s.controls[name] = control{key: k}
		}
	}
	return s, nil
}

// poll captures the pointer motion since the previous frame. The first
// frame only records the position.
func (s *deviceSource) poll() {
	x, y := ebiten.CursorPosition()
	if s.primed {
		s.delta = mgl64.Vec2{float64(x - s.last[0]), float64(y - s.last[1])}
	}
	s.last, s.primed = [2]int{x, y}, true
}

func (s *deviceSource) Pressed(name string) bool {
	c, ok := s.controls[name]
	switch {
	case !ok:
		return false
	case c.mouse:
		return ebiten.IsMouseButtonPressed(c.button)
	default:
		return ebiten.IsKeyPressed(c.key)
	}
}

func (s *deviceSource) JustPressed(name string) bool {
	c, ok := s.controls[name]
	switch {
	case !ok:
		return false
	case c.mouse:
		return inpututil.IsMouseButtonJustPressed(c.button)
	default:
		return inpututil.IsKeyJustPressed(c.key)
	}
}

func (s *deviceSource) LookDelta() mgl64.Vec2 { return s.delta }
