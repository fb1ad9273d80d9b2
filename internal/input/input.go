// Package input turns device state into the per-frame Controls snapshot the
// game loop consumes.
//
// Controls are named by strings ("W", "Space", "MouseLeft", ...) so this
// package does not depend on a windowing library. The interactive command
// maps names to ebiten keys; the headless command replays a Script.
package input

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Action is something the player can do.
type Action int

const (
	Up Action = iota
	Down
	Left
	Right
	Run
	Jump
	ShootA
	ShootB
	RemovePortals
	numActions
)

var actionNames = [numActions]string{
	Up:            "up",
	Down:          "down",
	Left:          "left",
	Right:         "right",
	Run:           "run",
	Jump:          "jump",
	ShootA:        "shoot_a",
	ShootB:        "shoot_b",
	RemovePortals: "remove_portals",
}

func (a Action) String() string {
	if a < 0 || a >= numActions {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// ParseAction is the inverse of Action.String.
func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for a, name := range actionNames {
		if name == s {
			return Action(a), nil
		}
	}
	return 0, fmt.Errorf("input: unknown action %q", s)
}

// Actions returns every action in declaration order.
func Actions() []Action {
	out := make([]Action, numActions)
	for i := range out {
		out[i] = Action(i)
	}
	return out
}

// Mouse button control names.
const (
	MouseLeft  = "MouseLeft"
	MouseRight = "MouseRight"
)

// Bindings maps each action to a control name.
type Bindings map[Action]string

// DefaultBindings is WASD, left control to run, space to jump, the mouse
// buttons to shoot and R to remove both portals.
func DefaultBindings() Bindings {
	return Bindings{
		Up:            "W",
		Down:          "S",
		Left:          "A",
		Right:         "D",
		Run:           "ControlLeft",
		Jump:          "Space",
		ShootA:        MouseLeft,
		ShootB:        MouseRight,
		RemovePortals: "R",
	}
}

// Apply overrides bindings from an action-name → control-name map, as found
// in the config file. Unknown actions and empty controls are errors and leave
// b untouched.
func (b Bindings) Apply(overrides map[string]string) error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parsed := make(map[Action]string, len(overrides))
	for _, k := range keys {
		a, err := ParseAction(k)
		if err != nil {
			return err
		}
		ctl := strings.TrimSpace(overrides[k])
		if ctl == "" {
			return fmt.Errorf("input: empty control for %s", a)
		}
		parsed[a] = ctl
	}
	for a, ctl := range parsed {
		b[a] = ctl
	}
	return nil
}

// Controls returns the distinct control names in use, sorted.
func (b Bindings) Controls() []string {
	seen := make(map[string]bool, len(b))
	var out []string
	for _, c := range b {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// Source reports device state for one frame.
type Source interface {
	// Pressed reports whether the control is held this frame.
	Pressed(control string) bool
	// JustPressed reports whether the control went down this frame.
	JustPressed(control string) bool
	// LookDelta is the pointer motion since the previous frame, in pixels,
	// +x right and +y down.
	LookDelta() mgl64.Vec2
}

// Controls is the input snapshot for one frame. Movement and Run are level
// triggered; Jump, ShootA, ShootB and RemovePortals fire once per press.
type Controls struct {
	Up, Down, Left, Right bool
	Run                   bool
	Jump                  bool
	ShootA, ShootB        bool
	RemovePortals         bool
	Look                  mgl64.Vec2
}

// Read samples src through b.
func Read(src Source, b Bindings) Controls {
	held := func(a Action) bool {
		c, ok := b[a]
		return ok && src.Pressed(c)
	}
	edge := func(a Action) bool {
		c, ok := b[a]
		return ok && src.JustPressed(c)
	}
	return Controls{
		Up:            held(Up),
		Down:          held(Down),
		Left:          held(Left),
		Right:         held(Right),
		Run:           held(Run),
		Jump:          edge(Jump),
		ShootA:        edge(ShootA),
		ShootB:        edge(ShootB),
		RemovePortals: edge(RemovePortals),
		Look:          src.LookDelta(),
	}
}

// Direction is the normalized move direction: x toward the right, y toward
// the back. Opposite keys cancel; nothing held is the zero vector.
func (c Controls) Direction() mgl64.Vec2 {
	var d mgl64.Vec2
	if c.Right {
		d[0]++
	}
	if c.Left {
		d[0]--
	}
	if c.Down {
		d[1]++
	}
	if c.Up {
		d[1]--
	}
	if l := d.Len(); l > 0 {
		d = d.Mul(1 / l)
	}
	return d
}
