package input

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestParseAction(t *testing.T) {
	for _, a := range Actions() {
		got, err := ParseAction(a.String())
		if err != nil || got != a {
			t.Errorf("ParseAction(%q) = %v, %v", a.String(), got, err)
		}
	}
	if _, err := ParseAction("fly"); err == nil {
		t.Error("ParseAction(fly) succeeded")
	}
	if got, _ := ParseAction(" Shoot_A "); got != ShootA {
		t.Errorf("ParseAction is not case-insensitive: %v", got)
	}
}

func TestBindingsApply(t *testing.T) {
	b := DefaultBindings()
	if err := b.Apply(map[string]string{"shoot_a": "E", "remove_portals": "Backspace"}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if b[ShootA] != "E" || b[RemovePortals] != "Backspace" || b[ShootB] != MouseRight {
		t.Errorf("bindings after Apply = %v", b)
	}

	tests := []struct {
		name string
		in   map[string]string
	}{
		{"unknown action", map[string]string{"fly": "F", "jump": "J"}},
		{"empty control", map[string]string{"jump": " "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := DefaultBindings()
			if err := b.Apply(tt.in); err == nil {
				t.Error("Apply succeeded")
			}
			if b[Jump] != "Space" {
				t.Errorf("failed Apply changed jump to %q", b[Jump])
			}
		})
	}
}

func TestDirection(t *testing.T) {
	tests := []struct {
		name string
		c    Controls
		want mgl64.Vec2
	}{
		{"idle", Controls{}, mgl64.Vec2{}},
		{"forward", Controls{Up: true}, mgl64.Vec2{0, -1}},
		{"cancel", Controls{Left: true, Right: true}, mgl64.Vec2{}},
		{"diagonal", Controls{Up: true, Right: true}, mgl64.Vec2{math.Sqrt2 / 2, -math.Sqrt2 / 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.c.Direction()
			if math.Abs(got[0]-tt.want[0]) > 1e-12 || math.Abs(got[1]-tt.want[1]) > 1e-12 {
				t.Errorf("Direction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadScript(t *testing.T) {
	s := NewScript([]Step{
		{Frames: 2, Hold: []string{"W"}, Tap: []string{MouseLeft}, Look: [2]float64{3, -1}},
		{Frames: 0, Hold: []string{"S"}},
		{Frames: 1, Hold: []string{"W", MouseLeft}},
	})
	if s.Frames() != 3 {
		t.Fatalf("Frames() = %d, want 3", s.Frames())
	}
	b := DefaultBindings()

	var got []Controls
	for s.Next() {
		got = append(got, Read(s, b))
	}
	if len(got) != 3 {
		t.Fatalf("script ran %d frames, want 3", len(got))
	}
	if !got[0].Up || !got[0].ShootA || got[0].Look != (mgl64.Vec2{3, -1}) {
		t.Errorf("frame 0 = %+v", got[0])
	}
	if !got[1].Up || got[1].ShootA {
		t.Errorf("frame 1 = %+v; tap must not repeat", got[1])
	}
	if got[2].Down || !got[2].ShootA {
		t.Errorf("frame 2 = %+v; empty step must be skipped and a new press must fire", got[2])
	}

	if s.Next() || s.Pressed("W") {
		t.Error("exhausted script still reports input")
	}
}

func TestBindingsControls(t *testing.T) {
	b := Bindings{Up: "W", Jump: "W", ShootA: MouseLeft}
	got := b.Controls()
	if len(got) != 2 || got[0] != MouseLeft || got[1] != "W" {
		t.Errorf("Controls() = %v", got)
	}
}
