package input

import "github.com/go-gl/mathgl/mgl64"

// Step is one segment of a Script.
type Step struct {
	Frames int        `json:"frames"`
	Hold   []string   `json:"hold,omitempty"` // held for every frame of the step
	Tap    []string   `json:"tap,omitempty"`  // held on the first frame only
	Look   [2]float64 `json:"look,omitempty"` // pointer motion per frame
}

// Script is a Source that replays a fixed list of steps, one frame per call
// to Next. It drives the headless renderer and tests.
type Script struct {
	steps []Step
	step  int
	frame int // frame within steps[step]
	look  mgl64.Vec2
	prev  map[string]bool
	cur   map[string]bool
}

// NewScript returns a script positioned before its first frame. Steps with
// no frames are skipped.
func NewScript(steps []Step) *Script {
	s := &Script{prev: map[string]bool{}, cur: map[string]bool{}, step: -1}
	for _, st := range steps {
		if st.Frames > 0 {
			s.steps = append(s.steps, st)
		}
	}
	return s
}

// Frames is the total number of frames in the script.
func (s *Script) Frames() int {
	n := 0
	for _, st := range s.steps {
		n += st.Frames
	}
	return n
}

// Next advances one frame. It returns false once the script is exhausted,
// after which every control reads as released.
func (s *Script) Next() bool {
	s.prev, s.cur = s.cur, make(map[string]bool, len(s.cur))
	s.look = mgl64.Vec2{}

	if s.step >= 0 && s.step < len(s.steps) {
		s.frame++
		if s.frame >= s.steps[s.step].Frames {
			s.step, s.frame = s.step+1, 0
		}
	} else if s.step < 0 {
		s.step, s.frame = 0, 0
	}
	if s.step >= len(s.steps) {
		return false
	}

	st := s.steps[s.step]
	for _, c := range st.Hold {
		s.cur[c] = true
	}
	if s.frame == 0 {
		for _, c := range st.Tap {
			s.cur[c] = true
		}
	}
	s.look = mgl64.Vec2{st.Look[0], st.Look[1]}
	return true
}

func (s *Script) Pressed(control string) bool { return s.cur[control] }

func (s *Script) JustPressed(control string) bool { return s.cur[control] && !s.prev[control] }

func (s *Script) LookDelta() mgl64.Vec2 { return s.look }
