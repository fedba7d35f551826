package spring

import (
	"slices"
)

// Loop steps running springs. Host calls Frame once per animation frame.
// Loop is not safe for concurrent use.
type Loop struct {
	active []*Spring
	frames int
}

// NewLoop returns idle loop.
func NewLoop() *Loop {
	return &Loop{}
}

// New returns spring at rest at zero driven by the loop.
func (l *Loop) New(dampingRatio, period float64) *Spring {
	return &Spring{DampingRatio: dampingRatio, Period: period, loop: l}
}

func (l *Loop) add(s *Spring) {
	if !slices.Contains(l.active, s) {
		l.active = append(l.active, s)
	}
}

// Frame advances every running spring by dt seconds and then notifies their
// listeners. Springs started by listeners move on the next frame.
func (l *Loop) Frame(dt float64) {
	if len(l.active) == 0 || dt <= 0 {
		return
	}
	l.frames++

	var moved []*Spring
	pending := l.active
	l.active = nil
	for _, s := range pending {
		if !s.running {
			continue
		}
		s.step(dt)
		moved = append(moved, s)
		if s.running {
			l.add(s)
		}
	}
	for _, s := range moved {
		s.notify()
	}
}

// Idle reports whether no spring is moving.
func (l *Loop) Idle() bool {
	for _, s := range l.active {
		if s.running {
			return false
		}
	}
	return true
}

// Frames returns number of frames in which anything moved.
func (l *Loop) Frames() int {
	return l.frames
}

// Settle runs frames of dt seconds until loop becomes idle or maxFrames is
// reached. It returns number of frames run.
func (l *Loop) Settle(dt float64, maxFrames int) int {
	n := 0
	for ; n < maxFrames && !l.Idle(); n++ {
		l.Frame(dt)
	}
	return n
}
