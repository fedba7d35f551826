// Package spring provides damped springs stepped by an explicit frame loop.
package spring

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// Spring is at rest when both distance to target and speed fall below these.
const (
	restDistance = 1e-3
	restSpeed    = 1e-3
)

// Spring moves Value towards Target as damped harmonic oscillator. Value and
// Target may be changed directly, Start makes loop step the spring until it
// comes to rest.
type Spring struct {
	DampingRatio float64
	// Period of undamped oscillation in seconds.
	Period float64

	Value    float64
	Target   float64
	Velocity float64

	loop      *Loop
	running   bool
	listeners []*listener
}

type listener struct {
	fn func()
}

// Start makes spring move towards its current target on the next frames.
func (s *Spring) Start() {
	if s.running {
		return
	}
	s.running = true
	s.loop.add(s)
}

// Stop freezes spring at its current value.
func (s *Spring) Stop() {
	s.running = false
	s.Velocity = 0
}

// Running reports whether spring is moving.
func (s *Spring) Running() bool {
	return s.running
}

// OnUpdate registers function called after every frame the spring moved.
// Returned function removes registration.
func (s *Spring) OnUpdate(fn func()) func() {
	l := &listener{fn: fn}
	s.listeners = append(s.listeners, l)
	return func() {
		for i, v := range s.listeners {
			if v == l {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Spring) notify() {
	for _, l := range append([]*listener(nil), s.listeners...) {
		l.fn()
	}
}

// step advances spring by dt seconds.
func (s *Spring) step(dt float64) {
	if s.Period <= 0 {
		s.Value, s.Velocity = s.Target, 0
		s.running = false
		return
	}
	h := harmonica.NewSpring(dt, 2*math.Pi/s.Period, s.DampingRatio)
	s.Value, s.Velocity = h.Update(s.Value, s.Velocity, s.Target)
	if math.Abs(s.Target-s.Value) < restDistance && math.Abs(s.Velocity) < restSpeed {
		s.Value, s.Velocity = s.Target, 0
		s.running = false
	}
}
