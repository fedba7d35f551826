package spring

import (
	"testing"
)

const frame = 1.0 / 60

func TestSpring_Settles(t *testing.T) {
	tests := []struct {
		name          string
		damping       float64
		period        float64
		from, to      float64
		wantOvershoot bool
	}{
		{"underdamped open", 0.85, 0.4, 0, 1, true},
		{"critical position", 1, 0.4, 0, 7, false},
		{"resume", 0.85, 0.4, 1.2, 1, false},
		{"backwards", 1, 0.4, 4, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loop := NewLoop()
			s := loop.New(tt.damping, tt.period)
			s.Value, s.Target = tt.from, tt.to

			updates := 0
			maxValue := s.Value
			s.OnUpdate(func() {
				updates++
				maxValue = max(maxValue, s.Value)
			})
			s.Start()

			n := loop.Settle(frame, 600)
			if !loop.Idle() || s.Running() {
				t.Fatalf("spring did not settle in %d frames, value %v", n, s.Value)
			}
			if s.Value != tt.to || s.Velocity != 0 {
				t.Errorf("value = %v velocity = %v, want %v at rest", s.Value, s.Velocity, tt.to)
			}
			if updates != n || n == 0 {
				t.Errorf("updates = %d, frames = %d", updates, n)
			}
			if tt.wantOvershoot && maxValue <= tt.to {
				t.Errorf("underdamped spring must overshoot, max = %v", maxValue)
			}
			if tt.to > tt.from && !tt.wantOvershoot && maxValue > tt.to {
				t.Errorf("critically damped spring overshot to %v", maxValue)
			}
		})
	}
}

func TestSpring_Retarget(t *testing.T) {
	loop := NewLoop()
	s := loop.New(1, 0.4)
	s.Target = 10
	s.Start()
	for range 5 {
		loop.Frame(frame)
	}
	mid := s.Value
	if mid <= 0 || mid >= 10 {
		t.Fatalf("value after 5 frames = %v", mid)
	}
	s.Target = 0
	s.Start()
	loop.Settle(frame, 600)
	if s.Value != 0 {
		t.Errorf("value = %v, want 0", s.Value)
	}
	if loop.Frames() <= 5 {
		t.Errorf("frames = %d", loop.Frames())
	}
}

func TestSpring_Unsubscribe(t *testing.T) {
	loop := NewLoop()
	s := loop.New(1, 0.4)
	a, b := 0, 0
	cancel := s.OnUpdate(func() { a++ })
	s.OnUpdate(func() { b++ })
	s.Target = 1
	s.Start()
	loop.Frame(frame)
	cancel()
	loop.Frame(frame)
	if a != 1 || b != 2 {
		t.Errorf("a = %d b = %d, want 1 and 2", a, b)
	}
}

func TestSpring_ZeroPeriodSnaps(t *testing.T) {
	loop := NewLoop()
	s := loop.New(1, 0)
	s.Target = 3
	s.Start()
	loop.Frame(frame)
	if s.Value != 3 || s.Running() || !loop.Idle() {
		t.Errorf("value = %v running = %v", s.Value, s.Running())
	}
}

func TestSpring_Stop(t *testing.T) {
	loop := NewLoop()
	s := loop.New(1, 0.4)
	notified := 0
	s.OnUpdate(func() { notified++ })
	s.Target = 1
	s.Start()
	loop.Frame(frame)
	s.Stop()
	if !loop.Idle() {
		t.Error("loop must be idle after stop")
	}
	v := s.Value
	loop.Frame(frame)
	if s.Value != v || notified != 1 {
		t.Errorf("stopped spring moved: %v -> %v, notified %d", v, s.Value, notified)
	}
	// idle loop ignores frames
	loop.Frame(0)
	loop.Frame(-1)
}
