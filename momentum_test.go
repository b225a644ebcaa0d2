package showcase

import (
	"math"
	"testing"
	"time"
)

func TestMomentumTravel(t *testing.T) {
	m := DefaultMomentum
	tests := []struct {
		name     string
		speed    float64
		wantOK   bool
		wantDist float64
		wantDur  time.Duration
	}{
		{"below threshold", 0.05, false, 0, 0},
		{"zero", 0, false, 0, 0},
		{"threshold", 0.1, true, 0.1 * 0.1 / (2 * 0.0025) * 0.5, 200 * time.Millisecond},
		{"fast", 1, true, 1 / (2 * 0.0025) * 0.5, 400 * time.Millisecond},
		{"negative", -1, true, 100, 400 * time.Millisecond},
		{"very fast", 10, true, 100 / (2 * 0.0025) * 0.5, 1200 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dist, dur, ok := m.Travel(tt.speed)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if math.Abs(dist-tt.wantDist) > 1e-6 {
				t.Errorf("distance = %f, want %f", dist, tt.wantDist)
			}
			if d := dur - tt.wantDur; d < -time.Microsecond || d > time.Microsecond {
				t.Errorf("duration = %v, want %v", dur, tt.wantDur)
			}
		})
	}
}

func TestMomentumZeroValueUsesDefaults(t *testing.T) {
	d1, t1, ok1 := Momentum{}.Travel(0.5)
	d2, t2, ok2 := DefaultMomentum.Travel(0.5)
	if d1 != d2 || t1 != t2 || ok1 != ok2 {
		t.Errorf("zero Momentum = (%v %v %v), default = (%v %v %v)", d1, t1, ok1, d2, t2, ok2)
	}
}

func TestVelocityTrackerSteadyDrag(t *testing.T) {
	vt := NewVelocityTracker(0)
	// 10px every 10ms = 1 px/ms.
	for i := 0; i <= 8; i++ {
		vt.Add(time.Duration(i)*10*time.Millisecond, Vec2{X: 10})
	}
	v := vt.Velocity(80 * time.Millisecond)
	if math.Abs(v.X-1) > 1e-9 || v.Y != 0 {
		t.Errorf("velocity = %+v, want {1 0}", v)
	}
}

func TestVelocityTrackerIgnoresOldSamples(t *testing.T) {
	vt := NewVelocityTracker(100 * time.Millisecond)
	vt.Add(0, Vec2{X: 500})
	vt.Add(10*time.Millisecond, Vec2{X: 500})
	// A pause longer than the cutoff, then a slow movement.
	vt.Add(300*time.Millisecond, Vec2{X: 1})
	vt.Add(310*time.Millisecond, Vec2{X: 1})
	v := vt.Velocity(310 * time.Millisecond)
	if math.Abs(v.X-0.1) > 1e-9 {
		t.Errorf("velocity = %f, want 0.1", v.X)
	}
}

func TestVelocityTrackerStaleRelease(t *testing.T) {
	vt := NewVelocityTracker(0)
	vt.Add(0, Vec2{X: 10})
	vt.Add(10*time.Millisecond, Vec2{X: 10})
	if v := vt.Velocity(time.Second); v != (Vec2{}) {
		t.Errorf("velocity after a long hold = %+v, want zero", v)
	}
}

func TestVelocityTrackerSingleSample(t *testing.T) {
	vt := NewVelocityTracker(0)
	vt.Add(0, Vec2{X: 10})
	if v := vt.Velocity(0); v != (Vec2{}) {
		t.Errorf("velocity = %+v, want zero", v)
	}
}

func TestVelocityTrackerBounded(t *testing.T) {
	vt := NewVelocityTracker(time.Hour)
	for i := range 100 {
		vt.Add(time.Duration(i)*time.Millisecond, Vec2{X: 1})
	}
	if vt.Len() != maxVelocitySamples {
		t.Errorf("Len = %d, want %d", vt.Len(), maxVelocitySamples)
	}
	vt.Reset()
	if vt.Len() != 0 {
		t.Errorf("Len after Reset = %d", vt.Len())
	}
}
