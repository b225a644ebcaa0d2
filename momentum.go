package showcase

import (
	"math"
	"time"
)

const (
	maxVelocitySamples  = 20
	defaultSampleCutoff = 100 * time.Millisecond
)

// Momentum converts a release velocity into a decelerating travel. Velocity
// is in pixels per millisecond and deceleration in pixels per millisecond
// squared. Spin momentum and pan inertia share this one formula.
type Momentum struct {
	// Deceleration is the constant braking rate.
	Deceleration float64
	// Tuning scales the physical stopping distance down to taste.
	Tuning float64
	// MinVelocity is the release speed below which no momentum runs.
	MinVelocity float64
	// MinDuration and MaxDuration bound the animation length.
	MinDuration time.Duration
	MaxDuration time.Duration
}

// DefaultMomentum is used for any zero field of a Momentum.
var DefaultMomentum = Momentum{
	Deceleration: 0.0025,
	Tuning:       0.5,
	MinVelocity:  0.1,
	MinDuration:  200 * time.Millisecond,
	MaxDuration:  1200 * time.Millisecond,
}

func (m Momentum) withDefaults() Momentum {
	if m.Deceleration <= 0 {
		m.Deceleration = DefaultMomentum.Deceleration
	}
	if m.Tuning <= 0 {
		m.Tuning = DefaultMomentum.Tuning
	}
	if m.MinVelocity <= 0 {
		m.MinVelocity = DefaultMomentum.MinVelocity
	}
	if m.MinDuration <= 0 {
		m.MinDuration = DefaultMomentum.MinDuration
	}
	if m.MaxDuration < m.MinDuration {
		m.MaxDuration = max(DefaultMomentum.MaxDuration, m.MinDuration)
	}
	return m
}

// Travel returns the distance and duration of the momentum following a
// release at speed. ok is false when speed is below MinVelocity, in which
// case nothing should be animated.
//
//	distance = v² / (2·deceleration) · tuning
//	duration = clamp(|v| / deceleration, MinDuration, MaxDuration)
func (m Momentum) Travel(speed float64) (distance float64, duration time.Duration, ok bool) {
	m = m.withDefaults()
	speed = math.Abs(speed)
	if speed < m.MinVelocity || math.IsNaN(speed) {
		return 0, 0, false
	}
	distance = speed * speed / (2 * m.Deceleration) * m.Tuning
	ms := speed / m.Deceleration
	duration = time.Duration(ms * float64(time.Millisecond))
	duration = min(max(duration, m.MinDuration), m.MaxDuration)
	return distance, duration, true
}

type velocitySample struct {
	at    time.Duration
	delta Vec2
}

// VelocityTracker keeps the most recent gesture deltas in a bounded ring
// buffer and estimates the release velocity from those younger than the
// cutoff.
type VelocityTracker struct {
	samples [maxVelocitySamples]velocitySample
	head    int // next write position
	count   int
	cutoff  time.Duration
}

// NewVelocityTracker creates a tracker that ignores samples older than
// cutoff. A non-positive cutoff selects the 100ms default.
func NewVelocityTracker(cutoff time.Duration) *VelocityTracker {
	t := &VelocityTracker{}
	t.SetCutoff(cutoff)
	return t
}

// SetCutoff changes the recency cutoff.
func (t *VelocityTracker) SetCutoff(cutoff time.Duration) {
	if cutoff <= 0 {
		cutoff = defaultSampleCutoff
	}
	t.cutoff = cutoff
}

// Reset drops every sample.
func (t *VelocityTracker) Reset() {
	t.head = 0
	t.count = 0
}

// Len returns the number of buffered samples.
func (t *VelocityTracker) Len() int {
	return t.count
}

// Add records a movement delta observed at time at. Samples older than the
// cutoff relative to at are pruned first; the oldest sample is overwritten
// once the buffer is full.
func (t *VelocityTracker) Add(at time.Duration, delta Vec2) {
	t.prune(at)
	t.samples[t.head] = velocitySample{at: at, delta: delta}
	t.head = (t.head + 1) % maxVelocitySamples
	if t.count < maxVelocitySamples {
		t.count++
	}
}

func (t *VelocityTracker) prune(now time.Duration) {
	for t.count > 0 {
		oldest := (t.head - t.count + maxVelocitySamples) % maxVelocitySamples
		if now-t.samples[oldest].at <= t.cutoff {
			return
		}
		t.count--
	}
}

// Velocity returns the mean velocity in pixels per millisecond over the
// samples younger than the cutoff at now. With fewer than two such samples
// the velocity is zero.
func (t *VelocityTracker) Velocity(now time.Duration) Vec2 {
	cutoff := t.cutoff
	if cutoff <= 0 {
		cutoff = defaultSampleCutoff
	}
	var (
		first, last time.Duration
		sum         Vec2
		n           int
	)
	for i := t.count; i > 0; i-- {
		s := t.samples[(t.head-i+maxVelocitySamples)%maxVelocitySamples]
		if now-s.at > cutoff {
			continue
		}
		if n == 0 {
			// The first sample only anchors the time span; its delta was
			// travelled before the window opened.
			first = s.at
		} else {
			sum = sum.Add(s.delta)
		}
		last = s.at
		n++
	}
	if n < 2 {
		return Vec2{}
	}
	span := float64(last-first) / float64(time.Millisecond)
	if span <= 0 {
		return Vec2{}
	}
	return sum.Scale(1 / span)
}
