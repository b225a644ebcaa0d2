package showcase

import (
	"cmp"
	"slices"
	"time"
)

// Scheduler supplies frame callbacks and timers to the engines. Every
// callback runs synchronously on the goroutine that drives the scheduler;
// engines never mutate state from anywhere else.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Duration
	// RequestFrame runs fn once on the next frame.
	RequestFrame(fn func(now time.Duration)) *Handle
	// After runs fn once when at least d has elapsed.
	After(d time.Duration, fn func(now time.Duration)) *Handle
}

// Handle identifies a scheduled frame callback or timer. The zero value and
// nil are both valid, inactive handles.
type Handle struct {
	cancelled bool
	fired     bool
}

// Cancel prevents the callback from running. Safe to call more than once
// and on a nil handle.
func (h *Handle) Cancel() {
	if h != nil {
		h.cancelled = true
	}
}

// Active reports whether the callback is still waiting to run.
func (h *Handle) Active() bool {
	return h != nil && !h.cancelled && !h.fired
}

type scheduled struct {
	h  *Handle
	at time.Duration
	fn func(time.Duration)
}

// FrameLoop is a manually driven Scheduler. A host calls Tick once per
// display frame with a monotonic timestamp; tests call Advance to step a
// fake clock deterministically.
type FrameLoop struct {
	now    time.Duration
	frames []scheduled
	timers []scheduled
	closed bool
}

// NewFrameLoop creates a FrameLoop starting at time zero.
func NewFrameLoop() *FrameLoop {
	return &FrameLoop{}
}

// Now returns the time of the last Tick.
func (l *FrameLoop) Now() time.Duration {
	return l.now
}

// RequestFrame queues fn for the next Tick. Callbacks requested while a
// Tick is running are deferred to the following Tick.
func (l *FrameLoop) RequestFrame(fn func(now time.Duration)) *Handle {
	h := &Handle{}
	if l.closed {
		h.cancelled = true
		return h
	}
	l.frames = append(l.frames, scheduled{h: h, fn: fn})
	return h
}

// After queues fn to run on the first Tick at or past Now()+d.
func (l *FrameLoop) After(d time.Duration, fn func(now time.Duration)) *Handle {
	h := &Handle{}
	if l.closed {
		h.cancelled = true
		return h
	}
	l.timers = append(l.timers, scheduled{h: h, at: l.now + d, fn: fn})
	return h
}

// Tick advances the clock to now, fires due timers in deadline order, then
// runs the frame callbacks that were queued before this Tick. Time never
// moves backwards; an older timestamp is treated as the current time.
func (l *FrameLoop) Tick(now time.Duration) {
	if l.closed {
		return
	}
	if now > l.now {
		l.now = now
	}

	var due []scheduled
	kept := l.timers[:0]
	for _, t := range l.timers {
		switch {
		case t.h.cancelled:
		case t.at <= l.now:
			due = append(due, t)
		default:
			kept = append(kept, t)
		}
	}
	clear(l.timers[len(kept):])
	l.timers = kept
	slices.SortStableFunc(due, func(a, b scheduled) int {
		return cmp.Compare(a.at, b.at)
	})
	for _, t := range due {
		if t.h.cancelled {
			continue
		}
		t.h.fired = true
		t.fn(l.now)
	}

	frames := l.frames
	l.frames = nil
	for _, f := range frames {
		if f.h.cancelled {
			continue
		}
		f.h.fired = true
		f.fn(l.now)
	}
}

// Advance is shorthand for Tick(Now()+dt).
func (l *FrameLoop) Advance(dt time.Duration) {
	l.Tick(l.now + dt)
}

// Run advances the loop in steps of dt until no callbacks remain or limit
// steps have elapsed. It returns the number of steps taken.
func (l *FrameLoop) Run(dt time.Duration, limit int) int {
	steps := 0
	for steps < limit && l.Pending() > 0 {
		l.Advance(dt)
		steps++
	}
	return steps
}

// Pending returns the number of active frame callbacks and timers.
func (l *FrameLoop) Pending() int {
	n := 0
	for _, f := range l.frames {
		if f.h.Active() {
			n++
		}
	}
	for _, t := range l.timers {
		if t.h.Active() {
			n++
		}
	}
	return n
}

// Close cancels every queued callback. Later requests return handles that
// are already cancelled, so nothing runs after teardown.
func (l *FrameLoop) Close() {
	for _, f := range l.frames {
		f.h.Cancel()
	}
	for _, t := range l.timers {
		t.h.Cancel()
	}
	l.frames = nil
	l.timers = nil
	l.closed = true
}
