package showcase

import (
	"testing"
	"time"
)

func TestFrameLoopRequestFrameRunsOnce(t *testing.T) {
	l := NewFrameLoop()
	calls := 0
	h := l.RequestFrame(func(time.Duration) { calls++ })
	if !h.Active() {
		t.Fatal("handle should be active before the tick")
	}
	l.Advance(16 * time.Millisecond)
	l.Advance(16 * time.Millisecond)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if h.Active() {
		t.Error("handle should be inactive after firing")
	}
}

func TestFrameLoopFrameRequestedDuringTickDeferred(t *testing.T) {
	l := NewFrameLoop()
	var order []int
	l.RequestFrame(func(time.Duration) {
		order = append(order, 1)
		l.RequestFrame(func(time.Duration) { order = append(order, 2) })
	})
	l.Advance(time.Millisecond)
	if len(order) != 1 {
		t.Fatalf("nested frame ran in the same tick: %v", order)
	}
	l.Advance(time.Millisecond)
	if len(order) != 2 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}
}

func TestFrameLoopTimersFireInDeadlineOrder(t *testing.T) {
	l := NewFrameLoop()
	var order []string
	l.After(30*time.Millisecond, func(time.Duration) { order = append(order, "late") })
	l.After(10*time.Millisecond, func(time.Duration) { order = append(order, "early") })

	l.Advance(5 * time.Millisecond)
	if len(order) != 0 {
		t.Fatalf("timers fired early: %v", order)
	}
	l.Advance(50 * time.Millisecond)
	if len(order) != 2 || order[0] != "early" || order[1] != "late" {
		t.Errorf("order = %v, want [early late]", order)
	}
}

func TestFrameLoopCancel(t *testing.T) {
	l := NewFrameLoop()
	fired := false
	h := l.After(time.Millisecond, func(time.Duration) { fired = true })
	h.Cancel()
	h.Cancel() // idempotent
	l.Advance(time.Second)
	if fired {
		t.Error("cancelled timer fired")
	}
	if l.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", l.Pending())
	}
}

func TestFrameLoopTimeNeverGoesBack(t *testing.T) {
	l := NewFrameLoop()
	l.Tick(100 * time.Millisecond)
	l.Tick(50 * time.Millisecond)
	if l.Now() != 100*time.Millisecond {
		t.Errorf("Now = %v, want 100ms", l.Now())
	}
}

func TestFrameLoopRun(t *testing.T) {
	l := NewFrameLoop()
	l.After(100*time.Millisecond, func(time.Duration) {})
	steps := l.Run(10*time.Millisecond, 1000)
	if steps != 10 {
		t.Errorf("steps = %d, want 10", steps)
	}
	if got := l.Run(10*time.Millisecond, 1000); got != 0 {
		t.Errorf("idle Run took %d steps", got)
	}
}

func TestFrameLoopClose(t *testing.T) {
	l := NewFrameLoop()
	fired := false
	l.RequestFrame(func(time.Duration) { fired = true })
	l.Close()
	h := l.After(0, func(time.Duration) { fired = true })
	if h.Active() {
		t.Error("handle requested after Close should be inactive")
	}
	l.Advance(time.Second)
	if fired {
		t.Error("callback ran after Close")
	}
}

func TestNilHandle(t *testing.T) {
	var h *Handle
	h.Cancel()
	if h.Active() {
		t.Error("nil handle should not be active")
	}
}
