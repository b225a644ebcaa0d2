package showcase

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// animator drives a single eased 0→1 progress value on a Scheduler. Each
// engine embeds exactly one, so an engine never has more than one pending
// frame: Start cancels whatever was running before.
//
// There is no global animation manager; the Scheduler ticks each animator
// through its own frame callback.
type animator struct {
	sched  Scheduler
	handle *Handle
	tween  *gween.Tween
	last   time.Duration
	step   func(progress float64)
	done   func()
}

// Start begins a new animation of the given duration using the easing
// function. step receives the eased progress every frame, ending with
// exactly 1; done runs after the final step. A non-positive duration
// applies the final step synchronously.
func (a *animator) Start(duration time.Duration, fn ease.TweenFunc, step func(progress float64), done func()) {
	a.Stop()
	if duration <= 0 {
		step(1)
		if done != nil {
			done()
		}
		return
	}
	a.tween = gween.New(0, 1, float32(duration.Seconds()), fn)
	a.last = a.sched.Now()
	a.step = step
	a.done = done
	a.handle = a.sched.RequestFrame(a.frame)
}

// Defer runs done on the next frame. It occupies the animator like any
// animation, so Start or Stop replaces it.
func (a *animator) Defer(done func()) {
	a.Stop()
	a.step = func(float64) {}
	a.done = done
	a.handle = a.sched.RequestFrame(func(time.Duration) {
		fn := a.done
		a.handle = nil
		a.step = nil
		a.done = nil
		fn()
	})
}

// Stop cancels the pending frame without running step or done.
func (a *animator) Stop() {
	a.handle.Cancel()
	a.handle = nil
	a.tween = nil
	a.step = nil
	a.done = nil
}

// Finish jumps to the end: the final step and done run synchronously.
func (a *animator) Finish() {
	if !a.Running() {
		return
	}
	step, done := a.step, a.done
	a.Stop()
	step(1)
	if done != nil {
		done()
	}
}

// Running reports whether a frame is pending.
func (a *animator) Running() bool {
	return a.handle.Active()
}

func (a *animator) frame(now time.Duration) {
	dt := now - a.last
	a.last = now
	val, finished := a.tween.Update(float32(dt.Seconds()))
	progress := float64(val)

	step, done := a.step, a.done
	if finished {
		progress = 1
		a.handle = nil
		a.tween = nil
		a.step = nil
		a.done = nil
	} else {
		// Queue the next frame before stepping so a step that calls Stop
		// cancels it.
		a.handle = a.sched.RequestFrame(a.frame)
	}

	step(progress)
	if finished && done != nil {
		done()
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
