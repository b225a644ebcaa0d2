package showcase

import "time"

// syntheticPointerEvent represents a single injected pointer event in
// container coordinates. Injected events replace real pointer input for the
// frame that consumes them.
type syntheticPointerEvent struct {
	x, y    float64
	pressed bool
	wheel   bool
	dx, dy  float64
	mods    KeyModifiers
}

// InjectPress queues a pointer press at (x, y). The event is consumed on
// the next Update.
func (v *Viewer) InjectPress(x, y float64) {
	v.injectQueue = append(v.injectQueue, syntheticPointerEvent{x: x, y: y, pressed: true})
}

// InjectMove queues a pointer move with the button held down. Use this
// between InjectPress and InjectRelease to simulate a drag.
func (v *Viewer) InjectMove(x, y float64) {
	v.injectQueue = append(v.injectQueue, syntheticPointerEvent{x: x, y: y, pressed: true})
}

// InjectRelease queues a pointer release at (x, y).
func (v *Viewer) InjectRelease(x, y float64) {
	v.injectQueue = append(v.injectQueue, syntheticPointerEvent{x: x, y: y})
}

// InjectClick is a convenience that queues a press followed by a release
// at the same coordinates. Consumes two frames.
func (v *Viewer) InjectClick(x, y float64) {
	v.InjectPress(x, y)
	v.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate frames, and
// release at (toX, toY). The total sequence consumes `frames` frames.
// Minimum frames is 2 (press + release).
func (v *Viewer) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	v.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		v.InjectMove(lerp(fromX, toX, t), lerp(fromY, toY, t))
	}
	v.InjectRelease(toX, toY)
}

// InjectWheel queues a wheel event at (x, y). Consumes one frame.
func (v *Viewer) InjectWheel(dx, dy, x, y float64, mods KeyModifiers) {
	v.injectQueue = append(v.injectQueue, syntheticPointerEvent{
		x: x, y: y, wheel: true, dx: dx, dy: dy, mods: mods,
	})
}

// InjectPending returns the number of queued synthetic events.
func (v *Viewer) InjectPending() int { return len(v.injectQueue) }

// processInjectedInput pops one event from the inject queue and feeds it
// to the dispatcher as pointer 0. Returns true if an event was consumed
// (real pointer input should be skipped).
func (v *Viewer) processInjectedInput(now time.Duration, mods KeyModifiers) bool {
	if len(v.injectQueue) == 0 {
		return false
	}
	evt := v.injectQueue[0]
	copy(v.injectQueue, v.injectQueue[1:])
	v.injectQueue = v.injectQueue[:len(v.injectQueue)-1]

	if evt.wheel {
		v.dispatcher.Wheel(evt.dx, evt.dy, evt.x, evt.y, evt.mods|mods)
		return true
	}
	v.dispatcher.ProcessPointer(0, evt.x, evt.y, evt.pressed, mods, now)
	return true
}
