package showcase

import (
	"math"
	"time"
)

// --- Constants ---

const (
	maxPointers         = 10  // pointer 0 = mouse, 1-9 = touch
	defaultDragDeadZone = 4.0 // pixels

	defaultDoubleTapWindow = 300 * time.Millisecond
	defaultDoubleTapScale  = 2.0
	doubleTapSlop          = 24.0 // pixels between the two taps

	wheelZoomRate   = 0.002 // scale factor per wheel pixel, exponential
	wheelSwipeDelta = 60.0  // horizontal wheel pixels per carousel step
)

// Owner identifies which engine receives the deltas of the active gesture.
type Owner uint8

const (
	OwnerNone Owner = iota
	OwnerCarousel
	OwnerTransform
	OwnerSpin
)

func (o Owner) String() string {
	switch o {
	case OwnerNone:
		return "none"
	case OwnerCarousel:
		return "carousel"
	case OwnerTransform:
		return "transform"
	case OwnerSpin:
		return "spin"
	default:
		return "unknown"
	}
}

// Key is a navigation key the dispatcher understands.
type Key uint8

const (
	KeyLeft Key = iota + 1
	KeyRight
	KeyZoomIn
	KeyZoomOut
	KeyEscape
)

func (k Key) String() string {
	switch k {
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyZoomIn:
		return "zoom-in"
	case KeyZoomOut:
		return "zoom-out"
	case KeyEscape:
		return "escape"
	default:
		return "unknown"
	}
}

// Tap is a press and release that stayed inside the drag dead zone.
type Tap struct {
	X, Y      float64
	PointerID int
	Modifiers KeyModifiers
	At        time.Duration
	// Double is set on the second tap of a double tap.
	Double bool
}

// DispatcherOptions configures an InteractionDispatcher. Zero fields take
// defaults.
type DispatcherOptions struct {
	// DragDeadZone is the movement in pixels before a press becomes a drag.
	DragDeadZone float64
	// SampleCutoff excludes velocity samples older than this.
	SampleCutoff time.Duration
	// DoubleTapScale is the zoom a double tap toggles to.
	DoubleTapScale   float64
	DoubleTapWindow  time.Duration
	DisableDoubleTap bool
}

// --- Per-pointer state ---

type pointerState struct {
	down     bool
	start    Vec2
	last     Vec2
	dragging bool
	pinched  bool // took part in a pinch; its release is not a tap
}

// --- Pinch state ---

type pinchState struct {
	active   bool
	pointer0 int
	pointer1 int
	prevDist float64
}

// InteractionDispatcher turns raw pointer, touch, wheel, and key input into
// commands for the carousel and the current item's engines. Exactly one
// engine owns a drag gesture; ownership is claimed when the pointer leaves
// the dead zone and released on pointer up. The dispatcher only reads
// engine state to pick the owner; every mutation goes through the owner's
// command methods.
type InteractionDispatcher struct {
	opts      DispatcherOptions
	carousel  *CarouselController
	transform *TransformEngine
	spin      *SpinEngine

	pointers [maxPointers]pointerState
	pinch    pinchState

	owner        Owner
	ownerPointer int
	tracker      *VelocityTracker

	lastTap    Tap
	hasLastTap bool
	wheelAcc   float64

	taps   observerList[Tap]
	owners observerList[Owner]
}

// NewInteractionDispatcher creates a dispatcher for the given carousel.
// The per-item surfaces are attached with SetSurface.
func NewInteractionDispatcher(carousel *CarouselController, opts DispatcherOptions) *InteractionDispatcher {
	if opts.DragDeadZone <= 0 {
		opts.DragDeadZone = defaultDragDeadZone
	}
	if opts.DoubleTapScale <= 1 {
		opts.DoubleTapScale = defaultDoubleTapScale
	}
	if opts.DoubleTapWindow <= 0 {
		opts.DoubleTapWindow = defaultDoubleTapWindow
	}
	return &InteractionDispatcher{
		opts:     opts,
		carousel: carousel,
		tracker:  NewVelocityTracker(opts.SampleCutoff),
	}
}

// SetSurface attaches the engines of the current item; either may be nil.
// A gesture owned by a detached engine is dropped without momentum.
func (d *InteractionDispatcher) SetSurface(transform *TransformEngine, spin *SpinEngine) {
	if (d.owner == OwnerTransform && transform != d.transform) ||
		(d.owner == OwnerSpin && spin != d.spin) {
		d.setOwner(OwnerNone)
		d.tracker.Reset()
	}
	d.transform = transform
	d.spin = spin
	d.wheelAcc = 0
}

// SetDragDeadZone sets the minimum movement in pixels before a drag starts.
func (d *InteractionDispatcher) SetDragDeadZone(pixels float64) {
	d.opts.DragDeadZone = pixels
}

// Owner returns the engine owning the active gesture.
func (d *InteractionDispatcher) Owner() Owner { return d.owner }

// Pinching reports whether a two-finger pinch is active.
func (d *InteractionDispatcher) Pinching() bool { return d.pinch.active }

// OnTap registers fn for taps and clicks.
func (d *InteractionDispatcher) OnTap(fn func(Tap)) Subscription {
	return d.taps.add(fn)
}

// OnOwnerChange registers fn for gesture ownership changes.
func (d *InteractionDispatcher) OnOwnerChange(fn func(Owner)) Subscription {
	return d.owners.add(fn)
}

// PointerDown is shorthand for a pressed ProcessPointer sample.
func (d *InteractionDispatcher) PointerDown(pointerID int, x, y float64, now time.Duration) {
	d.ProcessPointer(pointerID, x, y, true, 0, now)
}

// PointerMove is shorthand for a held ProcessPointer sample.
func (d *InteractionDispatcher) PointerMove(pointerID int, x, y float64, now time.Duration) {
	d.ProcessPointer(pointerID, x, y, true, 0, now)
}

// PointerUp is shorthand for a released ProcessPointer sample.
func (d *InteractionDispatcher) PointerUp(pointerID int, x, y float64, now time.Duration) {
	d.ProcessPointer(pointerID, x, y, false, 0, now)
}

// ProcessPointer runs the pointer state machine for one sample of a single
// pointer in container coordinates. Pointer 0 is the mouse and 1-9 are
// touches; out-of-range ids are ignored.
func (d *InteractionDispatcher) ProcessPointer(pointerID int, x, y float64, pressed bool, mods KeyModifiers, now time.Duration) {
	if pointerID < 0 || pointerID >= maxPointers {
		return
	}
	ps := &d.pointers[pointerID]
	pos := Vec2{x, y}

	switch {
	case pressed && !ps.down:
		*ps = pointerState{down: true, start: pos, last: pos}
		// Any touch stops auto-spin, including a press that ends as a tap.
		d.interruptSpin()
		d.detectPinch()

	case !pressed && ps.down:
		if ps.dragging && d.ownerPointer == pointerID {
			d.endGesture(now, true)
		} else if !ps.dragging && !ps.pinched && !d.pinch.active {
			d.tap(Tap{X: x, Y: y, PointerID: pointerID, Modifiers: mods, At: now})
		}
		ps.down = false
		ps.dragging = false
		d.detectPinch()
		if !d.pinch.active {
			ps.pinched = false
		}

	case pressed && ps.down:
		if pos == ps.last {
			return
		}
		if d.pinch.active {
			ps.last = pos
			d.updatePinch()
			return
		}
		if !ps.dragging && !ps.pinched && pos.Sub(ps.start).Len() > d.opts.DragDeadZone {
			if d.beginGesture(pointerID, now) {
				ps.dragging = true
				// The full distance since press is forwarded so the surface
				// does not lag behind the pointer by the dead zone.
				d.forward(pos.Sub(ps.start), now)
			}
		} else if ps.dragging {
			d.forward(pos.Sub(ps.last), now)
		}
		ps.last = pos
	}
}

// Wheel handles a wheel or trackpad scroll at (x, y). Ctrl or Meta zooms
// around the cursor. Otherwise a zoomed surface pans, a spin item turns
// frames, and horizontal scroll steps the carousel.
func (d *InteractionDispatcher) Wheel(dx, dy, x, y float64, mods KeyModifiers) Owner {
	if d.owner != OwnerNone || d.pinch.active {
		return OwnerNone
	}
	d.interruptSpin()
	zoomed := d.transform != nil && d.transform.Zoomed()
	switch {
	case mods&(ModCtrl|ModMeta) != 0 && d.transform != nil:
		scale := d.transform.State().Scale * math.Exp(-dy*wheelZoomRate)
		d.transform.Interrupt()
		d.transform.SetZoom(scale, Vec2{x, y}, 0)
		return OwnerTransform
	case zoomed:
		d.transform.Interrupt()
		d.transform.Pan(-dx, -dy)
		return OwnerTransform
	case d.spin != nil:
		delta := dy
		if math.Abs(dx) > math.Abs(dy) {
			delta = dx
		}
		d.spin.AccumulateScroll(delta)
		return OwnerSpin
	case d.carousel != nil && math.Abs(dx) > math.Abs(dy):
		d.wheelAcc += dx
		if math.Abs(d.wheelAcc) < wheelSwipeDelta {
			return OwnerCarousel
		}
		if d.wheelAcc > 0 {
			d.carousel.RequestNext()
		} else {
			d.carousel.RequestPrev()
		}
		d.wheelAcc = 0
		return OwnerCarousel
	}
	return OwnerNone
}

// PressKey handles a navigation key. It returns false when the key had no
// effect.
func (d *InteractionDispatcher) PressKey(k Key) bool {
	switch k {
	case KeyLeft:
		return d.carousel != nil && d.carousel.RequestPrev()
	case KeyRight:
		return d.carousel != nil && d.carousel.RequestNext()
	case KeyZoomIn:
		if d.transform == nil {
			return false
		}
		d.transform.ZoomIn()
		return true
	case KeyZoomOut:
		if d.transform == nil || !d.transform.Zoomed() {
			return false
		}
		d.transform.ZoomOut()
		return true
	case KeyEscape:
		if d.transform == nil || !d.transform.Zoomed() {
			return false
		}
		d.transform.Reset(d.transform.ZoomDuration())
		return true
	}
	return false
}

// Cancel ends the active gesture without momentum.
func (d *InteractionDispatcher) Cancel() {
	if d.owner == OwnerNone {
		return
	}
	if ps := &d.pointers[d.ownerPointer]; ps.dragging {
		ps.dragging = false
	}
	d.endGesture(0, false)
}

// beginGesture picks the owner by mode: a zoomed surface pans, a spin item
// turns, anything else drags the carousel. Only one gesture runs at a time.
func (d *InteractionDispatcher) beginGesture(pointerID int, now time.Duration) bool {
	if d.owner != OwnerNone {
		return false
	}
	var owner Owner
	switch {
	case d.transform != nil && d.transform.Zoomed():
		d.transform.Interrupt()
		owner = OwnerTransform
	case d.spin != nil:
		d.spin.Interrupt()
		owner = OwnerSpin
	case d.carousel != nil:
		owner = OwnerCarousel
	default:
		return false
	}
	d.tracker.Reset()
	d.tracker.Add(now, Vec2{})
	d.ownerPointer = pointerID
	d.setOwner(owner)
	return true
}

func (d *InteractionDispatcher) forward(delta Vec2, now time.Duration) {
	d.tracker.Add(now, delta)
	switch d.owner {
	case OwnerCarousel:
		d.carousel.OnDragDelta(delta.X)
	case OwnerTransform:
		d.transform.Pan(delta.X, delta.Y)
	case OwnerSpin:
		d.spin.AccumulateDelta(delta.X)
	}
}

// endGesture releases ownership. With momentum the owner receives the
// tracked release velocity; without it the release velocity is zero.
func (d *InteractionDispatcher) endGesture(now time.Duration, momentum bool) {
	var v Vec2
	if momentum {
		v = d.tracker.Velocity(now)
	}
	switch d.owner {
	case OwnerCarousel:
		d.carousel.OnDragRelease(v.X)
	case OwnerTransform:
		d.transform.Release(v)
	case OwnerSpin:
		d.spin.Release(v.X)
	}
	d.tracker.Reset()
	d.setOwner(OwnerNone)
}

func (d *InteractionDispatcher) setOwner(o Owner) {
	if o == d.owner {
		return
	}
	d.owner = o
	d.owners.notify(o)
}

func (d *InteractionDispatcher) tap(t Tap) {
	if d.hasLastTap && t.At-d.lastTap.At <= d.opts.DoubleTapWindow &&
		math.Hypot(t.X-d.lastTap.X, t.Y-d.lastTap.Y) <= doubleTapSlop {
		t.Double = true
		d.hasLastTap = false
		if !d.opts.DisableDoubleTap && d.transform != nil {
			if d.transform.Zoomed() {
				d.transform.Reset(d.transform.ZoomDuration())
			} else {
				d.transform.SetZoom(d.opts.DoubleTapScale, Vec2{t.X, t.Y}, d.transform.ZoomDuration())
			}
		}
	} else {
		d.lastTap = t
		d.hasLastTap = true
	}
	d.taps.notify(t)
}

// --- Pinch detection ---

func (d *InteractionDispatcher) detectPinch() {
	var p [2]int
	count := 0
	for i := 1; i < maxPointers; i++ {
		if d.pointers[i].down {
			if count < 2 {
				p[count] = i
			}
			count++
		}
	}

	if count != 2 {
		d.pinch.active = false
		return
	}
	if d.pinch.active {
		return
	}

	// A pinch supersedes any single-finger drag.
	if d.owner != OwnerNone {
		d.endGesture(0, false)
	}
	ps0, ps1 := &d.pointers[p[0]], &d.pointers[p[1]]
	ps0.dragging, ps1.dragging = false, false
	ps0.pinched, ps1.pinched = true, true
	d.pinch = pinchState{
		active:   true,
		pointer0: p[0],
		pointer1: p[1],
		prevDist: ps1.last.Sub(ps0.last).Len(),
	}
	if d.transform != nil {
		d.transform.Interrupt()
	}
	d.interruptSpin()
}

// interruptSpin stops spin momentum and cancels a pending or running
// auto-spin.
func (d *InteractionDispatcher) interruptSpin() {
	if d.spin != nil {
		d.spin.Interrupt()
	}
}

func (d *InteractionDispatcher) updatePinch() {
	ps0 := &d.pointers[d.pinch.pointer0]
	ps1 := &d.pointers[d.pinch.pointer1]
	dist := ps1.last.Sub(ps0.last).Len()
	center := ps0.last.Add(ps1.last).Scale(0.5)
	if d.pinch.prevDist > 0 && dist > 0 && d.transform != nil {
		scale := d.transform.State().Scale * dist / d.pinch.prevDist
		d.transform.SetZoom(scale, center, 0)
	}
	d.pinch.prevDist = dist
}
