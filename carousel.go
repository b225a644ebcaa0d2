package showcase

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/tanema/gween/ease"
)

const (
	// DefaultSlideDuration is the length of one slide animation.
	DefaultSlideDuration = 400 * time.Millisecond
	// DefaultSwipeThreshold is the share of the slide width a drag must
	// cover to commit to the neighbouring item.
	DefaultSwipeThreshold = 0.2
	// DefaultSwipeVelocity is the release speed in px/ms that commits a
	// swipe regardless of distance.
	DefaultSwipeVelocity = 0.3

	// edgeResistance damps drags past the first or last item when the
	// carousel does not wrap.
	edgeResistance = 0.3
)

// CarouselOptions configures a CarouselController. Zero fields take
// defaults.
type CarouselOptions struct {
	// Infinite wraps next at the last item to the first, and prev at the
	// first item to the last.
	Infinite bool
	// PreloadRange is how many neighbours on each side are materialized.
	PreloadRange int
	// VisibleItemCount is how many items fit on screen at once.
	VisibleItemCount int
	SlideDuration    time.Duration
	SwipeThreshold   float64
	SwipeVelocity    float64
}

func (o CarouselOptions) withDefaults() CarouselOptions {
	if o.PreloadRange <= 0 {
		o.PreloadRange = 1
	}
	if o.VisibleItemCount <= 0 {
		o.VisibleItemCount = 1
	}
	if o.SlideDuration <= 0 {
		o.SlideDuration = DefaultSlideDuration
	}
	if o.SwipeThreshold <= 0 {
		o.SwipeThreshold = DefaultSwipeThreshold
	}
	if o.SwipeVelocity <= 0 {
		o.SwipeVelocity = DefaultSwipeVelocity
	}
	return o
}

// CarouselPhase is the state machine position of the controller.
type CarouselPhase uint8

const (
	PhaseIdle      CarouselPhase = iota // settled on CurrentIndex
	PhaseDragging                       // following a drag gesture
	PhaseAnimating                      // sliding, wrapping, or snapping back
)

func (p CarouselPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhaseAnimating:
		return "animating"
	default:
		return "unknown"
	}
}

// CarouselState is a snapshot of the controller.
type CarouselState struct {
	CurrentIndex int
	// TargetIndex is where the carousel is heading: the in-flight command's
	// index, else a queued jump, else -1.
	TargetIndex int
	Transition  Transition
	Phase       CarouselPhase
	Statuses    []InteractionStatus
}

// CarouselController owns the current item, the slide track position and
// the transition state machine:
//
//	Idle → Dragging → {AnimatingTo(i) | WrapFirstToLast | WrapLastToFirst} → Idle
//
// One command is in flight at a time. RequestNext and RequestPrev are
// ignored while busy; JumpTo is queued and the latest one wins.
type CarouselController struct {
	sched Scheduler
	opts  CarouselOptions

	n          int
	current    int
	target     int // in-flight command, -1 when idle
	queued     int // JumpTo received while busy, -1 when none
	transition Transition
	phase      CarouselPhase
	statuses   []InteractionStatus

	slot       float64 // track position in slots; equals current when settled
	dragOffset float64
	slideWidth float64

	anim    animator
	indexes observerList[int]
	changes observerList[CarouselState]
}

// NewCarousel creates a controller over itemCount items, settled on the
// first one.
func NewCarousel(sched Scheduler, itemCount int, opts CarouselOptions) (*CarouselController, error) {
	if sched == nil {
		return nil, ErrNilScheduler
	}
	if itemCount < 0 {
		return nil, fmt.Errorf("new carousel: %d items: %w", itemCount, ErrIndexOutOfRange)
	}
	return &CarouselController{
		sched:    sched,
		opts:     opts.withDefaults(),
		n:        itemCount,
		target:   -1,
		queued:   -1,
		statuses: make([]InteractionStatus, itemCount),
		anim:     animator{sched: sched},
	}, nil
}

// Len returns the item count.
func (c *CarouselController) Len() int { return c.n }

// CurrentIndex returns the committed item index.
func (c *CarouselController) CurrentIndex() int { return c.current }

// Phase returns the state machine phase.
func (c *CarouselController) Phase() CarouselPhase { return c.phase }

// Transition returns the transition being displayed.
func (c *CarouselController) Transition() Transition { return c.transition }

// Infinite reports whether the carousel wraps.
func (c *CarouselController) Infinite() bool { return c.opts.Infinite }

// Busy reports whether a command or drag is in progress.
func (c *CarouselController) Busy() bool { return c.phase != PhaseIdle }

// TargetIndex returns the index the carousel is heading to, or -1.
func (c *CarouselController) TargetIndex() int {
	if c.target >= 0 {
		return c.target
	}
	return c.queued
}

// State returns a snapshot of the controller.
func (c *CarouselController) State() CarouselState {
	return CarouselState{
		CurrentIndex: c.current,
		TargetIndex:  c.TargetIndex(),
		Transition:   c.transition,
		Phase:        c.phase,
		Statuses:     slices.Clone(c.statuses),
	}
}

// OnIndexChange registers fn to receive every committed index change.
func (c *CarouselController) OnIndexChange(fn func(index int)) Subscription {
	return c.indexes.add(fn)
}

// OnChange registers fn to receive a snapshot after every state or track
// change, including each animation frame.
func (c *CarouselController) OnChange(fn func(CarouselState)) Subscription {
	return c.changes.add(fn)
}

// RequestNext moves to the next item. It returns false when the request
// was ignored: busy, fewer than two items, or at the last item without
// Infinite.
func (c *CarouselController) RequestNext() bool {
	if c.phase != PhaseIdle {
		return false
	}
	return c.step(1)
}

// RequestPrev moves to the previous item. It returns false when the
// request was ignored.
func (c *CarouselController) RequestPrev() bool {
	if c.phase != PhaseIdle {
		return false
	}
	return c.step(-1)
}

// JumpTo moves to item i. Neighbours are reached with a slide; anything
// further away is an InstantJump. While busy the jump is queued and runs
// once the current command settles.
func (c *CarouselController) JumpTo(i int) error {
	if i < 0 || i >= c.n {
		return fmt.Errorf("jump to %d of %d: %w", i, c.n, ErrIndexOutOfRange)
	}
	if c.phase != PhaseIdle {
		c.queued = i
		c.changed()
		return nil
	}
	c.jump(i)
	return nil
}

// ChangeCategory resets the per-item statuses and any queued jump, then
// jumps to start, the first item of the destination category. An
// in-flight command is completed first.
func (c *CarouselController) ChangeCategory(start int) error {
	if start < 0 || start >= c.n {
		return fmt.Errorf("change category to %d of %d: %w", start, c.n, ErrIndexOutOfRange)
	}
	c.queued = -1
	c.anim.Finish()
	if c.phase == PhaseDragging {
		c.phase = PhaseIdle
		c.dragOffset = 0
		c.slot = float64(c.current)
	}
	clear(c.statuses)
	c.jump(start)
	c.changed()
	return nil
}

// OnDragDelta moves the track by dx pixels. The first delta of a gesture
// completes any running command and enters the Dragging phase.
func (c *CarouselController) OnDragDelta(dx float64) {
	if c.n == 0 || dx == 0 || math.IsNaN(dx) {
		return
	}
	if c.phase != PhaseDragging {
		c.queued = -1
		c.anim.Finish()
		c.phase = PhaseDragging
		c.dragOffset = 0
	}
	if !c.opts.Infinite && c.pastEdge(c.dragOffset+dx) {
		dx *= edgeResistance
	}
	c.dragOffset += dx
	if c.slideWidth > 0 {
		c.dragOffset = clamp(c.dragOffset, -c.slideWidth, c.slideWidth)
	}
	c.syncSlot()
	c.changed()
}

// OnDragRelease ends a drag. A release faster than SwipeVelocity (px/ms)
// commits in the direction of travel; otherwise a drag further than
// SwipeThreshold of the slide width commits; anything else snaps back.
func (c *CarouselController) OnDragRelease(velocity float64) {
	if c.phase != PhaseDragging {
		return
	}
	offset := c.dragOffset
	c.phase = PhaseIdle

	dir := 0
	switch {
	case math.Abs(velocity) > c.opts.SwipeVelocity:
		dir = -sign(velocity)
	case c.slideWidth > 0 && math.Abs(offset) > c.opts.SwipeThreshold*c.slideWidth:
		dir = -sign(offset)
	}
	if dir != 0 && c.step(dir) {
		return
	}
	c.slideTo(float64(c.current), c.current, TransitionNone)
}

// OnViewportChange updates the slide width. A running slide is completed
// since its pixel path no longer applies.
func (c *CarouselController) OnViewportChange(size Size) {
	if size.Width == c.slideWidth {
		return
	}
	if c.phase == PhaseDragging && c.slideWidth > 0 {
		c.dragOffset *= size.Width / c.slideWidth
	}
	c.slideWidth = size.Width
	if c.phase == PhaseAnimating {
		c.anim.Finish()
	}
	c.syncSlot()
	c.changed()
}

// SlideWidth returns the width of one slide.
func (c *CarouselController) SlideWidth() float64 { return c.slideWidth }

// Slot returns the track position in slots. It is fractional while
// dragging or animating, n or -1 at the end of a wrap.
func (c *CarouselController) Slot() float64 { return c.slot }

// TrackOffset returns the horizontal pixel offset of the slide track.
func (c *CarouselController) TrackOffset() float64 {
	return -c.slot * c.slideWidth
}

// SlotItem returns the item shown in slot s. Slots beyond either end show
// wrap duplicates in infinite mode and nothing (-1) otherwise.
func (c *CarouselController) SlotItem(s int) int {
	if c.n == 0 {
		return -1
	}
	if s >= 0 && s < c.n {
		return s
	}
	if !c.opts.Infinite {
		return -1
	}
	return wrapIndex(s, c.n)
}

// VisibleSlots returns the slots intersecting the viewport at the current
// track position.
func (c *CarouselController) VisibleSlots() []int {
	if c.n == 0 {
		return nil
	}
	first := int(math.Floor(c.slot))
	last := int(math.Ceil(c.slot)) + c.opts.VisibleItemCount - 1
	slots := make([]int, 0, last-first+1)
	for s := first; s <= last; s++ {
		if c.SlotItem(s) >= 0 {
			slots = append(slots, s)
		}
	}
	return slots
}

// IsMaterialized reports whether item i should be rendered and its assets
// requested: it is within max(PreloadRange, VisibleItemCount) of the
// current item (measured across the wrap in infinite mode), or it is the
// pending target.
func (c *CarouselController) IsMaterialized(i int) bool {
	if i < 0 || i >= c.n {
		return false
	}
	if i == c.target || i == c.queued {
		return true
	}
	window := max(c.opts.PreloadRange, c.opts.VisibleItemCount)
	d := abs(i - c.current)
	if c.opts.Infinite {
		d = min(d, c.n-d)
	}
	return d <= window
}

// Materialized returns every materialized item index, ascending.
func (c *CarouselController) Materialized() []int {
	var out []int
	for i := range c.n {
		if c.IsMaterialized(i) {
			out = append(out, i)
		}
	}
	return out
}

// ItemStatus returns the interaction status of item i.
func (c *CarouselController) ItemStatus(i int) InteractionStatus {
	if i < 0 || i >= c.n {
		return StatusNone
	}
	return c.statuses[i]
}

// SetItemStatus records the interaction status of item i.
func (c *CarouselController) SetItemStatus(i int, s InteractionStatus) error {
	if i < 0 || i >= c.n {
		return fmt.Errorf("set status of %d of %d: %w", i, c.n, ErrIndexOutOfRange)
	}
	if c.statuses[i] == s {
		return nil
	}
	c.statuses[i] = s
	c.changed()
	return nil
}

// ResetStatuses sets every item back to StatusNone.
func (c *CarouselController) ResetStatuses() {
	clear(c.statuses)
	c.changed()
}

// Reset replaces the item list with itemCount items and settles on the
// first one, dropping statuses, queued jumps, and animations. Index
// observers are not notified; the caller announces the new list.
func (c *CarouselController) Reset(itemCount int) {
	c.anim.Stop()
	c.n = max(itemCount, 0)
	c.current = 0
	c.target = -1
	c.queued = -1
	c.transition = TransitionNone
	c.phase = PhaseIdle
	c.statuses = make([]InteractionStatus, c.n)
	c.slot = 0
	c.dragOffset = 0
	c.changed()
}

// Close cancels the pending frame and drops observers.
func (c *CarouselController) Close() {
	c.anim.Stop()
	c.indexes.clear()
	c.changes.clear()
}

// step starts a slide by one item in dir, wrapping in infinite mode. The
// wrap slides into the virtual duplicate at slot n (or -1) and re-anchors
// to the real item when it settles.
func (c *CarouselController) step(dir int) bool {
	if c.n < 2 {
		return false
	}
	next := c.current + dir
	switch {
	case next >= 0 && next < c.n:
		c.slideTo(float64(next), next, TransitionNone)
	case !c.opts.Infinite:
		return false
	case dir > 0:
		c.slideTo(float64(c.n), 0, TransitionWrapLastToFirst)
	default:
		c.slideTo(-1, c.n-1, TransitionWrapFirstToLast)
	}
	return true
}

func (c *CarouselController) jump(i int) {
	if i == c.current {
		return
	}
	switch d := i - c.current; {
	case d == 1 || d == -1:
		c.step(d)
	case c.opts.Infinite && c.current == c.n-1 && i == 0:
		c.step(1)
	case c.opts.Infinite && c.current == 0 && i == c.n-1:
		c.step(-1)
	default:
		// Rendered for one frame with transitions disabled.
		c.anim.Stop()
		c.transition = TransitionInstantJump
		c.target = -1
		c.slot = float64(i)
		c.commit(i)
		c.anim.Defer(func() {
			c.transition = TransitionNone
			c.changed()
		})
	}
}

func (c *CarouselController) slideTo(slot float64, index int, tr Transition) {
	from := c.slot
	c.phase = PhaseAnimating
	c.target = index
	c.transition = tr
	c.dragOffset = 0
	c.changed()
	c.anim.Start(c.opts.SlideDuration, ease.OutCubic, func(p float64) {
		c.slot = lerp(from, slot, p)
		c.changed()
	}, func() {
		c.settle(index)
	})
}

func (c *CarouselController) settle(index int) {
	c.phase = PhaseIdle
	c.target = -1
	c.transition = TransitionNone
	c.slot = float64(index)
	c.commit(index)
	if q := c.queued; q >= 0 {
		c.queued = -1
		if q < c.n {
			c.jump(q)
		}
	}
}

func (c *CarouselController) commit(index int) {
	prev := c.current
	c.current = index
	if prev != index {
		c.indexes.notify(index)
	}
	c.changed()
}

func (c *CarouselController) pastEdge(offset float64) bool {
	return c.n < 2 ||
		(c.current == 0 && offset > 0) ||
		(c.current == c.n-1 && offset < 0)
}

func (c *CarouselController) syncSlot() {
	if c.phase != PhaseDragging || c.slideWidth <= 0 {
		return
	}
	c.slot = float64(c.current) - c.dragOffset/c.slideWidth
}

func (c *CarouselController) changed() {
	if len(c.changes.handlers) == 0 {
		return
	}
	c.changes.notify(c.State())
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
