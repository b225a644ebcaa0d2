package showcase

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tanema/gween/ease"
)

const (
	// DefaultDragFullRotationPx is the drag distance for one full turn.
	DefaultDragFullRotationPx = 800.0
	// DefaultScrollFullRotationPx is the wheel/scroll distance for one full turn.
	DefaultScrollFullRotationPx = 2000.0

	defaultAutoSpinDelay    = 500 * time.Millisecond
	defaultAutoSpinDuration = 2500 * time.Millisecond

	residualEpsilon = 1e-9
)

// SpinState is the flipbook position of a 360 sequence.
type SpinState struct {
	// FrameIndex is always in [0, frameCount).
	FrameIndex int
	// Residual is the sub-frame drag distance not yet turned into a step.
	Residual float64
}

// SpinOptions configures a SpinEngine. Zero fields take defaults.
type SpinOptions struct {
	// Reverse flips the drag direction that advances frames.
	Reverse bool
	// DragFullRotationPx and ScrollFullRotationPx set how far each input
	// source must travel for one full rotation.
	DragFullRotationPx   float64
	ScrollFullRotationPx float64
	Momentum             Momentum
	// AutoSpin enables the one-shot introductory rotation.
	AutoSpin         bool
	AutoSpinDelay    time.Duration
	AutoSpinDuration time.Duration
	// StartFrame is the initial frame, wrapped into range.
	StartFrame int
}

// SpinEngine owns the frame index of a 360 flipbook. Drag and scroll
// distance accumulate into a residual that is converted into whole frame
// steps; releases carry momentum; an optional auto-spin plays once until
// the user takes over.
type SpinEngine struct {
	sched      Scheduler
	opts       SpinOptions
	frameCount int
	state      SpinState

	anim         animator // momentum or auto-spin, never both
	autoTimer    *Handle
	autoSpinUsed bool

	frames    []LoadState
	loaded    int
	failure   error
	observers observerList[SpinState]
	loads     observerList[LoadState]
}

// NewSpinEngine creates an engine for frameCount frames.
func NewSpinEngine(sched Scheduler, frameCount int, opts SpinOptions) (*SpinEngine, error) {
	if sched == nil {
		return nil, ErrNilScheduler
	}
	if frameCount <= 0 {
		return nil, fmt.Errorf("new spin engine: %d frames: %w", frameCount, ErrInvalidFrameCount)
	}
	if opts.DragFullRotationPx <= 0 {
		opts.DragFullRotationPx = DefaultDragFullRotationPx
	}
	if opts.ScrollFullRotationPx <= 0 {
		opts.ScrollFullRotationPx = DefaultScrollFullRotationPx
	}
	if opts.AutoSpinDelay <= 0 {
		opts.AutoSpinDelay = defaultAutoSpinDelay
	}
	if opts.AutoSpinDuration <= 0 {
		opts.AutoSpinDuration = defaultAutoSpinDuration
	}
	opts.Momentum = opts.Momentum.withDefaults()
	return &SpinEngine{
		sched:      sched,
		opts:       opts,
		frameCount: frameCount,
		state:      SpinState{FrameIndex: wrapIndex(opts.StartFrame, frameCount)},
		anim:       animator{sched: sched},
		frames:     make([]LoadState, frameCount),
	}, nil
}

// FrameIndex returns the current frame.
func (e *SpinEngine) FrameIndex() int { return e.state.FrameIndex }

// FrameCount returns the number of frames.
func (e *SpinEngine) FrameCount() int { return e.frameCount }

// State returns the current spin state.
func (e *SpinEngine) State() SpinState { return e.state }

// Reverse reports whether the drag direction is flipped.
func (e *SpinEngine) Reverse() bool { return e.opts.Reverse }

// Animating reports whether momentum or auto-spin is running.
func (e *SpinEngine) Animating() bool { return e.anim.Running() }

// AutoSpinPending reports whether the auto-spin is waiting for its delay.
func (e *SpinEngine) AutoSpinPending() bool { return e.autoTimer.Active() }

// OnChange registers fn to receive every frame change.
func (e *SpinEngine) OnChange(fn func(SpinState)) Subscription {
	return e.observers.add(fn)
}

// OnLoadStateChange registers fn to receive load state transitions.
func (e *SpinEngine) OnLoadStateChange(fn func(LoadState)) Subscription {
	return e.loads.add(fn)
}

// AccumulateDelta feeds drag distance in pixels and returns the net number
// of frames stepped (negative for backwards).
func (e *SpinEngine) AccumulateDelta(px float64) int {
	return e.accumulate(px, e.opts.DragFullRotationPx/float64(e.frameCount))
}

// AccumulateScroll feeds wheel or scroll distance in pixels, using the
// scroll full-rotation constant.
func (e *SpinEngine) AccumulateScroll(px float64) int {
	return e.accumulate(px, e.opts.ScrollFullRotationPx/float64(e.frameCount))
}

// accumulate adds px to the residual and steps one frame per pxPerFrame,
// repeating so a single fast input can advance several frames. The step
// direction is sign(residual) XOR Reverse. A delta opposing the residual's
// sign resets the residual first.
func (e *SpinEngine) accumulate(px, pxPerFrame float64) int {
	if px == 0 || math.IsNaN(px) || math.IsInf(px, 0) {
		return 0
	}
	r := e.state.Residual
	if r != 0 && (px > 0) != (r > 0) {
		r = 0
	}
	r += px

	net := 0
	for math.Abs(r) >= pxPerFrame-residualEpsilon {
		sign := 1.0
		if r < 0 {
			sign = -1
		}
		dir := int(sign)
		if e.opts.Reverse {
			dir = -dir
		}
		e.state.FrameIndex = (e.state.FrameIndex + dir + e.frameCount) % e.frameCount
		r -= sign * pxPerFrame
		net += dir
	}
	if math.Abs(r) < residualEpsilon {
		r = 0
	}
	prev := e.state.Residual
	e.state.Residual = r
	if net != 0 || prev != r {
		e.observers.notify(e.state)
	}
	return net
}

// SetFrame jumps to frame i, wrapped into range, and clears the residual.
func (e *SpinEngine) SetFrame(i int) {
	next := SpinState{FrameIndex: wrapIndex(i, e.frameCount)}
	if next == e.state {
		return
	}
	e.state = next
	e.observers.notify(e.state)
}

// Interrupt stops momentum and cancels the auto-spin, which will not be
// offered again. Call it when a user gesture starts.
func (e *SpinEngine) Interrupt() {
	e.anim.Stop()
	e.autoTimer.Cancel()
	e.autoTimer = nil
	e.autoSpinUsed = true
}

// Release starts momentum from a release velocity in px/ms along the drag
// axis. The travel is fed through AccumulateDelta frame by frame with eased
// deceleration. Below the momentum threshold nothing is scheduled.
func (e *SpinEngine) Release(velocity float64) {
	distance, duration, ok := e.opts.Momentum.Travel(velocity)
	if !ok {
		return
	}
	sign := 1.0
	if velocity < 0 {
		sign = -1
	}
	travelled := 0.0
	e.anim.Start(duration, ease.OutCubic, func(p float64) {
		next := distance * p
		delta := next - travelled
		travelled = next
		e.AccumulateDelta(sign * delta)
	}, nil)
}

// StartAutoSpin schedules the one-shot auto-spin: after the configured
// delay the frame index eases through one full rotation. It does nothing if
// auto-spin is disabled, already played, or pre-empted by the user.
func (e *SpinEngine) StartAutoSpin() {
	if !e.opts.AutoSpin || e.autoSpinUsed || e.autoTimer.Active() {
		return
	}
	e.autoTimer = e.sched.After(e.opts.AutoSpinDelay, func(time.Duration) {
		e.autoTimer = nil
		e.autoSpinUsed = true
		start := e.state.FrameIndex
		dir := 1
		if e.opts.Reverse {
			dir = -1
		}
		e.anim.Start(e.opts.AutoSpinDuration, ease.InOutQuad, func(p float64) {
			offset := int(math.Round(p * float64(e.frameCount)))
			e.SetFrame(start + dir*offset)
		}, nil)
	})
}

// MarkFrameLoaded records that frame i is available.
func (e *SpinEngine) MarkFrameLoaded(i int) error {
	if i < 0 || i >= e.frameCount {
		return fmt.Errorf("mark frame %d of %d: %w", i, e.frameCount, ErrIndexOutOfRange)
	}
	if e.frames[i] == LoadStateReady {
		return nil
	}
	before := e.LoadState()
	e.frames[i] = LoadStateReady
	e.loaded++
	e.notifyLoad(before)
	return nil
}

// MarkFrameFailed records a frame load failure. The whole spin moves to
// LoadStateError; nothing is retried.
func (e *SpinEngine) MarkFrameFailed(i int, err error) error {
	if i < 0 || i >= e.frameCount {
		return fmt.Errorf("mark frame %d of %d: %w", i, e.frameCount, ErrIndexOutOfRange)
	}
	before := e.LoadState()
	if e.frames[i] == LoadStateReady {
		e.loaded--
	}
	e.frames[i] = LoadStateError
	if err == nil {
		err = errors.New("frame load failed")
	}
	if e.failure == nil {
		e.failure = &AssetError{Index: -1, Frame: i, Err: err}
	}
	e.anim.Stop()
	e.autoTimer.Cancel()
	e.notifyLoad(before)
	return nil
}

// LoadState returns Error if any frame failed, Ready once every frame has
// loaded, and Loading otherwise.
func (e *SpinEngine) LoadState() LoadState {
	switch {
	case e.failure != nil:
		return LoadStateError
	case e.loaded == e.frameCount:
		return LoadStateReady
	default:
		return LoadStateLoading
	}
}

// Err returns the first frame load failure, if any.
func (e *SpinEngine) Err() error {
	return e.failure
}

func (e *SpinEngine) notifyLoad(before LoadState) {
	if after := e.LoadState(); after != before {
		e.loads.notify(after)
	}
}

// Close cancels momentum, auto-spin, and drops observers. No callback
// mutates the engine after Close returns.
func (e *SpinEngine) Close() {
	e.anim.Stop()
	e.autoTimer.Cancel()
	e.autoTimer = nil
	e.observers.clear()
	e.loads.clear()
}
