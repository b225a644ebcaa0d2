package showcase

import (
	"math"
	"time"

	"github.com/tanema/gween/ease"
)

const (
	// DefaultMaxZoom is the scale ceiling when TransformOptions.MaxZoom is unset.
	DefaultMaxZoom = 3.0
	// DefaultZoomStep is the quantum for button-driven zoom.
	DefaultZoomStep = 0.5

	defaultZoomDuration = 300 * time.Millisecond
	scaleEpsilon        = 1e-9
)

// TransformState is the zoom/pan state of one visual surface. Translation
// is in container-local pixels; a content point c is displayed at
// c*Scale + Translate.
type TransformState struct {
	TranslateX, TranslateY float64
	Scale                  float64
}

// IdentityTransform is the unzoomed state aligned at the origin.
var IdentityTransform = TransformState{Scale: 1}

// TransformOptions configures a TransformEngine. Zero fields take defaults.
type TransformOptions struct {
	MaxZoom      float64
	ZoomStep     float64
	ZoomDuration time.Duration
	Momentum     Momentum
}

// TransformEngine owns zoom and pan for a single surface. The content is
// the container scaled by State().Scale; the engine keeps the scaled content
// covering the container at all times.
type TransformEngine struct {
	sched     Scheduler
	opts      TransformOptions
	container Size
	state     TransformState
	anim      animator
	heading   float64 // scale a running zoom animation ends at
	observers observerList[TransformState]
}

// NewTransformEngine creates an unzoomed engine for a container of the
// given size.
func NewTransformEngine(sched Scheduler, container Size, opts TransformOptions) (*TransformEngine, error) {
	if sched == nil {
		return nil, ErrNilScheduler
	}
	if opts.MaxZoom < 1 {
		opts.MaxZoom = DefaultMaxZoom
	}
	if opts.ZoomStep <= 0 {
		opts.ZoomStep = DefaultZoomStep
	}
	if opts.ZoomDuration <= 0 {
		opts.ZoomDuration = defaultZoomDuration
	}
	opts.Momentum = opts.Momentum.withDefaults()
	return &TransformEngine{
		sched:     sched,
		opts:      opts,
		container: container,
		state:     IdentityTransform,
		anim:      animator{sched: sched},
	}, nil
}

// State returns the current transform.
func (e *TransformEngine) State() TransformState {
	return e.state
}

// Container returns the container size.
func (e *TransformEngine) Container() Size {
	return e.container
}

// MaxZoom returns the scale ceiling.
func (e *TransformEngine) MaxZoom() float64 {
	return e.opts.MaxZoom
}

// ZoomDuration returns the duration of button-driven zoom animations.
func (e *TransformEngine) ZoomDuration() time.Duration {
	return e.opts.ZoomDuration
}

// Zoomed reports whether the surface is scaled above 1.
func (e *TransformEngine) Zoomed() bool {
	return e.state.Scale > 1+scaleEpsilon
}

// Animating reports whether a zoom, reset, or inertia animation is pending.
func (e *TransformEngine) Animating() bool {
	return e.anim.Running()
}

// OnChange registers fn to receive every state change.
func (e *TransformEngine) OnChange(fn func(TransformState)) Subscription {
	return e.observers.add(fn)
}

// SetZoom zooms to target keeping the content point under anchor visually
// fixed. The target is clamped to [1, MaxZoom] and the anchor to the
// container. With a positive duration the scale is eased and the anchor is
// held on every frame; otherwise the change is immediate.
func (e *TransformEngine) SetZoom(target float64, anchor Vec2, duration time.Duration) {
	target = clamp(target, 1, e.opts.MaxZoom)
	anchor = Vec2{clamp(anchor.X, 0, e.container.Width), clamp(anchor.Y, 0, e.container.Height)}
	from := e.state
	if duration <= 0 {
		e.anim.Stop()
		e.apply(e.zoomAround(from, target, anchor))
		return
	}
	e.heading = target
	e.anim.Start(duration, ease.OutCubic, func(p float64) {
		e.apply(e.zoomAround(from, lerp(from.Scale, target, p), anchor))
	}, nil)
}

// ZoomIn steps the scale up to the next multiple of ZoomStep around the
// container center, animated.
func (e *TransformEngine) ZoomIn() {
	step := e.opts.ZoomStep
	target := math.Floor(e.targetScale()/step+scaleEpsilon)*step + step
	e.SetZoom(target, e.container.Center(), e.opts.ZoomDuration)
}

// ZoomOut steps the scale down to the previous multiple of ZoomStep around
// the container center, animated.
func (e *TransformEngine) ZoomOut() {
	step := e.opts.ZoomStep
	target := math.Ceil(e.targetScale()/step-scaleEpsilon)*step - step
	e.SetZoom(target, e.container.Center(), e.opts.ZoomDuration)
}

// targetScale is the scale a running animation is heading to, so repeated
// button presses accumulate instead of restarting from mid-flight values.
func (e *TransformEngine) targetScale() float64 {
	if e.anim.Running() && e.heading >= 1 {
		return e.heading
	}
	return e.state.Scale
}

// Pan moves the content by (dx, dy) and re-clamps. It cancels any running
// animation and does nothing while the surface is unzoomed.
func (e *TransformEngine) Pan(dx, dy float64) {
	if !e.Zoomed() {
		return
	}
	e.anim.Stop()
	s := e.state
	s.TranslateX += dx
	s.TranslateY += dy
	e.apply(e.clampState(s))
}

// AnimateTo eases from the current state to target. The target is clamped
// first; intermediate frames are linear blends of two covering states and
// therefore cover the container too.
func (e *TransformEngine) AnimateTo(target TransformState, duration time.Duration) {
	target = e.clampState(target)
	from := e.state
	e.heading = target.Scale
	e.anim.Start(duration, ease.OutCubic, func(p float64) {
		e.apply(e.clampState(TransformState{
			TranslateX: lerp(from.TranslateX, target.TranslateX, p),
			TranslateY: lerp(from.TranslateY, target.TranslateY, p),
			Scale:      lerp(from.Scale, target.Scale, p),
		}))
	}, nil)
}

// Reset animates back to the identity transform.
func (e *TransformEngine) Reset(duration time.Duration) {
	e.AnimateTo(IdentityTransform, duration)
}

// Release starts pan inertia from a release velocity in px/ms. Below the
// momentum threshold, or when unzoomed, nothing is scheduled.
func (e *TransformEngine) Release(velocity Vec2) {
	if !e.Zoomed() {
		return
	}
	speed := velocity.Len()
	distance, duration, ok := e.opts.Momentum.Travel(speed)
	if !ok {
		return
	}
	dir := velocity.Scale(1 / speed)
	from := e.state
	e.heading = from.Scale
	e.anim.Start(duration, ease.OutCubic, func(p float64) {
		s := from
		s.TranslateX += dir.X * distance * p
		s.TranslateY += dir.Y * distance * p
		e.apply(e.clampState(s))
	}, nil)
}

// Interrupt cancels any running animation or inertia.
func (e *TransformEngine) Interrupt() {
	e.anim.Stop()
}

// Resize changes the container size, scaling the translation
// proportionally and re-clamping.
func (e *TransformEngine) Resize(container Size) {
	if container == e.container {
		return
	}
	e.anim.Finish()
	s := e.state
	if e.container.Width > 0 {
		s.TranslateX *= container.Width / e.container.Width
	}
	if e.container.Height > 0 {
		s.TranslateY *= container.Height / e.container.Height
	}
	e.container = container
	e.apply(e.clampState(s))
}

// ContainerToContent maps a container point to unscaled content
// coordinates.
func (e *TransformEngine) ContainerToContent(p Vec2) Vec2 {
	return Vec2{
		(p.X - e.state.TranslateX) / e.state.Scale,
		(p.Y - e.state.TranslateY) / e.state.Scale,
	}
}

// ContentToContainer maps unscaled content coordinates to the container.
func (e *TransformEngine) ContentToContainer(p Vec2) Vec2 {
	return Vec2{
		p.X*e.state.Scale + e.state.TranslateX,
		p.Y*e.state.Scale + e.state.TranslateY,
	}
}

// HotspotPosition returns where a hotspot is displayed in the container.
func (e *TransformEngine) HotspotPosition(h Hotspot) Vec2 {
	return e.ContentToContainer(Vec2{h.X * e.container.Width, h.Y * e.container.Height})
}

// Close cancels pending work and drops observers.
func (e *TransformEngine) Close() {
	e.anim.Stop()
	e.observers.clear()
}

// zoomAround computes the state at scale target that keeps anchor fixed
// relative to from:
//
//	ratio = target / from.Scale
//	translate' = anchor - (anchor - translate) * ratio
func (e *TransformEngine) zoomAround(from TransformState, target float64, anchor Vec2) TransformState {
	ratio := target / from.Scale
	return e.clampState(TransformState{
		TranslateX: anchor.X - (anchor.X-from.TranslateX)*ratio,
		TranslateY: anchor.Y - (anchor.Y-from.TranslateY)*ratio,
		Scale:      target,
	})
}

// clampState restricts scale to [1, MaxZoom] and translation so the scaled
// content covers the container. At scale 1 the content is aligned at the
// origin.
func (e *TransformEngine) clampState(s TransformState) TransformState {
	if math.IsNaN(s.Scale) || s.Scale <= 1+scaleEpsilon {
		return IdentityTransform
	}
	s.Scale = math.Min(s.Scale, e.opts.MaxZoom)
	minX := e.container.Width * (1 - s.Scale)
	minY := e.container.Height * (1 - s.Scale)
	s.TranslateX = clampFinite(s.TranslateX, minX, 0)
	s.TranslateY = clampFinite(s.TranslateY, minY, 0)
	return s
}

func clampFinite(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return hi
	}
	return clamp(v, lo, hi)
}

func (e *TransformEngine) apply(s TransformState) {
	if s == e.state {
		return
	}
	e.state = s
	e.observers.notify(s)
}
