package showcase

import "math"

// Vec2 is a 2D vector used for positions, deltas, and velocities
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v multiplied by k.
func (v Vec2) Scale(k float64) Vec2 { return Vec2{v.X * k, v.Y * k} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Size is a width/height pair in container-local pixels.
type Size struct {
	Width, Height float64
}

// Center returns the midpoint of a container of this size.
func (s Size) Center() Vec2 { return Vec2{s.Width / 2, s.Height / 2} }

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// FitRect returns the largest rectangle with media's aspect ratio that fits
// inside bounds, centered. A media size with a zero side fills bounds.
func FitRect(media, bounds Size) Rect {
	if media.Width <= 0 || media.Height <= 0 {
		return Rect{Width: bounds.Width, Height: bounds.Height}
	}
	scale := min(bounds.Width/media.Width, bounds.Height/media.Height)
	w, h := media.Width*scale, media.Height*scale
	return Rect{X: (bounds.Width - w) / 2, Y: (bounds.Height - h) / 2, Width: w, Height: h}
}

// ViewportMetrics describes where the player sits in the host viewport.
// It is supplied by the embedding layer and never mutated by the engine.
type ViewportMetrics struct {
	// PlayerInViewportWidthRatio is the share of the viewport width the
	// player occupies, in (0, 1].
	PlayerInViewportWidthRatio float64
	// IsFullscreen is true while the player covers the whole viewport.
	IsFullscreen bool
}

// MediaKind is the variant tag of a MediaItem.
type MediaKind uint8

const (
	MediaImage            MediaKind = iota // still photo
	MediaVideo                             // video clip with optional poster
	MediaSpin360                           // flipbook of frames forming a rotation
	MediaInteriorPanorama                  // equirectangular interior panorama
	MediaCustom                            // host-provided slot
)

var mediaKindNames = [...]string{
	MediaImage:            "image",
	MediaVideo:            "video",
	MediaSpin360:          "360",
	MediaInteriorPanorama: "interior-360",
	MediaCustom:           "custom",
}

func (k MediaKind) String() string {
	if int(k) < len(mediaKindNames) {
		return mediaKindNames[k]
	}
	return "unknown"
}

// SupportsHotspots reports whether items of this kind may carry hotspots.
func (k MediaKind) SupportsHotspots() bool {
	return k == MediaImage || k == MediaSpin360 || k == MediaInteriorPanorama
}

// Zoomable reports whether items of this kind get a TransformEngine.
func (k MediaKind) Zoomable() bool {
	return k == MediaImage || k == MediaSpin360
}

// Transition is the kind of carousel move currently being displayed.
type Transition uint8

const (
	TransitionNone            Transition = iota // regular animated or idle state
	TransitionInstantJump                       // move without animation
	TransitionWrapFirstToLast                   // prev from index 0 through the virtual last slot
	TransitionWrapLastToFirst                   // next from the last index through the virtual first slot
)

func (t Transition) String() string {
	switch t {
	case TransitionNone:
		return "none"
	case TransitionInstantJump:
		return "instant-jump"
	case TransitionWrapFirstToLast:
		return "wrap-first-to-last"
	case TransitionWrapLastToFirst:
		return "wrap-last-to-first"
	default:
		return "unknown"
	}
}

// InteractionStatus tracks whether an item's interactive layer (spin,
// panorama, video) has been prepared or is running.
type InteractionStatus uint8

const (
	StatusNone    InteractionStatus = iota // nothing prepared yet
	StatusReady                            // assets ready, waiting for the user
	StatusRunning                          // the user is interacting with it
)

func (s InteractionStatus) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	default:
		return "unknown"
	}
}

// LoadState is the three-state result of an asynchronous load: the
// composition fetch, or the assets of a single item.
type LoadState uint8

const (
	LoadStateLoading LoadState = iota // request in flight
	LoadStateReady                    // loaded successfully
	LoadStateError                    // failed; not retried automatically
)

func (s LoadState) String() string {
	switch s {
	case LoadStateLoading:
		return "loading"
	case LoadStateReady:
		return "ready"
	case LoadStateError:
		return "error"
	default:
		return "unknown"
	}
}

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// wrapIndex maps any integer onto [0, n).
func wrapIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i % n) + n) % n
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
