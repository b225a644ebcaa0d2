package showcase

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// hotspotHitRadius is the tap distance in pixels that selects a hotspot.
const hotspotHitRadius = 20.0

// ItemSurface holds the engines of one materialized item. Transform is
// set for zoomable items and Spin for 360 items.
type ItemSurface struct {
	Index     int
	Item      MediaItem
	Transform *TransformEngine
	Spin      *SpinEngine
}

func (s *ItemSurface) close() {
	if s.Transform != nil {
		s.Transform.Close()
	}
	if s.Spin != nil {
		s.Spin.Close()
	}
}

// PointerSample is one pointer's state for a frame, in container
// coordinates.
type PointerSample struct {
	ID      int
	X, Y    float64
	Pressed bool
}

// WheelSample is the wheel movement of a frame at cursor (X, Y).
type WheelSample struct {
	DX, DY float64
	X, Y   float64
}

// FrameInput is everything the host sampled for one frame.
type FrameInput struct {
	Pointers  []PointerSample
	Wheel     WheelSample
	Keys      []Key
	Modifiers KeyModifiers
}

// ViewerState is a read-only summary of the viewer, used for logging and
// scripted runs.
type ViewerState struct {
	Load       LoadState
	Items      int
	Index      int
	Category   string
	Kind       MediaKind
	Transition Transition
	Transform  TransformState
	Frame      int
	Extend     bool
	Hotspots   bool
	Gallery    bool
	Owner      Owner
}

// Viewer is the top-level object that owns the catalog, the carousel, the
// per-item engines, input dispatch, and outbound events. All methods except
// Load must be called from the goroutine that calls Update.
type Viewer struct {
	cfg       Config
	loop      *FrameLoop
	logger    *log.Logger
	debug     bool
	events    *EventBus
	sink      EventSink
	analytics *Analytics

	source    string
	loadState LoadState
	loadErr   error
	comp      *Composition
	catalog   *ResolvedCatalog
	custom    []CustomItem

	carousel   *CarouselController
	dispatcher *InteractionDispatcher
	surfaces   map[int]*ItemSurface
	lastTarget int

	assets    []LoadState
	assetErrs []error
	media     []Size // natural media size per item, zero until reported

	container Size
	metrics   ViewportMetrics

	extend   bool
	hotspots bool
	gallery  bool
	hotspot  int // selected hotspot on the current item, -1 for none

	injectQueue     []syntheticPointerEvent
	testRunner      *TestRunner
	screenshotQueue []string
}

// NewViewer creates a viewer with its own FrameLoop. The viewer stays empty
// until Load or SetComposition succeeds.
func NewViewer(cfg Config) (*Viewer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loop := NewFrameLoop()
	carousel, err := NewCarousel(loop, 0, cfg.carouselOptions())
	if err != nil {
		return nil, err
	}
	v := &Viewer{
		cfg:        cfg,
		loop:       loop,
		logger:     newDefaultLogger(),
		events:     NewEventBus(cfg.EventPrefix),
		carousel:   carousel,
		dispatcher: NewInteractionDispatcher(carousel, DispatcherOptions{}),
		surfaces:   make(map[int]*ItemSurface),
		lastTarget: -1,
		hotspot:    -1,
		metrics:    ViewportMetrics{PlayerInViewportWidthRatio: 1},
	}
	carousel.OnIndexChange(v.onIndexChange)
	carousel.OnChange(v.onCarouselChange)
	v.dispatcher.OnTap(v.onTap)
	v.SetDebugMode(cfg.Debug)
	return v, nil
}

// Loop returns the viewer's scheduler.
func (v *Viewer) Loop() *FrameLoop { return v.loop }

// Events returns the outbound event bus.
func (v *Viewer) Events() *EventBus { return v.events }

// Carousel returns the navigation controller.
func (v *Viewer) Carousel() *CarouselController { return v.carousel }

// Dispatcher returns the input dispatcher.
func (v *Viewer) Dispatcher() *InteractionDispatcher { return v.dispatcher }

// Config returns the effective configuration.
func (v *Viewer) Config() Config { return v.cfg }

// Composition returns the loaded catalog, or nil.
func (v *Viewer) Composition() *Composition { return v.comp }

// Catalog returns the resolved item list, or nil.
func (v *Viewer) Catalog() *ResolvedCatalog { return v.catalog }

// LoadState returns the composition load state and its error, if any.
func (v *Viewer) LoadState() (LoadState, error) { return v.loadState, v.loadErr }

// SetLogger replaces the logger.
func (v *Viewer) SetLogger(l *log.Logger) {
	if l != nil {
		v.logger = l
	}
}

// SetEventSink sets the optional event bridge.
func (v *Viewer) SetEventSink(sink EventSink) { v.sink = sink }

// SetAnalytics sets the optional analytics queue. The caller keeps
// ownership and closes it.
func (v *Viewer) SetAnalytics(a *Analytics) { v.analytics = a }

// SetDebugMode enables or disables debug mode. When enabled, per-update
// timing stats and every emitted event are logged at debug level.
func (v *Viewer) SetDebugMode(enabled bool) {
	v.debug = enabled
	if enabled {
		v.logger.SetLevel(log.DebugLevel)
	}
}

// SetCustomItems sets the items spliced into the flattened list and
// re-resolves a loaded catalog.
func (v *Viewer) SetCustomItems(items []CustomItem) error {
	v.custom = items
	if v.comp == nil {
		return nil
	}
	if err := v.resolve(); err != nil {
		return err
	}
	v.emitItemChange(v.carousel.CurrentIndex())
	return nil
}

// Load fetches and installs the composition at source. It blocks for the
// duration of the fetch, including retries.
func (v *Viewer) Load(ctx context.Context, f CatalogFetcher, source string) error {
	v.source = source
	v.loadState = LoadStateLoading
	v.loadErr = nil
	v.emit(EventCompositionLoading, source)

	start := time.Now()
	comp, err := FetchComposition(ctx, f, source, FetchOptions{
		Attempts: v.cfg.FetchAttempts,
		OnRetry: func(attempt int, err error) {
			v.logger.Warn("catalog fetch failed, retrying", "source", source, "attempt", attempt, "err", err)
		},
	})
	if err != nil {
		v.fail(err)
		return err
	}
	v.logger.Debug("catalog fetched", "source", source, "elapsed", time.Since(start).Round(time.Millisecond))
	return v.SetComposition(comp)
}

// SetComposition installs an already parsed composition.
func (v *Viewer) SetComposition(comp *Composition) error {
	if comp == nil {
		err := fmt.Errorf("set composition: %w", ErrNotLoaded)
		v.fail(err)
		return err
	}
	if err := comp.Validate(); err != nil {
		v.fail(err)
		return err
	}
	v.comp = comp
	if err := v.resolve(); err != nil {
		v.comp = nil
		v.fail(err)
		return err
	}
	v.loadState = LoadStateReady
	v.loadErr = nil
	v.emit(EventCompositionLoaded, comp)
	v.emitItemChange(v.carousel.CurrentIndex())
	return nil
}

func (v *Viewer) fail(err error) {
	v.loadState = LoadStateError
	v.loadErr = err
	v.logger.Error("composition load failed", "source", v.source, "err", err)
	v.emit(EventCompositionLoadError, err)
}

// resolve rebuilds the item list and resets every per-item state.
func (v *Viewer) resolve() error {
	catalog, err := ResolveCatalog(v.comp, v.cfg.catalogOptions(v.custom))
	if err != nil {
		return err
	}
	for i, s := range v.surfaces {
		s.close()
		delete(v.surfaces, i)
	}
	v.dispatcher.SetSurface(nil, nil)
	v.catalog = catalog
	v.assets = make([]LoadState, catalog.Len())
	v.assetErrs = make([]error, catalog.Len())
	v.media = make([]Size, catalog.Len())
	v.hotspot = -1
	v.lastTarget = -1
	v.carousel.Reset(catalog.Len())
	v.syncSurfaces()
	v.logger.Debug("catalog resolved", "items", catalog.Len(), "categories", len(catalog.Categories))
	return nil
}

// --- Navigation ---

// Next moves to the next item; it reports whether the request was taken.
func (v *Viewer) Next() bool {
	ok := v.carousel.RequestNext()
	if ok {
		v.track("navigate", "next", "")
	}
	return ok
}

// Prev moves to the previous item; it reports whether the request was taken.
func (v *Viewer) Prev() bool {
	ok := v.carousel.RequestPrev()
	if ok {
		v.track("navigate", "prev", "")
	}
	return ok
}

// JumpTo moves to item i.
func (v *Viewer) JumpTo(i int) error {
	if v.catalog == nil {
		return ErrNotLoaded
	}
	if err := v.carousel.JumpTo(i); err != nil {
		return err
	}
	v.track("navigate", "jump", fmt.Sprint(i))
	return nil
}

// SelectCategory jumps to the first item of category id.
func (v *Viewer) SelectCategory(id string) error {
	if v.catalog == nil {
		return ErrNotLoaded
	}
	start, err := v.catalog.CategoryStart(id)
	if err != nil {
		return err
	}
	if err := v.carousel.ChangeCategory(start); err != nil {
		return err
	}
	v.track("navigate", "category", id)
	return nil
}

// CurrentItem returns the current item.
func (v *Viewer) CurrentItem() (MediaItem, error) {
	if v.catalog == nil {
		return MediaItem{}, ErrNotLoaded
	}
	return v.catalog.Item(v.carousel.CurrentIndex())
}

// Surface returns the engines of item i, or nil if it is not materialized.
func (v *Viewer) Surface(i int) *ItemSurface { return v.surfaces[i] }

// CurrentSurface returns the engines of the current item, or nil.
func (v *Viewer) CurrentSurface() *ItemSurface {
	return v.surfaces[v.carousel.CurrentIndex()]
}

// --- Zoom ---

// ZoomIn steps the current item's zoom up. It reports whether the item is
// zoomable.
func (v *Viewer) ZoomIn() bool {
	s := v.CurrentSurface()
	if s == nil || s.Transform == nil {
		return false
	}
	s.Transform.ZoomIn()
	v.track("zoom", "in", "")
	return true
}

// ZoomOut steps the current item's zoom down.
func (v *Viewer) ZoomOut() bool {
	s := v.CurrentSurface()
	if s == nil || s.Transform == nil || !s.Transform.Zoomed() {
		return false
	}
	s.Transform.ZoomOut()
	v.track("zoom", "out", "")
	return true
}

// ResetZoom animates the current item back to scale 1.
func (v *Viewer) ResetZoom() bool {
	s := v.CurrentSurface()
	if s == nil || s.Transform == nil || !s.Transform.Zoomed() {
		return false
	}
	s.Transform.Reset(s.Transform.ZoomDuration())
	return true
}

// --- Modes ---

// Extended reports whether extend mode is on.
func (v *Viewer) Extended() bool { return v.extend }

// SetExtendMode enters or leaves extend mode. It reports whether the mode
// changed; entering is refused when the behavior is disabled.
func (v *Viewer) SetExtendMode(on bool) bool {
	if on == v.extend || (on && v.cfg.ExtendBehavior == ExtendDisabled) {
		return false
	}
	v.extend = on
	if on {
		v.emit(EventExtendModeOn, nil)
	} else {
		v.emit(EventExtendModeOff, nil)
	}
	v.track("toggle", "extend", fmt.Sprint(on))
	return true
}

// HotspotsVisible reports whether hotspots are shown.
func (v *Viewer) HotspotsVisible() bool { return v.hotspots }

// SetHotspotsVisible shows or hides hotspots. It reports whether the
// visibility changed.
func (v *Viewer) SetHotspotsVisible(on bool) bool {
	if on == v.hotspots {
		return false
	}
	v.hotspots = on
	if !on {
		v.hotspot = -1
	}
	if on {
		v.emit(EventHotspotsOn, nil)
	} else {
		v.emit(EventHotspotsOff, nil)
	}
	v.track("toggle", "hotspots", fmt.Sprint(on))
	return true
}

// GalleryOpen reports whether the gallery overlay is open.
func (v *Viewer) GalleryOpen() bool { return v.gallery }

// SetGalleryOpen opens or closes the gallery overlay. It reports whether
// the state changed.
func (v *Viewer) SetGalleryOpen(open bool) bool {
	if open == v.gallery {
		return false
	}
	v.gallery = open
	if open {
		v.emit(EventGalleryOpen, nil)
	} else {
		v.emit(EventGalleryClose, nil)
	}
	v.track("toggle", "gallery", fmt.Sprint(open))
	return true
}

// ActiveHotspot returns the hotspot selected by the last tap on the
// current item.
func (v *Viewer) ActiveHotspot() (Hotspot, bool) {
	item, err := v.CurrentItem()
	if err != nil || v.hotspot < 0 || v.hotspot >= len(item.Hotspots) {
		return Hotspot{}, false
	}
	return item.Hotspots[v.hotspot], true
}

// SetMediaSize records the natural pixel size of item i's media. Hotspots
// are placed inside the media's fitted rectangle once it is known.
func (v *Viewer) SetMediaSize(i int, size Size) error {
	if i < 0 || i >= len(v.media) {
		return fmt.Errorf("set media size %d: %w", i, ErrIndexOutOfRange)
	}
	v.media[i] = size
	return nil
}

// MediaRect returns where item i's media sits in its unzoomed slide.
func (v *Viewer) MediaRect(i int) Rect {
	var media Size
	if i >= 0 && i < len(v.media) {
		media = v.media[i]
	}
	return FitRect(media, v.slideSize())
}

// HotspotPosition returns where hotspot h of item i is displayed, relative
// to the item's slide. Items without a TransformEngine use the unzoomed
// media rectangle. It reports false when item i has no surface.
func (v *Viewer) HotspotPosition(i int, h Hotspot) (Vec2, bool) {
	s := v.surfaces[i]
	if s == nil {
		return Vec2{}, false
	}
	r := v.MediaRect(i)
	p := Vec2{r.X + h.X*r.Width, r.Y + h.Y*r.Height}
	if s.Transform != nil {
		p = s.Transform.ContentToContainer(p)
	}
	return p, true
}

// --- Layout & media selection ---

// Resize sets the container size and the player's placement in the
// viewport.
func (v *Viewer) Resize(container Size, metrics ViewportMetrics) {
	v.container = container
	v.metrics = metrics
	slide := v.slideSize()
	v.carousel.OnViewportChange(slide)
	for _, s := range v.surfaces {
		if s.Transform != nil {
			s.Transform.Resize(slide)
		}
	}
}

// Container returns the container size.
func (v *Viewer) Container() Size { return v.container }

func (v *Viewer) slideSize() Size {
	return Size{Width: v.container.Width / float64(v.cfg.VisibleItems), Height: v.container.Height}
}

// effectiveMetrics folds fullscreen extend mode into the host metrics.
func (v *Viewer) effectiveMetrics() ViewportMetrics {
	m := v.metrics
	if v.extend && v.cfg.ExtendBehavior == ExtendFullscreen {
		m.IsFullscreen = true
	}
	return m
}

// Widths resolves the breakpoint rules for item i.
func (v *Viewer) Widths(i int) (Resolution, error) {
	if v.catalog == nil {
		return Resolution{}, ErrNotLoaded
	}
	item, err := v.catalog.Item(i)
	if err != nil {
		return Resolution{}, err
	}
	res := ResolveWidths(WidthOptions{
		Available:  v.comp.AvailableWidths(),
		MinWidth:   v.cfg.MinMediaWidth,
		MaxWidth:   v.cfg.MaxMediaWidth,
		Strategy:   v.cfg.LoadStrategy,
		Multiplier: ViewportWidthMultiplier(v.effectiveMetrics(), item.EffectiveWidthRatio()/float64(v.cfg.VisibleItems)),
	})
	if res.Warning != nil {
		v.logger.Warn("width fallback", "item", i, "err", res.Warning)
	}
	return res, nil
}

// SourceURL returns the source to load for item i on a viewport of the
// given width. Spin items return their first frame.
func (v *Viewer) SourceURL(i int, viewportWidth float64) (string, error) {
	res, err := v.Widths(i)
	if err != nil {
		return "", err
	}
	item := v.catalog.Items[i].Item
	w := res.Select(viewportWidth)
	if item.Kind == MediaSpin360 {
		return item.FrameSource(0, w), nil
	}
	return SourceFor(item.Src, w), nil
}

// --- Asset state ---

// AssetState returns the load state of item i. Spin items report the state
// of their frame set.
func (v *Viewer) AssetState(i int) LoadState {
	if i < 0 || i >= len(v.assets) {
		return LoadStateLoading
	}
	if s := v.surfaces[i]; s != nil && s.Spin != nil && v.assets[i] != LoadStateError {
		return s.Spin.LoadState()
	}
	return v.assets[i]
}

// AssetErr returns the load failure of item i, if any.
func (v *Viewer) AssetErr(i int) error {
	if i < 0 || i >= len(v.assetErrs) || v.assetErrs[i] == nil {
		return nil
	}
	return v.assetErrs[i]
}

// MarkAssetLoaded records that item i's media is ready.
func (v *Viewer) MarkAssetLoaded(i int) error {
	if i < 0 || i >= len(v.assets) {
		return fmt.Errorf("mark asset %d: %w", i, ErrIndexOutOfRange)
	}
	v.assets[i] = LoadStateReady
	if v.carousel.ItemStatus(i) == StatusNone {
		return v.carousel.SetItemStatus(i, StatusReady)
	}
	return nil
}

// MarkAssetFailed moves item i to the error state. Siblings are unaffected
// and nothing is retried.
func (v *Viewer) MarkAssetFailed(i int, url string, err error) error {
	if i < 0 || i >= len(v.assets) {
		return fmt.Errorf("mark asset %d: %w", i, ErrIndexOutOfRange)
	}
	ae := &AssetError{Index: i, Frame: -1, URL: url, Err: err}
	v.assets[i] = LoadStateError
	v.assetErrs[i] = ae
	v.logger.Warn("asset failed", "err", ae)
	return nil
}

// MarkFrameLoaded records that frame f of spin item i is ready. Results
// for items that are no longer materialized are dropped.
func (v *Viewer) MarkFrameLoaded(i, f int) error {
	if i < 0 || i >= len(v.assets) {
		return fmt.Errorf("mark frame %d/%d: %w", i, f, ErrIndexOutOfRange)
	}
	s := v.surfaces[i]
	if s == nil || s.Spin == nil {
		return nil
	}
	return s.Spin.MarkFrameLoaded(f)
}

// MarkFrameFailed records that frame f of spin item i failed; the whole
// spin item enters the error state.
func (v *Viewer) MarkFrameFailed(i, f int, url string, err error) error {
	if i < 0 || i >= len(v.assets) {
		return fmt.Errorf("mark frame %d/%d: %w", i, f, ErrIndexOutOfRange)
	}
	v.assets[i] = LoadStateError
	v.assetErrs[i] = &AssetError{Index: i, Frame: f, URL: url, Err: err}
	v.logger.Warn("spin frame failed", "err", v.assetErrs[i])
	s := v.surfaces[i]
	if s == nil || s.Spin == nil {
		return nil
	}
	return s.Spin.MarkFrameFailed(f, err)
}

// --- Frame update ---

// Update processes one frame: the test runner, injected or real input, then
// timers and animations at now.
func (v *Viewer) Update(now time.Duration, in FrameInput) {
	var stats debugStats
	var t0 time.Time
	if v.debug {
		t0 = time.Now()
	}

	if v.testRunner != nil {
		v.testRunner.step(v)
	}
	stats.injected = v.processInjectedInput(now, in.Modifiers)
	if !stats.injected {
		for _, p := range in.Pointers {
			v.dispatcher.ProcessPointer(p.ID, p.X, p.Y, p.Pressed, in.Modifiers, now)
		}
	}
	if in.Wheel.DX != 0 || in.Wheel.DY != 0 {
		v.dispatcher.Wheel(in.Wheel.DX, in.Wheel.DY, in.Wheel.X, in.Wheel.Y, in.Modifiers)
	}
	for _, k := range in.Keys {
		v.pressKey(k)
	}

	if v.debug {
		stats.inputTime = time.Since(t0)
		t0 = time.Now()
	}
	v.loop.Tick(now)
	if v.debug {
		stats.tickTime = time.Since(t0)
		stats.pending = v.loop.Pending()
		stats.surfaces = len(v.surfaces)
		stats.transition = v.carousel.Transition()
		stats.trackOffset = v.carousel.TrackOffset()
		v.debugLog(stats)
	}
}

func (v *Viewer) pressKey(k Key) {
	if k == KeyEscape {
		switch {
		case v.gallery:
			v.SetGalleryOpen(false)
			return
		case v.extend && !v.zoomed():
			v.SetExtendMode(false)
			return
		}
	}
	if v.dispatcher.PressKey(k) {
		v.track("key", fmt.Sprint(k), "")
	}
}

func (v *Viewer) zoomed() bool {
	s := v.CurrentSurface()
	return s != nil && s.Transform != nil && s.Transform.Zoomed()
}

// State returns a summary of the viewer.
func (v *Viewer) State() ViewerState {
	st := ViewerState{
		Load:       v.loadState,
		Items:      v.catalog.Len(),
		Index:      v.carousel.CurrentIndex(),
		Transition: v.carousel.Transition(),
		Transform:  IdentityTransform,
		Extend:     v.extend,
		Hotspots:   v.hotspots,
		Gallery:    v.gallery,
		Owner:      v.dispatcher.Owner(),
	}
	if v.catalog.Len() > 0 {
		st.Category = v.catalog.CategoryAt(st.Index).ID
		st.Kind = v.catalog.Items[st.Index].Item.Kind
	}
	if s := v.CurrentSurface(); s != nil {
		if s.Transform != nil {
			st.Transform = s.Transform.State()
		}
		if s.Spin != nil {
			st.Frame = s.Spin.FrameIndex()
		}
	}
	return st
}

// Screenshot queues a labeled screenshot for the host to capture at the end
// of the next draw.
func (v *Viewer) Screenshot(label string) {
	v.screenshotQueue = append(v.screenshotQueue, label)
}

// TakeScreenshots returns and clears the queued screenshot labels.
func (v *Viewer) TakeScreenshots() []string {
	labels := v.screenshotQueue
	v.screenshotQueue = nil
	return labels
}

// Close tears the viewer down. No engine callback runs afterwards.
func (v *Viewer) Close() {
	v.dispatcher.Cancel()
	v.dispatcher.SetSurface(nil, nil)
	for i, s := range v.surfaces {
		s.close()
		delete(v.surfaces, i)
	}
	v.carousel.Close()
	v.loop.Close()
	v.events.Close()
}

// --- Internal wiring ---

func (v *Viewer) onIndexChange(i int) {
	v.hotspot = -1
	v.syncSurfaces()
	for j, s := range v.surfaces {
		if j == i {
			continue
		}
		if s.Transform != nil && s.Transform.Zoomed() {
			s.Transform.Reset(0)
		}
		if v.carousel.ItemStatus(j) == StatusRunning {
			v.setItemStatus(j, StatusReady)
		}
	}
	if s := v.surfaces[i]; s != nil && s.Spin != nil {
		s.Spin.StartAutoSpin()
	}
	v.emitItemChange(i)
	v.debugCheckSurfaces()
}

func (v *Viewer) onCarouselChange(st CarouselState) {
	if st.TargetIndex == v.lastTarget {
		return
	}
	v.lastTarget = st.TargetIndex
	v.syncSurfaces()
}

// syncSurfaces creates engines for newly materialized items and tears down
// those that left the window, then points the dispatcher at the current
// item.
func (v *Viewer) syncSurfaces() {
	if v.catalog == nil {
		return
	}
	for i, s := range v.surfaces {
		if !v.carousel.IsMaterialized(i) {
			s.close()
			delete(v.surfaces, i)
		}
	}
	for _, i := range v.carousel.Materialized() {
		if _, ok := v.surfaces[i]; ok {
			continue
		}
		s, err := v.newSurface(i)
		if err != nil {
			v.logger.Error("create surface", "item", i, "err", err)
			continue
		}
		v.surfaces[i] = s
	}
	if s := v.CurrentSurface(); s != nil {
		v.dispatcher.SetSurface(s.Transform, s.Spin)
	} else {
		v.dispatcher.SetSurface(nil, nil)
	}
}

func (v *Viewer) newSurface(i int) (*ItemSurface, error) {
	item := v.catalog.Items[i].Item
	s := &ItemSurface{Index: i, Item: item}
	if item.Kind.Zoomable() {
		t, err := NewTransformEngine(v.loop, v.slideSize(), TransformOptions{MaxZoom: v.cfg.MaxZoom})
		if err != nil {
			return nil, err
		}
		t.OnChange(func(TransformState) {
			if v.carousel.CurrentIndex() != i {
				return
			}
			switch {
			case t.Zoomed():
				v.setItemStatus(i, StatusRunning)
			case v.carousel.ItemStatus(i) == StatusRunning && v.dispatcher.Owner() != OwnerSpin:
				v.setItemStatus(i, StatusReady)
			}
		})
		s.Transform = t
	}
	if item.Kind == MediaSpin360 {
		sp, err := NewSpinEngine(v.loop, len(item.Frames), SpinOptions{
			Reverse:  v.cfg.ReverseSpin,
			AutoSpin: v.cfg.AutoSpin,
		})
		if err != nil {
			return nil, err
		}
		sp.OnLoadStateChange(func(ls LoadState) {
			if ls == LoadStateReady && v.carousel.ItemStatus(i) == StatusNone {
				v.setItemStatus(i, StatusReady)
			}
		})
		sp.OnChange(func(SpinState) {
			if v.carousel.CurrentIndex() == i && v.dispatcher.Owner() == OwnerSpin {
				v.setItemStatus(i, StatusRunning)
			}
		})
		if i == v.carousel.CurrentIndex() {
			sp.StartAutoSpin()
		}
		s.Spin = sp
	}
	return s, nil
}

func (v *Viewer) onTap(t Tap) {
	if t.Double || !v.hotspots {
		return
	}
	i := v.carousel.CurrentIndex()
	s := v.surfaces[i]
	if s == nil || !s.Item.Kind.SupportsHotspots() {
		return
	}
	v.hotspot = -1
	for j, h := range s.Item.Hotspots {
		p, _ := v.HotspotPosition(i, h)
		if p.Sub(Vec2{t.X, t.Y}).Len() <= hotspotHitRadius {
			v.hotspot = j
			v.track("hotspot", h.Title, fmt.Sprint(j))
			return
		}
	}
}

func (v *Viewer) setItemStatus(i int, st InteractionStatus) {
	if err := v.carousel.SetItemStatus(i, st); err != nil {
		v.logger.Debug("item status", "item", i, "status", st, "err", err)
	}
}

func (v *Viewer) emitItemChange(i int) {
	if v.catalog == nil || i < 0 || i >= v.catalog.Len() {
		return
	}
	v.emit(EventItemChange, ItemChange{Index: i, Item: v.catalog.Items[i].Item})
}

func (v *Viewer) emit(id EventID, payload any) {
	ev := v.events.Emit(id, payload)
	if v.sink != nil {
		v.sink.EmitEvent(ev)
	}
	if v.debug {
		v.logger.Debug("event", "name", ev.Name)
	}
}

func (v *Viewer) track(name, field, value string) {
	if v.analytics == nil || v.catalog == nil {
		return
	}
	i := v.carousel.CurrentIndex()
	r := AnalyticsRecord{
		Index:  i,
		Action: AnalyticsAction{Name: name, Field: field, Value: value},
	}
	if i < v.catalog.Len() {
		r.Category = v.catalog.CategoryAt(i).ID
		r.ItemKind = v.catalog.Items[i].Item.Kind
	}
	v.analytics.Record(r)
}
