package showcase

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

// mapFetcher serves fixed catalog bodies by source.
type mapFetcher map[string]string

func (m mapFetcher) Fetch(_ context.Context, source string) ([]byte, error) {
	if data, ok := m[source]; ok {
		return []byte(data), nil
	}
	return nil, errors.New("no such catalog: " + source)
}

func newTestViewer(t *testing.T, cfg Config) *Viewer {
	t.Helper()
	v, err := NewViewer(cfg)
	if err != nil {
		t.Fatal(err)
	}
	v.SetLogger(log.New(io.Discard))
	v.Resize(Size{Width: 500, Height: 300}, ViewportMetrics{PlayerInViewportWidthRatio: 1})
	t.Cleanup(v.Close)
	return v
}

func loadedViewer(t *testing.T) *Viewer {
	t.Helper()
	v := newTestViewer(t, DefaultConfig())
	if err := v.SetComposition(mustParse(t, sampleCatalog)); err != nil {
		t.Fatal(err)
	}
	return v
}

// runFrames drives v for n frames of 16ms with no input.
func runFrames(v *Viewer, n int) {
	for range n {
		v.Update(v.Loop().Now()+frame, FrameInput{})
	}
}

func recordEvents(v *Viewer) *[]EventID {
	var ids []EventID
	v.Events().OnAny(func(e Event) { ids = append(ids, e.ID) })
	return &ids
}

func TestViewerLoadEvents(t *testing.T) {
	v := newTestViewer(t, DefaultConfig())
	ids := recordEvents(v)
	var names []string
	v.Events().On(EventItemChange, func(e Event) {
		names = append(names, e.Name)
		if ic := e.Payload.(ItemChange); ic.Index != 0 || ic.Item.Title != "Front" {
			t.Errorf("item change payload = %+v", ic)
		}
	})

	if err := v.Load(context.Background(), mapFetcher{"cat.json": sampleCatalog}, "cat.json"); err != nil {
		t.Fatal(err)
	}
	want := []EventID{EventCompositionLoading, EventCompositionLoaded, EventItemChange}
	if len(*ids) != len(want) {
		t.Fatalf("events = %v, want %v", *ids, want)
	}
	for i := range want {
		if (*ids)[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, (*ids)[i], want[i])
		}
	}
	if len(names) != 1 || names[0] != "showcase-item-change" {
		t.Errorf("names = %v", names)
	}
	if st, err := v.LoadState(); st != LoadStateReady || err != nil {
		t.Errorf("load state = %v, %v", st, err)
	}
	if v.Catalog().Len() != 6 {
		t.Errorf("items = %d, want 6", v.Catalog().Len())
	}
}

func TestViewerLoadFailure(t *testing.T) {
	v := newTestViewer(t, DefaultConfig())
	ids := recordEvents(v)
	err := v.Load(context.Background(), mapFetcher{}, "missing.json")
	if err == nil {
		t.Fatal("expected an error")
	}
	st, loadErr := v.LoadState()
	if st != LoadStateError || loadErr == nil {
		t.Errorf("load state = %v, %v", st, loadErr)
	}
	if last := (*ids)[len(*ids)-1]; last != EventCompositionLoadError {
		t.Errorf("last event = %v", last)
	}
	if _, err := v.CurrentItem(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("CurrentItem err = %v", err)
	}
	if err := v.JumpTo(0); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("JumpTo err = %v", err)
	}
}

func TestViewerSetCompositionInvalid(t *testing.T) {
	v := newTestViewer(t, DefaultConfig())
	if err := v.SetComposition(nil); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("nil: err = %v", err)
	}
	if err := v.SetComposition(&Composition{AspectRatio: "bad"}); !errors.Is(err, ErrInvalidComposition) {
		t.Errorf("invalid: err = %v", err)
	}
	if v.Composition() != nil {
		t.Error("invalid composition installed")
	}
}

func TestViewerNavigation(t *testing.T) {
	v := loadedViewer(t)
	var changes []int
	v.Events().On(EventItemChange, func(e Event) { changes = append(changes, e.Payload.(ItemChange).Index) })

	if v.Prev() {
		t.Error("prev at the first item without infinite should be ignored")
	}
	if !v.Next() {
		t.Fatal("next ignored")
	}
	runFrames(v, 60)
	if got := v.State(); got.Index != 1 || got.Category != "exterior" {
		t.Errorf("state = %+v", got)
	}
	if len(changes) != 1 || changes[0] != 1 {
		t.Errorf("item changes = %v", changes)
	}
}

func TestViewerSelectCategory(t *testing.T) {
	v := loadedViewer(t)
	if err := v.SelectCategory("interior"); err != nil {
		t.Fatal(err)
	}
	st := v.State()
	if st.Index != 4 || st.Kind != MediaInteriorPanorama || st.Transition != TransitionInstantJump {
		t.Errorf("state = %+v", st)
	}
	runFrames(v, 1)
	if v.State().Transition != TransitionNone {
		t.Error("instant jump lasted more than one frame")
	}
	if err := v.SelectCategory("trunk"); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestViewerSurfacesFollowWindow(t *testing.T) {
	v := loadedViewer(t)
	if v.Surface(0) == nil || v.Surface(1) == nil || v.Surface(2) != nil {
		t.Fatal("expected surfaces for items 0 and 1 only")
	}
	if v.Surface(0).Transform == nil || v.Surface(0).Spin != nil {
		t.Error("image surface should have a transform only")
	}
	if err := v.JumpTo(3); err != nil {
		t.Fatal(err)
	}
	runFrames(v, 1)
	if v.Surface(0) != nil {
		t.Error("item 0 left the window but kept its surface")
	}
	s := v.Surface(3)
	if s == nil || s.Spin == nil || s.Spin.FrameCount() != 4 {
		t.Fatalf("spin surface = %+v", s)
	}
	if v.Surface(4) == nil || v.Surface(4).Transform != nil {
		t.Error("panorama surface should exist without a transform")
	}
}

func TestViewerZoomResetOnLeave(t *testing.T) {
	v := loadedViewer(t)
	if !v.ZoomIn() {
		t.Fatal("image should be zoomable")
	}
	runFrames(v, 60)
	if !v.Surface(0).Transform.Zoomed() {
		t.Fatal("not zoomed")
	}
	if v.Carousel().ItemStatus(0) != StatusRunning {
		t.Errorf("status = %v, want running", v.Carousel().ItemStatus(0))
	}
	v.Next()
	runFrames(v, 60)
	if v.Surface(0).Transform.Zoomed() {
		t.Error("zoom kept after leaving the item")
	}
	if v.Carousel().ItemStatus(0) != StatusReady {
		t.Errorf("status = %v, want ready", v.Carousel().ItemStatus(0))
	}
}

func TestViewerZoomOnVideo(t *testing.T) {
	v := loadedViewer(t)
	_ = v.JumpTo(2)
	runFrames(v, 1)
	if v.ZoomIn() || v.ZoomOut() || v.ResetZoom() {
		t.Error("video should not zoom")
	}
}

func TestViewerToggles(t *testing.T) {
	v := loadedViewer(t)
	ids := recordEvents(v)
	if !v.SetExtendMode(true) || v.SetExtendMode(true) {
		t.Error("extend should change exactly once")
	}
	if !v.SetHotspotsVisible(true) || !v.SetGalleryOpen(true) {
		t.Error("toggle refused")
	}
	want := []EventID{EventExtendModeOn, EventHotspotsOn, EventGalleryOpen}
	if len(*ids) != len(want) {
		t.Fatalf("events = %v", *ids)
	}

	// Escape closes the gallery first, then leaves extend mode.
	esc := FrameInput{Keys: []Key{KeyEscape}}
	v.Update(v.Loop().Now()+frame, esc)
	if v.GalleryOpen() || !v.Extended() {
		t.Errorf("after first escape: gallery %v extend %v", v.GalleryOpen(), v.Extended())
	}
	v.Update(v.Loop().Now()+frame, esc)
	if v.Extended() {
		t.Error("second escape should leave extend mode")
	}
}

func TestViewerExtendDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExtendBehavior = ExtendDisabled
	v := newTestViewer(t, cfg)
	if v.SetExtendMode(true) {
		t.Error("extend entered while disabled")
	}
}

func TestViewerHotspotTap(t *testing.T) {
	v := loadedViewer(t)
	v.InjectClick(125, 150)
	runFrames(v, 2)
	if _, ok := v.ActiveHotspot(); ok {
		t.Error("hotspot selected while hidden")
	}

	// Wait out the double-tap window so the next click is a single tap.
	runFrames(v, 30)
	v.SetHotspotsVisible(true)
	v.InjectClick(128, 146)
	runFrames(v, 2)
	h, ok := v.ActiveHotspot()
	if !ok || h.Title != "Wheel" {
		t.Errorf("active hotspot = %+v, %v", h, ok)
	}

	v.SetHotspotsVisible(false)
	if _, ok := v.ActiveHotspot(); ok {
		t.Error("hiding hotspots should clear the selection")
	}
}

func TestViewerAssetStates(t *testing.T) {
	v := loadedViewer(t)
	if v.AssetState(0) != LoadStateLoading {
		t.Errorf("initial state = %v", v.AssetState(0))
	}
	if err := v.MarkAssetLoaded(0); err != nil {
		t.Fatal(err)
	}
	if v.AssetState(0) != LoadStateReady || v.Carousel().ItemStatus(0) != StatusReady {
		t.Error("item 0 not ready")
	}

	boom := errors.New("boom")
	_ = v.MarkAssetFailed(1, "ext2-800.jpg", boom)
	if v.AssetState(1) != LoadStateError || v.AssetState(0) != LoadStateReady {
		t.Error("a failure must stay scoped to its item")
	}
	var ae *AssetError
	if err := v.AssetErr(1); !errors.As(err, &ae) || ae.URL != "ext2-800.jpg" || !errors.Is(err, boom) {
		t.Errorf("AssetErr = %v", err)
	}
	if err := v.MarkAssetLoaded(9); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("err = %v", err)
	}
}

func TestViewerSpinFrames(t *testing.T) {
	v := loadedViewer(t)
	_ = v.SelectCategory("exterior-360")
	runFrames(v, 1)
	for f := range 4 {
		if v.AssetState(3) == LoadStateReady {
			t.Fatalf("ready after %d of 4 frames", f)
		}
		if err := v.MarkFrameLoaded(3, f); err != nil {
			t.Fatal(err)
		}
	}
	if v.AssetState(3) != LoadStateReady || v.Carousel().ItemStatus(3) != StatusReady {
		t.Errorf("state %v status %v", v.AssetState(3), v.Carousel().ItemStatus(3))
	}
}

func TestViewerSpinFrameFailure(t *testing.T) {
	v := loadedViewer(t)
	_ = v.SelectCategory("exterior-360")
	_ = v.MarkFrameLoaded(3, 0)
	_ = v.MarkFrameFailed(3, 2, "s2-800.jpg", errors.New("404"))
	if v.AssetState(3) != LoadStateError {
		t.Errorf("state = %v", v.AssetState(3))
	}
	var ae *AssetError
	if !errors.As(v.AssetErr(3), &ae) || ae.Frame != 2 {
		t.Errorf("AssetErr = %v", v.AssetErr(3))
	}
}

func TestViewerSetCustomItems(t *testing.T) {
	v := newTestViewer(t, DefaultConfig())
	custom := []CustomItem{{Index: -1, Item: MediaItem{Kind: MediaCustom, CustomID: "cta"}}}
	if err := v.SetCustomItems(custom); err != nil {
		t.Fatal(err)
	}
	if err := v.SetComposition(mustParse(t, sampleCatalog)); err != nil {
		t.Fatal(err)
	}
	if v.Catalog().Len() != 7 || !v.Catalog().Items[5].Custom {
		t.Fatalf("custom item not spliced before the last item: %+v", v.Catalog().Items)
	}
	if err := v.SetCustomItems(nil); err != nil {
		t.Fatal(err)
	}
	if v.Catalog().Len() != 6 {
		t.Errorf("items = %d after clearing custom items", v.Catalog().Len())
	}
}

func TestViewerSourceURL(t *testing.T) {
	v := loadedViewer(t)
	url, err := v.SourceURL(0, 500)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(url, "https://cdn.example/ext1-") || strings.Contains(url, "{width}") {
		t.Errorf("url = %q", url)
	}
	spin, err := v.SourceURL(3, 500)
	if err != nil || !strings.HasPrefix(spin, "s0-") {
		t.Errorf("spin url = %q, %v", spin, err)
	}
	if _, err := v.SourceURL(9, 500); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("err = %v", err)
	}
}

type sinkRecorder struct{ events []Event }

func (s *sinkRecorder) EmitEvent(e Event) { s.events = append(s.events, e) }

func TestViewerEventSink(t *testing.T) {
	v := newTestViewer(t, DefaultConfig())
	sink := &sinkRecorder{}
	v.SetEventSink(sink)
	_ = v.SetComposition(mustParse(t, sampleCatalog))
	if len(sink.events) != 2 || sink.events[0].ID != EventCompositionLoaded {
		t.Errorf("sink events = %+v", sink.events)
	}
}

func TestViewerAnalytics(t *testing.T) {
	v := loadedViewer(t)
	var mu sync.Mutex
	var got []AnalyticsRecord
	a := NewAnalytics(AnalyticsFunc(func(r AnalyticsRecord) {
		mu.Lock()
		got = append(got, r)
		mu.Unlock()
	}), 0)
	v.SetAnalytics(a)
	v.Next()
	v.SetGalleryOpen(true)
	a.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("records = %+v", got)
	}
	if got[0].Action != (AnalyticsAction{Name: "navigate", Field: "next"}) || got[0].Category != "exterior" {
		t.Errorf("first record = %+v", got[0])
	}
	if got[1].Action.Field != "gallery" || got[1].Session != a.Session() {
		t.Errorf("second record = %+v", got[1])
	}
}

func TestViewerClose(t *testing.T) {
	v := loadedViewer(t)
	v.Next()
	v.Close()
	if v.Loop().Pending() != 0 {
		t.Errorf("pending = %d after close", v.Loop().Pending())
	}
	runFrames(v, 5)
	if v.Carousel().CurrentIndex() != 0 {
		t.Error("slide completed after close")
	}
}

func TestViewerDebugMode(t *testing.T) {
	var buf strings.Builder
	cfg := DefaultConfig()
	cfg.Debug = true
	v := newTestViewer(t, cfg)
	v.SetLogger(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	_ = v.SetComposition(mustParse(t, sampleCatalog))
	v.Update(time.Millisecond, FrameInput{})
	out := buf.String()
	for _, want := range []string{"catalog resolved", "event", "update"} {
		if !strings.Contains(out, want) {
			t.Errorf("debug log missing %q:\n%s", want, out)
		}
	}
}

const panoramaCatalog = `{
  "aspectRatio": "16:9",
  "imageHdWidth": 1600,
  "categories": [
    {"id": "interior", "title": "Interior", "items": [
      {"type": "interior-360", "src": "https://cdn.example/pano.jpg",
       "hotspots": [{"x": 0.5, "y": 0.5, "title": "Seat"}]},
      {"type": "image", "src": "https://cdn.example/dash-{width}.jpg",
       "hotspots": [{"x": 0.5, "y": 0.5, "title": "Dash"}]}
    ]}
  ]
}`

func TestViewerPanoramaHotspotTap(t *testing.T) {
	v := newTestViewer(t, DefaultConfig())
	if err := v.SetComposition(mustParse(t, panoramaCatalog)); err != nil {
		t.Fatal(err)
	}
	if s := v.CurrentSurface(); s == nil || s.Transform != nil {
		t.Fatalf("panorama surface = %+v", s)
	}
	v.SetHotspotsVisible(true)
	v.InjectClick(250, 150)
	runFrames(v, 2)
	h, ok := v.ActiveHotspot()
	if !ok || h.Title != "Seat" {
		t.Errorf("active hotspot = %+v, %v", h, ok)
	}
	if p, ok := v.HotspotPosition(0, h); !ok || p != (Vec2{250, 150}) {
		t.Errorf("HotspotPosition = %v, %v", p, ok)
	}
}

func TestViewerHotspotFollowsMediaRect(t *testing.T) {
	v := loadedViewer(t)
	// A square image in the 500x300 slide is pillarboxed to x 100..400.
	if err := v.SetMediaSize(0, Size{Width: 600, Height: 600}); err != nil {
		t.Fatal(err)
	}
	if r := v.MediaRect(0); r != (Rect{X: 100, Width: 300, Height: 300}) {
		t.Errorf("MediaRect = %+v", r)
	}
	item, _ := v.CurrentItem()
	if p, _ := v.HotspotPosition(0, item.Hotspots[0]); p != (Vec2{175, 150}) {
		t.Errorf("HotspotPosition = %v", p)
	}

	v.SetHotspotsVisible(true)
	v.InjectClick(125, 150)
	runFrames(v, 30)
	if _, ok := v.ActiveHotspot(); ok {
		t.Error("tap at the full-slide position selected the hotspot")
	}
	v.InjectClick(175, 150)
	runFrames(v, 2)
	if h, ok := v.ActiveHotspot(); !ok || h.Title != "Wheel" {
		t.Errorf("active hotspot = %+v, %v", h, ok)
	}

	if err := v.SetMediaSize(42, Size{}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("err = %v", err)
	}
}

func TestFitRect(t *testing.T) {
	bounds := Size{Width: 400, Height: 200}
	tests := []struct {
		name  string
		media Size
		want  Rect
	}{
		{"same aspect", Size{800, 400}, Rect{0, 0, 400, 200}},
		{"taller", Size{100, 100}, Rect{100, 0, 200, 200}},
		{"wider", Size{800, 200}, Rect{0, 50, 400, 100}},
		{"unknown", Size{}, Rect{0, 0, 400, 200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FitRect(tt.media, bounds); got != tt.want {
				t.Errorf("FitRect(%v) = %+v, want %+v", tt.media, got, tt.want)
			}
		})
	}
}

func TestViewerZoomResetReturnsToReady(t *testing.T) {
	tests := []struct {
		name  string
		reset func(t *testing.T, v *Viewer)
	}{
		{"escape", func(_ *testing.T, v *Viewer) {
			v.Update(v.Loop().Now()+frame, FrameInput{Keys: []Key{KeyEscape}})
		}},
		{"reset zoom", func(t *testing.T, v *Viewer) {
			if !v.ResetZoom() {
				t.Error("ResetZoom ignored")
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := loadedViewer(t)
			if err := v.MarkAssetLoaded(0); err != nil {
				t.Fatal(err)
			}
			v.ZoomIn()
			runFrames(v, 60)
			if got := v.Carousel().ItemStatus(0); got != StatusRunning {
				t.Fatalf("zoomed status = %v, want running", got)
			}

			tt.reset(t, v)
			runFrames(v, 60)
			if v.CurrentSurface().Transform.Zoomed() {
				t.Fatal("still zoomed")
			}
			if got := v.Carousel().ItemStatus(0); got != StatusReady {
				t.Errorf("status after reset = %v, want ready", got)
			}
		})
	}
}
