// Package host runs a showcase.Viewer in an ebiten window. It samples mouse,
// touch, wheel and keyboard input, loads media concurrently, and draws the
// carousel track with each item's zoom and spin state applied.
package host

import (
	"errors"
	"time"

	"github.com/phanxgames/showcase"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig holds optional parameters for Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// ShowFPS draws the actual FPS and TPS in the top-left corner.
	ShowFPS bool
	// ScreenshotDir receives PNGs queued with Viewer.Screenshot.
	ScreenshotDir string
	// Script, if set, is attached to the viewer and the window closes once
	// it has run.
	Script *showcase.TestRunner
	// Fetcher loads media; nil uses showcase.HTTPFetcher.
	Fetcher         showcase.CatalogFetcher
	LoadConcurrency int
	Logger          *log.Logger
}

func (c RunConfig) withDefaults() RunConfig {
	if c.Title == "" {
		c.Title = "Showcase"
	}
	if c.Width <= 0 || c.Height <= 0 {
		c.Width, c.Height = 960, 640
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "screenshots"
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return c
}

// Run opens a window and drives v until the window closes or the script
// finishes. v should already hold a loaded composition.
func Run(v *showcase.Viewer, cfg RunConfig) error {
	cfg = cfg.withDefaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g := newGame(v, cfg)
	defer g.close()
	if cfg.Script != nil {
		v.SetTestRunner(cfg.Script)
	}
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// game implements ebiten.Game for a viewer.
type game struct {
	v      *showcase.Viewer
	cfg    RunConfig
	loader *AssetLoader
	input  sampler
	now    time.Duration

	screenW, screenH int
	applied          showcase.Size
	catalog          *showcase.ResolvedCatalog
	widths           map[int]int
	subs             []showcase.Subscription
}

func newGame(v *showcase.Viewer, cfg RunConfig) *game {
	g := &game{
		v:       v,
		cfg:     cfg,
		loader:  NewAssetLoader(cfg.Fetcher, cfg.LoadConcurrency),
		widths:  make(map[int]int),
		screenW: cfg.Width,
		screenH: cfg.Height,
	}
	if v.Config().ExtendBehavior == showcase.ExtendFullscreen {
		g.subs = append(g.subs,
			v.Events().On(showcase.EventExtendModeOn, func(showcase.Event) { ebiten.SetFullscreen(true) }),
			v.Events().On(showcase.EventExtendModeOff, func(showcase.Event) { ebiten.SetFullscreen(false) }),
		)
	}
	return g
}

func (g *game) close() {
	for _, s := range g.subs {
		s.Remove()
	}
	if err := g.loader.Close(); err != nil {
		g.cfg.Logger.Warn("asset loader", "err", err)
	}
}

// Layout implements ebiten.Game. The viewer is resized on the next Update.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.screenW, g.screenH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Update implements ebiten.Game.
func (g *game) Update() error {
	g.now += time.Second / time.Duration(ebiten.TPS())

	size := showcase.Size{Width: float64(g.screenW), Height: float64(g.screenH)}
	if size != g.applied {
		g.applied = size
		clear(g.widths)
		g.v.Resize(size, showcase.ViewportMetrics{
			PlayerInViewportWidthRatio: 1,
			IsFullscreen:               ebiten.IsFullscreen(),
		})
	}

	g.v.Update(g.now, g.input.sample())
	g.loader.Drain(g.v)
	g.requestAssets()

	if g.cfg.Script != nil && g.cfg.Script.Done() {
		for _, err := range g.cfg.Script.Errs() {
			g.cfg.Logger.Warn("script", "err", err)
		}
		return ebiten.Termination
	}
	return nil
}

// requestAssets queues downloads for every materialized item that is still
// loading.
func (g *game) requestAssets() {
	cat := g.v.Catalog()
	if cat != g.catalog {
		g.catalog = cat
		clear(g.widths)
		g.loader.Reset()
	}
	if cat == nil {
		return
	}
	for _, i := range g.v.Carousel().Materialized() {
		if g.v.AssetState(i) != showcase.LoadStateLoading {
			continue
		}
		for _, req := range g.requestsFor(i) {
			if g.loader.Image(req.URL) != nil {
				g.loader.apply(g.v, AssetResult{AssetRequest: req})
				continue
			}
			g.loader.Request(req)
		}
	}
}

// requestsFor lists the files item i needs at the current window width.
// Items without a file are marked loaded immediately.
func (g *game) requestsFor(i int) []AssetRequest {
	item := g.catalog.Items[i].Item
	w := g.mediaWidth(i)
	switch item.Kind {
	case showcase.MediaSpin360:
		reqs := make([]AssetRequest, len(item.Frames))
		for f := range item.Frames {
			reqs[f] = AssetRequest{Index: i, Frame: f, URL: item.FrameSource(f, w)}
		}
		return reqs
	case showcase.MediaVideo:
		if item.Poster != "" {
			return []AssetRequest{{Index: i, Frame: -1, URL: showcase.SourceFor(item.Poster, w)}}
		}
	case showcase.MediaCustom:
	default:
		return []AssetRequest{{Index: i, Frame: -1, URL: showcase.SourceFor(item.Src, w)}}
	}
	_ = g.v.MarkAssetLoaded(i)
	return nil
}

// mediaWidth returns the rendition width for item i, resolving it once per
// window size.
func (g *game) mediaWidth(i int) int {
	if w, ok := g.widths[i]; ok {
		return w
	}
	w := 0
	if res, err := g.v.Widths(i); err == nil {
		w = res.Select(float64(g.screenW))
	}
	g.widths[i] = w
	return w
}

// itemURL returns the file drawn for item i right now.
func (g *game) itemURL(i int, item showcase.MediaItem) string {
	w := g.mediaWidth(i)
	switch item.Kind {
	case showcase.MediaSpin360:
		frame := 0
		if s := g.v.Surface(i); s != nil && s.Spin != nil {
			frame = s.Spin.FrameIndex()
		}
		return item.FrameSource(frame, w)
	case showcase.MediaVideo:
		if item.Poster == "" {
			return ""
		}
		return showcase.SourceFor(item.Poster, w)
	case showcase.MediaCustom:
		return ""
	}
	return showcase.SourceFor(item.Src, w)
}
