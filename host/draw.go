package host

import (
	"fmt"
	"image"
	"image/color"

	"github.com/phanxgames/showcase"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const hotspotSize = 12

var (
	backgroundColor  = color.RGBA{R: 0x23, G: 0x1e, B: 0x2d, A: 0xff}
	placeholderColor = color.RGBA{R: 0x3a, G: 0x35, B: 0x45, A: 0xff}
	errorColor       = color.RGBA{R: 0x7a, G: 0x2e, B: 0x2e, A: 0xff}
	hotspotColor     = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xd0}
	activeColor      = color.RGBA{R: 0xff, G: 0xb3, B: 0x33, A: 0xff}
)

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.White)
	}
	return whitePixelImage
}

// fillRect draws a solid rectangle by stretching the white pixel.
func fillRect(dst *ebiten.Image, x, y, w, h float64, c color.Color) {
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	dst.DrawImage(ensureWhitePixel(), &op)
}

// Draw implements ebiten.Game.
func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	if state, err := g.v.LoadState(); state != showcase.LoadStateReady {
		msg := "loading catalog..."
		if err != nil {
			msg = fmt.Sprintf("catalog failed: %v", err)
		}
		ebitenutil.DebugPrintAt(screen, msg, 8, g.screenH/2)
		flushScreenshots(screen, g.cfg.ScreenshotDir, g.v.TakeScreenshots(), g.cfg.Logger)
		return
	}

	c := g.v.Carousel()
	sw := c.SlideWidth()
	off := c.TrackOffset()
	for _, s := range c.VisibleSlots() {
		g.drawSlide(screen, c.SlotItem(s), float64(s)*sw+off, sw)
	}
	if g.v.HotspotsVisible() {
		g.drawHotspots(screen, float64(c.CurrentIndex())*sw+off)
	}

	st := g.v.State()
	status := fmt.Sprintf("%d/%d  %s  %s", st.Index+1, st.Items, st.Category, st.Kind)
	if st.Transform.Scale > 1 {
		status += fmt.Sprintf("  x%.2f", st.Transform.Scale)
	}
	ebitenutil.DebugPrintAt(screen, status, 8, g.screenH-20)
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}

	flushScreenshots(screen, g.cfg.ScreenshotDir, g.v.TakeScreenshots(), g.cfg.Logger)
}

// drawSlide draws item i into the slide whose left edge is at x.
func (g *game) drawSlide(screen *ebiten.Image, i int, x, sw float64) {
	h := float64(g.screenH)
	clip := image.Rect(int(x), 0, int(x+sw), g.screenH).Intersect(screen.Bounds())
	if clip.Empty() {
		return
	}
	dst := screen.SubImage(clip).(*ebiten.Image)

	cat := g.v.Catalog()
	if i < 0 || i >= cat.Len() {
		return
	}
	item := cat.Items[i].Item
	if g.v.AssetState(i) == showcase.LoadStateError {
		fillRect(dst, x, 0, sw, h, errorColor)
		ebitenutil.DebugPrintAt(dst, "failed to load", int(x)+8, g.screenH/2)
		return
	}
	img := g.loader.Image(g.itemURL(i, item))
	if img == nil {
		fillRect(dst, x, 0, sw, h, placeholderColor)
		label := item.Title
		if label == "" {
			label = item.Kind.String()
		}
		ebitenutil.DebugPrintAt(dst, label, int(x)+8, g.screenH/2)
		return
	}

	// Fit the image inside the slide, then apply the item's zoom and pan.
	b := img.Bounds()
	r := showcase.FitRect(showcase.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}, showcase.Size{Width: sw, Height: h})
	fit := r.Width / float64(b.Dx())
	var op ebiten.DrawImageOptions
	op.Filter = ebiten.FilterLinear
	op.GeoM.Scale(fit, fit)
	op.GeoM.Translate(r.X, r.Y)
	if s := g.v.Surface(i); s != nil && s.Transform != nil {
		t := s.Transform.State()
		op.GeoM.Scale(t.Scale, t.Scale)
		op.GeoM.Translate(t.TranslateX, t.TranslateY)
	}
	op.GeoM.Translate(x, 0)
	dst.DrawImage(img, &op)
}

// drawHotspots marks the current item's hotspots; x is the slide's left edge.
func (g *game) drawHotspots(screen *ebiten.Image, x float64) {
	i := g.v.Carousel().CurrentIndex()
	s := g.v.Surface(i)
	if s == nil || !s.Item.Kind.SupportsHotspots() {
		return
	}
	active, hasActive := g.v.ActiveHotspot()
	for _, h := range s.Item.Hotspots {
		p, _ := g.v.HotspotPosition(i, h)
		c := color.Color(hotspotColor)
		if hasActive && h == active {
			c = activeColor
			ebitenutil.DebugPrintAt(screen, h.Title, int(x+p.X)+hotspotSize, int(p.Y))
		}
		fillRect(screen, x+p.X-hotspotSize/2, p.Y-hotspotSize/2, hotspotSize, hotspotSize, c)
	}
}
