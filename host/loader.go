package host

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders
	_ "image/png"
	"sync"

	"github.com/phanxgames/showcase"

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// DefaultLoadConcurrency bounds in-flight media downloads.
const DefaultLoadConcurrency = 6

// AssetRequest identifies one media file: a whole item, or a single frame
// of a 360 item when Frame >= 0.
type AssetRequest struct {
	Index int
	Frame int
	URL   string
}

// AssetResult is a finished download. Image and Err are never both set.
type AssetResult struct {
	AssetRequest
	Image image.Image
	Err   error
}

// AssetLoader downloads and decodes media off the engine goroutine. Results
// are handed back through Drain, which applies them to the viewer on the
// goroutine that calls Viewer.Update.
type AssetLoader struct {
	fetcher showcase.CatalogFetcher
	ctx     context.Context
	cancel  context.CancelFunc
	group   *errgroup.Group
	jobs    chan AssetRequest
	results chan AssetResult
	pumpWG  sync.WaitGroup

	requested map[string]bool
	images    map[string]*ebiten.Image
}

// NewAssetLoader starts a loader with at most concurrency downloads in
// flight. A nil fetcher uses showcase.HTTPFetcher.
func NewAssetLoader(fetcher showcase.CatalogFetcher, concurrency int) *AssetLoader {
	if fetcher == nil {
		fetcher = showcase.HTTPFetcher{}
	}
	if concurrency <= 0 {
		concurrency = DefaultLoadConcurrency
	}
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	l := &AssetLoader{
		fetcher:   fetcher,
		ctx:       ctx,
		cancel:    cancel,
		group:     g,
		jobs:      make(chan AssetRequest, 256),
		results:   make(chan AssetResult, 256),
		requested: make(map[string]bool),
		images:    make(map[string]*ebiten.Image),
	}
	l.pumpWG.Add(1)
	go l.pump()
	return l
}

// pump feeds queued requests into the errgroup. Go blocks while the limit
// is reached, which keeps Request non-blocking for the caller.
func (l *AssetLoader) pump() {
	defer l.pumpWG.Done()
	for {
		select {
		case <-l.ctx.Done():
			return
		case req := <-l.jobs:
			l.group.Go(func() error {
				res := AssetResult{AssetRequest: req}
				res.Image, res.Err = l.load(req.URL)
				select {
				case l.results <- res:
				case <-l.ctx.Done():
				}
				// Per-asset failures are reported through results, never
				// through the group, so siblings keep loading.
				return nil
			})
		}
	}
}

func (l *AssetLoader) load(url string) (image.Image, error) {
	data, err := l.fetcher.Fetch(l.ctx, url)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return img, nil
}

// Request queues a download unless the same URL was requested before. It
// reports whether a new download was queued.
func (l *AssetLoader) Request(req AssetRequest) bool {
	if req.URL == "" || l.requested[req.URL] {
		return false
	}
	select {
	case l.jobs <- req:
		l.requested[req.URL] = true
		return true
	default:
		// Queue full; the next frame asks again.
		return false
	}
}

// Image returns the decoded image for url, or nil while it is loading.
func (l *AssetLoader) Image(url string) *ebiten.Image {
	return l.images[url]
}

// Drain applies every finished download to v. It must be called on the
// goroutine that drives v.
func (l *AssetLoader) Drain(v *showcase.Viewer) int {
	n := 0
	for {
		select {
		case res := <-l.results:
			l.apply(v, res)
			n++
		default:
			return n
		}
	}
}

func (l *AssetLoader) apply(v *showcase.Viewer, res AssetResult) {
	if res.Err != nil {
		if res.Frame >= 0 {
			_ = v.MarkFrameFailed(res.Index, res.Frame, res.URL, res.Err)
		} else {
			_ = v.MarkAssetFailed(res.Index, res.URL, res.Err)
		}
		return
	}
	// A nil image means the URL was already decoded for another request.
	if res.Image != nil {
		l.images[res.URL] = ebiten.NewImageFromImage(res.Image)
	}
	if img := l.images[res.URL]; img != nil {
		b := img.Bounds()
		_ = v.SetMediaSize(res.Index, showcase.Size{Width: float64(b.Dx()), Height: float64(b.Dy())})
	}
	if res.Frame >= 0 {
		_ = v.MarkFrameLoaded(res.Index, res.Frame)
	} else {
		_ = v.MarkAssetLoaded(res.Index)
	}
}

// Reset forgets every request so a re-resolved catalog loads afresh.
// Decoded images stay cached by URL.
func (l *AssetLoader) Reset() {
	clear(l.requested)
}

// Close cancels outstanding downloads and waits for the workers to exit.
func (l *AssetLoader) Close() error {
	l.cancel()
	l.pumpWG.Wait()
	return l.group.Wait()
}
