// Package showcase is the engine of a product media viewer: a carousel of
// images, videos, 360 spins and interior panoramas with zoom, pan,
// hotspots and breakpoint-aware image selection.
//
// The package has no rendering of its own. A host samples input, calls
// [Viewer.Update] once per frame and draws from the engine state. The
// showcase/host package does this in an [Ebitengine] window.
//
// # Quick start
//
//	v, err := showcase.NewViewer(showcase.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer v.Close()
//	if err := v.Load(ctx, showcase.HTTPFetcher{}, "https://cdn.example/catalog.json"); err != nil {
//		return err
//	}
//	v.Resize(showcase.Size{Width: 960, Height: 540}, showcase.ViewportMetrics{PlayerInViewportWidthRatio: 1})
//
//	// every frame
//	v.Update(now, input)
//
// # Catalog
//
// A [Composition] groups [MediaItem] values into categories. [ResolveCatalog]
// flattens them into the ordered list the carousel runs on, applying the
// category filter, host-provided [CustomItem] slots and the item cap.
//
// # Engines
//
// Each piece of state has exactly one owner. The [CarouselController] owns
// the current index and the slide track. A [TransformEngine] owns the zoom
// and pan of one item, and a [SpinEngine] owns the frame of one 360 item.
// The [InteractionDispatcher] routes every drag to a single owner and
// never mutates engine state directly.
//
// Animations run on a [Scheduler]. [FrameLoop] is the manual implementation
// used by the viewer; tests step it with a fake clock. Tweens are driven by
// [gween].
//
// # Events
//
// Outbound notifications go through the viewer's [EventBus] and, if set,
// an [EventSink]. The showcase/ecs package bridges them into a [Donburi]
// world.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package showcase
