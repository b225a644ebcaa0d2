package showcase

import (
	"testing"
	"time"
)

type dispatchFixture struct {
	loop      *FrameLoop
	carousel  *CarouselController
	transform *TransformEngine
	spin      *SpinEngine
	d         *InteractionDispatcher
}

func newDispatchFixture(t *testing.T, withSpin bool) *dispatchFixture {
	t.Helper()
	l, c := newTestCarousel(t, 3, CarouselOptions{})
	tr, err := NewTransformEngine(l, Size{Width: 500, Height: 300}, TransformOptions{MaxZoom: 4})
	if err != nil {
		t.Fatal(err)
	}
	f := &dispatchFixture{loop: l, carousel: c, transform: tr}
	if withSpin {
		f.spin, err = NewSpinEngine(l, 36, SpinOptions{})
		if err != nil {
			t.Fatal(err)
		}
	}
	f.d = NewInteractionDispatcher(c, DispatcherOptions{})
	f.d.SetSurface(f.transform, f.spin)
	return f
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestDispatcherTapInsideDeadZone(t *testing.T) {
	f := newDispatchFixture(t, false)
	var taps []Tap
	f.d.OnTap(func(tp Tap) { taps = append(taps, tp) })

	f.d.PointerDown(0, 100, 100, ms(0))
	f.d.PointerMove(0, 103, 100, ms(16))
	f.d.PointerUp(0, 103, 100, ms(32))

	if len(taps) != 1 || taps[0].X != 103 {
		t.Fatalf("taps = %+v", taps)
	}
	if f.d.Owner() != OwnerNone || f.carousel.Busy() {
		t.Error("a tap should not start a gesture")
	}
}

func TestDispatcherCarouselDrag(t *testing.T) {
	f := newDispatchFixture(t, false)
	var owners []Owner
	f.d.OnOwnerChange(func(o Owner) { owners = append(owners, o) })

	f.d.PointerDown(0, 400, 100, ms(0))
	f.d.PointerMove(0, 390, 100, ms(100))
	if f.d.Owner() != OwnerCarousel {
		t.Fatalf("owner = %v, want carousel", f.d.Owner())
	}
	// The distance covered inside the dead zone is forwarded too.
	assertNear(t, "slot", f.carousel.Slot(), 10.0/500)

	f.d.PointerMove(0, 200, 100, ms(1000))
	f.d.PointerUp(0, 200, 100, ms(1100))
	f.loop.Run(frame, 1000)

	if f.carousel.CurrentIndex() != 1 {
		t.Errorf("index = %d, want 1", f.carousel.CurrentIndex())
	}
	if len(owners) != 2 || owners[0] != OwnerCarousel || owners[1] != OwnerNone {
		t.Errorf("owner changes = %v", owners)
	}
}

func TestDispatcherZoomedDragPans(t *testing.T) {
	f := newDispatchFixture(t, true)
	f.transform.SetZoom(2, Vec2{250, 150}, 0)
	before := f.transform.State()

	f.d.PointerDown(0, 250, 150, ms(0))
	f.d.PointerMove(0, 270, 150, ms(100))
	if f.d.Owner() != OwnerTransform {
		t.Fatalf("owner = %v, zoomed surface should own the drag", f.d.Owner())
	}
	assertNear(t, "translate x", f.transform.State().TranslateX, before.TranslateX+20)
	if f.spin.FrameIndex() != 0 || f.carousel.Slot() != 0 {
		t.Error("a non-owner engine received the delta")
	}
}

func TestDispatcherSpinDrag(t *testing.T) {
	f := newDispatchFixture(t, true)
	f.d.PointerDown(0, 100, 100, ms(0))
	f.d.PointerMove(0, 200, 100, ms(100))
	if f.d.Owner() != OwnerSpin {
		t.Fatalf("owner = %v, want spin", f.d.Owner())
	}
	if f.spin.FrameIndex() == 0 {
		t.Error("spin did not turn")
	}
	if f.carousel.Slot() != 0 {
		t.Error("carousel moved during a spin drag")
	}
	f.d.PointerUp(0, 200, 100, ms(2000))
	if f.d.Owner() != OwnerNone {
		t.Errorf("owner after release = %v", f.d.Owner())
	}
}

func TestDispatcherSecondPointerIgnoredWhileOwned(t *testing.T) {
	f := newDispatchFixture(t, false)
	f.d.PointerDown(0, 400, 100, ms(0))
	f.d.PointerMove(0, 380, 100, ms(16))
	f.d.PointerDown(1, 100, 100, ms(20))
	f.d.PointerMove(1, 50, 100, ms(40))
	assertNear(t, "slot", f.carousel.Slot(), 20.0/500)
}

func TestDispatcherPinch(t *testing.T) {
	f := newDispatchFixture(t, false)
	var taps int
	f.d.OnTap(func(Tap) { taps++ })

	f.d.PointerDown(1, 200, 150, ms(0))
	f.d.PointerDown(2, 300, 150, ms(0))
	if !f.d.Pinching() {
		t.Fatal("two touches should pinch")
	}
	f.d.PointerMove(2, 400, 150, ms(16))
	assertNear(t, "scale", f.transform.State().Scale, 2)

	f.d.PointerUp(2, 400, 150, ms(32))
	f.d.PointerUp(1, 200, 150, ms(48))
	if taps != 0 {
		t.Errorf("pinch release produced %d taps", taps)
	}
	if f.d.Pinching() {
		t.Error("pinch still active")
	}
}

func TestDispatcherDoubleTapZoom(t *testing.T) {
	f := newDispatchFixture(t, false)
	var doubles int
	f.d.OnTap(func(tp Tap) {
		if tp.Double {
			doubles++
		}
	})
	tap := func(at time.Duration) {
		f.d.PointerDown(0, 250, 150, at)
		f.d.PointerUp(0, 250, 150, at+ms(50))
	}
	tap(0)
	tap(ms(200))
	f.loop.Run(frame, 1000)
	if doubles != 1 {
		t.Errorf("double taps = %d", doubles)
	}
	assertNear(t, "scale", f.transform.State().Scale, defaultDoubleTapScale)

	tap(ms(2000))
	tap(ms(2200))
	f.loop.Run(frame, 1000)
	assertNear(t, "scale after second double tap", f.transform.State().Scale, 1)

	tap(ms(5000))
	tap(ms(6000))
	if doubles != 2 {
		t.Errorf("slow taps counted as double: %d", doubles)
	}
}

func TestDispatcherWheel(t *testing.T) {
	t.Run("ctrl zooms", func(t *testing.T) {
		f := newDispatchFixture(t, false)
		if got := f.d.Wheel(0, -200, 250, 150, ModCtrl); got != OwnerTransform {
			t.Errorf("owner = %v", got)
		}
		if f.transform.State().Scale <= 1 {
			t.Error("ctrl+wheel up should zoom in")
		}
	})
	t.Run("zoomed pans", func(t *testing.T) {
		f := newDispatchFixture(t, false)
		f.transform.SetZoom(2, Vec2{250, 150}, 0)
		before := f.transform.State()
		f.d.Wheel(0, 30, 250, 150, 0)
		assertNear(t, "translate y", f.transform.State().TranslateY, before.TranslateY-30)
	})
	t.Run("spin turns", func(t *testing.T) {
		f := newDispatchFixture(t, true)
		if got := f.d.Wheel(0, 400, 0, 0, 0); got != OwnerSpin {
			t.Errorf("owner = %v", got)
		}
		if f.spin.FrameIndex() == 0 {
			t.Error("wheel did not turn the spin")
		}
	})
	t.Run("horizontal steps carousel", func(t *testing.T) {
		f := newDispatchFixture(t, false)
		f.d.Wheel(30, 0, 0, 0, 0)
		if f.carousel.Busy() {
			t.Error("stepped before the threshold")
		}
		f.d.Wheel(40, 0, 0, 0, 0)
		if f.carousel.TargetIndex() != 1 {
			t.Errorf("target = %d, want 1", f.carousel.TargetIndex())
		}
	})
	t.Run("vertical on a plain image is ignored", func(t *testing.T) {
		f := newDispatchFixture(t, false)
		if got := f.d.Wheel(0, 100, 0, 0, 0); got != OwnerNone {
			t.Errorf("owner = %v", got)
		}
	})
}

func TestDispatcherKeys(t *testing.T) {
	f := newDispatchFixture(t, false)
	if f.d.PressKey(KeyLeft) {
		t.Error("left at the first item should be ignored")
	}
	if !f.d.PressKey(KeyRight) {
		t.Error("right ignored")
	}
	f.loop.Run(frame, 1000)
	if f.d.PressKey(KeyZoomOut) || f.d.PressKey(KeyEscape) {
		t.Error("zoom out and escape need a zoomed surface")
	}
	if !f.d.PressKey(KeyZoomIn) {
		t.Error("zoom in ignored")
	}
	f.loop.Run(frame, 1000)
	if !f.transform.Zoomed() {
		t.Fatal("not zoomed")
	}
	if !f.d.PressKey(KeyEscape) {
		t.Error("escape ignored")
	}
	f.loop.Run(frame, 1000)
	if f.transform.Zoomed() {
		t.Error("escape did not reset zoom")
	}
}

func TestDispatcherDetachedOwnerDropped(t *testing.T) {
	f := newDispatchFixture(t, true)
	f.d.PointerDown(0, 100, 100, ms(0))
	f.d.PointerMove(0, 200, 100, ms(100))
	f.d.SetSurface(nil, nil)
	if f.d.Owner() != OwnerNone {
		t.Errorf("owner = %v after the surface was detached", f.d.Owner())
	}
}

func TestDispatcherCancel(t *testing.T) {
	f := newDispatchFixture(t, false)
	f.d.PointerDown(0, 400, 100, ms(0))
	f.d.PointerMove(0, 100, 100, ms(10))
	f.d.Cancel()
	f.loop.Run(frame, 1000)
	if f.d.Owner() != OwnerNone {
		t.Errorf("owner = %v", f.d.Owner())
	}
	// Without momentum the 300px drag still commits on distance.
	if f.carousel.CurrentIndex() != 1 {
		t.Errorf("index = %d, want 1", f.carousel.CurrentIndex())
	}
}

func TestDispatcherGesturesStopAutoSpin(t *testing.T) {
	tests := []struct {
		name    string
		zoomed  bool
		gesture func(f *dispatchFixture, at time.Duration)
	}{
		{"ctrl wheel", false, func(f *dispatchFixture, _ time.Duration) {
			f.d.Wheel(0, -2, 250, 150, ModCtrl)
		}},
		{"zoomed wheel", true, func(f *dispatchFixture, _ time.Duration) {
			f.d.Wheel(10, 0, 250, 150, 0)
		}},
		{"pinch", false, func(f *dispatchFixture, at time.Duration) {
			f.d.PointerDown(1, 200, 150, at)
			f.d.PointerDown(2, 300, 150, at)
			f.d.PointerMove(2, 350, 150, at+ms(16))
			f.d.PointerUp(2, 350, 150, at+ms(32))
			f.d.PointerUp(1, 200, 150, at+ms(32))
		}},
		{"zoomed drag", true, func(f *dispatchFixture, at time.Duration) {
			f.d.PointerDown(0, 250, 150, at)
			f.d.PointerMove(0, 230, 150, at+ms(16))
			f.d.PointerUp(0, 230, 150, at+ms(200))
		}},
		{"tap", false, func(f *dispatchFixture, at time.Duration) {
			f.d.PointerDown(0, 250, 150, at)
			f.d.PointerUp(0, 250, 150, at+ms(50))
		}},
	}
	for _, tt := range tests {
		for _, turning := range []bool{false, true} {
			name := tt.name + "/pending"
			if turning {
				name = tt.name + "/turning"
			}
			t.Run(name, func(t *testing.T) {
				f := newDispatchFixture(t, false)
				spin, err := NewSpinEngine(f.loop, 36, SpinOptions{AutoSpin: true})
				if err != nil {
					t.Fatal(err)
				}
				f.spin = spin
				f.d.SetSurface(f.transform, f.spin)
				if tt.zoomed {
					f.transform.SetZoom(2, Vec2{250, 150}, 0)
				}

				f.spin.StartAutoSpin()
				if turning {
					// Past the start delay and into the rotation.
					for range 60 {
						f.loop.Advance(frame)
					}
					if f.spin.FrameIndex() == 0 {
						t.Fatal("auto-spin did not start turning")
					}
				}

				changes := 0
				f.spin.OnChange(func(SpinState) { changes++ })
				tt.gesture(f, f.loop.Now())
				f.loop.Run(frame, 400)

				if changes != 0 {
					t.Errorf("auto-spin changed the frame %d times after the gesture", changes)
				}
				if f.spin.AutoSpinPending() {
					t.Error("auto-spin still pending")
				}
			})
		}
	}
}
