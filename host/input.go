package host

import (
	"github.com/phanxgames/showcase"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const maxPointers = 10 // pointer 0 = mouse, 1-9 = touch

// keyMap binds ebiten keys to viewer keys.
var keyMap = []struct {
	from ebiten.Key
	to   showcase.Key
}{
	{ebiten.KeyArrowLeft, showcase.KeyLeft},
	{ebiten.KeyArrowRight, showcase.KeyRight},
	{ebiten.KeyEqual, showcase.KeyZoomIn},
	{ebiten.KeyNumpadAdd, showcase.KeyZoomIn},
	{ebiten.KeyMinus, showcase.KeyZoomOut},
	{ebiten.KeyNumpadSubtract, showcase.KeyZoomOut},
	{ebiten.KeyEscape, showcase.KeyEscape},
}

// sampler turns ebiten's polled input into a showcase.FrameInput.
type sampler struct {
	touchIDs  []ebiten.TouchID
	touchMap  [maxPointers]ebiten.TouchID
	touchUsed [maxPointers]bool
	touchLast [maxPointers][2]float64
	pointers  []showcase.PointerSample
	keys      []showcase.Key
}

// sample reads this tick's input. The returned slices are reused on the
// next call.
func (s *sampler) sample() showcase.FrameInput {
	s.pointers = s.pointers[:0]
	s.keys = s.keys[:0]

	mx, my := ebiten.CursorPosition()
	s.pointers = append(s.pointers, showcase.PointerSample{
		ID: 0, X: float64(mx), Y: float64(my),
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
	})
	s.sampleTouches()

	for _, k := range keyMap {
		if inpututil.IsKeyJustPressed(k.from) {
			s.keys = append(s.keys, k.to)
		}
	}

	wx, wy := ebiten.Wheel()
	return showcase.FrameInput{
		Pointers: s.pointers,
		// ebiten reports wheel in lines; the dispatcher expects pixels.
		Wheel:     showcase.WheelSample{DX: -wx * 40, DY: -wy * 40, X: float64(mx), Y: float64(my)},
		Keys:      s.keys,
		Modifiers: readModifiers(),
	}
}

// sampleTouches adds pointers 1-9 for active touches and a release for
// every touch that ended.
func (s *sampler) sampleTouches() {
	s.touchIDs = ebiten.AppendTouchIDs(s.touchIDs[:0])

	var active [maxPointers]bool
	for _, tid := range s.touchIDs {
		slot := s.touchSlot(tid)
		if slot < 0 {
			continue
		}
		active[slot] = true
		tx, ty := ebiten.TouchPosition(tid)
		s.touchLast[slot] = [2]float64{float64(tx), float64(ty)}
		s.pointers = append(s.pointers, showcase.PointerSample{
			ID: slot, X: float64(tx), Y: float64(ty), Pressed: true,
		})
	}
	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && !active[i] {
			last := s.touchLast[i]
			s.pointers = append(s.pointers, showcase.PointerSample{ID: i, X: last[0], Y: last[1]})
			s.touchUsed[i] = false
			s.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one. Returns -1 if full.
func (s *sampler) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && s.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !s.touchUsed[i] {
			s.touchUsed[i] = true
			s.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() showcase.KeyModifiers {
	var mods showcase.KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= showcase.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= showcase.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= showcase.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= showcase.ModMeta
	}
	return mods
}
