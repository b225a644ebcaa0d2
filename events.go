package showcase

import "slices"

// remover is implemented by every observer registry that hands out
// Subscriptions.
type remover interface {
	remove(id uint32)
}

// Subscription allows removing a registered callback. The zero value is a
// valid no-op subscription.
type Subscription struct {
	id  uint32
	reg remover
}

// Remove unregisters the callback so it no longer fires. Removal is
// synchronous: once Remove returns the callback will not run again, even
// if a notification is in progress.
func (s Subscription) Remove() {
	if s.reg == nil {
		return
	}
	s.reg.remove(s.id)
}

type observer[T any] struct {
	id  uint32
	fn  func(T)
	off *bool
}

// observerList is a registry of typed callbacks. The slice is compacted on
// removal to avoid nil iteration waste.
type observerList[T any] struct {
	handlers []observer[T]
	nextID   uint32
}

func (l *observerList[T]) add(fn func(T)) Subscription {
	l.nextID++
	l.handlers = append(l.handlers, observer[T]{id: l.nextID, fn: fn, off: new(bool)})
	return Subscription{id: l.nextID, reg: l}
}

func (l *observerList[T]) remove(id uint32) {
	for i := range l.handlers {
		if l.handlers[i].id == id {
			*l.handlers[i].off = true
			l.handlers = slices.Delete(l.handlers, i, i+1)
			return
		}
	}
}

func (l *observerList[T]) notify(v T) {
	if len(l.handlers) == 0 {
		return
	}
	// Iterate a snapshot so callbacks may subscribe or unsubscribe.
	for _, h := range slices.Clone(l.handlers) {
		if *h.off {
			continue
		}
		h.fn(v)
	}
}

func (l *observerList[T]) clear() {
	for i := range l.handlers {
		*l.handlers[i].off = true
	}
	l.handlers = nil
}

// EventID identifies an outbound viewer event. The emitted name is the
// configured prefix followed by the id.
type EventID string

const (
	EventCompositionLoading   EventID = "composition-loading"    // payload: source URL (string)
	EventCompositionLoaded    EventID = "composition-loaded"     // payload: *Composition
	EventCompositionLoadError EventID = "composition-load-error" // payload: error
	EventItemChange           EventID = "item-change"            // payload: ItemChange
	EventExtendModeOn         EventID = "extend-mode-on"
	EventExtendModeOff        EventID = "extend-mode-off"
	EventHotspotsOn           EventID = "hotspots-on"
	EventHotspotsOff          EventID = "hotspots-off"
	EventGalleryOpen          EventID = "gallery-open"
	EventGalleryClose         EventID = "gallery-close"
)

// DefaultEventPrefix is used when no prefix is configured.
const DefaultEventPrefix = "showcase-"

// Event is a single outbound notification.
type Event struct {
	Name    string // prefixed event name
	ID      EventID
	Payload any
}

// ItemChange is the payload of EventItemChange.
type ItemChange struct {
	Index int
	Item  MediaItem
}

// EventSink is the interface for optional bridges (ECS worlds, host
// frameworks). When set on a Viewer, every emitted event is forwarded.
type EventSink interface {
	EmitEvent(event Event)
}

// EventBus is the typed outbound event stream of a viewer. Delivery is
// synchronous and in registration order.
type EventBus struct {
	prefix   string
	handlers map[EventID]*observerList[Event]
	all      observerList[Event]
}

// NewEventBus creates a bus that names events with prefix.
func NewEventBus(prefix string) *EventBus {
	return &EventBus{
		prefix:   prefix,
		handlers: make(map[EventID]*observerList[Event]),
	}
}

// Name returns the full, prefixed name of id.
func (b *EventBus) Name(id EventID) string {
	return b.prefix + string(id)
}

// On registers fn for a single event id.
func (b *EventBus) On(id EventID, fn func(Event)) Subscription {
	l, ok := b.handlers[id]
	if !ok {
		l = &observerList[Event]{}
		b.handlers[id] = l
	}
	return l.add(fn)
}

// OnAny registers fn for every event.
func (b *EventBus) OnAny(fn func(Event)) Subscription {
	return b.all.add(fn)
}

// Emit delivers an event to the id-specific handlers, then to the
// catch-all handlers, and returns it.
func (b *EventBus) Emit(id EventID, payload any) Event {
	ev := Event{Name: b.Name(id), ID: id, Payload: payload}
	if l, ok := b.handlers[id]; ok {
		l.notify(ev)
	}
	b.all.notify(ev)
	return ev
}

// Close drops every handler.
func (b *EventBus) Close() {
	for _, l := range b.handlers {
		l.clear()
	}
	clear(b.handlers)
	b.all.clear()
}
