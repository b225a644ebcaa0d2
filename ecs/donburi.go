package ecs

import (
	"github.com/phanxgames/showcase"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// ViewerEventType is the Donburi event type for showcase viewer events.
// Subscribe to this in your ECS systems to receive item changes and mode
// toggles.
var ViewerEventType = events.NewEventType[showcase.Event]()

type donburiSink struct {
	world donburi.World
	only  map[showcase.EventID]bool
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Viewer
// events are published to ViewerEventType and can be consumed with
// events.Subscribe and ProcessEvents. With ids given, only those events
// are forwarded.
func NewDonburiSink(world donburi.World, ids ...showcase.EventID) showcase.EventSink {
	s := &donburiSink{world: world}
	if len(ids) > 0 {
		s.only = make(map[showcase.EventID]bool, len(ids))
		for _, id := range ids {
			s.only[id] = true
		}
	}
	return s
}

func (s *donburiSink) EmitEvent(event showcase.Event) {
	if s.only != nil && !s.only[event.ID] {
		return
	}
	ViewerEventType.Publish(s.world, event)
}
