package ecs

import (
	"github.com/phanxgames/maskedit"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// EditorEventType is the Donburi event type for maskedit session events.
var EditorEventType = events.NewEventType[maskedit.Event]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Session
// events are published to EditorEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) maskedit.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) HandleEvent(event maskedit.Event) {
	EditorEventType.Publish(s.world, event)
}
