package events

import "github.com/kelindar/event"

// SubscribeToChannel forwards every published T into ch until the returned
// function is called. The SSE handlers behind /api/events, /api/logs/stream
// and /api/metrics select over ch together with the client's context.
//
// A client that stops reading fills ch; further events for it are dropped
// so that a slow browser never stalls the LED loop that publishes them.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- any) func() {
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case ch <- e:
		default:
		}
	})
}
