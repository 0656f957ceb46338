package api

import (
	"context"
	"maps"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/indicatord/internal/events"
	"github.com/smazurov/indicatord/internal/metrics/exporters"
)

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream of LED state changes, pattern reloads, backlight changes and LED metrics",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func() map[string]any {
		eventTypes := map[string]any{
			"led-state":         events.LEDStateChangedEvent{},
			"patterns-reloaded": events.PatternsReloadedEvent{},
			"backlight":         events.BacklightChangedEvent{},
		}

		maps.Copy(eventTypes, exporters.GetEventTypesForEndpoint("events"))

		return eventTypes
	}(), func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 10)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.LEDStateChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.PatternsReloadedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.BacklightChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.LEDMetricsEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// Initial state so clients need no separate GET
		if s.options.LED != nil {
			snap, err := s.options.LED.Snapshot(ctx)
			if err == nil {
				if err := send.Data(snap.Event("connect")); err != nil {
					return
				}
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
