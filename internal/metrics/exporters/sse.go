package exporters

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/smazurov/indicatord/internal/events"
	"github.com/smazurov/indicatord/internal/metrics"
)

// EventPublisher interface for publishing events.
type EventPublisher interface {
	Publish(ev events.Event)
}

// SSEExporter publishes LED activity totals on the event bus so that SSE
// clients receive them.
type SSEExporter struct {
	eventBus EventPublisher
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	last metrics.LEDStats
	sent bool
}

// NewSSEExporter creates a new SSE exporter.
func NewSSEExporter(eventBus EventPublisher) *SSEExporter {
	return &SSEExporter{
		eventBus: eventBus,
		interval: 1 * time.Second,
	}
}

// Start begins the SSE export loop.
func (s *SSEExporter) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run()
}

// Stop stops the SSE exporter and waits for the goroutine to finish.
func (s *SSEExporter) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *SSEExporter) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.publishMetrics()
		}
	}
}

// publishMetrics sends the totals when they changed since the last tick.
func (s *SSEExporter) publishMetrics() {
	m := metrics.GetLEDStats()
	if s.sent && m == s.last {
		return
	}
	s.last, s.sent = m, true

	s.eventBus.Publish(events.LEDMetricsEvent{
		EventType:      "led_metrics",
		Requests:       strconv.FormatUint(m.Requests, 10),
		Writes:         strconv.FormatUint(m.Writes, 10),
		WriteErrors:    strconv.FormatUint(m.WriteErrors, 10),
		Transitions:    strconv.FormatUint(m.Transitions, 10),
		BreathSteps:    strconv.FormatUint(m.BreathSteps, 10),
		BacklightLevel: strconv.Itoa(m.BacklightLevel),
	})
}

// GetEventTypes returns the SSE event types this exporter emits.
func GetEventTypes() map[string]any {
	return map[string]any{
		"led-metrics": events.LEDMetricsEvent{},
	}
}

// GetEventTypesForEndpoint returns event types for a specific SSE endpoint.
func GetEventTypesForEndpoint(endpoint string) map[string]any {
	switch endpoint {
	case "events", "metrics":
		return GetEventTypes()
	default:
		return map[string]any{}
	}
}
