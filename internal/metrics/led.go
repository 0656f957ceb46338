// Package metrics provides Prometheus metrics for the indicator LED and
// the display backlight.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/smazurov/indicatord/internal/led"
)

var (
	ledRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indicatord",
		Subsystem: "led",
		Name:      "requests_total",
		Help:      "Operations requested of the LED backend, including ones the sysfs cache skips",
	}, []string{"backend", "op"})

	ledWrites = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "indicatord",
		Subsystem: "led",
		Name:      "writes_total",
		Help:      "Writes that reached sysfs control files",
	})

	ledWriteErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indicatord",
		Subsystem: "led",
		Name:      "write_errors_total",
		Help:      "Failed sysfs operations",
	}, []string{"op"})

	ledTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indicatord",
		Subsystem: "led",
		Name:      "transitions_total",
		Help:      "LED style transitions",
	}, []string{"from", "to"})

	ledBreathSteps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indicatord",
		Subsystem: "led",
		Name:      "breath_steps_total",
		Help:      "Software breathing samples played",
	}, []string{"backend"})

	backlightLevel = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indicatord",
		Subsystem: "backlight",
		Name:      "level",
		Help:      "Display backlight level (0-255)",
	}, []string{"device"})

	backlightRaw = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indicatord",
		Subsystem: "backlight",
		Name:      "raw_brightness",
		Help:      "Raw value last written to the backlight brightness file",
	}, []string{"device"})

	// Local totals for SSE exporter access.
	stats   LEDStats
	statsMu sync.RWMutex
)

// LEDStats holds running totals since process start.
type LEDStats struct {
	Requests       uint64
	Writes         uint64
	WriteErrors    uint64
	Transitions    uint64
	BreathSteps    uint64
	BacklightLevel int
}

// LED records indicator and backlight activity. It satisfies led.Recorder
// and backlight.Recorder.
type LED struct{}

var _ led.Recorder = LED{}

// ObserveRequest counts one backend operation.
func (LED) ObserveRequest(backend, op string) {
	ledRequests.WithLabelValues(backend, op).Inc()
	updateStats(func(s *LEDStats) { s.Requests++ })
}

// ObserveSysfsWrite counts one write to a control file. It fits sysfs.WriteFunc.
func (LED) ObserveSysfsWrite(_ string) {
	ledWrites.Inc()
	updateStats(func(s *LEDStats) { s.Writes++ })
}

// ObserveTransition counts a style change.
func (LED) ObserveTransition(from, to led.Style) {
	ledTransitions.WithLabelValues(from.String(), to.String()).Inc()
	updateStats(func(s *LEDStats) { s.Transitions++ })
}

// ObserveBreathStep counts one breathing sample.
func (LED) ObserveBreathStep(backend string) {
	ledBreathSteps.WithLabelValues(backend).Inc()
	updateStats(func(s *LEDStats) { s.BreathSteps++ })
}

// ObserveSysfsError counts a failed sysfs operation. The path is not a
// label to keep cardinality bounded.
func (LED) ObserveSysfsError(_ string, op string) {
	ledWriteErrors.WithLabelValues(op).Inc()
	updateStats(func(s *LEDStats) { s.WriteErrors++ })
}

// ObserveBacklight records the applied backlight level.
func (LED) ObserveBacklight(device string, level, raw int) {
	backlightLevel.WithLabelValues(device).Set(float64(level))
	backlightRaw.WithLabelValues(device).Set(float64(raw))
	updateStats(func(s *LEDStats) { s.BacklightLevel = level })
}

// GetLEDStats returns a copy of the running totals.
func GetLEDStats() LEDStats {
	statsMu.RLock()
	defer statsMu.RUnlock()
	return stats
}

func updateStats(update func(*LEDStats)) {
	statsMu.Lock()
	defer statsMu.Unlock()
	update(&stats)
}
