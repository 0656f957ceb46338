// Package exporters publishes the LED and backlight metrics: Prometheus text
// or OpenMetrics on /metrics, and periodic led_metrics events for SSE clients.
package exporters

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPHandler serves every collector registered through promauto. Scrapers
// that ask for OpenMetrics get it; a collector that fails is reported in
// the response while the remaining metrics are still served.
func HTTPHandler() http.Handler {
	return promhttp.InstrumentMetricHandler(prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		}))
}
