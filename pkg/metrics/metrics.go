// Package metrics provides the Prometheus registry used by the WordPress reader.
// All metrics are defined in their respective packages (client, pagination)
// to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and the HTTP handler exposing them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the reader.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer collects the metrics registered with Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the registered metrics in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - wp_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - wp_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - wp_errors_total{class} (Counter): Errors by class (url, transport, api, decode)
//
// Pagination Metrics (pkg/pagination):
//   - wp_discovered_pages (Histogram): Page counts reported by X-WP-TotalPages
//   - wp_page_fetches_in_flight (Gauge): Page fetches currently in progress
//   - wp_pages_fetched_total{outcome} (Counter): Page fetches by outcome (success, error, cancelled)
//   - wp_page_fetch_duration_seconds (Histogram): Page fetch duration including decoding
//
// Example Prometheus Queries:
//
//   # Page failure rate
//   sum(rate(wp_pages_fetched_total{outcome="error"}[5m])) /
//   sum(rate(wp_pages_fetched_total[5m]))
//
//   # Concurrency in use
//   max_over_time(wp_page_fetches_in_flight[5m])
//
//   # Errors by class
//   sum by (class) (rate(wp_errors_total[5m]))
//
//   # P95 page latency
//   histogram_quantile(0.95, rate(wp_page_fetch_duration_seconds_bucket[5m]))
