package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Page fetch outcomes.
const (
	outcomeSuccess   = "success"
	outcomeError     = "error"
	outcomeCancelled = "cancelled"
)

// Prometheus metrics for discovery and page streaming.
var (
	discoveredPages = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wp_discovered_pages",
		Help:    "Total pages reported by the page count probe",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
	})

	pageFetchesInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wp_page_fetches_in_flight",
		Help: "Page fetches currently in progress",
	})

	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wp_pages_fetched_total",
		Help: "Page fetches by outcome (success, error, cancelled)",
	}, []string{"outcome"})

	pageFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wp_page_fetch_duration_seconds",
		Help:    "Page fetch duration in seconds, including decoding",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	})
)
