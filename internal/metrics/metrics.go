// Package metrics declares the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeError      = "error"
	OutcomeSuperseded = "superseded"
)

var (
	FetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kindness_fetches_total",
		Help: "Spot fetches by source and outcome",
	}, []string{"source", "outcome"})
	FetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kindness_fetch_duration_seconds",
		Help:    "Spot fetch duration in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"source"})
	MarkersRendered = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "kindness_markers_rendered",
		Help:    "Markers placed per layer rebuild",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	})
	Geolocations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kindness_geolocations_total",
		Help: "Resolved reference coordinates by origin",
	}, []string{"origin"})
	Sessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kindness_sessions",
		Help: "Live viewer sessions",
	})
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kindness_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kindness_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(FetchesTotal)
	prometheus.MustRegister(FetchDuration)
	prometheus.MustRegister(MarkersRendered)
	prometheus.MustRegister(Geolocations)
	prometheus.MustRegister(Sessions)
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPDuration)
}

// Handler exposes the default registry.
func Handler() http.Handler { return promhttp.Handler() }
