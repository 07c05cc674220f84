// Package metrics provides Prometheus metrics for the ladderfit server.
//
// Collectors are registered on a Registry owned by Metrics instead of the
// global default registry, so tests and multiple servers in one process do
// not collide.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ladderfit"

// Metrics holds the server collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	CalculationsTotal   *prometheus.CounterVec
	RequiredWidth       *prometheus.HistogramVec
	CatalogCables       prometheus.Gauge
	CatalogIssues       prometheus.Gauge
}

// New creates the collectors on a fresh registry. Go runtime and process
// collectors are included.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		CalculationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calculations_total",
				Help:      "Total number of width calculations by layout and outcome",
			},
			[]string{"layout", "outcome"},
		),
		RequiredWidth: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "required_width_mm",
				Help:      "Required ladder width of successful calculations",
				Buckets:   []float64{50, 100, 150, 200, 300, 400, 500, 600, 800, 1000, 1500},
			},
			[]string{"layout"},
		),
		CatalogCables: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_cables",
			Help:      "Number of cables in the loaded catalog",
		}),
		CatalogIssues: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_issues",
			Help:      "Number of catalog cells replaced with defaults at load time",
		}),
	}
}

// Outcome labels for CalculationsTotal.
const (
	OutcomeFits      = "fits"
	OutcomeOversized = "oversized"
	OutcomeRejected  = "rejected"
)

// RecordRequest records one served HTTP request.
func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCalculation records a completed width calculation.
func (m *Metrics) RecordCalculation(layout string, requiredWidth float64, fits bool) {
	outcome := OutcomeFits
	if !fits {
		outcome = OutcomeOversized
	}
	m.CalculationsTotal.WithLabelValues(layout, outcome).Inc()
	m.RequiredWidth.WithLabelValues(layout).Observe(requiredWidth)
}

// RecordRejected records a calculation refused because of invalid input.
func (m *Metrics) RecordRejected(layout string) {
	m.CalculationsTotal.WithLabelValues(layout, OutcomeRejected).Inc()
}

// SetCatalog publishes catalog size figures.
func (m *Metrics) SetCatalog(cables, issues int) {
	m.CatalogCables.Set(float64(cables))
	m.CatalogIssues.Set(float64(issues))
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler serving the registry in the Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Timer is a helper for measuring duration.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
