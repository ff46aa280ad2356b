package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "faultloc"

// Metrics holds the sweep metrics. Each instance owns its registry so that
// tests and concurrent sweeps do not collide on the global one. Recording
// methods are no-ops on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	// Run metrics
	runsTotal     *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	verifications *prometheus.HistogramVec
	creations     *prometheus.HistogramVec
	activeRuns    prometheus.Gauge

	// Storage metrics
	storeDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "total",
			Help:      "Finished search runs by algorithm and outcome",
		}, []string{"algorithm", "outcome"}),

		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "duration_seconds",
			Help:      "Wall time of a search run",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}, []string{"algorithm"}),

		verifications: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "verifications",
			Help:      "Oracle calls per search run",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"algorithm"}),

		creations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "creations",
			Help:      "Completed configurations per search run",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"algorithm"}),

		activeRuns: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "active",
			Help:      "Search runs currently in progress",
		}),

		storeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "write_duration_seconds",
			Help:      "Time to persist a run and its statistics",
			Buckets:   prometheus.DefBuckets,
		}, []string{"table"}),
	}
}

// RunStarted marks a run as in progress.
func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.activeRuns.Inc()
}

// RunAborted undoes RunStarted for a run that was cancelled.
func (m *Metrics) RunAborted() {
	if m == nil {
		return
	}
	m.activeRuns.Dec()
}

// RunFinished records a finished run. outcome is the outcome name, or
// "TIMEOUT" / "ERROR" for runs that produced no result.
func (m *Metrics) RunFinished(algorithm, outcome string, elapsed time.Duration, verifyCount, creationCount int) {
	if m == nil {
		return
	}
	m.activeRuns.Dec()
	m.runsTotal.WithLabelValues(algorithm, outcome).Inc()
	m.runDuration.WithLabelValues(algorithm).Observe(elapsed.Seconds())
	m.verifications.WithLabelValues(algorithm).Observe(float64(verifyCount))
	if creationCount >= 0 {
		m.creations.WithLabelValues(algorithm).Observe(float64(creationCount))
	}
}

// ObserveStore records the time spent writing to a table.
func (m *Metrics) ObserveStore(table string, d time.Duration) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(table).Observe(d.Seconds())
}

// Registry returns the registry the metrics live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ServeHTTP implements http.Handler for metrics exposition.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
