package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_insights"

// Metrics holds the Prometheus collectors for upstream calls, the historical
// fan-out, insight generation and the digest job.
type Metrics struct {
	UpstreamRequests  *prometheus.CounterVec   // labels: source, outcome={success,error}
	UpstreamDuration  *prometheus.HistogramVec // labels: source
	HistoricalWindows *prometheus.CounterVec   // labels: outcome={ok,empty,failed}
	InsightsGenerated *prometheus.CounterVec   // labels: mode={historical,forecast}
	DigestRuns        *prometheus.CounterVec   // labels: outcome={success,error}
	DigestsStored     prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.HistoricalWindows,
		m.InsightsGenerated,
		m.DigestRuns,
		m.DigestsStored,
	)
	return m
}

// NewMetricsForTesting creates unregistered metrics so tests can build many
// instances without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream provider requests by source and outcome.",
		}, []string{"source", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		HistoricalWindows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "historical_windows_total",
			Help:      "Historical window fetches by outcome.",
		}, []string{"outcome"}),
		InsightsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insights_generated_total",
			Help:      "Insight lists produced, by comparison mode.",
		}, []string{"mode"}),
		DigestRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "digest_runs_total",
			Help:      "Per-city digest job runs by outcome.",
		}, []string{"outcome"}),
		DigestsStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "digests_stored",
			Help:      "Number of digests currently retained in memory.",
		}),
	}
}

// ObserveUpstream records one upstream call. A nil receiver is a no-op.
func (m *Metrics) ObserveUpstream(source string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.UpstreamDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
	m.UpstreamRequests.WithLabelValues(source, outcome(err)).Inc()
}

// HistoricalWindow counts one historical window by outcome.
func (m *Metrics) HistoricalWindow(result string) {
	if m == nil {
		return
	}
	m.HistoricalWindows.WithLabelValues(result).Inc()
}

// Insights counts one generated insight list by mode.
func (m *Metrics) Insights(mode string) {
	if m == nil {
		return
	}
	m.InsightsGenerated.WithLabelValues(mode).Inc()
}

// DigestRun counts one per-city digest run.
func (m *Metrics) DigestRun(err error) {
	if m == nil {
		return
	}
	m.DigestRuns.WithLabelValues(outcome(err)).Inc()
}

// SetDigestsStored updates the retained digest gauge.
func (m *Metrics) SetDigestsStored(n int) {
	if m == nil {
		return
	}
	m.DigestsStored.Set(float64(n))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
