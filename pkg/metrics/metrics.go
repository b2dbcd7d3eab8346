// Package metrics provides Prometheus metrics for the fight records service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns every metric the service exports. All methods are safe on a nil *Manager.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	runsTotal        *prometheus.CounterVec
	runDuration      prometheus.Histogram
	fightersWritten  prometheus.Counter
	fightersFailed   prometheus.Counter
	fightersRemoved  prometheus.Counter
	entriesSkipped   *prometheus.CounterVec
	eventsSkipped    prometheus.Counter
	eventsImported   prometheus.Counter
	lastRunFighters  *prometheus.GaugeVec
	lastRunTimestamp prometheus.Gauge

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the subsystem for all metrics.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithHistogramBuckets sets custom histogram buckets for duration metrics.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRegistry registers the metrics on the given registry instead of a fresh one.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// NewManager creates a metrics manager on its own registry so default Go collectors stay out of the output.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fightrec",
		subsystem:        "records",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.runsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Total number of aggregation runs by outcome",
	}, []string{"outcome"})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_seconds",
		Help:      "Duration of aggregation runs in seconds",
		Buckets:   m.histogramBuckets,
	})

	m.fightersWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fighters_written_total",
		Help:      "Total number of fighter records written",
	})

	m.fightersFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fighters_failed_total",
		Help:      "Total number of fighter record writes that failed",
	})

	m.fightersRemoved = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fighters_removed_total",
		Help:      "Total number of stale fighter records removed after a clean run",
	})

	m.entriesSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "entries_skipped_total",
		Help:      "Total number of result entries that contributed to no counter, by reason",
	}, []string{"reason"})

	m.eventsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_skipped_total",
		Help:      "Total number of events whose results could not be read during a run",
	})

	m.eventsImported = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_imported_total",
		Help:      "Total number of event results documents imported from a feed",
	})

	m.lastRunFighters = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_run_fighters",
		Help:      "Fighters processed in the most recent run per sanctioning body",
	}, []string{"sanctioning_body"})

	m.lastRunTimestamp = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_run_unix",
		Help:      "Unix timestamp of the most recent completed run",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// Registry returns the registry the metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRun records the outcome of one aggregation run. A fatal run passes ok=false.
func (m *Manager) RecordRun(body string, ok bool, duration time.Duration, processed, written, failed int) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "fatal"
	} else if failed > 0 {
		outcome = "partial"
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(duration.Seconds())
	if !ok {
		return
	}
	m.fightersWritten.Add(float64(written))
	m.fightersFailed.Add(float64(failed))
	m.lastRunFighters.WithLabelValues(body).Set(float64(processed))
	m.lastRunTimestamp.SetToCurrentTime()
}

// RecordEntriesSkipped adds n skipped entries under reason. Zero is ignored.
func (m *Manager) RecordEntriesSkipped(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.entriesSkipped.WithLabelValues(reason).Add(float64(n))
}

// RecordFightersRemoved adds n stale records removed by a run. Zero is ignored.
func (m *Manager) RecordFightersRemoved(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.fightersRemoved.Add(float64(n))
}

// RecordEventSkipped counts an event that was dropped from a run.
func (m *Manager) RecordEventSkipped() {
	if m == nil {
		return
	}
	m.eventsSkipped.Inc()
}

// RecordEventImported counts an imported results document.
func (m *Manager) RecordEventImported() {
	if m == nil {
		return
	}
	m.eventsImported.Inc()
}

// Middleware wraps an HTTP handler to record request count and duration under endpoint.
func (m *Manager) Middleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	if m == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		status := strconv.Itoa(wrapped.statusCode)
		m.httpRequests.WithLabelValues(endpoint, r.Method, status).Inc()
		m.httpRequestDuration.WithLabelValues(endpoint, r.Method, status).Observe(time.Since(start).Seconds())
	}
}

// responseWriter captures the status code written by the wrapped handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
