// Package metrics provides Prometheus instrumentation for the ingestion pipeline and the REST API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace prefixes every metric exported by the service.
	Namespace = "zenframe"

	pipelineSubsystem = "ingest"
	httpSubsystem     = "http"
)

// Enrichment outcomes.
const (
	EnrichmentSuccess  = "success"
	EnrichmentFallback = "fallback"
	EnrichmentCacheHit = "cache_hit"
)

// Cycle results.
const (
	CycleOK          = "ok"
	CycleFeedFailure = "feed_failure"
	CycleSkipped     = "skipped"
	CycleError       = "error"
)

// Pipeline holds ingestion metrics. A nil *Pipeline is valid and records nothing.
type Pipeline struct {
	CyclesTotal          *prometheus.CounterVec
	CycleDurationSeconds prometheus.Histogram
	ArticlesTotal        *prometheus.CounterVec
	EnrichmentsTotal     *prometheus.CounterVec
	EnrichmentAttempts   prometheus.Counter
	LastCycleTimestamp   prometheus.Gauge
}

// NewPipeline creates and registers ingestion metrics.
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Pipeline{
		CyclesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: pipelineSubsystem,
				Name:      "cycles_total",
				Help:      "Ingestion cycles by result",
			},
			[]string{"result"},
		),
		CycleDurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: pipelineSubsystem,
				Name:      "cycle_duration_seconds",
				Help:      "Duration of ingestion cycles in seconds",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		ArticlesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: pipelineSubsystem,
				Name:      "articles_total",
				Help:      "Articles handled by the pipeline by outcome",
			},
			[]string{"outcome"},
		),
		EnrichmentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: pipelineSubsystem,
				Name:      "enrichments_total",
				Help:      "Enrichment results by outcome",
			},
			[]string{"outcome"},
		),
		EnrichmentAttempts: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: pipelineSubsystem,
				Name:      "enrichment_attempts_total",
				Help:      "Language-model calls made by the enrichment step",
			},
		),
		LastCycleTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: pipelineSubsystem,
				Name:      "last_cycle_timestamp_seconds",
				Help:      "Unix time of the last completed cycle",
			},
		),
	}
}

// CycleFinished records one cycle.
func (m *Pipeline) CycleFinished(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.CyclesTotal.WithLabelValues(result).Inc()
	m.CycleDurationSeconds.Observe(elapsed.Seconds())
	if result != CycleSkipped {
		m.LastCycleTimestamp.SetToCurrentTime()
	}
}

// Article records a per-article outcome: inserted, updated, skipped or failed.
func (m *Pipeline) Article(outcome string) {
	if m == nil {
		return
	}
	m.ArticlesTotal.WithLabelValues(outcome).Inc()
}

// Enrichment records how an enrichment was produced.
func (m *Pipeline) Enrichment(outcome string) {
	if m == nil {
		return
	}
	m.EnrichmentsTotal.WithLabelValues(outcome).Inc()
}

// EnrichmentAttempt counts one model call.
func (m *Pipeline) EnrichmentAttempt() {
	if m == nil {
		return
	}
	m.EnrichmentAttempts.Inc()
}

// HTTP holds REST API metrics. A nil *HTTP is valid and records nothing.
type HTTP struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewHTTP creates and registers API metrics.
func NewHTTP(reg prometheus.Registerer) *HTTP {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &HTTP{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: httpSubsystem,
				Name:      "requests_total",
				Help:      "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: httpSubsystem,
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Observe records a finished request.
func (m *HTTP) Observe(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
