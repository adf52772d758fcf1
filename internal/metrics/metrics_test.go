package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPipelineCounters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewPipeline(reg)

	m.CycleFinished(CycleOK, 3*time.Second)
	m.CycleFinished(CycleSkipped, 0)
	m.Article("inserted")
	m.Article("inserted")
	m.Enrichment(EnrichmentFallback)
	m.EnrichmentAttempt()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CyclesTotal.WithLabelValues(CycleOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CyclesTotal.WithLabelValues(CycleSkipped)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ArticlesTotal.WithLabelValues("inserted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EnrichmentsTotal.WithLabelValues(EnrichmentFallback)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EnrichmentAttempts))
	assert.Greater(t, testutil.ToFloat64(m.LastCycleTimestamp), 0.0)
}

func TestNilMetricsAreNoops(t *testing.T) {
	t.Parallel()

	var p *Pipeline
	p.CycleFinished(CycleOK, time.Second)
	p.Article("inserted")
	p.Enrichment(EnrichmentSuccess)
	p.EnrichmentAttempt()

	var h *HTTP
	h.Observe("GET", "/api/news", 200, time.Millisecond)
}

func TestHTTPObserve(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewHTTP(reg)
	m.Observe("GET", "/api/news/:id", 404, 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/news/:id", "404")))
}
