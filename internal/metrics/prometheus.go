package metrics

import (
	"net/http"
	"strconv"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PromRecorder records to a private Prometheus registry.
type PromRecorder struct {
	registry *prom.Registry

	articlesTotal   *prom.CounterVec
	stageSeconds    *prom.HistogramVec
	chunksTotal     *prom.CounterVec
	unresolvedTotal prom.Counter
}

// NewPromRecorder creates a recorder and registers its collectors. Install it
// with SetRecorder and serve Handler on /metrics.
func NewPromRecorder() *PromRecorder {
	p := &PromRecorder{
		registry: prom.NewRegistry(),
		articlesTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "articles_processed_total",
			Help: "Articles run through the graph pipeline",
		}, []string{"success"}),
		stageSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "pipeline_stage_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"stage"}),
		chunksTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "extraction_chunks_total",
			Help: "Chunks sent to the extraction adapter",
		}, []string{"success"}),
		unresolvedTotal: prom.NewCounter(prom.CounterOpts{
			Name: "graph_unresolved_relationships_total",
			Help: "Relationships dropped because an endpoint matched no entity",
		}),
	}

	p.registry.MustRegister(p.articlesTotal, p.stageSeconds, p.chunksTotal, p.unresolvedTotal)
	return p
}

func (p *PromRecorder) IncArticlesProcessed(success bool) {
	p.articlesTotal.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func (p *PromRecorder) ObserveStageSeconds(stage string, seconds float64) {
	p.stageSeconds.WithLabelValues(stage).Observe(seconds)
}

func (p *PromRecorder) IncExtractionChunks(success bool) {
	p.chunksTotal.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func (p *PromRecorder) AddUnresolvedRelationships(n int) {
	if n > 0 {
		p.unresolvedTotal.Add(float64(n))
	}
}

// Handler serves the registry in the Prometheus text format.
func (p *PromRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
