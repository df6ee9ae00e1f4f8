package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the server's prometheus collectors, registered on a
// per-server registry.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	StageDuration     *prometheus.HistogramVec
	TrendBatchesTotal *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "keywordagent_requests_total",
			Help: "Keyword generation requests by outcome.",
		}, []string{"outcome"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "keywordagent_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"stage"}),
		TrendBatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "keywordagent_trend_batches_total",
			Help: "Google Trends provider batches by outcome.",
		}, []string{"outcome"}),
	}
}

// ObserveStage implements agent.StageObserver.
func (m *Metrics) ObserveStage(stage string, seconds float64) {
	m.StageDuration.WithLabelValues(stage).Observe(seconds)
}

// ObserveTrendBatch matches the trends service BatchObserver hook.
func (m *Metrics) ObserveTrendBatch(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.TrendBatchesTotal.WithLabelValues(outcome).Inc()
}
