// Package metrics groups the Prometheus instruments used by chattybot.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	Requests         *prometheus.CounterVec
	StageLatency     *prometheus.HistogramVec
	DetectedLanguage *prometheus.CounterVec
	TTSFallbacks     prometheus.Counter
	DurationGuard    *prometheus.CounterVec
	SweptArtifacts   prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers the instruments on reg. Pass prometheus.NewRegistry() in
// tests to avoid duplicate registration.
func New(namespace string, reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Pipeline requests by outcome (completed or the failing error kind).",
		}, []string{"outcome"}),
		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Latency of each pipeline stage.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30},
		}, []string{"stage"}),
		DetectedLanguage: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detected_language_total",
			Help:      "Resolved input language after clamping.",
		}, []string{"language"}),
		TTSFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tts_fallbacks_total",
			Help:      "Synthesis attempts retried in English after a failure.",
		}),
		DurationGuard: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duration_guard_total",
			Help:      "Duration guard outcomes (within_budget, replaced, probe_failed).",
		}, []string{"result"}),
		SweptArtifacts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swept_artifacts_total",
			Help:      "Artifacts deleted by the retention sweep.",
		}),
		gatherer: reg,
	}
}

// ObserveStage records how long a pipeline stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
