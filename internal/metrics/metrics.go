// Package metrics counts what happens to candidates on their way through the pipeline and
// exports the counters in Prometheus textfile format.
//
// Every method is safe to call on a nil *Metrics, so callers that don't care about metrics
// pass nil instead of a dummy.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "venue_events"

// Metrics groups the pipeline counters on a private registry
type Metrics struct {
	registry *prometheus.Registry

	candidates      prometheus.Counter
	rejected        *prometheus.CounterVec
	accepted        prometheus.Counter
	duplicates      prometheus.Counter
	undated         prometheus.Counter
	emitted         prometheus.Counter
	sourceErrors    *prometheus.CounterVec
	pipelineSeconds prometheus.Histogram
}

// New creates the counters on a fresh registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		candidates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_total",
			Help:      "Raw candidates received by the pipeline",
		}),
		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_total",
			Help:      "Candidates rejected by the classifier, by reason",
		}, []string{"reason"}),
		accepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accepted_total",
			Help:      "Candidates accepted by the classifier",
		}),
		duplicates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_total",
			Help:      "Normalized events collapsed into another event of the same batch",
		}),
		undated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "undated_total",
			Help:      "Emitted events without a resolved date",
		}),
		emitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emitted_total",
			Help:      "Events emitted after deduplication",
		}),
		sourceErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_errors_total",
			Help:      "Candidate sources that failed to fetch or parse",
		}, []string{"source"}),
		pipelineSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_seconds",
			Help:      "Time spent processing one candidate batch",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Registry returns the registry holding the counters.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// AddCandidates counts raw candidates entering the pipeline.
func (m *Metrics) AddCandidates(n int) {
	if m == nil {
		return
	}
	m.candidates.Add(float64(n))
}

// IncRejected counts one rejected candidate under its classifier reason.
func (m *Metrics) IncRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

// AddAccepted counts candidates that passed the classifier.
func (m *Metrics) AddAccepted(n int) {
	if m == nil {
		return
	}
	m.accepted.Add(float64(n))
}

// AddDuplicates counts events removed by deduplication.
func (m *Metrics) AddDuplicates(n int) {
	if m == nil {
		return
	}
	m.duplicates.Add(float64(n))
}

// AddUndated counts emitted events whose date is unknown.
func (m *Metrics) AddUndated(n int) {
	if m == nil {
		return
	}
	m.undated.Add(float64(n))
}

// AddEmitted counts events in the final output.
func (m *Metrics) AddEmitted(n int) {
	if m == nil {
		return
	}
	m.emitted.Add(float64(n))
}

// IncSourceError counts one failed fetch of source.
func (m *Metrics) IncSourceError(source string) {
	if m == nil {
		return
	}
	m.sourceErrors.WithLabelValues(source).Inc()
}

// ObservePipeline records how long one batch took.
func (m *Metrics) ObservePipeline(d time.Duration) {
	if m == nil {
		return
	}
	m.pipelineSeconds.Observe(d.Seconds())
}

// WriteTextfile writes all counters to path in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
