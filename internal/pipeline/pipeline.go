package pipeline

import (
	"time"

	"github.com/pfrederiksen/venue-events/internal/classify"
	"github.com/pfrederiksen/venue-events/internal/dedupe"
	"github.com/pfrederiksen/venue-events/internal/event"
	"github.com/pfrederiksen/venue-events/internal/logger"
	"github.com/pfrederiksen/venue-events/internal/metrics"
	"github.com/pfrederiksen/venue-events/internal/normalize"
)

// Pipeline composes the classifier, normalizer and deduplicator
type Pipeline struct {
	classifier *classify.Classifier
	normalizer *normalize.Normalizer
	log        *logger.Logger
	metrics    *metrics.Metrics
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger for rejections (DEBUG) and run summaries (INFO).
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) {
		p.log = l
	}
}

// WithMetrics sets the counters updated by each run.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// New creates a pipeline. Nil components fall back to the built-in vocabulary and
// placeholder markers.
func New(classifier *classify.Classifier, normalizer *normalize.Normalizer, opts ...Option) *Pipeline {
	if classifier == nil {
		classifier = classify.Default()
	}
	if normalizer == nil {
		normalizer = normalize.New()
	}

	p := &Pipeline{
		classifier: classifier,
		normalizer: normalizer,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Nop()
	}
	return p
}

// Rejection records a candidate dropped by the classifier
type Rejection struct {
	Candidate event.Candidate `json:"candidate"`
	Result    classify.Result `json:"result"`
}

// Report describes one run
type Report struct {
	Events     []*event.Event `json:"events"`
	Rejected   []Rejection    `json:"rejected,omitempty"`
	Candidates int            `json:"candidates"`
	Accepted   int            `json:"accepted"`
	Duplicates int            `json:"duplicates"`
	Undated    int            `json:"undated"`
	Duration   time.Duration  `json:"duration"`
}

// Run processes candidates against ref and returns the surviving events in first-seen
// order.
func (p *Pipeline) Run(candidates []event.Candidate, ref event.Date) []*event.Event {
	return p.Process(candidates, ref).Events
}

// Process is Run with the details of what was dropped and why.
func (p *Pipeline) Process(candidates []event.Candidate, ref event.Date) *Report {
	start := time.Now()
	report := &Report{Candidates: len(candidates)}

	normalized := make([]*event.Event, 0, len(candidates))
	for _, cand := range candidates {
		result := p.classifier.Classify(cand)
		if !result.Accept {
			report.Rejected = append(report.Rejected, Rejection{Candidate: cand, Result: result})
			p.metrics.IncRejected(string(result.Reason))
			p.log.Debug("Candidate rejected", logger.Fields{
				"title":  cand.Title,
				"source": cand.Source,
				"reason": string(result.Reason),
				"match":  result.Match,
			})
			continue
		}
		normalized = append(normalized, p.normalizer.Normalize(cand, ref))
	}
	report.Accepted = len(normalized)

	report.Events = dedupe.Dedupe(normalized)
	report.Duplicates = len(normalized) - len(report.Events)
	for _, evt := range report.Events {
		if evt.Date == nil {
			report.Undated++
		}
	}
	report.Duration = time.Since(start)

	p.metrics.AddCandidates(report.Candidates)
	p.metrics.AddAccepted(report.Accepted)
	p.metrics.AddDuplicates(report.Duplicates)
	p.metrics.AddUndated(report.Undated)
	p.metrics.AddEmitted(len(report.Events))
	p.metrics.ObservePipeline(report.Duration)

	p.log.Info("Pipeline run complete", logger.Fields{
		"candidates":     report.Candidates,
		"rejected":       len(report.Rejected),
		"accepted":       report.Accepted,
		"duplicates":     report.Duplicates,
		"undated":        report.Undated,
		"emitted":        len(report.Events),
		"reference_date": ref.String(),
		"duration_ms":    report.Duration.Milliseconds(),
	})

	return report
}

// RejectionsByReason counts the rejections of a report per reason.
func (r *Report) RejectionsByReason() map[classify.Reason]int {
	counts := make(map[classify.Reason]int)
	for _, rej := range r.Rejected {
		counts[rej.Result.Reason]++
	}
	return counts
}
