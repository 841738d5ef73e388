package pipeline

import (
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pfrederiksen/venue-events/internal/classify"
	"github.com/pfrederiksen/venue-events/internal/event"
	"github.com/pfrederiksen/venue-events/internal/logger"
	"github.com/pfrederiksen/venue-events/internal/metrics"
	"github.com/pfrederiksen/venue-events/internal/normalize"
)

func ref(t *testing.T) event.Date {
	t.Helper()
	d, ok := event.NewDate(2025, time.November, 1)
	if !ok {
		t.Fatal("invalid reference date")
	}
	return d
}

func TestRun_EndToEnd(t *testing.T) {
	candidates := []event.Candidate{
		{Title: "Menu", Source: "the-rex"},
		{Title: "Blues Night", DateText: "Dec 20", VenueName: "The Rex", Source: "the-rex"},
		{Title: "Blues Night", DateText: "Dec 20", VenueName: "The Rex", Description: "Live blues trio", Source: "the-rex"},
	}

	got := New(nil, nil).Run(candidates, ref(t))

	if len(got) != 1 {
		t.Fatalf("expected exactly 1 event, got %d", len(got))
	}
	evt := got[0]
	if evt.Title != "Blues Night" {
		t.Errorf("Title = %q", evt.Title)
	}
	if evt.Date == nil || evt.Date.String() != "2025-12-20" {
		t.Errorf("Date = %v, want 2025-12-20", evt.Date)
	}
	if evt.Venue.Name != "The Rex" {
		t.Errorf("Venue.Name = %q", evt.Venue.Name)
	}
	if evt.Description != "Live blues trio" {
		t.Errorf("Description = %q", evt.Description)
	}
}

func TestProcess_Report(t *testing.T) {
	candidates := []event.Candidate{
		{Title: "Menu", Source: "s"},
		{Title: "Subscribe to our newsletter", Source: "s"},
		{Title: "PD Days", Source: "s"},
		{Title: "Weekly Open Mic", VenueName: "Lee's Palace", Source: "s"},
		{Title: "Weekly Open Mic", VenueName: "Lee's Palace", Source: "s"},
		{Title: "Weekly Open Mic", VenueName: "The Horseshoe", Source: "s"},
		{Title: "Live Jazz", DateText: "Dec 5", Source: "s"},
	}

	report := New(nil, nil).Process(candidates, ref(t))

	if report.Candidates != 7 {
		t.Errorf("Candidates = %d, want 7", report.Candidates)
	}
	if len(report.Rejected) != 3 {
		t.Errorf("Rejected = %d, want 3", len(report.Rejected))
	}
	if report.Accepted != 4 {
		t.Errorf("Accepted = %d, want 4", report.Accepted)
	}
	if report.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", report.Duplicates)
	}
	if len(report.Events) != 3 {
		t.Errorf("Events = %d, want 3", len(report.Events))
	}
	if report.Undated != 2 {
		t.Errorf("Undated = %d, want 2", report.Undated)
	}

	byReason := report.RejectionsByReason()
	want := map[classify.Reason]int{
		classify.ReasonNavigation:     1,
		classify.ReasonBoilerplate:    1,
		classify.ReasonGenericProgram: 1,
	}
	for reason, n := range want {
		if byReason[reason] != n {
			t.Errorf("rejections[%s] = %d, want %d", reason, byReason[reason], n)
		}
	}
}

func TestRun_Empty(t *testing.T) {
	p := New(nil, nil)

	if got := p.Run(nil, ref(t)); len(got) != 0 {
		t.Errorf("expected no events for nil batch, got %d", len(got))
	}
	if got := p.Run([]event.Candidate{}, ref(t)); len(got) != 0 {
		t.Errorf("expected no events for empty batch, got %d", len(got))
	}
}

func TestRun_MalformedCandidatesDoNotAbort(t *testing.T) {
	candidates := []event.Candidate{
		{},
		{Title: "\x00\x01", DateText: "99/99/9999"},
		{Title: "Real Concert", DateText: "Feb 30", Source: "s"},
	}

	got := New(nil, nil).Run(candidates, ref(t))
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].Date != nil {
		t.Errorf("invalid date text produced %s", got[0].Date)
	}
}

func TestRun_InputUntouched(t *testing.T) {
	candidates := []event.Candidate{
		{Title: "  Blues   Night ", DateText: "Dec 20", Source: "s"},
	}
	before := candidates[0]

	New(nil, nil).Run(candidates, ref(t))

	if candidates[0] != before {
		t.Error("Run modified its input")
	}
}

func TestRun_CustomComponents(t *testing.T) {
	c, err := classify.New(classify.DefaultVocabulary().Extend(classify.Vocabulary{
		NavigationTerms: []string{"Programme"},
	}))
	if err != nil {
		t.Fatal(err)
	}
	n := normalize.New(normalize.WithIDFunc(func() string { return "id" }))

	got := New(c, n).Run([]event.Candidate{
		{Title: "Programme", Source: "s"},
		{Title: "Gala", Source: "s"},
	}, ref(t))

	if len(got) != 1 || got[0].Title != "Gala" || got[0].ID != "id" {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestProcess_LoggingAndMetrics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m := metrics.New()
	p := New(nil, nil, WithLogger(logger.NewWithCore(core)), WithMetrics(m))

	p.Process([]event.Candidate{
		{Title: "Menu", Source: "s"},
		{Title: "Blues Night", DateText: "Dec 20", Source: "s"},
	}, ref(t))

	rejected := logs.FilterMessage("Candidate rejected").All()
	if len(rejected) != 1 {
		t.Fatalf("expected 1 rejection entry, got %d", len(rejected))
	}
	if rejected[0].Level != zapcore.DebugLevel {
		t.Errorf("rejection logged at %s, want debug", rejected[0].Level)
	}
	if rejected[0].ContextMap()["reason"] != string(classify.ReasonNavigation) {
		t.Errorf("rejection fields = %v", rejected[0].ContextMap())
	}

	summary := logs.FilterMessage("Pipeline run complete").All()
	if len(summary) != 1 || summary[0].Level != zapcore.InfoLevel {
		t.Fatalf("expected 1 info summary, got %+v", summary)
	}
	if summary[0].ContextMap()["emitted"] != int64(1) {
		t.Errorf("summary emitted = %v", summary[0].ContextMap()["emitted"])
	}
}
