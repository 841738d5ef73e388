package event

import (
	"testing"
	"time"
)

func newTestEvent(t *testing.T, title, source, venue string, date *Date) *Event {
	t.Helper()
	return &Event{
		ID:     title + "-" + source,
		Title:  title,
		Date:   date,
		Venue:  Venue{Name: venue},
		Source: source,
	}
}

func TestDiff(t *testing.T) {
	now := time.Date(2025, time.November, 1, 12, 0, 0, 0, time.UTC)
	dec20 := mustDate(t, 2025, time.December, 20)
	dec21 := mustDate(t, 2025, time.December, 21)

	evt1 := newTestEvent(t, "Blues Night", "the-rex", "The Rex", &dec20)
	evt2 := newTestEvent(t, "Jazz Jam", "the-rex", "The Rex", &dec21)
	evt3 := newTestEvent(t, "Open Mic", "horseshoe", "Horseshoe Tavern", nil)

	previous := CreateSnapshot([]*Event{evt1}, nil, now)

	t.Run("finds new events", func(t *testing.T) {
		result := Diff(previous, []*Event{evt1, evt2, evt3}, now)

		if len(result.NewEvents) != 2 {
			t.Fatalf("expected 2 new events, got %d", len(result.NewEvents))
		}
		// sorted by source
		if result.NewEvents[0].Title != "Open Mic" || result.NewEvents[1].Title != "Jazz Jam" {
			t.Errorf("unexpected order: %s, %s", result.NewEvents[0].Title, result.NewEvents[1].Title)
		}
		if len(result.BySource["the-rex"]) != 1 || len(result.BySource["horseshoe"]) != 1 {
			t.Errorf("unexpected grouping: %v", result.BySource)
		}
		if len(result.Changes) != 0 {
			t.Errorf("expected no changes, got %d", len(result.Changes))
		}
	})

	t.Run("new run of the same event is not new", func(t *testing.T) {
		again := newTestEvent(t, "blues night", "the-rex", "The Rex", &dec20)
		again.ID = "fresh-id"

		result := Diff(previous, []*Event{again}, now)
		if len(result.NewEvents) != 0 {
			t.Errorf("expected no new events, got %d", len(result.NewEvents))
		}
	})

	t.Run("rescheduled event is a change", func(t *testing.T) {
		moved := newTestEvent(t, "Blues Night", "the-rex", "The Rex", &dec21)

		result := Diff(previous, []*Event{moved}, now)
		if len(result.NewEvents) != 0 {
			t.Errorf("expected no new events, got %d", len(result.NewEvents))
		}
		if len(result.Changes) != 1 {
			t.Fatalf("expected 1 change, got %d", len(result.Changes))
		}
		change := result.Changes[0]
		if change.ChangeType != ChangeDate || change.OldValue != "2025-12-20" || change.NewValue != "2025-12-21" {
			t.Errorf("unexpected change: %+v", change)
		}
	})

	t.Run("next occurrence of a recurring event is new", func(t *testing.T) {
		dec3 := mustDate(t, 2025, time.December, 3)
		dec10 := mustDate(t, 2025, time.December, 10)
		dec17 := mustDate(t, 2025, time.December, 17)
		week1 := newTestEvent(t, "Weekly Open Mic", "lees", "Lee's Palace", &dec3)
		week2 := newTestEvent(t, "Weekly Open Mic", "lees", "Lee's Palace", &dec10)
		week3 := newTestEvent(t, "Weekly Open Mic", "lees", "Lee's Palace", &dec17)

		series := CreateSnapshot([]*Event{week1, week2}, nil, now)
		result := Diff(series, []*Event{week1, week2, week3}, now)

		if len(result.NewEvents) != 1 || result.NewEvents[0] != week3 {
			t.Fatalf("expected Dec 17 as the only new event, got %d new", len(result.NewEvents))
		}
		if len(result.Changes) != 0 {
			t.Errorf("expected no changes, got %+v", result.Changes[0])
		}
	})

	t.Run("one missing event is rescheduled at most once", func(t *testing.T) {
		dec27 := mustDate(t, 2025, time.December, 27)
		moved := newTestEvent(t, "Blues Night", "the-rex", "The Rex", &dec21)
		extra := newTestEvent(t, "Blues Night", "the-rex", "The Rex", &dec27)

		result := Diff(previous, []*Event{moved, extra}, now)
		if len(result.Changes) != 1 || result.Changes[0].NewValue != "2025-12-21" {
			t.Errorf("expected one change to 2025-12-21, got %d", len(result.Changes))
		}
		if len(result.NewEvents) != 1 || result.NewEvents[0] != extra {
			t.Errorf("expected Dec 27 as new, got %d new", len(result.NewEvents))
		}
	})

	t.Run("handles nil previous snapshot", func(t *testing.T) {
		result := Diff(nil, []*Event{evt1, evt2, evt3}, now)
		if len(result.NewEvents) != 3 {
			t.Errorf("expected all 3 events to be new, got %d", len(result.NewEvents))
		}
	})
}

func TestDetectChanges(t *testing.T) {
	now := time.Now()
	dec20 := mustDate(t, 2025, time.December, 20)

	t.Run("detects venue change", func(t *testing.T) {
		previous := newTestEvent(t, "Blues Night", "feed", "The Rex", &dec20)
		current := newTestEvent(t, "Blues Night", "feed", "Rex Hotel", &dec20)

		changes := DetectChanges(previous, current, now)
		if len(changes) != 1 || changes[0].ChangeType != ChangeVenue {
			t.Fatalf("expected one venue change, got %+v", changes)
		}
		if changes[0].OldValue != "The Rex" || changes[0].NewValue != "Rex Hotel" {
			t.Errorf("unexpected values: %+v", changes[0])
		}
	})

	t.Run("detects date becoming known", func(t *testing.T) {
		previous := newTestEvent(t, "Blues Night", "feed", "The Rex", nil)
		current := newTestEvent(t, "Blues Night", "feed", "The Rex", &dec20)

		changes := DetectChanges(previous, current, now)
		if len(changes) != 1 || changes[0].ChangeType != ChangeDate {
			t.Fatalf("expected one date change, got %+v", changes)
		}
		if changes[0].OldValue != "" || changes[0].NewValue != "2025-12-20" {
			t.Errorf("unexpected values: %+v", changes[0])
		}
	})

	t.Run("detects multiple changes", func(t *testing.T) {
		previous := newTestEvent(t, "Blues Night", "feed", "The Rex", nil)
		previous.URL = "https://therex.ca/old"
		current := newTestEvent(t, "Blues Night", "feed", "Rex Hotel", &dec20)
		current.URL = "https://therex.ca/new"

		if got := len(DetectChanges(previous, current, now)); got != 3 {
			t.Errorf("expected 3 changes, got %d", got)
		}
	})

	t.Run("no changes", func(t *testing.T) {
		evt := newTestEvent(t, "Blues Night", "feed", "The Rex", &dec20)
		if got := DetectChanges(evt, evt, now); len(got) != 0 {
			t.Errorf("expected no changes, got %d", len(got))
		}
	})
}

func TestCreateSnapshot(t *testing.T) {
	first := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)
	dec20 := mustDate(t, 2025, time.December, 20)
	dec21 := mustDate(t, 2025, time.December, 21)

	evt1 := newTestEvent(t, "Blues Night", "the-rex", "The Rex", &dec20)
	evt2 := newTestEvent(t, "Jazz Jam", "the-rex", "The Rex", nil)

	snap := CreateSnapshot([]*Event{evt1, evt2}, nil, first)

	if len(snap.Events) != 2 {
		t.Errorf("expected 2 events in snapshot, got %d", len(snap.Events))
	}
	if len(snap.TitleIndex) != 2 {
		t.Errorf("expected 2 entries in TitleIndex, got %d", len(snap.TitleIndex))
	}
	if snap.TitleIndex[evt1.TitleKey()] != evt1.Fingerprint() {
		t.Error("expected evt1's TitleKey to map to its fingerprint")
	}
	if snap.UpdatedAt != first.Format(time.RFC3339) {
		t.Errorf("UpdatedAt = %q", snap.UpdatedAt)
	}
	if !evt1.FirstSeen.Equal(first) {
		t.Errorf("FirstSeen = %v, want %v", evt1.FirstSeen, first)
	}

	t.Run("carries FirstSeen forward", func(t *testing.T) {
		again := newTestEvent(t, "Blues Night", "the-rex", "The Rex", &dec20)
		moved := newTestEvent(t, "Jazz Jam", "the-rex", "The Rex", &dec21)
		fresh := newTestEvent(t, "Soul Revue", "the-rex", "The Rex", &dec21)

		CreateSnapshot([]*Event{again, moved, fresh}, snap, later)

		if !again.FirstSeen.Equal(first) {
			t.Errorf("same event FirstSeen = %v, want %v", again.FirstSeen, first)
		}
		if !moved.FirstSeen.Equal(first) {
			t.Errorf("rescheduled event FirstSeen = %v, want %v", moved.FirstSeen, first)
		}
		if !fresh.FirstSeen.Equal(later) {
			t.Errorf("new event FirstSeen = %v, want %v", fresh.FirstSeen, later)
		}
	})

	t.Run("next occurrence of a recurring event starts fresh", func(t *testing.T) {
		again := newTestEvent(t, "Blues Night", "the-rex", "The Rex", &dec20)
		next := newTestEvent(t, "Blues Night", "the-rex", "The Rex", &dec21)

		CreateSnapshot([]*Event{again, next}, snap, later)

		if !again.FirstSeen.Equal(first) {
			t.Errorf("kept occurrence FirstSeen = %v, want %v", again.FirstSeen, first)
		}
		if !next.FirstSeen.Equal(later) {
			t.Errorf("new occurrence FirstSeen = %v, want %v", next.FirstSeen, later)
		}
	})
}
