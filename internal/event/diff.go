package event

import (
	"sort"
	"time"
)

// Change types reported by DetectChanges
const (
	ChangeDate  = "date"
	ChangeVenue = "venue"
	ChangeURL   = "url"
)

// Snapshot represents the events emitted by one run of a feed
type Snapshot struct {
	Events     map[string]*Event `json:"events"`      // keyed by Event.Fingerprint
	TitleIndex map[string]string `json:"title_index"` // TitleKey → Fingerprint
	UpdatedAt  string            `json:"updated_at"`  // RFC3339 timestamp
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Events:     make(map[string]*Event),
		TitleIndex: make(map[string]string),
	}
}

// DiffResult contains the results of comparing a run against the previous snapshot
type DiffResult struct {
	NewEvents []*Event
	Changes   []*EventChange
	BySource  map[string][]*Event // new events grouped by source
}

// EventChange represents a field change of an event seen in a previous run
type EventChange struct {
	Fingerprint string    `json:"fingerprint"`
	TitleKey    string    `json:"title_key"`
	Title       string    `json:"title"`
	ChangeType  string    `json:"change_type"`
	OldValue    string    `json:"old_value"`
	NewValue    string    `json:"new_value"`
	DetectedAt  time.Time `json:"detected_at"`
}

// Diff compares current events against a previous snapshot. An event whose fingerprint
// is unknown but whose TitleKey was seen before under a fingerprint missing from current
// (a rescheduled or moved event) is reported in Changes instead of NewEvents.
func Diff(previous *Snapshot, current []*Event, now time.Time) *DiffResult {
	result := &DiffResult{
		NewEvents: make([]*Event, 0),
		BySource:  make(map[string][]*Event),
	}

	if previous == nil {
		previous = NewSnapshot()
	}

	present := make(map[string]bool, len(current))
	for _, evt := range current {
		present[evt.Fingerprint()] = true
	}

	// a previous event can be rescheduled once and only while it is gone from this run;
	// otherwise a recurring title is a new occurrence
	claimed := make(map[string]bool)
	for _, evt := range current {
		if _, exists := previous.Events[evt.Fingerprint()]; exists {
			continue
		}

		if prevFP, seen := previous.TitleIndex[evt.TitleKey()]; seen && !present[prevFP] && !claimed[prevFP] {
			if prev := previous.Events[prevFP]; prev != nil {
				claimed[prevFP] = true
				result.Changes = append(result.Changes, DetectChanges(prev, evt, now)...)
				continue
			}
		}

		result.NewEvents = append(result.NewEvents, evt)
		result.BySource[evt.Source] = append(result.BySource[evt.Source], evt)
	}

	sort.SliceStable(result.NewEvents, func(i, j int) bool {
		if result.NewEvents[i].Source != result.NewEvents[j].Source {
			return result.NewEvents[i].Source < result.NewEvents[j].Source
		}
		return result.NewEvents[i].Key() < result.NewEvents[j].Key()
	})

	return result
}

// DetectChanges compares the previous and current version of an event
func DetectChanges(previous, current *Event, now time.Time) []*EventChange {
	var changes []*EventChange

	add := func(changeType, oldValue, newValue string) {
		changes = append(changes, &EventChange{
			Fingerprint: current.Fingerprint(),
			TitleKey:    current.TitleKey(),
			Title:       current.Title,
			ChangeType:  changeType,
			OldValue:    oldValue,
			NewValue:    newValue,
			DetectedAt:  now.UTC(),
		})
	}

	if oldDate, newDate := dateString(previous.Date), dateString(current.Date); oldDate != newDate {
		add(ChangeDate, oldDate, newDate)
	}

	if previous.Venue.Name != current.Venue.Name {
		add(ChangeVenue, previous.Venue.Name, current.Venue.Name)
	}

	if previous.URL != current.URL {
		add(ChangeURL, previous.URL, current.URL)
	}

	return changes
}

// CreateSnapshot builds the snapshot for the current run. FirstSeen is carried over from
// previous for events it already knew (by fingerprint, then by TitleKey when the old
// fingerprint is gone from events) and set to now for the rest; the events are updated in place.
func CreateSnapshot(events []*Event, previous *Snapshot, now time.Time) *Snapshot {
	snap := NewSnapshot()
	snap.UpdatedAt = now.UTC().Format(time.RFC3339)

	present := make(map[string]bool, len(events))
	for _, evt := range events {
		present[evt.Fingerprint()] = true
	}

	for _, evt := range events {
		fp := evt.Fingerprint()
		evt.FirstSeen = firstSeen(previous, evt, present, now)
		snap.Events[fp] = evt
		snap.TitleIndex[evt.TitleKey()] = fp
	}

	return snap
}

func firstSeen(previous *Snapshot, evt *Event, present map[string]bool, now time.Time) time.Time {
	if previous != nil {
		if prev, ok := previous.Events[evt.Fingerprint()]; ok && !prev.FirstSeen.IsZero() {
			return prev.FirstSeen
		}
		if fp, ok := previous.TitleIndex[evt.TitleKey()]; ok && !present[fp] {
			if prev := previous.Events[fp]; prev != nil && !prev.FirstSeen.IsZero() {
				return prev.FirstSeen
			}
		}
	}
	return now.UTC()
}

func dateString(d *Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
