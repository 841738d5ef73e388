package dedupe

import "github.com/pfrederiksen/venue-events/internal/event"

// Key returns the deduplication key of e.
func Key(e *event.Event) string {
	return e.Key()
}

// Dedupe returns events with duplicates removed. The survivors keep the position of the
// first event seen for their key; a more complete later duplicate takes that position.
// The input slice is not modified.
func Dedupe(events []*event.Event) []*event.Event {
	out := make([]*event.Event, 0, len(events))
	index := make(map[string]int, len(events))

	for _, evt := range events {
		if evt == nil {
			continue
		}
		key := Key(evt)
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, evt)
			continue
		}
		if evt.Completeness() > out[i].Completeness() {
			out[i] = evt
		}
	}

	return out
}
