// Package filter narrows the pipeline output down to the events a caller asked for.
//
// Filters combine several criteria; an event must pass all of them:
//   - Date ranges (from/to dates, inclusive)
//   - Venue names (substring matching, case-insensitive)
//   - Cities (substring matching, case-insensitive)
//   - Sources and categories (exact, case-insensitive)
//   - Weekends only (Saturday/Sunday)
//   - Dated only
//
// Events without a date pass the date criteria unless DatedOnly is set: an undated event
// is still a useful listing, and only the caller can decide otherwise.
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.WeekendsOnly = true
//	f.Venues = []string{"The Rex"}
//
//	filtered := f.Apply(events)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/venue-events/internal/event"
)

// Filter represents event filtering criteria
type Filter struct {
	// Date range filtering
	DateFrom *event.Date `json:"date_from,omitempty"`
	DateTo   *event.Date `json:"date_to,omitempty"`

	// Venue name filtering (case-insensitive substring match)
	Venues []string `json:"venues,omitempty"`

	// City filtering (case-insensitive substring match)
	Cities []string `json:"cities,omitempty"`

	// Source and category filtering (case-insensitive exact match)
	Sources    []string `json:"sources,omitempty"`
	Categories []string `json:"categories,omitempty"`

	// Weekend-only filtering (Saturday/Sunday)
	WeekendsOnly bool `json:"weekends_only,omitempty"`

	// Drop events whose date is unknown
	DatedOnly bool `json:"dated_only,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all events until criteria are added.
func NewFilter() *Filter {
	return &Filter{}
}

// IsEmpty checks if the filter has any active criteria.
// Returns true if the filter would match all events.
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Venues) == 0 &&
		len(f.Cities) == 0 &&
		len(f.Sources) == 0 &&
		len(f.Categories) == 0 &&
		!f.WeekendsOnly &&
		!f.DatedOnly
}

// Matches checks if an event matches all active filter criteria.
// An empty filter matches all events.
func (f *Filter) Matches(evt *event.Event) bool {
	if f.IsEmpty() {
		return true
	}

	if evt.Date == nil {
		if f.DatedOnly {
			return false
		}
	} else {
		if f.DateFrom != nil && evt.Date.Before(*f.DateFrom) {
			return false
		}
		if f.DateTo != nil && evt.Date.After(*f.DateTo) {
			return false
		}
		if f.WeekendsOnly {
			weekday := evt.Date.Weekday()
			if weekday != time.Saturday && weekday != time.Sunday {
				return false
			}
		}
	}

	if len(f.Venues) > 0 && !containsAny(evt.Venue.Name, f.Venues) {
		return false
	}

	if len(f.Cities) > 0 && !containsAny(evt.Venue.City, f.Cities) {
		return false
	}

	if len(f.Sources) > 0 && !equalsAny(evt.Source, f.Sources) {
		return false
	}

	if len(f.Categories) > 0 && !equalsAny(evt.Category, f.Categories) {
		return false
	}

	return true
}

func containsAny(value string, needles []string) bool {
	lower := strings.ToLower(value)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

func equalsAny(value string, candidates []string) bool {
	for _, c := range candidates {
		if strings.EqualFold(value, c) {
			return true
		}
	}
	return false
}

// Apply applies the filter to a list of events and returns only matching events.
// If the filter is empty, returns the original list unchanged.
func (f *Filter) Apply(events []*event.Event) []*event.Event {
	if f.IsEmpty() {
		return events
	}

	filtered := make([]*event.Event, 0, len(events))
	for _, evt := range events {
		if f.Matches(evt) {
			filtered = append(filtered, evt)
		}
	}

	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "From: Dec 1, 2025 | To: Dec 15, 2025 | Venues: The Rex | Weekends only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom.Time().Format("Jan 2, 2006")))
	}

	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo.Time().Format("Jan 2, 2006")))
	}

	if len(f.Venues) > 0 {
		parts = append(parts, fmt.Sprintf("Venues: %s", strings.Join(f.Venues, ", ")))
	}

	if len(f.Cities) > 0 {
		parts = append(parts, fmt.Sprintf("Cities: %s", strings.Join(f.Cities, ", ")))
	}

	if len(f.Sources) > 0 {
		parts = append(parts, fmt.Sprintf("Sources: %s", strings.Join(f.Sources, ", ")))
	}

	if len(f.Categories) > 0 {
		parts = append(parts, fmt.Sprintf("Categories: %s", strings.Join(f.Categories, ", ")))
	}

	if f.WeekendsOnly {
		parts = append(parts, "Weekends only")
	}

	if f.DatedOnly {
		parts = append(parts, "Dated only")
	}

	return strings.Join(parts, " | ")
}

// Clone creates a deep copy of the filter.
func (f *Filter) Clone() *Filter {
	clone := &Filter{
		WeekendsOnly: f.WeekendsOnly,
		DatedOnly:    f.DatedOnly,
		Venues:       cloneStrings(f.Venues),
		Cities:       cloneStrings(f.Cities),
		Sources:      cloneStrings(f.Sources),
		Categories:   cloneStrings(f.Categories),
	}

	if f.DateFrom != nil {
		df := *f.DateFrom
		clone.DateFrom = &df
	}

	if f.DateTo != nil {
		dt := *f.DateTo
		clone.DateTo = &dt
	}

	return clone
}

func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
