package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/venue-events/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate  SortOrder = "date"
	SortByVenue SortOrder = "venue"
	SortByTitle SortOrder = "title"
)

func validSortOrder(o SortOrder) bool {
	return o == SortByDate || o == SortByVenue || o == SortByTitle
}

// sortEvents sorts a slice of events based on the specified sort order. Ties keep their
// input order.
func sortEvents(events []*event.Event, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDate:
		sort.SliceStable(events, func(i, j int) bool {
			return compareByDate(events[i], events[j])
		})
	case SortByVenue:
		sort.SliceStable(events, func(i, j int) bool {
			vi, vj := strings.ToLower(events[i].Venue.Name), strings.ToLower(events[j].Venue.Name)
			if vi != vj {
				return vi < vj
			}
			return compareByDate(events[i], events[j])
		})
	case SortByTitle:
		sort.SliceStable(events, func(i, j int) bool {
			ti, tj := strings.ToLower(events[i].Title), strings.ToLower(events[j].Title)
			if ti != tj {
				return ti < tj
			}
			return compareByDate(events[i], events[j])
		})
	}
}

// compareByDate reports whether i sorts before j. Undated events go last; equal dates
// fall back to start time, then venue, then title.
func compareByDate(i, j *event.Event) bool {
	switch {
	case i.Date != nil && j.Date != nil:
		if *i.Date != *j.Date {
			return i.Date.Before(*j.Date)
		}
		if ci, cj := clockMinutes(i), clockMinutes(j); ci != cj {
			return ci < cj
		}
	case i.Date != nil:
		return true
	case j.Date != nil:
		return false
	}

	vi, vj := strings.ToLower(i.Venue.Name), strings.ToLower(j.Venue.Name)
	if vi != vj {
		return vi < vj
	}
	return strings.ToLower(i.Title) < strings.ToLower(j.Title)
}

// clockMinutes puts events without a start time after timed ones on the same day
func clockMinutes(e *event.Event) int {
	if e.StartTime == nil {
		return 24 * 60
	}
	return e.StartTime.Hour*60 + e.StartTime.Minute
}
