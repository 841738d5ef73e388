package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/pfrederiksen/venue-events/internal/calendar"
	"github.com/pfrederiksen/venue-events/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

// CalendarName is the X-WR-CALNAME of exported calendars
const CalendarName = "Venue Events"

// column widths of the text table, in terminal cells
const (
	dateWidth  = 10
	timeWidth  = 5
	titleWidth = 48
	venueWidth = 32
)

// OutputResult contains data to be output
type OutputResult struct {
	GeneratedAt   time.Time            `json:"generated_at"`
	ReferenceDate string               `json:"reference_date"`
	Events        []*event.Event       `json:"events"`
	EventCount    int                  `json:"event_count"`
	Candidates    int                  `json:"candidates"`
	Rejected      int                  `json:"rejected"`
	Duplicates    int                  `json:"duplicates"`
	Filter        string               `json:"filter,omitempty"`
	NewOnly       bool                 `json:"new_only,omitempty"`
	Changes       []*event.EventChange `json:"changes,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		if result.Events == nil {
			result.Events = []*event.Event{}
		}
		return writeJSON(w, result)
	case FormatICS:
		_, err := io.WriteString(w, calendar.GenerateICS(result.Events, CalendarName, result.GeneratedAt))
		return err
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeText outputs results as an aligned table
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	label := "events"
	if result.NewOnly {
		label = "new events"
	}

	if result.Filter != "" {
		fmt.Fprintf(w, "Filter: %s\n", result.Filter)
	}

	if result.EventCount == 0 {
		fmt.Fprintf(w, "No %s found.\n", label)
	} else {
		fmt.Fprintln(w, row("DATE", "TIME", "TITLE", "VENUE"))
		for _, evt := range result.Events {
			fmt.Fprintln(w, eventRow(evt))
			if verbose {
				fmt.Fprintf(w, "    ID: %s  Source: %s\n", evt.ID, evt.Source)
				if evt.URL != "" {
					fmt.Fprintf(w, "    URL: %s\n", evt.URL)
				}
				if evt.Description != "" {
					fmt.Fprintf(w, "    %s\n", runewidth.Truncate(evt.Description, 76, "…"))
				}
			}
		}
	}

	for _, change := range result.Changes {
		fmt.Fprintf(w, "CHANGED %s: %s %q → %q\n", change.Title, change.ChangeType, change.OldValue, change.NewValue)
	}

	fmt.Fprintf(w, "\nTotal: %d %s (%d candidates, %d rejected, %d duplicates)\n",
		result.EventCount, label, result.Candidates, result.Rejected, result.Duplicates)

	return nil
}

func eventRow(evt *event.Event) string {
	date, clock := "TBA", ""
	if evt.Date != nil {
		date = evt.Date.String()
	}
	if evt.StartTime != nil {
		clock = evt.StartTime.String()
	}

	venue := evt.Venue.Name
	if evt.Venue.City != "" {
		venue += ", " + evt.Venue.City
	}

	return row(date, clock, evt.Title, venue)
}

// row pads by display width so wide (CJK, emoji) titles keep the columns aligned.
func row(date, clock, title, venue string) string {
	cols := []string{
		runewidth.FillRight(date, dateWidth),
		runewidth.FillRight(clock, timeWidth),
		runewidth.FillRight(runewidth.Truncate(title, titleWidth, "…"), titleWidth),
		runewidth.Truncate(venue, venueWidth, "…"),
	}
	return strings.TrimRight(strings.Join(cols, "  "), " ")
}
