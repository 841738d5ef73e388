package calendar

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pfrederiksen/venue-events/internal/event"
)

// DefaultDuration is the length given to events with a start time.
const DefaultDuration = 2 * time.Hour

// GenerateICS renders events as one iCalendar (.ics) document named calendarName (may be
// empty). Events without a date are skipped. An event with a start time gets a floating
// local DTSTART/DTEND; the rest are all-day events.
func GenerateICS(events []*event.Event, calendarName string, now time.Time) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//Venue Events//venue-events//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	if calendarName != "" {
		writeLine(&ics, fmt.Sprintf("X-WR-CALNAME:%s", escapeICS(calendarName)))
	}

	for _, evt := range events {
		if evt == nil || evt.Date == nil {
			continue
		}
		writeEvent(&ics, evt, now)
	}

	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String()
}

// CountExportable returns how many of events GenerateICS would include.
func CountExportable(events []*event.Event) int {
	n := 0
	for _, evt := range events {
		if evt != nil && evt.Date != nil {
			n++
		}
	}
	return n
}

func writeEvent(ics *strings.Builder, evt *event.Event, now time.Time) {
	ics.WriteString("BEGIN:VEVENT\r\n")

	// The fingerprint is stable across runs, so re-imports update instead of duplicating.
	writeLine(ics, fmt.Sprintf("UID:%s@venue-events", evt.Fingerprint()))
	writeLine(ics, fmt.Sprintf("DTSTAMP:%s", formatICSTime(now)))

	if evt.StartTime != nil {
		start := time.Date(evt.Date.Year, evt.Date.Month, evt.Date.Day, evt.StartTime.Hour, evt.StartTime.Minute, 0, 0, time.UTC)
		end := start.Add(DefaultDuration)
		writeLine(ics, fmt.Sprintf("DTSTART:%s", formatLocalTime(start)))
		writeLine(ics, fmt.Sprintf("DTEND:%s", formatLocalTime(end)))
	} else {
		start := evt.Date.Time()
		writeLine(ics, fmt.Sprintf("DTSTART;VALUE=DATE:%s", start.Format("20060102")))
		writeLine(ics, fmt.Sprintf("DTEND;VALUE=DATE:%s", start.AddDate(0, 0, 1).Format("20060102")))
	}

	writeLine(ics, fmt.Sprintf("SUMMARY:%s", escapeICS(evt.Title)))

	if evt.Description != "" {
		writeLine(ics, fmt.Sprintf("DESCRIPTION:%s", escapeICS(evt.Description)))
	}

	writeLine(ics, fmt.Sprintf("LOCATION:%s", escapeICS(location(evt.Venue))))

	if evt.URL != "" {
		writeLine(ics, fmt.Sprintf("URL:%s", evt.URL))
	}
	if evt.Category != "" {
		writeLine(ics, fmt.Sprintf("CATEGORIES:%s", escapeICS(evt.Category)))
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

func location(v event.Venue) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{v.Name, v.Address, v.City} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// writeLine folds content lines longer than 75 octets (RFC 5545 section 3.1) without
// splitting a UTF-8 sequence. Continuation lines start with a space that counts toward
// the limit.
func writeLine(ics *strings.Builder, line string) {
	limit := 75
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		ics.WriteString(line[:cut])
		ics.WriteString("\r\n ")
		line = line[cut:]
		limit = 74
	}
	ics.WriteString(line)
	ics.WriteString("\r\n")
}

// formatICSTime formats a time.Time as an iCalendar UTC datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// formatLocalTime formats a floating (venue local) datetime
func formatLocalTime(t time.Time) string {
	return t.Format("20060102T150405")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
