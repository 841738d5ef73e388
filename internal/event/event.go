package event

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"
)

// Candidate is a raw event fragment produced by a scraper. Any field other than Title and
// Source may be empty. The pipeline passes candidates by value and never modifies them.
type Candidate struct {
	Title        string `json:"title"`
	DateText     string `json:"date_text,omitempty"`
	VenueName    string `json:"venue_name,omitempty"`
	VenueAddress string `json:"venue_address,omitempty"`
	City         string `json:"city,omitempty"`
	URL          string `json:"url,omitempty"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	Category     string `json:"category,omitempty"`
	Source       string `json:"source"`
}

// Venue is where an event takes place. Name is never empty on a normalized Event.
type Venue struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
}

// Event is a normalized venue event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        *Date     `json:"date"` // nil when the date is unknown
	StartTime   *Clock    `json:"start_time,omitempty"`
	Venue       Venue     `json:"venue"`
	URL         string    `json:"url,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Category    string    `json:"category,omitempty"`
	Source      string    `json:"source"`
	FirstSeen   time.Time `json:"first_seen,omitzero"` // set by snapshots, not by normalization
}

// Key returns the deduplication key of the event: the lowercased title plus the date when
// one is known, otherwise the lowercased title plus the venue name.
func (e *Event) Key() string {
	title := strings.ToLower(e.Title)
	if e.Date != nil {
		return title + "|date:" + e.Date.String()
	}
	return title + "|venue:" + strings.ToLower(e.Venue.Name)
}

// Completeness counts the populated optional fields that decide which duplicate survives.
func (e *Event) Completeness() int {
	n := 0
	if e.Description != "" {
		n++
	}
	if e.ImageURL != "" {
		n++
	}
	if e.Date != nil {
		n++
	}
	return n
}

// Fingerprint returns a SHA1 of the event's Key. Unlike ID it is the same on every run,
// which makes it usable for snapshots.
func (e *Event) Fingerprint() string {
	return hashKey(e.Key())
}

// TitleKey identifies an event by source and normalized title only, so it survives a
// change of date or venue between runs.
func (e *Event) TitleKey() string {
	return hashKey(e.Source + "|" + strings.ToLower(strings.TrimSpace(e.Title)))
}

func hashKey(key string) string {
	h := sha1.New()
	h.Write([]byte(key))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// CleanText trims s and collapses every run of whitespace (newlines, tabs, non-breaking
// spaces) into a single space.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
