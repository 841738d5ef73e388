package normalize

import (
	"strings"

	"github.com/google/uuid"

	"github.com/pfrederiksen/venue-events/internal/event"
)

// DefaultPlaceholderMarkers are URL fragments of images that are not event artwork.
var DefaultPlaceholderMarkers = []string{
	"placeholder",
	"1x1",
	"spinner",
	"logo",
	"spacer",
	"blank.gif",
	"default-image",
	"no-image",
	"favicon",
	"pixel.gif",
}

// UnknownVenue names the venue of a candidate that carries neither a venue name nor a source.
const UnknownVenue = "unknown venue"

// Normalizer turns candidates into events
type Normalizer struct {
	placeholderMarkers []string
	newID              func() string
}

// Option configures a Normalizer
type Option func(*Normalizer)

// WithPlaceholderMarkers replaces the placeholder image markers.
func WithPlaceholderMarkers(markers []string) Option {
	return func(n *Normalizer) {
		n.placeholderMarkers = lowerAll(markers)
	}
}

// WithIDFunc replaces the ID generator (uuid v4 by default). A nil func is ignored.
func WithIDFunc(newID func() string) Option {
	return func(n *Normalizer) {
		if newID != nil {
			n.newID = newID
		}
	}
}

// New creates a Normalizer
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		placeholderMarkers: lowerAll(DefaultPlaceholderMarkers),
		newID:              uuid.NewString,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize builds an Event from cand. The candidate is taken by value and left untouched.
// Date is nil when the date text holds no derivable date.
func (n *Normalizer) Normalize(cand event.Candidate, ref event.Date) *event.Event {
	source := event.CleanText(cand.Source)

	venueName := event.CleanText(cand.VenueName)
	if venueName == "" {
		venueName = source
	}
	if venueName == "" {
		venueName = UnknownVenue
	}

	imageURL := strings.TrimSpace(cand.ImageURL)
	if n.IsPlaceholderImage(imageURL) {
		imageURL = ""
	}

	return &event.Event{
		ID:        n.newID(),
		Title:     event.CleanText(cand.Title),
		Date:      event.NormalizeDate(cand.DateText, ref),
		StartTime: event.ParseClock(cand.DateText),
		Venue: event.Venue{
			Name:    venueName,
			Address: event.CleanText(cand.VenueAddress),
			City:    event.CleanText(cand.City),
		},
		URL:         strings.TrimSpace(cand.URL),
		Description: event.CleanText(cand.Description),
		ImageURL:    imageURL,
		Category:    strings.TrimSpace(cand.Category),
		Source:      source,
	}
}

// IsPlaceholderImage reports whether url should not be kept as event artwork: empty URLs,
// inline data URIs and URLs containing one of the placeholder markers.
func (n *Normalizer) IsPlaceholderImage(url string) bool {
	lower := strings.ToLower(strings.TrimSpace(url))
	if lower == "" || strings.HasPrefix(lower, "data:") {
		return true
	}
	for _, marker := range n.placeholderMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
