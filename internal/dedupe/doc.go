// Package dedupe collapses events of one batch that describe the same real-world event.
//
// Two events are duplicates when they share a Key: the lowercased title plus the date, or
// the lowercased title plus the venue name when the date is unknown. The first event seen
// is kept unless a later duplicate has strictly more of description, image and date set.
package dedupe
