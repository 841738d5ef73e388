// Package normalize maps accepted candidates onto the canonical event.Event shape.
//
// Text fields are trimmed and whitespace-collapsed, the date text goes through
// event.NormalizeDate, the venue name falls back to the candidate's source, and logo or
// placeholder images are dropped by a single predicate. Every call assigns a fresh ID.
package normalize
