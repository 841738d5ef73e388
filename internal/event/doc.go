// Package event provides the record types shared by every stage of the venue event pipeline.
//
// A Candidate is the unvalidated fragment a scraper hands over; an Event is the canonical,
// normalized record the pipeline emits. The package also holds the date normalizer, which
// turns free-text dates (English or French month names, numeric and ISO forms) into a
// calendar Date, and the snapshot diff used to detect new events across runs. Dates that
// cannot be derived from the text stay nil: nothing here ever substitutes "today".
package event
