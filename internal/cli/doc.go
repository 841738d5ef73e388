// Package cli implements the command-line interface for venue-events.
//
// The cli package provides the Cobra-based CLI: process reads raw candidates as JSON,
// scrape fetches the configured sources, and classify explains the verdict for one title.
// Output is text, JSON or iCalendar, optionally sorted and filtered. With --new-only the
// run is compared with the snapshot of the previous run, and only events not seen before
// are reported (exit code 2 when there are any).
package cli
