// Package pipeline turns a batch of raw candidates into accepted, normalized and
// deduplicated events:
//
//	candidates → classify → normalize → dedupe → events
//
// Every step is total. A malformed candidate is rejected or loses its date; it never
// aborts the batch. The pipeline holds no state between runs.
package pipeline
