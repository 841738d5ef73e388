// Package classify decides whether a scraped candidate is a real event listing or page
// furniture.
//
// Rejection rules are data, not code: a Vocabulary holds the title length bounds, the
// navigation/boilerplate vocabulary and the generic-program patterns, and can be replaced
// or extended from configuration. Classification is a pure function of the candidate's
// title; it never logs and never fails.
package classify
