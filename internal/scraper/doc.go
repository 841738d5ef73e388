// Package scraper fetches venue listing pages and extracts raw event candidates with CSS
// selectors.
//
// Each Source names the selector of one listing item and, relative to it, the selectors of
// title, date, venue, link, image and description. The scraper does no cleanup beyond
// taking the first line of the title and resolving relative URLs; classification and
// normalization happen downstream in the pipeline.
package scraper
