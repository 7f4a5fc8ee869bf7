// Package model defines the data structures shared across the crawl
// pipeline: per-page results, the accumulated crawl report, and the
// condensed summary consumed by report writers and the history database.
package model
