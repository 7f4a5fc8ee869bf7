// Package store persists crawled pages as flat per-slug text files and
// produces the combined crawl artifact. File presence is the crawl's only
// resume signal.
package store
