// Package crawler implements the crawl frontier and its fan-out
// machinery: the visited/to-visit sets and round loop, the fixed-size
// batch scheduler with its join-all barrier, and the cache-aware page
// fetcher that turns URLs into discovered links.
package crawler
