// Package urlutil provides URL normalization, slug derivation, and
// plain-text link discovery for the crawl frontier.
package urlutil
