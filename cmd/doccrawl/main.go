// Package main provides the entry point for the doccrawl CLI.
//
// doccrawl crawls a documentation site through a text-extraction service,
// stores each page as plain text, and concatenates everything into a
// single artifact suitable for feeding to other tools.
//
// Usage:
//
//	doccrawl crawl <entry-url>
//	doccrawl crawl <entry-url> <api-token>
//
// See --help for all available options.
package main

// main is the entry point for doccrawl.
func main() {
	Execute()
}
