// Package config provides configuration structures and utilities for
// doccrawl: crawl and concurrency settings, extraction service options,
// and per-site overrides from the .doccrawl file.
package config
