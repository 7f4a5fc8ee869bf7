package config

import "errors"

// Configuration validation errors returned by Config.Validate().
//
// Design decision: Package-level sentinel errors rather than fresh error
// instances so callers can use errors.Is() while the messages stay
// human-readable.
var (
	// ErrNoEntryURL is returned when no entry URL is provided. The entry
	// URL is both the crawl seed and the domain-scope filter, so nothing
	// can run without it.
	ErrNoEntryURL = errors.New("no entry URL specified: provide the documentation site's starting URL")

	// ErrNoEndpoint is returned when the extraction service endpoint is
	// empty.
	ErrNoEndpoint = errors.New("no extraction endpoint specified")

	// ErrInvalidTimeout is returned when the request timeout is not
	// positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRoundSize is returned when the frontier round size is
	// not positive.
	ErrInvalidRoundSize = errors.New("invalid round size: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is negative.
	// Zero is allowed and means "derive from the credential".
	ErrInvalidBatchSize = errors.New("invalid batch size: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is
	// negative. Zero means the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingSummaryFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingSummaryFormats = errors.New("conflicting summary formats: --json and --markdown cannot be used together")
)
