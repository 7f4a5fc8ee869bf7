package model

import (
	"time"
)

// PageResult records the outcome of processing a single URL during a crawl.
type PageResult struct {
	// URL is the cleaned page URL that was processed.
	URL string `json:"url"`

	// Slug is the filesystem-safe name the page was stored under.
	Slug string `json:"slug"`

	// Bytes is the size of the stored page body.
	Bytes int64 `json:"bytes"`

	// FromCache is true when the page file already existed on disk and
	// no network fetch was issued (the resume path).
	FromCache bool `json:"from_cache"`

	// Failed is true when the extraction service could not deliver the
	// page. Failed pages produce no file and discover no links.
	Failed bool `json:"failed"`

	// Links is the number of URLs discovered in the page text before
	// any domain-scope filtering.
	Links int `json:"links"`

	// Elapsed is the wall-clock time spent processing the page.
	Elapsed time.Duration `json:"elapsed"`
}

// CrawlReport accumulates the state of a single crawl run.
// Pipeline steps receive the report and fold their results into it,
// mirroring how the crawl frontier folds batch results into its sets.
type CrawlReport struct {
	// BaseURL is the entry URL, which doubles as the domain-scope filter.
	BaseURL string `json:"base_url"`

	// OutputDir is the directory holding per-page files and the
	// combined artifact.
	OutputDir string `json:"output_dir"`

	// BatchSize is the per-chunk concurrency used for this run.
	BatchSize int `json:"batch_size"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the total crawl duration, set when the run finishes.
	Elapsed time.Duration `json:"elapsed"`

	// Pages holds one result per processed URL.
	Pages []PageResult `json:"pages"`

	// ConcatenatedPages is the number of files folded into the combined
	// artifact.
	ConcatenatedPages int `json:"concatenated_pages"`

	// PerformedSteps lists pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps"`

	// Cancelled is true when the run was interrupted between rounds.
	Cancelled bool `json:"cancelled"`

	// Error is the first fatal error encountered, if any.
	Error error `json:"-"`

	// ErrorMessage mirrors Error for serialized output.
	ErrorMessage string `json:"error,omitempty"`
}

// NewCrawlReport creates a report for a crawl of baseURL.
func NewCrawlReport(baseURL, outputDir string) *CrawlReport {
	return &CrawlReport{
		BaseURL:   baseURL,
		OutputDir: outputDir,
		StartedAt: time.Now(),
		Pages:     make([]PageResult, 0),
	}
}

// Fetched returns the number of pages fetched over the network.
func (r *CrawlReport) Fetched() int {
	n := 0
	for _, p := range r.Pages {
		if !p.FromCache && !p.Failed {
			n++
		}
	}
	return n
}

// Cached returns the number of pages served from existing files.
func (r *CrawlReport) Cached() int {
	n := 0
	for _, p := range r.Pages {
		if p.FromCache {
			n++
		}
	}
	return n
}

// Failed returns the number of pages the extraction service could not
// deliver.
func (r *CrawlReport) Failed() int {
	n := 0
	for _, p := range r.Pages {
		if p.Failed {
			n++
		}
	}
	return n
}

// TotalBytes returns the total size of all stored page bodies.
func (r *CrawlReport) TotalBytes() int64 {
	var total int64
	for _, p := range r.Pages {
		total += p.Bytes
	}
	return total
}
