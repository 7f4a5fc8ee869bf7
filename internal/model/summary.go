package model

import "time"

// Summary is the condensed view of a crawl, used by report writers.
//
// Design decision: Report writers consume a Summary rather than the raw
// CrawlReport so formatting code never re-derives counters, and so the
// summary can be reconstructed later from the history database without
// the per-page detail.
type Summary struct {
	// BaseURL is the crawl entry URL.
	BaseURL string `json:"base_url"`

	// OutputDir holds the per-page files and combined artifact.
	OutputDir string `json:"output_dir"`

	// BatchSize is the per-chunk concurrency used.
	BatchSize int `json:"batch_size"`

	// Total is the number of URLs processed.
	Total int `json:"total"`

	// Fetched is the number of pages fetched over the network.
	Fetched int `json:"fetched"`

	// Cached is the number of pages served from existing files.
	Cached int `json:"cached"`

	// Failed is the number of pages that could not be delivered.
	Failed int `json:"failed"`

	// TotalBytes is the combined size of all stored page bodies.
	TotalBytes int64 `json:"total_bytes"`

	// Elapsed is the total crawl duration.
	Elapsed time.Duration `json:"elapsed"`

	// FailedURLs lists the URLs that failed, for operator follow-up.
	FailedURLs []string `json:"failed_urls,omitempty"`

	// GeneratedAt is when this summary was produced.
	GeneratedAt time.Time `json:"generated_at"`
}

// NewSummary derives a Summary from a finished crawl report.
func NewSummary(r *CrawlReport) *Summary {
	s := &Summary{
		BaseURL:     r.BaseURL,
		OutputDir:   r.OutputDir,
		BatchSize:   r.BatchSize,
		Total:       len(r.Pages),
		Fetched:     r.Fetched(),
		Cached:      r.Cached(),
		Failed:      r.Failed(),
		TotalBytes:  r.TotalBytes(),
		Elapsed:     r.Elapsed,
		GeneratedAt: time.Now(),
	}
	for _, p := range r.Pages {
		if p.Failed {
			s.FailedURLs = append(s.FailedURLs, p.URL)
		}
	}
	return s
}
