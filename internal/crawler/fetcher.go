package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/doccrawl/doccrawl/internal/model"
	"github.com/doccrawl/doccrawl/internal/store"
	"github.com/doccrawl/doccrawl/internal/urlutil"
)

// Extractor converts a live URL into its plain-text rendering.
// The production implementation is the extract.Client; tests substitute
// in-memory fakes.
type Extractor interface {
	Extract(ctx context.Context, pageURL string) (string, error)
}

// PageFetcher resolves a single URL into discovered links.
//
// The fetcher checks the page store first: if the page file already
// exists it re-derives links from the stored content without touching the
// network. This is what makes an interrupted crawl resumable by simple
// re-invocation. Otherwise it asks the extraction service for the page
// and persists the body verbatim.
type PageFetcher struct {
	// extractor is the text-extraction collaborator.
	extractor Extractor

	// store persists page bodies and answers presence checks.
	store *store.PageStore

	// logger for per-page structured logging.
	logger *slog.Logger
}

// PageFetcherOption configures a PageFetcher.
type PageFetcherOption func(*PageFetcher)

// WithFetcherLogger sets a custom logger.
func WithFetcherLogger(logger *slog.Logger) PageFetcherOption {
	return func(f *PageFetcher) {
		f.logger = logger
	}
}

// NewPageFetcher creates a PageFetcher.
//
// Design decision: We require the extractor and store rather than
// constructing them internally because:
//  1. Endpoint and credential configuration belongs to the extract package
//  2. The store's directory derivation belongs to the caller
//  3. Tests can substitute fakes for both
func NewPageFetcher(extractor Extractor, st *store.PageStore, opts ...PageFetcherOption) *PageFetcher {
	f := &PageFetcher{
		extractor: extractor,
		store:     st,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}

	return f
}

// FetchPage processes one URL and returns its outcome together with the
// links discovered in the page text.
//
// Fetch failures (network error, timeout, non-2xx) are recovered locally:
// the result is marked Failed, no file is written, and no links are
// returned. One page's failure must never abort the crawl; re-invocation
// picks it up again because its file is absent.
//
// Filesystem errors are returned to the caller. They indicate a broken
// environment and terminate the run.
func (f *PageFetcher) FetchPage(ctx context.Context, pageURL string) (model.PageResult, []string, error) {
	start := time.Now()
	slug := urlutil.Slugify(pageURL)
	result := model.PageResult{URL: pageURL, Slug: slug}

	// Resume path: the file's presence means the page was already
	// processed in a prior run. Re-derive links without a network call.
	if f.store.Exists(slug) {
		content, err := f.store.Read(slug)
		if err != nil {
			return result, nil, err
		}

		links := urlutil.ExtractLinks(content)
		result.FromCache = true
		result.Bytes = int64(len(content))
		result.Links = len(links)
		result.Elapsed = time.Since(start)

		f.logger.Debug("page served from cache",
			"url", pageURL,
			"links", len(links),
		)
		return result, links, nil
	}

	body, err := f.extractor.Extract(ctx, pageURL)
	if err != nil {
		result.Failed = true
		result.Elapsed = time.Since(start)

		f.logger.Warn("page fetch failed",
			"url", pageURL,
			"error", err,
		)
		return result, nil, nil
	}

	if err := f.store.Write(slug, body); err != nil {
		return result, nil, err
	}

	links := urlutil.ExtractLinks(body)
	result.Bytes = int64(len(body))
	result.Links = len(links)
	result.Elapsed = time.Since(start)

	f.logger.Debug("page fetched",
		"url", pageURL,
		"bytes", result.Bytes,
		"links", len(links),
	)
	return result, links, nil
}
