package crawler

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/doccrawl/doccrawl/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchScheduler fans a round of URLs out to the PageFetcher in
// fixed-size chunks. Members of a chunk run concurrently; the scheduler
// waits for the whole chunk before starting the next (a join-all
// barrier). Chunking is the throttling policy: batch size 5 with an API
// credential, 1 without.
//
// Design decision: We use errgroup rather than a hand-rolled WaitGroup
// because the contract is "all members of a chunk complete before the
// next chunk starts", and errgroup gives us that barrier plus propagation
// of the only errors that matter here (filesystem failures).
type BatchScheduler struct {
	// fetcher resolves individual URLs.
	fetcher *PageFetcher

	// baseURL scopes discovered links. The test is a plain substring
	// match against this value — see RunBatch.
	baseURL string

	// batchSize is the number of concurrent fetches per chunk.
	batchSize int

	// logger for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchScheduler.
type BatchOption func(*BatchScheduler)

// WithBatchLogger sets a custom logger for the scheduler.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchScheduler) {
		b.logger = logger
	}
}

// NewBatchScheduler creates a scheduler for the given base URL.
// A batchSize below 1 is treated as 1 (fully sequential).
func NewBatchScheduler(fetcher *PageFetcher, baseURL string, batchSize int, opts ...BatchOption) *BatchScheduler {
	if batchSize < 1 {
		batchSize = 1
	}

	b := &BatchScheduler{
		fetcher:   fetcher,
		baseURL:   baseURL,
		batchSize: batchSize,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// RunBatch processes urls chunk by chunk and returns the deduplicated set
// of discovered in-scope links plus one PageResult per input URL.
//
// Scope filtering is a substring test: a link survives iff it contains
// the base URL. This is deliberately not a proper host match, so it can
// both over-match (unrelated domains embedding the base URL as a
// substring) and under-match (same site reached via a different scheme or
// subdomain spelling). Known limitation, kept as documented behavior.
//
// The only error returned is a filesystem failure from a fetch; it
// cancels the remaining members of the chunk's errgroup and terminates
// the run.
func (b *BatchScheduler) RunBatch(ctx context.Context, urls []string) (map[string]struct{}, []model.PageResult, error) {
	discovered := make(map[string]struct{})
	results := make([]model.PageResult, 0, len(urls))

	var mu sync.Mutex

	for start := 0; start < len(urls); start += b.batchSize {
		end := min(start+b.batchSize, len(urls))
		chunk := urls[start:end]

		b.logger.Debug("dispatching chunk",
			"size", len(chunk),
			"progress", end,
			"round_total", len(urls),
		)

		g, gctx := errgroup.WithContext(ctx)
		for _, pageURL := range chunk {
			pageURL := pageURL
			g.Go(func() error {
				result, links, err := b.fetcher.FetchPage(gctx, pageURL)
				if err != nil {
					return err
				}

				mu.Lock()
				results = append(results, result)
				for _, link := range links {
					if strings.Contains(link, b.baseURL) {
						discovered[link] = struct{}{}
					}
				}
				mu.Unlock()
				return nil
			})
		}

		// Join-all barrier: the next chunk starts only after every
		// member of this one completed.
		if err := g.Wait(); err != nil {
			return discovered, results, err
		}
	}

	return discovered, results, nil
}

// BatchSize returns the per-chunk concurrency.
func (b *BatchScheduler) BatchSize() int {
	return b.batchSize
}
