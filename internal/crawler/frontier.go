package crawler

import (
	"context"
	"log/slog"

	"github.com/doccrawl/doccrawl/internal/model"
	"github.com/doccrawl/doccrawl/internal/urlutil"
)

// DefaultRoundSize is the maximum number of URLs drained from the
// frontier per round.
const DefaultRoundSize = 50

// Frontier holds the two sets driving the crawl: URLs already dispatched
// (visited) and URLs pending dispatch (toVisit). All membership tests
// operate on cleaned URLs (fragment stripped).
//
// Invariant: toVisit and visited are disjoint at round boundaries. A URL
// moves from toVisit to visited at the moment it is selected for
// dispatch, not after its fetch completes, so a URL is never dispatched
// twice within a run even while its fetch is still pending.
//
// The frontier is only ever touched by the single control goroutine
// between batches, so no locking is needed; concurrent fetches return
// data that the control loop folds in afterwards.
type Frontier struct {
	visited   map[string]struct{}
	toVisit   map[string]struct{}
	roundSize int
}

// NewFrontier creates a frontier seeded with the cleaned entry URL.
func NewFrontier(entryURL string, roundSize int) *Frontier {
	if roundSize < 1 {
		roundSize = DefaultRoundSize
	}

	f := &Frontier{
		visited:   make(map[string]struct{}),
		toVisit:   make(map[string]struct{}),
		roundSize: roundSize,
	}
	f.toVisit[urlutil.Clean(entryURL)] = struct{}{}
	return f
}

// NextRound drains up to roundSize URLs from the pending set, marking
// each visited as it is selected. Order is arbitrary; only termination
// and the dedup invariant matter, not iteration order.
func (f *Frontier) NextRound() []string {
	round := make([]string, 0, min(f.roundSize, len(f.toVisit)))
	for u := range f.toVisit {
		if len(round) == f.roundSize {
			break
		}
		delete(f.toVisit, u)
		f.visited[u] = struct{}{}
		round = append(round, u)
	}
	return round
}

// Absorb cleans each discovered URL and adds it to the pending set unless
// it was already dispatched. It returns the number of URLs added. Set
// insertion is idempotent, so duplicates within discovered are harmless.
func (f *Frontier) Absorb(discovered map[string]struct{}) int {
	added := 0
	for u := range discovered {
		cleaned := urlutil.Clean(u)
		if _, ok := f.visited[cleaned]; ok {
			continue
		}
		if _, ok := f.toVisit[cleaned]; !ok {
			added++
		}
		f.toVisit[cleaned] = struct{}{}
	}
	return added
}

// Pending returns the number of URLs awaiting dispatch.
func (f *Frontier) Pending() int {
	return len(f.toVisit)
}

// VisitedCount returns the number of URLs dispatched so far.
func (f *Frontier) VisitedCount() int {
	return len(f.visited)
}

// Crawler drives the frontier loop: drain a round, fan it out through the
// batch scheduler, fold discovered links back in, repeat until the
// frontier is empty.
type Crawler struct {
	frontier  *Frontier
	scheduler *BatchScheduler
	logger    *slog.Logger
}

// CrawlerOption configures a Crawler.
type CrawlerOption func(*Crawler)

// WithCrawlerLogger sets a custom logger for the crawl loop.
func WithCrawlerLogger(logger *slog.Logger) CrawlerOption {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// NewCrawler creates a Crawler from a seeded frontier and a scheduler.
func NewCrawler(frontier *Frontier, scheduler *BatchScheduler, opts ...CrawlerOption) *Crawler {
	c := &Crawler{
		frontier:  frontier,
		scheduler: scheduler,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Run executes the crawl loop until the frontier drains, appending one
// PageResult per processed URL to the report.
//
// Cancellation is checked between rounds only: a dispatched fetch runs to
// completion (success, failure, or timeout) before the loop observes the
// context. There is no explicit iteration bound; termination relies on
// the scope filter and exhaustion of discoverable in-scope links.
func (c *Crawler) Run(ctx context.Context, report *model.CrawlReport) error {
	rounds := 0
	for c.frontier.Pending() > 0 {
		select {
		case <-ctx.Done():
			report.Cancelled = true
			c.logger.Warn("crawl cancelled between rounds",
				"pending", c.frontier.Pending(),
				"visited", c.frontier.VisitedCount(),
			)
			return ctx.Err()
		default:
		}

		round := c.frontier.NextRound()
		rounds++

		c.logger.Info("crawl round",
			"round", rounds,
			"urls", len(round),
			"pending", c.frontier.Pending(),
		)

		discovered, results, err := c.scheduler.RunBatch(ctx, round)
		report.Pages = append(report.Pages, results...)
		if err != nil {
			return err
		}

		added := c.frontier.Absorb(discovered)
		c.logger.Debug("round complete",
			"discovered", len(discovered),
			"new", added,
		)
	}

	c.logger.Info("frontier drained",
		"rounds", rounds,
		"visited", c.frontier.VisitedCount(),
	)
	return nil
}
