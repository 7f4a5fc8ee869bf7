package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/doccrawl/doccrawl/internal/crawler"
	"github.com/doccrawl/doccrawl/internal/model"
	"github.com/doccrawl/doccrawl/internal/store"
)

// CrawlStep drives the frontier loop until every reachable in-scope page
// is fetched or served from disk. It is the only step that touches the
// network.
type CrawlStep struct {
	crawler *crawler.Crawler
	logger  *slog.Logger
}

// NewCrawlStep creates the crawl phase from an assembled crawler.
func NewCrawlStep(c *crawler.Crawler, logger *slog.Logger) *CrawlStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CrawlStep{crawler: c, logger: logger}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do runs the frontier loop and stamps the elapsed time on the report.
func (s *CrawlStep) Do(ctx context.Context, report *model.CrawlReport) error {
	start := time.Now()
	err := s.crawler.Run(ctx, report)
	report.Elapsed = time.Since(start)
	if err != nil {
		return fmt.Errorf("crawl aborted: %w", err)
	}

	s.logger.Info("crawl finished",
		"pages", len(report.Pages),
		"fetched", report.Fetched(),
		"cached", report.Cached(),
		"failed", report.Failed(),
		"elapsed", report.Elapsed,
	)
	return nil
}

// ConcatenateStep produces the combined artifact once the frontier has
// drained. It always rebuilds the artifact, so a resumed run that fetched
// nothing new still regenerates it.
type ConcatenateStep struct {
	store  *store.PageStore
	logger *slog.Logger
}

// NewConcatenateStep creates the aggregation phase.
func NewConcatenateStep(st *store.PageStore, logger *slog.Logger) *ConcatenateStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConcatenateStep{store: st, logger: logger}
}

// Name returns the step name.
func (s *ConcatenateStep) Name() string {
	return "concatenate"
}

// Do writes the combined artifact.
func (s *ConcatenateStep) Do(_ context.Context, report *model.CrawlReport) error {
	n, err := s.store.Concatenate()
	if err != nil {
		return fmt.Errorf("failed to build combined artifact: %w", err)
	}
	report.ConcatenatedPages = n

	s.logger.Info("combined artifact written",
		"pages", n,
		"file", store.CombinedArtifact,
	)
	return nil
}

// ReportSaver persists a finished crawl report. Implemented by
// database.CrawlDB.
type ReportSaver interface {
	SaveCrawlReport(ctx context.Context, report *model.CrawlReport) (int64, error)
}

// HistoryStep records the crawl session in the history database so later
// invocations can inspect past runs.
type HistoryStep struct {
	db     ReportSaver
	logger *slog.Logger
}

// NewHistoryStep creates the history phase.
func NewHistoryStep(db ReportSaver, logger *slog.Logger) *HistoryStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryStep{db: db, logger: logger}
}

// Name returns the step name.
func (s *HistoryStep) Name() string {
	return "history"
}

// Do saves the session.
func (s *HistoryStep) Do(ctx context.Context, report *model.CrawlReport) error {
	id, err := s.db.SaveCrawlReport(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to save crawl history: %w", err)
	}

	s.logger.Debug("crawl session recorded",
		"session_id", id,
		"site", report.BaseURL,
	)
	return nil
}
