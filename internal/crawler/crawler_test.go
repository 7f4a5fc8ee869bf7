package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/doccrawl/doccrawl/internal/extract"
	"github.com/doccrawl/doccrawl/internal/model"
	"github.com/doccrawl/doccrawl/internal/store"
)

// extractionServer fakes the text-extraction service: it maps requested
// target URLs to canned plain-text bodies and counts requests.
func extractionServer(t *testing.T, pages map[string]string, hits *atomic.Int32) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		target := strings.TrimPrefix(r.URL.String(), "/")
		body, ok := pages[target]
		if !ok {
			http.Error(w, "unreachable", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
}

func runCrawl(t *testing.T, entryURL, dir string, client *extract.Client, batchSize int) *model.CrawlReport {
	t.Helper()

	st, err := store.New(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	fetcher := NewPageFetcher(client, st)
	scheduler := NewBatchScheduler(fetcher, entryURL, batchSize)
	c := NewCrawler(NewFrontier(entryURL, DefaultRoundSize), scheduler)

	report := model.NewCrawlReport(entryURL, dir)
	if err := c.Run(context.Background(), report); err != nil {
		t.Fatalf("crawl failed: %v", err)
	}
	return report
}

// TestCrawlEndToEnd crawls a two-page site through a fake extraction
// service and checks files, scoping, and the combined artifact.
func TestCrawlEndToEnd(t *testing.T) {
	t.Parallel()

	entry := "https://docs.example.com/"
	pages := map[string]string{
		"https://docs.example.com/":      "See https://docs.example.com/guide and https://other.com/x",
		"https://docs.example.com/guide": "done",
	}

	var hits atomic.Int32
	srv := extractionServer(t, pages, &hits)
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "docs.example.com_")
	client := extract.NewClient(extract.WithEndpoint(srv.URL))
	report := runCrawl(t, entry, dir, client, 1)

	if len(report.Pages) != 2 {
		t.Fatalf("expected 2 pages crawled, got %d", len(report.Pages))
	}

	for _, name := range []string{"docs.example.com_.txt", "docs.example.com_guide.txt"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected output file %s: %v", name, err)
		}
	}

	// The out-of-scope URL must never be fetched.
	if got := hits.Load(); got != 2 {
		t.Errorf("expected exactly 2 extraction requests, got %d", got)
	}

	st, err := store.New(dir)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	if _, err := st.Concatenate(); err != nil {
		t.Fatalf("Concatenate failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, store.CombinedArtifact))
	if err != nil {
		t.Fatalf("failed to read combined artifact: %v", err)
	}
	combined := string(data)
	for _, want := range []string{
		"===== docs.example.com_.txt =====",
		"===== docs.example.com_guide.txt =====",
		"done",
		"See https://docs.example.com/guide",
	} {
		if !strings.Contains(combined, want) {
			t.Errorf("combined artifact missing %q", want)
		}
	}
}

// TestCrawlResume verifies a second identical run performs zero network
// fetches because every page file already exists.
func TestCrawlResume(t *testing.T) {
	t.Parallel()

	entry := "https://docs.example.com/"
	pages := map[string]string{
		"https://docs.example.com/":      "next: https://docs.example.com/guide",
		"https://docs.example.com/guide": "done",
	}

	var hits atomic.Int32
	srv := extractionServer(t, pages, &hits)
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "out")
	client := extract.NewClient(extract.WithEndpoint(srv.URL))

	first := runCrawl(t, entry, dir, client, 1)
	if first.Fetched() != 2 {
		t.Fatalf("first run: expected 2 fetched, got %d", first.Fetched())
	}

	hits.Store(0)
	second := runCrawl(t, entry, dir, client, 1)
	if got := hits.Load(); got != 0 {
		t.Errorf("resumed run issued %d network fetches, want 0", got)
	}
	if second.Cached() != 2 {
		t.Errorf("resumed run: expected 2 cached pages, got %d", second.Cached())
	}
}

// TestCrawlResumeFollowsCachedLinks verifies a cached file still feeds
// the frontier: links inside it are followed even though the file itself
// is never re-fetched.
func TestCrawlResumeFollowsCachedLinks(t *testing.T) {
	t.Parallel()

	entry := "https://docs.example.com/"
	pages := map[string]string{
		// Only the linked page is available remotely; the root exists
		// solely as a pre-populated cache file.
		"https://docs.example.com/guide": "done",
	}

	var hits atomic.Int32
	srv := extractionServer(t, pages, &hits)
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "out")
	st, err := store.New(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := st.Write("docs.example.com_", "cached, see https://docs.example.com/guide"); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	client := extract.NewClient(extract.WithEndpoint(srv.URL))
	report := runCrawl(t, entry, dir, client, 1)

	if report.Cached() != 1 || report.Fetched() != 1 {
		t.Errorf("expected 1 cached + 1 fetched, got cached=%d fetched=%d",
			report.Cached(), report.Fetched())
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("expected exactly 1 network fetch (the linked page), got %d", got)
	}
}

// TestCrawlCancellation verifies cancellation is observed between rounds.
func TestCrawlCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := &fakeExtractor{pages: map[string]string{"https://a.com/": "x"}}
	st := newTestStore(t)
	fetcher := NewPageFetcher(ex, st)
	scheduler := NewBatchScheduler(fetcher, "https://a.com/", 1)
	c := NewCrawler(NewFrontier("https://a.com/", DefaultRoundSize), scheduler)

	report := model.NewCrawlReport("https://a.com/", st.Dir())
	if err := c.Run(ctx, report); err == nil {
		t.Error("expected context error from cancelled crawl")
	}
	if !report.Cancelled {
		t.Error("report should be marked cancelled")
	}
}
