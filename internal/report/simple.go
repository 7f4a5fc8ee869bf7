package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/doccrawl/doccrawl/internal/model"
)

// SimpleWriter outputs human-readable text summaries.
// This format is designed for terminal display after a crawl finishes.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables per-page detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with per-page details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	summary := model.NewSummary(report)
	w.writeHeader(&sb, summary)
	w.writeCounts(&sb, summary)

	if w.verbose {
		w.writePages(&sb, report)
	}

	w.writeFailures(&sb, summary)
	w.writeFooter(&sb, summary)

	return w.output.Write([]byte(sb.String()))
}

// WriteSummary outputs the condensed summary in human-readable format.
func (w *SimpleWriter) WriteSummary(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeCounts(&sb, summary)
	w.writeFailures(&sb, summary)
	w.writeFooter(&sb, summary)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the summary header with crawl information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         CRAWL SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Site:       %s\n", summary.BaseURL))
	sb.WriteString(fmt.Sprintf("Output:     %s\n", summary.OutputDir))
	sb.WriteString(fmt.Sprintf("Batch Size: %d\n", summary.BatchSize))
	sb.WriteString(fmt.Sprintf("Elapsed:    %s\n", summary.Elapsed.Round(time.Millisecond)))
	sb.WriteString("\n")
}

// writeCounts writes the page outcome counters.
func (w *SimpleWriter) writeCounts(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  FETCHED: %d\n", summary.Fetched))
	sb.WriteString(fmt.Sprintf("  CACHED:  %d\n", summary.Cached))
	sb.WriteString(fmt.Sprintf("  FAILED:  %d\n", summary.Failed))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:   %d pages (%d bytes)\n", summary.Total, summary.TotalBytes))
	sb.WriteString("\n")
}

// writePages writes per-page detail in verbose mode.
func (w *SimpleWriter) writePages(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGE DETAIL\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, p := range report.Pages {
		sb.WriteString(fmt.Sprintf("  [%s] %s\n", pageMarker(p), p.URL))
		if !p.Failed {
			sb.WriteString(fmt.Sprintf("    File: %s.txt (%d bytes, %d links)\n", p.Slug, p.Bytes, p.Links))
		}
	}
	sb.WriteString("\n")
}

// pageMarker returns a visual indicator for the page outcome.
func pageMarker(p model.PageResult) string {
	switch {
	case p.Failed:
		return "x"
	case p.FromCache:
		return "="
	default:
		return "+"
	}
}

// writeFailures lists failed URLs so the operator can retry them.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, summary *model.Summary) {
	if len(summary.FailedURLs) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FAILED URLS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, u := range summary.FailedURLs {
		sb.WriteString(fmt.Sprintf("  * %s\n", u))
	}
	sb.WriteString("\n")
}

// writeFooter writes the summary footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Generated at %s\n", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
