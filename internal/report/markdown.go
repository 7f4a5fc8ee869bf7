package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/doccrawl/doccrawl/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format, including the
// per-page table.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	summary := model.NewSummary(report)

	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeCounts(md, summary)
	w.writePages(md, report)
	w.writeFailures(md, summary)
	w.writeFooter(md, summary)

	return len(md.String()), md.Build()
}

// WriteSummary outputs the condensed summary in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeCounts(md, summary)
	w.writeFailures(md, summary)
	w.writeFooter(md, summary)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.Summary) {
	md.H1("Crawl Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", "`" + summary.BaseURL + "`"},
			{"Output Directory", "`" + summary.OutputDir + "`"},
			{"Batch Size", strconv.Itoa(summary.BatchSize)},
			{"Elapsed", summary.Elapsed.Round(time.Millisecond).String()},
			{"Status", w.getStatusText(summary)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on the summary state.
func (w *MarkdownWriter) getStatusText(summary *model.Summary) string {
	if summary.Failed > 0 {
		return "⚠️ Complete (" + strconv.Itoa(summary.Failed) + " pages failed)"
	}
	return "✅ Complete"
}

// writeCounts writes the page outcome table.
func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Pages")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"🟢 Fetched", strconv.Itoa(summary.Fetched)},
			{"🔵 Cached", strconv.Itoa(summary.Cached)},
			{"🔴 Failed", strconv.Itoa(summary.Failed)},
			{"**Total**", "**" + strconv.Itoa(summary.Total) + "**"},
		},
	})
	md.PlainText("")
	md.PlainTextf("Total stored bytes: %d", summary.TotalBytes)
	md.PlainText("")
}

// writePages writes the per-page detail table.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.Pages) == 0 {
		return
	}

	md.H2("Page Detail")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Pages))
	for _, p := range report.Pages {
		rows = append(rows, []string{
			"`" + p.URL + "`",
			pageOutcome(p),
			strconv.FormatInt(p.Bytes, 10),
			strconv.Itoa(p.Links),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Outcome", "Bytes", "Links"},
		Rows:   rows,
	})
	md.PlainText("")
}

// pageOutcome names the outcome of a single page for table display.
func pageOutcome(p model.PageResult) string {
	switch {
	case p.Failed:
		return "failed"
	case p.FromCache:
		return "cached"
	default:
		return "fetched"
	}
}

// writeFailures writes a warning listing the failed URLs.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, summary *model.Summary) {
	if len(summary.FailedURLs) == 0 {
		return
	}

	md.H2("Failed URLs")
	md.PlainText("")
	md.Warning("The following pages could not be fetched and are missing from the combined artifact. Re-run the crawl to retry them.")
	md.PlainText("")

	items := make([]string, 0, len(summary.FailedURLs))
	for _, u := range summary.FailedURLs {
		items = append(items, "`"+u+"`")
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown, summary *model.Summary) {
	md.HorizontalRule()
	md.PlainTextf("Generated at %s", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
}
