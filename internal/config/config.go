package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The concurrency defaults mirror the extraction service's usage tiers:
// authenticated callers may fetch in parallel, anonymous callers may not.
const (
	// DefaultEndpoint is the public endpoint of the text-extraction
	// service. Requests take the form GET <endpoint>/<target-url>.
	DefaultEndpoint = "https://r.jina.ai"

	// DefaultTimeout bounds each extraction request. The service renders
	// the target page server-side, so 20 seconds is generous without
	// stalling a whole batch on one slow page.
	DefaultTimeout = 20 * time.Second

	// DefaultRoundSize is the maximum number of URLs drained from the
	// frontier per round. Rounds bound how much discovered work
	// accumulates before it is folded back into the frontier.
	DefaultRoundSize = 50

	// DefaultAuthBatchSize is the per-chunk fetch concurrency when an
	// API credential is supplied.
	DefaultAuthBatchSize = 5

	// DefaultAnonBatchSize is the per-chunk fetch concurrency without a
	// credential: fully sequential, the polite default for the free tier.
	DefaultAnonBatchSize = 1

	// DefaultMaxBodySize limits the response body size per page. 10MB is
	// far beyond any realistic documentation page rendered as text.
	DefaultMaxBodySize = 10 * 1024 * 1024

	// AppName is the application name used for XDG directory paths.
	AppName = "doccrawl"
)

// Config holds all options for a crawl run. It is populated from CLI
// flags and the optional config file, then passed through the application
// by dependency injection rather than global state.
type Config struct {
	// EntryURL is the crawl seed. It doubles as the domain-scope filter:
	// a discovered link is followed only if it contains this value as a
	// substring.
	EntryURL string

	// Token is the extraction service API credential. When set, requests
	// carry an Authorization: Bearer header and fetching uses the
	// authenticated batch size.
	Token string

	// Endpoint is the extraction service base URL.
	Endpoint string

	// Timeout bounds each extraction request.
	Timeout time.Duration

	// RoundSize caps how many URLs one frontier round dispatches.
	RoundSize int

	// BatchSize is the per-chunk fetch concurrency. Zero means derive it
	// from the credential (5 authenticated, 1 anonymous).
	BatchSize int

	// OutputDir overrides the output directory. Empty means derive it
	// from the entry URL's slug.
	OutputDir string

	// MaxBodySize limits each page body in bytes. Zero means the default.
	MaxBodySize int64

	// Verbose enables slog.LevelDebug output. When false, only warnings
	// and errors are logged.
	Verbose bool

	// JSONSummary selects JSON output for the crawl summary.
	// Mutually exclusive with MarkdownSummary.
	JSONSummary bool

	// MarkdownSummary selects Markdown output for the crawl summary.
	// Mutually exclusive with JSONSummary.
	MarkdownSummary bool

	// SummaryFile, when set, writes the crawl summary to this path
	// instead of stdout. Parent directories are created as needed.
	SummaryFile string

	// ConfigFilePath is the path to the configuration file. If empty,
	// .doccrawl is searched in the current and home directories.
	ConfigFilePath string

	// SiteConfigs holds per-site settings loaded from the config file.
	SiteConfigs *File

	// DBDir is the directory for the crawl history database. Defaults to
	// the XDG data directory.
	DBDir string

	// SaveHistory indicates whether to record the crawl session in the
	// history database.
	SaveHistory bool
}

// NewConfig creates a Config with defaults.
//
// Design decision: We use a constructor instead of relying on zero
// values because most defaults are non-zero, and the constructor doubles
// as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Endpoint:    DefaultEndpoint,
		Timeout:     DefaultTimeout,
		RoundSize:   DefaultRoundSize,
		MaxBodySize: DefaultMaxBodySize,
		SaveHistory: true,
	}
}

// EffectiveBatchSize resolves the per-chunk concurrency: an explicit
// BatchSize wins, otherwise the credential decides between the
// authenticated and anonymous defaults.
func (c *Config) EffectiveBatchSize() int {
	if c.BatchSize > 0 {
		return c.BatchSize
	}
	if c.Token != "" {
		return DefaultAuthBatchSize
	}
	return DefaultAnonBatchSize
}

// XDGDataDir returns the XDG data directory for doccrawl.
// On Linux: ~/.local/share/doccrawl.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for doccrawl.
// On Linux: ~/.config/doccrawl.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It runs once after CLI parsing, before any I/O, so argument errors are
// fatal before a single file or request is made.
func (c *Config) Validate() error {
	if c.EntryURL == "" {
		return ErrNoEntryURL
	}
	if c.Endpoint == "" {
		return ErrNoEndpoint
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.RoundSize <= 0 {
		return ErrInvalidRoundSize
	}
	if c.BatchSize < 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONSummary && c.MarkdownSummary {
		return ErrConflictingSummaryFormats
	}
	return nil
}
