package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/doccrawl/doccrawl/internal/config"
	"github.com/doccrawl/doccrawl/internal/crawler"
	"github.com/doccrawl/doccrawl/internal/database"
	"github.com/doccrawl/doccrawl/internal/extract"
	"github.com/doccrawl/doccrawl/internal/log"
	"github.com/doccrawl/doccrawl/internal/model"
	"github.com/doccrawl/doccrawl/internal/pipeline"
	"github.com/doccrawl/doccrawl/internal/report"
	"github.com/doccrawl/doccrawl/internal/store"
	"github.com/doccrawl/doccrawl/internal/urlutil"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <entry-url> [api-token]",
		Short: "Crawl a documentation site into plain-text files",
		Long: `Crawl fetches every same-domain page reachable from the entry URL
through a text-extraction service, stores each page as
<output-dir>/<slug>.txt, and concatenates all pages into _totalcrawl.txt.

Pages that already exist on disk are served from the file instead of the
network, so re-running an interrupted crawl picks up where it left off.

With an API token the service allows concurrent requests, so pages are
fetched in batches of 5. Without a token fetching is sequential.

Examples:
  # Crawl a documentation site anonymously (sequential fetching)
  doccrawl crawl https://docs.example.com/

  # Crawl with an API token (batched fetching)
  doccrawl crawl https://docs.example.com/ sk-mytoken

  # Resume an interrupted crawl (cached pages are not re-fetched)
  doccrawl crawl https://docs.example.com/

  # Write a Markdown summary to a file
  doccrawl crawl --markdown --output summary.md https://docs.example.com/

Configuration file (.doccrawl) example:
  sites:
    docs.example.com:
      token: "sk-mytoken"
      headers:
        X-Respond-With: "text"
  defaults:
    batchSize: 3`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runCrawlCmd,
	}

	// Extraction service flags
	cmd.Flags().StringP("token", "k", "",
		"Extraction service API token (also accepted as second positional argument)")
	cmd.Flags().StringP("endpoint", "e", config.DefaultEndpoint,
		"Extraction service base URL")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each extraction request")

	// Crawl behavior flags
	cmd.Flags().IntP("batch", "b", 0,
		"Concurrent fetches per chunk (default: 5 with token, 1 without)")
	cmd.Flags().IntP("round", "r", config.DefaultRoundSize,
		"Maximum URLs dispatched per frontier round")
	cmd.Flags().StringP("output-dir", "d", "",
		"Directory for page files (default: derived from the entry URL)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .doccrawl in current or home directory)")

	// Summary flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown summary (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write summary to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Do not record this crawl in the history database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// The secure handler keeps the API token out of log output.
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Cancellation takes effect between frontier rounds and pipeline
	// steps; an in-flight fetch always runs to completion.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags and arguments.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	cfg.EntryURL = args[0]

	var err error

	cfg.Token, err = cmd.Flags().GetString("token")
	if err != nil {
		return nil, err
	}
	// The second positional argument is the token; the flag wins when
	// both are given.
	if cfg.Token == "" && len(args) > 1 {
		cfg.Token = args[1]
	}

	cfg.Endpoint, err = cmd.Flags().GetString("endpoint")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.RoundSize, err = cmd.Flags().GetInt("round")
	if err != nil {
		return nil, err
	}

	cfg.OutputDir, err = cmd.Flags().GetString("output-dir")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-site configurations from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONSummary, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownSummary, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.SummaryFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noHistory
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getVerboseFlag(cmd)

	applySiteConfig(cfg)

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// applySiteConfig folds the config-file settings for the entry host into
// the run configuration. Command-line values take precedence.
func applySiteConfig(cfg *config.Config) {
	if cfg.SiteConfigs == nil {
		return
	}

	site := cfg.SiteConfigs.GetSiteConfig(hostOf(cfg.EntryURL))
	if cfg.Token == "" && site.Token != "" {
		cfg.Token = site.Token
	}
	if cfg.BatchSize == 0 && site.BatchSize > 0 {
		cfg.BatchSize = site.BatchSize
	}
}

// hostOf returns the host part of a URL: the text between the scheme
// prefix and the first slash.
func hostOf(rawURL string) string {
	host := strings.TrimPrefix(rawURL, "https://")
	host = strings.TrimPrefix(host, "http://")
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	return host
}

// runCrawl executes the crawl pipeline.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = urlutil.Slugify(cfg.EntryURL)
	}

	batchSize := cfg.EffectiveBatchSize()

	logger.Info("starting crawl",
		"entryURL", cfg.EntryURL,
		"outputDir", outputDir,
		"batchSize", batchSize,
		"endpoint", cfg.Endpoint,
	)

	st, err := store.New(outputDir)
	if err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var siteHeaders map[string]string
	if cfg.SiteConfigs != nil {
		siteHeaders = cfg.SiteConfigs.GetSiteConfig(hostOf(cfg.EntryURL)).Headers
	}

	client := extract.NewClient(
		extract.WithEndpoint(cfg.Endpoint),
		extract.WithToken(cfg.Token),
		extract.WithHeaders(siteHeaders),
		extract.WithTimeout(cfg.Timeout),
		extract.WithMaxBodySize(cfg.MaxBodySize),
	)

	fetcher := crawler.NewPageFetcher(client, st, crawler.WithFetcherLogger(logger))
	scheduler := crawler.NewBatchScheduler(fetcher, cfg.EntryURL, batchSize, crawler.WithBatchLogger(logger))
	frontier := crawler.NewFrontier(cfg.EntryURL, cfg.RoundSize)
	c := crawler.NewCrawler(frontier, scheduler, crawler.WithCrawlerLogger(logger))

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewCrawlStep(c, logger),
		pipeline.NewConcatenateStep(st, logger),
	)

	// History recording is best-effort: a broken database must not block
	// the crawl itself.
	if cfg.SaveHistory {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			logger.Warn("history database unavailable, skipping history", "error", err)
		} else {
			defer db.Close()
			p.AddStep(pipeline.NewHistoryStep(db, logger))
		}
	}

	crawlReport := model.NewCrawlReport(cfg.EntryURL, outputDir)
	crawlReport.BatchSize = batchSize

	startTime := time.Now()
	execErr := p.Execute(ctx, crawlReport)
	elapsed := time.Since(startTime)

	fmt.Printf("Crawl finished in %s (%d pages, artifact: %s)\n\n",
		elapsed.Round(time.Millisecond),
		len(crawlReport.Pages),
		filepath.Join(outputDir, store.CombinedArtifact),
	)

	if err := outputSummary(cfg, crawlReport); err != nil {
		logger.Error("summary output failed", "error", err)
	}

	return execErr
}

// outputSummary writes the crawl summary in the requested format.
func outputSummary(cfg *config.Config, crawlReport *model.CrawlReport) error {
	var output *os.File
	if cfg.SummaryFile != "" {
		dir := filepath.Dir(cfg.SummaryFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.SummaryFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONSummary:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownSummary:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(crawlReport)
	return err
}
