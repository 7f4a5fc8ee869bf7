package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/doccrawl/doccrawl/internal/config"
	"github.com/doccrawl/doccrawl/internal/database"
)

// NewHistoryCmd creates the history command.
// This command lists past crawl sessions stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [entry-url]",
		Short: "Show past crawl sessions",
		Long: `History lists the crawl sessions recorded in the local database.

Each crawl run records one session with its page counts (fetched, cached,
failed) and total bytes. Use the flags to narrow output or inspect the
pages of a single session.

Examples:
  # List all recorded sessions
  doccrawl history

  # List sessions for one site
  doccrawl history https://docs.example.com/

  # List the sites that have recorded sessions
  doccrawl history --sites

  # Show the pages of a specific session
  doccrawl history --pages 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("sites", "s", false,
		"List all sites with recorded sessions")
	cmd.Flags().Int64P("pages", "p", 0,
		"Show the page records of the session with this ID")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listSites, err := cmd.Flags().GetBool("sites")
	if err != nil {
		return err
	}

	sessionID, err := cmd.Flags().GetInt64("pages")
	if err != nil {
		return err
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// The database must already exist: history never creates it, a crawl
	// does.
	opts := database.Options{CreateIfNotExists: false, EnableWAL: true}
	db, err := database.Open(config.XDGDataDir(), opts)
	if err != nil {
		return errors.New("no crawl history found (run 'doccrawl crawl' first)")
	}
	defer db.Close()

	ctx := cmd.Context()

	if listSites {
		sites, err := db.ListCrawledSites(ctx)
		if err != nil {
			return fmt.Errorf("failed to list sites: %w", err)
		}
		return printHistorySites(cmd, sites, asJSON)
	}

	if sessionID > 0 {
		pages, err := db.GetSessionPages(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to load session pages: %w", err)
		}
		if len(pages) == 0 {
			return fmt.Errorf("no pages recorded for session %d", sessionID)
		}
		if asJSON {
			return printJSON(cmd, pages)
		}
		for _, p := range pages {
			marker := "+"
			switch {
			case p.Failed:
				marker = "x"
			case p.FromCache:
				marker = "="
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s (%d bytes, %d links)\n", marker, p.URL, p.Bytes, p.Links)
		}
		return nil
	}

	baseURL := ""
	if len(args) > 0 {
		baseURL = args[0]
	}

	sessions, err := db.GetSessions(ctx, baseURL)
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}
	if len(sessions) == 0 {
		if baseURL != "" {
			return fmt.Errorf("no sessions recorded for %s", baseURL)
		}
		return errors.New("no sessions recorded yet")
	}

	if asJSON {
		return printJSON(cmd, sessions)
	}

	for _, s := range sessions {
		status := "complete"
		if s.Cancelled {
			status = "cancelled"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "#%d  %s  %s\n", s.ID, s.StartedAt.Format("2006-01-02 15:04:05"), s.BaseURL)
		fmt.Fprintf(cmd.OutOrStdout(), "     %d pages (%d fetched, %d cached, %d failed), %d bytes, %s, %s\n",
			s.Pages, s.Fetched, s.Cached, s.Failed, s.TotalBytes, s.Elapsed.Round(time.Millisecond), status)
	}

	return nil
}

// printHistorySites prints the distinct crawled sites.
func printHistorySites(cmd *cobra.Command, sites []string, asJSON bool) error {
	if len(sites) == 0 {
		return errors.New("no sessions recorded yet")
	}
	if asJSON {
		return printJSON(cmd, sites)
	}
	for _, site := range sites {
		fmt.Fprintln(cmd.OutOrStdout(), site)
	}
	return nil
}

// printJSON writes v as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, v interface{}) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
