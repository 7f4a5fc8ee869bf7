// Package main provides the entry point for the doccrawl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for doccrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doccrawl",
		Short: "Crawl a documentation site into a single text artifact",
		Long: `doccrawl crawls a documentation site page by page through a
text-extraction service, stores each page as plain text, and concatenates
everything into a single _totalcrawl.txt artifact.

Crawls are resumable: pages that already exist on disk are never fetched
again, so an interrupted run can simply be restarted.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
