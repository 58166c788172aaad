// Package main provides the entry point for the cardcrawl CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nao1215/cardcrawl/internal/crawler"
	"github.com/spf13/cobra"
)

// Process exit codes.
const (
	// exitOK means the command finished.
	exitOK = 0
	// exitFailure covers every error other than a listing failure.
	exitFailure = 1
	// exitListingFailure means a listing page could not be loaded and the
	// crawl aborted with its checkpoint intact.
	exitListingFailure = 2
)

// NewRootCmd creates the root command for cardcrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cardcrawl",
		Short: "Resumable crawler for paginated card catalogs",
		Long: `cardcrawl walks the listing pages of a card catalog, resolves each card's
detail page and stores the records grouped by tier.

Progress is checkpointed after every listing page. Running "cardcrawl crawl"
again after an interruption resumes from the page after the checkpoint.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewCardCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, crawler.ErrPageLoad):
		return exitListingFailure
	default:
		return exitFailure
	}
}
