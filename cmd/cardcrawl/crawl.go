package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/cardcrawl/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl the card catalog, resuming from the last checkpoint",
		Long: `Crawl sweeps the catalog's listing pages in order, resolves every card on
each page and appends the records to the dataset grouped by tier.

After a page is fully processed its number is written to the checkpoint.
The next run starts at the page after the checkpoint, so an interrupted
crawl loses at most the page it was working on.

Exit status:
  0  every page up to --total-pages was processed
  2  a listing page could not be loaded (the checkpoint is left intact)
  1  any other error, including interruption

Examples:
  # Crawl with a headless browser into the XDG data directory
  cardcrawl crawl

  # Crawl a server-rendered catalog without a browser
  cardcrawl crawl --renderer http --listing-url "https://example.com/cards?page={page}" \
    --detail-url "https://example.com/cards/info/{id}" -n 40

  # Use a browser that is already running
  cardcrawl crawl --remote-browser ws://127.0.0.1:9222/devtools/browser/abc

  # Store results in SQLite and be polite
  cardcrawl crawl --store sqlite --delay 2s`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	addConfigFlag(cmd)
	addSiteFlags(cmd)
	addStorageFlags(cmd)

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := setupLogger(cmd, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	st, err := openStores(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	walker, err := newWalker(cfg, logger)
	if err != nil {
		return err
	}

	progress := cmd.ErrOrStderr()
	orchestrator := pipeline.New(
		newRenderer(cfg, logger),
		walker,
		newResolver(cfg, logger),
		st.checkpoint,
		st.dataset,
		pipeline.WithLogger(logger),
		pipeline.WithTotalPages(cfg.TotalPages),
		pipeline.WithRequestDelay(cfg.RequestDelay),
		pipeline.WithProgress(func(p pipeline.Progress) {
			fmt.Fprintf(progress, "page %d/%d: %d card(s), %d stored, %d skipped\n",
				p.Page, p.TotalPages, p.IDs, p.Appended, p.Skipped)
		}),
	)

	result, runErr := orchestrator.Run(ctx)
	printCrawlResult(cmd.OutOrStdout(), result, cfg.Verbose)
	return runErr
}

// printCrawlResult writes a short summary of a run.
func printCrawlResult(w io.Writer, result *pipeline.Result, verbose bool) {
	switch {
	case result.State == pipeline.StateCompleted && result.PagesProcessed == 0:
		fmt.Fprintf(w, "Nothing to do: checkpoint is at page %d.\n", result.LastCompletedPage)
		return
	case result.State == pipeline.StateCompleted:
		fmt.Fprintf(w, "Crawl completed: pages %d-%d processed.\n",
			result.StartPage, result.LastCompletedPage)
	case result.StartPage == 0:
		fmt.Fprintln(w, "Crawl aborted before the first page.")
		return
	default:
		fmt.Fprintf(w, "Crawl aborted: %d page(s) processed, resume from page %d.\n",
			result.PagesProcessed, result.LastCompletedPage+1)
	}

	fmt.Fprintf(w, "Stored %d card(s), skipped %d in %s.\n",
		result.Appended, result.Skipped, result.Elapsed.Round(time.Millisecond))
	if verbose && len(result.SkippedIDs) > 0 {
		fmt.Fprintf(w, "Skipped: %s\n", strings.Join(result.SkippedIDs, ", "))
	}
}
