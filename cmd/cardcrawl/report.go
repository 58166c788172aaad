package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/cardcrawl/internal/config"
	"github.com/nao1215/cardcrawl/internal/report"
	"github.com/spf13/cobra"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the stored dataset",
		Long: `Report summarizes the stored dataset: crawl progress, cards per tier,
and records with missing fields.

Examples:
  # Human-readable summary
  cardcrawl report

  # JSON for scripts
  cardcrawl report --json

  # Markdown with a tier chart, written to a file
  cardcrawl report --markdown -o reports/cards.md`,
		Args: cobra.NoArgs,
		RunE: runReportCmd,
	}

	addConfigFlag(cmd)
	addStorageFlags(cmd)

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, _ []string) error {
	jsonReport, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownReport, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonReport && markdownReport {
		return config.ErrConflictingReportFormats
	}
	reportFile, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg.Verbose)

	st, err := openStores(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	summary, err := loadSummary(context.Background(), cfg, st)
	if err != nil {
		return err
	}

	output := cmd.OutOrStdout()
	if reportFile != "" {
		f, err := createReportFile(reportFile)
		if err != nil {
			return err
		}
		defer f.Close()
		output = f
	}

	var writer report.Writer
	switch {
	case jsonReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case markdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(true))
	}
	if _, err := writer.Write(summary); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if reportFile != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", reportFile)
	}
	return nil
}

// createReportFile creates or truncates path, creating parent directories.
func createReportFile(path string) (io.WriteCloser, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
