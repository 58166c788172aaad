package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/cardcrawl/internal/report"
	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the checkpoint and the number of cards per tier",
		Long: `Status reads the checkpoint and the dataset without crawling and prints
how far the sweep got and how many cards each tier holds.`,
		Args: cobra.NoArgs,
		RunE: runStatusCmd,
	}

	addConfigFlag(cmd)
	addStorageFlags(cmd)

	return cmd
}

// runStatusCmd executes the status command.
func runStatusCmd(cmd *cobra.Command, _ []string) error {
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

	ctx := context.Background()
	summary, err := loadSummary(ctx, cfg, st)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if _, err := report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose)).Write(summary); err != nil {
		return err
	}

	if st.db != nil && cfg.Verbose {
		stats, err := st.db.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Rows:         %d\n", stats.Cards)
		fmt.Fprintf(out, "Last append:  %s\n", formatTime(stats.LastAppend))
		fmt.Fprintf(out, "Checkpointed: %s\n", formatTime(stats.CheckpointUpdated))
	}
	return nil
}

// formatTime renders t in UTC, or "never" for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.UTC().Format("2006-01-02 15:04:05 MST")
}
