package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// NewCardCmd creates the card command.
func NewCardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card <id>",
		Short: "Resolve a single card and print it as JSON",
		Long: `Card loads one detail page and prints the extracted record as JSON.
Nothing is stored. Use it to check the extraction against a live page.

Examples:
  cardcrawl card 5d3a1f
  cardcrawl card --renderer http 5d3a1f`,
		Args: cobra.ExactArgs(1),
		RunE: runCardCmd,
	}

	addConfigFlag(cmd)
	addSiteFlags(cmd)

	return cmd
}

// runCardCmd executes the card command.
func runCardCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := setupLogger(cmd, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	session, err := newRenderer(cfg, logger).Open(ctx)
	if err != nil {
		return fmt.Errorf("open renderer session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("failed to close renderer session", "error", err)
		}
	}()

	card, err := newResolver(cfg, logger).Fetch(ctx, session, args[0])
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(card)
}
