package report

import (
	"fmt"
	"io"
	"strings"
)

// SimpleWriter outputs human-readable text summaries.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors so the output can be piped to files or other tools.
type SimpleWriter struct {
	baseWriter

	// verbose adds the store location and generation time.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeTiers(&sb, summary)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes crawl progress.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, s *Summary) {
	sb.WriteString(strings.Repeat("=", 50))
	sb.WriteString("\n")
	sb.WriteString("                  CARDCRAWL STATUS\n")
	sb.WriteString(strings.Repeat("=", 50))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Checkpoint:   page %d of %d (%.1f%%)\n", s.Checkpoint, s.TotalPages, s.Percent())
	if s.Complete() {
		sb.WriteString("Status:       Complete\n")
	} else {
		fmt.Fprintf(sb, "Status:       In progress, %d page(s) remaining\n", s.Remaining())
	}
	fmt.Fprintf(sb, "Entries:      %d (%d unique)\n", s.Total, s.Unique)
	if s.Incomplete > 0 {
		fmt.Fprintf(sb, "Incomplete:   %d record(s) with missing fields\n", s.Incomplete)
	}
	if w.verbose {
		fmt.Fprintf(sb, "Store:        %s (%s)\n", s.Store, s.Location)
		fmt.Fprintf(sb, "Generated:    %s\n", s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	}
	sb.WriteString("\n")
}

// writeTiers writes per-tier counts.
func (w *SimpleWriter) writeTiers(sb *strings.Builder, s *Summary) {
	sb.WriteString(strings.Repeat("-", 50))
	sb.WriteString("\n")
	sb.WriteString("TIERS\n")
	sb.WriteString(strings.Repeat("-", 50))
	sb.WriteString("\n\n")

	if len(s.Tiers) == 0 {
		sb.WriteString("  No cards stored yet\n\n")
		return
	}
	for _, tc := range s.Tiers {
		fmt.Fprintf(sb, "  %-10s %6d\n", tc.Tier, tc.Count)
	}
	sb.WriteString("\n")
}
