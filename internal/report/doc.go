// Package report renders crawl summaries.
//
// A Summary combines the checkpoint with per-tier counts from the dataset.
// Writers render it in different formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Tables and a tier chart for sharing
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
