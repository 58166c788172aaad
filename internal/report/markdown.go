package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation, including GitHub alerts and a mermaid chart of the tier
// distribution.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeTiers(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the crawl progress table and status alert.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *Summary) {
	md.H1("Card Catalog Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Checkpoint", fmt.Sprintf("%d / %d (%.1f%%)", s.Checkpoint, s.TotalPages, s.Percent())},
			{"Entries", strconv.Itoa(s.Total)},
			{"Unique Cards", strconv.Itoa(s.Unique)},
			{"Incomplete Records", strconv.Itoa(s.Incomplete)},
			{"Store", s.Store + " `" + s.Location + "`"},
			{"Generated", s.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		},
	})
	md.PlainText("")

	switch {
	case s.Complete() && s.Incomplete > 0:
		md.Warningf("Sweep complete, but %d record(s) have missing fields.", s.Incomplete)
	case s.Complete():
		md.Tip("Sweep complete.")
	case s.Checkpoint == 0:
		md.Importantf("No listing page has been completed yet. %d page(s) to crawl.", s.Remaining())
	default:
		md.Note(fmt.Sprintf("Sweep in progress. %d page(s) remaining; the next run resumes at page %d.",
			s.Remaining(), s.Checkpoint+1))
	}
	md.PlainText("")
}

// writeTiers writes the tier table and chart.
func (w *MarkdownWriter) writeTiers(md *markdown.Markdown, s *Summary) {
	md.H2("Tiers")
	md.PlainText("")

	if len(s.Tiers) == 0 {
		md.PlainText("No cards stored yet.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(s.Tiers)+1)
	for _, tc := range s.Tiers {
		rows = append(rows, []string{tc.Tier, strconv.Itoa(tc.Count)})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(s.Total) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Tier", "Entries"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, s)
}

// writePieChart writes a mermaid pie chart for the tier distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s *Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Tier Distribution"),
		piechart.WithShowData(true),
	)

	for _, tc := range s.Tiers {
		if tc.Count > 0 {
			chart.LabelAndIntValue(tierLabel(tc.Tier), uint64(tc.Count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [cardcrawl](https://github.com/nao1215/cardcrawl)*")
}

// tierLabel prefixes numeric tiers so chart labels read "Tier 3".
func tierLabel(tier string) string {
	if _, err := strconv.Atoi(tier); err == nil {
		return "Tier " + tier
	}
	return tier
}
