package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/darkhound/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// bandTitle renders risk band names as headings ("critical" -> "Critical").
var bandTitle = cases.Title(language.English)

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// WriteCycle outputs the cycle summary in Markdown format.
func (w *MarkdownWriter) WriteCycle(summary model.CycleSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("DarkHound Monitoring Cycle")
	md.PlainText("")

	status := "✅ Complete"
	if summary.Interrupted {
		status = "⚠️ Interrupted (partial results)"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", summary.Duration.Round(summarizeRounding).String()},
			{"Status", status},
			{"Sources Scanned", strconv.Itoa(summary.SourcesScanned)},
			{"Sources Failed", strconv.Itoa(summary.SourcesFailed)},
			{"Findings", strconv.Itoa(summary.FindingsProcessed)},
			{"Stored", strconv.Itoa(summary.FindingsStored)},
			{"Alerted", strconv.Itoa(summary.FindingsAlerted)},
		},
	})
	md.PlainText("")

	w.writeCycleAlert(md, summary)
	w.writeSources(md, summary)

	return len(md.String()), md.Build()
}

// writeCycleAlert writes a GitHub-flavored alert matching the cycle outcome.
func (w *MarkdownWriter) writeCycleAlert(md *markdown.Markdown, summary model.CycleSummary) {
	switch {
	case summary.Interrupted:
		md.Warningf("The cycle was interrupted; %d of %d sources were processed.",
			summary.SourcesScanned+summary.SourcesFailed, len(summary.Sources))
	case summary.FindingsProcessed > 0:
		md.Cautionf("%d leak finding(s) detected this cycle.", summary.FindingsProcessed)
	case summary.SourcesFailed > 0:
		md.Importantf("No findings, but %d source(s) could not be fetched.", summary.SourcesFailed)
	default:
		md.Tip("No leaks detected across the monitored sources.")
	}
	md.PlainText("")
}

// writeSources writes the per-source outcome table.
func (w *MarkdownWriter) writeSources(md *markdown.Markdown, summary model.CycleSummary) {
	md.H2("Sources")
	md.PlainText("")

	if len(summary.Sources) == 0 {
		md.PlainText("No sources configured.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(summary.Sources))
	for _, src := range summary.Sources {
		detail := src.Error
		if detail == "" {
			detail = src.Title
		}
		rows = append(rows, []string{
			"`" + src.Source + "`",
			src.Status.String(),
			strconv.Itoa(src.Findings),
			detail,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Source", "Status", "Findings", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")
}

// WriteDashboard outputs the leak dashboard in Markdown format.
func (w *MarkdownWriter) WriteDashboard(dashboard *Dashboard) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("DarkHound Leak Dashboard")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", dashboard.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Total Leaks", strconv.FormatInt(dashboard.TotalLeaks, 10)},
		},
	})
	md.PlainText("")

	if len(dashboard.Leaks) == 0 {
		md.PlainText("No leaks recorded.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	w.writeRiskChart(md, dashboard.Leaks)

	md.H2("Top Leaks")
	md.PlainText("")
	rows := make([][]string, 0, len(dashboard.Leaks))
	for _, leak := range dashboard.Leaks {
		rows = append(rows, []string{
			strconv.FormatInt(leak.ID, 10),
			"`" + leak.Indicator + "`",
			strconv.Itoa(leak.RiskScore) + "/10 (" + bandTitle.String(RiskBand(leak.RiskScore)) + ")",
			escapePipes(leak.Entities),
			leak.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Indicator", "Risk", "Entities", "Recorded"},
		Rows:   rows,
	})
	md.PlainText("")

	return len(md.String()), md.Build()
}

// writeRiskChart writes a mermaid pie chart of the risk band distribution.
func (w *MarkdownWriter) writeRiskChart(md *markdown.Markdown, leaks []model.PersistedLeak) {
	counts := make(map[string]uint64)
	for _, leak := range leaks {
		counts[RiskBand(leak.RiskScore)]++
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Leak Risk Distribution"),
		piechart.WithShowData(true),
	)
	for _, band := range []string{"critical", "high", "medium", "low"} {
		if counts[band] > 0 {
			chart.LabelAndIntValue(bandTitle.String(band), counts[band])
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// escapePipes keeps rendered entity strings from breaking table cells.
func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
