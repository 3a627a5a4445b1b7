package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/darkhound/internal/model"
)

// summarizeRounding keeps durations readable in text output.
const summarizeRounding = time.Millisecond

// SimpleWriter outputs human-readable text reports.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables the per-source breakdown in cycle output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with per-source details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteCycle outputs the cycle summary in human-readable format.
func (w *SimpleWriter) WriteCycle(summary model.CycleSummary) (int, error) {
	var sb strings.Builder

	sb.WriteString("=== DarkHound Monitoring Cycle ===\n")
	fmt.Fprintf(&sb, "Started:   %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "Duration:  %s\n", summary.Duration.Round(summarizeRounding))
	if summary.Interrupted {
		sb.WriteString("Status:    INTERRUPTED (partial results)\n")
	} else {
		sb.WriteString("Status:    complete\n")
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Sources scanned:   %d\n", summary.SourcesScanned)
	fmt.Fprintf(&sb, "Sources failed:    %d\n", summary.SourcesFailed)
	fmt.Fprintf(&sb, "Findings:          %d (stored %d, alerted %d)\n",
		summary.FindingsProcessed, summary.FindingsStored, summary.FindingsAlerted)

	failures := summary.ExtractionFailures + summary.FeedFailures +
		summary.StoreFailures + summary.DispatchFailures
	if failures > 0 {
		sb.WriteString("\nStage failures:\n")
		writeFailureLine(&sb, "extraction", summary.ExtractionFailures)
		writeFailureLine(&sb, "threat feed", summary.FeedFailures)
		writeFailureLine(&sb, "store", summary.StoreFailures)
		writeFailureLine(&sb, "dispatch", summary.DispatchFailures)
	}

	if w.verbose && len(summary.Sources) > 0 {
		sb.WriteString("\nSources:\n")
		for _, src := range summary.Sources {
			fmt.Fprintf(&sb, "  [%s] %s", src.Status, src.Source)
			if src.Findings > 0 {
				fmt.Fprintf(&sb, " (%d findings)", src.Findings)
			}
			if src.Error != "" {
				fmt.Fprintf(&sb, " - %s", src.Error)
			}
			sb.WriteString("\n")
		}
	}

	return io.WriteString(w.output, sb.String())
}

// WriteDashboard outputs the leak dashboard in human-readable format.
func (w *SimpleWriter) WriteDashboard(dashboard *Dashboard) (int, error) {
	var sb strings.Builder

	sb.WriteString("=== DarkHound Leak Dashboard ===\n")
	fmt.Fprintf(&sb, "Generated: %s\n", dashboard.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "Total leaks: %d\n\n", dashboard.TotalLeaks)

	if len(dashboard.Leaks) == 0 {
		sb.WriteString("No leaks recorded.\n")
		return io.WriteString(w.output, sb.String())
	}

	for i, leak := range dashboard.Leaks {
		fmt.Fprintf(&sb, "%2d. [%2d/10 %s] %s\n",
			i+1, leak.RiskScore, RiskBand(leak.RiskScore), leak.Indicator)
		if !leak.CreatedAt.IsZero() {
			fmt.Fprintf(&sb, "    recorded %s\n", leak.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		if leak.Entities != "" {
			fmt.Fprintf(&sb, "    entities: %s\n", leak.Entities)
		}
		if w.verbose && leak.Context != "" {
			fmt.Fprintf(&sb, "    context:  %s\n", leak.Context)
		}
	}

	return io.WriteString(w.output, sb.String())
}

// writeFailureLine appends one non-zero failure counter.
func writeFailureLine(sb *strings.Builder, stage string, count int) {
	if count > 0 {
		fmt.Fprintf(sb, "  %-12s %d\n", stage+":", count)
	}
}
