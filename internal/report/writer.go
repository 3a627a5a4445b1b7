package report

import (
	"io"
	"time"

	"github.com/nao1215/darkhound/internal/model"
)

// Dashboard is the data a dashboard writer renders: the top leaks by
// risk plus the overall count, assembled by the caller from the store.
type Dashboard struct {
	// GeneratedAt is when the dashboard was assembled.
	GeneratedAt time.Time

	// TotalLeaks is the total number of stored leaks.
	TotalLeaks int64

	// Leaks holds the highest-risk leaks, most severe first.
	Leaks []model.PersistedLeak
}

// RiskBand names the severity band a risk score falls into.
func RiskBand(score int) string {
	switch {
	case score >= 9:
		return "critical"
	case score >= 7:
		return "high"
	case score >= 4:
		return "medium"
	default:
		return "low"
	}
}

// Writer defines the interface for report output.
//
// Design decision: We use an interface to allow different output
// formats and destinations. This enables writing to files, stdout, or
// network connections with the same API.
type Writer interface {
	// WriteCycle outputs one cycle summary.
	// Returns the number of bytes written and any error encountered.
	WriteCycle(summary model.CycleSummary) (int, error)

	// WriteDashboard outputs the leak dashboard.
	WriteDashboard(dashboard *Dashboard) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteCycle outputs the cycle summary to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) WriteCycle(summary model.CycleSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteCycle(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteDashboard outputs the dashboard to all configured Writers.
func (m *MultiWriter) WriteDashboard(dashboard *Dashboard) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteDashboard(dashboard)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
