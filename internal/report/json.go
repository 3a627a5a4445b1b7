package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/darkhound/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables pretty-printed JSON output.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// jsonCycle is the wire shape of a cycle summary.
type jsonCycle struct {
	StartedAt          time.Time            `json:"started_at"`
	DurationSeconds    float64              `json:"duration_seconds"`
	Interrupted        bool                 `json:"interrupted"`
	SourcesScanned     int                  `json:"sources_scanned"`
	SourcesFailed      int                  `json:"sources_failed"`
	FindingsProcessed  int                  `json:"findings_processed"`
	FindingsStored     int                  `json:"findings_stored"`
	FindingsAlerted    int                  `json:"findings_alerted"`
	FetchFailures      int                  `json:"fetch_failures"`
	ExtractionFailures int                  `json:"extraction_failures"`
	FeedFailures       int                  `json:"feed_failures"`
	StoreFailures      int                  `json:"store_failures"`
	DispatchFailures   int                  `json:"dispatch_failures"`
	Sources            []jsonSource         `json:"sources"`
}

// jsonSource is the wire shape of one source result.
type jsonSource struct {
	Source   string `json:"source"`
	Status   string `json:"status"`
	Title    string `json:"title,omitempty"`
	Findings int    `json:"findings"`
	Error    string `json:"error,omitempty"`
}

// jsonDashboard is the wire shape of the dashboard.
type jsonDashboard struct {
	GeneratedAt time.Time  `json:"generated_at"`
	TotalLeaks  int64      `json:"total_leaks"`
	Leaks       []jsonLeak `json:"leaks"`
}

// jsonLeak is the wire shape of one persisted leak.
type jsonLeak struct {
	ID        int64     `json:"id"`
	Indicator string    `json:"indicator"`
	Context   string    `json:"context"`
	Entities  string    `json:"entities,omitempty"`
	RiskScore int       `json:"risk_score"`
	RiskBand  string    `json:"risk_band"`
	CreatedAt time.Time `json:"created_at"`
}

// WriteCycle outputs the cycle summary as JSON.
func (w *JSONWriter) WriteCycle(summary model.CycleSummary) (int, error) {
	out := jsonCycle{
		StartedAt:          summary.StartedAt,
		DurationSeconds:    summary.Duration.Seconds(),
		Interrupted:        summary.Interrupted,
		SourcesScanned:     summary.SourcesScanned,
		SourcesFailed:      summary.SourcesFailed,
		FindingsProcessed:  summary.FindingsProcessed,
		FindingsStored:     summary.FindingsStored,
		FindingsAlerted:    summary.FindingsAlerted,
		FetchFailures:      summary.FetchFailures,
		ExtractionFailures: summary.ExtractionFailures,
		FeedFailures:       summary.FeedFailures,
		StoreFailures:      summary.StoreFailures,
		DispatchFailures:   summary.DispatchFailures,
		Sources:            make([]jsonSource, 0, len(summary.Sources)),
	}
	for _, src := range summary.Sources {
		out.Sources = append(out.Sources, jsonSource{
			Source:   src.Source,
			Status:   src.Status.String(),
			Title:    src.Title,
			Findings: src.Findings,
			Error:    src.Error,
		})
	}
	return w.encode(out)
}

// WriteDashboard outputs the dashboard as JSON.
func (w *JSONWriter) WriteDashboard(dashboard *Dashboard) (int, error) {
	out := jsonDashboard{
		GeneratedAt: dashboard.GeneratedAt,
		TotalLeaks:  dashboard.TotalLeaks,
		Leaks:       make([]jsonLeak, 0, len(dashboard.Leaks)),
	}
	for _, leak := range dashboard.Leaks {
		out.Leaks = append(out.Leaks, jsonLeak{
			ID:        leak.ID,
			Indicator: leak.Indicator,
			Context:   leak.Context,
			Entities:  leak.Entities,
			RiskScore: leak.RiskScore,
			RiskBand:  RiskBand(leak.RiskScore),
			CreatedAt: leak.CreatedAt,
		})
	}
	return w.encode(out)
}

// encode marshals v and writes it with a trailing newline.
func (w *JSONWriter) encode(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
