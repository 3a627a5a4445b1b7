package monitor

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/darkhound/internal/fetch"
	"github.com/nao1215/darkhound/internal/model"
	"github.com/nao1215/darkhound/internal/scanner"
)

// Concurrency bounds for per-source workers.
const (
	// DefaultConcurrency is the worker count when none is configured.
	DefaultConcurrency = 3

	// MaxConcurrency caps the worker count. Sources are fetched through
	// a shared proxy; more workers than this just queue on its circuits.
	MaxConcurrency = 10
)

// Fetcher retrieves one source.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (*fetch.Result, error)
}

// Scanner matches indicators against fetched content.
type Scanner interface {
	Scan(ctx context.Context, content string, indicators []string) (scanner.Result, error)
}

// Store persists findings.
type Store interface {
	Persist(ctx context.Context, finding model.Finding) (int64, error)
}

// Dispatcher sends alerts for findings.
type Dispatcher interface {
	Dispatch(ctx context.Context, finding model.Finding) error
}

// Monitor runs monitoring cycles over a fixed set of collaborators.
type Monitor struct {
	fetcher     Fetcher
	scanner     Scanner
	store       Store
	dispatcher  Dispatcher
	logger      *slog.Logger
	concurrency int
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithConcurrency sets how many sources are processed at once.
// Values outside [1, MaxConcurrency] are clamped.
func WithConcurrency(n int) Option {
	return func(m *Monitor) {
		switch {
		case n < 1:
			m.concurrency = 1
		case n > MaxConcurrency:
			m.concurrency = MaxConcurrency
		default:
			m.concurrency = n
		}
	}
}

// New creates a Monitor. All four collaborators are required; nil
// collaborators indicate a wiring bug, so New does not defend against
// them.
func New(fetcher Fetcher, sc Scanner, store Store, dispatcher Dispatcher, opts ...Option) *Monitor {
	m := &Monitor{
		fetcher:     fetcher,
		scanner:     sc,
		store:       store,
		dispatcher:  dispatcher,
		logger:      slog.Default(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RunCycle processes every source once and returns the cycle summary.
//
// Sources run concurrently up to the configured limit. Per-source and
// per-finding failures are absorbed into the summary; the returned
// error is non-nil only when the context was cancelled, and even then
// the summary reflects all work completed before the cancellation.
func (m *Monitor) RunCycle(ctx context.Context, sources, indicators []string) (model.CycleSummary, error) {
	report := model.NewCycleReport()

	m.logger.Info("cycle started",
		"sources", len(sources),
		"indicators", len(indicators),
		"concurrency", m.concurrency)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)

	for _, source := range sources {
		g.Go(func() error {
			m.processSource(gctx, source, indicators, report)
			// Failures are recorded, not returned: returning an error
			// would cancel the sibling sources.
			return nil
		})
	}
	_ = g.Wait()

	report.Finish()
	summary := report.Snapshot()

	m.logger.Info("cycle finished",
		"duration", summary.Duration,
		"scanned", summary.SourcesScanned,
		"failed", summary.SourcesFailed,
		"findings", summary.FindingsProcessed,
		"stored", summary.FindingsStored,
		"alerted", summary.FindingsAlerted,
		"interrupted", summary.Interrupted)

	return summary, ctx.Err()
}

// processSource runs the step sequence for one source.
func (m *Monitor) processSource(ctx context.Context, source string, indicators []string, report *model.CycleReport) {
	state := &sourceState{
		source:     source,
		indicators: indicators,
		report:     report,
	}

	steps := []step{
		&fetchStep{fetcher: m.fetcher},
		&scanStep{scanner: m.scanner},
		&deliverStep{store: m.store, dispatcher: m.dispatcher, logger: m.logger},
	}

	for _, s := range steps {
		select {
		case <-ctx.Done():
			m.logger.Warn("source processing cancelled",
				"source", source,
				"step", s.Name())
			report.AddSourceResult(model.SourceResult{
				Source: source,
				Status: model.SourceStatusCancelled,
				Error:  ctx.Err().Error(),
			})
			return
		default:
		}

		if err := s.Do(ctx, state); err != nil {
			m.logger.Warn("source skipped",
				"source", source,
				"step", s.Name(),
				"error", err)
			report.AddSourceResult(model.SourceResult{
				Source: source,
				Status: model.SourceStatusFetchFailed,
				Error:  err.Error(),
			})
			return
		}
	}

	report.AddSourceResult(model.SourceResult{
		Source:   source,
		Status:   model.SourceStatusScanned,
		Title:    state.title,
		Findings: len(state.scan.Findings),
	})
}
