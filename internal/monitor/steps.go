package monitor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/darkhound/internal/alert"
	"github.com/nao1215/darkhound/internal/model"
	"github.com/nao1215/darkhound/internal/scanner"
)

// step is one stage of per-source processing. A returned error aborts
// the remaining stages for this source only.
type step interface {
	Do(ctx context.Context, state *sourceState) error
	Name() string
}

// sourceState accumulates results as the steps run.
type sourceState struct {
	source     string
	indicators []string

	// set by fetchStep
	content string
	title   string

	// set by scanStep
	scan scanner.Result

	report *model.CycleReport
}

// fetchStep retrieves the source content.
type fetchStep struct {
	fetcher Fetcher
}

func (s *fetchStep) Name() string { return "fetch" }

func (s *fetchStep) Do(ctx context.Context, state *sourceState) error {
	result, err := s.fetcher.Fetch(ctx, state.source)
	if err != nil {
		return err
	}
	state.content = result.Content
	state.title = result.Title
	return nil
}

// scanStep matches indicators against the fetched content.
type scanStep struct {
	scanner Scanner
}

func (s *scanStep) Name() string { return "scan" }

func (s *scanStep) Do(ctx context.Context, state *sourceState) error {
	result, err := s.scanner.Scan(ctx, state.content, state.indicators)
	if err != nil {
		return err
	}
	state.scan = result
	state.report.AddExtractionFailures(result.ExtractionFailures)
	state.report.AddFeedFailures(result.FeedFailures)
	return nil
}

// deliverStep routes every finding through the store and the
// dispatcher. The two are independent: a failed persist still alerts,
// a failed alert is still persisted. deliverStep itself never fails.
type deliverStep struct {
	store      Store
	dispatcher Dispatcher
	logger     *slog.Logger
}

func (s *deliverStep) Name() string { return "deliver" }

func (s *deliverStep) Do(ctx context.Context, state *sourceState) error {
	for _, finding := range state.scan.Findings {
		stored := true
		if _, err := s.store.Persist(ctx, finding); err != nil {
			stored = false
			s.logger.Error("failed to persist finding",
				"source", state.source,
				"indicator", finding.Indicator,
				"error", err)
		}

		alerted := true
		if err := s.dispatcher.Dispatch(ctx, finding); err != nil {
			alerted = false
			if errors.Is(err, alert.ErrNoDestination) {
				s.logger.Debug("alerting disabled, finding not dispatched",
					"indicator", finding.Indicator)
			} else {
				s.logger.Error("failed to dispatch alert",
					"source", state.source,
					"indicator", finding.Indicator,
					"error", err)
			}
		}

		state.report.FindingProcessed(stored, alerted)
	}
	return nil
}
