package model

import (
	"sync"
	"time"
)

// SourceStatus describes the outcome of scanning a single source.
type SourceStatus int

const (
	// SourceStatusScanned means the source was fetched and scanned.
	SourceStatusScanned SourceStatus = iota

	// SourceStatusFetchFailed means the fetch failed; the source was skipped.
	SourceStatusFetchFailed

	// SourceStatusCancelled means the cycle was cancelled before the
	// source was fully processed.
	SourceStatusCancelled
)

// String returns a human-readable status name.
func (s SourceStatus) String() string {
	switch s {
	case SourceStatusScanned:
		return "scanned"
	case SourceStatusFetchFailed:
		return "fetch failed"
	case SourceStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// SourceResult records what happened for one source in a cycle.
type SourceResult struct {
	// Source is the source URL.
	Source string

	// Status is the overall outcome for this source.
	Status SourceStatus

	// Title is the page title, when one was extracted.
	Title string

	// Findings is the number of findings the scanner emitted.
	Findings int

	// Error is the failure message for fetch-failed sources.
	Error string
}

// CycleReport accumulates the counters for one fetch cycle: a single
// pass over all configured sources. The orchestrator updates it from
// concurrent per-source goroutines, so all mutators take the internal
// mutex. Read accessors are intended for use after the cycle completes.
type CycleReport struct {
	mu sync.Mutex

	// StartedAt is when the cycle began.
	StartedAt time.Time

	// Duration is the total cycle wall time, set when the cycle finishes.
	Duration time.Duration

	// SourcesScanned counts sources that were fetched and scanned.
	SourcesScanned int

	// SourcesFailed counts sources whose fetch failed.
	SourcesFailed int

	// FindingsProcessed counts findings that went through store+dispatch.
	FindingsProcessed int

	// FindingsStored counts successful persists.
	FindingsStored int

	// FindingsAlerted counts successful dispatches.
	FindingsAlerted int

	// FetchFailures, ExtractionFailures, FeedFailures, StoreFailures and
	// DispatchFailures count failures per pipeline stage.
	FetchFailures      int
	ExtractionFailures int
	FeedFailures       int
	StoreFailures      int
	DispatchFailures   int

	// Sources holds the per-source outcomes in completion order.
	Sources []SourceResult

	// Interrupted is true when the cycle was cancelled before finishing.
	Interrupted bool
}

// NewCycleReport creates a CycleReport stamped with the current time.
func NewCycleReport() *CycleReport {
	return &CycleReport{StartedAt: time.Now()}
}

// AddSourceResult records the outcome for one source.
func (r *CycleReport) AddSourceResult(result SourceResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Sources = append(r.Sources, result)
	switch result.Status {
	case SourceStatusScanned:
		r.SourcesScanned++
	case SourceStatusFetchFailed:
		r.SourcesFailed++
		r.FetchFailures++
	case SourceStatusCancelled:
		r.Interrupted = true
	}
}

// FindingProcessed records one finding's store and dispatch outcomes.
// A finding counts as processed once both have been attempted, whatever
// their results.
func (r *CycleReport) FindingProcessed(stored, alerted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.FindingsProcessed++
	if stored {
		r.FindingsStored++
	} else {
		r.StoreFailures++
	}
	if alerted {
		r.FindingsAlerted++
	} else {
		r.DispatchFailures++
	}
}

// AddExtractionFailures adds to the dropped-candidate counter.
func (r *CycleReport) AddExtractionFailures(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ExtractionFailures += n
}

// AddFeedFailures adds to the threat-feed failure counter.
func (r *CycleReport) AddFeedFailures(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FeedFailures += n
}

// Finish stamps the cycle duration.
func (r *CycleReport) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Duration = time.Since(r.StartedAt)
}

// Snapshot returns a copy of the report safe to read without holding
// the lock. The orchestrator returns a snapshot to callers so report
// writers never race with late goroutines.
func (r *CycleReport) Snapshot() CycleSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	sources := make([]SourceResult, len(r.Sources))
	copy(sources, r.Sources)

	return CycleSummary{
		StartedAt:          r.StartedAt,
		Duration:           r.Duration,
		SourcesScanned:     r.SourcesScanned,
		SourcesFailed:      r.SourcesFailed,
		FindingsProcessed:  r.FindingsProcessed,
		FindingsStored:     r.FindingsStored,
		FindingsAlerted:    r.FindingsAlerted,
		FetchFailures:      r.FetchFailures,
		ExtractionFailures: r.ExtractionFailures,
		FeedFailures:       r.FeedFailures,
		StoreFailures:      r.StoreFailures,
		DispatchFailures:   r.DispatchFailures,
		Sources:            sources,
		Interrupted:        r.Interrupted,
	}
}

// CycleSummary is an immutable copy of a CycleReport, produced once the
// cycle is done and handed to report writers.
type CycleSummary struct {
	StartedAt          time.Time
	Duration           time.Duration
	SourcesScanned     int
	SourcesFailed      int
	FindingsProcessed  int
	FindingsStored     int
	FindingsAlerted    int
	FetchFailures      int
	ExtractionFailures int
	FeedFailures       int
	StoreFailures      int
	DispatchFailures   int
	Sources            []SourceResult
	Interrupted        bool
}
