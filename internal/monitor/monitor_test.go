package monitor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/darkhound/internal/alert"
	"github.com/nao1215/darkhound/internal/fetch"
	"github.com/nao1215/darkhound/internal/model"
	"github.com/nao1215/darkhound/internal/scanner"
)

// stubFetcher serves canned content per source and fails sources listed
// in failing.
type stubFetcher struct {
	content map[string]string
	failing map[string]error
}

func (f *stubFetcher) Fetch(_ context.Context, source string) (*fetch.Result, error) {
	if err, ok := f.failing[source]; ok {
		return nil, err
	}
	return &fetch.Result{Content: f.content[source], Title: "t:" + source, StatusCode: 200}, nil
}

// stubScanner emits one finding per indicator present in the content.
type stubScanner struct {
	err error
}

func (s *stubScanner) Scan(_ context.Context, content string, indicators []string) (scanner.Result, error) {
	if s.err != nil {
		return scanner.Result{}, s.err
	}
	var result scanner.Result
	for _, ind := range indicators {
		if strings.Contains(content, ind) {
			finding, err := model.NewFinding(ind, content, nil, 5)
			if err != nil {
				return scanner.Result{}, err
			}
			result.Findings = append(result.Findings, finding)
		}
	}
	return result, nil
}

// stubStore counts persists and optionally fails.
type stubStore struct {
	mu        sync.Mutex
	persisted []model.Finding
	err       error
}

func (s *stubStore) Persist(_ context.Context, finding model.Finding) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.persisted = append(s.persisted, finding)
	return int64(len(s.persisted)), nil
}

// stubDispatcher counts dispatches and optionally fails.
type stubDispatcher struct {
	mu         sync.Mutex
	dispatched []model.Finding
	err        error
}

func (d *stubDispatcher) Dispatch(_ context.Context, finding model.Finding) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.dispatched = append(d.dispatched, finding)
	return nil
}

// TestRunCycle tests a full cycle over mixed sources.
func TestRunCycle(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{
		content: map[string]string{
			"http://a.example": "dump mentions example.com here",
			"http://b.example": "nothing interesting",
		},
		failing: map[string]error{
			"http://c.example": errors.New("connection refused"),
		},
	}
	store := &stubStore{}
	dispatcher := &stubDispatcher{}

	m := New(fetcher, &stubScanner{}, store, dispatcher, WithConcurrency(2))

	summary, err := m.RunCycle(context.Background(),
		[]string{"http://a.example", "http://b.example", "http://c.example"},
		[]string{"example.com"})
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}

	if summary.SourcesScanned != 2 {
		t.Errorf("got %d scanned, expected 2", summary.SourcesScanned)
	}
	if summary.SourcesFailed != 1 {
		t.Errorf("got %d failed, expected 1", summary.SourcesFailed)
	}
	if summary.FetchFailures != 1 {
		t.Errorf("got %d fetch failures, expected 1", summary.FetchFailures)
	}
	if summary.FindingsProcessed != 1 {
		t.Errorf("got %d findings processed, expected 1", summary.FindingsProcessed)
	}
	if summary.FindingsStored != 1 || summary.FindingsAlerted != 1 {
		t.Errorf("got stored=%d alerted=%d, expected 1/1",
			summary.FindingsStored, summary.FindingsAlerted)
	}
	if len(store.persisted) != 1 || len(dispatcher.dispatched) != 1 {
		t.Errorf("collaborators saw %d/%d findings, expected 1/1",
			len(store.persisted), len(dispatcher.dispatched))
	}
	if summary.Interrupted {
		t.Error("cycle marked interrupted without cancellation")
	}
	if len(summary.Sources) != 3 {
		t.Errorf("got %d source results, expected 3", len(summary.Sources))
	}
}

// TestRunCycleFailureIndependence tests that store and dispatch
// failures do not mask each other.
func TestRunCycleFailureIndependence(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{content: map[string]string{"http://a.example": "example.com"}}

	t.Run("store fails, alert still sent", func(t *testing.T) {
		t.Parallel()

		store := &stubStore{err: errors.New("disk full")}
		dispatcher := &stubDispatcher{}
		m := New(fetcher, &stubScanner{}, store, dispatcher)

		summary, err := m.RunCycle(context.Background(), []string{"http://a.example"}, []string{"example.com"})
		if err != nil {
			t.Fatalf("RunCycle failed: %v", err)
		}
		if summary.FindingsStored != 0 || summary.StoreFailures != 1 {
			t.Errorf("got stored=%d storeFailures=%d, expected 0/1",
				summary.FindingsStored, summary.StoreFailures)
		}
		if len(dispatcher.dispatched) != 1 {
			t.Errorf("got %d dispatches, expected 1 despite store failure", len(dispatcher.dispatched))
		}
	})

	t.Run("dispatch fails, finding still stored", func(t *testing.T) {
		t.Parallel()

		store := &stubStore{}
		dispatcher := &stubDispatcher{err: errors.New("smtp down")}
		m := New(fetcher, &stubScanner{}, store, dispatcher)

		summary, err := m.RunCycle(context.Background(), []string{"http://a.example"}, []string{"example.com"})
		if err != nil {
			t.Fatalf("RunCycle failed: %v", err)
		}
		if summary.FindingsAlerted != 0 || summary.DispatchFailures != 1 {
			t.Errorf("got alerted=%d dispatchFailures=%d, expected 0/1",
				summary.FindingsAlerted, summary.DispatchFailures)
		}
		if len(store.persisted) != 1 {
			t.Errorf("got %d persists, expected 1 despite dispatch failure", len(store.persisted))
		}
	})

	t.Run("alerting disabled counts as not alerted", func(t *testing.T) {
		t.Parallel()

		store := &stubStore{}
		dispatcher := &stubDispatcher{err: alert.ErrNoDestination}
		m := New(fetcher, &stubScanner{}, store, dispatcher)

		summary, err := m.RunCycle(context.Background(), []string{"http://a.example"}, []string{"example.com"})
		if err != nil {
			t.Fatalf("RunCycle failed: %v", err)
		}
		if summary.FindingsStored != 1 || summary.FindingsAlerted != 0 {
			t.Errorf("got stored=%d alerted=%d, expected 1/0",
				summary.FindingsStored, summary.FindingsAlerted)
		}
	})
}

// TestRunCycleScanFailure tests that a scanner error skips the source.
func TestRunCycleScanFailure(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{content: map[string]string{"http://a.example": "x"}}
	m := New(fetcher, &stubScanner{err: errors.New("scan broke")}, &stubStore{}, &stubDispatcher{})

	summary, err := m.RunCycle(context.Background(), []string{"http://a.example"}, []string{"x"})
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if summary.SourcesFailed != 1 || summary.SourcesScanned != 0 {
		t.Errorf("got failed=%d scanned=%d, expected 1/0",
			summary.SourcesFailed, summary.SourcesScanned)
	}
}

// TestRunCycleCancelled tests that cancellation interrupts the cycle
// but still yields a summary.
func TestRunCycleCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := New(&stubFetcher{}, &stubScanner{}, &stubStore{}, &stubDispatcher{})

	summary, err := m.RunCycle(ctx, []string{"http://a.example", "http://b.example"}, []string{"x"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, expected context.Canceled", err)
	}
	if !summary.Interrupted {
		t.Error("summary not marked interrupted")
	}
}

// TestWithConcurrency tests the clamp.
func TestWithConcurrency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		n    int
		want int
	}{
		{name: "zero clamps up", n: 0, want: 1},
		{name: "negative clamps up", n: -5, want: 1},
		{name: "in range", n: 7, want: 7},
		{name: "over cap clamps down", n: 99, want: MaxConcurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := New(&stubFetcher{}, &stubScanner{}, &stubStore{}, &stubDispatcher{}, WithConcurrency(tt.n))
			if m.concurrency != tt.want {
				t.Errorf("got concurrency %d, expected %d", m.concurrency, tt.want)
			}
		})
	}
}
