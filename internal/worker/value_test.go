package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/basketfi/valuation/internal/numeric"
)

type mockCapturer struct {
	mu      sync.Mutex
	baskets []string
	err     error
}

func (m *mockCapturer) Capture(_ context.Context, basketName string, _ time.Time) (numeric.Uint128, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baskets = append(m.baskets, basketName)
	return numeric.New(1), m.err
}

func (m *mockCapturer) captured() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.baskets...)
}

func TestValueWorkerRunsAndShutdown(t *testing.T) {
	mock := &mockCapturer{}
	w := NewValueWorker(mock, []string{"reserve", "growth"}, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	// Should have run at least the initial capture for every basket
	captured := mock.captured()
	if len(captured) < 2 {
		t.Fatalf("capture count = %d, want >= 2", len(captured))
	}
	if captured[0] != "reserve" || captured[1] != "growth" {
		t.Errorf("initial captures = %v, want [reserve growth ...]", captured[:2])
	}
}

func TestValueWorkerContinuesAfterFailure(t *testing.T) {
	mock := &mockCapturer{err: errors.New("oracle unavailable")}
	w := NewValueWorker(mock, []string{"reserve", "growth"}, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	// A failed basket must not stop the sweep
	if captured := mock.captured(); len(captured) != 2 {
		t.Errorf("capture count = %d, want 2", len(captured))
	}
}

type mockExporter struct {
	callCount atomic.Int32
}

func (m *mockExporter) ExportHistory(_ context.Context, _ string) error {
	m.callCount.Add(1)
	return nil
}

func TestReportWorkerRunsAndShutdown(t *testing.T) {
	mock := &mockExporter{}
	w := NewReportWorker(mock, []string{"reserve"}, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	if got := mock.callCount.Load(); got < 1 {
		t.Errorf("call count = %d, want >= 1", got)
	}
}
