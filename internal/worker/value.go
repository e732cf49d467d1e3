package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/basketfi/valuation/internal/numeric"
)

// ValuationCapturer values a basket and records the observation.
type ValuationCapturer interface {
	Capture(ctx context.Context, basketName string, takenAt time.Time) (numeric.Uint128, error)
}

// ValueWorker periodically captures AUM observations for a set of baskets.
type ValueWorker struct {
	capturer ValuationCapturer
	baskets  []string
	interval time.Duration
}

// NewValueWorker creates a new ValueWorker.
func NewValueWorker(capturer ValuationCapturer, baskets []string, interval time.Duration) *ValueWorker {
	return &ValueWorker{
		capturer: capturer,
		baskets:  baskets,
		interval: interval,
	}
}

func (w *ValueWorker) captureAll(ctx context.Context) {
	now := time.Now().UTC()
	for _, name := range w.baskets {
		aum, err := w.capturer.Capture(ctx, name, now)
		if err != nil {
			slog.Error("ValueWorker: capture failed", "basket", name, "error", err)
			continue
		}
		slog.Info("ValueWorker: capture completed", "basket", name, "aum", aum)
	}
}

// Run starts the value worker loop. It blocks until the context is cancelled.
func (w *ValueWorker) Run(ctx context.Context) {
	slog.Info("ValueWorker: starting", "baskets", w.baskets)

	// Capture immediately on startup
	w.captureAll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("ValueWorker: shutting down")
			return
		case <-ticker.C:
			w.captureAll(ctx)
		}
	}
}
