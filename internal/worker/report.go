package worker

import (
	"context"
	"log/slog"
	"time"
)

// HistoryExporter writes a basket's valuation history to external sinks.
type HistoryExporter interface {
	ExportHistory(ctx context.Context, basketName string) error
}

// ReportWorker periodically exports valuation history reports.
type ReportWorker struct {
	exporter HistoryExporter
	baskets  []string
	interval time.Duration
}

// NewReportWorker creates a new ReportWorker.
func NewReportWorker(exporter HistoryExporter, baskets []string, interval time.Duration) *ReportWorker {
	return &ReportWorker{
		exporter: exporter,
		baskets:  baskets,
		interval: interval,
	}
}

func (w *ReportWorker) exportAll(ctx context.Context) {
	for _, name := range w.baskets {
		if err := w.exporter.ExportHistory(ctx, name); err != nil {
			slog.Error("ReportWorker: export failed", "basket", name, "error", err)
			continue
		}
		slog.Info("ReportWorker: export completed", "basket", name)
	}
}

// Run starts the report worker loop. It blocks until the context is cancelled.
func (w *ReportWorker) Run(ctx context.Context) {
	slog.Info("ReportWorker: starting", "baskets", w.baskets)

	// Export immediately on startup
	w.exportAll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("ReportWorker: shutting down")
			return
		case <-ticker.C:
			w.exportAll(ctx)
		}
	}
}
