// Package export renders basket valuation history into spreadsheet reports.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/basketfi/valuation/internal/history"
)

// exportLimit caps how many observations a report covers.
const exportLimit = 365

// usdScale converts 10^-6 USD integer values into whole USD for reporting.
var usdScale = int32(-6)

// ReportRow is one observation prepared for spreadsheet output.
type ReportRow struct {
	TakenAt time.Time
	AUM     decimal.Decimal  // whole USD
	Change  *decimal.Decimal // fractional change vs the previous observation
}

// ReportWriter writes report rows to a spreadsheet destination.
type ReportWriter interface {
	Write(ctx context.Context, basketName string, rows []ReportRow) error
}

// Service assembles valuation history reports and delegates writing to one or
// more ReportWriters. Implements worker.HistoryExporter.
type Service struct {
	repo    history.Repository
	writers []ReportWriter
}

// NewService creates a new export Service.
func NewService(repo history.Repository, writers ...ReportWriter) *Service {
	return &Service{repo: repo, writers: writers}
}

// ExportHistory renders the basket's recent history and writes it to every
// configured destination.
func (s *Service) ExportHistory(ctx context.Context, basketName string) error {
	records, err := s.repo.List(ctx, basketName, exportLimit)
	if err != nil {
		return fmt.Errorf("listing history for %s: %w", basketName, err)
	}

	rows, err := buildRows(records)
	if err != nil {
		return fmt.Errorf("building report for %s: %w", basketName, err)
	}

	for _, w := range s.writers {
		if err := w.Write(ctx, basketName, rows); err != nil {
			return fmt.Errorf("writing report for %s: %w", basketName, err)
		}
	}
	return nil
}

// buildRows converts stored observations, newest first, attaching the
// fractional change against the next-older observation.
func buildRows(records []history.Record) ([]ReportRow, error) {
	rows := make([]ReportRow, 0, len(records))
	for i, rec := range records {
		aum, err := decimal.NewFromString(rec.AUM.String())
		if err != nil {
			return nil, fmt.Errorf("parsing aum of record %d: %w", rec.ID, err)
		}
		row := ReportRow{TakenAt: rec.TakenAt, AUM: aum.Shift(usdScale)}

		if i+1 < len(records) {
			prev, err := decimal.NewFromString(records[i+1].AUM.String())
			if err != nil {
				return nil, fmt.Errorf("parsing aum of record %d: %w", records[i+1].ID, err)
			}
			if !prev.IsZero() {
				change := aum.Sub(prev).Div(prev)
				row.Change = &change
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func ptrFloat(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	f, _ := d.Float64()
	return f
}
