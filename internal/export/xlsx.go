package export

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// XLSXWriter implements ReportWriter by writing one .xlsx workbook per basket
// into a local directory.
type XLSXWriter struct {
	dir string
}

// NewXLSXWriter creates an XLSXWriter that writes into dir.
func NewXLSXWriter(dir string) *XLSXWriter {
	return &XLSXWriter{dir: dir}
}

// Write renders the rows into <dir>/<basket>.xlsx, overwriting any previous
// report.
func (w *XLSXWriter) Write(_ context.Context, basketName string, rows []ReportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "History"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &[]any{"Date", "AUM (USD)", "Change"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("addressing row %d: %w", i+2, err)
		}
		values := []any{
			row.TakenAt.UTC().Format("02.01.2006 15:04"),
			toFloat(row.AUM),
			ptrFloat(row.Change),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	path := filepath.Join(w.dir, basketName+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
