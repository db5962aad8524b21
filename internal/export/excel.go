package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/nadlan/propstat/internal/domain"
	"github.com/nadlan/propstat/internal/rates"
	"github.com/nadlan/propstat/internal/tax"
)

const taxSheet = "Tax Report"

// ExcelWriter implements ReportWriter by producing an XLSX workbook.
type ExcelWriter struct {
	path string
	conv *rates.Converter
}

// NewExcelWriter creates an ExcelWriter saving to path. Monetary cells
// are formatted with conv, matching the on-screen report.
func NewExcelWriter(path string, conv *rates.Converter) *ExcelWriter {
	return &ExcelWriter{path: path, conv: conv}
}

// Write renders one row per property plus a total row.
func (w *ExcelWriter) Write(ctx context.Context, rows []tax.ReportRow, total float64, display domain.CurrencyCode) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", taxSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := []any{"Address", "Country", "Gross NOI", "Estimated Tax"}
	if err := w.setRow(f, 1, header); err != nil {
		return err
	}

	for i, row := range rows {
		values := []any{
			row.Address,
			row.Country,
			w.conv.Format(row.GrossNOI, display),
			w.conv.Format(row.EstimatedTax, display),
		}
		if err := w.setRow(f, i+2, values); err != nil {
			return err
		}
	}

	totalRow := []any{"Total", "", "", w.conv.Format(total, display)}
	if err := w.setRow(f, len(rows)+3, totalRow); err != nil {
		return err
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", w.path, err)
	}
	return nil
}

func (w *ExcelWriter) setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("building cell reference: %w", err)
	}
	if err := f.SetSheetRow(taxSheet, cell, &values); err != nil {
		return fmt.Errorf("writing row %d: %w", row, err)
	}
	return nil
}
