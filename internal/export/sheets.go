package export

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/nadlan/propstat/internal/domain"
	"github.com/nadlan/propstat/internal/tax"
)

const sheetsRange = "TAX_REPORT"

// SheetsWriter implements ReportWriter using the Google Sheets API.
type SheetsWriter struct {
	spreadsheetID string
	svc           *sheets.Service
}

// NewSheetsWriter creates a SheetsWriter authenticated with a service
// account JSON.
func NewSheetsWriter(ctx context.Context, spreadsheetID, credentialsJSON string) (*SheetsWriter, error) {
	creds, err := google.CredentialsFromJSON(
		ctx,
		[]byte(credentialsJSON),
		sheets.SpreadsheetsScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parsing google credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &SheetsWriter{spreadsheetID: spreadsheetID, svc: svc}, nil
}

// Write clears the report range and rewrites it from scratch.
func (w *SheetsWriter) Write(ctx context.Context, rows []tax.ReportRow, total float64, display domain.CurrencyCode) error {
	if err := w.ensureSheet(ctx); err != nil {
		return err
	}

	_, err := w.svc.Spreadsheets.Values.Clear(
		w.spreadsheetID, sheetsRange+"!A:D",
		&sheets.ClearValuesRequest{},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clearing sheet: %w", err)
	}

	_, err = w.svc.Spreadsheets.Values.Update(
		w.spreadsheetID, sheetsRange+"!A1",
		&sheets.ValueRange{Values: buildValues(rows, total, display)},
	).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing sheet: %w", err)
	}
	return nil
}

func buildValues(rows []tax.ReportRow, total float64, display domain.CurrencyCode) [][]any {
	data := make([][]any, 0, len(rows)+3)
	data = append(data, []any{"Address", "Country",
		fmt.Sprintf("Gross NOI (%s)", display),
		fmt.Sprintf("Estimated Tax (%s)", display)})

	for _, row := range rows {
		data = append(data, []any{row.Address, row.Country, row.GrossNOI, row.EstimatedTax})
	}

	data = append(data, []any{})
	data = append(data, []any{"Total", "", "", total})
	return data
}

func (w *SheetsWriter) ensureSheet(ctx context.Context) error {
	spreadsheet, err := w.svc.Spreadsheets.Get(w.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("getting spreadsheet: %w", err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == sheetsRange {
			return nil
		}
	}

	_, err = w.svc.Spreadsheets.BatchUpdate(w.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: sheetsRange},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheetsRange, err)
	}
	return nil
}
