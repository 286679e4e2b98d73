package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ErrDisabled is returned when no spreadsheet writer is configured.
var ErrDisabled = errors.New("spreadsheet export is not configured")

// Writer writes a table into a spreadsheet tab.
type Writer interface {
	WriteTable(ctx context.Context, spreadsheetID, tab string, table Table) (string, error)
}

// GoogleSheets writes tables with the Google Sheets API using a service account.
type GoogleSheets struct {
	svc *sheets.Service
}

// NewGoogleSheets builds a writer from a service account credentials file.
func NewGoogleSheets(ctx context.Context, credentialsFile string) (*GoogleSheets, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(b, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return NewGoogleSheetsWithService(svc), nil
}

// NewGoogleSheetsWithService builds a writer on top of an existing Sheets client.
func NewGoogleSheetsWithService(svc *sheets.Service) *GoogleSheets {
	return &GoogleSheets{svc: svc}
}

// quoteTab quotes a tab name for A1 notation. Apostrophes inside are doubled.
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

// WriteTable replaces the contents of tab (creating it if needed), writes the table
// starting at A1 and bolds the header row. It returns the updated range.
func (g *GoogleSheets) WriteTable(ctx context.Context, spreadsheetID, tab string, table Table) (string, error) {
	sheetID, err := g.ensureTab(ctx, spreadsheetID, tab)
	if err != nil {
		return "", err
	}

	if _, err := g.svc.Spreadsheets.Values.Clear(spreadsheetID, quoteTab(tab), &sheets.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("failed to clear tab %s: %w", tab, err)
	}

	writeRange := quoteTab(tab) + "!A1"
	resp, err := g.svc.Spreadsheets.Values.Update(spreadsheetID, writeRange, &sheets.ValueRange{
		Range:  writeRange,
		Values: table.Values(),
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to write data to sheet: %w", err)
	}

	format := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:          sheetID,
						StartRowIndex:    0,
						EndRowIndex:      1,
						StartColumnIndex: 0,
						EndColumnIndex:   int64(len(table.Header)),
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							TextFormat: &sheets.TextFormat{Bold: true},
						},
					},
					Fields: "userEnteredFormat.textFormat.bold",
				},
			},
			{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId:        sheetID,
						GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
		},
	}
	if _, err := g.svc.Spreadsheets.BatchUpdate(spreadsheetID, format).Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("failed to format sheet: %w", err)
	}

	return resp.UpdatedRange, nil
}

func (g *GoogleSheets) ensureTab(ctx context.Context, spreadsheetID, tab string) (int64, error) {
	spreadsheet, err := g.svc.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve spreadsheet: %w", err)
	}

	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil && s.Properties.Title == tab {
			return s.Properties.SheetId, nil
		}
	}

	resp, err := g.svc.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: tab}}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to add tab %s: %w", tab, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return 0, fmt.Errorf("failed to add tab %s: empty reply", tab)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}
