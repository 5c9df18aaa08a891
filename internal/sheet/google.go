package sheet

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/rcalvert/option-tracker/internal/config"
)

// GoogleSheetStore implements RowStore against the Google Sheets API
type GoogleSheetStore struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string

	mu           sync.Mutex
	sheetID      int64
	sheetIDKnown bool
}

// NewGoogleSheetStore builds a store from service-account credentials
func NewGoogleSheetStore(ctx context.Context, cfg config.SheetConfig) (*GoogleSheetStore, error) {
	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return &GoogleSheetStore{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		worksheet:     cfg.Worksheet,
	}, nil
}

// Rows returns every row of the worksheet, header included
func (s *GoogleSheetStore) Rows(ctx context.Context) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.worksheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Append adds a row after the last non-empty row of the worksheet
func (s *GoogleSheetStore) Append(ctx context.Context, row []string) error {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{cells}}

	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.worksheet, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	return nil
}

// DeleteRow removes the row at the given 1-based address. The Sheets
// API uses 0-based half-open dimension ranges.
func (s *GoogleSheetStore) DeleteRow(ctx context.Context, addr int) error {
	sheetID, err := s.resolveSheetID(ctx)
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(addr - 1),
					EndIndex:   int64(addr),
				},
			},
		}},
	}

	_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to delete row %d: %w", addr, err)
	}
	return nil
}

// resolveSheetID looks up the numeric id of the worksheet once and
// caches it; DeleteDimension addresses sheets by id, not title.
func (s *GoogleSheetStore) resolveSheetID(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sheetIDKnown {
		return s.sheetID, nil
	}

	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == s.worksheet {
			s.sheetID = sh.Properties.SheetId
			s.sheetIDKnown = true
			return s.sheetID, nil
		}
	}
	return 0, fmt.Errorf("worksheet %q not found in spreadsheet %s", s.worksheet, s.spreadsheetID)
}
