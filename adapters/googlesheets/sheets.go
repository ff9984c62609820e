package googlesheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/sheetorm/sheetorm"
)

// Store implements the sheetorm.Store interface for Google Sheets. Each
// named table maps to a sheet (tab) of one spreadsheet.
type Store struct {
	service       *sheets.Service
	spreadsheetID string
	limiter       *rate.Limiter
}

// New creates a Google Sheets store with the provided client options.
func New(ctx context.Context, config Config, opts ...option.ClientOption) (*Store, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	var limiter *rate.Limiter
	if config.QPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.QPS), 1)
	}

	return &Store{
		service:       service,
		spreadsheetID: config.SpreadsheetID,
		limiter:       limiter,
	}, nil
}

// ReadRange returns the cell text of a rectangular range.
func (s *Store) ReadRange(ctx context.Context, rng string) ([][]string, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, translateError(err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for j, cell := range raw {
			row[j] = cellText(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// AppendRows appends rows after the last non-empty row of the range.
func (s *Store) AppendRows(ctx context.Context, rng string, rows [][]string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	vr := &sheets.ValueRange{Values: toCellValues(rows)}
	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return translateError(err)
	}
	return nil
}

// OverwriteRange writes rows starting at the top-left cell of the range.
func (s *Store) OverwriteRange(ctx context.Context, rng string, rows [][]string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	vr := &sheets.ValueRange{Values: toCellValues(rows)}
	_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return translateError(err)
	}
	return nil
}

// ClearRange blanks every cell in the range.
func (s *Store) ClearRange(ctx context.Context, rng string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	_, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, rng, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return translateError(err)
	}
	return nil
}

// CreateTable adds a new sheet with the given title.
func (s *Store) CreateTable(ctx context.Context, name string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: name},
				},
			},
		},
	}
	_, err := s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return translateError(err)
	}
	return nil
}

func (s *Store) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}

// translateError maps the two recoverable Sheets API failures onto the
// sheetorm sentinels. Reading a range of a sheet that does not exist fails
// with a 400 "Unable to parse range"; adding a sheet twice fails with
// "already exists". Everything else passes through unchanged.
func translateError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	msg := strings.ToLower(gerr.Message)
	if gerr.Code == 400 && (strings.Contains(msg, "unable to parse range") || strings.Contains(msg, "invalid range")) {
		return fmt.Errorf("%w: %v", sheetorm.ErrTableNotFound, err)
	}
	if strings.Contains(msg, "already exists") {
		return fmt.Errorf("%w: %v", sheetorm.ErrTableExists, err)
	}
	return err
}

func toCellValues(rows [][]string) [][]interface{} {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}
	return values
}

func cellText(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}
