// Package excel implements the sheetorm.Store interface over a local .xlsx
// workbook. It gives examples and integration tests a backend with the same
// table/range semantics as Google Sheets but no network or credentials.
package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/sheetorm/sheetorm"
)

// Store implements sheetorm.Store for an Excel workbook. Every call opens,
// mutates and saves the file under a mutex; the workbook is the source of
// truth between calls.
type Store struct {
	config *Config
	mu     sync.Mutex
}

// New creates a new Excel store with the given configuration.
func New(config *Config) (*Store, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	configCopy := *config
	return &Store{config: &configCopy}, nil
}

// ReadRange returns the cell text of a rectangular range.
func (s *Store) ReadRange(ctx context.Context, rng string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, startRow, endRow, err := parseRange(rng)
	if err != nil {
		return nil, err
	}

	f, err := s.open(table)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(table)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	start := startRow - 1
	if start >= len(rows) {
		return [][]string{}, nil
	}
	end := len(rows)
	if endRow > 0 && endRow < end {
		end = endRow
	}

	out := make([][]string, 0, end-start)
	for _, row := range rows[start:end] {
		cells := make([]string, len(row))
		copy(cells, row)
		out = append(out, cells)
	}
	return out, nil
}

// AppendRows appends rows after the last non-empty row of the range.
func (s *Store) AppendRows(ctx context.Context, rng string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	table, startRow, _, err := parseRange(rng)
	if err != nil {
		return err
	}

	f, err := s.open(table)
	if err != nil {
		return err
	}
	defer f.Close()

	existing, err := f.GetRows(table)
	if err != nil {
		return fmt.Errorf("failed to get rows: %w", err)
	}

	target := len(existing) + 1
	if target < startRow {
		target = startRow
	}

	for i, row := range rows {
		if err := setRow(f, table, target+i, row); err != nil {
			return err
		}
	}
	return s.save(f)
}

// OverwriteRange writes rows starting at the top-left cell of the range.
func (s *Store) OverwriteRange(ctx context.Context, rng string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	table, startRow, _, err := parseRange(rng)
	if err != nil {
		return err
	}

	f, err := s.open(table)
	if err != nil {
		return err
	}
	defer f.Close()

	for i, row := range rows {
		if err := setRow(f, table, startRow+i, row); err != nil {
			return err
		}
	}
	return s.save(f)
}

// ClearRange blanks every cell in the range.
func (s *Store) ClearRange(ctx context.Context, rng string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	table, startRow, endRow, err := parseRange(rng)
	if err != nil {
		return err
	}

	f, err := s.open(table)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(table)
	if err != nil {
		return fmt.Errorf("failed to get rows: %w", err)
	}

	last := len(rows)
	if endRow > 0 && endRow < last {
		last = endRow
	}
	for r := startRow; r <= last; r++ {
		width := len(rows[r-1])
		for c := 1; c <= width; c++ {
			cell, err := excelize.CoordinatesToCellName(c, r)
			if err != nil {
				return fmt.Errorf("failed to build cell name: %w", err)
			}
			if err := f.SetCellStr(table, cell, ""); err != nil {
				return fmt.Errorf("failed to clear cell %s: %w", cell, err)
			}
		}
	}
	return s.save(f)
}

// CreateTable adds a new sheet to the workbook, creating the workbook first
// if needed.
func (s *Store) CreateTable(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	var f *excelize.File
	fresh := false
	if _, err := os.Stat(s.config.FilePath); err == nil {
		f, err = excelize.OpenFile(s.config.FilePath)
		if err != nil {
			return fmt.Errorf("failed to open workbook: %w", err)
		}
	} else {
		f = excelize.NewFile()
		fresh = true
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("failed to get sheet index: %w", err)
	}
	if idx != -1 {
		return fmt.Errorf("%w: sheet %q", sheetorm.ErrTableExists, name)
	}

	index, err := f.NewSheet(name)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	// A new workbook comes with a default sheet that would otherwise show
	// up as a phantom table.
	if fresh {
		if def := f.GetSheetName(0); def != name {
			_ = f.DeleteSheet(def)
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.config.FilePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(s.config.FilePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// open opens the workbook and verifies the table's sheet exists. A missing
// file or sheet reports sheetorm.ErrTableNotFound.
func (s *Store) open(table string) (*excelize.File, error) {
	f, err := excelize.OpenFile(s.config.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: workbook %q", sheetorm.ErrTableNotFound, s.config.FilePath)
		}
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	idx, err := f.GetSheetIndex(table)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to get sheet index: %w", err)
	}
	if idx == -1 {
		f.Close()
		return nil, fmt.Errorf("%w: sheet %q", sheetorm.ErrTableNotFound, table)
	}
	return f, nil
}

func (s *Store) save(f *excelize.File) error {
	if err := f.SaveAs(s.config.FilePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, table string, rowNum int, cells []string) error {
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	cell := fmt.Sprintf("A%d", rowNum)
	if err := f.SetSheetRow(table, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}

// parseRange splits a "<table>!<cellRange>" specifier into the sheet name
// and the 1-based start/end rows. An end of 0 means "to the last row".
func parseRange(rng string) (table string, startRow, endRow int, err error) {
	table = sheetorm.TableOfRange(rng)
	bang := strings.IndexByte(rng, '!')
	if bang < 0 {
		return table, 1, 0, nil
	}

	cells := rng[bang+1:]
	parts := strings.SplitN(cells, ":", 2)
	startRow = rowOfCell(parts[0], 1)
	if len(parts) == 2 {
		endRow = rowOfCell(parts[1], 0)
	}
	if startRow < 1 {
		return "", 0, 0, fmt.Errorf("invalid range %q", rng)
	}
	return table, startRow, endRow, nil
}

// rowOfCell extracts the row number of a cell reference like "A2",
// returning def for a column-only reference like "ZZ".
func rowOfCell(cell string, def int) int {
	i := 0
	for i < len(cell) && (cell[i] < '0' || cell[i] > '9') {
		i++
	}
	if i == len(cell) {
		return def
	}
	n, err := strconv.Atoi(cell[i:])
	if err != nil {
		return def
	}
	return n
}
