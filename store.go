package sheetorm

import (
	"context"
	"fmt"
	"strings"
)

// Store is the boundary to a spreadsheet-like backend. A range specifier has
// the form "<table>!<cellRange>"; the table prefix is the unit of cache
// invalidation. Implementations translate backend-specific failures for a
// missing table or a duplicate table into ErrTableNotFound / ErrTableExists
// so callers can recover with errors.Is.
type Store interface {
	// ReadRange returns the cell text of a rectangular range. A range with
	// no data returns an empty matrix, not an error.
	ReadRange(ctx context.Context, rng string) ([][]string, error)

	// AppendRows appends rows after the last non-empty row of the range.
	AppendRows(ctx context.Context, rng string, rows [][]string) error

	// OverwriteRange writes rows starting at the top-left cell of the range.
	OverwriteRange(ctx context.Context, rng string, rows [][]string) error

	// ClearRange blanks every cell in the range.
	ClearRange(ctx context.Context, rng string) error

	// CreateTable adds a new named sheet/tab.
	CreateTable(ctx context.Context, name string) error
}

// HeaderRange returns the range specifier for a table's header row.
func HeaderRange(table string) string {
	return fmt.Sprintf("%s!A1:ZZ1", table)
}

// DataRange returns the range specifier for a table's data rows, everything
// below the header.
func DataRange(table string) string {
	return fmt.Sprintf("%s!A2:ZZ", table)
}

// TableOfRange extracts the table prefix of a range specifier, the text
// before the first '!'. A specifier without '!' is its own table name.
func TableOfRange(rng string) string {
	if i := strings.IndexByte(rng, '!'); i >= 0 {
		return rng[:i]
	}
	return rng
}
