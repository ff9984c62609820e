package sheetorm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lucsky/cuid"
)

// Model binds a Schema to a named table through a Store and exposes the
// query and mutation surface. A Model performs no internal locking and no
// retries; transport policy belongs to the Store implementation.
//
// The header row is resolved once, lazily, on the first operation and kept
// for the Model's lifetime: its column order determines the physical layout
// of every subsequent read and write, even if the remote header changes
// underneath.
type Model struct {
	store  Store
	table  string
	schema *Schema

	relations map[string]Relation

	header []string

	// watermark holds the last issued value per auto-increment column.
	// The backend's read path lags its writes, so a burst of creates
	// cannot rely on the scanned maximum alone.
	watermark map[string]float64
}

// NewModel builds a Model over table using store. Several Models may share
// one Schema and one Store; relations are attached afterwards with Relate.
func NewModel(store Store, table string, schema *Schema) *Model {
	return &Model{
		store:     store,
		table:     table,
		schema:    schema,
		watermark: make(map[string]float64),
	}
}

// Table returns the bound table name.
func (m *Model) Table() string {
	return m.table
}

// ensureHeader resolves the header row once. A missing table is created and
// given a header in the schema's declaration order; a create that races an
// existing table is treated as success.
func (m *Model) ensureHeader(ctx context.Context) error {
	if m.header != nil {
		return nil
	}

	rows, err := m.store.ReadRange(ctx, HeaderRange(m.table))
	switch {
	case errors.Is(err, ErrTableNotFound):
		if err := m.store.CreateTable(ctx, m.table); err != nil && !errors.Is(err, ErrTableExists) {
			return fmt.Errorf("failed to create table %q: %w", m.table, err)
		}
		return m.writeHeader(ctx)
	case err != nil:
		return err
	}

	if len(rows) == 0 || len(rows[0]) == 0 {
		return m.writeHeader(ctx)
	}
	m.header = rows[0]
	return nil
}

func (m *Model) writeHeader(ctx context.Context) error {
	header := m.schema.ColumnNames()
	if err := m.store.OverwriteRange(ctx, HeaderRange(m.table), [][]string{header}); err != nil {
		return fmt.Errorf("failed to write header for table %q: %w", m.table, err)
	}
	m.header = header
	return nil
}

// readRows reads and decodes the full data range.
func (m *Model) readRows(ctx context.Context) ([]Row, error) {
	raw, err := m.store.ReadRange(ctx, DataRange(m.table))
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(raw))
	for _, cells := range raw {
		if emptyRow(cells) {
			continue
		}
		rows = append(rows, m.decodeRow(cells))
	}
	return rows, nil
}

func emptyRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

// decodeRow maps one raw cell row onto the resolved header. Cells under a
// header the schema does not know keep their raw text.
func (m *Model) decodeRow(cells []string) Row {
	row := make(Row)
	for j, cell := range cells {
		if j >= len(m.header) {
			break
		}
		name := m.header[j]
		if name == "" {
			continue
		}
		col, known := m.schema.Lookup(name)
		if !known {
			if cell != "" {
				row[name] = cell
			}
			continue
		}
		if v := ParseCell(cell, col.Type); v != nil {
			row[name] = v
		}
	}
	return row
}

// encodeRow serializes a decoded row back into header order.
func (m *Model) encodeRow(row Row) []string {
	cells := make([]string, len(m.header))
	for j, name := range m.header {
		if name == "" {
			continue
		}
		cells[j] = SerializeCell(row[name])
	}
	return cells
}

func (m *Model) encodeRows(rows []Row) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = m.encodeRow(row)
	}
	return out
}

// FindMany returns the decoded rows matching filter, shaped by opts. A nil
// filter matches every row; zero matches return an empty slice, never an
// error.
func (m *Model) FindMany(ctx context.Context, filter Filter, opts *FindOptions) ([]Row, error) {
	if err := m.ensureHeader(ctx); err != nil {
		return nil, err
	}
	rows, err := m.readRows(ctx)
	if err != nil {
		return nil, err
	}

	delCol, hasDelCol := m.schema.deletedAtColumn()
	results := make([]Row, 0, len(rows))
	for _, row := range rows {
		if hasDelCol && !opts.includeDeleted() && row[delCol] != nil {
			continue
		}
		if filter != nil && !filter.Matches(row) {
			continue
		}
		results = append(results, row)
	}

	if opts != nil && opts.SortBy != "" {
		sortRows(results, opts.SortBy, opts.SortOrder)
	}

	if opts != nil {
		if opts.Skip > 0 {
			if opts.Skip >= len(results) {
				results = results[:0]
			} else {
				results = results[opts.Skip:]
			}
		}
		if opts.Limit > 0 && opts.Limit < len(results) {
			results = results[:opts.Limit]
		}
	}

	if opts != nil && len(opts.Include) > 0 {
		if err := m.resolveRelations(ctx, results, opts.Include); err != nil {
			return nil, err
		}
	}

	if opts != nil && opts.Select != nil {
		for i, row := range results {
			results[i] = projectRow(row, opts.Select, opts.Include)
		}
	}

	return results, nil
}

// FindFirst returns the first row matching filter, or nil when none does.
func (m *Model) FindFirst(ctx context.Context, filter Filter, opts *FindOptions) (Row, error) {
	var limited FindOptions
	if opts != nil {
		limited = *opts
	}
	limited.Limit = 1

	rows, err := m.FindMany(ctx, filter, &limited)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Create inserts one row, filling defaults, generated identifiers,
// auto-increment values and timestamp roles for absent columns, and returns
// the row as inserted.
func (m *Model) Create(ctx context.Context, data Row) (Row, error) {
	rows, err := m.CreateMany(ctx, []Row{data})
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

// CreateMany inserts a batch of rows with the same semantics as Create,
// issuing exactly one append for the whole batch. A uniqueness collision on
// any row fails the entire call before anything is written.
func (m *Model) CreateMany(ctx context.Context, data []Row) ([]Row, error) {
	if err := m.ensureHeader(ctx); err != nil {
		return nil, err
	}

	if err := m.checkUnique(ctx, data); err != nil {
		return nil, err
	}

	scanMax, err := m.scanAutoIncrementMax(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	filled := make([]Row, len(data))
	for i, input := range data {
		row := input.Clone()
		for _, col := range m.schema.Columns() {
			if v, ok := row[col.Name]; ok && v != nil {
				continue
			}
			switch {
			case col.Default != nil:
				row[col.Name] = col.Default
			case col.AutoIncrement:
				next := m.watermark[col.Name]
				if hi := scanMax[col.Name]; hi > next {
					next = hi
				}
				next++
				m.watermark[col.Name] = next
				row[col.Name] = next
			case col.Type == UUID:
				row[col.Name] = uuid.NewString()
			case col.Type == CUID:
				row[col.Name] = cuid.New()
			case col.CreatedAt || col.UpdatedAt:
				row[col.Name] = now
			}
		}
		filled[i] = row
	}

	if err := m.store.AppendRows(ctx, DataRange(m.table), m.encodeRows(filled)); err != nil {
		return nil, err
	}
	return filled, nil
}

// checkUnique verifies each declared-unique column of each input row against
// the existing data. This is a pre-check, not a remote constraint: two
// independent processes can still insert the same value concurrently.
func (m *Model) checkUnique(ctx context.Context, data []Row) error {
	for _, row := range data {
		for _, col := range m.schema.Columns() {
			if !col.Unique {
				continue
			}
			v, ok := row[col.Name]
			if !ok || v == nil {
				continue
			}
			existing, err := m.FindFirst(ctx, Filter{col.Name: v}, nil)
			if err != nil {
				return err
			}
			if existing != nil {
				return &UniqueViolationError{Column: col.Name, Value: v}
			}
		}
	}
	return nil
}

// scanAutoIncrementMax reads the current maximum of every auto-increment
// column. Soft-deleted rows count: their identifiers stay taken.
func (m *Model) scanAutoIncrementMax(ctx context.Context) (map[string]float64, error) {
	var autoCols []string
	for _, col := range m.schema.Columns() {
		if col.AutoIncrement {
			autoCols = append(autoCols, col.Name)
		}
	}
	if len(autoCols) == 0 {
		return nil, nil
	}

	rows, err := m.readRows(ctx)
	if err != nil {
		return nil, err
	}

	max := make(map[string]float64, len(autoCols))
	for _, row := range rows {
		for _, name := range autoCols {
			if f, ok := toFloat64(row[name]); ok && f > max[name] {
				max[name] = f
			}
		}
	}
	return max, nil
}

// Upsert updates the first row matching Where, or inserts Create when none
// matches.
func (m *Model) Upsert(ctx context.Context, args UpsertArgs) (Row, error) {
	existing, err := m.FindFirst(ctx, args.Where, nil)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return m.Create(ctx, args.Create)
	}

	updated, err := m.Update(ctx, args.Where, args.Update)
	if err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		return nil, nil
	}
	return updated[0], nil
}

// Update merges data over every row matching filter and writes the whole
// data range back in a single call. Soft-deleted rows never match. The
// returned rows are the post-merge typed rows.
func (m *Model) Update(ctx context.Context, filter Filter, data Row) ([]Row, error) {
	if err := m.ensureHeader(ctx); err != nil {
		return nil, err
	}
	rows, err := m.readRows(ctx)
	if err != nil {
		return nil, err
	}

	delCol, hasDelCol := m.schema.deletedAtColumn()
	updatedCols := m.schema.updatedAtColumns()
	now := time.Now().UTC()

	var updated []Row
	for i, row := range rows {
		if hasDelCol && row[delCol] != nil {
			continue
		}
		if filter != nil && !filter.Matches(row) {
			continue
		}
		merged := row.Clone()
		for k, v := range data {
			merged[k] = v
		}
		for _, name := range updatedCols {
			merged[name] = now
		}
		rows[i] = merged
		updated = append(updated, merged)
	}

	if len(updated) == 0 {
		return nil, nil
	}
	if err := m.store.OverwriteRange(ctx, DataRange(m.table), m.encodeRows(rows)); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes rows matching filter. With a declared soft-delete column
// and no Force option, matching live rows are stamped with the current
// instant and the range is written back in one call; rows already deleted
// are not re-stamped or re-counted. Otherwise rows are removed physically:
// the data range is cleared and only the kept rows are written back. The
// return value is the number of rows newly deleted.
func (m *Model) Delete(ctx context.Context, filter Filter, opts *DeleteOptions) (int, error) {
	if err := m.ensureHeader(ctx); err != nil {
		return 0, err
	}
	rows, err := m.readRows(ctx)
	if err != nil {
		return 0, err
	}

	delCol, hasDelCol := m.schema.deletedAtColumn()
	force := opts != nil && opts.Force

	if hasDelCol && !force {
		now := time.Now().UTC()
		count := 0
		for i, row := range rows {
			if row[delCol] != nil {
				continue
			}
			if filter != nil && !filter.Matches(row) {
				continue
			}
			stamped := row.Clone()
			stamped[delCol] = now
			rows[i] = stamped
			count++
		}
		if count == 0 {
			return 0, nil
		}
		if err := m.store.OverwriteRange(ctx, DataRange(m.table), m.encodeRows(rows)); err != nil {
			return 0, err
		}
		return count, nil
	}

	var kept []Row
	removed := 0
	for _, row := range rows {
		if filter == nil || filter.Matches(row) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	if removed == 0 {
		return 0, nil
	}

	if err := m.store.ClearRange(ctx, DataRange(m.table)); err != nil {
		return 0, err
	}
	if len(kept) > 0 {
		if err := m.store.OverwriteRange(ctx, DataRange(m.table), m.encodeRows(kept)); err != nil {
			return 0, err
		}
	}
	return removed, nil
}

// resolveRelations attaches the requested relations to rows. Each relation
// costs one bulk fetch of the target table regardless of the number of
// parents; the join happens in memory.
func (m *Model) resolveRelations(ctx context.Context, rows []Row, include map[string]any) error {
	for name, v := range include {
		if enabled, ok := v.(bool); ok && !enabled {
			continue
		}
		rel, ok := m.relations[name]
		if !ok {
			return fmt.Errorf("unknown relation %q on table %q", name, m.table)
		}

		nested := nestedFindOptions(v)
		parentCol, relatedCol := rel.joinKeys()

		var fetchOpts *FindOptions
		if nested != nil {
			o := *nested
			if o.Select != nil {
				// The join key must survive a nested projection.
				sel := make(map[string]bool, len(o.Select)+1)
				for k, keep := range o.Select {
					sel[k] = keep
				}
				sel[relatedCol] = true
				o.Select = sel
			}
			fetchOpts = &o
		}

		related, err := rel.Target.FindMany(ctx, nil, fetchOpts)
		if err != nil {
			return err
		}

		for _, row := range rows {
			local := row[parentCol]
			if local == nil {
				continue
			}
			switch rel.Kind {
			case HasMany:
				matches := make([]Row, 0)
				for _, rr := range related {
					if looseEqual(rr[relatedCol], local) {
						matches = append(matches, rr)
					}
				}
				row[name] = matches
			default:
				var match Row
				for _, rr := range related {
					if looseEqual(rr[relatedCol], local) {
						match = rr
						break
					}
				}
				if match != nil {
					row[name] = match
				} else {
					row[name] = nil
				}
			}
		}
	}
	return nil
}

// projectRow prunes a row to the selected columns. Relation keys attached
// via include always survive.
func projectRow(row Row, sel map[string]bool, include map[string]any) Row {
	out := make(Row)
	for name, keep := range sel {
		if !keep {
			continue
		}
		if v, ok := row[name]; ok {
			out[name] = v
		}
	}
	for name := range include {
		if v, ok := row[name]; ok {
			out[name] = v
		}
	}
	return out
}

// sortRows orders rows by col, nulls after every non-null value regardless
// of direction, ties left in input order.
func sortRows(rows []Row, col string, order SortOrder) {
	desc := order == Desc
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i][col], rows[j][col]
		if a == nil && b == nil {
			return false
		}
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		cmp, ok := compareOrdered(a, b)
		if !ok {
			return false
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}
