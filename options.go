package sheetorm

// SortOrder directs a FindOptions sort.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// FindOptions shape the result set of FindMany / FindFirst.
type FindOptions struct {
	// Select projects the result to the named columns. Applied after
	// relation attachment, so included relations survive even when the
	// row's own columns are pruned.
	Select map[string]bool

	// Include resolves declared relations by name. The value is either
	// true or a *FindOptions applied to the related fetch.
	Include map[string]any

	// Limit caps the number of returned rows; zero means no cap.
	Limit int

	// Skip drops the first n rows, before Limit is applied.
	Skip int

	// IncludeDeleted also returns rows whose soft-delete column is set.
	IncludeDeleted bool

	// SortBy orders rows by the named column, nulls after all non-null
	// values regardless of direction, ties kept in input order.
	SortBy    string
	SortOrder SortOrder
}

// DeleteOptions shape a Delete call.
type DeleteOptions struct {
	// Force removes matching rows physically even when the schema
	// declares a soft-delete column.
	Force bool
}

// UpsertArgs drive Upsert: the first row matching Where is updated with
// Update; when none matches, Create is inserted.
type UpsertArgs struct {
	Where  Filter
	Update Row
	Create Row
}

func (o *FindOptions) includeDeleted() bool {
	return o != nil && o.IncludeDeleted
}

// nestedFindOptions interprets an Include value: true means default
// options, a *FindOptions is used as given.
func nestedFindOptions(v any) *FindOptions {
	if opts, ok := v.(*FindOptions); ok {
		return opts
	}
	return nil
}
