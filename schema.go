package sheetorm

// ColumnType is the declared domain type of a column. Cell text is decoded
// and encoded by the codec according to this closed set.
type ColumnType int

const (
	String ColumnType = iota
	Number
	Boolean
	JSON
	Date
	UUID
	CUID
)

func (t ColumnType) String() string {
	switch t {
	case String:
		return "string"
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	case JSON:
		return "json"
	case Date:
		return "date"
	case UUID:
		return "uuid"
	case CUID:
		return "cuid"
	default:
		return "unknown"
	}
}

// Column declares one column of a table. A bare declaration only needs Name
// and Type; the remaining flags default to off.
type Column struct {
	Name    string
	Type    ColumnType
	Unique  bool
	Default any

	// AutoIncrement issues strictly increasing values on create. Number
	// columns only.
	AutoIncrement bool

	// Date-role flags. CreatedAt/UpdatedAt columns are stamped
	// automatically on create/update; DeletedAt marks the column used for
	// soft deletion. Date columns only.
	CreatedAt bool
	UpdatedAt bool
	DeletedAt bool
}

// Col is shorthand for a column with no flags set.
func Col(name string, t ColumnType) Column {
	return Column{Name: name, Type: t}
}

// Schema is an ordered, immutable set of column definitions. One Schema may
// back any number of Models.
type Schema struct {
	columns []Column
	index   map[string]int
}

// NewSchema validates the declarations and builds a Schema. Structural
// mistakes (auto-increment on a non-number column, a date role on a non-date
// column, duplicate names) fail here rather than on first use.
func NewSchema(columns ...Column) (*Schema, error) {
	s := &Schema{
		columns: make([]Column, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	copy(s.columns, columns)

	for i, c := range s.columns {
		if c.Name == "" {
			return nil, &ConfigError{Column: c.Name, Reason: "empty column name"}
		}
		if _, dup := s.index[c.Name]; dup {
			return nil, &ConfigError{Column: c.Name, Reason: "duplicate column name"}
		}
		if c.AutoIncrement && c.Type != Number {
			return nil, &ConfigError{Column: c.Name, Reason: "autoIncrement requires a number column, got " + c.Type.String()}
		}
		if (c.CreatedAt || c.UpdatedAt || c.DeletedAt) && c.Type != Date {
			return nil, &ConfigError{Column: c.Name, Reason: "date role flags require a date column, got " + c.Type.String()}
		}
		s.index[c.Name] = i
	}
	return s, nil
}

// MustSchema is NewSchema that panics on a configuration error. Intended for
// schemas declared as package-level literals.
func MustSchema(columns ...Column) *Schema {
	s, err := NewSchema(columns...)
	if err != nil {
		panic(err)
	}
	return s
}

// Columns returns the column definitions in declaration order.
func (s *Schema) Columns() []Column {
	cols := make([]Column, len(s.columns))
	copy(cols, s.columns)
	return cols
}

// ColumnNames returns the column names in declaration order. This order
// becomes the physical header when a Model creates its table.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

// Lookup returns the definition of a named column.
func (s *Schema) Lookup(name string) (Column, bool) {
	i, ok := s.index[name]
	if !ok {
		return Column{}, false
	}
	return s.columns[i], true
}

// deletedAtColumn returns the name of the soft-delete column, if declared.
func (s *Schema) deletedAtColumn() (string, bool) {
	for _, c := range s.columns {
		if c.DeletedAt {
			return c.Name, true
		}
	}
	return "", false
}

func (s *Schema) updatedAtColumns() []string {
	var names []string
	for _, c := range s.columns {
		if c.UpdatedAt {
			names = append(names, c.Name)
		}
	}
	return names
}
