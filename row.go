package sheetorm

import (
	"fmt"
	"time"
)

// Row is one decoded table row: column name to typed value. Values carry the
// Go type of the column's declared ColumnType (string, float64, bool, any,
// time.Time). Included relations appear under the relation name as a Row
// (hasOne/belongsTo) or []Row (hasMany).
type Row map[string]any

// GetString returns the value as string or defaultValue if absent or null.
func (r Row) GetString(col string, defaultValue string) string {
	v, ok := r[col]
	if !ok || v == nil {
		return defaultValue
	}
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// GetNumber returns the value as float64 or defaultValue if absent or null.
func (r Row) GetNumber(col string, defaultValue float64) float64 {
	v, ok := r[col]
	if !ok || v == nil {
		return defaultValue
	}
	if f, ok := toFloat64(v); ok {
		return f
	}
	return defaultValue
}

// GetBool returns the value as bool or defaultValue if absent or null.
func (r Row) GetBool(col string, defaultValue bool) bool {
	v, ok := r[col]
	if !ok || v == nil {
		return defaultValue
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return defaultValue
}

// GetTime returns the value as time.Time or defaultValue if absent or null.
func (r Row) GetTime(col string, defaultValue time.Time) time.Time {
	v, ok := r[col]
	if !ok || v == nil {
		return defaultValue
	}
	if t, ok := v.(time.Time); ok {
		return t
	}
	return defaultValue
}

// GetRow returns an included hasOne/belongsTo relation, or nil.
func (r Row) GetRow(relation string) Row {
	if v, ok := r[relation].(Row); ok {
		return v
	}
	return nil
}

// GetRows returns an included hasMany relation collection.
func (r Row) GetRows(relation string) []Row {
	if v, ok := r[relation].([]Row); ok {
		return v
	}
	return nil
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
