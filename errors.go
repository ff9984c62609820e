package sheetorm

import (
	"errors"
	"fmt"
)

var (
	// ErrTableNotFound is reported by a Store when a range refers to a
	// table that does not exist. The Model recovers by creating the table.
	ErrTableNotFound = errors.New("table not found")

	// ErrTableExists is reported by a Store when CreateTable races with an
	// existing table. The Model swallows it.
	ErrTableExists = errors.New("table already exists")
)

// ConfigError reports an invalid schema declaration. It is raised at Schema
// construction, never at query time.
type ConfigError struct {
	Column string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid column %q: %s", e.Column, e.Reason)
}

// UniqueViolationError reports a create that collides with an existing value
// on a column declared unique.
type UniqueViolationError struct {
	Column string
	Value  any
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("unique constraint on column %q violated by value %v", e.Column, e.Value)
}
