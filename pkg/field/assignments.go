package field

import (
	"errors"
	"fmt"
)

// ErrNotNullable is returned when Clear targets a column that cannot hold NULL.
var ErrNotNullable = errors.New("column is not nullable")

// Column describes a writable column of a resource.
type Column struct {
	Name     string
	Nullable bool
}

// Assignment is a single (column, value) pair. A nil Value writes NULL.
type Assignment struct {
	Column string
	Value  any
}

// Assignments is an ordered list of column writes.
type Assignments []Assignment

// Collect appends the write described by u for col. Unchanged appends nothing.
func Collect[T any](a *Assignments, col Column, u Update[T]) error {
	switch u.state {
	case set:
		*a = append(*a, Assignment{Column: col.Name, Value: u.value})
	case cleared:
		if !col.Nullable {
			return fmt.Errorf("clear %s: %w", col.Name, ErrNotNullable)
		}
		*a = append(*a, Assignment{Column: col.Name, Value: nil})
	}
	return nil
}
