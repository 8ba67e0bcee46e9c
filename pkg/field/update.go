package field

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ClearTag is the YAML tag that marks a value as cleared, e.g. `memo: !clear`.
const ClearTag = "!clear"

type state uint8

const (
	unchanged state = iota
	set
	cleared
)

// Update is a tri-state field value. The zero value is Unchanged.
type Update[T any] struct {
	state state
	value T
}

// Set returns an Update that writes v.
func Set[T any](v T) Update[T] {
	return Update[T]{state: set, value: v}
}

// Clear returns an Update that writes NULL.
func Clear[T any]() Update[T] {
	return Update[T]{state: cleared}
}

// Unchanged returns an Update that leaves the stored value alone.
func Unchanged[T any]() Update[T] {
	return Update[T]{}
}

func (u Update[T]) IsUnchanged() bool { return u.state == unchanged }
func (u Update[T]) IsSet() bool { return u.state == set }
func (u Update[T]) IsClear() bool { return u.state == cleared }

// Value returns the bound value and whether the update is a Set.
func (u Update[T]) Value() (T, bool) {
	return u.value, u.state == set
}

func (u Update[T]) String() string {
	switch u.state {
	case set:
		return fmt.Sprintf("Set(%v)", u.value)
	case cleared:
		return "Clear"
	default:
		return "Unchanged"
	}
}

// UnmarshalJSON decodes null as Clear and any other value as Set. Keys absent
// from the document never reach this method and stay Unchanged.
func (u *Update[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*u = Clear[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*u = Set(v)
	return nil
}

// UnmarshalYAML decodes a node tagged !clear as Clear and any other value as
// Set. yaml.v3 resolves plain nulls to the zero value before consulting
// unmarshalers, so the explicit tag is the only way to clear from YAML.
func (u *Update[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == ClearTag {
		*u = Clear[T]()
		return nil
	}
	var v T
	if err := node.Decode(&v); err != nil {
		return err
	}
	*u = Set(v)
	return nil
}
