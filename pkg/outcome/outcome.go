package outcome

import (
	"errors"
	"fmt"

	"github.com/ledgerbook/ledger-in-go/pkg/model"
)

// Status is the classification of a mutation attempt. The comments name the
// transport status an HTTP layer is expected to map each value to.
type Status int

const (
	// StatusSuccess maps to 200, or 201 for creates.
	StatusSuccess Status = iota
	// StatusNotFound maps to 404.
	StatusNotFound
	// StatusUnauthorized maps to 401.
	StatusUnauthorized
	// StatusConflict maps to 400.
	StatusConflict
	// StatusNoFieldsProvided maps to 400.
	StatusNoFieldsProvided
	// StatusStorageError maps to 500.
	StatusStorageError
	// StatusUnexpected maps to 500.
	StatusUnexpected
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNotFound:
		return "not_found"
	case StatusUnauthorized:
		return "unauthorized"
	case StatusConflict:
		return "conflict"
	case StatusNoFieldsProvided:
		return "no_fields_provided"
	case StatusStorageError:
		return "storage_error"
	case StatusUnexpected:
		return "unexpected"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrConflict         = errors.New("conflict")
	ErrNoFieldsProvided = errors.New("no fields provided")
	ErrStorage          = errors.New("storage error")
	ErrUnexpected       = errors.New("unexpected error")
)

func (s Status) sentinel() error {
	switch s {
	case StatusNotFound:
		return ErrNotFound
	case StatusUnauthorized:
		return ErrUnauthorized
	case StatusConflict:
		return ErrConflict
	case StatusNoFieldsProvided:
		return ErrNoFieldsProvided
	case StatusStorageError:
		return ErrStorage
	case StatusUnexpected:
		return ErrUnexpected
	default:
		return nil
	}
}

// Outcome is the sole result of a mutation attempt.
//
// Kind is the resource the status refers to. For a failed reference check it
// is the referenced kind (a record create naming a missing sub-category is
// NotFound(sub_category)). ID is set on success. Correlation is set for
// StorageError and Unexpected.
type Outcome struct {
	Status      Status
	Kind        model.Kind
	ID          int64
	Correlation string
}

func Success(kind model.Kind, id int64) Outcome {
	return Outcome{Status: StatusSuccess, Kind: kind, ID: id}
}

func NotFound(kind model.Kind) Outcome {
	return Outcome{Status: StatusNotFound, Kind: kind}
}

func Unauthorized(kind model.Kind) Outcome {
	return Outcome{Status: StatusUnauthorized, Kind: kind}
}

func Conflict(kind model.Kind) Outcome {
	return Outcome{Status: StatusConflict, Kind: kind}
}

func NoFieldsProvided(kind model.Kind) Outcome {
	return Outcome{Status: StatusNoFieldsProvided, Kind: kind}
}

func StorageError(kind model.Kind, correlation string) Outcome {
	return Outcome{Status: StatusStorageError, Kind: kind, Correlation: correlation}
}

func Unexpected(kind model.Kind, correlation string) Outcome {
	return Outcome{Status: StatusUnexpected, Kind: kind, Correlation: correlation}
}

// OK reports whether the mutation was applied.
func (o Outcome) OK() bool {
	return o.Status == StatusSuccess
}

// Err returns nil on success and an *Error wrapping the status sentinel
// otherwise.
func (o Outcome) Err() error {
	if o.OK() {
		return nil
	}
	return &Error{Outcome: o}
}

func (o Outcome) String() string {
	switch {
	case o.OK() && o.ID > 0:
		return fmt.Sprintf("success(%s %d)", o.Kind, o.ID)
	case o.Correlation != "":
		return fmt.Sprintf("%s(%s, correlation=%s)", o.Status, o.Kind, o.Correlation)
	default:
		return fmt.Sprintf("%s(%s)", o.Status, o.Kind)
	}
}

// Error is the error form of a failed Outcome.
type Error struct {
	Outcome Outcome
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Outcome.Kind, e.Outcome.Status.sentinel())
	if e.Outcome.Correlation != "" {
		msg += " (correlation " + e.Outcome.Correlation + ")"
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Outcome.Status.sentinel()
}
