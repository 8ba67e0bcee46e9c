package outcome

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ledgerbook/ledger-in-go/pkg/model"
)

// Flags is the precondition bundle a mutation statement returns.
//
// Each flag is true when its precondition holds. MissingRef names the
// referenced kind whose check failed when Reachable is false. A patch without
// any Set or Clear field never produces Flags; the engine returns
// NoFieldsProvided before reaching the store.
type Flags struct {
	Found      bool
	Authorized bool
	Unique     bool
	Reachable  bool
	MissingRef model.Kind
	ID         int64
	Applied    bool
}

// Classify maps flags to exactly one Outcome.
func Classify(kind model.Kind, f Flags) Outcome {
	switch {
	case !f.Found:
		return NotFound(kind)
	case !f.Authorized:
		return Unauthorized(kind)
	case !f.Unique:
		return Conflict(kind)
	case !f.Reachable:
		return NotFound(f.MissingRef)
	case !f.Applied:
		// every check passed but a concurrent writer claimed the key first
		return Conflict(kind)
	default:
		return Success(kind, f.ID)
	}
}

// Translate classifies constraint violations reported by the store. It
// reports false for any other error, which the caller treats as a storage
// fault. Requires gorm.Config.TranslateError.
func Translate(kind model.Kind, err error) (Outcome, bool) {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Conflict(kind), true
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return NotFound(kind), true
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(kind), true
	default:
		return Outcome{}, false
	}
}
