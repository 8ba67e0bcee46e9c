// Package outcome is the typed result of every mutation attempt.
//
// The mutation engine evaluates all preconditions of a create, update or
// delete in one round trip and returns them as a Flags bundle. Classify turns
// that bundle into exactly one Outcome using a fixed precedence:
//
//	NotFound > Unauthorized > Conflict > NoFieldsProvided
//
// Storage faults never escape as raw driver errors. They surface as
// StorageError carrying only a correlation id that also appears in the
// process log.
//
//	o := engine.AttemptUpdate(ctx, who, id, patch)
//	if errors.Is(o.Err(), outcome.ErrNotFound) {
//	    ...
//	}
package outcome
