// Package field provides the tri-state update values used to express sparse
// partial updates.
//
// An Update[T] is in exactly one of three states:
//
//   - Unchanged: the zero value; the column is left alone
//   - Set(v): the column is written with v
//   - Clear: the column is written with NULL (nullable columns only)
//
// Patches are made of Update values. Collecting a patch into Assignments
// yields the ordered (column, value) pairs that end up in the SET clause of a
// single parameterized statement:
//
//	var a field.Assignments
//	if err := field.Collect(&a, field.Column{Name: "memo", Nullable: true}, patch.Memo); err != nil {
//	    return err
//	}
//	if len(a) == 0 {
//	    // nothing to write
//	}
package field
