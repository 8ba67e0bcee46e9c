// Package mutation is the authorization-gated mutation engine of the ledger.
//
// Every create, update and delete is one attempt that checks, in order:
//
//  1. the target (or parent) exists
//  2. the caller's role allows the action
//  3. a new or changed name is free in its scope
//  4. every Set reference exists and is reachable from the target's book
//
// and applies the write only when all of them hold. On PostgreSQL the checks
// and the write are a single statement of CTEs; on SQLite they run inside one
// BEGIN IMMEDIATE transaction. Either way no partial state is observable and
// concurrent writers cannot interleave between check and write.
//
// The result is always an outcome.Outcome:
//
//	engine, err := mutation.New(db, mutation.WithHasher(password.Bcrypt{}))
//	if err != nil {
//	    return err
//	}
//
//	o := engine.AttemptCreate(ctx, identity.ForUser(1), mutation.NewBaseCategory{
//	    BookID: 1,
//	    Name:   "Rent",
//	})
//	if !o.OK() {
//	    return o.Err()
//	}
//
// Updates take a patch of field.Update values; only Set and Clear fields are
// written:
//
//	engine.AttemptUpdate(ctx, who, o.ID, mutation.BaseCategoryPatch{
//	    Name: field.Set("Housing"),
//	})
package mutation
