// Package audit provides audit logging for ledger mutations.
//
// Every create, update and delete attempt is reported as a MutationEvent,
// whatever its outcome. Events are written as RFC5424 syslog lines to the
// default logger and, once Setup has been given an audit database URL,
// persisted to the audit_messages table.
//
// # Usage
//
//	if err := audit.Setup(cfg); err != nil {
//	    return err
//	}
//	defer audit.Shutdown()
//
//	audit.Log(ctx, audit.MutationEvent{
//	    Action:   audit.ActionCreate,
//	    Kind:     "book",
//	    EntityID: 7,
//	    UserID:   "user:1",
//	    Status:   "success",
//	    Success:  true,
//	})
//
// The audit_enabled setting (LEDGER_AUDIT_ENABLED) turns audit output off.
package audit
