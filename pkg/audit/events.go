package audit

import (
	"fmt"
	"strconv"
)

// Action is the verb of a mutation attempt.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

func (a Action) pastTense() string {
	switch a {
	case ActionCreate:
		return "created"
	case ActionUpdate:
		return "updated"
	case ActionDelete:
		return "deleted"
	}
	return string(a)
}

// Subject is what an event is about. Empty fields are stored as NULL.
type Subject struct {
	User        string
	Kind        string
	EntityID    int64
	Result      string
	Correlation string
}

// MutationEvent records one create, update or delete attempt against an
// entity kind along with the classified result.
type MutationEvent struct {
	Action      Action
	Kind        string
	EntityID    int64
	UserID      string
	ClientIP    string
	RequestID   string
	Status      string
	Correlation string
	Success     bool
}

func (e MutationEvent) MessageID() string {
	return e.Kind
}

func (e MutationEvent) target() string {
	if e.EntityID > 0 {
		return fmt.Sprintf("%s %d", e.Kind, e.EntityID)
	}
	return e.Kind
}

func (e MutationEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s %s %s", e.UserID, e.Action.pastTense(), e.target())
	}
	return fmt.Sprintf("%s tried to %s %s: %s", e.UserID, e.Action, e.target(), e.Status)
}

func (e MutationEvent) Severity() Severity {
	switch {
	case e.Success:
		return SeverityNotice
	case e.Status == "storage_error" || e.Status == "unexpected":
		return SeverityError
	default:
		return SeverityWarning
	}
}

func (e MutationEvent) Facility() int {
	if e.Status == "unauthorized" {
		return FacilityAuthPriv
	}
	return FacilityUser
}

func (e MutationEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDSubject: {
			"kind": e.Kind,
		},
		SDIDAction: {
			"operation": string(e.Action),
			"result":    e.Status,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
	}
	if e.EntityID > 0 {
		sd[SDIDSubject]["id"] = strconv.FormatInt(e.EntityID, 10)
	}
	if e.UserID != "" {
		sd[SDIDAction]["user"] = e.UserID
	}
	if e.RequestID != "" {
		sd[SDIDClient]["request"] = e.RequestID
	}
	if e.Correlation != "" {
		sd[SDIDAction]["correlation"] = e.Correlation
	}
	return sd
}

func (e MutationEvent) Subject() Subject {
	return Subject{
		User:        e.UserID,
		Kind:        e.Kind,
		EntityID:    e.EntityID,
		Result:      e.Status,
		Correlation: e.Correlation,
	}
}

// BatchEvent records the application of a batch file.
type BatchEvent struct {
	UserID    string
	ClientIP  string
	Source    string
	Steps     int
	Succeeded int
	Error     string
}

func (e BatchEvent) MessageID() string {
	return "batch"
}

func (e BatchEvent) Message() string {
	if e.Error != "" {
		return fmt.Sprintf("%s failed to apply %s: %s", e.UserID, e.Source, e.Error)
	}
	return fmt.Sprintf("%s applied %s: %d/%d steps succeeded", e.UserID, e.Source, e.Succeeded, e.Steps)
}

func (e BatchEvent) Severity() Severity {
	if e.Error != "" {
		return SeverityWarning
	}
	return SeverityNotice
}

func (e BatchEvent) Facility() int {
	return FacilityUser
}

func (e BatchEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDBatch: {
			"source":    e.Source,
			"steps":     strconv.Itoa(e.Steps),
			"succeeded": strconv.Itoa(e.Succeeded),
		},
		SDIDAction: {
			"user": e.UserID,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
	}
}

func (e BatchEvent) Subject() Subject {
	result := "applied"
	if e.Error != "" {
		result = "failed"
	}
	return Subject{User: e.UserID, Kind: "batch", Result: result}
}
