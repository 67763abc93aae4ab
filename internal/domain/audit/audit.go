// Package audit provides the lifecycle audit trail and actor enrichment
// helpers for domain entities.
package audit

import (
	"context"
	"time"

	appctx "lmis/internal/core/context"
	"lmis/internal/core/id"
)

// Action classifies an audited lifecycle event.
type Action string

const (
	ActionCreate    Action = "CREATE"
	ActionUpdate    Action = "UPDATE"
	ActionSubmit    Action = "SUBMIT"
	ActionAuthorize Action = "AUTHORIZE"
	ActionSync      Action = "SYNC"
	ActionDelete    Action = "DELETE"
)

// Entry is one audit record. Payload is serialized (and compressed) by the
// storage implementation.
type Entry struct {
	EntityType string
	EntityID   id.ID
	Action     Action
	UserID     string
	At         time.Time
	Payload    any
}

// Trail records lifecycle events. Implementations must not fail the
// business operation; recording errors are logged and swallowed upstream.
type Trail interface {
	Record(ctx context.Context, entry Entry) error
}

// NewEntry builds an entry stamped with the context user and current time.
func NewEntry(ctx context.Context, entityType string, entityID id.ID, action Action, payload any) Entry {
	return Entry{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		UserID:     appctx.GetUserID(ctx),
		At:         time.Now().UTC(),
		Payload:    payload,
	}
}

// NopTrail discards all entries. Used in tests and tools.
type NopTrail struct{}

// Record implements Trail.
func (NopTrail) Record(context.Context, Entry) error { return nil }

// SetActor fills CreatedBy/UpdatedBy fields from the context user.
// No-op when the context carries no user.
func SetActor(ctx context.Context, createdBy, updatedBy *string) {
	userID := appctx.GetUserID(ctx)
	if userID == "" {
		return
	}
	if createdBy != nil {
		*createdBy = userID
	}
	if updatedBy != nil {
		*updatedBy = userID
	}
}
