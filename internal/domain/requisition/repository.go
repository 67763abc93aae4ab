package requisition

import (
	"context"
	"time"

	"lmis/internal/core/id"
)

// Repository defines persistence for R&R forms and their child items.
// Saving a form always saves its children in the same transaction.
type Repository interface {
	// Create inserts a form with all child items
	Create(ctx context.Context, form *RnRForm) error

	// Get retrieves a form with children and resolved product references
	Get(ctx context.Context, formID id.ID) (*RnRForm, error)

	// Update persists form fields and replaces child items
	Update(ctx context.Context, form *RnRForm) error

	// Delete removes a form with its children. Only drafts may be deleted.
	Delete(ctx context.Context, formID id.ID) error

	// GetDraftByProgram retrieves the open draft for a program, if any
	GetDraftByProgram(ctx context.Context, programCode string) (*RnRForm, error)

	// ListByProgram retrieves all forms for a program, newest period first
	ListByProgram(ctx context.Context, programCode string) ([]*RnRForm, error)

	// ListUnsynced retrieves authorized forms not yet pushed upstream
	ListUnsynced(ctx context.Context) ([]*RnRForm, error)

	// ExistsAuthorizedForPeriod checks whether another authorized form
	// covers the same program and period begin
	ExistsAuthorizedForPeriod(ctx context.Context, programCode string, periodBegin time.Time, excludeID id.ID) (bool, error)

	// MarkSynced flags a form as pushed upstream
	MarkSynced(ctx context.Context, formID id.ID) error
}
