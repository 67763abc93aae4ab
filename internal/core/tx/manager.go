// Package tx defines transaction boundaries for domain services without
// binding them to a database driver. The postgres implementation lives in
// infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs a function inside a database transaction. The requisition
// lifecycle leans on this: a form and its child items are always written
// together, and authorization pairs the period-uniqueness check with the
// status flip so two clients cannot both authorize the same period.
type Manager interface {
	// RunInTransaction executes fn within a transaction: commit when fn
	// returns nil, rollback otherwise. A nested call joins the
	// transaction already carried by ctx.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager for multi-statement reads, such as
// loading a form header together with its line items at one snapshot.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction; writes fail.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
