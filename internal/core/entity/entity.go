// Package entity provides base types shared by catalogs and documents.
package entity

import (
	"context"
	"time"

	"lmis/internal/core/apperror"
	"lmis/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// Base contains common fields for all persisted entities.
type Base struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`
}

// NewBase creates a Base with a generated ID.
func NewBase() Base {
	return Base{
		ID:      id.New(),
		Version: 1,
	}
}

// Touch increments version (for optimistic locking).
func (b *Base) Touch() {
	b.Version++
}

// SetVersion updates the version number (used by repository after save).
func (b *Base) SetVersion(v int) {
	b.Version = v
}

// Catalog is the base type for reference data (products, programs, facilities).
type Catalog struct {
	Base

	// Code is a stable human-readable identifier, unique per catalog
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// Active marks whether the entry is available for new records
	Active bool `db:"active" json:"active"`
}

// NewCatalog creates a Catalog with a generated ID.
func NewCatalog(code, name string) Catalog {
	return Catalog{
		Base:   NewBase(),
		Code:   code,
		Name:   name,
		Active: true,
	}
}

// Validate implements Validatable.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Code == "" {
		return apperror.NewValidation("code is required").
			WithDetail("field", "code")
	}
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

// Document extends Base with audit fields for transactional records.
type Document struct {
	Base

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	UpdatedBy string    `db:"updated_by" json:"updatedBy,omitempty"`
}

// NewDocument creates a Document with generated ID and timestamps.
func NewDocument() Document {
	now := time.Now().UTC()
	return Document{
		Base:      NewBase(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates UpdatedAt and increments version.
func (d *Document) Touch() {
	d.UpdatedAt = time.Now().UTC()
	d.Base.Touch()
}
