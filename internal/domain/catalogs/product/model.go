// Package product provides the Product catalog: the medicines and kits a
// facility stocks and reports on.
package product

import (
	"context"
	"fmt"

	"lmis/internal/core/apperror"
	"lmis/internal/core/entity"
)

// Product represents a stockable item. Code is the national drug code and
// is the key used on the sync wire format.
type Product struct {
	entity.Catalog

	// PrimaryName is the generic drug name; Catalog.Name mirrors it
	PrimaryName string `db:"primary_name" json:"primaryName"`

	// ProgramCode links the product to its reporting program
	ProgramCode string `db:"program_code" json:"programCode"`

	// Strength, e.g. "500mg"
	Strength string `db:"strength" json:"strength,omitempty"`

	// Unit of dispensing, e.g. "tablet", "vial"
	Unit string `db:"unit" json:"unit,omitempty"`

	// IsKit marks a bundled kit product rather than a single drug
	IsKit bool `db:"is_kit" json:"isKit"`

	// IsBasic marks products that must always appear on a requisition
	IsBasic bool `db:"is_basic" json:"isBasic"`

	// Archived products are hidden from new requisitions but kept for history
	Archived bool `db:"archived" json:"archived"`
}

// New creates a Product with required fields.
func New(code, primaryName string) *Product {
	return &Product{
		Catalog:     entity.NewCatalog(code, primaryName),
		PrimaryName: primaryName,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}
	if p.PrimaryName == "" {
		return apperror.NewValidation("primary name is required").
			WithDetail("field", "primaryName")
	}
	return nil
}

// FormattedName renders the display label: "Name Strength [CODE]".
func (p *Product) FormattedName() string {
	if p.Strength == "" {
		return fmt.Sprintf("%s [%s]", p.PrimaryName, p.Code)
	}
	return fmt.Sprintf("%s %s [%s]", p.PrimaryName, p.Strength, p.Code)
}

// IsReportable reports whether the product should appear on new requisitions.
func (p *Product) IsReportable() bool {
	return p.Active && !p.Archived
}
