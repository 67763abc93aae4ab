// Package program provides the Program catalog: the health programs a
// facility reports under (e.g. essential medicines, treatment programs).
package program

import (
	"context"

	"lmis/internal/core/entity"
)

// Program represents a reporting program. Code is the key carried on the
// sync wire format as "programCode".
type Program struct {
	entity.Catalog

	// ParentCode links sub-programs to their reporting parent, empty for
	// top-level programs
	ParentCode string `db:"parent_code" json:"parentCode,omitempty"`

	// SupportEmergency marks programs that accept out-of-cycle requisitions
	SupportEmergency bool `db:"support_emergency" json:"supportEmergency"`
}

// New creates a Program with required fields.
func New(code, name string) *Program {
	return &Program{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable.
func (p *Program) Validate(ctx context.Context) error {
	return p.Catalog.Validate(ctx)
}

// IsTopLevel reports whether this program reports directly, not through a parent.
func (p *Program) IsTopLevel() bool {
	return p.ParentCode == ""
}
