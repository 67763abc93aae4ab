// Package requisition owns the R&R form aggregate: the periodic report a
// facility files per program, its line items, and the draft/submitted/
// authorized lifecycle.
package requisition

import (
	"context"
	"time"

	"lmis/internal/core/apperror"
	"lmis/internal/core/entity"
	"lmis/internal/core/id"
	"lmis/internal/core/period"
	"lmis/internal/domain/catalogs/product"
	"lmis/internal/domain/catalogs/program"
)

// Status is the lifecycle state of an R&R form. The MISSED variants mark
// non-emergency forms whose period closed without a completed inventory.
type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusDraftMissed     Status = "DRAFT_MISSED"
	StatusSubmitted       Status = "SUBMITTED"
	StatusSubmittedMissed Status = "SUBMITTED_MISSED"
	StatusAuthorized      Status = "AUTHORIZED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusDraftMissed, StatusSubmitted, StatusSubmittedMissed, StatusAuthorized:
		return true
	}
	return false
}

// RnRForm is the requisition aggregate root. Period boundaries are stored
// as two raw dates; the Period value is reconstructed on demand.
type RnRForm struct {
	entity.Document

	ProgramID   id.ID  `db:"program_id" json:"programId"`
	ProgramCode string `db:"program_code" json:"programCode"`

	PeriodBegin time.Time `db:"period_begin" json:"periodBegin"`
	PeriodEnd   time.Time `db:"period_end" json:"periodEnd"`

	Status    Status `db:"status" json:"status"`
	Emergency bool   `db:"emergency" json:"emergency"`
	Synced    bool   `db:"synced" json:"synced"`

	Comments      string     `db:"comments" json:"comments,omitempty"`
	SubmittedTime *time.Time `db:"submitted_time" json:"submittedTime,omitempty"`

	// Program is the resolved reference, not persisted on the form row
	Program *program.Program `db:"-" json:"-"`

	Items         []*RnrFormItem  `db:"-" json:"items,omitempty"`
	RegimenItems  []*RegimenItem  `db:"-" json:"regimenItems,omitempty"`
	BaseInfoItems []*BaseInfoItem `db:"-" json:"baseInfoItems,omitempty"`
}

// InitFromDate creates a non-emergency form whose period is derived from
// the reference date. The missed rule is evaluated against now.
func InitFromDate(prog *program.Program, referenceDate, now time.Time) *RnRForm {
	return InitFromPeriod(prog, period.Containing(referenceDate), false, now)
}

// InitFromPeriod creates a form over an explicit period. Emergency forms
// are exempt from missed classification by construction.
func InitFromPeriod(prog *program.Program, p period.Period, emergency bool, now time.Time) *RnRForm {
	status := StatusDraft
	if !emergency && p.IsMissed(now) {
		status = StatusDraftMissed
	}
	form := &RnRForm{
		Document:    entity.NewDocument(),
		PeriodBegin: p.Begin,
		PeriodEnd:   p.End,
		Status:      status,
		Emergency:   emergency,
	}
	if prog != nil {
		form.Program = prog
		form.ProgramID = prog.ID
		form.ProgramCode = prog.Code
	}
	return form
}

// Validate implements entity.Validatable.
func (f *RnRForm) Validate(ctx context.Context) error {
	if id.IsNil(f.ProgramID) {
		return apperror.NewValidation("program is required").
			WithDetail("field", "programId")
	}
	if !f.Status.Valid() {
		return apperror.NewValidation("invalid status").
			WithDetail("field", "status").
			WithDetail("value", string(f.Status))
	}
	if f.PeriodBegin.IsZero() || f.PeriodEnd.IsZero() {
		return apperror.NewValidation("period boundaries are required").
			WithDetail("field", "period")
	}
	if f.Synced && f.Status != StatusAuthorized {
		return apperror.NewValidation("only authorized forms can be synced").
			WithDetail("field", "synced")
	}
	if f.Emergency && f.IsMissed() {
		return apperror.NewValidation("emergency forms cannot be missed").
			WithDetail("field", "status")
	}
	return nil
}

// Period reconstructs the reporting period from the stored boundaries.
func (f *RnRForm) Period() period.Period {
	return period.Period{Begin: f.PeriodBegin, End: f.PeriodEnd}
}

// --- Status predicates ---

// IsDraft reports whether the form is still editable.
func (f *RnRForm) IsDraft() bool {
	return f.Status == StatusDraft || f.Status == StatusDraftMissed
}

// IsSubmitted reports whether the form awaits authorization.
func (f *RnRForm) IsSubmitted() bool {
	return f.Status == StatusSubmitted || f.Status == StatusSubmittedMissed
}

// IsMissed reports whether the form belongs to a missed period.
func (f *RnRForm) IsMissed() bool {
	return f.Status == StatusDraftMissed || f.Status == StatusSubmittedMissed
}

// IsAuthorized reports whether the form completed its lifecycle.
func (f *RnRForm) IsAuthorized() bool {
	return f.Status == StatusAuthorized
}

// --- Transitions ---

// Submit moves a draft to the submitted state, preserving the missed
// variant, and stamps the submission time.
func (f *RnRForm) Submit(now time.Time) error {
	switch f.Status {
	case StatusDraft:
		f.Status = StatusSubmitted
	case StatusDraftMissed:
		f.Status = StatusSubmittedMissed
	default:
		return apperror.NewInvalidTransition(string(f.Status), "submit")
	}
	t := now.UTC()
	f.SubmittedTime = &t
	return nil
}

// Authorize completes the lifecycle of a submitted form.
func (f *RnRForm) Authorize() error {
	if !f.IsSubmitted() {
		return apperror.NewInvalidTransition(string(f.Status), "authorize")
	}
	f.Status = StatusAuthorized
	return nil
}

// MarkSynced flags the form as pushed to the central server. Only
// authorized forms may sync.
func (f *RnRForm) MarkSynced() error {
	if !f.IsAuthorized() {
		return apperror.NewInvalidTransition(string(f.Status), "sync")
	}
	f.Synced = true
	return nil
}

// AttachChildren re-links every child item's back-reference to this form.
// Mandatory after deserialization, since the wire format carries no
// parent keys.
func (f *RnRForm) AttachChildren() {
	for _, item := range f.Items {
		item.FormID = f.ID
	}
	for _, item := range f.RegimenItems {
		item.FormID = f.ID
	}
	for _, item := range f.BaseInfoItems {
		item.FormID = f.ID
	}
}

// ItemsByKit filters line items by kit membership. Items without a
// resolved product are excluded.
func (f *RnRForm) ItemsByKit(isKit bool) []*RnrFormItem {
	var out []*RnrFormItem
	for _, item := range f.Items {
		if item.Product != nil && item.Product.IsKit == isKit {
			out = append(out, item)
		}
	}
	return out
}

// DeactivatedOrUnsupportedItems returns line items whose product has been
// deactivated. With excludeUnsupported set, items missing from the
// supported set for the program are flagged as well.
func (f *RnRForm) DeactivatedOrUnsupportedItems(supportedCodes []string, excludeUnsupported bool) []*RnrFormItem {
	supported := make(map[string]struct{}, len(supportedCodes))
	for _, c := range supportedCodes {
		supported[c] = struct{}{}
	}
	var out []*RnrFormItem
	for _, item := range f.Items {
		if item.Product != nil && !item.Product.Active {
			out = append(out, item)
			continue
		}
		if !excludeUnsupported {
			continue
		}
		if _, ok := supported[item.ProductCode]; !ok {
			out = append(out, item)
		}
	}
	return out
}

// TotalRegimenAmount sums regimen patient counts; absent amounts count
// as zero.
func (f *RnRForm) TotalRegimenAmount() int64 {
	var total int64
	for _, item := range f.RegimenItems {
		if item.Amount != nil {
			total += *item.Amount
		}
	}
	return total
}

// RnrFormItem is one product line on a requisition. It is filled exactly
// once from the period's movement aggregation and read-only afterwards.
type RnrFormItem struct {
	entity.Base

	FormID      id.ID  `db:"form_id" json:"formId"`
	ProductID   id.ID  `db:"product_id" json:"productId"`
	ProductCode string `db:"product_code" json:"productCode"`

	// Product is the resolved reference, not persisted on the item row
	Product *product.Product `db:"-" json:"-"`

	InitialAmount           int64 `db:"initial_amount" json:"initialAmount"`
	Received                int64 `db:"received" json:"received"`
	Issued                  int64 `db:"issued" json:"issued"`
	Adjustment              int64 `db:"adjustment" json:"adjustment"`
	Inventory               int64 `db:"inventory" json:"inventory"`
	CalculatedOrderQuantity int64 `db:"calculated_order_quantity" json:"calculatedOrderQuantity"`

	// RequestAmount and ApprovedAmount are captured during review, absent
	// until then
	RequestAmount  *int64 `db:"request_amount" json:"requestAmount,omitempty"`
	ApprovedAmount *int64 `db:"approved_amount" json:"approvedAmount,omitempty"`

	// ExpirationDate is a caller-supplied free-text date string, passed
	// through to the wire untouched
	ExpirationDate string `db:"expiration_date" json:"expirationDate,omitempty"`
}

// RegimenItem reports patient counts per treatment regimen.
type RegimenItem struct {
	entity.Base

	FormID id.ID  `db:"form_id" json:"formId"`
	Code   string `db:"code" json:"code"`
	Name   string `db:"name" json:"name"`
	Type   string `db:"type" json:"type,omitempty"`
	Amount *int64 `db:"amount" json:"amount,omitempty"`
}

// BaseInfoItem is a free-form name/value pair attached to the form.
type BaseInfoItem struct {
	entity.Base

	FormID id.ID  `db:"form_id" json:"formId"`
	Name   string `db:"name" json:"name"`
	Value  string `db:"value" json:"value"`
}
