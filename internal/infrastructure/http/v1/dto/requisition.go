package dto

import (
	"time"

	"lmis/internal/core/apperror"
	"lmis/internal/core/period"
	"lmis/internal/domain/requisition"
)

// CreateDraftRequest for POST /requisitions.
type CreateDraftRequest struct {
	ProgramCode string `json:"programCode" binding:"required"`

	// ReferenceDate selects the reporting period; defaults to today
	ReferenceDate string `json:"referenceDate"`
}

// ParseReferenceDate returns the reference date or now when absent.
func (r CreateDraftRequest) ParseReferenceDate(now time.Time) (time.Time, error) {
	if r.ReferenceDate == "" {
		return now, nil
	}
	parsed, err := time.Parse(period.DateLayout, r.ReferenceDate)
	if err != nil {
		return time.Time{}, apperror.NewValidation("invalid reference date").
			WithDetail("field", "referenceDate").
			WithDetail("value", r.ReferenceDate)
	}
	return parsed, nil
}

// CreateEmergencyRequest for POST /requisitions/emergency.
type CreateEmergencyRequest struct {
	ProgramCode string `json:"programCode" binding:"required"`
	PeriodStart string `json:"periodStart" binding:"required"`
}

// ParsePeriod returns the reporting period starting at PeriodStart.
func (r CreateEmergencyRequest) ParsePeriod() (period.Period, error) {
	p, err := period.Parse(r.PeriodStart)
	if err != nil {
		return period.Period{}, apperror.NewValidation("invalid period start").
			WithDetail("field", "periodStart").
			WithDetail("value", r.PeriodStart)
	}
	return p, nil
}

// FormItemResponse is one product line of a requisition.
type FormItemResponse struct {
	ID                      string `json:"id"`
	ProductCode             string `json:"productCode"`
	ProductName             string `json:"productName,omitempty"`
	InitialAmount           int64  `json:"initialAmount"`
	Received                int64  `json:"received"`
	Issued                  int64  `json:"issued"`
	Adjustment              int64  `json:"adjustment"`
	Inventory               int64  `json:"inventory"`
	CalculatedOrderQuantity int64  `json:"calculatedOrderQuantity"`
	RequestAmount           *int64 `json:"requestAmount,omitempty"`
	ApprovedAmount          *int64 `json:"approvedAmount,omitempty"`
	ExpirationDate          string `json:"expirationDate,omitempty"`
}

// RegimenItemResponse is one regimen line of a requisition.
type RegimenItemResponse struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Type   string `json:"type,omitempty"`
	Amount *int64 `json:"amount,omitempty"`
}

// BaseInfoItemResponse is one name/value line of a requisition.
type BaseInfoItemResponse struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FormResponse is the full view of a requisition form.
type FormResponse struct {
	ID            string                 `json:"id"`
	ProgramCode   string                 `json:"programCode"`
	PeriodBegin   string                 `json:"periodBegin"`
	PeriodEnd     string                 `json:"periodEnd"`
	Status        requisition.Status     `json:"status"`
	Emergency     bool                   `json:"emergency"`
	Synced        bool                   `json:"synced"`
	Comments      string                 `json:"comments,omitempty"`
	SubmittedTime *time.Time             `json:"submittedTime,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
	Version       int                    `json:"version"`
	Items         []FormItemResponse     `json:"items,omitempty"`
	RegimenItems  []RegimenItemResponse  `json:"regimenItems,omitempty"`
	BaseInfoItems []BaseInfoItemResponse `json:"baseInfoItems,omitempty"`
}

// FromForm creates FormResponse from a domain form.
func FromForm(f *requisition.RnRForm) FormResponse {
	resp := FormResponse{
		ID:            f.ID.String(),
		ProgramCode:   f.ProgramCode,
		PeriodBegin:   f.PeriodBegin.Format(period.DateLayout),
		PeriodEnd:     f.PeriodEnd.Format(period.DateLayout),
		Status:        f.Status,
		Emergency:     f.Emergency,
		Synced:        f.Synced,
		Comments:      f.Comments,
		SubmittedTime: f.SubmittedTime,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
		Version:       f.Version,
	}
	for _, item := range f.Items {
		line := FormItemResponse{
			ID:                      item.ID.String(),
			ProductCode:             item.ProductCode,
			InitialAmount:           item.InitialAmount,
			Received:                item.Received,
			Issued:                  item.Issued,
			Adjustment:              item.Adjustment,
			Inventory:               item.Inventory,
			CalculatedOrderQuantity: item.CalculatedOrderQuantity,
			RequestAmount:           item.RequestAmount,
			ApprovedAmount:          item.ApprovedAmount,
			ExpirationDate:          item.ExpirationDate,
		}
		if item.Product != nil {
			line.ProductName = item.Product.FormattedName()
		}
		resp.Items = append(resp.Items, line)
	}
	for _, reg := range f.RegimenItems {
		resp.RegimenItems = append(resp.RegimenItems, RegimenItemResponse{
			Code:   reg.Code,
			Name:   reg.Name,
			Type:   reg.Type,
			Amount: reg.Amount,
		})
	}
	for _, info := range f.BaseInfoItems {
		resp.BaseInfoItems = append(resp.BaseInfoItems, BaseInfoItemResponse{
			Name:  info.Name,
			Value: info.Value,
		})
	}
	return resp
}

// FromForms converts a slice of domain forms.
func FromForms(forms []*requisition.RnRForm) []FormResponse {
	out := make([]FormResponse, len(forms))
	for i, f := range forms {
		out[i] = FromForm(f)
	}
	return out
}
