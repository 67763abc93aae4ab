// Package sync implements the wire-format contract for exchanging
// requisition forms with the central server, and the upload manager that
// drains the unsynced queue.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lmis/internal/core/apperror"
	appctx "lmis/internal/core/context"
	"lmis/internal/core/period"
	"lmis/internal/domain/catalogs/product"
	"lmis/internal/domain/catalogs/program"
	"lmis/internal/domain/requisition"
	"lmis/pkg/logger"
)

// submittedTimeLayout is the wire format for clientSubmittedTime.
const submittedTimeLayout = "2006-01-02 15:04:05"

// ProgramLookup resolves program codes during deserialization.
type ProgramLookup interface {
	GetByCode(ctx context.Context, code string) (*program.Program, error)
}

// ProductLookup resolves product codes during deserialization.
type ProductLookup interface {
	ResolveCodes(ctx context.Context, codes []string) (map[string]*product.Product, error)
}

// Codec converts requisition forms to and from the sync wire format.
// Field names are part of the interoperability contract and never change.
type Codec struct {
	programs ProgramLookup
	products ProductLookup
}

// NewCodec creates a Codec over the given lookups.
func NewCodec(programs ProgramLookup, products ProductLookup) *Codec {
	return &Codec{programs: programs, products: products}
}

// wireForm is the top-level wire representation.
type wireForm struct {
	ClientSubmittedNotes   string        `json:"clientSubmittedNotes"`
	ClientSubmittedTime    string        `json:"clientSubmittedTime,omitempty"`
	ActualPeriodStartDate  string        `json:"actualPeriodStartDate"`
	ActualPeriodEndDate    string        `json:"actualPeriodEndDate"`
	Emergency              bool          `json:"emergency"`
	AgentCode              string        `json:"agentCode,omitempty"`
	ProgramCode            string        `json:"programCode,omitempty"`
	Products               []wireItem    `json:"products"`
	Regimens               []wireRegimen `json:"regimens"`
	PatientQuantifications []wirePatient `json:"patientQuantifications"`
}

type wireItem struct {
	ProductCode               string `json:"productCode"`
	BeginningBalance          int64  `json:"beginningBalance"`
	QuantityReceived          int64  `json:"quantityReceived"`
	QuantityDispensed         int64  `json:"quantityDispensed"`
	TotalLossesAndAdjustments int64  `json:"totalLossesAndAdjustments"`
	StockInHand               int64  `json:"stockInHand"`
	CalculatedOrderQuantity   int64  `json:"calculatedOrderQuantity"`
	QuantityRequested         *int64 `json:"quantityRequested,omitempty"`
	QuantityApproved          *int64 `json:"quantityApproved,omitempty"`

	// ExpirationDate is caller-supplied free text, never reformatted
	ExpirationDate string `json:"expirationDate,omitempty"`
}

type wireRegimen struct {
	Code                string `json:"code"`
	Name                string `json:"name"`
	Type                string `json:"type,omitempty"`
	PatientsOnTreatment *int64 `json:"patientsOnTreatment,omitempty"`
}

type wirePatient struct {
	Category string `json:"category"`
	Total    string `json:"total"`
}

// Marshal serializes a form for upload. The agent code comes from the
// authenticated user on the context; a missing program reference drops the
// programCode field rather than failing the whole serialization.
func (c *Codec) Marshal(ctx context.Context, form *requisition.RnRForm) ([]byte, error) {
	w := wireForm{
		ClientSubmittedNotes:   form.Comments,
		ActualPeriodStartDate:  form.PeriodBegin.Format(period.DateLayout),
		ActualPeriodEndDate:    form.PeriodEnd.Format(period.DateLayout),
		Emergency:              form.Emergency,
		AgentCode:              appctx.GetFacilityCode(ctx),
		Products:               make([]wireItem, 0, len(form.Items)),
		Regimens:               make([]wireRegimen, 0, len(form.RegimenItems)),
		PatientQuantifications: make([]wirePatient, 0, len(form.BaseInfoItems)),
	}

	if form.SubmittedTime != nil {
		w.ClientSubmittedTime = form.SubmittedTime.Format(submittedTimeLayout)
	}

	if form.ProgramCode != "" {
		w.ProgramCode = form.ProgramCode
	} else {
		logger.Warn(ctx, "serializing form without program reference", "form_id", form.ID)
	}

	for _, item := range form.Items {
		w.Products = append(w.Products, wireItem{
			ProductCode:               item.ProductCode,
			BeginningBalance:          item.InitialAmount,
			QuantityReceived:          item.Received,
			QuantityDispensed:         item.Issued,
			TotalLossesAndAdjustments: item.Adjustment,
			StockInHand:               item.Inventory,
			CalculatedOrderQuantity:   item.CalculatedOrderQuantity,
			QuantityRequested:         item.RequestAmount,
			QuantityApproved:          item.ApprovedAmount,
			ExpirationDate:            item.ExpirationDate,
		})
	}

	for _, item := range form.RegimenItems {
		w.Regimens = append(w.Regimens, wireRegimen{
			Code:                item.Code,
			Name:                item.Name,
			Type:                item.Type,
			PatientsOnTreatment: item.Amount,
		})
	}

	for _, item := range form.BaseInfoItems {
		w.PatientQuantifications = append(w.PatientQuantifications, wirePatient{
			Category: item.Name,
			Total:    item.Value,
		})
	}

	return json.Marshal(w)
}

// Unmarshal parses a wire payload into a fresh form. The program code must
// resolve; failure aborts the whole form. The canonical period is re-derived
// from the start date rather than trusted from the counterparty. Forms
// arriving through this channel are by definition completed, externally
// authorized submissions, so status and synced are forced accordingly.
func (c *Codec) Unmarshal(ctx context.Context, data []byte) (*requisition.RnRForm, error) {
	var w wireForm
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, apperror.NewParseFailure("malformed requisition payload").WithCause(err)
	}

	prog, err := c.programs.GetByCode(ctx, w.ProgramCode)
	if err != nil {
		return nil, apperror.NewLookupFailure("program", w.ProgramCode).WithCause(err)
	}

	p, err := c.parsePeriod(w)
	if err != nil {
		return nil, err
	}

	form := requisition.InitFromPeriod(prog, p, w.Emergency, p.End)
	form.Comments = w.ClientSubmittedNotes
	if w.ClientSubmittedTime != "" {
		t, err := time.Parse(submittedTimeLayout, w.ClientSubmittedTime)
		if err != nil {
			return nil, apperror.NewParseFailure("invalid clientSubmittedTime").WithCause(err)
		}
		form.SubmittedTime = &t
	}

	if err := c.attachItems(ctx, form, w); err != nil {
		return nil, err
	}

	form.Status = requisition.StatusAuthorized
	form.Synced = true
	form.AttachChildren()
	return form, nil
}

// parsePeriod re-derives the canonical period from the wire start date,
// falling back to the raw end date only when the start is absent.
func (c *Codec) parsePeriod(w wireForm) (period.Period, error) {
	if w.ActualPeriodStartDate != "" {
		begin, err := time.Parse(period.DateLayout, w.ActualPeriodStartDate)
		if err != nil {
			return period.Period{}, apperror.NewParseFailure("invalid actualPeriodStartDate").WithCause(err)
		}
		return period.Containing(begin), nil
	}
	end, err := time.Parse(period.DateLayout, w.ActualPeriodEndDate)
	if err != nil {
		return period.Period{}, apperror.NewParseFailure("period boundaries are missing").WithCause(err)
	}
	return period.Containing(end), nil
}

func (c *Codec) attachItems(ctx context.Context, form *requisition.RnRForm, w wireForm) error {
	codes := make([]string, 0, len(w.Products))
	for _, item := range w.Products {
		codes = append(codes, item.ProductCode)
	}
	byCode, err := c.products.ResolveCodes(ctx, codes)
	if err != nil {
		return fmt.Errorf("resolve product codes: %w", err)
	}

	for _, item := range w.Products {
		prod, ok := byCode[item.ProductCode]
		if !ok {
			return apperror.NewLookupFailure("product", item.ProductCode)
		}
		form.Items = append(form.Items, &requisition.RnrFormItem{
			ProductID:               prod.ID,
			ProductCode:             prod.Code,
			Product:                 prod,
			InitialAmount:           item.BeginningBalance,
			Received:                item.QuantityReceived,
			Issued:                  item.QuantityDispensed,
			Adjustment:              item.TotalLossesAndAdjustments,
			Inventory:               item.StockInHand,
			CalculatedOrderQuantity: item.CalculatedOrderQuantity,
			RequestAmount:           item.QuantityRequested,
			ApprovedAmount:          item.QuantityApproved,
			ExpirationDate:          item.ExpirationDate,
		})
	}

	for _, r := range w.Regimens {
		form.RegimenItems = append(form.RegimenItems, &requisition.RegimenItem{
			Code:   r.Code,
			Name:   r.Name,
			Type:   r.Type,
			Amount: r.PatientsOnTreatment,
		})
	}

	for _, pq := range w.PatientQuantifications {
		form.BaseInfoItems = append(form.BaseInfoItems, &requisition.BaseInfoItem{
			Name:  pq.Category,
			Value: pq.Total,
		})
	}
	return nil
}
