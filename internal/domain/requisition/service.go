package requisition

import (
	"context"
	"fmt"
	"time"

	"lmis/internal/core/apperror"
	"lmis/internal/core/id"
	"lmis/internal/core/period"
	"lmis/internal/core/tx"
	"lmis/internal/domain/audit"
	"lmis/internal/domain/catalogs/product"
	"lmis/internal/domain/catalogs/program"
	"lmis/internal/domain/stock"
	"lmis/pkg/logger"
)

// Service drives the requisition lifecycle: draft creation with line-item
// generation from stock cards, submission, authorization, and sync queries.
type Service struct {
	repo      Repository
	programs  *program.Service
	products  *product.Service
	stocks    *stock.Service
	txManager tx.Manager
	trail     audit.Trail

	// now is swappable for tests; the missed rule depends on it
	now func() time.Time
}

// NewService creates a requisition service.
func NewService(
	repo Repository,
	programs *program.Service,
	products *product.Service,
	stocks *stock.Service,
	txManager tx.Manager,
	trail audit.Trail,
) *Service {
	return &Service{
		repo:      repo,
		programs:  programs,
		products:  products,
		stocks:    stocks,
		txManager: txManager,
		trail:     trail,
		now:       time.Now,
	}
}

// WithClock overrides the time source. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Get retrieves a form with children.
func (s *Service) Get(ctx context.Context, formID id.ID) (*RnRForm, error) {
	return s.repo.Get(ctx, formID)
}

// ListByProgram retrieves all forms for a program, newest period first.
func (s *Service) ListByProgram(ctx context.Context, programCode string) ([]*RnRForm, error) {
	return s.repo.ListByProgram(ctx, programCode)
}

// GetDraft retrieves the open draft for a program, if any.
func (s *Service) GetDraft(ctx context.Context, programCode string) (*RnRForm, error) {
	return s.repo.GetDraftByProgram(ctx, programCode)
}

// CreateDraft opens a new non-emergency requisition for the period
// containing referenceDate and fills its line items from the program's
// stock cards. A program can have at most one open draft.
func (s *Service) CreateDraft(ctx context.Context, programCode string, referenceDate time.Time) (*RnRForm, error) {
	prog, err := s.programs.GetByCode(ctx, programCode)
	if err != nil {
		return nil, err
	}
	form := InitFromDate(prog, referenceDate, s.now())
	if err := s.create(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

// CreateEmergency opens an out-of-cycle requisition over an explicit
// period. Emergency forms are never classified as missed.
func (s *Service) CreateEmergency(ctx context.Context, programCode string, p period.Period) (*RnRForm, error) {
	prog, err := s.programs.GetByCode(ctx, programCode)
	if err != nil {
		return nil, err
	}
	if !prog.SupportEmergency {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"program does not support emergency requisitions").
			WithDetail("program_code", programCode)
	}
	form := InitFromPeriod(prog, p, true, s.now())
	if err := s.create(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

func (s *Service) create(ctx context.Context, form *RnRForm) error {
	existing, err := s.repo.GetDraftByProgram(ctx, form.ProgramCode)
	if err != nil && !apperror.IsNotFound(err) {
		return fmt.Errorf("check open draft: %w", err)
	}
	if existing != nil {
		return apperror.NewConflict("program already has an open draft").
			WithDetail("program_code", form.ProgramCode).
			WithDetail("form_id", existing.ID)
	}

	if err := s.generateItems(ctx, form); err != nil {
		return err
	}
	form.AttachChildren()

	if err := form.Validate(ctx); err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, form)
	})
	if err != nil {
		return err
	}

	s.record(ctx, form, audit.ActionCreate)
	logger.Info(ctx, "requisition created",
		"form_id", form.ID,
		"program_code", form.ProgramCode,
		"period", form.Period().String(),
		"status", form.Status,
		"emergency", form.Emergency,
		"items", len(form.Items),
	)
	return nil
}

// generateItems builds one line item per reportable product with a stock
// card, aggregating the period's movements.
func (s *Service) generateItems(ctx context.Context, form *RnRForm) error {
	products, err := s.products.ListReportable(ctx, form.ProgramCode)
	if err != nil {
		return fmt.Errorf("list reportable products: %w", err)
	}

	p := form.Period()
	for _, prod := range products {
		card, err := s.stocks.GetCardByProduct(ctx, prod.ID)
		if err != nil {
			if apperror.IsNotFound(err) {
				continue
			}
			return fmt.Errorf("stock card for %s: %w", prod.Code, err)
		}

		summary, err := s.stocks.SummarizePeriod(ctx, card.ID, p)
		if err != nil {
			return fmt.Errorf("summarize %s: %w", prod.Code, err)
		}

		item := &RnrFormItem{
			ProductID:               prod.ID,
			ProductCode:             prod.Code,
			Product:                 prod,
			InitialAmount:           summary.InitialAmount,
			Received:                summary.Received,
			Issued:                  summary.Issued,
			Adjustment:              summary.Adjustment,
			Inventory:               summary.Inventory,
			CalculatedOrderQuantity: summary.CalculatedOrderQuantity,
		}
		if earliest := card.EarliestExpireDate(); !earliest.IsZero() {
			item.ExpirationDate = earliest.Format(stock.ExpireDateLayout)
		}
		form.Items = append(form.Items, item)
	}
	return nil
}

// Submit moves a draft to the submitted state.
func (s *Service) Submit(ctx context.Context, formID id.ID) (*RnRForm, error) {
	form, err := s.repo.Get(ctx, formID)
	if err != nil {
		return nil, err
	}
	if err := form.Submit(s.now()); err != nil {
		return nil, err
	}
	form.Touch()
	if err := s.repo.Update(ctx, form); err != nil {
		return nil, err
	}

	s.record(ctx, form, audit.ActionSubmit)
	logger.Info(ctx, "requisition submitted", "form_id", form.ID, "status", form.Status)
	return form, nil
}

// Authorize completes a submitted form. At most one authorized form may
// exist per program and period; violating that is a conflict, not a
// silent overwrite.
func (s *Service) Authorize(ctx context.Context, formID id.ID) (*RnRForm, error) {
	form, err := s.repo.Get(ctx, formID)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		taken, err := s.repo.ExistsAuthorizedForPeriod(ctx, form.ProgramCode, form.PeriodBegin, form.ID)
		if err != nil {
			return fmt.Errorf("check period uniqueness: %w", err)
		}
		if taken {
			return apperror.NewPeriodNotUnique(form.ProgramCode).
				WithDetail("period_begin", form.PeriodBegin.Format(period.DateLayout))
		}
		if err := form.Authorize(); err != nil {
			return err
		}
		form.Touch()
		return s.repo.Update(ctx, form)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, form, audit.ActionAuthorize)
	logger.Info(ctx, "requisition authorized", "form_id", form.ID)
	return form, nil
}

// DeleteDraft removes an open draft. Submitted and authorized forms are
// immutable history.
func (s *Service) DeleteDraft(ctx context.Context, formID id.ID) error {
	form, err := s.repo.Get(ctx, formID)
	if err != nil {
		return err
	}
	if !form.IsDraft() {
		return apperror.NewInvalidTransition(string(form.Status), "delete")
	}
	if err := s.repo.Delete(ctx, formID); err != nil {
		return err
	}
	s.record(ctx, form, audit.ActionDelete)
	return nil
}

// ListUnsynced retrieves authorized forms awaiting upload.
func (s *Service) ListUnsynced(ctx context.Context) ([]*RnRForm, error) {
	return s.repo.ListUnsynced(ctx)
}

// MarkSynced flags a form as pushed upstream.
func (s *Service) MarkSynced(ctx context.Context, formID id.ID) error {
	form, err := s.repo.Get(ctx, formID)
	if err != nil {
		return err
	}
	if err := form.MarkSynced(); err != nil {
		return err
	}
	if err := s.repo.MarkSynced(ctx, formID); err != nil {
		return err
	}
	s.record(ctx, form, audit.ActionSync)
	return nil
}

// record writes an audit entry; failures are logged, never propagated.
func (s *Service) record(ctx context.Context, form *RnRForm, action audit.Action) {
	entry := audit.NewEntry(ctx, "rnr_form", form.ID, action, map[string]any{
		"program_code": form.ProgramCode,
		"period_begin": form.PeriodBegin.Format(period.DateLayout),
		"status":       string(form.Status),
		"emergency":    form.Emergency,
	})
	if err := s.trail.Record(ctx, entry); err != nil {
		logger.Warn(ctx, "audit record failed", "form_id", form.ID, "action", action, "error", err)
	}
}
