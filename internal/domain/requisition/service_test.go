package requisition

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lmis/internal/core/apperror"
	"lmis/internal/core/id"
	"lmis/internal/domain/audit"
)

// fakeRepo is an in-memory Repository for lifecycle tests.
type fakeRepo struct {
	forms map[id.ID]*RnRForm
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{forms: make(map[id.ID]*RnRForm)}
}

func (r *fakeRepo) Create(_ context.Context, form *RnRForm) error {
	r.forms[form.ID] = form
	return nil
}

func (r *fakeRepo) Get(_ context.Context, formID id.ID) (*RnRForm, error) {
	form, ok := r.forms[formID]
	if !ok {
		return nil, apperror.NewNotFound("rnr_form", formID)
	}
	return form, nil
}

func (r *fakeRepo) Update(_ context.Context, form *RnRForm) error {
	r.forms[form.ID] = form
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, formID id.ID) error {
	delete(r.forms, formID)
	return nil
}

func (r *fakeRepo) GetDraftByProgram(_ context.Context, programCode string) (*RnRForm, error) {
	for _, f := range r.forms {
		if f.ProgramCode == programCode && f.IsDraft() {
			return f, nil
		}
	}
	return nil, apperror.NewNotFound("rnr_form", programCode)
}

func (r *fakeRepo) ListByProgram(_ context.Context, programCode string) ([]*RnRForm, error) {
	var out []*RnRForm
	for _, f := range r.forms {
		if f.ProgramCode == programCode {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListUnsynced(_ context.Context) ([]*RnRForm, error) {
	var out []*RnRForm
	for _, f := range r.forms {
		if f.IsAuthorized() && !f.Synced {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeRepo) ExistsAuthorizedForPeriod(_ context.Context, programCode string, periodBegin time.Time, excludeID id.ID) (bool, error) {
	for _, f := range r.forms {
		if f.ID != excludeID && f.ProgramCode == programCode &&
			f.PeriodBegin.Equal(periodBegin) && f.IsAuthorized() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) MarkSynced(_ context.Context, formID id.ID) error {
	if f, ok := r.forms[formID]; ok {
		f.Synced = true
	}
	return nil
}

// passthroughTx runs the function without a real transaction.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(repo Repository) *Service {
	svc := NewService(repo, nil, nil, nil, passthroughTx{}, audit.NopTrail{})
	return svc.WithClock(func() time.Time { return day(2015, time.July, 19) })
}

func submittedForm(t *testing.T, repo *fakeRepo) *RnRForm {
	t.Helper()
	form := InitFromDate(testProgram(), day(2015, time.June, 25), day(2015, time.June, 25))
	require.NoError(t, form.Submit(day(2015, time.July, 19)))
	repo.forms[form.ID] = form
	return form
}

func TestService_SubmitAndAuthorize(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	form := InitFromDate(testProgram(), day(2015, time.June, 25), day(2015, time.June, 25))
	repo.forms[form.ID] = form

	got, err := svc.Submit(context.Background(), form.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, got.Status)

	got, err = svc.Authorize(context.Background(), form.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAuthorized, got.Status)
}

func TestService_AuthorizeRejectsDuplicatePeriod(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	// an authorized form already covers the period
	existing := submittedForm(t, repo)
	require.NoError(t, existing.Authorize())

	form := submittedForm(t, repo)
	_, err := svc.Authorize(context.Background(), form.ID)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePeriodNotUnique, appErr.Code)
	assert.False(t, form.IsAuthorized(), "form must stay submitted on conflict")
}

func TestService_AuthorizeRequiresSubmitted(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	form := InitFromDate(testProgram(), day(2015, time.June, 25), day(2015, time.June, 25))
	repo.forms[form.ID] = form

	_, err := svc.Authorize(context.Background(), form.ID)
	assert.True(t, apperror.IsInvalidTransition(err))
}

func TestService_MarkSynced(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	form := submittedForm(t, repo)
	require.NoError(t, form.Authorize())

	unsynced, err := svc.ListUnsynced(context.Background())
	require.NoError(t, err)
	require.Len(t, unsynced, 1)

	require.NoError(t, svc.MarkSynced(context.Background(), form.ID))
	assert.True(t, form.Synced)

	unsynced, err = svc.ListUnsynced(context.Background())
	require.NoError(t, err)
	assert.Empty(t, unsynced)
}

func TestService_MarkSyncedRequiresAuthorized(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	form := submittedForm(t, repo)
	err := svc.MarkSynced(context.Background(), form.ID)
	assert.True(t, apperror.IsInvalidTransition(err))
}

func TestService_DeleteDraftOnly(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	draft := InitFromDate(testProgram(), day(2015, time.June, 25), day(2015, time.June, 25))
	repo.forms[draft.ID] = draft

	require.NoError(t, svc.DeleteDraft(context.Background(), draft.ID))
	_, err := repo.Get(context.Background(), draft.ID)
	assert.True(t, apperror.IsNotFound(err))

	form := submittedForm(t, repo)
	err = svc.DeleteDraft(context.Background(), form.ID)
	assert.True(t, apperror.IsInvalidTransition(err))
}
