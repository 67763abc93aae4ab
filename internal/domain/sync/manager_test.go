package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lmis/internal/core/apperror"
	"lmis/internal/core/id"
	"lmis/internal/core/period"
	"lmis/internal/domain/audit"
	"lmis/internal/domain/catalogs/product"
	"lmis/internal/domain/catalogs/program"
	"lmis/internal/domain/requisition"
)

// memFormRepo is an in-memory requisition.Repository; only the methods
// the sync path touches are implemented.
type memFormRepo struct {
	forms map[id.ID]*requisition.RnRForm
}

func newMemFormRepo() *memFormRepo {
	return &memFormRepo{forms: make(map[id.ID]*requisition.RnRForm)}
}

func (r *memFormRepo) Create(_ context.Context, form *requisition.RnRForm) error {
	r.forms[form.ID] = form
	return nil
}

func (r *memFormRepo) Get(_ context.Context, formID id.ID) (*requisition.RnRForm, error) {
	if form, ok := r.forms[formID]; ok {
		return form, nil
	}
	return nil, apperror.NewNotFound("rnr_form", formID.String())
}

func (r *memFormRepo) Update(_ context.Context, form *requisition.RnRForm) error {
	r.forms[form.ID] = form
	return nil
}

func (r *memFormRepo) Delete(_ context.Context, formID id.ID) error {
	delete(r.forms, formID)
	return nil
}

func (r *memFormRepo) GetDraftByProgram(_ context.Context, programCode string) (*requisition.RnRForm, error) {
	return nil, apperror.NewNotFound("rnr_form", programCode)
}

func (r *memFormRepo) ListByProgram(_ context.Context, _ string) ([]*requisition.RnRForm, error) {
	return nil, nil
}

func (r *memFormRepo) ListUnsynced(_ context.Context) ([]*requisition.RnRForm, error) {
	var out []*requisition.RnRForm
	for _, form := range r.forms {
		if form.Status == requisition.StatusAuthorized && !form.Synced {
			out = append(out, form)
		}
	}
	return out, nil
}

func (r *memFormRepo) ExistsAuthorizedForPeriod(_ context.Context, _ string, _ time.Time, _ id.ID) (bool, error) {
	return false, nil
}

func (r *memFormRepo) MarkSynced(_ context.Context, formID id.ID) error {
	form, ok := r.forms[formID]
	if !ok {
		return apperror.NewNotFound("rnr_form", formID.String())
	}
	form.Synced = true
	return nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// recordingTransport captures submitted payloads; codes listed in reject
// fail the submission.
type recordingTransport struct {
	payloads [][]byte
	fail     bool
}

func (t *recordingTransport) SubmitRequisition(_ context.Context, payload []byte) error {
	if t.fail {
		return errors.New("upstream unreachable")
	}
	t.payloads = append(t.payloads, payload)
	return nil
}

func authorizedForm(t *testing.T, prog *program.Program, begin time.Time) *requisition.RnRForm {
	t.Helper()
	now := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
	form := requisition.InitFromPeriod(prog, period.Containing(begin), false, now)
	require.NoError(t, form.Submit(now))
	require.NoError(t, form.Authorize())
	return form
}

func newSyncFixture(t *testing.T) (*memFormRepo, *UpManager, *recordingTransport) {
	t.Helper()
	prog := program.New("ESS_MEDS", "Essential Medicines")

	repo := newMemFormRepo()
	service := requisition.NewService(repo, nil, nil, nil, passthroughTx{}, audit.NopTrail{})

	codec := NewCodec(
		&stubPrograms{programs: map[string]*program.Program{prog.Code: prog}},
		&stubProducts{products: map[string]*product.Product{}},
	)
	transport := &recordingTransport{}
	return repo, NewUpManager(service, codec, transport), transport
}

func TestSyncUpUploadsAndMarksForms(t *testing.T) {
	repo, manager, transport := newSyncFixture(t)

	prog := program.New("ESS_MEDS", "Essential Medicines")
	form := authorizedForm(t, prog, day(2023, time.January, 21))
	require.NoError(t, repo.Create(context.Background(), form))

	synced, failed, err := manager.SyncUp(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, synced)
	assert.Zero(t, failed)
	assert.Len(t, transport.payloads, 1)
	assert.True(t, repo.forms[form.ID].Synced)

	// A second run finds nothing left to push.
	synced, failed, err = manager.SyncUp(context.Background())
	require.NoError(t, err)
	assert.Zero(t, synced)
	assert.Zero(t, failed)
	assert.Len(t, transport.payloads, 1)
}

func TestSyncUpSkipsNonAuthorizedForms(t *testing.T) {
	repo, manager, transport := newSyncFixture(t)

	prog := program.New("ESS_MEDS", "Essential Medicines")
	now := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
	draft := requisition.InitFromPeriod(prog, period.Containing(day(2023, time.January, 21)), false, now)
	require.NoError(t, repo.Create(context.Background(), draft))

	synced, failed, err := manager.SyncUp(context.Background())
	require.NoError(t, err)
	assert.Zero(t, synced)
	assert.Zero(t, failed)
	assert.Empty(t, transport.payloads)
	assert.False(t, repo.forms[draft.ID].Synced)
}

func TestSyncUpLeavesFailedFormsForRetry(t *testing.T) {
	repo, manager, transport := newSyncFixture(t)
	transport.fail = true

	prog := program.New("ESS_MEDS", "Essential Medicines")
	form := authorizedForm(t, prog, day(2023, time.January, 21))
	require.NoError(t, repo.Create(context.Background(), form))

	synced, failed, err := manager.SyncUp(context.Background())
	require.Error(t, err)
	assert.Zero(t, synced)
	assert.Equal(t, 1, failed)
	assert.False(t, repo.forms[form.ID].Synced)

	// Once the upstream recovers the form goes through.
	transport.fail = false
	synced, failed, err = manager.SyncUp(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, synced)
	assert.Zero(t, failed)
	assert.True(t, repo.forms[form.ID].Synced)
}
