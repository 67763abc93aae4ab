package requisition

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lmis/internal/core/apperror"
	"lmis/internal/core/period"
	"lmis/internal/domain/catalogs/product"
	"lmis/internal/domain/catalogs/program"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testProgram() *program.Program {
	return program.New("MMIA", "Essential Medicines")
}

func TestInitFromDate(t *testing.T) {
	// period 2015-06-21..2015-07-20, checked well inside it
	form := InitFromDate(testProgram(), day(2015, time.June, 25), day(2015, time.June, 25))

	assert.Equal(t, StatusDraft, form.Status)
	assert.False(t, form.Emergency)
	assert.Equal(t, day(2015, time.June, 21), form.PeriodBegin)
	assert.Equal(t, day(2015, time.July, 20), form.PeriodEnd)
	assert.Equal(t, "MMIA", form.ProgramCode)
	assert.True(t, form.IsDraft())
	assert.False(t, form.IsMissed())
}

func TestInitFromDate_MissedPeriod(t *testing.T) {
	// period ended 2015-06-20, creation two months later
	form := InitFromDate(testProgram(), day(2015, time.June, 7), day(2015, time.August, 3))

	assert.Equal(t, StatusDraftMissed, form.Status)
	assert.True(t, form.IsDraft())
	assert.True(t, form.IsMissed())
}

func TestInitFromPeriod_EmergencyNeverMissed(t *testing.T) {
	p := period.Containing(day(2015, time.June, 7))
	form := InitFromPeriod(testProgram(), p, true, day(2015, time.December, 1))

	assert.Equal(t, StatusDraft, form.Status)
	assert.True(t, form.Emergency)
	assert.False(t, form.IsMissed())
}

func TestSubmitAndAuthorize(t *testing.T) {
	form := InitFromDate(testProgram(), day(2015, time.June, 25), day(2015, time.June, 25))
	submittedAt := day(2015, time.July, 19)

	require.NoError(t, form.Submit(submittedAt))
	assert.Equal(t, StatusSubmitted, form.Status)
	assert.True(t, form.IsSubmitted())
	require.NotNil(t, form.SubmittedTime)
	assert.Equal(t, submittedAt, *form.SubmittedTime)

	require.NoError(t, form.Authorize())
	assert.Equal(t, StatusAuthorized, form.Status)
	assert.True(t, form.IsAuthorized())
}

func TestSubmit_PreservesMissedVariant(t *testing.T) {
	form := InitFromDate(testProgram(), day(2015, time.June, 7), day(2015, time.August, 3))
	require.Equal(t, StatusDraftMissed, form.Status)

	require.NoError(t, form.Submit(day(2015, time.August, 3)))
	assert.Equal(t, StatusSubmittedMissed, form.Status)
	assert.True(t, form.IsMissed())

	require.NoError(t, form.Authorize())
	assert.Equal(t, StatusAuthorized, form.Status)
}

func TestInvalidTransitions(t *testing.T) {
	form := InitFromDate(testProgram(), day(2015, time.June, 25), day(2015, time.June, 25))

	// drafts cannot authorize
	err := form.Authorize()
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidTransition(err))

	// drafts cannot sync
	err = form.MarkSynced()
	assert.True(t, apperror.IsInvalidTransition(err))

	// double submit
	require.NoError(t, form.Submit(day(2015, time.July, 19)))
	err = form.Submit(day(2015, time.July, 19))
	assert.True(t, apperror.IsInvalidTransition(err))

	// authorized forms accept sync
	require.NoError(t, form.Authorize())
	require.NoError(t, form.MarkSynced())
	assert.True(t, form.Synced)
}

func TestValidate(t *testing.T) {
	form := InitFromDate(testProgram(), day(2015, time.June, 25), day(2015, time.June, 25))
	require.NoError(t, form.Validate(context.Background()))

	// synced requires authorized
	form.Synced = true
	assert.Error(t, form.Validate(context.Background()))
	form.Synced = false

	// emergency forms cannot carry a missed status
	form.Emergency = true
	form.Status = StatusDraftMissed
	assert.Error(t, form.Validate(context.Background()))
}

func TestAttachChildren(t *testing.T) {
	form := InitFromDate(testProgram(), day(2015, time.June, 25), day(2015, time.June, 25))
	form.Items = []*RnrFormItem{{ProductCode: "08S01"}, {ProductCode: "08S02"}}
	form.RegimenItems = []*RegimenItem{{Code: "AZT"}}
	form.BaseInfoItems = []*BaseInfoItem{{Name: "consultations", Value: "12"}}

	form.AttachChildren()

	for _, item := range form.Items {
		assert.Equal(t, form.ID, item.FormID)
	}
	assert.Equal(t, form.ID, form.RegimenItems[0].FormID)
	assert.Equal(t, form.ID, form.BaseInfoItems[0].FormID)
}

func TestItemsByKit(t *testing.T) {
	kit := product.New("KIT01", "Test Kit")
	kit.IsKit = true
	drug := product.New("08S01", "Zidovudina")

	form := InitFromDate(testProgram(), day(2015, time.June, 25), day(2015, time.June, 25))
	form.Items = []*RnrFormItem{
		{ProductCode: kit.Code, Product: kit},
		{ProductCode: drug.Code, Product: drug},
		{ProductCode: "NOREF"},
	}

	kits := form.ItemsByKit(true)
	require.Len(t, kits, 1)
	assert.Equal(t, "KIT01", kits[0].ProductCode)

	drugs := form.ItemsByKit(false)
	require.Len(t, drugs, 1)
	assert.Equal(t, "08S01", drugs[0].ProductCode)
}

func TestDeactivatedOrUnsupportedItems(t *testing.T) {
	active := product.New("08S01", "Zidovudina")
	inactive := product.New("08S02", "Lamivudina")
	inactive.Active = false

	form := InitFromDate(testProgram(), day(2015, time.June, 25), day(2015, time.June, 25))
	form.Items = []*RnrFormItem{
		{ProductCode: active.Code, Product: active},
		{ProductCode: inactive.Code, Product: inactive},
		{ProductCode: "08S99", Product: product.New("08S99", "Stavudina")},
	}

	flagged := form.DeactivatedOrUnsupportedItems([]string{"08S01", "08S02"}, true)
	require.Len(t, flagged, 2)
	assert.Equal(t, "08S02", flagged[0].ProductCode, "deactivated")
	assert.Equal(t, "08S99", flagged[1].ProductCode, "unsupported")

	// Without the unsupported filter only deactivated products are flagged.
	inactiveOnly := form.DeactivatedOrUnsupportedItems([]string{"08S01", "08S02"}, false)
	require.Len(t, inactiveOnly, 1)
	assert.Equal(t, "08S02", inactiveOnly[0].ProductCode)
}

func TestTotalRegimenAmount(t *testing.T) {
	form := InitFromDate(testProgram(), day(2015, time.June, 25), day(2015, time.June, 25))
	three, five := int64(3), int64(5)
	form.RegimenItems = []*RegimenItem{
		{Code: "AZT", Amount: &three},
		{Code: "3TC", Amount: nil},
		{Code: "NVP", Amount: &five},
	}

	assert.Equal(t, int64(8), form.TotalRegimenAmount(), "nil amounts count as zero")

	form.RegimenItems = nil
	assert.Equal(t, int64(0), form.TotalRegimenAmount())
}
