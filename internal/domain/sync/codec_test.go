package sync

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lmis/internal/core/apperror"
	appctx "lmis/internal/core/context"
	"lmis/internal/domain/catalogs/product"
	"lmis/internal/domain/catalogs/program"
	"lmis/internal/domain/requisition"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type stubPrograms struct {
	programs map[string]*program.Program
}

func (s *stubPrograms) GetByCode(_ context.Context, code string) (*program.Program, error) {
	if p, ok := s.programs[code]; ok {
		return p, nil
	}
	return nil, apperror.NewNotFound("program", code)
}

type stubProducts struct {
	products map[string]*product.Product
}

func (s *stubProducts) ResolveCodes(_ context.Context, codes []string) (map[string]*product.Product, error) {
	out := make(map[string]*product.Product)
	for _, c := range codes {
		if p, ok := s.products[c]; ok {
			out[c] = p
		}
	}
	return out, nil
}

func testCodec() (*Codec, *program.Program, *product.Product) {
	prog := program.New("MMIA", "Essential Medicines")
	prod := product.New("08S01", "Zidovudina")
	codec := NewCodec(
		&stubPrograms{programs: map[string]*program.Program{prog.Code: prog}},
		&stubProducts{products: map[string]*product.Product{prod.Code: prod}},
	)
	return codec, prog, prod
}

func populatedForm(prog *program.Program, prod *product.Product) *requisition.RnRForm {
	form := requisition.InitFromDate(prog, day(2015, time.June, 25), day(2015, time.June, 25))
	form.Comments = "stock out on shelf 3"
	submitted := time.Date(2015, time.July, 19, 10, 30, 0, 0, time.UTC)
	form.SubmittedTime = &submitted

	requested := int64(120)
	form.Items = []*requisition.RnrFormItem{{
		ProductID:               prod.ID,
		ProductCode:             prod.Code,
		Product:                 prod,
		InitialAmount:           40,
		Received:                100,
		Issued:                  50,
		Adjustment:              -10,
		Inventory:               80,
		CalculatedOrderQuantity: 20,
		RequestAmount:           &requested,
		ExpirationDate:          "Jan 2016",
	}}
	three := int64(3)
	form.RegimenItems = []*requisition.RegimenItem{{Code: "AZT", Name: "AZT+3TC+NVP", Amount: &three}}
	form.BaseInfoItems = []*requisition.BaseInfoItem{{Name: "newPatients", Value: "7"}}
	form.AttachChildren()
	return form
}

func TestCodec_MarshalFieldNames(t *testing.T) {
	codec, prog, prod := testCodec()
	form := populatedForm(prog, prod)

	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:       "u1",
		FacilityCode: "HF23",
	})

	payload, err := codec.Marshal(ctx, form)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(payload, &raw))

	// top-level names are the interoperability contract
	assert.Equal(t, "stock out on shelf 3", raw["clientSubmittedNotes"])
	assert.Equal(t, "2015-07-19 10:30:00", raw["clientSubmittedTime"])
	assert.Equal(t, "2015-06-21", raw["actualPeriodStartDate"])
	assert.Equal(t, "2015-07-20", raw["actualPeriodEndDate"])
	assert.Equal(t, false, raw["emergency"])
	assert.Equal(t, "HF23", raw["agentCode"])
	assert.Equal(t, "MMIA", raw["programCode"])
	assert.Contains(t, raw, "regimens")
	assert.Contains(t, raw, "patientQuantifications")

	products, ok := raw["products"].([]any)
	require.True(t, ok)
	require.Len(t, products, 1)
	item := products[0].(map[string]any)
	assert.Equal(t, "08S01", item["productCode"])
	assert.Equal(t, "Jan 2016", item["expirationDate"], "free text passes through untouched")
}

func TestCodec_MarshalOmitsMissingProgramCode(t *testing.T) {
	codec, prog, prod := testCodec()
	form := populatedForm(prog, prod)
	form.Program = nil
	form.ProgramCode = ""

	payload, err := codec.Marshal(context.Background(), form)
	require.NoError(t, err, "missing program must not fail serialization")

	var raw map[string]any
	require.NoError(t, json.Unmarshal(payload, &raw))
	assert.NotContains(t, raw, "programCode")
}

func TestCodec_RoundTrip(t *testing.T) {
	codec, prog, prod := testCodec()
	form := populatedForm(prog, prod)

	payload, err := codec.Marshal(context.Background(), form)
	require.NoError(t, err)

	got, err := codec.Unmarshal(context.Background(), payload)
	require.NoError(t, err)

	assert.Equal(t, form.Comments, got.Comments)
	assert.Equal(t, form.PeriodBegin, got.PeriodBegin)
	assert.Equal(t, form.PeriodEnd, got.PeriodEnd)
	assert.Equal(t, form.Emergency, got.Emergency)
	assert.Equal(t, prog.ID, got.ProgramID)

	// received forms are completed, externally authorized submissions
	assert.Equal(t, requisition.StatusAuthorized, got.Status)
	assert.True(t, got.Synced)

	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(40), got.Items[0].InitialAmount)
	assert.Equal(t, int64(80), got.Items[0].Inventory)
	assert.Equal(t, got.ID, got.Items[0].FormID, "children re-linked to the new form")

	require.Len(t, got.RegimenItems, 1)
	require.NotNil(t, got.RegimenItems[0].Amount)
	assert.Equal(t, int64(3), *got.RegimenItems[0].Amount)

	require.Len(t, got.BaseInfoItems, 1)
	assert.Equal(t, "newPatients", got.BaseInfoItems[0].Name)
	assert.Equal(t, "7", got.BaseInfoItems[0].Value)
}

func TestCodec_UnmarshalRederivesPeriod(t *testing.T) {
	codec, _, _ := testCodec()

	// counterparty sent an end date that disagrees with the cycle; the
	// canonical period comes from the start date
	payload := []byte(`{
		"programCode": "MMIA",
		"actualPeriodStartDate": "2015-06-21",
		"actualPeriodEndDate": "2015-07-25",
		"products": []
	}`)

	got, err := codec.Unmarshal(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, day(2015, time.June, 21), got.PeriodBegin)
	assert.Equal(t, day(2015, time.July, 20), got.PeriodEnd)
}

func TestCodec_UnmarshalUnknownProgram(t *testing.T) {
	codec, _, _ := testCodec()

	payload := []byte(`{"programCode": "NOPE", "actualPeriodStartDate": "2015-06-21", "products": []}`)
	_, err := codec.Unmarshal(context.Background(), payload)
	require.Error(t, err)
	assert.True(t, apperror.IsLookupFailure(err))
}

func TestCodec_UnmarshalUnknownProductAbortsForm(t *testing.T) {
	codec, _, _ := testCodec()

	payload := []byte(`{
		"programCode": "MMIA",
		"actualPeriodStartDate": "2015-06-21",
		"products": [{"productCode": "08S01"}, {"productCode": "GONE"}]
	}`)
	_, err := codec.Unmarshal(context.Background(), payload)
	require.Error(t, err)
	assert.True(t, apperror.IsLookupFailure(err), "partial forms are never returned")
}

func TestCodec_UnmarshalMalformedPayload(t *testing.T) {
	codec, _, _ := testCodec()
	_, err := codec.Unmarshal(context.Background(), []byte("{nope"))
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeParseFailure, appErr.Code)
}
