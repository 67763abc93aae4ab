package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lmis/internal/domain/catalogs/product"
	"lmis/internal/domain/requisition"
)

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[*product.Product]()

	// embedded entity.Catalog contributes id, version, code, name, active
	assert.Contains(t, cols, "id")
	assert.Contains(t, cols, "version")
	assert.Contains(t, cols, "code")
	assert.Contains(t, cols, "primary_name")
	assert.Contains(t, cols, "is_kit")
	assert.NotContains(t, cols, "-")
}

func TestExtractDBColumns_SkipsUntaggedAndIgnored(t *testing.T) {
	cols := ExtractDBColumns[*requisition.RnRForm]()

	assert.Contains(t, cols, "program_code")
	assert.Contains(t, cols, "period_begin")
	// resolved references and child collections are db:"-"
	for _, c := range cols {
		assert.NotEqual(t, "-", c)
	}
}

func TestStructToMap(t *testing.T) {
	p := product.New("08S01", "Zidovudina")
	p.Strength = "300mg"
	p.IsKit = true

	m := StructToMap(p)
	require.NotNil(t, m)

	assert.Equal(t, "08S01", m["code"])
	assert.Equal(t, "Zidovudina", m["primary_name"])
	assert.Equal(t, "300mg", m["strength"])
	assert.Equal(t, true, m["is_kit"])
	assert.Equal(t, p.ID, m["id"])

	// cached second pass yields the same result
	again := StructToMap(p)
	assert.Equal(t, m, again)
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap("nope"))
}
