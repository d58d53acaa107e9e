package product

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	cases := map[string]string{
		"9.5":       "9.50",
		"£12.99":    "12.99",
		" $1,234.5": "1234.50",
		"0":         "0.00",
	}
	for in, want := range cases {
		d, err := ParsePrice(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, d.StringFixed(2), in)
	}

	for _, in := range []string{"", "  ", "£", "abc", "-1"} {
		_, err := ParsePrice(in)
		assert.ErrorIs(t, err, ErrInvalidRecord, in)
	}
}

func TestFormatRRP(t *testing.T) {
	p := Product{RRP: decimal.NewFromFloat(9.5)}
	assert.Equal(t, "9.50", p.FormatRRP())
	p.RRP = decimal.RequireFromString("3.456")
	assert.Equal(t, "3.46", p.FormatRRP())
}

func TestUnmarshalProduct(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"id": 7, "quick_code": "QC7", "name": "Mug", "rrp": 4.5}`), &p))
	assert.Equal(t, ID("7"), p.ID)
	assert.Equal(t, "", p.RubiCode)
	assert.Equal(t, "4.50", p.FormatRRP())

	require.NoError(t, json.Unmarshal([]byte(`{"id": "custom_1", "quick_code": "Q", "name": "N", "rrp": "2.00", "is_custom": true}`), &p))
	assert.Equal(t, ID("custom_1"), p.ID)
	assert.True(t, p.IsCustom)

	err := json.Unmarshal([]byte(`{"id": 1, "quick_code": "QC1", "name": "Mug"}`), &p)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	err = json.Unmarshal([]byte(`{"id": 1, "quick_code": "QC1", "name": "Mug", "rrp": "cheap"}`), &p)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestValidate(t *testing.T) {
	ok := Product{QuickCode: "Q1", Name: "Mug", RRP: decimal.NewFromInt(1)}
	assert.NoError(t, ok.Validate())

	for name, p := range map[string]Product{
		"no quick code": {Name: "Mug", RRP: decimal.NewFromInt(1)},
		"no name":       {QuickCode: "Q1", Name: " ", RRP: decimal.NewFromInt(1)},
		"negative rrp":  {QuickCode: "Q1", Name: "Mug", RRP: decimal.NewFromInt(-1)},
	} {
		assert.ErrorIs(t, p.Validate(), ErrInvalidRecord, name)
	}
}

func TestConcatKeepsOrder(t *testing.T) {
	selected := []Product{{ID: "1"}, {ID: "2"}}
	custom := []Product{{ID: "c1", IsCustom: true}}
	all := Concat(selected, custom)
	require.Len(t, all, 3)
	assert.Equal(t, ID("c1"), all[2].ID)
	assert.Len(t, selected, 2)
}

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCatalogListAndSelect(t *testing.T) {
	path := writeCatalog(t, `[
		{"id": 1, "quick_code": "A", "rubi_code": "RA", "name": "Apple", "rrp": 1},
		{"id": 2, "quick_code": "B", "name": "Banana", "rrp": 0.5},
		{"id": 3, "quick_code": "C", "name": "Cherry", "rrp": "2.25"}
	]`)
	c := NewCatalog(path)

	all, err := c.List()
	require.NoError(t, err)
	require.Len(t, all, 3)

	selected, err := c.Select([]string{"3", "1", "99"})
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, "A", selected[0].QuickCode)
	assert.Equal(t, "C", selected[1].QuickCode)
}

func TestCatalogMissingFileIsEmpty(t *testing.T) {
	list, err := NewCatalog(filepath.Join(t.TempDir(), "none.json")).List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCatalogRejectsBadRecords(t *testing.T) {
	_, err := NewCatalog(writeCatalog(t, `[{"id": 1, "quick_code": "A", "name": "Apple"}]`)).List()
	assert.True(t, errors.Is(err, ErrInvalidRecord))

	_, err = NewCatalog(writeCatalog(t, `{not json`)).List()
	assert.ErrorIs(t, err, ErrInvalidRecord)
}
