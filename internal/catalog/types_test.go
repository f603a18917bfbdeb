package catalog

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_DecodesNumericPrice(t *testing.T) {
	raw := `{"id":7,"title":"Lamp","price":19.99,"thumbnail":"https://x/7.png","category":"home-decoration","description":"warm"}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, "Lamp", p.Title)
	assert.True(t, decimal.RequireFromString("19.99").Equal(p.Price))
	assert.Equal(t, "home-decoration", p.Category)
}

func TestLineFromProduct_CopiesOnlyCartFields(t *testing.T) {
	p := Product{
		ID:          3,
		Title:       "Phone",
		Price:       decimal.RequireFromString("499.5"),
		Thumbnail:   "t.png",
		Category:    "smartphones",
		Description: "fast",
	}

	line := LineFromProduct(p)

	assert.Equal(t, CartLine{ID: 3, Title: "Phone", Price: p.Price, Thumbnail: "t.png", Qty: 1}, line)
}

func TestCartLine_Subtotal(t *testing.T) {
	line := CartLine{Price: decimal.RequireFromString("0.1"), Qty: 3}
	assert.Equal(t, "0.3", line.Subtotal().String())
}

func TestCategoryList_PrependsSentinelAndDedupes(t *testing.T) {
	got := CategoryList([]string{"beauty", "all", "", "laptops", "beauty"})
	assert.Equal(t, []string{"all", "beauty", "laptops"}, got)
}

func TestCategoryList_Empty(t *testing.T) {
	assert.Equal(t, []string{"all"}, CategoryList(nil))
}

func TestFormatPrice_RoundsAtPresentationOnly(t *testing.T) {
	assert.Equal(t, "10.00", FormatPrice(decimal.NewFromInt(10)))
	assert.Equal(t, "0.30", FormatPrice(decimal.RequireFromString("0.295")))
}
