package catalog

import (
	"github.com/shopspring/decimal"
)

// AllCategories is the sentinel category meaning "no category filter".
const AllCategories = "all"

// Product is one catalog record as returned by the remote catalog.
// Never mutated locally.
type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Thumbnail   string          `json:"thumbnail"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

// CartLine is one entry in the cart, keyed by product ID.
// Qty is always >= 1.
type CartLine struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Thumbnail string          `json:"thumbnail"`
	Qty       int             `json:"qty"`
}

// Subtotal returns price * qty at full precision.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// LineFromProduct copies the fields a cart line keeps from a product.
func LineFromProduct(p Product) CartLine {
	return CartLine{
		ID:        p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Thumbnail: p.Thumbnail,
		Qty:       1,
	}
}

// CategoryList builds the ordered category list shown to the user:
// the AllCategories sentinel followed by each distinct, non-empty name
// in first-seen order.
func CategoryList(names []string) []string {
	out := make([]string, 0, len(names)+1)
	out = append(out, AllCategories)
	seen := map[string]bool{AllCategories: true}
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// FormatPrice renders an amount for display, rounded to two digits.
func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}
