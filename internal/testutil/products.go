package testutil

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/roach88/shelf/internal/catalog"
)

// Product builds a catalog product with predictable fields.
//
// Title is "Product <id>", thumbnail "<id>.png".
func Product(id int64, category, price string) catalog.Product {
	return catalog.Product{
		ID:          id,
		Title:       fmt.Sprintf("Product %d", id),
		Price:       decimal.RequireFromString(price),
		Thumbnail:   fmt.Sprintf("%d.png", id),
		Category:    category,
		Description: fmt.Sprintf("description of product %d", id),
	}
}
