package query

import (
	"fmt"

	"github.com/roach88/shelf/internal/catalog"
)

// SortKey selects the catalog field results are ordered by.
type SortKey string

const (
	SortByTitle  SortKey = "title"
	SortByPrice  SortKey = "price"
	SortByRating SortKey = "rating"
)

// Order is the sort direction.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Choices offered by the user-facing controls, in display order.
var (
	Limits   = []int{10, 20, 30, 50}
	Skips    = []int{0, 10, 20, 30, 40, 50}
	SortKeys = []SortKey{SortByTitle, SortByPrice, SortByRating}
	Orders   = []Order{OrderAsc, OrderDesc}
)

// Descriptor is the canonical description of one catalog query.
//
// Descriptor is comparable; equality implies request equality.
type Descriptor struct {
	Category string  `json:"category" yaml:"category"`
	Limit    int     `json:"limit" yaml:"limit"`
	Skip     int     `json:"skip" yaml:"skip"`
	SortBy   SortKey `json:"sortBy" yaml:"sort_by"`
	Order    Order   `json:"order" yaml:"order"`
}

// Default returns the descriptor a fresh session starts with.
func Default() Descriptor {
	return Descriptor{
		Category: catalog.AllCategories,
		Limit:    20,
		Skip:     0,
		SortBy:   SortByTitle,
		Order:    OrderAsc,
	}
}

// IsAll reports whether the descriptor targets the whole catalog.
func (d Descriptor) IsAll() bool {
	return d.Category == catalog.AllCategories
}

// String renders the descriptor for logs.
func (d Descriptor) String() string {
	return fmt.Sprintf("category=%s limit=%d skip=%d sortBy=%s order=%s",
		d.Category, d.Limit, d.Skip, d.SortBy, d.Order)
}

// Valid reports whether k is a known sort key.
func (k SortKey) Valid() bool {
	for _, known := range SortKeys {
		if k == known {
			return true
		}
	}
	return false
}

// Valid reports whether o is a known order.
func (o Order) Valid() bool {
	return o == OrderAsc || o == OrderDesc
}

// Toggle returns the opposite direction.
func (o Order) Toggle() Order {
	if o == OrderDesc {
		return OrderAsc
	}
	return OrderDesc
}

// ParseSortKey converts user input into a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(s)
	if !k.Valid() {
		return "", &ValidationError{Field: "sortBy", Value: s, Message: "must be one of title, price, rating"}
	}
	return k, nil
}

// ParseOrder converts user input into an Order.
func ParseOrder(s string) (Order, error) {
	o := Order(s)
	if !o.Valid() {
		return "", &ValidationError{Field: "order", Value: s, Message: "must be asc or desc"}
	}
	return o, nil
}
