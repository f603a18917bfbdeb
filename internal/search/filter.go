// Package search implements the local filter stage: a free-text search over
// the last fetched product set that never touches the network.
package search

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/shelf/internal/catalog"
)

// Normalize prepares a term or field for matching: trimmed, NFC-normalized
// and lowercased.
func Normalize(s string) string {
	// cases.Caser is stateful; a fresh one per call keeps Normalize safe for
	// concurrent use.
	lower := cases.Lower(language.Und)
	return lower.String(norm.NFC.String(strings.TrimSpace(s)))
}

// Filter returns the products whose title or category contains term as a
// case-insensitive substring, in their original relative order.
//
// An empty (or all-space) term returns products itself, unchanged. The
// input slice is never modified; a non-empty term always yields a new slice.
func Filter(term string, products []catalog.Product) []catalog.Product {
	q := Normalize(term)
	if q == "" {
		return products
	}

	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if matches(q, p) {
			out = append(out, p)
		}
	}
	return out
}

func matches(q string, p catalog.Product) bool {
	return strings.Contains(Normalize(p.Title), q) ||
		strings.Contains(Normalize(p.Category), q)
}
