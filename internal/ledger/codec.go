package ledger

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
	"github.com/shopspring/decimal"

	"github.com/roach88/shelf/internal/catalog"
)

//go:embed cart.cue
var cartSchema string

// record is the persisted shape of one line. Price is written as a bare
// JSON number rather than decimal's default quoted string.
type record struct {
	ID        int64       `json:"id"`
	Title     string      `json:"title"`
	Price     json.Number `json:"price"`
	Thumbnail string      `json:"thumbnail"`
	Qty       int         `json:"qty"`
}

// Encode serializes lines to the persisted JSON array.
// HTML escaping is disabled so titles round-trip byte for byte.
func Encode(lines []catalog.CartLine) ([]byte, error) {
	recs := make([]record, len(lines))
	for i, l := range lines {
		recs[i] = record{
			ID:        l.ID,
			Title:     l.Title,
			Price:     json.Number(l.Price.String()),
			Thumbnail: l.Thumbnail,
			Qty:       l.Qty,
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(recs); err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode parses persisted bytes into cart lines.
//
// The data must be valid JSON, satisfy cart.cue and contain each product id
// at most once; anything else is rejected.
func Decode(data []byte) ([]catalog.CartLine, error) {
	if err := validateShape(data); err != nil {
		return nil, err
	}

	var recs []struct {
		ID        int64           `json:"id"`
		Title     string          `json:"title"`
		Price     decimal.Decimal `json:"price"`
		Thumbnail string          `json:"thumbnail"`
		Qty       int             `json:"qty"`
	}
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}

	lines := make([]catalog.CartLine, 0, len(recs))
	seen := make(map[int64]bool, len(recs))
	for i, r := range recs {
		if seen[r.ID] {
			return nil, fmt.Errorf("decode cart: line %d: duplicate product id %d", i, r.ID)
		}
		seen[r.ID] = true
		lines = append(lines, catalog.CartLine{
			ID:        r.ID,
			Title:     r.Title,
			Price:     r.Price,
			Thumbnail: r.Thumbnail,
			Qty:       r.Qty,
		})
	}
	return lines, nil
}

// validateShape checks data against the embedded CUE schema.
// A cue.Context is not safe for concurrent use, so each call builds its own.
func validateShape(data []byte) error {
	expr, err := cuejson.Extract("cart.json", data)
	if err != nil {
		return fmt.Errorf("decode cart: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(cartSchema, cue.Filename("cart.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile cart schema: %w", err)
	}

	value := ctx.BuildExpr(expr)
	if err := value.Err(); err != nil {
		return fmt.Errorf("decode cart: %w", err)
	}

	if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("decode cart: %w", err)
	}
	return nil
}
