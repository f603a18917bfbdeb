package ledger

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/shopspring/decimal"

	"github.com/roach88/shelf/internal/catalog"
)

// Ledger is the authoritative in-memory cart plus its persistence duty.
//
// Lines are kept in insertion order, at most one per product ID, each with
// Qty >= 1.
//
// Ledger is not safe for concurrent use; it is driven from the session's
// single goroutine.
type Ledger struct {
	slot   Slot
	logger *slog.Logger
	lines  []catalog.CartLine
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// New creates a ledger over slot holding the given lines. A nil slot keeps
// the ledger in memory only.
func New(slot Slot, lines []catalog.CartLine, opts ...Option) *Ledger {
	l := &Ledger{
		slot:   slot,
		logger: slog.Default(),
		lines:  append([]catalog.CartLine(nil), lines...),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the slot once and decodes it.
//
// An absent slot is not an error: it yields (nil, nil). A read failure
// returns a KindUnavailable error, bad data a KindMalformed error.
func Load(ctx context.Context, slot Slot) ([]catalog.CartLine, error) {
	data, err := slot.Read(ctx)
	if errors.Is(err, ErrSlotEmpty) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Kind: KindUnavailable, Op: "load", Key: slot.Key(), Err: err}
	}
	if len(data) == 0 {
		return nil, nil
	}

	lines, err := Decode(data)
	if err != nil {
		return nil, &StorageError{Kind: KindMalformed, Op: "load", Key: slot.Key(), Err: err}
	}
	return lines, nil
}

// Open loads the ledger from slot.
//
// Open always returns a usable ledger. When loading fails the ledger starts
// empty and the *StorageError is returned alongside it so the caller can
// choose to ignore it.
func Open(ctx context.Context, slot Slot, opts ...Option) (*Ledger, error) {
	if slot == nil {
		return New(nil, nil, opts...), nil
	}
	lines, err := Load(ctx, slot)
	l := New(slot, lines, opts...)
	if err != nil {
		l.logger.Debug("cart load failed, starting empty", "key", slot.Key(), "error", err)
		return l, err
	}
	l.logger.Debug("cart loaded", "key", slot.Key(), "lines", len(lines))
	return l, nil
}

// Add puts one unit of p in the cart: a new line with qty 1, or qty+1 on
// the existing line.
func (l *Ledger) Add(ctx context.Context, p catalog.Product) error {
	if i := l.index(p.ID); i >= 0 {
		l.lines[i].Qty = addQty(l.lines[i].Qty, 1)
	} else {
		l.lines = append(l.lines, catalog.LineFromProduct(p))
	}
	return l.save(ctx)
}

// Remove deletes the line for id. Removing an absent id is a no-op.
func (l *Ledger) Remove(ctx context.Context, id int64) error {
	i := l.index(id)
	if i < 0 {
		return nil
	}
	l.lines = append(l.lines[:i], l.lines[i+1:]...)
	return l.save(ctx)
}

// ChangeQty sets the line's qty to max(1, qty+delta), saturating at
// math.MaxInt. The line is never removed here; removal is always an explicit
// Remove. Absent ids are a no-op.
func (l *Ledger) ChangeQty(ctx context.Context, id int64, delta int) error {
	i := l.index(id)
	if i < 0 {
		return nil
	}
	next := max(1, addQty(l.lines[i].Qty, delta))
	if next == l.lines[i].Qty {
		return nil
	}
	l.lines[i].Qty = next
	return l.save(ctx)
}

// Clear empties the ledger.
func (l *Ledger) Clear(ctx context.Context) error {
	l.lines = nil
	return l.save(ctx)
}

// Lines returns a copy of the lines in insertion order.
func (l *Ledger) Lines() []catalog.CartLine {
	return append([]catalog.CartLine(nil), l.lines...)
}

// Line returns the line for id.
func (l *Ledger) Line(id int64) (catalog.CartLine, bool) {
	if i := l.index(id); i >= 0 {
		return l.lines[i], true
	}
	return catalog.CartLine{}, false
}

// Len returns the number of distinct lines.
func (l *Ledger) Len() int {
	return len(l.lines)
}

// TotalItems returns the sum of quantities.
func (l *Ledger) TotalItems() int {
	n := 0
	for _, line := range l.lines {
		n += line.Qty
	}
	return n
}

// TotalPrice returns the sum of price*qty at full precision. Round with
// catalog.FormatPrice when presenting it.
func (l *Ledger) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, line := range l.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Summary is what checkout reports.
type Summary struct {
	Items int             `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// Summary returns the current item count and total.
func (l *Ledger) Summary() Summary {
	return Summary{Items: l.TotalItems(), Total: l.TotalPrice()}
}

func (l *Ledger) index(id int64) int {
	for i, line := range l.lines {
		if line.ID == id {
			return i
		}
	}
	return -1
}

// save writes the full ledger to the slot.
func (l *Ledger) save(ctx context.Context) error {
	if l.slot == nil {
		return nil
	}
	data, err := Encode(l.lines)
	if err != nil {
		return &StorageError{Kind: KindMalformed, Op: "save", Key: l.slot.Key(), Err: err}
	}
	if err := l.slot.Write(ctx, data); err != nil {
		return &StorageError{Kind: KindUnavailable, Op: "save", Key: l.slot.Key(), Err: err}
	}
	l.logger.Debug("cart saved", "key", l.slot.Key(), "lines", len(l.lines), "items", l.TotalItems())
	return nil
}

// addQty adds delta to a positive qty without wrapping past math.MaxInt.
func addQty(qty, delta int) int {
	if delta > 0 && qty > math.MaxInt-delta {
		return math.MaxInt
	}
	return qty + delta
}
