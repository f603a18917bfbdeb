// Package session is the composing layer between user input, the fetch
// orchestrator, the local filter and the cart ledger.
//
// A Session holds the raw inputs (category, pagination, sort, search text,
// cart visibility). Every setter recomputes the query descriptor and, if it
// differs from the last one issued, submits a new fetch. Search text never
// triggers a fetch; it only changes what Visible returns.
//
// Session is not safe for concurrent use. Drive it from one goroutine (the
// Bubble Tea update loop or a CLI command).
package session

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/roach88/shelf/internal/catalog"
	"github.com/roach88/shelf/internal/fetch"
	"github.com/roach88/shelf/internal/ledger"
	"github.com/roach88/shelf/internal/query"
	"github.com/roach88/shelf/internal/queryurl"
	"github.com/roach88/shelf/internal/search"
)

// Inputs is the user-controlled part of the session.
type Inputs struct {
	Category string
	Limit    int
	Skip     int
	SortBy   query.SortKey
	Order    query.Order
	Search   string
	CartOpen bool
}

// Descriptor returns the query descriptor the inputs describe.
func (in Inputs) Descriptor() query.Descriptor {
	return query.Descriptor{
		Category: in.Category,
		Limit:    in.Limit,
		Skip:     in.Skip,
		SortBy:   in.SortBy,
		Order:    in.Order,
	}
}

// Session wires inputs to the orchestrator and the ledger.
type Session struct {
	composer *queryurl.Composer
	orch     *fetch.Orchestrator
	cart     *ledger.Ledger
	logger   *slog.Logger

	inputs     Inputs
	lastIssued query.Descriptor
	issued     bool
	lastGen    int64
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New creates a session starting from initial. Call Start to issue the
// first fetch. An invalid initial descriptor is replaced by query.Default().
func New(orch *fetch.Orchestrator, composer *queryurl.Composer, cart *ledger.Ledger, initial query.Descriptor, opts ...Option) *Session {
	s := &Session{
		composer: composer,
		orch:     orch,
		cart:     cart,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := initial.Validate(); err != nil {
		s.logger.Warn("invalid initial query, using defaults", "error", err)
		initial = query.Default()
	}
	s.inputs = Inputs{
		Category: initial.Category,
		Limit:    initial.Limit,
		Skip:     initial.Skip,
		SortBy:   initial.SortBy,
		Order:    initial.Order,
	}
	return s
}

// Start loads the category list and issues the initial product fetch.
// Returns the generation of that fetch.
func (s *Session) Start() int64 {
	s.orch.LoadCategories()
	s.sync()
	return s.lastGen
}

// Close stops the orchestrator; any pending completion is voided.
func (s *Session) Close() {
	s.orch.Stop()
}

// Inputs returns the current inputs.
func (s *Session) Inputs() Inputs {
	return s.inputs
}

// Descriptor returns the descriptor for the current inputs.
func (s *Session) Descriptor() query.Descriptor {
	return s.inputs.Descriptor()
}

// Generation returns the generation of the last fetch issued.
func (s *Session) Generation() int64 {
	return s.lastGen
}

// SetCategory selects a category ("all" for none).
func (s *Session) SetCategory(category string) error {
	return s.update(func(in *Inputs) { in.Category = category })
}

// SetLimit sets the page size.
func (s *Session) SetLimit(limit int) error {
	return s.update(func(in *Inputs) { in.Limit = limit })
}

// SetSkip sets the page offset.
func (s *Session) SetSkip(skip int) error {
	return s.update(func(in *Inputs) { in.Skip = skip })
}

// SetSortBy sets the sort key.
func (s *Session) SetSortBy(key query.SortKey) error {
	return s.update(func(in *Inputs) { in.SortBy = key })
}

// SetOrder sets the sort direction.
func (s *Session) SetOrder(order query.Order) error {
	return s.update(func(in *Inputs) { in.Order = order })
}

// NextCategory moves to the next category in the loaded list, wrapping.
func (s *Session) NextCategory() {
	s.mustUpdate(func(in *Inputs) { in.Category = query.Next(s.orch.Categories(), in.Category) })
}

// PrevCategory moves to the previous category in the loaded list, wrapping.
func (s *Session) PrevCategory() {
	s.mustUpdate(func(in *Inputs) { in.Category = query.Prev(s.orch.Categories(), in.Category) })
}

// CycleLimit advances to the next page size choice.
func (s *Session) CycleLimit() {
	s.mustUpdate(func(in *Inputs) { in.Limit = query.Next(query.Limits, in.Limit) })
}

// CycleSkip advances to the next offset choice.
func (s *Session) CycleSkip() {
	s.mustUpdate(func(in *Inputs) { in.Skip = query.Next(query.Skips, in.Skip) })
}

// CycleSortBy advances to the next sort key.
func (s *Session) CycleSortBy() {
	s.mustUpdate(func(in *Inputs) { in.SortBy = query.Next(query.SortKeys, in.SortBy) })
}

// ToggleOrder flips the sort direction.
func (s *Session) ToggleOrder() {
	s.mustUpdate(func(in *Inputs) { in.Order = in.Order.Toggle() })
}

// SetSearch sets the local filter text. It never triggers a fetch.
func (s *Session) SetSearch(term string) {
	s.inputs.Search = term
}

// Refresh re-issues the current descriptor even though it is unchanged.
// Returns the new generation, or 0 if nothing was issued.
func (s *Session) Refresh() int64 {
	s.issued = false
	s.sync()
	return s.lastGen
}

// State returns the orchestrator's current state.
func (s *Session) State() fetch.State {
	return s.orch.State()
}

// Categories returns the category list with "all" first.
func (s *Session) Categories() []string {
	return s.orch.Categories()
}

// Visible returns the committed products narrowed by the search text. It is
// empty unless the current generation succeeded.
func (s *Session) Visible() []catalog.Product {
	st := s.orch.State()
	if st.Status != fetch.Success {
		return nil
	}
	return search.Filter(s.inputs.Search, st.Products)
}

// update applies fn to a copy of the inputs and commits it only if the
// resulting descriptor is valid.
func (s *Session) update(fn func(*Inputs)) error {
	next := s.inputs
	fn(&next)
	if err := next.Descriptor().Validate(); err != nil {
		return err
	}
	s.inputs = next
	s.sync()
	return nil
}

// mustUpdate is update for changes that pick from known-valid choices.
func (s *Session) mustUpdate(fn func(*Inputs)) {
	if err := s.update(fn); err != nil {
		s.logger.Error("input change rejected", "error", err)
	}
}

// sync submits a fetch if the descriptor differs from the last one issued.
func (s *Session) sync() {
	d := s.inputs.Descriptor()
	if s.issued && d == s.lastIssued {
		return
	}

	target, err := s.composer.Compose(d)
	if err != nil {
		s.logger.Error("compose query failed", "descriptor", d.String(), "error", err)
		return
	}

	s.lastIssued = d
	s.issued = true
	s.lastGen = s.orch.Submit(target)
}

// Cart operations. Storage errors are logged and then deliberately
// ignored: the in-memory cart stays authoritative and the next successful
// write persists it.

// AddToCart adds one unit of p.
func (s *Session) AddToCart(ctx context.Context, p catalog.Product) {
	s.ignoreStorage("add", s.cart.Add(ctx, p))
}

// RemoveFromCart removes the line for id.
func (s *Session) RemoveFromCart(ctx context.Context, id int64) {
	s.ignoreStorage("remove", s.cart.Remove(ctx, id))
}

// ChangeQty adjusts the qty of the line for id, never below 1.
func (s *Session) ChangeQty(ctx context.Context, id int64, delta int) {
	s.ignoreStorage("change qty", s.cart.ChangeQty(ctx, id, delta))
}

// ClearCart empties the cart.
func (s *Session) ClearCart(ctx context.Context) {
	s.ignoreStorage("clear", s.cart.Clear(ctx))
}

// Cart returns the cart lines in insertion order.
func (s *Session) Cart() []catalog.CartLine {
	return s.cart.Lines()
}

// CartItems returns the total quantity in the cart.
func (s *Session) CartItems() int {
	return s.cart.TotalItems()
}

// CartTotal returns the cart total at full precision.
func (s *Session) CartTotal() decimal.Decimal {
	return s.cart.TotalPrice()
}

// ToggleCart shows or hides the cart.
func (s *Session) ToggleCart() {
	s.inputs.CartOpen = !s.inputs.CartOpen
}

// CloseCart hides the cart.
func (s *Session) CloseCart() {
	s.inputs.CartOpen = false
}

// Checkout summarizes the cart. It has no side effects.
func (s *Session) Checkout() ledger.Summary {
	return s.cart.Summary()
}

func (s *Session) ignoreStorage(op string, err error) {
	if err != nil {
		s.logger.Debug("cart persistence failed, ignoring", "op", op, "error", err)
	}
}
