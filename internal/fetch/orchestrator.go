package fetch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/shelf/internal/catalog"
	"github.com/roach88/shelf/internal/queryurl"
)

// Source performs the network calls for the orchestrator.
// Implemented by catalogapi.Client and by test fakes.
type Source interface {
	Products(ctx context.Context, target queryurl.Target) ([]catalog.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// Orchestrator owns the fetch lifecycle for one session.
//
// Thread-safety model:
//   - Submit, State, Categories, Await, LoadCategories, Stop: safe from any goroutine
//   - Run: must be called from exactly one goroutine
type Orchestrator struct {
	source Source
	clock  *Clock
	queue  *eventQueue
	ids    RequestIDGenerator
	logger *slog.Logger
	notify func(State)

	// base is the parent of every request context; Stop cancels it
	base       context.Context
	baseCancel context.CancelFunc

	mu         sync.Mutex
	state      State
	categories []string
	cancel     context.CancelFunc // in-flight product request
	stopped    bool
	changed    chan struct{} // closed and replaced on every state change

	catOnce sync.Once
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithNotify registers fn to be called from the Run goroutine after each
// commit (product completion or category list).
func WithNotify(fn func(State)) Option {
	return func(o *Orchestrator) {
		o.notify = fn
	}
}

// WithRequestIDGenerator replaces the UUIDv7 request ID generator.
func WithRequestIDGenerator(g RequestIDGenerator) Option {
	return func(o *Orchestrator) {
		o.ids = g
	}
}

// New creates an idle orchestrator over source. Call Run to start
// applying completions.
func New(source Source, opts ...Option) *Orchestrator {
	base, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		source:     source,
		clock:      NewClock(),
		queue:      newEventQueue(),
		ids:        UUIDv7Generator{},
		logger:     slog.Default(),
		base:       base,
		baseCancel: cancel,
		categories: catalog.CategoryList(nil),
		changed:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit issues a product request for target and returns its generation.
//
// Everything before the request goroutine starts happens under the state
// mutex: the generation is advanced, the previous request is canceled and
// state moves to Loading with the products and any error cleared. After Stop, Submit does
// nothing and returns 0.
func (o *Orchestrator) Submit(target queryurl.Target) int64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.stopped {
		o.logger.Debug("submit after stop ignored", "url", target.URL)
		return 0
	}

	gen := o.clock.Next()
	if o.cancel != nil {
		o.cancel()
	}
	ctx, cancel := context.WithCancel(o.base)
	o.cancel = cancel

	o.state = State{
		Status:     Loading,
		Generation: gen,
		Descriptor: target.Descriptor,
	}
	o.broadcastLocked()

	reqID := o.ids.Generate()
	o.logger.Debug("fetch submitted",
		"request_id", reqID,
		"generation", gen,
		"descriptor", target.Descriptor.String())

	go o.fetchProducts(ctx, gen, reqID, target)
	return gen
}

func (o *Orchestrator) fetchProducts(ctx context.Context, gen int64, reqID string, target queryurl.Target) {
	products, err := o.source.Products(ctx, target)
	ev := Event{
		Type:       EventProducts,
		Generation: gen,
		RequestID:  reqID,
		URL:        target.URL,
		Products:   products,
		Err:        err,
	}
	if !o.queue.Enqueue(ev) {
		o.logger.Debug("completion after stop dropped", "request_id", reqID, "generation", gen)
	}
}

// LoadCategories starts the category-list fetch. Only the first call per
// orchestrator does anything.
func (o *Orchestrator) LoadCategories() {
	o.catOnce.Do(func() {
		reqID := o.ids.Generate()
		go func() {
			names, err := o.source.Categories(o.base)
			ev := Event{
				Type:       EventCategories,
				RequestID:  reqID,
				Categories: names,
				Err:        err,
			}
			if !o.queue.Enqueue(ev) {
				o.logger.Debug("categories after stop dropped", "request_id", reqID)
			}
		}()
	})
}

// Run applies completions until ctx is done or Stop is called.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Debug("fetch loop starting")

	for {
		if ev, ok := o.queue.TryDequeue(); ok {
			o.apply(ev)
			continue
		}

		select {
		case <-ctx.Done():
			o.logger.Debug("fetch loop stopping: context cancelled")
			o.Stop()
			return ctx.Err()

		case _, open := <-o.queue.Wait():
			if !open && o.queue.Len() == 0 {
				o.logger.Debug("fetch loop stopping: queue closed")
				return nil
			}
		}
	}
}

// apply commits one completion.
// CRITICAL: called only from the Run goroutine.
func (o *Orchestrator) apply(ev Event) {
	switch ev.Type {
	case EventProducts:
		o.applyProducts(ev)
	case EventCategories:
		o.applyCategories(ev)
	default:
		o.logger.Error("unknown event type", "type", int(ev.Type))
	}
}

func (o *Orchestrator) applyProducts(ev Event) {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		o.logger.Debug("completion after stop discarded", "request_id", ev.RequestID, "generation", ev.Generation)
		return
	}
	if current := o.clock.Current(); ev.Generation != current {
		o.mu.Unlock()
		o.logger.Debug("stale completion discarded",
			"request_id", ev.RequestID,
			"generation", ev.Generation,
			"current", current)
		return
	}

	if ev.Err != nil {
		o.state.Status = Failure
		o.state.Products = nil
		o.state.Message = UserMessage
	} else {
		products := ev.Products
		if products == nil {
			products = []catalog.Product{}
		}
		o.state.Status = Success
		o.state.Products = products
		o.state.Message = ""
	}
	o.cancel = nil
	o.broadcastLocked()
	st := o.state
	o.mu.Unlock()

	if ev.Err != nil {
		o.logger.Warn("product fetch failed", "error", &RequestError{
			Type:       ev.Type,
			RequestID:  ev.RequestID,
			Generation: ev.Generation,
			URL:        ev.URL,
			Err:        ev.Err,
		})
	} else {
		o.logger.Debug("products committed",
			"request_id", ev.RequestID,
			"generation", ev.Generation,
			"count", len(st.Products))
	}

	if o.notify != nil {
		o.notify(st)
	}
}

func (o *Orchestrator) applyCategories(ev Event) {
	if ev.Err != nil {
		o.logger.Warn("category list fetch failed", "error", &RequestError{
			Type:      ev.Type,
			RequestID: ev.RequestID,
			Err:       ev.Err,
		})
		return
	}

	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.categories = catalog.CategoryList(ev.Categories)
	o.broadcastLocked()
	st := o.state
	n := len(o.categories)
	o.mu.Unlock()

	o.logger.Debug("categories committed", "request_id", ev.RequestID, "count", n)

	if o.notify != nil {
		o.notify(st)
	}
}

// State returns a snapshot of the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Categories returns the category list with the "all" sentinel first.
// Before the list has loaded it contains only the sentinel.
func (o *Orchestrator) Categories() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.categories...)
}

// Await blocks until generation gen reaches a terminal status or is
// superseded by a newer submit, and returns the state at that point.
// Returns ErrStopped if the orchestrator is stopped first.
func (o *Orchestrator) Await(ctx context.Context, gen int64) (State, error) {
	for {
		o.mu.Lock()
		st, ch, stopped := o.state, o.changed, o.stopped
		o.mu.Unlock()

		if st.Generation > gen || (st.Generation == gen && st.Status.Terminal()) {
			return st, nil
		}
		if stopped {
			return st, ErrStopped
		}

		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-ch:
		}
	}
}

// Stop tears the orchestrator down. Pending completions are voided and no
// further state changes happen. Safe to call more than once.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.broadcastLocked()
	o.mu.Unlock()

	o.baseCancel()
	o.queue.Close()
}

// broadcastLocked wakes every Await. Caller must hold o.mu.
func (o *Orchestrator) broadcastLocked() {
	close(o.changed)
	o.changed = make(chan struct{})
}
