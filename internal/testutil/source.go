package testutil

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/roach88/shelf/internal/catalog"
	"github.com/roach88/shelf/internal/queryurl"
)

// GatedSource is a fetch.Source whose product calls block until the test
// releases them, so tests decide the order responses arrive in.
//
// Category calls are not gated: they return CategoryNames/CategoryErr
// immediately.
//
// Thread-safety: GatedSource is safe for concurrent use.
type GatedSource struct {
	// HonorCancel makes a blocked call return ctx.Err() when its context is
	// canceled. By default calls ignore cancellation and wait for release,
	// which models a transfer that cannot be aborted.
	HonorCancel bool

	CategoryNames []string
	CategoryErr   error

	arrived       chan *Call
	mu            sync.Mutex
	calls         []*Call
	categoryCalls atomic.Int32
}

// Call is one pending product request.
type Call struct {
	Target queryurl.Target
	reply  chan reply
}

type reply struct {
	products []catalog.Product
	err      error
}

// NewGatedSource creates a source with no pending calls.
func NewGatedSource() *GatedSource {
	return &GatedSource{arrived: make(chan *Call, 64)}
}

// Products implements fetch.Source.
func (g *GatedSource) Products(ctx context.Context, target queryurl.Target) ([]catalog.Product, error) {
	c := &Call{Target: target, reply: make(chan reply, 1)}

	g.mu.Lock()
	g.calls = append(g.calls, c)
	g.mu.Unlock()
	g.arrived <- c

	if g.HonorCancel {
		select {
		case r := <-c.reply:
			return r.products, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	r := <-c.reply
	return r.products, r.err
}

// Categories implements fetch.Source.
func (g *GatedSource) Categories(ctx context.Context) ([]string, error) {
	g.categoryCalls.Add(1)
	if g.CategoryErr != nil {
		return nil, g.CategoryErr
	}
	return g.CategoryNames, nil
}

// Next waits for the next product call to arrive. Fails the test after
// one second.
func (g *GatedSource) Next(t testing.TB) *Call {
	t.Helper()
	select {
	case c := <-g.arrived:
		return c
	case <-time.After(time.Second):
		t.Fatal("GatedSource: no product call arrived")
		return nil
	}
}

// Calls returns the number of product calls made so far.
func (g *GatedSource) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

// CategoryCalls returns the number of category calls made so far.
func (g *GatedSource) CategoryCalls() int {
	return int(g.categoryCalls.Load())
}

// Respond releases the call with products.
func (c *Call) Respond(products ...catalog.Product) {
	if products == nil {
		products = []catalog.Product{}
	}
	c.reply <- reply{products: products}
}

// Fail releases the call with err.
func (c *Call) Fail(err error) {
	c.reply <- reply{err: err}
}
