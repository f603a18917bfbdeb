package fetch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shelf/internal/catalog"
	"github.com/roach88/shelf/internal/query"
	"github.com/roach88/shelf/internal/queryurl"
	"github.com/roach88/shelf/internal/testutil"
)

func target(t *testing.T, d query.Descriptor) queryurl.Target {
	t.Helper()
	tg, err := queryurl.NewComposer(queryurl.DefaultBaseURL).Compose(d)
	require.NoError(t, err)
	return tg
}

func withCategory(cat string) query.Descriptor {
	d := query.Default()
	d.Category = cat
	return d
}

// startOrchestrator runs o's loop for the duration of the test.
func startOrchestrator(t *testing.T, o *Orchestrator) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		o.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

// syncBuffer is a bytes.Buffer safe for a logger writing from the Run goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func await(t *testing.T, o *Orchestrator, gen int64) State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	st, err := o.Await(ctx, gen)
	require.NoError(t, err)
	return st
}

func TestOrchestrator_InitialStateIdle(t *testing.T) {
	o := New(testutil.NewGatedSource())

	st := o.State()
	assert.Equal(t, Idle, st.Status)
	assert.Equal(t, int64(0), st.Generation)
	assert.Equal(t, []string{catalog.AllCategories}, o.Categories())
}

func TestOrchestrator_SubmitEntersLoading(t *testing.T) {
	src := testutil.NewGatedSource()
	o := New(src)
	startOrchestrator(t, o)

	gen := o.Submit(target(t, query.Default()))

	st := o.State()
	assert.Equal(t, int64(1), gen)
	assert.Equal(t, Loading, st.Status)
	assert.True(t, st.Loading())
	assert.Equal(t, query.Default(), st.Descriptor)

	src.Next(t).Respond()
	await(t, o, gen)
}

func TestOrchestrator_SuccessCommitsProducts(t *testing.T) {
	src := testutil.NewGatedSource()
	o := New(src)
	startOrchestrator(t, o)

	gen := o.Submit(target(t, query.Default()))
	src.Next(t).Respond(testutil.Product(1, "beauty", "9.99"), testutil.Product(2, "beauty", "5"))

	st := await(t, o, gen)
	assert.Equal(t, Success, st.Status)
	require.Len(t, st.Products, 2)
	assert.Equal(t, int64(1), st.Products[0].ID)
	assert.Empty(t, st.Err())
}

func TestOrchestrator_EmptyResultIsSuccess(t *testing.T) {
	src := testutil.NewGatedSource()
	o := New(src)
	startOrchestrator(t, o)

	gen := o.Submit(target(t, query.Default()))
	src.Next(t).Respond()

	st := await(t, o, gen)
	assert.Equal(t, Success, st.Status)
	assert.NotNil(t, st.Products)
	assert.Empty(t, st.Products)
}

func TestOrchestrator_FailureUsesFixedMessage(t *testing.T) {
	logs := &syncBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	src := testutil.NewGatedSource()
	o := New(src, WithLogger(logger), WithRequestIDGenerator(NewFixedGenerator("req-1")))
	startOrchestrator(t, o)

	gen := o.Submit(target(t, query.Default()))
	src.Next(t).Fail(errors.New("connection reset by peer"))

	st := await(t, o, gen)
	assert.Equal(t, Failure, st.Status)
	assert.Equal(t, UserMessage, st.Message)
	assert.Equal(t, UserMessage, st.Err())
	assert.NotContains(t, st.Message, "connection reset")
	assert.Eventually(t, func() bool {
		out := logs.String()
		return strings.Contains(out, "connection reset by peer") && strings.Contains(out, "req-1")
	}, time.Second, 5*time.Millisecond)
}

func TestOrchestrator_SupersededProductsNotExposed(t *testing.T) {
	src := testutil.NewGatedSource()
	o := New(src)
	startOrchestrator(t, o)

	g1 := o.Submit(target(t, query.Default()))
	src.Next(t).Respond(testutil.Product(1, "a", "1"))
	await(t, o, g1)

	g2 := o.Submit(target(t, withCategory("b")))
	loading := o.State()
	assert.Equal(t, Loading, loading.Status)
	assert.Empty(t, loading.Products, "loading carries no products")
	src.Next(t).Fail(errors.New("boom"))

	st := await(t, o, g2)
	assert.Equal(t, Failure, st.Status)
	assert.Equal(t, "b", st.Descriptor.Category)
	assert.Empty(t, st.Products)
}

func TestOrchestrator_SubmitClearsError(t *testing.T) {
	src := testutil.NewGatedSource()
	o := New(src)
	startOrchestrator(t, o)

	g1 := o.Submit(target(t, query.Default()))
	src.Next(t).Fail(errors.New("boom"))
	await(t, o, g1)

	o.Submit(target(t, withCategory("x")))

	st := o.State()
	assert.Equal(t, Loading, st.Status)
	assert.Empty(t, st.Message)
	src.Next(t).Respond()
}

// Two submits where the first response arrives after the second: only the
// second may be committed.
func TestOrchestrator_StaleCompletionDiscarded(t *testing.T) {
	src := testutil.NewGatedSource()
	o := New(src)
	startOrchestrator(t, o)

	dA, dB := withCategory("a"), withCategory("b")
	gA := o.Submit(target(t, dA))
	callA := src.Next(t)
	gB := o.Submit(target(t, dB))
	callB := src.Next(t)

	callB.Respond(testutil.Product(2, "b", "2"))
	st := await(t, o, gB)
	require.Equal(t, Success, st.Status)

	callA.Respond(testutil.Product(1, "a", "1"))
	// Give the loop a chance to (not) apply A
	time.Sleep(30 * time.Millisecond)

	st = o.State()
	assert.Equal(t, gB, st.Generation)
	assert.Equal(t, dB, st.Descriptor)
	require.Len(t, st.Products, 1)
	assert.Equal(t, int64(2), st.Products[0].ID)
	assert.Less(t, gA, gB)
}

func TestOrchestrator_StaleFailureDiscarded(t *testing.T) {
	src := testutil.NewGatedSource()
	o := New(src)
	startOrchestrator(t, o)

	o.Submit(target(t, withCategory("a")))
	callA := src.Next(t)
	gB := o.Submit(target(t, withCategory("b")))
	callB := src.Next(t)

	callA.Fail(errors.New("late failure"))
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, Loading, o.State().Status, "stale failure must not commit")

	callB.Respond()
	assert.Equal(t, Success, await(t, o, gB).Status)
}

func TestOrchestrator_RapidSequenceOnlyLastCommits(t *testing.T) {
	src := testutil.NewGatedSource()
	var mu sync.Mutex
	var committed []int64
	o := New(src, WithNotify(func(st State) {
		mu.Lock()
		committed = append(committed, st.Generation)
		mu.Unlock()
	}))
	startOrchestrator(t, o)

	const n = 5
	calls := make([]*testutil.Call, n)
	var last int64
	for i := 0; i < n; i++ {
		last = o.Submit(target(t, withCategory(string(rune('a'+i)))))
		calls[i] = src.Next(t)
	}

	// Release in reverse order
	for i := n - 1; i >= 0; i-- {
		calls[i].Respond(testutil.Product(int64(i+1), "x", "1"))
	}

	st := await(t, o, last)
	assert.Equal(t, int64(n), st.Products[0].ID)
	time.Sleep(30 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int64{last}, committed)
}

func TestOrchestrator_SubmitCancelsPreviousRequest(t *testing.T) {
	src := testutil.NewGatedSource()
	src.HonorCancel = true
	o := New(src)
	startOrchestrator(t, o)

	o.Submit(target(t, withCategory("a")))
	src.Next(t)
	gB := o.Submit(target(t, withCategory("b")))
	callB := src.Next(t)

	// A returns context.Canceled; it is stale and ignored
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, Loading, o.State().Status)

	callB.Respond()
	assert.Equal(t, Success, await(t, o, gB).Status)
}

func TestOrchestrator_StopVoidsPending(t *testing.T) {
	src := testutil.NewGatedSource()
	notified := make(chan State, 4)
	o := New(src, WithNotify(func(st State) { notified <- st }))
	startOrchestrator(t, o)

	gen := o.Submit(target(t, query.Default()))
	call := src.Next(t)

	o.Stop()
	call.Respond(testutil.Product(1, "a", "1"))
	time.Sleep(30 * time.Millisecond)

	st := o.State()
	assert.Equal(t, Loading, st.Status)
	assert.Empty(t, st.Products)
	assert.Empty(t, notified)

	_, err := o.Await(context.Background(), gen)
	assert.ErrorIs(t, err, ErrStopped)

	assert.Equal(t, int64(0), o.Submit(target(t, query.Default())), "submit after stop is ignored")
	o.Stop() // idempotent
}

func TestOrchestrator_RunReturnsAfterStop(t *testing.T) {
	o := New(testutil.NewGatedSource())
	done := make(chan error, 1)
	go func() { done <- o.Run(context.Background()) }()

	o.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestOrchestrator_RunStopsOnContextCancel(t *testing.T) {
	o := New(testutil.NewGatedSource())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, int64(0), o.Submit(target(t, query.Default())))
}

func TestOrchestrator_AwaitReturnsWhenSuperseded(t *testing.T) {
	src := testutil.NewGatedSource()
	o := New(src)
	startOrchestrator(t, o)

	g1 := o.Submit(target(t, withCategory("a")))
	src.Next(t)

	result := make(chan State, 1)
	go func() {
		st, _ := o.Await(context.Background(), g1)
		result <- st
	}()

	g2 := o.Submit(target(t, withCategory("b")))

	select {
	case st := <-result:
		assert.Equal(t, g2, st.Generation)
	case <-time.After(time.Second):
		t.Fatal("Await did not return after supersession")
	}
	src.Next(t).Respond()
}

func TestOrchestrator_AwaitContextTimeout(t *testing.T) {
	src := testutil.NewGatedSource()
	o := New(src)
	startOrchestrator(t, o)

	gen := o.Submit(target(t, query.Default()))
	call := src.Next(t)
	defer call.Respond()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := o.Await(ctx, gen)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOrchestrator_LoadCategoriesOnce(t *testing.T) {
	src := testutil.NewGatedSource()
	src.CategoryNames = []string{"beauty", "groceries", "beauty"}
	notified := make(chan State, 4)
	o := New(src, WithNotify(func(st State) { notified <- st }))
	startOrchestrator(t, o)

	o.LoadCategories()
	o.LoadCategories()
	o.LoadCategories()

	select {
	case <-notified:
	case <-time.After(time.Second):
		t.Fatal("categories never committed")
	}

	assert.Equal(t, []string{"all", "beauty", "groceries"}, o.Categories())
	assert.Equal(t, 1, src.CategoryCalls())
}

func TestOrchestrator_CategoryFailureIsSilent(t *testing.T) {
	logs := &syncBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, nil))
	src := testutil.NewGatedSource()
	src.CategoryErr = errors.New("dns failure")
	o := New(src, WithLogger(logger))
	startOrchestrator(t, o)

	o.LoadCategories()
	assert.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "dns failure")
	}, time.Second, 5*time.Millisecond)

	st := o.State()
	assert.Equal(t, Idle, st.Status)
	assert.Empty(t, st.Message)
	assert.Equal(t, []string{"all"}, o.Categories())
}
