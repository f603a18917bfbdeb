package fetch

import (
	"sync"

	"github.com/roach88/shelf/internal/catalog"
)

// EventType distinguishes completion kinds.
type EventType int

const (
	// EventProducts is a product-page completion.
	EventProducts EventType = iota + 1
	// EventCategories is a category-list completion.
	EventCategories
)

func (t EventType) String() string {
	switch t {
	case EventProducts:
		return "products"
	case EventCategories:
		return "categories"
	default:
		return "unknown"
	}
}

// Event is a request completion waiting to be applied by Run.
type Event struct {
	Type       EventType
	Generation int64
	RequestID  string
	URL        string
	Products   []catalog.Product
	Categories []string
	Err        error
}

// eventQueue is a thread-safe FIFO queue of completions.
//
// Request goroutines enqueue; Run dequeues. The signal channel lets Run
// wait on the queue and a context in the same select.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // buffered, size 1
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 8),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	// Non-blocking; the buffer of 1 coalesces signals
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front event without blocking.
// Returns (Event{}, false) if the queue is empty.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	e := q.events[0]

	// Release the product slice held by the vacated slot
	q.events[0] = Event{}

	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Wait returns a channel that signals when events may be available.
// The channel is closed when the queue is closed.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close stops accepting events and wakes any waiter.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
