package ledger

import (
	"context"
	"sync"
)

// DefaultKey is the slot key the cart is stored under.
const DefaultKey = "cart"

// Slot is one durable key/value cell.
//
// Read returns ErrSlotEmpty when nothing has been written under the key.
// Implementations live in package store (SQLite) and store/badgerkv.
type Slot interface {
	Key() string
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// MemorySlot is an in-process Slot. ReadErr and WriteErr, when set, are
// returned instead of touching the data; tests use them to simulate an
// unavailable store.
type MemorySlot struct {
	mu       sync.Mutex
	key      string
	data     []byte
	writes   int
	ReadErr  error
	WriteErr error
}

// NewMemorySlot creates an empty in-memory slot.
func NewMemorySlot(key string) *MemorySlot {
	return &MemorySlot{key: key}
}

// Key implements Slot.
func (s *MemorySlot) Key() string { return s.key }

// Read implements Slot.
func (s *MemorySlot) Read(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	if s.data == nil {
		return nil, ErrSlotEmpty
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

// Write implements Slot.
func (s *MemorySlot) Write(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.data = make([]byte, len(data))
	copy(s.data, data)
	s.writes++
	return nil
}

// Set replaces the stored bytes directly, bypassing WriteErr.
func (s *MemorySlot) Set(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
}

// Bytes returns the stored bytes (nil if never written).
func (s *MemorySlot) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Writes returns the number of successful writes.
func (s *MemorySlot) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
