package store

import (
	"context"

	"github.com/roach88/shelf/internal/ledger"
)

// Slot binds a Store to one key. It implements ledger.Slot.
type Slot struct {
	store *Store
	key   string
}

var _ ledger.Slot = (*Slot)(nil)

// Slot returns the slot for key.
func (s *Store) Slot(key string) *Slot {
	return &Slot{store: s, key: key}
}

// Key implements ledger.Slot.
func (sl *Slot) Key() string { return sl.key }

// Read implements ledger.Slot.
func (sl *Slot) Read(ctx context.Context) ([]byte, error) {
	value, _, err := sl.store.Get(ctx, sl.key)
	return value, err
}

// Write implements ledger.Slot.
func (sl *Slot) Write(ctx context.Context, data []byte) error {
	_, err := sl.store.Put(ctx, sl.key, data)
	return err
}
