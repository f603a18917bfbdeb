package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/shelf/internal/ledger"
)

// Get returns the value and revision stored under key.
// Returns ledger.ErrSlotEmpty if the key has never been written.
func (s *Store) Get(ctx context.Context, key string) ([]byte, int64, error) {
	var (
		value    []byte
		revision int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT value, revision FROM slots WHERE key = ?", key,
	).Scan(&value, &revision)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, ledger.ErrSlotEmpty
	}
	if err != nil {
		return nil, 0, fmt.Errorf("get %q: %w", key, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, revision, nil
}

// Stats summarizes the store's contents.
type Stats struct {
	Slots       int       `json:"slots"`
	Bytes       int64     `json:"bytes"`
	MaxRevision int64     `json:"max_revision"`
	LastWrite   time.Time `json:"last_write"` // zero if never written
}

// Stats returns slot count, total value size, the highest revision and the
// time of the most recent Put.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var (
		st     Stats
		lastMs int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(LENGTH(value)), 0), COALESCE(MAX(revision), 0),
			COALESCE(MAX(updated_at), 0)
		FROM slots
	`).Scan(&st.Slots, &st.Bytes, &st.MaxRevision, &lastMs)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	if lastMs > 0 {
		st.LastWrite = time.UnixMilli(lastMs).UTC()
	}
	return st, nil
}
