package store

import (
	"context"
	"fmt"
)

// Put stores value under key and returns the slot's new revision.
//
// The first write creates the row at revision 1; each later write replaces
// the value, increments the revision and stamps updated_at.
func (s *Store) Put(ctx context.Context, key string, value []byte) (revision int64, err error) {
	if key == "" {
		return 0, fmt.Errorf("put: empty key")
	}
	if value == nil {
		value = []byte{}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("put %q: begin tx: %w", key, err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO slots (key, value, revision, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			revision = slots.revision + 1,
			updated_at = excluded.updated_at
	`, key, value, s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("put %q: upsert: %w", key, err)
	}

	if err := tx.QueryRowContext(ctx,
		"SELECT revision FROM slots WHERE key = ?", key,
	).Scan(&revision); err != nil {
		return 0, fmt.Errorf("put %q: read revision: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("put %q: commit: %w", key, err)
	}

	return revision, nil
}
