package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/shelf/internal/catalogapi"
	"github.com/roach88/shelf/internal/config"
	"github.com/roach88/shelf/internal/ledger"
	"github.com/roach88/shelf/internal/store"
	"github.com/roach88/shelf/internal/store/badgerkv"
)

// client builds the catalog client from the resolved configuration.
func (o *RootOptions) client() *catalogapi.Client {
	return catalogapi.New(o.Config.ClientConfig(o.Logger))
}

// openSlot opens the configured store and returns the cart slot plus a
// close function. The close function is never nil.
func (o *RootOptions) openSlot(ctx context.Context) (ledger.Slot, func() error, error) {
	cfg := o.Config
	noop := func() error { return nil }

	switch cfg.Store {
	case config.StoreMemory:
		return ledger.NewMemorySlot(cfg.CartKey), noop, nil

	case config.StoreBadger:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, noop, fmt.Errorf("create data dir: %w", err)
		}
		bcfg := badgerkv.DefaultConfig(cfg.BadgerPath())
		if o.Verbose {
			bcfg.Logger = o.Logger
		}
		kv, err := badgerkv.Open(bcfg)
		if err != nil {
			return nil, noop, err
		}
		o.Logger.Debug("cart store opened", "backend", cfg.Store, "path", cfg.BadgerPath())
		return kv.Slot(cfg.CartKey), kv.Close, nil

	default:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, noop, fmt.Errorf("create data dir: %w", err)
		}
		st, err := store.Open(cfg.SQLitePath())
		if err != nil {
			return nil, noop, err
		}
		if stats, err := st.Stats(ctx); err == nil {
			o.Logger.Debug("cart store opened", "backend", cfg.Store, "path", cfg.SQLitePath(),
				"slots", stats.Slots, "bytes", stats.Bytes, "max_revision", stats.MaxRevision,
				"last_write", stats.LastWrite)
		}
		return st.Slot(cfg.CartKey), st.Close, nil
	}
}

// openCart opens the store and loads the cart. Storage failures never
// stop a command: a store that cannot be opened leaves the cart in memory
// only, and a cart that cannot be loaded starts empty. Both are logged.
// The close function is never nil.
func (o *RootOptions) openCart(ctx context.Context) (*ledger.Ledger, func() error) {
	slot, closeFn, err := o.openSlot(ctx)
	if err != nil {
		o.Logger.Warn("cart store unavailable, changes will not be saved", "backend", o.Config.Store, "error", err)
		return ledger.New(nil, nil, ledger.WithLogger(o.Logger)), closeFn
	}

	cart, err := ledger.Open(ctx, slot, ledger.WithLogger(o.Logger))
	if err != nil {
		o.Logger.Warn("cart could not be loaded, starting empty", "key", slot.Key(), "error", err)
	}
	return cart, closeFn
}
