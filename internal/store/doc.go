// Package store provides SQLite-backed durable key/value slots.
//
// Each slot is one row in the slots table holding an opaque value and a
// revision that increments on every write. The cart ledger binds to a
// single slot through Store.Slot.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Schema changes are tracked with PRAGMA user_version.
package store
