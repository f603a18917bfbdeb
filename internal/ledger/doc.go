// Package ledger maintains the shopping cart and owns its persistence.
//
// The Ledger is the only reader and writer of the cart slot. It is loaded
// once at startup and the full line set is written back after every
// mutation.
//
// # Error Policy
//
// Persistence is best-effort. Load and save failures are returned as
// *StorageError so the composing layer can decide what to do with them;
// the ledger itself never refuses a mutation because a write failed, and a
// failed load always yields an empty, usable ledger.
//
// # Persisted Format
//
// A JSON array of {id, title, price, thumbnail, qty} objects, checked against
// the embedded CUE schema (cart.cue) before it is accepted.
package ledger
