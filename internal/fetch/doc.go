// Package fetch implements the product fetch orchestrator.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// Request goroutines never touch state. Each one performs its network call
// and enqueues a completion event stamped with the generation it was issued
// under. Run is the only goroutine that commits completions to State.
//
// Generations:
// Every Submit takes the next value from a monotonic Clock. A completion is
// committed only if its generation is still the clock's current value, so
// for any burst of submits only the last one can ever reach State,
// regardless of the order responses arrive in. Submit and commit take the
// same mutex, which makes "new descriptor issued" and "older requests are
// stale" a single step from the point of view of any completion.
//
// Teardown:
// Stop marks the orchestrator stopped, cancels the in-flight request and
// closes the queue. Completions that arrive afterwards are dropped without
// an error or a state update.
//
// Categories:
// The category list is a sibling one-shot fetch (LoadCategories) applied
// through the same loop. Its failure is logged and never reaches State.
package fetch
