// Package query defines the descriptor that fully determines one outbound
// catalog query.
//
// A Descriptor is an immutable, comparable value. Two descriptors that are
// == produce the same request (see package queryurl), so callers can detect
// redundant fetches with a plain equality check.
//
// Descriptors are recomputed from the current inputs on every change and are
// never cached. Validation is a pure function with no side effects.
package query
