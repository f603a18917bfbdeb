package fetch

import (
	"github.com/roach88/shelf/internal/catalog"
	"github.com/roach88/shelf/internal/query"
)

// UserMessage is the only failure text ever shown for a product fetch.
// The underlying cause is logged, not displayed.
const UserMessage = "Could not load products. Please try again later."

// Status is the fetch lifecycle phase.
type Status int

const (
	Idle Status = iota
	Loading
	Success
	Failure
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a generation's lifecycle.
func (s Status) Terminal() bool {
	return s == Success || s == Failure
}

// State is a snapshot of the orchestrator.
//
// Products is set only on Success and always belongs to Descriptor.
// Message is set only on Failure.
type State struct {
	Status     Status
	Products   []catalog.Product
	Message    string
	Generation int64
	Descriptor query.Descriptor
}

// Loading reports whether a request is outstanding.
func (s State) Loading() bool {
	return s.Status == Loading
}

// Err returns the failure message, or "" outside Failure.
func (s State) Err() string {
	if s.Status == Failure {
		return s.Message
	}
	return ""
}
