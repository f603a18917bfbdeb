package query

import (
	"errors"
	"fmt"
)

// ValidationError reports a descriptor field that cannot be sent.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Message)
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks that the descriptor can be turned into a request.
//
// Limit and skip are only checked for range, not for membership in
// Limits/Skips: those lists describe the UI choices, not the remote API.
func (d Descriptor) Validate() error {
	if d.Category == "" {
		return &ValidationError{Field: "category", Value: d.Category, Message: "must not be empty"}
	}
	if d.Limit <= 0 {
		return &ValidationError{Field: "limit", Value: d.Limit, Message: "must be positive"}
	}
	if d.Skip < 0 {
		return &ValidationError{Field: "skip", Value: d.Skip, Message: "must not be negative"}
	}
	if !d.SortBy.Valid() {
		return &ValidationError{Field: "sortBy", Value: d.SortBy, Message: "must be one of title, price, rating"}
	}
	if !d.Order.Valid() {
		return &ValidationError{Field: "order", Value: d.Order, Message: "must be asc or desc"}
	}
	return nil
}

// Next returns the element after cur in choices, wrapping around.
// If cur is not present the first element is returned.
func Next[T comparable](choices []T, cur T) T {
	for i, c := range choices {
		if c == cur {
			return choices[(i+1)%len(choices)]
		}
	}
	return choices[0]
}

// Prev returns the element before cur in choices, wrapping around.
// If cur is not present the last element is returned.
func Prev[T comparable](choices []T, cur T) T {
	for i, c := range choices {
		if c == cur {
			return choices[(i-1+len(choices))%len(choices)]
		}
	}
	return choices[len(choices)-1]
}
