package ledger

import (
	"errors"
	"fmt"
)

// ErrSlotEmpty is returned by Slot.Read when nothing has been stored yet.
var ErrSlotEmpty = errors.New("slot empty")

// ErrorKind categorizes storage failures.
type ErrorKind string

const (
	// KindUnavailable means the slot could not be read or written.
	KindUnavailable ErrorKind = "UNAVAILABLE"

	// KindMalformed means stored data is not a well-formed cart.
	KindMalformed ErrorKind = "MALFORMED"
)

// StorageError reports a failed cart load or save.
type StorageError struct {
	Kind ErrorKind
	Op   string // "load" or "save"
	Key  string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("cart %s (key=%s): %s: %v", e.Op, e.Key, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err is a StorageError for bad stored data.
func IsMalformed(err error) bool {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Kind == KindMalformed
	}
	return false
}

// IsUnavailable reports whether err is a StorageError for an unreachable slot.
func IsUnavailable(err error) bool {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Kind == KindUnavailable
	}
	return false
}
