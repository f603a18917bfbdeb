package fetch

import (
	"errors"
	"fmt"
)

// ErrStopped is returned by Await once the orchestrator has been stopped.
var ErrStopped = errors.New("fetch orchestrator stopped")

// RequestError describes a failed request for diagnostics.
// It is logged, never shown to the user.
type RequestError struct {
	Type       EventType
	RequestID  string
	Generation int64
	URL        string
	Err        error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s request %s (gen=%d, url=%s): %v", e.Type, e.RequestID, e.Generation, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
