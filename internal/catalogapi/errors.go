package catalogapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidJSON means the response body was not JSON at all.
	ErrInvalidJSON = errors.New("response is not valid JSON")

	// ErrNotProduct means a single-product response was not a product object.
	ErrNotProduct = errors.New("response is not a product")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog returned %d %s for %s", e.Code, http.StatusText(e.Code), e.URL)
}

// IsNotFound reports whether err is a 404 StatusError.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}
