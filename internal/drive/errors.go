package drive

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrRequestFailed matches every *RequestError.
var ErrRequestFailed = errors.New("drive request failed")

// RequestError is a non-2xx Drive response.
type RequestError struct {
	Op         string
	StatusCode int
	Status     string
	// Message is the API's error message, when the body carried one.
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("drive %s: %s: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("drive %s: %s", e.Op, e.Status)
}

// Is makes errors.Is(err, ErrRequestFailed) true.
func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}
