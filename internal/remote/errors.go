package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// codeUniqueViolation is the error code the remote service reports when an
// insert breaks a unique constraint.
const codeUniqueViolation = "23505"

// APIError is a failed remote command, carrying the HTTP status and the
// service error code when one was reported.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote error: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("remote error: status %d", e.Status)
}

// IsConflict reports whether err is a uniqueness violation.
func IsConflict(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == codeUniqueViolation || apiErr.Status == http.StatusConflict
}

// IsNotFound reports whether err is a lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
