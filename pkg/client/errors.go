package client

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response. Message is the server's user-facing text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("practice api: %d %s", e.Status, e.Message)
}

// IsUnauthorized reports an expired or missing session; callers should
// log the user out.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsConflict reports a practice that was already submitted.
func IsConflict(err error) bool {
	return hasStatus(err, http.StatusConflict)
}

func IsRateLimited(err error) bool {
	return hasStatus(err, http.StatusTooManyRequests)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
