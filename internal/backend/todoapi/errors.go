package todoapi

import (
	"errors"
	"fmt"
)

// ErrSessionExpired indicates the server rejected the stored token.
// The session has already been cleared by the time callers see this.
var ErrSessionExpired = errors.New("session expired (run: todo login)")

// ErrInvalidCredentials indicates a failed credential exchange.
var ErrInvalidCredentials = errors.New("invalid email or password")

// APIError is a non-2xx response with the server's message attached.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned status %d", e.Status)
}

// ValidationError reports a payload rejected client-side, before
// submission.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
