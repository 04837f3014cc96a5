package commands

import (
	"errors"
	"fmt"
	"io"

	"todo/internal/backend/todoapi"
	"todo/internal/exitcode"
)

// writeServiceError prints err the way the CLI reports service
// failures and returns the matching exit code. Rejected sessions and
// credentials map to AuthError, anything the user can fix maps to
// UserError, everything else is a backend error.
func writeServiceError(errOut io.Writer, err error) int {
	if errors.Is(err, todoapi.ErrSessionExpired) || errors.Is(err, todoapi.ErrInvalidCredentials) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	var verr *todoapi.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	var apiErr *todoapi.APIError
	if errors.As(err, &apiErr) && apiErr.Status < 500 {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}
