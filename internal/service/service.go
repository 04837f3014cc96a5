// Package service defines the backend-agnostic interface for auth and task operations.
package service

import "context"

// Service defines the interface for remote backend operations.
// All Todo API calls go through this interface.
// Commands never build HTTP requests directly.
type Service interface {
	// Authenticated reports whether a stored session is available.
	// Local state only; the server may still reject the token.
	Authenticated() bool

	// Register creates a new account and returns it.
	Register(ctx context.Context, username, email, password string) (User, error)

	// Login exchanges credentials for a session token.
	// On success the session is persisted; on failure nothing is stored.
	Login(ctx context.Context, email, password string) (User, error)

	// Logout notifies the server (best effort) and always clears the
	// local session, even when the server call fails.
	Logout(ctx context.Context) error

	// Me returns the server's view of the authenticated user.
	Me(ctx context.Context) (User, error)

	// ListTasks returns all tasks owned by the authenticated user,
	// sorted by creation time ascending (ties broken by ID) so that
	// display numbers are stable across consecutive calls.
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a new task. description may be empty.
	CreateTask(ctx context.Context, title, description string) (Task, error)

	// UpdateTask applies a partial update to a task.
	UpdateTask(ctx context.Context, id string, upd TaskUpdate) (Task, error)

	// ToggleTask flips a task's completion state and returns the new state.
	ToggleTask(ctx context.Context, id string) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id string) error
}
