package service

import "time"

// User represents the account behind the current session.
// Tagged because the session layer persists it verbatim.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Task represents a single task item.
type Task struct {
	ID          string
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
}

// TaskUpdate describes a partial task update. Nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
}
