package todoapi

import (
	"bytes"
	"encoding/json"
	"time"

	"todo/internal/service"
)

// wireID tolerates both string and numeric JSON ids; the client keys
// everything by string.
type wireID string

func (id *wireID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = wireID(n.String())
	return nil
}

type wireUser struct {
	ID       wireID `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u wireUser) isZero() bool {
	return u.ID == "" && u.Username == "" && u.Email == ""
}

func (u wireUser) toUser() service.User {
	return service.User{
		ID:       string(u.ID),
		Username: u.Username,
		Email:    u.Email,
	}
}

type wireTask struct {
	ID          wireID    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (t wireTask) toTask() service.Task {
	return service.Task{
		ID:          string(t.ID),
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
	}
}

// authResponse covers both response shapes the auth endpoints use:
// an envelope {token, user:{...}} and a bare account object.
type authResponse struct {
	Token string   `json:"token"`
	User  wireUser `json:"user"`
	wireUser
}

func (r authResponse) user() wireUser {
	if !r.User.isZero() {
		return r.User
	}
	return r.wireUser
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (r errorResponse) message() string {
	if r.Error != "" {
		return r.Error
	}
	return r.Message
}

// Request payloads. Validate tags enforce the contract limits before
// anything reaches the wire: title at most 200 characters, description
// at most 1000.
type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type createTaskRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=1000"`
}

type updateTaskRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}
