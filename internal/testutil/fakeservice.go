// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"todo/internal/service"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = errors.New("not found")

// FakeService is an in-memory implementation of service.Service for
// testing. NewFakeService returns one that is already logged in.
type FakeService struct {
	mu       sync.RWMutex
	user     service.User
	tasks    []service.Task
	loggedIn bool
	clock    time.Time

	// Error injection for testing
	RegisterErr   error
	LoginErr      error
	LogoutErr     error
	MeErr         error
	ListTasksErr  error
	CreateTaskErr error
	UpdateTaskErr error
	ToggleTaskErr error
	DeleteTaskErr error

	// RegisterNoSession makes Register succeed without starting a
	// session, like a backend whose register response has no token.
	RegisterNoSession bool

	// Call counters
	LoginCalls  int
	LogoutCalls int
	ListCalls   int
}

var _ service.Service = (*FakeService)(nil)

// NewFakeService creates a FakeService logged in as a fixed user.
func NewFakeService() *FakeService {
	return &FakeService{
		user:     service.User{ID: "u1", Username: "marcus", Email: "marcus@example.com"},
		loggedIn: true,
		clock:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// SetLoggedIn overrides the session state.
func (f *FakeService) SetLoggedIn(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedIn = v
}

// AddTask appends an open task. Creation times follow insertion order.
func (f *FakeService) AddTask(id, title string) {
	f.AddTaskDetail(id, title, "", false)
}

// AddTaskDetail appends a task with full control over its fields.
func (f *FakeService) AddTaskDetail(id, title, description string, completed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.Task{
		ID:          id,
		Title:       title,
		Description: description,
		Completed:   completed,
		CreatedAt:   f.clock,
	})
	f.clock = f.clock.Add(time.Second)
}

// Tasks returns a snapshot of the stored tasks in insertion order.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.Task, len(f.tasks))
	copy(result, f.tasks)
	return result
}

// Authenticated implements service.Service.
func (f *FakeService) Authenticated() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loggedIn
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, username, email, password string) (service.User, error) {
	if f.RegisterErr != nil {
		return service.User{}, f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = service.User{ID: "u1", Username: username, Email: email}
	if !f.RegisterNoSession {
		f.loggedIn = true
	}
	return f.user, nil
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, email, password string) (service.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoginCalls++
	if f.LoginErr != nil {
		return service.User{}, f.LoginErr
	}
	f.user.Email = email
	f.loggedIn = true
	return f.user, nil
}

// Logout implements service.Service.
func (f *FakeService) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LogoutCalls++
	f.loggedIn = false
	return f.LogoutErr
}

// Me implements service.Service.
func (f *FakeService) Me(ctx context.Context) (service.User, error) {
	if f.MeErr != nil {
		return service.User{}, f.MeErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.user, nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.mu.Lock()
	f.ListCalls++
	f.mu.Unlock()
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.Task, len(f.tasks))
	copy(result, f.tasks)
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, title, description string) (service.Task, error) {
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	// Generate a simple ID
	id := strings.ToLower(strings.ReplaceAll(title, " ", "-"))
	task := service.Task{
		ID:          id,
		Title:       title,
		Description: description,
		CreatedAt:   f.clock,
	}
	f.clock = f.clock.Add(time.Second)
	f.tasks = append(f.tasks, task)
	return task, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, upd service.TaskUpdate) (service.Task, error) {
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			if upd.Title != nil {
				f.tasks[i].Title = *upd.Title
			}
			if upd.Description != nil {
				f.tasks[i].Description = *upd.Description
			}
			return f.tasks[i], nil
		}
	}
	return service.Task{}, ErrNotFound
}

// ToggleTask implements service.Service.
func (f *FakeService) ToggleTask(ctx context.Context, id string) (service.Task, error) {
	if f.ToggleTaskErr != nil {
		return service.Task{}, f.ToggleTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i].Completed = !f.tasks[i].Completed
			return f.tasks[i], nil
		}
	}
	return service.Task{}, ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
