package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"todo/internal/session"
)

// FakeBackend is an in-memory Todo API server for HTTP-level tests.
// It serves the exact REST contract with HS256 tokens signed by the
// development key and per-user task scoping. Requests are counted so
// tests can assert what reached the wire.
type FakeBackend struct {
	mu       sync.Mutex
	users    map[string]*backendUser // keyed by email
	tasks    []*backendTask
	nextID   int
	clock    time.Time
	requests map[string]int
	server   *httptest.Server

	// Latency delays every request, for timeout tests.
	Latency time.Duration

	// FailLogout makes POST /api/auth/logout return 500.
	FailLogout bool
}

type backendUser struct {
	ID       string
	Username string
	Email    string
	Password string
}

type backendTask struct {
	ID          int
	Owner       string
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
}

// NewFakeBackend starts the server and registers its shutdown with t.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	b := &FakeBackend{
		users:    make(map[string]*backendUser),
		nextID:   1,
		clock:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		requests: make(map[string]int),
	}
	b.server = httptest.NewServer(b.router())
	t.Cleanup(b.server.Close)
	return b
}

// URL returns the server's base URL.
func (b *FakeBackend) URL() string {
	return b.server.URL
}

// AddUser registers a user directly, bypassing the register endpoint.
func (b *FakeBackend) AddUser(username, email, password string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := uuid.New().String()
	b.users[email] = &backendUser{ID: id, Username: username, Email: email, Password: password}
	return id
}

// TokenFor signs a 24h token for the given user ID with the
// development key.
func (b *FakeBackend) TokenFor(userID string) string {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(now),
	})
	signed, err := tok.SignedString([]byte(session.DevSharedSecret))
	if err != nil {
		panic(err)
	}
	return signed
}

// RequestCount returns how many requests hit method+path, e.g.
// ("GET", "/api/tasks/").
func (b *FakeBackend) RequestCount(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[method+" "+path]
}

// TaskCount returns the number of stored tasks across all users.
func (b *FakeBackend) TaskCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tasks)
}

func (b *FakeBackend) router() http.Handler {
	r := chi.NewRouter()
	r.Use(b.observe)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", b.handleRegister)
		r.Post("/login", b.handleLogin)
		r.Group(func(r chi.Router) {
			r.Use(b.requireAuth)
			r.Get("/me", b.handleMe)
			r.Post("/logout", b.handleLogout)
		})
	})

	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(b.requireAuth)
		r.Get("/", b.handleListTasks)
		r.Post("/", b.handleCreateTask)
		r.Put("/{id}", b.handleUpdateTask)
		r.Patch("/{id}/toggle", b.handleToggleTask)
		r.Delete("/{id}", b.handleDeleteTask)
	})

	return r
}

// observe applies the configured latency and counts the request.
func (b *FakeBackend) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		delay := b.Latency
		b.requests[r.Method+" "+r.URL.Path]++
		b.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		next.ServeHTTP(w, r)
	})
}

type userIDKey struct{}

// requireAuth validates the bearer token and puts the subject user ID
// on the request context.
func (b *FakeBackend) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "Bearer "
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, prefix) {
			writeJSONError(w, http.StatusUnauthorized, "missing token")
			return
		}

		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(strings.TrimPrefix(auth, prefix), claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(session.DevSharedSecret), nil
		})
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey{}, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestUser(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey{}).(string)
	return id
}

func (b *FakeBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "username, email and password required")
		return
	}

	b.mu.Lock()
	if _, exists := b.users[req.Email]; exists {
		b.mu.Unlock()
		writeJSONError(w, http.StatusConflict, "email already registered")
		return
	}
	user := &backendUser{
		ID:       uuid.New().String(),
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	b.users[req.Email] = user
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"token": b.TokenFor(user.ID),
		"user":  userJSON(user),
	})
}

func (b *FakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b.mu.Lock()
	user, ok := b.users[req.Email]
	b.mu.Unlock()
	if !ok || user.Password != req.Password {
		writeJSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": b.TokenFor(user.ID),
		"user":  userJSON(user),
	})
}

func (b *FakeBackend) handleMe(w http.ResponseWriter, r *http.Request) {
	userID := requestUser(r)

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.ID == userID {
			writeJSON(w, http.StatusOK, userJSON(u))
			return
		}
	}
	writeJSONError(w, http.StatusUnauthorized, "unknown user")
}

func (b *FakeBackend) handleLogout(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	fail := b.FailLogout
	b.mu.Unlock()
	if fail {
		writeJSONError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *FakeBackend) handleListTasks(w http.ResponseWriter, r *http.Request) {
	userID := requestUser(r)

	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]map[string]any, 0)
	for _, t := range b.tasks {
		if t.Owner == userID {
			out = append(out, taskJSON(t))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *FakeBackend) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || len(req.Title) > 200 {
		writeJSONError(w, http.StatusBadRequest, "invalid title")
		return
	}

	b.mu.Lock()
	task := &backendTask{
		ID:          b.nextID,
		Owner:       requestUser(r),
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   b.clock,
	}
	b.nextID++
	b.clock = b.clock.Add(time.Second)
	b.tasks = append(b.tasks, task)
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, taskJSON(task))
}

func (b *FakeBackend) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	task := b.findTask(r)
	if task == nil {
		writeJSONError(w, http.StatusNotFound, "task not found")
		return
	}
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	writeJSON(w, http.StatusOK, taskJSON(task))
}

func (b *FakeBackend) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	task := b.findTask(r)
	if task == nil {
		writeJSONError(w, http.StatusNotFound, "task not found")
		return
	}
	task.Completed = !task.Completed
	writeJSON(w, http.StatusOK, taskJSON(task))
}

func (b *FakeBackend) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	task := b.findTask(r)
	if task == nil {
		writeJSONError(w, http.StatusNotFound, "task not found")
		return
	}
	for i, t := range b.tasks {
		if t == task {
			b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
			break
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// findTask resolves the {id} route param to the caller's task.
// Caller holds b.mu.
func (b *FakeBackend) findTask(r *http.Request) *backendTask {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return nil
	}
	owner := requestUser(r)
	for _, t := range b.tasks {
		if t.ID == id && t.Owner == owner {
			return t
		}
	}
	return nil
}

func userJSON(u *backendUser) map[string]any {
	return map[string]any{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
	}
}

// taskJSON serializes a task with a numeric id, matching backends that
// use serial keys.
func taskJSON(t *backendTask) map[string]any {
	return map[string]any{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"completed":   t.Completed,
		"createdAt":   t.CreatedAt.Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
