// Package todoapi implements the service.Service interface against the
// Todo REST API.
package todoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"todo/internal/config"
	"todo/internal/logging"
	"todo/internal/service"
	"todo/internal/session"
)

// Client implements service.Service over HTTP. Protected endpoints go
// through an authenticated http.Client whose transport attaches the
// bearer token and clears the session on 401; register and login use a
// plain client.
type Client struct {
	base     string
	sess     *session.Manager
	plain    *http.Client
	authed   *http.Client
	validate *validator.Validate
	log      *zap.Logger
	timeout  time.Duration
}

var _ service.Service = (*Client)(nil)

// New creates a client for cfg's base URL. The stored session is
// restored immediately and trusted until the first API call says
// otherwise.
func New(cfg *config.Config) (*Client, error) {
	logger := logging.New(cfg.Debug)
	sess := session.NewManager(session.NewFileStore(cfg.SessionPath()), logger)
	if err := sess.Restore(); err != nil {
		return nil, err
	}
	return NewWithManager(cfg, sess, logger)
}

// NewWithManager creates a client around an existing session manager.
func NewWithManager(cfg *config.Config, sess *session.Manager, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid API base URL: %s", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	return &Client{
		base:     base,
		sess:     sess,
		plain:    &http.Client{Transport: newPlainTransport(logger, nil)},
		authed:   &http.Client{Transport: newAuthTransport(sess, logger, nil)},
		validate: validator.New(),
		log:      logger,
		timeout:  timeout,
	}, nil
}

// Authenticated implements service.Service.
func (c *Client) Authenticated() bool {
	return c.sess.Authenticated()
}

// Register implements service.Service. When the server issues a token
// alongside the new account, the session is established immediately.
func (c *Client) Register(ctx context.Context, username, email, password string) (service.User, error) {
	req := registerRequest{Username: username, Email: email, Password: password}
	if err := c.validatePayload(req); err != nil {
		return service.User{}, err
	}

	var resp authResponse
	if err := c.do(ctx, c.plain, http.MethodPost, "/api/auth/register", req, &resp); err != nil {
		return service.User{}, err
	}

	user := resp.user().toUser()
	if user.Username == "" && user.Email == "" {
		user = service.User{Username: username, Email: email}
	}
	if resp.Token != "" {
		if err := c.sess.Establish(resp.Token, user); err != nil {
			return service.User{}, err
		}
	}
	return user, nil
}

// Login implements service.Service. On success the session is
// persisted; on failure nothing is stored and any existing session is
// left alone.
func (c *Client) Login(ctx context.Context, email, password string) (service.User, error) {
	req := loginRequest{Email: email, Password: password}
	if err := c.validatePayload(req); err != nil {
		return service.User{}, err
	}

	var resp authResponse
	if err := c.do(ctx, c.plain, http.MethodPost, "/api/auth/login", req, &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return service.User{}, ErrInvalidCredentials
		}
		return service.User{}, err
	}
	if resp.Token == "" {
		return service.User{}, errors.New("server returned no token")
	}

	user := resp.user().toUser()
	if err := c.sess.Establish(resp.Token, user); err != nil {
		return service.User{}, err
	}
	return user, nil
}

// Logout implements service.Service. The server call is best effort;
// the local session is cleared regardless so the client can never stay
// stuck looking authenticated after a logout.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, c.authed, http.MethodPost, "/api/auth/logout", nil, nil)
	if err != nil && !errors.Is(err, ErrSessionExpired) {
		c.log.Debug("server logout failed", zap.Error(err))
	}
	return c.sess.Clear()
}

// Me implements service.Service.
func (c *Client) Me(ctx context.Context) (service.User, error) {
	var resp authResponse
	if err := c.do(ctx, c.authed, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return service.User{}, err
	}
	return resp.user().toUser(), nil
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var wire []wireTask
	if err := c.do(ctx, c.authed, http.MethodGet, "/api/tasks/", nil, &wire); err != nil {
		return nil, err
	}

	tasks := make([]service.Task, 0, len(wire))
	for _, t := range wire {
		tasks = append(tasks, t.toTask())
	}
	sortTasks(tasks)
	return tasks, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, title, description string) (service.Task, error) {
	req := createTaskRequest{Title: title, Description: description}
	if err := c.validatePayload(req); err != nil {
		return service.Task{}, err
	}

	var wire wireTask
	if err := c.do(ctx, c.authed, http.MethodPost, "/api/tasks/", req, &wire); err != nil {
		return service.Task{}, err
	}
	return wire.toTask(), nil
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id string, upd service.TaskUpdate) (service.Task, error) {
	if upd.Title == nil && upd.Description == nil {
		return service.Task{}, &ValidationError{Message: "nothing to update"}
	}
	req := updateTaskRequest{Title: upd.Title, Description: upd.Description}
	if err := c.validatePayload(req); err != nil {
		return service.Task{}, err
	}

	var wire wireTask
	if err := c.do(ctx, c.authed, http.MethodPut, "/api/tasks/"+url.PathEscape(id), req, &wire); err != nil {
		return service.Task{}, err
	}
	return wire.toTask(), nil
}

// ToggleTask implements service.Service.
func (c *Client) ToggleTask(ctx context.Context, id string) (service.Task, error) {
	var wire wireTask
	if err := c.do(ctx, c.authed, http.MethodPatch, "/api/tasks/"+url.PathEscape(id)+"/toggle", nil, &wire); err != nil {
		return service.Task{}, err
	}
	return wire.toTask(), nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, c.authed, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

// do performs one API round trip: marshal the body, bound the call by
// the client timeout, decode the result. A hung network call can never
// block past the timeout.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body, result any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return wrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.responseError(resp, hc == c.authed)
	}

	if result == nil {
		// Drain so the connection is reusable.
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("invalid response from server: %w", err)
	}
	return nil
}

// wrapTransportError maps low-level transport failures to user-facing
// errors. The session stays untouched on network failure.
func wrapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.New("request timed out")
	}
	if errors.Is(err, session.ErrNoSession) {
		// The token source refused: an earlier 401 cleared the session
		// mid-run.
		return ErrSessionExpired
	}
	return err
}

// responseError turns a non-2xx response into a typed error. On
// protected endpoints a 401 means the token was rejected; the transport
// has already cleared the session by the time this runs.
func (c *Client) responseError(resp *http.Response, authed bool) error {
	var body errorResponse
	json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)
	msg := body.message()

	if resp.StatusCode == http.StatusUnauthorized && authed {
		return ErrSessionExpired
	}
	if resp.StatusCode == http.StatusNotFound && msg == "" {
		msg = "not found"
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

// validatePayload rejects bad input before it reaches the wire.
func (c *Client) validatePayload(v any) error {
	err := c.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &ValidationError{Message: fieldMessage(verrs[0])}
	}
	return &ValidationError{Message: err.Error()}
}

// fieldMessage renders one field error as a single friendly line.
func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s required", field)
	case "email":
		return "invalid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("invalid %s", field)
	}
}

// sortTasks orders tasks by creation time ascending, ties broken by
// ID, so display numbers stay stable across consecutive fetches.
func sortTasks(tasks []service.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
}
