// Package session owns the lifecycle of the stored login session,
// from restore at startup through clear on logout or server rejection.
package session

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"todo/internal/service"
)

// ErrNoSession indicates no stored session is available.
var ErrNoSession = errors.New("no session")

// Session is the authenticated identity held by the client.
// The server enforces token expiry; the client never does.
type Session struct {
	Token string       `json:"token"`
	User  service.User `json:"user"`
}

// Manager holds the active session and keeps it in sync with a Store.
// There are two states, unauthenticated and authenticated; Establish
// and Clear are the only transitions. Safe for concurrent use.
//
// Manager implements oauth2.TokenSource so an oauth2.Transport can
// attach the bearer token to outgoing requests.
type Manager struct {
	mu    sync.Mutex
	store Store
	cur   *Session
	log   *zap.Logger
}

var _ oauth2.TokenSource = (*Manager)(nil)

// NewManager creates a manager backed by store. A nil logger disables
// debug logging.
func NewManager(store Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, log: logger}
}

// Restore loads the persisted session. A missing session leaves the
// manager unauthenticated. An unreadable or corrupt session file is
// treated like a rejected token: cleared, manager unauthenticated.
// The restored token is trusted optimistically; the first API call
// confirms or rejects it.
func (m *Manager) Restore() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.store.Load()
	if err != nil {
		m.cur = nil
		if errors.Is(err, ErrNoSession) {
			return nil
		}
		m.log.Debug("discarding unreadable session", zap.Error(err))
		if cerr := m.store.Clear(); cerr != nil {
			return fmt.Errorf("failed to clear session: %w", cerr)
		}
		return nil
	}

	if sess.Token == "" {
		m.cur = nil
		m.log.Debug("discarding session with empty token")
		if cerr := m.store.Clear(); cerr != nil {
			return fmt.Errorf("failed to clear session: %w", cerr)
		}
		return nil
	}

	m.cur = &sess
	m.log.Debug("session restored", zap.String("user", sess.User.Username))
	return nil
}

// Establish persists a new session and makes it active, replacing any
// existing one. Nothing is stored if persistence fails.
func (m *Manager) Establish(token string, user service.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := Session{Token: token, User: user}
	if err := m.store.Save(sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	m.cur = &sess
	m.log.Debug("session established", zap.String("user", user.Username))
	return nil
}

// Clear removes the session from memory and storage. Clearing while
// unauthenticated is a no-op, so a rejected token triggers at most one
// storage clear no matter how many calls observe the rejection.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur == nil {
		return nil
	}
	m.cur = nil
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	m.log.Debug("session cleared")
	return nil
}

// Authenticated reports whether a session is active. It checks local
// state only; the token may still be rejected by the server.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur != nil
}

// Current returns the active session, if any.
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == nil {
		return Session{}, false
	}
	return *m.cur, true
}

// Token implements oauth2.TokenSource. It returns ErrNoSession while
// unauthenticated, which fails the request before it reaches the wire.
func (m *Manager) Token() (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == nil {
		return nil, ErrNoSession
	}
	return &oauth2.Token{AccessToken: m.cur.Token, TokenType: "Bearer"}, nil
}
