// Package session owns the client's authenticated session: adopting tokens,
// persisting them, and ending the session when the token lapses.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jaekwang-park/taskboard/internal/api"
	"github.com/jaekwang-park/taskboard/internal/board"
	"github.com/jaekwang-park/taskboard/internal/clock"
	"github.com/jaekwang-park/taskboard/internal/token"
)

const EmptyCredentialsMessage = board.EmptyCredentialsMessage

var (
	ErrNoSession        = errors.New("no active session")
	ErrEmptyCredentials = board.ErrEmptyCredentials
	ErrWeakPassword     = board.ErrWeakPassword
	ErrAuthentication   = errors.New("authentication failed")
)

// Mode selects how a session ends when its token lapses.
type Mode string

const (
	// ModeRefresh renews the token shortly before it expires.
	ModeRefresh Mode = "refresh"
	// ModeExpiry logs out when the token expires.
	ModeExpiry Mode = "expiry"
)

func (m Mode) IsValid() bool {
	return m == ModeRefresh || m == ModeExpiry
}

const (
	refreshLead     = 30 * time.Second
	minRefreshDelay = 10 * time.Second
)

type Session struct {
	Token     string
	Subject   string
	ExpiresAt time.Time
}

// AuthAPI is the part of the backend the manager talks to.
type AuthAPI interface {
	Register(ctx context.Context, creds api.Credentials) error
	Login(ctx context.Context, creds api.Credentials) (api.TokenResponse, error)
	Refresh(ctx context.Context, token string) (api.TokenResponse, error)
}

type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
	ClearToken() error
}

type Config struct {
	Mode           Mode
	Scheduler      clock.Scheduler
	Now            func() time.Time
	Logger         *slog.Logger
	RefreshTimeout time.Duration
}

type Manager struct {
	api    AuthAPI
	store  TokenStore
	mode   Mode
	sched  clock.Scheduler
	now    func() time.Time
	logger *slog.Logger

	refreshTimeout time.Duration

	mu       sync.Mutex
	current  *Session
	timer    clock.Timer
	epoch    uint64
	onLogout []func()
}

func NewManager(authAPI AuthAPI, store TokenStore, cfg Config) *Manager {
	m := &Manager{
		api:            authAPI,
		store:          store,
		mode:           cfg.Mode,
		sched:          cfg.Scheduler,
		now:            cfg.Now,
		logger:         cfg.Logger,
		refreshTimeout: cfg.RefreshTimeout,
	}
	if !m.mode.IsValid() {
		m.mode = ModeRefresh
	}
	if m.sched == nil {
		m.sched = clock.Real{}
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.refreshTimeout <= 0 {
		m.refreshTimeout = 10 * time.Second
	}
	return m
}

// OnLogout registers f to run after every logout, outside the manager's lock.
func (m *Manager) OnLogout(f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLogout = append(m.onLogout, f)
}

// Current returns the active session.
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// Token returns the bearer token of the active session.
func (m *Manager) Token() (string, error) {
	s, ok := m.Current()
	if !ok {
		return "", ErrNoSession
	}
	return s.Token, nil
}

// Epoch changes on every session transition. A caller that sees a different
// epoch after a request knows the response belongs to an older session.
func (m *Manager) Epoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}

// Restore adopts the persisted token if it decodes and has not expired.
// Anything else is discarded silently.
func (m *Manager) Restore() bool {
	tok, err := m.store.Token()
	if err != nil {
		m.logger.Warn("failed to read persisted token", "error", err)
		return false
	}
	if tok == "" {
		return false
	}

	claims, err := token.Decode(tok)
	if err != nil || !claims.ExpiresAt.After(m.now()) {
		m.logger.Debug("discarding persisted token", "error", err)
		if err := m.store.ClearToken(); err != nil {
			m.logger.Warn("failed to clear persisted token", "error", err)
		}
		return false
	}

	m.adopt(Session{Token: tok, Subject: claims.Subject, ExpiresAt: claims.ExpiresAt}, false)
	return true
}

func (m *Manager) Login(ctx context.Context, username, password string) error {
	if err := board.ValidateCredentials(username, password, false); err != nil {
		return err
	}

	resp, err := m.api.Login(ctx, api.Credentials{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	claims, err := token.Decode(resp.AccessToken)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	m.adopt(Session{Token: resp.AccessToken, Subject: claims.Subject, ExpiresAt: claims.ExpiresAt}, true)
	m.logger.Info("logged in", "user", claims.Subject, "expires_at", claims.ExpiresAt)
	return nil
}

// Register creates an account. It never starts a session.
func (m *Manager) Register(ctx context.Context, username, password string) error {
	if err := board.ValidateCredentials(username, password, true); err != nil {
		return err
	}
	if err := m.api.Register(ctx, api.Credentials{Username: username, Password: password}); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Logout ends the session, forgets the persisted token and runs the logout hooks.
func (m *Manager) Logout() {
	m.mu.Lock()
	had := m.current != nil
	m.current = nil
	m.stopTimerLocked()
	m.epoch++
	hooks := append([]func(){}, m.onLogout...)
	m.mu.Unlock()

	if err := m.store.ClearToken(); err != nil {
		m.logger.Warn("failed to clear persisted token", "error", err)
	}
	if had {
		m.logger.Info("logged out")
	}
	for _, f := range hooks {
		f()
	}
}

func (m *Manager) adopt(s Session, persist bool) {
	m.mu.Lock()
	m.adoptLocked(s)
	m.mu.Unlock()

	if persist {
		m.persist(s.Token)
	}
}

// adoptIfCurrent adopts s only if no transition happened since epoch.
func (m *Manager) adoptIfCurrent(s Session, epoch uint64) bool {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return false
	}
	m.adoptLocked(s)
	m.mu.Unlock()

	m.persist(s.Token)
	return true
}

func (m *Manager) persist(tok string) {
	if err := m.store.SetToken(tok); err != nil {
		m.logger.Warn("failed to persist token", "error", err)
	}
}

func (m *Manager) adoptLocked(s Session) {
	m.stopTimerLocked()
	m.current = &s
	m.epoch++
	m.scheduleLocked(s)
}

func (m *Manager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Manager) scheduleLocked(s Session) {
	epoch := m.epoch
	remaining := s.ExpiresAt.Sub(m.now())

	switch m.mode {
	case ModeExpiry:
		if remaining < 0 {
			remaining = 0
		}
		m.timer = m.sched.AfterFunc(remaining, func() { m.expire(epoch) })
	default:
		m.timer = m.sched.AfterFunc(RefreshDelay(remaining), func() { m.refresh(epoch, s.Token) })
	}
}

// RefreshDelay is how long to wait before renewing a token that expires in expiresIn.
func RefreshDelay(expiresIn time.Duration) time.Duration {
	return max(expiresIn-refreshLead, minRefreshDelay)
}

func (m *Manager) stale(epoch uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch != epoch
}

func (m *Manager) expire(epoch uint64) {
	if m.stale(epoch) {
		return
	}
	m.logger.Info("session expired")
	m.Logout()
}

func (m *Manager) refresh(epoch uint64, current string) {
	if m.stale(epoch) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.refreshTimeout)
	defer cancel()

	resp, err := m.api.Refresh(ctx, current)
	if m.stale(epoch) {
		return
	}
	if err != nil {
		m.logger.Info("token refresh failed", "error", err)
		m.Logout()
		return
	}
	claims, err := token.Decode(resp.AccessToken)
	if err != nil {
		m.logger.Info("refreshed token is unusable", "error", err)
		m.Logout()
		return
	}

	if m.adoptIfCurrent(Session{Token: resp.AccessToken, Subject: claims.Subject, ExpiresAt: claims.ExpiresAt}, epoch) {
		m.logger.Debug("token refreshed", "expires_at", claims.ExpiresAt)
	}
}
