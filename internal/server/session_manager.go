package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// accountContextKey is the context key under which the HTTP transport
// stores the resolved session account for tool handlers.
type accountContextKey struct{}

// WithAccount returns a context carrying the account resolved for the
// current session. Tool handlers read it via AccountFromContext when
// the request arguments do not name an account explicitly.
func WithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, accountContextKey{}, account)
}

// AccountFromContext returns the session account stored in the context,
// if any.
func AccountFromContext(ctx context.Context) (string, bool) {
	account, ok := ctx.Value(accountContextKey{}).(string)
	return account, ok && account != ""
}

// sessionInfo tracks session metadata for cleanup
type sessionInfo struct {
	account    string
	lastAccess time.Time
}

// SessionIDManager implements session management for multi-account support
// It ensures that each Google account gets its own session, allowing
// multiple users or accounts to use the same MCP server instance
type SessionIDManager struct {
	sessions       map[string]*sessionInfo // Maps session ID to session info
	mu             sync.RWMutex
	cleanupTicker  *time.Ticker
	cleanupDone    chan bool
	sessionTimeout time.Duration
	logger         *slog.Logger
}

// NewSessionIDManager creates a new session ID manager with default logger
func NewSessionIDManager() *SessionIDManager {
	return NewSessionIDManagerWithLogger(24*time.Hour, slog.Default())
}

// NewSessionIDManagerWithTimeout creates a new session ID manager with custom timeout
func NewSessionIDManagerWithTimeout(timeout time.Duration) *SessionIDManager {
	return NewSessionIDManagerWithLogger(timeout, slog.Default())
}

// NewSessionIDManagerWithLogger creates a new session ID manager with custom timeout and logger
func NewSessionIDManagerWithLogger(timeout time.Duration, logger *slog.Logger) *SessionIDManager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &SessionIDManager{
		sessions:       make(map[string]*sessionInfo),
		cleanupTicker:  time.NewTicker(10 * time.Minute),
		cleanupDone:    make(chan bool),
		sessionTimeout: timeout,
		logger:         logger,
	}

	// Start cleanup goroutine
	go m.cleanupExpiredSessions()

	return m
}

// ErrNoAuthorizationHeader is returned when no Authorization header is provided
var ErrNoAuthorizationHeader = errors.New("no authorization header provided")

// ResolveSessionID resolves the session ID from an HTTP request
// This implementation uses the Authorization header (Bearer token) to determine
// which session (account) the request belongs to
func (m *SessionIDManager) ResolveSessionID(r *http.Request) (string, error) {
	// Extract the Bearer token from the Authorization header
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrNoAuthorizationHeader
	}

	// The token uniquely identifies the user/account
	// Generate a stable session ID from the token
	sessionID := m.generateSessionID(authHeader)

	return sessionID, nil
}

// AccountHeader is the HTTP header clients use to bind their session to
// a named Google account. The binding is sticky for the session lifetime.
const AccountHeader = "X-Calendops-Account"

// Middleware resolves the session for each request and injects the
// session account into the request context. Requests without an
// Authorization header pass through unchanged and resolve to the
// "default" account downstream.
func (m *SessionIDManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := m.ResolveSessionID(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		if account := r.Header.Get(AccountHeader); account != "" {
			m.SetAccountForSession(sessionID, account)
		}

		account := m.GetAccountForSession(sessionID)
		next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), account)))
	})
}

// GetAccountForSession returns the account email associated with a session ID
func (m *SessionIDManager) GetAccountForSession(sessionID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if info, ok := m.sessions[sessionID]; ok {
		// Update last access time
		info.lastAccess = time.Now()
		return info.account
	}
	return "default"
}

// SetAccountForSession associates an account email with a session ID
func (m *SessionIDManager) SetAccountForSession(sessionID, account string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = &sessionInfo{
		account:    account,
		lastAccess: time.Now(),
	}
}

// generateSessionID creates a stable session ID from the auth token
func (m *SessionIDManager) generateSessionID(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// RemoveSession removes a session from the manager
func (m *SessionIDManager) RemoveSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// ListSessions returns all active session IDs
func (m *SessionIDManager) ListSessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]string, 0, len(m.sessions))
	for sessionID := range m.sessions {
		sessions = append(sessions, sessionID)
	}
	return sessions
}

// cleanupExpiredSessions periodically removes expired sessions
func (m *SessionIDManager) cleanupExpiredSessions() {
	for {
		select {
		case <-m.cleanupTicker.C:
			m.mu.Lock()
			now := time.Now()
			expiredCount := 0
			for sessionID, info := range m.sessions {
				if now.Sub(info.lastAccess) > m.sessionTimeout {
					delete(m.sessions, sessionID)
					expiredCount++
				}
			}
			m.mu.Unlock()
			if expiredCount > 0 {
				m.logger.Info("Cleaned up expired sessions", "count", expiredCount)
			}
		case <-m.cleanupDone:
			return
		}
	}
}

// Stop stops the session cleanup goroutine
func (m *SessionIDManager) Stop() {
	if m.cleanupTicker != nil {
		m.cleanupTicker.Stop()
	}
	if m.cleanupDone != nil {
		close(m.cleanupDone)
	}
}
