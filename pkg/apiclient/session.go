package apiclient

import (
	"sync"
	"time"

	"github.com/salestrack/sales-tracker-api/internal/domain"
)

// Session holds the bearer token of one logged-in user. It replaces any
// process-wide token storage: every Client and AuthTransport is handed the
// session it works for.
type Session struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	user      *domain.User
	onLogout  []func()
}

func NewSession() *Session {
	return &Session{}
}

// Login stores the token issued for user.
func (s *Session) Login(token domain.AuthToken, user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token.Token
	s.expiresAt = token.ExpiresAt
	if s.expiresAt.IsZero() && token.ExpiresIn > 0 {
		s.expiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}
	s.user = user
}

// Logout clears the session and runs the OnLogout hooks. Calling it on a
// session that holds no token does nothing.
func (s *Session) Logout() {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return
	}
	s.token = ""
	s.expiresAt = time.Time{}
	s.user = nil
	hooks := append([]func(){}, s.onLogout...)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

// Token returns the current token, or false when logged out or expired.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return "", false
	}
	if !s.expiresAt.IsZero() && time.Now().After(s.expiresAt) {
		return "", false
	}
	return s.token, true
}

func (s *Session) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// OnLogout registers fn to run every time the session is logged out.
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}
