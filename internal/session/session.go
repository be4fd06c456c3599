package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"idcard/internal/storage"
)

// Session owns whether the visitor is an authenticated admin and the bearer token.
// A persisted token is trusted as-is: nothing checks it against the server or its expiry.
type Session struct {
	mu       sync.RWMutex
	store    storage.Storage
	token    string
	onLogout []func()
}

// New reads persisted storage once and returns the session.
func New(ctx context.Context, store storage.Storage) (*Session, error) {
	s := &Session{store: store}
	token, ok, err := store.Get(ctx, storage.TokenKey)
	if err != nil {
		return s, fmt.Errorf("read persisted token: %w", err)
	}
	if ok {
		s.token = token
	}
	return s, nil
}

// IsAdmin reports whether a token is held.
func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Token returns the bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Login persists token and marks the session authenticated.
func (s *Session) Login(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := s.store.Set(ctx, storage.TokenKey, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Logout clears persisted storage and the in-memory token, then runs the
// logout listeners. The in-memory state is cleared even if storage fails.
func (s *Session) Logout(ctx context.Context) error {
	err := s.store.Delete(ctx, storage.TokenKey)

	s.mu.Lock()
	s.token = ""
	listeners := append([]func(){}, s.onLogout...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	if err != nil {
		return fmt.Errorf("clear persisted token: %w", err)
	}
	return nil
}

// OnLogout registers fn to run after every logout.
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// DisplayName reads a name out of the token's claims for the header.
// The signature is not verified; the value is cosmetic.
func (s *Session) DisplayName() string {
	tok := s.Token()
	if tok == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return ""
	}
	for _, key := range []string{"username", "name", "sub"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
