package auth

import (
	"context"
	"sync"
)

// Static serves a fixed first-party token until it is invalidated.
type Static struct {
	mu          sync.Mutex
	token       string
	invalidated bool
}

var (
	_ TokenSource = (*Static)(nil)
	_ SignOuter   = (*Static)(nil)
)

// NewStatic creates a Static source. An empty token never authenticates.
func NewStatic(token string) *Static {
	return &Static{token: token}
}

// Token returns the configured token.
func (s *Static) Token(_ context.Context, _ bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" || s.invalidated {
		return "", ErrNotAuthenticated
	}
	return s.token, nil
}

// Invalidate stops serving token if it is the configured one.
func (s *Static) Invalidate(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == s.token {
		s.invalidated = true
	}
	return nil
}

// SignOut stops serving the token for the rest of the process.
func (s *Static) SignOut(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = true
	return nil
}
