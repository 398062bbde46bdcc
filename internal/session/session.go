// Package session holds the authentication context: the bearer token the
// gateway attaches to every request. The token lives in memory for the
// lifetime of the program and is persisted through a TokenStore so a
// restart stays signed in. It is written at sign-in and cleared at
// sign-out, never mutated concurrently with reads in between.
package session

import "sync"

// TokenStore persists the bearer token across runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Session is the process-wide authentication context. It implements
// api.TokenSource, so constructing the gateway with a Session threads the
// token explicitly instead of reading ambient global state.
type Session struct {
	mu    sync.RWMutex
	token string
	store TokenStore
}

// New creates a session backed by store. A previously persisted token is
// restored when present; a load failure just starts unauthenticated.
func New(store TokenStore) *Session {
	s := &Session{store: store}
	if tok, err := store.Load(); err == nil {
		s.token = tok
	}
	return s
}

// Token returns the current bearer token, empty when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// SetToken installs and persists a freshly issued token. The in-memory
// token is updated even when persistence fails, so the running session
// works and only the next restart has to sign in again.
func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return s.store.Save(token)
}

// Clear drops the token unconditionally, in memory and from the store.
// Sign-out calls this regardless of whether the backend logout call
// succeeded.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return s.store.Clear()
}
