package findmypet

import "sync"

// Session is the single source of truth for who is logged in. It holds the
// auth token and the user profile behind one lock, and owns the persisted
// token slot.
//
// The invariant is one-directional: a non-nil user implies a token, but a
// token may exist while the profile fetch is still pending or has failed.
// Authentication is defined as token presence alone.
type Session struct {
	mu      sync.Mutex
	store   TokenStore
	token   string
	user    *User
	loading bool
}

// NewSession returns an empty session backed by store.
func NewSession(store TokenStore) *Session {
	return &Session{store: store}
}

// Token returns the current auth token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns the current profile, or nil when it has not loaded.
func (s *Session) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// IsAuthenticated reports whether a token is present. It deliberately does
// not require the profile to have loaded; callers must handle the
// authenticated-but-profile-less state.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// Loading reports whether startup hydration is still resolving the profile.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Set atomically replaces both token and user, persisting the token before
// it becomes visible in memory. Once Set returns, IsAuthenticated is true
// and the persisted slot holds the new token.
func (s *Session) Set(token string, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" {
		user = nil
	}
	if err := s.store.Save(token); err != nil {
		return err
	}
	s.token = token
	s.user = user
	return nil
}

// SetUser replaces the profile without touching the token. It is dropped
// when no token is present so the user-implies-token invariant holds.
func (s *Session) SetUser(user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return
	}
	s.user = user
}

// Clear logs out: it removes the persisted token and zeroes the in-memory
// state. Clearing an already-empty session is a no-op, and a failure to
// remove the persisted slot never blocks the in-memory teardown.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.store.Clear()
	s.token = ""
	s.user = nil
	s.loading = false
}

// hydrate pulls the persisted token into memory at startup. It returns the
// token without re-saving it.
func (s *Session) hydrate() (string, error) {
	token, err := s.store.Load()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.token = token
	s.loading = token != ""
	s.mu.Unlock()
	return token, nil
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}
