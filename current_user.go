package user

import "sync"

// SessionProvider owns the signed-in user on the client side. The profile
// editor reads from it and writes the server's answers back to it.
type SessionProvider interface {
	CurrentUser() User
	SetCurrentUser(User)
	// UpdateCurrentUser applies fn to the current user and stores the
	// result as one step, so a concurrent SetCurrentUser is not lost.
	UpdateCurrentUser(fn func(*User)) User
}

// MemorySession is a SessionProvider held in memory.
type MemorySession struct {
	mu   sync.RWMutex
	user User
	subs []func(User)
}

// NewMemorySession returns a session signed in as u.
func NewMemorySession(u User) *MemorySession {
	return &MemorySession{user: u}
}

func (s *MemorySession) CurrentUser() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *MemorySession) SetCurrentUser(u User) {
	s.mu.Lock()
	s.user = u
	subs := append([]func(User){}, s.subs...)
	s.mu.Unlock()

	notify(subs, u)
}

func (s *MemorySession) UpdateCurrentUser(fn func(*User)) User {
	s.mu.Lock()
	fn(&s.user)
	u := s.user
	subs := append([]func(User){}, s.subs...)
	s.mu.Unlock()

	notify(subs, u)
	return u
}

func notify(subs []func(User), u User) {
	for _, fn := range subs {
		fn(u)
	}
}

// OnChange registers fn to run after every change of the user, e.g. to
// re-render the page header.
func (s *MemorySession) OnChange(fn func(User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}
