package memory

import (
	"sync"

	"archetype-bot/internal/app"
)

// SessionStore is the in-memory implementation of app.SessionRepository.
// It holds only derivable, non-durable progress; a process restart empties it.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*app.Session),
	}
}

// Create overwrites any existing session for the user with a fresh one.
func (s *SessionStore) Create(userID int64, categories []string) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := app.NewSession(userID, categories)
	s.sessions[userID] = session
	return session
}

func (s *SessionStore) Get(userID int64) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	return session, ok
}

// Delete is idempotent; deleting an absent session is not an error.
func (s *SessionStore) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

func (s *SessionStore) Has(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[userID]
	return ok
}

// Len reports the number of live sessions, for health reporting.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
