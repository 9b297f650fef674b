package memory

import (
	"context"
	"sync"
)

// GateStore is the in-memory satisfaction-flag store used when Redis is not
// configured. Flags do not survive restarts, matching session semantics.
type GateStore struct {
	mu    sync.Mutex
	users map[int64]struct{}
}

func NewGateStore() *GateStore {
	return &GateStore{users: make(map[int64]struct{})}
}

func (s *GateStore) Satisfy(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = struct{}{}
	return nil
}

func (s *GateStore) IsSatisfied(_ context.Context, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[userID]
	return ok, nil
}

func (s *GateStore) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
	return nil
}
