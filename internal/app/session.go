package app

import "archetype-bot/internal/domain"

// Session is the mutable progress record for one user's in-progress quiz
// attempt. All fields are always present; GateBlocked stays false when gating
// is disabled. Mutation happens only under the engine's per-user lock, so the
// record itself carries no mutex.
type Session struct {
	UserID      int64
	Cursor      int
	Scores      map[string]int
	Answers     []domain.Answer
	GateBlocked bool
}

// NewSession is exported for infrastructure layers that need to seed sessions.
// Scores are initialized to zero for the full closed category set and never
// gain or lose keys afterwards.
func NewSession(userID int64, categories []string) *Session {
	scores := make(map[string]int, len(categories))
	for _, category := range categories {
		scores[category] = 0
	}
	return &Session{
		UserID:  userID,
		Scores:  scores,
		Answers: make([]domain.Answer, 0, 16),
	}
}

// SessionRepository abstracts how quiz sessions are stored. Absent sessions
// are an expected outcome, not an error.
type SessionRepository interface {
	Create(userID int64, categories []string) *Session
	Get(userID int64) (*Session, bool)
	Delete(userID int64)
	Has(userID int64) bool
	Len() int
}
