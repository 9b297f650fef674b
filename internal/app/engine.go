package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"archetype-bot/internal/domain"
	"archetype-bot/internal/questionbank"
)

// answerWeights maps the raw response code (button index) to its scoring
// weight. The first option contributes the maximum, decreasing to zero. This
// table is fixed; it is never reversed, averaged, or configurable.
var answerWeights = [4]int{3, 2, 1, 0}

// ResultPersister stores finalized reports and answer logs. Failures are
// logged and swallowed: the user still receives their report.
type ResultPersister interface {
	SaveReport(ctx context.Context, report domain.Report) error
	SaveAnswers(ctx context.Context, userID int64, answers []domain.Answer) error
}

// Tracker emits fire-and-forget analytics events. Implementations must never
// block or fail the calling flow.
type Tracker interface {
	Track(userID int64, event string, props map[string]any)
}

// StepKind tags the engine's outcome variants.
type StepKind int

const (
	// StepQuestion means deliver the carried question next.
	StepQuestion StepKind = iota
	// StepGate means progress is blocked pending external confirmation.
	StepGate
	// StepCompleted means the quiz finished and the report is ready.
	StepCompleted
)

// NextStep is the engine's answer to a begin/advance/resume event.
type NextStep struct {
	Kind       StepKind
	Question   domain.Question
	Position   int // 1-based, only for StepQuestion
	Total      int
	GateReason string
	Report     domain.Report
}

// Engine is the per-user quiz state machine. It serializes events per user:
// two events for the same user never interleave, while different users
// proceed fully concurrently.
type Engine struct {
	bank     *questionbank.Bank
	sessions SessionRepository
	gate     GatePolicy
	results  ResultPersister
	tracker  Tracker
	now      func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewEngine(bank *questionbank.Bank, sessions SessionRepository, gate GatePolicy, results ResultPersister, tracker Tracker) *Engine {
	if gate == nil {
		gate = DisabledGate{}
	}
	return &Engine{
		bank:     bank,
		sessions: sessions,
		gate:     gate,
		results:  results,
		tracker:  tracker,
		now:      time.Now,
		locks:    make(map[int64]*sync.Mutex),
	}
}

// Begin starts a fresh quiz for the user, discarding any prior progress, and
// returns the first question.
func (e *Engine) Begin(ctx context.Context, userID int64) (NextStep, error) {
	defer e.userLock(userID)()

	session := e.sessions.Create(userID, e.bank.Categories())
	e.track(userID, "quiz_started", nil)
	return e.questionStep(session), nil
}

// Advance records an answer and returns the next step. Without a live session
// it returns domain.ErrSessionExpired and leaves the store untouched. While
// the session is gate-blocked the answer is not ingested; the call only
// re-evaluates the gate.
func (e *Engine) Advance(ctx context.Context, userID int64, raw int) (NextStep, error) {
	defer e.userLock(userID)()

	session, ok := e.sessions.Get(userID)
	if !ok {
		return NextStep{}, domain.ErrSessionExpired
	}
	if session.GateBlocked {
		return e.reopenGate(ctx, session), nil
	}
	if raw < 0 || raw >= len(answerWeights) {
		return NextStep{}, fmt.Errorf("%w: %d", domain.ErrInvalidAnswerValue, raw)
	}

	question := e.bank.At(session.Cursor)
	session.Answers = append(session.Answers, domain.Answer{
		Position: session.Cursor,
		Value:    raw,
		Category: question.Category,
	})
	session.Scores[question.Category] += answerWeights[raw]
	session.Cursor++

	if session.Cursor >= e.bank.Len() {
		return e.complete(ctx, session), nil
	}
	if gateDue(ctx, e.gate, userID, session.Cursor) {
		session.GateBlocked = true
		e.track(userID, "gate_blocked", map[string]any{"position": session.Cursor})
		return NextStep{Kind: StepGate, GateReason: e.gate.Reason()}, nil
	}
	return e.questionStep(session), nil
}

// Resume re-evaluates a blocked session after an external confirmation event.
// If the gate now passes it returns the pending question; the cursor never
// moves while blocked. Calling Resume on an unblocked session just re-delivers
// the current question.
func (e *Engine) Resume(ctx context.Context, userID int64) (NextStep, error) {
	defer e.userLock(userID)()

	session, ok := e.sessions.Get(userID)
	if !ok {
		return NextStep{}, domain.ErrSessionExpired
	}
	if !session.GateBlocked {
		return e.questionStep(session), nil
	}
	return e.reopenGate(ctx, session), nil
}

// Abort discards the user's session, if any. Idempotent.
func (e *Engine) Abort(userID int64) {
	defer e.userLock(userID)()
	e.sessions.Delete(userID)
}

// InProgress reports whether the user currently has a live session.
func (e *Engine) InProgress(userID int64) bool {
	return e.sessions.Has(userID)
}

// Total reports the question bank size.
func (e *Engine) Total() int {
	return e.bank.Len()
}

func (e *Engine) reopenGate(ctx context.Context, session *Session) NextStep {
	if gateDue(ctx, e.gate, session.UserID, session.Cursor) {
		return NextStep{Kind: StepGate, GateReason: e.gate.Reason()}
	}
	session.GateBlocked = false
	return e.questionStep(session)
}

func (e *Engine) complete(ctx context.Context, session *Session) NextStep {
	report := domain.Report{
		UserID:    session.UserID,
		Entries:   Finalize(session.Scores),
		CreatedAt: e.now(),
	}

	if e.results != nil {
		if err := e.results.SaveReport(ctx, report); err != nil {
			log.Printf("save report for %d failed: %v", session.UserID, err)
		}
		if err := e.results.SaveAnswers(ctx, session.UserID, session.Answers); err != nil {
			log.Printf("save answers for %d failed: %v", session.UserID, err)
		}
	}
	if err := e.gate.ClearSatisfaction(ctx, session.UserID); err != nil {
		log.Printf("clear gate satisfaction for %d failed: %v", session.UserID, err)
	}
	e.sessions.Delete(session.UserID)
	e.track(session.UserID, "quiz_completed", map[string]any{"answers": len(session.Answers)})

	return NextStep{Kind: StepCompleted, Report: report}
}

func (e *Engine) questionStep(session *Session) NextStep {
	return NextStep{
		Kind:     StepQuestion,
		Question: e.bank.At(session.Cursor),
		Position: session.Cursor + 1,
		Total:    e.bank.Len(),
	}
}

func (e *Engine) track(userID int64, event string, props map[string]any) {
	if e.tracker != nil {
		e.tracker.Track(userID, event, props)
	}
}

// userLock serializes events for one user. Lost updates from retried webhook
// deliveries are a real occurrence; the per-user mutex makes receipt-order
// processing explicit.
func (e *Engine) userLock(userID int64) func() {
	e.mu.Lock()
	lock, ok := e.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[userID] = lock
	}
	e.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
