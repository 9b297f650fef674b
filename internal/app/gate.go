package app

import (
	"context"
	"log"
)

// GatePolicy decides whether quiz progress must pause for an external
// prerequisite (group comments, channel subscription). A zero threshold
// disables gating entirely.
type GatePolicy interface {
	Threshold() int
	Reason() string
	IsExempt(ctx context.Context, userID int64) (bool, error)
	IsSatisfied(ctx context.Context, userID int64) (bool, error)
	ClearSatisfaction(ctx context.Context, userID int64) error
}

// DisabledGate is the no-op policy used when no gate is configured.
type DisabledGate struct{}

func (DisabledGate) Threshold() int { return 0 }
func (DisabledGate) Reason() string { return "" }
func (DisabledGate) IsExempt(context.Context, int64) (bool, error)    { return true, nil }
func (DisabledGate) IsSatisfied(context.Context, int64) (bool, error) { return true, nil }
func (DisabledGate) ClearSatisfaction(context.Context, int64) error   { return nil }

// SatisfactionStore tracks the per-user "prerequisite confirmed" flag. The
// flag is set by an external event and consumed on quiz completion.
type SatisfactionStore interface {
	Satisfy(ctx context.Context, userID int64) error
	IsSatisfied(ctx context.Context, userID int64) (bool, error)
	Clear(ctx context.Context, userID int64) error
}

// IntervalGate pauses the quiz every Threshold answers unless the user is
// exempt (administrators) or has already satisfied the prerequisite for the
// current attempt.
type IntervalGate struct {
	interval int
	reason   string
	exempt   map[int64]struct{}
	store    SatisfactionStore
}

func NewIntervalGate(interval int, reason string, exemptIDs []int64, store SatisfactionStore) *IntervalGate {
	exempt := make(map[int64]struct{}, len(exemptIDs))
	for _, id := range exemptIDs {
		exempt[id] = struct{}{}
	}
	return &IntervalGate{interval: interval, reason: reason, exempt: exempt, store: store}
}

func (g *IntervalGate) Threshold() int { return g.interval }

func (g *IntervalGate) Reason() string { return g.reason }

func (g *IntervalGate) IsExempt(_ context.Context, userID int64) (bool, error) {
	_, ok := g.exempt[userID]
	return ok, nil
}

func (g *IntervalGate) IsSatisfied(ctx context.Context, userID int64) (bool, error) {
	return g.store.IsSatisfied(ctx, userID)
}

func (g *IntervalGate) ClearSatisfaction(ctx context.Context, userID int64) error {
	return g.store.Clear(ctx, userID)
}

// gateDue reports whether the engine must block at the current cursor. Store
// failures fail open: a broken gate backend should never lock users out.
func gateDue(ctx context.Context, gate GatePolicy, userID int64, cursor int) bool {
	threshold := gate.Threshold()
	if threshold <= 0 || cursor%threshold != 0 {
		return false
	}
	exempt, err := gate.IsExempt(ctx, userID)
	if err != nil {
		log.Printf("gate exemption check failed for %d: %v", userID, err)
		return false
	}
	if exempt {
		return false
	}
	satisfied, err := gate.IsSatisfied(ctx, userID)
	if err != nil {
		log.Printf("gate satisfaction check failed for %d: %v", userID, err)
		return false
	}
	return !satisfied
}
