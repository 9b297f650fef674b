package memory

import (
	"context"
	"testing"
)

func TestGateStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewGateStore()

	ok, err := store.IsSatisfied(ctx, 1)
	if err != nil || ok {
		t.Fatalf("fresh store should not be satisfied, got %v err %v", ok, err)
	}

	if err := store.Satisfy(ctx, 1); err != nil {
		t.Fatalf("satisfy: %v", err)
	}
	ok, _ = store.IsSatisfied(ctx, 1)
	if !ok {
		t.Fatalf("expected satisfied after Satisfy")
	}
	ok, _ = store.IsSatisfied(ctx, 2)
	if ok {
		t.Fatalf("flag leaked to another user")
	}

	if err := store.Clear(ctx, 1); err != nil {
		t.Fatalf("clear: %v", err)
	}
	ok, _ = store.IsSatisfied(ctx, 1)
	if ok {
		t.Fatalf("expected cleared flag")
	}

	// Clearing an absent flag is a no-op.
	if err := store.Clear(ctx, 99); err != nil {
		t.Fatalf("clear absent: %v", err)
	}
}
