package memory

import (
	"context"
	"testing"

	"mathquiz-service/internal/domain"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	if _, ok, _ := store.Get(ctx, "p1"); ok {
		t.Fatalf("expected miss for unknown key")
	}

	session := domain.GameSession{Active: true, Difficulty: domain.DifficultyEasy, Score: 18}
	if err := store.Save(ctx, "p1", session); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := store.Get(ctx, "p1")
	if err != nil || !ok {
		t.Fatalf("expected session, ok=%v err=%v", ok, err)
	}
	if got.Score != 18 || got.Difficulty != domain.DifficultyEasy {
		t.Fatalf("unexpected session %+v", got)
	}

	// A later save overwrites prior state outright.
	session.Active = false
	_ = store.Save(ctx, "p1", session)
	got, _, _ = store.Get(ctx, "p1")
	if got.Active {
		t.Fatalf("expected overwritten session to be inactive")
	}
}
