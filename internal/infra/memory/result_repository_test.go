package memory

import (
	"context"
	"testing"

	"mathquiz-service/internal/domain"
)

func TestResultRepositoryTopByScore(t *testing.T) {
	ctx := context.Background()
	repo := NewResultRepository()

	for _, score := range []int{40, 120, 80, 120} {
		err := repo.Append(ctx, domain.GameResult{Difficulty: domain.DifficultyEasy, Score: score})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	top, err := repo.TopByScore(ctx, 3)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 results, got %d", len(top))
	}
	if top[0].Score != 120 || top[1].Score != 120 || top[2].Score != 80 {
		t.Fatalf("unexpected order: %d %d %d", top[0].Score, top[1].Score, top[2].Score)
	}
	// Tied scores keep insertion order.
	if top[0].ID != 2 || top[1].ID != 4 {
		t.Fatalf("expected stable tie order, got IDs %d, %d", top[0].ID, top[1].ID)
	}
}
