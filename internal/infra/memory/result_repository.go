package memory

import (
	"context"
	"sort"
	"sync"

	"mathquiz-service/internal/domain"
)

// ResultRepository is an in-memory implementation of app.ResultRepository,
// useful when no database is configured and in tests.
type ResultRepository struct {
	mu      sync.RWMutex
	nextID  int64
	results []domain.GameResult
}

func NewResultRepository() *ResultRepository {
	return &ResultRepository{nextID: 1}
}

func (r *ResultRepository) Append(_ context.Context, result domain.GameResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	result.ID = r.nextID
	r.nextID++
	r.results = append(r.results, result)
	return nil
}

func (r *ResultRepository) TopByScore(_ context.Context, limit int) ([]domain.GameResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	top := make([]domain.GameResult, len(r.results))
	copy(top, r.results)
	// Stable keeps ties in insertion order, matching the SQL retrieval order.
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Score > top[j].Score
	})
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}
