package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"mathquiz-service/internal/domain"
)

// ResultRepository persists finished games in Postgres. Rows are append-only;
// nothing in the service updates or deletes them.
type ResultRepository struct {
	pool *pgxpool.Pool
}

func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

func (r *ResultRepository) Append(ctx context.Context, result domain.GameResult) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO game_results (difficulty, score, total_questions, correct_answers, accuracy, duration_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(result.Difficulty),
		result.Score,
		result.TotalQuestions,
		result.CorrectAnswers,
		result.Accuracy,
		result.DurationSeconds,
		result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	return nil
}

func (r *ResultRepository) TopByScore(ctx context.Context, limit int) ([]domain.GameResult, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, difficulty, score, total_questions, correct_answers, accuracy, duration_seconds, created_at
		FROM game_results
		ORDER BY score DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top results: %w", err)
	}
	defer rows.Close()

	var results []domain.GameResult
	for rows.Next() {
		var result domain.GameResult
		var difficulty string
		if err := rows.Scan(
			&result.ID,
			&difficulty,
			&result.Score,
			&result.TotalQuestions,
			&result.CorrectAnswers,
			&result.Accuracy,
			&result.DurationSeconds,
			&result.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		result.Difficulty = domain.Difficulty(difficulty)
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}
