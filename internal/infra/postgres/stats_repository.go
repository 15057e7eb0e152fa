package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quizpin-service/internal/domain"
)

// StatsRepository persists finished solo runs for the highscore board.
type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

func (r *StatsRepository) SaveResult(ctx context.Context, result domain.SoloResult) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO solo_results (player_name, score, total_questions, percentage, total_points, difficulty, language, played_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		result.PlayerName, result.Score, result.TotalQuestions, result.Percentage,
		result.TotalPoints, string(result.Difficulty), result.Language, result.PlayedAt,
	)
	if err != nil {
		return fmt.Errorf("save solo result: %w", err)
	}
	return nil
}

// TopResults returns the best solo runs, ordered by percentage then raw
// score, matching the original highscore board.
func (r *StatsRepository) TopResults(ctx context.Context, limit int) ([]domain.SoloResult, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT player_name, score, total_questions, percentage, total_points, difficulty, language, played_at
		FROM solo_results
		ORDER BY percentage DESC, score DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("top solo results: %w", err)
	}
	defer rows.Close()

	var results []domain.SoloResult
	for rows.Next() {
		var res domain.SoloResult
		var difficulty string
		if err := rows.Scan(&res.PlayerName, &res.Score, &res.TotalQuestions, &res.Percentage,
			&res.TotalPoints, &difficulty, &res.Language, &res.PlayedAt); err != nil {
			return nil, fmt.Errorf("scan solo result: %w", err)
		}
		res.Difficulty = domain.Difficulty(difficulty)
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate solo results: %w", err)
	}
	return results, nil
}
