package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/game-rental-service/internal/domain"
)

// FeedbackRepository defines persistence access for game reviews.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	ListByGame(ctx context.Context, gameID int64, limit int) ([]*domain.Feedback, error)
}

type feedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository returns a Postgres-backed implementation.
func NewFeedbackRepository(pool *pgxpool.Pool) FeedbackRepository {
	return &feedbackRepository{pool: pool}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	const query = `
        INSERT INTO feedback (user_id, username, game_id, text, rating)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		feedback.UserID,
		feedback.Username,
		feedback.GameID,
		feedback.Text,
		feedback.Rating,
	).Scan(&feedback.ID, &feedback.CreatedAt)
}

func (r *feedbackRepository) ListByGame(ctx context.Context, gameID int64, limit int) ([]*domain.Feedback, error) {
	const query = `
        SELECT id, user_id, username, game_id, text, rating, created_at
        FROM feedback WHERE game_id=$1
        ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, gameID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feedbacks []*domain.Feedback
	for rows.Next() {
		var fb domain.Feedback
		if err := rows.Scan(
			&fb.ID,
			&fb.UserID,
			&fb.Username,
			&fb.GameID,
			&fb.Text,
			&fb.Rating,
			&fb.CreatedAt,
		); err != nil {
			return nil, err
		}
		feedbacks = append(feedbacks, &fb)
	}
	return feedbacks, rows.Err()
}
