package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/game-rental-service/internal/domain"
)

// ChangeRequestRepository defines persistence access for moderated catalog edits.
type ChangeRequestRepository interface {
	Create(ctx context.Context, req *domain.GameChangeRequest) error
	GetByID(ctx context.Context, id int64) (*domain.GameChangeRequest, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.GameChangeRequest, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ChangeRequestStatus) error
}

type changeRequestRepository struct {
	pool *pgxpool.Pool
}

// NewChangeRequestRepository returns a Postgres-backed implementation.
func NewChangeRequestRepository(pool *pgxpool.Pool) ChangeRequestRepository {
	return &changeRequestRepository{pool: pool}
}

func (r *changeRequestRepository) Create(ctx context.Context, req *domain.GameChangeRequest) error {
	const query = `
        INSERT INTO game_change_requests (game_id, moderator_id, changes, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, requested_at`

	return r.pool.QueryRow(ctx, query,
		req.GameID,
		req.ModeratorID,
		req.Changes,
		req.Status,
	).Scan(&req.ID, &req.RequestedAt)
}

func (r *changeRequestRepository) GetByID(ctx context.Context, id int64) (*domain.GameChangeRequest, error) {
	const query = `
        SELECT id, game_id, moderator_id, changes, status, requested_at
        FROM game_change_requests WHERE id=$1`

	return scanChangeRequest(r.pool.QueryRow(ctx, query, id))
}

func (r *changeRequestRepository) ListRecent(ctx context.Context, limit int) ([]*domain.GameChangeRequest, error) {
	const query = `
        SELECT id, game_id, moderator_id, changes, status, requested_at
        FROM game_change_requests
        ORDER BY requested_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*domain.GameChangeRequest
	for rows.Next() {
		req, err := scanChangeRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *changeRequestRepository) UpdateStatus(ctx context.Context, id int64, status domain.ChangeRequestStatus) error {
	const query = `UPDATE game_change_requests SET status=$1 WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanChangeRequest(row pgx.Row) (*domain.GameChangeRequest, error) {
	var req domain.GameChangeRequest
	if err := row.Scan(
		&req.ID,
		&req.GameID,
		&req.ModeratorID,
		&req.Changes,
		&req.Status,
		&req.RequestedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}
