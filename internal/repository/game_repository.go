package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/game-rental-service/internal/domain"
)

// GameRepository defines persistence access for the catalog.
type GameRepository interface {
	List(ctx context.Context, limit, offset int) ([]*domain.Game, error)
	GetByID(ctx context.Context, id int64) (*domain.Game, error)
	Update(ctx context.Context, game *domain.Game) error
}

type gameRepository struct {
	pool *pgxpool.Pool
}

// NewGameRepository returns a Postgres-backed implementation.
func NewGameRepository(pool *pgxpool.Pool) GameRepository {
	return &gameRepository{pool: pool}
}

const gameColumns = `id, title, genre, release_date, description,
        image_url, price_cents, created_at`

func (r *gameRepository) List(ctx context.Context, limit, offset int) ([]*domain.Game, error) {
	const query = `
        SELECT ` + gameColumns + ` FROM games
        ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []*domain.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

func (r *gameRepository) GetByID(ctx context.Context, id int64) (*domain.Game, error) {
	const query = `SELECT ` + gameColumns + ` FROM games WHERE id=$1`
	return scanGame(r.pool.QueryRow(ctx, query, id))
}

func (r *gameRepository) Update(ctx context.Context, game *domain.Game) error {
	const query = `
        UPDATE games SET title=$1, genre=$2, release_date=$3, description=$4,
            image_url=$5, price_cents=$6
        WHERE id=$7`

	cmd, err := r.pool.Exec(ctx, query,
		game.Title,
		game.Genre,
		game.ReleaseDate,
		game.Description,
		game.ImageURL,
		game.PriceCents,
		game.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanGame(row pgx.Row) (*domain.Game, error) {
	var game domain.Game
	if err := row.Scan(
		&game.ID,
		&game.Title,
		&game.Genre,
		&game.ReleaseDate,
		&game.Description,
		&game.ImageURL,
		&game.PriceCents,
		&game.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &game, nil
}
