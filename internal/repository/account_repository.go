package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/game-rental-service/internal/domain"
)

// AccountRepository defines persistence access for provisioned game accounts.
type AccountRepository interface {
	GetByID(ctx context.Context, steamID64 int64) (*domain.GameAccount, error)
	FindAvailableForGame(ctx context.Context, gameID int64) (*domain.GameAccount, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) GetByID(ctx context.Context, steamID64 int64) (*domain.GameAccount, error) {
	const query = `
        SELECT steam_id_64, email, account_name, password
        FROM game_accounts WHERE steam_id_64=$1`

	var account domain.GameAccount
	if err := r.pool.QueryRow(ctx, query, steamID64).Scan(
		&account.SteamID64,
		&account.Email,
		&account.AccountName,
		&account.Password,
	); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindAvailableForGame(ctx context.Context, gameID int64) (*domain.GameAccount, error) {
	const query = `
        SELECT a.steam_id_64, a.email, a.account_name, a.password
        FROM game_accounts a
        JOIN game_account_games ag ON ag.account_id = a.steam_id_64
        WHERE ag.game_id=$1 AND ag.available_status
        LIMIT 1`

	var account domain.GameAccount
	if err := r.pool.QueryRow(ctx, query, gameID).Scan(
		&account.SteamID64,
		&account.Email,
		&account.AccountName,
		&account.Password,
	); err != nil {
		return nil, err
	}
	return &account, nil
}
