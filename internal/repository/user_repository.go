package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/game-rental-service/internal/domain"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUKey(ctx context.Context, ukey string) (*domain.User, error)
	UpdateRoleByEmail(ctx context.Context, email string, role domain.Role) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, ukey, first_name, last_name, username, email,
        password_hash, mfa_enabled, role, temporary, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (ukey, first_name, last_name, username, email,
            password_hash, mfa_enabled, role, temporary)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.UKey,
		user.FirstName,
		user.LastName,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.MFAEnabled,
		user.Role,
		user.Temporary,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET first_name=$1, last_name=$2, username=$3, email=$4,
            password_hash=$5, mfa_enabled=$6, role=$7, temporary=$8, updated_at=NOW()
        WHERE id=$9`

	cmd, err := r.pool.Exec(ctx, query,
		user.FirstName,
		user.LastName,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.MFAEnabled,
		user.Role,
		user.Temporary,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) GetByUKey(ctx context.Context, ukey string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE ukey=$1`
	return r.scanUser(r.pool.QueryRow(ctx, query, ukey))
}

func (r *userRepository) UpdateRoleByEmail(ctx context.Context, email string, role domain.Role) (*domain.User, error) {
	const query = `
        UPDATE users SET role=$1, updated_at=NOW()
        WHERE email=$2
        RETURNING ` + userColumns

	return r.scanUser(r.pool.QueryRow(ctx, query, role, email))
}

func (r *userRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.UKey,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.MFAEnabled,
		&user.Role,
		&user.Temporary,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
