package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/game-rental-service/internal/domain"
)

// OrderRepository defines persistence access for purchases.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.Order, error)
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns a Postgres-backed implementation.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	const query = `
        INSERT INTO orders (user_id, game_id, account_id, total_price_cents, receipt_url)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, order_date`

	return r.pool.QueryRow(ctx, query,
		order.UserID,
		order.GameID,
		order.AccountID,
		order.TotalPriceCents,
		order.ReceiptURL,
	).Scan(&order.ID, &order.OrderDate)
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.Order, error) {
	const query = `
        SELECT id, user_id, game_id, account_id, total_price_cents, order_date, receipt_url
        FROM orders WHERE user_id=$1
        ORDER BY order_date DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	if err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.GameID,
		&order.AccountID,
		&order.TotalPriceCents,
		&order.OrderDate,
		&order.ReceiptURL,
	); err != nil {
		return nil, err
	}
	return &order, nil
}
