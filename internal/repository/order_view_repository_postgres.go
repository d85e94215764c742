package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jnst/order-processor/internal/model"
)

const (
	lookupOrderViewSQL = `SELECT id, order_id, customer_id, item, created_at
FROM order_view
WHERE order_id = $1`

	listOrderViewsSQL = `SELECT id, order_id, customer_id, item, created_at
FROM order_view
ORDER BY created_at, order_id`
)

// querier is the subset of *pgxpool.Pool used by the repository.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// OrderViewRepositoryPostgres implements OrderViewRepository on a Postgres table
// maintained by the view builder.
type OrderViewRepositoryPostgres struct {
	db querier
}

// NewOrderViewRepositoryPostgres creates a new OrderViewRepository backed by PostgreSQL.
func NewOrderViewRepositoryPostgres(pool *pgxpool.Pool) OrderViewRepository {
	return &OrderViewRepositoryPostgres{db: pool}
}

// Lookup retrieves the view of one order.
func (r *OrderViewRepositoryPostgres) Lookup(ctx context.Context, orderID uuid.UUID) (*model.OrderView, error) {
	view, err := scanOrderView(r.db.QueryRow(ctx, lookupOrderViewSQL, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up order view %s: %w", orderID, err)
	}

	return view, nil
}

// ListAll retrieves every order view, oldest first.
func (r *OrderViewRepositoryPostgres) ListAll(ctx context.Context) ([]*model.OrderView, error) {
	rows, err := r.db.Query(ctx, listOrderViewsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list order views: %w", err)
	}

	views, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.OrderView, error) {
		return scanOrderView(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan order views: %w", err)
	}

	return views, nil
}

func scanOrderView(row pgx.Row) (*model.OrderView, error) {
	var v model.OrderView
	if err := row.Scan(&v.ID, &v.OrderID, &v.CustomerID, &v.Item, &v.CreatedAt); err != nil {
		return nil, err
	}

	return &v, nil
}
