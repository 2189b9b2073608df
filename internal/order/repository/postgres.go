package repository

import (
	"context"
	"database/sql"

	"medsupply/internal/order/domain"
)

const orderColumns = `id, user_id, medication_name, quantity, status, requested_at, batch_number`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an order repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByUser returns the orders placed by userID, newest first. No rows is an empty slice.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY requested_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.MedicationName, &o.Quantity, &o.Status, &o.RequestedAt, &o.BatchNumber); err != nil {
			return nil, err
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

// ListPublic returns up to limit orders with the requesting hospital's name.
func (r *PostgresRepository) ListPublic(ctx context.Context, limit int) ([]*domain.PublicOrder, error) {
	if limit <= 0 {
		limit = PublicFeedLimit
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT o.id, o.medication_name, o.quantity, o.status, u.hospital_name
FROM orders o
JOIN users u ON o.user_id = u.id
ORDER BY o.requested_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.PublicOrder
	for rows.Next() {
		var p domain.PublicOrder
		if err := rows.Scan(&p.ID, &p.MedicationName, &p.Quantity, &p.Status, &p.HospitalName); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// Create persists o. The order must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, o *domain.Order) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO orders (`+orderColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.UserID, o.MedicationName, o.Quantity, o.Status, o.RequestedAt, o.BatchNumber,
	)
	return err
}

// CountAll returns the number of orders.
func (r *PostgresRepository) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
