package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jusastore/store-backend/internal/cart"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const orderColumns = `id, user_id, items, total_amount, delivery_info, payment_info, status, order_date, created_at, updated_at`

const (
	insertOrderQuery = `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	getOrderByIDQuery = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`
	listOrdersByUserQuery = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	updateOrderStatusQuery = `
		UPDATE orders
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
		RETURNING ` + orderColumns
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Place(ctx context.Context, o Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	delivery, err := json.Marshal(o.DeliveryInfo)
	if err != nil {
		return err
	}
	payment, err := json.Marshal(o.PaymentInfo)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, insertOrderQuery,
		o.ID,
		o.UserID,
		items,
		o.TotalAmount,
		delivery,
		payment,
		string(o.Status),
		o.OrderDate,
		o.CreatedAt,
		o.UpdatedAt,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, cart.ClearCartQuery, o.UserID, o.CreatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, getOrderByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, listOrdersByUserQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateStatus only applies when the stored status is still from. A miss is
// told apart from a missing order with a second read.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, updateOrderStatusQuery, id, string(from), string(to), at))
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := r.GetByID(ctx, id); err != nil {
			return Order{}, err
		}
		return Order{}, ErrStatusChanged
	}
	return o, err
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	var status string
	var items, delivery, payment []byte
	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&items,
		&o.TotalAmount,
		&delivery,
		&payment,
		&status,
		&o.OrderDate,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(delivery, &o.DeliveryInfo); err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(payment, &o.PaymentInfo); err != nil {
		return Order{}, err
	}
	o.Status = Status(status)
	o.OrderDate = o.OrderDate.UTC()
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return o, nil
}
