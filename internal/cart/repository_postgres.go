package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getCartQuery = `
		SELECT user_id, items, total, updated_at
		FROM carts
		WHERE user_id = $1
	`
	upsertCartQuery = `
		INSERT INTO carts (user_id, items, total, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET items = EXCLUDED.items,
			total = EXCLUDED.total,
			updated_at = EXCLUDED.updated_at
	`
	// ClearCartQuery is shared with the order store, which runs it inside the
	// checkout transaction.
	ClearCartQuery = `
		UPDATE carts
		SET items = '[]'::jsonb, total = 0, updated_at = $2
		WHERE user_id = $1
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (Cart, error) {
	var (
		c   Cart
		raw []byte
	)
	err := r.db.QueryRowContext(ctx, getCartQuery, userID).Scan(&c.UserID, &raw, &c.Total, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Cart{}, ErrNotFound
	}
	if err != nil {
		return Cart{}, err
	}
	if err := json.Unmarshal(raw, &c.Items); err != nil {
		return Cart{}, err
	}
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

func (r *PostgresRepository) Save(ctx context.Context, c Cart) error {
	items := c.Items
	if items == nil {
		items = []LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, upsertCartQuery, c.UserID, raw, c.Total, c.UpdatedAt)
	return err
}

func (r *PostgresRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, ClearCartQuery, userID, time.Now().UTC())
	return err
}
