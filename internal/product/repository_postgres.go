package product

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const productColumns = `id, name, brand, type, description, price, category, is_sale, is_new, colors, sizes, image, created_at, updated_at`

const (
	listProductsQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE ($1 = '' OR category = $1)
			AND (NOT $2 OR is_sale)
			AND (NOT $3 OR is_new)
		ORDER BY created_at DESC
	`
	searchProductsQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE name ILIKE $1 ESCAPE '\'
			OR brand ILIKE $1 ESCAPE '\'
			OR type ILIKE $1 ESCAPE '\'
			OR description ILIKE $1 ESCAPE '\'
		ORDER BY created_at DESC
	`
	getProductByIDQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`
	getProductsByIDsQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1::uuid[])
	`
	insertProductQuery = `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	updateProductQuery = `
		UPDATE products
		SET name = $2,
			brand = $3,
			type = $4,
			description = $5,
			price = $6,
			category = $7,
			is_sale = $8,
			is_new = $9,
			colors = $10,
			sizes = $11,
			image = $12,
			updated_at = $13
		WHERE id = $1
		RETURNING created_at
	`
	deleteProductQuery     = `DELETE FROM products WHERE id = $1`
	deleteAllProductsQuery = `DELETE FROM products`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Product, error) {
	return r.query(ctx, listProductsQuery, f.Category, f.Sale, f.New)
}

func (r *PostgresRepository) Search(ctx context.Context, q string) ([]Product, error) {
	return r.query(ctx, searchProductsQuery, "%"+escapeLike(q)+"%")
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepository) GetByIDs(ctx context.Context, ids []string) (map[string]Product, error) {
	out := make(map[string]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	products, err := r.query(ctx, getProductsByIDsQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	if err := insertProduct(ctx, r.db, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, p Product) (Product, error) {
	p.ID = id
	err := r.db.QueryRowContext(ctx, updateProductQuery,
		p.ID,
		p.Name,
		p.Brand,
		p.Type,
		p.Description,
		p.Price,
		p.Category,
		p.IsSale,
		p.IsNew,
		pq.Array(p.Colors),
		pq.Array(p.Sizes),
		p.Image,
		p.UpdatedAt,
	).Scan(&p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteProductQuery, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Reset(ctx context.Context, products []Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, deleteAllProductsQuery); err != nil {
		return err
	}
	for _, p := range products {
		if err := insertProduct(ctx, tx, p); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertProduct(ctx context.Context, db execer, p Product) error {
	_, err := db.ExecContext(ctx, insertProductQuery,
		p.ID,
		p.Name,
		p.Brand,
		p.Type,
		p.Description,
		p.Price,
		p.Category,
		p.IsSale,
		p.IsNew,
		pq.Array(p.Colors),
		pq.Array(p.Sizes),
		p.Image,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func scanProduct(scanner rowScanner) (Product, error) {
	p := Product{}
	if err := scanner.Scan(
		&p.ID,
		&p.Name,
		&p.Brand,
		&p.Type,
		&p.Description,
		&p.Price,
		&p.Category,
		&p.IsSale,
		&p.IsNew,
		pq.Array(&p.Colors),
		pq.Array(&p.Sizes),
		&p.Image,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return Product{}, err
	}
	if p.Colors == nil {
		p.Colors = []string{}
	}
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	return p, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user text safe inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
