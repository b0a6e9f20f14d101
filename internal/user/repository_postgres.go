package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const userColumns = `id, first_name, last_name, email, password, phone_number, address, payment_details, created_at, updated_at`

const (
	getUserByIDQuery = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	getUserByEmailQuery = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`
	insertUserQuery = `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	updateUserQuery = `
		UPDATE users
		SET first_name = $2,
			last_name = $3,
			email = $4,
			password = $5,
			phone_number = $6,
			address = $7,
			payment_details = $8,
			updated_at = $9
		WHERE id = $1
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (User, error) {
	return r.getOne(ctx, getUserByIDQuery, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, getUserByEmailQuery, email)
}

func (r *PostgresRepository) Create(ctx context.Context, u User) (User, error) {
	address, payment, err := marshalNested(u)
	if err != nil {
		return User{}, err
	}

	_, err = r.db.ExecContext(ctx, insertUserQuery,
		u.ID,
		u.FirstName,
		u.LastName,
		u.Email,
		u.Password,
		u.PhoneNumber,
		address,
		payment,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return User{}, ErrEmailExists
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) Update(ctx context.Context, u User) (User, error) {
	address, payment, err := marshalNested(u)
	if err != nil {
		return User{}, err
	}

	res, err := r.db.ExecContext(ctx, updateUserQuery,
		u.ID,
		u.FirstName,
		u.LastName,
		u.Email,
		u.Password,
		u.PhoneNumber,
		address,
		payment,
		u.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return User{}, ErrEmailExists
	}
	if err != nil {
		return User{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return User{}, err
	}
	if n == 0 {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func scanUser(scanner rowScanner) (User, error) {
	var (
		u       User
		address []byte
		payment []byte
	)
	if err := scanner.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.Password,
		&u.PhoneNumber,
		&address,
		&payment,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return User{}, err
	}

	if len(address) > 0 {
		if err := json.Unmarshal(address, &u.Address); err != nil {
			return User{}, err
		}
	}
	if len(payment) > 0 {
		if err := json.Unmarshal(payment, &u.PaymentDetails); err != nil {
			return User{}, err
		}
	}
	return u, nil
}

func marshalNested(u User) ([]byte, []byte, error) {
	address, err := json.Marshal(u.Address)
	if err != nil {
		return nil, nil, err
	}
	payment, err := json.Marshal(u.PaymentDetails)
	if err != nil {
		return nil, nil, err
	}
	return address, payment, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
