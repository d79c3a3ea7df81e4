package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/serenolabs/sereno/internal/server/repository"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// UserRepository implements user data access operations using PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		pool: pool,
	}
}

// CreateUser creates a new user and returns the created row.
// Returns repository.ErrDuplicate if the email is already registered.
func (r *UserRepository) CreateUser(ctx context.Context, email string, passwordHash, salt []byte) (*repository.User, error) {
	query := `
		INSERT INTO users (email, password_hash, salt)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash, salt, created_at
	`

	q := getQuerier(ctx, r.pool)
	var user repository.User
	err := q.QueryRow(ctx, query, email, passwordHash, salt).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Salt,
		&user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("user with email %s: %w", email, repository.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// GetUserByEmail retrieves a user by email address.
// Returns repository.ErrNotFound if the user doesn't exist.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*repository.User, error) {
	query := `
		SELECT id, email, password_hash, salt, created_at
		FROM users
		WHERE email = $1
	`

	q := getQuerier(ctx, r.pool)
	var user repository.User
	err := q.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Salt,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}
