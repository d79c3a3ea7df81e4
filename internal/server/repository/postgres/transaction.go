package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// txKey is used as a key for storing a transaction in context.
type txKey struct{}

// Transactor provides transaction support for multi-step database operations.
type Transactor struct {
	pool *pgxpool.Pool
}

// NewTransactor creates a new Transactor instance.
func NewTransactor(pool *pgxpool.Pool) *Transactor {
	return &Transactor{
		pool: pool,
	}
}

// WithTransaction executes fn within a database transaction. If fn returns an
// error or panics the transaction is rolled back, otherwise it is committed.
//
// The transaction is stored in the context passed to fn; repository methods
// pick it up through getQuerier, so the same method works both inside and
// outside a transaction. The handle never outlives the call.
func (t *Transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Already inside a transaction: just run the function.
	if tx := getTx(ctx); tx != nil {
		return fn(ctx)
	}

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx) //nolint:errcheck // best effort on panic recovery path
			panic(p)
		}
	}()

	txCtx := context.WithValue(ctx, txKey{}, tx)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// getTx retrieves the transaction from context if it exists.
func getTx(ctx context.Context) pgx.Tx {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return nil
}

// getQuerier returns either the transaction from context or the pool.
func getQuerier(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx := getTx(ctx); tx != nil {
		return tx
	}
	return pool
}

// querier is the subset of query methods that both pgxpool.Pool and pgx.Tx
// implement.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
