package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/serenolabs/sereno/internal/server/repository"
)

// ScriptRepository implements social-script data access using PostgreSQL.
type ScriptRepository struct {
	pool *pgxpool.Pool
}

// NewScriptRepository creates a new ScriptRepository instance.
func NewScriptRepository(pool *pgxpool.Pool) *ScriptRepository {
	return &ScriptRepository{
		pool: pool,
	}
}

// CreateScript inserts a script owned by the given user and returns the
// created row with its server-assigned ID and timestamp.
func (r *ScriptRepository) CreateScript(ctx context.Context, ownerID int64, title, message string, category *string) (*repository.Script, error) {
	query := `
		INSERT INTO scripts (owner_id, title, message, category)
		VALUES ($1, $2, $3, $4)
		RETURNING id, owner_id, title, message, category, created_at
	`

	q := getQuerier(ctx, r.pool)
	var script repository.Script
	err := q.QueryRow(ctx, query, ownerID, title, message, category).Scan(
		&script.ID,
		&script.OwnerID,
		&script.Title,
		&script.Message,
		&script.Category,
		&script.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create script: %w", err)
	}

	return &script, nil
}

// ListScriptsByOwner returns all scripts owned by the given user, newest first.
func (r *ScriptRepository) ListScriptsByOwner(ctx context.Context, ownerID int64) ([]repository.Script, error) {
	query := `
		SELECT id, owner_id, title, message, category, created_at
		FROM scripts
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`

	q := getQuerier(ctx, r.pool)
	rows, err := q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scripts: %w", err)
	}
	defer rows.Close()

	scripts := make([]repository.Script, 0)
	for rows.Next() {
		var script repository.Script
		if err := rows.Scan(
			&script.ID,
			&script.OwnerID,
			&script.Title,
			&script.Message,
			&script.Category,
			&script.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan script: %w", err)
		}
		scripts = append(scripts, script)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scripts: %w", err)
	}

	return scripts, nil
}

// DeleteScript removes a script only when it is owned by the given user.
// A missing row and a row owned by someone else both return
// repository.ErrNotFound so callers cannot probe for other users' scripts.
func (r *ScriptRepository) DeleteScript(ctx context.Context, ownerID, scriptID int64) error {
	query := `DELETE FROM scripts WHERE id = $1 AND owner_id = $2`

	q := getQuerier(ctx, r.pool)
	tag, err := q.Exec(ctx, query, scriptID, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to delete script: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}
