package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/serenolabs/sereno/internal/server/repository"
)

// SettingRepository implements per-user settings access using PostgreSQL.
type SettingRepository struct {
	pool *pgxpool.Pool
}

// NewSettingRepository creates a new SettingRepository instance.
func NewSettingRepository(pool *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{
		pool: pool,
	}
}

// UpsertSetting stores the settings blob for a user, creating the row on
// first write and overwriting it thereafter. The ON CONFLICT clause against
// the UNIQUE(owner_id) constraint makes the read-check-then-write a single
// atomic statement, so concurrent upserts from the same user cannot create
// duplicate rows.
func (r *SettingRepository) UpsertSetting(ctx context.Context, ownerID int64, settings string) (*repository.Setting, error) {
	query := `
		INSERT INTO settings (owner_id, settings, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (owner_id)
		DO UPDATE SET settings = EXCLUDED.settings, updated_at = now()
		RETURNING id, owner_id, settings, updated_at
	`

	q := getQuerier(ctx, r.pool)
	var setting repository.Setting
	err := q.QueryRow(ctx, query, ownerID, settings).Scan(
		&setting.ID,
		&setting.OwnerID,
		&setting.Settings,
		&setting.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert setting: %w", err)
	}

	return &setting, nil
}

// GetSettingByOwner retrieves the single settings row for a user.
// Returns repository.ErrNotFound if the user has never stored settings.
func (r *SettingRepository) GetSettingByOwner(ctx context.Context, ownerID int64) (*repository.Setting, error) {
	query := `
		SELECT id, owner_id, settings, updated_at
		FROM settings
		WHERE owner_id = $1
	`

	q := getQuerier(ctx, r.pool)
	var setting repository.Setting
	err := q.QueryRow(ctx, query, ownerID).Scan(
		&setting.ID,
		&setting.OwnerID,
		&setting.Settings,
		&setting.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}

	return &setting, nil
}
