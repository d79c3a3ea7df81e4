package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/serenolabs/sereno/internal/server/repository"
)

// BackupRepository implements backup blob storage using PostgreSQL.
// Backups are append-only; retrieval always resolves to the newest blob.
type BackupRepository struct {
	pool *pgxpool.Pool
}

// NewBackupRepository creates a new BackupRepository instance.
func NewBackupRepository(pool *pgxpool.Pool) *BackupRepository {
	return &BackupRepository{
		pool: pool,
	}
}

// CreateBackup stores a backup blob for the given user.
func (r *BackupRepository) CreateBackup(ctx context.Context, ownerID int64, filename string, content []byte) (*repository.Backup, error) {
	query := `
		INSERT INTO backups (owner_id, filename, content)
		VALUES ($1, $2, $3)
		RETURNING id, owner_id, filename, created_at
	`

	q := getQuerier(ctx, r.pool)
	backup := repository.Backup{Content: content}
	err := q.QueryRow(ctx, query, ownerID, filename, content).Scan(
		&backup.ID,
		&backup.OwnerID,
		&backup.Filename,
		&backup.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup: %w", err)
	}

	return &backup, nil
}

// GetLatestBackup returns the most recently created backup for the given
// user, including its content. Returns repository.ErrNotFound when the user
// has no backups.
func (r *BackupRepository) GetLatestBackup(ctx context.Context, ownerID int64) (*repository.Backup, error) {
	query := `
		SELECT id, owner_id, filename, content, created_at
		FROM backups
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	q := getQuerier(ctx, r.pool)
	var backup repository.Backup
	err := q.QueryRow(ctx, query, ownerID).Scan(
		&backup.ID,
		&backup.OwnerID,
		&backup.Filename,
		&backup.Content,
		&backup.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest backup: %w", err)
	}

	return &backup, nil
}
