package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/serenolabs/sereno/internal/server/repository"
)

// EventRepository implements append-only event ingestion using PostgreSQL.
// Events are write-once: there is deliberately no update or delete method.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository instance.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{
		pool: pool,
	}
}

// CreateEvent appends an event record and returns the stored row.
func (r *EventRepository) CreateEvent(ctx context.Context, ownerID *int64, deviceID *string, eventType string, value *float64, recordedAt time.Time) (*repository.Event, error) {
	query := `
		INSERT INTO events (owner_id, device_id, event_type, value, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, owner_id, device_id, event_type, value, recorded_at
	`

	q := getQuerier(ctx, r.pool)
	var event repository.Event
	err := q.QueryRow(ctx, query, ownerID, deviceID, eventType, value, recordedAt).Scan(
		&event.ID,
		&event.OwnerID,
		&event.DeviceID,
		&event.EventType,
		&event.Value,
		&event.RecordedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return &event, nil
}

// ListEventsByOwner returns the given user's events, newest first, capped at limit.
func (r *EventRepository) ListEventsByOwner(ctx context.Context, ownerID int64, limit int) ([]repository.Event, error) {
	query := `
		SELECT id, owner_id, device_id, event_type, value, recorded_at
		FROM events
		WHERE owner_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT $2
	`

	q := getQuerier(ctx, r.pool)
	rows, err := q.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]repository.Event, 0)
	for rows.Next() {
		var event repository.Event
		if err := rows.Scan(
			&event.ID,
			&event.OwnerID,
			&event.DeviceID,
			&event.EventType,
			&event.Value,
			&event.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	return events, nil
}
