package repository

import "time"

// User represents a registered account.
type User struct {
	ID           int64
	Email        string
	PasswordHash []byte
	Salt         []byte
	CreatedAt    time.Time
}

// Script is a short reusable social phrase. OwnerID is nil only for the
// built-in default set served to anonymous callers, which is never persisted.
type Script struct {
	ID        int64
	OwnerID   *int64
	Title     string
	Message   string
	Category  *string
	CreatedAt time.Time
}

// Setting is the single per-user configuration document. The settings blob
// is stored opaque; the server never interprets its contents.
type Setting struct {
	ID        int64
	OwnerID   int64
	Settings  string
	UpdatedAt time.Time
}

// Event is an append-only sensor/log record. There is no update or delete
// path for events.
type Event struct {
	ID         int64
	OwnerID    *int64
	DeviceID   *string
	EventType  string
	Value      *float64
	RecordedAt time.Time
}

// Backup is an opaque client-encrypted blob owned by exactly one user.
type Backup struct {
	ID        int64
	OwnerID   int64
	Filename  string
	Content   []byte
	CreatedAt time.Time
}
