package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity is not found.
	// Repositories also return it for rows owned by a different user so the
	// two cases are indistinguishable to callers.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when attempting to create an entity that
	// violates a uniqueness constraint.
	ErrDuplicate = errors.New("entity already exists")
)
