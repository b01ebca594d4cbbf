package storage

import "errors"

// Storage errors shared by all MatchStore implementations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a match_id is inserted twice.
	// Stored matches are never updated in place.
	ErrDuplicateKey = errors.New("duplicate key: match already stored")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
