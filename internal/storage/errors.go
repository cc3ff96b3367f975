package storage

import (
	"errors"
	"fmt"

	"lightcurve-lab/internal/domain"
)

// Storage errors.
var (
	// ErrNotFound is returned when a requested record does not exist.
	// It matches domain.ErrNotFound.
	ErrNotFound = fmt.Errorf("record %w", domain.ErrNotFound)

	// ErrDuplicateKey is returned when attempting to insert a record
	// with a key that already exists. Stores do not allow updates.
	ErrDuplicateKey = errors.New("duplicate key: store does not allow updates")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
