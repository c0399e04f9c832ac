package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrUnavailable is returned by Claim when the ride is missing, already
	// claimed by another driver, or in a terminal status.
	ErrUnavailable = errors.New("entity unavailable for claim")
)
