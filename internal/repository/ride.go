package repository

import (
	"context"
	"time"

	"dispatch/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetAll retrieves all rides.
	GetAll(ctx context.Context) ([]*domain.Ride, error)

	// Update updates an existing ride.
	Update(ctx context.Context, ride *domain.Ride) error

	// Claim assigns driverID and the one-time code to a ride that is still
	// REQUESTED, stamping the assignment time. The status check and the
	// write MUST execute as a single atomic operation so that at most one
	// of any number of concurrent claims wins; a plain read-then-write is
	// not a conforming implementation. Returns ErrUnavailable when the ride
	// is missing, already claimed, or terminal.
	Claim(ctx context.Context, rideID, driverID, code string, at time.Time) (*domain.Ride, error)
}
