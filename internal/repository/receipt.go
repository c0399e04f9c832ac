package repository

import (
	"context"

	"dispatch/internal/domain"
)

// ReceiptRepository defines the persistence operations for receipts.
type ReceiptRepository interface {
	// Create persists a new receipt. Receipts are immutable once written.
	Create(ctx context.Context, receipt *domain.Receipt) error

	// GetByRideID retrieves the receipt for a ride.
	GetByRideID(ctx context.Context, rideID string) (*domain.Receipt, error)
}
