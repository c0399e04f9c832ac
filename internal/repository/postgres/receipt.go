package postgres

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// ReceiptRepository is a PostgreSQL implementation of repository.ReceiptRepository.
type ReceiptRepository struct {
	q Querier
}

// NewReceiptRepository creates a new PostgreSQL receipt repository.
func NewReceiptRepository(db *sql.DB) *ReceiptRepository {
	return &ReceiptRepository{q: db}
}

// Create persists a new receipt.
func (r *ReceiptRepository) Create(ctx context.Context, receipt *domain.Receipt) error {
	query := `
		INSERT INTO receipts (id, ride_id, base_fare, distance_fare, surge_fare, total_fare,
			surge_factor, payment_method, payment_status, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.q.ExecContext(ctx, query,
		receipt.ID,
		receipt.RideID,
		receipt.BaseFare,
		receipt.DistanceFare,
		receipt.SurgeFare,
		receipt.TotalFare,
		receipt.SurgeFactor,
		receipt.PaymentMethod,
		receipt.PaymentStatus,
		nullString(receipt.TransactionID),
		receipt.CreatedAt,
	)

	return err
}

// GetByRideID retrieves the receipt for a ride.
func (r *ReceiptRepository) GetByRideID(ctx context.Context, rideID string) (*domain.Receipt, error) {
	query := `
		SELECT id, ride_id, base_fare, distance_fare, surge_fare, total_fare,
			surge_factor, payment_method, payment_status, transaction_id, created_at
		FROM receipts WHERE ride_id = $1
	`

	var receipt domain.Receipt
	var transactionID sql.NullString
	err := r.q.QueryRowContext(ctx, query, rideID).Scan(
		&receipt.ID,
		&receipt.RideID,
		&receipt.BaseFare,
		&receipt.DistanceFare,
		&receipt.SurgeFare,
		&receipt.TotalFare,
		&receipt.SurgeFactor,
		&receipt.PaymentMethod,
		&receipt.PaymentStatus,
		&transactionID,
		&receipt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	receipt.TransactionID = transactionID.String
	return &receipt, nil
}
