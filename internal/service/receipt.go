package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// PaymentGateway settles a fare and supplies a transaction identifier.
type PaymentGateway interface {
	Charge(ctx context.Context, method domain.PaymentMethod, amount float64) (transactionID string, err error)
}

// MockGateway is a PaymentGateway that always settles immediately.
type MockGateway struct{}

// NewMockGateway creates a new MockGateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Charge returns a fresh transaction identifier.
func (g *MockGateway) Charge(ctx context.Context, method domain.PaymentMethod, amount float64) (string, error) {
	return uuid.New().String(), nil
}

// ReceiptService records the immutable fare breakdown of completed rides.
type ReceiptService struct {
	receiptRepo repository.ReceiptRepository
	gateway     PaymentGateway
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(receiptRepo repository.ReceiptRepository, gateway PaymentGateway) *ReceiptService {
	return &ReceiptService{
		receiptRepo: receiptRepo,
		gateway:     gateway,
	}
}

// Issue records the fare breakdown for a completed ride. The breakdown is
// re-derived from the ride's stored distance, tier and surge factor, so a
// receipt is always reproducible from the ride alone. A gateway failure
// leaves the receipt pending rather than blocking completion.
func (s *ReceiptService) Issue(ctx context.Context, ride *domain.Ride) (*domain.Receipt, error) {
	fare := CalculateFare(ride.DistanceKm, ride.Tier, ride.SurgeFactor)

	paymentStatus := domain.PaymentStatusPending
	var transactionID string
	if s.gateway != nil {
		if txnID, err := s.gateway.Charge(ctx, ride.PaymentMethod, fare.TotalFare); err == nil && txnID != "" {
			transactionID = txnID
			paymentStatus = domain.PaymentStatusCompleted
		}
	}

	receipt := &domain.Receipt{
		ID:            uuid.New().String(),
		RideID:        ride.ID,
		BaseFare:      fare.BaseFare,
		DistanceFare:  fare.DistanceFare,
		SurgeFare:     fare.SurgeFare,
		TotalFare:     fare.TotalFare,
		SurgeFactor:   fare.SurgeFactor,
		PaymentMethod: ride.PaymentMethod,
		PaymentStatus: paymentStatus,
		TransactionID: transactionID,
		CreatedAt:     time.Now(),
	}

	if err := s.receiptRepo.Create(ctx, receipt); err != nil {
		return nil, err
	}

	return receipt, nil
}

// GetByRideID retrieves the receipt for a ride.
func (s *ReceiptService) GetByRideID(ctx context.Context, rideID string) (*domain.Receipt, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	return s.receiptRepo.GetByRideID(ctx, rideID)
}
