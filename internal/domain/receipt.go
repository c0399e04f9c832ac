package domain

import "time"

// PaymentStatus represents the settlement state of a receipt.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
)

// Receipt records the immutable fare breakdown of a completed ride.
type Receipt struct {
	ID            string
	RideID        string
	BaseFare      float64
	DistanceFare  float64
	SurgeFare     float64
	TotalFare     float64
	SurgeFactor   float64
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus
	TransactionID string // Supplied by the payment gateway; empty while pending.
	CreatedAt     time.Time
}
