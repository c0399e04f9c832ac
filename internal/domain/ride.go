package domain

import (
	"fmt"
	"time"
)

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusRequested RideStatus = "REQUESTED"
	RideStatusAssigned  RideStatus = "ASSIGNED"
	RideStatusStarted   RideStatus = "STARTED"
	RideStatusPaused    RideStatus = "PAUSED"
	RideStatusCompleted RideStatus = "COMPLETED"
	RideStatusCancelled RideStatus = "CANCELLED"
)

// transitions lists the legal next statuses for each non-terminal status.
// COMPLETED and CANCELLED have no entries: nothing leaves a terminal status.
var transitions = map[RideStatus][]RideStatus{
	RideStatusRequested: {RideStatusAssigned, RideStatusCancelled},
	RideStatusAssigned:  {RideStatusStarted, RideStatusCancelled},
	RideStatusStarted:   {RideStatusPaused, RideStatusCompleted},
	RideStatusPaused:    {RideStatusStarted},
}

// IsTerminal reports whether no further transition is legal from s.
func (s RideStatus) IsTerminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// CanTransitionTo reports whether s -> next is a legal transition.
func (s RideStatus) CanTransitionTo(next RideStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// InvalidTransitionError is returned when a state change is attempted from a
// status that does not allow it. Repeating an already-applied transition is
// an error too, never a silent no-op: re-application could double-charge or
// double-dispatch.
type InvalidTransitionError struct {
	From RideStatus
	To   RideStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// PaymentMethod represents the payment method for a ride.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodWallet PaymentMethod = "wallet"
)

// Ride represents a ride request and its lifecycle in the system.
// Rides are never deleted, only transitioned; each transition timestamp is
// set at most once.
type Ride struct {
	ID             string
	RiderID        string
	DriverID       string // Empty until a driver wins the claim.
	PickupLat      float64
	PickupLng      float64
	DestinationLat float64
	DestinationLng float64
	Tier           Tier
	PaymentMethod  PaymentMethod
	DistanceKm     float64
	SurgeFactor    float64
	Price          float64
	Status         RideStatus
	OneTimeCode    string // Set at assignment, cleared when the trip starts.
	CancelReason   string
	CreatedAt      time.Time
	AssignedAt     time.Time
	StartedAt      time.Time
	PausedAt       time.Time
	CompletedAt    time.Time
	CancelledAt    time.Time
}
