package service

import "errors"

var (
	// ErrRideUnavailable is returned when a driver loses the assignment
	// race or the ride is already terminal or missing. Callers should stop
	// offering this ride, not retry.
	ErrRideUnavailable = errors.New("ride unavailable")

	// ErrInvalidOneTimeCode is returned when the supplied trip code does
	// not match the one generated at assignment. The ride is not mutated;
	// the caller may retry with a corrected code.
	ErrInvalidOneTimeCode = errors.New("invalid one-time code")

	// ErrInvalidRiderID is returned when rider ID is empty.
	ErrInvalidRiderID = errors.New("invalid rider id")

	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidPickupLocation is returned when pickup coordinates are invalid.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidDestinationLocation is returned when destination coordinates are invalid.
	ErrInvalidDestinationLocation = errors.New("invalid destination location")

	// ErrInvalidLocation is returned when location coordinates are invalid.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidTier is returned when the requested service tier is unknown.
	ErrInvalidTier = errors.New("invalid tier")

	// ErrInvalidPaymentMethod is returned when the payment method is unknown.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)
