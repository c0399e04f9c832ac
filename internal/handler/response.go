package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
	"dispatch/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var invalidTransition *domain.InvalidTransitionError

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Lost race / illegal state change.
	case errors.Is(err, service.ErrRideUnavailable),
		errors.As(err, &invalidTransition):
		return http.StatusConflict

	case errors.Is(err, service.ErrInvalidOneTimeCode):
		return http.StatusForbidden

	// Validation errors.
	case errors.Is(err, service.ErrInvalidRiderID),
		errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidPickupLocation),
		errors.Is(err, service.ErrInvalidDestinationLocation),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidTier),
		errors.Is(err, service.ErrInvalidPaymentMethod):
		return http.StatusBadRequest

	// Storage failures and anything unclassified.
	default:
		return http.StatusInternalServerError
	}
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID             string  `json:"id"`
	RiderID        string  `json:"rider_id"`
	DriverID       string  `json:"driver_id,omitempty"`
	PickupLat      float64 `json:"pickup_lat"`
	PickupLng      float64 `json:"pickup_lng"`
	DestinationLat float64 `json:"destination_lat"`
	DestinationLng float64 `json:"destination_lng"`
	Tier           string  `json:"tier"`
	PaymentMethod  string  `json:"payment_method"`
	DistanceKm     float64 `json:"distance_km"`
	SurgeFactor    float64 `json:"surge_factor"`
	SurgeActive    bool    `json:"surge_active"`
	Price          float64 `json:"price"`
	Status         string  `json:"status"`
	OneTimeCode    string  `json:"one_time_code,omitempty"`
	CancelReason   string  `json:"cancel_reason,omitempty"`
	CreatedAt      string  `json:"created_at"`
	AssignedAt     string  `json:"assigned_at,omitempty"`
	StartedAt      string  `json:"started_at,omitempty"`
	PausedAt       string  `json:"paused_at,omitempty"`
	CompletedAt    string  `json:"completed_at,omitempty"`
	CancelledAt    string  `json:"cancelled_at,omitempty"`
}

// toRideResponse converts a domain ride. The one-time code is included only
// when withCode is set: the rider reads it, the drivers never do.
func toRideResponse(ride *domain.Ride, withCode bool) RideResponse {
	resp := RideResponse{
		ID:             ride.ID,
		RiderID:        ride.RiderID,
		DriverID:       ride.DriverID,
		PickupLat:      ride.PickupLat,
		PickupLng:      ride.PickupLng,
		DestinationLat: ride.DestinationLat,
		DestinationLng: ride.DestinationLng,
		Tier:           string(ride.Tier),
		PaymentMethod:  string(ride.PaymentMethod),
		DistanceKm:     ride.DistanceKm,
		SurgeFactor:    ride.SurgeFactor,
		SurgeActive:    ride.SurgeFactor > 1.0,
		Price:          ride.Price,
		Status:         string(ride.Status),
		CancelReason:   ride.CancelReason,
		CreatedAt:      formatTime(ride.CreatedAt),
		AssignedAt:     formatTime(ride.AssignedAt),
		StartedAt:      formatTime(ride.StartedAt),
		PausedAt:       formatTime(ride.PausedAt),
		CompletedAt:    formatTime(ride.CompletedAt),
		CancelledAt:    formatTime(ride.CancelledAt),
	}
	if withCode {
		resp.OneTimeCode = ride.OneTimeCode
	}
	return resp
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
