package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// RideHandler handles ride lifecycle HTTP requests.
type RideHandler struct {
	rideService     *service.RideService
	dispatchService *service.DispatchService
	receiptService  *service.ReceiptService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(
	rideService *service.RideService,
	dispatchService *service.DispatchService,
	receiptService *service.ReceiptService,
) *RideHandler {
	return &RideHandler{
		rideService:     rideService,
		dispatchService: dispatchService,
		receiptService:  receiptService,
	}
}

// RequestRideBody is the payload for creating a ride.
type RequestRideBody struct {
	RiderID        string  `json:"rider_id" binding:"required"`
	PickupLat      float64 `json:"pickup_lat"`
	PickupLng      float64 `json:"pickup_lng"`
	DestinationLat float64 `json:"destination_lat"`
	DestinationLng float64 `json:"destination_lng"`
	Tier           string  `json:"tier"`
	PaymentMethod  string  `json:"payment_method"`
}

// RequestRide handles POST /v1/rides.
func (h *RideHandler) RequestRide(c *gin.Context) {
	var body RequestRideBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	ride, err := h.rideService.RequestRide(c.Request.Context(), service.RequestRideRequest{
		RiderID:        body.RiderID,
		PickupLat:      body.PickupLat,
		PickupLng:      body.PickupLng,
		DestinationLat: body.DestinationLat,
		DestinationLng: body.DestinationLng,
		Tier:           domain.Tier(body.Tier),
		PaymentMethod:  domain.PaymentMethod(body.PaymentMethod),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toRideResponse(ride, true))
}

// GetRide handles GET /v1/rides/:id. The response carries the one-time code
// while the ride is assigned, so the rider can hand it to the driver.
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponse(ride, true))
}

// GetAllRides handles GET /v1/rides.
func (h *RideHandler) GetAllRides(c *gin.Context) {
	rides, err := h.rideService.GetAllRides(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]RideResponse, 0, len(rides))
	for _, ride := range rides {
		resp = append(resp, toRideResponse(ride, false))
	}
	c.JSON(http.StatusOK, gin.H{"rides": resp, "count": len(resp)})
}

// StartTripBody is the payload for starting a trip.
type StartTripBody struct {
	Code string `json:"code" binding:"required"`
}

// StartTrip handles POST /v1/rides/:id/start.
func (h *RideHandler) StartTrip(c *gin.Context) {
	var body StartTripBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	ride, err := h.dispatchService.StartTrip(c.Request.Context(), service.StartTripRequest{
		RideID: c.Param("id"),
		Code:   body.Code,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponse(ride, false))
}

// PauseTrip handles POST /v1/rides/:id/pause.
func (h *RideHandler) PauseTrip(c *gin.Context) {
	ride, err := h.rideService.Pause(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponse(ride, false))
}

// ResumeTrip handles POST /v1/rides/:id/resume.
func (h *RideHandler) ResumeTrip(c *gin.Context) {
	ride, err := h.rideService.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponse(ride, false))
}

// EndTrip handles POST /v1/rides/:id/end.
func (h *RideHandler) EndTrip(c *gin.Context) {
	ride, err := h.rideService.End(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponse(ride, false))
}

// CancelRideBody is the payload for cancelling a ride.
type CancelRideBody struct {
	Reason string `json:"reason"`
}

// CancelRide handles POST /v1/rides/:id/cancel.
func (h *RideHandler) CancelRide(c *gin.Context) {
	var body CancelRideBody
	_ = c.ShouldBindJSON(&body) // Reason is optional; an empty body is fine.

	ride, err := h.rideService.Cancel(c.Request.Context(), service.CancelRequest{
		RideID: c.Param("id"),
		Reason: body.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponse(ride, false))
}

// ReceiptResponse is the HTTP representation of a receipt.
type ReceiptResponse struct {
	ID            string  `json:"id"`
	RideID        string  `json:"ride_id"`
	BaseFare      float64 `json:"base_fare"`
	DistanceFare  float64 `json:"distance_fare"`
	SurgeFare     float64 `json:"surge_fare"`
	TotalFare     float64 `json:"total_fare"`
	SurgeFactor   float64 `json:"surge_factor"`
	PaymentMethod string  `json:"payment_method"`
	PaymentStatus string  `json:"payment_status"`
	TransactionID string  `json:"transaction_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// GetReceipt handles GET /v1/rides/:id/receipt.
func (h *RideHandler) GetReceipt(c *gin.Context) {
	receipt, err := h.receiptService.GetByRideID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ReceiptResponse{
		ID:            receipt.ID,
		RideID:        receipt.RideID,
		BaseFare:      receipt.BaseFare,
		DistanceFare:  receipt.DistanceFare,
		SurgeFare:     receipt.SurgeFare,
		TotalFare:     receipt.TotalFare,
		SurgeFactor:   receipt.SurgeFactor,
		PaymentMethod: string(receipt.PaymentMethod),
		PaymentStatus: string(receipt.PaymentStatus),
		TransactionID: receipt.TransactionID,
		CreatedAt:     formatTime(receipt.CreatedAt),
	})
}
