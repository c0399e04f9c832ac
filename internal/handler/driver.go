package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// DriverHandler handles driver-facing HTTP requests.
type DriverHandler struct {
	driverService   *service.DriverService
	dispatchService *service.DispatchService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService, dispatchService *service.DispatchService) *DriverHandler {
	return &DriverHandler{
		driverService:   driverService,
		dispatchService: dispatchService,
	}
}

// DriverResponse is the HTTP representation of a driver.
type DriverResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Status string  `json:"status"`
}

func toDriverResponse(driver *domain.Driver) DriverResponse {
	return DriverResponse{
		ID:     driver.ID,
		Name:   driver.Name,
		Lat:    driver.Lat,
		Lng:    driver.Lng,
		Status: string(driver.Status),
	}
}

// ReportLocationBody is the payload for a driver location report.
type ReportLocationBody struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ReportLocation handles POST /v1/drivers/:id/location.
func (h *DriverHandler) ReportLocation(c *gin.Context) {
	var body ReportLocationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	driver, err := h.driverService.ReportLocation(c.Request.Context(), service.ReportLocationRequest{
		DriverID: c.Param("id"),
		Lat:      body.Lat,
		Lng:      body.Lng,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDriverResponse(driver))
}

// AcceptRideBody is the payload for a driver claiming a ride.
type AcceptRideBody struct {
	RideID string `json:"ride_id" binding:"required"`
}

// AcceptRide handles POST /v1/drivers/:id/accept. The one-time code is
// withheld from the response; the rider reads it off their own ride view.
func (h *DriverHandler) AcceptRide(c *gin.Context) {
	var body AcceptRideBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	ride, err := h.dispatchService.Accept(c.Request.Context(), service.AcceptRequest{
		RideID:   body.RideID,
		DriverID: c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponse(ride, false))
}

// GoOnline handles POST /v1/drivers/:id/online.
func (h *DriverHandler) GoOnline(c *gin.Context) {
	driver, err := h.driverService.GoOnline(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDriverResponse(driver))
}

// GoOffline handles POST /v1/drivers/:id/offline.
func (h *DriverHandler) GoOffline(c *gin.Context) {
	driver, err := h.driverService.GoOffline(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDriverResponse(driver))
}

// GetAllDrivers handles GET /v1/drivers.
func (h *DriverHandler) GetAllDrivers(c *gin.Context) {
	drivers, err := h.driverService.GetAllDrivers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]DriverResponse, 0, len(drivers))
	for _, driver := range drivers {
		resp = append(resp, toDriverResponse(driver))
	}
	c.JSON(http.StatusOK, gin.H{"drivers": resp, "count": len(resp)})
}

// NearbyDriverResponse is one entry of a nearby-drivers query.
type NearbyDriverResponse struct {
	DriverID string  `json:"driver_id"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

// GetNearbyDrivers handles GET /v1/drivers/nearby?lat=&lng=&radius_km=.
func (h *DriverHandler) GetNearbyDrivers(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "lat and lng query parameters are required"})
		return
	}
	radiusKm, _ := strconv.ParseFloat(c.Query("radius_km"), 64)

	locations, err := h.driverService.NearbyDrivers(c.Request.Context(), lat, lng, radiusKm)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]NearbyDriverResponse, 0, len(locations))
	for _, loc := range locations {
		resp = append(resp, NearbyDriverResponse{DriverID: loc.DriverID, Lat: loc.Lat, Lng: loc.Lng})
	}
	c.JSON(http.StatusOK, gin.H{"drivers": resp, "count": len(resp)})
}
