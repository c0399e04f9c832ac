package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"dispatch/internal/handler"
	"dispatch/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler   *handler.RideHandler
	DriverHandler *handler.DriverHandler
	EventsHandler *handler.EventsHandler
	RedisClient   *redis.Client
	NewRelicApp   *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	if deps.RedisClient != nil {
		router.Use(middleware.Idempotency(deps.RedisClient))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.RideHandler.RequestRide)
			rides.GET("", deps.RideHandler.GetAllRides)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("/:id/start", deps.RideHandler.StartTrip)
			rides.POST("/:id/pause", deps.RideHandler.PauseTrip)
			rides.POST("/:id/resume", deps.RideHandler.ResumeTrip)
			rides.POST("/:id/end", deps.RideHandler.EndTrip)
			rides.POST("/:id/cancel", deps.RideHandler.CancelRide)
			rides.GET("/:id/receipt", deps.RideHandler.GetReceipt)
		}

		drivers := v1.Group("/drivers")
		{
			drivers.GET("", deps.DriverHandler.GetAllDrivers)
			drivers.GET("/nearby", deps.DriverHandler.GetNearbyDrivers)
			drivers.POST("/:id/location", deps.DriverHandler.ReportLocation)
			drivers.POST("/:id/accept", deps.DriverHandler.AcceptRide)
			drivers.POST("/:id/online", deps.DriverHandler.GoOnline)
			drivers.POST("/:id/offline", deps.DriverHandler.GoOffline)
		}

		v1.GET("/events/:topic", deps.EventsHandler.Stream)
	}

	return router
}
