package redis

import "context"

// LocationStoreInterface defines the interface for driver location operations.
type LocationStoreInterface interface {
	UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error
	FindNearbyDrivers(ctx context.Context, lat, lng, radiusKm float64) ([]DriverLocation, error)
	RemoveLocation(ctx context.Context, driverID string) error
}

// MetricsStoreInterface defines the interface for the demand counters.
// Decrements are floor-clamped at zero; Snapshot is a best-effort read.
type MetricsStoreInterface interface {
	IncrPendingRides(ctx context.Context) error
	DecrPendingRides(ctx context.Context) error
	IncrAvailableDrivers(ctx context.Context) error
	DecrAvailableDrivers(ctx context.Context) error
	Snapshot(ctx context.Context) (pendingRides, availableDrivers int64, err error)
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface = (*LocationStore)(nil)
	_ MetricsStoreInterface  = (*MetricsStore)(nil)
)
