package service

import (
	"context"
	"errors"

	"dispatch/internal/domain"
	"dispatch/internal/events"
	"dispatch/internal/redis"
	"dispatch/internal/repository"
)

// DriverService handles driver presence and location reporting.
type DriverService struct {
	locationStore redis.LocationStoreInterface
	driverRepo    repository.DriverRepository
	metrics       redis.MetricsStoreInterface
	broadcaster   *events.Broadcaster
}

// NewDriverService creates a new DriverService.
func NewDriverService(
	locationStore redis.LocationStoreInterface,
	driverRepo repository.DriverRepository,
	metrics redis.MetricsStoreInterface,
	broadcaster *events.Broadcaster,
) *DriverService {
	return &DriverService{
		locationStore: locationStore,
		driverRepo:    driverRepo,
		metrics:       metrics,
		broadcaster:   broadcaster,
	}
}

// ReportLocationRequest contains the parameters for a location report.
type ReportLocationRequest struct {
	DriverID string
	Lat      float64
	Lng      float64
}

// ReportLocation records a driver's position in the geo index and publishes
// it. A report from an unknown or offline driver also brings the driver
// online; a busy driver stays busy.
func (s *DriverService) ReportLocation(ctx context.Context, req ReportLocationRequest) (*domain.Driver, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if !isValidLatitude(req.Lat) || !isValidLongitude(req.Lng) {
		return nil, ErrInvalidLocation
	}

	if err := s.locationStore.UpdateLocation(ctx, req.DriverID, req.Lat, req.Lng); err != nil {
		return nil, err
	}

	driver, err := s.driverRepo.GetByID(ctx, req.DriverID)
	cameOnline := false
	switch {
	case errors.Is(err, repository.ErrNotFound):
		driver = &domain.Driver{
			ID:     req.DriverID,
			Name:   "Driver " + req.DriverID,
			Status: domain.DriverStatusOnline,
		}
		cameOnline = true
	case err != nil:
		return nil, err
	case driver.Status == domain.DriverStatusOffline:
		driver.Status = domain.DriverStatusOnline
		cameOnline = true
	}

	driver.Lat = req.Lat
	driver.Lng = req.Lng

	if err := s.driverRepo.Upsert(ctx, driver); err != nil {
		return nil, err
	}

	if cameOnline && s.metrics != nil {
		_ = s.metrics.IncrAvailableDrivers(ctx)
	}

	if s.broadcaster != nil {
		snapshot := *driver
		s.broadcaster.Publish(events.TopicDriverLocationUpdated, &snapshot)
	}

	return driver, nil
}

// GoOnline marks a driver available for dispatch. Already-online and busy
// drivers are returned unchanged so the availability counter is bumped at
// most once per presence change.
func (s *DriverService) GoOnline(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if errors.Is(err, repository.ErrNotFound) {
		driver = &domain.Driver{
			ID:   driverID,
			Name: "Driver " + driverID,
		}
	} else if err != nil {
		return nil, err
	}

	if driver.Status == domain.DriverStatusOnline || driver.Status == domain.DriverStatusBusy {
		return driver, nil
	}

	driver.Status = domain.DriverStatusOnline
	if err := s.driverRepo.Upsert(ctx, driver); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		_ = s.metrics.IncrAvailableDrivers(ctx)
	}

	return driver, nil
}

// GoOffline takes a driver out of rotation and drops it from the geo index.
func (s *DriverService) GoOffline(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	wasAvailable := driver.Status == domain.DriverStatusOnline

	driver.Status = domain.DriverStatusOffline
	if err := s.driverRepo.Upsert(ctx, driver); err != nil {
		return nil, err
	}

	if err := s.locationStore.RemoveLocation(ctx, driverID); err != nil {
		return nil, err
	}

	if wasAvailable && s.metrics != nil {
		_ = s.metrics.DecrAvailableDrivers(ctx)
	}

	return driver, nil
}

// NearbyDrivers returns drivers within radiusKm of a point, nearest first.
func (s *DriverService) NearbyDrivers(ctx context.Context, lat, lng, radiusKm float64) ([]redis.DriverLocation, error) {
	if !isValidLatitude(lat) || !isValidLongitude(lng) {
		return nil, ErrInvalidLocation
	}
	if radiusKm <= 0 {
		radiusKm = 5.0
	}
	return s.locationStore.FindNearbyDrivers(ctx, lat, lng, radiusKm)
}

// GetAllDrivers retrieves all drivers.
func (s *DriverService) GetAllDrivers(ctx context.Context) ([]*domain.Driver, error) {
	return s.driverRepo.GetAll(ctx)
}
