package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/events"
	"dispatch/internal/redis"
	"dispatch/internal/repository"
)

// DispatchService resolves concurrent driver claims on a ride and gates trip
// start behind the one-time code.
type DispatchService struct {
	rideRepo    repository.RideRepository
	driverRepo  repository.DriverRepository
	metrics     redis.MetricsStoreInterface
	cacheStore  *redis.CacheStore
	broadcaster *events.Broadcaster
}

// NewDispatchService creates a new DispatchService.
func NewDispatchService(
	rideRepo repository.RideRepository,
	driverRepo repository.DriverRepository,
	metrics redis.MetricsStoreInterface,
	cacheStore *redis.CacheStore,
	broadcaster *events.Broadcaster,
) *DispatchService {
	return &DispatchService{
		rideRepo:    rideRepo,
		driverRepo:  driverRepo,
		metrics:     metrics,
		cacheStore:  cacheStore,
		broadcaster: broadcaster,
	}
}

// AcceptRequest contains the parameters for a driver's claim on a ride.
type AcceptRequest struct {
	RideID   string
	DriverID string
}

// Accept resolves a driver's claim on a requested ride. Of any number of
// concurrent claims on the same ride, exactly one wins; the rest get
// ErrRideUnavailable. The winner's side effects: the driver goes busy, a
// one-time trip code is attached to the ride, and the demand counters drop
// by one pending ride and one available driver.
func (s *DispatchService) Accept(ctx context.Context, req AcceptRequest) (*domain.Ride, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}

	code := generateTripCode()

	ride, err := s.rideRepo.Claim(ctx, req.RideID, req.DriverID, code, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrUnavailable) || errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRideUnavailable
		}
		return nil, err
	}

	// Mark the winner busy, creating the record on first contact.
	if err := s.driverRepo.UpdateStatus(ctx, req.DriverID, domain.DriverStatusBusy); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		driver := &domain.Driver{
			ID:     req.DriverID,
			Name:   "Driver " + req.DriverID,
			Status: domain.DriverStatusBusy,
		}
		if err := s.driverRepo.Upsert(ctx, driver); err != nil {
			return nil, err
		}
	}

	// Demand counters are a pricing signal only; failures here never undo
	// the assignment.
	if s.metrics != nil {
		_ = s.metrics.DecrPendingRides(ctx)
		_ = s.metrics.DecrAvailableDrivers(ctx)
	}

	s.invalidateRideCache(ctx, ride.ID)
	s.publishStatus(ride)

	return ride, nil
}

// StartTripRequest contains the parameters for starting a trip.
type StartTripRequest struct {
	RideID string
	Code   string
}

// StartTrip moves an assigned ride to STARTED after verifying the one-time
// code. A mismatched code fails with ErrInvalidOneTimeCode and leaves the
// ride untouched, so the driver may retry with a corrected code.
func (s *DispatchService) StartTrip(ctx context.Context, req StartTripRequest) (*domain.Ride, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}

	if ride.Status != domain.RideStatusAssigned {
		return nil, &domain.InvalidTransitionError{From: ride.Status, To: domain.RideStatusStarted}
	}

	if req.Code == "" || req.Code != ride.OneTimeCode {
		return nil, ErrInvalidOneTimeCode
	}

	ride.Status = domain.RideStatusStarted
	ride.StartedAt = time.Now()
	ride.OneTimeCode = "" // Spent once the trip starts.

	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	s.invalidateRideCache(ctx, ride.ID)
	s.publishStatus(ride)

	return ride, nil
}

func (s *DispatchService) invalidateRideCache(ctx context.Context, rideID string) {
	if s.cacheStore == nil {
		return
	}
	_ = s.cacheStore.InvalidateRide(ctx, rideID)
}

func (s *DispatchService) publishStatus(ride *domain.Ride) {
	if s.broadcaster == nil {
		return
	}
	snapshot := *ride
	s.broadcaster.Publish(events.TopicRideStatusUpdated, &snapshot)
}

// generateTripCode returns four uniformly random ASCII digits. The code is a
// low-stakes rider/driver handshake, not a secret.
func generateTripCode() string {
	return fmt.Sprintf("%04d", rand.Intn(10000))
}
