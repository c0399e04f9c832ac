package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/domain"
	"dispatch/internal/events"
	"dispatch/internal/geo"
	"dispatch/internal/redis"
	"dispatch/internal/repository"
)

// RideService owns the ride lifecycle from request through completion or
// cancellation. Every successful transition is published to the broadcaster
// on the same call path that performed the mutation, so subscribers observe
// a ride's transitions in order.
type RideService struct {
	rideRepo    repository.RideRepository
	driverRepo  repository.DriverRepository
	pricing     *PricingService
	receipts    *ReceiptService
	metrics     redis.MetricsStoreInterface
	cacheStore  *redis.CacheStore
	broadcaster *events.Broadcaster
}

// NewRideService creates a new RideService.
func NewRideService(
	rideRepo repository.RideRepository,
	driverRepo repository.DriverRepository,
	pricing *PricingService,
	receipts *ReceiptService,
	metrics redis.MetricsStoreInterface,
	cacheStore *redis.CacheStore,
	broadcaster *events.Broadcaster,
) *RideService {
	return &RideService{
		rideRepo:    rideRepo,
		driverRepo:  driverRepo,
		pricing:     pricing,
		receipts:    receipts,
		metrics:     metrics,
		cacheStore:  cacheStore,
		broadcaster: broadcaster,
	}
}

// RequestRideRequest contains the parameters for requesting a ride.
type RequestRideRequest struct {
	RiderID        string
	PickupLat      float64
	PickupLng      float64
	DestinationLat float64
	DestinationLng float64
	Tier           domain.Tier          // Optional: defaults to economy.
	PaymentMethod  domain.PaymentMethod // Optional: defaults to card.
}

// RequestRide prices and creates a ride in REQUESTED state and announces it
// to all driver subscribers.
func (s *RideService) RequestRide(ctx context.Context, req RequestRideRequest) (*domain.Ride, error) {
	if err := s.validateRequest(&req); err != nil {
		return nil, err
	}

	distanceKm := geo.Distance(req.PickupLat, req.PickupLng, req.DestinationLat, req.DestinationLng)
	surgeFactor := s.pricing.SurgeFactor(ctx, req.Tier)
	fare := CalculateFare(distanceKm, req.Tier, surgeFactor)

	ride := &domain.Ride{
		ID:             uuid.New().String(),
		RiderID:        req.RiderID,
		PickupLat:      req.PickupLat,
		PickupLng:      req.PickupLng,
		DestinationLat: req.DestinationLat,
		DestinationLng: req.DestinationLng,
		Tier:           req.Tier,
		PaymentMethod:  req.PaymentMethod,
		DistanceKm:     distanceKm,
		SurgeFactor:    surgeFactor,
		Price:          fare.TotalFare,
		Status:         domain.RideStatusRequested,
		CreatedAt:      time.Now(),
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		_ = s.metrics.IncrPendingRides(ctx)
	}

	if s.broadcaster != nil {
		snapshot := *ride
		s.broadcaster.Publish(events.TopicRideRequested, &snapshot)
	}

	log.Printf("ride requested: id=%s tier=%s surge=%.2f price=%.0f", ride.ID, ride.Tier, surgeFactor, ride.Price)
	return ride, nil
}

// GetRide retrieves the current state of a ride, reading through the
// snapshot cache when one is configured.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	if s.cacheStore != nil {
		if cached, err := s.cacheStore.GetRide(ctx, rideID); err == nil && cached != nil {
			return cached, nil
		}
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetRide(ctx, ride)
	}
	return ride, nil
}

// GetAllRides retrieves all rides.
func (s *RideService) GetAllRides(ctx context.Context) ([]*domain.Ride, error) {
	return s.rideRepo.GetAll(ctx)
}

// Pause moves a started ride to PAUSED.
func (s *RideService) Pause(ctx context.Context, rideID string) (*domain.Ride, error) {
	return s.transition(ctx, rideID, domain.RideStatusPaused, func(ride *domain.Ride) {
		ride.PausedAt = time.Now()
	})
}

// Resume moves a paused ride back to STARTED.
func (s *RideService) Resume(ctx context.Context, rideID string) (*domain.Ride, error) {
	return s.transition(ctx, rideID, domain.RideStatusStarted, func(ride *domain.Ride) {
		ride.PausedAt = time.Time{}
	})
}

// End completes a started ride: the driver is freed, the availability
// counter goes back up, and the immutable receipt is issued.
func (s *RideService) End(ctx context.Context, rideID string) (*domain.Ride, error) {
	ride, err := s.transition(ctx, rideID, domain.RideStatusCompleted, func(ride *domain.Ride) {
		ride.CompletedAt = time.Now()
	})
	if err != nil {
		return nil, err
	}

	s.freeDriver(ctx, ride.DriverID)

	if s.receipts != nil {
		if _, err := s.receipts.Issue(ctx, ride); err != nil {
			// The ride is completed either way; the receipt can be
			// re-derived from the ride's stored pricing inputs.
			log.Printf("receipt issue failed: ride=%s err=%v", ride.ID, err)
		}
	}

	return ride, nil
}

// CancelRequest contains the parameters for cancelling a ride.
type CancelRequest struct {
	RideID string
	Reason string
}

// Cancel cancels a ride that has not yet started. A driver assigned to the
// ride is freed; a ride still waiting for a driver stops counting as pending
// demand.
func (s *RideService) Cancel(ctx context.Context, req CancelRequest) (*domain.Ride, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}

	if !ride.Status.CanTransitionTo(domain.RideStatusCancelled) {
		return nil, &domain.InvalidTransitionError{From: ride.Status, To: domain.RideStatusCancelled}
	}

	wasPending := ride.Status == domain.RideStatusRequested

	ride.Status = domain.RideStatusCancelled
	ride.CancelledAt = time.Now()
	ride.CancelReason = req.Reason

	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	if wasPending && s.metrics != nil {
		_ = s.metrics.DecrPendingRides(ctx)
	}
	s.freeDriver(ctx, ride.DriverID)

	s.invalidateRideCache(ctx, ride.ID)
	s.publishStatus(ride)

	log.Printf("ride cancelled: id=%s reason=%q", ride.ID, req.Reason)
	return ride, nil
}

// transition applies a guarded status change plus its timestamp side effect,
// persists it, and publishes the update.
func (s *RideService) transition(ctx context.Context, rideID string, to domain.RideStatus, apply func(*domain.Ride)) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if !ride.Status.CanTransitionTo(to) {
		return nil, &domain.InvalidTransitionError{From: ride.Status, To: to}
	}

	ride.Status = to
	apply(ride)

	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	s.invalidateRideCache(ctx, ride.ID)
	s.publishStatus(ride)

	return ride, nil
}

// freeDriver puts an assigned driver back in rotation after a completed or
// cancelled ride. Best-effort: a ride with no driver, or whose driver record
// vanished, frees nothing.
func (s *RideService) freeDriver(ctx context.Context, driverID string) {
	if driverID == "" {
		return
	}

	err := s.driverRepo.UpdateStatus(ctx, driverID, domain.DriverStatusOnline)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Printf("free driver failed: driver=%s err=%v", driverID, err)
		return
	}
	if err == nil && s.metrics != nil {
		_ = s.metrics.IncrAvailableDrivers(ctx)
	}
}

func (s *RideService) validateRequest(req *RequestRideRequest) error {
	if req.RiderID == "" {
		return ErrInvalidRiderID
	}
	if !isValidLatitude(req.PickupLat) || !isValidLongitude(req.PickupLng) {
		return ErrInvalidPickupLocation
	}
	if !isValidLatitude(req.DestinationLat) || !isValidLongitude(req.DestinationLng) {
		return ErrInvalidDestinationLocation
	}

	if req.Tier == "" {
		req.Tier = domain.TierEconomy
	} else if !domain.ValidTier(req.Tier) {
		return ErrInvalidTier
	}

	switch req.PaymentMethod {
	case "":
		req.PaymentMethod = domain.PaymentMethodCard
	case domain.PaymentMethodCard, domain.PaymentMethodCash, domain.PaymentMethodWallet:
	default:
		return ErrInvalidPaymentMethod
	}

	return nil
}

func (s *RideService) invalidateRideCache(ctx context.Context, rideID string) {
	if s.cacheStore == nil {
		return
	}
	_ = s.cacheStore.InvalidateRide(ctx, rideID)
}

func (s *RideService) publishStatus(ride *domain.Ride) {
	if s.broadcaster == nil {
		return
	}
	snapshot := *ride
	s.broadcaster.Publish(events.TopicRideStatusUpdated, &snapshot)
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
