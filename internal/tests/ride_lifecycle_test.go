package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

type lifecycleFixture struct {
	rideRepo    *MockRideRepository
	driverRepo  *MockDriverRepository
	receiptRepo *MockReceiptRepository
	metrics     *MockMetricsStore
	gateway     *MockPaymentGateway

	rides    *service.RideService
	dispatch *service.DispatchService
}

func newLifecycleFixture() *lifecycleFixture {
	f := &lifecycleFixture{
		rideRepo:    NewMockRideRepository(),
		driverRepo:  NewMockDriverRepository(),
		receiptRepo: NewMockReceiptRepository(),
		metrics:     NewMockMetricsStore(),
		gateway:     NewMockPaymentGateway(),
	}
	pricing := service.NewPricingService(f.metrics)
	receipts := service.NewReceiptService(f.receiptRepo, f.gateway)
	f.rides = service.NewRideService(f.rideRepo, f.driverRepo, pricing, receipts, f.metrics, nil, nil)
	f.dispatch = service.NewDispatchService(f.rideRepo, f.driverRepo, f.metrics, nil, nil)
	return f
}

func (f *lifecycleFixture) requestRide(t *testing.T) *domain.Ride {
	t.Helper()
	ride, err := f.rides.RequestRide(context.Background(), service.RequestRideRequest{
		RiderID:        "rider-1",
		PickupLat:      12.9716,
		PickupLng:      77.5946,
		DestinationLat: 12.9352,
		DestinationLng: 77.6245,
		Tier:           domain.TierEconomy,
	})
	if err != nil {
		t.Fatalf("request ride failed: %v", err)
	}
	return ride
}

func (f *lifecycleFixture) assignAndStart(t *testing.T, rideID, driverID string) *domain.Ride {
	t.Helper()
	ctx := context.Background()
	f.driverRepo.AddDriver(&domain.Driver{ID: driverID, Status: domain.DriverStatusOnline})
	assigned, err := f.dispatch.Accept(ctx, service.AcceptRequest{RideID: rideID, DriverID: driverID})
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	started, err := f.dispatch.StartTrip(ctx, service.StartTripRequest{RideID: rideID, Code: assigned.OneTimeCode})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	return started
}

func TestRequestRide_CreatesRequestedRideWithFare(t *testing.T) {
	f := newLifecycleFixture()

	ride := f.requestRide(t)

	if ride.Status != domain.RideStatusRequested {
		t.Errorf("expected REQUESTED, got %s", ride.Status)
	}
	if ride.ID == "" {
		t.Error("expected a generated ride ID")
	}
	if ride.DistanceKm <= 0 {
		t.Errorf("expected positive distance, got %v", ride.DistanceKm)
	}
	if ride.Price <= 0 {
		t.Errorf("expected positive price, got %v", ride.Price)
	}
	if ride.SurgeFactor < 1.0 {
		t.Errorf("expected surge >= 1.0, got %v", ride.SurgeFactor)
	}
	if ride.CreatedAt.IsZero() {
		t.Error("expected creation timestamp")
	}

	pending, _ := f.metrics.Counts()
	if pending != 1 {
		t.Errorf("expected pending counter 1, got %d", pending)
	}
}

func TestRequestRide_DefaultsTierAndPayment(t *testing.T) {
	f := newLifecycleFixture()

	ride, err := f.rides.RequestRide(context.Background(), service.RequestRideRequest{
		RiderID:        "rider-1",
		PickupLat:      12.9,
		PickupLng:      77.5,
		DestinationLat: 12.8,
		DestinationLng: 77.6,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Tier != domain.TierEconomy {
		t.Errorf("expected economy default, got %s", ride.Tier)
	}
	if ride.PaymentMethod != domain.PaymentMethodCard {
		t.Errorf("expected card default, got %s", ride.PaymentMethod)
	}
}

func TestRequestRide_RejectsBadInput(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	cases := []struct {
		name string
		req  service.RequestRideRequest
		want error
	}{
		{
			"missing rider",
			service.RequestRideRequest{PickupLat: 12, PickupLng: 77, DestinationLat: 13, DestinationLng: 78},
			service.ErrInvalidRiderID,
		},
		{
			"pickup latitude out of range",
			service.RequestRideRequest{RiderID: "r", PickupLat: 91, PickupLng: 77, DestinationLat: 13, DestinationLng: 78},
			service.ErrInvalidPickupLocation,
		},
		{
			"destination longitude out of range",
			service.RequestRideRequest{RiderID: "r", PickupLat: 12, PickupLng: 77, DestinationLat: 13, DestinationLng: 181},
			service.ErrInvalidDestinationLocation,
		},
		{
			"unknown tier",
			service.RequestRideRequest{RiderID: "r", PickupLat: 12, PickupLng: 77, DestinationLat: 13, DestinationLng: 78, Tier: "helicopter"},
			service.ErrInvalidTier,
		},
		{
			"unknown payment method",
			service.RequestRideRequest{RiderID: "r", PickupLat: 12, PickupLng: 77, DestinationLat: 13, DestinationLng: 78, PaymentMethod: "barter"},
			service.ErrInvalidPaymentMethod,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.rides.RequestRide(ctx, tc.req); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if f.rideRepo.CountRides() != 0 {
		t.Errorf("expected no rides persisted, got %d", f.rideRepo.CountRides())
	}
}

func TestLifecycle_FullHappyPath(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	ride := f.requestRide(t)
	started := f.assignAndStart(t, ride.ID, "driver-1")

	paused, err := f.rides.Pause(ctx, ride.ID)
	if err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if paused.Status != domain.RideStatusPaused {
		t.Errorf("expected PAUSED, got %s", paused.Status)
	}

	resumed, err := f.rides.Resume(ctx, ride.ID)
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if resumed.Status != domain.RideStatusStarted {
		t.Errorf("expected STARTED after resume, got %s", resumed.Status)
	}

	completed, err := f.rides.End(ctx, ride.ID)
	if err != nil {
		t.Fatalf("end failed: %v", err)
	}
	if completed.Status != domain.RideStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", completed.Status)
	}
	if completed.CompletedAt.Before(started.StartedAt) {
		t.Error("expected completion after start")
	}

	// The driver is back in rotation.
	if driver := f.driverRepo.GetDriver("driver-1"); driver.Status != domain.DriverStatusOnline {
		t.Errorf("expected driver online after trip, got %s", driver.Status)
	}

	// A receipt was issued and matches the stored pricing inputs.
	receipt, err := f.receiptRepo.GetByRideID(ctx, ride.ID)
	if err != nil {
		t.Fatalf("expected a receipt: %v", err)
	}
	expected := service.CalculateFare(ride.DistanceKm, ride.Tier, ride.SurgeFactor)
	if receipt.TotalFare != expected.TotalFare {
		t.Errorf("receipt total %v does not match fare %v", receipt.TotalFare, expected.TotalFare)
	}
	if receipt.PaymentStatus != domain.PaymentStatusCompleted {
		t.Errorf("expected completed payment, got %s", receipt.PaymentStatus)
	}
}

func TestLifecycle_PauseRequiresStarted(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	ride := f.requestRide(t)
	f.driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusOnline})
	if _, err := f.dispatch.Accept(ctx, service.AcceptRequest{RideID: ride.ID, DriverID: "driver-1"}); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	_, err := f.rides.Pause(ctx, ride.ID)
	var invalidTransition *domain.InvalidTransitionError
	if !errors.As(err, &invalidTransition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if invalidTransition.From != domain.RideStatusAssigned || invalidTransition.To != domain.RideStatusPaused {
		t.Errorf("unexpected transition detail: %v", invalidTransition)
	}
}

func TestLifecycle_CancelPendingRide(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	ride := f.requestRide(t)

	cancelled, err := f.rides.Cancel(ctx, service.CancelRequest{RideID: ride.ID, Reason: "changed my mind"})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != domain.RideStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", cancelled.Status)
	}
	if cancelled.CancelReason != "changed my mind" {
		t.Errorf("expected reason recorded, got %q", cancelled.CancelReason)
	}

	// Pending demand drops back to zero.
	pending, _ := f.metrics.Counts()
	if pending != 0 {
		t.Errorf("expected pending 0, got %d", pending)
	}
}

func TestLifecycle_CancelAssignedRideFreesDriver(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	ride := f.requestRide(t)
	f.driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusOnline})
	if _, err := f.dispatch.Accept(ctx, service.AcceptRequest{RideID: ride.ID, DriverID: "driver-1"}); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	if _, err := f.rides.Cancel(ctx, service.CancelRequest{RideID: ride.ID, Reason: "rider no-show"}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if driver := f.driverRepo.GetDriver("driver-1"); driver.Status != domain.DriverStatusOnline {
		t.Errorf("expected driver freed, got %s", driver.Status)
	}
}

func TestLifecycle_CancelAfterStartFails(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	ride := f.requestRide(t)
	f.assignAndStart(t, ride.ID, "driver-1")

	_, err := f.rides.Cancel(ctx, service.CancelRequest{RideID: ride.ID})
	var invalidTransition *domain.InvalidTransitionError
	if !errors.As(err, &invalidTransition) {
		t.Errorf("expected InvalidTransitionError, got %v", err)
	}
}

func TestLifecycle_TerminalStatesRejectEverything(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	ride := f.requestRide(t)
	f.assignAndStart(t, ride.ID, "driver-1")
	if _, err := f.rides.End(ctx, ride.ID); err != nil {
		t.Fatalf("end failed: %v", err)
	}

	ops := map[string]func() error{
		"pause":  func() error { _, err := f.rides.Pause(ctx, ride.ID); return err },
		"resume": func() error { _, err := f.rides.Resume(ctx, ride.ID); return err },
		"end":    func() error { _, err := f.rides.End(ctx, ride.ID); return err },
		"cancel": func() error { _, err := f.rides.Cancel(ctx, service.CancelRequest{RideID: ride.ID}); return err },
	}
	for name, op := range ops {
		err := op()
		var invalidTransition *domain.InvalidTransitionError
		if !errors.As(err, &invalidTransition) {
			t.Errorf("%s on completed ride: expected InvalidTransitionError, got %v", name, err)
		}
	}

	// Accepting a terminal ride is a lost claim, not a transition error.
	if _, err := f.dispatch.Accept(ctx, service.AcceptRequest{RideID: ride.ID, DriverID: "driver-9"}); !errors.Is(err, service.ErrRideUnavailable) {
		t.Errorf("accept on completed ride: expected ErrRideUnavailable, got %v", err)
	}
}

func TestLifecycle_ReceiptFailureDoesNotBlockCompletion(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	ride := f.requestRide(t)
	f.assignAndStart(t, ride.ID, "driver-1")

	f.receiptRepo.CreateError = ErrMockDBConstraint

	completed, err := f.rides.End(ctx, ride.ID)
	if err != nil {
		t.Fatalf("expected completion despite receipt failure, got %v", err)
	}
	if completed.Status != domain.RideStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", completed.Status)
	}
}

func TestLifecycle_TimestampsAreMonotonic(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	ride := f.requestRide(t)
	f.assignAndStart(t, ride.ID, "driver-1")
	if _, err := f.rides.Pause(ctx, ride.ID); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if _, err := f.rides.Resume(ctx, ride.ID); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	completed, err := f.rides.End(ctx, ride.ID)
	if err != nil {
		t.Fatalf("end failed: %v", err)
	}

	order := []time.Time{completed.CreatedAt, completed.AssignedAt, completed.StartedAt, completed.CompletedAt}
	for i := 1; i < len(order); i++ {
		if order[i].Before(order[i-1]) {
			t.Errorf("timestamp %d precedes timestamp %d", i, i-1)
		}
	}
}
