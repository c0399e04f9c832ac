package tests

import (
	"context"
	"testing"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

func TestCalculateFare_EconomyNoSurge(t *testing.T) {
	fare := service.CalculateFare(10.0, domain.TierEconomy, 1.0)

	if fare.BaseFare != 50 {
		t.Errorf("expected base fare 50, got %v", fare.BaseFare)
	}
	if fare.DistanceFare != 120 {
		t.Errorf("expected distance fare 120, got %v", fare.DistanceFare)
	}
	if fare.SurgeFare != 0 {
		t.Errorf("expected no surge fare, got %v", fare.SurgeFare)
	}
	if fare.TotalFare != 170 {
		t.Errorf("expected total 170, got %v", fare.TotalFare)
	}
}

func TestCalculateFare_EconomyDoubleSurge(t *testing.T) {
	fare := service.CalculateFare(10.0, domain.TierEconomy, 2.0)

	// 50 base + 120 distance + 170 surge.
	if fare.SurgeFare != 170 {
		t.Errorf("expected surge fare 170, got %v", fare.SurgeFare)
	}
	if fare.TotalFare != 340 {
		t.Errorf("expected total 340, got %v", fare.TotalFare)
	}
}

func TestCalculateFare_PremiumNoSurge(t *testing.T) {
	fare := service.CalculateFare(10.0, domain.TierPremium, 1.0)

	if fare.TotalFare != 300 {
		t.Errorf("expected total 300, got %v", fare.TotalFare)
	}
}

func TestCalculateFare_LuxuryNoSurge(t *testing.T) {
	fare := service.CalculateFare(10.0, domain.TierLuxury, 1.0)

	if fare.TotalFare != 550 {
		t.Errorf("expected total 550, got %v", fare.TotalFare)
	}
}

func TestCalculateFare_TotalIsSumOfComponents(t *testing.T) {
	distances := []float64{0, 0.4, 1.0, 7.3, 25.0}
	surges := []float64{1.0, 1.5, 2.0, 3.0}

	for _, d := range distances {
		for _, surge := range surges {
			fare := service.CalculateFare(d, domain.TierPremium, surge)
			sum := fare.BaseFare + fare.DistanceFare + fare.SurgeFare
			if fare.TotalFare != sum {
				t.Errorf("d=%v surge=%v: total %v != components %v", d, surge, fare.TotalFare, sum)
			}
		}
	}
}

func TestCalculateFare_Deterministic(t *testing.T) {
	a := service.CalculateFare(12.7, domain.TierLuxury, 2.0)
	b := service.CalculateFare(12.7, domain.TierLuxury, 2.0)
	if a != b {
		t.Errorf("same inputs gave different breakdowns: %+v vs %+v", a, b)
	}
}

func TestSurgeFactor_Buckets(t *testing.T) {
	cases := []struct {
		name             string
		pendingRides     int64
		availableDrivers int64
		want             float64
	}{
		{"no demand", 0, 10, 1.0},
		{"balanced", 5, 10, 1.0},
		{"slightly short", 6, 10, 1.5},
		{"short", 15, 10, 2.0},
		{"very short", 25, 10, 3.0},
		{"boundary ratio exactly 1", 10, 10, 1.5},
		{"boundary ratio exactly 2", 20, 10, 2.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			metrics := NewMockMetricsStore()
			metrics.SetCounts(tc.pendingRides, tc.availableDrivers)
			pricing := service.NewPricingService(metrics)

			got := pricing.SurgeFactor(context.Background(), domain.TierLuxury)
			if got != tc.want {
				t.Errorf("pending=%d available=%d: expected %v, got %v", tc.pendingRides, tc.availableDrivers, got, tc.want)
			}
		})
	}
}

func TestSurgeFactor_ZeroDriversUsesFloorOfOne(t *testing.T) {
	metrics := NewMockMetricsStore()
	metrics.SetCounts(3, 0)
	pricing := service.NewPricingService(metrics)

	// Ratio uses max(available, 1): 3/1 > 2 -> 3.0.
	got := pricing.SurgeFactor(context.Background(), domain.TierLuxury)
	if got != 3.0 {
		t.Errorf("expected 3.0, got %v", got)
	}
}

func TestSurgeFactor_ClampedToTierRange(t *testing.T) {
	metrics := NewMockMetricsStore()
	metrics.SetCounts(100, 1) // Raw factor 3.0.

	cases := []struct {
		tier domain.Tier
		want float64
	}{
		{domain.TierEconomy, 3.0},
		{domain.TierPremium, 3.0},
		{domain.TierLuxury, 3.0},
	}
	for _, tc := range cases {
		pricing := service.NewPricingService(metrics)
		got := pricing.SurgeFactor(context.Background(), tc.tier)
		if got != tc.want {
			t.Errorf("tier %s: expected %v, got %v", tc.tier, tc.want, got)
		}
	}
}

func TestSurgeFactor_MetricsFailureDegradesToNoSurge(t *testing.T) {
	metrics := NewMockMetricsStore()
	metrics.SetCounts(100, 1)
	metrics.SnapshotError = ErrMockTimeout
	pricing := service.NewPricingService(metrics)

	got := pricing.SurgeFactor(context.Background(), domain.TierEconomy)
	if got != 1.0 {
		t.Errorf("expected fallback 1.0 on metrics failure, got %v", got)
	}
}

func TestSurgeFactor_NilMetricsDegradesToNoSurge(t *testing.T) {
	pricing := service.NewPricingService(nil)

	got := pricing.SurgeFactor(context.Background(), domain.TierEconomy)
	if got != 1.0 {
		t.Errorf("expected 1.0 without a metrics store, got %v", got)
	}
}
