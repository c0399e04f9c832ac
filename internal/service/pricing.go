package service

import (
	"context"
	"math"

	"dispatch/internal/domain"
	"dispatch/internal/redis"
)

// PricingService computes surge factors from live demand and fare breakdowns
// from distance and tier.
type PricingService struct {
	metrics redis.MetricsStoreInterface
}

// NewPricingService creates a new PricingService.
func NewPricingService(metrics redis.MetricsStoreInterface) *PricingService {
	return &PricingService{metrics: metrics}
}

// SurgeFactor derives the surge multiplier for a tier from the current
// demand snapshot. It never fails: a metrics read error degrades to 1.0
// (no surge) rather than blocking ride creation.
func (s *PricingService) SurgeFactor(ctx context.Context, tier domain.Tier) float64 {
	cfg := domain.ConfigForTier(tier)

	if s.metrics == nil {
		return cfg.MinSurge
	}

	pendingRides, availableDrivers, err := s.metrics.Snapshot(ctx)
	if err != nil {
		return cfg.MinSurge
	}

	ratio := float64(pendingRides) / math.Max(float64(availableDrivers), 1)

	var factor float64
	switch {
	case ratio > 2.0:
		factor = 3.0
	case ratio > 1.0:
		factor = 2.0
	case ratio > 0.5:
		factor = 1.5
	default:
		factor = 1.0
	}

	return clamp(factor, cfg.MinSurge, cfg.MaxSurge)
}

// CalculateFare derives the fare breakdown for a distance, tier and surge
// factor. It is a pure function: the same inputs always produce the same
// breakdown, which is what makes receipts re-derivable for audit.
func CalculateFare(distanceKm float64, tier domain.Tier, surgeFactor float64) domain.FareBreakdown {
	cfg := domain.ConfigForTier(tier)

	baseFare := cfg.BaseFare
	distanceFare := math.Round(distanceKm * cfg.CostPerKm)
	surgeFare := math.Round((baseFare + distanceFare) * (surgeFactor - 1.0))

	return domain.FareBreakdown{
		BaseFare:     baseFare,
		DistanceFare: distanceFare,
		SurgeFare:    surgeFare,
		TotalFare:    baseFare + distanceFare + surgeFare,
		SurgeFactor:  surgeFactor,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
