package domain

// Tier represents the service class of a ride, each with its own pricing
// policy.
type Tier string

const (
	TierEconomy Tier = "economy"
	TierPremium Tier = "premium"
	TierLuxury  Tier = "luxury"
)

// TierConfig holds the fixed pricing policy for a service tier.
type TierConfig struct {
	BaseFare  float64
	CostPerKm float64
	MinSurge  float64
	MaxSurge  float64
}

// tierConfigs is the fixed pricing policy table.
var tierConfigs = map[Tier]TierConfig{
	TierEconomy: {BaseFare: 50, CostPerKm: 12, MinSurge: 1.0, MaxSurge: 3.0},
	TierPremium: {BaseFare: 100, CostPerKm: 20, MinSurge: 1.0, MaxSurge: 3.5},
	TierLuxury:  {BaseFare: 200, CostPerKm: 35, MinSurge: 1.0, MaxSurge: 4.0},
}

// ValidTier reports whether t is a known service tier.
func ValidTier(t Tier) bool {
	_, ok := tierConfigs[t]
	return ok
}

// ConfigForTier returns the pricing policy for a tier. Unknown tiers fall
// back to economy.
func ConfigForTier(t Tier) TierConfig {
	if cfg, ok := tierConfigs[t]; ok {
		return cfg
	}
	return tierConfigs[TierEconomy]
}

// FareBreakdown is the immutable fare decomposition produced by one pricing
// call. It is re-derivable deterministically from (distanceKm, tier,
// surgeFactor) and is not independently stored state.
type FareBreakdown struct {
	BaseFare     float64
	DistanceFare float64
	SurgeFare    float64
	TotalFare    float64
	SurgeFactor  float64
}
