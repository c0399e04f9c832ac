package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Demand counter keys.
const (
	pendingRidesKey     = "demand:pending_rides"
	availableDriversKey = "demand:available_drivers"
)

// decrIfPositive decrements a counter only while it is above zero. Running
// the check and the decrement as one script keeps the floor clamp atomic
// under concurrent writers.
var decrIfPositive = redis.NewScript(`
local v = tonumber(redis.call('GET', KEYS[1]) or '0')
if v > 0 then
	return redis.call('DECR', KEYS[1])
end
return 0
`)

// MetricsStore keeps the process-wide demand counters (pending rides,
// available drivers) in Redis. The counters are a pricing signal, not a
// correctness-critical count: writes are clamped at zero and reads are
// best-effort snapshots.
type MetricsStore struct {
	client *redis.Client
}

// NewMetricsStore creates a new MetricsStore.
func NewMetricsStore(client *redis.Client) *MetricsStore {
	return &MetricsStore{client: client}
}

// IncrPendingRides increments the pending ride counter.
func (s *MetricsStore) IncrPendingRides(ctx context.Context) error {
	return s.client.Incr(ctx, pendingRidesKey).Err()
}

// DecrPendingRides decrements the pending ride counter, clamped at zero.
func (s *MetricsStore) DecrPendingRides(ctx context.Context) error {
	return decrIfPositive.Run(ctx, s.client, []string{pendingRidesKey}).Err()
}

// IncrAvailableDrivers increments the available driver counter.
func (s *MetricsStore) IncrAvailableDrivers(ctx context.Context) error {
	return s.client.Incr(ctx, availableDriversKey).Err()
}

// DecrAvailableDrivers decrements the available driver counter, clamped at zero.
func (s *MetricsStore) DecrAvailableDrivers(ctx context.Context) error {
	return decrIfPositive.Run(ctx, s.client, []string{availableDriversKey}).Err()
}

// Snapshot returns the current counter values. The read is not transactional
// with any ride mutation; staleness is an accepted tradeoff.
func (s *MetricsStore) Snapshot(ctx context.Context) (pendingRides, availableDrivers int64, err error) {
	vals, err := s.client.MGet(ctx, pendingRidesKey, availableDriversKey).Result()
	if err != nil {
		return 0, 0, err
	}

	pendingRides = parseCounter(vals[0])
	availableDrivers = parseCounter(vals[1])
	return pendingRides, availableDrivers, nil
}

func parseCounter(v any) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	var n int64
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int64(c-'0')
	}
	return n
}
