package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `id, rider_id, driver_id, pickup_lat, pickup_lng, destination_lat, destination_lng,
	tier, payment_method, distance_km, surge_factor, price, status, one_time_code, cancel_reason,
	created_at, assigned_at, started_at, paused_at, completed_at, cancelled_at`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.RiderID,
		nullString(ride.DriverID),
		ride.PickupLat,
		ride.PickupLng,
		ride.DestinationLat,
		ride.DestinationLng,
		ride.Tier,
		ride.PaymentMethod,
		ride.DistanceKm,
		ride.SurgeFactor,
		ride.Price,
		ride.Status,
		nullString(ride.OneTimeCode),
		nullString(ride.CancelReason),
		ride.CreatedAt,
		nullTime(ride.AssignedAt),
		nullTime(ride.StartedAt),
		nullTime(ride.PausedAt),
		nullTime(ride.CompletedAt),
		nullTime(ride.CancelledAt),
	)

	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return ride, nil
}

// GetAll retrieves all rides, newest first.
func (r *RideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// Update updates an existing ride.
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	query := `
		UPDATE rides
		SET driver_id = $1, status = $2, one_time_code = $3, cancel_reason = $4,
			assigned_at = $5, started_at = $6, paused_at = $7, completed_at = $8, cancelled_at = $9
		WHERE id = $10
	`

	result, err := r.q.ExecContext(ctx, query,
		nullString(ride.DriverID),
		ride.Status,
		nullString(ride.OneTimeCode),
		nullString(ride.CancelReason),
		nullTime(ride.AssignedAt),
		nullTime(ride.StartedAt),
		nullTime(ride.PausedAt),
		nullTime(ride.CompletedAt),
		nullTime(ride.CancelledAt),
		ride.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Claim assigns a driver and one-time code to a ride that is still
// REQUESTED. The status guard lives in the WHERE clause, so the check and
// the write are one atomic statement: of any number of concurrent claims,
// the database lets exactly one through.
func (r *RideRepository) Claim(ctx context.Context, rideID, driverID, code string, at time.Time) (*domain.Ride, error) {
	query := `
		UPDATE rides
		SET status = $2, driver_id = $3, one_time_code = $4, assigned_at = $5
		WHERE id = $1 AND status = $6
		RETURNING ` + rideColumns

	ride, err := scanRide(r.q.QueryRowContext(ctx, query,
		rideID,
		domain.RideStatusAssigned,
		driverID,
		code,
		at,
		domain.RideStatusRequested,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Missing, already claimed, or terminal: all the same to the caller.
			return nil, repository.ErrUnavailable
		}
		return nil, err
	}

	return ride, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var driverID, oneTimeCode, cancelReason sql.NullString
	var assignedAt, startedAt, pausedAt, completedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&ride.ID,
		&ride.RiderID,
		&driverID,
		&ride.PickupLat,
		&ride.PickupLng,
		&ride.DestinationLat,
		&ride.DestinationLng,
		&ride.Tier,
		&ride.PaymentMethod,
		&ride.DistanceKm,
		&ride.SurgeFactor,
		&ride.Price,
		&ride.Status,
		&oneTimeCode,
		&cancelReason,
		&ride.CreatedAt,
		&assignedAt,
		&startedAt,
		&pausedAt,
		&completedAt,
		&cancelledAt,
	)
	if err != nil {
		return nil, err
	}

	ride.DriverID = driverID.String
	ride.OneTimeCode = oneTimeCode.String
	ride.CancelReason = cancelReason.String
	ride.AssignedAt = assignedAt.Time
	ride.StartedAt = startedAt.Time
	ride.PausedAt = pausedAt.Time
	ride.CompletedAt = completedAt.Time
	ride.CancelledAt = cancelledAt.Time

	return &ride, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
