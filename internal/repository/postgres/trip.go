package postgres

import (
	"context"
	"database/sql"
	"strings"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

const tripColumns = `id, reference, vehicle_id, driver_id, origin, destination, planned_date,
	completed_date, COALESCE(cargo_description, ''), cargo_weight, distance_km,
	odometer_start, odometer_end, revenue, state, capacity_warning, created_at, updated_at`

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, t *domain.Trip) error {
	query := `
		INSERT INTO trips (id, reference, vehicle_id, driver_id, origin, destination, planned_date,
			completed_date, cargo_description, cargo_weight, distance_km, odometer_start,
			odometer_end, revenue, state, capacity_warning, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.q.ExecContext(ctx, query,
		t.ID, t.Reference, t.VehicleID, t.DriverID, t.Origin, t.Destination, t.PlannedDate,
		nullTime(t.CompletedDate), nullString(t.CargoDescription), t.CargoWeight, t.DistanceKm,
		nullFloat(t.OdometerStart), nullFloat(t.OdometerEnd), t.Revenue, t.State,
		t.CapacityWarning, t.CreatedAt, t.UpdatedAt,
	)

	return translateError(err, "trip", nil)
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	t, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, "trip", nil)
	}
	return t, nil
}

// GetForUpdate retrieves a trip and locks its row.
func (r *TripRepository) GetForUpdate(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1 FOR UPDATE`
	t, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, "trip", nil)
	}
	return t, nil
}

// List retrieves trips, most recently planned first.
func (r *TripRepository) List(ctx context.Context, filter repository.TripFilter) ([]*domain.Trip, error) {
	var where []string
	var args []any
	if filter.VehicleID != "" {
		args = append(args, filter.VehicleID)
		where = append(where, "vehicle_id = $"+itoa(len(args)))
	}
	if filter.DriverID != "" {
		args = append(args, filter.DriverID)
		where = append(where, "driver_id = $"+itoa(len(args)))
	}
	if filter.State != "" {
		args = append(args, filter.State)
		where = append(where, "state = $"+itoa(len(args)))
	}

	query := `SELECT ` + tripColumns + ` FROM trips`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY planned_date DESC, created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}

	return trips, rows.Err()
}

// Update updates an existing trip.
func (r *TripRepository) Update(ctx context.Context, t *domain.Trip) error {
	query := `
		UPDATE trips
		SET reference = $1, vehicle_id = $2, driver_id = $3, origin = $4, destination = $5,
			planned_date = $6, completed_date = $7, cargo_description = $8, cargo_weight = $9,
			distance_km = $10, odometer_start = $11, odometer_end = $12, revenue = $13,
			state = $14, capacity_warning = $15, updated_at = $16
		WHERE id = $17
	`

	result, err := r.q.ExecContext(ctx, query,
		t.Reference, t.VehicleID, t.DriverID, t.Origin, t.Destination,
		t.PlannedDate, nullTime(t.CompletedDate), nullString(t.CargoDescription), t.CargoWeight,
		t.DistanceKm, nullFloat(t.OdometerStart), nullFloat(t.OdometerEnd), t.Revenue,
		t.State, t.CapacityWarning, t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		return translateError(err, "trip", nil)
	}

	return checkAffected(result)
}

// Delete removes a trip. Expenses referencing it keep their vehicle.
func (r *TripRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var t domain.Trip
	var completed sql.NullTime
	var odoStart, odoEnd sql.NullFloat64
	err := row.Scan(
		&t.ID, &t.Reference, &t.VehicleID, &t.DriverID, &t.Origin, &t.Destination, &t.PlannedDate,
		&completed, &t.CargoDescription, &t.CargoWeight, &t.DistanceKm,
		&odoStart, &odoEnd, &t.Revenue, &t.State, &t.CapacityWarning, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.CompletedDate = timePtr(completed)
	t.OdometerStart = floatPtr(odoStart)
	t.OdometerEnd = floatPtr(odoEnd)
	return &t, nil
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
