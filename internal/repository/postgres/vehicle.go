package postgres

import (
	"context"
	"database/sql"
	"strings"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

const vehicleColumns = `id, name, license_plate, vehicle_type, max_load_capacity, odometer,
	acquisition_cost, region, state, total_fuel_cost, total_maintenance_cost,
	total_operational_cost, total_revenue, roi, total_km_driven, cost_per_km,
	fuel_efficiency, trip_count, maintenance_count, created_at, updated_at`

var vehicleUniqueFields = map[string]string{"vehicles_license_plate_key": "license_plate"}

// VehicleRepository is a PostgreSQL implementation of repository.VehicleRepository.
type VehicleRepository struct {
	q Querier
}

// NewVehicleRepository creates a new PostgreSQL vehicle repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{q: db}
}

// NewVehicleRepositoryWithTx creates a vehicle repository using a transaction.
func NewVehicleRepositoryWithTx(tx *sql.Tx) *VehicleRepository {
	return &VehicleRepository{q: tx}
}

// Create persists a new vehicle.
func (r *VehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	query := `INSERT INTO vehicles (` + vehicleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

	m := v.Metrics
	_, err := r.q.ExecContext(ctx, query,
		v.ID, v.Name, v.LicensePlate, v.Type, v.MaxLoadCapacity, v.Odometer,
		v.AcquisitionCost, v.Region, v.State,
		m.TotalFuelCost, m.TotalMaintenanceCost, m.TotalOperationalCost, m.TotalRevenue,
		m.ROI, m.TotalKmDriven, m.CostPerKm, m.FuelEfficiency, m.TripCount, m.MaintenanceCount,
		v.CreatedAt, v.UpdatedAt,
	)
	return translateError(err, "vehicle", vehicleUniqueFields)
}

// GetByID retrieves a vehicle by ID.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	v, err := scanVehicle(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, "vehicle", nil)
	}
	return v, nil
}

// GetForUpdate retrieves a vehicle and locks its row.
func (r *VehicleRepository) GetForUpdate(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1 FOR UPDATE`
	v, err := scanVehicle(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, "vehicle", nil)
	}
	return v, nil
}

// List retrieves vehicles ordered by name.
func (r *VehicleRepository) List(ctx context.Context, filter repository.VehicleFilter) ([]*domain.Vehicle, error) {
	var where []string
	var args []any
	if filter.State != "" {
		args = append(args, filter.State)
		where = append(where, "state = $"+itoa(len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, "vehicle_type = $"+itoa(len(args)))
	}

	query := `SELECT ` + vehicleColumns + ` FROM vehicles`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY name, id`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}

	return vehicles, rows.Err()
}

// Update updates an existing vehicle and its stored metrics.
func (r *VehicleRepository) Update(ctx context.Context, v *domain.Vehicle) error {
	query := `
		UPDATE vehicles
		SET name = $1, license_plate = $2, vehicle_type = $3, max_load_capacity = $4,
			odometer = $5, acquisition_cost = $6, region = $7, state = $8,
			total_fuel_cost = $9, total_maintenance_cost = $10, total_operational_cost = $11,
			total_revenue = $12, roi = $13, total_km_driven = $14, cost_per_km = $15,
			fuel_efficiency = $16, trip_count = $17, maintenance_count = $18, updated_at = $19
		WHERE id = $20
	`

	m := v.Metrics
	result, err := r.q.ExecContext(ctx, query,
		v.Name, v.LicensePlate, v.Type, v.MaxLoadCapacity,
		v.Odometer, v.AcquisitionCost, v.Region, v.State,
		m.TotalFuelCost, m.TotalMaintenanceCost, m.TotalOperationalCost,
		m.TotalRevenue, m.ROI, m.TotalKmDriven, m.CostPerKm,
		m.FuelEfficiency, m.TripCount, m.MaintenanceCount, v.UpdatedAt,
		v.ID,
	)
	if err != nil {
		return translateError(err, "vehicle", vehicleUniqueFields)
	}

	return checkAffected(result)
}

// Delete removes a vehicle. Trips, maintenance logs and expenses cascade.
func (r *VehicleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func scanVehicle(row rowScanner) (*domain.Vehicle, error) {
	var v domain.Vehicle
	m := &v.Metrics
	err := row.Scan(
		&v.ID, &v.Name, &v.LicensePlate, &v.Type, &v.MaxLoadCapacity, &v.Odometer,
		&v.AcquisitionCost, &v.Region, &v.State,
		&m.TotalFuelCost, &m.TotalMaintenanceCost, &m.TotalOperationalCost, &m.TotalRevenue,
		&m.ROI, &m.TotalKmDriven, &m.CostPerKm, &m.FuelEfficiency, &m.TripCount, &m.MaintenanceCount,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Ensure VehicleRepository implements repository.VehicleRepository.
var _ repository.VehicleRepository = (*VehicleRepository)(nil)
