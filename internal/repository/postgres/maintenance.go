package postgres

import (
	"context"
	"database/sql"
	"strings"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

const maintenanceColumns = `id, vehicle_id, name, maintenance_type, service_date, completed_date,
	cost, odometer_at_service, COALESCE(vendor, ''), COALESCE(notes, ''), state,
	created_at, updated_at`

// MaintenanceRepository is a PostgreSQL implementation of repository.MaintenanceRepository.
type MaintenanceRepository struct {
	q Querier
}

// NewMaintenanceRepository creates a new PostgreSQL maintenance repository.
func NewMaintenanceRepository(db *sql.DB) *MaintenanceRepository {
	return &MaintenanceRepository{q: db}
}

// NewMaintenanceRepositoryWithTx creates a maintenance repository using a transaction.
func NewMaintenanceRepositoryWithTx(tx *sql.Tx) *MaintenanceRepository {
	return &MaintenanceRepository{q: tx}
}

func (r *MaintenanceRepository) Create(ctx context.Context, m *domain.Maintenance) error {
	query := `
		INSERT INTO maintenance_logs (id, vehicle_id, name, maintenance_type, service_date,
			completed_date, cost, odometer_at_service, vendor, notes, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.q.ExecContext(ctx, query,
		m.ID, m.VehicleID, m.Name, m.Type, m.ServiceDate,
		nullTime(m.CompletedDate), m.Cost, m.OdometerAtService, nullString(m.Vendor),
		nullString(m.Notes), m.State, m.CreatedAt, m.UpdatedAt,
	)
	return translateError(err, "maintenance", nil)
}

func (r *MaintenanceRepository) GetByID(ctx context.Context, id string) (*domain.Maintenance, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_logs WHERE id = $1`
	m, err := scanMaintenance(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, "maintenance", nil)
	}
	return m, nil
}

func (r *MaintenanceRepository) GetForUpdate(ctx context.Context, id string) (*domain.Maintenance, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_logs WHERE id = $1 FOR UPDATE`
	m, err := scanMaintenance(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, "maintenance", nil)
	}
	return m, nil
}

func (r *MaintenanceRepository) List(ctx context.Context, filter repository.MaintenanceFilter) ([]*domain.Maintenance, error) {
	var where []string
	var args []any
	if filter.VehicleID != "" {
		args = append(args, filter.VehicleID)
		where = append(where, "vehicle_id = $"+itoa(len(args)))
	}
	if filter.State != "" {
		args = append(args, filter.State)
		where = append(where, "state = $"+itoa(len(args)))
	}

	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_logs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY service_date DESC, created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.Maintenance
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, m)
	}

	return logs, rows.Err()
}

func (r *MaintenanceRepository) Update(ctx context.Context, m *domain.Maintenance) error {
	query := `
		UPDATE maintenance_logs
		SET vehicle_id = $1, name = $2, maintenance_type = $3, service_date = $4,
			completed_date = $5, cost = $6, odometer_at_service = $7, vendor = $8,
			notes = $9, state = $10, updated_at = $11
		WHERE id = $12
	`
	result, err := r.q.ExecContext(ctx, query,
		m.VehicleID, m.Name, m.Type, m.ServiceDate,
		nullTime(m.CompletedDate), m.Cost, m.OdometerAtService, nullString(m.Vendor),
		nullString(m.Notes), m.State, m.UpdatedAt,
		m.ID,
	)
	if err != nil {
		return translateError(err, "maintenance", nil)
	}
	return checkAffected(result)
}

func (r *MaintenanceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM maintenance_logs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// CountOpen counts the open records of a vehicle other than excludeID.
func (r *MaintenanceRepository) CountOpen(ctx context.Context, vehicleID, excludeID string) (int, error) {
	query := `SELECT COUNT(*) FROM maintenance_logs WHERE vehicle_id = $1 AND state = $2`
	args := []any{vehicleID, domain.MaintenanceStateOpen}
	if excludeID != "" {
		query += ` AND id <> $3`
		args = append(args, excludeID)
	}

	var n int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanMaintenance(row rowScanner) (*domain.Maintenance, error) {
	var m domain.Maintenance
	var completed sql.NullTime
	err := row.Scan(
		&m.ID, &m.VehicleID, &m.Name, &m.Type, &m.ServiceDate, &completed,
		&m.Cost, &m.OdometerAtService, &m.Vendor, &m.Notes, &m.State,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.CompletedDate = timePtr(completed)
	return &m, nil
}

var _ repository.MaintenanceRepository = (*MaintenanceRepository)(nil)
