package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

const driverColumns = `id, name, COALESCE(phone, ''), COALESCE(email, ''), license_number,
	license_expiry, license_categories, status, safety_score, COALESCE(notes, ''),
	created_at, updated_at`

var driverUniqueFields = map[string]string{"drivers_license_number_key": "license_number"}

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

// Create adds a new driver.
func (r *DriverRepository) Create(ctx context.Context, d *domain.Driver) error {
	query := `
		INSERT INTO drivers (id, name, phone, email, license_number, license_expiry,
			license_categories, status, safety_score, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.q.ExecContext(ctx, query,
		d.ID, d.Name, nullString(d.Phone), nullString(d.Email), d.LicenseNumber,
		nullTime(d.LicenseExpiry), pq.Array(categories(d.LicenseCategories)), d.Status,
		d.SafetyScore, nullString(d.Notes), d.CreatedAt, d.UpdatedAt,
	)
	return translateError(err, "driver", driverUniqueFields)
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	d, err := scanDriver(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, "driver", nil)
	}
	return d, nil
}

// GetForUpdate retrieves a driver and locks its row.
func (r *DriverRepository) GetForUpdate(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1 FOR UPDATE`
	d, err := scanDriver(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, "driver", nil)
	}
	return d, nil
}

// List retrieves drivers ordered by name.
func (r *DriverRepository) List(ctx context.Context, filter repository.DriverFilter) ([]*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY name, id`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}

	return drivers, rows.Err()
}

// Update updates an existing driver.
func (r *DriverRepository) Update(ctx context.Context, d *domain.Driver) error {
	query := `
		UPDATE drivers
		SET name = $1, phone = $2, email = $3, license_number = $4, license_expiry = $5,
			license_categories = $6, status = $7, safety_score = $8, notes = $9, updated_at = $10
		WHERE id = $11
	`
	result, err := r.q.ExecContext(ctx, query,
		d.Name, nullString(d.Phone), nullString(d.Email), d.LicenseNumber, nullTime(d.LicenseExpiry),
		pq.Array(categories(d.LicenseCategories)), d.Status, d.SafetyScore, nullString(d.Notes), d.UpdatedAt,
		d.ID,
	)
	if err != nil {
		return translateError(err, "driver", driverUniqueFields)
	}

	return checkAffected(result)
}

// Delete removes a driver. Drivers referenced by trips cannot be deleted.
func (r *DriverRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM drivers WHERE id = $1`, id)
	if err != nil {
		return translateError(err, "driver", nil)
	}
	return checkAffected(result)
}

func scanDriver(row rowScanner) (*domain.Driver, error) {
	var d domain.Driver
	var expiry sql.NullTime
	var cats pq.StringArray
	err := row.Scan(
		&d.ID, &d.Name, &d.Phone, &d.Email, &d.LicenseNumber,
		&expiry, &cats, &d.Status, &d.SafetyScore, &d.Notes,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.LicenseExpiry = timePtr(expiry)
	if len(cats) > 0 {
		d.LicenseCategories = []string(cats)
	}
	return &d, nil
}

// categories never passes NULL for the NOT NULL array column.
func categories(c []string) []string {
	if c == nil {
		return []string{}
	}
	return c
}

// Ensure DriverRepository implements repository.DriverRepository.
var _ repository.DriverRepository = (*DriverRepository)(nil)
