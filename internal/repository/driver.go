package repository

import (
	"context"

	"fleetflow/internal/domain"
)

// DriverFilter narrows a driver listing. Zero values match everything.
type DriverFilter struct {
	Status domain.DriverStatus
}

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create adds a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetForUpdate retrieves a driver and locks its row until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*domain.Driver, error)

	// List retrieves drivers ordered by name.
	List(ctx context.Context, filter DriverFilter) ([]*domain.Driver, error)

	// Update updates an existing driver.
	Update(ctx context.Context, driver *domain.Driver) error

	// Delete removes a driver.
	Delete(ctx context.Context, id string) error
}
