package repository

import (
	"context"

	"fleetflow/internal/domain"
)

// VehicleFilter narrows a vehicle listing. Zero values match everything.
type VehicleFilter struct {
	State domain.VehicleState
	Type  domain.VehicleType
}

// VehicleRepository defines the persistence operations for vehicles.
type VehicleRepository interface {
	// Create persists a new vehicle.
	Create(ctx context.Context, vehicle *domain.Vehicle) error

	// GetByID retrieves a vehicle by ID.
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)

	// GetForUpdate retrieves a vehicle and locks its row until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*domain.Vehicle, error)

	// List retrieves vehicles ordered by name.
	List(ctx context.Context, filter VehicleFilter) ([]*domain.Vehicle, error)

	// Update updates an existing vehicle, including its stored metrics.
	Update(ctx context.Context, vehicle *domain.Vehicle) error

	// Delete removes a vehicle together with its trips, maintenance and expenses.
	Delete(ctx context.Context, id string) error
}
