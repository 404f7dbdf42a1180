package repository

import (
	"context"

	"fleetflow/internal/domain"
)

// MaintenanceFilter narrows a maintenance listing. Zero values match everything.
type MaintenanceFilter struct {
	VehicleID string
	State     domain.MaintenanceState
}

// MaintenanceRepository defines the persistence operations for service records.
type MaintenanceRepository interface {
	Create(ctx context.Context, m *domain.Maintenance) error
	GetByID(ctx context.Context, id string) (*domain.Maintenance, error)
	GetForUpdate(ctx context.Context, id string) (*domain.Maintenance, error)

	// List retrieves service records, most recent service date first.
	List(ctx context.Context, filter MaintenanceFilter) ([]*domain.Maintenance, error)

	Update(ctx context.Context, m *domain.Maintenance) error
	Delete(ctx context.Context, id string) error

	// CountOpen counts the open records of a vehicle other than excludeID.
	CountOpen(ctx context.Context, vehicleID, excludeID string) (int, error)
}
