package repository

import (
	"context"

	"fleetflow/internal/domain"
)

// TripFilter narrows a trip listing. Zero values match everything.
type TripFilter struct {
	VehicleID string
	DriverID  string
	State     domain.TripState
}

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetForUpdate retrieves a trip and locks its row until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, id string) (*domain.Trip, error)

	// List retrieves trips, most recently planned first.
	List(ctx context.Context, filter TripFilter) ([]*domain.Trip, error)

	// Update updates an existing trip.
	Update(ctx context.Context, trip *domain.Trip) error

	// Delete removes a trip. Expenses referencing it keep their vehicle and
	// lose the trip reference.
	Delete(ctx context.Context, id string) error
}
