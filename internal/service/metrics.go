package service

import (
	"context"
	"fmt"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

// MetricsService keeps the stored vehicle metrics in line with the ledger.
// It always runs inside the transaction that changed the ledger.
type MetricsService struct {
	clock domain.Clock
}

// NewMetricsService creates a new MetricsService.
func NewMetricsService(clock domain.Clock) *MetricsService {
	return &MetricsService{clock: clock}
}

// Recompute reloads the ledger of v through tx, stores the derived metrics on
// v and persists v. Reads are sequential: a database transaction runs on a
// single connection.
func (s *MetricsService) Recompute(ctx context.Context, tx repository.Repositories, v *domain.Vehicle) error {
	ledger, err := loadLedger(ctx, tx, v.ID)
	if err != nil {
		return err
	}

	v.Metrics = domain.ComputeMetrics(v, ledger)
	v.UpdatedAt = s.clock.Now()

	if err := tx.Vehicles().Update(ctx, v); err != nil {
		return fmt.Errorf("store metrics of vehicle %s: %w", v.ID, err)
	}
	return nil
}

// RecomputeByID locks and recomputes the vehicle with the given ID.
func (s *MetricsService) RecomputeByID(ctx context.Context, tx repository.Repositories, vehicleID string) error {
	v, err := tx.Vehicles().GetForUpdate(ctx, vehicleID)
	if err != nil {
		return err
	}
	return s.Recompute(ctx, tx, v)
}

func loadLedger(ctx context.Context, tx repository.Repositories, vehicleID string) (domain.Ledger, error) {
	var ledger domain.Ledger

	trips, err := tx.Trips().List(ctx, repository.TripFilter{VehicleID: vehicleID})
	if err != nil {
		return ledger, fmt.Errorf("load trips: %w", err)
	}
	maintenance, err := tx.Maintenance().List(ctx, repository.MaintenanceFilter{VehicleID: vehicleID})
	if err != nil {
		return ledger, fmt.Errorf("load maintenance: %w", err)
	}
	expenses, err := tx.Expenses().List(ctx, repository.ExpenseFilter{VehicleID: vehicleID})
	if err != nil {
		return ledger, fmt.Errorf("load expenses: %w", err)
	}

	ledger.Trips = deref(trips)
	ledger.Maintenance = deref(maintenance)
	ledger.Expenses = deref(expenses)
	return ledger, nil
}

func deref[T any](in []*T) []T {
	out := make([]T, 0, len(in))
	for _, p := range in {
		out = append(out, *p)
	}
	return out
}
