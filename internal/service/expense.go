package service

import (
	"context"
	"time"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

// ExpenseService records fuel, toll and repair costs against vehicles.
type ExpenseService struct {
	deps    Deps
	metrics *MetricsService
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(deps Deps, metrics *MetricsService) *ExpenseService {
	return &ExpenseService{deps: deps.withDefaults(), metrics: metrics}
}

// CreateExpenseRequest contains the parameters for logging an expense.
type CreateExpenseRequest struct {
	VehicleID     string
	TripID        string
	Name          string
	Type          domain.ExpenseType
	Date          *time.Time
	Liters        float64
	PricePerLiter float64
	Cost          float64
	Notes         string
}

// UpdateExpenseRequest holds the fields to change. Nil fields are kept; an
// empty TripID detaches the expense from its trip.
type UpdateExpenseRequest struct {
	TripID        *string
	Name          *string
	Type          *domain.ExpenseType
	Date          *time.Time
	Liters        *float64
	PricePerLiter *float64
	Cost          *float64
	Notes         *string
}

// Create logs an expense. Fuel entries with liters and a unit price get
// their cost derived.
func (s *ExpenseService) Create(ctx context.Context, req CreateExpenseRequest) (*domain.Expense, error) {
	now := s.deps.now()
	e := &domain.Expense{
		ID:            newID(),
		VehicleID:     req.VehicleID,
		TripID:        req.TripID,
		Name:          req.Name,
		Type:          req.Type,
		Date:          s.deps.today(),
		Liters:        req.Liters,
		PricePerLiter: req.PricePerLiter,
		Cost:          req.Cost,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if e.Name == "" {
		e.Name = domain.DefaultExpenseName
	}
	if e.Type == "" {
		e.Type = domain.ExpenseTypeFuel
	}
	if req.Date != nil {
		e.Date = domain.Date(*req.Date)
	}
	e.RecomputeCost()
	if err := e.Validate(); err != nil {
		return nil, err
	}

	err := s.deps.withVehicleTx(ctx, e.VehicleID, func(tx repository.Repositories) error {
		vehicle, err := tx.Vehicles().GetForUpdate(ctx, e.VehicleID)
		if err != nil {
			return referenceMissing(err, "expense", "vehicle_id", e.VehicleID)
		}
		if err := checkExpenseTrip(ctx, tx, e); err != nil {
			return err
		}
		if err := tx.Expenses().Create(ctx, e); err != nil {
			return err
		}
		return s.metrics.Recompute(ctx, tx, vehicle)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Update edits an expense. The cost is only re-derived when the type,
// liters or unit price is written.
func (s *ExpenseService) Update(ctx context.Context, id string, req UpdateExpenseRequest) (*domain.Expense, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	snapshot, err := s.deps.Store.Expenses().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var out *domain.Expense
	err = s.deps.withVehicleTx(ctx, snapshot.VehicleID, func(tx repository.Repositories) error {
		e, err := tx.Expenses().GetByID(ctx, id)
		if err != nil {
			return err
		}

		if req.TripID != nil {
			e.TripID = *req.TripID
		}
		if req.Name != nil {
			e.Name = *req.Name
		}
		if req.Date != nil {
			e.Date = domain.Date(*req.Date)
		}
		if req.Cost != nil {
			e.Cost = *req.Cost
		}
		if req.Notes != nil {
			e.Notes = *req.Notes
		}
		if req.Type != nil {
			e.Type = *req.Type
		}
		if req.Liters != nil {
			e.Liters = *req.Liters
		}
		if req.PricePerLiter != nil {
			e.PricePerLiter = *req.PricePerLiter
		}
		if req.Type != nil || req.Liters != nil || req.PricePerLiter != nil {
			e.RecomputeCost()
		}
		if err := e.Validate(); err != nil {
			return err
		}
		if err := checkExpenseTrip(ctx, tx, e); err != nil {
			return err
		}
		e.UpdatedAt = s.deps.now()

		if err := tx.Expenses().Update(ctx, e); err != nil {
			return err
		}
		out = e
		return s.metrics.RecomputeByID(ctx, tx, e.VehicleID)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes an expense.
func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidID
	}
	snapshot, err := s.deps.Store.Expenses().GetByID(ctx, id)
	if err != nil {
		return err
	}

	return s.deps.withVehicleTx(ctx, snapshot.VehicleID, func(tx repository.Repositories) error {
		if err := tx.Expenses().Delete(ctx, id); err != nil {
			return err
		}
		return s.metrics.RecomputeByID(ctx, tx, snapshot.VehicleID)
	})
}

// Get returns an expense.
func (s *ExpenseService) Get(ctx context.Context, id string) (*domain.Expense, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	return s.deps.Store.Expenses().GetByID(ctx, id)
}

// List returns the expenses matching filter.
func (s *ExpenseService) List(ctx context.Context, filter repository.ExpenseFilter) ([]*domain.Expense, error) {
	return s.deps.Store.Expenses().List(ctx, filter)
}

func checkExpenseTrip(ctx context.Context, tx repository.Repositories, e *domain.Expense) error {
	if e.TripID == "" {
		return nil
	}
	trip, err := tx.Trips().GetByID(ctx, e.TripID)
	if err != nil {
		return referenceMissing(err, "expense", "trip_id", e.TripID)
	}
	return e.CheckTripVehicle(trip)
}
