package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

// VehicleService manages the fleet register.
type VehicleService struct {
	deps    Deps
	metrics *MetricsService
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(deps Deps, metrics *MetricsService) *VehicleService {
	return &VehicleService{deps: deps.withDefaults(), metrics: metrics}
}

// CreateVehicleRequest contains the parameters for registering a vehicle.
type CreateVehicleRequest struct {
	Name            string
	LicensePlate    string
	Type            domain.VehicleType
	MaxLoadCapacity float64
	Odometer        float64
	AcquisitionCost float64
	Region          string
}

// UpdateVehicleRequest holds the fields to change. Nil fields are kept.
type UpdateVehicleRequest struct {
	Name            *string
	LicensePlate    *string
	Type            *domain.VehicleType
	MaxLoadCapacity *float64
	Odometer        *float64
	AcquisitionCost *float64
	Region          *string
}

// Create registers a new available vehicle.
func (s *VehicleService) Create(ctx context.Context, req CreateVehicleRequest) (*domain.Vehicle, error) {
	now := s.deps.now()
	v := &domain.Vehicle{
		ID:              newID(),
		Name:            req.Name,
		LicensePlate:    req.LicensePlate,
		Type:            req.Type,
		MaxLoadCapacity: req.MaxLoadCapacity,
		Odometer:        req.Odometer,
		AcquisitionCost: req.AcquisitionCost,
		Region:          req.Region,
		State:           domain.VehicleStateAvailable,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if v.Type == "" {
		v.Type = domain.VehicleTypeVan
	}
	if v.Region == "" {
		v.Region = domain.DefaultRegion
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	if err := s.deps.Store.Vehicles().Create(ctx, v); err != nil {
		return nil, err
	}

	s.deps.Log.WithField("vehicle_id", v.ID).Info("vehicle registered")
	return v, nil
}

// Get returns a vehicle, served from the cache when possible.
func (s *VehicleService) Get(ctx context.Context, id string) (*domain.Vehicle, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	if s.deps.Cache != nil {
		cached, err := s.deps.Cache.GetVehicle(ctx, id)
		if err != nil {
			s.deps.Log.WithError(err).WithField("vehicle_id", id).Warn("vehicle cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	v, err := s.deps.Store.Vehicles().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.deps.Cache != nil {
		if err := s.deps.Cache.SetVehicle(ctx, v); err != nil {
			s.deps.Log.WithError(err).WithField("vehicle_id", id).Warn("vehicle cache write failed")
		}
	}
	return v, nil
}

// List returns the vehicles matching filter.
func (s *VehicleService) List(ctx context.Context, filter repository.VehicleFilter) ([]*domain.Vehicle, error) {
	return s.deps.Store.Vehicles().List(ctx, filter)
}

// Update changes vehicle attributes. Lowering the capacity below the cargo of
// a draft or dispatched trip is rejected.
func (s *VehicleService) Update(ctx context.Context, id string, req UpdateVehicleRequest) (*domain.Vehicle, error) {
	var out *domain.Vehicle
	err := s.withVehicle(ctx, id, func(tx repository.Repositories, v *domain.Vehicle) error {
		if req.Name != nil {
			v.Name = *req.Name
		}
		if req.LicensePlate != nil {
			v.LicensePlate = *req.LicensePlate
		}
		if req.Type != nil {
			v.Type = *req.Type
		}
		if req.Odometer != nil {
			v.Odometer = *req.Odometer
		}
		if req.AcquisitionCost != nil {
			v.AcquisitionCost = *req.AcquisitionCost
		}
		if req.Region != nil {
			v.Region = *req.Region
		}
		capacityChanged := req.MaxLoadCapacity != nil && *req.MaxLoadCapacity != v.MaxLoadCapacity
		if req.MaxLoadCapacity != nil {
			v.MaxLoadCapacity = *req.MaxLoadCapacity
		}
		if err := v.Validate(); err != nil {
			return err
		}

		if capacityChanged {
			if err := applyCapacity(ctx, tx, v); err != nil {
				return err
			}
		}

		// Metrics depend on the acquisition cost; Recompute also persists v.
		if err := s.metrics.Recompute(ctx, tx, v); err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// applyCapacity rejects a capacity below the cargo of any draft or dispatched
// trip, then refreshes the capacity warning on every trip of the vehicle.
func applyCapacity(ctx context.Context, tx repository.Repositories, v *domain.Vehicle) error {
	trips, err := tx.Trips().List(ctx, repository.TripFilter{VehicleID: v.ID})
	if err != nil {
		return err
	}
	for _, t := range trips {
		if t.State != domain.TripStateDraft && t.State != domain.TripStateDispatched {
			continue
		}
		if err := domain.CheckCapacity(t, v); err != nil {
			return err
		}
	}

	for _, t := range trips {
		warning := domain.CapacityExceeded(t, v)
		if t.CapacityWarning == warning {
			continue
		}
		t.CapacityWarning = warning
		if err := tx.Trips().Update(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a vehicle and its trips, service records and expenses.
// A vehicle out on a trip cannot be deleted.
func (s *VehicleService) Delete(ctx context.Context, id string) error {
	return s.withVehicle(ctx, id, func(tx repository.Repositories, v *domain.Vehicle) error {
		if v.State == domain.VehicleStateOnTrip {
			return &domain.InvalidStateTransitionError{
				Entity: "vehicle", ID: v.ID, From: string(v.State), Action: "delete",
				Message: "vehicles on a trip cannot be deleted",
			}
		}
		return tx.Vehicles().Delete(ctx, v.ID)
	})
}

// SetAvailable manually marks the vehicle available.
func (s *VehicleService) SetAvailable(ctx context.Context, id string) (*domain.Vehicle, error) {
	return s.override(ctx, id, domain.Vehicle.SetAvailable)
}

// Retire manually retires the vehicle.
func (s *VehicleService) Retire(ctx context.Context, id string) (*domain.Vehicle, error) {
	return s.override(ctx, id, domain.Vehicle.SetRetired)
}

func (s *VehicleService) override(ctx context.Context, id string, apply func(domain.Vehicle) domain.Vehicle) (*domain.Vehicle, error) {
	var out *domain.Vehicle
	err := s.withVehicle(ctx, id, func(tx repository.Repositories, v *domain.Vehicle) error {
		next := apply(*v)
		next.UpdatedAt = s.deps.now()
		if err := tx.Vehicles().Update(ctx, &next); err != nil {
			return err
		}
		out = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Log.WithFields(logrus.Fields{"vehicle_id": id, "state": out.State}).Info("vehicle state overridden")
	return out, nil
}

// withVehicle runs fn in a transaction holding the vehicle lock and row.
func (s *VehicleService) withVehicle(ctx context.Context, id string, fn func(tx repository.Repositories, v *domain.Vehicle) error) error {
	if id == "" {
		return ErrInvalidID
	}
	return s.deps.withVehicleTx(ctx, id, func(tx repository.Repositories) error {
		v, err := tx.Vehicles().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		return fn(tx, v)
	})
}
