package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

// MaintenanceService manages service records. An open record keeps its
// vehicle in the shop; the vehicle is released when its last open record is
// completed or deleted.
type MaintenanceService struct {
	deps    Deps
	metrics *MetricsService
}

// NewMaintenanceService creates a new MaintenanceService.
func NewMaintenanceService(deps Deps, metrics *MetricsService) *MaintenanceService {
	return &MaintenanceService{deps: deps.withDefaults(), metrics: metrics}
}

// CreateMaintenanceRequest contains the parameters for opening a service record.
type CreateMaintenanceRequest struct {
	VehicleID         string
	Name              string
	Type              domain.MaintenanceType
	ServiceDate       *time.Time
	Cost              float64
	OdometerAtService *float64
	Vendor            string
	Notes             string
}

// UpdateMaintenanceRequest holds the fields to change. Nil fields are kept.
// The vehicle of a record cannot change.
type UpdateMaintenanceRequest struct {
	Name              *string
	Type              *domain.MaintenanceType
	ServiceDate       *time.Time
	Cost              *float64
	OdometerAtService *float64
	Vendor            *string
	Notes             *string
}

// Create opens a service record and sends the vehicle to the shop, whatever
// state it was in.
func (s *MaintenanceService) Create(ctx context.Context, req CreateMaintenanceRequest) (*domain.Maintenance, error) {
	now := s.deps.now()
	m := domain.Maintenance{
		ID:          newID(),
		VehicleID:   req.VehicleID,
		Name:        req.Name,
		Type:        req.Type,
		ServiceDate: s.deps.today(),
		Cost:        req.Cost,
		Vendor:      req.Vendor,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if m.Type == "" {
		m.Type = domain.MaintenanceTypePreventive
	}
	if req.ServiceDate != nil {
		m.ServiceDate = domain.Date(*req.ServiceDate)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	var out domain.MaintenanceTransition
	err := s.deps.withVehicleTx(ctx, m.VehicleID, func(tx repository.Repositories) error {
		vehicle, err := tx.Vehicles().GetForUpdate(ctx, m.VehicleID)
		if err != nil {
			return referenceMissing(err, "maintenance", "vehicle_id", m.VehicleID)
		}
		m.OdometerAtService = vehicle.Odometer
		if req.OdometerAtService != nil {
			m.OdometerAtService = *req.OdometerAtService
		}

		out = domain.OpenMaintenance(m, *vehicle)
		if err := tx.Maintenance().Create(ctx, &out.Maintenance); err != nil {
			return err
		}
		return s.metrics.Recompute(ctx, tx, &out.Vehicle)
	})
	if err != nil {
		return nil, err
	}

	s.deps.Notifier.NotifyVehicleInShop(ctx, &out.Vehicle, &out.Maintenance)
	return &out.Maintenance, nil
}

// Complete closes an open service record. The vehicle becomes available
// only when no other open record remains and it is still in the shop.
func (s *MaintenanceService) Complete(ctx context.Context, id string) (*domain.Maintenance, error) {
	now := s.deps.now()
	var out domain.MaintenanceTransition
	err := s.withRecord(ctx, id, func(tx repository.Repositories, m *domain.Maintenance, vehicle *domain.Vehicle) error {
		otherOpen, err := tx.Maintenance().CountOpen(ctx, m.VehicleID, m.ID)
		if err != nil {
			return err
		}

		out, err = domain.CompleteMaintenance(*m, *vehicle, otherOpen, now)
		if err != nil {
			return err
		}
		out.Maintenance.UpdatedAt = now
		if err := tx.Maintenance().Update(ctx, &out.Maintenance); err != nil {
			return err
		}
		return s.metrics.Recompute(ctx, tx, &out.Vehicle)
	})
	if err != nil {
		return nil, err
	}

	s.deps.Log.WithFields(logrus.Fields{
		"maintenance_id": id,
		"vehicle_id":     out.Vehicle.ID,
		"restored":       out.Restored,
	}).Info("maintenance completed")

	if out.Restored {
		s.deps.Notifier.NotifyMaintenanceCompleted(ctx, &out.Maintenance)
	}
	return &out.Maintenance, nil
}

// Update edits a service record.
func (s *MaintenanceService) Update(ctx context.Context, id string, req UpdateMaintenanceRequest) (*domain.Maintenance, error) {
	var out *domain.Maintenance
	err := s.withRecord(ctx, id, func(tx repository.Repositories, m *domain.Maintenance, vehicle *domain.Vehicle) error {
		if req.Name != nil {
			m.Name = *req.Name
		}
		if req.Type != nil {
			m.Type = *req.Type
		}
		if req.ServiceDate != nil {
			m.ServiceDate = domain.Date(*req.ServiceDate)
		}
		if req.Cost != nil {
			m.Cost = *req.Cost
		}
		if req.OdometerAtService != nil {
			m.OdometerAtService = *req.OdometerAtService
		}
		if req.Vendor != nil {
			m.Vendor = *req.Vendor
		}
		if req.Notes != nil {
			m.Notes = *req.Notes
		}
		if err := m.Validate(); err != nil {
			return err
		}
		m.UpdatedAt = s.deps.now()

		if err := tx.Maintenance().Update(ctx, m); err != nil {
			return err
		}
		out = m
		return s.metrics.Recompute(ctx, tx, vehicle)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a service record. Removing the last open record of a
// vehicle in the shop makes it available again.
func (s *MaintenanceService) Delete(ctx context.Context, id string) error {
	return s.withRecord(ctx, id, func(tx repository.Repositories, m *domain.Maintenance, vehicle *domain.Vehicle) error {
		otherOpen, err := tx.Maintenance().CountOpen(ctx, m.VehicleID, m.ID)
		if err != nil {
			return err
		}

		out := domain.RemoveMaintenance(*m, *vehicle, otherOpen)
		if err := tx.Maintenance().Delete(ctx, m.ID); err != nil {
			return err
		}
		return s.metrics.Recompute(ctx, tx, &out.Vehicle)
	})
}

// Get returns a service record.
func (s *MaintenanceService) Get(ctx context.Context, id string) (*domain.Maintenance, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	return s.deps.Store.Maintenance().GetByID(ctx, id)
}

// List returns the service records matching filter.
func (s *MaintenanceService) List(ctx context.Context, filter repository.MaintenanceFilter) ([]*domain.Maintenance, error) {
	return s.deps.Store.Maintenance().List(ctx, filter)
}

// withRecord locks the vehicle of record id and runs fn with both rows
// loaded for update. The vehicle of a record never changes, so the unlocked
// read that finds it is safe.
func (s *MaintenanceService) withRecord(ctx context.Context, id string, fn func(tx repository.Repositories, m *domain.Maintenance, vehicle *domain.Vehicle) error) error {
	if id == "" {
		return ErrInvalidID
	}

	snapshot, err := s.deps.Store.Maintenance().GetByID(ctx, id)
	if err != nil {
		return err
	}

	return s.deps.withVehicleTx(ctx, snapshot.VehicleID, func(tx repository.Repositories) error {
		m, err := tx.Maintenance().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		vehicle, err := tx.Vehicles().GetForUpdate(ctx, m.VehicleID)
		if err != nil {
			return err
		}
		return fn(tx, m, vehicle)
	})
}
