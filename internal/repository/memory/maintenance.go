package memory

import (
	"context"
	"sort"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

type maintenanceRepo struct{ s session }

func (r maintenanceRepo) Create(ctx context.Context, m *domain.Maintenance) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.vehicles[m.VehicleID]; !ok {
			return repository.ErrReferenced
		}
		d.maintenance[m.ID] = copyMaintenance(*m)
		return nil
	})
}

func (r maintenanceRepo) GetByID(ctx context.Context, id string) (*domain.Maintenance, error) {
	var out *domain.Maintenance
	err := r.s.read(func(d *dataset) error {
		m, ok := d.maintenance[id]
		if !ok {
			return repository.ErrNotFound
		}
		m = copyMaintenance(m)
		out = &m
		return nil
	})
	return out, err
}

func (r maintenanceRepo) GetForUpdate(ctx context.Context, id string) (*domain.Maintenance, error) {
	return r.GetByID(ctx, id)
}

func (r maintenanceRepo) List(ctx context.Context, filter repository.MaintenanceFilter) ([]*domain.Maintenance, error) {
	var out []*domain.Maintenance
	err := r.s.read(func(d *dataset) error {
		for _, m := range d.maintenance {
			if filter.VehicleID != "" && m.VehicleID != filter.VehicleID {
				continue
			}
			if filter.State != "" && m.State != filter.State {
				continue
			}
			m = copyMaintenance(m)
			out = append(out, &m)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ServiceDate.Equal(out[j].ServiceDate) {
			return out[i].ServiceDate.After(out[j].ServiceDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, err
}

func (r maintenanceRepo) Update(ctx context.Context, m *domain.Maintenance) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.maintenance[m.ID]; !ok {
			return repository.ErrNotFound
		}
		d.maintenance[m.ID] = copyMaintenance(*m)
		return nil
	})
}

func (r maintenanceRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.maintenance[id]; !ok {
			return repository.ErrNotFound
		}
		delete(d.maintenance, id)
		return nil
	})
}

func (r maintenanceRepo) CountOpen(ctx context.Context, vehicleID, excludeID string) (int, error) {
	var n int
	err := r.s.read(func(d *dataset) error {
		for id, m := range d.maintenance {
			if id != excludeID && m.VehicleID == vehicleID && m.State == domain.MaintenanceStateOpen {
				n++
			}
		}
		return nil
	})
	return n, err
}
