package memory

import (
	"context"
	"sort"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

type vehicleRepo struct{ s session }

func (r vehicleRepo) Create(ctx context.Context, v *domain.Vehicle) error {
	return r.s.write(func(d *dataset) error {
		if err := d.checkPlate(v); err != nil {
			return err
		}
		d.vehicles[v.ID] = *v
		return nil
	})
}

func (r vehicleRepo) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	var out *domain.Vehicle
	err := r.s.read(func(d *dataset) error {
		v, ok := d.vehicles[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &v
		return nil
	})
	return out, err
}

// GetForUpdate needs no row lock: transactions are already serialized.
func (r vehicleRepo) GetForUpdate(ctx context.Context, id string) (*domain.Vehicle, error) {
	return r.GetByID(ctx, id)
}

func (r vehicleRepo) List(ctx context.Context, filter repository.VehicleFilter) ([]*domain.Vehicle, error) {
	var out []*domain.Vehicle
	err := r.s.read(func(d *dataset) error {
		for _, v := range d.vehicles {
			if filter.State != "" && v.State != filter.State {
				continue
			}
			if filter.Type != "" && v.Type != filter.Type {
				continue
			}
			v := v
			out = append(out, &v)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r vehicleRepo) Update(ctx context.Context, v *domain.Vehicle) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.vehicles[v.ID]; !ok {
			return repository.ErrNotFound
		}
		if err := d.checkPlate(v); err != nil {
			return err
		}
		d.vehicles[v.ID] = *v
		return nil
	})
}

// Delete cascades to the vehicle's trips, maintenance and expenses.
func (r vehicleRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.vehicles[id]; !ok {
			return repository.ErrNotFound
		}
		delete(d.vehicles, id)
		for tid, t := range d.trips {
			if t.VehicleID == id {
				delete(d.trips, tid)
			}
		}
		for mid, m := range d.maintenance {
			if m.VehicleID == id {
				delete(d.maintenance, mid)
			}
		}
		for eid, e := range d.expenses {
			if e.VehicleID == id {
				delete(d.expenses, eid)
			}
		}
		return nil
	})
}

func (d *dataset) checkPlate(v *domain.Vehicle) error {
	for id, other := range d.vehicles {
		if id != v.ID && other.LicensePlate == v.LicensePlate {
			return &domain.UniquenessViolationError{Entity: "vehicle", Field: "license_plate", Value: v.LicensePlate}
		}
	}
	return nil
}
