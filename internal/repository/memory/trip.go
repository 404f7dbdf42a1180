package memory

import (
	"context"
	"sort"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

type tripRepo struct{ s session }

func (r tripRepo) Create(ctx context.Context, t *domain.Trip) error {
	return r.s.write(func(d *dataset) error {
		if err := d.checkTripRefs(t); err != nil {
			return err
		}
		d.trips[t.ID] = copyTrip(*t)
		return nil
	})
}

func (r tripRepo) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	var out *domain.Trip
	err := r.s.read(func(d *dataset) error {
		t, ok := d.trips[id]
		if !ok {
			return repository.ErrNotFound
		}
		t = copyTrip(t)
		out = &t
		return nil
	})
	return out, err
}

func (r tripRepo) GetForUpdate(ctx context.Context, id string) (*domain.Trip, error) {
	return r.GetByID(ctx, id)
}

func (r tripRepo) List(ctx context.Context, filter repository.TripFilter) ([]*domain.Trip, error) {
	var out []*domain.Trip
	err := r.s.read(func(d *dataset) error {
		for _, t := range d.trips {
			if filter.VehicleID != "" && t.VehicleID != filter.VehicleID {
				continue
			}
			if filter.DriverID != "" && t.DriverID != filter.DriverID {
				continue
			}
			if filter.State != "" && t.State != filter.State {
				continue
			}
			t = copyTrip(t)
			out = append(out, &t)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PlannedDate.Equal(out[j].PlannedDate) {
			return out[i].PlannedDate.After(out[j].PlannedDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, err
}

func (r tripRepo) Update(ctx context.Context, t *domain.Trip) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.trips[t.ID]; !ok {
			return repository.ErrNotFound
		}
		if err := d.checkTripRefs(t); err != nil {
			return err
		}
		d.trips[t.ID] = copyTrip(*t)
		return nil
	})
}

// Delete clears the trip reference of expenses logged against it.
func (r tripRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.trips[id]; !ok {
			return repository.ErrNotFound
		}
		delete(d.trips, id)
		for eid, e := range d.expenses {
			if e.TripID == id {
				e.TripID = ""
				d.expenses[eid] = e
			}
		}
		return nil
	})
}

func (d *dataset) checkTripRefs(t *domain.Trip) error {
	if _, ok := d.vehicles[t.VehicleID]; !ok {
		return repository.ErrReferenced
	}
	if _, ok := d.drivers[t.DriverID]; !ok {
		return repository.ErrReferenced
	}
	return nil
}
