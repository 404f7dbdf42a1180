package memory

import (
	"context"
	"sort"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

type driverRepo struct{ s session }

func (r driverRepo) Create(ctx context.Context, drv *domain.Driver) error {
	return r.s.write(func(d *dataset) error {
		if err := d.checkLicenseNumber(drv); err != nil {
			return err
		}
		d.drivers[drv.ID] = copyDriver(*drv)
		return nil
	})
}

func (r driverRepo) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	var out *domain.Driver
	err := r.s.read(func(d *dataset) error {
		drv, ok := d.drivers[id]
		if !ok {
			return repository.ErrNotFound
		}
		drv = copyDriver(drv)
		out = &drv
		return nil
	})
	return out, err
}

func (r driverRepo) GetForUpdate(ctx context.Context, id string) (*domain.Driver, error) {
	return r.GetByID(ctx, id)
}

func (r driverRepo) List(ctx context.Context, filter repository.DriverFilter) ([]*domain.Driver, error) {
	var out []*domain.Driver
	err := r.s.read(func(d *dataset) error {
		for _, drv := range d.drivers {
			if filter.Status != "" && drv.Status != filter.Status {
				continue
			}
			drv = copyDriver(drv)
			out = append(out, &drv)
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

func (r driverRepo) Update(ctx context.Context, drv *domain.Driver) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.drivers[drv.ID]; !ok {
			return repository.ErrNotFound
		}
		if err := d.checkLicenseNumber(drv); err != nil {
			return err
		}
		d.drivers[drv.ID] = copyDriver(*drv)
		return nil
	})
}

// Delete refuses drivers still assigned to trips.
func (r driverRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.drivers[id]; !ok {
			return repository.ErrNotFound
		}
		for _, t := range d.trips {
			if t.DriverID == id {
				return repository.ErrReferenced
			}
		}
		delete(d.drivers, id)
		return nil
	})
}

func (d *dataset) checkLicenseNumber(drv *domain.Driver) error {
	for id, other := range d.drivers {
		if id != drv.ID && other.LicenseNumber == drv.LicenseNumber {
			return &domain.UniquenessViolationError{Entity: "driver", Field: "license_number", Value: drv.LicenseNumber}
		}
	}
	return nil
}
