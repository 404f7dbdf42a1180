package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

// DriverService manages driver profiles and duty status.
type DriverService struct {
	deps Deps
}

// NewDriverService creates a new DriverService.
func NewDriverService(deps Deps) *DriverService {
	return &DriverService{deps: deps.withDefaults()}
}

// DriverView is a driver with the figures derived on every read.
type DriverView struct {
	domain.Driver
	LicenseStatus domain.LicenseStatus
	TripStats     domain.TripStats
}

// DriverListFilter narrows a driver listing. Zero values match everything.
type DriverListFilter struct {
	Status        domain.DriverStatus
	LicenseStatus domain.LicenseStatus
}

// CreateDriverRequest contains the parameters for adding a driver.
type CreateDriverRequest struct {
	Name              string
	Phone             string
	Email             string
	LicenseNumber     string
	LicenseExpiry     *time.Time
	LicenseCategories []string
	SafetyScore       *float64
	Notes             string
}

// UpdateDriverRequest holds the fields to change. Nil fields are kept.
type UpdateDriverRequest struct {
	Name              *string
	Phone             *string
	Email             *string
	LicenseNumber     *string
	LicenseExpiry     *time.Time
	LicenseCategories *[]string
	SafetyScore       *float64
	Notes             *string
}

// Create adds an off-duty driver.
func (s *DriverService) Create(ctx context.Context, req CreateDriverRequest) (*DriverView, error) {
	now := s.deps.now()
	d := &domain.Driver{
		ID:                newID(),
		Name:              req.Name,
		Phone:             req.Phone,
		Email:             req.Email,
		LicenseNumber:     req.LicenseNumber,
		LicenseExpiry:     dateOnly(req.LicenseExpiry),
		LicenseCategories: req.LicenseCategories,
		Status:            domain.DriverStatusOffDuty,
		SafetyScore:       domain.DefaultSafetyScore,
		Notes:             req.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if req.SafetyScore != nil {
		d.SafetyScore = *req.SafetyScore
	}
	if err := s.validate(d); err != nil {
		return nil, err
	}

	if err := s.deps.Store.Drivers().Create(ctx, d); err != nil {
		return nil, err
	}

	s.deps.Log.WithField("driver_id", d.ID).Info("driver added")
	return s.view(d, nil), nil
}

func (s *DriverService) validate(d *domain.Driver) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return s.deps.Registry.ValidateCodes(d.LicenseCategories)
}

// Get returns a driver with license status and trip statistics.
func (s *DriverService) Get(ctx context.Context, id string) (*DriverView, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	trips, err := s.deps.Store.Trips().List(ctx, repository.TripFilter{DriverID: id})
	if err != nil {
		return nil, err
	}
	return s.view(d, trips), nil
}

// load reads a driver through the cache.
func (s *DriverService) load(ctx context.Context, id string) (*domain.Driver, error) {
	if s.deps.Cache != nil {
		cached, err := s.deps.Cache.GetDriver(ctx, id)
		if err != nil {
			s.deps.Log.WithError(err).WithField("driver_id", id).Warn("driver cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	d, err := s.deps.Store.Drivers().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.deps.Cache != nil {
		if err := s.deps.Cache.SetDriver(ctx, d); err != nil {
			s.deps.Log.WithError(err).WithField("driver_id", id).Warn("driver cache write failed")
		}
	}
	return d, nil
}

// List returns drivers matching filter. License status is evaluated against
// today, so it is filtered here rather than in storage.
func (s *DriverService) List(ctx context.Context, filter DriverListFilter) ([]*DriverView, error) {
	var (
		drivers []*domain.Driver
		trips   []*domain.Trip
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		drivers, err = s.deps.Store.Drivers().List(gctx, repository.DriverFilter{Status: filter.Status})
		return err
	})
	g.Go(func() (err error) {
		trips, err = s.deps.Store.Trips().List(gctx, repository.TripFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byDriver := make(map[string][]*domain.Trip)
	for _, t := range trips {
		byDriver[t.DriverID] = append(byDriver[t.DriverID], t)
	}

	out := make([]*DriverView, 0, len(drivers))
	for _, d := range drivers {
		view := s.view(d, byDriver[d.ID])
		if filter.LicenseStatus != "" && view.LicenseStatus != filter.LicenseStatus {
			continue
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *DriverService) view(d *domain.Driver, trips []*domain.Trip) *DriverView {
	return &DriverView{
		Driver:        *d,
		LicenseStatus: d.LicenseStatus(s.deps.today()),
		TripStats:     domain.ComputeTripStats(deref(trips)),
	}
}

// Update changes driver attributes.
func (s *DriverService) Update(ctx context.Context, id string, req UpdateDriverRequest) (*DriverView, error) {
	err := s.withDriver(ctx, id, func(tx repository.Repositories, d *domain.Driver) error {
		if req.Name != nil {
			d.Name = *req.Name
		}
		if req.Phone != nil {
			d.Phone = *req.Phone
		}
		if req.Email != nil {
			d.Email = *req.Email
		}
		if req.LicenseNumber != nil {
			d.LicenseNumber = *req.LicenseNumber
		}
		if req.LicenseExpiry != nil {
			d.LicenseExpiry = dateOnly(req.LicenseExpiry)
		}
		if req.LicenseCategories != nil {
			d.LicenseCategories = *req.LicenseCategories
		}
		if req.SafetyScore != nil {
			d.SafetyScore = *req.SafetyScore
		}
		if req.Notes != nil {
			d.Notes = *req.Notes
		}
		if err := s.validate(d); err != nil {
			return err
		}
		d.UpdatedAt = s.deps.now()
		return tx.Drivers().Update(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a driver. Drivers still referenced by trips are kept.
func (s *DriverService) Delete(ctx context.Context, id string) error {
	return s.withDriver(ctx, id, func(tx repository.Repositories, d *domain.Driver) error {
		return tx.Drivers().Delete(ctx, d.ID)
	})
}

// SetOnDuty marks the driver on duty. License validity is not checked here;
// it is enforced when the driver is assigned to a trip.
func (s *DriverService) SetOnDuty(ctx context.Context, id string) (*DriverView, error) {
	return s.setStatus(ctx, id, domain.Driver.SetOnDuty)
}

// SetOffDuty marks the driver off duty.
func (s *DriverService) SetOffDuty(ctx context.Context, id string) (*DriverView, error) {
	return s.setStatus(ctx, id, domain.Driver.SetOffDuty)
}

// Suspend suspends the driver.
func (s *DriverService) Suspend(ctx context.Context, id string) (*DriverView, error) {
	return s.setStatus(ctx, id, domain.Driver.Suspend)
}

func (s *DriverService) setStatus(ctx context.Context, id string, apply func(domain.Driver) domain.Driver) (*DriverView, error) {
	err := s.withDriver(ctx, id, func(tx repository.Repositories, d *domain.Driver) error {
		next := apply(*d)
		next.UpdatedAt = s.deps.now()
		return tx.Drivers().Update(ctx, &next)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// LicenseCategories returns the configured license categories.
func (s *DriverService) LicenseCategories() []domain.LicenseCategory {
	return s.deps.Registry.All()
}

func (s *DriverService) withDriver(ctx context.Context, id string, fn func(tx repository.Repositories, d *domain.Driver) error) error {
	if id == "" {
		return ErrInvalidID
	}

	unlock, err := s.deps.Locker.Lock(ctx, driverKey(id))
	if err != nil {
		return err
	}
	defer unlock()

	err = s.deps.Store.WithinTx(ctx, func(tx repository.Repositories) error {
		d, err := tx.Drivers().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		return fn(tx, d)
	})
	if err != nil {
		return err
	}

	s.deps.invalidate(ctx, nil, []string{id})
	return nil
}

func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := domain.Date(*t)
	return &d
}
