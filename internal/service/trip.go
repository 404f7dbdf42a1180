package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"fleetflow/internal/domain"
	"fleetflow/internal/redis"
	"fleetflow/internal/repository"
)

// maxReassignRetries bounds how often a trip operation re-takes its locks
// when the trip was reassigned between the unlocked read and the lock.
const maxReassignRetries = 3

var errReassigned = errors.New("trip reassigned while locking")

// TripService runs the trip lifecycle: draft, dispatched, completed and
// cancelled. Every transition locks the trip's vehicle and driver, applies
// the pure domain transition and commits trip, vehicle, driver and vehicle
// metrics in one transaction.
type TripService struct {
	deps    Deps
	metrics *MetricsService
}

// NewTripService creates a new TripService.
func NewTripService(deps Deps, metrics *MetricsService) *TripService {
	return &TripService{deps: deps.withDefaults(), metrics: metrics}
}

// CreateTripRequest contains the parameters for planning a trip.
type CreateTripRequest struct {
	Reference        string
	VehicleID        string
	DriverID         string
	Origin           string
	Destination      string
	PlannedDate      *time.Time
	CargoDescription string
	CargoWeight      float64
	DistanceKm       float64
	OdometerStart    *float64
	OdometerEnd      *float64
	Revenue          float64
}

// UpdateTripRequest holds the fields to change. Nil fields are kept.
type UpdateTripRequest struct {
	VehicleID        *string
	DriverID         *string
	Origin           *string
	Destination      *string
	PlannedDate      *time.Time
	CargoDescription *string
	CargoWeight      *float64
	DistanceKm       *float64
	OdometerStart    *float64
	OdometerEnd      *float64
	Revenue          *float64
}

// CompleteTripRequest carries the optional final odometer reading.
type CompleteTripRequest struct {
	OdometerEnd *float64
}

// Create plans a draft trip after checking capacity and the driver license.
func (s *TripService) Create(ctx context.Context, req CreateTripRequest) (*domain.Trip, error) {
	now := s.deps.now()
	trip := &domain.Trip{
		ID:               newID(),
		Reference:        req.Reference,
		VehicleID:        req.VehicleID,
		DriverID:         req.DriverID,
		Origin:           req.Origin,
		Destination:      req.Destination,
		CargoDescription: req.CargoDescription,
		CargoWeight:      req.CargoWeight,
		DistanceKm:       req.DistanceKm,
		OdometerStart:    req.OdometerStart,
		OdometerEnd:      req.OdometerEnd,
		Revenue:          req.Revenue,
		State:            domain.TripStateDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	trip.PlannedDate = s.deps.today()
	if req.PlannedDate != nil {
		trip.PlannedDate = domain.Date(*req.PlannedDate)
	}
	trip.DeriveDistance()
	if err := trip.Validate(); err != nil {
		return nil, err
	}

	if trip.Reference == "" || trip.Reference == domain.UnassignedReference {
		trip.Reference = s.allocateReference(ctx)
	}

	unlock, err := s.deps.Locker.Lock(ctx, vehicleKey(trip.VehicleID), driverKey(trip.DriverID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = s.deps.Store.WithinTx(ctx, func(tx repository.Repositories) error {
		vehicle, driver, err := loadAssignment(ctx, tx, trip.VehicleID, trip.DriverID)
		if err != nil {
			return err
		}
		if err := domain.ValidateAssignment(trip, vehicle, driver, s.deps.Registry, s.deps.today()); err != nil {
			return err
		}
		trip.CapacityWarning = domain.CapacityExceeded(trip, vehicle)

		if err := tx.Trips().Create(ctx, trip); err != nil {
			return err
		}
		return s.metrics.Recompute(ctx, tx, vehicle)
	})
	if err != nil {
		return nil, err
	}

	s.deps.invalidate(ctx, []string{trip.VehicleID}, nil)
	s.deps.Log.WithFields(logrus.Fields{
		"trip_id":   trip.ID,
		"reference": trip.Reference,
	}).Info("trip planned")
	return trip, nil
}

// allocateReference falls back to the unassigned sentinel when no allocator
// is configured or it fails.
func (s *TripService) allocateReference(ctx context.Context) string {
	if s.deps.Refs == nil {
		return domain.UnassignedReference
	}
	ref, err := s.deps.Refs.NextReference(ctx, redis.TripSequence)
	if err != nil {
		s.deps.Log.WithError(err).Warn("failed to allocate trip reference")
		return domain.UnassignedReference
	}
	return ref
}

// Get returns a trip.
func (s *TripService) Get(ctx context.Context, id string) (*domain.Trip, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	return s.deps.Store.Trips().GetByID(ctx, id)
}

// List returns the trips matching filter.
func (s *TripService) List(ctx context.Context, filter repository.TripFilter) ([]*domain.Trip, error) {
	return s.deps.Store.Trips().List(ctx, filter)
}

// Update edits a trip. The vehicle and driver can only be changed while the
// trip is a draft, and the cargo of a completed trip is fixed. Only the rules
// governed by the changed fields are re-checked.
func (s *TripService) Update(ctx context.Context, id string, req UpdateTripRequest) (*domain.Trip, error) {
	var extra []string
	if req.VehicleID != nil {
		extra = append(extra, vehicleKey(*req.VehicleID))
	}
	if req.DriverID != nil {
		extra = append(extra, driverKey(*req.DriverID))
	}

	var (
		out          *domain.Trip
		oldVehicleID string
		oldDriverID  string
	)
	err := s.withTripLocks(ctx, id, extra, func(tx repository.Repositories, trip *domain.Trip, vehicle *domain.Vehicle, driver *domain.Driver) error {
		oldVehicleID, oldDriverID = trip.VehicleID, trip.DriverID

		change := domain.TripChange{
			Vehicle: req.VehicleID != nil && *req.VehicleID != trip.VehicleID,
			Driver:  req.DriverID != nil && *req.DriverID != trip.DriverID,
			Cargo:   req.CargoWeight != nil && *req.CargoWeight != trip.CargoWeight,
		}
		if (change.Vehicle || change.Driver) && trip.State != domain.TripStateDraft {
			return &domain.InvalidStateTransitionError{
				Entity: "trip", ID: trip.ID, From: string(trip.State), Action: "reassign",
				Message: "vehicle and driver can only be changed on draft trips",
			}
		}
		if change.Cargo && trip.State == domain.TripStateCompleted {
			return &domain.InvalidStateTransitionError{
				Entity: "trip", ID: trip.ID, From: string(trip.State), Action: "update cargo",
				Message: "cargo of completed trips cannot be changed",
			}
		}

		if change.Vehicle || change.Driver {
			nextVehicleID, nextDriverID := trip.VehicleID, trip.DriverID
			if change.Vehicle {
				nextVehicleID = *req.VehicleID
			}
			if change.Driver {
				nextDriverID = *req.DriverID
			}
			var err error
			if vehicle, driver, err = loadAssignment(ctx, tx, nextVehicleID, nextDriverID); err != nil {
				return err
			}
			trip.VehicleID, trip.DriverID = nextVehicleID, nextDriverID
		}

		applyTripFields(trip, req)
		if err := trip.Validate(); err != nil {
			return err
		}
		if err := domain.ValidateTripChange(change, trip, vehicle, driver, s.deps.Registry, s.deps.today()); err != nil {
			return err
		}
		trip.CapacityWarning = domain.CapacityExceeded(trip, vehicle)
		trip.UpdatedAt = s.deps.now()

		if err := tx.Trips().Update(ctx, trip); err != nil {
			return err
		}
		if change.Vehicle {
			if err := s.metrics.RecomputeByID(ctx, tx, oldVehicleID); err != nil {
				return err
			}
		}
		if err := s.metrics.Recompute(ctx, tx, vehicle); err != nil {
			return err
		}
		out = trip
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.invalidate(ctx, []string{oldVehicleID, out.VehicleID}, []string{oldDriverID, out.DriverID})
	return out, nil
}

func applyTripFields(trip *domain.Trip, req UpdateTripRequest) {
	if req.Origin != nil {
		trip.Origin = *req.Origin
	}
	if req.Destination != nil {
		trip.Destination = *req.Destination
	}
	if req.PlannedDate != nil {
		trip.PlannedDate = domain.Date(*req.PlannedDate)
	}
	if req.CargoDescription != nil {
		trip.CargoDescription = *req.CargoDescription
	}
	if req.CargoWeight != nil {
		trip.CargoWeight = *req.CargoWeight
	}
	if req.Revenue != nil {
		trip.Revenue = *req.Revenue
	}
	if req.DistanceKm != nil {
		trip.DistanceKm = *req.DistanceKm
	}
	if req.OdometerStart != nil {
		v := *req.OdometerStart
		trip.OdometerStart = &v
	}
	if req.OdometerEnd != nil {
		v := *req.OdometerEnd
		trip.OdometerEnd = &v
	}
	if req.OdometerStart != nil || req.OdometerEnd != nil {
		trip.DeriveDistance()
	}
}

// Delete removes a trip that is not out on the road.
func (s *TripService) Delete(ctx context.Context, id string) error {
	var trip *domain.Trip
	err := s.withTripLocks(ctx, id, nil, func(tx repository.Repositories, t *domain.Trip, vehicle *domain.Vehicle, _ *domain.Driver) error {
		if t.State == domain.TripStateDispatched {
			return &domain.InvalidStateTransitionError{
				Entity: "trip", ID: t.ID, From: string(t.State), Action: "delete",
				Message: "dispatched trips cannot be deleted",
			}
		}
		if err := tx.Trips().Delete(ctx, t.ID); err != nil {
			return err
		}
		trip = t
		return s.metrics.Recompute(ctx, tx, vehicle)
	})
	if err != nil {
		return err
	}

	s.deps.invalidate(ctx, []string{trip.VehicleID}, []string{trip.DriverID})
	return nil
}

// Dispatch sends a draft trip out. The vehicle and driver are re-read under
// their locks: the vehicle must still be available, the cargo must fit its
// current capacity and the driver's license must be valid today.
func (s *TripService) Dispatch(ctx context.Context, id string) (*domain.Trip, error) {
	today := s.deps.today()
	out, err := s.transition(ctx, id, func(t domain.Trip, v domain.Vehicle, d domain.Driver) (domain.TripTransition, error) {
		if t.State == domain.TripStateDraft {
			if err := domain.ValidateAssignment(&t, &v, &d, s.deps.Registry, today); err != nil {
				return domain.TripTransition{}, err
			}
		}
		return domain.Dispatch(t, v, d)
	})
	if err != nil {
		return nil, err
	}

	s.deps.Notifier.NotifyTripDispatched(ctx, out)
	return out, nil
}

// Complete closes a dispatched trip. A final odometer reading updates the
// vehicle odometer and the trip distance.
func (s *TripService) Complete(ctx context.Context, id string, req CompleteTripRequest) (*domain.Trip, error) {
	now := s.deps.now()
	out, err := s.transition(ctx, id, func(t domain.Trip, v domain.Vehicle, d domain.Driver) (domain.TripTransition, error) {
		if req.OdometerEnd != nil {
			end := *req.OdometerEnd
			t.OdometerEnd = &end
		}
		return domain.Complete(t, v, d, now)
	})
	if err != nil {
		return nil, err
	}

	s.deps.Notifier.NotifyTripCompleted(ctx, out)
	return out, nil
}

// Cancel aborts a draft or dispatched trip.
func (s *TripService) Cancel(ctx context.Context, id string) (*domain.Trip, error) {
	var from domain.TripState
	out, err := s.transition(ctx, id, func(t domain.Trip, v domain.Vehicle, d domain.Driver) (domain.TripTransition, error) {
		from = t.State
		return domain.Cancel(t, v, d)
	})
	if err != nil {
		return nil, err
	}

	s.deps.Notifier.NotifyTripCancelled(ctx, out, from)
	return out, nil
}

// Reset reopens a cancelled trip as a draft. Capacity and license are
// checked again when it is dispatched.
func (s *TripService) Reset(ctx context.Context, id string) (*domain.Trip, error) {
	out, err := s.transition(ctx, id, func(t domain.Trip, v domain.Vehicle, d domain.Driver) (domain.TripTransition, error) {
		draft, err := domain.ResetToDraft(t)
		if err != nil {
			return domain.TripTransition{}, err
		}
		return domain.TripTransition{Trip: draft, Vehicle: v, Driver: d}, nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Notifier.NotifyTripReset(ctx, out)
	return out, nil
}

type transitionFunc func(t domain.Trip, v domain.Vehicle, d domain.Driver) (domain.TripTransition, error)

// transition applies fn under the trip locks and commits the trip, driver
// and vehicle (with fresh metrics) together.
func (s *TripService) transition(ctx context.Context, id string, fn transitionFunc) (*domain.Trip, error) {
	var out domain.TripTransition
	err := s.withTripLocks(ctx, id, nil, func(tx repository.Repositories, trip *domain.Trip, vehicle *domain.Vehicle, driver *domain.Driver) error {
		var err error
		out, err = fn(*trip, *vehicle, *driver)
		if err != nil {
			return err
		}
		if err := out.Trip.Validate(); err != nil {
			return err
		}

		now := s.deps.now()
		out.Trip.CapacityWarning = domain.CapacityExceeded(&out.Trip, &out.Vehicle)
		out.Trip.UpdatedAt = now
		out.Driver.UpdatedAt = now

		if err := tx.Trips().Update(ctx, &out.Trip); err != nil {
			return err
		}
		if err := tx.Drivers().Update(ctx, &out.Driver); err != nil {
			return err
		}
		return s.metrics.Recompute(ctx, tx, &out.Vehicle)
	})
	if err != nil {
		return nil, err
	}

	s.deps.invalidate(ctx, []string{out.Vehicle.ID}, []string{out.Driver.ID})
	s.deps.Log.WithFields(logrus.Fields{
		"trip_id":    out.Trip.ID,
		"state":      out.Trip.State,
		"vehicle_id": out.Vehicle.ID,
		"driver_id":  out.Driver.ID,
		"actor":      ActorFromContext(ctx),
	}).Info("trip transition committed")

	trip := out.Trip
	return &trip, nil
}

type tripLockedFunc func(tx repository.Repositories, trip *domain.Trip, vehicle *domain.Vehicle, driver *domain.Driver) error

// withTripLocks locks the trip's vehicle and driver plus any extra keys and
// runs fn in a transaction with all three rows loaded for update. The trip
// is read once without locks to learn its assignment; if that changed before
// the locks were held, the attempt is retried.
func (s *TripService) withTripLocks(ctx context.Context, id string, extra []string, fn tripLockedFunc) error {
	if id == "" {
		return ErrInvalidID
	}

	for attempt := 0; attempt < maxReassignRetries; attempt++ {
		snapshot, err := s.deps.Store.Trips().GetByID(ctx, id)
		if err != nil {
			return err
		}

		keys := append([]string{vehicleKey(snapshot.VehicleID), driverKey(snapshot.DriverID)}, extra...)
		err = s.lockedTx(ctx, keys, func(tx repository.Repositories) error {
			trip, err := tx.Trips().GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if trip.VehicleID != snapshot.VehicleID || trip.DriverID != snapshot.DriverID {
				return errReassigned
			}
			vehicle, err := tx.Vehicles().GetForUpdate(ctx, trip.VehicleID)
			if err != nil {
				return err
			}
			driver, err := tx.Drivers().GetForUpdate(ctx, trip.DriverID)
			if err != nil {
				return err
			}
			return fn(tx, trip, vehicle, driver)
		})
		if errors.Is(err, errReassigned) {
			s.deps.Log.WithField("trip_id", id).Debug("trip reassigned while locking, retrying")
			continue
		}
		return err
	}
	return ErrConcurrentUpdate
}

func (s *TripService) lockedTx(ctx context.Context, keys []string, fn func(tx repository.Repositories) error) error {
	unlock, err := s.deps.Locker.Lock(ctx, keys...)
	if err != nil {
		return err
	}
	defer unlock()
	return s.deps.Store.WithinTx(ctx, fn)
}

// loadAssignment loads the vehicle and driver of a trip for update. Missing
// references are reported as invalid attributes of the trip.
func loadAssignment(ctx context.Context, tx repository.Repositories, vehicleID, driverID string) (*domain.Vehicle, *domain.Driver, error) {
	vehicle, err := tx.Vehicles().GetForUpdate(ctx, vehicleID)
	if err != nil {
		return nil, nil, referenceMissing(err, "trip", "vehicle_id", vehicleID)
	}
	driver, err := tx.Drivers().GetForUpdate(ctx, driverID)
	if err != nil {
		return nil, nil, referenceMissing(err, "trip", "driver_id", driverID)
	}
	return vehicle, driver, nil
}
