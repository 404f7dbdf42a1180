package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fleetflow/internal/domain"
	"fleetflow/internal/redis"
	"fleetflow/internal/repository"
)

// ReferenceAllocator hands out human-readable record references.
type ReferenceAllocator interface {
	NextReference(ctx context.Context, code string) (string, error)
}

// Deps are the collaborators shared by every service. Cache and Refs are
// optional.
type Deps struct {
	Store    repository.Store
	Locker   Locker
	Registry *domain.LicenseRegistry
	Clock    domain.Clock
	Cache    redis.CacheStoreInterface
	Refs     ReferenceAllocator
	Notifier *NotificationService
	Log      logrus.FieldLogger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = domain.SystemClock{}
	}
	if d.Registry == nil {
		d.Registry = domain.DefaultLicenseRegistry()
	}
	if d.Locker == nil {
		d.Locker = NewLocalLocker(0)
	}
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if d.Notifier == nil {
		d.Notifier = NewNotificationService(nil, d.Clock, d.Log)
	}
	return d
}

func (d Deps) now() time.Time   { return d.Clock.Now() }
func (d Deps) today() time.Time { return domain.Date(d.Clock.Now()) }

func newID() string { return uuid.New().String() }

// invalidate drops cached views after a commit. Failures only cost a stale
// read until the TTL expires, so they are logged.
func (d Deps) invalidate(ctx context.Context, vehicleIDs, driverIDs []string) {
	if d.Cache == nil {
		return
	}
	if err := d.Cache.Invalidate(ctx, compact(vehicleIDs), compact(driverIDs)); err != nil {
		d.Log.WithError(err).Warn("failed to invalidate cache")
	}
}

func compact(ids []string) []string {
	out := ids[:0:0]
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// referenceMissing turns a dangling foreign key into an attribute error.
func referenceMissing(err error, entity, field, value string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &domain.InvalidAttributeError{Entity: entity, Field: field, Value: value, Reason: "does not exist"}
	}
	return err
}

// withVehicleTx runs fn in a transaction holding the vehicle lock and drops
// the cached vehicle after commit.
func (d Deps) withVehicleTx(ctx context.Context, vehicleID string, fn func(tx repository.Repositories) error) error {
	unlock, err := d.Locker.Lock(ctx, vehicleKey(vehicleID))
	if err != nil {
		return err
	}
	defer unlock()

	if err := d.Store.WithinTx(ctx, fn); err != nil {
		return err
	}
	d.invalidate(ctx, []string{vehicleID}, nil)
	return nil
}
