package redis

import (
	"context"
	"time"

	"fleetflow/internal/domain"
)

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, token string) (bool, error)
}

// CacheStoreInterface defines the interface for the vehicle and driver read cache.
type CacheStoreInterface interface {
	GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error)
	SetVehicle(ctx context.Context, v *domain.Vehicle) error
	GetDriver(ctx context.Context, id string) (*domain.Driver, error)
	SetDriver(ctx context.Context, d *domain.Driver) error
	Invalidate(ctx context.Context, vehicleIDs, driverIDs []string) error
}

// SequenceStoreInterface defines the interface for reference allocation.
type SequenceStoreInterface interface {
	NextReference(ctx context.Context, code string) (string, error)
}

// IdempotencyStoreInterface defines the interface for replayable responses.
type IdempotencyStoreInterface interface {
	GetResponse(ctx context.Context, key string) ([]byte, bool, error)
	SetResponse(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface     = (*LockStore)(nil)
	_ CacheStoreInterface    = (*CacheStore)(nil)
	_ SequenceStoreInterface = (*SequenceStore)(nil)

	_ IdempotencyStoreInterface = (*IdempotencyStore)(nil)
)
