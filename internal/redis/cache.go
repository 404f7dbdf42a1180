package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"fleetflow/internal/domain"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client     *redis.Client
	vehicleTTL time.Duration
	driverTTL  time.Duration
}

// Cache TTL defaults
const (
	DefaultVehicleCacheTTL = 60 * time.Second // Metrics change only on ledger writes
	DefaultDriverCacheTTL  = 30 * time.Second // Duty status can change frequently
)

// Key prefixes
const (
	vehicleCachePrefix = "cache:vehicle:"
	driverCachePrefix  = "cache:driver:"
)

// NewCacheStore creates a new CacheStore. Zero TTLs fall back to the defaults.
func NewCacheStore(client *redis.Client, vehicleTTL, driverTTL time.Duration) *CacheStore {
	if vehicleTTL <= 0 {
		vehicleTTL = DefaultVehicleCacheTTL
	}
	if driverTTL <= 0 {
		driverTTL = DefaultDriverCacheTTL
	}
	return &CacheStore{client: client, vehicleTTL: vehicleTTL, driverTTL: driverTTL}
}

// CachedVehicle represents a cached vehicle entity.
type CachedVehicle struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	LicensePlate    string                `json:"license_plate"`
	Type            string                `json:"vehicle_type"`
	MaxLoadCapacity float64               `json:"max_load_capacity"`
	Odometer        float64               `json:"odometer"`
	AcquisitionCost float64               `json:"acquisition_cost"`
	Region          string                `json:"region"`
	State           string                `json:"state"`
	Metrics         domain.VehicleMetrics `json:"metrics"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// CachedDriver represents a cached driver entity. License status is derived
// on read and never cached.
type CachedDriver struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Phone             string     `json:"phone"`
	Email             string     `json:"email"`
	LicenseNumber     string     `json:"license_number"`
	LicenseExpiry     *time.Time `json:"license_expiry"`
	LicenseCategories []string   `json:"license_categories"`
	Status            string     `json:"status"`
	SafetyScore       float64    `json:"safety_score"`
	Notes             string     `json:"notes"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// GetVehicle retrieves a vehicle from cache. Returns nil on a cache miss.
func (s *CacheStore) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	var cached CachedVehicle
	hit, err := s.get(ctx, vehicleCachePrefix+id, &cached)
	if err != nil || !hit {
		return nil, err
	}
	return cached.toDomain(), nil
}

// SetVehicle stores a vehicle in cache.
func (s *CacheStore) SetVehicle(ctx context.Context, v *domain.Vehicle) error {
	return s.set(ctx, vehicleCachePrefix+v.ID, newCachedVehicle(v), s.vehicleTTL)
}

// GetDriver retrieves a driver from cache. Returns nil on a cache miss.
func (s *CacheStore) GetDriver(ctx context.Context, id string) (*domain.Driver, error) {
	var cached CachedDriver
	hit, err := s.get(ctx, driverCachePrefix+id, &cached)
	if err != nil || !hit {
		return nil, err
	}
	return cached.toDomain(), nil
}

// SetDriver stores a driver in cache.
func (s *CacheStore) SetDriver(ctx context.Context, d *domain.Driver) error {
	return s.set(ctx, driverCachePrefix+d.ID, newCachedDriver(d), s.driverTTL)
}

// Invalidate removes the given vehicles and drivers from cache in one pipeline.
func (s *CacheStore) Invalidate(ctx context.Context, vehicleIDs, driverIDs []string) error {
	if len(vehicleIDs) == 0 && len(driverIDs) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, id := range vehicleIDs {
		pipe.Del(ctx, vehicleCachePrefix+id)
	}
	for _, id := range driverIDs {
		pipe.Del(ctx, driverCachePrefix+id)
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (s *CacheStore) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil // Cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CacheStore) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func newCachedVehicle(v *domain.Vehicle) CachedVehicle {
	return CachedVehicle{
		ID:              v.ID,
		Name:            v.Name,
		LicensePlate:    v.LicensePlate,
		Type:            string(v.Type),
		MaxLoadCapacity: v.MaxLoadCapacity,
		Odometer:        v.Odometer,
		AcquisitionCost: v.AcquisitionCost,
		Region:          v.Region,
		State:           string(v.State),
		Metrics:         v.Metrics,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

func (c CachedVehicle) toDomain() *domain.Vehicle {
	return &domain.Vehicle{
		ID:              c.ID,
		Name:            c.Name,
		LicensePlate:    c.LicensePlate,
		Type:            domain.VehicleType(c.Type),
		MaxLoadCapacity: c.MaxLoadCapacity,
		Odometer:        c.Odometer,
		AcquisitionCost: c.AcquisitionCost,
		Region:          c.Region,
		State:           domain.VehicleState(c.State),
		Metrics:         c.Metrics,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func newCachedDriver(d *domain.Driver) CachedDriver {
	return CachedDriver{
		ID:                d.ID,
		Name:              d.Name,
		Phone:             d.Phone,
		Email:             d.Email,
		LicenseNumber:     d.LicenseNumber,
		LicenseExpiry:     d.LicenseExpiry,
		LicenseCategories: d.LicenseCategories,
		Status:            string(d.Status),
		SafetyScore:       d.SafetyScore,
		Notes:             d.Notes,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func (c CachedDriver) toDomain() *domain.Driver {
	return &domain.Driver{
		ID:                c.ID,
		Name:              c.Name,
		Phone:             c.Phone,
		Email:             c.Email,
		LicenseNumber:     c.LicenseNumber,
		LicenseExpiry:     c.LicenseExpiry,
		LicenseCategories: c.LicenseCategories,
		Status:            domain.DriverStatus(c.Status),
		SafetyScore:       c.SafetyScore,
		Notes:             c.Notes,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}
