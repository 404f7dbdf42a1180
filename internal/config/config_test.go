package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetflow/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LOCK_BACKEND", "")
	t.Setenv("DB_NAME", "")

	cfg := Load()

	assert.Equal(t, "fleetflow", cfg.Database.DBName)
	assert.Equal(t, "redis", cfg.Lock.Backend)
	assert.Equal(t, 5*time.Second, cfg.Lock.WaitTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.RabbitMQ.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LOCK_BACKEND", "local")
	t.Setenv("LOCK_TTL", "3s")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	assert.Equal(t, "local", cfg.Lock.Backend)
	assert.Equal(t, 3*time.Second, cfg.Lock.TTL)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestParseLicenseCategories(t *testing.T) {
	data := []byte(`
categories:
  - code: hmv
    name: Heavy Motor Vehicle
    vehicle_type: truck
  - code: lmv
    name: Light Motor Vehicle
    vehicle_type: van
`)

	registry, err := ParseLicenseCategories(data)
	require.NoError(t, err)

	assert.True(t, registry.Authorizes([]string{"HMV"}, domain.VehicleTypeTruck))
	assert.False(t, registry.Authorizes([]string{"lmv"}, domain.VehicleTypeTruck))
	assert.Len(t, registry.All(), 2)
}

func TestParseLicenseCategories_Invalid(t *testing.T) {
	_, err := ParseLicenseCategories([]byte("categories: []"))
	assert.Error(t, err)

	_, err = ParseLicenseCategories([]byte("categories:\n  - code: x\n    vehicle_type: tractor\n"))
	assert.ErrorContains(t, err, "unknown vehicle type")
}

func TestLoadLicenseRegistry(t *testing.T) {
	registry, err := LoadLicenseRegistry("")
	require.NoError(t, err)
	assert.Len(t, registry.All(), len(domain.DefaultLicenseCategories))

	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - code: moto\n    name: Motorcycle\n    vehicle_type: bike\n"), 0o600))

	registry, err = LoadLicenseRegistry(path)
	require.NoError(t, err)
	_, ok := registry.Lookup("moto")
	assert.True(t, ok)

	_, err = LoadLicenseRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
