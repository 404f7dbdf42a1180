package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCapacity_Boundary(t *testing.T) {
	trip, vehicle, _ := fixtures()

	trip.CargoWeight = vehicle.MaxLoadCapacity
	assert.NoError(t, CheckCapacity(&trip, &vehicle))
	assert.False(t, CapacityExceeded(&trip, &vehicle))

	trip.CargoWeight = vehicle.MaxLoadCapacity + 1
	err := CheckCapacity(&trip, &vehicle)
	assert.True(t, CapacityExceeded(&trip, &vehicle))

	var capErr *CapacityExceededError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, "Tata Ace", capErr.VehicleName)
	assert.Equal(t, 1000.0, capErr.Capacity)
	assert.Equal(t, 1001.0, capErr.CargoWeight)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestCheckDriverLicense(t *testing.T) {
	registry := DefaultLicenseRegistry()
	today := day(2026, time.March, 1)

	t.Run("expired", func(t *testing.T) {
		_, vehicle, driver := fixtures()
		expired := day(2026, time.February, 1)
		driver.LicenseExpiry = &expired

		err := CheckDriverLicense(&driver, &vehicle, registry, today)

		var licErr *LicenseExpiredError
		require.True(t, errors.As(err, &licErr))
		assert.Equal(t, "Ravi", licErr.DriverName)
		assert.Contains(t, err.Error(), "2026-02-01")
	})

	t.Run("expiring is still assignable", func(t *testing.T) {
		_, vehicle, driver := fixtures()
		soon := today.AddDate(0, 0, 10)
		driver.LicenseExpiry = &soon

		assert.NoError(t, CheckDriverLicense(&driver, &vehicle, registry, today))
	})

	t.Run("category mismatch lists allowed types", func(t *testing.T) {
		_, vehicle, driver := fixtures()
		vehicle.Type = VehicleTypeTruck
		driver.LicenseCategories = []string{"van", "bike"}

		err := CheckDriverLicense(&driver, &vehicle, registry, today)

		var mismatch *LicenseCategoryMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.ElementsMatch(t, []VehicleType{VehicleTypeVan, VehicleTypeBike}, mismatch.Allowed)
		assert.Contains(t, err.Error(), "van, bike")
	})

	t.Run("no categories is unrestricted", func(t *testing.T) {
		_, vehicle, driver := fixtures()
		vehicle.Type = VehicleTypeTruck
		driver.LicenseCategories = nil

		assert.NoError(t, CheckDriverLicense(&driver, &vehicle, registry, today))
	})
}

func TestValidateTripChange_OnlyGoverningRules(t *testing.T) {
	registry := DefaultLicenseRegistry()
	today := day(2026, time.March, 1)
	trip, vehicle, driver := fixtures()
	expired := day(2025, time.January, 1)
	driver.LicenseExpiry = &expired

	// Editing cargo does not re-check the license of an already assigned driver.
	assert.NoError(t, ValidateTripChange(TripChange{Cargo: true}, &trip, &vehicle, &driver, registry, today))
	assert.ErrorIs(t, ValidateTripChange(TripChange{Driver: true}, &trip, &vehicle, &driver, registry, today), ErrLicenseExpired)

	trip.CargoWeight = 5000
	assert.ErrorIs(t, ValidateTripChange(TripChange{Cargo: true}, &trip, &vehicle, &driver, registry, today), ErrCapacityExceeded)
}

func TestTrip_Validate(t *testing.T) {
	trip, _, _ := fixtures()
	trip.Origin, trip.Destination = "Ahmedabad", "Surat"
	require.NoError(t, trip.Validate())

	backwards := trip
	backwards.OdometerStart = floatPtr(300)
	backwards.OdometerEnd = floatPtr(200)
	assert.ErrorIs(t, backwards.Validate(), ErrInvalidAttribute)

	noDriver := trip
	noDriver.DriverID = ""
	assert.ErrorIs(t, noDriver.Validate(), ErrInvalidAttribute)
}

func TestTrip_DeriveDistance(t *testing.T) {
	trip := Trip{DistanceKm: 7}
	trip.DeriveDistance()
	assert.Equal(t, 7.0, trip.DistanceKm)

	trip.OdometerStart = floatPtr(0)
	trip.OdometerEnd = floatPtr(120)
	trip.DeriveDistance()
	assert.Equal(t, 120.0, trip.DistanceKm)
}
