package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

func TestVehicleCreate_DefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	f := newFleet(t)

	v, err := f.vehicles.Create(ctx, CreateVehicleRequest{Name: "Eicher", LicensePlate: "GJ05ZZ9999", MaxLoadCapacity: 5000})
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleTypeVan, v.Type)
	assert.Equal(t, domain.DefaultRegion, v.Region)
	assert.Equal(t, domain.VehicleStateAvailable, v.State)

	_, err = f.vehicles.Create(ctx, CreateVehicleRequest{Name: "Other", LicensePlate: "GJ05ZZ9999", MaxLoadCapacity: 10})
	assert.ErrorIs(t, err, domain.ErrUniquenessViolation)

	_, err = f.vehicles.Create(ctx, CreateVehicleRequest{Name: "Zero", LicensePlate: "GJ05ZZ0000"})
	assert.ErrorIs(t, err, domain.ErrInvalidAttribute)
}

func TestVehicleUpdate_CapacityBelowOpenTripCargo(t *testing.T) {
	ctx := context.Background()
	f := newFleet(t)
	v := f.vehicle(t, "GJ01AA0001", 1000)
	d := f.driver(t, "LIC-1", validExpiry())
	f.trip(t, v, d, 800)

	_, err := f.vehicles.Update(ctx, v.ID, UpdateVehicleRequest{MaxLoadCapacity: ptr(500.0)})
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Equal(t, 1000.0, f.mustVehicle(t, v.ID).MaxLoadCapacity)

	updated, err := f.vehicles.Update(ctx, v.ID, UpdateVehicleRequest{MaxLoadCapacity: ptr(900.0), AcquisitionCost: ptr(50000.0)})
	require.NoError(t, err)
	assert.Equal(t, 900.0, updated.MaxLoadCapacity)
	assert.Equal(t, 1, updated.Metrics.TripCount)
}

func TestVehicleUpdate_RefreshesTripCapacityWarning(t *testing.T) {
	ctx := context.Background()
	f := newFleet(t)
	v := f.vehicle(t, "GJ01AA0001", 1000)
	d := f.driver(t, "LIC-1", validExpiry())
	trip := f.trip(t, v, d, 900)
	assert.False(t, trip.CapacityWarning)

	_, err := f.trips.Cancel(ctx, trip.ID)
	require.NoError(t, err)

	_, err = f.vehicles.Update(ctx, v.ID, UpdateVehicleRequest{MaxLoadCapacity: ptr(500.0)})
	require.NoError(t, err)
	got, err := f.trips.Get(ctx, trip.ID)
	require.NoError(t, err)
	assert.True(t, got.CapacityWarning)

	_, err = f.vehicles.Update(ctx, v.ID, UpdateVehicleRequest{MaxLoadCapacity: ptr(1200.0)})
	require.NoError(t, err)
	got, err = f.trips.Get(ctx, trip.ID)
	require.NoError(t, err)
	assert.False(t, got.CapacityWarning)
}

func TestVehicleDelete(t *testing.T) {
	ctx := context.Background()
	f := newFleet(t)
	v := f.vehicle(t, "GJ01AA0001", 1000)
	d := f.driver(t, "LIC-1", validExpiry())
	trip := f.trip(t, v, d, 100)

	_, err := f.trips.Dispatch(ctx, trip.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, f.vehicles.Delete(ctx, v.ID), domain.ErrInvalidStateTransition)

	_, err = f.trips.Cancel(ctx, trip.ID)
	require.NoError(t, err)
	require.NoError(t, f.vehicles.Delete(ctx, v.ID))

	_, err = f.vehicles.Get(ctx, v.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	trips, err := f.trips.List(ctx, repository.TripFilter{VehicleID: v.ID})
	require.NoError(t, err)
	assert.Empty(t, trips)
}

func TestVehicleOverrides(t *testing.T) {
	ctx := context.Background()
	f := newFleet(t)
	v := f.vehicle(t, "GJ01AA0001", 1000)

	retired, err := f.vehicles.Retire(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleStateRetired, retired.State)

	available, err := f.vehicles.SetAvailable(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleStateAvailable, available.State)

	list, err := f.vehicles.List(ctx, repository.VehicleFilter{State: domain.VehicleStateAvailable})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.vehicles.Retire(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidID)
}
