package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetflow/internal/domain"
	"fleetflow/internal/notify"
	"fleetflow/internal/repository"
)

func TestMaintenanceCreate_SendsVehicleToShop(t *testing.T) {
	ctx := context.Background()
	f := newFleet(t)
	v := f.vehicle(t, "GJ01AA0001", 1000)

	m, err := f.maintenance.Create(ctx, CreateMaintenanceRequest{
		VehicleID: v.ID,
		Name:      "Oil and filter",
		Type:      domain.MaintenanceTypeOilChange,
		Cost:      2500,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MaintenanceStateOpen, m.State)
	assert.Equal(t, domain.Date(testNow), m.ServiceDate)

	vehicle := f.mustVehicle(t, v.ID)
	assert.Equal(t, domain.VehicleStateInShop, vehicle.State)
	assert.Equal(t, 2500.0, vehicle.Metrics.TotalMaintenanceCost)
	assert.Equal(t, 1, vehicle.Metrics.MaintenanceCount)

	events := f.events.OfType(notify.EventVehicleInShop)
	require.Len(t, events, 1)
	assert.Equal(t, "Vehicle sent to shop: Oil and filter (Oil Change)", events[0].Message)
	assert.Equal(t, v.ID, events[0].SubjectID)
}

func TestMaintenanceCreate_MissingVehicle(t *testing.T) {
	f := newFleet(t)
	_, err := f.maintenance.Create(context.Background(), CreateMaintenanceRequest{VehicleID: "nope", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidAttribute)
}

func TestMaintenanceComplete_WaitsForSiblings(t *testing.T) {
	ctx := context.Background()
	f := newFleet(t)
	v := f.vehicle(t, "GJ01AA0001", 1000)

	first, err := f.maintenance.Create(ctx, CreateMaintenanceRequest{VehicleID: v.ID, Name: "Brakes"})
	require.NoError(t, err)
	second, err := f.maintenance.Create(ctx, CreateMaintenanceRequest{VehicleID: v.ID, Name: "Tyres", Type: domain.MaintenanceTypeTyre})
	require.NoError(t, err)

	done, err := f.maintenance.Complete(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MaintenanceStateDone, done.State)
	assert.Equal(t, domain.VehicleStateInShop, f.mustVehicle(t, v.ID).State)
	assert.Empty(t, f.events.OfType(notify.EventMaintenanceCompleted))

	_, err = f.maintenance.Complete(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = f.maintenance.Complete(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleStateAvailable, f.mustVehicle(t, v.ID).State)

	restored := f.events.OfType(notify.EventMaintenanceCompleted)
	require.Len(t, restored, 1)
	assert.Equal(t, "Maintenance completed. Vehicle is now Available.", restored[0].Message)
	assert.Equal(t, second.ID, restored[0].SubjectID)
}

func TestMaintenanceComplete_ConcurrentSiblingsRestoreOnce(t *testing.T) {
	ctx := context.Background()
	f := newFleet(t)
	v := f.vehicle(t, "GJ01AA0001", 1000)

	var ids []string
	for _, name := range []string{"Brakes", "Tyres"} {
		m, err := f.maintenance.Create(ctx, CreateMaintenanceRequest{VehicleID: v.ID, Name: name})
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.maintenance.Complete(ctx, id)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	assert.Equal(t, domain.VehicleStateAvailable, f.mustVehicle(t, v.ID).State)
	assert.Len(t, f.events.OfType(notify.EventMaintenanceCompleted), 1)
}

func TestMaintenanceComplete_RestoresOverriddenVehicle(t *testing.T) {
	ctx := context.Background()
	f := newFleet(t)
	v := f.vehicle(t, "GJ01AA0001", 1000)

	m, err := f.maintenance.Create(ctx, CreateMaintenanceRequest{VehicleID: v.ID, Name: "Final check"})
	require.NoError(t, err)
	_, err = f.vehicles.Retire(ctx, v.ID)
	require.NoError(t, err)

	_, err = f.maintenance.Complete(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleStateAvailable, f.mustVehicle(t, v.ID).State)
	assert.Len(t, f.events.OfType(notify.EventMaintenanceCompleted), 1)
}

func TestMaintenanceDelete_LastOpenRecordRestoresVehicle(t *testing.T) {
	ctx := context.Background()
	f := newFleet(t)
	v := f.vehicle(t, "GJ01AA0001", 1000)

	m, err := f.maintenance.Create(ctx, CreateMaintenanceRequest{VehicleID: v.ID, Name: "Brakes", Cost: 900})
	require.NoError(t, err)

	require.NoError(t, f.maintenance.Delete(ctx, m.ID))

	vehicle := f.mustVehicle(t, v.ID)
	assert.Equal(t, domain.VehicleStateAvailable, vehicle.State)
	assert.Equal(t, 0.0, vehicle.Metrics.TotalMaintenanceCost)

	_, err = f.maintenance.Get(ctx, m.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMaintenanceUpdate_RecomputesCost(t *testing.T) {
	ctx := context.Background()
	f := newFleet(t)
	v := f.vehicle(t, "GJ01AA0001", 1000)

	m, err := f.maintenance.Create(ctx, CreateMaintenanceRequest{VehicleID: v.ID, Name: "Brakes", Cost: 900})
	require.NoError(t, err)

	updated, err := f.maintenance.Update(ctx, m.ID, UpdateMaintenanceRequest{Cost: ptr(1500.0), Vendor: ptr("City Garage")})
	require.NoError(t, err)
	assert.Equal(t, "City Garage", updated.Vendor)
	assert.Equal(t, 1500.0, f.mustVehicle(t, v.ID).Metrics.TotalMaintenanceCost)

	_, err = f.maintenance.Update(ctx, m.ID, UpdateMaintenanceRequest{Cost: ptr(-1.0)})
	assert.ErrorIs(t, err, domain.ErrInvalidAttribute)

	open, err := f.maintenance.List(ctx, repository.MaintenanceFilter{VehicleID: v.ID, State: domain.MaintenanceStateOpen})
	require.NoError(t, err)
	assert.Len(t, open, 1)
}
