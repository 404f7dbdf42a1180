package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

func TestExpenseCreate_DerivesFuelCost(t *testing.T) {
	ctx := context.Background()
	f := newFleet(t)
	v := f.vehicle(t, "GJ01AA0001", 1000)

	e, err := f.expenses.Create(ctx, CreateExpenseRequest{VehicleID: v.ID, Liters: 40, PricePerLiter: 95})
	require.NoError(t, err)
	assert.Equal(t, domain.ExpenseTypeFuel, e.Type)
	assert.Equal(t, domain.DefaultExpenseName, e.Name)
	assert.Equal(t, 3800.0, e.Cost)
	assert.Equal(t, 3800.0, f.mustVehicle(t, v.ID).Metrics.TotalFuelCost)
}

func TestExpenseCreate_TripMustBelongToVehicle(t *testing.T) {
	ctx := context.Background()
	f := newFleet(t)
	v1 := f.vehicle(t, "GJ01AA0001", 1000)
	v2 := f.vehicle(t, "GJ01AA0002", 1000)
	d := f.driver(t, "LIC-1", validExpiry())
	trip := f.trip(t, v1, d, 100)

	_, err := f.expenses.Create(ctx, CreateExpenseRequest{VehicleID: v2.ID, TripID: trip.ID, Type: domain.ExpenseTypeToll, Cost: 50})
	assert.ErrorIs(t, err, domain.ErrInvalidAttribute)

	_, err = f.expenses.Create(ctx, CreateExpenseRequest{VehicleID: v2.ID, TripID: "missing", Type: domain.ExpenseTypeToll, Cost: 50})
	assert.ErrorIs(t, err, domain.ErrInvalidAttribute)
}

func TestExpenseUpdate_CostOnlyReDerivedOnTriggerFields(t *testing.T) {
	ctx := context.Background()
	f := newFleet(t)
	v := f.vehicle(t, "GJ01AA0001", 1000)

	e, err := f.expenses.Create(ctx, CreateExpenseRequest{VehicleID: v.ID, Liters: 10, PricePerLiter: 100})
	require.NoError(t, err)

	// A manual cost edit alone is kept.
	updated, err := f.expenses.Update(ctx, e.ID, UpdateExpenseRequest{Cost: ptr(1200.0)})
	require.NoError(t, err)
	assert.Equal(t, 1200.0, updated.Cost)

	updated, err = f.expenses.Update(ctx, e.ID, UpdateExpenseRequest{Liters: ptr(20.0)})
	require.NoError(t, err)
	assert.Equal(t, 2000.0, updated.Cost)

	// Leaving fuel keeps the derived cost but removes it from fuel totals.
	toll := domain.ExpenseTypeToll
	updated, err = f.expenses.Update(ctx, e.ID, UpdateExpenseRequest{Type: &toll})
	require.NoError(t, err)
	assert.Equal(t, 2000.0, updated.Cost)
	assert.Equal(t, 0.0, f.mustVehicle(t, v.ID).Metrics.TotalFuelCost)
}

func TestExpenseDelete(t *testing.T) {
	ctx := context.Background()
	f := newFleet(t)
	v := f.vehicle(t, "GJ01AA0001", 1000)

	e, err := f.expenses.Create(ctx, CreateExpenseRequest{VehicleID: v.ID, Liters: 10, PricePerLiter: 100})
	require.NoError(t, err)
	require.NoError(t, f.expenses.Delete(ctx, e.ID))

	assert.Equal(t, 0.0, f.mustVehicle(t, v.ID).Metrics.TotalFuelCost)
	list, err := f.expenses.List(ctx, repository.ExpenseFilter{VehicleID: v.ID})
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, f.expenses.Delete(ctx, e.ID), repository.ErrNotFound)
}
