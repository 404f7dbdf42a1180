package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeMetrics_EndToEndFigures(t *testing.T) {
	v := &Vehicle{AcquisitionCost: 100000}
	ledger := Ledger{
		Trips: []Trip{
			{State: TripStateCompleted, Revenue: 5000, DistanceKm: 200},
		},
		Expenses: []Expense{
			{Type: ExpenseTypeFuel, Liters: 50, PricePerLiter: 100, Cost: 5000},
		},
	}

	m := ComputeMetrics(v, ledger)

	assert.Equal(t, 5000.0, m.TotalFuelCost)
	assert.Equal(t, 0.0, m.TotalMaintenanceCost)
	assert.Equal(t, 5000.0, m.TotalOperationalCost)
	assert.Equal(t, 5000.0, m.TotalRevenue)
	assert.Equal(t, 200.0, m.TotalKmDriven)
	assert.Equal(t, 25.0, m.CostPerKm)
	assert.Equal(t, 0.0, m.ROI)
	assert.Equal(t, 4.0, m.FuelEfficiency)
	assert.Equal(t, 1, m.TripCount)
}

func TestComputeMetrics_OnlyCompletedTripsCount(t *testing.T) {
	v := &Vehicle{AcquisitionCost: 1000}
	ledger := Ledger{
		Trips: []Trip{
			{State: TripStateDraft, Revenue: 100, DistanceKm: 10},
			{State: TripStateDispatched, Revenue: 200, DistanceKm: 20},
			{State: TripStateCancelled, Revenue: 300, DistanceKm: 30},
			{State: TripStateCompleted, Revenue: 400, DistanceKm: 40},
		},
		Maintenance: []Maintenance{{Cost: 150}, {Cost: 50, State: MaintenanceStateDone}},
		Expenses: []Expense{
			{Type: ExpenseTypeToll, Cost: 70},
			{Type: ExpenseTypeFuel, Cost: 100, Liters: 8},
		},
	}

	m := ComputeMetrics(v, ledger)

	assert.Equal(t, 400.0, m.TotalRevenue)
	assert.Equal(t, 40.0, m.TotalKmDriven)
	assert.Equal(t, 200.0, m.TotalMaintenanceCost)
	// Tolls are not part of the operational cost.
	assert.Equal(t, 300.0, m.TotalOperationalCost)
	assert.InDelta(t, 7.5, m.CostPerKm, 1e-9)
	assert.InDelta(t, 10.0, m.ROI, 1e-9)
	assert.InDelta(t, 5.0, m.FuelEfficiency, 1e-9)
	assert.Equal(t, 4, m.TripCount)
	assert.Equal(t, 2, m.MaintenanceCount)
}

func TestComputeMetrics_ZeroDivisionsYieldZero(t *testing.T) {
	v := &Vehicle{AcquisitionCost: 0}
	ledger := Ledger{
		Maintenance: []Maintenance{{Cost: 500}},
		Expenses:    []Expense{{Type: ExpenseTypeFuel, Cost: 90}},
	}

	m := ComputeMetrics(v, ledger)

	assert.Equal(t, 590.0, m.TotalOperationalCost)
	assert.Zero(t, m.ROI)
	assert.Zero(t, m.CostPerKm)
	assert.Zero(t, m.FuelEfficiency)
}

func TestComputeUtilization(t *testing.T) {
	assert.Equal(t, 0, ComputeUtilization(3, 0))
	assert.Equal(t, 33, ComputeUtilization(1, 3))
	assert.Equal(t, 67, ComputeUtilization(2, 3))
	assert.Equal(t, 100, ComputeUtilization(4, 4))
}
