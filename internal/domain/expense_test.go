package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpense_RecomputeCost(t *testing.T) {
	fuel := Expense{Type: ExpenseTypeFuel, Liters: 50, PricePerLiter: 100}
	fuel.RecomputeCost()
	assert.Equal(t, 5000.0, fuel.Cost)

	manual := Expense{Type: ExpenseTypeToll, Cost: 250, Liters: 10, PricePerLiter: 90}
	manual.RecomputeCost()
	assert.Equal(t, 250.0, manual.Cost)

	partial := Expense{Type: ExpenseTypeFuel, Liters: 30, Cost: 999}
	partial.RecomputeCost()
	assert.Equal(t, 999.0, partial.Cost)
}

func TestExpense_CostStaysWhenTypeLeavesFuel(t *testing.T) {
	e := Expense{Type: ExpenseTypeFuel, Liters: 20, PricePerLiter: 100}
	e.RecomputeCost()
	assert.Equal(t, 2000.0, e.Cost)

	e.Type = ExpenseTypeRepair
	e.RecomputeCost()
	assert.Equal(t, 2000.0, e.Cost)
}

func TestExpense_CheckTripVehicle(t *testing.T) {
	e := Expense{VehicleID: "v1"}

	assert.NoError(t, e.CheckTripVehicle(nil))
	assert.NoError(t, e.CheckTripVehicle(&Trip{ID: "t1", VehicleID: "v1"}))
	assert.ErrorIs(t, e.CheckTripVehicle(&Trip{ID: "t2", VehicleID: "v2"}), ErrInvalidAttribute)
}
