package domain

import "time"

// ExpenseType classifies an expense entry.
type ExpenseType string

const (
	ExpenseTypeFuel   ExpenseType = "fuel"
	ExpenseTypeToll   ExpenseType = "toll"
	ExpenseTypeRepair ExpenseType = "repair"
	ExpenseTypeOther  ExpenseType = "other"
)

// Valid reports whether t is a known expense type.
func (t ExpenseType) Valid() bool {
	switch t {
	case ExpenseTypeFuel, ExpenseTypeToll, ExpenseTypeRepair, ExpenseTypeOther:
		return true
	}
	return false
}

// DefaultExpenseName is used when an expense is logged without a description.
const DefaultExpenseName = "Fuel"

// Expense is a fuel, toll or repair entry charged to a vehicle.
type Expense struct {
	ID            string
	VehicleID     string
	TripID        string // optional
	Name          string
	Type          ExpenseType
	Date          time.Time
	Liters        float64
	PricePerLiter float64
	Cost          float64
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the static invariants of an expense.
func (e *Expense) Validate() error {
	if e.VehicleID == "" {
		return &InvalidAttributeError{Entity: "expense", Field: "vehicle_id", Reason: "is required"}
	}
	if !e.Type.Valid() {
		return &InvalidAttributeError{Entity: "expense", Field: "expense_type", Value: e.Type, Reason: "must be one of fuel, toll, repair, other"}
	}
	if e.Liters < 0 {
		return &InvalidAttributeError{Entity: "expense", Field: "liters", Value: e.Liters, Reason: "must not be negative"}
	}
	if e.PricePerLiter < 0 {
		return &InvalidAttributeError{Entity: "expense", Field: "price_per_liter", Value: e.PricePerLiter, Reason: "must not be negative"}
	}
	if e.Cost < 0 {
		return &InvalidAttributeError{Entity: "expense", Field: "cost", Value: e.Cost, Reason: "must not be negative"}
	}
	return nil
}

// RecomputeCost derives the cost of a fuel entry from liters and unit price.
// Any other entry keeps its manually entered cost, including one previously
// derived while the entry was fuel.
func (e *Expense) RecomputeCost() {
	if e.Type == ExpenseTypeFuel && e.Liters != 0 && e.PricePerLiter != 0 {
		e.Cost = e.Liters * e.PricePerLiter
	}
}

// CheckTripVehicle rejects a trip reference that belongs to another vehicle.
func (e *Expense) CheckTripVehicle(t *Trip) error {
	if t == nil || t.VehicleID == e.VehicleID {
		return nil
	}
	return &InvalidAttributeError{Entity: "expense", Field: "trip_id", Value: t.ID, Reason: "belongs to a different vehicle"}
}
