package domain

import "time"

// VehicleType represents the class of a vehicle.
type VehicleType string

const (
	VehicleTypeTruck VehicleType = "truck"
	VehicleTypeVan   VehicleType = "van"
	VehicleTypeBike  VehicleType = "bike"
)

// Valid reports whether t is a known vehicle type.
func (t VehicleType) Valid() bool {
	switch t {
	case VehicleTypeTruck, VehicleTypeVan, VehicleTypeBike:
		return true
	}
	return false
}

// VehicleState represents the current availability of a vehicle.
type VehicleState string

const (
	VehicleStateAvailable VehicleState = "available"
	VehicleStateOnTrip    VehicleState = "on_trip"
	VehicleStateInShop    VehicleState = "in_shop"
	VehicleStateRetired   VehicleState = "retired"
)

// Valid reports whether s is a known vehicle state.
func (s VehicleState) Valid() bool {
	switch s {
	case VehicleStateAvailable, VehicleStateOnTrip, VehicleStateInShop, VehicleStateRetired:
		return true
	}
	return false
}

// DefaultRegion is assigned to vehicles registered without a region.
const DefaultRegion = "Gujarat"

// Vehicle represents a fleet vehicle and its cached ledger metrics.
type Vehicle struct {
	ID              string
	Name            string
	LicensePlate    string
	Type            VehicleType
	MaxLoadCapacity float64 // kg
	Odometer        float64 // km
	AcquisitionCost float64
	Region          string
	State           VehicleState
	Metrics         VehicleMetrics
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate checks the static invariants of a vehicle.
func (v *Vehicle) Validate() error {
	if v.Name == "" {
		return &InvalidAttributeError{Entity: "vehicle", Field: "name", Reason: "is required"}
	}
	if v.LicensePlate == "" {
		return &InvalidAttributeError{Entity: "vehicle", Field: "license_plate", Reason: "is required"}
	}
	if !v.Type.Valid() {
		return &InvalidAttributeError{Entity: "vehicle", Field: "vehicle_type", Value: v.Type, Reason: "must be one of truck, van, bike"}
	}
	if v.MaxLoadCapacity <= 0 {
		return &InvalidAttributeError{Entity: "vehicle", Field: "max_load_capacity", Value: v.MaxLoadCapacity, Reason: "must be greater than 0 kg"}
	}
	if v.Odometer < 0 {
		return &InvalidAttributeError{Entity: "vehicle", Field: "odometer", Value: v.Odometer, Reason: "must not be negative"}
	}
	if v.AcquisitionCost < 0 {
		return &InvalidAttributeError{Entity: "vehicle", Field: "acquisition_cost", Value: v.AcquisitionCost, Reason: "must not be negative"}
	}
	if !v.State.Valid() {
		return &InvalidAttributeError{Entity: "vehicle", Field: "state", Value: v.State, Reason: "unknown state"}
	}
	return nil
}

// SetAvailable is a manual override that marks the vehicle available.
func (v Vehicle) SetAvailable() Vehicle {
	v.State = VehicleStateAvailable
	return v
}

// SetRetired is a manual override that retires the vehicle.
func (v Vehicle) SetRetired() Vehicle {
	v.State = VehicleStateRetired
	return v
}
