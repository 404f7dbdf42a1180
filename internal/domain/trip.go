package domain

import "time"

// TripState represents the lifecycle state of a trip.
type TripState string

const (
	TripStateDraft      TripState = "draft"
	TripStateDispatched TripState = "dispatched"
	TripStateCompleted  TripState = "completed"
	TripStateCancelled  TripState = "cancelled"
)

// Valid reports whether s is a known trip state.
func (s TripState) Valid() bool {
	switch s {
	case TripStateDraft, TripStateDispatched, TripStateCompleted, TripStateCancelled:
		return true
	}
	return false
}

// UnassignedReference is stored when no trip reference could be allocated.
const UnassignedReference = "New"

// Trip represents a cargo movement from origin to destination.
type Trip struct {
	ID               string
	Reference        string
	VehicleID        string
	DriverID         string
	Origin           string
	Destination      string
	PlannedDate      time.Time
	CompletedDate    *time.Time
	CargoDescription string
	CargoWeight      float64 // kg
	DistanceKm       float64
	OdometerStart    *float64
	OdometerEnd      *float64
	Revenue          float64
	State            TripState
	CapacityWarning  bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate checks the static invariants of a trip.
func (t *Trip) Validate() error {
	if t.VehicleID == "" {
		return &InvalidAttributeError{Entity: "trip", Field: "vehicle_id", Reason: "is required"}
	}
	if t.DriverID == "" {
		return &InvalidAttributeError{Entity: "trip", Field: "driver_id", Reason: "is required"}
	}
	if t.Origin == "" {
		return &InvalidAttributeError{Entity: "trip", Field: "origin", Reason: "is required"}
	}
	if t.Destination == "" {
		return &InvalidAttributeError{Entity: "trip", Field: "destination", Reason: "is required"}
	}
	if t.CargoWeight < 0 {
		return &InvalidAttributeError{Entity: "trip", Field: "cargo_weight", Value: t.CargoWeight, Reason: "must not be negative"}
	}
	if t.DistanceKm < 0 {
		return &InvalidAttributeError{Entity: "trip", Field: "distance_km", Value: t.DistanceKm, Reason: "must not be negative"}
	}
	if t.OdometerStart != nil && t.OdometerEnd != nil && *t.OdometerEnd < *t.OdometerStart {
		return &InvalidAttributeError{Entity: "trip", Field: "odometer_end", Value: *t.OdometerEnd, Reason: "must not be below odometer_start"}
	}
	if !t.State.Valid() {
		return &InvalidAttributeError{Entity: "trip", Field: "state", Value: t.State, Reason: "unknown state"}
	}
	return nil
}

// DeriveDistance sets the distance from the odometer readings when both are set.
func (t *Trip) DeriveDistance() {
	if t.OdometerStart != nil && t.OdometerEnd != nil {
		t.DistanceKm = *t.OdometerEnd - *t.OdometerStart
	}
}

// CapacityExceeded reports whether the cargo exceeds the vehicle capacity.
// It is the display mirror of CheckCapacity.
func CapacityExceeded(t *Trip, v *Vehicle) bool {
	return v != nil && t.CargoWeight > v.MaxLoadCapacity
}

// CheckCapacity rejects cargo heavier than the vehicle can carry.
func CheckCapacity(t *Trip, v *Vehicle) error {
	if CapacityExceeded(t, v) {
		return &CapacityExceededError{
			TripID:      t.ID,
			VehicleID:   v.ID,
			VehicleName: v.Name,
			Capacity:    v.MaxLoadCapacity,
			CargoWeight: t.CargoWeight,
		}
	}
	return nil
}

// CheckDriverLicense rejects expired drivers and drivers not licensed for the vehicle type.
func CheckDriverLicense(d *Driver, v *Vehicle, registry *LicenseRegistry, today time.Time) error {
	if d.LicenseStatus(today) == LicenseStatusExpired {
		return &LicenseExpiredError{DriverID: d.ID, DriverName: d.Name, ExpiryDate: d.LicenseExpiry}
	}
	if v != nil && !registry.Authorizes(d.LicenseCategories, v.Type) {
		return &LicenseCategoryMismatchError{
			DriverID:    d.ID,
			DriverName:  d.Name,
			VehicleType: v.Type,
			Allowed:     registry.AllowedVehicleTypes(d.LicenseCategories),
		}
	}
	return nil
}

// ValidateAssignment runs all trip assignment rules: capacity, license expiry
// and license category.
func ValidateAssignment(t *Trip, v *Vehicle, d *Driver, registry *LicenseRegistry, today time.Time) error {
	if err := CheckCapacity(t, v); err != nil {
		return err
	}
	return CheckDriverLicense(d, v, registry, today)
}

// TripChange records which governing fields an update touched.
type TripChange struct {
	Vehicle bool
	Driver  bool
	Cargo   bool
}

// ValidateTripChange runs only the rules whose governing fields changed:
// capacity on cargo or vehicle, license checks on driver or vehicle.
func ValidateTripChange(change TripChange, t *Trip, v *Vehicle, d *Driver, registry *LicenseRegistry, today time.Time) error {
	if change.Cargo || change.Vehicle {
		if err := CheckCapacity(t, v); err != nil {
			return err
		}
	}
	if change.Driver || change.Vehicle {
		if err := CheckDriverLicense(d, v, registry, today); err != nil {
			return err
		}
	}
	return nil
}
