package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrCapacityExceeded is returned when cargo weight exceeds vehicle capacity.
	ErrCapacityExceeded = errors.New("cargo weight exceeds vehicle capacity")

	// ErrLicenseExpired is returned when an expired driver is assigned to a trip.
	ErrLicenseExpired = errors.New("driver license expired")

	// ErrLicenseCategoryMismatch is returned when the driver is not licensed for the vehicle type.
	ErrLicenseCategoryMismatch = errors.New("license category mismatch")

	// ErrInvalidStateTransition is returned when a transition is not permitted from the current state.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrResourceUnavailable is returned when a vehicle is no longer available at dispatch time.
	ErrResourceUnavailable = errors.New("resource unavailable")

	// ErrUniquenessViolation is returned on duplicate license numbers or plates.
	ErrUniquenessViolation = errors.New("uniqueness violation")

	// ErrInvalidAttribute is returned when a static field invariant is violated.
	ErrInvalidAttribute = errors.New("invalid attribute")
)

// CapacityExceededError names the vehicle, its capacity and the rejected weight.
type CapacityExceededError struct {
	TripID      string
	VehicleID   string
	VehicleName string
	Capacity    float64
	CargoWeight float64
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("cargo weight exceeded: vehicle %s max capacity %g kg, cargo %g kg",
		e.VehicleName, e.Capacity, e.CargoWeight)
}

func (e *CapacityExceededError) Unwrap() error { return ErrCapacityExceeded }

// LicenseExpiredError names the driver and the expiry date.
type LicenseExpiredError struct {
	DriverID   string
	DriverName string
	ExpiryDate *time.Time
}

func (e *LicenseExpiredError) Error() string {
	if e.ExpiryDate == nil {
		return fmt.Sprintf("license expired: driver %s has no license expiry date", e.DriverName)
	}
	return fmt.Sprintf("license expired: driver %s's license expired on %s",
		e.DriverName, e.ExpiryDate.Format(time.DateOnly))
}

func (e *LicenseExpiredError) Unwrap() error { return ErrLicenseExpired }

// LicenseCategoryMismatchError lists the vehicle types the driver may operate.
type LicenseCategoryMismatchError struct {
	DriverID    string
	DriverName  string
	VehicleType VehicleType
	Allowed     []VehicleType
}

func (e *LicenseCategoryMismatchError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, t := range e.Allowed {
		allowed[i] = string(t)
	}
	return fmt.Sprintf("license category mismatch: driver %s is not licensed to drive a %s, allowed categories: %s",
		e.DriverName, e.VehicleType, strings.Join(allowed, ", "))
}

func (e *LicenseCategoryMismatchError) Unwrap() error { return ErrLicenseCategoryMismatch }

// InvalidStateTransitionError describes a rejected lifecycle action.
type InvalidStateTransitionError struct {
	Entity  string
	ID      string
	From    string
	Action  string
	Message string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("%s %s: cannot %s from state %s: %s", e.Entity, e.ID, e.Action, e.From, e.Message)
}

func (e *InvalidStateTransitionError) Unwrap() error { return ErrInvalidStateTransition }

// ResourceUnavailableError reports a vehicle that lost availability before dispatch.
type ResourceUnavailableError struct {
	VehicleID    string
	VehicleName  string
	CurrentState VehicleState
}

func (e *ResourceUnavailableError) Error() string {
	return fmt.Sprintf("vehicle %s is no longer available (current status: %s)", e.VehicleName, e.CurrentState)
}

func (e *ResourceUnavailableError) Unwrap() error { return ErrResourceUnavailable }

// UniquenessViolationError names the duplicated field and value.
type UniquenessViolationError struct {
	Entity string
	Field  string
	Value  string
}

func (e *UniquenessViolationError) Error() string {
	return fmt.Sprintf("%s %s %q must be unique", e.Entity, e.Field, e.Value)
}

func (e *UniquenessViolationError) Unwrap() error { return ErrUniquenessViolation }

// InvalidAttributeError reports a static field invariant violation.
type InvalidAttributeError struct {
	Entity string
	Field  string
	Value  any
	Reason string
}

func (e *InvalidAttributeError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s %s %s", e.Entity, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %s %v %s", e.Entity, e.Field, e.Value, e.Reason)
}

func (e *InvalidAttributeError) Unwrap() error { return ErrInvalidAttribute }
