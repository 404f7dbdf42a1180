package domain

import "time"

// DriverStatus represents the duty status of a driver.
type DriverStatus string

const (
	DriverStatusOnDuty    DriverStatus = "on_duty"
	DriverStatusOffDuty   DriverStatus = "off_duty"
	DriverStatusSuspended DriverStatus = "suspended"
)

// Valid reports whether s is a known driver status.
func (s DriverStatus) Valid() bool {
	switch s {
	case DriverStatusOnDuty, DriverStatusOffDuty, DriverStatusSuspended:
		return true
	}
	return false
}

// LicenseStatus is derived from the license expiry date relative to today.
type LicenseStatus string

const (
	LicenseStatusValid    LicenseStatus = "valid"
	LicenseStatusExpiring LicenseStatus = "expiring"
	LicenseStatusExpired  LicenseStatus = "expired"
)

// ExpiringWindowDays is how close to expiry a license is flagged as expiring.
const ExpiringWindowDays = 30

// DefaultSafetyScore is the score every new driver starts with.
const DefaultSafetyScore = 100.0

// Driver represents a driver profile.
type Driver struct {
	ID                string
	Name              string
	Phone             string
	Email             string
	LicenseNumber     string
	LicenseExpiry     *time.Time // date only
	LicenseCategories []string   // license category codes
	Status            DriverStatus
	SafetyScore       float64
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TripStats summarizes the trips assigned to a driver.
type TripStats struct {
	Total          int
	Completed      int
	CompletionRate float64 // percent
}

// Validate checks the static invariants of a driver.
func (d *Driver) Validate() error {
	if d.Name == "" {
		return &InvalidAttributeError{Entity: "driver", Field: "name", Reason: "is required"}
	}
	if d.LicenseNumber == "" {
		return &InvalidAttributeError{Entity: "driver", Field: "license_number", Reason: "is required"}
	}
	if d.LicenseExpiry == nil {
		return &InvalidAttributeError{Entity: "driver", Field: "license_expiry_date", Reason: "is required"}
	}
	if !d.Status.Valid() {
		return &InvalidAttributeError{Entity: "driver", Field: "status", Value: d.Status, Reason: "unknown status"}
	}
	if d.SafetyScore < 0 || d.SafetyScore > 100 {
		return &InvalidAttributeError{Entity: "driver", Field: "safety_score", Value: d.SafetyScore, Reason: "must be between 0 and 100"}
	}
	return nil
}

// LicenseStatus returns the license status as of today.
func (d *Driver) LicenseStatus(today time.Time) LicenseStatus {
	return ComputeLicenseStatus(d.LicenseExpiry, today)
}

// ComputeLicenseStatus classifies an expiry date relative to today.
// A missing expiry date counts as expired.
func ComputeLicenseStatus(expiry *time.Time, today time.Time) LicenseStatus {
	if expiry == nil {
		return LicenseStatusExpired
	}
	delta := DaysBetween(today, *expiry)
	switch {
	case delta < 0:
		return LicenseStatusExpired
	case delta <= ExpiringWindowDays:
		return LicenseStatusExpiring
	default:
		return LicenseStatusValid
	}
}

// ComputeTripStats counts trips that left the draft state and were not cancelled.
func ComputeTripStats(trips []Trip) TripStats {
	var stats TripStats
	for _, t := range trips {
		if t.State == TripStateDraft || t.State == TripStateCancelled {
			continue
		}
		stats.Total++
		if t.State == TripStateCompleted {
			stats.Completed++
		}
	}
	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(stats.Total) * 100
	}
	return stats
}

// SetOnDuty marks the driver on duty.
func (d Driver) SetOnDuty() Driver {
	d.Status = DriverStatusOnDuty
	return d
}

// SetOffDuty marks the driver off duty.
func (d Driver) SetOffDuty() Driver {
	d.Status = DriverStatusOffDuty
	return d
}

// Suspend suspends the driver.
func (d Driver) Suspend() Driver {
	d.Status = DriverStatusSuspended
	return d
}
