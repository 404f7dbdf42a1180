package memory

import (
	"time"

	"fleetflow/internal/domain"
)

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

func copyDriver(d domain.Driver) domain.Driver {
	d.LicenseExpiry = copyTime(d.LicenseExpiry)
	if d.LicenseCategories != nil {
		d.LicenseCategories = append([]string(nil), d.LicenseCategories...)
	}
	return d
}

func copyTrip(t domain.Trip) domain.Trip {
	t.CompletedDate = copyTime(t.CompletedDate)
	t.OdometerStart = copyFloat(t.OdometerStart)
	t.OdometerEnd = copyFloat(t.OdometerEnd)
	return t
}

func copyMaintenance(m domain.Maintenance) domain.Maintenance {
	m.CompletedDate = copyTime(m.CompletedDate)
	return m
}
