package service

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"fleetflow/internal/domain"
	"fleetflow/internal/notify"
	"fleetflow/internal/repository/memory"
)

var testNow = time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

type fleet struct {
	store       *memory.Store
	events      *notify.Recorder
	deps        Deps
	vehicles    *VehicleService
	drivers     *DriverService
	trips       *TripService
	maintenance *MaintenanceService
	expenses    *ExpenseService
	dashboard   *DashboardService
}

func newFleet(t *testing.T, opts ...func(*Deps)) *fleet {
	t.Helper()
	log, _ := test.NewNullLogger()
	store := memory.NewStore()
	events := notify.NewRecorder()
	clock := domain.FixedClock{T: testNow}

	deps := Deps{
		Store:    store,
		Locker:   NewLocalLocker(2 * time.Second),
		Registry: domain.DefaultLicenseRegistry(),
		Clock:    clock,
		Notifier: NewNotificationService(events, clock, log),
		Log:      log,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	metrics := NewMetricsService(clock)
	return &fleet{
		store:       store,
		events:      events,
		deps:        deps,
		vehicles:    NewVehicleService(deps, metrics),
		drivers:     NewDriverService(deps),
		trips:       NewTripService(deps, metrics),
		maintenance: NewMaintenanceService(deps, metrics),
		expenses:    NewExpenseService(deps, metrics),
		dashboard:   NewDashboardService(deps),
	}
}

func (f *fleet) vehicle(t *testing.T, plate string, capacity float64) *domain.Vehicle {
	t.Helper()
	v, err := f.vehicles.Create(context.Background(), CreateVehicleRequest{
		Name:            "Tata Ace " + plate,
		LicensePlate:    plate,
		Type:            domain.VehicleTypeVan,
		MaxLoadCapacity: capacity,
		AcquisitionCost: 100000,
	})
	require.NoError(t, err)
	return v
}

func (f *fleet) driver(t *testing.T, license string, expiry time.Time) *domain.Driver {
	t.Helper()
	d, err := f.drivers.Create(context.Background(), CreateDriverRequest{
		Name:              "Driver " + license,
		LicenseNumber:     license,
		LicenseExpiry:     &expiry,
		LicenseCategories: []string{"van"},
	})
	require.NoError(t, err)
	return &d.Driver
}

func (f *fleet) trip(t *testing.T, v *domain.Vehicle, d *domain.Driver, cargo float64) *domain.Trip {
	t.Helper()
	trip, err := f.trips.Create(context.Background(), CreateTripRequest{
		VehicleID:   v.ID,
		DriverID:    d.ID,
		Origin:      "Ahmedabad",
		Destination: "Surat",
		CargoWeight: cargo,
	})
	require.NoError(t, err)
	return trip
}

func (f *fleet) mustVehicle(t *testing.T, id string) *domain.Vehicle {
	t.Helper()
	v, err := f.store.Vehicles().GetByID(context.Background(), id)
	require.NoError(t, err)
	return v
}

func (f *fleet) mustDriver(t *testing.T, id string) *domain.Driver {
	t.Helper()
	d, err := f.store.Drivers().GetByID(context.Background(), id)
	require.NoError(t, err)
	return d
}

func validExpiry() time.Time { return time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC) }

func ptr[T any](v T) *T { return &v }
