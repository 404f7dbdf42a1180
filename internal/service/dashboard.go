package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

// DashboardService builds the fleet overview.
type DashboardService struct {
	deps Deps
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(deps Deps) *DashboardService {
	return &DashboardService{deps: deps.withDefaults()}
}

// Summary counts vehicles, pending work and license health across the fleet.
func (s *DashboardService) Summary(ctx context.Context) (*domain.FleetSummary, error) {
	store := s.deps.Store

	var (
		vehicles   []*domain.Vehicle
		drafts     []*domain.Trip
		dispatched []*domain.Trip
		drivers    []*domain.Driver
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		vehicles, err = store.Vehicles().List(gctx, repository.VehicleFilter{})
		return err
	})
	g.Go(func() (err error) {
		drafts, err = store.Trips().List(gctx, repository.TripFilter{State: domain.TripStateDraft})
		return err
	})
	g.Go(func() (err error) {
		dispatched, err = store.Trips().List(gctx, repository.TripFilter{State: domain.TripStateDispatched})
		return err
	})
	g.Go(func() (err error) {
		drivers, err = store.Drivers().List(gctx, repository.DriverFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &domain.FleetSummary{
		PendingCargo:    len(drafts),
		DispatchedTrips: len(dispatched),
	}
	for _, v := range vehicles {
		switch v.State {
		case domain.VehicleStateRetired:
			continue
		case domain.VehicleStateOnTrip:
			summary.ActiveFleet++
		case domain.VehicleStateInShop:
			summary.InShop++
		}
		summary.TotalVehicles++
	}
	summary.UtilizationRate = domain.ComputeUtilization(summary.ActiveFleet, summary.TotalVehicles)

	today := s.deps.today()
	for _, d := range drivers {
		if d.Status == domain.DriverStatusOnDuty {
			summary.DriversOnDuty++
		}
		switch d.LicenseStatus(today) {
		case domain.LicenseStatusExpiring:
			summary.ExpiringLicenses++
		case domain.LicenseStatusExpired:
			summary.ExpiredLicenses++
		}
	}
	return summary, nil
}
