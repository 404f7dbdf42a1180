package domain

// VehicleMetrics are the derived ledger figures stored with a vehicle.
type VehicleMetrics struct {
	TotalFuelCost        float64
	TotalMaintenanceCost float64
	TotalOperationalCost float64 // fuel + maintenance
	TotalRevenue         float64 // completed trips only
	ROI                  float64 // percent of acquisition cost
	TotalKmDriven        float64 // completed trips only
	CostPerKm            float64
	FuelEfficiency       float64 // km per liter
	TripCount            int
	MaintenanceCount     int
}

// Ledger is every record owned by one vehicle.
type Ledger struct {
	Trips       []Trip
	Maintenance []Maintenance
	Expenses    []Expense
}

// ComputeMetrics derives all vehicle metrics from its ledger. Divisions by
// zero yield 0.
func ComputeMetrics(v *Vehicle, l Ledger) VehicleMetrics {
	var m VehicleMetrics
	RecomputeCosts(&m, l)
	RecomputeKm(&m, l)
	RecomputeROI(&m, v.AcquisitionCost)
	RecomputeCostPerKm(&m)
	RecomputeFuelEfficiency(&m, l)
	m.TripCount = len(l.Trips)
	m.MaintenanceCount = len(l.Maintenance)
	return m
}

// RecomputeCosts sums fuel, maintenance and completed-trip revenue.
func RecomputeCosts(m *VehicleMetrics, l Ledger) {
	var fuel, maintenance, revenue float64
	for _, e := range l.Expenses {
		if e.Type == ExpenseTypeFuel {
			fuel += e.Cost
		}
	}
	for _, s := range l.Maintenance {
		maintenance += s.Cost
	}
	for _, t := range l.Trips {
		if t.State == TripStateCompleted {
			revenue += t.Revenue
		}
	}
	m.TotalFuelCost = fuel
	m.TotalMaintenanceCost = maintenance
	m.TotalOperationalCost = fuel + maintenance
	m.TotalRevenue = revenue
}

// RecomputeROI derives return on investment. Requires RecomputeCosts first.
func RecomputeROI(m *VehicleMetrics, acquisitionCost float64) {
	if acquisitionCost == 0 {
		m.ROI = 0
		return
	}
	m.ROI = (m.TotalRevenue - m.TotalOperationalCost) / acquisitionCost * 100
}

// RecomputeKm sums the distance of completed trips.
func RecomputeKm(m *VehicleMetrics, l Ledger) {
	var km float64
	for _, t := range l.Trips {
		if t.State == TripStateCompleted {
			km += t.DistanceKm
		}
	}
	m.TotalKmDriven = km
}

// RecomputeCostPerKm requires RecomputeCosts and RecomputeKm first.
func RecomputeCostPerKm(m *VehicleMetrics) {
	if m.TotalKmDriven == 0 {
		m.CostPerKm = 0
		return
	}
	m.CostPerKm = m.TotalOperationalCost / m.TotalKmDriven
}

// RecomputeFuelEfficiency divides driven km by fuel liters logged.
// Requires RecomputeKm first.
func RecomputeFuelEfficiency(m *VehicleMetrics, l Ledger) {
	var liters float64
	for _, e := range l.Expenses {
		if e.Type == ExpenseTypeFuel {
			liters += e.Liters
		}
	}
	if liters == 0 {
		m.FuelEfficiency = 0
		return
	}
	m.FuelEfficiency = m.TotalKmDriven / liters
}

// FleetSummary is the fleet-wide dashboard.
type FleetSummary struct {
	ActiveFleet      int // vehicles on trip
	InShop           int
	TotalVehicles    int // excluding retired
	UtilizationRate  int // percent of non-retired vehicles on trip
	PendingCargo     int // draft trips
	DispatchedTrips  int
	DriversOnDuty    int
	ExpiringLicenses int
	ExpiredLicenses  int
}

// ComputeUtilization returns the rounded share of active vehicles.
func ComputeUtilization(active, total int) int {
	if total <= 0 {
		return 0
	}
	return int(float64(active)/float64(total)*100 + 0.5)
}
