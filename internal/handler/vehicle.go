package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
	"fleetflow/internal/service"
)

// VehicleHandler handles HTTP requests for vehicles.
type VehicleHandler struct {
	vehicleService     *service.VehicleService
	tripService        *service.TripService
	maintenanceService *service.MaintenanceService
	expenseService     *service.ExpenseService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(
	vehicleService *service.VehicleService,
	tripService *service.TripService,
	maintenanceService *service.MaintenanceService,
	expenseService *service.ExpenseService,
) *VehicleHandler {
	return &VehicleHandler{
		vehicleService:     vehicleService,
		tripService:        tripService,
		maintenanceService: maintenanceService,
		expenseService:     expenseService,
	}
}

// CreateVehicleRequest is the HTTP request body for registering a vehicle.
type CreateVehicleRequest struct {
	Name            string  `json:"name"`
	LicensePlate    string  `json:"license_plate"`
	VehicleType     string  `json:"vehicle_type"`
	MaxLoadCapacity float64 `json:"max_load_capacity"`
	Odometer        float64 `json:"odometer"`
	AcquisitionCost float64 `json:"acquisition_cost"`
	Region          string  `json:"region"`
}

// UpdateVehicleRequest is the HTTP request body for editing a vehicle.
type UpdateVehicleRequest struct {
	Name            *string  `json:"name"`
	LicensePlate    *string  `json:"license_plate"`
	VehicleType     *string  `json:"vehicle_type"`
	MaxLoadCapacity *float64 `json:"max_load_capacity"`
	Odometer        *float64 `json:"odometer"`
	AcquisitionCost *float64 `json:"acquisition_cost"`
	Region          *string  `json:"region"`
}

// MetricsResponse holds the derived ledger figures of a vehicle.
type MetricsResponse struct {
	TotalFuelCost        float64 `json:"total_fuel_cost"`
	TotalMaintenanceCost float64 `json:"total_maintenance_cost"`
	TotalOperationalCost float64 `json:"total_operational_cost"`
	TotalRevenue         float64 `json:"total_revenue"`
	ROI                  float64 `json:"roi"`
	TotalKmDriven        float64 `json:"total_km_driven"`
	CostPerKm            float64 `json:"cost_per_km"`
	FuelEfficiency       float64 `json:"fuel_efficiency"`
	TripCount            int     `json:"trip_count"`
	MaintenanceCount     int     `json:"maintenance_count"`
}

// VehicleResponse is the HTTP response for vehicle operations.
type VehicleResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	LicensePlate    string          `json:"license_plate"`
	VehicleType     string          `json:"vehicle_type"`
	MaxLoadCapacity float64         `json:"max_load_capacity"`
	Odometer        float64         `json:"odometer"`
	AcquisitionCost float64         `json:"acquisition_cost"`
	Region          string          `json:"region"`
	State           string          `json:"state"`
	Metrics         MetricsResponse `json:"metrics"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

func toVehicleResponse(v *domain.Vehicle) VehicleResponse {
	m := v.Metrics
	return VehicleResponse{
		ID:              v.ID,
		Name:            v.Name,
		LicensePlate:    v.LicensePlate,
		VehicleType:     string(v.Type),
		MaxLoadCapacity: v.MaxLoadCapacity,
		Odometer:        v.Odometer,
		AcquisitionCost: v.AcquisitionCost,
		Region:          v.Region,
		State:           string(v.State),
		Metrics: MetricsResponse{
			TotalFuelCost:        m.TotalFuelCost,
			TotalMaintenanceCost: m.TotalMaintenanceCost,
			TotalOperationalCost: m.TotalOperationalCost,
			TotalRevenue:         m.TotalRevenue,
			ROI:                  m.ROI,
			TotalKmDriven:        m.TotalKmDriven,
			CostPerKm:            m.CostPerKm,
			FuelEfficiency:       m.FuelEfficiency,
			TripCount:            m.TripCount,
			MaintenanceCount:     m.MaintenanceCount,
		},
		CreatedAt: v.CreatedAt.Format(timestampLayout),
		UpdatedAt: v.UpdatedAt.Format(timestampLayout),
	}
}

// Create handles POST /v1/vehicles
func (h *VehicleHandler) Create(c *gin.Context) {
	var req CreateVehicleRequest
	if !bindJSON(c, &req) {
		return
	}

	v, err := h.vehicleService.Create(c.Request.Context(), service.CreateVehicleRequest{
		Name:            req.Name,
		LicensePlate:    req.LicensePlate,
		Type:            domain.VehicleType(req.VehicleType),
		MaxLoadCapacity: req.MaxLoadCapacity,
		Odometer:        req.Odometer,
		AcquisitionCost: req.AcquisitionCost,
		Region:          req.Region,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toVehicleResponse(v))
}

// GetAll handles GET /v1/vehicles
func (h *VehicleHandler) GetAll(c *gin.Context) {
	vehicles, err := h.vehicleService.List(c.Request.Context(), repository.VehicleFilter{
		State: domain.VehicleState(c.Query("state")),
		Type:  domain.VehicleType(c.Query("type")),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		response = append(response, toVehicleResponse(v))
	}
	respondJSON(c, http.StatusOK, response)
}

// Get handles GET /v1/vehicles/:id
func (h *VehicleHandler) Get(c *gin.Context) {
	v, err := h.vehicleService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toVehicleResponse(v))
}

// Update handles PATCH /v1/vehicles/:id
func (h *VehicleHandler) Update(c *gin.Context) {
	var req UpdateVehicleRequest
	if !bindJSON(c, &req) {
		return
	}

	update := service.UpdateVehicleRequest{
		Name:            req.Name,
		LicensePlate:    req.LicensePlate,
		MaxLoadCapacity: req.MaxLoadCapacity,
		Odometer:        req.Odometer,
		AcquisitionCost: req.AcquisitionCost,
		Region:          req.Region,
	}
	if req.VehicleType != nil {
		vt := domain.VehicleType(*req.VehicleType)
		update.Type = &vt
	}

	v, err := h.vehicleService.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toVehicleResponse(v))
}

// Delete handles DELETE /v1/vehicles/:id
func (h *VehicleHandler) Delete(c *gin.Context) {
	if err := h.vehicleService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetAvailable handles POST /v1/vehicles/:id/available
func (h *VehicleHandler) SetAvailable(c *gin.Context) {
	v, err := h.vehicleService.SetAvailable(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toVehicleResponse(v))
}

// Retire handles POST /v1/vehicles/:id/retire
func (h *VehicleHandler) Retire(c *gin.Context) {
	v, err := h.vehicleService.Retire(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toVehicleResponse(v))
}

// Trips handles GET /v1/vehicles/:id/trips
func (h *VehicleHandler) Trips(c *gin.Context) {
	trips, err := h.tripService.List(c.Request.Context(), repository.TripFilter{
		VehicleID: c.Param("id"),
		State:     domain.TripState(c.Query("state")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTripResponses(trips))
}

// Maintenance handles GET /v1/vehicles/:id/maintenance
func (h *VehicleHandler) Maintenance(c *gin.Context) {
	records, err := h.maintenanceService.List(c.Request.Context(), repository.MaintenanceFilter{
		VehicleID: c.Param("id"),
		State:     domain.MaintenanceState(c.Query("state")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toMaintenanceResponses(records))
}

// Expenses handles GET /v1/vehicles/:id/expenses
func (h *VehicleHandler) Expenses(c *gin.Context) {
	expenses, err := h.expenseService.List(c.Request.Context(), repository.ExpenseFilter{
		VehicleID: c.Param("id"),
		Type:      domain.ExpenseType(c.Query("type")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toExpenseResponses(expenses))
}
