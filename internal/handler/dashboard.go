package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetflow/internal/service"
)

// DashboardHandler serves fleet-wide KPIs.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// DashboardResponse is the HTTP response for the fleet summary.
type DashboardResponse struct {
	ActiveFleet      int `json:"active_fleet"`
	InShop           int `json:"in_shop"`
	TotalVehicles    int `json:"total_vehicles"`
	UtilizationRate  int `json:"utilization_rate"`
	PendingCargo     int `json:"pending_cargo"`
	DispatchedTrips  int `json:"dispatched_trips"`
	DriversOnDuty    int `json:"drivers_on_duty"`
	ExpiringLicenses int `json:"expiring_licenses"`
	ExpiredLicenses  int `json:"expired_licenses"`
}

// Summary handles GET /v1/dashboard
func (h *DashboardHandler) Summary(c *gin.Context) {
	s, err := h.dashboardService.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, DashboardResponse{
		ActiveFleet:      s.ActiveFleet,
		InShop:           s.InShop,
		TotalVehicles:    s.TotalVehicles,
		UtilizationRate:  s.UtilizationRate,
		PendingCargo:     s.PendingCargo,
		DispatchedTrips:  s.DispatchedTrips,
		DriversOnDuty:    s.DriversOnDuty,
		ExpiringLicenses: s.ExpiringLicenses,
		ExpiredLicenses:  s.ExpiredLicenses,
	})
}
