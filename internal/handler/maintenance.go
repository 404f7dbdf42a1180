package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
	"fleetflow/internal/service"
)

// MaintenanceHandler handles HTTP requests for service records.
type MaintenanceHandler struct {
	maintenanceService *service.MaintenanceService
}

// NewMaintenanceHandler creates a new MaintenanceHandler.
func NewMaintenanceHandler(maintenanceService *service.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceService: maintenanceService}
}

// CreateMaintenanceRequest is the HTTP request body for opening a service record.
type CreateMaintenanceRequest struct {
	VehicleID         string   `json:"vehicle_id"`
	Name              string   `json:"name"`
	MaintenanceType   string   `json:"maintenance_type"`
	ServiceDate       *string  `json:"service_date"`
	Cost              float64  `json:"cost"`
	OdometerAtService *float64 `json:"odometer_at_service"`
	Vendor            string   `json:"vendor"`
	Notes             string   `json:"notes"`
}

// UpdateMaintenanceRequest is the HTTP request body for editing a service record.
type UpdateMaintenanceRequest struct {
	Name              *string  `json:"name"`
	MaintenanceType   *string  `json:"maintenance_type"`
	ServiceDate       *string  `json:"service_date"`
	Cost              *float64 `json:"cost"`
	OdometerAtService *float64 `json:"odometer_at_service"`
	Vendor            *string  `json:"vendor"`
	Notes             *string  `json:"notes"`
}

// MaintenanceResponse is the HTTP response for service record operations.
type MaintenanceResponse struct {
	ID                string  `json:"id"`
	VehicleID         string  `json:"vehicle_id"`
	Name              string  `json:"name"`
	MaintenanceType   string  `json:"maintenance_type"`
	TypeLabel         string  `json:"maintenance_type_label"`
	ServiceDate       string  `json:"service_date"`
	CompletedDate     *string `json:"completed_date,omitempty"`
	Cost              float64 `json:"cost"`
	OdometerAtService float64 `json:"odometer_at_service"`
	Vendor            string  `json:"vendor,omitempty"`
	Notes             string  `json:"notes,omitempty"`
	State             string  `json:"state"`
}

func toMaintenanceResponse(m *domain.Maintenance) MaintenanceResponse {
	return MaintenanceResponse{
		ID:                m.ID,
		VehicleID:         m.VehicleID,
		Name:              m.Name,
		MaintenanceType:   string(m.Type),
		TypeLabel:         m.Type.Label(),
		ServiceDate:       formatDate(m.ServiceDate),
		CompletedDate:     formatDatePtr(m.CompletedDate),
		Cost:              m.Cost,
		OdometerAtService: m.OdometerAtService,
		Vendor:            m.Vendor,
		Notes:             m.Notes,
		State:             string(m.State),
	}
}

func toMaintenanceResponses(records []*domain.Maintenance) []MaintenanceResponse {
	response := make([]MaintenanceResponse, 0, len(records))
	for _, m := range records {
		response = append(response, toMaintenanceResponse(m))
	}
	return response
}

// Create handles POST /v1/maintenance
func (h *MaintenanceHandler) Create(c *gin.Context) {
	var req CreateMaintenanceRequest
	if !bindJSON(c, &req) {
		return
	}
	serviceDate, err := parseDate("service_date", req.ServiceDate)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respond(c, http.StatusCreated)(h.maintenanceService.Create(c.Request.Context(), service.CreateMaintenanceRequest{
		VehicleID:         req.VehicleID,
		Name:              req.Name,
		Type:              domain.MaintenanceType(req.MaintenanceType),
		ServiceDate:       serviceDate,
		Cost:              req.Cost,
		OdometerAtService: req.OdometerAtService,
		Vendor:            req.Vendor,
		Notes:             req.Notes,
	}))
}

// GetAll handles GET /v1/maintenance
func (h *MaintenanceHandler) GetAll(c *gin.Context) {
	records, err := h.maintenanceService.List(c.Request.Context(), repository.MaintenanceFilter{
		VehicleID: c.Query("vehicle_id"),
		State:     domain.MaintenanceState(c.Query("state")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toMaintenanceResponses(records))
}

// Get handles GET /v1/maintenance/:id
func (h *MaintenanceHandler) Get(c *gin.Context) {
	h.respond(c, http.StatusOK)(h.maintenanceService.Get(c.Request.Context(), c.Param("id")))
}

// Update handles PATCH /v1/maintenance/:id
func (h *MaintenanceHandler) Update(c *gin.Context) {
	var req UpdateMaintenanceRequest
	if !bindJSON(c, &req) {
		return
	}
	serviceDate, err := parseDate("service_date", req.ServiceDate)
	if err != nil {
		respondError(c, err)
		return
	}

	update := service.UpdateMaintenanceRequest{
		Name:              req.Name,
		ServiceDate:       serviceDate,
		Cost:              req.Cost,
		OdometerAtService: req.OdometerAtService,
		Vendor:            req.Vendor,
		Notes:             req.Notes,
	}
	if req.MaintenanceType != nil {
		mt := domain.MaintenanceType(*req.MaintenanceType)
		update.Type = &mt
	}

	h.respond(c, http.StatusOK)(h.maintenanceService.Update(c.Request.Context(), c.Param("id"), update))
}

// Delete handles DELETE /v1/maintenance/:id
func (h *MaintenanceHandler) Delete(c *gin.Context) {
	if err := h.maintenanceService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Complete handles POST /v1/maintenance/:id/complete
func (h *MaintenanceHandler) Complete(c *gin.Context) {
	h.respond(c, http.StatusOK)(h.maintenanceService.Complete(c.Request.Context(), c.Param("id")))
}

func (h *MaintenanceHandler) respond(c *gin.Context, status int) func(*domain.Maintenance, error) {
	return func(m *domain.Maintenance, err error) {
		if err != nil {
			respondError(c, err)
			return
		}
		respondJSON(c, status, toMaintenanceResponse(m))
	}
}
