package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
	"fleetflow/internal/service"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	driverService *service.DriverService
	tripService   *service.TripService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService, tripService *service.TripService) *DriverHandler {
	return &DriverHandler{driverService: driverService, tripService: tripService}
}

// CreateDriverRequest is the HTTP request body for adding a driver.
type CreateDriverRequest struct {
	Name              string   `json:"name"`
	Phone             string   `json:"phone"`
	Email             string   `json:"email"`
	LicenseNumber     string   `json:"license_number"`
	LicenseExpiryDate *string  `json:"license_expiry_date"`
	LicenseCategories []string `json:"license_categories"`
	SafetyScore       *float64 `json:"safety_score"`
	Notes             string   `json:"notes"`
}

// UpdateDriverRequest is the HTTP request body for editing a driver.
type UpdateDriverRequest struct {
	Name              *string   `json:"name"`
	Phone             *string   `json:"phone"`
	Email             *string   `json:"email"`
	LicenseNumber     *string   `json:"license_number"`
	LicenseExpiryDate *string   `json:"license_expiry_date"`
	LicenseCategories *[]string `json:"license_categories"`
	SafetyScore       *float64  `json:"safety_score"`
	Notes             *string   `json:"notes"`
}

// TripStatsResponse summarizes a driver's trips.
type TripStatsResponse struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
}

// DriverResponse is the HTTP response for driver operations.
type DriverResponse struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Phone             string            `json:"phone,omitempty"`
	Email             string            `json:"email,omitempty"`
	LicenseNumber     string            `json:"license_number"`
	LicenseExpiryDate *string           `json:"license_expiry_date"`
	LicenseCategories []string          `json:"license_categories"`
	LicenseStatus     string            `json:"license_status"`
	Status            string            `json:"status"`
	SafetyScore       float64           `json:"safety_score"`
	Notes             string            `json:"notes,omitempty"`
	TripStats         TripStatsResponse `json:"trip_stats"`
}

// LicenseCategoryResponse describes one license category.
type LicenseCategoryResponse struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	VehicleType string `json:"vehicle_type"`
}

func toDriverResponse(v *service.DriverView) DriverResponse {
	categories := v.LicenseCategories
	if categories == nil {
		categories = []string{}
	}
	return DriverResponse{
		ID:                v.ID,
		Name:              v.Name,
		Phone:             v.Phone,
		Email:             v.Email,
		LicenseNumber:     v.LicenseNumber,
		LicenseExpiryDate: formatDatePtr(v.LicenseExpiry),
		LicenseCategories: categories,
		LicenseStatus:     string(v.LicenseStatus),
		Status:            string(v.Status),
		SafetyScore:       v.SafetyScore,
		Notes:             v.Notes,
		TripStats: TripStatsResponse{
			Total:          v.TripStats.Total,
			Completed:      v.TripStats.Completed,
			CompletionRate: v.TripStats.CompletionRate,
		},
	}
}

// Create handles POST /v1/drivers
func (h *DriverHandler) Create(c *gin.Context) {
	var req CreateDriverRequest
	if !bindJSON(c, &req) {
		return
	}
	expiry, err := parseDate("license_expiry_date", req.LicenseExpiryDate)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.driverService.Create(c.Request.Context(), service.CreateDriverRequest{
		Name:              req.Name,
		Phone:             req.Phone,
		Email:             req.Email,
		LicenseNumber:     req.LicenseNumber,
		LicenseExpiry:     expiry,
		LicenseCategories: req.LicenseCategories,
		SafetyScore:       req.SafetyScore,
		Notes:             req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toDriverResponse(view))
}

// GetAll handles GET /v1/drivers
func (h *DriverHandler) GetAll(c *gin.Context) {
	views, err := h.driverService.List(c.Request.Context(), service.DriverListFilter{
		Status:        domain.DriverStatus(c.Query("status")),
		LicenseStatus: domain.LicenseStatus(c.Query("license_status")),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverResponse, 0, len(views))
	for _, v := range views {
		response = append(response, toDriverResponse(v))
	}
	respondJSON(c, http.StatusOK, response)
}

// Get handles GET /v1/drivers/:id
func (h *DriverHandler) Get(c *gin.Context) {
	view, err := h.driverService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toDriverResponse(view))
}

// Update handles PATCH /v1/drivers/:id
func (h *DriverHandler) Update(c *gin.Context) {
	var req UpdateDriverRequest
	if !bindJSON(c, &req) {
		return
	}
	expiry, err := parseDate("license_expiry_date", req.LicenseExpiryDate)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.driverService.Update(c.Request.Context(), c.Param("id"), service.UpdateDriverRequest{
		Name:              req.Name,
		Phone:             req.Phone,
		Email:             req.Email,
		LicenseNumber:     req.LicenseNumber,
		LicenseExpiry:     expiry,
		LicenseCategories: req.LicenseCategories,
		SafetyScore:       req.SafetyScore,
		Notes:             req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toDriverResponse(view))
}

// Delete handles DELETE /v1/drivers/:id
func (h *DriverHandler) Delete(c *gin.Context) {
	if err := h.driverService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetOnDuty handles POST /v1/drivers/:id/on-duty
func (h *DriverHandler) SetOnDuty(c *gin.Context) {
	h.respondView(c)(h.driverService.SetOnDuty(c.Request.Context(), c.Param("id")))
}

// SetOffDuty handles POST /v1/drivers/:id/off-duty
func (h *DriverHandler) SetOffDuty(c *gin.Context) {
	h.respondView(c)(h.driverService.SetOffDuty(c.Request.Context(), c.Param("id")))
}

// Suspend handles POST /v1/drivers/:id/suspend
func (h *DriverHandler) Suspend(c *gin.Context) {
	h.respondView(c)(h.driverService.Suspend(c.Request.Context(), c.Param("id")))
}

func (h *DriverHandler) respondView(c *gin.Context) func(*service.DriverView, error) {
	return func(view *service.DriverView, err error) {
		if err != nil {
			respondError(c, err)
			return
		}
		respondJSON(c, http.StatusOK, toDriverResponse(view))
	}
}

// Trips handles GET /v1/drivers/:id/trips
func (h *DriverHandler) Trips(c *gin.Context) {
	trips, err := h.tripService.List(c.Request.Context(), repository.TripFilter{
		DriverID: c.Param("id"),
		State:    domain.TripState(c.Query("state")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTripResponses(trips))
}

// LicenseCategories handles GET /v1/license-categories
func (h *DriverHandler) LicenseCategories(c *gin.Context) {
	categories := h.driverService.LicenseCategories()
	response := make([]LicenseCategoryResponse, 0, len(categories))
	for _, cat := range categories {
		response = append(response, LicenseCategoryResponse{
			Code:        cat.Code,
			Name:        cat.Name,
			VehicleType: string(cat.VehicleType),
		})
	}
	respondJSON(c, http.StatusOK, response)
}
