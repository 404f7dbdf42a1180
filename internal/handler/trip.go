package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
	"fleetflow/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// CreateTripRequest is the HTTP request body for planning a trip.
type CreateTripRequest struct {
	Reference        string   `json:"reference"`
	VehicleID        string   `json:"vehicle_id"`
	DriverID         string   `json:"driver_id"`
	Origin           string   `json:"origin"`
	Destination      string   `json:"destination"`
	PlannedDate      *string  `json:"planned_date"`
	CargoDescription string   `json:"cargo_description"`
	CargoWeight      float64  `json:"cargo_weight"`
	DistanceKm       float64  `json:"distance_km"`
	OdometerStart    *float64 `json:"odometer_start"`
	OdometerEnd      *float64 `json:"odometer_end"`
	Revenue          float64  `json:"revenue"`
}

// UpdateTripRequest is the HTTP request body for editing a trip.
type UpdateTripRequest struct {
	VehicleID        *string  `json:"vehicle_id"`
	DriverID         *string  `json:"driver_id"`
	Origin           *string  `json:"origin"`
	Destination      *string  `json:"destination"`
	PlannedDate      *string  `json:"planned_date"`
	CargoDescription *string  `json:"cargo_description"`
	CargoWeight      *float64 `json:"cargo_weight"`
	DistanceKm       *float64 `json:"distance_km"`
	OdometerStart    *float64 `json:"odometer_start"`
	OdometerEnd      *float64 `json:"odometer_end"`
	Revenue          *float64 `json:"revenue"`
}

// CompleteTripRequest is the optional HTTP request body for completing a trip.
type CompleteTripRequest struct {
	OdometerEnd *float64 `json:"odometer_end"`
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	ID               string   `json:"id"`
	Reference        string   `json:"reference"`
	VehicleID        string   `json:"vehicle_id"`
	DriverID         string   `json:"driver_id"`
	Origin           string   `json:"origin"`
	Destination      string   `json:"destination"`
	PlannedDate      string   `json:"planned_date"`
	CompletedDate    *string  `json:"completed_date,omitempty"`
	CargoDescription string   `json:"cargo_description,omitempty"`
	CargoWeight      float64  `json:"cargo_weight"`
	DistanceKm       float64  `json:"distance_km"`
	OdometerStart    *float64 `json:"odometer_start,omitempty"`
	OdometerEnd      *float64 `json:"odometer_end,omitempty"`
	Revenue          float64  `json:"revenue"`
	State            string   `json:"state"`
	CapacityWarning  bool     `json:"capacity_warning"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

func toTripResponse(t *domain.Trip) TripResponse {
	return TripResponse{
		ID:               t.ID,
		Reference:        t.Reference,
		VehicleID:        t.VehicleID,
		DriverID:         t.DriverID,
		Origin:           t.Origin,
		Destination:      t.Destination,
		PlannedDate:      formatDate(t.PlannedDate),
		CompletedDate:    formatDatePtr(t.CompletedDate),
		CargoDescription: t.CargoDescription,
		CargoWeight:      t.CargoWeight,
		DistanceKm:       t.DistanceKm,
		OdometerStart:    t.OdometerStart,
		OdometerEnd:      t.OdometerEnd,
		Revenue:          t.Revenue,
		State:            string(t.State),
		CapacityWarning:  t.CapacityWarning,
		CreatedAt:        t.CreatedAt.Format(timestampLayout),
		UpdatedAt:        t.UpdatedAt.Format(timestampLayout),
	}
}

func toTripResponses(trips []*domain.Trip) []TripResponse {
	response := make([]TripResponse, 0, len(trips))
	for _, t := range trips {
		response = append(response, toTripResponse(t))
	}
	return response
}

// Create handles POST /v1/trips
func (h *TripHandler) Create(c *gin.Context) {
	var req CreateTripRequest
	if !bindJSON(c, &req) {
		return
	}
	planned, err := parseDate("planned_date", req.PlannedDate)
	if err != nil {
		respondError(c, err)
		return
	}

	trip, err := h.tripService.Create(c.Request.Context(), service.CreateTripRequest{
		Reference:        req.Reference,
		VehicleID:        req.VehicleID,
		DriverID:         req.DriverID,
		Origin:           req.Origin,
		Destination:      req.Destination,
		PlannedDate:      planned,
		CargoDescription: req.CargoDescription,
		CargoWeight:      req.CargoWeight,
		DistanceKm:       req.DistanceKm,
		OdometerStart:    req.OdometerStart,
		OdometerEnd:      req.OdometerEnd,
		Revenue:          req.Revenue,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toTripResponse(trip))
}

// GetAll handles GET /v1/trips
func (h *TripHandler) GetAll(c *gin.Context) {
	trips, err := h.tripService.List(c.Request.Context(), repository.TripFilter{
		VehicleID: c.Query("vehicle_id"),
		DriverID:  c.Query("driver_id"),
		State:     domain.TripState(c.Query("state")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTripResponses(trips))
}

// Get handles GET /v1/trips/:id
func (h *TripHandler) Get(c *gin.Context) {
	h.respond(c, http.StatusOK)(h.tripService.Get(c.Request.Context(), c.Param("id")))
}

// Update handles PATCH /v1/trips/:id
func (h *TripHandler) Update(c *gin.Context) {
	var req UpdateTripRequest
	if !bindJSON(c, &req) {
		return
	}
	planned, err := parseDate("planned_date", req.PlannedDate)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respond(c, http.StatusOK)(h.tripService.Update(c.Request.Context(), c.Param("id"), service.UpdateTripRequest{
		VehicleID:        req.VehicleID,
		DriverID:         req.DriverID,
		Origin:           req.Origin,
		Destination:      req.Destination,
		PlannedDate:      planned,
		CargoDescription: req.CargoDescription,
		CargoWeight:      req.CargoWeight,
		DistanceKm:       req.DistanceKm,
		OdometerStart:    req.OdometerStart,
		OdometerEnd:      req.OdometerEnd,
		Revenue:          req.Revenue,
	}))
}

// Delete handles DELETE /v1/trips/:id
func (h *TripHandler) Delete(c *gin.Context) {
	if err := h.tripService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Dispatch handles POST /v1/trips/:id/dispatch
func (h *TripHandler) Dispatch(c *gin.Context) {
	h.respond(c, http.StatusOK)(h.tripService.Dispatch(c.Request.Context(), c.Param("id")))
}

// Complete handles POST /v1/trips/:id/complete
func (h *TripHandler) Complete(c *gin.Context) {
	var req CompleteTripRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, badRequest("invalid request body: "+err.Error()))
		return
	}

	h.respond(c, http.StatusOK)(h.tripService.Complete(c.Request.Context(), c.Param("id"), service.CompleteTripRequest{
		OdometerEnd: req.OdometerEnd,
	}))
}

// Cancel handles POST /v1/trips/:id/cancel
func (h *TripHandler) Cancel(c *gin.Context) {
	h.respond(c, http.StatusOK)(h.tripService.Cancel(c.Request.Context(), c.Param("id")))
}

// Reset handles POST /v1/trips/:id/reset
func (h *TripHandler) Reset(c *gin.Context) {
	h.respond(c, http.StatusOK)(h.tripService.Reset(c.Request.Context(), c.Param("id")))
}

func (h *TripHandler) respond(c *gin.Context, status int) func(*domain.Trip, error) {
	return func(trip *domain.Trip, err error) {
		if err != nil {
			respondError(c, err)
			return
		}
		respondJSON(c, status, toTripResponse(trip))
	}
}
