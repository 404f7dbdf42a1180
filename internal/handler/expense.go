package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
	"fleetflow/internal/service"
)

// ExpenseHandler handles HTTP requests for vehicle expenses.
type ExpenseHandler struct {
	expenseService *service.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// CreateExpenseRequest is the HTTP request body for recording an expense.
type CreateExpenseRequest struct {
	VehicleID     string  `json:"vehicle_id"`
	TripID        string  `json:"trip_id"`
	Name          string  `json:"name"`
	ExpenseType   string  `json:"expense_type"`
	Date          *string `json:"date"`
	Liters        float64 `json:"liters"`
	PricePerLiter float64 `json:"price_per_liter"`
	Cost          float64 `json:"cost"`
	Notes         string  `json:"notes"`
}

// UpdateExpenseRequest is the HTTP request body for editing an expense.
type UpdateExpenseRequest struct {
	TripID        *string  `json:"trip_id"`
	Name          *string  `json:"name"`
	ExpenseType   *string  `json:"expense_type"`
	Date          *string  `json:"date"`
	Liters        *float64 `json:"liters"`
	PricePerLiter *float64 `json:"price_per_liter"`
	Cost          *float64 `json:"cost"`
	Notes         *string  `json:"notes"`
}

// ExpenseResponse is the HTTP response for expense operations.
type ExpenseResponse struct {
	ID            string  `json:"id"`
	VehicleID     string  `json:"vehicle_id"`
	TripID        string  `json:"trip_id,omitempty"`
	Name          string  `json:"name"`
	ExpenseType   string  `json:"expense_type"`
	Date          string  `json:"date"`
	Liters        float64 `json:"liters"`
	PricePerLiter float64 `json:"price_per_liter"`
	Cost          float64 `json:"cost"`
	Notes         string  `json:"notes,omitempty"`
}

func toExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:            e.ID,
		VehicleID:     e.VehicleID,
		TripID:        e.TripID,
		Name:          e.Name,
		ExpenseType:   string(e.Type),
		Date:          formatDate(e.Date),
		Liters:        e.Liters,
		PricePerLiter: e.PricePerLiter,
		Cost:          e.Cost,
		Notes:         e.Notes,
	}
}

func toExpenseResponses(expenses []*domain.Expense) []ExpenseResponse {
	response := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		response = append(response, toExpenseResponse(e))
	}
	return response
}

// Create handles POST /v1/expenses
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req CreateExpenseRequest
	if !bindJSON(c, &req) {
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respond(c, http.StatusCreated)(h.expenseService.Create(c.Request.Context(), service.CreateExpenseRequest{
		VehicleID:     req.VehicleID,
		TripID:        req.TripID,
		Name:          req.Name,
		Type:          domain.ExpenseType(req.ExpenseType),
		Date:          date,
		Liters:        req.Liters,
		PricePerLiter: req.PricePerLiter,
		Cost:          req.Cost,
		Notes:         req.Notes,
	}))
}

// GetAll handles GET /v1/expenses
func (h *ExpenseHandler) GetAll(c *gin.Context) {
	expenses, err := h.expenseService.List(c.Request.Context(), repository.ExpenseFilter{
		VehicleID: c.Query("vehicle_id"),
		TripID:    c.Query("trip_id"),
		Type:      domain.ExpenseType(c.Query("type")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toExpenseResponses(expenses))
}

// Get handles GET /v1/expenses/:id
func (h *ExpenseHandler) Get(c *gin.Context) {
	h.respond(c, http.StatusOK)(h.expenseService.Get(c.Request.Context(), c.Param("id")))
}

// Update handles PATCH /v1/expenses/:id
func (h *ExpenseHandler) Update(c *gin.Context) {
	var req UpdateExpenseRequest
	if !bindJSON(c, &req) {
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		respondError(c, err)
		return
	}

	update := service.UpdateExpenseRequest{
		TripID:        req.TripID,
		Name:          req.Name,
		Date:          date,
		Liters:        req.Liters,
		PricePerLiter: req.PricePerLiter,
		Cost:          req.Cost,
		Notes:         req.Notes,
	}
	if req.ExpenseType != nil {
		et := domain.ExpenseType(*req.ExpenseType)
		update.Type = &et
	}

	h.respond(c, http.StatusOK)(h.expenseService.Update(c.Request.Context(), c.Param("id"), update))
}

// Delete handles DELETE /v1/expenses/:id
func (h *ExpenseHandler) Delete(c *gin.Context) {
	if err := h.expenseService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ExpenseHandler) respond(c *gin.Context, status int) func(*domain.Expense, error) {
	return func(e *domain.Expense, err error) {
		if err != nil {
			respondError(c, err)
			return
		}
		respondJSON(c, status, toExpenseResponse(e))
	}
}
