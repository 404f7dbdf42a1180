package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
	"fleetflow/internal/service"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = time.RFC3339
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// errBadRequest marks malformed request bodies and query parameters.
var errBadRequest = errors.New("bad request")

type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }
func (e *badRequestError) Unwrap() error { return errBadRequest }

func badRequest(msg string) error { return &badRequestError{msg: msg} }

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	status, code := mapError(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code, Details: errorDetails(err)})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapError maps domain, service and repository errors to an HTTP status and
// a stable error code.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"

	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrInvalidID):
		return http.StatusBadRequest, "invalid_id"

	// Business rule violations
	case errors.Is(err, domain.ErrInvalidAttribute):
		return http.StatusUnprocessableEntity, "invalid_attribute"
	case errors.Is(err, domain.ErrCapacityExceeded):
		return http.StatusUnprocessableEntity, "capacity_exceeded"
	case errors.Is(err, domain.ErrLicenseExpired):
		return http.StatusUnprocessableEntity, "license_expired"
	case errors.Is(err, domain.ErrLicenseCategoryMismatch):
		return http.StatusUnprocessableEntity, "license_category_mismatch"

	// Conflicts with the current state
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return http.StatusConflict, "invalid_state_transition"
	case errors.Is(err, domain.ErrResourceUnavailable):
		return http.StatusConflict, "resource_unavailable"
	case errors.Is(err, domain.ErrUniquenessViolation):
		return http.StatusConflict, "uniqueness_violation"
	case errors.Is(err, repository.ErrReferenced):
		return http.StatusConflict, "referenced"
	case errors.Is(err, service.ErrConcurrentUpdate):
		return http.StatusConflict, "concurrent_update"

	case errors.Is(err, service.ErrLockTimeout):
		return http.StatusServiceUnavailable, "lock_timeout"

	default:
		return http.StatusInternalServerError, "internal"
	}
}

// errorDetails exposes the structured fields of typed domain errors.
func errorDetails(err error) map[string]any {
	var (
		capacity   *domain.CapacityExceededError
		expired    *domain.LicenseExpiredError
		mismatch   *domain.LicenseCategoryMismatchError
		transition *domain.InvalidStateTransitionError
		busy       *domain.ResourceUnavailableError
		unique     *domain.UniquenessViolationError
		attr       *domain.InvalidAttributeError
	)

	switch {
	case errors.As(err, &capacity):
		return map[string]any{
			"trip_id":      capacity.TripID,
			"vehicle_id":   capacity.VehicleID,
			"vehicle_name": capacity.VehicleName,
			"capacity":     capacity.Capacity,
			"cargo_weight": capacity.CargoWeight,
		}
	case errors.As(err, &expired):
		details := map[string]any{"driver_id": expired.DriverID, "driver_name": expired.DriverName}
		if expired.ExpiryDate != nil {
			details["expiry_date"] = expired.ExpiryDate.Format(dateLayout)
		}
		return details
	case errors.As(err, &mismatch):
		return map[string]any{
			"driver_id":     mismatch.DriverID,
			"driver_name":   mismatch.DriverName,
			"vehicle_type":  mismatch.VehicleType,
			"allowed_types": mismatch.Allowed,
		}
	case errors.As(err, &transition):
		return map[string]any{
			"entity": transition.Entity,
			"id":     transition.ID,
			"from":   transition.From,
			"action": transition.Action,
		}
	case errors.As(err, &busy):
		return map[string]any{
			"vehicle_id":    busy.VehicleID,
			"vehicle_name":  busy.VehicleName,
			"current_state": busy.CurrentState,
		}
	case errors.As(err, &unique):
		return map[string]any{"entity": unique.Entity, "field": unique.Field, "value": unique.Value}
	case errors.As(err, &attr):
		return map[string]any{"entity": attr.Entity, "field": attr.Field, "reason": attr.Reason}
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// parseDate parses an optional YYYY-MM-DD field.
func parseDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, *value, time.Local)
	if err != nil {
		return nil, badRequest(field + " must be a date in YYYY-MM-DD format")
	}
	return &t, nil
}

// bindJSON decodes the request body, reporting malformed input as a bad request.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, badRequest("invalid request body: "+err.Error()))
		return false
	}
	return true
}
