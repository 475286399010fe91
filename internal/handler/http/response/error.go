package response

import (
	"errors"
	"net/http"

	"github.com/hcmclinic/triage-shift-backend-go/internal/domain/shift"
	"github.com/hcmclinic/triage-shift-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses. Every lifecycle
// rejection carries a stable code; only storage failures are transient
// and retriable by the caller.
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Shift domain errors
	switch {
	case errors.Is(err, shift.ErrNoAssignment):
		Failure(w, http.StatusNotFound, "NO_ASSIGNMENT", "Caregiver has no shift assignment")
	case errors.Is(err, shift.ErrNoActiveSession):
		Failure(w, http.StatusConflict, "NO_ACTIVE_SESSION", "No active shift session")
	case errors.Is(err, shift.ErrOnBreak):
		Failure(w, http.StatusConflict, "ON_BREAK", "Shift session is on break; resume first")
	case errors.Is(err, shift.ErrNotOnBreak):
		Failure(w, http.StatusConflict, "NOT_ON_BREAK", "Shift session is not on break")
	case errors.Is(err, shift.ErrAssignmentNotFound):
		NotFound(w, "Shift assignment not found")
	case errors.Is(err, shift.ErrSessionNotFound):
		NotFound(w, "Shift session not found")
	case errors.Is(err, shift.ErrStorageUnavailable):
		Failure(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Storage temporarily unavailable, retry later")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
