package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/settlement"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/worktime"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrAdminPrivilegeRequired),
		errors.Is(err, auth.ErrEmployeeScopeRequired):
		Forbidden(w, err.Error())

	// Employee
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrAmbiguousName):
		Conflict(w, err.Error())

	// Attendance
	case errors.Is(err, attendance.ErrDailyAttendanceNotFound):
		NotFound(w, "Daily attendance not found")
	case errors.Is(err, attendance.ErrDuplicateWebSubmission):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrEmptyBatch):
		BadRequest(w, err.Error(), nil)

	// Work time
	case errors.Is(err, worktime.ErrConfigurationMissing):
		UnprocessableEntity(w, "CONFIGURATION_MISSING", err.Error())
	case errors.Is(err, worktime.ErrSummaryNotFound):
		NotFound(w, "Daily work summary not found")
	case errors.Is(err, worktime.ErrNoAttendance):
		NotFound(w, err.Error())
	case errors.Is(err, worktime.ErrEarnedLeaveOverdrawn):
		Conflict(w, err.Error())
	case errors.Is(err, worktime.ErrInvalidMonth),
		errors.Is(err, worktime.ErrInvalidRuleConfig):
		BadRequest(w, err.Error(), nil)

	// Settlement
	case errors.Is(err, settlement.ErrPeriodNotFound):
		NotFound(w, "Flexible work period not found")
	case errors.Is(err, settlement.ErrSettlementNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, settlement.ErrSettlementConflict):
		Conflict(w, err.Error())
	case errors.Is(err, settlement.ErrSettlementInProgress),
		errors.Is(err, settlement.ErrPeriodOverlap),
		errors.Is(err, settlement.ErrInvalidPeriodTransition),
		errors.Is(err, settlement.ErrNightPayAlreadyExists):
		Conflict(w, err.Error())
	case errors.Is(err, settlement.ErrInvalidPeriodSpan):
		UnprocessableEntity(w, "INVALID_PERIOD_SPAN", err.Error())

	// Leave
	case errors.Is(err, leave.ErrGrantNotAllowed):
		BadRequest(w, err.Error(), nil)

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
