package attendance

import (
	"context"
	"time"
)

// AttendanceService ingests clock records and serves reconciled days.
type AttendanceService interface {
	// ImportBatch parses, reconciles and recomputes every day touched by lines.
	// Per-line and per-day failures are reported in the result, not returned.
	ImportBatch(ctx context.Context, lines []string) (ImportResult, error)

	// SubmitManualEvent records a web clock event behind the double-submission guard.
	SubmitManualEvent(ctx context.Context, req ManualEventRequest) (DailyAttendanceResponse, error)

	// GetDaily returns the reconciled day with its audit events.
	GetDaily(ctx context.Context, employeeID string, workDate time.Time) (DailyAttendanceResponse, error)
}
