package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	// Parse errors, wrapped into LineError
	ErrMalformedLine = errors.New("unexpected field count")
	ErrInvalidDate   = errors.New("invalid date token")
	ErrInvalidTime   = errors.New("invalid time token")
	ErrUnknownMode   = errors.New("unrecognized event mode")
	ErrMissingName   = errors.New("display name is empty")

	// Reconciliation
	ErrAmbiguousEvents = errors.New("events cannot be resolved to a single check-in and check-out")

	// Manual submissions
	ErrDuplicateWebSubmission = errors.New("a web submission of this type already exists for the day")

	ErrDailyAttendanceNotFound = errors.New("daily attendance not found")
	ErrEmptyBatch              = errors.New("import batch contains no lines")
)

// LineError reports one import line that was skipped. It never aborts the batch.
type LineError struct {
	Line   int    `json:"line"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
	err    error
}

func NewLineError(line int, raw string, err error) LineError {
	return LineError{Line: line, Raw: raw, Reason: err.Error(), err: err}
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e LineError) Unwrap() error {
	return e.err
}

// DayError reports an employee/day that failed during import.
// StageReconcile means nothing was stored for the day; StageCompute means
// events were stored but the work summary could not be computed.
type DayError struct {
	EmployeeID string `json:"employee_id"`
	WorkDate   string `json:"work_date"`
	Stage      string `json:"stage"`
	Reason     string `json:"reason"`
}

const (
	StageReconcile = "reconcile"
	StageCompute   = "compute"
)
