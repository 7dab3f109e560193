package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// ========================================
// IMPORT DTOs
// ========================================

type ImportResult struct {
	BatchID     string `json:"batch_id"`
	Fingerprint string `json:"fingerprint"`
	// Reimported is true when an identical payload was imported before.
	Reimported     bool        `json:"reimported"`
	ArchivePath    string      `json:"archive_path,omitempty"`
	TotalLines     int         `json:"total_lines"`
	ParsedCount    int         `json:"parsed_count"`
	NewEvents      int         `json:"new_events"`
	ReconciledDays int         `json:"reconciled_days"`
	FailedDays     int         `json:"failed_days"`
	Errors         []LineError `json:"errors"`
	DayErrors      []DayError  `json:"day_errors"`
}

// ========================================
// MANUAL SUBMISSION DTOs
// ========================================

type ManualEventRequest struct {
	EmployeeID string `json:"employee_id"`
	// Timestamp is RFC3339.
	Timestamp string `json:"timestamp"`
	Mode      Mode   `json:"mode"`

	ParsedTimestamp time.Time `json:"-"`
}

func (r *ManualEventRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if ts, ok := validator.IsValidDateTime(r.Timestamp); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "timestamp",
			Message: "timestamp must be RFC3339",
		})
	} else {
		r.ParsedTimestamp = ts
	}

	if !r.Mode.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "mode",
			Message: "mode must be one of: check_in, check_out, unlock, lock, passage",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// RESPONSE DTOs
// ========================================

type EventResponse struct {
	ID         string       `json:"id"`
	Timestamp  time.Time    `json:"timestamp"`
	Mode       Mode         `json:"mode"`
	Kind       EventKind    `json:"kind"`
	Source     SourceSystem `json:"source"`
	TerminalID *string      `json:"terminal_id,omitempty"`
}

type DailyAttendanceResponse struct {
	EmployeeID   string          `json:"employee_id"`
	WorkDate     string          `json:"work_date"`
	CheckIn      *time.Time      `json:"check_in"`
	CheckOut     *time.Time      `json:"check_out"`
	HadDinner    bool            `json:"had_dinner"`
	ReviewReason *string         `json:"review_reason,omitempty"`
	Events       []EventResponse `json:"events"`
}

func NewDailyAttendanceResponse(day DailyAttendance) DailyAttendanceResponse {
	events := make([]EventResponse, 0, len(day.Events))
	for _, ev := range day.Events {
		events = append(events, EventResponse{
			ID:         ev.ID,
			Timestamp:  ev.Timestamp,
			Mode:       ev.Mode,
			Kind:       ev.Kind,
			Source:     ev.Source,
			TerminalID: ev.TerminalID,
		})
	}
	return DailyAttendanceResponse{
		EmployeeID:   day.EmployeeID,
		WorkDate:     day.WorkDate.Format("2006-01-02"),
		CheckIn:      day.CheckIn,
		CheckOut:     day.CheckOut,
		HadDinner:    day.HadDinner,
		ReviewReason: day.ReviewReason,
		Events:       events,
	}
}
