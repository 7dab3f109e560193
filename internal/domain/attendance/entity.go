package attendance

import (
	"time"
)

// Mode is the native label class a terminal or web form records for an event.
type Mode string

const (
	ModeCheckIn  Mode = "check_in"
	ModeCheckOut Mode = "check_out"
	ModeUnlock   Mode = "unlock"
	ModeLock     Mode = "lock"
	ModePassage  Mode = "passage"
)

// Kind folds the five native modes into what the reconciler cares about.
func (m Mode) Kind() EventKind {
	switch m {
	case ModeCheckIn, ModeUnlock:
		return EventKindCheckIn
	case ModeCheckOut, ModeLock:
		return EventKindCheckOut
	default:
		return EventKindPassage
	}
}

func (m Mode) Valid() bool {
	switch m {
	case ModeCheckIn, ModeCheckOut, ModeUnlock, ModeLock, ModePassage:
		return true
	}
	return false
}

type EventKind string

const (
	EventKindCheckIn  EventKind = "check_in"
	EventKindCheckOut EventKind = "check_out"
	EventKindPassage  EventKind = "passage"
)

type SourceSystem string

const (
	SourceTerminal SourceSystem = "terminal"
	SourceWeb      SourceSystem = "web"
)

// Event is one normalized clock event. Events are append-only; a correction
// is a new event, never an update.
type Event struct {
	ID         string
	EmployeeID string
	// WorkDate is the logical day after midnight rollover; Timestamp keeps the literal clock.
	WorkDate   time.Time
	Timestamp  time.Time
	Mode       Mode
	Kind       EventKind
	Source     SourceSystem
	TerminalID *string
	RawLine    *string
	CreatedAt  time.Time
}

// DailyAttendance is the reconciled timeline for one employee and work date.
// When both CheckIn and CheckOut are set, CheckOut is after CheckIn.
type DailyAttendance struct {
	ID         string
	EmployeeID string
	WorkDate   time.Time
	CheckIn    *time.Time
	CheckOut   *time.Time
	HadDinner  bool
	// ReviewReason is set when the day's events could not be resolved cleanly.
	ReviewReason *string
	Events       []Event
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ImportBatch records one terminal export upload.
type ImportBatch struct {
	ID             string
	Fingerprint    string
	TotalLines     int
	ParsedCount    int
	ReconciledDays int
	FailedLines    int
	FailedDays     int
	CreatedAt      time.Time
}

// DateOnly truncates t to midnight of its own calendar day in its own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
