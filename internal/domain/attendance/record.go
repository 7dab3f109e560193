package attendance

import "time"

// RawRecord is one parsed export line. The two variants are decided by the
// line's shape: TerminalOriginRecord (long form) and WebOriginRecord (short form).
type RawRecord interface {
	Fields() RecordFields
	isRawRecord()
}

// RecordFields are shared by both record shapes.
type RecordFields struct {
	Line             int
	Raw              string
	OccurredDate     time.Time
	OccurredTimeText string
	Timestamp        time.Time
	WorkDate         time.Time
	DisplayName      string
	EmployeeNumber   string
	JobTitle         string
	Category         string
	Mode             Mode
	Source           SourceSystem
}

type TerminalOriginRecord struct {
	RecordFields
	TerminalID      string
	ExternalUserRef string
	ResultFlag      string
}

func (r TerminalOriginRecord) Fields() RecordFields { return r.RecordFields }
func (TerminalOriginRecord) isRawRecord()           {}

type WebOriginRecord struct {
	RecordFields
}

func (r WebOriginRecord) Fields() RecordFields { return r.RecordFields }
func (WebOriginRecord) isRawRecord()           {}

// ToEvent converts a parsed record into an event for the resolved employee.
func ToEvent(rec RawRecord, employeeID string) Event {
	f := rec.Fields()
	raw := f.Raw
	ev := Event{
		EmployeeID: employeeID,
		WorkDate:   f.WorkDate,
		Timestamp:  f.Timestamp,
		Mode:       f.Mode,
		Kind:       f.Mode.Kind(),
		Source:     f.Source,
		RawLine:    &raw,
	}
	if t, ok := rec.(TerminalOriginRecord); ok && t.TerminalID != "" {
		terminalID := t.TerminalID
		ev.TerminalID = &terminalID
	}
	return ev
}
