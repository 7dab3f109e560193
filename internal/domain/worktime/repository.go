package worktime

import (
	"context"
	"time"
)

// SummaryRepository upserts by (employee_id, work_date).
type SummaryRepository interface {
	Upsert(ctx context.Context, summary DailyWorkSummary) (DailyWorkSummary, error)
	Get(ctx context.Context, employeeID string, workDate time.Time) (DailyWorkSummary, error)
	// ListByRange returns summaries with from <= work_date <= to, ordered by employee and date.
	// An empty employeeID lists every employee.
	ListByRange(ctx context.Context, employeeID string, from, to time.Time) ([]DailyWorkSummary, error)
}

type RuleConfigRepository interface {
	// GetEffective returns ErrConfigurationMissing when no row covers date.
	GetEffective(ctx context.Context, date time.Time) (RuleConfig, error)
	Create(ctx context.Context, cfg RuleConfig) (RuleConfig, error)
}

type HolidayRepository interface {
	IsHoliday(ctx context.Context, date time.Time) (bool, error)
	Upsert(ctx context.Context, holiday Holiday) error
	ListByRange(ctx context.Context, from, to time.Time) ([]Holiday, error)
}

// FlexCalendar answers whether a flexible-work period covers a date.
type FlexCalendar interface {
	CoversDate(ctx context.Context, date time.Time) (bool, error)
}

// EarnedLeaveBank reports what remains of an employee's earned leave after
// approved debits. LockEmployee serializes against concurrent debits.
type EarnedLeaveBank interface {
	LockEmployee(ctx context.Context, employeeID string) error
	EarnedAvailable(ctx context.Context, employeeID string) (substitute, compensatory int64, err error)
}
