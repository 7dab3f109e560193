package settlement

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/worktime"
)

type PeriodRepository interface {
	Create(ctx context.Context, period FlexWorkPeriod) (FlexWorkPeriod, error)
	GetByID(ctx context.Context, id string) (FlexWorkPeriod, error)
	// GetForUpdate locks the period row for the surrounding transaction.
	GetForUpdate(ctx context.Context, id string) (FlexWorkPeriod, error)
	List(ctx context.Context) ([]FlexWorkPeriod, error)
	// ListOverlapping returns non-cancelled periods overlapping [from, to].
	ListOverlapping(ctx context.Context, from, to time.Time) ([]FlexWorkPeriod, error)
	UpdateStatus(ctx context.Context, id string, status PeriodStatus) error
	MarkSettled(ctx context.Context, id string, settledAt time.Time) error
	// CoversDate reports whether an active or completed period covers date.
	CoversDate(ctx context.Context, date time.Time) (bool, error)
}

type SettlementRepository interface {
	// CreateBatch inserts rows; an existing (period_id, employee_id) row is an error.
	CreateBatch(ctx context.Context, rows []QuarterlySettlement) error
	ListByPeriod(ctx context.Context, periodID string) ([]QuarterlySettlement, error)
}

type NightPayRepository interface {
	// Create returns ErrNightPayAlreadyExists for an existing employee/month.
	Create(ctx context.Context, payment NightAllowancePayment) (NightAllowancePayment, error)
	SumByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) (NightAllowanceTotal, error)
	ListByMonth(ctx context.Context, year int, month time.Month) ([]NightAllowancePayment, error)
}

// SummaryRecomputer rebuilds a stored daily summary from its attendance row.
type SummaryRecomputer interface {
	RecomputeDay(ctx context.Context, employeeID string, workDate time.Time, hadDinner *bool) (worktime.DailyWorkSummary, error)
}
