package settlement

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodStatus enum
type PeriodStatus string

const (
	PeriodStatusPlanned   PeriodStatus = "planned"
	PeriodStatusActive    PeriodStatus = "active"
	PeriodStatusCompleted PeriodStatus = "completed"
	PeriodStatusCancelled PeriodStatus = "cancelled"
)

var periodTransitions = map[PeriodStatus][]PeriodStatus{
	PeriodStatusPlanned: {PeriodStatusActive, PeriodStatusCancelled},
	PeriodStatusActive:  {PeriodStatusCompleted},
}

// Flexible reports whether days in a period with this status use the
// flexible overtime threshold.
func (s PeriodStatus) Flexible() bool {
	return s == PeriodStatusActive || s == PeriodStatusCompleted
}

// CanTransition reports whether a period may move from s to next.
func (s PeriodStatus) CanTransition(next PeriodStatus) bool {
	for _, allowed := range periodTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// FlexWorkPeriod spans two or three whole calendar months.
type FlexWorkPeriod struct {
	ID                  string
	Name                string
	StartMonth          time.Time
	EndMonth            time.Time
	Status              PeriodStatus
	SettlementCompleted bool
	SettledAt           *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// StartDate is the first day of StartMonth.
func (p FlexWorkPeriod) StartDate() time.Time {
	return firstOfMonth(p.StartMonth)
}

// EndDate is the last day of EndMonth.
func (p FlexWorkPeriod) EndDate() time.Time {
	return firstOfMonth(p.EndMonth).AddDate(0, 1, -1)
}

// Days counts calendar days, both ends inclusive.
func (p FlexWorkPeriod) Days() int {
	return int(p.EndDate().Sub(p.StartDate()).Hours()/24) + 1
}

// Covers reports whether date falls inside the period.
func (p FlexWorkPeriod) Covers(date time.Time) bool {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(p.StartDate()) && !d.After(p.EndDate())
}

// MonthSpan counts months from StartMonth to EndMonth inclusive.
func MonthSpan(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()-start.Month()) + 1
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// QuarterlySettlement is one employee's settled row. Rows are insert-once.
type QuarterlySettlement struct {
	ID                        string
	PeriodID                  string
	EmployeeID                string
	TotalWorkHours            decimal.Decimal
	WeeklyAvgHours            decimal.Decimal
	TotalNightHours           decimal.Decimal
	OvertimeAllowanceAmount   decimal.Decimal
	NightAllowanceAlreadyPaid decimal.Decimal
	// NetOvertimeAllowance equals OvertimeAllowanceAmount; the already-paid
	// night allowance is shown alongside, never subtracted.
	NetOvertimeAllowance decimal.Decimal
	HourlyRate           decimal.Decimal
	CreatedAt            time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// NightAllowancePayment is the monthly night pay already disbursed.
type NightAllowancePayment struct {
	ID           string
	EmployeeID   string
	Year         int
	Month        time.Month
	NightMinutes int64
	HourlyRate   decimal.Decimal
	Amount       decimal.Decimal
	ProcessedAt  time.Time
}
