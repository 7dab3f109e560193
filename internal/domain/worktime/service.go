package worktime

import (
	"context"
	"time"
)

type WorktimeService interface {
	// RecomputeDay recomputes and overwrites the day's summary. A non-nil
	// hadDinner is persisted on the attendance row first.
	RecomputeDay(ctx context.Context, employeeID string, workDate time.Time, hadDinner *bool) (DailyWorkSummary, error)
	GetSummary(ctx context.Context, employeeID string, workDate time.Time) (DailyWorkSummary, error)
	MonthlyStats(ctx context.Context, employeeID string, year int, month time.Month) (MonthlyWorkStats, error)

	// Rule configuration and calendar
	CreateRuleConfig(ctx context.Context, req CreateRuleConfigRequest) (RuleConfig, error)
	GetEffectiveRuleConfig(ctx context.Context, date time.Time) (RuleConfig, error)
	AddHoliday(ctx context.Context, req HolidayRequest) (Holiday, error)
	ListHolidays(ctx context.Context, year int) ([]Holiday, error)
}
