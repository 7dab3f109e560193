package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/settlement"
)

// SettlementJobs advances flexible-work periods and closes out monthly night pay.
type SettlementJobs struct {
	settlementService settlement.SettlementService
	loc               *time.Location
	now               func() time.Time
}

func NewSettlementJobs(settlementService settlement.SettlementService, loc *time.Location) *SettlementJobs {
	return &SettlementJobs{
		settlementService: settlementService,
		loc:               loc,
		now:               time.Now,
	}
}

func (j *SettlementJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(Job{Name: "activate_due_flex_periods", Interval: time.Hour, Timeout: time.Minute, Fn: j.ActivateDuePeriods})
	scheduler.AddJob(Job{Name: "process_monthly_night_pay", Interval: time.Hour, Timeout: 10 * time.Minute, Fn: j.ProcessPreviousMonthNightPay})
}

// ActivateDuePeriods moves planned periods whose start month has begun to active.
func (j *SettlementJobs) ActivateDuePeriods(ctx context.Context) error {
	today := j.now().In(j.loc)

	activated, err := j.settlementService.ActivateDuePeriods(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to activate due periods: %w", err)
	}
	if activated > 0 {
		slog.Info("Cron: flex work periods activated", "count", activated)
	}
	return nil
}

// ProcessPreviousMonthNightPay pays out last month's night allowance on the
// first day of a month. Employees already paid are skipped by the service.
func (j *SettlementJobs) ProcessPreviousMonthNightPay(ctx context.Context) error {
	today := j.now().In(j.loc)
	if today.Day() != 1 {
		return nil
	}

	prev := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, j.loc).AddDate(0, -1, 0)
	result, err := j.settlementService.ProcessMonthlyNightPay(ctx, prev.Year(), prev.Month())
	if err != nil {
		return fmt.Errorf("failed to process night pay for %d-%02d: %w", prev.Year(), prev.Month(), err)
	}

	slog.Info("Cron: monthly night pay processed",
		"year", result.Year,
		"month", result.Month,
		"processed", len(result.Processed),
		"skipped", result.Skipped,
	)
	return nil
}
