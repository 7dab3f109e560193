package worktime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/worktime"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

type WorktimeServiceImpl struct {
	tx          database.Transactor
	loc         *time.Location
	dailyRepo   attendance.DailyAttendanceRepository
	summaryRepo worktime.SummaryRepository
	ruleRepo    worktime.RuleConfigRepository
	holidayRepo worktime.HolidayRepository
	flex        worktime.FlexCalendar
	bank        worktime.EarnedLeaveBank
	now         func() time.Time
}

func NewWorktimeService(
	tx database.Transactor,
	loc *time.Location,
	dailyRepo attendance.DailyAttendanceRepository,
	summaryRepo worktime.SummaryRepository,
	ruleRepo worktime.RuleConfigRepository,
	holidayRepo worktime.HolidayRepository,
	flex worktime.FlexCalendar,
	bank worktime.EarnedLeaveBank,
) worktime.WorktimeService {
	return &WorktimeServiceImpl{
		tx:          tx,
		loc:         loc,
		dailyRepo:   dailyRepo,
		summaryRepo: summaryRepo,
		ruleRepo:    ruleRepo,
		holidayRepo: holidayRepo,
		flex:        flex,
		bank:        bank,
		now:         time.Now,
	}
}

// localDate places the calendar date of t at midnight in the service zone.
func (s *WorktimeServiceImpl) localDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

// RecomputeDay implements worktime.WorktimeService.
func (s *WorktimeServiceImpl) RecomputeDay(ctx context.Context, employeeID string, workDate time.Time, hadDinner *bool) (worktime.DailyWorkSummary, error) {
	workDate = s.localDate(workDate)

	var result worktime.DailyWorkSummary
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if hadDinner != nil {
			if err := s.dailyRepo.SetHadDinner(ctx, employeeID, workDate, *hadDinner); err != nil {
				return fmt.Errorf("failed to update dinner flag: %w", err)
			}
		}

		cfg, err := s.ruleRepo.GetEffective(ctx, workDate)
		if err != nil {
			return fmt.Errorf("failed to load rule configuration for %s: %w", workDate.Format("2006-01-02"), err)
		}

		summary, err := s.compute(ctx, employeeID, workDate, cfg)
		if err != nil {
			return err
		}

		existing, err := s.summaryRepo.Get(ctx, employeeID, workDate)
		switch {
		case err == nil && existing.SameFigures(summary):
			result = existing
			return nil
		case err == nil:
			if err := s.guardCredits(ctx, existing, summary); err != nil {
				return err
			}
		case !errors.Is(err, worktime.ErrSummaryNotFound):
			return fmt.Errorf("failed to load existing summary: %w", err)
		}

		summary.ComputedAt = s.now().UTC()
		result, err = s.summaryRepo.Upsert(ctx, summary)
		if err != nil {
			return fmt.Errorf("failed to save work summary: %w", err)
		}
		return nil
	})
	if err != nil {
		return worktime.DailyWorkSummary{}, err
	}

	slog.Debug("Recomputed work summary", "employee_id", employeeID, "work_date", workDate.Format("2006-01-02"), "status", result.Status)
	return result, nil
}

// guardCredits rejects a recompute that lowers an earned credit below what
// the employee has already spent from that bank.
func (s *WorktimeServiceImpl) guardCredits(ctx context.Context, existing, next worktime.DailyWorkSummary) error {
	substituteDrop := existing.SubstituteMinutesEarned - next.SubstituteMinutesEarned
	compensatoryDrop := existing.CompensatoryMinutesEarned - next.CompensatoryMinutesEarned
	if substituteDrop <= 0 && compensatoryDrop <= 0 {
		return nil
	}

	if err := s.bank.LockEmployee(ctx, existing.EmployeeID); err != nil {
		return fmt.Errorf("failed to lock leave ledger: %w", err)
	}
	substitute, compensatory, err := s.bank.EarnedAvailable(ctx, existing.EmployeeID)
	if err != nil {
		return fmt.Errorf("failed to load earned leave: %w", err)
	}
	if substituteDrop > 0 && substitute-substituteDrop < 0 {
		return fmt.Errorf("%w: substitute bank short by %d minutes", worktime.ErrEarnedLeaveOverdrawn, substituteDrop-substitute)
	}
	if compensatoryDrop > 0 && compensatory-compensatoryDrop < 0 {
		return fmt.Errorf("%w: compensatory bank short by %d minutes", worktime.ErrEarnedLeaveOverdrawn, compensatoryDrop-compensatory)
	}
	return nil
}

func (s *WorktimeServiceImpl) compute(ctx context.Context, employeeID string, workDate time.Time, cfg worktime.RuleConfig) (worktime.DailyWorkSummary, error) {
	holiday, err := s.holidayRepo.IsHoliday(ctx, workDate)
	if err != nil {
		return worktime.DailyWorkSummary{}, fmt.Errorf("failed to check holiday calendar: %w", err)
	}
	dayType := ClassifyDay(workDate, holiday)

	day, err := s.dailyRepo.Get(ctx, employeeID, workDate)
	if err != nil {
		if !errors.Is(err, attendance.ErrDailyAttendanceNotFound) {
			return worktime.DailyWorkSummary{}, fmt.Errorf("failed to load daily attendance: %w", err)
		}
		if dayType != worktime.DayTypeWeekday {
			return worktime.DailyWorkSummary{}, worktime.ErrNoAttendance
		}
		return AbsentSummary(employeeID, workDate, cfg), nil
	}

	flex, err := s.flex.CoversDate(ctx, workDate)
	if err != nil {
		return worktime.DailyWorkSummary{}, fmt.Errorf("failed to check flexible work period: %w", err)
	}

	day.WorkDate = workDate
	if day.CheckIn != nil {
		in := day.CheckIn.In(s.loc)
		day.CheckIn = &in
	}
	if day.CheckOut != nil {
		out := day.CheckOut.In(s.loc)
		day.CheckOut = &out
	}
	return Calculate(day, cfg, DayContext{DayType: dayType, FlexPeriod: flex}), nil
}

// GetSummary implements worktime.WorktimeService.
func (s *WorktimeServiceImpl) GetSummary(ctx context.Context, employeeID string, workDate time.Time) (worktime.DailyWorkSummary, error) {
	return s.summaryRepo.Get(ctx, employeeID, s.localDate(workDate))
}

// MonthlyStats implements worktime.WorktimeService.
func (s *WorktimeServiceImpl) MonthlyStats(ctx context.Context, employeeID string, year int, month time.Month) (worktime.MonthlyWorkStats, error) {
	if month < time.January || month > time.December || year < 1 {
		return worktime.MonthlyWorkStats{}, worktime.ErrInvalidMonth
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 1, -1)

	summaries, err := s.summaryRepo.ListByRange(ctx, employeeID, from, to)
	if err != nil {
		return worktime.MonthlyWorkStats{}, fmt.Errorf("failed to list work summaries: %w", err)
	}

	stats := worktime.MonthlyWorkStats{EmployeeID: employeeID, Year: year, Month: month}
	for _, summary := range summaries {
		stats.Add(summary)
	}
	return stats, nil
}

// CreateRuleConfig implements worktime.WorktimeService.
func (s *WorktimeServiceImpl) CreateRuleConfig(ctx context.Context, req worktime.CreateRuleConfigRequest) (worktime.RuleConfig, error) {
	if err := req.Validate(); err != nil {
		return worktime.RuleConfig{}, err
	}
	cfg, err := s.ruleRepo.Create(ctx, req.ToRuleConfig())
	if err != nil {
		return worktime.RuleConfig{}, fmt.Errorf("failed to create rule configuration: %w", err)
	}
	slog.Info("Created rule configuration", "id", cfg.ID, "effective_from", cfg.EffectiveFrom.Format("2006-01-02"))
	return cfg, nil
}

// GetEffectiveRuleConfig implements worktime.WorktimeService.
func (s *WorktimeServiceImpl) GetEffectiveRuleConfig(ctx context.Context, date time.Time) (worktime.RuleConfig, error) {
	return s.ruleRepo.GetEffective(ctx, s.localDate(date))
}

// AddHoliday implements worktime.WorktimeService.
func (s *WorktimeServiceImpl) AddHoliday(ctx context.Context, req worktime.HolidayRequest) (worktime.Holiday, error) {
	if err := req.Validate(); err != nil {
		return worktime.Holiday{}, err
	}
	h := worktime.Holiday{Date: s.localDate(req.ParsedDate), Name: req.Name}
	if err := s.holidayRepo.Upsert(ctx, h); err != nil {
		return worktime.Holiday{}, fmt.Errorf("failed to save holiday: %w", err)
	}
	return h, nil
}

// ListHolidays implements worktime.WorktimeService.
func (s *WorktimeServiceImpl) ListHolidays(ctx context.Context, year int) ([]worktime.Holiday, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, s.loc)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, s.loc)
	return s.holidayRepo.ListByRange(ctx, from, to)
}
