package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/worktime"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type summaryRepositoryImpl struct {
	db *database.DB
}

// SummaryStore is the summary repository plus the leave accrual view over the same table.
type SummaryStore interface {
	worktime.SummaryRepository
	leave.AccrualSource
}

func NewSummaryRepository(db *database.DB) SummaryStore {
	return &summaryRepositoryImpl{db: db}
}

const summaryColumns = `
	id, employee_id, work_date, day_type, basic_minutes, overtime_minutes, night_minutes, break_minutes,
	status, substitute_minutes_earned, compensatory_minutes_earned, COALESCE(rule_config_id::text, ''), computed_at`

func scanSummary(row pgx.Row) (worktime.DailyWorkSummary, error) {
	var s worktime.DailyWorkSummary
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.WorkDate, &s.DayType, &s.BasicMinutes, &s.OvertimeMinutes,
		&s.NightMinutes, &s.BreakMinutes, &s.Status, &s.SubstituteMinutesEarned,
		&s.CompensatoryMinutesEarned, &s.RuleConfigID, &s.ComputedAt,
	)
	return s, err
}

// Upsert implements worktime.SummaryRepository.
func (r *summaryRepositoryImpl) Upsert(ctx context.Context, s worktime.DailyWorkSummary) (worktime.DailyWorkSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO daily_work_summaries (
			id, employee_id, work_date, day_type, basic_minutes, overtime_minutes, night_minutes, break_minutes,
			status, substitute_minutes_earned, compensatory_minutes_earned, rule_config_id, computed_at
		) VALUES (uuidv7(), $1, $2::date, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, '')::uuid, $12)
		ON CONFLICT (employee_id, work_date) DO UPDATE SET
			day_type = EXCLUDED.day_type,
			basic_minutes = EXCLUDED.basic_minutes,
			overtime_minutes = EXCLUDED.overtime_minutes,
			night_minutes = EXCLUDED.night_minutes,
			break_minutes = EXCLUDED.break_minutes,
			status = EXCLUDED.status,
			substitute_minutes_earned = EXCLUDED.substitute_minutes_earned,
			compensatory_minutes_earned = EXCLUDED.compensatory_minutes_earned,
			rule_config_id = EXCLUDED.rule_config_id,
			computed_at = EXCLUDED.computed_at
		RETURNING ` + summaryColumns

	saved, err := scanSummary(q.QueryRow(ctx, query,
		s.EmployeeID, dateArg(s.WorkDate), s.DayType, s.BasicMinutes, s.OvertimeMinutes, s.NightMinutes,
		s.BreakMinutes, s.Status, s.SubstituteMinutesEarned, s.CompensatoryMinutesEarned, s.RuleConfigID, s.ComputedAt,
	))
	if err != nil {
		return worktime.DailyWorkSummary{}, fmt.Errorf("failed to upsert daily work summary: %w", err)
	}
	return saved, nil
}

// Get implements worktime.SummaryRepository.
func (r *summaryRepositoryImpl) Get(ctx context.Context, employeeID string, workDate time.Time) (worktime.DailyWorkSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + summaryColumns + ` FROM daily_work_summaries WHERE employee_id = $1 AND work_date = $2::date`

	s, err := scanSummary(q.QueryRow(ctx, query, employeeID, dateArg(workDate)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return worktime.DailyWorkSummary{}, worktime.ErrSummaryNotFound
		}
		return worktime.DailyWorkSummary{}, fmt.Errorf("failed to get daily work summary: %w", err)
	}
	return s, nil
}

// ListByRange implements worktime.SummaryRepository.
func (r *summaryRepositoryImpl) ListByRange(ctx context.Context, employeeID string, from, to time.Time) ([]worktime.DailyWorkSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + summaryColumns + `
		FROM daily_work_summaries
		WHERE ($1 = '' OR employee_id::text = $1)
			AND work_date BETWEEN $2::date AND $3::date
		ORDER BY employee_id, work_date
	`

	rows, err := q.Query(ctx, query, employeeID, dateArg(from), dateArg(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list daily work summaries: %w", err)
	}
	defer rows.Close()

	var summaries []worktime.DailyWorkSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily work summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// SumEarned implements leave.AccrualSource.
func (r *summaryRepositoryImpl) SumEarned(ctx context.Context, employeeID string) (leave.EarnedMinutes, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(substitute_minutes_earned), 0)::bigint, COALESCE(SUM(compensatory_minutes_earned), 0)::bigint
		FROM daily_work_summaries
		WHERE employee_id = $1
	`

	var earned leave.EarnedMinutes
	if err := q.QueryRow(ctx, query, employeeID).Scan(&earned.Substitute, &earned.Compensatory); err != nil {
		return leave.EarnedMinutes{}, fmt.Errorf("failed to sum earned leave minutes: %w", err)
	}
	return earned, nil
}

type ruleConfigRepositoryImpl struct {
	db *database.DB
}

func NewRuleConfigRepository(db *database.DB) worktime.RuleConfigRepository {
	return &ruleConfigRepositoryImpl{db: db}
}

const ruleConfigColumns = `
	id, effective_from, effective_to, lunch_start_min, lunch_minutes, night_start_min, night_end_min,
	overtime_threshold_minutes, flex_overtime_threshold_minutes, overtime_rate_multiplier, night_rate_multiplier,
	weekly_baseline_hours, accrual_tier_minutes, saturday_base_rate, saturday_extended_rate,
	holiday_base_rate, holiday_extended_rate, night_accrual_bonus_rate,
	work_start_min, work_end_min, grace_minutes, created_at, updated_at`

func scanRuleConfig(row pgx.Row) (worktime.RuleConfig, error) {
	var c worktime.RuleConfig
	err := row.Scan(
		&c.ID, &c.EffectiveFrom, &c.EffectiveTo, &c.LunchStart, &c.LunchMinutes, &c.NightStart, &c.NightEnd,
		&c.OvertimeThresholdMinutes, &c.FlexOvertimeThresholdMinutes, &c.OvertimeRateMultiplier, &c.NightRateMultiplier,
		&c.WeeklyBaselineHours, &c.AccrualTierMinutes, &c.SaturdayBaseRate, &c.SaturdayExtendedRate,
		&c.HolidayBaseRate, &c.HolidayExtendedRate, &c.NightAccrualBonusRate,
		&c.WorkStart, &c.WorkEnd, &c.GraceMinutes, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

// GetEffective implements worktime.RuleConfigRepository. The most recent
// effective_from wins when ranges overlap.
func (r *ruleConfigRepositoryImpl) GetEffective(ctx context.Context, date time.Time) (worktime.RuleConfig, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + ruleConfigColumns + `
		FROM rule_configs
		WHERE effective_from <= $1::date AND (effective_to IS NULL OR effective_to >= $1::date)
		ORDER BY effective_from DESC, created_at DESC
		LIMIT 1
	`

	c, err := scanRuleConfig(q.QueryRow(ctx, query, dateArg(date)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return worktime.RuleConfig{}, worktime.ErrConfigurationMissing
		}
		return worktime.RuleConfig{}, fmt.Errorf("failed to get effective rule config: %w", err)
	}
	return c, nil
}

// Create implements worktime.RuleConfigRepository.
func (r *ruleConfigRepositoryImpl) Create(ctx context.Context, c worktime.RuleConfig) (worktime.RuleConfig, error) {
	q := GetQuerier(ctx, r.db)

	var effectiveTo *string
	if c.EffectiveTo != nil {
		s := dateArg(*c.EffectiveTo)
		effectiveTo = &s
	}

	query := `
		INSERT INTO rule_configs (
			id, effective_from, effective_to, lunch_start_min, lunch_minutes, night_start_min, night_end_min,
			overtime_threshold_minutes, flex_overtime_threshold_minutes, overtime_rate_multiplier, night_rate_multiplier,
			weekly_baseline_hours, accrual_tier_minutes, saturday_base_rate, saturday_extended_rate,
			holiday_base_rate, holiday_extended_rate, night_accrual_bonus_rate,
			work_start_min, work_end_min, grace_minutes, created_at, updated_at
		) VALUES (
			uuidv7(), $1::date, $2::date, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14,
			$15, $16, $17,
			$18, $19, $20, NOW(), NOW()
		)
		RETURNING ` + ruleConfigColumns

	created, err := scanRuleConfig(q.QueryRow(ctx, query,
		dateArg(c.EffectiveFrom), effectiveTo, c.LunchStart, c.LunchMinutes, c.NightStart, c.NightEnd,
		c.OvertimeThresholdMinutes, c.FlexOvertimeThresholdMinutes, c.OvertimeRateMultiplier, c.NightRateMultiplier,
		c.WeeklyBaselineHours, c.AccrualTierMinutes, c.SaturdayBaseRate, c.SaturdayExtendedRate,
		c.HolidayBaseRate, c.HolidayExtendedRate, c.NightAccrualBonusRate,
		c.WorkStart, c.WorkEnd, c.GraceMinutes,
	))
	if err != nil {
		return worktime.RuleConfig{}, fmt.Errorf("failed to create rule config: %w", err)
	}
	return created, nil
}

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) worktime.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

// IsHoliday implements worktime.HolidayRepository.
func (r *holidayRepositoryImpl) IsHoliday(ctx context.Context, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM holidays WHERE date = $1::date)`, dateArg(date)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check holiday: %w", err)
	}
	return exists, nil
}

// Upsert implements worktime.HolidayRepository.
func (r *holidayRepositoryImpl) Upsert(ctx context.Context, h worktime.Holiday) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO holidays (date, name) VALUES ($1::date, $2)
		ON CONFLICT (date) DO UPDATE SET name = EXCLUDED.name
	`
	if _, err := q.Exec(ctx, query, dateArg(h.Date), h.Name); err != nil {
		return fmt.Errorf("failed to upsert holiday: %w", err)
	}
	return nil
}

// ListByRange implements worktime.HolidayRepository.
func (r *holidayRepositoryImpl) ListByRange(ctx context.Context, from, to time.Time) ([]worktime.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT date, name FROM holidays WHERE date BETWEEN $1::date AND $2::date ORDER BY date`,
		dateArg(from), dateArg(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []worktime.Holiday
	for rows.Next() {
		var h worktime.Holiday
		if err := rows.Scan(&h.Date, &h.Name); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}
