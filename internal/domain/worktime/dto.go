package worktime

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type RecomputeDayRequest struct {
	EmployeeID string `json:"employee_id"`
	WorkDate   string `json:"work_date"`
	// HadDinner overrides and persists the dinner flag when set.
	HadDinner *bool `json:"had_dinner,omitempty"`

	ParsedWorkDate time.Time `json:"-"`
}

func (r *RecomputeDayRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if d, ok := validator.IsValidDate(r.WorkDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "work_date", Message: "work_date must be YYYY-MM-DD"})
	} else {
		r.ParsedWorkDate = d
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DailyWorkSummaryResponse struct {
	EmployeeID              string          `json:"employee_id"`
	WorkDate                string          `json:"work_date"`
	DayType                 DayType         `json:"day_type"`
	Status                  Status          `json:"status"`
	BasicHours              decimal.Decimal `json:"basic_hours"`
	OvertimeHours           decimal.Decimal `json:"overtime_hours"`
	NightHours              decimal.Decimal `json:"night_hours"`
	BreakMinutes            int64           `json:"break_minutes"`
	SubstituteHoursEarned   decimal.Decimal `json:"substitute_hours_earned"`
	CompensatoryHoursEarned decimal.Decimal `json:"compensatory_hours_earned"`
	RuleConfigID            string          `json:"rule_config_id,omitempty"`
	ComputedAt              time.Time       `json:"computed_at"`
}

func NewDailyWorkSummaryResponse(s DailyWorkSummary) DailyWorkSummaryResponse {
	return DailyWorkSummaryResponse{
		EmployeeID:              s.EmployeeID,
		WorkDate:                s.WorkDate.Format("2006-01-02"),
		DayType:                 s.DayType,
		Status:                  s.Status,
		BasicHours:              s.BasicHours(),
		OvertimeHours:           s.OvertimeHours(),
		NightHours:              s.NightHours(),
		BreakMinutes:            s.BreakMinutes,
		SubstituteHoursEarned:   MinutesToHours(s.SubstituteMinutesEarned),
		CompensatoryHoursEarned: MinutesToHours(s.CompensatoryMinutesEarned),
		RuleConfigID:            s.RuleConfigID,
		ComputedAt:              s.ComputedAt,
	}
}

type MonthlyWorkStatsResponse struct {
	EmployeeID              string          `json:"employee_id"`
	Year                    int             `json:"year"`
	Month                   int             `json:"month"`
	WorkedDays              int             `json:"worked_days"`
	LateDays                int             `json:"late_days"`
	EarlyLeaveDays          int             `json:"early_leave_days"`
	AbsentDays              int             `json:"absent_days"`
	TimeErrorDays           int             `json:"time_error_days"`
	BasicHours              decimal.Decimal `json:"basic_hours"`
	OvertimeHours           decimal.Decimal `json:"overtime_hours"`
	NightHours              decimal.Decimal `json:"night_hours"`
	SubstituteHoursEarned   decimal.Decimal `json:"substitute_hours_earned"`
	CompensatoryHoursEarned decimal.Decimal `json:"compensatory_hours_earned"`
}

func NewMonthlyWorkStatsResponse(m MonthlyWorkStats) MonthlyWorkStatsResponse {
	return MonthlyWorkStatsResponse{
		EmployeeID:              m.EmployeeID,
		Year:                    m.Year,
		Month:                   int(m.Month),
		WorkedDays:              m.WorkedDays,
		LateDays:                m.LateDays,
		EarlyLeaveDays:          m.EarlyLeaveDays,
		AbsentDays:              m.AbsentDays,
		TimeErrorDays:           m.TimeErrorDays,
		BasicHours:              MinutesToHours(m.BasicMinutes),
		OvertimeHours:           MinutesToHours(m.OvertimeMinutes),
		NightHours:              MinutesToHours(m.NightMinutes),
		SubstituteHoursEarned:   MinutesToHours(m.SubstituteMinutesEarned),
		CompensatoryHoursEarned: MinutesToHours(m.CompensatoryMinutesEarned),
	}
}

// ========== RULE CONFIG DTOs ==========

// CreateRuleConfigRequest overrides DefaultRuleConfig field by field.
type CreateRuleConfigRequest struct {
	EffectiveFrom                string           `json:"effective_from"`
	EffectiveTo                  *string          `json:"effective_to,omitempty"`
	LunchStart                   *string          `json:"lunch_start,omitempty"`
	LunchMinutes                 *int64           `json:"lunch_minutes,omitempty"`
	NightStart                   *string          `json:"night_start,omitempty"`
	NightEnd                     *string          `json:"night_end,omitempty"`
	OvertimeThresholdMinutes     *int64           `json:"overtime_threshold_minutes,omitempty"`
	FlexOvertimeThresholdMinutes *int64           `json:"flex_overtime_threshold_minutes,omitempty"`
	OvertimeRateMultiplier       *decimal.Decimal `json:"overtime_rate_multiplier,omitempty"`
	NightRateMultiplier          *decimal.Decimal `json:"night_rate_multiplier,omitempty"`
	WeeklyBaselineHours          *decimal.Decimal `json:"weekly_baseline_hours,omitempty"`
	WorkStart                    *string          `json:"work_start,omitempty"`
	WorkEnd                      *string          `json:"work_end,omitempty"`
	GraceMinutes                 *int64           `json:"grace_minutes,omitempty"`
}

func (r *CreateRuleConfigRequest) Validate() error {
	var errs validator.ValidationErrors

	from, ok := validator.IsValidDate(r.EffectiveFrom)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_from", Message: "effective_from must be YYYY-MM-DD"})
	}
	if r.EffectiveTo != nil {
		to, okTo := validator.IsValidDate(*r.EffectiveTo)
		if !okTo {
			errs = append(errs, validator.ValidationError{Field: "effective_to", Message: "effective_to must be YYYY-MM-DD"})
		} else if ok && to.Before(from) {
			errs = append(errs, validator.ValidationError{Field: "effective_to", Message: "effective_to must not be before effective_from"})
		}
	}

	clocks := map[string]*string{
		"lunch_start": r.LunchStart,
		"night_start": r.NightStart,
		"night_end":   r.NightEnd,
		"work_start":  r.WorkStart,
		"work_end":    r.WorkEnd,
	}
	for field, v := range clocks {
		if v != nil && !validator.IsValidClock(*v) {
			errs = append(errs, validator.ValidationError{Field: field, Message: field + " must be HH:MM"})
		}
	}

	minutes := map[string]*int64{
		"lunch_minutes":                   r.LunchMinutes,
		"overtime_threshold_minutes":      r.OvertimeThresholdMinutes,
		"flex_overtime_threshold_minutes": r.FlexOvertimeThresholdMinutes,
		"grace_minutes":                   r.GraceMinutes,
	}
	for field, v := range minutes {
		if v != nil && *v < 0 {
			errs = append(errs, validator.ValidationError{Field: field, Message: field + " must be non-negative"})
		}
	}

	rates := map[string]*decimal.Decimal{
		"overtime_rate_multiplier": r.OvertimeRateMultiplier,
		"night_rate_multiplier":    r.NightRateMultiplier,
		"weekly_baseline_hours":    r.WeeklyBaselineHours,
	}
	for field, v := range rates {
		if v != nil && !validator.IsPositive(*v) {
			errs = append(errs, validator.ValidationError{Field: field, Message: field + " must be positive"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToRuleConfig applies the request to the defaults. Call Validate first.
func (r *CreateRuleConfigRequest) ToRuleConfig() RuleConfig {
	from, _ := validator.IsValidDate(r.EffectiveFrom)
	cfg := DefaultRuleConfig(from)
	if r.EffectiveTo != nil {
		to, _ := validator.IsValidDate(*r.EffectiveTo)
		cfg.EffectiveTo = &to
	}
	setClock := func(dst *ClockTime, v *string) {
		if v != nil {
			if c, err := ParseClock(*v); err == nil {
				*dst = c
			}
		}
	}
	setClock(&cfg.LunchStart, r.LunchStart)
	setClock(&cfg.NightStart, r.NightStart)
	setClock(&cfg.NightEnd, r.NightEnd)
	if r.WorkStart != nil {
		if c, err := ParseClock(*r.WorkStart); err == nil {
			cfg.WorkStart = &c
		}
	}
	if r.WorkEnd != nil {
		if c, err := ParseClock(*r.WorkEnd); err == nil {
			cfg.WorkEnd = &c
		}
	}
	if r.LunchMinutes != nil {
		cfg.LunchMinutes = *r.LunchMinutes
	}
	if r.OvertimeThresholdMinutes != nil {
		cfg.OvertimeThresholdMinutes = *r.OvertimeThresholdMinutes
	}
	if r.FlexOvertimeThresholdMinutes != nil {
		cfg.FlexOvertimeThresholdMinutes = *r.FlexOvertimeThresholdMinutes
	}
	if r.GraceMinutes != nil {
		cfg.GraceMinutes = *r.GraceMinutes
	}
	if r.OvertimeRateMultiplier != nil {
		cfg.OvertimeRateMultiplier = *r.OvertimeRateMultiplier
	}
	if r.NightRateMultiplier != nil {
		cfg.NightRateMultiplier = *r.NightRateMultiplier
	}
	if r.WeeklyBaselineHours != nil {
		cfg.WeeklyBaselineHours = *r.WeeklyBaselineHours
	}
	return cfg
}

type RuleConfigResponse struct {
	ID                           string          `json:"id"`
	EffectiveFrom                string          `json:"effective_from"`
	EffectiveTo                  *string         `json:"effective_to,omitempty"`
	LunchStart                   string          `json:"lunch_start"`
	LunchMinutes                 int64           `json:"lunch_minutes"`
	NightStart                   string          `json:"night_start"`
	NightEnd                     string          `json:"night_end"`
	OvertimeThresholdMinutes     int64           `json:"overtime_threshold_minutes"`
	FlexOvertimeThresholdMinutes int64           `json:"flex_overtime_threshold_minutes"`
	OvertimeRateMultiplier       decimal.Decimal `json:"overtime_rate_multiplier"`
	NightRateMultiplier          decimal.Decimal `json:"night_rate_multiplier"`
	WeeklyBaselineHours          decimal.Decimal `json:"weekly_baseline_hours"`
	WorkStart                    *string         `json:"work_start,omitempty"`
	WorkEnd                      *string         `json:"work_end,omitempty"`
	GraceMinutes                 int64           `json:"grace_minutes"`
}

func NewRuleConfigResponse(c RuleConfig) RuleConfigResponse {
	resp := RuleConfigResponse{
		ID:                           c.ID,
		EffectiveFrom:                c.EffectiveFrom.Format("2006-01-02"),
		LunchStart:                   c.LunchStart.String(),
		LunchMinutes:                 c.LunchMinutes,
		NightStart:                   c.NightStart.String(),
		NightEnd:                     c.NightEnd.String(),
		OvertimeThresholdMinutes:     c.OvertimeThresholdMinutes,
		FlexOvertimeThresholdMinutes: c.FlexOvertimeThresholdMinutes,
		OvertimeRateMultiplier:       c.OvertimeRateMultiplier,
		NightRateMultiplier:          c.NightRateMultiplier,
		WeeklyBaselineHours:          c.WeeklyBaselineHours,
		GraceMinutes:                 c.GraceMinutes,
	}
	if c.EffectiveTo != nil {
		to := c.EffectiveTo.Format("2006-01-02")
		resp.EffectiveTo = &to
	}
	if c.WorkStart != nil {
		ws := c.WorkStart.String()
		resp.WorkStart = &ws
	}
	if c.WorkEnd != nil {
		we := c.WorkEnd.String()
		resp.WorkEnd = &we
	}
	return resp
}

// ========== HOLIDAY DTOs ==========

type HolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`

	ParsedDate time.Time `json:"-"`
}

func (r *HolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	if d, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"})
	} else {
		r.ParsedDate = d
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type HolidayResponse struct {
	Date string `json:"date"`
	Name string `json:"name"`
}
