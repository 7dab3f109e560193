package worktime

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DayType enum
type DayType string

const (
	DayTypeWeekday  DayType = "weekday"
	DayTypeSaturday DayType = "saturday"
	DayTypeSunday   DayType = "sunday"
	DayTypeHoliday  DayType = "holiday"
)

// Status enum
type Status string

const (
	StatusNormal     Status = "normal"
	StatusLate       Status = "late"
	StatusEarlyLeave Status = "early_leave"
	StatusAbsent     Status = "absent"
	StatusTimeError  Status = "time_error"
)

// ClockTime is a wall-clock time of day in minutes after midnight.
type ClockTime int

func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

// On places the clock time on the calendar day of date.
func (c ClockTime) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location()).Add(time.Duration(c) * time.Minute)
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// RuleConfig is the date-effective rule set. EffectiveTo is inclusive; nil is open-ended.
type RuleConfig struct {
	ID            string
	EffectiveFrom time.Time
	EffectiveTo   *time.Time

	LunchStart   ClockTime
	LunchMinutes int64
	NightStart   ClockTime
	NightEnd     ClockTime

	OvertimeThresholdMinutes     int64
	FlexOvertimeThresholdMinutes int64
	OvertimeRateMultiplier       decimal.Decimal
	NightRateMultiplier          decimal.Decimal
	WeeklyBaselineHours          decimal.Decimal

	AccrualTierMinutes    int64
	SaturdayBaseRate      decimal.Decimal
	SaturdayExtendedRate  decimal.Decimal
	HolidayBaseRate       decimal.Decimal
	HolidayExtendedRate   decimal.Decimal
	NightAccrualBonusRate decimal.Decimal

	WorkStart    *ClockTime
	WorkEnd      *ClockTime
	GraceMinutes int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultRuleConfig returns the statutory defaults effective from the given date.
func DefaultRuleConfig(from time.Time) RuleConfig {
	return RuleConfig{
		EffectiveFrom:                from,
		LunchStart:                   12 * 60,
		LunchMinutes:                 60,
		NightStart:                   22 * 60,
		NightEnd:                     6 * 60,
		OvertimeThresholdMinutes:     480,
		FlexOvertimeThresholdMinutes: 720,
		OvertimeRateMultiplier:       decimal.NewFromFloat(1.5),
		NightRateMultiplier:          decimal.NewFromFloat(0.5),
		WeeklyBaselineHours:          decimal.NewFromInt(40),
		AccrualTierMinutes:           480,
		SaturdayBaseRate:             decimal.NewFromInt(1),
		SaturdayExtendedRate:         decimal.NewFromFloat(1.5),
		HolidayBaseRate:              decimal.NewFromFloat(1.5),
		HolidayExtendedRate:          decimal.NewFromInt(2),
		NightAccrualBonusRate:        decimal.NewFromFloat(0.5),
	}
}

// Covers reports whether the config is effective on date. Only calendar
// dates are compared, so zones do not matter.
func (c RuleConfig) Covers(date time.Time) bool {
	d := CivilDate(date)
	if d.Before(CivilDate(c.EffectiveFrom)) {
		return false
	}
	return c.EffectiveTo == nil || !d.After(CivilDate(*c.EffectiveTo))
}

// CivilDate keeps only the calendar date of t, as UTC midnight.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type Holiday struct {
	Date time.Time
	Name string
}

// DailyWorkSummary is the computed result for one employee and work date.
// Quantities are whole minutes.
type DailyWorkSummary struct {
	ID                        string
	EmployeeID                string
	WorkDate                  time.Time
	DayType                   DayType
	BasicMinutes              int64
	OvertimeMinutes           int64
	NightMinutes              int64
	BreakMinutes              int64
	Status                    Status
	SubstituteMinutesEarned   int64
	CompensatoryMinutesEarned int64
	RuleConfigID              string
	ComputedAt                time.Time
}

func (s DailyWorkSummary) BasicHours() decimal.Decimal    { return MinutesToHours(s.BasicMinutes) }
func (s DailyWorkSummary) OvertimeHours() decimal.Decimal { return MinutesToHours(s.OvertimeMinutes) }
func (s DailyWorkSummary) NightHours() decimal.Decimal    { return MinutesToHours(s.NightMinutes) }
func (s DailyWorkSummary) BreakHours() decimal.Decimal    { return MinutesToHours(s.BreakMinutes) }

// WorkedMinutes is basic plus overtime.
func (s DailyWorkSummary) WorkedMinutes() int64 {
	return s.BasicMinutes + s.OvertimeMinutes
}

// MonthlyWorkStats is an on-demand aggregate of a month's summaries.
type MonthlyWorkStats struct {
	EmployeeID                string
	Year                      int
	Month                     time.Month
	WorkedDays                int
	LateDays                  int
	EarlyLeaveDays            int
	AbsentDays                int
	TimeErrorDays             int
	BasicMinutes              int64
	OvertimeMinutes           int64
	NightMinutes              int64
	SubstituteMinutesEarned   int64
	CompensatoryMinutesEarned int64
}

// Add folds one day into the aggregate.
func (m *MonthlyWorkStats) Add(s DailyWorkSummary) {
	switch s.Status {
	case StatusAbsent:
		m.AbsentDays++
	case StatusTimeError:
		m.TimeErrorDays++
	default:
		m.WorkedDays++
		if s.Status == StatusLate {
			m.LateDays++
		}
		if s.Status == StatusEarlyLeave {
			m.EarlyLeaveDays++
		}
	}
	m.BasicMinutes += s.BasicMinutes
	m.OvertimeMinutes += s.OvertimeMinutes
	m.NightMinutes += s.NightMinutes
	m.SubstituteMinutesEarned += s.SubstituteMinutesEarned
	m.CompensatoryMinutesEarned += s.CompensatoryMinutesEarned
}

var sixty = decimal.NewFromInt(60)

// MinutesToHours converts whole minutes to decimal hours.
func MinutesToHours(minutes int64) decimal.Decimal {
	return decimal.NewFromInt(minutes).Div(sixty)
}

// HoursToMinutes converts decimal hours to whole minutes, rounding half up.
func HoursToMinutes(hours decimal.Decimal) int64 {
	return hours.Mul(sixty).Round(0).IntPart()
}

// SameFigures compares everything a computation produces, ignoring identity and timestamps.
func (s DailyWorkSummary) SameFigures(o DailyWorkSummary) bool {
	return s.EmployeeID == o.EmployeeID &&
		s.WorkDate.Format("2006-01-02") == o.WorkDate.Format("2006-01-02") &&
		s.DayType == o.DayType &&
		s.BasicMinutes == o.BasicMinutes &&
		s.OvertimeMinutes == o.OvertimeMinutes &&
		s.NightMinutes == o.NightMinutes &&
		s.BreakMinutes == o.BreakMinutes &&
		s.Status == o.Status &&
		s.SubstituteMinutesEarned == o.SubstituteMinutesEarned &&
		s.CompensatoryMinutesEarned == o.CompensatoryMinutesEarned &&
		s.RuleConfigID == o.RuleConfigID
}
