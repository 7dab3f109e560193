package worktime

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/worktime"
	"github.com/shopspring/decimal"
)

const (
	dinnerBreakMinutes int64 = 60

	shortShiftMinutes int64 = 4 * 60
	fullShiftMinutes  int64 = 8 * 60
)

// DayContext carries the calendar facts a calculation depends on.
type DayContext struct {
	DayType    worktime.DayType
	FlexPeriod bool
}

// ClassifyDay orders holiday before Sunday before Saturday.
func ClassifyDay(workDate time.Time, holiday bool) worktime.DayType {
	switch {
	case holiday:
		return worktime.DayTypeHoliday
	case workDate.Weekday() == time.Sunday:
		return worktime.DayTypeSunday
	case workDate.Weekday() == time.Saturday:
		return worktime.DayTypeSaturday
	default:
		return worktime.DayTypeWeekday
	}
}

// StatutoryBreak is 30 minutes from four raw hours and 60 from eight.
func StatutoryBreak(rawMinutes int64) int64 {
	switch {
	case rawMinutes >= fullShiftMinutes:
		return 60
	case rawMinutes >= shortShiftMinutes:
		return 30
	default:
		return 0
	}
}

// BreakMinutes is the larger of the statutory break and the time spent inside
// the lunch window, plus the dinner break when taken.
func BreakMinutes(rawMinutes, lunchOverlap int64, hadDinner bool) int64 {
	brk := StatutoryBreak(rawMinutes)
	if lunchOverlap > brk {
		brk = lunchOverlap
	}
	if hadDinner {
		brk += dinnerBreakMinutes
	}
	return brk
}

// Accrual credits the first tierMinutes at base, the rest at extended, and
// night minutes at bonus. The result is rounded half up to whole minutes.
func Accrual(netMinutes, nightMinutes, tierMinutes int64, base, extended, bonus decimal.Decimal) int64 {
	first := netMinutes
	if first > tierMinutes {
		first = tierMinutes
	}
	rest := netMinutes - first

	total := decimal.NewFromInt(first).Mul(base).
		Add(decimal.NewFromInt(rest).Mul(extended)).
		Add(decimal.NewFromInt(nightMinutes).Mul(bonus))
	return total.Round(0).IntPart()
}

// Calculate computes one day's summary. It is pure: the same inputs always
// give the same output. ComputedAt is left for the caller.
func Calculate(day attendance.DailyAttendance, cfg worktime.RuleConfig, dc DayContext) worktime.DailyWorkSummary {
	summary := worktime.DailyWorkSummary{
		EmployeeID:   day.EmployeeID,
		WorkDate:     day.WorkDate,
		DayType:      dc.DayType,
		RuleConfigID: cfg.ID,
		Status:       worktime.StatusTimeError,
	}
	// Days held for review score as time errors until corrected.
	if day.ReviewReason != nil {
		return summary
	}
	if day.CheckIn == nil || day.CheckOut == nil || !day.CheckOut.After(*day.CheckIn) {
		return summary
	}
	checkIn, checkOut := *day.CheckIn, *day.CheckOut

	rawMinutes := int64(checkOut.Sub(checkIn) / time.Minute)
	lunchStart := cfg.LunchStart.On(day.WorkDate)
	lunchEnd := lunchStart.Add(time.Duration(cfg.LunchMinutes) * time.Minute)
	lunchOverlap := int64(overlap(checkIn, checkOut, lunchStart, lunchEnd) / time.Minute)

	summary.BreakMinutes = BreakMinutes(rawMinutes, lunchOverlap, day.HadDinner)
	netMinutes := rawMinutes - summary.BreakMinutes
	if netMinutes <= 0 {
		return summary
	}

	threshold := cfg.OvertimeThresholdMinutes
	if dc.FlexPeriod {
		threshold = cfg.FlexOvertimeThresholdMinutes
	}
	summary.BasicMinutes = netMinutes
	if netMinutes > threshold {
		summary.BasicMinutes = threshold
		summary.OvertimeMinutes = netMinutes - threshold
	}
	summary.NightMinutes = NightMinutes(checkIn, checkOut, cfg.NightStart, cfg.NightEnd)

	switch dc.DayType {
	case worktime.DayTypeSaturday:
		summary.SubstituteMinutesEarned = Accrual(netMinutes, summary.NightMinutes, cfg.AccrualTierMinutes,
			cfg.SaturdayBaseRate, cfg.SaturdayExtendedRate, cfg.NightAccrualBonusRate)
	case worktime.DayTypeSunday, worktime.DayTypeHoliday:
		summary.CompensatoryMinutesEarned = Accrual(netMinutes, summary.NightMinutes, cfg.AccrualTierMinutes,
			cfg.HolidayBaseRate, cfg.HolidayExtendedRate, cfg.NightAccrualBonusRate)
	}

	summary.Status = dayStatus(checkIn, checkOut, day.WorkDate, cfg, dc.DayType)
	return summary
}

// dayStatus applies the configured schedule on weekdays only.
func dayStatus(checkIn, checkOut, workDate time.Time, cfg worktime.RuleConfig, dayType worktime.DayType) worktime.Status {
	if dayType != worktime.DayTypeWeekday {
		return worktime.StatusNormal
	}
	if cfg.WorkStart != nil {
		deadline := cfg.WorkStart.On(workDate).Add(time.Duration(cfg.GraceMinutes) * time.Minute)
		if checkIn.After(deadline) {
			return worktime.StatusLate
		}
	}
	if cfg.WorkEnd != nil && checkOut.Before(cfg.WorkEnd.On(workDate)) {
		return worktime.StatusEarlyLeave
	}
	return worktime.StatusNormal
}

// AbsentSummary is the result for a weekday with no attendance at all.
func AbsentSummary(employeeID string, workDate time.Time, cfg worktime.RuleConfig) worktime.DailyWorkSummary {
	return worktime.DailyWorkSummary{
		EmployeeID:   employeeID,
		WorkDate:     workDate,
		DayType:      worktime.DayTypeWeekday,
		Status:       worktime.StatusAbsent,
		RuleConfigID: cfg.ID,
	}
}
