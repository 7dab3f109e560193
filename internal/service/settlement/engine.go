package settlement

import (
	"sort"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/settlement"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/worktime"
	"github.com/shopspring/decimal"
)

var (
	daysPerWeek = decimal.NewFromInt(7)
	hourMinutes = decimal.NewFromInt(60)
)

// EmployeeTotals is one employee's period sum of daily summaries.
type EmployeeTotals struct {
	EmployeeID    string
	WorkedMinutes int64
	NightMinutes  int64
}

// Aggregate sums basic+overtime and night minutes per employee, ordered by id.
func Aggregate(summaries []worktime.DailyWorkSummary) []EmployeeTotals {
	byEmployee := make(map[string]*EmployeeTotals)
	for _, s := range summaries {
		t, ok := byEmployee[s.EmployeeID]
		if !ok {
			t = &EmployeeTotals{EmployeeID: s.EmployeeID}
			byEmployee[s.EmployeeID] = t
		}
		t.WorkedMinutes += s.WorkedMinutes()
		t.NightMinutes += s.NightMinutes
	}

	totals := make([]EmployeeTotals, 0, len(byEmployee))
	for _, t := range byEmployee {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].EmployeeID < totals[j].EmployeeID })
	return totals
}

// WeeksInPeriod is calendar days divided by seven.
func WeeksInPeriod(p settlement.FlexWorkPeriod) decimal.Decimal {
	return decimal.NewFromInt(int64(p.Days())).Div(daysPerWeek)
}

// Settle computes one employee's row:
//
//	overtime = max(0, weeklyAvg - baseline) * weeks * hourlyRate * multiplier
//
// The already-paid night allowance is carried alongside and never subtracted.
func Settle(
	period settlement.FlexWorkPeriod,
	totals EmployeeTotals,
	hourlyRate decimal.Decimal,
	nightPaid decimal.Decimal,
	cfg worktime.RuleConfig,
) settlement.QuarterlySettlement {
	weeks := WeeksInPeriod(period)
	totalHours := decimal.NewFromInt(totals.WorkedMinutes).Div(hourMinutes)
	weeklyAvg := totalHours.Div(weeks)

	excess := weeklyAvg.Sub(cfg.WeeklyBaselineHours)
	if excess.IsNegative() {
		excess = decimal.Zero
	}
	amount := excess.Mul(weeks).Mul(hourlyRate).Mul(cfg.OvertimeRateMultiplier).Round(2)

	return settlement.QuarterlySettlement{
		PeriodID:                  period.ID,
		EmployeeID:                totals.EmployeeID,
		TotalWorkHours:            totalHours.Round(2),
		WeeklyAvgHours:            weeklyAvg.Round(2),
		TotalNightHours:           decimal.NewFromInt(totals.NightMinutes).Div(hourMinutes).Round(2),
		OvertimeAllowanceAmount:   amount,
		NightAllowanceAlreadyPaid: nightPaid.Round(2),
		NetOvertimeAllowance:      amount,
		HourlyRate:                hourlyRate,
	}
}

// NightAllowance is night hours * hourly rate * night multiplier.
func NightAllowance(nightMinutes int64, hourlyRate, multiplier decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(nightMinutes).Div(hourMinutes).Mul(hourlyRate).Mul(multiplier).Round(2)
}
