package leave

import (
	"github.com/cmlabs-hris/attendance-engine/internal/domain/leave"
	"github.com/shopspring/decimal"
)

var (
	minutesPerHour = decimal.NewFromInt(60)
	minutesPerDay  = decimal.NewFromInt(leave.MinutesPerDay)
	unitHours      = decimal.NewFromInt(leave.MinimumUnitMinutes / 60)
)

// Available returns the minutes left in one bank.
func Available(kind leave.Kind, totals leave.LedgerTotals, earned leave.EarnedMinutes) int64 {
	switch kind {
	case leave.KindSubstitute:
		return earned.Substitute + totals.Granted[kind] - totals.Debited[kind]
	case leave.KindCompensatory:
		return earned.Compensatory + totals.Granted[kind] - totals.Debited[kind]
	default:
		return totals.Granted[kind] - totals.Debited[kind]
	}
}

// Balance derives the employee's balance from the ledger and earned credits.
func Balance(employeeID string, totals leave.LedgerTotals, earned leave.EarnedMinutes) leave.LeaveBalance {
	return leave.LeaveBalance{
		EmployeeID:             employeeID,
		AnnualDays:             toDays(totals.Granted[leave.KindAnnual]),
		UsedAnnualDays:         toDays(totals.Debited[leave.KindAnnual]),
		SickDays:               toDays(totals.Granted[leave.KindSick]),
		UsedSickDays:           toDays(totals.Debited[leave.KindSick]),
		SubstituteLeaveHours:   toHours(Available(leave.KindSubstitute, totals, earned)),
		CompensatoryLeaveHours: toHours(Available(leave.KindCompensatory, totals, earned)),
	}
}

// ValidUnit reports whether hours is a positive whole number of half days.
func ValidUnit(hours decimal.Decimal) bool {
	return hours.IsPositive() && hours.Mod(unitHours).IsZero()
}

// CheckDebit decides a debit of hours against available minutes. Rejections
// are returned as a reason; nothing is ever clamped.
func CheckDebit(hours decimal.Decimal, availableMinutes int64) (int64, leave.RejectReason, bool) {
	if !ValidUnit(hours) {
		return 0, leave.RejectInvalidUnit, false
	}
	requested := hours.Mul(minutesPerHour).IntPart()
	if requested > availableMinutes {
		return requested, leave.RejectInsufficientBalance, false
	}
	return requested, "", true
}

// DaysToMinutes converts a grant in days, rounding half up to whole minutes.
func DaysToMinutes(days decimal.Decimal) int64 {
	return days.Mul(minutesPerDay).Round(0).IntPart()
}

func toDays(minutes int64) decimal.Decimal {
	return decimal.NewFromInt(minutes).Div(minutesPerDay)
}

func toHours(minutes int64) decimal.Decimal {
	return decimal.NewFromInt(minutes).Div(minutesPerHour)
}
