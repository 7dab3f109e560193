package settlement

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/settlement"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/worktime"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func thirdQuarter() settlement.FlexWorkPeriod {
	return settlement.FlexWorkPeriod{
		ID:         "period-1",
		Name:       "2025 Q3",
		StartMonth: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		EndMonth:   time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		Status:     settlement.PeriodStatusActive,
	}
}

func ruleConfig() worktime.RuleConfig {
	return worktime.DefaultRuleConfig(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestAggregate(t *testing.T) {
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	totals := Aggregate([]worktime.DailyWorkSummary{
		{EmployeeID: "b", WorkDate: day, BasicMinutes: 480, OvertimeMinutes: 60, NightMinutes: 30},
		{EmployeeID: "a", WorkDate: day, BasicMinutes: 300},
		{EmployeeID: "b", WorkDate: day.AddDate(0, 0, 1), BasicMinutes: 480, NightMinutes: 15},
		{EmployeeID: "a", WorkDate: day.AddDate(0, 0, 1), Status: worktime.StatusAbsent},
	})

	require.Len(t, totals, 2)
	assert.Equal(t, EmployeeTotals{EmployeeID: "a", WorkedMinutes: 300}, totals[0])
	assert.Equal(t, EmployeeTotals{EmployeeID: "b", WorkedMinutes: 1020, NightMinutes: 45}, totals[1])
}

func TestWeeksInPeriod(t *testing.T) {
	p := thirdQuarter()

	assert.Equal(t, 92, p.Days())
	assert.Equal(t, "13.14", WeeksInPeriod(p).StringFixed(2))
}

func TestSettle_AboveBaseline(t *testing.T) {
	row := Settle(thirdQuarter(), EmployeeTotals{EmployeeID: "a", WorkedMinutes: 600 * 60, NightMinutes: 90},
		decimal.NewFromInt(10000), decimal.NewFromInt(7500), ruleConfig())

	assert.Equal(t, "600.00", row.TotalWorkHours.StringFixed(2))
	assert.Equal(t, "45.65", row.WeeklyAvgHours.StringFixed(2))
	assert.Equal(t, "1.50", row.TotalNightHours.StringFixed(2))
	assert.Equal(t, "1114285.71", row.OvertimeAllowanceAmount.StringFixed(2))
	assert.True(t, row.NetOvertimeAllowance.Equal(row.OvertimeAllowanceAmount), "night pay is shown, never subtracted")
	assert.Equal(t, "7500.00", row.NightAllowanceAlreadyPaid.StringFixed(2))
	assert.Equal(t, "period-1", row.PeriodID)
}

func TestSettle_BelowBaseline(t *testing.T) {
	row := Settle(thirdQuarter(), EmployeeTotals{EmployeeID: "a", WorkedMinutes: 500 * 60},
		decimal.NewFromInt(10000), decimal.Zero, ruleConfig())

	assert.True(t, row.OvertimeAllowanceAmount.IsZero())
	assert.True(t, row.NetOvertimeAllowance.IsZero())
}

func TestNightAllowance(t *testing.T) {
	got := NightAllowance(90, decimal.NewFromInt(10000), decimal.NewFromFloat(0.5))
	assert.Equal(t, "7500.00", got.StringFixed(2))

	got = NightAllowance(7, decimal.NewFromInt(9860), decimal.NewFromFloat(0.5))
	assert.Equal(t, "575.17", got.StringFixed(2))
}

func sampleRows() []settlement.QuarterlySettlement {
	name, code := "이재혁", "1001"
	return []settlement.QuarterlySettlement{{
		PeriodID:                  "period-1",
		EmployeeID:                "emp-1",
		EmployeeName:              &name,
		EmployeeCode:              &code,
		TotalWorkHours:            decimal.NewFromInt(600),
		WeeklyAvgHours:            decimal.RequireFromString("45.65"),
		TotalNightHours:           decimal.RequireFromString("1.5"),
		HourlyRate:                decimal.NewFromInt(10000),
		OvertimeAllowanceAmount:   decimal.RequireFromString("1114285.71"),
		NightAllowanceAlreadyPaid: decimal.NewFromInt(7500),
		NetOvertimeAllowance:      decimal.RequireFromString("1114285.71"),
	}}
}

func TestRenderCSV(t *testing.T) {
	out, err := RenderCSV(sampleRows())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, []string{"emp-1", "1001", "이재혁", "600.00", "45.65", "1.50", "10000.00", "1114285.71", "7500.00", "1114285.71"}, records[1])

	empty, err := RenderCSV(nil)
	require.NoError(t, err)
	records, err = csv.NewReader(bytes.NewReader(empty)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRenderXLSX(t *testing.T) {
	out, err := RenderXLSX(sampleRows())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(exportSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "employee_id", header)

	name, err := f.GetCellValue(exportSheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "이재혁", name)

	hours, err := f.GetCellValue(exportSheet, "D2")
	require.NoError(t, err)
	assert.Equal(t, "600", hours)
}
