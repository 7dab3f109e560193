package settlement

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/settlement"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Settlement"

var exportHeader = []string{
	"employee_id",
	"employee_code",
	"employee_name",
	"total_work_hours",
	"weekly_avg_hours",
	"total_night_hours",
	"hourly_rate",
	"overtime_allowance_amount",
	"night_allowance_already_paid",
	"net_overtime_allowance",
}

func exportRow(s settlement.QuarterlySettlement) []string {
	return []string{
		s.EmployeeID,
		derefOrEmpty(s.EmployeeCode),
		derefOrEmpty(s.EmployeeName),
		s.TotalWorkHours.StringFixed(2),
		s.WeeklyAvgHours.StringFixed(2),
		s.TotalNightHours.StringFixed(2),
		s.HourlyRate.StringFixed(2),
		s.OvertimeAllowanceAmount.StringFixed(2),
		s.NightAllowanceAlreadyPaid.StringFixed(2),
		s.NetOvertimeAllowance.StringFixed(2),
	}
}

// RenderCSV writes a header row and one line per employee.
func RenderCSV(rows []settlement.QuarterlySettlement) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(exportRow(row)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderXLSX renders the same table as a workbook. Numeric columns are stored as numbers.
func RenderXLSX(rows []settlement.QuarterlySettlement) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for i, h := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for r, row := range rows {
		values := []any{
			row.EmployeeID,
			derefOrEmpty(row.EmployeeCode),
			derefOrEmpty(row.EmployeeName),
			row.TotalWorkHours.InexactFloat64(),
			row.WeeklyAvgHours.InexactFloat64(),
			row.TotalNightHours.InexactFloat64(),
			row.HourlyRate.InexactFloat64(),
			row.OvertimeAllowanceAmount.InexactFloat64(),
			row.NightAllowanceAlreadyPaid.InexactFloat64(),
			row.NetOvertimeAllowance.InexactFloat64(),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", r+1, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func derefOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
