package settlement

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// NightAllowanceTotal sums payments over a range.
type NightAllowanceTotal struct {
	Amount decimal.Decimal
	Count  int
}

// ========== PERIOD DTOs ==========

type CreatePeriodRequest struct {
	Name       string `json:"name"`
	StartMonth string `json:"start_month"` // YYYY-MM
	EndMonth   string `json:"end_month"`   // YYYY-MM

	ParsedStart time.Time `json:"-"`
	ParsedEnd   time.Time `json:"-"`
}

func (r *CreatePeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	start, okStart := validator.IsValidYearMonth(r.StartMonth)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "start_month", Message: "start_month must be YYYY-MM"})
	}
	end, okEnd := validator.IsValidYearMonth(r.EndMonth)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "end_month", Message: "end_month must be YYYY-MM"})
	}
	if okStart && okEnd {
		r.ParsedStart, r.ParsedEnd = start, end
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PeriodResponse struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	StartMonth          string       `json:"start_month"`
	EndMonth            string       `json:"end_month"`
	StartDate           string       `json:"start_date"`
	EndDate             string       `json:"end_date"`
	Status              PeriodStatus `json:"status"`
	SettlementCompleted bool         `json:"settlement_completed"`
	SettledAt           *time.Time   `json:"settled_at,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
}

func NewPeriodResponse(p FlexWorkPeriod) PeriodResponse {
	return PeriodResponse{
		ID:                  p.ID,
		Name:                p.Name,
		StartMonth:          p.StartMonth.Format("2006-01"),
		EndMonth:            p.EndMonth.Format("2006-01"),
		StartDate:           p.StartDate().Format("2006-01-02"),
		EndDate:             p.EndDate().Format("2006-01-02"),
		Status:              p.Status,
		SettlementCompleted: p.SettlementCompleted,
		SettledAt:           p.SettledAt,
		CreatedAt:           p.CreatedAt,
	}
}

// ========== SETTLEMENT DTOs ==========

// RunResult is what a settlement run returns.
type RunResult struct {
	Period      FlexWorkPeriod
	Settlements []QuarterlySettlement
	CSVExport   []byte
	ArchivePath string
}

type SettlementResponse struct {
	EmployeeID                string          `json:"employee_id"`
	EmployeeName              *string         `json:"employee_name,omitempty"`
	EmployeeCode              *string         `json:"employee_code,omitempty"`
	TotalWorkHours            decimal.Decimal `json:"total_work_hours"`
	WeeklyAvgHours            decimal.Decimal `json:"weekly_avg_hours"`
	TotalNightHours           decimal.Decimal `json:"total_night_hours"`
	HourlyRate                decimal.Decimal `json:"hourly_rate"`
	OvertimeAllowanceAmount   decimal.Decimal `json:"overtime_allowance_amount"`
	NightAllowanceAlreadyPaid decimal.Decimal `json:"night_allowance_already_paid"`
	NetOvertimeAllowance      decimal.Decimal `json:"net_overtime_allowance"`
}

type RunResponse struct {
	Period      PeriodResponse       `json:"period"`
	Settlements []SettlementResponse `json:"settlements"`
	ArchivePath string               `json:"archive_path,omitempty"`
}

func NewRunResponse(r RunResult) RunResponse {
	rows := make([]SettlementResponse, 0, len(r.Settlements))
	for _, s := range r.Settlements {
		rows = append(rows, NewSettlementResponse(s))
	}
	return RunResponse{Period: NewPeriodResponse(r.Period), Settlements: rows, ArchivePath: r.ArchivePath}
}

func NewSettlementResponse(s QuarterlySettlement) SettlementResponse {
	return SettlementResponse{
		EmployeeID:                s.EmployeeID,
		EmployeeName:              s.EmployeeName,
		EmployeeCode:              s.EmployeeCode,
		TotalWorkHours:            s.TotalWorkHours,
		WeeklyAvgHours:            s.WeeklyAvgHours,
		TotalNightHours:           s.TotalNightHours,
		HourlyRate:                s.HourlyRate,
		OvertimeAllowanceAmount:   s.OvertimeAllowanceAmount,
		NightAllowanceAlreadyPaid: s.NightAllowanceAlreadyPaid,
		NetOvertimeAllowance:      s.NetOvertimeAllowance,
	}
}

// ========== NIGHT PAY DTOs ==========

type ProcessNightPayRequest struct {
	Month string `json:"month"` // YYYY-MM

	ParsedMonth time.Time `json:"-"`
}

func (r *ProcessNightPayRequest) Validate() error {
	m, ok := validator.IsValidYearMonth(r.Month)
	if !ok {
		return validator.ValidationErrors{{Field: "month", Message: "month must be YYYY-MM"}}
	}
	r.ParsedMonth = m
	return nil
}

type NightPayResult struct {
	Year      int                     `json:"year"`
	Month     int                     `json:"month"`
	Processed []NightAllowancePayment `json:"-"`
	// Skipped counts employees already paid for the month.
	Skipped int `json:"skipped"`
}

type NightPayResponse struct {
	Year      int                  `json:"year"`
	Month     int                  `json:"month"`
	Processed []NightPaymentDetail `json:"processed"`
	Skipped   int                  `json:"skipped"`
}

type NightPaymentDetail struct {
	EmployeeID string          `json:"employee_id"`
	NightHours decimal.Decimal `json:"night_hours"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	Amount     decimal.Decimal `json:"amount"`
}

// SettlementCompletedEvent is published to the broker after a run.
type SettlementCompletedEvent struct {
	PeriodID    string    `json:"period_id"`
	PeriodName  string    `json:"period_name"`
	Employees   int       `json:"employees"`
	TotalAmount string    `json:"total_overtime_allowance"`
	CompletedAt time.Time `json:"completed_at"`
}

func NewNightPayResponse(r NightPayResult) NightPayResponse {
	details := make([]NightPaymentDetail, 0, len(r.Processed))
	for _, p := range r.Processed {
		details = append(details, NightPaymentDetail{
			EmployeeID: p.EmployeeID,
			NightHours: decimal.NewFromInt(p.NightMinutes).Div(decimal.NewFromInt(60)).Round(2),
			HourlyRate: p.HourlyRate,
			Amount:     p.Amount,
		})
	}
	return NightPayResponse{Year: r.Year, Month: r.Month, Processed: details, Skipped: r.Skipped}
}
