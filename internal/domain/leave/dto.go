package leave

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type DebitLeaveRequest struct {
	EmployeeID string          `json:"employee_id"`
	Kind       Kind            `json:"kind"`
	Hours      decimal.Decimal `json:"hours"`
	Reference  *string         `json:"reference,omitempty"`
}

func (r *DebitLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if !r.Kind.Valid() {
		errs = append(errs, validator.ValidationError{Field: "kind", Message: "kind must be one of: annual, sick, substitute, compensatory"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type GrantLeaveRequest struct {
	EmployeeID string          `json:"employee_id"`
	Kind       Kind            `json:"kind"`
	Days       decimal.Decimal `json:"days"`
	Reference  *string         `json:"reference,omitempty"`
}

func (r *GrantLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if !r.Kind.Valid() {
		errs = append(errs, validator.ValidationError{Field: "kind", Message: "kind must be one of: annual, sick"})
	}
	if !validator.IsPositive(r.Days) {
		errs = append(errs, validator.ValidationError{Field: "days", Message: "days must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LeaveBalanceResponse struct {
	EmployeeID             string          `json:"employee_id"`
	AnnualDays             decimal.Decimal `json:"annual_days"`
	UsedAnnualDays         decimal.Decimal `json:"used_annual_days"`
	RemainingAnnualDays    decimal.Decimal `json:"remaining_annual_days"`
	SickDays               decimal.Decimal `json:"sick_days"`
	UsedSickDays           decimal.Decimal `json:"used_sick_days"`
	RemainingSickDays      decimal.Decimal `json:"remaining_sick_days"`
	SubstituteLeaveHours   decimal.Decimal `json:"substitute_leave_hours"`
	CompensatoryLeaveHours decimal.Decimal `json:"compensatory_leave_hours"`
}

func NewLeaveBalanceResponse(b LeaveBalance) LeaveBalanceResponse {
	return LeaveBalanceResponse{
		EmployeeID:             b.EmployeeID,
		AnnualDays:             b.AnnualDays,
		UsedAnnualDays:         b.UsedAnnualDays,
		RemainingAnnualDays:    b.AnnualDays.Sub(b.UsedAnnualDays),
		SickDays:               b.SickDays,
		UsedSickDays:           b.UsedSickDays,
		RemainingSickDays:      b.SickDays.Sub(b.UsedSickDays),
		SubstituteLeaveHours:   b.SubstituteLeaveHours,
		CompensatoryLeaveHours: b.CompensatoryLeaveHours,
	}
}

type DebitResultResponse struct {
	Approved  bool                 `json:"approved"`
	Reason    RejectReason         `json:"reason,omitempty"`
	Requested decimal.Decimal      `json:"requested_hours"`
	Available decimal.Decimal      `json:"available_hours"`
	Balance   LeaveBalanceResponse `json:"balance"`
}

func NewDebitResultResponse(r DebitResult) DebitResultResponse {
	return DebitResultResponse{
		Approved:  r.Approved,
		Reason:    r.Reason,
		Requested: r.Requested,
		Available: r.Available,
		Balance:   NewLeaveBalanceResponse(r.Balance),
	}
}

type TransactionResponse struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Type      TransactionType `json:"type"`
	Hours     decimal.Decimal `json:"hours"`
	Reference *string         `json:"reference,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewTransactionResponse(t Transaction) TransactionResponse {
	return TransactionResponse{
		ID:        t.ID,
		Kind:      t.Kind,
		Type:      t.Type,
		Hours:     decimal.NewFromInt(t.Minutes).Div(decimal.NewFromInt(60)),
		Reference: t.Reference,
		CreatedAt: t.CreatedAt,
	}
}
