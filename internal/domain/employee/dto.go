package employee

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateEmployeeRequest struct {
	FullName     string          `json:"full_name"`
	EmployeeCode *string         `json:"employee_code,omitempty"`
	HourlyRate   decimal.Decimal `json:"hourly_rate"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{Field: "full_name", Message: "full_name is required"})
	}
	if r.EmployeeCode != nil && validator.IsEmpty(*r.EmployeeCode) {
		errs = append(errs, validator.ValidationError{Field: "employee_code", Message: "employee_code must not be blank"})
	}
	if r.HourlyRate.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "hourly_rate", Message: "hourly_rate must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeResponse struct {
	ID               string           `json:"id"`
	FullName         string           `json:"full_name"`
	EmployeeCode     *string          `json:"employee_code,omitempty"`
	HourlyRate       decimal.Decimal  `json:"hourly_rate"`
	EmploymentStatus EmploymentStatus `json:"employment_status"`
	CreatedAt        time.Time        `json:"created_at"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:               e.ID,
		FullName:         e.FullName,
		EmployeeCode:     e.EmployeeCode,
		HourlyRate:       e.HourlyRate,
		EmploymentStatus: e.EmploymentStatus,
		CreatedAt:        e.CreatedAt,
	}
}
