package employee

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID               string
	EmployeeCode     *string
	FullName         string
	HourlyRate       decimal.Decimal
	EmploymentStatus EmploymentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// NormalizeName strips every whitespace rune so that "이 재혁" and "이재혁"
// resolve to the same person.
func NormalizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
}

// PickMatch chooses among employees sharing a normalized name. A single match
// wins; several are narrowed by employee code and must leave exactly one.
func PickMatch(matches []Employee, employeeNumber string) (Employee, error) {
	switch len(matches) {
	case 0:
		return Employee{}, ErrEmployeeNotFound
	case 1:
		return matches[0], nil
	}
	if employeeNumber == "" {
		return Employee{}, ErrAmbiguousName
	}
	var picked []Employee
	for _, m := range matches {
		if m.EmployeeCode != nil && *m.EmployeeCode == employeeNumber {
			picked = append(picked, m)
		}
	}
	if len(picked) != 1 {
		return Employee{}, ErrAmbiguousName
	}
	return picked[0], nil
}
