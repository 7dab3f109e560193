package auth

import "errors"

var (
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
	// ErrEmployeeScopeRequired is returned when a non-admin caller reaches
	// for another employee's records.
	ErrEmployeeScopeRequired = errors.New("access is limited to your own employee records")
)
