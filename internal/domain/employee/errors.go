package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	// ErrAmbiguousName is returned when a display name matches more than one
	// employee and the record carries no employee number to tell them apart.
	ErrAmbiguousName = errors.New("display name matches more than one employee")
)
