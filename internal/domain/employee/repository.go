package employee

import "context"

// Directory is the identity collaborator: it turns the free-text names found
// in terminal exports into stable employee ids.
type Directory interface {
	// ResolveByName matches on the whitespace-stripped full name. When several
	// employees share the name, employeeNumber (may be empty) is used to pick one.
	ResolveByName(ctx context.Context, displayName string, employeeNumber string) (Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
}

type EmployeeRepository interface {
	Directory
	Create(ctx context.Context, employee Employee) (Employee, error)
}
