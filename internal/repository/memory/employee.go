package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
)

type EmployeeRepository struct {
	s *Store
}

func NewEmployeeRepository(s *Store) *EmployeeRepository {
	return &EmployeeRepository{s: s}
}

func (r *EmployeeRepository) Create(_ context.Context, e employee.Employee) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if e.ID == "" {
		e.ID = newID()
	}
	if e.EmploymentStatus == "" {
		e.EmploymentStatus = employee.EmploymentStatusActive
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	r.s.t.employees[e.ID] = e
	return e, nil
}

func (r *EmployeeRepository) ResolveByName(_ context.Context, displayName, employeeNumber string) (employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	name := employee.NormalizeName(displayName)
	var matches []employee.Employee
	for _, e := range r.s.t.employees {
		if employee.NormalizeName(e.FullName) == name {
			matches = append(matches, e)
		}
	}
	return employee.PickMatch(matches, employeeNumber)
}

func (r *EmployeeRepository) GetByID(_ context.Context, id string) (employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.t.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *EmployeeRepository) ListActive(_ context.Context) ([]employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []employee.Employee
	for _, e := range r.s.t.employees {
		if e.EmploymentStatus == employee.EmploymentStatusActive {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}
