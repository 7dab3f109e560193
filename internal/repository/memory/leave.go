package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/leave"
)

type LedgerRepository struct {
	s *Store
}

func NewLedgerRepository(s *Store) *LedgerRepository {
	return &LedgerRepository{s: s}
}

// LockEmployee is a no-op; the transactor already serializes writers.
func (r *LedgerRepository) LockEmployee(context.Context, string) error {
	return nil
}

func (r *LedgerRepository) Append(_ context.Context, tx leave.Transaction) (leave.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tx.ID = newID()
	tx.CreatedAt = time.Now().UTC()
	r.s.t.ledger = append(r.s.t.ledger, tx)
	return tx, nil
}

func (r *LedgerRepository) SumByEmployee(_ context.Context, employeeID string) (leave.LedgerTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	totals := leave.NewLedgerTotals()
	for _, tx := range r.s.t.ledger {
		if tx.EmployeeID != employeeID {
			continue
		}
		switch tx.Type {
		case leave.TransactionGrant:
			totals.Granted[tx.Kind] += tx.Minutes
		case leave.TransactionDebit:
			totals.Debited[tx.Kind] += tx.Minutes
		}
	}
	return totals, nil
}

func (r *LedgerRepository) ListByEmployee(_ context.Context, employeeID string) ([]leave.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []leave.Transaction
	for _, tx := range r.s.t.ledger {
		if tx.EmployeeID == employeeID {
			out = append(out, tx)
		}
	}
	return out, nil
}
