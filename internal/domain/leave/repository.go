package leave

import "context"

type LedgerRepository interface {
	// LockEmployee serializes ledger writes for one employee within the current transaction.
	LockEmployee(ctx context.Context, employeeID string) error
	Append(ctx context.Context, tx Transaction) (Transaction, error)
	SumByEmployee(ctx context.Context, employeeID string) (LedgerTotals, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Transaction, error)
}

// AccrualSource sums earned credits from the stored daily work summaries.
type AccrualSource interface {
	SumEarned(ctx context.Context, employeeID string) (EarnedMinutes, error)
}
