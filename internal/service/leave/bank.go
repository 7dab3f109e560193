package leave

import (
	"context"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/leave"
)

// EarnedBank exposes the substitute and compensatory balances to the work
// time service, which must not recompute a credit below what was already used.
type EarnedBank struct {
	ledgerRepo leave.LedgerRepository
	accruals   leave.AccrualSource
}

func NewEarnedBank(ledgerRepo leave.LedgerRepository, accruals leave.AccrualSource) *EarnedBank {
	return &EarnedBank{ledgerRepo: ledgerRepo, accruals: accruals}
}

func (b *EarnedBank) LockEmployee(ctx context.Context, employeeID string) error {
	return b.ledgerRepo.LockEmployee(ctx, employeeID)
}

// EarnedAvailable returns the remaining substitute and compensatory minutes.
func (b *EarnedBank) EarnedAvailable(ctx context.Context, employeeID string) (int64, int64, error) {
	totals, earned, err := loadLedger(ctx, b.ledgerRepo, b.accruals, employeeID)
	if err != nil {
		return 0, 0, err
	}
	return Available(leave.KindSubstitute, totals, earned), Available(leave.KindCompensatory, totals, earned), nil
}
