package leave

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

type LeaveServiceImpl struct {
	tx         database.Transactor
	ledgerRepo leave.LedgerRepository
	accruals   leave.AccrualSource
	directory  employee.Directory
}

func NewLeaveService(
	tx database.Transactor,
	ledgerRepo leave.LedgerRepository,
	accruals leave.AccrualSource,
	directory employee.Directory,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:         tx,
		ledgerRepo: ledgerRepo,
		accruals:   accruals,
		directory:  directory,
	}
}

func (s *LeaveServiceImpl) load(ctx context.Context, employeeID string) (leave.LedgerTotals, leave.EarnedMinutes, error) {
	return loadLedger(ctx, s.ledgerRepo, s.accruals, employeeID)
}

func loadLedger(ctx context.Context, ledgerRepo leave.LedgerRepository, accruals leave.AccrualSource, employeeID string) (leave.LedgerTotals, leave.EarnedMinutes, error) {
	totals, err := ledgerRepo.SumByEmployee(ctx, employeeID)
	if err != nil {
		return leave.LedgerTotals{}, leave.EarnedMinutes{}, fmt.Errorf("failed to sum leave ledger: %w", err)
	}
	earned, err := accruals.SumEarned(ctx, employeeID)
	if err != nil {
		return leave.LedgerTotals{}, leave.EarnedMinutes{}, fmt.Errorf("failed to sum earned leave: %w", err)
	}
	return totals, earned, nil
}

// GetLeaveBalance implements leave.LeaveService.
func (s *LeaveServiceImpl) GetLeaveBalance(ctx context.Context, employeeID string) (leave.LeaveBalance, error) {
	if _, err := s.directory.GetByID(ctx, employeeID); err != nil {
		return leave.LeaveBalance{}, err
	}
	totals, earned, err := s.load(ctx, employeeID)
	if err != nil {
		return leave.LeaveBalance{}, err
	}
	return Balance(employeeID, totals, earned), nil
}

// DebitLeave implements leave.LeaveService.
func (s *LeaveServiceImpl) DebitLeave(ctx context.Context, req leave.DebitLeaveRequest) (leave.DebitResult, error) {
	if err := req.Validate(); err != nil {
		return leave.DebitResult{}, err
	}
	if _, err := s.directory.GetByID(ctx, req.EmployeeID); err != nil {
		return leave.DebitResult{}, err
	}

	result := leave.DebitResult{Requested: req.Hours}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.ledgerRepo.LockEmployee(ctx, req.EmployeeID); err != nil {
			return fmt.Errorf("failed to lock leave ledger: %w", err)
		}
		totals, earned, err := s.load(ctx, req.EmployeeID)
		if err != nil {
			return err
		}

		available := Available(req.Kind, totals, earned)
		result.Available = toHours(available)

		minutes, reason, ok := CheckDebit(req.Hours, available)
		if !ok {
			result.Reason = reason
			result.Balance = Balance(req.EmployeeID, totals, earned)
			return nil
		}

		tx, err := s.ledgerRepo.Append(ctx, leave.Transaction{
			EmployeeID: req.EmployeeID,
			Kind:       req.Kind,
			Type:       leave.TransactionDebit,
			Minutes:    minutes,
			Reference:  req.Reference,
		})
		if err != nil {
			return fmt.Errorf("failed to append leave debit: %w", err)
		}
		totals.Debited[req.Kind] += minutes

		result.Approved = true
		result.Transaction = &tx
		result.Balance = Balance(req.EmployeeID, totals, earned)
		return nil
	})
	if err != nil {
		return leave.DebitResult{}, err
	}

	if result.Approved {
		slog.Info("Leave debited", "employee_id", req.EmployeeID, "kind", req.Kind, "hours", req.Hours.String())
	} else {
		slog.Info("Leave debit rejected", "employee_id", req.EmployeeID, "kind", req.Kind, "hours", req.Hours.String(), "reason", result.Reason)
	}
	return result, nil
}

// Grant implements leave.LeaveService.
func (s *LeaveServiceImpl) Grant(ctx context.Context, req leave.GrantLeaveRequest) (leave.LeaveBalance, error) {
	if req.Kind.Earned() {
		return leave.LeaveBalance{}, leave.ErrGrantNotAllowed
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveBalance{}, err
	}
	if _, err := s.directory.GetByID(ctx, req.EmployeeID); err != nil {
		return leave.LeaveBalance{}, err
	}

	var balance leave.LeaveBalance
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.ledgerRepo.LockEmployee(ctx, req.EmployeeID); err != nil {
			return fmt.Errorf("failed to lock leave ledger: %w", err)
		}
		if _, err := s.ledgerRepo.Append(ctx, leave.Transaction{
			EmployeeID: req.EmployeeID,
			Kind:       req.Kind,
			Type:       leave.TransactionGrant,
			Minutes:    DaysToMinutes(req.Days),
			Reference:  req.Reference,
		}); err != nil {
			return fmt.Errorf("failed to append leave grant: %w", err)
		}
		totals, earned, err := s.load(ctx, req.EmployeeID)
		if err != nil {
			return err
		}
		balance = Balance(req.EmployeeID, totals, earned)
		return nil
	})
	if err != nil {
		return leave.LeaveBalance{}, err
	}

	slog.Info("Leave granted", "employee_id", req.EmployeeID, "kind", req.Kind, "days", req.Days.String())
	return balance, nil
}

// ListTransactions implements leave.LeaveService.
func (s *LeaveServiceImpl) ListTransactions(ctx context.Context, employeeID string) ([]leave.Transaction, error) {
	if _, err := s.directory.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.ledgerRepo.ListByEmployee(ctx, employeeID)
}
