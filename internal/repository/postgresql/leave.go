package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

type ledgerRepositoryImpl struct {
	db *database.DB
}

func NewLedgerRepository(db *database.DB) leave.LedgerRepository {
	return &ledgerRepositoryImpl{db: db}
}

// LockEmployee implements leave.LedgerRepository.
func (r *ledgerRepositoryImpl) LockEmployee(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "leave:"+employeeID); err != nil {
		return fmt.Errorf("failed to lock leave ledger: %w", err)
	}
	return nil
}

// Append implements leave.LedgerRepository.
func (r *ledgerRepositoryImpl) Append(ctx context.Context, tx leave.Transaction) (leave.Transaction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_transactions (id, employee_id, kind, type, minutes, reference, created_at)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	if err := q.QueryRow(ctx, query, tx.EmployeeID, tx.Kind, tx.Type, tx.Minutes, tx.Reference).Scan(&tx.ID, &tx.CreatedAt); err != nil {
		return leave.Transaction{}, fmt.Errorf("failed to append leave transaction: %w", err)
	}
	return tx, nil
}

// SumByEmployee implements leave.LedgerRepository.
func (r *ledgerRepositoryImpl) SumByEmployee(ctx context.Context, employeeID string) (leave.LedgerTotals, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT kind, type, SUM(minutes)::bigint
		FROM leave_transactions
		WHERE employee_id = $1
		GROUP BY kind, type
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return leave.LedgerTotals{}, fmt.Errorf("failed to sum leave ledger: %w", err)
	}
	defer rows.Close()

	totals := leave.NewLedgerTotals()
	for rows.Next() {
		var (
			kind    leave.Kind
			txType  leave.TransactionType
			minutes int64
		)
		if err := rows.Scan(&kind, &txType, &minutes); err != nil {
			return leave.LedgerTotals{}, fmt.Errorf("failed to scan leave ledger total: %w", err)
		}
		switch txType {
		case leave.TransactionGrant:
			totals.Granted[kind] += minutes
		case leave.TransactionDebit:
			totals.Debited[kind] += minutes
		}
	}
	return totals, rows.Err()
}

// ListByEmployee implements leave.LedgerRepository.
func (r *ledgerRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]leave.Transaction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, kind, type, minutes, reference, created_at
		FROM leave_transactions
		WHERE employee_id = $1
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave transactions: %w", err)
	}
	defer rows.Close()

	var transactions []leave.Transaction
	for rows.Next() {
		var tx leave.Transaction
		if err := rows.Scan(&tx.ID, &tx.EmployeeID, &tx.Kind, &tx.Type, &tx.Minutes, &tx.Reference, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan leave transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}
