package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/worktime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactor_RollbackRestoresSnapshot(t *testing.T) {
	s := NewStore()
	tx := NewTransactor(s)
	ledger := NewLedgerRepository(s)
	ctx := context.Background()

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := ledger.Append(ctx, leave.Transaction{EmployeeID: "emp-1", Kind: leave.KindAnnual, Type: leave.TransactionGrant, Minutes: 480})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	txs, err := ledger.ListByEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestTransactor_NestedJoinsOuter(t *testing.T) {
	s := NewStore()
	tx := NewTransactor(s)
	ledger := NewLedgerRepository(s)
	ctx := context.Background()

	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := ledger.Append(ctx, leave.Transaction{EmployeeID: "emp-1", Kind: leave.KindAnnual, Type: leave.TransactionGrant, Minutes: 480}); err != nil {
			return err
		}
		return tx.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := ledger.Append(ctx, leave.Transaction{EmployeeID: "emp-1", Kind: leave.KindAnnual, Type: leave.TransactionDebit, Minutes: 240})
			return err
		})
	})
	require.NoError(t, err)

	totals, err := ledger.SumByEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, int64(480), totals.Granted[leave.KindAnnual])
	assert.Equal(t, int64(240), totals.Debited[leave.KindAnnual])
}

func TestRuleConfigRepository_GetEffective(t *testing.T) {
	s := NewStore()
	rules := NewRuleConfigRepository(s)
	ctx := context.Background()

	_, err := rules.GetEffective(ctx, time.Date(2025, 6, 19, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, worktime.ErrConfigurationMissing)

	old, err := rules.Create(ctx, worktime.DefaultRuleConfig(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	newer := worktime.DefaultRuleConfig(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	newer.OvertimeThresholdMinutes = 420
	created, err := rules.Create(ctx, newer)
	require.NoError(t, err)

	got, err := rules.GetEffective(ctx, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, old.ID, got.ID)

	got, err = rules.GetEffective(ctx, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}
