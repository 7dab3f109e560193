package leave

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/worktime"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEarnedBank_AvailableNetsDebits(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := memory.NewLedgerRepository(store)
	summaries := memory.NewSummaryRepository(store)

	_, err := summaries.Upsert(ctx, worktime.DailyWorkSummary{
		EmployeeID:              "emp-1",
		WorkDate:                time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC),
		DayType:                 worktime.DayTypeSaturday,
		BasicMinutes:            480,
		SubstituteMinutesEarned: 480,
		Status:                  worktime.StatusNormal,
	})
	require.NoError(t, err)
	_, err = summaries.Upsert(ctx, worktime.DailyWorkSummary{
		EmployeeID:                "emp-1",
		WorkDate:                  time.Date(2025, 6, 22, 0, 0, 0, 0, time.UTC),
		DayType:                   worktime.DayTypeSunday,
		BasicMinutes:              240,
		CompensatoryMinutesEarned: 360,
		Status:                    worktime.StatusNormal,
	})
	require.NoError(t, err)
	_, err = ledger.Append(ctx, leave.Transaction{EmployeeID: "emp-1", Kind: leave.KindSubstitute, Type: leave.TransactionDebit, Minutes: 300})
	require.NoError(t, err)

	var bank worktime.EarnedLeaveBank = NewEarnedBank(ledger, summaries)
	require.NoError(t, bank.LockEmployee(ctx, "emp-1"))
	substitute, compensatory, err := bank.EarnedAvailable(ctx, "emp-1")
	require.NoError(t, err)

	assert.Equal(t, int64(180), substitute)
	assert.Equal(t, int64(360), compensatory)
}
