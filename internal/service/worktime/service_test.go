package worktime

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/settlement"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/worktime"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	leaveService "github.com/cmlabs-hris/attendance-engine/internal/service/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type worktimeFixture struct {
	svc       *WorktimeServiceImpl
	daily     *memory.DailyAttendanceRepository
	summaries *memory.SummaryRepository
	periods   *memory.PeriodRepository
	rules     *memory.RuleConfigRepository
	ledger    *memory.LedgerRepository
	loc       *time.Location
}

func newWorktimeFixture(t *testing.T, seedRules bool) *worktimeFixture {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	store := memory.NewStore()
	f := &worktimeFixture{
		daily:     memory.NewDailyAttendanceRepository(store),
		summaries: memory.NewSummaryRepository(store),
		periods:   memory.NewPeriodRepository(store),
		rules:     memory.NewRuleConfigRepository(store),
		ledger:    memory.NewLedgerRepository(store),
		loc:       loc,
	}
	if seedRules {
		_, err := f.rules.Create(context.Background(), worktime.DefaultRuleConfig(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)))
		require.NoError(t, err)
	}
	f.svc = NewWorktimeService(memory.NewTransactor(store), loc, f.daily, f.summaries,
		f.rules, memory.NewHolidayRepository(store), f.periods,
		leaveService.NewEarnedBank(f.ledger, f.summaries)).(*WorktimeServiceImpl)
	return f
}

func (f *worktimeFixture) date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, f.loc)
}

func (f *worktimeFixture) storeDay(t *testing.T, date time.Time, inH, inM, outH, outM int) {
	t.Helper()
	in := date.Add(time.Duration(inH)*time.Hour + time.Duration(inM)*time.Minute)
	out := date.Add(time.Duration(outH)*time.Hour + time.Duration(outM)*time.Minute)
	_, err := f.daily.Upsert(context.Background(), attendance.DailyAttendance{
		EmployeeID: "emp-1",
		WorkDate:   date,
		CheckIn:    &in,
		CheckOut:   &out,
	})
	require.NoError(t, err)
}

func TestRecomputeDay_Idempotent(t *testing.T) {
	f := newWorktimeFixture(t, true)
	ctx := context.Background()
	day := f.date(2025, 6, 19)
	f.storeDay(t, day, 9, 0, 16, 30)

	first := time.Date(2025, 6, 19, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return first }
	a, err := f.svc.RecomputeDay(ctx, "emp-1", day, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(390), a.BasicMinutes)

	f.svc.now = func() time.Time { return first.Add(time.Hour) }
	b, err := f.svc.RecomputeDay(ctx, "emp-1", day, nil)
	require.NoError(t, err)

	assert.True(t, a.SameFigures(b))
	assert.Equal(t, a.ID, b.ID)
	assert.True(t, b.ComputedAt.Equal(first), "unchanged figures keep the first computation time")
}

func TestRecomputeDay_DinnerFlag(t *testing.T) {
	f := newWorktimeFixture(t, true)
	ctx := context.Background()
	day := f.date(2025, 6, 19)
	f.storeDay(t, day, 9, 0, 21, 0)

	without, err := f.svc.RecomputeDay(ctx, "emp-1", day, nil)
	require.NoError(t, err)
	dinner := true
	with, err := f.svc.RecomputeDay(ctx, "emp-1", day, &dinner)
	require.NoError(t, err)

	assert.Equal(t, without.BreakMinutes+60, with.BreakMinutes)

	_, err = f.svc.RecomputeDay(ctx, "emp-1", f.date(2025, 6, 18), &dinner)
	assert.ErrorIs(t, err, attendance.ErrDailyAttendanceNotFound)
}

func TestRecomputeDay_CreditDropBeyondSpentBankRejected(t *testing.T) {
	f := newWorktimeFixture(t, true)
	ctx := context.Background()
	saturday := f.date(2025, 6, 21)
	f.storeDay(t, saturday, 9, 0, 18, 0)

	credited, err := f.svc.RecomputeDay(ctx, "emp-1", saturday, nil)
	require.NoError(t, err)
	require.Equal(t, int64(480), credited.SubstituteMinutesEarned)

	_, err = f.ledger.Append(ctx, leave.Transaction{
		EmployeeID: "emp-1",
		Kind:       leave.KindSubstitute,
		Type:       leave.TransactionDebit,
		Minutes:    480,
	})
	require.NoError(t, err)

	dinner := true
	_, err = f.svc.RecomputeDay(ctx, "emp-1", saturday, &dinner)
	assert.ErrorIs(t, err, worktime.ErrEarnedLeaveOverdrawn)
	assert.Contains(t, err.Error(), "short by 60 minutes")

	stored, err := f.summaries.Get(ctx, "emp-1", saturday)
	require.NoError(t, err)
	assert.Equal(t, int64(480), stored.SubstituteMinutesEarned)
	day, err := f.daily.Get(ctx, "emp-1", saturday)
	require.NoError(t, err)
	assert.False(t, day.HadDinner, "the dinner flag rolls back with the rejected recompute")
}

func TestRecomputeDay_CreditDropWithinBankAccepted(t *testing.T) {
	f := newWorktimeFixture(t, true)
	ctx := context.Background()
	saturday := f.date(2025, 6, 21)
	f.storeDay(t, saturday, 9, 0, 18, 0)

	_, err := f.svc.RecomputeDay(ctx, "emp-1", saturday, nil)
	require.NoError(t, err)
	_, err = f.ledger.Append(ctx, leave.Transaction{
		EmployeeID: "emp-1",
		Kind:       leave.KindSubstitute,
		Type:       leave.TransactionDebit,
		Minutes:    240,
	})
	require.NoError(t, err)

	dinner := true
	lowered, err := f.svc.RecomputeDay(ctx, "emp-1", saturday, &dinner)
	require.NoError(t, err)
	assert.Equal(t, int64(420), lowered.SubstituteMinutesEarned)
}

func TestRecomputeDay_NoAttendance(t *testing.T) {
	f := newWorktimeFixture(t, true)
	ctx := context.Background()

	absent, err := f.svc.RecomputeDay(ctx, "emp-1", f.date(2025, 6, 19), nil)
	require.NoError(t, err)
	assert.Equal(t, worktime.StatusAbsent, absent.Status)

	_, err = f.svc.RecomputeDay(ctx, "emp-1", f.date(2025, 6, 21), nil)
	assert.ErrorIs(t, err, worktime.ErrNoAttendance)
}

func TestRecomputeDay_ConfigurationMissing(t *testing.T) {
	f := newWorktimeFixture(t, false)
	f.storeDay(t, f.date(2025, 6, 19), 9, 0, 18, 0)

	_, err := f.svc.RecomputeDay(context.Background(), "emp-1", f.date(2025, 6, 19), nil)

	assert.ErrorIs(t, err, worktime.ErrConfigurationMissing)
}

func TestRecomputeDay_FlexPeriodRaisesThreshold(t *testing.T) {
	f := newWorktimeFixture(t, true)
	ctx := context.Background()
	day := f.date(2025, 7, 10)
	f.storeDay(t, day, 9, 0, 20, 0)

	regular, err := f.svc.RecomputeDay(ctx, "emp-1", day, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(120), regular.OvertimeMinutes)

	period, err := f.periods.Create(ctx, settlement.FlexWorkPeriod{
		Name:       "2025 Q3",
		StartMonth: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		EndMonth:   time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		Status:     settlement.PeriodStatusPlanned,
	})
	require.NoError(t, err)

	planned, err := f.svc.RecomputeDay(ctx, "emp-1", day, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(120), planned.OvertimeMinutes, "planned periods do not apply")

	require.NoError(t, f.periods.UpdateStatus(ctx, period.ID, settlement.PeriodStatusActive))
	flex, err := f.svc.RecomputeDay(ctx, "emp-1", day, nil)
	require.NoError(t, err)
	assert.Zero(t, flex.OvertimeMinutes)
	assert.Equal(t, int64(600), flex.BasicMinutes)
}

func TestRecomputeDay_Holiday(t *testing.T) {
	f := newWorktimeFixture(t, true)
	ctx := context.Background()
	day := f.date(2025, 6, 6)
	f.storeDay(t, day, 10, 0, 15, 0)

	_, err := f.svc.AddHoliday(ctx, worktime.HolidayRequest{Date: "2025-06-06", Name: "Memorial Day"})
	require.NoError(t, err)

	summary, err := f.svc.RecomputeDay(ctx, "emp-1", day, nil)
	require.NoError(t, err)
	assert.Equal(t, worktime.DayTypeHoliday, summary.DayType)
	assert.Equal(t, int64(360), summary.CompensatoryMinutesEarned)

	holidays, err := f.svc.ListHolidays(ctx, 2025)
	require.NoError(t, err)
	assert.Len(t, holidays, 1)
}

func TestMonthlyStats(t *testing.T) {
	f := newWorktimeFixture(t, true)
	ctx := context.Background()
	f.storeDay(t, f.date(2025, 6, 19), 9, 0, 16, 30)
	f.storeDay(t, f.date(2025, 6, 20), 9, 0, 20, 0)

	for _, d := range []int{18, 19, 20} {
		_, err := f.svc.RecomputeDay(ctx, "emp-1", f.date(2025, 6, d), nil)
		require.NoError(t, err)
	}

	stats, err := f.svc.MonthlyStats(ctx, "emp-1", 2025, time.June)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.WorkedDays)
	assert.Equal(t, 1, stats.AbsentDays)
	assert.Equal(t, int64(390+480), stats.BasicMinutes)
	assert.Equal(t, int64(120), stats.OvertimeMinutes)

	_, err = f.svc.MonthlyStats(ctx, "emp-1", 2025, time.Month(13))
	assert.ErrorIs(t, err, worktime.ErrInvalidMonth)
}
