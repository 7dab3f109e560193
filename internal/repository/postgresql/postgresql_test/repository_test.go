package postgresqltest

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/settlement"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/worktime"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *TestDatabaseSetup {
	t.Helper()
	setup, ok, err := NewTestDatabase()
	if !ok {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, err)
	require.NoError(t, setup.TruncateAllTables(context.Background()))
	t.Cleanup(setup.Close)
	return setup
}

func createEmployee(t *testing.T, repo employee.EmployeeRepository, name string, code *string) employee.Employee {
	t.Helper()
	emp, err := repo.Create(context.Background(), employee.Employee{
		FullName:     name,
		EmployeeCode: code,
		HourlyRate:   decimal.NewFromInt(10000),
	})
	require.NoError(t, err)
	return emp
}

func TestEmployeeRepository_ResolveByName(t *testing.T) {
	setup := setupDB(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(setup.DB)

	created := createEmployee(t, repo, "이재혁", nil)

	got, err := repo.ResolveByName(ctx, "이 재혁", "")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = repo.ResolveByName(ctx, "없는사람", "")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	codeA, codeB := "A1", "B2"
	createEmployee(t, repo, "김민수", &codeA)
	second := createEmployee(t, repo, "김 민수", &codeB)

	_, err = repo.ResolveByName(ctx, "김민수", "")
	assert.ErrorIs(t, err, employee.ErrAmbiguousName)

	got, err = repo.ResolveByName(ctx, "김민수", "B2")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestEventRepository_AppendIgnoresDuplicates(t *testing.T) {
	setup := setupDB(t)
	ctx := context.Background()
	emp := createEmployee(t, postgresql.NewEmployeeRepository(setup.DB), "박지성", nil)
	repo := postgresql.NewEventRepository(setup.DB)

	day := time.Date(2025, 6, 19, 0, 0, 0, 0, time.UTC)
	ts := time.Date(2025, 6, 19, 9, 0, 0, 0, time.UTC)
	ev := attendance.Event{
		EmployeeID: emp.ID,
		WorkDate:   day,
		Timestamp:  ts,
		Mode:       attendance.ModeCheckIn,
		Kind:       attendance.EventKindCheckIn,
		Source:     attendance.SourceTerminal,
	}

	added, err := repo.Append(ctx, []attendance.Event{ev, ev})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	events, err := repo.ListByEmployeeDate(ctx, emp.ID, day)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Timestamp.Equal(ts))
}

func TestDailyAttendanceRepository_UpsertKeepsHadDinner(t *testing.T) {
	setup := setupDB(t)
	ctx := context.Background()
	emp := createEmployee(t, postgresql.NewEmployeeRepository(setup.DB), "손흥민", nil)
	repo := postgresql.NewDailyAttendanceRepository(setup.DB)

	day := time.Date(2025, 6, 19, 0, 0, 0, 0, time.UTC)
	in := time.Date(2025, 6, 19, 0, 0, 0, 0, time.UTC)
	out := in.Add(9 * time.Hour)

	_, err := repo.Upsert(ctx, attendance.DailyAttendance{EmployeeID: emp.ID, WorkDate: day, CheckIn: &in})
	require.NoError(t, err)
	require.NoError(t, repo.SetHadDinner(ctx, emp.ID, day, true))

	saved, err := repo.Upsert(ctx, attendance.DailyAttendance{EmployeeID: emp.ID, WorkDate: day, CheckIn: &in, CheckOut: &out})
	require.NoError(t, err)
	assert.True(t, saved.HadDinner)
	require.NotNil(t, saved.CheckOut)
	assert.True(t, saved.CheckOut.Equal(out))

	_, err = repo.Get(ctx, emp.ID, day.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, attendance.ErrDailyAttendanceNotFound)
}

func TestRuleConfigRepository_GetEffective(t *testing.T) {
	setup := setupDB(t)
	ctx := context.Background()
	repo := postgresql.NewRuleConfigRepository(setup.DB)

	from := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := worktime.DefaultRuleConfig(from)
	cfg.LunchMinutes = 45
	created, err := repo.Create(ctx, cfg)
	require.NoError(t, err)

	got, err := repo.GetEffective(ctx, from.AddDate(0, 2, 0))
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, int64(45), got.LunchMinutes)
	assert.True(t, got.OvertimeRateMultiplier.Equal(decimal.NewFromFloat(1.5)))
}

func TestSettlementRepository_DuplicateIsConflict(t *testing.T) {
	setup := setupDB(t)
	ctx := context.Background()
	emp := createEmployee(t, postgresql.NewEmployeeRepository(setup.DB), "홍길동", nil)
	periods := postgresql.NewPeriodRepository(setup.DB)
	settlements := postgresql.NewSettlementRepository(setup.DB)

	period, err := periods.Create(ctx, settlement.FlexWorkPeriod{
		Name:       "2025 Q3",
		StartMonth: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		EndMonth:   time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		Status:     settlement.PeriodStatusActive,
	})
	require.NoError(t, err)

	covered, err := periods.CoversDate(ctx, time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, covered)

	row := settlement.QuarterlySettlement{
		PeriodID:                  period.ID,
		EmployeeID:                emp.ID,
		TotalWorkHours:            decimal.NewFromInt(520),
		WeeklyAvgHours:            decimal.NewFromInt(40),
		TotalNightHours:           decimal.Zero,
		OvertimeAllowanceAmount:   decimal.Zero,
		NightAllowanceAlreadyPaid: decimal.Zero,
		NetOvertimeAllowance:      decimal.Zero,
		HourlyRate:                decimal.NewFromInt(10000),
	}
	require.NoError(t, settlements.CreateBatch(ctx, []settlement.QuarterlySettlement{row}))
	assert.ErrorIs(t, settlements.CreateBatch(ctx, []settlement.QuarterlySettlement{row}), settlement.ErrSettlementConflict)

	rows, err := settlements.ListByPeriod(ctx, period.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].EmployeeName)
	assert.Equal(t, "홍길동", *rows[0].EmployeeName)
}

func TestNightPayRepository_OncePerMonth(t *testing.T) {
	setup := setupDB(t)
	ctx := context.Background()
	emp := createEmployee(t, postgresql.NewEmployeeRepository(setup.DB), "유재석", nil)
	repo := postgresql.NewNightPayRepository(setup.DB)

	payment := settlement.NightAllowancePayment{
		EmployeeID:   emp.ID,
		Year:         2025,
		Month:        time.July,
		NightMinutes: 120,
		HourlyRate:   decimal.NewFromInt(10000),
		Amount:       decimal.NewFromInt(10000),
	}
	_, err := repo.Create(ctx, payment)
	require.NoError(t, err)
	_, err = repo.Create(ctx, payment)
	assert.ErrorIs(t, err, settlement.ErrNightPayAlreadyExists)

	total, err := repo.SumByEmployeeRange(ctx, emp.ID,
		time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, total.Count)
	assert.True(t, total.Amount.Equal(decimal.NewFromInt(10000)))
}

func TestLedgerRepository_SumByEmployee(t *testing.T) {
	setup := setupDB(t)
	ctx := context.Background()
	emp := createEmployee(t, postgresql.NewEmployeeRepository(setup.DB), "강호동", nil)
	repo := postgresql.NewLedgerRepository(setup.DB)
	transactor := postgresql.NewTransactor(setup.DB)

	err := transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := repo.LockEmployee(ctx, emp.ID); err != nil {
			return err
		}
		if _, err := repo.Append(ctx, leave.Transaction{EmployeeID: emp.ID, Kind: leave.KindAnnual, Type: leave.TransactionGrant, Minutes: 4800}); err != nil {
			return err
		}
		_, err := repo.Append(ctx, leave.Transaction{EmployeeID: emp.ID, Kind: leave.KindAnnual, Type: leave.TransactionDebit, Minutes: 240})
		return err
	})
	require.NoError(t, err)

	totals, err := repo.SumByEmployee(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4800), totals.Granted[leave.KindAnnual])
	assert.Equal(t, int64(240), totals.Debited[leave.KindAnnual])
}
