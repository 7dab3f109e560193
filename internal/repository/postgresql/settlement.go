package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/settlement"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type periodRepositoryImpl struct {
	db *database.DB
}

func NewPeriodRepository(db *database.DB) settlement.PeriodRepository {
	return &periodRepositoryImpl{db: db}
}

const periodColumns = `id, name, start_month, end_month, status, settlement_completed, settled_at, created_at, updated_at`

func scanPeriod(row pgx.Row) (settlement.FlexWorkPeriod, error) {
	var p settlement.FlexWorkPeriod
	err := row.Scan(
		&p.ID, &p.Name, &p.StartMonth, &p.EndMonth, &p.Status,
		&p.SettlementCompleted, &p.SettledAt, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *periodRepositoryImpl) queryPeriods(ctx context.Context, query string, args ...interface{}) ([]settlement.FlexWorkPeriod, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query flex work periods: %w", err)
	}
	defer rows.Close()

	var periods []settlement.FlexWorkPeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flex work period: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// Create implements settlement.PeriodRepository.
func (r *periodRepositoryImpl) Create(ctx context.Context, p settlement.FlexWorkPeriod) (settlement.FlexWorkPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO flex_work_periods (id, name, start_month, end_month, status, settlement_completed, created_at, updated_at)
		VALUES (uuidv7(), $1, $2::date, $3::date, $4, FALSE, NOW(), NOW())
		RETURNING ` + periodColumns

	created, err := scanPeriod(q.QueryRow(ctx, query, p.Name, dateArg(p.StartMonth), dateArg(p.EndMonth), p.Status))
	if err != nil {
		return settlement.FlexWorkPeriod{}, fmt.Errorf("failed to create flex work period: %w", err)
	}
	return created, nil
}

func (r *periodRepositoryImpl) getOne(ctx context.Context, query, id string) (settlement.FlexWorkPeriod, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPeriod(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return settlement.FlexWorkPeriod{}, settlement.ErrPeriodNotFound
		}
		return settlement.FlexWorkPeriod{}, fmt.Errorf("failed to get flex work period %s: %w", id, err)
	}
	return p, nil
}

// GetByID implements settlement.PeriodRepository.
func (r *periodRepositoryImpl) GetByID(ctx context.Context, id string) (settlement.FlexWorkPeriod, error) {
	return r.getOne(ctx, `SELECT `+periodColumns+` FROM flex_work_periods WHERE id = $1`, id)
}

// GetForUpdate implements settlement.PeriodRepository.
func (r *periodRepositoryImpl) GetForUpdate(ctx context.Context, id string) (settlement.FlexWorkPeriod, error) {
	return r.getOne(ctx, `SELECT `+periodColumns+` FROM flex_work_periods WHERE id = $1 FOR UPDATE`, id)
}

// List implements settlement.PeriodRepository.
func (r *periodRepositoryImpl) List(ctx context.Context) ([]settlement.FlexWorkPeriod, error) {
	return r.queryPeriods(ctx, `SELECT `+periodColumns+` FROM flex_work_periods ORDER BY start_month, created_at`)
}

// ListOverlapping implements settlement.PeriodRepository.
func (r *periodRepositoryImpl) ListOverlapping(ctx context.Context, from, to time.Time) ([]settlement.FlexWorkPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM flex_work_periods
		WHERE status <> $1
			AND start_month <= $3::date
			AND (end_month + INTERVAL '1 month' - INTERVAL '1 day')::date >= $2::date
		ORDER BY start_month
	`
	return r.queryPeriods(ctx, query, settlement.PeriodStatusCancelled, dateArg(from), dateArg(to))
}

// UpdateStatus implements settlement.PeriodRepository.
func (r *periodRepositoryImpl) UpdateStatus(ctx context.Context, id string, status settlement.PeriodStatus) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE flex_work_periods SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update flex work period status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return settlement.ErrPeriodNotFound
	}
	return nil
}

// MarkSettled implements settlement.PeriodRepository. A period already
// flagged as settled is a conflict.
func (r *periodRepositoryImpl) MarkSettled(ctx context.Context, id string, settledAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE flex_work_periods
		SET settlement_completed = TRUE, settled_at = $2, status = $3, updated_at = $2
		WHERE id = $1 AND settlement_completed = FALSE
	`

	tag, err := q.Exec(ctx, query, id, settledAt, settlement.PeriodStatusCompleted)
	if err != nil {
		return fmt.Errorf("failed to mark flex work period settled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return settlement.ErrSettlementConflict
	}
	return nil
}

// CoversDate implements worktime.FlexCalendar.
func (r *periodRepositoryImpl) CoversDate(ctx context.Context, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM flex_work_periods
			WHERE status IN ($2, $3)
				AND start_month <= $1::date
				AND (end_month + INTERVAL '1 month' - INTERVAL '1 day')::date >= $1::date
		)
	`

	var covered bool
	err := q.QueryRow(ctx, query, dateArg(date), settlement.PeriodStatusActive, settlement.PeriodStatusCompleted).Scan(&covered)
	if err != nil {
		return false, fmt.Errorf("failed to check flex work coverage: %w", err)
	}
	return covered, nil
}

type settlementRepositoryImpl struct {
	db *database.DB
}

func NewSettlementRepository(db *database.DB) settlement.SettlementRepository {
	return &settlementRepositoryImpl{db: db}
}

// CreateBatch implements settlement.SettlementRepository.
func (r *settlementRepositoryImpl) CreateBatch(ctx context.Context, rows []settlement.QuarterlySettlement) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO quarterly_settlements (
			id, period_id, employee_id, total_work_hours, weekly_avg_hours, total_night_hours,
			overtime_allowance_amount, night_allowance_already_paid, net_overtime_allowance, hourly_rate, created_at
		) VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING id, created_at
	`

	for i := range rows {
		row := &rows[i]
		err := q.QueryRow(ctx, query,
			row.PeriodID, row.EmployeeID, row.TotalWorkHours, row.WeeklyAvgHours, row.TotalNightHours,
			row.OvertimeAllowanceAmount, row.NightAllowanceAlreadyPaid, row.NetOvertimeAllowance, row.HourlyRate,
		).Scan(&row.ID, &row.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return settlement.ErrSettlementConflict
			}
			return fmt.Errorf("failed to insert quarterly settlement for employee %s: %w", row.EmployeeID, err)
		}
	}
	return nil
}

// ListByPeriod implements settlement.SettlementRepository.
func (r *settlementRepositoryImpl) ListByPeriod(ctx context.Context, periodID string) ([]settlement.QuarterlySettlement, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			s.id, s.period_id, s.employee_id, s.total_work_hours, s.weekly_avg_hours, s.total_night_hours,
			s.overtime_allowance_amount, s.night_allowance_already_paid, s.net_overtime_allowance, s.hourly_rate,
			s.created_at, e.full_name, e.employee_code
		FROM quarterly_settlements s
		LEFT JOIN employees e ON e.id = s.employee_id
		WHERE s.period_id = $1
		ORDER BY s.employee_id
	`

	rows, err := q.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quarterly settlements: %w", err)
	}
	defer rows.Close()

	var result []settlement.QuarterlySettlement
	for rows.Next() {
		var s settlement.QuarterlySettlement
		if err := rows.Scan(
			&s.ID, &s.PeriodID, &s.EmployeeID, &s.TotalWorkHours, &s.WeeklyAvgHours, &s.TotalNightHours,
			&s.OvertimeAllowanceAmount, &s.NightAllowanceAlreadyPaid, &s.NetOvertimeAllowance, &s.HourlyRate,
			&s.CreatedAt, &s.EmployeeName, &s.EmployeeCode,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quarterly settlement: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

type nightPayRepositoryImpl struct {
	db *database.DB
}

func NewNightPayRepository(db *database.DB) settlement.NightPayRepository {
	return &nightPayRepositoryImpl{db: db}
}

// Create implements settlement.NightPayRepository.
func (r *nightPayRepositoryImpl) Create(ctx context.Context, p settlement.NightAllowancePayment) (settlement.NightAllowancePayment, error) {
	q := GetQuerier(ctx, r.db)

	if p.ProcessedAt.IsZero() {
		p.ProcessedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO night_allowance_payments (id, employee_id, year, month, night_minutes, hourly_rate, amount, processed_at)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (employee_id, year, month) DO NOTHING
		RETURNING id
	`

	err := q.QueryRow(ctx, query,
		p.EmployeeID, p.Year, int(p.Month), p.NightMinutes, p.HourlyRate, p.Amount, p.ProcessedAt,
	).Scan(&p.ID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return settlement.NightAllowancePayment{}, settlement.ErrNightPayAlreadyExists
		}
		return settlement.NightAllowancePayment{}, fmt.Errorf("failed to create night allowance payment: %w", err)
	}
	return p, nil
}

// SumByEmployeeRange implements settlement.NightPayRepository. A payment
// counts when the first day of its month falls inside [from, to].
func (r *nightPayRepositoryImpl) SumByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) (settlement.NightAllowanceTotal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(amount), 0), COUNT(*)
		FROM night_allowance_payments
		WHERE employee_id = $1
			AND make_date(year, month, 1) BETWEEN $2::date AND $3::date
	`

	var total settlement.NightAllowanceTotal
	var amount decimal.Decimal
	if err := q.QueryRow(ctx, query, employeeID, dateArg(from), dateArg(to)).Scan(&amount, &total.Count); err != nil {
		return settlement.NightAllowanceTotal{}, fmt.Errorf("failed to sum night allowance payments: %w", err)
	}
	total.Amount = amount
	return total, nil
}

// ListByMonth implements settlement.NightPayRepository.
func (r *nightPayRepositoryImpl) ListByMonth(ctx context.Context, year int, month time.Month) ([]settlement.NightAllowancePayment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, year, month, night_minutes, hourly_rate, amount, processed_at
		FROM night_allowance_payments
		WHERE year = $1 AND month = $2
		ORDER BY employee_id
	`

	rows, err := q.Query(ctx, query, year, int(month))
	if err != nil {
		return nil, fmt.Errorf("failed to list night allowance payments: %w", err)
	}
	defer rows.Close()

	var payments []settlement.NightAllowancePayment
	for rows.Next() {
		var p settlement.NightAllowancePayment
		var m int
		if err := rows.Scan(&p.ID, &p.EmployeeID, &p.Year, &m, &p.NightMinutes, &p.HourlyRate, &p.Amount, &p.ProcessedAt); err != nil {
			return nil, fmt.Errorf("failed to scan night allowance payment: %w", err)
		}
		p.Month = time.Month(m)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
