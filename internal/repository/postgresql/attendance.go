package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type eventRepositoryImpl struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) attendance.EventRepository {
	return &eventRepositoryImpl{db: db}
}

// LockDay implements attendance.EventRepository.
func (r *eventRepositoryImpl) LockDay(ctx context.Context, employeeID string, workDate time.Time) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "day:"+employeeID+":"+dateArg(workDate))
	if err != nil {
		return fmt.Errorf("failed to lock attendance day: %w", err)
	}
	return nil
}

// Append implements attendance.EventRepository.
func (r *eventRepositoryImpl) Append(ctx context.Context, events []attendance.Event) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_events (
			id, employee_id, work_date, occurred_at, mode, kind, source, terminal_id, raw_line, created_at
		) VALUES (uuidv7(), $1, $2::date, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (employee_id, occurred_at, kind) DO NOTHING
	`

	added := 0
	for _, ev := range events {
		tag, err := q.Exec(ctx, query,
			ev.EmployeeID, dateArg(ev.WorkDate), ev.Timestamp, ev.Mode, ev.Kind, ev.Source, ev.TerminalID, ev.RawLine,
		)
		if err != nil {
			return added, fmt.Errorf("failed to insert attendance event: %w", err)
		}
		added += int(tag.RowsAffected())
	}
	return added, nil
}

// ListByEmployeeDate implements attendance.EventRepository.
func (r *eventRepositoryImpl) ListByEmployeeDate(ctx context.Context, employeeID string, workDate time.Time) ([]attendance.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, work_date, occurred_at, mode, kind, source, terminal_id, raw_line, created_at
		FROM attendance_events
		WHERE employee_id = $1 AND work_date = $2::date
		ORDER BY occurred_at, id
	`

	rows, err := q.Query(ctx, query, employeeID, dateArg(workDate))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance events: %w", err)
	}
	defer rows.Close()

	var events []attendance.Event
	for rows.Next() {
		var ev attendance.Event
		if err := rows.Scan(
			&ev.ID, &ev.EmployeeID, &ev.WorkDate, &ev.Timestamp, &ev.Mode, &ev.Kind,
			&ev.Source, &ev.TerminalID, &ev.RawLine, &ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

type dailyAttendanceRepositoryImpl struct {
	db *database.DB
}

func NewDailyAttendanceRepository(db *database.DB) attendance.DailyAttendanceRepository {
	return &dailyAttendanceRepositoryImpl{db: db}
}

const dailyColumns = `id, employee_id, work_date, check_in, check_out, had_dinner, review_reason, created_at, updated_at`

func scanDaily(row pgx.Row) (attendance.DailyAttendance, error) {
	var d attendance.DailyAttendance
	err := row.Scan(
		&d.ID, &d.EmployeeID, &d.WorkDate, &d.CheckIn, &d.CheckOut,
		&d.HadDinner, &d.ReviewReason, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

// Upsert implements attendance.DailyAttendanceRepository. had_dinner is left
// untouched on conflict.
func (r *dailyAttendanceRepositoryImpl) Upsert(ctx context.Context, day attendance.DailyAttendance) (attendance.DailyAttendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO daily_attendances (
			id, employee_id, work_date, check_in, check_out, had_dinner, review_reason, created_at, updated_at
		) VALUES (uuidv7(), $1, $2::date, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (employee_id, work_date) DO UPDATE SET
			check_in = EXCLUDED.check_in,
			check_out = EXCLUDED.check_out,
			review_reason = EXCLUDED.review_reason,
			updated_at = NOW()
		RETURNING ` + dailyColumns

	saved, err := scanDaily(q.QueryRow(ctx, query,
		day.EmployeeID, dateArg(day.WorkDate), day.CheckIn, day.CheckOut, day.HadDinner, day.ReviewReason,
	))
	if err != nil {
		return attendance.DailyAttendance{}, fmt.Errorf("failed to upsert daily attendance: %w", err)
	}
	return saved, nil
}

// Get implements attendance.DailyAttendanceRepository.
func (r *dailyAttendanceRepositoryImpl) Get(ctx context.Context, employeeID string, workDate time.Time) (attendance.DailyAttendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + dailyColumns + ` FROM daily_attendances WHERE employee_id = $1 AND work_date = $2::date`

	d, err := scanDaily(q.QueryRow(ctx, query, employeeID, dateArg(workDate)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.DailyAttendance{}, attendance.ErrDailyAttendanceNotFound
		}
		return attendance.DailyAttendance{}, fmt.Errorf("failed to get daily attendance: %w", err)
	}
	return d, nil
}

// SetHadDinner implements attendance.DailyAttendanceRepository.
func (r *dailyAttendanceRepositoryImpl) SetHadDinner(ctx context.Context, employeeID string, workDate time.Time, hadDinner bool) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE daily_attendances
		SET had_dinner = $3, updated_at = NOW()
		WHERE employee_id = $1 AND work_date = $2::date
	`

	tag, err := q.Exec(ctx, query, employeeID, dateArg(workDate), hadDinner)
	if err != nil {
		return fmt.Errorf("failed to update had_dinner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrDailyAttendanceNotFound
	}
	return nil
}

type importBatchRepositoryImpl struct {
	db *database.DB
}

func NewImportBatchRepository(db *database.DB) attendance.ImportBatchRepository {
	return &importBatchRepositoryImpl{db: db}
}

// Create implements attendance.ImportBatchRepository.
func (r *importBatchRepositoryImpl) Create(ctx context.Context, batch attendance.ImportBatch) (attendance.ImportBatch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO import_batches (
			id, fingerprint, total_lines, parsed_count, reconciled_days, failed_lines, failed_days, created_at
		) VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		batch.Fingerprint, batch.TotalLines, batch.ParsedCount, batch.ReconciledDays, batch.FailedLines, batch.FailedDays,
	).Scan(&batch.ID, &batch.CreatedAt)
	if err != nil {
		return attendance.ImportBatch{}, fmt.Errorf("failed to create import batch: %w", err)
	}
	return batch, nil
}

// ExistsByFingerprint implements attendance.ImportBatchRepository.
func (r *importBatchRepositoryImpl) ExistsByFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM import_batches WHERE fingerprint = $1)`, fingerprint).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check import fingerprint: %w", err)
	}
	return exists, nil
}
