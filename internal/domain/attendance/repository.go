package attendance

import (
	"context"
	"time"
)

// EventRepository stores events append-only. The upsert key is
// (employee_id, timestamp, kind); exact duplicates are ignored.
type EventRepository interface {
	// LockDay serializes writers of one employee/day within the current transaction.
	LockDay(ctx context.Context, employeeID string, workDate time.Time) error
	// Append inserts events and returns how many were new.
	Append(ctx context.Context, events []Event) (int, error)
	ListByEmployeeDate(ctx context.Context, employeeID string, workDate time.Time) ([]Event, error)
}

// DailyAttendanceRepository upserts by (employee_id, work_date).
type DailyAttendanceRepository interface {
	// Upsert writes check-in/out and review reason. HadDinner is only written on insert.
	Upsert(ctx context.Context, day DailyAttendance) (DailyAttendance, error)
	Get(ctx context.Context, employeeID string, workDate time.Time) (DailyAttendance, error)
	SetHadDinner(ctx context.Context, employeeID string, workDate time.Time, hadDinner bool) error
}

type ImportBatchRepository interface {
	Create(ctx context.Context, batch ImportBatch) (ImportBatch, error)
	ExistsByFingerprint(ctx context.Context, fingerprint string) (bool, error)
}
