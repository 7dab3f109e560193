package attendance

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/worktime"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/storage"
	"golang.org/x/crypto/blake2b"
)

type AttendanceServiceImpl struct {
	tx        database.Transactor
	parser    *Parser
	opts      ReconcileOptions
	loc       *time.Location
	directory employee.Directory
	eventRepo attendance.EventRepository
	dailyRepo attendance.DailyAttendanceRepository
	batchRepo attendance.ImportBatchRepository
	worktime  worktime.WorktimeService
	archive   storage.Archive
}

func NewAttendanceService(
	tx database.Transactor,
	loc *time.Location,
	opts ReconcileOptions,
	directory employee.Directory,
	eventRepo attendance.EventRepository,
	dailyRepo attendance.DailyAttendanceRepository,
	batchRepo attendance.ImportBatchRepository,
	worktimeService worktime.WorktimeService,
	archive storage.Archive,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:        tx,
		parser:    NewParser(loc),
		opts:      opts,
		loc:       loc,
		directory: directory,
		eventRepo: eventRepo,
		dailyRepo: dailyRepo,
		batchRepo: batchRepo,
		worktime:  worktimeService,
		archive:   archive,
	}
}

// Fingerprint is the hex blake2b-256 digest of the batch payload.
func Fingerprint(lines []string) string {
	sum := blake2b.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}

// ImportBatch implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ImportBatch(ctx context.Context, lines []string) (attendance.ImportResult, error) {
	if len(lines) == 0 {
		return attendance.ImportResult{}, attendance.ErrEmptyBatch
	}

	result := attendance.ImportResult{
		Fingerprint: Fingerprint(lines),
		TotalLines:  len(lines),
		Errors:      []attendance.LineError{},
		DayErrors:   []attendance.DayError{},
	}

	reimported, err := s.batchRepo.ExistsByFingerprint(ctx, result.Fingerprint)
	if err != nil {
		return attendance.ImportResult{}, fmt.Errorf("failed to check import fingerprint: %w", err)
	}
	result.Reimported = reimported
	result.ArchivePath = s.archivePayload(ctx, result.Fingerprint, lines)

	records, lineErrs := s.parser.Parse(lines)
	result.ParsedCount = len(records)
	for _, le := range lineErrs {
		slog.Warn("Skipping unparseable attendance line", "line", le.Line, "reason", le.Reason)
	}
	result.Errors = append(result.Errors, lineErrs...)

	events, identityErrs, err := s.resolveIdentities(ctx, records)
	if err != nil {
		return attendance.ImportResult{}, err
	}
	result.Errors = append(result.Errors, identityErrs...)

	keys, groups := GroupEvents(events)
	for _, key := range keys {
		dayEvents := groups[key]
		workDate := dayEvents[0].WorkDate

		added, err := s.storeAndReconcile(ctx, key.EmployeeID, workDate, dayEvents)
		if err != nil {
			slog.Error("Failed to reconcile attendance day", "employee_id", key.EmployeeID, "work_date", key.WorkDate, "error", err)
			result.FailedDays++
			result.DayErrors = append(result.DayErrors, attendance.DayError{
				EmployeeID: key.EmployeeID,
				WorkDate:   key.WorkDate,
				Stage:      attendance.StageReconcile,
				Reason:     err.Error(),
			})
			continue
		}
		result.NewEvents += added
		result.ReconciledDays++

		if _, err := s.worktime.RecomputeDay(ctx, key.EmployeeID, workDate, nil); err != nil {
			slog.Warn("Failed to compute work summary", "employee_id", key.EmployeeID, "work_date", key.WorkDate, "error", err)
			result.DayErrors = append(result.DayErrors, attendance.DayError{
				EmployeeID: key.EmployeeID,
				WorkDate:   key.WorkDate,
				Stage:      attendance.StageCompute,
				Reason:     err.Error(),
			})
		}
	}

	batch, err := s.batchRepo.Create(ctx, attendance.ImportBatch{
		Fingerprint:    result.Fingerprint,
		TotalLines:     result.TotalLines,
		ParsedCount:    result.ParsedCount,
		ReconciledDays: result.ReconciledDays,
		FailedLines:    len(result.Errors),
		FailedDays:     result.FailedDays,
	})
	if err != nil {
		return attendance.ImportResult{}, fmt.Errorf("failed to record import batch: %w", err)
	}
	result.BatchID = batch.ID

	slog.Info("Imported attendance batch",
		"batch_id", batch.ID,
		"parsed", result.ParsedCount,
		"new_events", result.NewEvents,
		"reconciled_days", result.ReconciledDays,
		"failed_lines", len(result.Errors),
		"failed_days", result.FailedDays,
	)
	return result, nil
}

// archivePayload stores the raw export once per fingerprint. Archive failures
// are logged and do not fail the import.
func (s *AttendanceServiceImpl) archivePayload(ctx context.Context, fingerprint string, lines []string) string {
	path := fmt.Sprintf("imports/%s/%s.txt", fingerprint[:2], fingerprint)
	exists, err := s.archive.Exists(ctx, path)
	if err != nil {
		slog.Warn("Failed to check archived import payload", "fingerprint", fingerprint, "error", err)
		return ""
	}
	if exists {
		return path
	}
	key, err := s.archive.Save(ctx, path, strings.NewReader(strings.Join(lines, "\n")+"\n"))
	if err != nil {
		slog.Warn("Failed to archive import payload", "fingerprint", fingerprint, "error", err)
		return ""
	}
	return key
}

type identityKey struct {
	name   string
	number string
}

// resolveIdentities maps each record's display name to an employee id.
// Unknown or colliding names become line errors; lookup failures abort.
func (s *AttendanceServiceImpl) resolveIdentities(ctx context.Context, records []attendance.RawRecord) ([]attendance.Event, []attendance.LineError, error) {
	var (
		events []attendance.Event
		errs   []attendance.LineError
	)
	resolved := make(map[identityKey]string)
	failed := make(map[identityKey]error)

	for _, rec := range records {
		f := rec.Fields()
		key := identityKey{name: employee.NormalizeName(f.DisplayName), number: f.EmployeeNumber}

		if err, ok := failed[key]; ok {
			errs = append(errs, attendance.NewLineError(f.Line, f.Raw, err))
			continue
		}
		employeeID, ok := resolved[key]
		if !ok {
			emp, err := s.directory.ResolveByName(ctx, f.DisplayName, f.EmployeeNumber)
			if err != nil {
				if !errors.Is(err, employee.ErrEmployeeNotFound) && !errors.Is(err, employee.ErrAmbiguousName) {
					return nil, nil, fmt.Errorf("failed to resolve employee %q: %w", f.DisplayName, err)
				}
				err = fmt.Errorf("%w: %q", err, f.DisplayName)
				failed[key] = err
				slog.Warn("Unresolvable employee name in import", "line", f.Line, "name", f.DisplayName, "error", err)
				errs = append(errs, attendance.NewLineError(f.Line, f.Raw, err))
				continue
			}
			employeeID = emp.ID
			resolved[key] = employeeID
		}
		events = append(events, attendance.ToEvent(rec, employeeID))
	}
	return events, errs, nil
}

// storeAndReconcile appends the day's events and rebuilds the day from every
// stored event, so earlier batches and manual submissions are merged.
func (s *AttendanceServiceImpl) storeAndReconcile(ctx context.Context, employeeID string, workDate time.Time, events []attendance.Event) (int, error) {
	var added int
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.eventRepo.LockDay(ctx, employeeID, workDate); err != nil {
			return fmt.Errorf("failed to lock attendance day: %w", err)
		}
		n, err := s.eventRepo.Append(ctx, events)
		if err != nil {
			return fmt.Errorf("failed to append events: %w", err)
		}
		added = n
		_, err = s.reconcileDay(ctx, employeeID, workDate)
		return err
	})
	return added, err
}

func (s *AttendanceServiceImpl) reconcileDay(ctx context.Context, employeeID string, workDate time.Time) (attendance.DailyAttendance, error) {
	stored, err := s.eventRepo.ListByEmployeeDate(ctx, employeeID, workDate)
	if err != nil {
		return attendance.DailyAttendance{}, fmt.Errorf("failed to load day events: %w", err)
	}

	day, reviewErr := Reconcile(employeeID, workDate, stored, s.opts)
	if reviewErr != nil {
		slog.Warn("Attendance day needs review", "employee_id", employeeID, "work_date", workDate.Format("2006-01-02"), "reason", reviewErr)
	}

	saved, err := s.dailyRepo.Upsert(ctx, day)
	if err != nil {
		return attendance.DailyAttendance{}, fmt.Errorf("failed to save daily attendance: %w", err)
	}
	saved.Events = day.Events
	return saved, nil
}

// SubmitManualEvent implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) SubmitManualEvent(ctx context.Context, req attendance.ManualEventRequest) (attendance.DailyAttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DailyAttendanceResponse{}, err
	}

	emp, err := s.directory.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.DailyAttendanceResponse{}, err
	}

	ts := req.ParsedTimestamp.In(s.loc)
	clock := Clock{Hour: ts.Hour(), Minute: ts.Minute(), Second: ts.Second(), BeforeNoon: ts.Hour() < 12}
	ev := attendance.Event{
		EmployeeID: emp.ID,
		WorkDate:   clock.WorkDate(ts),
		Timestamp:  ts,
		Mode:       req.Mode,
		Kind:       req.Mode.Kind(),
		Source:     attendance.SourceWeb,
	}

	var day attendance.DailyAttendance
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.eventRepo.LockDay(ctx, ev.EmployeeID, ev.WorkDate); err != nil {
			return fmt.Errorf("failed to lock attendance day: %w", err)
		}
		existing, err := s.eventRepo.ListByEmployeeDate(ctx, ev.EmployeeID, ev.WorkDate)
		if err != nil {
			return fmt.Errorf("failed to load day events: %w", err)
		}
		duplicate, err := checkWebDuplicate(existing, ev)
		if err != nil {
			return err
		}
		if !duplicate {
			if _, err := s.eventRepo.Append(ctx, []attendance.Event{ev}); err != nil {
				return fmt.Errorf("failed to append event: %w", err)
			}
		}
		day, err = s.reconcileDay(ctx, ev.EmployeeID, ev.WorkDate)
		return err
	})
	if err != nil {
		return attendance.DailyAttendanceResponse{}, err
	}

	if _, err := s.worktime.RecomputeDay(ctx, ev.EmployeeID, ev.WorkDate, nil); err != nil {
		return attendance.DailyAttendanceResponse{}, fmt.Errorf("event recorded but work summary failed: %w", err)
	}

	slog.Info("Manual attendance event recorded", "employee_id", ev.EmployeeID, "mode", ev.Mode, "work_date", ev.WorkDate.Format("2006-01-02"))
	return attendance.NewDailyAttendanceResponse(day), nil
}

// checkWebDuplicate reports true for an identical re-submission and
// ErrDuplicateWebSubmission for a second web event of the same kind.
func checkWebDuplicate(existing []attendance.Event, ev attendance.Event) (bool, error) {
	for _, e := range existing {
		if e.Source != attendance.SourceWeb || e.Kind != ev.Kind {
			continue
		}
		if e.Timestamp.Equal(ev.Timestamp) {
			return true, nil
		}
		return false, attendance.ErrDuplicateWebSubmission
	}
	return false, nil
}

// GetDaily implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetDaily(ctx context.Context, employeeID string, workDate time.Time) (attendance.DailyAttendanceResponse, error) {
	day, err := s.dailyRepo.Get(ctx, employeeID, workDate)
	if err != nil {
		return attendance.DailyAttendanceResponse{}, err
	}
	events, err := s.eventRepo.ListByEmployeeDate(ctx, employeeID, workDate)
	if err != nil {
		return attendance.DailyAttendanceResponse{}, fmt.Errorf("failed to load day events: %w", err)
	}
	day.Events = events
	return attendance.NewDailyAttendanceResponse(day), nil
}
