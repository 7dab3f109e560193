package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

type EventRepository struct {
	s *Store
}

func NewEventRepository(s *Store) *EventRepository {
	return &EventRepository{s: s}
}

// LockDay is a no-op; the transactor already serializes writers.
func (r *EventRepository) LockDay(context.Context, string, time.Time) error {
	return nil
}

func (r *EventRepository) Append(_ context.Context, events []attendance.Event) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	added := 0
	for _, ev := range events {
		if r.existsLocked(ev) {
			continue
		}
		ev.ID = newID()
		ev.CreatedAt = time.Now().UTC()
		r.s.t.events = append(r.s.t.events, ev)
		added++
	}
	return added, nil
}

func (r *EventRepository) existsLocked(ev attendance.Event) bool {
	for _, e := range r.s.t.events {
		if e.EmployeeID == ev.EmployeeID && e.Kind == ev.Kind && e.Timestamp.Equal(ev.Timestamp) {
			return true
		}
	}
	return false
}

func (r *EventRepository) ListByEmployeeDate(_ context.Context, employeeID string, workDate time.Time) ([]attendance.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	date := dateString(workDate)
	var out []attendance.Event
	for _, e := range r.s.t.events {
		if e.EmployeeID == employeeID && dateString(e.WorkDate) == date {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

type DailyAttendanceRepository struct {
	s *Store
}

func NewDailyAttendanceRepository(s *Store) *DailyAttendanceRepository {
	return &DailyAttendanceRepository{s: s}
}

func (r *DailyAttendanceRepository) Upsert(_ context.Context, day attendance.DailyAttendance) (attendance.DailyAttendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := keyOf(day.EmployeeID, day.WorkDate)
	now := time.Now().UTC()
	day.Events = nil
	if existing, ok := r.s.t.days[k]; ok {
		day.ID = existing.ID
		day.CreatedAt = existing.CreatedAt
		day.HadDinner = existing.HadDinner
	} else {
		day.ID = newID()
		day.CreatedAt = now
	}
	day.UpdatedAt = now
	r.s.t.days[k] = day
	return day, nil
}

func (r *DailyAttendanceRepository) Get(_ context.Context, employeeID string, workDate time.Time) (attendance.DailyAttendance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	day, ok := r.s.t.days[keyOf(employeeID, workDate)]
	if !ok {
		return attendance.DailyAttendance{}, attendance.ErrDailyAttendanceNotFound
	}
	return day, nil
}

func (r *DailyAttendanceRepository) SetHadDinner(_ context.Context, employeeID string, workDate time.Time, hadDinner bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := keyOf(employeeID, workDate)
	day, ok := r.s.t.days[k]
	if !ok {
		return attendance.ErrDailyAttendanceNotFound
	}
	day.HadDinner = hadDinner
	day.UpdatedAt = time.Now().UTC()
	r.s.t.days[k] = day
	return nil
}

type ImportBatchRepository struct {
	s *Store
}

func NewImportBatchRepository(s *Store) *ImportBatchRepository {
	return &ImportBatchRepository{s: s}
}

func (r *ImportBatchRepository) Create(_ context.Context, batch attendance.ImportBatch) (attendance.ImportBatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	batch.ID = newID()
	batch.CreatedAt = time.Now().UTC()
	r.s.t.batches = append(r.s.t.batches, batch)
	return batch, nil
}

func (r *ImportBatchRepository) ExistsByFingerprint(_ context.Context, fingerprint string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, b := range r.s.t.batches {
		if b.Fingerprint == fingerprint {
			return true, nil
		}
	}
	return false, nil
}
