package attendance

import (
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

// ReconcileOptions tune the resolution heuristics.
type ReconcileOptions struct {
	// PassageBackfill takes the lock before a trailing passage swipe as the check-out.
	PassageBackfill bool
}

func DefaultReconcileOptions() ReconcileOptions {
	return ReconcileOptions{PassageBackfill: true}
}

// DayKey groups events by resolved employee and work date.
type DayKey struct {
	EmployeeID string
	WorkDate   string
}

func NewDayKey(employeeID string, workDate time.Time) DayKey {
	return DayKey{EmployeeID: employeeID, WorkDate: workDate.Format("2006-01-02")}
}

// GroupEvents buckets events per employee/work date, keeping first-seen key order.
func GroupEvents(events []attendance.Event) ([]DayKey, map[DayKey][]attendance.Event) {
	var keys []DayKey
	groups := make(map[DayKey][]attendance.Event)
	for _, ev := range events {
		key := NewDayKey(ev.EmployeeID, ev.WorkDate)
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], ev)
	}
	return keys, groups
}

// Reconcile resolves one employee/day's events into a check-in and check-out.
// The returned day always satisfies CheckOut > CheckIn when both are set. A
// non-nil error wraps ErrAmbiguousEvents; the day is still returned with
// ReviewReason set so it can be kept for manual review.
func Reconcile(employeeID string, workDate time.Time, events []attendance.Event, opts ReconcileOptions) (attendance.DailyAttendance, error) {
	sorted := make([]attendance.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	day := attendance.DailyAttendance{
		EmployeeID: employeeID,
		WorkDate:   attendance.DateOnly(workDate),
		Events:     sorted,
	}

	var locks, passages int
	for i := range sorted {
		ev := sorted[i]
		switch ev.Kind {
		case attendance.EventKindCheckIn:
			if day.CheckIn == nil {
				ts := ev.Timestamp
				day.CheckIn = &ts
			}
		case attendance.EventKindCheckOut:
			ts := ev.Timestamp
			day.CheckOut = &ts
		}
		switch ev.Mode {
		case attendance.ModeLock:
			locks++
		case attendance.ModePassage:
			passages++
		}
	}

	var review error
	if n := len(sorted); n > 0 && sorted[n-1].Kind == attendance.EventKindPassage {
		switch {
		case !opts.PassageBackfill:
		case locks > 0 && locks == passages:
			if lock := lockBefore(sorted, n-1); lock != nil {
				ts := lock.Timestamp
				day.CheckOut = &ts
			}
		case passages > locks:
			review = fmt.Errorf("%w: %d passage events but %d lock events after the last check-out", attendance.ErrAmbiguousEvents, passages, locks)
		}
	}

	switch {
	case day.CheckIn == nil && day.CheckOut == nil:
		review = fmt.Errorf("%w: no check-in or check-out event", attendance.ErrAmbiguousEvents)
	case day.CheckOut == nil:
		if review == nil {
			review = fmt.Errorf("%w: check-in without check-out", attendance.ErrAmbiguousEvents)
		}
	case day.CheckIn == nil:
		review = fmt.Errorf("%w: check-out without check-in", attendance.ErrAmbiguousEvents)
	case !day.CheckOut.After(*day.CheckIn):
		review = fmt.Errorf("%w: check-out %s is not after check-in %s", attendance.ErrAmbiguousEvents,
			day.CheckOut.Format(time.TimeOnly), day.CheckIn.Format(time.TimeOnly))
		day.CheckOut = nil
	}

	if review != nil {
		reason := review.Error()
		day.ReviewReason = &reason
	}
	return day, review
}

// lockBefore returns the latest lock event strictly before index i.
func lockBefore(sorted []attendance.Event, i int) *attendance.Event {
	for j := i - 1; j >= 0; j-- {
		if sorted[j].Mode == attendance.ModeLock && sorted[j].Timestamp.Before(sorted[i].Timestamp) {
			return &sorted[j]
		}
	}
	return nil
}
