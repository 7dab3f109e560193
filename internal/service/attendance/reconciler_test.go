package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var workDay = time.Date(2025, 6, 19, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return workDay.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func event(mode attendance.Mode, ts time.Time) attendance.Event {
	return attendance.Event{
		EmployeeID: "emp-1",
		WorkDate:   workDay,
		Timestamp:  ts,
		Mode:       mode,
		Kind:       mode.Kind(),
		Source:     attendance.SourceTerminal,
	}
}

func TestReconcile_FirstInLastOut(t *testing.T) {
	events := []attendance.Event{
		event(attendance.ModeCheckOut, at(18, 30)),
		event(attendance.ModeUnlock, at(8, 50)),
		event(attendance.ModeCheckIn, at(9, 1)),
		event(attendance.ModeCheckOut, at(12, 0)),
	}

	day, err := Reconcile("emp-1", workDay, events, DefaultReconcileOptions())

	require.NoError(t, err)
	assert.Equal(t, at(8, 50), *day.CheckIn)
	assert.Equal(t, at(18, 30), *day.CheckOut)
	assert.Nil(t, day.ReviewReason)
	assert.Equal(t, at(8, 50), day.Events[0].Timestamp, "events are kept in time order")
}

func TestReconcile_PassageBackfill(t *testing.T) {
	events := []attendance.Event{
		event(attendance.ModeUnlock, at(9, 0)),
		event(attendance.ModeLock, at(18, 0)),
		event(attendance.ModeCheckOut, at(18, 3)),
		event(attendance.ModePassage, at(18, 10)),
	}

	day, err := Reconcile("emp-1", workDay, events, DefaultReconcileOptions())
	require.NoError(t, err)
	assert.Equal(t, at(18, 0), *day.CheckOut, "the lock before the trailing passage wins")

	day, err = Reconcile("emp-1", workDay, events, ReconcileOptions{PassageBackfill: false})
	require.NoError(t, err)
	assert.Equal(t, at(18, 3), *day.CheckOut)
}

func TestReconcile_UnbalancedPassagesNeedReview(t *testing.T) {
	events := []attendance.Event{
		event(attendance.ModeUnlock, at(9, 0)),
		event(attendance.ModePassage, at(13, 0)),
		event(attendance.ModePassage, at(18, 10)),
	}

	day, err := Reconcile("emp-1", workDay, events, DefaultReconcileOptions())

	assert.ErrorIs(t, err, attendance.ErrAmbiguousEvents)
	require.NotNil(t, day.ReviewReason)
	assert.Contains(t, *day.ReviewReason, "passage")
	assert.Equal(t, at(9, 0), *day.CheckIn)
	assert.Nil(t, day.CheckOut)
}

func TestReconcile_UnbalancedPassagesWithBothSides(t *testing.T) {
	events := []attendance.Event{
		event(attendance.ModeUnlock, at(9, 0)),
		event(attendance.ModePassage, at(13, 0)),
		event(attendance.ModeLock, at(18, 0)),
		event(attendance.ModePassage, at(18, 10)),
	}

	day, err := Reconcile("emp-1", workDay, events, DefaultReconcileOptions())

	assert.ErrorIs(t, err, attendance.ErrAmbiguousEvents)
	require.NotNil(t, day.ReviewReason)
	assert.Contains(t, *day.ReviewReason, "2 passage events but 1 lock events")
	require.NotNil(t, day.CheckIn)
	require.NotNil(t, day.CheckOut)
	assert.Equal(t, at(18, 0), *day.CheckOut)
}

func TestReconcile_MissingSide(t *testing.T) {
	_, err := Reconcile("emp-1", workDay, []attendance.Event{event(attendance.ModeCheckIn, at(9, 0))}, DefaultReconcileOptions())
	assert.ErrorIs(t, err, attendance.ErrAmbiguousEvents)

	day, err := Reconcile("emp-1", workDay, []attendance.Event{event(attendance.ModeCheckOut, at(18, 0))}, DefaultReconcileOptions())
	assert.ErrorIs(t, err, attendance.ErrAmbiguousEvents)
	assert.Nil(t, day.CheckIn)

	_, err = Reconcile("emp-1", workDay, []attendance.Event{event(attendance.ModePassage, at(12, 0))}, ReconcileOptions{})
	assert.ErrorIs(t, err, attendance.ErrAmbiguousEvents)
}

func TestReconcile_CheckOutBeforeCheckIn(t *testing.T) {
	events := []attendance.Event{
		event(attendance.ModeCheckOut, at(8, 0)),
		event(attendance.ModeCheckIn, at(9, 0)),
	}

	day, err := Reconcile("emp-1", workDay, events, DefaultReconcileOptions())

	assert.ErrorIs(t, err, attendance.ErrAmbiguousEvents)
	assert.Nil(t, day.CheckOut, "an inverted pair never leaves CheckOut <= CheckIn")
	require.NotNil(t, day.CheckIn)
}

func TestGroupEvents(t *testing.T) {
	other := event(attendance.ModeCheckIn, at(9, 0))
	other.EmployeeID = "emp-2"
	nextDay := event(attendance.ModeCheckIn, at(33, 0))
	nextDay.WorkDate = workDay.AddDate(0, 0, 1)

	keys, groups := GroupEvents([]attendance.Event{
		event(attendance.ModeCheckIn, at(9, 0)),
		other,
		event(attendance.ModeCheckOut, at(18, 0)),
		nextDay,
	})

	require.Len(t, keys, 3)
	assert.Equal(t, DayKey{EmployeeID: "emp-1", WorkDate: "2025-06-19"}, keys[0])
	assert.Equal(t, DayKey{EmployeeID: "emp-2", WorkDate: "2025-06-19"}, keys[1])
	assert.Equal(t, DayKey{EmployeeID: "emp-1", WorkDate: "2025-06-20"}, keys[2])
	assert.Len(t, groups[keys[0]], 2)
}
