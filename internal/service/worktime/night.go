package worktime

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/worktime"
)

// NightMinutes returns the whole minutes of [start, end) inside the recurring
// daily window [nightStart, nightEnd). A window with nightEnd before nightStart
// wraps past midnight.
func NightMinutes(start, end time.Time, nightStart, nightEnd worktime.ClockTime) int64 {
	if !end.After(start) || nightStart == nightEnd {
		return 0
	}

	var total time.Duration
	// Begin one day early so a window opened the previous evening is counted.
	day := dateOf(start).AddDate(0, 0, -1)
	last := dateOf(end)
	for !day.After(last) {
		winStart := nightStart.On(day)
		winEnd := nightEnd.On(day)
		if nightEnd < nightStart {
			winEnd = nightEnd.On(day.AddDate(0, 0, 1))
		}
		total += overlap(start, end, winStart, winEnd)
		day = day.AddDate(0, 0, 1)
	}
	return int64(total / time.Minute)
}

// overlap returns the length of the intersection of [a1, a2) and [b1, b2).
func overlap(a1, a2, b1, b2 time.Time) time.Duration {
	lo := a1
	if b1.After(lo) {
		lo = b1
	}
	hi := a2
	if b2.Before(hi) {
		hi = b2
	}
	if !hi.After(lo) {
		return 0
	}
	return hi.Sub(lo)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
