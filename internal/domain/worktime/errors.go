package worktime

import "errors"

var (
	ErrConfigurationMissing = errors.New("no rule configuration is effective for the work date")
	ErrSummaryNotFound      = errors.New("daily work summary not found")
	ErrNoAttendance         = errors.New("no attendance recorded for a non-working day")
	ErrInvalidMonth         = errors.New("invalid month")
	ErrInvalidRuleConfig    = errors.New("invalid rule configuration")
	ErrEarnedLeaveOverdrawn = errors.New("recomputed credit would leave the earned leave bank negative")
)
