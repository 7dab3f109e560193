package settlement

import "errors"

var (
	ErrPeriodNotFound          = errors.New("flexible work period not found")
	ErrInvalidPeriodSpan       = errors.New("flexible work period must span two or three months")
	ErrInvalidPeriodTransition = errors.New("invalid flexible work period status transition")
	ErrPeriodOverlap           = errors.New("flexible work period overlaps an existing period")
	ErrSettlementConflict      = errors.New("settlement already completed or period not settleable")
	ErrSettlementInProgress    = errors.New("settlement for this period is already running")
	ErrSettlementNotFound      = errors.New("no settlement rows for this period")
	ErrNightPayAlreadyExists   = errors.New("night allowance already processed for this month")
)
