package settlement

import (
	"context"
	"time"
)

type SettlementService interface {
	CreatePeriod(ctx context.Context, req CreatePeriodRequest) (FlexWorkPeriod, error)
	GetPeriod(ctx context.Context, id string) (FlexWorkPeriod, error)
	ListPeriods(ctx context.Context) ([]FlexWorkPeriod, error)
	ActivatePeriod(ctx context.Context, id string) (FlexWorkPeriod, error)
	CancelPeriod(ctx context.Context, id string) (FlexWorkPeriod, error)
	// ActivateDuePeriods moves planned periods whose start date has arrived to active.
	ActivateDuePeriods(ctx context.Context, today time.Time) (int, error)

	// RunQuarterlySettlement settles the period once. A second run returns ErrSettlementConflict.
	RunQuarterlySettlement(ctx context.Context, periodID string) (RunResult, error)
	ListSettlements(ctx context.Context, periodID string) ([]QuarterlySettlement, error)
	ExportCSV(ctx context.Context, periodID string) ([]byte, error)
	ExportXLSX(ctx context.Context, periodID string) ([]byte, error)

	ProcessMonthlyNightPay(ctx context.Context, year int, month time.Month) (NightPayResult, error)
}
